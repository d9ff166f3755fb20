package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/gimbaltrack/internal/app"
	"github.com/ayusman/gimbaltrack/internal/config"
	"github.com/ayusman/gimbaltrack/internal/monitoring"
	"github.com/ayusman/gimbaltrack/internal/server"
	"github.com/ayusman/gimbaltrack/internal/store"
	"github.com/ayusman/gimbaltrack/internal/tray"
)

// trayRefresh is how often the tray picks up the tracker status.
const trayRefresh = 250 * time.Millisecond

var (
	flagTray      bool
	flagStaticDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track the target and drive the gimbal",
	Args:  cobra.NoArgs,
	RunE:  runTracker,
}

func init() {
	f := runCmd.Flags()
	f.Int("camera", 0, "camera device index, -1 for the synthetic camera")
	f.String("port", "/dev/ttyS0", "serial device of the gimbal controller")
	f.Int("baud", 115200, "serial baud rate")
	f.String("addr", "127.0.0.1:8080", "status server listen address")
	f.String("db", "", "detection history database (default: ~/.gimbaltrack/gimbaltrack.db)")
	f.BoolVar(&flagTray, "tray", false, "show a system tray indicator")
	f.StringVar(&flagStaticDir, "static", "", "directory served at / by the status server")
}

func runTracker(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var st *store.Store
	if cfg.Store.Enabled {
		dbPath, err := resolveDBPath(cfg.Store.Path)
		if err != nil {
			return err
		}
		st, err = store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		monitoring.Logf("recording to %s", dbPath)
	}

	a := app.New(app.Config{Settings: cfg, Store: st})
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Run(gctx)
	})

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			StaticDir: flagStaticDir,
			Store:     st,
			Tracker:   a,
		})
		g.Go(func() error {
			monitoring.Logf("status server on http://%s", cfg.Server.Addr)
			return srv.Run(gctx, cfg.Server.Addr)
		})
	}

	if flagTray {
		tr := tray.New()
		tr.OnToggle(a.SetEnabled)
		tr.OnQuit(cancel)
		if cfg.Server.Enabled {
			tr.OnOpen(func() { openBrowser("http://" + cfg.Server.Addr) })
		}

		g.Go(func() error {
			watchTray(gctx, a, tr)
			tr.Quit()
			return nil
		})

		// systray needs the main goroutine.
		tr.Run()
	}

	return g.Wait()
}

// watchTray mirrors the tracker status into the tray until ctx is done.
func watchTray(ctx context.Context, a *app.App, tr *tray.Tray) {
	ticker := time.NewTicker(trayRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := a.Status()
			tr.Update(st.Tier, st.Centroid, st.Link.Connected)
		}
	}
}

// resolveDBPath returns path, or ~/.gimbaltrack/gimbaltrack.db when it is
// empty. The parent directory is created.
func resolveDBPath(path string) (string, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".gimbaltrack", "gimbaltrack.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return path, nil
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		monitoring.Logf("open %s: %v", url, err)
	}
}
