package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/gimbaltrack/internal/config"
	"github.com/ayusman/gimbaltrack/internal/link"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Decode target lines from a serial port",
	Long: `Read a serial port the way the gimbal controller does and print each
decoded fix with its offset from the frame centre. Useful on the receiving
end of a loopback cable.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	f := monitorCmd.Flags()
	f.String("port", "/dev/ttyS0", "serial device to read")
	f.Int("baud", 115200, "serial baud rate")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	port, err := link.SerialOpener{}.Open(cfg.Link.Port, cfg.Link.PortOptions)
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "monitoring %s @ %s\n", cfg.Link.Port, cfg.Link.PortOptions)
	err = monitor(ctx, port, link.NewDecoder(cfg.Camera.Width, cfg.Camera.Height), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// monitor prints every fix read from r until r fails or ctx is done.
func monitor(ctx context.Context, r io.ReadCloser, d *link.Decoder, w io.Writer) error {
	go func() {
		<-ctx.Done()
		r.Close()
	}()

	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, fix := range d.Feed(buf[:n]) {
			if dx, dy, ok := d.Delta(fix); ok {
				fmt.Fprintf(w, "target %d,%d  offset %+d,%+d\n", fix.X, fix.Y, dx, dy)
			} else {
				fmt.Fprintln(w, "no target")
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
