// Package config loads gimbaltrack settings from defaults, an optional YAML
// file, GIMBALTRACK_* environment variables and command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/gimbaltrack/internal/capture"
	"github.com/ayusman/gimbaltrack/internal/link"
	"github.com/ayusman/gimbaltrack/internal/target"
)

const (
	configFileName = "gimbaltrack"
	configFileType = "yaml"
	envPrefix      = "GIMBALTRACK"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config is the complete runtime configuration.
type Config struct {
	Camera    CameraConfig    `json:"camera" yaml:"camera" mapstructure:"camera"`
	Threshold ThresholdConfig `json:"threshold" yaml:"threshold" mapstructure:"threshold"`
	Target    target.Config   `json:"target" yaml:"target" mapstructure:"target"`
	Link      LinkConfig      `json:"link" yaml:"link" mapstructure:"link"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// CameraConfig selects the capture device.
type CameraConfig struct {
	// DeviceID -1 selects the built-in synthetic camera.
	DeviceID int `json:"device_id" yaml:"device_id" mapstructure:"device_id"`
	Width    int `json:"width" yaml:"width" mapstructure:"width"`
	Height   int `json:"height" yaml:"height" mapstructure:"height"`
	FPS      int `json:"fps" yaml:"fps" mapstructure:"fps"`

	// MaxReadFailures consecutive failed reads stop the run. 0 retries forever.
	MaxReadFailures int `json:"max_read_failures" yaml:"max_read_failures" mapstructure:"max_read_failures"`
}

// ThresholdConfig controls binarization and blob extraction. The blob size
// floor is target.min_area.
type ThresholdConfig struct {
	BlackMax int  `json:"black_max" yaml:"black_max" mapstructure:"black_max"`
	Merge    bool `json:"merge" yaml:"merge" mapstructure:"merge"`
}

// LinkConfig describes the serial line to the gimbal controller.
type LinkConfig struct {
	Port             string `json:"port" yaml:"port" mapstructure:"port"`
	link.PortOptions `yaml:",inline" mapstructure:",squash"`

	// SendOnLost sends "0,0" on frames with no candidate.
	SendOnLost bool `json:"send_on_lost" yaml:"send_on_lost" mapstructure:"send_on_lost"`
}

// ServerConfig controls the HTTP status server.
type ServerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// StoreConfig controls detection history recording.
type StoreConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// Path of the SQLite file. Empty means ~/.gimbaltrack/gimbaltrack.db.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
	// RecordEvery stores one of every N frames. 0 records nothing.
	RecordEvery int `json:"record_every" yaml:"record_every" mapstructure:"record_every"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	// Frames logs one line per processed frame.
	Frames bool `json:"frames" yaml:"frames" mapstructure:"frames"`
}

// Default returns the configuration for a 240x240 camera on /dev/ttyS0.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			DeviceID:        0,
			Width:           capture.DefaultWidth,
			Height:          capture.DefaultHeight,
			FPS:             capture.DefaultFPS,
			MaxReadFailures: 30,
		},
		Threshold: ThresholdConfig{
			BlackMax: capture.DefaultBlackMax,
			Merge:    true,
		},
		Target: target.DefaultConfig(),
		Link: LinkConfig{
			Port: "/dev/ttyS0",
			PortOptions: link.PortOptions{
				BaudRate: link.DefaultBaudRate,
				DataBits: 8,
				StopBits: 1,
				Parity:   "N",
			},
			SendOnLost: true,
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8080",
		},
		Store: StoreConfig{
			Enabled:     true,
			RecordEvery: 10,
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	switch {
	case c.Camera.DeviceID < capture.SyntheticDevice:
		return fmt.Errorf("%w: camera.device_id %d", ErrInvalid, c.Camera.DeviceID)
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalid, c.Camera.Width, c.Camera.Height)
	case c.Camera.FPS <= 0:
		return fmt.Errorf("%w: camera fps %d", ErrInvalid, c.Camera.FPS)
	case c.Camera.MaxReadFailures < 0:
		return fmt.Errorf("%w: negative camera.max_read_failures", ErrInvalid)
	case c.Threshold.BlackMax < 0 || c.Threshold.BlackMax > 255:
		return fmt.Errorf("%w: threshold.black_max %d outside 0-255", ErrInvalid, c.Threshold.BlackMax)
	case strings.TrimSpace(c.Link.Port) == "":
		return fmt.Errorf("%w: link.port is empty", ErrInvalid)
	case c.Server.Enabled && c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	case c.Store.RecordEvery < 0:
		return fmt.Errorf("%w: negative store.record_every", ErrInvalid)
	}

	if _, err := c.Link.PortOptions.Normalize(); err != nil {
		return fmt.Errorf("%w: link: %v", ErrInvalid, err)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"camera": "camera.device_id",
	"port":   "link.port",
	"baud":   "link.baud_rate",
	"addr":   "server.addr",
	"db":     "store.path",
}

// Load builds the effective configuration. Values are layered, lowest first:
// Default(), the YAML file, GIMBALTRACK_* environment variables and any flag in
// flags that was set explicitly. An empty path searches the working directory
// and ~/.gimbaltrack for gimbaltrack.yaml; a missing file is not an error then.
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.gimbaltrack")
	}

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newViper returns a viper instance seeded with Default() so that every key is
// known to the environment lookup.
func newViper() (*viper.Viper, error) {
	defaults, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configFileType)
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

// YAML renders cfg the way a config file would hold it.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
