package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/rzbill/segstream/pkg/log"
)

// Config is the top-level configuration shared by the CLI client and the
// reference gateway.
type Config struct {
	Endpoint     string `json:"endpoint"`
	Scope        string `json:"scope"`
	Stream       string `json:"stream"`
	MaxEventSize int    `json:"maxEventSize"`
	NameRegex    string `json:"nameRegex"`

	Log    LogConfig    `json:"log"`
	Server ServerConfig `json:"server"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// ServerConfig configures the reference gateway.
type ServerConfig struct {
	DataDir         string `json:"dataDir"`
	Fsync           string `json:"fsync"`
	FsyncIntervalMs int    `json:"fsyncIntervalMs"`
	ListenAddr      string `json:"listenAddr"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Endpoint:     "localhost:9090",
		Scope:        "myscope",
		Stream:       "mystream",
		MaxEventSize: 1 << 20,
		NameRegex:    `^[A-Za-z0-9_-]{1,255}$`,
		Log:          LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			DataDir:         DefaultDataDir(),
			Fsync:           "interval",
			FsyncIntervalMs: 5,
			ListenAddr:      ":9090",
		},
	}
}

// Load reads a JSON file over the defaults. An empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first field that cannot be used as given.
func (c Config) Validate() error {
	if c.MaxEventSize <= 0 {
		return fmt.Errorf("maxEventSize must be positive, got %d", c.MaxEventSize)
	}
	if _, err := regexp.Compile(c.NameRegex); err != nil {
		return fmt.Errorf("nameRegex: %w", err)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	switch c.Server.Fsync {
	case "always", "interval", "never":
	default:
		return fmt.Errorf("server.fsync must be always, interval or never, got %q", c.Server.Fsync)
	}
	return nil
}

// Logger builds the process logger described by c.Log. Invalid values fall
// back to info/text.
func (c Config) Logger() log.Logger {
	level, _ := log.ParseLevel(c.Log.Level)
	format, _ := log.ParseFormat(c.Log.Format)
	return log.NewLogger(log.WithLevel(level), log.WithFormat(format))
}
