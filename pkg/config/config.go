// Package config loads quizgrid settings from a TOML file.
//
// A missing file is not an error: Load returns Default(). Values present
// in the file override the defaults; CLI flags override both.
//
//	[server]
//	addr = ":8080"
//
//	[store]
//	backend = "sqlite"
//	dsn = "/var/lib/quizgrid/quizgrid.db"
//
//	[editor]
//	policy = "reject"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/grid"
)

const appName = "quizgrid"

// Duration is a time.Duration that decodes from TOML strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Store selects the quiz storage backend.
type Store struct {
	Backend  string `toml:"backend"`
	DSN      string `toml:"dsn"`
	Database string `toml:"database"`
	Prefix   string `toml:"prefix"`
	// Seed forces sample quizzes on or off. Unset seeds only the memory
	// backend, which starts empty on every run.
	Seed *bool `toml:"seed,omitempty"`
}

// SeedEnabled reports whether sample quizzes should be added to an empty
// store.
func (s Store) SeedEnabled() bool {
	if s.Seed != nil {
		return *s.Seed
	}
	return s.Backend == "memory"
}

// Cache selects the rendered page cache.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Addr    string `toml:"addr"`
	Prefix  string `toml:"prefix"`
}

// Editor configures the layout editor.
type Editor struct {
	Policy string `toml:"policy"`
}

// Config is the full configuration file.
type Config struct {
	Server Server `toml:"server"`
	Store  Store  `toml:"store"`
	Cache  Cache  `toml:"cache"`
	Editor Editor `toml:"editor"`
}

// Store and cache backend names understood by Validate.
var (
	StoreBackends = []string{"memory", "file", "sqlite", "redis", "mongo"}
	CacheBackends = []string{"none", "file", "redis"}
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     Duration{10 * time.Second},
			WriteTimeout:    Duration{10 * time.Second},
			ShutdownTimeout: Duration{5 * time.Second},
		},
		Store: Store{
			Backend:  "memory",
			Database: appName,
		},
		Cache: Cache{
			Backend: "none",
		},
		Editor: Editor{
			Policy: string(grid.DefaultPolicy),
		},
	}
}

// DefaultPath returns the config file location: $XDG_CONFIG_HOME/quizgrid/config.toml,
// falling back to ~/.config/quizgrid/config.toml.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path on top of Default and validates the result.
// An empty path means DefaultPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, qerrors.Wrap(qerrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data on top of base and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, qerrors.Wrap(qerrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, qerrors.New(qerrors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks enums and required values.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return qerrors.New(qerrors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if !slices.Contains(StoreBackends, c.Store.Backend) {
		return qerrors.New(qerrors.ErrCodeInvalidConfig, "store.backend %q must be one of %v", c.Store.Backend, StoreBackends)
	}
	if (c.Store.Backend == "redis" || c.Store.Backend == "mongo") && c.Store.DSN == "" {
		return qerrors.New(qerrors.ErrCodeInvalidConfig, "store.dsn is required for the %s backend", c.Store.Backend)
	}
	if !slices.Contains(CacheBackends, c.Cache.Backend) {
		return qerrors.New(qerrors.ErrCodeInvalidConfig, "cache.backend %q must be one of %v", c.Cache.Backend, CacheBackends)
	}
	if c.Cache.Backend == "redis" && c.Cache.Addr == "" {
		return qerrors.New(qerrors.ErrCodeInvalidConfig, "cache.addr is required for the redis cache")
	}
	if _, err := grid.ParsePolicy(c.Editor.Policy); err != nil {
		return qerrors.Wrap(qerrors.ErrCodeInvalidConfig, err, "editor.policy")
	}
	return nil
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
