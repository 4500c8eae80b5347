// Package cli implements the quizgrid command-line interface.
//
// Commands:
//   - serve: run the HTTP quiz builder
//   - quiz: list, create, show, delete quizzes and place components
//   - preview: browse a quiz layout in the terminal
//   - config: print the config path or the effective configuration
//   - cache: manage the rendered page cache
//
// All commands accept --verbose (-v) for debug logging and --config (-c)
// to read a config file other than the default one.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/quizgrid/pkg/buildinfo"
	"github.com/matzehuels/quizgrid/pkg/cache"
	"github.com/matzehuels/quizgrid/pkg/config"
	"github.com/matzehuels/quizgrid/pkg/editor"
	"github.com/matzehuels/quizgrid/pkg/grid"
	"github.com/matzehuels/quizgrid/pkg/observability"
	"github.com/matzehuels/quizgrid/pkg/store"
)

const appName = "quizgrid"

// Redis key prefix of the page cache; store keys live under "quizgrid:".
const redisPagePrefix = "quizgrid:page:"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath   string
	storeBackend string
	storeDSN     string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "quizgrid builds quiz screens on a 12×12 grid",
		Long:         `quizgrid lets authors lay out quiz widgets (progress bar, timer, question, image, options) on a 12×12 grid through a browser editor, and serves the finished quizzes to viewers.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			observability.SetPlacementHooks(placementLogger{c.Logger})
			observability.SetStoreHooks(storeLogger{c.Logger})
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/quizgrid/config.toml)")
	flags.StringVar(&c.storeBackend, "store", "", "store backend: memory, file, sqlite, redis or mongo")
	flags.StringVar(&c.storeDSN, "dsn", "", "store location: directory, database path, redis address or mongo URI")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.quizCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies the persistent flags.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.storeBackend != "" {
		cfg.Store.Backend = c.storeBackend
	}
	if c.storeDSN != "" {
		cfg.Store.DSN = c.storeDSN
	}
	return cfg, cfg.Validate()
}

// openStore opens the configured backend. Network backends show a spinner
// while connecting.
func (c *CLI) openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	opts := store.Options{
		Backend:  cfg.Store.Backend,
		DSN:      cfg.Store.DSN,
		Database: cfg.Store.Database,
		Prefix:   cfg.Store.Prefix,
	}
	c.Logger.Debug("opening store", "backend", opts.Backend, "dsn", opts.DSN)

	switch opts.Backend {
	case store.BackendRedis, store.BackendMongo:
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Connecting to %s...", opts.Backend))
		spinner.Start()
		s, err := store.Open(ctx, opts)
		if err != nil {
			spinner.Stop()
			return nil, err
		}
		spinner.StopWithSuccess(fmt.Sprintf("Connected to %s", opts.Backend))
		return s, nil
	default:
		return store.Open(ctx, opts)
	}
}

// newEditor opens the store and wraps it in an editor. policy overrides
// the configured placement policy when non-empty.
func (c *CLI) newEditor(ctx context.Context, cfg config.Config, policy string) (*editor.Editor, error) {
	if policy == "" {
		policy = cfg.Editor.Policy
	}
	p, err := grid.ParsePolicy(policy)
	if err != nil {
		return nil, err
	}
	s, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return editor.New(s, p, c.Logger), nil
}

// openCache creates the configured page cache.
func (c *CLI) openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "file":
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return nil, fmt.Errorf("get cache dir: %w", err)
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.Addr, redisPagePrefix)
	default:
		return cache.NewNullCache(), nil
	}
}

// cacheDir returns the page cache directory (~/.cache/quizgrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
