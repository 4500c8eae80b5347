package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/quizgrid/pkg/cache"
	"github.com/matzehuels/quizgrid/pkg/server"
	"github.com/matzehuels/quizgrid/pkg/store"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr, policy string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the quiz builder web server",
		Long: `Serve the quiz list, viewer and admin editor pages plus the JSON API.

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ed, err := c.newEditor(ctx, cfg, policy)
			if err != nil {
				return err
			}
			defer ed.Store.Close()

			if cfg.Store.SeedEnabled() {
				prog := newProgress(c.Logger)
				n, err := store.Seed(ctx, ed.Store, store.SampleTitles...)
				if err != nil {
					return err
				}
				if n > 0 {
					prog.done("Seeded sample quizzes")
				}
			}

			pages, err := c.openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer pages.Close()

			var keyer cache.Keyer = cache.NewDefaultKeyer()
			if cfg.Cache.Prefix != "" {
				keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Prefix)
			}

			c.Logger.Info("starting server",
				"addr", cfg.Server.Addr,
				"store", cfg.Store.Backend,
				"cache", cfg.Cache.Backend,
				"policy", ed.Policy,
			)
			srv := server.New(ed, pages, keyer, c.Logger)
			return srv.ListenAndServe(ctx, cfg.Server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&policy, "policy", "", "placement policy: reject, clamp or allow")
	return cmd
}
