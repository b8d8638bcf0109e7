package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardmap/pkg/cache"
	"github.com/matzehuels/cardmap/pkg/pipeline"
	"github.com/matzehuels/cardmap/pkg/server"
	"github.com/matzehuels/cardmap/pkg/vault"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		vaultDir string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and panels over HTTP",
		Long: `Serve layouts and panels over HTTP.

Routes:
  GET    /healthz
  POST   /api/v1/layout             lay out posted items
  GET    /api/v1/panel.{format}     render the configured vault
  POST   /api/v1/sessions           open a panel
  GET    /api/v1/sessions/{id}      read an open panel
  DELETE /api/v1/sessions/{id}      close a panel

The server stops on interrupt and closes every open panel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Settings.Server.Addr
			}
			if vaultDir == "" {
				vaultDir = c.Settings.Vault
			}
			return c.runServe(cmd.Context(), addr, vaultDir, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings, :8080)")
	cmd.Flags().StringVar(&vaultDir, "vault", "", "vault served at /api/v1/panel.{format}")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, vaultDir string, noCache bool) error {
	cc, err := newCache(ctx, c.Settings.Cache, noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, "api:"), c.Logger)
	runner.TTL = c.Settings.Cache.TTL.Duration
	defer runner.Close()

	cfg := server.Config{
		Runner:   runner,
		Defaults: c.baseOptions(),
		Logger:   c.Logger,
	}
	if vaultDir != "" {
		cfg.Vault = vault.Source{Root: vaultDir}
	}

	printSuccess("Serving on %s", StyleLink.Render(addr))
	if vaultDir != "" {
		printKeyValue("Vault", vaultDir)
	}
	printKeyValue("Cache", c.Settings.Cache.Backend)
	printKeyValue("Views", fmt.Sprint(runner.Registry.Types()))

	err = server.New(cfg).ListenAndServe(ctx, addr)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
