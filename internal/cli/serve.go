package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mvnbox/internal/api"
	"github.com/matzehuels/mvnbox/pkg/observability"
	"github.com/matzehuels/mvnbox/pkg/observability/prom"
	"github.com/matzehuels/mvnbox/pkg/runner"
	"github.com/matzehuels/mvnbox/pkg/version"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command that exposes the sandbox over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve builds, version resolution and metrics over HTTP",
		Example: `  mvnbox serve
  mvnbox serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			exec, cleanup, err := c.newExecutor(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			runner.Set(exec)

			catalog, err := c.newCatalog(cfg)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			metrics := prom.New(reg)
			observability.SetBuildHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetHTTPHooks(metrics)
			defer observability.Reset()

			srv := &http.Server{
				Addr: addr,
				Handler: api.NewHandler(&api.Server{
					Resolve:  version.NewResolver(version.WithLogger(c.Logger)).Resolve,
					Catalog:  catalog,
					Gatherer: reg,
					Logger:   c.Logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return c.listen(ctx, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// listen serves until ctx is cancelled, then shuts the server down.
func (c *CLI) listen(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
