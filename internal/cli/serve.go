package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/lodestone/internal/server"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/resolve"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver over HTTP",
		Long: `Serve starts the HTTP API. Resolved descriptors stay cached in memory for
the configured TTL; Prometheus metrics are exposed at /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			metrics := observability.NewPrometheus(appName)
			r, cfg, err := c.newResolver(ctx, false, resolve.Options{
				Sink:  eventLogger(c.Logger),
				Hooks: observability.Hooks{Resolve: metrics, Cache: metrics, HTTP: metrics},
			})
			if err != nil {
				return err
			}
			defer r.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv := server.New(server.Options{
				Resolver: r,
				Logger:   c.Logger.WithPrefix("http"),
				Metrics:  metrics.Handler(),
				Timeout:  2 * cfg.HTTP.Timeout,
			})
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
