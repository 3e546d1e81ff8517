package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lodestone/pkg/resolve"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent metadata store",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, cfg, err := c.newResolver(ctx, false, resolve.Options{})
			if err != nil {
				return err
			}
			defer r.Close()

			before, err := r.Stats(ctx)
			if err != nil {
				return err
			}
			if before.Store.Entries == 0 {
				printInfo("Cache is empty")
				return nil
			}
			if err := r.Clear(ctx, true); err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", before.Store.Entries)
			printDetail("Store: %s (%s)", cfg.Cache.Store, cfg.StoreDir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, cfg.DataDir)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show store size and circuit breaker states",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, _, err := c.newResolver(ctx, false, resolve.Options{})
			if err != nil {
				return err
			}
			defer r.Close()

			st, err := r.Stats(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return c.writeJSON(st)
			}
			printKeyValue("backend", st.Store.Backend)
			printKeyValue("entries", fmt.Sprintf("%d", st.Store.Entries))
			printKeyValue("size", formatBytes(st.Store.Bytes))
			hosts := make([]string, 0, len(st.Breakers))
			for h := range st.Breakers {
				hosts = append(hosts, h)
			}
			sort.Strings(hosts)
			for _, h := range hosts {
				printKeyValue(h, st.Breakers[h])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
