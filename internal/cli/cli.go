// Package cli implements the lodestone command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lodestone/pkg/buildinfo"
	"github.com/matzehuels/lodestone/pkg/config"
	"github.com/matzehuels/lodestone/pkg/resolve"
)

// appName is the application name used for directories and display.
const appName = "lodestone"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives command results. Defaults to os.Stdout.
	Out io.Writer

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level. Debug also pins the level
// against the config file's log.level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level == log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lodestone resolves Minecraft launch descriptors",
		Long:         `Lodestone fetches Minecraft version metadata for vanilla and modded loaders (Fabric, Quilt, Forge, NeoForge, update servers) and merges it into one launch descriptor.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.processorsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Resolver Factory
// =============================================================================

// loadConfig reads the configuration and applies its log level unless -v
// was given.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if !c.verbose {
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.Logger.SetLevel(level)
		}
	}
	return cfg, nil
}

// newResolver builds a resolver from the configuration. noCache disables
// the persistent store.
func (c *CLI) newResolver(ctx context.Context, noCache bool, opts resolve.Options) (*resolve.Resolver, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if noCache {
		cfg.Cache.Store = config.StoreNone
	}
	if opts.Logger == nil {
		opts.Logger = c.Logger
	}
	r, err := resolve.New(ctx, cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	return r, cfg, nil
}

// writeJSON prints v as indented JSON to c.Out.
func (c *CLI) writeJSON(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
