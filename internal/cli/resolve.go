package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/resolve"
	"github.com/matzehuels/lodestone/pkg/version"
)

// profileFlags are the flags every profile-taking command shares.
type profileFlags struct {
	name          string
	loaderVersion string
	gameDir       string
	javaDir       string
	noCache       bool
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.loaderVersion, "loader-version", "l", "", "loader build, e.g. 0.15.0 or 47.2.0")
	cmd.Flags().StringVar(&f.name, "name", "", "profile name (default <loader>-<minecraft>[-<loader-version>])")
	cmd.Flags().StringVar(&f.gameDir, "game-dir", "", "game directory")
	cmd.Flags().StringVar(&f.javaDir, "java-dir", "", "java runtime directory")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the persistent store")
}

// profile builds the profile for loader and its second argument, which is
// the Minecraft version or, for update servers, the server entry.
func (f *profileFlags) profile(loader, second string) (*version.Profile, error) {
	l, err := version.ParseLoader(loader)
	if err != nil {
		return nil, err
	}
	p := &version.Profile{
		Name:          f.name,
		Loader:        l,
		LoaderVersion: f.loaderVersion,
		GameDir:       f.gameDir,
		JavaDir:       f.javaDir,
	}
	if l == version.UpdateServer {
		if p.Name == "" {
			p.Name = second
		}
		return p, p.Validate()
	}
	p.MinecraftVersion = second
	if p.Name == "" {
		p.Name = string(l) + "-" + second
		if p.LoaderVersion != "" {
			p.Name += "-" + p.LoaderVersion
		}
	}
	return p, p.Validate()
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		flags  profileFlags
		asJSON bool
		pick   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <loader> [minecraft-version | update-server]",
		Short: "Resolve the launch descriptor of a profile",
		Long: `Resolve fetches and merges the metadata of a profile into one launch descriptor.

Loaders: vanilla, fabric, quilt, forge, neoforge, updateserver.`,
		Example: `  lodestone resolve vanilla 1.20.1
  lodestone resolve fabric 1.20.1 -l 0.15.0 --json
  lodestone resolve vanilla --pick
  lodestone resolve updateserver survival`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, _, err := c.newResolver(ctx, flags.noCache, resolve.Options{Sink: eventLogger(c.Logger)})
			if err != nil {
				return err
			}
			defer r.Close()

			second := ""
			if len(args) == 2 {
				second = args[1]
			}
			if second == "" && pick {
				if second, err = c.pick(ctx, r); err != nil || second == "" {
					return err
				}
			}
			if second == "" {
				return errors.New(errors.ErrCodeInvalidInput, "missing Minecraft version (or use --pick)")
			}

			p, err := flags.profile(args[0], second)
			if err != nil {
				return err
			}
			v, err := c.resolve(ctx, r, p, !asJSON)
			if err != nil {
				return err
			}
			if asJSON {
				return c.writeJSON(v)
			}
			printSuccess("Resolved %s", StyleTitle.Render(p.Name))
			printSummary(v)
			printNextStep("Inspect one view", fmt.Sprintf("lodestone query %s %s libraries", p.Loader, second))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the descriptor as JSON")
	cmd.Flags().BoolVar(&pick, "pick", false, "pick the Minecraft version interactively")
	return cmd
}

// resolve runs r.Resolve behind a spinner when interactive is set.
func (c *CLI) resolve(ctx context.Context, r *resolve.Resolver, p *version.Profile, interactive bool) (*version.Version, error) {
	prog := newProgress(loggerFromContext(ctx))
	var spin *Spinner
	if interactive && isTerminal(os.Stderr) {
		spin = newSpinner(ctx, "Resolving "+p.Name)
		spin.Start()
	}
	v, err := r.Resolve(ctx, p)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return nil, err
	}
	prog.done("Resolved " + p.Name)
	return v, nil
}

func (c *CLI) pick(ctx context.Context, r *resolve.Resolver) (string, error) {
	m, err := r.Versions(ctx)
	if err != nil {
		return "", err
	}
	return pickVersion(m.Versions)
}

// queryCommand creates the query command.
func (c *CLI) queryCommand() *cobra.Command {
	var flags profileFlags

	cmd := &cobra.Command{
		Use:   "query <loader> <minecraft-version | update-server> [view]",
		Short: "Print one view of a profile's descriptor",
		Long: `Query prints a single view of the descriptor as JSON, such as its libraries
or main class. Without a view it lists the views the loader answers.`,
		Example: `  lodestone query vanilla 1.20.1 asset-index
  lodestone query forge 1.20.1 -l 47.2.0 libraries`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, _, err := c.newResolver(ctx, flags.noCache, resolve.Options{Sink: eventLogger(c.Logger)})
			if err != nil {
				return err
			}
			defer r.Close()

			p, err := flags.profile(args[0], args[1])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				queries, err := r.Queries(p.Loader)
				if err != nil {
					return err
				}
				return c.writeJSON(queries)
			}
			md, err := r.Query(ctx, p, args[2])
			if err != nil {
				return err
			}
			return c.writeJSON(md)
		},
	}

	flags.register(cmd)
	return cmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
