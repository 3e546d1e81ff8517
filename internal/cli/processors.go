package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lodestone/pkg/loaders/processor"
	"github.com/matzehuels/lodestone/pkg/resolve"
)

// processorsCommand creates the processors command.
func (c *CLI) processorsCommand() *cobra.Command {
	var (
		flags  profileFlags
		side   string
		run    bool
		java   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "processors <minecraft-version> -l <neoforge-version> --game-dir <dir>",
		Short: "Plan or run the NeoForge installer processors",
		Long: `Processors resolves the NeoForge profile, then prints the processor steps its
installer declares with every argument substituted. With --run the steps are
executed in order; steps whose outputs already match are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, _, err := c.newResolver(ctx, flags.noCache, resolve.Options{Sink: eventLogger(c.Logger)})
			if err != nil {
				return err
			}
			defer r.Close()

			p, err := flags.profile("neoforge", args[0])
			if err != nil {
				return err
			}
			if _, err := c.resolve(ctx, r, p, !asJSON); err != nil {
				return err
			}
			plan, inst, err := r.Processors(ctx, p, processor.Env{Side: side})
			if err != nil {
				return err
			}

			if !run {
				if asJSON {
					return c.writeJSON(plan)
				}
				printInfo("%d processors for %s (%d skipped for side %s)", len(plan.Steps), p.Name, plan.Skipped, side)
				for i, s := range plan.Steps {
					printKeyValue(fmt.Sprintf("step %d", i+1), filepath.Base(s.Jar))
					printDetail("%v", s.Args)
				}
				printNextStep("Run them", fmt.Sprintf("lodestone processors %s -l %s --game-dir %s --run", args[0], p.LoaderVersion, p.GameDir))
				return nil
			}

			exec := &processor.Executor{
				Runner: processor.ExecRunner{Logger: c.Logger},
				Java:   java,
				Logger: c.Logger,
			}
			report, err := exec.Execute(ctx, plan, inst)
			if err != nil {
				return err
			}
			if asJSON {
				return c.writeJSON(report)
			}
			printSuccess("Ran %d processors", report.Ran)
			if report.UpToDate > 0 {
				printDetail("%d already up to date", report.UpToDate)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&side, "side", "client", "client or server")
	cmd.Flags().BoolVar(&run, "run", false, "execute the processors")
	cmd.Flags().StringVar(&java, "java", "java", "java executable used with --run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan or report as JSON")
	return cmd
}
