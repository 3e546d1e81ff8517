package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/resolve"
	"github.com/matzehuels/lodestone/pkg/version"
)

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var (
		snapshots bool
		limit     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "versions [loader minecraft-version]",
		Short: "List Minecraft versions or loader builds",
		Example: `  lodestone versions
  lodestone versions --snapshots -n 50
  lodestone versions fabric 1.20.1`,
		Args: cobra.MatchAll(cobra.RangeArgs(0, 2), func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("a loader needs a Minecraft version")
			}
			return nil
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, _, err := c.newResolver(ctx, false, resolve.Options{})
			if err != nil {
				return err
			}
			defer r.Close()

			if len(args) == 2 {
				l, err := version.ParseLoader(args[0])
				if err != nil {
					return err
				}
				list, err := r.LoaderVersions(ctx, l, args[1])
				if err != nil {
					return err
				}
				if limit > 0 && len(list) > limit {
					list = list[:limit]
				}
				if asJSON {
					return c.writeJSON(list)
				}
				for _, v := range list {
					fmt.Fprintln(c.Out, v)
				}
				return nil
			}

			m, err := r.Versions(ctx)
			if err != nil {
				return err
			}
			list := filterVersions(m.Versions, snapshots, limit)
			if asJSON {
				return c.writeJSON(list)
			}
			fmt.Fprintln(c.Out, versionsTable(list, m.Latest.Release))
			return nil
		},
	}

	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "include snapshots and old betas")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// filterVersions keeps releases (or everything with snapshots) up to limit.
func filterVersions(all []mojang.ManifestEntry, snapshots bool, limit int) []mojang.ManifestEntry {
	out := make([]mojang.ManifestEntry, 0, len(all))
	for _, v := range all {
		if !snapshots && v.Type != "release" {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func versionsTable(list []mojang.ManifestEntry, latest string) string {
	rows := make([][]string, 0, len(list))
	for _, v := range list {
		marker := ""
		if v.ID == latest {
			marker = "latest"
		}
		rows = append(rows, []string{v.ID, v.Type, formatReleaseTime(v.ReleaseTime), marker})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Version", "Type", "Released", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 {
				return StyleSuccess
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
