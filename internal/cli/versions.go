package cli

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mvnbox/pkg/integrations/maven"
)

// versionsOptions holds flags for the versions command.
type versionsOptions struct {
	latest  bool
	refresh bool
	pick    bool
	limit   int
}

// versionsCommand creates the versions command for querying Maven Central.
func (c *CLI) versionsCommand() *cobra.Command {
	opts := versionsOptions{}

	cmd := &cobra.Command{
		Use:   "versions <groupId:artifactId>",
		Short: "List published versions from Maven Central",
		Example: `  mvnbox versions org.apache.maven:maven-core
  mvnbox versions junit:junit --latest
  mvnbox versions com.google.guava:guava --pick`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, a, err := maven.ParseCoordinate(args[0])
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := c.newCatalog(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			spin := newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Querying Maven Central...")
			spin.Start()
			seq, err := catalog.AllVersions(cmd.Context(), g, a, opts.refresh)
			spin.Stop()
			if err != nil {
				return err
			}
			versions := slices.Collect(seq)
			c.Logger.Debug("versions fetched", "coordinate", args[0], "count", len(versions))

			if len(versions) == 0 {
				printWarning(out, "No published versions of %s", args[0])
				return nil
			}

			switch {
			case opts.latest:
				fmt.Fprintln(out, versions[0])
			case opts.pick:
				return pickVersion(cmd, args[0], versions)
			default:
				if opts.limit > 0 && len(versions) > opts.limit {
					versions = versions[:opts.limit]
				}
				for _, v := range versions {
					fmt.Fprintln(out, v)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.latest, "latest", false, "print only the newest version")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose a version interactively")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "print at most n versions")
	cmd.MarkFlagsMutuallyExclusive("latest", "pick")

	return cmd
}

func pickVersion(cmd *cobra.Command, coordinate string, versions []string) error {
	p := tea.NewProgram(NewVersionPickerModel(coordinate, versions),
		tea.WithContext(cmd.Context()), tea.WithOutput(cmd.ErrOrStderr()))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(VersionPickerModel); ok && m.Selected != "" {
		fmt.Fprintln(cmd.OutOrStdout(), m.Selected)
	}
	return nil
}
