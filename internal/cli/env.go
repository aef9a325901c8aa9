package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mvnbox/pkg/sandbox"
)

// envCommand creates the env command that prints the sandbox environment.
func (c *CLI) envCommand() *cobra.Command {
	var urls bool

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show the sandbox environment",
		Long:  `Locate every Maven library under the configured search roots and print where each was found.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			factory, err := c.newFactory(cfg)
			if err != nil {
				return err
			}
			env, err := factory.Build(cmd.Context())
			if err != nil {
				return err
			}
			describeEnvironment(cmd.OutOrStdout(), env, urls)
			return nil
		},
	}

	cmd.Flags().BoolVar(&urls, "urls", false, "print locations as file URLs")
	return cmd
}

// describeEnvironment prints the runtime and one line per module location.
func describeEnvironment(w io.Writer, env *sandbox.Environment, urls bool) {
	fmt.Fprintln(w, StyleTitle.Render("Sandbox environment"))
	if env.Parent != nil {
		printKeyValue(w, "runtime", fmt.Sprintf("java %s (%s)", env.Parent.Version, env.Parent.Home))
	} else {
		printKeyValue(w, "runtime", "legacy (no platform parent)")
	}
	printKeyValue(w, "modules", fmt.Sprintf("%d", len(env.Locations)))

	locs := env.URLs()
	for i, l := range env.Locations {
		kind := "dir"
		if l.Archive {
			kind = "jar"
		}
		printDetail(w, "%s [%s]", l.Module.ID, kind)
		if urls {
			printPath(w, locs[i])
		} else {
			printPath(w, l.Path)
		}
	}
}
