package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mvnbox/pkg/version"
)

// resolveCommand creates the resolve command for module version lookup.
func (c *CLI) resolveCommand() *cobra.Command {
	var classpath string

	cmd := &cobra.Command{
		Use:   "resolve <module> --classpath <entries>",
		Short: "Resolve a module's version from a classpath",
		Long: `Find the version of a module on a classpath.

Archives named <module>-*.jar report their manifest Implementation-Version.
Source folders ending in <module>/src/main/java report the version in the
module's pom.xml, inherited from its parent if needed.`,
		Example: `  mvnbox resolve guava --classpath ~/.m2/repository/com/google/guava/guava/33.0.0-jre/guava-33.0.0-jre.jar
  mvnbox resolve core --classpath ./core/src/main/java:./lib/other-1.0.jar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := parseClasspath(classpath)
			r := version.NewResolver(version.WithLogger(c.Logger))
			v, err := r.Resolve(cmd.Context(), args[0], entries)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if v == nil {
				printWarning(out, "No version found for %s", args[0])
				return nil
			}
			fmt.Fprintln(out, v.Original())
			return nil
		},
	}

	cmd.Flags().StringVar(&classpath, "classpath", "", "classpath entries separated by the platform list separator")
	_ = cmd.MarkFlagRequired("classpath")
	return cmd
}

// parseClasspath splits a classpath string and marks existing directories.
func parseClasspath(cp string) []version.ClasspathEntry {
	var entries []version.ClasspathEntry
	for _, p := range filepath.SplitList(cp) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fi, err := os.Stat(p)
		entries = append(entries, version.ClasspathEntry{
			Path:        p,
			IsDirectory: err == nil && fi.IsDir(),
		})
	}
	return entries
}
