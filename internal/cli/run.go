package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mvnbox/pkg/buildspec"
	"github.com/matzehuels/mvnbox/pkg/errors"
	"github.com/matzehuels/mvnbox/pkg/runner"
	"github.com/matzehuels/mvnbox/pkg/sandbox"
)

// runOptions holds flags for the run command.
type runOptions struct {
	dir     string
	options []string
	defines []string
	bare    bool
	dryRun  bool
}

// runCommand creates the run command for executing a Maven build.
func (c *CLI) runCommand() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run <goal>...",
		Short: "Run Maven goals in the sandbox",
		Long: `Run Maven goals against an isolated classpath.

Goals run in order. Options are passed with a single dash and properties as
-Dkey[=value]. Unless --bare is given, properties that disable sanity checks,
coverage, commit-id and enforcer plugins are added, and tests run in a single
fork in file system order.`,
		Example: `  mvnbox run clean install -C ./my-project -o B -D skipTests
  mvnbox run verify -D maven.test.failure.ignore=true --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := buildSpec(args, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.dryRun {
				printArgs(out, sandbox.NewExecutor(nil, nil, sandbox.WithLogger(c.Logger)).Args(spec))
				return nil
			}

			if _, ok := runner.Get(); !ok {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				exec, cleanup, err := c.newExecutor(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer cleanup()
				runner.SetIfAbsent(func() runner.Runner { return exec })
			}

			dir, _ := spec.WorkingDirectory()
			prog := newProgress(c.Logger)
			if err := runner.Execute(cmd.Context(), spec); err != nil {
				printError(out, "Build failed in %s", dir)
				return err
			}
			prog.done("Build finished")
			printSuccess(out, "%s", strings.Join(spec.Goals(), " "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "working directory (default current directory)")
	cmd.Flags().StringSliceVarP(&opts.options, "option", "o", nil, "maven option without leading dash (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.defines, "define", "D", nil, "property key[=value] (repeatable)")
	cmd.Flags().BoolVar(&opts.bare, "bare", false, "do not add the default properties")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the maven arguments without running")

	return cmd
}

// buildSpec assembles a build spec from command line input.
func buildSpec(goals []string, opts runOptions) (*buildspec.BuildSpec, error) {
	spec := buildspec.New()
	if opts.bare {
		spec = buildspec.NewBare()
	}

	dir := opts.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "get working directory")
		}
		dir = wd
	}
	if err := spec.SetWorkingDirectory(dir); err != nil {
		return nil, err
	}
	if err := spec.AddGoals(goals...); err != nil {
		return nil, err
	}
	if err := spec.AddOptions(opts.options...); err != nil {
		return nil, err
	}
	for _, d := range opts.defines {
		key, value, hasValue := strings.Cut(d, "=")
		var err error
		if hasValue {
			err = spec.SetPropertyValue(key, value)
		} else {
			err = spec.SetProperty(key, nil)
		}
		if err != nil {
			return nil, err
		}
	}
	return spec, nil
}
