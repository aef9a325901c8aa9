// Package cli implements the mvnbox command-line interface.
package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mvnbox/pkg/buildinfo"
	"github.com/matzehuels/mvnbox/pkg/config"
	"github.com/matzehuels/mvnbox/pkg/integrations/maven"
	redislock "github.com/matzehuels/mvnbox/pkg/lock/redis"
	"github.com/matzehuels/mvnbox/pkg/sandbox"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "mvnbox"

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
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "mvnbox runs Maven builds in an isolated sandbox",
		Long:         `mvnbox runs Maven builds against an isolated classpath, resolves module versions from build classpaths and lists published versions from Maven Central.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/mvnbox/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.envCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.ConfigPath)
}

// newFactory builds the sandbox environment factory described by cfg.
func (c *CLI) newFactory(cfg config.Config) (*sandbox.Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var rt *sandbox.Runtime
	if cfg.Maven.JavaHome != "" {
		r, err := sandbox.DetectRuntime(cfg.Maven.JavaHome)
		if err != nil {
			return nil, err
		}
		rt = r
	}
	f := sandbox.NewFactory(cfg.SearchRoots(), rt)
	f.Logger = c.Logger
	return f, nil
}

// newExecutor wires a sandbox executor from cfg. The returned cleanup
// releases the lock client, if any.
func (c *CLI) newExecutor(ctx context.Context, cfg config.Config) (*sandbox.Executor, func(), error) {
	factory, err := c.newFactory(cfg)
	if err != nil {
		return nil, nil, err
	}

	entry := &sandbox.ProcessEntryPoint{
		Java:      cfg.Maven.Java,
		MainClass: cfg.Maven.MainClass,
		MavenHome: cfg.Maven.Home,
		JVMArgs:   cfg.Maven.JVMArgs,
	}
	// Legacy runtimes have no parent in the environment, so point at
	// their binary directly.
	if entry.Java == "" && factory.Runtime != nil && factory.Runtime.Major < 9 {
		entry.Java = filepath.Join(factory.Runtime.Home, "bin", "java")
	}

	opts := []sandbox.Option{
		sandbox.WithLogger(c.Logger),
		sandbox.WithLockTTL(cfg.Lock.TTL.Duration),
	}
	cleanup := func() {}
	if cfg.Lock.RedisAddr != "" {
		locker, err := redislock.Dial(ctx, cfg.Lock.RedisAddr, cfg.Lock.Prefix)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using distributed build lock", "addr", cfg.Lock.RedisAddr)
		opts = append(opts, sandbox.WithLocker(locker, ""))
		cleanup = func() { locker.Close() }
	}
	return sandbox.NewExecutor(factory, entry, opts...), cleanup, nil
}

func (c *CLI) newCatalog(cfg config.Config) (*maven.Catalog, error) {
	return maven.NewCatalog(cfg.Cache.TTL.Duration)
}
