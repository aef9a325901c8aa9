package sandbox

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultMainClass is the Maven command line entry point.
const DefaultMainClass = "org.apache.maven.cli.MavenCli"

// Invocation is one call of the wrapped tool.
type Invocation struct {
	Args    []string
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
}

// EntryPoint runs the wrapped tool inside an environment and returns its
// exit code. A non-nil error means the tool could not be invoked at all.
type EntryPoint interface {
	Invoke(ctx context.Context, env *Environment, inv Invocation) (int, error)
}

// ProcessEntryPoint launches a JVM with the environment's classpath.
type ProcessEntryPoint struct {
	// Java is the java binary. Empty means <Parent.Home>/bin/java, or
	// "java" from PATH when the environment has no parent runtime.
	Java      string
	MainClass string
	MavenHome string
	JVMArgs   []string
}

// Invoke runs the main class and waits for it to exit. Stdin is the
// process stdin at the time of the call.
func (p *ProcessEntryPoint) Invoke(ctx context.Context, env *Environment, inv Invocation) (int, error) {
	main := p.MainClass
	if main == "" {
		main = DefaultMainClass
	}

	args := append([]string(nil), p.JVMArgs...)
	args = append(args,
		"-classpath", env.Classpath(),
		"-Dmaven.multiModuleProjectDirectory="+os.Getenv(ProjectBaseDirEnv),
	)
	if p.MavenHome != "" {
		args = append(args, "-Dmaven.home="+p.MavenHome)
	}
	args = append(args, main)
	args = append(args, inv.Args...)

	cmd := exec.CommandContext(ctx, p.java(env), args...) //nolint:gosec
	cmd.Dir = inv.WorkDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if stderrors.As(err, &ee) {
		return ee.ExitCode(), nil
	}
	return -1, err
}

func (p *ProcessEntryPoint) java(env *Environment) string {
	if p.Java != "" {
		return p.Java
	}
	if env != nil && env.Parent != nil {
		return filepath.Join(env.Parent.Home, "bin", "java")
	}
	return "java"
}
