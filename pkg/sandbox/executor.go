package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mvnbox/pkg/buildspec"
	"github.com/matzehuels/mvnbox/pkg/errors"
	"github.com/matzehuels/mvnbox/pkg/observability"
)

const (
	// ExtClassPathProperty is forced to empty unless the build spec sets it.
	ExtClassPathProperty = "maven.ext.class.path"

	// BeginMarker and EndMarker delimit captured build output in the log.
	BeginMarker = "MVN-BEGIN"
	EndMarker   = "MVN-END"

	// DefaultLockKey names the cross-process build lock.
	DefaultLockKey = "mvnbox:build"

	defaultLockTTL = 30 * time.Minute
)

// debugOptions are appended when the logger is at debug level.
var debugOptions = []string{"-X", "-e"}

// execMu serializes builds in this process. A build mutates the process
// environment, os.Stdin and the active environment.
var execMu sync.Mutex

// UnlockFunc releases a lock acquired from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker provides mutual exclusion across processes.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// ExitError reports a build that ran and exited non-zero.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("maven exited with status %d", e.Code)
}

// Executor runs build specs in a sandbox environment. It implements
// runner.Runner.
type Executor struct {
	builder Builder
	entry   EntryPoint
	logger  *log.Logger
	locker  Locker
	lockKey string
	lockTTL time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger that receives build output.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithLocker adds a cross-process lock around every build.
func WithLocker(l Locker, key string) Option {
	return func(e *Executor) {
		e.locker = l
		if key != "" {
			e.lockKey = key
		}
	}
}

// WithLockTTL bounds how long a crashed holder can block other processes.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Executor) {
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// NewExecutor creates an executor that builds its environment from builder
// and runs the tool through entry.
func NewExecutor(builder Builder, entry EntryPoint, opts ...Option) *Executor {
	e := &Executor{
		builder: builder,
		entry:   entry,
		logger:  log.Default(),
		lockKey: DefaultLockKey,
		lockTTL: defaultLockTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Args renders the argument list passed to the tool for spec.
func (e *Executor) Args(spec *buildspec.BuildSpec) []string {
	args := spec.Args()
	if _, ok := spec.Property(ExtClassPathProperty); !ok {
		args = append(args, "-D"+ExtClassPathProperty+"=")
	}
	if e.logger.GetLevel() <= log.DebugLevel {
		args = append(args, debugOptions...)
	}
	return args
}

// Execute runs spec to completion. Only one Execute runs at a time in a
// process. Process state changed for the build is restored before return.
func (e *Executor) Execute(ctx context.Context, spec *buildspec.BuildSpec) (err error) {
	if spec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "build spec is nil")
	}
	workDir, ok := spec.WorkingDirectory()
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "working directory not set")
	}

	execMu.Lock()
	defer execMu.Unlock()

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, e.lockKey, e.lockTTL)
		if err != nil {
			return errors.Wrap(errors.ErrCodeExecution, err, "acquire build lock")
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				e.logger.Warn("release build lock", "error", uerr)
			}
		}()
	}

	start := time.Now()
	code := -1
	observability.Build().OnBuildStart(ctx, workDir, spec.Goals())
	defer func() {
		observability.Build().OnBuildComplete(ctx, workDir, code, time.Since(start), err)
	}()

	env, err := e.builder.Build(ctx)
	if err != nil {
		return err
	}

	args := e.Args(spec)
	e.logger.Debug("running maven", "dir", workDir, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	code, invokeErr := e.invoke(ctx, env, Invocation{
		Args:    args,
		WorkDir: workDir,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})

	if invokeErr == nil && code == 0 {
		e.logBlock(log.InfoLevel, stdout.String())
		return nil
	}
	e.logBlock(log.ErrorLevel, stderr.String())
	cause := invokeErr
	if cause == nil {
		cause = &ExitError{Code: code}
	}
	return errors.Wrap(errors.ErrCodeExecution, cause, "maven build failed in %s", workDir)
}

// invoke runs the entry point with the ambient process state overridden.
// The state is restored even if the entry point panics.
func (e *Executor) invoke(ctx context.Context, env *Environment, inv Invocation) (code int, err error) {
	amb, err := enterAmbient(inv.WorkDir, env)
	if err != nil {
		return -1, err
	}
	defer func() {
		if rerr := amb.restore(); rerr != nil {
			e.logger.Warn("restore process state", "error", rerr)
		}
	}()
	return e.entry.Invoke(ctx, env, inv)
}

func (e *Executor) logBlock(level log.Level, out string) {
	e.logger.Log(level, BeginMarker+"\n"+strings.TrimRight(out, "\n")+"\n"+EndMarker)
}
