package sandbox

import (
	"os"
	"sync/atomic"
)

// ProjectBaseDirEnv is the environment variable Maven reads as the
// multi-module project root.
const ProjectBaseDirEnv = "MAVEN_PROJECTBASEDIR"

var activeEnv atomic.Pointer[Environment]

// ActiveEnvironment returns the environment of the build currently running
// in this process, or nil.
func ActiveEnvironment() *Environment {
	return activeEnv.Load()
}

// ambient is process state overridden for the duration of one build.
type ambient struct {
	baseDir    string
	hadBaseDir bool
	env        *Environment
	stdin      *os.File
	devNull    *os.File
}

// enterAmbient records the current process state and overrides it for a
// build in workDir. The returned ambient must be restored.
func enterAmbient(workDir string, env *Environment) (*ambient, error) {
	a := &ambient{stdin: os.Stdin, env: activeEnv.Load()}
	a.baseDir, a.hadBaseDir = os.LookupEnv(ProjectBaseDirEnv)

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return nil, err
	}
	if err := os.Setenv(ProjectBaseDirEnv, workDir); err != nil {
		devNull.Close()
		return nil, err
	}
	a.devNull = devNull
	os.Stdin = devNull
	activeEnv.Store(env)
	return a, nil
}

// restore puts back everything enterAmbient changed. The environment
// variable is removed if it did not exist before.
func (a *ambient) restore() error {
	os.Stdin = a.stdin
	activeEnv.Store(a.env)

	var err error
	if a.hadBaseDir {
		err = os.Setenv(ProjectBaseDirEnv, a.baseDir)
	} else {
		err = os.Unsetenv(ProjectBaseDirEnv)
	}
	if cerr := a.devNull.Close(); err == nil {
		err = cerr
	}
	return err
}
