// Package sandbox runs Maven builds inside an isolated classpath.
//
// # Environment
//
// A [Factory] locates every library of the Maven command line ([Modules])
// under a set of search roots and returns an [Environment]: the ordered
// module locations and, on Java 9 and newer, the platform runtime that
// the sandbox delegates to. Each library is identified by a marker class
// file, so a jar or directory is only accepted if it actually contains the
// marker.
//
// # Execution
//
// [Executor.Execute] renders a [buildspec.BuildSpec] into arguments and runs
// them through an [EntryPoint]. While the build runs, three pieces of
// process state are overridden and restored afterwards, including on error:
//
//   - the MAVEN_PROJECTBASEDIR environment variable (set to the working
//     directory, removed again if it was absent),
//   - the active environment reported by [ActiveEnvironment],
//   - os.Stdin, replaced by the null device so the build never waits for
//     input.
//
// Because this state is process-wide, builds are serialized with a package
// mutex. An optional [Locker] extends the exclusion across processes.
//
// Captured output is logged between [BeginMarker] and [EndMarker] lines,
// at info level on success and error level on failure. Failures are
// returned as a single EXECUTION error; a non-zero exit code unwraps to
// [*ExitError].
package sandbox
