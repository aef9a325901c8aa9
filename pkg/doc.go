// Package pkg provides the libraries behind mvnbox.
//
// # Overview
//
// mvnbox runs Maven builds against an isolated classpath. The pkg directory
// is organized into these areas:
//
//  1. [buildspec] - Build descriptions (goals, options, properties, directory)
//  2. [sandbox] - Environment discovery and serialized build execution
//  3. [runner] - Registry of the active build runner
//  4. [version] - Module version resolution from build classpaths
//  5. [integrations/maven] - Published versions from Maven Central
//  6. [lock/redis] - Cross-process build lock
//  7. [observability] - Build, cache and HTTP hooks with a Prometheus backend
//
// Supporting packages: [errors] (coded errors), [config] (TOML config),
// [cache] (content hashing and memoization), [httputil] (file cache),
// [pom] (pom.xml reading) and [buildinfo] (release metadata).
//
// # Quick Start
//
// Run a build in a directory:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/mvnbox/pkg/buildspec"
//	    "github.com/matzehuels/mvnbox/pkg/runner"
//	    "github.com/matzehuels/mvnbox/pkg/sandbox"
//	)
//
//	factory := sandbox.NewFactory([]string{"/opt/maven/lib"}, nil)
//	runner.Set(sandbox.NewExecutor(factory, &sandbox.ProcessEntryPoint{}))
//
//	spec := buildspec.New()
//	spec.SetWorkingDirectory("./my-project")
//	spec.AddGoals("clean", "install")
//	err := runner.Execute(context.Background(), spec)
//
// Resolve the version of a module on a classpath:
//
//	v, err := version.Resolve(ctx, "maven-core", []version.ClasspathEntry{
//	    {Path: "/m2/maven-core-3.9.6.jar"},
//	})
package pkg
