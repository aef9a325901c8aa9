// Package buildspec describes a single invocation of the wrapped build tool.
//
// # Overview
//
// A [BuildSpec] carries everything needed to run one Maven build: the
// working directory, an ordered set of goals, a set of single-token options
// and an insertion-ordered property map. It has no knowledge of how it is
// executed; see [github.com/matzehuels/mvnbox/pkg/runner] and
// [github.com/matzehuels/mvnbox/pkg/sandbox].
//
// # Defaults
//
// [New] pre-seeds properties that keep the wrapped tool quiet and
// deterministic (see [DefaultProperties]). Callers override them through
// [BuildSpec.SetProperty]. [NewBare] starts with an empty property map.
//
// # Rendering
//
// [BuildSpec.Args] flattens a build spec into the positional argument list
// understood by the build tool:
//
//	[goal...] [-option...] [-Dkey[=value]...]
//
// Goals come first, then options, then properties, each in insertion order.
//
// # Equality
//
// Two specs are equal when their working directory, goals (ordered), options
// (unordered) and properties (ordered) match. [BuildSpec.Hash] is consistent
// with [BuildSpec.Equal].
package buildspec
