// Package version resolves the version of a dependency module from a
// classpath.
//
// # Overview
//
// A classpath is an ordered list of [ClasspathEntry] values, each either a
// packaged archive (a JAR) or a source folder. [Resolver.Resolve] finds the
// entry that belongs to a module and derives its version:
//
//   - Archive "<module>-<anything>.jar" (sources and javadoc JARs excluded):
//     the Implementation-Version attribute of its manifest.
//   - Source folder ending in "<module>/src/main/java": the version declared
//     in the module root's pom.xml, inherited from <parent> if absent.
//
// Archives win over source folders. Archive names are matched by prefix
// only, so "maven-model" also matches "maven-model-builder-4.0.0.jar"; the
// first matching entry in classpath order wins.
//
// # Results
//
// A nil version with a nil error means the module was not found or declares
// no version. An error with code [errors.ErrCodeResolution] means an entry
// matched but its content could not be read or parsed.
//
// Versions are parsed as semantic versions. Maven four-part versions such
// as "1.0.0.RELEASE" are not semantic versions and resolve to a
// RESOLUTION error.
//
// # Caching
//
// Results, including resolution errors, are memoized per absolute entry path
// for the lifetime of the Resolver. Concurrent callers for the same path
// share one computation and receive the identical *semver.Version.
package version

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mvnbox/pkg/cache"
	"github.com/matzehuels/mvnbox/pkg/errors"
	"github.com/matzehuels/mvnbox/pkg/observability"
	"github.com/matzehuels/mvnbox/pkg/pom"
)

// SourceFolder is the conventional main Java sources folder, relative to a
// module root.
const SourceFolder = "src/main/java"

// cacheKeyType labels cache events emitted through observability hooks.
const cacheKeyType = "version"

// ClasspathEntry is one element of a module's compiled classpath.
type ClasspathEntry struct {
	Path        string `json:"path"`
	IsDirectory bool   `json:"isDirectory"`
}

// Resolver resolves module versions and memoizes the results.
// A Resolver is safe for concurrent use.
type Resolver struct {
	memo   cache.Memo[string, *semver.Version]
	open   func(path string) (*zip.ReadCloser, error)
	logger *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver with an empty cache.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		open:   zip.OpenReader,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the process-wide resolver used by [Resolve].
var Default = NewResolver()

// Resolve resolves module on the classpath using [Default].
func Resolve(ctx context.Context, module string, classpath []ClasspathEntry) (*semver.Version, error) {
	return Default.Resolve(ctx, module, classpath)
}

// Resolve returns the version of module as found on classpath.
// Blank module names and empty classpaths resolve to nil without error.
func (r *Resolver) Resolve(ctx context.Context, module string, classpath []ClasspathEntry) (*semver.Version, error) {
	module = strings.TrimSpace(module)
	if module == "" || len(classpath) == 0 {
		return nil, nil
	}

	if entry, ok := findArchive(module, classpath); ok {
		return r.cached(ctx, entry.Path, r.archiveVersion)
	}
	if entry, ok := findSourceFolder(module, classpath); ok {
		return r.cached(ctx, entry.Path, r.sourceVersion)
	}
	r.logger.Debug("module not on classpath", "module", module, "entries", len(classpath))
	return nil, nil
}

func (r *Resolver) cached(ctx context.Context, path string, compute func(string) (*semver.Version, error)) (*semver.Version, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "resolve path %s", path)
	}
	v, hit, err := r.memo.Get(abs, func() (*semver.Version, error) {
		return compute(abs)
	})
	if hit {
		observability.Cache().OnCacheHit(ctx, cacheKeyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}
	return v, err
}

func (r *Resolver) archiveVersion(path string) (*semver.Version, error) {
	zr, err := r.open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "open archive %s", path)
	}
	defer zr.Close()

	attrs, err := readManifest(&zr.Reader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "read manifest of %s", path)
	}
	raw, ok := attrs[ImplementationVersion]
	if !ok || raw == "" {
		r.logger.Debug("archive declares no version", "path", path)
		return nil, nil
	}
	return parse(raw, path)
}

func (r *Resolver) sourceVersion(path string) (*semver.Version, error) {
	root, ok := moduleRoot(path)
	if !ok {
		return nil, nil
	}
	doc, err := pom.ParseFile(filepath.Join(root, pom.FileName))
	if os.IsNotExist(err) {
		r.logger.Debug("no build descriptor at module root", "root", root)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "parse %s", filepath.Join(root, pom.FileName))
	}
	raw := pom.Version(doc)
	if raw == "" {
		return nil, nil
	}
	return parse(raw, root)
}

func parse(raw, origin string) (*semver.Version, error) {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "invalid version %q in %s", raw, origin)
	}
	return v, nil
}

// archivePattern matches "<module>-*.jar". A longer module sharing the
// prefix matches too; classpath order decides.
func archivePattern(module string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(module) + `-.*\.jar$`)
}

func findArchive(module string, classpath []ClasspathEntry) (ClasspathEntry, bool) {
	re := archivePattern(module)
	for _, e := range classpath {
		if e.IsDirectory {
			continue
		}
		name := filepath.Base(e.Path)
		if strings.HasSuffix(name, "-sources.jar") || strings.HasSuffix(name, "-javadoc.jar") {
			continue
		}
		if re.MatchString(name) {
			return e, true
		}
	}
	return ClasspathEntry{}, false
}

func findSourceFolder(module string, classpath []ClasspathEntry) (ClasspathEntry, bool) {
	suffix := "/" + module + "/" + SourceFolder
	for _, e := range classpath {
		if !e.IsDirectory {
			continue
		}
		p := strings.TrimSuffix(filepath.ToSlash(e.Path), "/")
		if strings.HasSuffix(p, suffix) || p == module+"/"+SourceFolder {
			return e, true
		}
	}
	return ClasspathEntry{}, false
}

// moduleRoot walks three directories up from a src/main/java folder.
// It reports false if the walk reaches the file system root early.
func moduleRoot(sourceFolder string) (string, bool) {
	dir := filepath.Clean(sourceFolder)
	for range strings.Count(SourceFolder, "/") + 1 {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
	return dir, true
}
