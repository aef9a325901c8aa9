package sandbox

import (
	"archive/zip"
	"bufio"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mvnbox/pkg/errors"
)

// Module is one library that must be visible inside the sandbox. Marker is
// the path of a class file that proves a location holds the module.
type Module struct {
	ID     string // groupId:artifactId
	Marker string
}

// ArtifactID returns the artifactId part of the module ID.
func (m Module) ArtifactID() string {
	if _, a, ok := strings.Cut(m.ID, ":"); ok {
		return a
	}
	return m.ID
}

// Modules is the base set of libraries the embedded Maven CLI needs.
var Modules = []Module{
	{ID: "org.apache.maven:maven-embedder", Marker: "org/apache/maven/cli/MavenCli.class"},
	{ID: "org.apache.maven:maven-core", Marker: "org/apache/maven/DefaultMaven.class"},
	{ID: "org.apache.maven:maven-model", Marker: "org/apache/maven/model/Model.class"},
	{ID: "org.apache.maven:maven-model-builder", Marker: "org/apache/maven/model/building/ModelBuilder.class"},
	{ID: "org.apache.maven:maven-plugin-api", Marker: "org/apache/maven/plugin/Mojo.class"},
	{ID: "org.apache.maven:maven-settings", Marker: "org/apache/maven/settings/Settings.class"},
	{ID: "org.apache.maven:maven-settings-builder", Marker: "org/apache/maven/settings/building/SettingsBuilder.class"},
	{ID: "org.apache.maven:maven-artifact", Marker: "org/apache/maven/artifact/Artifact.class"},
	{ID: "org.apache.maven:maven-resolver-provider", Marker: "org/apache/maven/repository/internal/MavenRepositorySystemUtils.class"},
	{ID: "org.apache.maven.resolver:maven-resolver-api", Marker: "org/eclipse/aether/RepositorySystem.class"},
	{ID: "org.apache.maven.resolver:maven-resolver-impl", Marker: "org/eclipse/aether/internal/impl/DefaultRepositorySystem.class"},
	{ID: "org.apache.maven.resolver:maven-resolver-spi", Marker: "org/eclipse/aether/spi/connector/RepositoryConnectorFactory.class"},
	{ID: "org.apache.maven.resolver:maven-resolver-util", Marker: "org/eclipse/aether/util/ConfigUtils.class"},
	{ID: "org.apache.maven.shared:maven-shared-utils", Marker: "org/apache/maven/shared/utils/StringUtils.class"},
	{ID: "org.codehaus.plexus:plexus-classworlds", Marker: "org/codehaus/plexus/classworlds/ClassWorld.class"},
	{ID: "org.codehaus.plexus:plexus-utils", Marker: "org/codehaus/plexus/util/StringUtils.class"},
	{ID: "org.codehaus.plexus:plexus-interpolation", Marker: "org/codehaus/plexus/interpolation/Interpolator.class"},
	{ID: "org.eclipse.sisu:org.eclipse.sisu.plexus", Marker: "org/codehaus/plexus/DefaultPlexusContainer.class"},
	{ID: "org.eclipse.sisu:org.eclipse.sisu.inject", Marker: "org/eclipse/sisu/space/ClassSpace.class"},
	{ID: "com.google.inject:guice", Marker: "com/google/inject/Injector.class"},
	{ID: "com.google.guava:guava", Marker: "com/google/common/collect/ImmutableList.class"},
	{ID: "javax.inject:javax.inject", Marker: "javax/inject/Inject.class"},
	{ID: "org.slf4j:slf4j-api", Marker: "org/slf4j/Logger.class"},
	{ID: "commons-cli:commons-cli", Marker: "org/apache/commons/cli/CommandLine.class"},
}

// ModernRuntimeModules are added on Java 11 and newer, where the JDK no
// longer ships them.
var ModernRuntimeModules = []Module{
	{ID: "javax.annotation:javax.annotation-api", Marker: "javax/annotation/PostConstruct.class"},
	{ID: "javax.xml.bind:jaxb-api", Marker: "javax/xml/bind/JAXBContext.class"},
}

const (
	buildOutputDir = "target/classes"
	releaseFile    = "release"

	// platformLoaderSince is the first Java major version with a shared
	// platform module layer.
	platformLoaderSince = 9
	modernRuntimeSince  = 11
)

// Runtime describes the host Java installation.
type Runtime struct {
	Home    string
	Version string
	Major   int
}

// DetectRuntime reads JAVA_VERSION from the release file of a Java home.
func DetectRuntime(javaHome string) (*Runtime, error) {
	if strings.TrimSpace(javaHome) == "" {
		return nil, errors.New(errors.ErrCodeNotConfigured, "java home not set")
	}
	f, err := os.Open(filepath.Join(javaHome, releaseFile))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "read java release file")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), "=")
		if !ok || strings.TrimSpace(k) != "JAVA_VERSION" {
			continue
		}
		ver := strings.Trim(strings.TrimSpace(v), `"`)
		major, err := majorVersion(ver)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "parse java version %q", ver)
		}
		return &Runtime{Home: javaHome, Version: ver, Major: major}, nil
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnvironment, err, "read java release file")
	}
	return nil, errors.New(errors.ErrCodeEnvironment, "no JAVA_VERSION in %s", filepath.Join(javaHome, releaseFile))
}

// majorVersion handles both "1.8.0_292" and "17.0.2" numbering.
func majorVersion(v string) (int, error) {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == '.' || r == '_' || r == '-' || r == '+' })
	if len(parts) == 0 {
		return 0, strconv.ErrSyntax
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	if first == 1 && len(parts) > 1 {
		return strconv.Atoi(parts[1])
	}
	return first, nil
}

// Location is where a module was found.
type Location struct {
	Module  Module
	Path    string
	Archive bool
}

// Environment is the set of locations visible to a sandboxed build plus the
// optional platform runtime it delegates to.
type Environment struct {
	Locations []Location
	Parent    *Runtime
}

// URLs returns the locations as file URLs, in module order.
func (e *Environment) URLs() []string {
	urls := make([]string, 0, len(e.Locations))
	for _, l := range e.Locations {
		p := filepath.ToSlash(l.Path)
		if !l.Archive && !strings.HasSuffix(p, "/") {
			p += "/"
		}
		urls = append(urls, (&url.URL{Scheme: "file", Path: p}).String())
	}
	return urls
}

// Classpath joins the locations with the platform list separator.
func (e *Environment) Classpath() string {
	paths := make([]string, 0, len(e.Locations))
	for _, l := range e.Locations {
		paths = append(paths, l.Path)
	}
	return strings.Join(paths, string(os.PathListSeparator))
}

// Builder produces a sandbox environment.
type Builder interface {
	Build(ctx context.Context) (*Environment, error)
}

// Factory locates modules under a set of search roots. Each Build call
// searches again; nothing is cached between calls.
type Factory struct {
	Roots   []string
	Modules []Module
	Runtime *Runtime
	Logger  *log.Logger
}

// NewFactory returns a factory for the default module table, extended with
// [ModernRuntimeModules] when rt is Java 11 or newer.
func NewFactory(roots []string, rt *Runtime) *Factory {
	mods := append([]Module(nil), Modules...)
	if rt != nil && rt.Major >= modernRuntimeSince {
		mods = append(mods, ModernRuntimeModules...)
	}
	return &Factory{Roots: roots, Modules: mods, Runtime: rt, Logger: log.Default()}
}

// Build resolves every module. Any module that cannot be located is an
// environment error.
func (f *Factory) Build(ctx context.Context) (*Environment, error) {
	if len(f.Roots) == 0 {
		return nil, errors.New(errors.ErrCodeNotConfigured, "no module search roots configured")
	}
	env := &Environment{Locations: make([]Location, 0, len(f.Modules))}
	for _, m := range f.Modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loc, err := f.locate(m)
		if err != nil {
			return nil, err
		}
		f.logger().Debug("module located", "module", m.ID, "path", loc.Path)
		env.Locations = append(env.Locations, loc)
	}
	if f.Runtime != nil && f.Runtime.Major >= platformLoaderSince {
		env.Parent = f.Runtime
	}
	return env, nil
}

func (f *Factory) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return log.Default()
}

func (f *Factory) locate(m Module) (Location, error) {
	artifact := m.ArtifactID()
	for _, root := range f.Roots {
		if loc, ok := findArchive(root, artifact, m); ok {
			return loc, nil
		}
		if loc, ok := findDirectory(root, artifact, m); ok {
			return loc, nil
		}
	}
	return Location{}, errors.New(errors.ErrCodeEnvironment,
		"module %s not found (marker %s) under %s", m.ID, m.Marker, strings.Join(f.Roots, ", "))
}

func findArchive(root, artifact string, m Module) (Location, bool) {
	matches, err := doublestar.Glob(os.DirFS(root), "**/"+artifact+"-*.jar")
	if err != nil {
		return Location{}, false
	}
	sort.Strings(matches)
	for _, rel := range matches {
		name := filepath.Base(rel)
		if strings.HasSuffix(name, "-sources.jar") || strings.HasSuffix(name, "-javadoc.jar") {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		if archiveContains(path, m.Marker) {
			return Location{Module: m, Path: path, Archive: true}, true
		}
	}
	return Location{}, false
}

func archiveContains(path, entry string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == entry {
			return true
		}
	}
	return false
}

// findDirectory accepts <root>/<artifact> when it holds the marker, else its
// build output folder when that holds the marker. A directory without the
// marker is never accepted.
func findDirectory(root, artifact string, m Module) (Location, bool) {
	dir := filepath.Join(root, artifact)
	if !isDir(dir) {
		return Location{}, false
	}
	marker := filepath.FromSlash(m.Marker)
	for _, candidate := range []string{dir, filepath.Join(dir, filepath.FromSlash(buildOutputDir))} {
		if exists(filepath.Join(candidate, marker)) {
			return Location{Module: m, Path: candidate}, true
		}
	}
	return Location{}, false
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
