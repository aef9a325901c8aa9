package sandbox

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/matzehuels/mvnbox/pkg/errors"
)

var testModule = Module{ID: "org.apache.maven:maven-core", Marker: "org/apache/maven/DefaultMaven.class"}

func writeJar(t *testing.T, path string, entries ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		if _, err := zw.Create(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestModule_ArtifactID(t *testing.T) {
	if got := testModule.ArtifactID(); got != "maven-core" {
		t.Errorf("ArtifactID() = %q", got)
	}
	if got := (Module{ID: "bare"}).ArtifactID(); got != "bare" {
		t.Errorf("ArtifactID() = %q", got)
	}
}

func TestFactory_Archive(t *testing.T) {
	root := t.TempDir()
	writeJar(t, filepath.Join(root, "lib", "maven-core-3.9.6-sources.jar"), testModule.Marker)
	writeJar(t, filepath.Join(root, "lib", "maven-core-3.8.0.jar"), "META-INF/MANIFEST.MF")
	want := filepath.Join(root, "lib", "maven-core-3.9.6.jar")
	writeJar(t, want, "META-INF/MANIFEST.MF", testModule.Marker)

	f := &Factory{Roots: []string{root}, Modules: []Module{testModule}}
	env, err := f.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(env.Locations) != 1 {
		t.Fatalf("locations = %d, want 1", len(env.Locations))
	}
	loc := env.Locations[0]
	if loc.Path != want || !loc.Archive {
		t.Errorf("location = %+v, want archive %s", loc, want)
	}
}

func writeMarker(t *testing.T, dir string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(testModule.Marker))
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFactory_Directory(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string) string
	}{
		{
			name: "marker in directory",
			setup: func(t *testing.T, root string) string {
				dir := mkdir(t, root, "maven-core")
				writeMarker(t, dir)
				mkdir(t, dir, "target", "classes")
				return dir
			},
		},
		{
			name: "marker in build output",
			setup: func(t *testing.T, root string) string {
				out := mkdir(t, root, "maven-core", "target", "classes")
				writeMarker(t, out)
				return out
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			want := tt.setup(t, root)
			f := &Factory{Roots: []string{root}, Modules: []Module{testModule}}
			env, err := f.Build(context.Background())
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got := env.Locations[0].Path; got != want {
				t.Errorf("path = %s, want %s", got, want)
			}
		})
	}
}

func TestFactory_DirectoryWithoutMarker(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
	}{
		{"empty directory", func(t *testing.T, root string) {
			mkdir(t, root, "maven-core")
		}},
		{"empty build output", func(t *testing.T, root string) {
			mkdir(t, root, "maven-core", "target", "classes")
		}},
		{"unrelated classes", func(t *testing.T, root string) {
			out := mkdir(t, root, "maven-core", "target", "classes", "org", "example")
			os.WriteFile(filepath.Join(out, "Other.class"), nil, 0o644)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)
			f := &Factory{Roots: []string{root}, Modules: []Module{testModule}}
			if _, err := f.Build(context.Background()); !errors.Is(err, errors.ErrCodeEnvironment) {
				t.Errorf("Build() error = %v, want ENVIRONMENT", err)
			}
		})
	}
}

func TestFactory_SkipsRootWithoutMarker(t *testing.T) {
	stray, good := t.TempDir(), t.TempDir()
	mkdir(t, stray, "maven-core")
	want := mkdir(t, good, "maven-core")
	writeMarker(t, want)

	f := &Factory{Roots: []string{stray, good}, Modules: []Module{testModule}}
	env, err := f.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := env.Locations[0].Path; got != want {
		t.Errorf("path = %s, want %s", got, want)
	}
}

func TestFactory_Missing(t *testing.T) {
	f := &Factory{Roots: []string{t.TempDir()}, Modules: []Module{testModule}}
	if _, err := f.Build(context.Background()); !errors.Is(err, errors.ErrCodeEnvironment) {
		t.Errorf("Build() error = %v, want ENVIRONMENT", err)
	}

	f = &Factory{Modules: []Module{testModule}}
	if _, err := f.Build(context.Background()); !errors.Is(err, errors.ErrCodeNotConfigured) {
		t.Errorf("Build() without roots error = %v, want NOT_CONFIGURED", err)
	}
}

func TestFactory_Parent(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, mkdir(t, root, "maven-core"))

	for _, tt := range []struct {
		rt         *Runtime
		wantParent bool
	}{
		{nil, false},
		{&Runtime{Major: 8}, false},
		{&Runtime{Major: 9}, true},
		{&Runtime{Major: 17}, true},
	} {
		f := &Factory{Roots: []string{root}, Modules: []Module{testModule}, Runtime: tt.rt}
		env, err := f.Build(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if (env.Parent != nil) != tt.wantParent {
			t.Errorf("runtime %+v: parent = %v, want %v", tt.rt, env.Parent, tt.wantParent)
		}
	}
}

func TestNewFactory_Modules(t *testing.T) {
	if got := len(NewFactory(nil, &Runtime{Major: 8}).Modules); got != len(Modules) {
		t.Errorf("legacy modules = %d, want %d", got, len(Modules))
	}
	if got := len(NewFactory(nil, &Runtime{Major: 11}).Modules); got != len(Modules)+len(ModernRuntimeModules) {
		t.Errorf("modern modules = %d", got)
	}
	if len(NewFactory(nil, &Runtime{Major: 21}).Modules) == len(Modules) {
		t.Error("base table must not be mutated")
	}
	if got := len(NewFactory(nil, nil).Modules); got != len(Modules) {
		t.Errorf("base table was mutated: %d", got)
	}
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		release string
		major   int
		version string
	}{
		{"IMPLEMENTOR=\"Eclipse Adoptium\"\nJAVA_VERSION=\"17.0.2\"\n", 17, "17.0.2"},
		{"JAVA_VERSION=\"1.8.0_292\"\nOS_NAME=\"Linux\"\n", 8, "1.8.0_292"},
		{"JAVA_VERSION=\"21\"\n", 21, "21"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			home := t.TempDir()
			os.WriteFile(filepath.Join(home, "release"), []byte(tt.release), 0o644)
			rt, err := DetectRuntime(home)
			if err != nil {
				t.Fatalf("DetectRuntime() error = %v", err)
			}
			if rt.Major != tt.major || rt.Version != tt.version || rt.Home != home {
				t.Errorf("DetectRuntime() = %+v", rt)
			}
		})
	}

	if _, err := DetectRuntime(""); !errors.Is(err, errors.ErrCodeNotConfigured) {
		t.Errorf("empty home error = %v", err)
	}
	if _, err := DetectRuntime(t.TempDir()); !errors.Is(err, errors.ErrCodeEnvironment) {
		t.Errorf("missing release error = %v", err)
	}
	home := t.TempDir()
	os.WriteFile(filepath.Join(home, "release"), []byte("OS_NAME=\"Linux\"\n"), 0o644)
	if _, err := DetectRuntime(home); !errors.Is(err, errors.ErrCodeEnvironment) {
		t.Errorf("release without version error = %v", err)
	}
}

func TestEnvironment_Paths(t *testing.T) {
	env := &Environment{Locations: []Location{
		{Path: "/m2/maven-core-3.9.6.jar", Archive: true},
		{Path: "/src/maven-model/target/classes"},
	}}
	want := "/m2/maven-core-3.9.6.jar" + string(os.PathListSeparator) + "/src/maven-model/target/classes"
	if got := env.Classpath(); got != want {
		t.Errorf("Classpath() = %q, want %q", got, want)
	}
	if runtime.GOOS == "windows" {
		return
	}
	urls := env.URLs()
	if urls[0] != "file:///m2/maven-core-3.9.6.jar" || urls[1] != "file:///src/maven-model/target/classes/" {
		t.Errorf("URLs() = %v", urls)
	}
}

func TestProcessEntryPoint(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the java binary")
	}
	dir := t.TempDir()
	java := filepath.Join(dir, "java")
	script := "#!/bin/sh\necho \"$@\"\necho oops >&2\nexit 3\n"
	if err := os.WriteFile(java, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ProjectBaseDirEnv, dir)

	var stdout, stderr bytes.Buffer
	p := &ProcessEntryPoint{Java: java, JVMArgs: []string{"-Xmx512m"}}
	env := &Environment{Locations: []Location{{Path: "/lib/a.jar", Archive: true}}}
	code, err := p.Invoke(context.Background(), env, Invocation{
		Args: []string{"clean", "-B"}, WorkDir: dir, Stdout: &stdout, Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	want := "-Xmx512m -classpath /lib/a.jar -Dmaven.multiModuleProjectDirectory=" + dir + " " + DefaultMainClass + " clean -B"
	if got := strings.TrimSpace(stdout.String()); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
	if strings.TrimSpace(stderr.String()) != "oops" {
		t.Errorf("stderr = %q", stderr.String())
	}

	p.Java = filepath.Join(dir, "missing")
	if code, err := p.Invoke(context.Background(), env, Invocation{WorkDir: dir, Stdout: &stdout, Stderr: &stderr}); err == nil || code != -1 {
		t.Errorf("missing binary: code = %d, err = %v", code, err)
	}
}

func TestProcessEntryPoint_JavaBinary(t *testing.T) {
	p := &ProcessEntryPoint{}
	if got := p.java(&Environment{}); got != "java" {
		t.Errorf("java() = %q, want PATH lookup", got)
	}
	if got := p.java(&Environment{Parent: &Runtime{Home: "/jdk"}}); got != filepath.Join("/jdk", "bin", "java") {
		t.Errorf("java() = %q", got)
	}
}
