package pom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const childPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>example-parent</artifactId>
    <version>9.0.0</version>
  </parent>
  <artifactId>example-core</artifactId>
  <dependencies>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13</version>
    </dependency>
  </dependencies>
</project>`

func parse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestAccessors(t *testing.T) {
	tests := []struct {
		name       string
		pom        string
		artifactID string
		groupID    string
		version    string
		parentID   string
	}{
		{
			name:       "inherits from parent",
			pom:        childPOM,
			artifactID: "example-core",
			groupID:    "org.example",
			version:    "9.0.0",
			parentID:   "example-parent",
		},
		{
			name: "own values win",
			pom: `<project>
  <parent><groupId>p.group</groupId><artifactId>p</artifactId><version>1.0</version></parent>
  <groupId>own.group</groupId>
  <artifactId>own</artifactId>
  <version>2.0</version>
</project>`,
			artifactID: "own",
			groupID:    "own.group",
			version:    "2.0",
			parentID:   "p",
		},
		{
			name: "blank own value falls back",
			pom: `<project>
  <parent><version>3.1.0</version></parent>
  <version>   </version>
</project>`,
			version: "3.1.0",
		},
		{
			name:       "no parent",
			pom:        `<project><artifactId>solo</artifactId></project>`,
			artifactID: "solo",
		},
		{
			name: "nested tags are not direct children",
			pom: `<project>
  <dependencies><dependency><version>5.0</version></dependency></dependencies>
</project>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.pom)
			if got := ArtifactID(doc); got != tt.artifactID {
				t.Errorf("ArtifactID() = %q, want %q", got, tt.artifactID)
			}
			if got := GroupID(doc); got != tt.groupID {
				t.Errorf("GroupID() = %q, want %q", got, tt.groupID)
			}
			if got := Version(doc); got != tt.version {
				t.Errorf("Version() = %q, want %q", got, tt.version)
			}
			if got := ParentArtifactID(doc); got != tt.parentID {
				t.Errorf("ParentArtifactID() = %q, want %q", got, tt.parentID)
			}
		})
	}
}

func TestArtifactID_NeverInherited(t *testing.T) {
	doc := parse(t, `<project>
  <parent><artifactId>the-parent</artifactId></parent>
</project>`)
	if got := ArtifactID(doc); got != "" {
		t.Errorf("ArtifactID() = %q, want empty", got)
	}
	if got := ParentArtifactID(doc); got != "the-parent" {
		t.Errorf("ParentArtifactID() = %q, want the-parent", got)
	}
}

func TestNilDocument(t *testing.T) {
	for name, fn := range map[string]func(*Document) string{
		"ArtifactID":       ArtifactID,
		"GroupID":          GroupID,
		"Version":          Version,
		"ParentArtifactID": ParentArtifactID,
	} {
		if got := fn(nil); got != "" {
			t.Errorf("%s(nil) = %q, want empty", name, got)
		}
		if got := fn(&Document{}); got != "" {
			t.Errorf("%s(empty document) = %q, want empty", name, got)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"unclosed", "<project><version>1.0</version>"},
		{"mismatched", "<project></parent>"},
		{"two roots", "<a></a><b></b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.in)); err == nil {
				t.Error("Parse() should fail")
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(childPOM), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if doc.Root.Name != "project" {
		t.Errorf("root = %q, want project", doc.Root.Name)
	}
	if len(doc.Root.Child("dependencies").Children) != 1 {
		t.Error("expected one dependency element")
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml")); !os.IsNotExist(err) {
		t.Errorf("ParseFile(missing) error = %v, want not-exist", err)
	}
}
