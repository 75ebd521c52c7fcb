package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Kiiyya/lair/pkg/errors"
)

func TestParse(t *testing.T) {
	data := []byte(`
[package]
name = "AmazingTool"
version = "0.1.0"

[dependencies.CoolCollections]
git = "https://github.com/Kiiyya/CoolCollections"

[dependencies.NotJson]
git = "https://github.com/Kiiyya/NotJson"
ref = "v0.2.0"

[dependencies.Scratch]
path = "../scratch"
`)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if m.Name != "AmazingTool" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.Version != "0.1.0" {
		t.Errorf("Version = %q", m.Version)
	}
	if len(m.Dependencies) != 3 {
		t.Fatalf("got %d dependencies, want 3", len(m.Dependencies))
	}

	// Declaration order survives the map round-trip.
	wantOrder := []string{"CoolCollections", "NotJson", "Scratch"}
	for i, want := range wantOrder {
		if m.Dependencies[i].Name != want {
			t.Errorf("Dependencies[%d] = %q, want %q", i, m.Dependencies[i].Name, want)
		}
	}

	git, ok := m.Dependencies[1].Source.(GitSource)
	if !ok {
		t.Fatalf("NotJson source is %T, want GitSource", m.Dependencies[1].Source)
	}
	if git.Ref != "v0.2.0" {
		t.Errorf("NotJson ref = %q", git.Ref)
	}

	local, ok := m.Dependencies[2].Source.(LocalPath)
	if !ok {
		t.Fatalf("Scratch source is %T, want LocalPath", m.Dependencies[2].Source)
	}
	if local.Path != "../scratch" {
		t.Errorf("Scratch path = %q", local.Path)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantCode errors.Code
	}{
		{
			name:     "MalformedTOML",
			data:     "[package\nname=",
			wantCode: errors.ErrCodeInvalidManifest,
		},
		{
			name:     "MissingName",
			data:     "[package]\nversion = \"0.1.0\"\n",
			wantCode: errors.ErrCodeInvalidManifest,
		},
		{
			name:     "DottedName",
			data:     "[package]\nname = \"My.Pkg\"\n",
			wantCode: errors.ErrCodeInvalidManifest,
		},
		{
			name: "GitAndPath",
			data: `[package]
name = "X"
[dependencies.Y]
git = "https://example.com/y"
path = "../y"
`,
			wantCode: errors.ErrCodeInvalidSource,
		},
		{
			name: "RefWithoutGit",
			data: `[package]
name = "X"
[dependencies.Y]
path = "../y"
ref = "main"
`,
			wantCode: errors.ErrCodeInvalidSource,
		},
		{
			name: "EmptyDependency",
			data: `[package]
name = "X"
[dependencies.Y]
`,
			wantCode: errors.ErrCodeInvalidSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse should fail")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error code = %q, want %q (err: %v)", errors.GetCode(err), tt.wantCode, err)
			}
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	data := "[package]\nname = \"OnDisk\"\nversion = \"1.0.0\"\n"
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir error: %v", err)
	}
	if m.Name != "OnDisk" {
		t.Errorf("Name = %q", m.Name)
	}

	_, err = LoadDir(t.TempDir())
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("missing manifest error code = %q, want INVALID_PATH", errors.GetCode(err))
	}
}

func TestSourceKey(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"GitNoRef", GitSource{URL: "https://example.com/r"}, "git:https://example.com/r"},
		{"GitWithRef", GitSource{URL: "https://example.com/r", Ref: "v1"}, "git:https://example.com/r@v1"},
		{"Local", LocalPath{Path: "../x"}, "path:../x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.Key(); got != tt.want {
				t.Errorf("Key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDependencyLookup(t *testing.T) {
	m := &Manifest{
		Name: "Pkg",
		Dependencies: []Dependency{
			{Name: "A", Source: GitSource{URL: "https://example.com/a"}},
		},
	}

	if !m.DependsOn("A") {
		t.Error("DependsOn(A) = false")
	}
	if m.DependsOn("B") {
		t.Error("DependsOn(B) = true")
	}
	if d, ok := m.Dependency("A"); !ok || d.Name != "A" {
		t.Errorf("Dependency(A) = %+v, %v", d, ok)
	}
}
