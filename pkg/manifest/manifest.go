// Package manifest reads Egg.toml package manifests.
//
// An egg manifest declares the package identity and its dependencies, each
// pointing at a git repository or a local directory:
//
//	[package]
//	name = "AmazingTool"
//	version = "0.1.0"
//
//	[dependencies.CoolCollections]
//	git = "https://github.com/Kiiyya/CoolCollections"
//	ref = "main"            # optional branch, tag, or commit
//
//	[dependencies.Scratch]
//	path = "../scratch"
//
// Dependencies keep their declaration order from the file; that order is the
// deterministic tie-breaker everywhere downstream.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Kiiyya/lair/pkg/errors"
)

// Filename is the well-known manifest file name at a package root.
const Filename = "Egg.toml"

// Dependency is one declared dependency edge: a package name together with
// the source to obtain it from.
type Dependency struct {
	Name   string
	Source Source
}

// Manifest is the in-memory representation of a parsed Egg.toml.
// Instances are consumed read-only after parsing.
type Manifest struct {
	// Name identifies the package. Case-sensitive, unique within one
	// resolved graph.
	Name string

	// Version is the declared semantic version, e.g. "0.1.0".
	Version string

	// Dependencies in declaration order.
	Dependencies []Dependency
}

// Dependency returns the declared dependency with the given name and true,
// or a zero Dependency and false if not declared.
func (m *Manifest) Dependency(name string) (Dependency, bool) {
	for _, d := range m.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// DependsOn reports whether the manifest declares a dependency on name.
func (m *Manifest) DependsOn(name string) bool {
	_, ok := m.Dependency(name)
	return ok
}

type rawManifest struct {
	Package      rawPackage               `toml:"package"`
	Dependencies map[string]rawDependency `toml:"dependencies"`
}

type rawPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type rawDependency struct {
	Git  string `toml:"git"`
	Ref  string `toml:"ref"`
	Path string `toml:"path"`
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "no %s at %s", Filename, filepath.Dir(path))
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "failed to read %s", path)
	}
	return Parse(data)
}

// LoadDir reads the manifest from its well-known location under a package
// root directory.
func LoadDir(dir string) (*Manifest, error) {
	return Load(filepath.Join(dir, Filename))
}

// Parse decodes TOML manifest data and validates it.
//
// Dependency declaration order is recovered from the TOML key order, since
// Go maps do not preserve it.
func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "malformed %s", Filename)
	}

	if raw.Package.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "missing package.name")
	}
	if strings.Contains(raw.Package.Name, ".") {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "package name %q must not contain dots", raw.Package.Name)
	}

	m := &Manifest{
		Name:    raw.Package.Name,
		Version: raw.Package.Version,
	}

	for _, name := range dependencyOrder(md) {
		dep := raw.Dependencies[name]
		src, err := depSource(name, dep)
		if err != nil {
			return nil, err
		}
		m.Dependencies = append(m.Dependencies, Dependency{Name: name, Source: src})
	}

	return m, nil
}

// dependencyOrder extracts dependency names in file declaration order from
// the decoder metadata.
func dependencyOrder(md toml.MetaData) []string {
	var names []string
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		parts := []string(key)
		if len(parts) >= 2 && parts[0] == "dependencies" && !seen[parts[1]] {
			seen[parts[1]] = true
			names = append(names, parts[1])
		}
	}
	return names
}

func depSource(name string, dep rawDependency) (Source, error) {
	switch {
	case dep.Git != "" && dep.Path != "":
		return nil, errors.New(errors.ErrCodeInvalidSource, "dependency %q declares both git and path", name)
	case dep.Git != "":
		return GitSource{URL: dep.Git, Ref: dep.Ref}, nil
	case dep.Path != "":
		if dep.Ref != "" {
			return nil, errors.New(errors.ErrCodeInvalidSource, "dependency %q: ref is only valid with git sources", name)
		}
		return LocalPath{Path: dep.Path}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidSource, "dependency %q declares neither git nor path", name)
	}
}
