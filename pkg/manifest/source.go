package manifest

import "fmt"

// Source describes where a dependency's source tree lives and which version
// of it to use. It is a closed set of variants - [GitSource] and [LocalPath] -
// matched exhaustively at the fetcher boundary. New source kinds are added by
// extending this set, not by open-ended polymorphism.
//
// Sources are immutable value types. Two sources are considered identical
// when their Key strings are equal.
type Source interface {
	// Key returns a stable string that uniquely identifies this source,
	// including its version selector. Used for identity comparison and
	// cache keys.
	Key() string

	// String returns a human-readable description for diagnostics.
	String() string

	sealed()
}

// GitSource locates a dependency in a remote git repository.
type GitSource struct {
	// URL of the repository, e.g. "https://github.com/Kiiyya/CoolCollections".
	URL string

	// Ref is an optional branch, tag, or commit. Empty means the remote's
	// default branch.
	Ref string
}

// Key returns the identity string for this git source.
func (s GitSource) Key() string {
	if s.Ref == "" {
		return "git:" + s.URL
	}
	return "git:" + s.URL + "@" + s.Ref
}

// String returns a human-readable description for diagnostics.
func (s GitSource) String() string {
	if s.Ref == "" {
		return s.URL
	}
	return fmt.Sprintf("%s (ref %s)", s.URL, s.Ref)
}

func (GitSource) sealed() {}

// LocalPath locates a dependency in a directory on the local filesystem.
// The path may be relative to the manifest that declares it.
type LocalPath struct {
	Path string
}

// Key returns the identity string for this local source.
func (s LocalPath) Key() string { return "path:" + s.Path }

// String returns a human-readable description for diagnostics.
func (s LocalPath) String() string { return s.Path }

func (LocalPath) sealed() {}
