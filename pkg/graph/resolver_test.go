package graph

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/Kiiyya/lair/pkg/manifest"
	"github.com/Kiiyya/lair/pkg/source"
)

// stubFetcher serves manifests from memory and records which packages were
// fetched, so tests can assert fail-fast behavior.
type stubFetcher struct {
	manifests map[string]*manifest.Manifest // keyed by package name
	failures  map[string]error
	fetched   []string
}

func (s *stubFetcher) Fetch(ctx context.Context, name string, src manifest.Source) (*source.Checkout, error) {
	s.fetched = append(s.fetched, name)
	if err, ok := s.failures[name]; ok {
		return nil, err
	}
	if _, ok := s.manifests[name]; !ok {
		return nil, &source.Error{Kind: source.NotFound, Name: name, Source: src}
	}
	return &source.Checkout{Root: "/deps/" + name, Revision: "rev-" + name}, nil
}

// builder wires a Builder whose parse step reads from the stub instead of
// disk.
func builder(s *stubFetcher) *Builder {
	return &Builder{
		Fetcher: s,
		Parse: func(root string) (*manifest.Manifest, error) {
			name := strings.TrimPrefix(root, "/deps/")
			if m, ok := s.manifests[name]; ok {
				return m, nil
			}
			return nil, errors.New("no manifest at " + root)
		},
	}
}

func gitDep(name string) manifest.Dependency {
	return manifest.Dependency{
		Name:   name,
		Source: manifest.GitSource{URL: "https://example.com/" + name},
	}
}

func TestResolve(t *testing.T) {
	// AmazingTool -> {CoolCollections, NotJson}; NotJson -> CoolCollections.
	fetcher := &stubFetcher{manifests: map[string]*manifest.Manifest{
		"CoolCollections": {Name: "CoolCollections", Version: "0.1.0"},
		"NotJson": {
			Name:         "NotJson",
			Version:      "0.2.0",
			Dependencies: []manifest.Dependency{gitDep("CoolCollections")},
		},
	}}
	root := &manifest.Manifest{
		Name:         "AmazingTool",
		Dependencies: []manifest.Dependency{gitDep("CoolCollections"), gitDep("NotJson")},
	}

	g, err := builder(fetcher).Resolve(context.Background(), root, "/work/AmazingTool")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}
	if g.Root().Name() != "AmazingTool" {
		t.Errorf("Root = %q", g.Root().Name())
	}

	// CoolCollections is shared: fetched exactly once.
	count := 0
	for _, name := range fetcher.fetched {
		if name == "CoolCollections" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("CoolCollections fetched %d times, want 1", count)
	}

	nj, ok := g.Package("NotJson")
	if !ok {
		t.Fatal("NotJson not in graph")
	}
	if nj.Revision != "rev-NotJson" {
		t.Errorf("NotJson revision = %q", nj.Revision)
	}
	if !slices.Equal(nj.Deps, []string{"CoolCollections"}) {
		t.Errorf("NotJson deps = %v", nj.Deps)
	}
}

func TestResolveCycle(t *testing.T) {
	// C -> A -> B -> A. Both edges to A carry the same descriptor, so the
	// second hit is a cycle, not a conflict.
	fetcher := &stubFetcher{manifests: map[string]*manifest.Manifest{
		"A": {Name: "A", Dependencies: []manifest.Dependency{gitDep("B")}},
		"B": {Name: "B", Dependencies: []manifest.Dependency{gitDep("A")}},
	}}
	root := &manifest.Manifest{Name: "C", Dependencies: []manifest.Dependency{gitDep("A")}}

	_, err := builder(fetcher).Resolve(context.Background(), root, "/work/C")
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("Resolve error = %v, want *CycleError", err)
	}
	want := []string{"C", "A", "B", "A"}
	if !slices.Equal(ce.Path, want) {
		t.Errorf("cycle path = %v, want %v", ce.Path, want)
	}
}

func TestResolveCycleThroughRoot(t *testing.T) {
	// A -> B -> A where A is the workspace root itself. This reports a
	// cycle, not a conflict, even though the edge back to A names a git
	// source while the root was never fetched.
	fetcher := &stubFetcher{manifests: map[string]*manifest.Manifest{
		"B": {Name: "B", Dependencies: []manifest.Dependency{gitDep("A")}},
	}}
	root := &manifest.Manifest{Name: "A", Dependencies: []manifest.Dependency{gitDep("B")}}

	_, err := builder(fetcher).Resolve(context.Background(), root, "/work/A")
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("Resolve error = %v, want *CycleError", err)
	}
	want := []string{"A", "B", "A"}
	if !slices.Equal(ce.Path, want) {
		t.Errorf("cycle path = %v, want %v", ce.Path, want)
	}
}

func TestResolveConflictFailsFast(t *testing.T) {
	// Root depends on X (git at urlA) and on Mid, which declares X at a
	// different URL. A third dependency Later is declared after the
	// conflicting edge and must never be fetched.
	fetcher := &stubFetcher{manifests: map[string]*manifest.Manifest{
		"X": {Name: "X"},
		"Mid": {Name: "Mid", Dependencies: []manifest.Dependency{
			{Name: "X", Source: manifest.GitSource{URL: "https://example.com/other-x"}},
			gitDep("Later"),
		}},
		"Later": {Name: "Later"},
	}}
	root := &manifest.Manifest{
		Name:         "Root",
		Dependencies: []manifest.Dependency{gitDep("X"), gitDep("Mid")},
	}

	_, err := builder(fetcher).Resolve(context.Background(), root, "/work/Root")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Resolve error = %v, want *ConflictError", err)
	}
	if conflict.Name != "X" {
		t.Errorf("conflict name = %q, want X", conflict.Name)
	}
	if slices.Contains(fetcher.fetched, "Later") {
		t.Error("construction must abort before fetching dependencies declared after the conflict")
	}
}

func TestResolveSameSourceIsShared(t *testing.T) {
	fetcher := &stubFetcher{manifests: map[string]*manifest.Manifest{
		"X":   {Name: "X"},
		"Mid": {Name: "Mid", Dependencies: []manifest.Dependency{gitDep("X")}},
	}}
	root := &manifest.Manifest{
		Name:         "Root",
		Dependencies: []manifest.Dependency{gitDep("X"), gitDep("Mid")},
	}

	g, err := builder(fetcher).Resolve(context.Background(), root, "/work/Root")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}
}

func TestResolveFetchFailure(t *testing.T) {
	fetchErr := &source.Error{
		Kind:   source.NotFound,
		Name:   "Gone",
		Source: manifest.GitSource{URL: "https://example.com/Gone"},
	}
	fetcher := &stubFetcher{
		manifests: map[string]*manifest.Manifest{},
		failures:  map[string]error{"Gone": fetchErr},
	}
	root := &manifest.Manifest{Name: "Root", Dependencies: []manifest.Dependency{gitDep("Gone")}}

	_, err := builder(fetcher).Resolve(context.Background(), root, "/work/Root")
	var ff *FetchFailedError
	if !errors.As(err, &ff) {
		t.Fatalf("Resolve error = %v, want *FetchFailedError", err)
	}
	if ff.Name != "Gone" {
		t.Errorf("Name = %q", ff.Name)
	}
	var se *source.Error
	if !errors.As(err, &se) || se.Kind != source.NotFound {
		t.Errorf("cause should unwrap to the fetch error, got %v", err)
	}
}

func TestResolveManifestNameMismatch(t *testing.T) {
	fetcher := &stubFetcher{manifests: map[string]*manifest.Manifest{
		"Actual": {Name: "Actual"},
	}}
	// The edge claims "Claimed" but the fetched tree's manifest says "Actual".
	fetcher.manifests["Claimed"] = &manifest.Manifest{Name: "Actual"}
	root := &manifest.Manifest{Name: "Root", Dependencies: []manifest.Dependency{gitDep("Claimed")}}

	_, err := builder(fetcher).Resolve(context.Background(), root, "/work/Root")
	if err == nil {
		t.Fatal("Resolve should fail on manifest name mismatch")
	}
}

func TestGraphDAG(t *testing.T) {
	fetcher := &stubFetcher{manifests: map[string]*manifest.Manifest{
		"CoolCollections": {Name: "CoolCollections"},
		"NotJson":         {Name: "NotJson", Dependencies: []manifest.Dependency{gitDep("CoolCollections")}},
	}}
	root := &manifest.Manifest{
		Name:         "AmazingTool",
		Dependencies: []manifest.Dependency{gitDep("CoolCollections"), gitDep("NotJson")},
	}

	g, err := builder(fetcher).Resolve(context.Background(), root, "/work/AmazingTool")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	d := g.DAG()
	if d.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", d.NodeCount())
	}
	if d.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", d.EdgeCount())
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate error: %v", err)
	}
	if got := d.Children("AmazingTool"); !slices.Equal(got, []string{"CoolCollections", "NotJson"}) {
		t.Errorf("Children(AmazingTool) = %v", got)
	}
}
