// Package source resolves dependency sources to local working copies.
//
// A [Fetcher] turns a [manifest.Source] into a checked-out directory plus the
// exact revision that was materialized. Fetching is idempotent: the same
// source descriptor yields the same root and revision within a run (an
// in-process LRU short-circuits repeats) and across runs while the remote
// state is unchanged (existing checkouts are reused).
package source

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Kiiyya/lair/pkg/cache"
	"github.com/Kiiyya/lair/pkg/manifest"
)

// Checkout is a resolved local working copy of a dependency source.
type Checkout struct {
	// Root is the directory containing the package tree, so that
	// Root/Egg.toml exists for well-formed packages.
	Root string

	// Revision pins what was materialized: a commit hash for git sources,
	// or "local" for local paths (a local tree has no pinned revision).
	Revision string
}

// Fetcher resolves a source descriptor to a local checkout.
type Fetcher interface {
	// Fetch materializes the source for the named package. The returned
	// error is a *Error for fetch-classified failures.
	Fetch(ctx context.Context, name string, src manifest.Source) (*Checkout, error)
}

// memoSize bounds the in-run memoization table. Dependency graphs are small;
// this exists to keep repeated descriptors O(1) without unbounded growth.
const memoSize = 256

// Resolver is the standard Fetcher: it dispatches on the source kind and
// memoizes results by source key.
type Resolver struct {
	git   *gitFetcher
	local *localFetcher
	memo  *lru.Cache[string, *Checkout]
}

// Options configures a Resolver.
type Options struct {
	// DepsDir is where git checkouts are placed, one subdirectory per
	// package name (conventionally <root>/build/deps).
	DepsDir string

	// BaseDir anchors relative local paths, normally the directory of the
	// root manifest.
	BaseDir string

	// Revisions optionally persists resolved revisions across runs.
	// Nil disables persistence.
	Revisions cache.Cache

	// Git overrides the git command runner. Nil uses the git binary.
	Git GitRunner
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts Options) *Resolver {
	if opts.Revisions == nil {
		opts.Revisions = cache.NewNullCache()
	}
	if opts.Git == nil {
		opts.Git = ExecGit{}
	}
	memo, _ := lru.New[string, *Checkout](memoSize)
	return &Resolver{
		git:   &gitFetcher{dir: opts.DepsDir, run: opts.Git, revs: cache.NewScoped(opts.Revisions, "git:")},
		local: &localFetcher{base: opts.BaseDir},
		memo:  memo,
	}
}

// Fetch implements Fetcher. The source kinds are a closed set, so the switch
// is exhaustive; a new kind must be handled here.
func (r *Resolver) Fetch(ctx context.Context, name string, src manifest.Source) (*Checkout, error) {
	key := src.Key()
	if co, ok := r.memo.Get(key); ok {
		return co, nil
	}

	var (
		co  *Checkout
		err error
	)
	switch s := src.(type) {
	case manifest.GitSource:
		co, err = r.git.fetch(ctx, name, s)
	case manifest.LocalPath:
		co, err = r.local.fetch(ctx, name, s)
	default:
		return nil, fmt.Errorf("unsupported source kind %T", src)
	}
	if err != nil {
		return nil, err
	}

	r.memo.Add(key, co)
	return co, nil
}

// Ensure Resolver implements Fetcher.
var _ Fetcher = (*Resolver)(nil)
