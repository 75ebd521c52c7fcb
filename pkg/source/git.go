package source

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Kiiyya/lair/pkg/cache"
	"github.com/Kiiyya/lair/pkg/manifest"
)

// GitRunner executes a git subcommand and returns its combined output.
// It exists so tests can substitute a fake git.
type GitRunner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecGit runs the real git binary.
type ExecGit struct{}

// Run executes `git args...` in dir (empty dir = current directory).
func (ExecGit) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// gitFetcher materializes git sources under a deps directory, one checkout
// per package name.
type gitFetcher struct {
	dir  string
	run  GitRunner
	revs cache.Cache
}

// revEntry is what gets persisted per source key.
type revEntry struct {
	Root     string `json:"root"`
	Revision string `json:"revision"`
}

func (g *gitFetcher) fetch(ctx context.Context, name string, src manifest.GitSource) (*Checkout, error) {
	dest := filepath.Join(g.dir, name)

	// A previous run may already have this checkout. Trust it only if the
	// persisted revision matches what is actually on disk.
	if co := g.cached(ctx, src, dest); co != nil {
		return co, nil
	}

	// The directory is keyed by package name, so a manifest edit can leave
	// a checkout of a different repository here. Drop it rather than hand
	// back the wrong tree.
	if isGitCheckout(dest) && !g.originMatches(ctx, dest, src.URL) {
		if err := os.RemoveAll(dest); err != nil {
			return nil, newError(Transport, name, src, err)
		}
	}

	if !isGitCheckout(dest) {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			return nil, newError(Transport, name, src, err)
		}
		if out, err := g.run.Run(ctx, "", "clone", src.URL, dest); err != nil {
			return nil, newError(classifyClone(out), name, src, err)
		}
	}

	if src.Ref != "" {
		if _, err := g.run.Run(ctx, dest, "checkout", "--detach", src.Ref); err != nil {
			return nil, newError(RefNotFound, name, src, err)
		}
	}

	rev, err := g.run.Run(ctx, dest, "rev-parse", "HEAD")
	if err != nil {
		return nil, newError(Transport, name, src, err)
	}

	co := &Checkout{Root: dest, Revision: strings.TrimSpace(rev)}
	g.remember(ctx, src, co)
	return co, nil
}

// cached returns a previously persisted checkout if it is still valid on disk.
func (g *gitFetcher) cached(ctx context.Context, src manifest.GitSource, dest string) *Checkout {
	data, hit, err := g.revs.Get(ctx, src.Key())
	if err != nil || !hit {
		return nil
	}
	var entry revEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	if entry.Root != dest || !isGitCheckout(dest) {
		return nil
	}
	if !g.originMatches(ctx, dest, src.URL) {
		return nil
	}
	rev, err := g.run.Run(ctx, dest, "rev-parse", "HEAD")
	if err != nil || strings.TrimSpace(rev) != entry.Revision {
		return nil
	}
	return &Checkout{Root: entry.Root, Revision: entry.Revision}
}

// originMatches reports whether the checkout at dir tracks url.
func (g *gitFetcher) originMatches(ctx context.Context, dir, url string) bool {
	out, err := g.run.Run(ctx, dir, "remote", "get-url", "origin")
	return err == nil && strings.TrimSpace(out) == url
}

func (g *gitFetcher) remember(ctx context.Context, src manifest.GitSource, co *Checkout) {
	data, err := json.Marshal(revEntry{Root: co.Root, Revision: co.Revision})
	if err != nil {
		return
	}
	// Persistence failures are non-fatal; the next run just re-fetches.
	_ = g.revs.Set(ctx, src.Key(), data, 0)
}

// classifyClone inspects git's output to distinguish a bad URL from a
// transient transport failure.
func classifyClone(out string) ErrorKind {
	lower := strings.ToLower(out)
	for _, marker := range []string{
		"repository not found",
		"not found",
		"does not exist",
		"could not read from remote repository",
		"authentication failed",
	} {
		if strings.Contains(lower, marker) {
			return NotFound
		}
	}
	return Transport
}

func isGitCheckout(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}
