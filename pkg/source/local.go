package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Kiiyya/lair/pkg/manifest"
)

// LocalRevision is the placeholder revision for local path sources.
// A directory on disk has no pinned version.
const LocalRevision = "local"

// localFetcher resolves local path sources relative to a base directory.
type localFetcher struct {
	base string
}

func (l *localFetcher) fetch(ctx context.Context, name string, src manifest.LocalPath) (*Checkout, error) {
	path := src.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.base, path)
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, newError(NotFound, name, src, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newError(NotFound, name, src, err)
		}
		return nil, newError(Transport, name, src, err)
	}
	if !info.IsDir() {
		return nil, newError(NotFound, name, src, nil)
	}

	return &Checkout{Root: path, Revision: LocalRevision}, nil
}
