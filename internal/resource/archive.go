package resource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dep-bootstrap/internal/archive"
	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/logger"
)

// Archive is a source shipped as a packaged archive.
//
// Archives are re-extracted on every resolution: they are immutable and cheap to unpack, and
// unlike a clone there is nothing to update incrementally.
type Archive struct {
	ID      string
	Path    string // absolute, or relative to Env.ProjectRoot
	Subpath string

	// URL, when set, is downloaded to Path if the file is missing.
	URL string
	// SHA256, when set, must match the archive before it is extracted.
	SHA256 string
}

var _ Descriptor = (*Archive)(nil)

func (a *Archive) Name() string { return a.ID }

func (a *Archive) Kind() string { return "archive" }

// Validate checks the descriptor without touching the filesystem.
func (a *Archive) Validate() error {
	if err := ValidateName(a.ID); err != nil {
		return err
	}
	if a.Path == "" {
		return fmt.Errorf("archive source %s: path must be set", a.ID)
	}
	if _, err := archive.DetectFormat(a.Path); err != nil {
		return err
	}
	return validateSubpath(a.Subpath)
}

// ArchivePath returns the archive location, anchoring relative paths at projectRoot.
func (a *Archive) ArchivePath(projectRoot string) string {
	if filepath.IsAbs(a.Path) || projectRoot == "" {
		return a.Path
	}
	return filepath.Join(projectRoot, a.Path)
}

func (a *Archive) Resolve(ctx context.Context, env Env) (*SourceTree, error) {
	path := a.ArchivePath(env.ProjectRoot)
	fail := func(err error) (*SourceTree, error) {
		return nil, &failure.ArchiveError{Name: a.ID, Path: path, Err: err}
	}
	if err := a.Validate(); err != nil {
		return fail(err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && a.URL != "" {
		logger.Info("[INFO] Downloading %s from %s\n", a.ID, a.URL)
		if err := archive.Download(ctx, a.URL, path); err != nil {
			return fail(err)
		}
	} else if err != nil {
		return fail(err)
	}

	if a.SHA256 != "" {
		if err := archive.VerifySHA256(path, a.SHA256); err != nil {
			return fail(err)
		}
	}

	dest := filepath.Join(env.Root, a.ID)
	logger.Info("[INFO] Extracting %s to %s\n", path, dest)
	if err := archive.Extract(path, dest); err != nil {
		return fail(err)
	}

	tree, err := newTree(a.ID, dest, a.Subpath)
	if err != nil {
		return fail(err)
	}
	return tree, nil
}
