// Package resource turns declared sources (git repositories, source archives) into source
// trees on disk.
//
// Every descriptor resolves into <root>/<name>, where root is the shared source cache. A
// failed resolution yields a nil *SourceTree and an error from the failure package; a tree is
// only returned when its source path exists and is a directory.
package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"dep-bootstrap/internal/runner"
)

// SourceTree is the resolved, on-disk result of a Descriptor.
type SourceTree struct {
	Name       string
	SourcePath string // buildable project directory, i.e. <root>/<name>/<subpath>
}

// Env carries what resolution needs from its caller.
type Env struct {
	// Root is the source cache directory; each descriptor owns Root/<name>.
	Root string
	// ProjectRoot anchors relative archive paths.
	ProjectRoot string
	// Runner launches git and friends.
	Runner runner.Runner
}

// Descriptor declares where a source comes from and how to obtain it.
type Descriptor interface {
	// Name is the unique identifier and on-disk directory name.
	Name() string
	// Kind is a short label for listings ("git", "archive").
	Kind() string
	// Resolve produces the source tree, fetching or extracting as needed.
	Resolve(ctx context.Context, env Env) (*SourceTree, error)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]*$`)

// ValidateName reports whether name can be used as a registry key and directory name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name %q is not filesystem safe (allowed: letters, digits, '.', '_', '+', '-')", name)
	}
	return nil
}

// validateSubpath rejects subpaths that would leave the resolved root.
func validateSubpath(subpath string) error {
	if subpath == "" {
		return nil
	}
	if filepath.IsAbs(subpath) {
		return fmt.Errorf("subpath %q must be relative", subpath)
	}
	clean := filepath.Clean(subpath)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("subpath %q leaves the source directory", subpath)
	}
	return nil
}

// newTree builds the SourceTree for a resolved root, checking that the buildable
// subdirectory really exists.
func newTree(name, dir, subpath string) (*SourceTree, error) {
	path := dir
	if subpath != "" {
		path = filepath.Join(dir, filepath.FromSlash(subpath))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("source path %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", path)
	}
	return &SourceTree{Name: name, SourcePath: path}, nil
}
