package bootstrap

import (
	"path/filepath"
)

// DefaultRoot is the build root used when none is configured, relative to the project root.
const DefaultRoot = "prebuild"

// Layout addresses the on-disk areas shared by every recipe. All of them live under Root:
//
//	<root>/source/<name>   source cache, one directory per name
//	<root>/config/<name>   out-of-source build directory, one per name
//	<root>/install         shared install prefix
type Layout struct {
	ProjectRoot string
	Root        string
}

// NewLayout anchors root at projectRoot when it is relative. An empty root means DefaultRoot.
func NewLayout(projectRoot, root string) (Layout, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return Layout{}, err
	}
	if root == "" {
		root = DefaultRoot
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(abs, root)
	}
	return Layout{ProjectRoot: abs, Root: filepath.Clean(root)}, nil
}

func (l Layout) SourceDir() string  { return filepath.Join(l.Root, "source") }
func (l Layout) ConfigDir() string  { return filepath.Join(l.Root, "config") }
func (l Layout) InstallDir() string { return filepath.Join(l.Root, "install") }

// SourceFor is the source cache directory owned by name.
func (l Layout) SourceFor(name string) string { return filepath.Join(l.SourceDir(), name) }

// ConfigFor is the build directory owned by name.
func (l Layout) ConfigFor(name string) string { return filepath.Join(l.ConfigDir(), name) }
