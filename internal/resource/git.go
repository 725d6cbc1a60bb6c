package resource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/logger"
	"dep-bootstrap/internal/runner"
)

// Git is a source obtained by cloning a repository at a branch or tag.
//
// The first resolution performs a shallow clone; later ones reuse the clone directory and only
// check the ref out, which keeps repeated runs cheap.
type Git struct {
	ID         string // registry name and clone directory name
	URI        string
	Ref        string // branch or tag
	Subpath    string // buildable project relative to the clone root
	Submodules bool

	// GitPath overrides the git executable, "git" when empty.
	GitPath string
}

var _ Descriptor = (*Git)(nil)

func (g *Git) Name() string { return g.ID }

func (g *Git) Kind() string { return "git" }

func (g *Git) git() string {
	if g.GitPath != "" {
		return g.GitPath
	}
	return "git"
}

// Validate checks the descriptor without touching the filesystem.
func (g *Git) Validate() error {
	if err := ValidateName(g.ID); err != nil {
		return err
	}
	if g.URI == "" || g.Ref == "" {
		return fmt.Errorf("git source %s: repository URI and ref must both be set", g.ID)
	}
	return validateSubpath(g.Subpath)
}

func (g *Git) Resolve(ctx context.Context, env Env) (*SourceTree, error) {
	if err := g.Validate(); err != nil {
		return nil, &failure.FetchError{Name: g.ID, Err: err}
	}

	dir := filepath.Join(env.Root, g.ID)
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := g.clone(ctx, env, dir); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, &failure.FetchError{Name: g.ID, Err: err}
	case !info.IsDir():
		return nil, &failure.FetchError{Name: g.ID, Err: fmt.Errorf("%s exists and is not a directory", dir)}
	default:
		logger.Info("[INFO] %s already cloned, checking out %s\n", g.ID, g.Ref)
		if err := inDir(g.ID, dir, func() error { return g.update(ctx, env, dir) }); err != nil {
			return nil, err
		}
	}

	tree, err := newTree(g.ID, dir, g.Subpath)
	if err != nil {
		return nil, &failure.FetchError{Name: g.ID, Err: err}
	}
	return tree, nil
}

func (g *Git) clone(ctx context.Context, env Env, dir string) error {
	if err := os.MkdirAll(env.Root, 0o755); err != nil {
		return &failure.FetchError{Name: g.ID, Err: err}
	}
	args := []string{g.git(), "clone", "--depth=1", "-b", g.Ref}
	if g.Submodules {
		args = append(args, "--recurse-submodules", "--shallow-submodules")
	}
	args = append(args, g.URI, dir)

	logger.Info("[INFO] Cloning %s@%s from %s\n", g.ID, g.Ref, g.URI)
	if err := env.Runner.Run(ctx, runner.Cmd{Args: args}); err != nil {
		return &failure.FetchError{Name: g.ID, Command: args, Err: err}
	}
	return nil
}

// update brings an existing clone to Ref. A shallow clone only knows the ref it was cloned
// at, so a failed checkout falls back to fetching the ref and checking out FETCH_HEAD.
func (g *Git) update(ctx context.Context, env Env, dir string) error {
	run := func(args ...string) ([]string, error) {
		argv := append([]string{g.git()}, args...)
		return argv, env.Runner.Run(ctx, runner.Cmd{Args: argv, Dir: dir})
	}

	if _, err := run("checkout", g.Ref); err != nil {
		logger.Warn("[WARN] Checkout of %s failed for %s, fetching it\n", g.Ref, g.ID)
		if argv, err := run("fetch", "--depth", "1", "origin", g.Ref); err != nil {
			return &failure.FetchError{Name: g.ID, Command: argv, Err: err}
		}
		if argv, err := run("checkout", "FETCH_HEAD"); err != nil {
			return &failure.FetchError{Name: g.ID, Command: argv, Err: err}
		}
	}

	if g.Submodules {
		if argv, err := run("submodule", "update", "--init", "--recursive", "--depth", "1"); err != nil {
			return &failure.FetchError{Name: g.ID, Command: argv, Err: err}
		}
	}
	return nil
}
