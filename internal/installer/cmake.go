package installer

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"dep-bootstrap/internal/resource"
	"dep-bootstrap/internal/runner"
)

// CMake builds a tree with the configure/build-install convention of CMake:
// an out-of-source build directory, an install prefix and a parallel build of the
// install target.
type CMake struct {
	tree resource.SourceTree
	cfg  BuildConfig
}

// NewCMake binds a CMake installer to tree. The configuration is validated and copied.
func NewCMake(tree resource.SourceTree, cfg BuildConfig) (*CMake, error) {
	norm, err := cfg.normalize()
	if err != nil {
		return nil, fmt.Errorf("cmake installer for %s: %w", tree.Name, err)
	}
	return &CMake{tree: tree, cfg: norm}, nil
}

func (c *CMake) Tree() resource.SourceTree { return c.tree }

// Config returns the normalized build configuration.
func (c *CMake) Config() BuildConfig {
	cfg := c.cfg
	cfg.ExtraOptions = slices.Clone(cfg.ExtraOptions)
	return cfg
}

// Sequence derives the configure and folded build+install commands.
// Extra options come first so the derived flags win when a recipe duplicates them.
func (c *CMake) Sequence() CommandSequence {
	cfg := c.cfg
	bt := string(cfg.BuildType)

	configure := []string{cfg.Tool}
	configure = append(configure, cfg.ExtraOptions...)
	if cfg.Generator != "" {
		configure = append(configure, "-G", cfg.Generator)
	}
	configure = append(configure,
		"-B"+cfg.ConfigDir,
		c.tree.SourcePath,
		"-DCMAKE_BUILD_TYPE="+bt,
		"-DCMAKE_INSTALL_PREFIX="+cfg.InstallPrefix,
	)

	install := []string{
		cfg.Tool,
		"--build", cfg.ConfigDir,
		"--parallel", strconv.Itoa(cfg.Parallel),
		"--target", "install",
		"--config", bt,
	}

	return CommandSequence{Configure: configure, Install: install, InstallBuilds: true}
}

// Run executes the sequence with r.
func (c *CMake) Run(ctx context.Context, r runner.Runner) error {
	return Run(ctx, r, c)
}
