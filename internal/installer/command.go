package installer

import (
	"context"
	"slices"

	"dep-bootstrap/internal/resource"
	"dep-bootstrap/internal/runner"
)

// Command runs stages supplied verbatim, for projects that do not build with CMake.
// Unset stages are skipped.
type Command struct {
	tree resource.SourceTree
	seq  CommandSequence
}

func NewCommand(tree resource.SourceTree, seq CommandSequence) *Command {
	return &Command{
		tree: tree,
		seq: CommandSequence{
			Configure:     slices.Clone(seq.Configure),
			Build:         slices.Clone(seq.Build),
			Install:       slices.Clone(seq.Install),
			InstallBuilds: seq.InstallBuilds,
		},
	}
}

func (c *Command) Tree() resource.SourceTree { return c.tree }

func (c *Command) Sequence() CommandSequence {
	return CommandSequence{
		Configure:     slices.Clone(c.seq.Configure),
		Build:         slices.Clone(c.seq.Build),
		Install:       slices.Clone(c.seq.Install),
		InstallBuilds: c.seq.InstallBuilds,
	}
}

func (c *Command) Run(ctx context.Context, r runner.Runner) error {
	return Run(ctx, r, c)
}
