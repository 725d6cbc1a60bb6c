// Package installer turns a resolved source tree into configure, build and install
// processes and runs them in order.
//
// The two variants share one execution loop (Run) and differ only in how they compute
// their CommandSequence: CMake derives it from conventions, Command takes it verbatim.
package installer

import (
	"context"
	"slices"

	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/logger"
	"dep-bootstrap/internal/resource"
	"dep-bootstrap/internal/runner"
)

// CommandSequence holds the argv of each stage. A nil or empty stage is skipped.
type CommandSequence struct {
	Configure []string
	Build     []string
	Install   []string

	// InstallBuilds marks an Install stage that also drives the build, so a failure in it
	// may come from either phase.
	InstallBuilds bool
}

type step struct {
	stage failure.Stage
	args  []string
}

func (s CommandSequence) steps() []step {
	return []step{
		{failure.StageConfigure, s.Configure},
		{failure.StageBuild, s.Build},
		{failure.StageInstall, s.Install},
	}
}

// Installer is bound to one source tree and knows how to build it.
type Installer interface {
	Tree() resource.SourceTree
	Sequence() CommandSequence
}

// Run executes the installer's stages in order. The first process that fails stops the
// sequence and is reported as a *failure.StageError tagged with its stage.
func Run(ctx context.Context, r runner.Runner, inst Installer) error {
	tree := inst.Tree()
	seq := inst.Sequence()
	for _, st := range seq.steps() {
		if len(st.args) == 0 {
			logger.Debug("[DEBUG] %s: no %s command, skipping\n", tree.Name, st.stage)
			continue
		}

		cmd := runner.Cmd{Args: slices.Clone(st.args), Dir: tree.SourcePath}
		var watch *phaseWatcher
		if st.stage == failure.StageInstall && seq.InstallBuilds {
			watch = &phaseWatcher{}
			cmd.Observe = watch
		}

		logger.Info("[INFO] %s: %s\n", tree.Name, st.stage)
		if err := r.Run(ctx, cmd); err != nil {
			se := &failure.StageError{
				Name:     tree.Name,
				Stage:    st.stage,
				Args:     cmd.Args,
				ExitCode: runner.ExitCode(err),
				Err:      err,
			}
			if watch != nil {
				se.Phase = watch.Phase()
			}
			return se
		}
	}
	return nil
}
