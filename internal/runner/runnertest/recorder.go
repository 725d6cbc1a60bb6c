// Package runnertest provides a recording Runner for tests that must not launch processes.
package runnertest

import (
	"context"
	"slices"
	"strings"
	"sync"

	"dep-bootstrap/internal/runner"
)

// Recorder records every command it is asked to run.
// Handler, when set, decides the outcome of each call; otherwise every call succeeds.
type Recorder struct {
	Handler func(ctx context.Context, cmd runner.Cmd) error

	mu   sync.Mutex
	cmds []runner.Cmd
}

func (r *Recorder) Run(ctx context.Context, cmd runner.Cmd) error {
	r.mu.Lock()
	cmd.Args = slices.Clone(cmd.Args)
	r.cmds = append(r.cmds, cmd)
	r.mu.Unlock()
	if r.Handler != nil {
		return r.Handler(ctx, cmd)
	}
	return nil
}

// Commands returns a copy of the recorded commands in call order.
func (r *Recorder) Commands() []runner.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.cmds)
}

// Args returns the recorded argument vectors in call order.
func (r *Recorder) Args() [][]string {
	cmds := r.Commands()
	out := make([][]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Args
	}
	return out
}

// Count reports how many commands were run.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cmds)
}

// FailWhen returns a Handler that fails with exit code 1 for any command whose joined
// argv contains substr.
func FailWhen(substr string) func(context.Context, runner.Cmd) error {
	return func(_ context.Context, cmd runner.Cmd) error {
		if strings.Contains(strings.Join(cmd.Args, " "), substr) {
			return &runner.ExitError{Args: cmd.Args, Code: 1}
		}
		return nil
	}
}
