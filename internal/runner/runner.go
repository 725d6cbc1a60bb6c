// Package runner is the process boundary: an argument vector goes in, an exit status comes
// out, and the child's stdout/stderr pass through to the operator unfiltered.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"dep-bootstrap/internal/logger"
)

// Cmd describes one external process invocation.
type Cmd struct {
	Args []string // Args[0] is the program
	Dir  string   // working directory, empty for the current one
	Env  []string // extra KEY=VALUE pairs on top of the inherited environment

	// Observe, when set, receives a copy of the child's combined output while it is
	// still forwarded to the operator.
	Observe io.Writer
}

// String renders the command the way it is logged.
func (c Cmd) String() string { return strings.Join(c.Args, " ") }

// Runner executes external processes synchronously.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) error
}

// ExitError reports a process that ran and exited with a non-zero status.
type ExitError struct {
	Args []string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", strings.Join(e.Args, " "), e.Code)
}

// ExitCode returns the exit status carried by err, or -1 when err does not come from a
// process that ran to completion (e.g. the binary was not found).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}

// Exec runs commands with os/exec.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Option configures Exec.
type Option func(*Exec)

// WithOutput redirects the forwarded stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Exec) {
		e.Stdout = stdout
		e.Stderr = stderr
	}
}

// New returns an Exec forwarding to the process's own stdout and stderr.
func New(opts ...Option) *Exec {
	e := &Exec{Stdout: os.Stdout, Stderr: os.Stderr}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exec) Run(ctx context.Context, c Cmd) error {
	if len(c.Args) == 0 {
		return errors.New("runner: empty command")
	}
	logger.Info("[INFO] Execute command: %s\n", c)
	if c.Dir != "" {
		logger.Debug("[DEBUG] Working directory: %s\n", c.Dir)
	}

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if c.Observe != nil {
		cmd.Stdout = io.MultiWriter(e.Stdout, c.Observe)
		cmd.Stderr = io.MultiWriter(e.Stderr, c.Observe)
	}

	err := cmd.Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Args: c.Args, Code: ee.ExitCode()}
	}
	return err
}
