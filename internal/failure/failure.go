// Package failure defines the error taxonomy shared by resolution, installation and
// orchestration, and maps it onto process exit statuses.
//
// Every concrete error unwraps to one of the sentinel errors so callers can classify a
// failure with errors.Is without knowing the concrete type.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks bad input: an unknown name, an invalid manifest or flag.
	ErrConfiguration = errors.New("configuration error")
	// ErrFetch marks a failed clone, checkout or source preparation.
	ErrFetch = errors.New("fetch failed")
	// ErrArchive marks a missing, corrupt or unextractable archive.
	ErrArchive = errors.New("archive extraction failed")
	// ErrStage marks a configure, build or install process that exited non-zero.
	ErrStage = errors.New("stage failed")
	// ErrEnvironment marks a host state that does not match what the pipeline expects.
	ErrEnvironment = errors.New("environment inconsistency")
)

// Exit statuses reported by the command line.
const (
	ExitOK            = 0
	ExitExecution     = 1
	ExitConfiguration = 2
)

// Stage names one step of a command sequence.
type Stage string

const (
	StageConfigure Stage = "configure"
	StageBuild     Stage = "build"
	StageInstall   Stage = "install"
)

type (
	// ConfigurationError reports a selection or manifest problem found before any work starts.
	ConfigurationError struct {
		Registry string // "tools", "libraries" or empty when not registry related
		Name     string
		Reason   string
	}

	// FetchError reports a failed source acquisition for Name.
	FetchError struct {
		Name    string
		Command []string // failing argv, empty when no process was involved
		Err     error
	}

	// ArchiveError reports a failed archive extraction for Name.
	ArchiveError struct {
		Name string
		Path string
		Err  error
	}

	// EnvironmentError reports a directory change that did not land where expected.
	EnvironmentError struct {
		Name string
		Want string
		Got  string
	}

	// StageError reports a stage process that exited non-zero.
	// Phase narrows a folded build+install stage down to "build" or "install" when the
	// build tool's output made that observable.
	StageError struct {
		Name     string
		Stage    Stage
		Phase    Stage
		Args     []string
		ExitCode int
		Err      error
	}
)

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Registry != "" {
		fmt.Fprintf(&b, " in %s", e.Registry)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, ": %q", e.Name)
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s failed", e.Name)
	if len(e.Command) > 0 {
		msg += fmt.Sprintf(" (command: %s)", strings.Join(e.Command, " "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

func (e *ArchiveError) Error() string {
	msg := fmt.Sprintf("extract %s from %s failed", e.Name, e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ArchiveError) Unwrap() []error { return []error{ErrArchive, e.Err} }

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("environment inconsistency for %s: working directory is %q, expected %q", e.Name, e.Got, e.Want)
}

func (e *EnvironmentError) Unwrap() error { return ErrEnvironment }

func (e *StageError) Error() string {
	stage := string(e.Stage)
	if e.Phase != "" && e.Phase != e.Stage {
		stage = fmt.Sprintf("%s (%s phase)", e.Stage, e.Phase)
	}
	msg := fmt.Sprintf("%s: %s stage failed", e.Name, stage)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" (command: %s)", strings.Join(e.Args, " "))
	}
	if e.Err != nil && e.ExitCode <= 0 {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StageError) Unwrap() []error { return []error{ErrStage, e.Err} }

// ExitStatus maps an error returned by a run onto the process exit status.
func ExitStatus(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	default:
		return ExitExecution
	}
}
