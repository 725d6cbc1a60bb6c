package resource

import (
	"os"
	"path/filepath"

	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/logger"
)

// getwd is swapped in tests to simulate a directory change that did not take effect.
var getwd = os.Getwd

// inDir changes the process working directory to dir for the duration of fn, verifies
// the change actually landed there and always restores the previous directory.
// Not safe for concurrent use: the working directory is process wide.
func inDir(name, dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return &failure.EnvironmentError{Name: name, Want: dir, Got: "<unknown: " + err.Error() + ">"}
	}
	if err := os.Chdir(dir); err != nil {
		return &failure.EnvironmentError{Name: name, Want: dir, Got: prev}
	}
	defer func() {
		if cerr := os.Chdir(prev); cerr != nil && err == nil {
			err = &failure.EnvironmentError{Name: name, Want: prev, Got: dir}
		}
	}()

	cwd, err := getwd()
	if err != nil || !samePath(cwd, dir) {
		return &failure.EnvironmentError{Name: name, Want: dir, Got: cwd}
	}
	logger.Debug("[DEBUG] Entered %s\n", cwd)
	return fn()
}

// samePath compares two directories after resolving symlinks, so that e.g. /tmp and
// /private/tmp on macOS compare equal.
func samePath(a, b string) bool {
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return ra == rb
}
