package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dep-bootstrap/internal/logger"
)

// applied remembers what an overlay replaced so it can be put back.
type applied struct {
	path    string
	backup  []byte
	mode    fs.FileMode
	existed bool
}

// applyOverlays copies overlays into dir. The returned restore func undoes every overlay
// that was applied, including on a partial failure, and is never nil.
func applyOverlays(dir string, overlays []Overlay) (restore func() error, err error) {
	var done []applied
	restore = func() error {
		var errs []error
		for i := len(done) - 1; i >= 0; i-- {
			errs = append(errs, done[i].undo())
		}
		done = nil
		return errors.Join(errs...)
	}
	for _, ov := range overlays {
		a, err := applyOverlay(dir, ov)
		if err != nil {
			return restore, err
		}
		done = append(done, a)
	}
	return restore, nil
}

func applyOverlay(dir string, ov Overlay) (applied, error) {
	if filepath.IsAbs(ov.Dst) {
		return applied{}, fmt.Errorf("overlay destination %q must be relative", ov.Dst)
	}
	dst := filepath.Join(dir, filepath.FromSlash(ov.Dst))
	if rel, err := filepath.Rel(dir, dst); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return applied{}, fmt.Errorf("overlay destination %q leaves the source directory", ov.Dst)
	}

	data, err := os.ReadFile(ov.Src)
	if err != nil {
		return applied{}, fmt.Errorf("read overlay: %w", err)
	}
	a := applied{path: dst, mode: 0o644}
	if info, err := os.Stat(dst); err == nil {
		if info.IsDir() {
			return applied{}, fmt.Errorf("overlay destination %s is a directory", dst)
		}
		if a.backup, err = os.ReadFile(dst); err != nil {
			return applied{}, fmt.Errorf("back up %s: %w", dst, err)
		}
		a.mode = info.Mode().Perm()
		a.existed = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return applied{}, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return applied{}, err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return applied{}, fmt.Errorf("write overlay: %w", err)
	}
	logger.Debug("[DEBUG] Overlay %s -> %s\n", ov.Src, dst)
	return a, nil
}

func (a applied) undo() error {
	if a.existed {
		if err := os.WriteFile(a.path, a.backup, a.mode); err != nil {
			return fmt.Errorf("restore %s: %w", a.path, err)
		}
		return nil
	}
	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove overlay %s: %w", a.path, err)
	}
	return nil
}
