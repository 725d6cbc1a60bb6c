package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"dep-bootstrap/internal/logger"
)

// Clean removes the source cache and build directory of every selected name so the next
// run starts from a fresh clone or extraction. The shared install prefix is left alone;
// other recipes may have installed into it.
func (o *Orchestrator) Clean(req Request) ([]string, error) {
	plan, err := o.plan(req)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, p := range plan {
		name := p.recipe.Name()
		for _, dir := range []string{o.Layout.SourceFor(name), o.Layout.ConfigFor(name)} {
			if _, err := os.Lstat(dir); errors.Is(err, fs.ErrNotExist) {
				logger.Debug("[DEBUG] %s does not exist, skipping\n", dir)
				continue
			}
			logger.Info("[INFO] Removing %s\n", dir)
			if err := os.RemoveAll(dir); err != nil {
				return removed, fmt.Errorf("clean %s: %w", name, err)
			}
			removed = append(removed, dir)
		}
	}
	return removed, nil
}
