package installer

import (
	"bytes"
	"strings"
	"sync"

	"dep-bootstrap/internal/failure"
)

// installMarkers are printed once the generated install script starts running, i.e. after
// every target the install target depends on has been built.
var installMarkers = []string{
	"Install the project...",
	"-- Install configuration:",
	"-- Installing: ",
	"-- Up-to-date: ",
}

// phaseWatcher observes the output of a folded build+install process and records whether
// it got past the build. Stdout and stderr may be written concurrently.
type phaseWatcher struct {
	mu         sync.Mutex
	partial    []byte
	installing bool
}

func (w *phaseWatcher) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.installing {
		return len(p), nil
	}
	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		w.scan(string(w.partial[:i]))
		if w.installing {
			return len(p), nil
		}
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

func (w *phaseWatcher) scan(line string) {
	for _, m := range installMarkers {
		if strings.Contains(line, m) {
			w.installing = true
			w.partial = nil
			return
		}
	}
}

// Phase reports which part of the folded stage was running last.
func (w *phaseWatcher) Phase() failure.Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.installing && len(w.partial) > 0 {
		w.scan(string(w.partial))
	}
	if w.installing {
		return failure.StageInstall
	}
	return failure.StageBuild
}
