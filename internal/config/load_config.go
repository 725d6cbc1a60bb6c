package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/logger"
)

// DefaultFile is the manifest looked up when no path is given.
const DefaultFile = "bootstrap.yaml"

// Load reads and validates the manifest at path. Unknown keys are rejected so a typo does
// not silently drop a setting. Every problem is reported as a *failure.ConfigurationError.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &failure.ConfigurationError{Reason: fmt.Sprintf("read manifest: %v", err)}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &failure.ConfigurationError{Reason: err.Error()}
	}
	m, err := Parse(raw, filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	logger.Debug("[DEBUG] Loaded %s: %d tools, %d libraries\n", abs, len(m.Tools), len(m.Libraries))
	return m, nil
}

// Parse decodes a manifest whose relative paths are anchored at dir.
func Parse(raw []byte, dir string) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, &failure.ConfigurationError{Reason: fmt.Sprintf("parse manifest: %v", err)}
	}
	m.Dir = dir
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
