package config

import (
	"errors"

	"dep-bootstrap/internal/archive"
	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/installer"
	"dep-bootstrap/internal/resource"
)

const (
	toolsKey     = "tools"
	librariesKey = "libraries"
)

// Validate checks every entry and reports all problems at once.
func (m *Manifest) Validate() error {
	var errs []error
	seen := make(map[string]string)
	for _, group := range []struct {
		key     string
		entries []Entry
	}{
		{toolsKey, m.Tools},
		{librariesKey, m.Libraries},
	} {
		for _, e := range group.entries {
			bad := func(reason string) {
				errs = append(errs, &failure.ConfigurationError{Registry: group.key, Name: e.Name, Reason: reason})
			}
			if err := resource.ValidateName(e.Name); err != nil {
				bad(err.Error())
				continue
			}
			if prev, ok := seen[e.Name]; ok {
				bad("already declared in " + prev)
				continue
			}
			seen[e.Name] = group.key
			e.validate(bad)
		}
	}
	return errors.Join(errs...)
}

func (e Entry) validate(bad func(string)) {
	switch {
	case e.Git == nil && e.Archive == nil:
		bad("no source: set git or archive")
	case e.Git != nil && e.Archive != nil:
		bad("both git and archive are set")
	case e.Git != nil:
		if e.Git.URI == "" || e.Git.Ref == "" {
			bad("git source needs both uri and ref")
		}
	case e.Archive != nil:
		if e.Archive.Path == "" {
			bad("archive source needs a path")
		} else if _, err := archive.DetectFormat(e.Archive.Path); err != nil {
			bad(err.Error())
		}
	}

	if e.CMake != nil && e.Command != nil {
		bad("both cmake and command are set")
	}
	if c := e.CMake; c != nil {
		if _, err := installer.ParseBuildType(c.BuildType); err != nil {
			bad(err.Error())
		}
		if c.Parallel < 0 {
			bad("parallel must not be negative")
		}
	}
	for _, ov := range e.Overlays {
		if ov.Src == "" || ov.Dst == "" {
			bad("overlay needs src and dst")
		}
	}
}
