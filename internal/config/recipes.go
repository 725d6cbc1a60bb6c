package config

import (
	"path/filepath"
	"runtime"
	"slices"

	"dep-bootstrap/internal/bootstrap"
	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/installer"
	"dep-bootstrap/internal/resource"
)

// Options adjusts how entries become recipes.
type Options struct {
	GOOS      string // platform for os_options and command.os, runtime.GOOS when empty
	BuildType string // overrides every cmake build_type when set
	Parallel  int    // overrides every cmake parallel when positive
	GitPath   string // git binary, looked up on PATH when empty
}

// Registries turns the manifest into the tool and library registries, preserving order.
func (m *Manifest) Registries(opts Options) (tools, libraries *bootstrap.Registry, err error) {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.BuildType != "" {
		if _, err := installer.ParseBuildType(opts.BuildType); err != nil {
			return nil, nil, &failure.ConfigurationError{Reason: err.Error()}
		}
	}
	tools = bootstrap.NewRegistry(toolsKey)
	libraries = bootstrap.NewRegistry(librariesKey)
	for _, group := range []struct {
		reg     *bootstrap.Registry
		entries []Entry
	}{
		{tools, m.Tools},
		{libraries, m.Libraries},
	} {
		for _, e := range group.entries {
			if err := group.reg.Add(m.recipe(e, opts)); err != nil {
				return nil, nil, err
			}
		}
	}
	return tools, libraries, nil
}

func (m *Manifest) recipe(e Entry, opts Options) bootstrap.Recipe {
	var rc bootstrap.Recipe
	res := m.descriptor(e, opts)
	if e.Command != nil {
		rc = bootstrap.CommandRecipe(res, e.Command.sequence(opts.GOOS))
	} else {
		rc = bootstrap.CMakeRecipe(res, e.CMake.buildConfig(opts))
	}
	for _, ov := range e.Overlays {
		rc.Overlays = append(rc.Overlays, bootstrap.Overlay{Src: m.path(ov.Src), Dst: ov.Dst})
	}
	return rc
}

func (m *Manifest) descriptor(e Entry, opts Options) resource.Descriptor {
	if e.Git != nil {
		return &resource.Git{
			ID:         e.Name,
			URI:        e.Git.URI,
			Ref:        e.Git.Ref,
			Subpath:    e.Subpath,
			Submodules: e.Git.Submodules,
			GitPath:    opts.GitPath,
		}
	}
	return &resource.Archive{
		ID:      e.Name,
		Path:    m.path(e.Archive.Path),
		Subpath: e.Subpath,
		URL:     e.Archive.URL,
		SHA256:  e.Archive.SHA256,
	}
}

// path anchors a manifest-relative path at the manifest's directory.
func (m *Manifest) path(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// buildConfig is valid on a nil spec: every field takes its default.
func (c *CMakeSpec) buildConfig(opts Options) installer.BuildConfig {
	var cfg installer.BuildConfig
	if c != nil {
		cfg = installer.BuildConfig{
			BuildType:    installer.BuildType(c.BuildType),
			Parallel:     c.Parallel,
			ExtraOptions: append(slices.Clone(c.Options), c.OSOptions[opts.GOOS]...),
			Tool:         c.Tool,
			Generator:    c.Generator,
		}
	}
	if opts.BuildType != "" {
		cfg.BuildType = installer.BuildType(opts.BuildType)
	}
	if opts.Parallel > 0 {
		cfg.Parallel = opts.Parallel
	}
	return cfg
}

func (c *CommandSpec) sequence(goos string) installer.CommandSequence {
	st := c.Stages
	if o, ok := c.OS[goos]; ok {
		if o.Configure != nil {
			st.Configure = o.Configure
		}
		if o.Build != nil {
			st.Build = o.Build
		}
		if o.Install != nil {
			st.Install = o.Install
		}
	}
	return installer.CommandSequence{Configure: st.Configure, Build: st.Build, Install: st.Install}
}
