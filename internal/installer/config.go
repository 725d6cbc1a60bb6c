package installer

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// BuildType selects the optimization profile passed to the configure tool.
type BuildType string

const (
	Debug   BuildType = "Debug"
	Release BuildType = "Release"
)

// ParseBuildType accepts build types case-insensitively; empty means Release.
func ParseBuildType(s string) (BuildType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "release":
		return Release, nil
	case "debug":
		return Debug, nil
	default:
		return "", fmt.Errorf("unknown build type %q (want Debug or Release)", s)
	}
}

// BuildConfig holds the knobs of a CMake style build. Installers keep their own normalized
// copy, so changing a BuildConfig after handing it over has no effect.
type BuildConfig struct {
	BuildType     BuildType
	Parallel      int      // job count, host logical CPUs when zero
	ExtraOptions  []string // appended to configure in order, before derived flags
	InstallPrefix string
	ConfigDir     string // out-of-source build directory, see ConfigDirFor
	Tool          string // configure/build driver, "cmake" when empty
	Generator     string // optional -G value
}

// ConfigDirFor derives the per-name build directory under a shared config root.
func ConfigDirFor(configRoot, name string) string {
	return filepath.Join(configRoot, name)
}

// normalize fills defaults, validates and detaches the option slice from the caller.
func (c BuildConfig) normalize() (BuildConfig, error) {
	bt, err := ParseBuildType(string(c.BuildType))
	if err != nil {
		return BuildConfig{}, err
	}
	c.BuildType = bt
	switch {
	case c.Parallel == 0:
		c.Parallel = runtime.NumCPU()
	case c.Parallel < 0:
		return BuildConfig{}, fmt.Errorf("parallelism must be positive, got %d", c.Parallel)
	}
	if c.Tool == "" {
		c.Tool = "cmake"
	}
	if c.InstallPrefix == "" {
		return BuildConfig{}, fmt.Errorf("install prefix must be set")
	}
	if c.ConfigDir == "" {
		return BuildConfig{}, fmt.Errorf("config directory must be set")
	}
	c.ExtraOptions = slices.Clone(c.ExtraOptions)
	return c, nil
}
