package config

// Manifest is the declarative list of tools and libraries to bootstrap.
// Order matters: entries run in the order they are listed.
type Manifest struct {
	Tools     []Entry `yaml:"tools"`
	Libraries []Entry `yaml:"libraries"`

	// Dir is the directory holding the manifest file. Relative paths in the manifest are
	// resolved against it and it serves as the project root.
	Dir string `yaml:"-"`
}

// Entry describes one recipe.
// - Name: registry key and on-disk directory name.
// - Subpath: buildable project inside the fetched source, e.g. glfw-3.3.8.
// - Git/Archive: exactly one source.
// - CMake/Command: at most one installer, CMake when neither is set.
// - Overlays: files copied into the source tree for the duration of the build.
type Entry struct {
	Name     string         `yaml:"name"`
	Subpath  string         `yaml:"subpath"`
	Git      *GitSource     `yaml:"git"`
	Archive  *ArchiveSource `yaml:"archive"`
	CMake    *CMakeSpec     `yaml:"cmake"`
	Command  *CommandSpec   `yaml:"command"`
	Overlays []OverlaySpec  `yaml:"overlays"`
}

// GitSource is a repository fetched with a shallow clone of Ref (branch or tag).
type GitSource struct {
	URI        string `yaml:"uri"`
	Ref        string `yaml:"ref"`
	Submodules bool   `yaml:"submodules"`
}

// ArchiveSource is a packaged source archive. URL and SHA256 are optional.
type ArchiveSource struct {
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
	SHA256 string `yaml:"sha256"`
}

// CMakeSpec configures a CMake build. OSOptions entries keyed by GOOS are appended after
// Options on that platform.
type CMakeSpec struct {
	Options   []string            `yaml:"options"`
	OSOptions map[string][]string `yaml:"os_options"`
	BuildType string              `yaml:"build_type"`
	Parallel  int                 `yaml:"parallel"`
	Generator string              `yaml:"generator"`
	Tool      string              `yaml:"tool"`
}

// Stages lists verbatim argv per stage; an omitted stage is skipped.
type Stages struct {
	Configure []string `yaml:"configure"`
	Build     []string `yaml:"build"`
	Install   []string `yaml:"install"`
}

// CommandSpec is a custom build. A stage set under OS for the current GOOS replaces the
// default one.
type CommandSpec struct {
	Stages `yaml:",inline"`
	OS     map[string]Stages `yaml:"os"`
}

// OverlaySpec copies Src (relative to the manifest) to Dst (relative to the source path).
type OverlaySpec struct {
	Src string `yaml:"src"`
	Dst string `yaml:"dst"`
}
