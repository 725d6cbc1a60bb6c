package bootstrap

import (
	"strings"

	"dep-bootstrap/internal/installer"
	"dep-bootstrap/internal/resource"
)

// InstallerFactory binds an installer to a freshly resolved source tree.
type InstallerFactory func(tree resource.SourceTree, layout Layout) (installer.Installer, error)

// Overlay is a file copied into the source tree before the installer runs and taken out
// again afterwards, e.g. a CMakeLists.txt for a project that ships none.
type Overlay struct {
	Src string // file to copy, absolute
	Dst string // destination relative to the source path
}

// Recipe pairs a resource with the installer that builds it.
type Recipe struct {
	Resource  resource.Descriptor
	Installer InstallerFactory
	Overlays  []Overlay
}

func (r Recipe) Name() string { return r.Resource.Name() }

// Placeholders understood in recipe arguments.
const (
	SourceDirVar     = "${SOURCE_DIR}"
	ConfigDirVar     = "${CONFIG_DIR}"
	InstallPrefixVar = "${INSTALL_PREFIX}"
)

// Expand substitutes the directory placeholders of tree in args. The result is a new slice.
func Expand(args []string, tree resource.SourceTree, layout Layout) []string {
	if args == nil {
		return nil
	}
	r := strings.NewReplacer(
		SourceDirVar, tree.SourcePath,
		ConfigDirVar, layout.ConfigFor(tree.Name),
		InstallPrefixVar, layout.InstallDir(),
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

// CMakeRecipe is the common case: a resource built with CMake into the shared prefix.
// Unset prefix and build directory default to the layout's.
func CMakeRecipe(res resource.Descriptor, cfg installer.BuildConfig) Recipe {
	return Recipe{
		Resource: res,
		Installer: func(tree resource.SourceTree, layout Layout) (installer.Installer, error) {
			c := cfg
			c.ExtraOptions = Expand(cfg.ExtraOptions, tree, layout)
			if c.InstallPrefix == "" {
				c.InstallPrefix = layout.InstallDir()
			}
			if c.ConfigDir == "" {
				c.ConfigDir = installer.ConfigDirFor(layout.ConfigDir(), tree.Name)
			}
			return installer.NewCMake(tree, c)
		},
	}
}

// CommandRecipe builds res with a verbatim command sequence.
func CommandRecipe(res resource.Descriptor, seq installer.CommandSequence) Recipe {
	return Recipe{
		Resource: res,
		Installer: func(tree resource.SourceTree, layout Layout) (installer.Installer, error) {
			return installer.NewCommand(tree, installer.CommandSequence{
				Configure:     Expand(seq.Configure, tree, layout),
				Build:         Expand(seq.Build, tree, layout),
				Install:       Expand(seq.Install, tree, layout),
				InstallBuilds: seq.InstallBuilds,
			}), nil
		},
	}
}
