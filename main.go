package main

import (
	"os"

	"dep-bootstrap/cmd" // CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() and exits with the status it returns.
//
// bootstrap prepares the third-party dependencies of a native project:
//   - Reads a YAML manifest listing tools and libraries, each with a source (git repository
//     or source archive) and an installer (CMake conventions or verbatim commands)
//   - Clones or extracts each selected source into prebuild/source/<name>; existing clones
//     are checked out instead of re-cloned, archives are always re-extracted
//   - Configures, builds and installs into the shared prebuild/install prefix
//
// Error handling strategy:
//   - The first failure stops the run; nothing is retried
//   - Exit status 2 means bad input (unknown name, invalid manifest or flags), 1 means the
//     fetch or build failed
func main() {
	os.Exit(cmd.Execute())
}
