package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"dep-bootstrap/internal/bootstrap"
	"dep-bootstrap/internal/config"
	"dep-bootstrap/internal/failure"
	"dep-bootstrap/internal/logger"
	"dep-bootstrap/internal/runner"
)

// Global flags shared by every subcommand.
var (
	debug      bool   // --debug enables debug logging
	configPath string // --config/-c manifest path
	rootDir    string // --root build root, relative to the manifest directory
	buildType  string // --build-type overrides every cmake entry
	jobs       int    // --jobs/-j overrides every cmake entry
)

// started is set once cobra has accepted the flags and arguments. Errors before that point
// are usage errors.
var started bool

// newRunner builds the process runner for a command.
var newRunner = func() runner.Runner { return runner.New() }

// rootCmd is the base command of the `bootstrap` CLI.
var rootCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Fetch, build and install third-party tools and libraries",
	Long: `bootstrap reads a manifest of tools and libraries, fetches each source (git clone or
archive), then configures, builds and installs it into a shared prefix under the build root.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	// Runs before any subcommand, after flags were parsed.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		started = true
		logger.Init(debug)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")
	pf.StringVarP(&configPath, "config", "c", config.DefaultFile, "Path to the manifest")
	pf.StringVar(&rootDir, "root", bootstrap.DefaultRoot, "Build root, relative to the manifest directory")
	pf.StringVar(&buildType, "build-type", "", "Build type for every CMake entry (Debug or Release)")
	pf.IntVarP(&jobs, "jobs", "j", 0, "Parallel build jobs for every CMake entry (default: logical CPUs)")
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execute(ctx, os.Args[1:])
}

func execute(ctx context.Context, args []string) int {
	started = false
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return failure.ExitOK
	}
	logger.Error("[ERROR] %v\n", err)
	if !started {
		return failure.ExitConfiguration
	}
	return failure.ExitStatus(err)
}

// loadOrchestrator reads the manifest and wires the registries to the build root.
func loadOrchestrator() (*bootstrap.Orchestrator, error) {
	if jobs < 0 {
		return nil, &failure.ConfigurationError{Reason: "--jobs must not be negative"}
	}
	m, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	tools, libraries, err := m.Registries(config.Options{BuildType: buildType, Parallel: jobs})
	if err != nil {
		return nil, err
	}
	layout, err := bootstrap.NewLayout(m.Dir, rootDir)
	if err != nil {
		return nil, errors.Join(failure.ErrConfiguration, err)
	}
	logger.Debug("[DEBUG] Build root: %s\n", layout.Root)
	return bootstrap.New(tools, libraries, layout, newRunner())
}
