package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"dep-bootstrap/internal/bootstrap"
)

// Names selected with -t/--tools and -l/--libraries. Both accept "all".
var (
	selectedTools     []string
	selectedLibraries []string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Fetch, build and install the selected tools and libraries",
	Long: `Install runs the selected tools first, then the selected libraries, in the order given.
The first failure stops the run. Use "all" to select a whole registry.`,
	Example: `  bootstrap install -t ninja -l glfw3,imgui
  bootstrap install -t all -l all --build-type Debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := loadOrchestrator()
		if err != nil {
			return err
		}
		report, err := o.Run(cmd.Context(), bootstrap.Request{Tools: selectedTools, Libraries: selectedLibraries})
		printReport(cmd.OutOrStdout(), report)
		return err
	},
}

func init() {
	installCmd.Flags().StringSliceVarP(&selectedTools, "tools", "t", nil, "Tools to install (comma separated or repeated, \"all\" for every tool)")
	installCmd.Flags().StringSliceVarP(&selectedLibraries, "libraries", "l", nil, "Libraries to install (comma separated or repeated, \"all\" for every library)")
	rootCmd.AddCommand(installCmd)
}

func printReport(w io.Writer, report *bootstrap.Report) {
	if report == nil || len(report.Completed) == 0 {
		return
	}
	fmt.Fprintln(w, "Installed:")
	for _, out := range report.Completed {
		fmt.Fprintf(w, "  %-10s %-20s %s\n", out.Registry, out.Name, out.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "%d installed in %s\n", len(report.Completed), report.Elapsed.Round(time.Millisecond))
}
