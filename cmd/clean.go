package cmd

import (
	"github.com/spf13/cobra"

	"dep-bootstrap/internal/bootstrap"
	"dep-bootstrap/internal/logger"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <name>...",
	Short: "Remove the cached sources and build directories of the given names",
	Long: `Clean removes <root>/source/<name> and <root>/config/<name> so the next install fetches
and configures from scratch. The shared install prefix is left untouched. "all" cleans every
tool and library.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := loadOrchestrator()
		if err != nil {
			return err
		}
		removed, err := o.Clean(cleanRequest(o, args))
		logger.Info("[INFO] Removed %d directories\n", len(removed))
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

// cleanRequest routes each name to the registry declaring it. Unknown names go to the
// libraries so selection reports them.
func cleanRequest(o *bootstrap.Orchestrator, names []string) bootstrap.Request {
	var req bootstrap.Request
	for _, name := range names {
		if name == bootstrap.All {
			req.Tools = append(req.Tools, name)
			req.Libraries = append(req.Libraries, name)
			continue
		}
		if _, ok := o.Tools.Get(name); ok {
			req.Tools = append(req.Tools, name)
		} else {
			req.Libraries = append(req.Libraries, name)
		}
	}
	return req
}
