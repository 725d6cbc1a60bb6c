package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dep-bootstrap/internal/bootstrap"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tools and libraries declared in the manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := loadOrchestrator()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "REGISTRY\tNAME\tSOURCE\tCACHED")
		for _, reg := range []*bootstrap.Registry{o.Tools, o.Libraries} {
			for _, name := range reg.Names() {
				rc, _ := reg.Get(name)
				cached := "no"
				if _, err := os.Stat(o.Layout.SourceFor(name)); err == nil {
					cached = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", reg.Kind(), name, rc.Resource.Kind(), cached)
			}
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
