package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xab-mack/tactscan/internal/detectors"
)

func newDetectorsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "detectors", Short: "Inspect available detectors"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := detectors.NewRegistry()
			reg.RegisterBuiltin()
			for _, d := range reg.Instantiate(nil, detectors.Options{}) {
				policy := "union"
				if d.SharingPolicy() == detectors.PolicyIntersect {
					policy = "intersect"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d.ID(), d.Severity(), policy)
			}
			return nil
		},
	})
	return cmd
}
