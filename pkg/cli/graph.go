package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/config"
)

func newGraphCommand() *cobra.Command {
	var stage string
	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Build the resource graph from the project file and print it in creation order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			project, err := config.Load(dir)
			if err != nil {
				return err
			}
			g, _, err := buildGraph(project, stage)
			if err != nil {
				return err
			}
			order, err := g.TopologicalOrder()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range order {
				fmt.Fprintln(out, id)
			}
			zap.L().Sugar().Infof("%d resources", g.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "Override the project's stage")
	return cmd
}
