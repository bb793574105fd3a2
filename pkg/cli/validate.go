package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/config"
)

func newValidateCommand() *cobra.Command {
	var stage string
	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate the project file and every component's build output without declaring anything",
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
			// building the graph runs every component's validation; the
			// graph itself is discarded
			if _, _, err := buildGraph(project, stage); err != nil {
				return err
			}
			zap.L().Sugar().Infof("%s is valid (%d components)", project.App, len(project.Components))
			return nil
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "Override the project's stage")
	return cmd
}
