// Package cli implements the stackform command line. The root command only
// wires persistent logging flags; each subcommand loads what it needs.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/logging"
)

type commonConfig struct {
	verbose bool
	jsonLog bool
	color   string
}

// NewRootCommand builds the stackform root command with every subcommand
// attached.
func NewRootCommand() *cobra.Command {
	commonCfg := &commonConfig{}

	root := &cobra.Command{
		Use:           "stackform",
		Short:         "Declare web application infrastructure for the reconciliation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.BoolVarP(&commonCfg.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&commonCfg.jsonLog, "json-log", false, "Enable JSON logging")
	flags.StringVar(&commonCfg.color, "color", "auto", "Colorize output (auto, on, off)")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logOpts := logging.LogOpts{
			Verbose: commonCfg.verbose,
			Color:   commonCfg.color,
		}
		if commonCfg.jsonLog {
			logOpts.Encoding = "json"
		}
		zap.ReplaceGlobals(logOpts.NewLogger())
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		zap.L().Sync() //nolint:errcheck
	}

	root.AddCommand(newPlanCommand())
	root.AddCommand(newGraphCommand())
	root.AddCommand(newValidateCommand())
	return root
}
