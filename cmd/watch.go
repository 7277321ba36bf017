package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd: errfix watch
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Fix the tree once, then fix files again whenever they are written",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		runner, err := newRunner(cmd)
		if err != nil {
			return err
		}
		if _, err := runner.Run(ctx); err != nil {
			return err
		}

		logger.Info("watching for changes", zap.String("root", runner.Root))
		return runner.Watch(ctx)
	},
}
