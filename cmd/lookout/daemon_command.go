package main

import (
	"github.com/spf13/cobra"

	"lookout/internal/daemonrun"
)

// newDaemonRunCommand runs the daemon in the foreground. It is hidden
// because "lookout start" launches it detached; running it directly is
// still useful for debugging.
func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:    "daemon",
		Short:  "Run the lookout daemon in the foreground",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return daemonrun.Run(cmd.Context(), ctx.configValue(), daemonrun.Options{LogLevel: logLevel})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the daemon log level (debug, info, warn, error)")
	return cmd
}
