package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lookout/internal/ipc"
)

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Run a generation pass immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.TriggerPass()
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("missing trigger response")
				}
				switch {
				case resp.Triggered:
					fmt.Fprintln(cmd.OutOrStdout(), "Generation pass completed")
				case resp.Message != "":
					fmt.Fprintf(cmd.OutOrStdout(), "Generation pass failed: %s\n", resp.Message)
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "Generation pass not run")
				}
				return nil
			})
		},
	}
}
