package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lookout/internal/services"
	"lookout/internal/store"
)

func newActionsCommand(ctx *commandContext) *cobra.Command {
	actionsCmd := &cobra.Command{
		Use:   "actions",
		Short: "Inspect and manage generated actions",
	}
	actionsCmd.AddCommand(newActionsListCommand(ctx))
	actionsCmd.AddCommand(newActionsDismissCommand(ctx))
	return actionsCmd
}

func newActionsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently generated actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				actions, err := st.RecentActions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, actionViews(actions))
				}
				if len(actions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No actions yet")
					return nil
				}
				rows := make([][]string, 0, len(actions))
				for _, action := range actions {
					state := "pending"
					switch {
					case action.DismissedAt != nil:
						state = "dismissed"
					case action.ShownAt != nil:
						state = "shown"
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", action.ID),
						string(action.Type),
						truncateCell(action.Title, 40),
						fmt.Sprintf("%d", action.Priority),
						state,
						action.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				table := renderTable(
					[]string{"ID", "Type", "Title", "Priority", "State", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of actions to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newActionsDismissCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid action id %q", args[0])
			}
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.MarkActionDismissed(cmd.Context(), id, time.Now()); err != nil {
					if errors.Is(err, services.ErrValidation) {
						fmt.Fprintf(cmd.OutOrStdout(), "Action %d not found or already dismissed\n", id)
						return nil
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Action %d dismissed\n", id)
				return nil
			})
		},
	}
}

type actionView struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Source      string `json:"source"`
	Priority    int    `json:"priority"`
	CreatedAt   string `json:"created_at"`
	ShownAt     string `json:"shown_at,omitempty"`
	DismissedAt string `json:"dismissed_at,omitempty"`
}

func actionViews(actions []store.Action) []actionView {
	views := make([]actionView, 0, len(actions))
	for _, action := range actions {
		view := actionView{
			ID:        action.ID,
			Type:      string(action.Type),
			Title:     action.Title,
			Message:   action.Message,
			Source:    action.Source,
			Priority:  action.Priority,
			CreatedAt: action.CreatedAt.Format(time.RFC3339),
		}
		if action.ShownAt != nil {
			view.ShownAt = action.ShownAt.Format(time.RFC3339)
		}
		if action.DismissedAt != nil {
			view.DismissedAt = action.DismissedAt.Format(time.RFC3339)
		}
		views = append(views, view)
	}
	return views
}
