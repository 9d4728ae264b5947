package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lookout/internal/store"
)

func newTodosCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var asJSON bool

	todosCmd := &cobra.Command{
		Use:   "todos",
		Short: "List extracted todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				var todos []store.Todo
				var err error
				if all {
					todos, err = st.Todos(cmd.Context())
				} else {
					todos, err = st.PendingTodos(cmd.Context())
				}
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, todoViews(todos))
				}
				if len(todos) == 0 {
					if all {
						fmt.Fprintln(cmd.OutOrStdout(), "No todos yet")
					} else {
						fmt.Fprintln(cmd.OutOrStdout(), "No pending todos")
					}
					return nil
				}
				rows := make([][]string, 0, len(todos))
				for _, todo := range todos {
					status := "pending"
					if todo.Completed {
						status = "done"
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", todo.ID),
						truncateCell(todo.Description, 64),
						status,
						todo.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				table := renderTable(
					[]string{"ID", "Description", "Status", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	todosCmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed todos")
	todosCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	todosCmd.AddCommand(newTodosDoneCommand(ctx))
	return todosCmd
}

func newTodosDoneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid todo id %q", args[0])
			}
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.CompleteTodo(cmd.Context(), id, time.Now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Todo %d completed\n", id)
				return nil
			})
		},
	}
}

type todoView struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

func todoViews(todos []store.Todo) []todoView {
	views := make([]todoView, 0, len(todos))
	for _, todo := range todos {
		view := todoView{
			ID:          todo.ID,
			Description: todo.Description,
			Source:      todo.Source,
			Completed:   todo.Completed,
			CreatedAt:   todo.CreatedAt.Format(time.RFC3339),
		}
		if todo.CompletedAt != nil {
			view.CompletedAt = todo.CompletedAt.Format(time.RFC3339)
		}
		views = append(views, view)
	}
	return views
}
