package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lookout/internal/store"
)

func newInsightsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "List recently generated insights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				insights, err := st.LatestInsights(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, insightViews(insights))
				}
				if len(insights) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No insights yet")
					return nil
				}
				rows := make([][]string, 0, len(insights))
				for _, insight := range insights {
					rows = append(rows, []string{
						fmt.Sprintf("%d", insight.ID),
						string(insight.Kind),
						insight.CreatedAt.Local().Format("2006-01-02 15:04"),
						truncateCell(insight.Content, 72),
					})
				}
				table := renderTable(
					[]string{"ID", "Kind", "Created", "Content"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of insights to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type insightView struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Content   string `json:"content"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

func insightViews(insights []store.Insight) []insightView {
	views := make([]insightView, 0, len(insights))
	for _, insight := range insights {
		views = append(views, insightView{
			ID:        insight.ID,
			Kind:      string(insight.Kind),
			Content:   insight.Content,
			Source:    insight.Source,
			CreatedAt: insight.CreatedAt.Format(time.RFC3339),
		})
	}
	return views
}

func truncateCell(value string, max int) string {
	if max <= 3 || len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
