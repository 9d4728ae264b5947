package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lookout/internal/store"
)

var entityKinds = map[string]store.EntityKind{
	"projects":      store.EntityProject,
	"collaborators": store.EntityCollaborator,
	"interests":     store.EntityInterest,
}

func newEntitiesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "entities [projects|collaborators|interests]",
		Short:     "List known entities from the knowledge store",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"projects", "collaborators", "interests"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := []store.EntityKind{store.EntityProject, store.EntityCollaborator, store.EntityInterest}
			if len(args) == 1 {
				kind, ok := entityKinds[args[0]]
				if !ok {
					return fmt.Errorf("unknown entity kind %q", args[0])
				}
				kinds = []store.EntityKind{kind}
			}

			return ctx.withStore(cmd.Context(), func(st *store.Store) error {
				type kindEntities struct {
					Kind     string       `json:"kind"`
					Entities []entityView `json:"entities"`
				}
				var payload []kindEntities
				var rows [][]string
				for _, kind := range kinds {
					entities, err := st.Entities(cmd.Context(), kind)
					if err != nil {
						return err
					}
					if asJSON {
						payload = append(payload, kindEntities{Kind: string(kind), Entities: entityViews(entities)})
						continue
					}
					for _, entity := range entities {
						rows = append(rows, []string{
							string(kind),
							entity.Name,
							fmt.Sprintf("%d", entity.Mentions),
							entity.LastSeen.Local().Format("2006-01-02 15:04"),
						})
					}
				}
				if asJSON {
					return writeJSON(cmd, payload)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No entities yet")
					return nil
				}
				table := renderTable(
					[]string{"Kind", "Name", "Mentions", "Last seen"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type entityView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Mentions  int    `json:"mentions"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
}

func entityViews(entities []store.Entity) []entityView {
	views := make([]entityView, 0, len(entities))
	for _, entity := range entities {
		views = append(views, entityView{
			ID:        entity.ID,
			Name:      entity.Name,
			Mentions:  entity.Mentions,
			FirstSeen: entity.FirstSeen.Format(time.RFC3339),
			LastSeen:  entity.LastSeen.Format(time.RFC3339),
		})
	}
	return views
}
