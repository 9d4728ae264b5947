package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lookout/internal/observe"
	"lookout/internal/services/llm"
	"lookout/internal/store"
)

const (
	projectCooldown    = 90 * time.Minute
	minProjectMentions = 3
)

// Project surfaces momentum on the most-mentioned project once it has
// accumulated enough mentions.
type Project struct{}

// NewProject builds the project-momentum generator.
func NewProject() *Project { return &Project{} }

func (g *Project) Name() string { return "project" }
func (g *Project) Cooldown() time.Duration { return projectCooldown }

func (g *Project) ShouldGenerate(snap *observe.Snapshot) bool {
	top := topProject(snap)
	return top != nil && top.Mentions >= minProjectMentions
}

func (g *Project) Generate(ctx context.Context, snap *observe.Snapshot, service llm.Service) (*store.Insight, error) {
	top := topProject(snap)
	if top == nil {
		return nil, nil
	}
	content := fmt.Sprintf("%s keeps coming up — %d mentions so far, most recently %s.",
		top.Name, top.Mentions, top.LastSeen.Format("Jan 2 15:04"))
	if service.Loaded() {
		system := "You write one short encouraging observation about a project the user keeps returning to. " +
			"Respond with plain text only."
		prompt := fmt.Sprintf("Project: %s\nMentions: %d\nFirst seen: %s\nLast seen: %s\nPending todos: %d",
			top.Name, top.Mentions, top.FirstSeen.Format(time.RFC3339), top.LastSeen.Format(time.RFC3339),
			len(snap.PendingTodos))
		if generated, err := service.QuickQuery(ctx, system, prompt, "project insight"); err == nil {
			if trimmed := strings.TrimSpace(generated); trimmed != "" {
				content = trimmed
			}
		}
	}
	return &store.Insight{Kind: store.InsightObservation, Content: content}, nil
}

func topProject(snap *observe.Snapshot) *store.Entity {
	var top *store.Entity
	for i := range snap.Projects {
		project := &snap.Projects[i]
		if top == nil || project.Mentions > top.Mentions {
			top = project
		}
	}
	return top
}
