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
	workPatternCooldown   = 60 * time.Minute
	minDistinctApps       = 4
	minCapturesForPattern = 8
)

// WorkPattern notices context-switch-heavy sessions: many distinct apps in
// focus within the context window.
type WorkPattern struct{}

// NewWorkPattern builds the work-pattern generator.
func NewWorkPattern() *WorkPattern { return &WorkPattern{} }

func (g *WorkPattern) Name() string { return "work_pattern" }
func (g *WorkPattern) Cooldown() time.Duration { return workPatternCooldown }

func (g *WorkPattern) ShouldGenerate(snap *observe.Snapshot) bool {
	return distinctApps(snap) >= minDistinctApps && totalCaptures(snap) >= minCapturesForPattern
}

func (g *WorkPattern) Generate(ctx context.Context, snap *observe.Snapshot, service llm.Service) (*store.Insight, error) {
	apps := appNames(snap)
	content := fmt.Sprintf("Lots of context switching lately: focus moved across %d apps (%s) in the last while.",
		len(apps), strings.Join(apps, ", "))
	if service.Loaded() {
		system := "You summarize a user's application-switching pattern into one short neutral observation " +
			"about how their attention moved. Respond with plain text only."
		var lines []string
		for _, capture := range snap.Captures {
			lines = append(lines, fmt.Sprintf("%s / %s (%d times)", capture.App, capture.Window, capture.Repeats))
		}
		prompt := "Focused windows in this session:\n" + strings.Join(lines, "\n")
		if generated, err := service.QuickQuery(ctx, system, prompt, "work pattern insight"); err == nil {
			if trimmed := strings.TrimSpace(generated); trimmed != "" {
				content = trimmed
			}
		}
	}
	return &store.Insight{Kind: store.InsightPattern, Content: content}, nil
}

func distinctApps(snap *observe.Snapshot) int {
	apps := make(map[string]bool)
	for _, capture := range snap.Captures {
		apps[strings.ToLower(capture.App)] = true
	}
	return len(apps)
}

func totalCaptures(snap *observe.Snapshot) int {
	total := 0
	for _, capture := range snap.Captures {
		total += capture.Repeats
	}
	return total
}

func appNames(snap *observe.Snapshot) []string {
	seen := make(map[string]bool)
	var apps []string
	for _, capture := range snap.Captures {
		key := strings.ToLower(capture.App)
		if seen[key] {
			continue
		}
		seen[key] = true
		apps = append(apps, capture.App)
	}
	return apps
}
