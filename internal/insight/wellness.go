package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lookout/internal/config"
	"lookout/internal/observe"
	"lookout/internal/services/llm"
	"lookout/internal/store"
)

const (
	wellnessCooldown    = 45 * time.Minute
	stressRatioTrigger  = 0.30
	minVoiceStressHits  = 2
)

// voiceStressKeywords mark stress language in recent speech.
var voiceStressKeywords = []string{"tired", "stressed", "exhausted", "overwhelmed", "burned out", "can't focus"}

// Wellness watches for signs the user should take a break: long unbroken
// work sessions, late hours, stressed emotion readings, stress language in
// speech. Any one signal is enough to generate; every firing reason is
// carried verbatim into the prompt and the fallback text.
type Wellness struct {
	workDurationTrigger time.Duration
}

// NewWellness builds the wellness generator from configured thresholds.
func NewWellness(cfg *config.Config) *Wellness {
	return &Wellness{
		workDurationTrigger: time.Duration(cfg.Generation.WorkDurationMin) * time.Minute,
	}
}

func (w *Wellness) Name() string { return "wellness" }
func (w *Wellness) Cooldown() time.Duration { return wellnessCooldown }

func (w *Wellness) ShouldGenerate(snap *observe.Snapshot) bool {
	return len(w.reasons(snap)) > 0
}

func (w *Wellness) Generate(ctx context.Context, snap *observe.Snapshot, service llm.Service) (*store.Insight, error) {
	reasons := w.reasons(snap)
	if len(reasons) == 0 {
		return nil, nil
	}
	content := w.fallback(reasons)
	if service.Loaded() {
		system := "You observe signs of fatigue or stress in a user's workday and write one short, " +
			"kind, non-judgmental wellness observation (one or two sentences). Mention every signal you are given. " +
			"Respond with plain text only."
		prompt := "Signals observed:\n- " + strings.Join(reasons, "\n- ")
		if generated, err := service.QuickQuery(ctx, system, prompt, "wellness insight"); err == nil {
			if trimmed := strings.TrimSpace(generated); trimmed != "" {
				content = trimmed
			}
		}
	}
	return &store.Insight{Kind: store.InsightObservation, Content: content}, nil
}

// reasons evaluates the four independent wellness signals.
func (w *Wellness) reasons(snap *observe.Snapshot) []string {
	var reasons []string
	if snap.WorkDuration >= w.workDurationTrigger {
		reasons = append(reasons, fmt.Sprintf("working for %d minutes without a real break",
			int(snap.WorkDuration.Minutes())))
	}
	if snap.IsLateNight() {
		reasons = append(reasons, fmt.Sprintf("still active late at night (%02d:%02d)",
			snap.Now.Hour(), snap.Now.Minute()))
	}
	if snap.StressRatio > stressRatioTrigger {
		reasons = append(reasons, fmt.Sprintf("stress showing in %d%% of recent emotion readings",
			int(snap.StressRatio*100)))
	}
	if hits, matched := countKeywordHits(snap.VoiceText, voiceStressKeywords); hits >= minVoiceStressHits {
		reasons = append(reasons, fmt.Sprintf("stress language in recent speech (%s)",
			strings.Join(matched, ", ")))
	}
	return reasons
}

func (w *Wellness) fallback(reasons []string) string {
	return fmt.Sprintf("Wellness check: %s. It might be a good moment to rest and take a short break.",
		strings.Join(reasons, "; "))
}

// countKeywordHits counts every occurrence of each keyword in text
// (case-insensitive) and returns the keywords that matched at least once.
func countKeywordHits(text string, keywords []string) (int, []string) {
	lowered := strings.ToLower(text)
	hits := 0
	var matched []string
	for _, keyword := range keywords {
		count := strings.Count(lowered, keyword)
		if count > 0 {
			hits += count
			matched = append(matched, keyword)
		}
	}
	return hits, matched
}
