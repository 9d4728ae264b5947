package observe

import (
	"context"
	"sort"
	"strings"
	"time"

	"lookout/internal/config"
	"lookout/internal/store"
)

const (
	maxOCRChars        = 500
	maxTranscriptChars = 300
	maxVoiceTextChars  = 4000

	recentInsightLimit = 50
	recentActionLimit  = 50

	// How far back session reconstruction looks for activity.
	sessionLookback = 12 * time.Hour
)

// stressMoods are emotion labels treated as stress-like, both for the popup
// mood gate and for the stress ratio.
var stressMoods = map[string]bool{
	"angry":      true,
	"fear":       true,
	"sad":        true,
	"disgust":    true,
	"stressed":   true,
	"frustrated": true,
}

// FocusCapture is a deduplicated screen capture. Repeats counts how many raw
// captures shared the same app+window focus; the latest OCR text is kept.
type FocusCapture struct {
	App        string
	Window     string
	OCRText    string
	CapturedAt time.Time
	Repeats    int
}

// Snapshot is the immutable per-pass view of recent signals, accumulated
// knowledge, and action history.
type Snapshot struct {
	Now time.Time

	Captures      []FocusCapture
	VoiceSegments []store.VoiceSegment
	VoiceText     string

	EmotionTallies map[string]int
	DominantMood   string
	StressRatio    float64

	WorkDuration time.Duration

	Projects      []store.Entity
	Collaborators []store.Entity
	Interests     []store.Entity
	PendingTodos  []store.Todo

	RecentInsights []store.Insight
	RecentActions  []store.Action

	LastActionAt map[string]time.Time
	Dismissals   int
	LastPopupAt  *time.Time
}

// IsLateNight reports whether the snapshot's wall-clock hour falls in the
// late-night band [22, 06).
func (s *Snapshot) IsLateNight() bool {
	hour := s.Now.Hour()
	return hour >= 22 || hour < 6
}

// StressedMood reports whether the dominant mood is stress-like.
func (s *Snapshot) StressedMood() bool {
	return stressMoods[s.DominantMood]
}

// InsightsMatching returns recent insights whose content contains at least
// minHits of the given keywords (case-insensitive), newest first.
func (s *Snapshot) InsightsMatching(keywords []string, minHits int) []store.Insight {
	var matched []store.Insight
	for _, insight := range s.RecentInsights {
		content := strings.ToLower(insight.Content)
		hits := 0
		for _, keyword := range keywords {
			if strings.Contains(content, keyword) {
				hits++
			}
		}
		if hits >= minHits {
			matched = append(matched, insight)
		}
	}
	return matched
}

// Build assembles a snapshot of the knowledge store as of now. The context
// window for raw signals comes from cfg.Generation.ContextWindowMin.
func Build(ctx context.Context, st *store.Store, cfg *config.Config, now time.Time) (*Snapshot, error) {
	window := time.Duration(cfg.Generation.ContextWindowMin) * time.Minute
	cutoff := now.Add(-window)

	captures, err := st.ScreenCapturesSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	segments, err := st.VoiceSegmentsSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	events, err := st.FaceEventsSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	projects, err := st.Entities(ctx, store.EntityProject)
	if err != nil {
		return nil, err
	}
	collaborators, err := st.Entities(ctx, store.EntityCollaborator)
	if err != nil {
		return nil, err
	}
	interests, err := st.Entities(ctx, store.EntityInterest)
	if err != nil {
		return nil, err
	}
	pending, err := st.PendingTodos(ctx)
	if err != nil {
		return nil, err
	}
	insights, err := st.LatestInsights(ctx, recentInsightLimit)
	if err != nil {
		return nil, err
	}
	actions, err := st.RecentActions(ctx, recentActionLimit)
	if err != nil {
		return nil, err
	}
	lastActions, err := st.LastActionTimes(ctx)
	if err != nil {
		return nil, err
	}
	backoffWindow := time.Duration(cfg.Generation.BackoffWindowMin) * time.Minute
	dismissals, err := st.DismissalsSince(ctx, now.Add(-backoffWindow))
	if err != nil {
		return nil, err
	}
	var lastPopup *time.Time
	if shown, ok, err := st.LastPopupShownAt(ctx); err != nil {
		return nil, err
	} else if ok {
		lastPopup = &shown
	}
	stamps, err := st.ActivityTimestamps(ctx, now.Add(-sessionLookback))
	if err != nil {
		return nil, err
	}

	tallies, dominant, stress := tallyEmotions(events)
	snap := &Snapshot{
		Now:            now,
		Captures:       dedupeCaptures(captures),
		VoiceSegments:  truncateSegments(segments),
		VoiceText:      joinVoiceText(segments),
		EmotionTallies: tallies,
		DominantMood:   dominant,
		StressRatio:    stress,
		WorkDuration:   sessionDuration(stamps, now, time.Duration(cfg.Generation.SessionGapMin)*time.Minute),
		Projects:       projects,
		Collaborators:  collaborators,
		Interests:      interests,
		PendingTodos:   pending,
		RecentInsights: insights,
		RecentActions:  actions,
		LastActionAt:   lastActions,
		Dismissals:     dismissals,
		LastPopupAt:    lastPopup,
	}
	return snap, nil
}

// dedupeCaptures collapses consecutive-in-time captures of the same app and
// window into one entry carrying the latest OCR text and a repeat count.
func dedupeCaptures(captures []store.ScreenCapture) []FocusCapture {
	index := make(map[string]int)
	var deduped []FocusCapture
	for _, capture := range captures {
		key := strings.ToLower(capture.App) + "\x00" + strings.ToLower(capture.Window)
		if at, ok := index[key]; ok {
			deduped[at].OCRText = truncate(capture.OCRText, maxOCRChars)
			deduped[at].CapturedAt = capture.CapturedAt
			deduped[at].Repeats++
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, FocusCapture{
			App:        capture.App,
			Window:     capture.Window,
			OCRText:    truncate(capture.OCRText, maxOCRChars),
			CapturedAt: capture.CapturedAt,
			Repeats:    1,
		})
	}
	return deduped
}

func truncateSegments(segments []store.VoiceSegment) []store.VoiceSegment {
	out := make([]store.VoiceSegment, len(segments))
	for i, segment := range segments {
		segment.Transcript = truncate(segment.Transcript, maxTranscriptChars)
		out[i] = segment
	}
	return out
}

func joinVoiceText(segments []store.VoiceSegment) string {
	var builder strings.Builder
	for _, segment := range segments {
		text := strings.TrimSpace(segment.Transcript)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(text)
		if builder.Len() >= maxVoiceTextChars {
			break
		}
	}
	return truncate(builder.String(), maxVoiceTextChars)
}

func tallyEmotions(events []store.FaceEvent) (map[string]int, string, float64) {
	tallies := make(map[string]int)
	stressed := 0
	for _, event := range events {
		label := strings.ToLower(strings.TrimSpace(event.Emotion))
		if label == "" {
			continue
		}
		tallies[label]++
		if stressMoods[label] {
			stressed++
		}
	}
	total := 0
	dominant := ""
	best := 0
	labels := make([]string, 0, len(tallies))
	for label := range tallies {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		count := tallies[label]
		total += count
		if count > best {
			best = count
			dominant = label
		}
	}
	ratio := 0.0
	if total > 0 {
		ratio = float64(stressed) / float64(total)
	}
	return tallies, dominant, ratio
}

// sessionDuration reconstructs the current work session by walking activity
// timestamps backwards from now; a gap longer than sessionGap ends the
// session. Returns zero when the most recent activity is itself stale.
func sessionDuration(stamps []time.Time, now time.Time, sessionGap time.Duration) time.Duration {
	if len(stamps) == 0 {
		return 0
	}
	last := stamps[len(stamps)-1]
	if now.Sub(last) > sessionGap {
		return 0
	}
	start := last
	for i := len(stamps) - 2; i >= 0; i-- {
		if start.Sub(stamps[i]) > sessionGap {
			break
		}
		start = stamps[i]
	}
	return now.Sub(start)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
