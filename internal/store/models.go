package store

import (
	"strings"
	"time"
)

// InsightKind distinguishes one-off observations from recurring patterns.
type InsightKind string

const (
	InsightObservation InsightKind = "observation"
	InsightPattern     InsightKind = "pattern"
)

// ActionType selects the delivery channel for an action.
type ActionType string

const (
	ActionPopup        ActionType = "popup"
	ActionNotification ActionType = "notification"
)

// Todo source tags record which signal a todo was extracted from.
const (
	TodoSourceScreen   = "screen"
	TodoSourceVoice    = "voice"
	TodoSourceAnalysis = "analysis"
)

// ScreenCapture is one externally produced OCR snapshot of the focused window.
type ScreenCapture struct {
	ID         int64
	CapturedAt time.Time
	App        string
	Window     string
	OCRText    string
}

// VoiceSegment is one transcribed span of microphone audio.
type VoiceSegment struct {
	ID         int64
	StartedAt  time.Time
	EndedAt    time.Time
	Transcript string
	Confidence float64
}

// FaceEvent is one externally produced facial-emotion classification.
type FaceEvent struct {
	ID         int64
	ObservedAt time.Time
	Emotion    string
}

// Entity is a named knowledge record (project, collaborator, or interest)
// merged across refiner passes. Mentions is monotonically non-decreasing.
type Entity struct {
	ID        int64
	Name      string
	Mentions  int
	FirstSeen time.Time
	LastSeen  time.Time
}

// Todo is an extracted outstanding task.
type Todo struct {
	ID          int64
	Description string
	Source      string
	CreatedAt   time.Time
	Completed   bool
	CompletedAt *time.Time
}

// Insight is a low-stakes synthesized observation. Append-only.
type Insight struct {
	ID        int64
	Kind      InsightKind
	Content   string
	Source    string
	CreatedAt time.Time
}

// Action is a delivery-ready user-facing suggestion.
type Action struct {
	ID          int64
	Type        ActionType
	Title       string
	Message     string
	Source      string
	Priority    int
	CreatedAt   time.Time
	ShownAt     *time.Time
	DismissedAt *time.Time
}

// NameKey normalizes an entity name for case-insensitive merge.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ClampPriority bounds an action priority to the supported [0, 10] range.
func ClampPriority(priority int) int {
	if priority < 0 {
		return 0
	}
	if priority > 10 {
		return 10
	}
	return priority
}
