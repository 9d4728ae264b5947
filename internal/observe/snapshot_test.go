package observe

import (
	"context"
	"strings"
	"testing"
	"time"

	"lookout/internal/store"
	"lookout/internal/testsupport"
)

func TestDedupeCapturesKeepsLatestAndCounts(t *testing.T) {
	base := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)
	captures := []store.ScreenCapture{
		{App: "Editor", Window: "main.go", OCRText: "v1", CapturedAt: base},
		{App: "Browser", Window: "docs", OCRText: "reference", CapturedAt: base.Add(time.Minute)},
		{App: "editor", Window: "MAIN.GO", OCRText: "v2", CapturedAt: base.Add(2 * time.Minute)},
	}

	deduped := dedupeCaptures(captures)
	if len(deduped) != 2 {
		t.Fatalf("expected 2 deduped captures, got %d", len(deduped))
	}
	editor := deduped[0]
	if editor.App != "Editor" || editor.Repeats != 2 {
		t.Errorf("editor entry = %+v, want 2 repeats under original name", editor)
	}
	if editor.OCRText != "v2" {
		t.Errorf("OCR text = %q, want latest", editor.OCRText)
	}
	if !editor.CapturedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("captured_at = %v, want latest", editor.CapturedAt)
	}
	if deduped[1].App != "Browser" || deduped[1].Repeats != 1 {
		t.Errorf("browser entry = %+v", deduped[1])
	}
}

func TestTruncateBreaksOnWordBoundary(t *testing.T) {
	long := strings.Repeat("observation ", 100)
	got := truncate(long, maxOCRChars)
	if len(got) > maxOCRChars+len("…") {
		t.Fatalf("truncated text too long: %d", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatal("truncated text missing ellipsis")
	}
	if truncate("short", maxOCRChars) != "short" {
		t.Fatal("short text should pass through unchanged")
	}
}

func TestTallyEmotions(t *testing.T) {
	events := []store.FaceEvent{
		{Emotion: "Happy"}, {Emotion: "happy"}, {Emotion: "angry"},
		{Emotion: "sad"}, {Emotion: ""},
	}
	tallies, dominant, ratio := tallyEmotions(events)
	if tallies["happy"] != 2 || tallies["angry"] != 1 || tallies["sad"] != 1 {
		t.Fatalf("tallies = %v", tallies)
	}
	if dominant != "happy" {
		t.Errorf("dominant = %q, want happy", dominant)
	}
	if ratio != 0.5 {
		t.Errorf("stress ratio = %v, want 0.5", ratio)
	}
}

func TestSessionDuration(t *testing.T) {
	now := time.Date(2026, time.March, 4, 14, 0, 0, 0, time.UTC)
	gap := 15 * time.Minute

	t.Run("no activity", func(t *testing.T) {
		if got := sessionDuration(nil, now, gap); got != 0 {
			t.Fatalf("duration = %v, want 0", got)
		}
	})
	t.Run("stale activity", func(t *testing.T) {
		stamps := []time.Time{now.Add(-2 * time.Hour)}
		if got := sessionDuration(stamps, now, gap); got != 0 {
			t.Fatalf("duration = %v, want 0", got)
		}
	})
	t.Run("gap splits session", func(t *testing.T) {
		stamps := []time.Time{
			now.Add(-3 * time.Hour), // previous session
			now.Add(-70 * time.Minute),
			now.Add(-60 * time.Minute),
			now.Add(-50 * time.Minute),
			now.Add(-45 * time.Minute),
			now.Add(-35 * time.Minute),
			now.Add(-25 * time.Minute),
			now.Add(-15 * time.Minute),
			now.Add(-5 * time.Minute),
		}
		if got := sessionDuration(stamps, now, gap); got != 70*time.Minute {
			t.Fatalf("duration = %v, want 70m", got)
		}
	})
}

func TestBuildAssemblesSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	now := time.Date(2026, time.March, 4, 23, 30, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := st.InsertScreenCapture(ctx, store.ScreenCapture{
			CapturedAt: now.Add(time.Duration(-30+i*10) * time.Minute),
			App:        "Editor", Window: "main.go", OCRText: "func main()",
		}); err != nil {
			t.Fatalf("insert capture: %v", err)
		}
	}
	if _, err := st.InsertVoiceSegment(ctx, store.VoiceSegment{
		StartedAt: now.Add(-20 * time.Minute), EndedAt: now.Add(-19 * time.Minute),
		Transcript: "feeling tired today", Confidence: 0.9,
	}); err != nil {
		t.Fatalf("insert segment: %v", err)
	}
	for _, emotion := range []string{"angry", "angry", "happy"} {
		if _, err := st.InsertFaceEvent(ctx, store.FaceEvent{ObservedAt: now.Add(-10 * time.Minute), Emotion: emotion}); err != nil {
			t.Fatalf("insert face event: %v", err)
		}
	}
	if err := st.UpsertEntity(ctx, store.EntityProject, "Apollo", now.Add(-time.Hour)); err != nil {
		t.Fatalf("upsert project: %v", err)
	}
	if _, err := st.InsertTodo(ctx, "ship release", store.TodoSourceScreen, now.Add(-3*time.Hour)); err != nil {
		t.Fatalf("insert todo: %v", err)
	}

	snap, err := Build(ctx, st, cfg, now)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	if len(snap.Captures) != 1 || snap.Captures[0].Repeats != 3 {
		t.Fatalf("captures = %+v, want one entry with 3 repeats", snap.Captures)
	}
	if !strings.Contains(snap.VoiceText, "tired") {
		t.Errorf("voice text %q missing transcript", snap.VoiceText)
	}
	if snap.DominantMood != "angry" {
		t.Errorf("dominant mood = %q, want angry", snap.DominantMood)
	}
	if !snap.StressedMood() {
		t.Error("angry should count as a stressed mood")
	}
	if snap.StressRatio < 0.66 || snap.StressRatio > 0.67 {
		t.Errorf("stress ratio = %v, want 2/3", snap.StressRatio)
	}
	if snap.WorkDuration != 30*time.Minute {
		t.Errorf("work duration = %v, want 30m", snap.WorkDuration)
	}
	if len(snap.Projects) != 1 || len(snap.PendingTodos) != 1 {
		t.Errorf("projects=%d todos=%d, want 1 and 1", len(snap.Projects), len(snap.PendingTodos))
	}
	if !snap.IsLateNight() {
		t.Error("23:30 should be late night")
	}
	if snap.Dismissals != 0 || snap.LastPopupAt != nil {
		t.Error("fresh store should have no dismissals or popup history")
	}
}
