package workflow

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"lookout/internal/config"
	"lookout/internal/store"
	"lookout/internal/testsupport"
)

type recordingNotifier struct {
	mu            sync.Mutex
	popups        []store.Action
	notifications []store.Action
}

func (r *recordingNotifier) DeliverPopup(_ context.Context, action store.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popups = append(r.popups, action)
	return nil
}

func (r *recordingNotifier) DeliverNotification(_ context.Context, action store.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, action)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func (r *recordingNotifier) delivered() []store.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(append([]store.Action(nil), r.popups...), r.notifications...)
}

// seedLongStressedSession writes the observation history for a 130-minute
// editor session with stress language in the voice track.
func seedLongStressedSession(t *testing.T, st *store.Store, now time.Time) {
	t.Helper()
	ctx := context.Background()

	start := now.Add(-130 * time.Minute)
	for i := 0; i < 14; i++ {
		at := start.Add(time.Duration(i) * 10 * time.Minute)
		if _, err := st.InsertScreenCapture(ctx, store.ScreenCapture{
			CapturedAt: at, App: "Editor", Window: "main.go", OCRText: "func main()",
		}); err != nil {
			t.Fatalf("insert capture: %v", err)
		}
	}

	transcripts := []string{
		"okay let me look at this again",
		"I'm so tired of this bug",
		"maybe the parser is wrong",
		"still tired, this is taking forever",
		"I'm stressed about the deadline",
		"one more try then coffee",
	}
	for i, transcript := range transcripts {
		at := now.Add(time.Duration(-30+i*5) * time.Minute)
		if _, err := st.InsertVoiceSegment(ctx, store.VoiceSegment{
			StartedAt: at, EndedAt: at.Add(10 * time.Second), Transcript: transcript, Confidence: 0.9,
		}); err != nil {
			t.Fatalf("insert segment: %v", err)
		}
	}
}

func e2eConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	// The session spans 130 minutes with 10-minute capture spacing; widen
	// the context window so every observation is in view.
	cfg.Generation.ContextWindowMin = 180
	return cfg
}

func TestEndToEndWellnessEscalation(t *testing.T) {
	cfg := e2eConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	now := time.Date(2026, time.March, 4, 16, 0, 0, 0, time.UTC)
	seedLongStressedSession(t, st, now)

	fake := &testsupport.FakeLLM{Unloaded: true}
	notifier := &recordingNotifier{}
	manager := NewManager(cfg, st, fake, notifier, nil)

	if err := manager.runPass(ctx, now); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	insights, err := st.LatestInsights(ctx, 10)
	if err != nil {
		t.Fatalf("latest insights: %v", err)
	}
	var wellness *store.Insight
	for i := range insights {
		if insights[i].Source == "wellness" {
			wellness = &insights[i]
			break
		}
	}
	if wellness == nil {
		t.Fatalf("no wellness insight after first pass, have %+v", insights)
	}
	if !strings.Contains(wellness.Content, "130 minutes") {
		t.Errorf("insight %q should mention the work duration", wellness.Content)
	}
	if !strings.Contains(wellness.Content, "stress") {
		t.Errorf("insight %q should mention the stress signal", wellness.Content)
	}

	// One wellness-keyword insight is not enough for the action generator.
	if delivered := notifier.delivered(); len(delivered) != 0 {
		t.Fatalf("first pass delivered %d actions, want 0", len(delivered))
	}

	// A second pass past the insight cooldown records another wellness
	// insight; with two keyword-matching insights and no cooldown or
	// back-off in the way, the wellness action fires.
	second := now.Add(50 * time.Minute)
	if err := manager.runPass(ctx, second); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	third := second.Add(time.Minute)
	if err := manager.runPass(ctx, third); err != nil {
		t.Fatalf("third pass: %v", err)
	}

	delivered := notifier.delivered()
	if len(delivered) == 0 {
		t.Fatal("expected a wellness action once two keyword insights exist")
	}
	found := false
	for _, act := range delivered {
		if act.Source == "wellness" {
			found = true
			if act.Priority != 5 {
				t.Errorf("daytime wellness priority = %d, want 5", act.Priority)
			}
		}
	}
	if !found {
		t.Fatalf("delivered actions %+v missing wellness", delivered)
	}

	// Delivered popups are stamped shown.
	actions, err := st.RecentActions(ctx, 10)
	if err != nil {
		t.Fatalf("recent actions: %v", err)
	}
	for _, act := range actions {
		if act.ShownAt == nil {
			t.Errorf("action %d delivered but not stamped shown", act.ID)
		}
	}
}

func TestManagerStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	manager := NewManager(cfg, st, &testsupport.FakeLLM{Unloaded: true}, &recordingNotifier{}, nil)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("second start should fail while running")
	}
	if !manager.Running() {
		t.Fatal("manager should report running")
	}
	manager.Stop()
	if manager.Running() {
		t.Fatal("manager should report stopped")
	}
	// Stop twice is safe.
	manager.Stop()
}

func TestPassFailuresDoNotAbortLoopState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	manager := NewManager(cfg, st, &testsupport.FakeLLM{Unloaded: true}, &recordingNotifier{}, nil)

	if err := manager.RunPass(context.Background()); err != nil {
		t.Fatalf("pass on empty store should succeed, got %v", err)
	}
	status := manager.Status()
	if status.Count != 1 || status.LastErr != nil {
		t.Fatalf("status = %+v, want one clean pass", status)
	}
}
