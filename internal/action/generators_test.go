package action

import (
	"context"
	"strings"
	"testing"
	"time"

	"lookout/internal/observe"
	"lookout/internal/store"
	"lookout/internal/testsupport"
)

func insightWith(content string, age time.Duration, now time.Time) store.Insight {
	return store.Insight{Kind: store.InsightObservation, Content: content, Source: "wellness", CreatedAt: now.Add(-age)}
}

func TestWellnessActionBoundary(t *testing.T) {
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)
	wellness := NewWellnessAction()

	one := &observe.Snapshot{Now: now, RecentInsights: []store.Insight{
		insightWith("You have been working a long stretch", 5*time.Minute, now),
		insightWith("Apollo keeps coming up", 10*time.Minute, now),
	}}
	if wellness.ShouldTrigger(one) {
		t.Error("exactly one wellness-keyword insight should not trigger")
	}

	two := &observe.Snapshot{Now: now, RecentInsights: []store.Insight{
		insightWith("You have been working a long stretch", 5*time.Minute, now),
		insightWith("Stress is showing in your voice, consider a break", 10*time.Minute, now),
	}}
	if !wellness.ShouldTrigger(two) {
		t.Error("exactly two wellness-keyword insights should trigger")
	}

	action := wellness.Generate(two, store.ActionPopup)
	if action.Priority != 5 {
		t.Errorf("daytime priority = %d, want 5", action.Priority)
	}
	if action.Message != two.RecentInsights[0].Content {
		t.Errorf("message %q should quote the newest matching insight", action.Message)
	}

	lateSnap := &observe.Snapshot{Now: time.Date(2026, time.March, 4, 23, 30, 0, 0, time.UTC), RecentInsights: two.RecentInsights}
	if got := wellness.Generate(lateSnap, store.ActionPopup).Priority; got != 7 {
		t.Errorf("late-night priority = %d, want 7", got)
	}
}

func TestFocusActionSingleHit(t *testing.T) {
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)
	focus := NewFocusAction()

	if focus.ShouldTrigger(&observe.Snapshot{Now: now}) {
		t.Error("no insights should not trigger")
	}
	snap := &observe.Snapshot{Now: now, RecentInsights: []store.Insight{
		insightWith("Focus moved across many apps this hour", 5*time.Minute, now),
	}}
	if !focus.ShouldTrigger(snap) {
		t.Error("one focus-keyword insight should trigger")
	}
	action := focus.Generate(snap, store.ActionNotification)
	if action.Priority != 4 || action.Type != store.ActionNotification {
		t.Errorf("action = %+v, want priority 4 on the shared channel", action)
	}
}

func TestReminderActionStaleTodoOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	reminder := NewReminderAction(cfg)
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)

	fresh := &observe.Snapshot{Now: now, PendingTodos: []store.Todo{
		{Description: "reply to review", CreatedAt: now.Add(-30 * time.Minute)},
	}}
	if reminder.ShouldTrigger(fresh) {
		t.Error("fresh todo should not trigger")
	}

	stale := &observe.Snapshot{Now: now, PendingTodos: []store.Todo{
		{Description: "reply to review", CreatedAt: now.Add(-3 * time.Hour)},
	}}
	if !reminder.ShouldTrigger(stale) {
		t.Error("3h-old todo should trigger with 2h staleness")
	}

	action := reminder.Generate(stale, store.ActionPopup)
	if action.Type != store.ActionNotification {
		t.Errorf("reminder type = %v, must always be notification", action.Type)
	}
	if action.Priority != 4 {
		t.Errorf("reminder priority = %d, want 4", action.Priority)
	}
	if !strings.Contains(action.Message, "reply to review") {
		t.Errorf("message %q should name the stale todo", action.Message)
	}
}

func TestLateNightActionNeedsBothConditions(t *testing.T) {
	lateNight := NewLateNightAction()
	insights := []store.Insight{
		{Kind: store.InsightObservation, Content: "Might be time to wrap up for the night", Source: "wellness"},
	}

	day := &observe.Snapshot{Now: time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC), RecentInsights: insights}
	if lateNight.ShouldTrigger(day) {
		t.Error("matching insights during the day should not trigger")
	}
	lateQuiet := &observe.Snapshot{Now: time.Date(2026, time.March, 4, 23, 30, 0, 0, time.UTC)}
	if lateNight.ShouldTrigger(lateQuiet) {
		t.Error("late hour without matching insights should not trigger")
	}
	late := &observe.Snapshot{Now: time.Date(2026, time.March, 4, 23, 30, 0, 0, time.UTC), RecentInsights: insights}
	if !lateNight.ShouldTrigger(late) {
		t.Error("late hour with a matching insight should trigger")
	}

	if got := lateNight.Generate(late, store.ActionPopup).Priority; got != 8 {
		t.Errorf("23:30 priority = %d, want 8", got)
	}
	evening := &observe.Snapshot{Now: time.Date(2026, time.March, 4, 22, 30, 0, 0, time.UTC), RecentInsights: insights}
	if got := lateNight.Generate(evening, store.ActionPopup).Priority; got != 5 {
		t.Errorf("22:30 priority = %d, want 5", got)
	}
	afterMidnight := &observe.Snapshot{Now: time.Date(2026, time.March, 5, 1, 0, 0, 0, time.UTC), RecentInsights: insights}
	if got := lateNight.Generate(afterMidnight, store.ActionPopup).Priority; got != 8 {
		t.Errorf("01:00 priority = %d, want 8", got)
	}
}

func TestEngineBackoffSuppressesEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)

	// Trigger conditions for wellness are satisfied, but three dismissals
	// trip the global circuit breaker.
	snap := &observe.Snapshot{
		Now:        now,
		Dismissals: 3,
		RecentInsights: []store.Insight{
			insightWith("working long hours without rest", 5*time.Minute, now),
			insightWith("stress is visible, take a break", 10*time.Minute, now),
		},
	}
	engine := NewEngine(Defaults(cfg), NewPolicy(cfg), st, nil)
	emitted, err := engine.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(emitted) != 0 {
		t.Fatalf("backed-off engine emitted %d actions, want 0", len(emitted))
	}

	snap.Dismissals = 2
	emitted, err = engine.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("run below threshold: %v", err)
	}
	if len(emitted) == 0 {
		t.Fatal("below back-off threshold the wellness action should emit")
	}
	if emitted[0].Source != "wellness" || emitted[0].ID == 0 {
		t.Fatalf("emitted = %+v, want persisted wellness action", emitted[0])
	}
}

func TestEngineCooldownPerGenerator(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)

	snap := &observe.Snapshot{
		Now: now,
		RecentInsights: []store.Insight{
			insightWith("working long hours without rest", 5*time.Minute, now),
			insightWith("stress is visible, take a break", 10*time.Minute, now),
		},
		LastActionAt: map[string]time.Time{"wellness": now.Add(-10 * time.Minute)},
	}
	engine := NewEngine([]Generator{NewWellnessAction()}, NewPolicy(cfg), st, nil)
	emitted, err := engine.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(emitted) != 0 {
		t.Fatalf("generator on cooldown emitted %d actions", len(emitted))
	}

	snap.LastActionAt["wellness"] = now.Add(-time.Hour)
	emitted, err = engine.Run(context.Background(), snap)
	if err != nil {
		t.Fatalf("run off cooldown: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("expected one action off cooldown, got %d", len(emitted))
	}
}
