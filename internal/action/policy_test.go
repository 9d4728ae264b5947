package action

import (
	"testing"
	"time"

	"lookout/internal/observe"
	"lookout/internal/store"
	"lookout/internal/testsupport"
)

func testPolicy(t *testing.T) Policy {
	t.Helper()
	return NewPolicy(testsupport.NewConfig(t))
}

func TestOnCooldownOnlyCountsOwnActions(t *testing.T) {
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)
	cooldown := 45 * time.Minute
	snap := &observe.Snapshot{
		Now: now,
		LastActionAt: map[string]time.Time{
			"wellness": now.Add(-10 * time.Minute),
			"focus":    now.Add(-2 * time.Hour),
		},
	}

	if !OnCooldown(snap, "wellness", cooldown) {
		t.Error("action 10m ago within 45m cooldown should block")
	}
	if OnCooldown(snap, "focus", cooldown) {
		t.Error("action 2h ago should not block")
	}
	// Another generator's recent action never affects this one.
	if OnCooldown(snap, "late_night", cooldown) {
		t.Error("generator with no history should not be on cooldown")
	}
}

func TestOnCooldownBoundary(t *testing.T) {
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)
	cooldown := 30 * time.Minute
	snap := &observe.Snapshot{
		Now:          now,
		LastActionAt: map[string]time.Time{"reminder": now.Add(-cooldown)},
	}
	if OnCooldown(snap, "reminder", cooldown) {
		t.Error("cooldown should expire exactly at T+C")
	}
	snap.LastActionAt["reminder"] = now.Add(-cooldown + time.Second)
	if !OnCooldown(snap, "reminder", cooldown) {
		t.Error("one second before T+C should still block")
	}
}

func TestBackedOffThreshold(t *testing.T) {
	policy := testPolicy(t)
	for dismissals, want := range map[int]bool{0: false, 2: false, 3: true, 5: true} {
		snap := &observe.Snapshot{Dismissals: dismissals}
		if got := policy.BackedOff(snap); got != want {
			t.Errorf("BackedOff with %d dismissals = %v, want %v", dismissals, got, want)
		}
	}
}

func TestChannelMoodGate(t *testing.T) {
	policy := testPolicy(t)
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)

	neutral := &observe.Snapshot{Now: now, DominantMood: "happy"}
	if got := policy.Channel(neutral); got != store.ActionPopup {
		t.Errorf("neutral mood, no popup history: channel = %v, want popup", got)
	}
	stressed := &observe.Snapshot{Now: now, DominantMood: "angry"}
	if got := policy.Channel(stressed); got != store.ActionNotification {
		t.Errorf("stressed mood: channel = %v, want notification", got)
	}
}

func TestChannelPopupSuppressionWindow(t *testing.T) {
	policy := testPolicy(t)
	now := time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC)

	recent := now.Add(-10 * time.Minute)
	snap := &observe.Snapshot{Now: now, DominantMood: "happy", LastPopupAt: &recent}
	if got := policy.Channel(snap); got != store.ActionNotification {
		t.Errorf("popup 10m ago: channel = %v, want notification even with neutral mood", got)
	}

	old := now.Add(-25 * time.Minute)
	snap.LastPopupAt = &old
	if got := policy.Channel(snap); got != store.ActionPopup {
		t.Errorf("popup 25m ago: channel = %v, want popup again", got)
	}
}
