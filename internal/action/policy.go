package action

import (
	"time"

	"lookout/internal/config"
	"lookout/internal/observe"
	"lookout/internal/store"
)

// Policy holds the shared guards applied before any generator-specific
// trigger logic. All inputs come from the pass snapshot, never from ambient
// state, so arbitrary histories can be constructed in tests.
type Policy struct {
	BackoffDismissals int
	PopupQuiet        time.Duration
}

// NewPolicy derives the shared policy from configuration.
func NewPolicy(cfg *config.Config) Policy {
	return Policy{
		BackoffDismissals: cfg.Generation.BackoffDismissals,
		PopupQuiet:        time.Duration(cfg.Generation.PopupQuietMin) * time.Minute,
	}
}

// OnCooldown reports whether the named generator's own most recent action
// falls within its cooldown window. Other generators' actions never count.
func OnCooldown(snap *observe.Snapshot, name string, cooldown time.Duration) bool {
	last, ok := snap.LastActionAt[name]
	if !ok {
		return false
	}
	return snap.Now.Sub(last) < cooldown
}

// BackedOff reports whether global dismissals have tripped the shared
// circuit breaker. It is independent of which generators were dismissed.
func (p Policy) BackedOff(snap *observe.Snapshot) bool {
	return snap.Dismissals >= p.BackoffDismissals
}

// Channel selects the delivery channel: a popup only when the dominant mood
// is not stress-like and no popup has shown within the quiet window,
// otherwise a notification.
func (p Policy) Channel(snap *observe.Snapshot) store.ActionType {
	if snap.StressedMood() {
		return store.ActionNotification
	}
	if snap.LastPopupAt != nil && snap.Now.Sub(*snap.LastPopupAt) < p.PopupQuiet {
		return store.ActionNotification
	}
	return store.ActionPopup
}
