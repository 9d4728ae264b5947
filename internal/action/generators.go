package action

import (
	"fmt"
	"time"

	"lookout/internal/config"
	"lookout/internal/observe"
	"lookout/internal/store"
)

const (
	defaultActionCooldown   = 30 * time.Minute
	wellnessActionCooldown  = 45 * time.Minute
	focusActionCooldown     = 45 * time.Minute
	reminderActionCooldown  = 60 * time.Minute
	lateNightActionCooldown = 60 * time.Minute
)

var (
	wellnessKeywords  = []string{"break", "stress", "tired", "rest", "hour", "working"}
	focusKeywords     = []string{"switch", "apps", "focus", "distract"}
	lateNightKeywords = []string{"late", "night", "rest", "sleep", "wrap"}
)

// Generator is one action source. ShouldTrigger holds only the
// generator-specific condition; the engine applies the shared cooldown and
// back-off guards first. Generate receives the channel the shared policy
// selected and may override it.
type Generator interface {
	Name() string
	Cooldown() time.Duration
	ShouldTrigger(snap *observe.Snapshot) bool
	Generate(snap *observe.Snapshot, channel store.ActionType) *store.Action
}

// Defaults returns the standard action generator set in execution order.
func Defaults(cfg *config.Config) []Generator {
	return []Generator{
		NewWellnessAction(),
		NewFocusAction(),
		NewReminderAction(cfg),
		NewLateNightAction(),
	}
}

// WellnessAction suggests a break once at least two recent insights carry
// wellness keywords.
type WellnessAction struct{}

func NewWellnessAction() *WellnessAction { return &WellnessAction{} }
func (g *WellnessAction) Name() string { return "wellness" }
func (g *WellnessAction) Cooldown() time.Duration { return wellnessActionCooldown }

func (g *WellnessAction) ShouldTrigger(snap *observe.Snapshot) bool {
	return len(snap.InsightsMatching(wellnessKeywords, 1)) >= 2
}

func (g *WellnessAction) Generate(snap *observe.Snapshot, channel store.ActionType) *store.Action {
	priority := 5
	if snap.IsLateNight() {
		priority = 7
	}
	message := "You've been pushing for a while. A short break would do you good."
	if matched := snap.InsightsMatching(wellnessKeywords, 1); len(matched) > 0 {
		message = matched[0].Content
	}
	return &store.Action{
		Type:     channel,
		Title:    "Time for a break?",
		Message:  message,
		Priority: priority,
	}
}

// FocusAction nudges when insights describe heavy context switching.
type FocusAction struct{}

func NewFocusAction() *FocusAction { return &FocusAction{} }
func (g *FocusAction) Name() string { return "focus" }
func (g *FocusAction) Cooldown() time.Duration { return focusActionCooldown }

func (g *FocusAction) ShouldTrigger(snap *observe.Snapshot) bool {
	return len(snap.InsightsMatching(focusKeywords, 1)) >= 1
}

func (g *FocusAction) Generate(snap *observe.Snapshot, channel store.ActionType) *store.Action {
	message := "Attention has been bouncing between apps. Maybe pick one thing to finish first."
	if matched := snap.InsightsMatching(focusKeywords, 1); len(matched) > 0 {
		message = matched[0].Content
	}
	return &store.Action{
		Type:     channel,
		Title:    "Regain focus",
		Message:  message,
		Priority: 4,
	}
}

// ReminderAction surfaces a pending todo that has gone stale. The trigger is
// structural, so the message is always templated, and delivery is always a
// notification regardless of the shared channel choice.
type ReminderAction struct {
	staleAfter time.Duration
}

func NewReminderAction(cfg *config.Config) *ReminderAction {
	return &ReminderAction{staleAfter: time.Duration(cfg.Generation.TodoStaleHours) * time.Hour}
}

func (g *ReminderAction) Name() string { return "reminder" }
func (g *ReminderAction) Cooldown() time.Duration { return reminderActionCooldown }

func (g *ReminderAction) ShouldTrigger(snap *observe.Snapshot) bool {
	return g.staleTodo(snap) != nil
}

func (g *ReminderAction) Generate(snap *observe.Snapshot, _ store.ActionType) *store.Action {
	todo := g.staleTodo(snap)
	if todo == nil {
		return nil
	}
	return &store.Action{
		Type:     store.ActionNotification,
		Title:    "Still on your list",
		Message:  fmt.Sprintf("%q has been waiting since %s.", todo.Description, todo.CreatedAt.Format("15:04")),
		Priority: 4,
	}
}

func (g *ReminderAction) staleTodo(snap *observe.Snapshot) *store.Todo {
	for i := range snap.PendingTodos {
		todo := &snap.PendingTodos[i]
		if snap.Now.Sub(todo.CreatedAt) >= g.staleAfter {
			return todo
		}
	}
	return nil
}

// LateNightAction suggests wrapping up when it is late and recent insights
// mention winding down.
type LateNightAction struct{}

func NewLateNightAction() *LateNightAction { return &LateNightAction{} }
func (g *LateNightAction) Name() string { return "late_night" }
func (g *LateNightAction) Cooldown() time.Duration { return lateNightActionCooldown }

func (g *LateNightAction) ShouldTrigger(snap *observe.Snapshot) bool {
	return snap.IsLateNight() && len(snap.InsightsMatching(lateNightKeywords, 1)) >= 1
}

func (g *LateNightAction) Generate(snap *observe.Snapshot, channel store.ActionType) *store.Action {
	priority := 5
	if hour := snap.Now.Hour(); hour >= 23 || hour < 2 {
		priority = 8
	}
	message := "It's getting late. Tomorrow-you will thank you for stopping here."
	if matched := snap.InsightsMatching(lateNightKeywords, 1); len(matched) > 0 {
		message = matched[0].Content
	}
	return &store.Action{
		Type:     channel,
		Title:    "Call it a night?",
		Message:  message,
		Priority: priority,
	}
}
