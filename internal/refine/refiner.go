package refine

import (
	"context"
	"time"

	"lookout/internal/store"
)

// Refiner extracts one category of structured fact from a pass context.
//
// Parse must treat malformed input as an empty extraction: it returns no
// items rather than an error.
type Refiner interface {
	Name() string
	Existing(ctx context.Context, st *store.Store) ([]string, error)
	SystemPrompt(existing []string) string
	Parse(text string) []string
	Store(ctx context.Context, st *store.Store, items []string, now time.Time) error
}

// Defaults returns the standard refiner set in execution order.
func Defaults() []Refiner {
	return []Refiner{
		NewCollaborators(),
		NewProjects(),
		NewInterests(),
		NewScreenTodos(),
		NewVoiceTodos(),
	}
}
