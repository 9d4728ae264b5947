package refine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lookout/internal/store"
)

const maxExistingInPrompt = 30

// entityRefiner merges named entities (collaborators, projects, interests)
// into one of the store's entity tables.
type entityRefiner struct {
	name        string
	kind        store.EntityKind
	instruction string
}

// NewCollaborators extracts people the user works with.
func NewCollaborators() Refiner {
	return &entityRefiner{
		name: "collaborators",
		kind: store.EntityCollaborator,
		instruction: "Extract the names of people the user is working or communicating with. " +
			"Only include actual person names, never app names, company names, or the user themselves.",
	}
}

// NewProjects extracts projects the user is working on.
func NewProjects() Refiner {
	return &entityRefiner{
		name: "projects",
		kind: store.EntityProject,
		instruction: "Extract the names of projects, codebases, or initiatives the user is actively working on. " +
			"Prefer proper names over generic descriptions.",
	}
}

// NewInterests extracts recurring topics of interest.
func NewInterests() Refiner {
	return &entityRefiner{
		name: "interests",
		kind: store.EntityInterest,
		instruction: "Extract topics the user shows sustained interest in: technologies, subjects, hobbies. " +
			"Only include topics with real evidence in the context, not one-off mentions.",
	}
}

func (r *entityRefiner) Name() string { return r.name }

func (r *entityRefiner) Existing(ctx context.Context, st *store.Store) ([]string, error) {
	return st.EntityNames(ctx, r.kind)
}

func (r *entityRefiner) SystemPrompt(existing []string) string {
	var builder strings.Builder
	builder.WriteString(r.instruction)
	builder.WriteString("\n\nRespond with a JSON array of name strings, for example [\"Name One\", \"Name Two\"]. ")
	builder.WriteString("Respond with [] when nothing qualifies.")
	if len(existing) > 0 {
		builder.WriteString("\n\nAlready known (mention again only if they appear in this context): ")
		builder.WriteString(strings.Join(clip(existing, maxExistingInPrompt), ", "))
	}
	return builder.String()
}

func (r *entityRefiner) Parse(text string) []string {
	return parseStringItems(text, "name")
}

func (r *entityRefiner) Store(ctx context.Context, st *store.Store, items []string, now time.Time) error {
	for _, name := range items {
		if err := st.UpsertEntity(ctx, r.kind, name, now); err != nil {
			return fmt.Errorf("merge %s %q: %w", r.name, name, err)
		}
	}
	return nil
}

// todoRefiner inserts extracted outstanding tasks tagged with their signal
// source. Todos are insert-only; the prompt lists recent pending
// descriptions to bias against duplicates.
type todoRefiner struct {
	name        string
	source      string
	instruction string
}

// NewScreenTodos extracts tasks visible in on-screen text.
func NewScreenTodos() Refiner {
	return &todoRefiner{
		name:   "screen_todos",
		source: store.TodoSourceScreen,
		instruction: "From the on-screen text in the context, extract concrete outstanding tasks the user still needs " +
			"to do: TODO comments, unchecked items, unanswered requests. Ignore completed work and anything vague.",
	}
}

// NewVoiceTodos extracts tasks the user spoke about.
func NewVoiceTodos() Refiner {
	return &todoRefiner{
		name:   "voice_todos",
		source: store.TodoSourceVoice,
		instruction: "From the spoken transcript in the context, extract concrete tasks the user said they need to do. " +
			"Only include clear commitments, phrased as short imperative descriptions.",
	}
}

func (r *todoRefiner) Name() string { return r.name }

func (r *todoRefiner) Existing(ctx context.Context, st *store.Store) ([]string, error) {
	pending, err := st.PendingTodos(ctx)
	if err != nil {
		return nil, err
	}
	descriptions := make([]string, 0, len(pending))
	for _, todo := range pending {
		descriptions = append(descriptions, todo.Description)
	}
	return descriptions, nil
}

func (r *todoRefiner) SystemPrompt(existing []string) string {
	var builder strings.Builder
	builder.WriteString(r.instruction)
	builder.WriteString("\n\nRespond with a JSON array of short task descriptions, for example [\"Reply to the review\"]. ")
	builder.WriteString("Respond with [] when nothing qualifies.")
	if len(existing) > 0 {
		builder.WriteString("\n\nDo not repeat tasks already tracked: ")
		builder.WriteString(strings.Join(clip(existing, maxExistingInPrompt), "; "))
	}
	return builder.String()
}

func (r *todoRefiner) Parse(text string) []string {
	return parseStringItems(text, "description", "task", "todo")
}

func (r *todoRefiner) Store(ctx context.Context, st *store.Store, items []string, now time.Time) error {
	// The prompt asks the model not to repeat tracked tasks, but that is
	// only a bias. Skip anything that matches a pending todo verbatim.
	pending, err := st.PendingTodos(ctx)
	if err != nil {
		return fmt.Errorf("list pending todos: %w", err)
	}
	tracked := make(map[string]struct{}, len(pending))
	for _, todo := range pending {
		tracked[normalizeTodo(todo.Description)] = struct{}{}
	}
	for _, description := range items {
		key := normalizeTodo(description)
		if _, ok := tracked[key]; ok {
			continue
		}
		if _, err := st.InsertTodo(ctx, description, r.source, now); err != nil {
			return fmt.Errorf("insert %s todo: %w", r.source, err)
		}
		tracked[key] = struct{}{}
	}
	return nil
}

func normalizeTodo(description string) string {
	return strings.ToLower(strings.Join(strings.Fields(description), " "))
}

func clip(items []string, limit int) []string {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}
