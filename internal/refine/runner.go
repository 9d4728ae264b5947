package refine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lookout/internal/logging"
	"lookout/internal/observe"
	"lookout/internal/services"
	"lookout/internal/services/llm"
	"lookout/internal/store"
)

// Runner executes a refiner batch against one pass snapshot. Refiners run
// strictly sequentially; a failure in one is logged and never blocks the
// rest of the batch.
type Runner struct {
	refiners []Refiner
	llm      llm.Service
	store    *store.Store
	logger   *slog.Logger
}

// NewRunner assembles a runner over the given refiners.
func NewRunner(refiners []Refiner, service llm.Service, st *store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{refiners: refiners, llm: service, store: st, logger: logger}
}

// Run executes every refiner against the snapshot. It returns only context
// cancellation; per-refiner failures are contained.
func (r *Runner) Run(ctx context.Context, snap *observe.Snapshot) error {
	if len(snap.Captures) == 0 && len(snap.VoiceSegments) == 0 {
		r.logger.Debug("no recent observations, skipping refiner batch", logging.String(logging.FieldComponent, "refine"))
		return nil
	}
	if !r.llm.Loaded() {
		r.logger.Debug("llm unavailable, skipping refiner batch", logging.String(logging.FieldComponent, "refine"))
		return nil
	}

	prompt := contextPrompt(snap)
	for _, refiner := range r.refiners {
		if err := ctx.Err(); err != nil {
			return err
		}
		rctx := services.WithRefiner(ctx, refiner.Name())
		log := logging.WithContext(rctx, r.logger)

		existing, err := refiner.Existing(rctx, r.store)
		if err != nil {
			log.Warn("failed to load existing items", logging.Error(err))
			existing = nil
		}
		response, err := r.llm.QuickQueryJSON(rctx, refiner.SystemPrompt(existing), prompt, "refine "+refiner.Name())
		if err != nil {
			log.Warn("refiner query failed", logging.Error(err))
			continue
		}
		items := refiner.Parse(response)
		if len(items) == 0 {
			log.Debug("refiner extracted nothing")
			continue
		}
		if err := refiner.Store(rctx, r.store, items, snap.Now); err != nil {
			log.Warn("failed to merge extracted facts", logging.Error(err))
			continue
		}
		log.Info("merged extracted facts", logging.Int("items", len(items)))
	}
	return nil
}

// contextPrompt renders the shared multi-modal context every refiner sees.
func contextPrompt(snap *observe.Snapshot) string {
	var builder strings.Builder
	builder.WriteString("Recent activity context.\n")

	if len(snap.Captures) > 0 {
		builder.WriteString("\nOn-screen (focused windows):\n")
		for _, capture := range snap.Captures {
			fmt.Fprintf(&builder, "- %s / %s", capture.App, capture.Window)
			if capture.Repeats > 1 {
				fmt.Fprintf(&builder, " (seen %d times)", capture.Repeats)
			}
			if text := strings.TrimSpace(capture.OCRText); text != "" {
				fmt.Fprintf(&builder, ": %s", text)
			}
			builder.WriteString("\n")
		}
	}
	if snap.VoiceText != "" {
		builder.WriteString("\nSpoken (transcribed):\n")
		builder.WriteString(snap.VoiceText)
		builder.WriteString("\n")
	}
	if snap.DominantMood != "" {
		fmt.Fprintf(&builder, "\nDominant mood: %s\n", snap.DominantMood)
	}
	return builder.String()
}
