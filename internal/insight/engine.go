package insight

import (
	"context"
	"log/slog"
	"time"

	"lookout/internal/config"
	"lookout/internal/logging"
	"lookout/internal/observe"
	"lookout/internal/services"
	"lookout/internal/services/llm"
	"lookout/internal/store"
	"lookout/internal/textutil"
)

// Insights whose content is this similar to a recent insight from the same
// generator are dropped instead of recorded.
const duplicateSimilarity = 0.85

// How far back to look when suppressing near-duplicate insights.
const duplicateWindow = 24 * time.Hour

// Generator synthesizes one category of insight.
//
// ShouldGenerate must be a cheap deterministic check over snapshot counts;
// it performs no LLM calls. Generate may return a nil insight when the
// evidence turns out to be insufficient.
type Generator interface {
	Name() string
	Cooldown() time.Duration
	ShouldGenerate(snap *observe.Snapshot) bool
	Generate(ctx context.Context, snap *observe.Snapshot, service llm.Service) (*store.Insight, error)
}

// Defaults returns the standard insight generator set in execution order.
func Defaults(cfg *config.Config) []Generator {
	return []Generator{NewWellness(cfg), NewWorkPattern(), NewProject()}
}

// Engine runs insight generators sequentially over one snapshot, enforcing
// each generator's cooldown from the store's insight history.
type Engine struct {
	generators []Generator
	llm        llm.Service
	store      *store.Store
	logger     *slog.Logger
}

// NewEngine assembles an engine over the given generators.
func NewEngine(generators []Generator, service llm.Service, st *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{generators: generators, llm: service, store: st, logger: logger}
}

// Run evaluates every generator once. It returns only context cancellation;
// per-generator failures are contained and logged.
func (e *Engine) Run(ctx context.Context, snap *observe.Snapshot) error {
	for _, generator := range e.generators {
		if err := ctx.Err(); err != nil {
			return err
		}
		gctx := services.WithGenerator(ctx, generator.Name())
		log := logging.WithContext(gctx, e.logger)

		last, found, err := e.store.LastInsightAt(gctx, generator.Name())
		if err != nil {
			log.Warn("cooldown lookup failed", logging.Error(err))
			continue
		}
		if found && snap.Now.Sub(last) < generator.Cooldown() {
			log.Debug("generator on cooldown",
				logging.Duration("remaining", generator.Cooldown()-snap.Now.Sub(last)))
			continue
		}
		if !generator.ShouldGenerate(snap) {
			continue
		}
		insight, err := generator.Generate(gctx, snap, e.llm)
		if err != nil {
			log.Warn("insight generation failed", logging.Error(err))
			continue
		}
		if insight == nil {
			continue
		}
		insight.Source = generator.Name()
		insight.CreatedAt = snap.Now
		duplicate, err := e.isNearDuplicate(gctx, insight)
		if err != nil {
			log.Warn("duplicate check failed", logging.Error(err))
		} else if duplicate {
			log.Debug("suppressed near-duplicate insight")
			continue
		}
		if _, err := e.store.InsertInsight(gctx, *insight); err != nil {
			log.Warn("failed to record insight", logging.Error(err))
			continue
		}
		log.Info("recorded insight", logging.String("kind", string(insight.Kind)))
	}
	return nil
}

// isNearDuplicate reports whether a recent insight from the same generator
// says essentially the same thing, compared by token fingerprint.
func (e *Engine) isNearDuplicate(ctx context.Context, candidate *store.Insight) (bool, error) {
	fingerprint := textutil.NewFingerprint(candidate.Content)
	if fingerprint == nil {
		return false, nil
	}
	recent, err := e.store.RecentInsights(ctx, candidate.CreatedAt.Add(-duplicateWindow))
	if err != nil {
		return false, err
	}
	for _, existing := range recent {
		if existing.Source != candidate.Source {
			continue
		}
		if textutil.CosineSimilarity(fingerprint, textutil.NewFingerprint(existing.Content)) >= duplicateSimilarity {
			return true, nil
		}
	}
	return false, nil
}
