package action

import (
	"context"
	"log/slog"

	"lookout/internal/logging"
	"lookout/internal/observe"
	"lookout/internal/services"
	"lookout/internal/store"
)

// Engine evaluates action generators sequentially over one snapshot and
// records every emitted action. Delivery is the caller's job.
type Engine struct {
	generators []Generator
	policy     Policy
	store      *store.Store
	logger     *slog.Logger
}

// NewEngine assembles an engine over the given generators.
func NewEngine(generators []Generator, policy Policy, st *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{generators: generators, policy: policy, store: st, logger: logger}
}

// Run evaluates every generator once and returns the actions emitted this
// pass, already persisted with their IDs. The shared guards run before any
// generator-specific trigger: back-off suppresses everything, cooldown
// suppresses per generator.
func (e *Engine) Run(ctx context.Context, snap *observe.Snapshot) ([]store.Action, error) {
	if e.policy.BackedOff(snap) {
		e.logger.Info("action generation backed off by recent dismissals",
			logging.String(logging.FieldComponent, "action"),
			logging.Int("dismissals", snap.Dismissals))
		return nil, nil
	}

	channel := e.policy.Channel(snap)
	var emitted []store.Action
	for _, generator := range e.generators {
		if err := ctx.Err(); err != nil {
			return emitted, err
		}
		gctx := services.WithGenerator(ctx, generator.Name())
		log := logging.WithContext(gctx, e.logger)

		if OnCooldown(snap, generator.Name(), generator.Cooldown()) {
			log.Debug("generator on cooldown")
			continue
		}
		if !generator.ShouldTrigger(snap) {
			continue
		}
		action := generator.Generate(snap, channel)
		if action == nil {
			continue
		}
		action.Source = generator.Name()
		action.CreatedAt = snap.Now
		action.Priority = store.ClampPriority(action.Priority)
		id, err := e.store.InsertAction(gctx, *action)
		if err != nil {
			log.Warn("failed to record action", logging.Error(err))
			continue
		}
		action.ID = id
		emitted = append(emitted, *action)
		log.Info("emitted action",
			logging.String("type", string(action.Type)),
			logging.Int("priority", action.Priority))
	}
	return emitted, nil
}
