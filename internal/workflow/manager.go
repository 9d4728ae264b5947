package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lookout/internal/action"
	"lookout/internal/config"
	"lookout/internal/insight"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/observe"
	"lookout/internal/refine"
	"lookout/internal/services"
	"lookout/internal/services/llm"
	"lookout/internal/store"
)

// Manager owns the periodic generation loop.
type Manager struct {
	cfg          *config.Config
	store        *store.Store
	logger       *slog.Logger
	notifier     notifications.Service
	passInterval time.Duration

	refiners *refine.Runner
	insights *insight.Engine
	actions  *action.Engine

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	lastPassAt  time.Time
	lastPassErr error
	passCount   int
}

// NewManager wires a manager with the default refiner and generator sets.
func NewManager(cfg *config.Config, st *store.Store, service llm.Service, notifier notifications.Service, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "workflow")
	return &Manager{
		cfg:          cfg,
		store:        st,
		logger:       logger,
		notifier:     notifier,
		passInterval: time.Duration(cfg.Generation.PassIntervalSeconds) * time.Second,
		refiners:     refine.NewRunner(refine.Defaults(), service, st, logger),
		insights:     insight.NewEngine(insight.Defaults(cfg), service, st, logger),
		actions:      action.NewEngine(action.Defaults(cfg), action.NewPolicy(cfg), st, logger),
	}
}

// Start launches the pass loop. A second Start while running is an error.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	m.logger.Info("generation loop started", logging.Duration("pass_interval", m.passInterval))
	return nil
}

// Stop cancels the loop and waits for the in-flight pass to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("generation loop stopped")
}

// Running reports whether the loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// PassStatus describes the most recent generation pass.
type PassStatus struct {
	LastAt  time.Time
	LastErr error
	Count   int
}

// Status reports the outcome of the most recent pass and the total count.
func (m *Manager) Status() PassStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return PassStatus{LastAt: m.lastPassAt, LastErr: m.lastPassErr, Count: m.passCount}
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.passInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := m.RunPass(ctx)
			if err != nil && errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

// RunPass executes one full generation pass: snapshot, refiners, insight
// generators, action generators, delivery. Per-stage failures are contained;
// only context cancellation aborts the pass.
func (m *Manager) RunPass(ctx context.Context) error {
	passID := uuid.NewString()
	ctx = services.WithPassID(ctx, passID)
	log := logging.WithContext(ctx, m.logger)
	started := time.Now()

	err := m.runPass(ctx, started.UTC())
	m.mu.Lock()
	m.lastPassAt = time.Now()
	m.lastPassErr = err
	m.passCount++
	m.mu.Unlock()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn("generation pass failed", logging.Error(err))
		}
		return err
	}
	log.Debug("generation pass complete", logging.Duration("elapsed", time.Since(started)))
	return nil
}

// runPass works from one snapshot for its whole duration: facts merged and
// insights recorded during this pass become visible to generators on the
// next one.
func (m *Manager) runPass(ctx context.Context, now time.Time) error {
	snap, err := observe.Build(ctx, m.store, m.cfg, now)
	if err != nil {
		return err
	}
	if err := m.refiners.Run(ctx, snap); err != nil {
		return err
	}
	if err := m.insights.Run(ctx, snap); err != nil {
		return err
	}
	emitted, err := m.actions.Run(ctx, snap)
	if err != nil {
		return err
	}
	m.deliver(ctx, emitted)
	return nil
}

// deliver pushes emitted actions through the notification service and
// stamps successfully delivered popups as shown. Delivery failures are
// logged; the action stays recorded for the CLI either way.
func (m *Manager) deliver(ctx context.Context, emitted []store.Action) {
	for _, act := range emitted {
		log := m.logger.With(
			logging.String(logging.FieldGenerator, act.Source),
			logging.String("action_type", string(act.Type)))
		var err error
		switch act.Type {
		case store.ActionPopup:
			err = m.notifier.DeliverPopup(ctx, act)
		default:
			err = m.notifier.DeliverNotification(ctx, act)
		}
		if err != nil {
			log.Warn("action delivery failed", logging.Error(err))
			continue
		}
		if err := m.store.MarkActionShown(ctx, act.ID, time.Now().UTC()); err != nil {
			log.Warn("failed to stamp action as shown", logging.Error(err))
			continue
		}
		log.Info("action delivered")
	}
}
