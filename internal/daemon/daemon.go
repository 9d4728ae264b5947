package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"lookout/internal/capture"
	"lookout/internal/config"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/preflight"
	"lookout/internal/store"
	"lookout/internal/workflow"
)

// directoryChecks names the preflight results that must pass before the
// daemon starts. Everything else degrades to a logged warning.
var directoryChecks = map[string]struct{}{
	"Data directory":  {},
	"Chunk directory": {},
	"Log directory":   {},
}

// Daemon coordinates the capture recorder and the generation workflow and
// enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	recorder *capture.Recorder
	workflow *workflow.Manager

	logPath  string
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Capturing    bool
	Pass         workflow.PassStatus
	DatabasePath string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, rec *capture.Recorder, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil || rec == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, recorder, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "lookoutd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		recorder: rec,
		workflow: wf,
		logPath:  filepath.Join(cfg.Paths.LogDir, "lookout.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start runs preflight checks, launches the workflow manager and the audio
// recorder, and acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lookout daemon instance is already running")
	}

	for _, result := range preflight.RunAll(ctx, d.cfg) {
		if result.Passed {
			continue
		}
		if _, fatal := directoryChecks[result.Name]; fatal {
			_ = d.lock.Unlock()
			return fmt.Errorf("preflight %s: %s", result.Name, result.Detail)
		}
		d.logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.recorder.Start(d.ctx); err != nil {
		d.workflow.Stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start capture: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("lookout daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops capture and background processing and releases the daemon lock.
// The recorder drains its final audio chunk before Stop returns.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if err := d.recorder.Stop(); err != nil {
		d.logger.Warn("failed to stop capture cleanly", logging.Error(err))
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("lookout daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// TriggerPass runs a generation pass immediately instead of waiting for the
// next scheduled tick.
func (d *Daemon) TriggerPass(ctx context.Context) error {
	if d.workflow == nil {
		return errors.New("workflow manager unavailable")
	}
	return d.workflow.RunPass(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Capturing:    d.recorder.Capturing(),
		Pass:         d.workflow.Status(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
}
