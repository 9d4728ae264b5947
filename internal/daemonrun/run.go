package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"lookout/internal/capture"
	"lookout/internal/config"
	"lookout/internal/daemon"
	"lookout/internal/ipc"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/services/llm"
	"lookout/internal/services/transcriber"
	"lookout/internal/store"
	"lookout/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// SocketPath returns the IPC socket location for the given config.
func SocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join("", "lookout.sock")
	}
	return filepath.Join(cfg.Paths.LogDir, "lookout.sock")
}

// PIDPath returns the daemon pid file location for the given config.
func PIDPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join("", "lookout.pid")
	}
	return filepath.Join(cfg.Paths.LogDir, "lookout.pid")
}

// Run starts the lookout daemon runtime loop and blocks until the context is
// canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := PIDPath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(signalCtx, cfg)
	if err != nil {
		logger.Error("open observation store", logging.Error(err))
		return err
	}
	defer st.Close()

	recorder := capture.NewRecorder(cfg, capture.NewMicSource(cfg.Capture), buildTranscriber(cfg), st, logger)
	manager := workflow.NewManager(cfg, st, buildLLMClient(cfg), notifications.NewService(cfg), logger)

	d, err := daemon.New(cfg, st, logger, recorder, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, SocketPath(cfg), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check microphone access and configuration, then run lookout start"))
	}

	<-signalCtx.Done()
	logger.Info("lookout daemon shutting down")
	return nil
}

func buildTranscriber(cfg *config.Config) *transcriber.Service {
	return transcriber.NewService(transcriber.Config{
		Binary:    cfg.Transcriber.Binary,
		ModelPath: cfg.Transcriber.ModelPath,
		Language:  cfg.Transcriber.Language,
		Threads:   cfg.Transcriber.Threads,
		Timeout:   time.Duration(cfg.Transcriber.TimeoutSeconds) * time.Second,
	})
}

func buildLLMClient(cfg *config.Config) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
