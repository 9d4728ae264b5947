package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lookout/internal/capture"
	"lookout/internal/config"
	"lookout/internal/daemon"
	"lookout/internal/ipc"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/services/transcriber"
	"lookout/internal/store"
	"lookout/internal/testsupport"
	"lookout/internal/workflow"
)

type idleSource struct{}

func (idleSource) Start(func([]int16)) error { return nil }
func (idleSource) Stop() error               { return nil }

type idleTranscriber struct{}

func (idleTranscriber) Loaded() bool                     { return true }
func (idleTranscriber) Initialize(context.Context) error { return nil }
func (idleTranscriber) Transcribe(context.Context, string) (transcriber.Result, error) {
	return transcriber.Result{}, nil
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *store.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	llm := &testsupport.FakeLLM{Unloaded: true}
	rec := capture.NewRecorder(cfg, idleSource{}, idleTranscriber{}, st, logger)
	mgr := workflow.NewManager(cfg, st, llm, notifications.NewService(cfg), logger)
	d, err := daemon.New(cfg, st, logger, rec, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		cancel()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	configPath := filepath.Join(cfg.Paths.DataDir, "config.toml")
	writeTestConfig(t, configPath, cfg)

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		store:      st,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nchunk_dir = %q\nlog_dir = %q\n\n[llm]\napi_key = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.ChunkDir,
		cfg.Paths.LogDir,
		cfg.LLM.APIKey,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
