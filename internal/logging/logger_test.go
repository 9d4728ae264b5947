package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lookout/internal/config"
	"lookout/internal/logging"
	"lookout/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	defaults := config.Default()
	cfg := &defaults
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("startup complete")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "lookout.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "startup complete") {
		t.Fatalf("expected log line in file, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestJSONFormatEmitsStructuredFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "capture").Info("chunk rotated",
		logging.String(logging.FieldChunk, "chunk-0001.wav"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, want := range []string{`"component":"capture"`, `"chunk":"chunk-0001.wav"`, `"chunk rotated"`} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %s in output, got %q", want, content)
		}
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Format:           "json",
		Level:            "warn",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden") {
		t.Fatalf("expected debug/info lines filtered, got %q", content)
	}
	if !strings.Contains(string(content), "visible") {
		t.Fatalf("expected warn line, got %q", content)
	}
}

func TestWithContextAddsPassFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Format:           "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithPassID(context.Background(), "pass-42")
	ctx = services.WithGenerator(ctx, "wellness")
	logging.WithContext(ctx, logger).Info("generated")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"pass_id":"pass-42"`) {
		t.Fatalf("expected pass_id field, got %q", content)
	}
	if !strings.Contains(string(content), `"generator":"wellness"`) {
		t.Fatalf("expected generator field, got %q", content)
	}
}
