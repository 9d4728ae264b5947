package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"lookout/internal/config"
	"lookout/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDiskSpace_OK(t *testing.T) {
	result := CheckDiskSpace(t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDiskSpace_MissingPath(t *testing.T) {
	result := CheckDiskSpace(filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckTranscriber_OK(t *testing.T) {
	model := filepath.Join(t.TempDir(), "ggml-base.en.bin")
	testsupport.WriteFile(t, model, 64*1024)
	result := CheckTranscriber("sh", model)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckTranscriber_BinaryMissing(t *testing.T) {
	result := CheckTranscriber("no-such-whisper-binary", filepath.Join(t.TempDir(), "model.bin"))
	if result.Passed {
		t.Fatal("expected failure for missing binary")
	}
}

func TestCheckTranscriber_ModelMissing(t *testing.T) {
	result := CheckTranscriber("sh", filepath.Join(t.TempDir(), "model.bin"))
	if result.Passed {
		t.Fatal("expected failure for missing model")
	}
}

func TestCheckTranscriber_ModelIsDir(t *testing.T) {
	result := CheckTranscriber("sh", t.TempDir())
	if result.Passed {
		t.Fatal("expected failure for directory model path")
	}
}

func TestCheckLLM_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), "LLM", config.LLM{
		APIKey:  "good-key",
		BaseURL: srv.URL,
		Model:   "test-model",
	})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckLLM_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), "LLM", config.LLM{
		APIKey:  "bad-key",
		BaseURL: srv.URL,
		Model:   "test-model",
	})
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	result := CheckLLM(context.Background(), "LLM", config.LLM{})
	if result.Passed {
		t.Fatal("expected failure for missing API key")
	}
	if result.Detail != "API key missing" {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_SkipsNotificationsWithoutTopic(t *testing.T) {
	defaults := config.Default()
	cfg := &defaults
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.ChunkDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Notifications.NtfyTopic = ""

	results := RunAll(context.Background(), cfg)
	// Three directories, disk space, transcriber, LLM
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Name == "Notifications" {
			t.Fatal("expected notification check to be skipped")
		}
	}
}
