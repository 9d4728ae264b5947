package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"lookout/internal/config"
	"lookout/internal/notifications"
	"lookout/internal/services/llm"
)

// minFreeBytes is the smallest amount of free space the data directory may
// have before the disk-space check fails. Observation rows are small but
// audio chunks accumulate between transcriptions.
const minFreeBytes = 256 << 20

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckTranscriber verifies that the transcription binary is on PATH and
// that the configured model file exists.
func CheckTranscriber(binary, modelPath string) Result {
	const name = "Transcriber"

	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "binary not configured"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", binary)}
	}

	modelPath = strings.TrimSpace(modelPath)
	if modelPath == "" {
		return Result{Name: name, Detail: "model path not configured"}
	}
	info, err := os.Stat(modelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("model %s does not exist", modelPath)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("model %s (stat: %v)", modelPath, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("model %s is a directory", modelPath)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s with model %s", resolved, modelPath)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies that the filesystem holding the data directory has
// room left for the database and pending audio chunks.
func CheckDiskSpace(path string) Result {
	const name = "Disk space"

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%d MiB free on %s (need at least %d MiB)", free>>20, path, int64(minFreeBytes)>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MiB free on %s", free>>20, path)}
}

// CheckNotifications sends a test notification through the configured service.
func CheckNotifications(ctx context.Context, cfg *config.Config) Result {
	const name = "Notifications"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	svc := notifications.NewService(cfg)
	if err := svc.TestNotification(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "test notification delivered"}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
