package preflight

import (
	"context"

	"lookout/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Directories (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Chunk directory", cfg.Paths.ChunkDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	// Disk space for the observation database and audio chunks
	results = append(results, CheckDiskSpace(cfg.Paths.DataDir))

	// Transcriber binary and model
	results = append(results, CheckTranscriber(cfg.Transcriber.Binary, cfg.Transcriber.ModelPath))

	// LLM reachability and key validity
	results = append(results, CheckLLM(ctx, "LLM", cfg.LLM))

	// Notifications (when a topic is configured)
	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNotifications(ctx, cfg))
	}

	return results
}
