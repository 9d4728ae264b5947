package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTranscriber(); err != nil {
		return err
	}
	c.normalizeCapture()
	c.normalizeLLM()
	c.normalizeGeneration()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ChunkDir) == "" {
		c.Paths.ChunkDir = defaultChunkDir
	}
	if c.Paths.ChunkDir, err = expandPath(c.Paths.ChunkDir); err != nil {
		return fmt.Errorf("paths.chunk_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCapture() {
	if c.Capture.ChunkSeconds <= 0 {
		c.Capture.ChunkSeconds = defaultChunkSeconds
	}
	if c.Capture.SampleRate <= 0 {
		c.Capture.SampleRate = defaultSampleRate
	}
	if c.Capture.LevelIntervalMS <= 0 {
		c.Capture.LevelIntervalMS = defaultLevelIntervalMS
	}
}

func (c *Config) normalizeTranscriber() error {
	if strings.TrimSpace(c.Transcriber.Binary) == "" {
		c.Transcriber.Binary = defaultTranscriberBinary
	}
	if c.Transcriber.TimeoutSeconds <= 0 {
		c.Transcriber.TimeoutSeconds = defaultTranscriberTimeout
	}
	if strings.TrimSpace(c.Transcriber.ModelPath) != "" {
		expanded, err := expandPath(c.Transcriber.ModelPath)
		if err != nil {
			return fmt.Errorf("transcriber.model_path: %w", err)
		}
		c.Transcriber.ModelPath = expanded
	}
	return nil
}

func (c *Config) normalizeLLM() {
	if key := strings.TrimSpace(os.Getenv("LOOKOUT_LLM_API_KEY")); key != "" && strings.TrimSpace(c.LLM.APIKey) == "" {
		c.LLM.APIKey = key
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeGeneration() {
	g := &c.Generation
	if g.PassIntervalSeconds <= 0 {
		g.PassIntervalSeconds = defaultPassIntervalSeconds
	}
	if g.ContextWindowMin <= 0 {
		g.ContextWindowMin = defaultContextWindowMin
	}
	if g.SessionGapMin <= 0 {
		g.SessionGapMin = defaultSessionGapMin
	}
	if g.WorkDurationMin <= 0 {
		g.WorkDurationMin = defaultWorkDurationMin
	}
	if g.TodoStaleHours <= 0 {
		g.TodoStaleHours = defaultTodoStaleHours
	}
	if g.BackoffDismissals <= 0 {
		g.BackoffDismissals = defaultBackoffDismissals
	}
	if g.BackoffWindowMin <= 0 {
		g.BackoffWindowMin = defaultBackoffWindowMin
	}
	if g.PopupQuietMin <= 0 {
		g.PopupQuietMin = defaultPopupQuietMin
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
