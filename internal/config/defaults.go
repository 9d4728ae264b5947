package config

const (
	defaultDataDir         = "~/.local/share/lookout"
	defaultChunkDir        = "~/.local/share/lookout/chunks"
	defaultLogDir          = "~/.local/share/lookout/logs"
	defaultChunkSeconds    = 10
	defaultSampleRate      = 16000
	defaultLevelIntervalMS = 250

	defaultTranscriberBinary  = "whisper-cli"
	defaultTranscriberTimeout = 120

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/lookout"
	defaultLLMTitle          = "Lookout"
	defaultLLMTimeoutSeconds = 60

	defaultPassIntervalSeconds = 300
	defaultContextWindowMin    = 60
	defaultSessionGapMin       = 15
	defaultWorkDurationMin     = 120
	defaultTodoStaleHours      = 2
	defaultBackoffDismissals   = 3
	defaultBackoffWindowMin    = 60
	defaultPopupQuietMin       = 20

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			ChunkDir: defaultChunkDir,
			LogDir:   defaultLogDir,
		},
		Capture: Capture{
			ChunkSeconds:    defaultChunkSeconds,
			SampleRate:      defaultSampleRate,
			LevelIntervalMS: defaultLevelIntervalMS,
		},
		Transcriber: Transcriber{
			Binary:         defaultTranscriberBinary,
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Generation: Generation{
			PassIntervalSeconds: defaultPassIntervalSeconds,
			ContextWindowMin:    defaultContextWindowMin,
			SessionGapMin:       defaultSessionGapMin,
			WorkDurationMin:     defaultWorkDurationMin,
			TodoStaleHours:      defaultTodoStaleHours,
			BackoffDismissals:   defaultBackoffDismissals,
			BackoffWindowMin:    defaultBackoffWindowMin,
			PopupQuietMin:       defaultPopupQuietMin,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
