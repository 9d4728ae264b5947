package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"lookout/internal/services"
)

// DefaultBinary is the whisper.cpp CLI executable name.
const DefaultBinary = "whisper-cli"

// Config captures the runtime settings for the transcription backend.
type Config struct {
	Binary    string
	ModelPath string
	Language  string
	Threads   int
	Timeout   time.Duration
}

// Segment is one timed span of transcribed speech.
type Segment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Result is the parsed output of one chunk transcription.
type Result struct {
	Text     string
	Segments []Segment
}

// Backend is the transcription surface the capture pipeline depends on.
type Backend interface {
	Loaded() bool
	Initialize(ctx context.Context) error
	Transcribe(ctx context.Context, wavPath string) (Result, error)
}

// Service transcribes audio chunks by invoking a whisper binary.
type Service struct {
	cfg           Config
	loaded        atomic.Bool
	inFlight      atomic.Bool
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandRunner = runner
}

// Loaded reports whether Initialize has completed successfully.
func (s *Service) Loaded() bool {
	return s != nil && s.loaded.Load()
}

// Model returns the configured model path for logging.
func (s *Service) Model() string {
	return s.cfg.ModelPath
}

// Initialize verifies the binary and model are usable. Idempotent.
func (s *Service) Initialize(ctx context.Context) error {
	if s.loaded.Load() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.cfg.ModelPath) == "" {
		return services.Wrap(services.ErrModelLoad, "transcriber", "initialize",
			"transcriber.model_path not configured", nil)
	}
	info, err := os.Stat(s.cfg.ModelPath)
	if err != nil || info.IsDir() {
		return services.Wrap(services.ErrModelLoad, "transcriber", "initialize",
			fmt.Sprintf("model file %s not readable", s.cfg.ModelPath), err)
	}
	if s.commandRunner == nil {
		if _, err := exec.LookPath(s.cfg.Binary); err != nil {
			return services.Wrap(services.ErrModelLoad, "transcriber", "initialize",
				fmt.Sprintf("binary %s not found in PATH", s.cfg.Binary), err)
		}
	}
	s.loaded.Store(true)
	return nil
}

// Transcribe runs the whisper binary over one WAV chunk and parses its JSON
// output. A call while another transcription is in flight fails with
// services.ErrTranscriptionBusy.
func (s *Service) Transcribe(ctx context.Context, wavPath string) (Result, error) {
	var result Result
	if !s.loaded.Load() {
		return result, services.Wrap(services.ErrModelLoad, "transcriber", "transcribe",
			"backend not initialized", nil)
	}
	if strings.TrimSpace(wavPath) == "" {
		return result, services.Wrap(services.ErrValidation, "transcriber", "transcribe",
			"wav path required", nil)
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return result, services.ErrTranscriptionBusy
	}
	defer s.inFlight.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	output, err := s.run(runCtx, s.cfg.Binary, s.buildArgs(wavPath)...)
	if err != nil {
		return result, services.Wrap(services.ErrTranscription, "transcriber", "transcribe",
			filepath.Base(wavPath), err)
	}

	jsonPath := wavPath + ".json"
	parsed, err := loadResult(jsonPath)
	if err != nil {
		// Some builds print JSON to stdout instead of writing the sidecar file.
		if fromStdout, stdoutErr := parseResult(output); stdoutErr == nil {
			return fromStdout, nil
		}
		return result, services.Wrap(services.ErrTranscription, "transcriber", "parse output",
			filepath.Base(jsonPath), err)
	}
	_ = os.Remove(jsonPath)
	return parsed, nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

func (s *Service) buildArgs(wavPath string) []string {
	args := []string{
		"--model", s.cfg.ModelPath,
		"--file", wavPath,
		"--output-json-full",
		"--output-file", wavPath,
		"--no-prints",
	}
	if s.cfg.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(s.cfg.Threads))
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

// whisperPayload is the JSON structure emitted by whisper-cli.
type whisperPayload struct {
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Confidence float64 `json:"confidence"`
	} `json:"transcription"`
}

func loadResult(jsonPath string) (Result, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return Result{}, err
	}
	return parseResult(data)
}

func parseResult(data []byte) (Result, error) {
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Result{}, fmt.Errorf("parse whisper json: %w", err)
	}
	result := Result{Segments: make([]Segment, 0, len(payload.Transcription))}
	var parts []string
	for _, entry := range payload.Transcription {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		result.Segments = append(result.Segments, Segment{
			Text:       text,
			Start:      float64(entry.Offsets.From) / 1000,
			End:        float64(entry.Offsets.To) / 1000,
			Confidence: entry.Confidence,
		})
	}
	result.Text = strings.Join(parts, " ")
	return result, nil
}
