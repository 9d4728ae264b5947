package capture

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"lookout/internal/config"
	"lookout/internal/logging"
	"lookout/internal/services/transcriber"
	"lookout/internal/store"
)

// Transcriber is the narrow transcription surface the recorder consumes.
type Transcriber interface {
	Loaded() bool
	Initialize(ctx context.Context) error
	Transcribe(ctx context.Context, wavPath string) (transcriber.Result, error)
}

// blankMarkers are transcripts whisper emits for silence or non-speech
// audio; chunks reducing to these are discarded.
var blankMarkers = map[string]bool{
	"[BLANK_AUDIO]": true,
	"[SILENCE]":     true,
	"[MUSIC]":       true,
	"[NOISE]":       true,
	"(SILENCE)":     true,
	"...":           true,
}

// Recorder owns the capture pipeline: it pulls samples from a Source,
// spools them into rotating chunk files, and dispatches finished chunks to
// the transcriber. All mutable pipeline state is guarded by one mutex.
type Recorder struct {
	cfg         *config.Config
	source      Source
	transcriber Transcriber
	store       *store.Store
	logger      *slog.Logger

	// OnSegment fires after a voice segment is persisted. OnLevel reports
	// the rolling RMS level, throttled to capture.level_interval_ms. Both
	// must be set before Start.
	OnSegment func(segment store.VoiceSegment)
	OnLevel   func(level float64)

	mu          sync.Mutex
	capturing   bool
	chunk       *chunkFile
	lastLevelAt time.Time

	cancelRotate context.CancelFunc
	wg           sync.WaitGroup
}

// NewRecorder wires a recorder from its collaborators.
func NewRecorder(cfg *config.Config, source Source, service Transcriber, st *store.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		cfg:         cfg,
		source:      source,
		transcriber: service,
		store:       st,
		logger:      logging.NewComponentLogger(logger, "capture"),
	}
}

// Start begins continuous capture. It is idempotent while running.
// Microphone access failure and transcriber model-load failure are fatal
// and returned to the caller.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capturing {
		return nil
	}
	if !r.transcriber.Loaded() {
		if err := r.transcriber.Initialize(ctx); err != nil {
			return err
		}
	}
	chunk, err := newChunkFile(r.cfg.Paths.ChunkDir, r.cfg.Capture.SampleRate, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := r.source.Start(r.handleSamples); err != nil {
		chunk.finalize()
		chunk.remove()
		return err
	}
	r.chunk = chunk
	r.capturing = true

	rotateCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancelRotate = cancel
	r.wg.Add(1)
	go r.rotateLoop(rotateCtx)

	r.logger.Info("capture started",
		logging.Int("chunk_seconds", r.cfg.Capture.ChunkSeconds),
		logging.Int("sample_rate", r.cfg.Capture.SampleRate))
	return nil
}

// Stop halts capture and drains the in-flight chunk through the
// transcriber before returning. No-op when not capturing.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.capturing {
		r.mu.Unlock()
		return nil
	}
	r.capturing = false
	final := r.chunk
	r.chunk = nil
	cancel := r.cancelRotate
	r.cancelRotate = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := r.source.Stop(); err != nil {
		r.logger.Warn("audio source stop failed", logging.Error(err))
	}
	// Let dispatched rotations finish first: the transcriber is
	// single-flight, and a drain racing an in-flight chunk would be
	// rejected as busy.
	r.wg.Wait()
	// Drain, not discard: the partial chunk still gets transcribed.
	if final != nil {
		r.transcribeChunk(context.Background(), final)
	}
	r.logger.Info("capture stopped")
	return nil
}

// Capturing reports whether the pipeline is running.
func (r *Recorder) Capturing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capturing
}

// handleSamples is the sample delivery callback. It runs on the source's
// delivery goroutine and only ever sees an open chunk file: rotation swaps
// in the next file before the previous one is closed.
func (r *Recorder) handleSamples(samples []int16) {
	var report float64
	fire := false

	r.mu.Lock()
	if !r.capturing || r.chunk == nil {
		r.mu.Unlock()
		return
	}
	if err := r.chunk.write(samples); err != nil {
		r.logger.Warn("failed to spool samples", logging.Error(err))
	}
	if r.OnLevel != nil {
		interval := time.Duration(r.cfg.Capture.LevelIntervalMS) * time.Millisecond
		if now := time.Now(); now.Sub(r.lastLevelAt) >= interval {
			r.lastLevelAt = now
			report = Level(samples)
			fire = true
		}
	}
	r.mu.Unlock()

	if fire {
		r.OnLevel(report)
	}
}

func (r *Recorder) rotateLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(time.Duration(r.cfg.Capture.ChunkSeconds) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.rotate(ctx)
		}
	}
}

// rotate swaps a fresh chunk file in under the lock, then closes and
// dispatches the finished one asynchronously. The swap happens first so the
// sample callback never lands between close and open.
func (r *Recorder) rotate(ctx context.Context) {
	next, err := newChunkFile(r.cfg.Paths.ChunkDir, r.cfg.Capture.SampleRate, time.Now().UTC())
	if err != nil {
		r.logger.Error("failed to open next chunk, keeping current", logging.Error(err))
		return
	}

	r.mu.Lock()
	if !r.capturing {
		r.mu.Unlock()
		next.finalize()
		next.remove()
		return
	}
	finished := r.chunk
	r.chunk = next
	r.mu.Unlock()

	r.wg.Add(1)
	// Dispatched work outlives rotation cancellation: Stop still waits for
	// it, but it must not be aborted mid-transcription.
	go func() {
		defer r.wg.Done()
		r.transcribeChunk(context.WithoutCancel(ctx), finished)
	}()
}

// transcribeChunk finalizes a chunk and runs it through the transcriber.
// Failures are logged and the chunk dropped; capture continues.
func (r *Recorder) transcribeChunk(ctx context.Context, chunk *chunkFile) {
	log := r.logger.With(logging.String(logging.FieldChunk, chunk.path))
	if err := chunk.finalize(); err != nil {
		log.Warn("failed to finalize chunk", logging.Error(err))
		chunk.remove()
		return
	}
	defer chunk.remove()
	if chunk.samples == 0 {
		return
	}

	result, err := r.transcriber.Transcribe(ctx, chunk.path)
	if err != nil {
		log.Warn("chunk transcription failed, dropping chunk", logging.Error(err))
		return
	}
	text := strings.TrimSpace(result.Text)
	if isBlankTranscript(text) {
		log.Debug("discarding blank transcription")
		return
	}

	segment := store.VoiceSegment{
		StartedAt:  chunk.start,
		EndedAt:    chunk.start.Add(chunk.duration()),
		Transcript: text,
		Confidence: averageConfidence(result.Segments),
	}
	id, err := r.store.InsertVoiceSegment(ctx, segment)
	if err != nil {
		log.Warn("failed to persist voice segment", logging.Error(err))
		return
	}
	segment.ID = id
	log.Info("voice segment persisted", logging.Int("chars", len(text)))
	if r.OnSegment != nil {
		r.OnSegment(segment)
	}
}

// isBlankTranscript reports whether a transcript carries no speech: empty,
// or composed entirely of blank/silence markers.
func isBlankTranscript(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	for _, field := range strings.Fields(trimmed) {
		if !blankMarkers[strings.ToUpper(field)] {
			return false
		}
	}
	return true
}

func averageConfidence(segments []transcriber.Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	total := 0.0
	for _, segment := range segments {
		total += segment.Confidence
	}
	return total / float64(len(segments))
}

// Level computes the RMS level of a sample block, normalized to [0, 1].
func Level(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range samples {
		value := float64(sample)
		sum += value * value
	}
	return math.Sqrt(sum/float64(len(samples))) / 32768
}
