package capture

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"lookout/internal/services"
	"lookout/internal/services/transcriber"
	"lookout/internal/store"
	"lookout/internal/testsupport"
)

type fakeSource struct {
	mu        sync.Mutex
	onSamples func([]int16)
	starts    int
	stops     int
	startErr  error
}

func (f *fakeSource) Start(onSamples func([]int16)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.onSamples = onSamples
	f.starts++
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeSource) feed(samples []int16) {
	f.mu.Lock()
	callback := f.onSamples
	f.mu.Unlock()
	if callback != nil {
		callback(samples)
	}
}

type fakeTranscriber struct {
	mu            sync.Mutex
	loaded        bool
	initErr       error
	transcribeErr error
	text          string
	calls         int
	samplesSeen   int
}

func (f *fakeTranscriber) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *fakeTranscriber) Initialize(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return f.initErr
	}
	f.loaded = true
	return nil
}

func (f *fakeTranscriber) Transcribe(_ context.Context, wavPath string) (transcriber.Result, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return transcriber.Result{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.samplesSeen += (len(data) - wavHeaderSize) / 2
	if f.transcribeErr != nil {
		return transcriber.Result{}, f.transcribeErr
	}
	return transcriber.Result{
		Text:     f.text,
		Segments: []transcriber.Segment{{Text: f.text, Confidence: 0.8}},
	}, nil
}

func newTestRecorder(t *testing.T, source *fakeSource, backend Transcriber) (*Recorder, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return NewRecorder(cfg, source, backend, st, nil), st
}

func TestStartIsIdempotent(t *testing.T) {
	source := &fakeSource{}
	recorder, _ := newTestRecorder(t, source, &fakeTranscriber{loaded: true})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer recorder.Stop()
	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if source.starts != 1 {
		t.Fatalf("source started %d times, want 1", source.starts)
	}
	if !recorder.Capturing() {
		t.Fatal("recorder should report capturing")
	}
}

func TestStartFailsFatallyOnPermissionAndModelErrors(t *testing.T) {
	t.Run("microphone denied", func(t *testing.T) {
		source := &fakeSource{startErr: services.Wrap(services.ErrPermissionDenied, "capture", "open microphone", "denied", nil)}
		recorder, _ := newTestRecorder(t, source, &fakeTranscriber{loaded: true})
		err := recorder.Start(context.Background())
		if !errors.Is(err, services.ErrPermissionDenied) {
			t.Fatalf("err = %v, want ErrPermissionDenied", err)
		}
		if recorder.Capturing() {
			t.Fatal("failed start must not leave recorder capturing")
		}
	})
	t.Run("model load failure", func(t *testing.T) {
		backend := &fakeTranscriber{initErr: services.Wrap(services.ErrModelLoad, "transcriber", "initialize", "missing model", nil)}
		recorder, _ := newTestRecorder(t, &fakeSource{}, backend)
		err := recorder.Start(context.Background())
		if !errors.Is(err, services.ErrModelLoad) {
			t.Fatalf("err = %v, want ErrModelLoad", err)
		}
	})
}

func TestChunkBoundaryContinuity(t *testing.T) {
	source := &fakeSource{}
	backend := &fakeTranscriber{loaded: true, text: "hello there"}
	recorder, _ := newTestRecorder(t, source, backend)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	const blocks = 200
	const blockSize = 160
	done := make(chan struct{})
	go func() {
		defer close(done)
		samples := make([]int16, blockSize)
		for i := range samples {
			samples[i] = int16(i)
		}
		for i := 0; i < blocks; i++ {
			source.feed(samples)
		}
	}()
	// Rotate concurrently with sample delivery.
	for i := 0; i < 10; i++ {
		recorder.rotate(context.Background())
		time.Sleep(time.Millisecond)
	}
	<-done

	if err := recorder.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	backend.mu.Lock()
	seen := backend.samplesSeen
	backend.mu.Unlock()
	if seen != blocks*blockSize {
		t.Fatalf("transcriber saw %d samples, fed %d: samples lost at rotation boundary", seen, blocks*blockSize)
	}
}

func TestBlankTranscriptionsAreDiscarded(t *testing.T) {
	source := &fakeSource{}
	backend := &fakeTranscriber{loaded: true, text: "[BLANK_AUDIO]"}
	recorder, st := newTestRecorder(t, source, backend)

	fired := false
	recorder.OnSegment = func(store.VoiceSegment) { fired = true }

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	source.feed(make([]int16, 320))
	if err := recorder.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	segments, err := st.VoiceSegmentsSince(context.Background(), time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("blank transcript persisted %d segments", len(segments))
	}
	if fired {
		t.Fatal("OnSegment fired for a blank transcript")
	}
}

func TestTranscriptionPersistsSegmentAndNotifies(t *testing.T) {
	source := &fakeSource{}
	backend := &fakeTranscriber{loaded: true, text: "ship the release tomorrow"}
	recorder, st := newTestRecorder(t, source, backend)

	var got store.VoiceSegment
	notified := make(chan struct{}, 1)
	recorder.OnSegment = func(segment store.VoiceSegment) {
		got = segment
		notified <- struct{}{}
	}

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	source.feed(make([]int16, 16000)) // one second of audio
	if err := recorder.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	select {
	case <-notified:
	default:
		t.Fatal("OnSegment did not fire")
	}
	if got.Transcript != "ship the release tomorrow" || got.ID == 0 {
		t.Fatalf("segment = %+v", got)
	}
	if d := got.EndedAt.Sub(got.StartedAt); d != time.Second {
		t.Errorf("segment duration = %v, want 1s from 16000 samples", d)
	}
	segments, err := st.VoiceSegmentsSince(context.Background(), time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 1 || segments[0].Confidence != 0.8 {
		t.Fatalf("persisted segments = %+v", segments)
	}
}

func TestTranscriptionFailureDropsChunkAndContinues(t *testing.T) {
	source := &fakeSource{}
	backend := &fakeTranscriber{loaded: true, transcribeErr: services.Wrap(services.ErrTranscription, "transcriber", "transcribe", "whisper exited", nil)}
	recorder, st := newTestRecorder(t, source, backend)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	source.feed(make([]int16, 320))
	recorder.rotate(context.Background())
	if !recorder.Capturing() {
		t.Fatal("transcription failure must not stop capture")
	}
	source.feed(make([]int16, 320))
	if err := recorder.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	segments, err := st.VoiceSegmentsSince(context.Background(), time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("failed transcriptions persisted %d segments", len(segments))
	}
}

// slowTranscriber mimics the real service's single-flight behavior: a call
// arriving while another runs is rejected as busy instead of queued.
type slowTranscriber struct {
	mu             sync.Mutex
	busy           bool
	delay          time.Duration
	calls          int
	busyRejections int
}

func (f *slowTranscriber) Loaded() bool                     { return true }
func (f *slowTranscriber) Initialize(context.Context) error { return nil }

func (f *slowTranscriber) Transcribe(context.Context, string) (transcriber.Result, error) {
	f.mu.Lock()
	if f.busy {
		f.busyRejections++
		f.mu.Unlock()
		return transcriber.Result{}, services.ErrTranscriptionBusy
	}
	f.busy = true
	f.calls++
	f.mu.Unlock()

	time.Sleep(f.delay)

	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
	return transcriber.Result{
		Text:     "still talking",
		Segments: []transcriber.Segment{{Text: "still talking", Confidence: 0.8}},
	}, nil
}

func TestStopDrainsFinalChunkBehindInFlightTranscription(t *testing.T) {
	source := &fakeSource{}
	backend := &slowTranscriber{delay: 300 * time.Millisecond}
	recorder, st := newTestRecorder(t, source, backend)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	source.feed(make([]int16, 320))
	// Rotation dispatches the first chunk into a slow transcription.
	recorder.rotate(context.Background())
	source.feed(make([]int16, 320))

	// Stop lands while the rotated chunk is still transcribing; the final
	// partial chunk must wait for it, not be rejected as busy.
	if err := recorder.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	backend.mu.Lock()
	calls, rejections := backend.calls, backend.busyRejections
	backend.mu.Unlock()
	if rejections != 0 {
		t.Fatalf("final drain raced the in-flight transcription (%d busy rejections)", rejections)
	}
	if calls != 2 {
		t.Fatalf("transcriber ran %d times, want 2 (rotated + drained final)", calls)
	}
	segments, err := st.VoiceSegmentsSince(context.Background(), time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("persisted %d segments, want 2: final chunk was discarded", len(segments))
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	recorder, _ := newTestRecorder(t, &fakeSource{}, &fakeTranscriber{loaded: true})
	if err := recorder.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestLevel(t *testing.T) {
	if got := Level(nil); got != 0 {
		t.Errorf("empty block level = %v, want 0", got)
	}
	if got := Level(make([]int16, 100)); got != 0 {
		t.Errorf("silent block level = %v, want 0", got)
	}
	full := make([]int16, 100)
	for i := range full {
		full[i] = 32767
	}
	if got := Level(full); got < 0.99 || got > 1.0 {
		t.Errorf("full-scale block level = %v, want ~1", got)
	}
}

func TestIsBlankTranscript(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"[BLANK_AUDIO]", true},
		{"[blank_audio]", true},
		{"[SILENCE] [MUSIC]", true},
		{"...", true},
		{"hello world", false},
		{"[SILENCE] but then speech", false},
	}
	for _, tt := range tests {
		if got := isBlankTranscript(tt.text); got != tt.want {
			t.Errorf("isBlankTranscript(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
