package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("underlying")
	err := Wrap(ErrTranscription, "capture", "transcribe chunk", "whisper exited", base)
	if !errors.Is(err, ErrTranscription) {
		t.Fatalf("expected ErrTranscription classification, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	want := "transcription failed: capture: transcribe chunk: whisper exited: underlying"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := Wrap(nil, "workflow", "run pass", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient classification, got %v", err)
	}
}

func TestFatal(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"permission", Wrap(ErrPermissionDenied, "capture", "start", "mic refused", nil), true},
		{"model", Wrap(ErrModelLoad, "transcriber", "initialize", "missing model", nil), true},
		{"chunk", Wrap(ErrTranscription, "capture", "transcribe", "", nil), false},
		{"busy", ErrTranscriptionBusy, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fatal(tc.err); got != tc.fatal {
				t.Fatalf("Fatal(%v) = %v, want %v", tc.err, got, tc.fatal)
			}
		})
	}
}
