package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPermissionDenied marks microphone access refusals. Fatal to capture start.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrModelLoad marks transcription or LLM model initialization failures.
	ErrModelLoad = errors.New("model load failed")
	// ErrTranscription marks a failed transcription of a single audio chunk.
	ErrTranscription = errors.New("transcription failed")
	// ErrTranscriptionBusy marks a transcription request rejected because one
	// is already in flight.
	ErrTranscriptionBusy = errors.New("transcription already in progress")
	// ErrValidation marks bad input supplied by a caller.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable runtime configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures expected to clear on a later pass.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error should abort capture start rather than be
// contained and retried on a later pass.
func Fatal(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrModelLoad)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
