// Package transcriber runs a local whisper binary over recorded audio chunks
// and parses its JSON output into timed, confidence-scored segments.
//
// The service enforces single-flight transcription: a second Transcribe call
// while one is running fails with services.ErrTranscriptionBusy rather than
// queueing. Initialize must succeed before Transcribe; missing binaries or
// model files classify as services.ErrModelLoad so capture start can surface
// them as fatal.
package transcriber
