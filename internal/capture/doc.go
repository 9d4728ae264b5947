// Package capture runs the continuous microphone pipeline: samples stream
// from an audio source into fixed-duration WAV chunk files, every completed
// chunk is handed to the transcriber asynchronously, and surviving
// transcripts are persisted as voice segments. At a chunk boundary the next
// file is opened and swapped in before the finished one is closed, so the
// sample callback never observes a closed file.
package capture
