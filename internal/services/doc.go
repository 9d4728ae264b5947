// Package services holds cross-cutting service plumbing: the error taxonomy
// shared by the capture and generation pipelines, and context annotation
// helpers used to correlate log lines across a generation pass.
//
// Subpackages wrap the external collaborators lookout consumes: the LLM chat
// API (services/llm) and the local transcription backend
// (services/transcriber).
package services
