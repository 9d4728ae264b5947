// Package preflight provides readiness checks for external services
// and filesystem paths that Lookout depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup before opening the microphone,
//     so a missing model or unreachable API surfaces immediately.
//   - The CLI "lookout status" command uses individual check functions
//     (CheckLLM, CheckTranscriber) to display service health.
//
// Optional features are gated by their config -- an empty ntfy topic
// skips the notification check.
package preflight
