// Package llm wraps the OpenRouter-compatible chat completion API consumed by
// the refiner and generator passes.
//
// The client retries transient HTTP failures with capped exponential backoff
// and exposes DecodeLLMJSON for tolerant parsing of model output (code fences
// stripped, first bracket pair extracted). JSON mode is per call: refiners
// and the health check opt in with QuickQueryJSON, while insight synthesis
// uses plain QuickQuery so narrative responses come back as prose. Generation
// code depends on the narrow Service interface so tests can substitute
// scripted fakes.
package llm
