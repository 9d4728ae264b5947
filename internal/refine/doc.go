// Package refine extracts structured facts from recent observations via the
// LLM and merges them into accumulated knowledge. Each refiner owns one fact
// category (collaborators, projects, interests, todos). Malformed LLM output
// is treated as an empty extraction, never an error, so one bad response
// cannot abort a batch.
package refine
