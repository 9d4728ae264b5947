// Package store persists lookout's observation log and accumulated knowledge
// in SQLite.
//
// Raw observations (screen captures, voice segments, face events) are
// append-only. Knowledge entities (projects, collaborators, interests) are
// merged with upsert semantics keyed on a case-insensitive normalized name,
// so re-mentions increment counts instead of duplicating rows. Insights are
// append-only; actions carry a created/shown/dismissed lifecycle that feeds
// cooldown and back-off decisions on later passes.
//
// All writers tolerate concurrent access: busy errors retry with a short
// backoff, and every merge is expressed as an upsert rather than assuming
// exclusivity.
package store
