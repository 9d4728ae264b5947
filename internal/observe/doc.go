// Package observe assembles the read-only snapshot a generation pass works
// from. A snapshot is built once at the start of a pass; refiners and
// generators read it instead of querying the store mid-pass, so every
// decision in the pass sees one consistent view of recent activity and
// action history.
package observe
