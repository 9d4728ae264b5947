// Package workflow drives the periodic generation pass: one snapshot of
// recent observations, then refiners, insight generators, and action
// generators strictly in that order, with emitted actions handed to the
// delivery service. Passes are sequential; at most one LLM call is in
// flight at any time. A failing pass is logged and never stops the loop.
package workflow
