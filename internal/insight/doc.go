// Package insight synthesizes low-stakes observations from the pass
// snapshot. Generators declare a cheap deterministic precondition and a
// cooldown; the engine enforces the cooldown from the store's insight
// history, so generators never throttle themselves. Insights are passive:
// they are recorded, never delivered directly to the user.
package insight
