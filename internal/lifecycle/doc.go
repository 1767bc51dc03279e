// Package lifecycle holds the two synchronization primitives the player is
// built around: a one-shot startup Barrier and a write-once shutdown Signal.
//
// Neither type is reusable. A Barrier releases exactly once and a Signal is
// raised at most once per process lifetime.
package lifecycle
