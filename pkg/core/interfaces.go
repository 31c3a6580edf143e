package core

// SessionResettable is implemented by components that keep per-run state
// (statistics, caches) and must forget it when a new run starts, so the
// next session never shows values from the previous one.
type SessionResettable interface {
	Reset()
}
