package config

import (
	"sync/atomic"
)

// EffectiveConfig is the immutable, fully-merged configuration view the
// rest of the pipeline reads from. Mutation never happens in place: the
// adapter builds a new EffectiveConfig and swaps it in atomically (spec.md
// §4.G: "Mutations happen outside the core: the adapter swaps snapshots
// atomically. Changing any field invalidates the Dictionary Engine's LRU").
type EffectiveConfig struct {
	Global  Settings
	Project Settings
	Merged  Settings
}

// ResolveForPath applies the merged settings' path-scoped overrides,
// producing the settings actually in force for a given document.
func (c *EffectiveConfig) ResolveForPath(path string) Settings {
	if c == nil {
		return Default()
	}
	return c.Merged.ResolveForPath(path)
}

// Store holds the current EffectiveConfig behind an atomic pointer so
// readers never observe a torn or partially-updated snapshot.
type Store struct {
	ptr atomic.Pointer[EffectiveConfig]
}

// NewStore builds a Store seeded with default settings.
func NewStore() *Store {
	s := &Store{}
	s.Swap(&EffectiveConfig{Global: Default(), Project: Default(), Merged: Default()})
	return s
}

// Load returns the current snapshot. Safe for concurrent use without
// additional locking.
func (s *Store) Load() *EffectiveConfig {
	return s.ptr.Load()
}

// Swap atomically installs a new snapshot, returning the previous one.
func (s *Store) Swap(next *EffectiveConfig) *EffectiveConfig {
	return s.ptr.Swap(next)
}

// Invalidator is notified whenever a new snapshot differs materially from
// the previous one, so callers (the Dictionary Engine's LRU, in practice)
// can drop stale cached state.
type Invalidator interface {
	InvalidateAll()
}

// SwapIfChanged installs next only if it differs from the current
// snapshot in a way that matters to cached lookups (dictionary set,
// allow/deny lists, min word length, or overrides), notifying inv when it
// does. Returns whether an update occurred.
func (s *Store) SwapIfChanged(next *EffectiveConfig, inv Invalidator) bool {
	prev := s.Load()
	if prev != nil && settingsEquivalent(prev.Merged, next.Merged) {
		return false
	}
	s.Swap(next)
	if inv != nil {
		inv.InvalidateAll()
	}
	return true
}

func settingsEquivalent(a, b Settings) bool {
	if a.MinWordLength != b.MinWordLength {
		return false
	}
	if !stringSliceEqual(a.Dictionaries, b.Dictionaries) ||
		!stringSliceEqual(a.Words, b.Words) ||
		!stringSliceEqual(a.FlagWords, b.FlagWords) ||
		!stringSliceEqual(a.IgnorePaths, b.IgnorePaths) ||
		!stringSliceEqual(a.IgnorePatterns, b.IgnorePatterns) {
		return false
	}
	if len(a.Overrides) != len(b.Overrides) {
		return false
	}
	for i := range a.Overrides {
		ao, bo := a.Overrides[i], b.Overrides[i]
		if !stringSliceEqual(ao.Paths, bo.Paths) ||
			!stringSliceEqual(ao.Dictionaries, bo.Dictionaries) ||
			!stringSliceEqual(ao.Words, bo.Words) ||
			!stringSliceEqual(ao.FlagWords, bo.FlagWords) ||
			!stringSliceEqual(ao.IgnorePatterns, bo.IgnorePatterns) ||
			!stringSliceEqual(ao.ExtraDictionaries, bo.ExtraDictionaries) ||
			!stringSliceEqual(ao.ExtraWords, bo.ExtraWords) ||
			!stringSliceEqual(ao.ExtraFlagWords, bo.ExtraFlagWords) ||
			!stringSliceEqual(ao.ExtraIgnorePatterns, bo.ExtraIgnorePatterns) {
			return false
		}
	}
	return true
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
