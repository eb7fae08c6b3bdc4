// Package memo provides the per-invocation result cache that makes repeated
// timing-model evaluation tractable. A Scope lives for one top-level call:
// every cached computation reached from that call shares it, and it is torn
// down when the call returns, so there is no invalidation bookkeeping.
package memo

// A Scope caches computation results for the duration of one top-level
// evaluation. The zero value is ready to use and inactive. A Scope belongs
// to exactly one owner and must not be shared across goroutines.
type Scope struct {
	active  bool
	results map[string]any
}

// Use activates the scope and returns the release function that tears it
// down. When the scope is already active the call is a passthrough: the
// returned release does nothing, so nested cached entry points share the
// outer scope. Callers must release on every exit path:
//
//	release := s.Use()
//	defer release()
func (s *Scope) Use() (release func()) {
	if s.active {
		return func() {}
	}

	s.active = true
	s.results = make(map[string]any)

	return func() {
		s.active = false
		s.results = nil
	}
}

// Active reports whether a top-level call currently owns the scope.
func (s *Scope) Active() bool { return s.active }

// Cached returns the scope's stored result for key, computing and storing
// it on first use. Without an active scope it degrades to calling compute,
// so callers outside any scope still get correct results, just without
// reuse. compute must be deterministic for the owner's current state; the
// only invalidation is scope teardown.
func Cached[T any](s *Scope, key string, compute func() T) T {
	if !s.active {
		return compute()
	}

	if v, ok := s.results[key]; ok {
		return v.(T)
	}

	v := compute()
	s.results[key] = v

	return v
}
