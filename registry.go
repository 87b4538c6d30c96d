package instrument

import (
	"sync"
	"sync/atomic"
)

// This file implements the handle cache: a lazily populated, append-only
// mapping from resolved name to metric handle, created at most once per
// (kind, name) and shared by all subsequent invocations. Entries live for
// the process lifetime; there is no eviction.

// keyMu returns a per-key mutex for the given key, creating one if necessary.
// The returned mutex is owned by the instrumentor and should be locked/unlocked by callers.
func (in *Instrumentor) keyMu(key HandleKey) *sync.Mutex {
	m, _ := in.inits.LoadOrStore(key, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// get retrieves an existing handle by key.
func (in *Instrumentor) get(key HandleKey) (interface{}, bool) {
	switch key.Kind {
	case HandleKindTimer:
		if v, ok := in.timers.Load(key.Name); ok {
			return v.(Timer), true
		}
	case HandleKindCounter:
		if v, ok := in.counters.Load(key.Name); ok {
			return v.(Counter), true
		}
	}
	return nil, false
}

// create constructs a handle through the transport and stores it into the
// appropriate sync.Map.
func (in *Instrumentor) create(key HandleKey) interface{} {
	switch key.Kind {
	case HandleKindTimer:
		t := in.transport.NewTimer(key.Name)
		in.timers.Store(key.Name, t)
		return t
	case HandleKindCounter:
		c := in.transport.NewCounter(key.Name)
		in.counters.Store(key.Name, c)
		return c
	default:
		return nil
	}
}

// Timer returns the timer handle for the given resolved name (created once).
func (in *Instrumentor) Timer(name string) Timer {
	key := NewHandleKey(HandleKindTimer, name)
	return in.getOrCreate(key).(Timer)
}

// Counter returns the counter handle for the given resolved name (created once).
func (in *Instrumentor) Counter(name string) Counter {
	key := NewHandleKey(HandleKindCounter, name)
	return in.getOrCreate(key).(Counter)
}

// getOrCreate implements a fast read path and uses a per-key mutex to
// deduplicate concurrent initializations, so two callers racing on the
// first use of a name end up sharing one live handle.
func (in *Instrumentor) getOrCreate(key HandleKey) interface{} {
	// fast read path using sync.Map loads (safe without a global lock)
	if v, ok := in.get(key); ok {
		return v
	}

	// acquire per-key mutex to deduplicate concurrent initializations
	km := in.keyMu(key)
	km.Lock()
	defer km.Unlock()

	// re-check after acquiring per-key mutex
	if v, ok := in.get(key); ok {
		return v
	}
	in.meta.Store(key, HandleEntry{Kind: key.Kind, Name: key.Name})
	inst := in.create(key)
	// optional cleanup: remove the per-key mutex from the inits map to allow GC of mutexes.
	// It's safe to delete while holding the mutex; goroutines that already
	// hold the pointer keep using it, and new callers get a fresh one.
	if !in.cfg.doNotCleanupInits {
		in.inits.Delete(key)
	}
	return inst
}

// LookupTimer returns the already-created timer handle for name, if any.
// It never creates a handle.
func (in *Instrumentor) LookupTimer(name string) (Timer, bool) {
	key := NewHandleKey(HandleKindTimer, name)
	km := in.keyMu(key)
	km.Lock()
	defer km.Unlock()

	v, ok := in.timers.Load(name)
	if !ok {
		return nil, false
	}
	t, ok2 := v.(Timer)
	if !ok2 {
		// invariant violation: wrong type in map
		in.reportInvariantViolation("timer_type", key)
		return nil, false
	}
	in.checkMeta(key)
	return t, true
}

// LookupCounter returns the already-created counter handle for name, if any.
// It never creates a handle.
func (in *Instrumentor) LookupCounter(name string) (Counter, bool) {
	key := NewHandleKey(HandleKindCounter, name)
	km := in.keyMu(key)
	km.Lock()
	defer km.Unlock()

	v, ok := in.counters.Load(name)
	if !ok {
		return nil, false
	}
	c, ok2 := v.(Counter)
	if !ok2 {
		// invariant violation: wrong type in map
		in.reportInvariantViolation("counter_type", key)
		return nil, false
	}
	in.checkMeta(key)
	return c, true
}

// Handles returns a best-effort snapshot of the cached handle entries. It
// does not acquire per-key init mutexes; callers should treat the result as
// a point-in-time snapshot that may race with concurrent creations.
func (in *Instrumentor) Handles() []HandleEntry {
	out := make([]HandleEntry, 0)
	in.meta.Range(func(k, v interface{}) bool {
		e, ok := v.(HandleEntry)
		if !ok {
			return true // skip invalid entries
		}
		out = append(out, e)
		return true
	})
	return out
}

// checkMeta verifies that a stored handle has its metadata entry.
func (in *Instrumentor) checkMeta(key HandleKey) {
	if _, ok := in.meta.Load(key); !ok {
		in.reportInvariantViolation(key.Kind.String()+"_meta_missing", key)
	}
}

// reportInvariantViolation reports unexpected internal states such as
// "handle exists but meta missing". In release builds it logs up to 10
// times per kind of violation; in debug builds (or under the race detector)
// it panics to catch bugs early.
func (in *Instrumentor) reportInvariantViolation(kind string, key HandleKey) {
	const maxReports = 10
	v, _ := in.violations.LoadOrStore(kind, &atomic.Int32{})
	if v.(*atomic.Int32).Add(1) > maxReports {
		return
	}

	msg := "[instrument] invariant violation: " + kind + " for " + key.String()

	// In debug builds, fail fast.
	if isDebugBuild() {
		panic(msg)
	}

	// In release builds, just log a warning.
	in.logger.Warnf(msg)
}

// isDebugBuild reports whether we're in a "debug" or "race" build.
func isDebugBuild() bool {
	return raceBuild || debugBuild
}
