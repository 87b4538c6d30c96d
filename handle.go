package instrument

// Timer measures elapsed wall time of bracketed start/stop events and
// reports it tagged with the timer's resolved name.
// Methods must be safe for concurrent use; each Start returns an
// independent Stopwatch, so overlapping invocations do not share state.
type Timer interface {
	Start() Stopwatch
}

// Stopwatch is one running measurement produced by Timer.Start.
// Stop reports the elapsed duration to the transport. Stop is safe to call
// from a deferred function; it must not panic.
type Stopwatch interface {
	Stop()
}

// Counter records a monotonically accumulating count of events tagged with
// the counter's resolved name.
// Methods must be safe for concurrent use.
type Counter interface {
	Inc()
}

// HandleKind discriminates the two kinds of metric handles.
type HandleKind string

const (
	HandleKindTimer   HandleKind = "timer"
	HandleKindCounter HandleKind = "counter"
)

func (k HandleKind) String() string { return string(k) }

// HandleKey identifies a cached handle by kind and resolved name.
type HandleKey struct {
	Kind HandleKind
	Name string
}

// NewHandleKey constructs a HandleKey.
func NewHandleKey(kind HandleKind, name string) HandleKey {
	return HandleKey{Kind: kind, Name: name}
}

func (k HandleKey) String() string { return string(k.Kind) + ":" + k.Name }

// HandleEntry describes one cached handle for introspection.
type HandleEntry struct {
	Kind HandleKind
	Name string
}
