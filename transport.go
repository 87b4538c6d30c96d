package instrument

// Defaults is the process-wide reporting configuration an Instrumentor
// applies to its Transport. A Transport must honor the latest applied
// value for subsequent reporting; Disabled in particular is consulted per
// emission, not snapshotted into handles.
type Defaults struct {
	Host       string
	Port       int
	SampleRate float64
	Disabled   bool
}

// Transport delivers metric events to a backend.
// Implementations must be safe for concurrent use. Handle construction is
// expected to be cheap; deduplication by name is the Instrumentor's job,
// not the Transport's.
//
// This interface is designed to be minimal and stable. Backends needing
// more capabilities should expose them on their concrete type rather than
// expanding this surface.
type Transport interface {
	NewTimer(name string) Timer
	NewCounter(name string) Counter
	SetDefaults(Defaults)
}

// NewNoopTransport returns a Transport that discards everything.
// It is the fallback used when an Instrumentor is constructed without a
// transport, so instrumented code keeps working with zero reporting.
func NewNoopTransport() Transport { return noopTransport{} }

type noopTransport struct{}

func (noopTransport) NewTimer(string) Timer     { return noopTimer{} }
func (noopTransport) NewCounter(string) Counter { return noopCounter{} }
func (noopTransport) SetDefaults(Defaults)      {}

type noopTimer struct{}

func (noopTimer) Start() Stopwatch { return noopStopwatch{} }

type noopStopwatch struct{}

func (noopStopwatch) Stop() {}

type noopCounter struct{}

func (noopCounter) Inc() {}
