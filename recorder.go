package instrument

import (
	"sync"
	"time"
)

// Recorder is an in-memory Transport for tests and examples. It records
// every timing and increment it receives, honors the Disabled flag of the
// latest applied Defaults, and counts handle creations so tests can assert
// that a name is created at most once.
// All methods are safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	defaults  Defaults
	timings   []TimingEvent
	counts    map[string]int64
	creations map[HandleKey]int
}

// TimingEvent is one recorded timer stop.
type TimingEvent struct {
	Name    string
	Elapsed time.Duration
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		counts:    make(map[string]int64),
		creations: make(map[HandleKey]int),
	}
}

// NewTimer implements Transport.
func (r *Recorder) NewTimer(name string) Timer {
	r.mu.Lock()
	r.creations[NewHandleKey(HandleKindTimer, name)]++
	r.mu.Unlock()
	return recorderTimer{r: r, name: name}
}

// NewCounter implements Transport.
func (r *Recorder) NewCounter(name string) Counter {
	r.mu.Lock()
	r.creations[NewHandleKey(HandleKindCounter, name)]++
	r.mu.Unlock()
	return recorderCounter{r: r, name: name}
}

// SetDefaults implements Transport. The latest value wins for all handles.
func (r *Recorder) SetDefaults(d Defaults) {
	r.mu.Lock()
	r.defaults = d
	r.mu.Unlock()
}

// Defaults returns the latest applied Defaults.
func (r *Recorder) Defaults() Defaults {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaults
}

// Timings returns a copy of the recorded timing events.
func (r *Recorder) Timings() []TimingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TimingEvent, len(r.timings))
	copy(out, r.timings)
	return out
}

// Counts returns a copy of the recorded counter values by name.
func (r *Recorder) Counts() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Count returns the recorded value for one counter name.
func (r *Recorder) Count(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// Creations returns how many times a handle was constructed for the key.
func (r *Recorder) Creations(kind HandleKind, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creations[NewHandleKey(kind, name)]
}

func (r *Recorder) recordTiming(name string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defaults.Disabled {
		return
	}
	r.timings = append(r.timings, TimingEvent{Name: name, Elapsed: elapsed})
}

func (r *Recorder) recordCount(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defaults.Disabled {
		return
	}
	r.counts[name]++
}

type recorderTimer struct {
	r    *Recorder
	name string
}

func (t recorderTimer) Start() Stopwatch {
	return recorderStopwatch{r: t.r, name: t.name, begin: time.Now()}
}

type recorderStopwatch struct {
	r     *Recorder
	name  string
	begin time.Time
}

func (s recorderStopwatch) Stop() {
	s.r.recordTiming(s.name, time.Since(s.begin))
}

type recorderCounter struct {
	r    *Recorder
	name string
}

func (c recorderCounter) Inc() {
	c.r.recordCount(c.name)
}
