/*
Package instrument provides callable-level instrumentation for Go: wrap a
function or method so that every invocation is timed or counted and the
measurement shipped to a metrics backend, without the wrapped code ever
referencing the metrics system.

# Overview

The library is organized around three pieces:

1. Instrumentor: the explicitly constructed instrumentation context. It
resolves a stable, dotted, hierarchical name for each callable, caches one
metric handle per resolved name, and owns the process-wide reporting switch.
Instrumentors must be safe for concurrent use from any number of goroutines.

	in := instrument.New(params, transport)
	work := instrument.Timed(in, fetchUser)
	u, err := work(ctx) // timed; result and error pass through unchanged

2. Transport: the collaborator that delivers metric events to a backend.

	type Transport interface {
	  NewTimer(name string) Timer
	  NewCounter(name string) Counter
	  SetDefaults(Defaults)
	}

The statsd subpackage implements Transport over go-kit's buffered statsd
client; NewNoopTransport discards everything; Recorder keeps events in
memory for tests.

3. Wrappers: Timed, TimedFunc, Counted and CountedFunc take a callable and
return an instrumented callable of the same signature. Timers report the
elapsed wall time of each invocation, including failing ones. Counters
increment before the call runs, so counts reflect invocation attempts.

# Name resolution

Names take the form {app}.{enclosing scope}.{callable name}, derived from
the callable's static binding info and sanitized to a dotted, statsd-safe
form. Two resolution modes refine this:

  - PerWorker appends the worker label carried on the context (WithWorker),
    so concurrent workers accumulate distinct metrics.
  - OnReceiver takes the scope from the receiver's QualifiedName, so a
    method declared once reports under each concrete type it is invoked
    through. A receiver without the capability falls back to the plain
    form, which names the declaring type.

Resolution never fails; unusable inputs degrade to {app}.unknown.func.

# Handle cache

Handles are created at most once per (kind, name) and shared by all
subsequent invocations. The cache is append-only and lives for the process
lifetime. First-time initialization is deduplicated with per-key mutexes;
after initialization the mutex entry is removed so mutexes for ephemeral
names can be GCed (disable with WithInitCleanupDisabled). LookupTimer,
LookupCounter and Handles expose the cache read-only.

# Reporting switch

Enable, Disable and Init (an alias for Enable) re-apply the connection
parameters {host, port, sample rate} plus the enabled flag to the shared
transport. The switch is live: it affects already-created and future
handles alike. Reporting starts enabled.

# Build and test

- Run unit tests:

	go test ./...

- Run with the race detector (invariant violations panic):

	go test -race ./...

- Enable the debug build tag (same fail-fast invariant behavior):

	go test -tags=debug ./...

# Notes

- The logger passed via WithLogger only receives internal diagnostics;
*zap.SugaredLogger satisfies the expected interface directly.

- A nil Transport passed to New degrades to the no-op transport, so
instrumented code keeps working with zero reporting.
*/
package instrument
