package instrument

import "context"

// This file provides the higher-order wrappers: each takes a callable and
// returns an instrumented callable of the same signature. Per invocation a
// wrapper resolves the metric name, fetches or creates the handle, emits
// around the call, and returns the callable's outcome unchanged. Creation
// and first reporting happen within the same call.

type wrapConfig struct {
	name      string
	recv      interface{}
	perWorker bool
}

// WrapOption configures how a wrapper resolves metric names.
type WrapOption func(*wrapConfig)

// WithName overrides resolution with an explicit dotted identity, reported
// as "{app}.{name}".
func WithName(name string) WrapOption {
	return func(c *wrapConfig) { c.name = name }
}

// OnReceiver resolves the enclosing scope from the receiver's QualifiedName
// so that a method declared on one type and invoked through several
// concrete types reports under each concrete type's name. A nil receiver,
// or one without the capability, falls back to the name derived from the
// callable itself, which carries the declaring type; the two forms can
// differ for the same call site.
func OnReceiver(recv interface{}) WrapOption {
	return func(c *wrapConfig) { c.recv = recv }
}

// PerWorker appends the context's worker label (see WithWorker) to the
// resolved name, so concurrent workers accumulate distinct metrics.
func PerWorker() WrapOption {
	return func(c *wrapConfig) { c.perWorker = true }
}

func applyWrapOptions(opts []WrapOption) wrapConfig {
	var cfg wrapConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

// metricName resolves the per-call name: the base identity is computed once
// at wrap time, the worker label per call.
func (cfg *wrapConfig) metricName(base string, ctx context.Context) string {
	if cfg.perWorker {
		return base + "." + WorkerName(ctx)
	}
	return base
}

// Timed wraps fn so that every invocation is timed and the elapsed wall
// time reported under the resolved name. The wrapped callable's result and
// error pass through unchanged; the duration is reported even when fn
// fails, via the deferred stop.
func Timed[T any](in *Instrumentor, fn func(context.Context) (T, error), opts ...WrapOption) func(context.Context) (T, error) {
	cfg := applyWrapOptions(opts)
	base := in.callableName(fn, cfg.recv, cfg.name)
	return func(ctx context.Context) (T, error) {
		sw := in.Timer(cfg.metricName(base, ctx)).Start()
		defer sw.Stop()
		return fn(ctx)
	}
}

// TimedFunc is Timed for callables without a result value.
func TimedFunc(in *Instrumentor, fn func(context.Context) error, opts ...WrapOption) func(context.Context) error {
	cfg := applyWrapOptions(opts)
	base := in.callableName(fn, cfg.recv, cfg.name)
	return func(ctx context.Context) error {
		sw := in.Timer(cfg.metricName(base, ctx)).Start()
		defer sw.Stop()
		return fn(ctx)
	}
}

// Counted wraps fn so that every invocation increments a counter under the
// resolved name. The increment happens before fn runs: counts reflect
// invocation attempts, not successful completions. The wrapped callable's
// result and error pass through unchanged.
func Counted[T any](in *Instrumentor, fn func(context.Context) (T, error), opts ...WrapOption) func(context.Context) (T, error) {
	cfg := applyWrapOptions(opts)
	base := in.callableName(fn, cfg.recv, cfg.name)
	return func(ctx context.Context) (T, error) {
		in.Counter(cfg.metricName(base, ctx)).Inc()
		return fn(ctx)
	}
}

// CountedFunc is Counted for callables without a result value.
func CountedFunc(in *Instrumentor, fn func(context.Context) error, opts ...WrapOption) func(context.Context) error {
	cfg := applyWrapOptions(opts)
	base := in.callableName(fn, cfg.recv, cfg.name)
	return func(ctx context.Context) error {
		in.Counter(cfg.metricName(base, ctx)).Inc()
		return fn(ctx)
	}
}
