package instrument

import (
	"context"
	"reflect"
	"runtime"
	"strings"
)

// This file computes the dotted hierarchical identity of a callable:
// {app}.{enclosing scope}.{callable name}, optionally replacing the scope
// with a receiver's qualified name and optionally appending a worker label.
// Resolution must never fail: any shape of input degrades to a usable
// fallback name, since instrumentation must not crash observed code.

const (
	fallbackScope = "unknown"
	fallbackName  = "func"

	// defaultWorker is the worker label used when the context carries none.
	defaultWorker = "main"
)

// QualifiedNamer is the capability a type implements so that metric names
// resolved through OnReceiver carry the concrete type's identity rather
// than the identity of the type declaring the method. Implementations
// should return a stable dotted name, e.g. "store.PostgresRepo".
type QualifiedNamer interface {
	QualifiedName() string
}

type workerKey struct{}

// WithWorker labels the context with a worker name. Wrappers configured
// with PerWorker append this label to the resolved name, so concurrent
// workers accumulate distinct metrics instead of contending on one.
func WithWorker(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, workerKey{}, name)
}

// WorkerName returns the worker label carried by ctx, or "main".
func WorkerName(ctx context.Context) string {
	if ctx != nil {
		if v, ok := ctx.Value(workerKey{}).(string); ok && v != "" {
			return v
		}
	}
	return defaultWorker
}

// callableName resolves the dotted identity for fn. An explicit name wins;
// otherwise the scope comes from the receiver's QualifiedName when one is
// supplied and capable, and from fn's static binding info when not. The
// capability and fallback forms can differ for the same call site; callers
// that need one stream should set an explicit name.
func (in *Instrumentor) callableName(fn interface{}, recv interface{}, explicit string) string {
	if explicit != "" {
		return in.app + "." + explicit
	}
	scope, name := funcIdentity(fn)
	if qn, ok := recv.(QualifiedNamer); ok {
		if q := qualifiedName(qn); q != "" {
			return in.app + "." + q + "." + name
		}
	}
	return in.app + "." + scope + "." + name
}

// qualifiedName extracts a usable name from the capability, tolerating
// typed-nil receivers and panicking implementations.
func qualifiedName(qn QualifiedNamer) (q string) {
	defer func() {
		if recover() != nil {
			q = ""
		}
	}()
	return sanitizeName(strings.TrimSpace(qn.QualifiedName()))
}

// funcIdentity derives (enclosing scope, callable name) from a func value's
// static binding info. Non-func and nil inputs yield the fallback pair.
func funcIdentity(fn interface{}) (scope, name string) {
	if fn == nil {
		return fallbackScope, fallbackName
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return fallbackScope, fallbackName
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return fallbackScope, fallbackName
	}
	full := sanitizeName(rf.Name())
	if full == "" {
		return fallbackScope, fallbackName
	}
	if i := strings.LastIndex(full, "."); i > 0 && i < len(full)-1 {
		return full[:i], full[i+1:]
	}
	return fallbackScope, full
}

var nameSanitizer = strings.NewReplacer(
	"/", ".", // import paths become dotted scopes
	"(*", "", // pointer receivers: pkg.(*T).M -> pkg.T.M
	"(", "",
	")", "",
	"[...]", "", // instantiated generic functions
	" ", "",
)

// sanitizeName converts a runtime function name into a dotted, statsd-safe
// form. Method values carry a "-fm" suffix which is stripped.
func sanitizeName(s string) string {
	s = strings.TrimSuffix(s, "-fm")
	s = nameSanitizer.Replace(s)
	return strings.Trim(s, ".")
}
