// Package statsd ships metric events to a statsd daemon. It implements the
// instrument.Transport interface on top of go-kit's buffered statsd client:
// handles record into an in-process buffer, and a send loop flushes the
// buffer to the daemon over UDP, so emission never blocks or fails the
// instrumented call path.
package statsd

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	gokit "github.com/go-kit/kit/metrics/statsd"
	"github.com/go-kit/log"

	"github.com/ygrebnov/instrument"
)

// Transport implements instrument.Transport over a statsd connection.
// The latest Defaults applied via SetDefaults are live: Disabled is
// consulted on every emission, sample-rate changes re-rate a name's
// underlying instrument at its next emission, and host/port changes take
// effect at the next send-loop tick.
type Transport struct {
	client *gokit.Statsd
	logger log.Logger

	mu       sync.RWMutex
	defaults instrument.Defaults

	counters sync.Map // map[string]ratedCounter
	timings  sync.Map // map[string]ratedTiming
}

// Option configures a Transport constructed by New.
type Option func(*Transport)

// WithLogger sets the logger used for send-loop diagnostics.
func WithLogger(l log.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// New constructs a Transport with the connection parameters from params.
// Reporting starts enabled; the buffer is not flushed anywhere until
// SendLoop (or WriteTo) is used.
func New(params instrument.Params, opts ...Option) *Transport {
	t := &Transport{}
	for _, o := range opts {
		if o != nil {
			o(t)
		}
	}
	if t.logger == nil {
		t.logger = log.NewNopLogger()
	}
	// Resolved names already carry the app prefix; the client adds none.
	t.client = gokit.New("", t.logger)
	rate := params.SampleRate
	if rate <= 0 {
		rate = 1
	}
	t.defaults = instrument.Defaults{
		Host:       params.Host,
		Port:       params.Port,
		SampleRate: rate,
	}
	return t
}

// SetDefaults implements instrument.Transport. The latest value wins for
// already-created and future handles.
func (t *Transport) SetDefaults(d instrument.Defaults) {
	if d.SampleRate <= 0 {
		d.SampleRate = 1
	}
	t.mu.Lock()
	t.defaults = d
	t.mu.Unlock()
}

func (t *Transport) snapshot() instrument.Defaults {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.defaults
}

// Address returns the daemon address built from the current defaults.
func (t *Transport) Address() string {
	d := t.snapshot()
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// NewTimer implements instrument.Transport.
func (t *Transport) NewTimer(name string) instrument.Timer {
	return timer{t: t, name: name}
}

// NewCounter implements instrument.Transport.
func (t *Transport) NewCounter(name string) instrument.Counter {
	return counter{t: t, name: name}
}

type ratedCounter struct {
	rate float64
	c    *gokit.Counter
}

type ratedTiming struct {
	rate float64
	tm   *gokit.Timing
}

// counterFor returns the buffered counter for name at the given sample
// rate, recreating it when the rate changed. A racing recreation is benign:
// both instruments record into the same client buffer under the same name.
func (t *Transport) counterFor(name string, rate float64) *gokit.Counter {
	if v, ok := t.counters.Load(name); ok {
		if rc := v.(ratedCounter); rc.rate == rate {
			return rc.c
		}
	}
	c := t.client.NewCounter(name, rate)
	t.counters.Store(name, ratedCounter{rate: rate, c: c})
	return c
}

func (t *Transport) timingFor(name string, rate float64) *gokit.Timing {
	if v, ok := t.timings.Load(name); ok {
		if rt := v.(ratedTiming); rt.rate == rate {
			return rt.tm
		}
	}
	tm := t.client.NewTiming(name, rate)
	t.timings.Store(name, ratedTiming{rate: rate, tm: tm})
	return tm
}

type counter struct {
	t    *Transport
	name string
}

func (c counter) Inc() {
	d := c.t.snapshot()
	if d.Disabled {
		return
	}
	c.t.counterFor(c.name, d.SampleRate).Add(1)
}

type timer struct {
	t    *Transport
	name string
}

func (tm timer) Start() instrument.Stopwatch {
	return &stopwatch{t: tm.t, name: tm.name, begin: time.Now()}
}

type stopwatch struct {
	t     *Transport
	name  string
	begin time.Time
}

func (s *stopwatch) Stop() {
	elapsed := time.Since(s.begin)
	d := s.t.snapshot()
	if d.Disabled {
		return
	}
	s.t.timingFor(s.name, d.SampleRate).Observe(float64(elapsed) / float64(time.Millisecond))
}

// WriteTo flushes the buffered observations to w in the statsd line
// protocol. Exposed for tests and custom flushing strategies.
func (t *Transport) WriteTo(w io.Writer) (int64, error) {
	return t.client.WriteTo(w)
}

// SendLoop flushes the buffer to the daemon over UDP on every tick until
// ctx is done, redialing when the configured address changes. Transport
// errors are logged and the loop keeps going; they never reach the
// instrumented call path.
func (t *Transport) SendLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		conn net.Conn
		addr string
	)
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cur := t.Address()
			if conn == nil || cur != addr {
				if conn != nil {
					conn.Close()
					conn = nil
				}
				c, err := net.Dial("udp", cur)
				if err != nil {
					t.logger.Log("during", "dial", "addr", cur, "err", err)
					continue
				}
				conn, addr = c, cur
			}
			if _, err := t.client.WriteTo(conn); err != nil {
				t.logger.Log("during", "WriteTo", "addr", addr, "err", err)
				conn.Close()
				conn = nil
			}
		}
	}
}
