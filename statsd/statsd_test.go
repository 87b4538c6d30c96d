package statsd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ygrebnov/instrument"
)

func newTestTransport() *Transport {
	return New(instrument.Params{App: "ge", Host: "127.0.0.1", Port: 8125, SampleRate: 1})
}

func TestTransport_Counter(t *testing.T) {
	tr := newTestTransport()
	c := tr.NewCounter("ge.hits")
	c.Inc()
	c.Inc()
	c.Inc()

	var buf bytes.Buffer
	if _, err := tr.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ge.hits:3") || !strings.Contains(out, "|c") {
		t.Fatalf("unexpected counter line(s): %q", out)
	}
}

func TestTransport_Timer(t *testing.T) {
	tr := newTestTransport()
	sw := tr.NewTimer("ge.lat").Start()
	time.Sleep(time.Millisecond)
	sw.Stop()

	var buf bytes.Buffer
	if _, err := tr.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ge.lat:") || !strings.Contains(out, "|ms") {
		t.Fatalf("unexpected timing line(s): %q", out)
	}
}

func TestTransport_DisabledSuppressesEmission(t *testing.T) {
	tr := newTestTransport()
	c := tr.NewCounter("ge.gated")
	tmr := tr.NewTimer("ge.gated.lat")

	tr.SetDefaults(instrument.Defaults{Host: "127.0.0.1", Port: 8125, SampleRate: 1, Disabled: true})
	c.Inc()
	tmr.Start().Stop()

	var buf bytes.Buffer
	if _, err := tr.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no buffered observations while disabled; got %q", buf.String())
	}

	// the same handles resume reporting after re-enable
	tr.SetDefaults(instrument.Defaults{Host: "127.0.0.1", Port: 8125, SampleRate: 1})
	c.Inc()
	if _, err := tr.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "ge.gated:1") {
		t.Fatalf("expected reporting to resume; got %q", buf.String())
	}
}

func TestTransport_Address(t *testing.T) {
	tr := newTestTransport()
	if got := tr.Address(); got != "127.0.0.1:8125" {
		t.Fatalf("unexpected address: %q", got)
	}
	tr.SetDefaults(instrument.Defaults{Host: "10.1.2.3", Port: 9125, SampleRate: 1})
	if got := tr.Address(); got != "10.1.2.3:9125" {
		t.Fatalf("expected address to follow the latest defaults; got %q", got)
	}
}

func TestTransport_SampleRateNormalized(t *testing.T) {
	tr := New(instrument.Params{App: "ge", Host: "127.0.0.1", Port: 8125})
	if got := tr.snapshot().SampleRate; got != 1 {
		t.Fatalf("expected sample rate normalized to 1; got %v", got)
	}
	tr.SetDefaults(instrument.Defaults{Host: "127.0.0.1", Port: 8125, SampleRate: -3})
	if got := tr.snapshot().SampleRate; got != 1 {
		t.Fatalf("expected negative rate normalized to 1; got %v", got)
	}
}

func TestTransport_RateChangeReratesInstrument(t *testing.T) {
	tr := newTestTransport()
	first := tr.counterFor("ge.rated", 1)
	if again := tr.counterFor("ge.rated", 1); again != first {
		t.Fatalf("expected the cached instrument for an unchanged rate")
	}
	if rerated := tr.counterFor("ge.rated", 0.5); rerated == first {
		t.Fatalf("expected a re-rated instrument after the rate changed")
	}
}

func TestTransport_EndToEndWithInstrumentor(t *testing.T) {
	tr := newTestTransport()
	in := instrument.New(instrument.Params{App: "ge", Host: "127.0.0.1", Port: 8125, SampleRate: 1}, tr)

	c := in.Counter("ge.requests")
	c.Inc()
	c.Inc()

	var buf bytes.Buffer
	if _, err := tr.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "ge.requests:2") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
