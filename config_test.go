package instrument

import "testing"

func TestParamsFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := ParamsFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.App != "app" || p.Host != "127.0.0.1" || p.Port != 8125 || p.SampleRate != 1 {
			t.Fatalf("unexpected defaults: %+v", p)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("INSTRUMENT_APP", "graph-explorer")
		t.Setenv("INSTRUMENT_STATSD_HOST", "statsd.internal")
		t.Setenv("INSTRUMENT_STATSD_PORT", "9125")
		t.Setenv("INSTRUMENT_STATSD_SAMPLE_RATE", "0.25")

		p, err := ParamsFromEnv()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.App != "graph-explorer" || p.Host != "statsd.internal" || p.Port != 9125 || p.SampleRate != 0.25 {
			t.Fatalf("unexpected params: %+v", p)
		}
	})

	t.Run("invalid_port", func(t *testing.T) {
		t.Setenv("INSTRUMENT_STATSD_PORT", "not-a-port")
		if _, err := ParamsFromEnv(); err == nil {
			t.Fatalf("expected an error for an unparsable port")
		}
	})
}

func TestParamsNormalize(t *testing.T) {
	p := Params{}.normalize()
	if p.App != "app" {
		t.Fatalf("expected default app; got %q", p.App)
	}
	if p.SampleRate != 1 {
		t.Fatalf("expected sample rate 1; got %v", p.SampleRate)
	}

	p = Params{App: "ge", SampleRate: 0.5}.normalize()
	if p.App != "ge" || p.SampleRate != 0.5 {
		t.Fatalf("normalize changed explicit values: %+v", p)
	}
}
