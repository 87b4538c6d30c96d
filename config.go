package instrument

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Params is the reporting configuration an Instrumentor consumes: the
// application prefix for all resolved names and the statsd connection
// parameters re-applied on every Enable/Disable.
type Params struct {
	// App prefixes every resolved metric name.
	App string `env:"INSTRUMENT_APP" envDefault:"app"`

	Host       string  `env:"INSTRUMENT_STATSD_HOST" envDefault:"127.0.0.1"`
	Port       int     `env:"INSTRUMENT_STATSD_PORT" envDefault:"8125"`
	SampleRate float64 `env:"INSTRUMENT_STATSD_SAMPLE_RATE" envDefault:"1"`
}

// ParamsFromEnv loads Params from the environment, falling back to the
// defaults declared on the struct tags.
func ParamsFromEnv() (Params, error) {
	p, err := env.ParseAs[Params]()
	if err != nil {
		return Params{}, fmt.Errorf("instrument: parse params from environment: %w", err)
	}
	return p, nil
}

// normalize fills zero-value fields so downstream code never sees an empty
// app prefix or a zero sample rate.
func (p Params) normalize() Params {
	if p.App == "" {
		p.App = "app"
	}
	if p.SampleRate <= 0 {
		p.SampleRate = 1
	}
	return p
}
