package instrument

import "sync"

// Instrumentor is the explicitly constructed instrumentation context: it
// resolves callable names, caches metric handles, and owns the process-wide
// reporting switch for its Transport. Construct one per application and
// pass it to the wrappers in wrap.go.
// All methods are safe for concurrent use.
type Instrumentor struct {
	app       string
	params    Params
	transport Transport
	cfg       *instrumentorConfig
	logger    logger

	// handle cache; see registry.go
	timers   sync.Map // map[string]Timer
	counters sync.Map // map[string]Counter
	meta     sync.Map // map[HandleKey]HandleEntry
	// per-key init mutexes: protect concurrent initialization for the same key
	inits sync.Map // map[HandleKey]*sync.Mutex

	violations sync.Map // map[string]*reportCount
}

type instrumentorConfig struct {
	// when true, keep per-key mutex entries in `inits` after initialization.
	// Default is to remove them so mutexes for ephemeral names can be GCed.
	doNotCleanupInits bool
	logger            logger
}

// Option configures an Instrumentor constructed by New.
type Option func(*instrumentorConfig)

// WithInitCleanupDisabled keeps per-key init mutex entries in the internal
// `inits` map after initialization instead of deleting them. Cleanup is
// enabled by default.
func WithInitCleanupDisabled() Option {
	return func(cfg *instrumentorConfig) { cfg.doNotCleanupInits = true }
}

// WithLogger sets the logger used for internal diagnostics.
// *zap.SugaredLogger satisfies the expected interface directly.
func WithLogger(l logger) Option {
	return func(cfg *instrumentorConfig) { cfg.logger = l }
}

// New constructs an Instrumentor reporting through the given transport.
// A nil transport degrades to a no-op one, so wrapped callables keep
// working without any reporting. Reporting starts enabled.
func New(params Params, transport Transport, opts ...Option) *Instrumentor {
	cfg := &instrumentorConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	l := cfg.logger
	if l == nil {
		l = newNoopLogger()
	}
	if transport == nil {
		transport = NewNoopTransport()
	}
	params = params.normalize()
	in := &Instrumentor{
		app:       params.App,
		params:    params,
		transport: transport,
		cfg:       cfg,
		logger:    l,
	}
	in.Enable()
	return in
}

// defaults builds the Defaults applied to the transport on each switch flip.
func (in *Instrumentor) defaults(disabled bool) Defaults {
	return Defaults{
		Host:       in.params.Host,
		Port:       in.params.Port,
		SampleRate: in.params.SampleRate,
		Disabled:   disabled,
	}
}

// Enable (re)applies the connection parameters to the transport with
// reporting turned on. Safe to call repeatedly and in any order with
// Disable; the latest call wins for already-created and future handles.
func (in *Instrumentor) Enable() {
	in.transport.SetDefaults(in.defaults(false))
}

// Disable (re)applies the connection parameters to the transport with
// reporting turned off. Wrapped callables keep executing normally; only
// emission is suppressed.
func (in *Instrumentor) Disable() {
	in.transport.SetDefaults(in.defaults(true))
}

// Init is an alias for Enable.
func (in *Instrumentor) Init() {
	in.Enable()
}

// App returns the prefix applied to all resolved names.
func (in *Instrumentor) App() string { return in.app }
