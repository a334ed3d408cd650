package columnar

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Settings is pushed down a region tree when it is attached to a Stack.
// Regions that allocate backing blocks implement Configurable and forward
// the settings to their children.
type Settings struct {
	Config Config
	Logger log.Logger
	Budget *Budget

	metrics *regionMetrics
}

// Configurable is implemented by regions that accept Settings.
type Configurable interface {
	Configure(s Settings)
}

func configure(r any, s Settings) {
	if c, ok := r.(Configurable); ok {
		c.Configure(s)
	}
}

func (s Settings) logger() log.Logger {
	if s.Logger == nil {
		return log.NewNopLogger()
	}
	return s.Logger
}

// Option configures a Stack.
type Option func(*options)

type options struct {
	cfg    Config
	logger log.Logger
	budget *Budget
	reg    prometheus.Registerer
}

// WithConfig sets growth parameters and limits.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger sets the logger used for block allocation events.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBudget shares a memory budget between stacks. It takes precedence
// over Config.MemoryLimitBytes.
func WithBudget(b *Budget) Option {
	return func(o *options) {
		o.budget = b
	}
}

// WithRegisterer registers allocation metrics with reg. Stacks registering
// with the same registerer must be told apart, for example with
// prometheus.WrapRegistererWith; otherwise NewWithConfig returns a
// prometheus.AlreadyRegisteredError and New panics.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.reg = reg
	}
}

func newSettings(opts ...Option) (Settings, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNopLogger()
	}
	if o.budget == nil && o.cfg.MemoryLimitBytes > 0 {
		o.budget = NewBudget(o.cfg.MemoryLimitBytes)
	}
	metrics, err := newRegionMetrics(o.reg)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Config:  o.cfg,
		Logger:  o.logger,
		Budget:  o.budget,
		metrics: metrics,
	}, nil
}
