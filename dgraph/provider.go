package dgraph

import (
	"io"
	"sync"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/grapl-security/graphkit/sd"
	"github.com/grapl-security/graphkit/sd/lb"
)

// Provider owns a single cached Client built against an alpha picked from an
// instancer. It is safe for concurrent use; the check-and-construct sequence
// in Client is serialized.
type Provider struct {
	instancer     sd.Instancer
	picker        lb.Picker
	factory       sd.Factory[*Client]
	logger        log.Logger
	constructions metrics.Counter

	mtx    sync.Mutex
	client *Client
	closer io.Closer
}

// ProviderOption sets an optional parameter of a Provider.
type ProviderOption func(*Provider)

// WithFactory sets the factory used to build clients. By default clients are
// built by NewFactory with no extra dial options.
func WithFactory(f sd.Factory[*Client]) ProviderOption {
	return func(p *Provider) { p.factory = f }
}

// WithPicker sets the picker that chooses an alpha on every construction.
// The picker draws from its own instancer; the instancer passed to
// NewProvider is then unused. WithPicker and WithRand are exclusive, the
// later one wins.
func WithPicker(picker lb.Picker) ProviderOption {
	return func(p *Provider) { p.picker = picker }
}

// WithRand replaces the picker with a random picker over the provider's
// instancer, drawing from r.
func WithRand(r lb.Rand) ProviderOption {
	return func(p *Provider) { p.picker = lb.NewRandomFrom(p.instancer, r) }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger log.Logger) ProviderOption {
	return func(p *Provider) { p.logger = logger }
}

// WithConstructions sets a counter incremented once per client construction,
// labelled with "alpha".
func WithConstructions(c metrics.Counter) ProviderOption {
	return func(p *Provider) { p.constructions = c }
}

// NewProvider returns a Provider that builds clients against the instances
// yielded by instancer. No client is built until Client is first called.
func NewProvider(instancer sd.Instancer, options ...ProviderOption) *Provider {
	if instancer == nil {
		instancer = sd.FixedInstancer{}
	}
	p := &Provider{
		instancer:     instancer,
		factory:       NewFactory(),
		logger:        log.NewNopLogger(),
		constructions: discard.NewCounter(),
	}
	for _, option := range options {
		option(p)
	}
	if p.picker == nil {
		p.picker = lb.NewRandom(p.instancer, time.Now().UnixNano())
	}
	return p
}

// Client returns the cached client, building one first if none exists or if
// forceReinit is set. A forced reinitialization always picks an alpha anew
// and builds a distinct client, even when the same alpha comes up again; the
// superseded client is closed once it has been replaced, so callers still
// holding it will see its calls fail.
//
// An empty alpha pool yields a ConfigurationError. Errors from the instancer
// or the factory are returned unchanged. On error the cached client, if any,
// is left in place.
func (p *Provider) Client(forceReinit bool) (*Client, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if !forceReinit && p.client != nil {
		return p.client, nil
	}

	alpha, err := p.picker.Instance()
	if errors.Is(err, lb.ErrNoInstances) {
		return nil, ConfigurationError{Err: ErrNoAlphas}
	}
	if err != nil {
		return nil, err
	}

	c, closer, err := p.factory(alpha)
	if err != nil {
		level.Error(p.logger).Log("alpha", alpha, "during", "construct", "err", err)
		return nil, err
	}

	prev := p.closer
	p.client, p.closer = c, closer
	p.constructions.With("alpha", alpha).Add(1)
	level.Info(p.logger).Log("alpha", alpha, "reinit", forceReinit, "msg", "client constructed")

	if prev != nil {
		if err := prev.Close(); err != nil {
			level.Warn(p.logger).Log("during", "release", "err", err)
		}
	}
	return c, nil
}

// Close releases the cached client, if any. The next call to Client builds a
// new one.
func (p *Provider) Close() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	closer := p.closer
	p.client, p.closer = nil, nil
	if closer == nil {
		return nil
	}
	return closer.Close()
}
