package ble

import (
	"context"
	"time"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	defaultAdapter     = "hci0"
	defaultDialTimeout = 10 * time.Second
)

type providerOptions struct {
	adapter         string
	dialTimeout     time.Duration
	allowDuplicates bool
	logger          zerolog.Logger
}

// Option configures a RealProvider
type Option func(*providerOptions)

// WithAdapter selects the host adapter, e.g. "hci1"
func WithAdapter(adapter string) Option {
	return func(o *providerOptions) { o.adapter = adapter }
}

// WithDialTimeout bounds every connection attempt
func WithDialTimeout(d time.Duration) Option {
	return func(o *providerOptions) { o.dialTimeout = d }
}

// WithAllowDuplicates reports every advertisement instead of once per device
func WithAllowDuplicates(b bool) Option {
	return func(o *providerOptions) { o.allowDuplicates = b }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *providerOptions) { o.logger = logger }
}

// RealProvider is the go-ble backed models.Provider
type RealProvider struct {
	methods coreMethods
	opts    providerOptions
}

// NewRealProvider creates a provider for the host adapter. The HCI device is opened lazily.
func NewRealProvider(options ...Option) *RealProvider {
	opts := buildOptions(options)
	return newRealProvider(newRealCoreMethods(opts.adapter, opts.dialTimeout), opts)
}

func buildOptions(options []Option) providerOptions {
	opts := providerOptions{
		adapter:     defaultAdapter,
		dialTimeout: defaultDialTimeout,
		logger:      zerolog.Nop(),
	}
	for _, o := range options {
		o(&opts)
	}
	return opts
}

func newRealProvider(methods coreMethods, opts providerOptions) *RealProvider {
	opts.logger = opts.logger.With().Str("adapter", opts.adapter).Logger()
	return &RealProvider{methods: methods, opts: opts}
}

// State reports the adapter condition
func (p *RealProvider) State(ctx context.Context) (models.AdapterState, error) {
	return p.methods.State(ctx)
}

// Scan blocks until ctx is done, converting every advertisement for handle
func (p *RealProvider) Scan(ctx context.Context, handle func(models.Advertisement)) error {
	err := p.methods.Scan(ctx, p.opts.allowDuplicates, func(a ble.Advertisement) {
		handle(toAdvertisement(a))
	})
	if isDone(ctx, err) {
		return nil
	}
	return errors.Wrap(err, "Scan issue")
}

// Connect dials addr and discovers its profile
func (p *RealProvider) Connect(ctx context.Context, addr string) (models.Link, error) {
	var cln ble.Client
	err := retryAndCatch(p.opts.logger, "Dial", func() error {
		if ctx.Err() != nil {
			return nil
		}
		dialCtx, cancel := context.WithTimeout(ctx, p.opts.dialTimeout)
		defer cancel()
		c, e := p.methods.Dial(dialCtx, ble.NewAddr(addr))
		cln = c
		return e
	})
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	conn, err := newRealConnection(addr, cln, p.opts.logger)
	if err != nil {
		util.CatchErrs(cln.CancelConnection)
		return nil, err
	}
	return conn, nil
}

// Close releases the HCI device
func (p *RealProvider) Close() error {
	return p.methods.Stop()
}

func isDone(ctx context.Context, err error) bool {
	if err == nil {
		return true
	}
	cause := errors.Cause(err)
	return ctx.Err() != nil && (cause == context.Canceled || cause == context.DeadlineExceeded)
}

func toAdvertisement(a ble.Advertisement) models.Advertisement {
	services := []string{}
	for _, u := range a.Services() {
		services = append(services, util.UuidToStr(u))
	}
	for _, u := range a.OverflowService() {
		services = append(services, util.UuidToStr(u))
	}
	return models.Advertisement{
		Name:        a.LocalName(),
		Address:     a.Addr().String(),
		RSSI:        a.RSSI(),
		Services:    services,
		Connectable: a.Connectable(),
	}
}
