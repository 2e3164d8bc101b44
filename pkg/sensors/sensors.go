// Package sensors is the BLE sensor client facade: hosts register status, scanning and data
// callbacks, start a scan, and receive typed events from the injected provider.
package sensors

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/util"
	mapset "github.com/deckarep/golang-set"
	"github.com/rs/zerolog"
)

const (
	defaultQueueSize      = 256
	defaultConnectTimeout = 30 * time.Second
	stateTimeout          = 2 * time.Second
	stopTimeout           = 5 * time.Second
)

// SensorClient is the capability handed to hosts
type SensorClient interface {
	RegisterListeners(models.Listeners)
	RegisterListenersFromMap(map[string]interface{})
	StartScanning() error
	StopScanning() error
	IsScanning() bool
}

var _ SensorClient = (*BLESensors)(nil)

type options struct {
	logger         zerolog.Logger
	reportUnknown  bool
	queueSize      int
	connectTimeout time.Duration
}

// Option configures BLESensors
type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithReportUnknown emits device-detected for devices no profile recognises
func WithReportUnknown(b bool) Option {
	return func(o *options) { o.reportUnknown = b }
}

// WithQueueSize sets how many events may wait for dispatch before emitters block
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// BLESensors wraps a models.Provider and delivers its events to registered listeners
type BLESensors struct {
	provider models.Provider
	opts     options
	logger   zerolog.Logger

	listeners      models.Listeners
	listenersMutex sync.RWMutex

	events     chan models.Event
	closing    chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	inListener atomic.Bool

	scanMutex  sync.Mutex
	starting   bool
	scanCancel context.CancelFunc
	scanDone   chan struct{}
	session    string

	devices     *models.DeviceTable
	connections map[string]*connection
	connMutex   sync.RWMutex
	stopping    bool
	pending     mapset.Set
	watchers    sync.WaitGroup
}

// New creates the facade and starts its dispatch loop. provider may be nil, in which case
// scanning fails with models.ErrProviderUnavailable.
func New(provider models.Provider, opts ...Option) *BLESensors {
	o := options{
		logger:         zerolog.Nop(),
		queueSize:      defaultQueueSize,
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	s := &BLESensors{
		provider:    provider,
		opts:        o,
		logger:      o.logger,
		events:      make(chan models.Event, o.queueSize),
		closing:     make(chan struct{}),
		done:        make(chan struct{}),
		devices:     models.NewDeviceTable(),
		connections: map[string]*connection{},
		pending:     mapset.NewSet(),
	}
	go s.dispatchLoop()
	return s
}

// RegisterListeners replaces the handler of every kind whose callback is set
func (s *BLESensors) RegisterListeners(l models.Listeners) {
	s.listenersMutex.Lock()
	defer s.listenersMutex.Unlock()
	if l.StatusCallback != nil {
		s.listeners.StatusCallback = l.StatusCallback
	}
	if l.ScanningCallback != nil {
		s.listeners.ScanningCallback = l.ScanningCallback
	}
	if l.DataCallback != nil {
		s.listeners.DataCallback = l.DataCallback
	}
}

// RegisterListenersFromMap is RegisterListeners for loosely typed options keyed by
// statusCallback, scanningCallback and dataCallback. Anything else is ignored.
func (s *BLESensors) RegisterListenersFromMap(options map[string]interface{}) {
	s.RegisterListeners(models.ListenersFromMap(options))
}

// RemoveListeners clears the handlers of the given kinds
func (s *BLESensors) RemoveListeners(kinds ...models.EventKind) {
	s.listenersMutex.Lock()
	defer s.listenersMutex.Unlock()
	for _, k := range kinds {
		switch k {
		case models.Status:
			s.listeners.StatusCallback = nil
		case models.Scanning:
			s.listeners.ScanningCallback = nil
		case models.Data:
			s.listeners.DataCallback = nil
		}
	}
}

func (s *BLESensors) RemoveAllListeners() {
	s.RemoveListeners(models.EventKinds...)
}

// Emit queues e for dispatch. It blocks while the queue is full and returns false once the
// facade is closed.
func (s *BLESensors) Emit(e models.Event) bool {
	select {
	case <-s.closing:
		return false
	default:
	}
	select {
	case s.events <- e:
		return true
	case <-s.closing:
		return false
	}
}

func (s *BLESensors) dispatchLoop() {
	defer close(s.done)
	for {
		select {
		case e := <-s.events:
			s.dispatch(e)
		case <-s.closing:
			for {
				select {
				case e := <-s.events:
					s.dispatch(e)
				default:
					return
				}
			}
		}
	}
}

func (s *BLESensors) dispatch(e models.Event) {
	s.listenersMutex.RLock()
	h := s.listeners.ForKind(e.Kind())
	s.listenersMutex.RUnlock()
	if h == nil {
		s.logger.Debug().Stringer("kind", e.Kind()).Msg("No listener for event")
		return
	}
	s.inListener.Store(true)
	err := util.CatchErrs(func() error {
		h(e)
		return nil
	})
	s.inListener.Store(false)
	if err != nil {
		s.logger.Error().Err(err).Stringer("kind", e.Kind()).Msg("Listener failed")
	}
}

// Close stops scanning, drops every connection and stops the dispatch loop after the
// queued events were delivered. Called from a listener it returns without waiting for the
// loop, which exits once that listener returns.
func (s *BLESensors) Close() error {
	s.closeOnce.Do(func() {
		if err := s.StopScanning(); err != nil {
			s.logger.Warn().Err(err).Msg("StopScanning issue")
		}
		s.disconnectAll()
		close(s.closing)
		if s.inListener.Load() {
			return
		}
		<-s.done
	})
	return nil
}
