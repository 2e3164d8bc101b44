package internal

import (
	"context"
	"strings"
	"sync"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/pkg/errors"
)

// DummyProvider is an in-memory models.Provider. Advertisements queued before or during a
// scan are delivered to the scan handler in order.
type DummyProvider struct {
	mutex    sync.Mutex
	state    models.AdapterState
	advs     chan models.Advertisement
	links    map[string]*DummyLink
	scanning bool
	scans    int
}

func NewDummyProvider(state models.AdapterState) *DummyProvider {
	return &DummyProvider{
		state: state,
		advs:  make(chan models.Advertisement, 64),
		links: map[string]*DummyLink{},
	}
}

func (p *DummyProvider) SetState(state models.AdapterState) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.state = state
}

// Advertise queues an advertisement for the running (or next) scan
func (p *DummyProvider) Advertise(a models.Advertisement) { p.advs <- a }

// AddLink makes addr connectable, exposing the given characteristics
func (p *DummyProvider) AddLink(addr string, charUUIDs ...string) *DummyLink {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	l := newDummyLink(addr, charUUIDs)
	p.links[strings.ToUpper(addr)] = l
	return l
}

func (p *DummyProvider) Scanning() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.scanning
}

func (p *DummyProvider) Scans() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.scans
}

func (p *DummyProvider) State(context.Context) (models.AdapterState, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.state, nil
}

func (p *DummyProvider) Scan(ctx context.Context, handle func(models.Advertisement)) error {
	p.mutex.Lock()
	p.scanning = true
	p.scans++
	p.mutex.Unlock()
	defer func() {
		p.mutex.Lock()
		p.scanning = false
		p.mutex.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-p.advs:
			handle(a)
		}
	}
}

func (p *DummyProvider) Connect(ctx context.Context, addr string) (models.Link, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	l, ok := p.links[strings.ToUpper(addr)]
	if !ok {
		return nil, errors.Errorf("no device at %s", addr)
	}
	return l, nil
}

// DummyLink is an in-memory models.Link
type DummyLink struct {
	addr         string
	mutex        sync.Mutex
	chars        map[string]bool
	reads        map[string][]byte
	writes       []DummyWrite
	handlers     map[string]func([]byte)
	disconnected chan struct{}
	closeOnce    sync.Once
}

func newDummyLink(addr string, charUUIDs []string) *DummyLink {
	l := &DummyLink{
		addr:         addr,
		chars:        map[string]bool{},
		reads:        map[string][]byte{},
		handlers:     map[string]func([]byte){},
		disconnected: make(chan struct{}),
	}
	for _, u := range charUUIDs {
		l.chars[util.NormalizeUUID(u)] = true
	}
	return l
}

func (l *DummyLink) SetReadData(uuid string, data []byte) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.reads[util.NormalizeUUID(uuid)] = data
}

func (l *DummyLink) Writes() []DummyWrite {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]DummyWrite(nil), l.writes...)
}

func (l *DummyLink) Subscribed(uuid string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	_, ok := l.handlers[util.NormalizeUUID(uuid)]
	return ok
}

// Notify delivers a notification to the subscriber of uuid
func (l *DummyLink) Notify(uuid string, data []byte) bool {
	l.mutex.Lock()
	h, ok := l.handlers[util.NormalizeUUID(uuid)]
	l.mutex.Unlock()
	if ok {
		h(data)
	}
	return ok
}

// Drop simulates the remote device going away
func (l *DummyLink) Drop() {
	l.closeOnce.Do(func() { close(l.disconnected) })
}

func (l *DummyLink) check(uuid string) (string, error) {
	uuid = util.NormalizeUUID(uuid)
	if !l.chars[uuid] {
		return "", errors.Wrap(models.ErrNoSuchCharacteristic, uuid)
	}
	return uuid, nil
}

func (l *DummyLink) Address() string { return l.addr }

func (l *DummyLink) Read(uuid string) ([]byte, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	uuid, err := l.check(uuid)
	if err != nil {
		return nil, err
	}
	return l.reads[uuid], nil
}

func (l *DummyLink) Write(uuid string, data []byte) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	uuid, err := l.check(uuid)
	if err != nil {
		return err
	}
	l.writes = append(l.writes, DummyWrite{uuid, data})
	return nil
}

func (l *DummyLink) Subscribe(uuid string, handle func([]byte)) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	uuid, err := l.check(uuid)
	if err != nil {
		return err
	}
	l.handlers[uuid] = handle
	return nil
}

func (l *DummyLink) Disconnected() <-chan struct{} { return l.disconnected }

func (l *DummyLink) Close() error {
	l.Drop()
	return nil
}
