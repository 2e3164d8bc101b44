package internal

import (
	"context"
	"sync"

	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/go-ble/ble"
)

// DummyWrite is one recorded WriteCharacteristic call
type DummyWrite struct {
	UUID string
	Data []byte
}

// DummyCoreClient is an in-memory ble.Client exposing a fixed set of characteristics
type DummyCoreClient struct {
	testAddr     string
	services     []*ble.Service
	mutex        sync.Mutex
	reads        map[string][]byte
	writes       []DummyWrite
	handlers     map[string]ble.NotificationHandler
	failures     int
	disconnected chan struct{}
	closeOnce    sync.Once
	cancelled    bool
}

func NewDummyCoreClient(addr string, services []*ble.Service) *DummyCoreClient {
	return &DummyCoreClient{
		testAddr: addr, services: services,
		reads:        map[string][]byte{},
		handlers:     map[string]ble.NotificationHandler{},
		disconnected: make(chan struct{}),
	}
}

// SetReadData sets what ReadCharacteristic returns for uuid
func (c *DummyCoreClient) SetReadData(uuid string, data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.reads[util.NormalizeUUID(uuid)] = data
}

// FailNext makes the next n reads or writes fail
func (c *DummyCoreClient) FailNext(n int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.failures = n
}

func (c *DummyCoreClient) Writes() []DummyWrite {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]DummyWrite(nil), c.writes...)
}

// Notify pushes a notification to the subscribed handler of uuid
func (c *DummyCoreClient) Notify(uuid string, data []byte) bool {
	c.mutex.Lock()
	h, ok := c.handlers[util.NormalizeUUID(uuid)]
	c.mutex.Unlock()
	if ok {
		h(data)
	}
	return ok
}

func (c *DummyCoreClient) Subscribed(uuid string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, ok := c.handlers[util.NormalizeUUID(uuid)]
	return ok
}

// Drop simulates the remote device going away
func (c *DummyCoreClient) Drop() {
	c.closeOnce.Do(func() { close(c.disconnected) })
}

func (c *DummyCoreClient) fail() error {
	if c.failures > 0 {
		c.failures--
		return errDummyIO
	}
	return nil
}

func (c *DummyCoreClient) ReadCharacteristic(char *ble.Characteristic) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.fail(); err != nil {
		return nil, err
	}
	return c.reads[util.UuidToStr(char.UUID)], nil
}
func (c *DummyCoreClient) WriteCharacteristic(char *ble.Characteristic, value []byte, noRsp bool) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.fail(); err != nil {
		return err
	}
	c.writes = append(c.writes, DummyWrite{util.UuidToStr(char.UUID), value})
	return nil
}
func (c *DummyCoreClient) Subscribe(char *ble.Characteristic, ind bool, h ble.NotificationHandler) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.handlers[util.UuidToStr(char.UUID)] = h
	return nil
}
func (c *DummyCoreClient) CancelConnection() error {
	c.mutex.Lock()
	c.cancelled = true
	c.mutex.Unlock()
	c.Drop()
	return nil
}

func (c *DummyCoreClient) Cancelled() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cancelled
}
func (c *DummyCoreClient) Addr() ble.Addr        { return ble.NewAddr(c.testAddr) }
func (c *DummyCoreClient) Name() string          { return "some name" }
func (c *DummyCoreClient) Profile() *ble.Profile { return &ble.Profile{Services: c.services} }
func (c *DummyCoreClient) DiscoverProfile(force bool) (*ble.Profile, error) {
	return &ble.Profile{Services: c.services}, nil
}
func (c *DummyCoreClient) DiscoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	return c.services, nil
}
func (c *DummyCoreClient) DiscoverIncludedServices(filter []ble.UUID, s *ble.Service) ([]*ble.Service, error) {
	return nil, nil
}
func (c *DummyCoreClient) DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	return s.Characteristics, nil
}
func (c *DummyCoreClient) DiscoverDescriptors(filter []ble.UUID, char *ble.Characteristic) ([]*ble.Descriptor, error) {
	return nil, nil
}
func (c *DummyCoreClient) ReadLongCharacteristic(char *ble.Characteristic) ([]byte, error) {
	return c.ReadCharacteristic(char)
}
func (c *DummyCoreClient) ReadDescriptor(d *ble.Descriptor) ([]byte, error)  { return nil, nil }
func (c *DummyCoreClient) WriteDescriptor(d *ble.Descriptor, v []byte) error { return nil }
func (c *DummyCoreClient) ReadRSSI() int                                     { return 0 }
func (c *DummyCoreClient) ExchangeMTU(rxMTU int) (txMTU int, err error)      { return rxMTU, nil }
func (c *DummyCoreClient) Unsubscribe(char *ble.Characteristic, ind bool) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.handlers, util.UuidToStr(char.UUID))
	return nil
}
func (c *DummyCoreClient) ClearSubscriptions() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.handlers = map[string]ble.NotificationHandler{}
	return nil
}
func (c *DummyCoreClient) Disconnected() <-chan struct{} { return c.disconnected }
func (c *DummyCoreClient) Conn() ble.Conn {
	return &mockConn{ctx: context.Background(), addr: c.testAddr, disconnected: c.disconnected}
}
