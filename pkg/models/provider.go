package models

import "context"

// Advertisement is the provider-neutral view of a received BLE advertisement
type Advertisement struct {
	Name        string
	Address     string
	RSSI        int
	Services    []string
	Connectable bool
}

// Provider is the BLE backend behind the sensor facade
type Provider interface {
	// State reports the adapter condition
	State(ctx context.Context) (AdapterState, error)
	// Scan blocks delivering advertisements until ctx is done
	Scan(ctx context.Context, handle func(Advertisement)) error
	// Connect opens a GATT link to the device at addr
	Connect(ctx context.Context, addr string) (Link, error)
}

// Link is an open GATT connection to one peripheral. Characteristic UUIDs are in canonical form.
type Link interface {
	Address() string
	Read(uuid string) ([]byte, error)
	Write(uuid string, data []byte) error
	Subscribe(uuid string, handle func([]byte)) error
	Disconnected() <-chan struct{}
	Close() error
}
