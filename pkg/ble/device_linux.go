//go:build linux

package ble

import (
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

func newDevice(adapter string, timeout time.Duration) (ble.Device, error) {
	opts := []ble.Option{
		ble.OptDialerTimeout(timeout), // client to server timeout
	}
	if id, ok := deviceID(adapter); ok {
		opts = append(opts, ble.OptDeviceID(id))
	}
	d, err := linux.NewDevice(opts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}
