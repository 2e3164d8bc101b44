package models

import "github.com/pkg/errors"

var (
	// ErrProviderUnavailable is returned when no BLE backend is present
	ErrProviderUnavailable = errors.New("ble provider unavailable")
	// ErrUnknownDevice is returned when connecting to an address that was never discovered and has no type hint
	ErrUnknownDevice = errors.New("device not previously discovered and no type hint was provided")
	// ErrUnsupportedDevice is returned when no peripheral profile exists for a device type
	ErrUnsupportedDevice = errors.New("no peripheral profile for device type")
	// ErrNotConnected is returned for operations on an address without an active link
	ErrNotConnected = errors.New("device is not connected")
	// ErrNoSuchCharacteristic is returned when a link does not expose a characteristic
	ErrNoSuchCharacteristic = errors.New("no such characteristic")
	// ErrClosed is returned by operations started after the sensor client began closing
	ErrClosed = errors.New("sensor client is closed")
)
