//go:build !linux

package ble

import (
	"context"
	"time"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/go-ble/ble"
)

func newDevice(string, time.Duration) (ble.Device, error) {
	return nil, models.ErrProviderUnavailable
}

func adapterState(context.Context, string) (models.AdapterState, error) {
	return models.Unsupported, nil
}
