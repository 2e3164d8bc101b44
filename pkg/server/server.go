// Package server runs a GATT peripheral that behaves like one of the supported sensors,
// for bench testing the client side without hardware.
package server

import (
	"context"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/peripherals"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const deviceInfoServiceUUID = "180a"

// Peripheral is the part of a ble.Device the server needs
type Peripheral interface {
	AddService(*ble.Service) error
	AdvertiseNameAndServices(ctx context.Context, name string, uuids ...ble.UUID) error
}

// BLEServer is a simulated sensor
type BLEServer struct {
	name     string
	typ      string
	services []*ble.Service
	logger   zerolog.Logger
}

// NewBLEServer builds the services of a simulated device of the given type
func NewBLEServer(typ string, name string, opts Options) (*BLEServer, error) {
	opts = opts.withDefaults()
	server := &BLEServer{name: name, typ: typ, logger: opts.Logger.With().Str("type", typ).Logger()}
	var main *ble.Service
	switch typ {
	case peripherals.HeartRateType:
		main = newHeartRateService(server, newHeartRateState(opts.Seed), opts.Interval)
	case peripherals.MultispreadType:
		main = newMultispreadService(server, newMultispreadState(opts.Seed), opts.Interval)
	default:
		return nil, errors.Wrap(models.ErrUnsupportedDevice, typ)
	}
	if server.name == "" {
		p, _ := peripherals.NewProfile(typ)
		server.name = p.DefaultName()
	}
	server.services = []*ble.Service{main, getDeviceInfoService(server, opts)}
	return server, nil
}

// Run registers the services and advertises until ctx is done
func (server *BLEServer) Run(ctx context.Context, p Peripheral) error {
	for _, s := range server.services {
		if err := p.AddService(s); err != nil {
			return errors.Wrap(err, "AddService issue")
		}
	}
	server.logger.Info().Str("name", server.name).Msg("Advertising")
	err := p.AdvertiseNameAndServices(ctx, server.name, server.services[0].UUID)
	if ctx.Err() != nil {
		return nil
	}
	return errors.Wrap(err, "AdvertiseNameAndServices issue")
}

func (server *BLEServer) Name() string { return server.name }

func getDeviceInfoService(server *BLEServer, opts Options) *ble.Service {
	service := ble.NewService(ble.MustParse(deviceInfoServiceUUID))
	values := [][2]string{
		{"2a29", opts.Manufacturer},
		{"2a24", server.typ},
		{"2a26", opts.Firmware},
	}
	for _, kv := range values {
		v := []byte(kv[1])
		service.AddCharacteristic(constructReadChar(server, &BLEReadCharacteristic{kv[0], func(string) ([]byte, error) {
			return v, nil
		}}))
	}
	return service
}
