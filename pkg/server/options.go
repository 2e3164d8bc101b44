package server

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultInterval     = time.Second
	defaultManufacturer = "Simulated"
	defaultFirmware     = "0.1.0"
)

// Options tunes a simulated device. Zero fields take defaults.
type Options struct {
	// Interval between notifications
	Interval     time.Duration
	Seed         int64
	Manufacturer string
	Firmware     string
	Logger       zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = defaultInterval
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.Manufacturer == "" {
		o.Manufacturer = defaultManufacturer
	}
	if o.Firmware == "" {
		o.Firmware = defaultFirmware
	}
	return o
}
