package ble

import (
	"sync"

	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// RealConnection is a GATT link backed by a go-ble client
type RealConnection struct {
	addr            string
	cln             ble.Client
	characteristics map[string]*ble.Characteristic
	mutex           sync.RWMutex
	closeOnce       sync.Once
	logger          zerolog.Logger
}

func newRealConnection(addr string, cln ble.Client, logger zerolog.Logger) (*RealConnection, error) {
	c := &RealConnection{
		addr: addr, cln: cln,
		characteristics: map[string]*ble.Characteristic{},
		logger:          logger.With().Str("address", addr).Logger(),
	}
	if err := c.discover(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *RealConnection) discover() error {
	return retryAndCatch(c.logger, "DiscoverProfile", func() error {
		p, err := c.cln.DiscoverProfile(true)
		if err != nil {
			return err
		}
		if p == nil {
			return errors.New("empty profile")
		}
		c.mutex.Lock()
		defer c.mutex.Unlock()
		for _, s := range p.Services {
			for _, char := range s.Characteristics {
				c.characteristics[util.UuidToStr(char.UUID)] = char
			}
		}
		c.logger.Debug().Int("characteristics", len(c.characteristics)).Msg("Discovered profile")
		return nil
	})
}

// Address returns the remote device address
func (c *RealConnection) Address() string { return c.addr }

// Disconnected is closed once the link drops
func (c *RealConnection) Disconnected() <-chan struct{} { return c.cln.Disconnected() }

// Close cancels the link. Safe to call more than once.
func (c *RealConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = util.CatchErrs(func() error {
			if e := c.cln.ClearSubscriptions(); e != nil {
				c.logger.Debug().Err(e).Msg("ClearSubscriptions issue")
			}
			return c.cln.CancelConnection()
		})
	})
	return err
}
