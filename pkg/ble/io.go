package ble

import (
	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

func (c *RealConnection) getCharacteristic(uuid string) (*ble.Characteristic, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if char, ok := c.characteristics[util.NormalizeUUID(uuid)]; ok {
		return char, nil
	}
	return nil, errors.Wrapf(models.ErrNoSuchCharacteristic, "uuid %s on %s", uuid, c.addr)
}

// Read reads the value of a characteristic
func (c *RealConnection) Read(uuid string) ([]byte, error) {
	char, err := c.getCharacteristic(uuid)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = retryAndCatch(c.logger, "ReadCharacteristic", func() error {
		d, e := c.cln.ReadCharacteristic(char)
		data = d
		return e
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write writes a characteristic value and waits for the response
func (c *RealConnection) Write(uuid string, data []byte) error {
	if len(data) == 0 {
		return errors.New("empty data to write")
	}
	char, err := c.getCharacteristic(uuid)
	if err != nil {
		return err
	}
	return retryAndCatch(c.logger, "WriteCharacteristic", func() error {
		return c.cln.WriteCharacteristic(char, data, false)
	})
}

// Subscribe registers handle for notifications of a characteristic
func (c *RealConnection) Subscribe(uuid string, handle func([]byte)) error {
	char, err := c.getCharacteristic(uuid)
	if err != nil {
		return err
	}
	return retryAndCatch(c.logger, "Subscribe", func() error {
		return c.cln.Subscribe(char, false, func(req []byte) {
			handle(append([]byte(nil), req...))
		})
	})
}
