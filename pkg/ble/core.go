package ble

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
)

type coreMethods interface {
	State(context.Context) (models.AdapterState, error)
	Scan(context.Context, bool, ble.AdvHandler) error
	Dial(context.Context, ble.Addr) (ble.Client, error)
	Stop() error
}

type realCoreMethods struct {
	adapter string
	timeout time.Duration
	device  ble.Device
	mutex   sync.Mutex
}

func newRealCoreMethods(adapter string, timeout time.Duration) *realCoreMethods {
	return &realCoreMethods{adapter: adapter, timeout: timeout}
}

func (bc *realCoreMethods) getDevice() (ble.Device, error) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()
	if bc.device != nil {
		return bc.device, nil
	}
	device, err := OpenDevice(bc.adapter, bc.timeout)
	if err != nil {
		return nil, err
	}
	bc.device = device
	return device, nil
}

// OpenDevice opens the named adapter for use outside the provider, e.g. to host a peripheral
func OpenDevice(adapter string, timeout time.Duration) (ble.Device, error) {
	var device ble.Device
	err := util.CatchErrs(func() error {
		d, e := newDevice(adapter, timeout)
		device = d
		return e
	})
	if err != nil {
		return nil, errors.Wrap(err, "newDevice issue")
	}
	return device, nil
}

func (bc *realCoreMethods) State(ctx context.Context) (models.AdapterState, error) {
	state, err := adapterState(ctx, bc.adapter)
	if err == nil {
		return state, nil
	}
	// no system bus, so ask the hci socket directly
	if _, e := bc.getDevice(); e != nil {
		return models.Unsupported, nil
	}
	return models.Ready, nil
}

func (bc *realCoreMethods) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	device, err := bc.getDevice()
	if err != nil {
		return err
	}
	return util.CatchErrs(func() error {
		return device.Scan(ctx, allowDup, h)
	})
}

func (bc *realCoreMethods) Dial(ctx context.Context, addr ble.Addr) (ble.Client, error) {
	device, err := bc.getDevice()
	if err != nil {
		return nil, err
	}
	var client ble.Client
	err = util.CatchErrs(func() error {
		c, e := device.Dial(ctx, addr)
		client = c
		return e
	})
	return client, err
}

func (bc *realCoreMethods) Stop() error {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()
	if bc.device == nil {
		return nil
	}
	err := util.CatchErrs(bc.device.Stop)
	bc.device = nil
	return err
}

// deviceID turns an adapter name like "hci1" into its HCI index
func deviceID(adapter string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimPrefix(adapter, "hci"))
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
