//go:build linux

package ble

import (
	"context"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

const (
	bluezService      = "org.bluez"
	bluezAdapterIface = "org.bluez.Adapter1"
)

// adapterState reads the Powered property of the BlueZ adapter object
func adapterState(ctx context.Context, adapter string) (models.AdapterState, error) {
	bus, err := dbus.ConnectSystemBus()
	if err != nil {
		return models.Unknown, errors.Wrap(err, "ConnectSystemBus issue")
	}
	defer bus.Close()
	obj := bus.Object(bluezService, dbus.ObjectPath("/org/bluez/"+adapter))
	var powered dbus.Variant
	err = obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, bluezAdapterIface, "Powered").Store(&powered)
	if err != nil {
		return stateFromDbusError(err)
	}
	if on, ok := powered.Value().(bool); ok && on {
		return models.Ready, nil
	}
	return models.Off, nil
}

func stateFromDbusError(err error) (models.AdapterState, error) {
	var dbusErr dbus.Error
	if !errors.As(err, &dbusErr) {
		return models.Unknown, err
	}
	switch dbusErr.Name {
	case "org.freedesktop.DBus.Error.UnknownObject", "org.freedesktop.DBus.Error.ServiceUnknown":
		return models.Unsupported, nil
	case "org.freedesktop.DBus.Error.AccessDenied":
		return models.Unauthorised, nil
	}
	return models.Unknown, err
}
