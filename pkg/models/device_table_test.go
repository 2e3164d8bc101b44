package models

import (
	"testing"

	"gotest.tools/assert"
)

func TestDeviceTableSetter(t *testing.T) {
	x := NewDeviceTable()
	x.Set(Device{Name: "Polar H7", Address: "aa:bb:cc:dd:ee:ff", Type: "heart-rate", RSSI: -60})
	d, ok := x.Get("AA:BB:CC:DD:EE:FF")
	assert.Assert(t, ok)
	assert.Equal(t, d.Type, "heart-rate")
	assert.Equal(t, x.Len(), 1)
}

func TestDeviceTableRefresh(t *testing.T) {
	x := NewDeviceTable()
	x.Set(Device{Address: "aa:bb:cc:dd:ee:ff", RSSI: -60})
	x.Set(Device{Address: "AA:BB:CC:DD:EE:FF", RSSI: -40})
	assert.Equal(t, x.Len(), 1)
	d, _ := x.Get("aa:bb:cc:dd:ee:ff")
	assert.Equal(t, d.RSSI, -40)
	_, ok := x.Get("11:22:33:44:55:66")
	assert.Assert(t, !ok)
}
