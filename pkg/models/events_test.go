package models

import (
	"testing"

	"gotest.tools/assert"
)

func TestEventKinds(t *testing.T) {
	var e Event = &StatusEvent{Status: Ready.String(), Label: Ready.Label()}
	assert.Equal(t, e.Kind(), Status)
	e = &ScanningEvent{Action: DiscoveryStarted}
	assert.Equal(t, e.Kind(), Scanning)
	e = &DataEvent{Type: "sensors"}
	assert.Equal(t, e.Kind(), Data)
	assert.Equal(t, EventKind(7).String(), "Unknown")
}

func TestEventStrings(t *testing.T) {
	s := &StatusEvent{Status: "ready", Label: "Bluetooth is powered on and ready"}
	assert.Equal(t, s.String(), `{status=ready label="Bluetooth is powered on and ready"}`)
	c := &StatusEvent{Status: DeviceConnected, Address: "AA:BB"}
	assert.Equal(t, c.String(), "{address=AA:BB status=connected}")
	d := &DataEvent{Address: "AA:BB", Service: "heartRate", Type: "sensors", Values: map[string]interface{}{"heartRate": 72, "sensorLocation": "chest"}}
	assert.Equal(t, d.String(), "{address=AA:BB service=heartRate type=sensors values=[heartRate:72 sensorLocation:chest]}")
}

func TestAdapterState(t *testing.T) {
	assert.Equal(t, Off.String(), "off")
	assert.Equal(t, Off.Label(), "Bluetooth is powered off")
	assert.Equal(t, Unknown.Label(), "Mysterious status")
	assert.Equal(t, AdapterState(42).String(), "unknown")
}
