// Package peripherals decodes characteristic values of the supported BLE sensor types.
package peripherals

import (
	"github.com/Krajiyah/ble-sensors/pkg/util"
)

// Device types reported in scanning events
const (
	HeartRateType    = "heart-rate"
	MultispreadType  = "mm-controller"
	TaskitSerialType = "taskit-serial"
	SensorTagType    = "sensor-tag"
)

const (
	sensorTagName    = "SensorTag"
	sensorTagAltName = "TI BLE Sensor Tag"

	taskitSerialServiceUUID = "912FFFF0-3D4B-11E3-A760-0002A5D5C51B"
)

// SensorsDataType is the data type of periodic sensor readings
const SensorsDataType = "sensors"

// Reading is one decoded payload ready to be emitted as a data event
type Reading struct {
	Type   string
	Values map[string]interface{}
}

// Command is a characteristic write produced from an update request
type Command struct {
	UUID string
	Data []byte
}

// Profile knows how to talk to one type of peripheral. A Profile is bound to a single connection
// and may keep decoding state between notifications.
type Profile interface {
	Type() string
	ServiceType() string
	DefaultName() string
	// Notifications lists characteristics to subscribe to once connected
	Notifications() []string
	// InitialReads lists characteristics to read once connected
	InitialReads() []string
	// Decode turns a characteristic value into a reading. ok is false when nothing should be emitted.
	Decode(uuid string, value []byte) (r *Reading, ok bool)
	// Commands encodes an update request into characteristic writes
	Commands(values map[string]interface{}) []Command
}

// InferType guesses the device type from advertised services first, then from the name.
// Returns "" for unrecognised devices.
func InferType(name string, services []string) string {
	for _, s := range services {
		switch util.NormalizeUUID(s) {
		case util.NormalizeUUID(HeartRateServiceUUID):
			return HeartRateType
		case util.NormalizeUUID(MultispreadServiceUUID):
			return MultispreadType
		case util.NormalizeUUID(taskitSerialServiceUUID):
			return TaskitSerialType
		}
	}
	if name == sensorTagName || name == sensorTagAltName {
		return SensorTagType
	}
	return ""
}

// NewProfile creates a fresh profile for the given type
func NewProfile(typ string) (Profile, bool) {
	switch typ {
	case HeartRateType:
		return newHeartRate(), true
	case MultispreadType:
		return newMultispread(), true
	}
	return nil, false
}

// Supported reports whether a profile exists for the type
func Supported(typ string) bool {
	return typ == HeartRateType || typ == MultispreadType
}

func copyValues(values map[string]interface{}) map[string]interface{} {
	ret := make(map[string]interface{}, len(values))
	for k, v := range values {
		ret[k] = v
	}
	return ret
}
