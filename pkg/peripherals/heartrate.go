package peripherals

import (
	"encoding/binary"
	"sync"

	"github.com/Krajiyah/ble-sensors/pkg/util"
)

// Heart rate service and characteristics
const (
	HeartRateServiceUUID     = "0000180d-0000-1000-8000-00805f9b34fb"
	HeartRateMeasurementUUID = "00002a37-0000-1000-8000-00805f9b34fb"
	BodySensorLocationUUID   = "00002a38-0000-1000-8000-00805f9b34fb"
)

var sensorLocations = []string{"other", "chest", "wrist", "finger", "hand", "ear lobe", "foot"}

type heartRate struct {
	mutex  sync.Mutex
	values map[string]interface{}
}

func newHeartRate() *heartRate {
	return &heartRate{values: map[string]interface{}{}}
}

func (h *heartRate) Type() string        { return HeartRateType }
func (h *heartRate) ServiceType() string { return "heartRate" }
func (h *heartRate) DefaultName() string { return "Heart Rate" }

func (h *heartRate) Notifications() []string {
	return []string{util.NormalizeUUID(HeartRateMeasurementUUID)}
}

func (h *heartRate) InitialReads() []string {
	return []string{util.NormalizeUUID(BodySensorLocationUUID)}
}

func (h *heartRate) Decode(uuid string, value []byte) (*Reading, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	switch util.NormalizeUUID(uuid) {
	case util.NormalizeUUID(HeartRateMeasurementUUID):
		bpm, ok := decodeHeartRate(value)
		if !ok {
			return nil, false
		}
		h.values["heartRate"] = bpm
	case util.NormalizeUUID(BodySensorLocationUUID):
		if len(value) < 1 {
			return nil, false
		}
		h.values["sensorLocation"] = sensorLocation(int(value[0]))
	default:
		return nil, false
	}
	return &Reading{Type: SensorsDataType, Values: copyValues(h.values)}, true
}

func (h *heartRate) Commands(map[string]interface{}) []Command { return nil }

// decodeHeartRate parses a Heart Rate Measurement value: bit 0 of the flags byte selects
// a uint16 (little endian) rather than a uint8 beats-per-minute field.
func decodeHeartRate(value []byte) (int, bool) {
	if len(value) < 2 {
		return 0, false
	}
	if value[0]&0x01 == 0 {
		return int(value[1]), true
	}
	if len(value) < 3 {
		return 0, false
	}
	return int(binary.LittleEndian.Uint16(value[1:3])), true
}

func sensorLocation(code int) string {
	if code < 0 || code >= len(sensorLocations) {
		return "unknown"
	}
	return sensorLocations[code]
}
