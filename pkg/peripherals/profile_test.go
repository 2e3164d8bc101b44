package peripherals

import (
	"testing"

	"gotest.tools/assert"
)

func TestInferType(t *testing.T) {
	assert.Equal(t, InferType("", []string{"180D"}), HeartRateType)
	assert.Equal(t, InferType("", []string{"0x180d"}), HeartRateType)
	assert.Equal(t, InferType("spreader", []string{"1810343D-6040-4AC2-BAA7-FAA02B316363"}), MultispreadType)
	assert.Equal(t, InferType("", []string{"180a", taskitSerialServiceUUID}), TaskitSerialType)
	assert.Equal(t, InferType("SensorTag", nil), SensorTagType)
	assert.Equal(t, InferType("TI BLE Sensor Tag", nil), SensorTagType)
	assert.Equal(t, InferType("sensortag", nil), "")
	assert.Equal(t, InferType("Phone", []string{"180a"}), "")
}

func TestNewProfile(t *testing.T) {
	p, ok := NewProfile(HeartRateType)
	assert.Assert(t, ok)
	assert.Equal(t, p.ServiceType(), "heartRate")
	assert.Equal(t, p.DefaultName(), "Heart Rate")

	p, ok = NewProfile(MultispreadType)
	assert.Assert(t, ok)
	assert.Equal(t, p.ServiceType(), SpreaderService)
	assert.Equal(t, p.DefaultName(), "Multispread")

	_, ok = NewProfile(SensorTagType)
	assert.Assert(t, !ok)
	assert.Assert(t, !Supported(TaskitSerialType))
	assert.Assert(t, Supported(HeartRateType))
}

func TestDeviceInfo(t *testing.T) {
	chars := DeviceInfoCharacteristics()
	assert.Equal(t, len(chars), 8)
	assert.Equal(t, chars[0], "00002a2300001000800000805f9b34fb")

	key, val, ok := DecodeDeviceInfo("2A23", []byte{0x01, 0xab, 0xff})
	assert.Assert(t, ok)
	assert.Equal(t, key, "systemId")
	assert.Equal(t, val, "01ABFF")

	key, val, ok = DecodeDeviceInfo("2a29", []byte("Acme"))
	assert.Assert(t, ok)
	assert.Equal(t, key, "manufacturerName")
	assert.Equal(t, val, "Acme")

	_, _, ok = DecodeDeviceInfo("2a37", []byte{0})
	assert.Assert(t, !ok)
}
