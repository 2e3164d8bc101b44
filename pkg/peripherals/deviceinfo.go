package peripherals

import (
	"encoding/hex"
	"strings"

	"github.com/Krajiyah/ble-sensors/pkg/util"
)

// DeviceInfoDataType is the data type of device information events
const DeviceInfoDataType = "deviceInfo"

type deviceInfoField struct {
	uuid string
	key  string
	hex  bool
}

var deviceInfoFields = []deviceInfoField{
	{"00002a23-0000-1000-8000-00805f9b34fb", "systemId", true},
	{"00002a24-0000-1000-8000-00805f9b34fb", "modelNumber", false},
	{"00002a25-0000-1000-8000-00805f9b34fb", "serialNumber", false},
	{"00002a26-0000-1000-8000-00805f9b34fb", "firmwareRev", false},
	{"00002a27-0000-1000-8000-00805f9b34fb", "hardwareRev", false},
	{"00002a28-0000-1000-8000-00805f9b34fb", "softwareRev", false},
	{"00002a29-0000-1000-8000-00805f9b34fb", "manufacturerName", false},
	{"00002a2a-0000-1000-8000-00805f9b34fb", "certData", false},
}

// DeviceInfoCharacteristics lists the device information characteristics in read order
func DeviceInfoCharacteristics() []string {
	ret := make([]string, 0, len(deviceInfoFields))
	for _, f := range deviceInfoFields {
		ret = append(ret, util.NormalizeUUID(f.uuid))
	}
	return ret
}

// DecodeDeviceInfo maps a device information characteristic value to its key
func DecodeDeviceInfo(uuid string, value []byte) (string, string, bool) {
	uuid = util.NormalizeUUID(uuid)
	for _, f := range deviceInfoFields {
		if util.NormalizeUUID(f.uuid) != uuid {
			continue
		}
		if f.hex {
			return f.key, toHex(value), true
		}
		return f.key, string(value), true
	}
	return "", "", false
}

func toHex(value []byte) string {
	return strings.ToUpper(hex.EncodeToString(value))
}
