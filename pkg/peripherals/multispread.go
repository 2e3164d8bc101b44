package peripherals

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/Krajiyah/ble-sensors/pkg/util"
)

// Multispread service and characteristics
const (
	MultispreadServiceUUID = "1810343d-6040-4ac2-baa7-faa02b316363"

	SpeedCharUUID           = "219b6ba9-d0b1-489c-92dd-d139fefdb5b6"
	DoorCharUUID            = "4dbe6ddb-a7ba-4979-a623-f2372c102624"
	LoadCellCharUUID        = "ba5761a5-abfb-42fb-8f9a-a67f663c7684"
	DoorTargetCharUUID      = "9863df31-3379-48d4-981c-4b008ded639d"
	CommandRequestCharUUID  = "e29e238a-c4c1-4160-8dbd-c22437081105"
	CommandResponseCharUUID = "aeb1c336-63d8-45e4-89dc-d17172c89036"
)

// CommandResponseDataType is the data type of multispread command responses
const CommandResponseDataType = "commandResponse"

// SpreaderService is the service name update requests must carry to reach a multispread
const SpreaderService = "spreader"

type flag uint8

const (
	flagNone    flag = 0
	flagSpinner flag = 1
	flagDoor    flag = 2
	flagLC      flag = 4
)

const (
	cmdCalibrate      byte = 1
	cmdDriveWheel     byte = 2
	cmdDoorDiag       byte = 3
	cmdDriveWheelDiag byte = 4
)

// loadCellNegativeZero marks a port without a reading
const loadCellNegativeZero = math.MinInt32

var (
	calibrationStatuses = []string{"unknown", "completed", "timeout", "cancelled"}
	driveWheelStatuses  = []string{"unknown", "engaged", "disengaged", "engaging", "disengaging", "timeout"}
	diagnosticBits      = []string{"lowBattery", "offTarget", "timeout", "extending", "retracting", "extended", "retracted"}
)

type multispread struct {
	mutex  sync.Mutex
	values map[string]interface{}
}

func newMultispread() *multispread {
	return &multispread{values: map[string]interface{}{}}
}

func (m *multispread) Type() string        { return MultispreadType }
func (m *multispread) ServiceType() string { return SpreaderService }
func (m *multispread) DefaultName() string { return "Multispread" }

func (m *multispread) Notifications() []string {
	return []string{
		util.NormalizeUUID(SpeedCharUUID),
		util.NormalizeUUID(DoorCharUUID),
		util.NormalizeUUID(LoadCellCharUUID),
		util.NormalizeUUID(CommandResponseCharUUID),
	}
}

func (m *multispread) InitialReads() []string { return nil }

func (m *multispread) Decode(uuid string, value []byte) (*Reading, bool) {
	uuid = util.NormalizeUUID(uuid)
	if uuid == util.NormalizeUUID(CommandResponseCharUUID) {
		return decodeCommandResponse(value)
	}
	f := uuidToFlag(uuid)
	if f == flagNone {
		return nil, false
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	switch f {
	case flagSpinner:
		decodeSpeed(value, m.values)
	case flagDoor:
		decodeDoor(value, m.values)
	case flagLC:
		decodeLoadCells(value, m.values)
	}
	// every sensor notification carries the latest value of all three
	return &Reading{Type: SensorsDataType, Values: copyValues(m.values)}, true
}

func (m *multispread) Commands(values map[string]interface{}) []Command {
	if !strings.EqualFold(fmt.Sprint(values["service"]), SpreaderService) {
		return nil
	}
	ret := []Command{}
	if v, ok := values["doorOpening"]; ok {
		target := asInt(v)
		data := make([]byte, 2)
		binary.BigEndian.PutUint16(data, uint16(target))
		ret = append(ret, Command{util.NormalizeUUID(DoorTargetCharUUID), data})
	}
	if v, ok := values["doorCalibration"]; ok {
		switch strings.ToLower(fmt.Sprint(v)) {
		case "start":
			ret = append(ret, request(cmdCalibrate, 1))
		case "cancel":
			ret = append(ret, request(cmdCalibrate, 2))
		}
	}
	if v, ok := values["driveWheel"]; ok {
		switch strings.ToLower(fmt.Sprint(v)) {
		case "engage":
			ret = append(ret, request(cmdDriveWheel, 1))
		case "disengage":
			ret = append(ret, request(cmdDriveWheel, 2))
		case "status":
			ret = append(ret, request(cmdDriveWheel, 3))
		}
	}
	if v, ok := values["diagnostics"]; ok {
		switch strings.ToLower(fmt.Sprint(v)) {
		case "enable-drive-wheel":
			ret = append(ret, request(cmdDriveWheelDiag, 1))
		case "disable-drive-wheel":
			ret = append(ret, request(cmdDriveWheelDiag, 0))
		case "enable-door":
			ret = append(ret, request(cmdDoorDiag, 1))
		case "disable-door":
			ret = append(ret, request(cmdDoorDiag, 0))
		}
	}
	return ret
}

func request(cmd byte, arg byte) Command {
	return Command{util.NormalizeUUID(CommandRequestCharUUID), []byte{cmd, arg}}
}

func asInt(v interface{}) int {
	i, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(v)))
	if err != nil {
		return 0
	}
	return i
}

func uuidToFlag(uuid string) flag {
	switch uuid {
	case util.NormalizeUUID(SpeedCharUUID):
		return flagSpinner
	case util.NormalizeUUID(DoorCharUUID):
		return flagDoor
	case util.NormalizeUUID(LoadCellCharUUID):
		return flagLC
	}
	return flagNone
}

func decodeSpeed(data []byte, values map[string]interface{}) {
	if len(data) < 2 {
		return
	}
	values["spinnerSpeed"] = int(binary.BigEndian.Uint16(data[0:2]))
	if len(data) >= 4 {
		values["beltSpeed"] = int(binary.BigEndian.Uint16(data[2:4]))
	}
}

func decodeDoor(data []byte, values map[string]interface{}) {
	if len(data) < 2 {
		return
	}
	values["doorOpening"] = int(binary.BigEndian.Uint16(data[0:2]))
}

// decodeLoadCells handles both the single total (4 bytes) and the per-port layout:
// a count byte followed by one packed word per port, port number in the top byte and a
// signed 24-bit reading below it.
func decodeLoadCells(data []byte, values map[string]interface{}) {
	if len(data) < 4 {
		return
	}
	cells := map[string]int{}
	if len(data) < 5 {
		values["loadCell"] = int(int32(binary.BigEndian.Uint32(data[0:4])))
		values["rawLoadCells"] = cells
		return
	}
	n := int(data[0])
	total := 0
	for i := 0; i < n; i++ {
		idx := i*4 + 1
		if idx+4 > len(data) {
			break
		}
		packed := binary.BigEndian.Uint32(data[idx : idx+4])
		v := unpack24(packed)
		cells[fmt.Sprintf("port%d", packed>>24)] = v
		if v != loadCellNegativeZero {
			total += v
		}
	}
	values["loadCell"] = total
	values["rawLoadCells"] = cells
}

func unpack24(packed uint32) int {
	v := packed & 0xFFFFFF
	if v == 0x800000 {
		return loadCellNegativeZero
	}
	if v&0x800000 != 0 {
		return int(v) - 0x1000000
	}
	return int(v)
}

func decodeCommandResponse(data []byte) (*Reading, bool) {
	if len(data) < 1 {
		return nil, false
	}
	values := map[string]interface{}{}
	switch {
	case data[0] == cmdCalibrate && len(data) == 2:
		values["context"] = "door-calibration-status"
		values["status"] = statusName(calibrationStatuses, data[1])
	case data[0] == cmdDriveWheel && len(data) == 2:
		values["context"] = "drive-wheel-status"
		values["status"] = statusName(driveWheelStatuses, data[1])
	case data[0] == cmdDoorDiag && len(data) == 7:
		values["context"] = "door-diagnostics"
		values["current"] = int(binary.BigEndian.Uint16(data[1:3]))
		values["status"] = diagnosticStatus(binary.BigEndian.Uint32(data[3:7]))
	case data[0] == cmdDriveWheelDiag && len(data) == 7:
		values["context"] = "drive-wheel-diagnostics"
		values["battery"] = int(binary.BigEndian.Uint16(data[1:3]))
		values["status"] = diagnosticStatus(binary.BigEndian.Uint32(data[3:7]))
	default:
		return nil, false
	}
	return &Reading{Type: CommandResponseDataType, Values: values}, true
}

func statusName(names []string, code byte) string {
	if int(code) >= len(names) {
		return names[0]
	}
	return names[code]
}

func diagnosticStatus(bits uint32) map[string]string {
	ret := make(map[string]string, len(diagnosticBits))
	for i, name := range diagnosticBits {
		ret[name] = strconv.FormatBool(bits&(1<<uint(i)) != 0)
	}
	return ret
}
