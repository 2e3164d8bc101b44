package server

import (
	"context"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/Krajiyah/ble-sensors/pkg/peripherals"
	"github.com/go-ble/ble"
)

const (
	doorStep      = 50
	responseQueue = 16
	noReading     = 0x800000
)

// multispreadState models the spreader controller: a door driven toward its target, a drive
// wheel and two load cell ports
type multispreadState struct {
	mutex      sync.Mutex
	rnd        *rand.Rand
	spinner    uint16
	belt       uint16
	door       uint16
	doorTarget uint16
	engaged    bool
	doorDiag   bool
	wheelDiag  bool
	battery    uint16
	loadCells  [2]int32
	responses  chan []byte
}

func newMultispreadState(seed int64) *multispreadState {
	return &multispreadState{
		rnd:       rand.New(rand.NewSource(seed)),
		spinner:   600,
		belt:      120,
		battery:   12,
		loadCells: [2]int32{1500, -20},
		responses: make(chan []byte, responseQueue),
	}
}

func (s *multispreadState) speed() []byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.spinner = uint16(int(s.spinner) + s.rnd.Intn(21) - 10)
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b[0:2], s.spinner)
	binary.BigEndian.PutUint16(b[2:4], s.belt)
	return b
}

func (s *multispreadState) doorPosition() []byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	switch {
	case s.door+doorStep < s.doorTarget:
		s.door += doorStep
	case s.door > s.doorTarget+doorStep:
		s.door -= doorStep
	default:
		s.door = s.doorTarget
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, s.door)
	return b
}

// loadCell encodes every port as one word: port number in the top byte, signed 24-bit reading below
func (s *multispreadState) loadCell() []byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	b := []byte{byte(len(s.loadCells) + 1)}
	for i := range s.loadCells {
		s.loadCells[i] += int32(s.rnd.Intn(7) - 3)
		b = appendCell(b, i+1, uint32(s.loadCells[i])&0xffffff)
	}
	return appendCell(b, len(s.loadCells)+1, noReading)
}

func appendCell(b []byte, port int, reading uint32) []byte {
	word := make([]byte, 4)
	binary.BigEndian.PutUint32(word, uint32(port)<<24|reading&0xffffff)
	return append(b, word...)
}

func (s *multispreadState) setDoorTarget(_ string, data []byte) {
	if len(data) < 2 {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.doorTarget = binary.BigEndian.Uint16(data)
}

// command answers a command request the way the controller does
func (s *multispreadState) command(_ string, data []byte) {
	if len(data) < 2 {
		return
	}
	s.mutex.Lock()
	var rsp []byte
	switch data[0] {
	case 1:
		if data[1] == 1 {
			s.door, s.doorTarget = 0, 0
			rsp = []byte{1, 1}
		} else {
			rsp = []byte{1, 3}
		}
	case 2:
		switch data[1] {
		case 1:
			s.engaged = true
		case 2:
			s.engaged = false
		}
		if s.engaged {
			rsp = []byte{2, 1}
		} else {
			rsp = []byte{2, 2}
		}
	case 3:
		s.doorDiag = data[1] == 1
		if s.doorDiag {
			rsp = diagnostics(3, uint16(s.rnd.Intn(400)), s.doorStatus())
		}
	case 4:
		s.wheelDiag = data[1] == 1
		if s.wheelDiag {
			rsp = diagnostics(4, s.battery, s.wheelStatus())
		}
	}
	s.mutex.Unlock()
	if rsp == nil {
		return
	}
	select {
	case s.responses <- rsp:
	default:
	}
}

func (s *multispreadState) doorStatus() uint32 {
	var bits uint32
	if s.door != s.doorTarget {
		bits |= 1 << 1
		if s.door < s.doorTarget {
			bits |= 1 << 3
		} else {
			bits |= 1 << 4
		}
	}
	if s.door == 0 {
		bits |= 1 << 6
	}
	return bits
}

func (s *multispreadState) wheelStatus() uint32 {
	var bits uint32
	if s.battery < 11 {
		bits |= 1
	}
	if s.engaged {
		bits |= 1 << 5
	} else {
		bits |= 1 << 6
	}
	return bits
}

func diagnostics(cmd byte, value uint16, status uint32) []byte {
	b := make([]byte, 7)
	b[0] = cmd
	binary.BigEndian.PutUint16(b[1:3], value)
	binary.BigEndian.PutUint32(b[3:7], status)
	return b
}

func (s *multispreadState) nextResponse(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case rsp := <-s.responses:
		return rsp, nil
	}
}

func newMultispreadService(server *BLEServer, state *multispreadState, interval time.Duration) *ble.Service {
	service := ble.NewService(ble.MustParse(peripherals.MultispreadServiceUUID))
	service.AddCharacteristic(constructNotifyChar(server, &BLENotifyCharacteristic{peripherals.SpeedCharUUID, every(interval, state.speed)}))
	service.AddCharacteristic(constructNotifyChar(server, &BLENotifyCharacteristic{peripherals.DoorCharUUID, every(interval, state.doorPosition)}))
	service.AddCharacteristic(constructNotifyChar(server, &BLENotifyCharacteristic{peripherals.LoadCellCharUUID, every(interval, state.loadCell)}))
	service.AddCharacteristic(constructNotifyChar(server, &BLENotifyCharacteristic{peripherals.CommandResponseCharUUID, state.nextResponse}))
	service.AddCharacteristic(constructWriteChar(server, &BLEWriteCharacteristic{peripherals.DoorTargetCharUUID, state.setDoorTarget}))
	service.AddCharacteristic(constructWriteChar(server, &BLEWriteCharacteristic{peripherals.CommandRequestCharUUID, state.command}))
	return service
}
