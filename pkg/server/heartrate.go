package server

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Krajiyah/ble-sensors/pkg/peripherals"
	"github.com/go-ble/ble"
)

const (
	minBPM = 55
	maxBPM = 180
)

type heartRateState struct {
	mutex    sync.Mutex
	rnd      *rand.Rand
	bpm      int
	location byte
}

func newHeartRateState(seed int64) *heartRateState {
	return &heartRateState{rnd: rand.New(rand.NewSource(seed)), bpm: 70, location: 1}
}

// measurement drifts the rate and encodes it, switching to the uint16 form above 255
func (s *heartRateState) measurement() []byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.bpm += s.rnd.Intn(5) - 2
	if s.bpm < minBPM {
		s.bpm = minBPM
	}
	if s.bpm > maxBPM {
		s.bpm = maxBPM
	}
	return encodeHeartRate(s.bpm)
}

func encodeHeartRate(bpm int) []byte {
	if bpm > 0xff {
		return []byte{0x01, byte(bpm), byte(bpm >> 8)}
	}
	return []byte{0x00, byte(bpm)}
}

func newHeartRateService(server *BLEServer, state *heartRateState, interval time.Duration) *ble.Service {
	service := ble.NewService(ble.MustParse(peripherals.HeartRateServiceUUID))
	service.AddCharacteristic(constructNotifyChar(server, &BLENotifyCharacteristic{
		peripherals.HeartRateMeasurementUUID, every(interval, state.measurement),
	}))
	service.AddCharacteristic(constructReadChar(server, &BLEReadCharacteristic{
		peripherals.BodySensorLocationUUID, func(string) ([]byte, error) {
			state.mutex.Lock()
			defer state.mutex.Unlock()
			return []byte{state.location}, nil
		},
	}))
	return service
}
