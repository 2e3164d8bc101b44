package sensors

import (
	"sync"
	"testing"

	. "github.com/Krajiyah/ble-sensors/internal"
	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/peripherals"
	"gotest.tools/assert"
)

const (
	heartRateAddr = "11:22:33:44:55:66"
	spreaderAddr  = "AA:BB:CC:DD:EE:01"
	unknownAddr   = "AA:BB:CC:DD:EE:02"
)

var (
	heartRateAdv = models.Advertisement{Name: "Polar H7", Address: heartRateAddr, RSSI: -50, Services: []string{"180d"}}
	spreaderAdv  = models.Advertisement{Address: spreaderAddr, RSSI: -70, Services: []string{peripherals.MultispreadServiceUUID}}
	unknownAdv   = models.Advertisement{Name: "Phone", Address: unknownAddr, RSSI: -90}
)

func TestScanLifecycle(t *testing.T) {
	p := NewDummyProvider(models.Ready)
	s := newSensors(t, p)
	status, scanning := newRecorder(), newRecorder()
	s.RegisterListeners(models.Listeners{StatusCallback: status.handle, ScanningCallback: scanning.handle})
	p.Advertise(unknownAdv)
	p.Advertise(heartRateAdv)
	assert.NilError(t, s.StartScanning())

	st := status.next(t).(*models.StatusEvent)
	assert.Equal(t, st.Status, "ready")
	assert.Equal(t, st.Label, "Bluetooth is powered on and ready")

	started := scanning.next(t).(*models.ScanningEvent)
	assert.Equal(t, started.Action, models.DiscoveryStarted)
	assert.Assert(t, started.Session != "")

	detected := scanning.next(t).(*models.ScanningEvent)
	assert.Equal(t, detected.Action, models.DeviceDetected)
	assert.Equal(t, detected.Session, started.Session)
	assert.Equal(t, detected.Address, heartRateAddr)
	assert.Equal(t, detected.Name, "Polar H7")
	assert.Equal(t, detected.Type, peripherals.HeartRateType)
	assert.Equal(t, detected.RSSI, -50)

	assert.NilError(t, s.StopScanning())
	assert.Assert(t, !s.IsScanning())
	stopped := scanning.next(t).(*models.ScanningEvent)
	assert.Equal(t, stopped.Action, models.DiscoveryStopped)
	assert.Equal(t, stopped.Session, started.Session)
	assert.NilError(t, s.StopScanning())

	assert.DeepEqual(t, s.Discovered(), []models.Device{
		{Name: "Polar H7", Address: heartRateAddr, Type: peripherals.HeartRateType, RSSI: -50},
	})
}

func TestStartScanningTwice(t *testing.T) {
	p := NewDummyProvider(models.Ready)
	s := newSensors(t, p)
	scanning := newRecorder()
	s.RegisterListeners(models.Listeners{ScanningCallback: scanning.handle})
	assert.NilError(t, s.StartScanning())
	assert.NilError(t, s.StartScanning())
	p.Advertise(heartRateAdv)
	assert.Equal(t, scanning.next(t).(*models.ScanningEvent).Action, models.DiscoveryStarted)
	assert.Equal(t, scanning.next(t).(*models.ScanningEvent).Action, models.DeviceDetected)
	assert.NilError(t, s.StopScanning())
	assert.Equal(t, p.Scans(), 1)
}

func TestScanReportUnknown(t *testing.T) {
	p := NewDummyProvider(models.Ready)
	s := newSensors(t, p, WithReportUnknown(true))
	scanning := newRecorder()
	s.RegisterListeners(models.Listeners{ScanningCallback: scanning.handle})
	p.Advertise(unknownAdv)
	p.Advertise(spreaderAdv)
	assert.NilError(t, s.StartScanning())
	scanning.next(t)
	unknown := scanning.next(t).(*models.ScanningEvent)
	assert.Equal(t, unknown.Address, unknownAddr)
	assert.Equal(t, unknown.Type, "")
	spreader := scanning.next(t).(*models.ScanningEvent)
	assert.Equal(t, spreader.Type, peripherals.MultispreadType)

	devices := s.Discovered()
	assert.Equal(t, len(devices), 2)
	assert.Equal(t, devices[0].Address, spreaderAddr)
	assert.Equal(t, devices[1].Address, unknownAddr)
}

func TestScanKeepsKnownName(t *testing.T) {
	p := NewDummyProvider(models.Ready)
	s := newSensors(t, p)
	scanning := newRecorder()
	s.RegisterListeners(models.Listeners{ScanningCallback: scanning.handle})
	p.Advertise(heartRateAdv)
	p.Advertise(models.Advertisement{Address: heartRateAddr, RSSI: -40, Services: []string{"180d"}})
	assert.NilError(t, s.StartScanning())
	scanning.next(t)
	scanning.next(t)
	second := scanning.next(t).(*models.ScanningEvent)
	assert.Equal(t, second.Name, "Polar H7")
	assert.Equal(t, second.RSSI, -40)
}

func TestStartScanningConcurrently(t *testing.T) {
	p := NewDummyProvider(models.Ready)
	s := newSensors(t, p)
	status, data := newRecorder(), newRecorder()
	s.RegisterListeners(models.Listeners{StatusCallback: status.handle, DataCallback: data.handle})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Check(t, s.StartScanning())
		}()
	}
	wg.Wait()
	// events are dispatched in order, so every status event is in once this one arrives
	s.Emit(&models.DataEvent{Type: "marker"})
	data.next(t)
	assert.Equal(t, status.count(), 1)
	assert.Assert(t, s.IsScanning())
	assert.NilError(t, s.StopScanning())
	assert.Equal(t, p.Scans(), 1)
}
