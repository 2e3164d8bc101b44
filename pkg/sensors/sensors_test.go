package sensors

import (
	"sync"
	"testing"
	"time"

	. "github.com/Krajiyah/ble-sensors/internal"
	"github.com/Krajiyah/ble-sensors/pkg/models"
	"gotest.tools/assert"
)

const waitTimeout = 2 * time.Second

type recorder struct {
	mutex  sync.Mutex
	events []models.Event
	ch     chan models.Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan models.Event, 64)}
}

func (r *recorder) handle(e models.Event) {
	r.mutex.Lock()
	r.events = append(r.events, e)
	r.mutex.Unlock()
	r.ch <- e
}

func (r *recorder) next(t *testing.T) models.Event {
	t.Helper()
	select {
	case e := <-r.ch:
		return e
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func (r *recorder) count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.events)
}

func newSensors(t *testing.T, provider models.Provider, opts ...Option) *BLESensors {
	s := New(provider, opts...)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHandlerReceivesEmittedEvent(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Ready))
	r := newRecorder()
	s.RegisterListeners(models.Listeners{StatusCallback: r.handle})
	e := &models.StatusEvent{Status: "ready"}
	assert.Assert(t, s.Emit(e))
	assert.Equal(t, r.next(t), models.Event(e))
}

func TestReregisterReplacesHandler(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Ready))
	first, second := newRecorder(), newRecorder()
	s.RegisterListeners(models.Listeners{DataCallback: first.handle})
	s.Emit(&models.DataEvent{Type: "a"})
	first.next(t)

	s.RegisterListeners(models.Listeners{DataCallback: second.handle})
	e := &models.DataEvent{Type: "b"}
	s.Emit(e)
	assert.Equal(t, second.next(t), models.Event(e))
	s.Close()
	assert.Equal(t, first.count(), 1)
	assert.Equal(t, second.count(), 1)
}

func TestRegisterKeepsOtherKinds(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Ready))
	status, data := newRecorder(), newRecorder()
	s.RegisterListeners(models.Listeners{StatusCallback: status.handle})
	s.RegisterListeners(models.Listeners{DataCallback: data.handle})
	s.Emit(&models.StatusEvent{})
	s.Emit(&models.DataEvent{})
	status.next(t)
	data.next(t)
}

func TestStartScanningWithoutListeners(t *testing.T) {
	p := NewDummyProvider(models.Ready)
	s := New(p)
	assert.NilError(t, s.StartScanning())
	assert.Assert(t, s.IsScanning())
	assert.NilError(t, s.Close())
	assert.Assert(t, !s.IsScanning())
	assert.Equal(t, p.Scans(), 1)
}

func TestOnlyStatusListener(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Ready))
	r := newRecorder()
	s.RegisterListeners(models.Listeners{StatusCallback: r.handle})
	s.Emit(&models.ScanningEvent{Action: models.DiscoveryStarted})
	sentinel := &models.StatusEvent{Status: "off"}
	s.Emit(sentinel)
	assert.Equal(t, r.next(t), models.Event(sentinel))
	s.Close()
	assert.Equal(t, r.count(), 1)
}

func TestDispatchOrder(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Ready))
	r := newRecorder()
	counts := map[models.EventKind]int{}
	var mutex sync.Mutex
	count := func(e models.Event) {
		mutex.Lock()
		counts[e.Kind()]++
		mutex.Unlock()
		r.handle(e)
	}
	s.RegisterListeners(models.Listeners{StatusCallback: count, ScanningCallback: count, DataCallback: count})
	s.Emit(&models.StatusEvent{})
	s.Emit(&models.ScanningEvent{})
	s.Emit(&models.DataEvent{})
	kinds := []models.EventKind{}
	for i := 0; i < 3; i++ {
		kinds = append(kinds, r.next(t).Kind())
	}
	assert.DeepEqual(t, kinds, []models.EventKind{models.Status, models.Scanning, models.Data})
	s.Close()
	assert.DeepEqual(t, counts, map[models.EventKind]int{models.Status: 1, models.Scanning: 1, models.Data: 1})
}

func TestRegisterListenersFromMap(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Ready))
	r := newRecorder()
	s.RegisterListenersFromMap(map[string]interface{}{
		"scanningCallback": r.handle,
		"dataCallback":     "not a callback",
		"errorCallback":    r.handle,
		"bogus":            42,
	})
	s.Emit(&models.DataEvent{})
	s.Emit(&models.StatusEvent{})
	e := &models.ScanningEvent{}
	s.Emit(e)
	assert.Equal(t, r.next(t), models.Event(e))
	s.Close()
	assert.Equal(t, r.count(), 1)
}

func TestRemoveListeners(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Ready))
	status, data := newRecorder(), newRecorder()
	s.RegisterListeners(models.Listeners{StatusCallback: status.handle, DataCallback: data.handle})
	s.RemoveListeners(models.Data)
	s.Emit(&models.DataEvent{})
	s.Emit(&models.StatusEvent{})
	status.next(t)
	s.RemoveAllListeners()
	s.Emit(&models.StatusEvent{})
	s.Close()
	assert.Equal(t, status.count(), 1)
	assert.Equal(t, data.count(), 0)
}

func TestListenerPanic(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Ready))
	r := newRecorder()
	s.RegisterListeners(models.Listeners{
		StatusCallback: func(models.Event) { panic("boom") },
		DataCallback:   r.handle,
	})
	s.Emit(&models.StatusEvent{})
	e := &models.DataEvent{}
	s.Emit(e)
	assert.Equal(t, r.next(t), models.Event(e))
}

func TestEmitAfterClose(t *testing.T) {
	s := New(NewDummyProvider(models.Ready))
	assert.NilError(t, s.Close())
	assert.NilError(t, s.Close())
	assert.Assert(t, !s.Emit(&models.StatusEvent{}))
}

func TestStartScanningNoProvider(t *testing.T) {
	s := newSensors(t, nil)
	assert.Equal(t, s.StartScanning(), models.ErrProviderUnavailable)
	assert.Assert(t, !s.IsAvailable())
	assert.Assert(t, !s.IsScanning())
}

func TestStartScanningUnsupported(t *testing.T) {
	s := newSensors(t, NewDummyProvider(models.Unsupported))
	r := newRecorder()
	s.RegisterListeners(models.Listeners{StatusCallback: r.handle})
	assert.Equal(t, s.StartScanning(), models.ErrProviderUnavailable)
	e := r.next(t).(*models.StatusEvent)
	assert.Equal(t, e.Status, "unsupported")
	assert.Equal(t, e.Label, "Bluetooth in unsupported state")
	assert.Assert(t, !s.IsScanning())
}

func TestAdapterState(t *testing.T) {
	p := NewDummyProvider(models.Off)
	s := newSensors(t, p)
	assert.Assert(t, s.IsAvailable())
	assert.Assert(t, !s.IsEnabled())
	p.SetState(models.Ready)
	assert.Assert(t, s.IsEnabled())
}

func TestCloseFromListener(t *testing.T) {
	s := New(NewDummyProvider(models.Ready))
	closed := make(chan struct{})
	s.RegisterListeners(models.Listeners{StatusCallback: func(models.Event) {
		assert.NilError(t, s.Close())
		close(closed)
	}})
	assert.Assert(t, s.Emit(&models.StatusEvent{Status: "ready"}))
	select {
	case <-closed:
	case <-time.After(waitTimeout):
		t.Fatal("Close called from a listener did not return")
	}
	select {
	case <-s.done:
	case <-time.After(waitTimeout):
		t.Fatal("dispatch loop did not stop")
	}
	assert.Assert(t, !s.Emit(&models.StatusEvent{Status: "ready"}))
	assert.NilError(t, s.Close())
}
