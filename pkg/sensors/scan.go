package sensors

import (
	"context"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/peripherals"
	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/bradfitz/slice"
	"github.com/google/uuid"
)

func (s *BLESensors) adapterState() models.AdapterState {
	if s.provider == nil {
		return models.Unsupported
	}
	ctx, cancel := context.WithTimeout(context.Background(), stateTimeout)
	defer cancel()
	state, err := s.provider.State(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Could not query adapter state")
		return models.Unknown
	}
	return state
}

// IsAvailable reports whether the host has a usable BLE adapter
func (s *BLESensors) IsAvailable() bool {
	return s.adapterState() != models.Unsupported
}

// IsEnabled reports whether the adapter is powered on
func (s *BLESensors) IsEnabled() bool {
	return s.adapterState() == models.Ready
}

func (s *BLESensors) IsScanning() bool {
	s.scanMutex.Lock()
	defer s.scanMutex.Unlock()
	return s.scanCancel != nil
}

// StartScanning reports the adapter state and begins discovery. Calling it while a scan is
// running does nothing.
func (s *BLESensors) StartScanning() error {
	if s.provider == nil {
		return models.ErrProviderUnavailable
	}
	s.scanMutex.Lock()
	if s.scanCancel != nil || s.starting {
		s.scanMutex.Unlock()
		return nil
	}
	s.starting = true
	s.scanMutex.Unlock()
	defer func() {
		s.scanMutex.Lock()
		s.starting = false
		s.scanMutex.Unlock()
	}()

	state := s.adapterState()
	s.Emit(&models.StatusEvent{Timestamp: util.UnixTS(), Status: state.String(), Label: state.Label()})
	if state == models.Unsupported {
		return models.ErrProviderUnavailable
	}
	ctx, cancel := context.WithCancel(context.Background())
	session := uuid.New().String()
	done := make(chan struct{})
	s.scanMutex.Lock()
	s.scanCancel, s.scanDone, s.session = cancel, done, session
	s.scanMutex.Unlock()
	s.logger.Info().Str("session", session).Msg("Discovery started")
	s.Emit(&models.ScanningEvent{Timestamp: util.UnixTS(), Action: models.DiscoveryStarted, Session: session})
	go func() {
		defer close(done)
		err := s.provider.Scan(ctx, func(a models.Advertisement) { s.onAdvertisement(session, a) })
		if err != nil {
			s.logger.Error().Err(err).Str("session", session).Msg("Scan issue")
		}
		s.finishScan(session)
	}()
	return nil
}

// finishScan handles a scan that ended without StopScanning
func (s *BLESensors) finishScan(session string) {
	s.scanMutex.Lock()
	if s.session != session {
		s.scanMutex.Unlock()
		return
	}
	s.scanCancel()
	s.scanCancel, s.scanDone, s.session = nil, nil, ""
	s.scanMutex.Unlock()
	s.discoveryStopped(session)
}

// StopScanning cancels discovery and waits for the provider to return
func (s *BLESensors) StopScanning() error {
	s.scanMutex.Lock()
	cancel, done, session := s.scanCancel, s.scanDone, s.session
	s.scanCancel, s.scanDone, s.session = nil, nil, ""
	s.scanMutex.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	err := util.Timeout(func() error {
		<-done
		return nil
	}, stopTimeout)
	s.discoveryStopped(session)
	return err
}

func (s *BLESensors) discoveryStopped(session string) {
	s.logger.Info().Str("session", session).Msg("Discovery stopped")
	s.Emit(&models.ScanningEvent{Timestamp: util.UnixTS(), Action: models.DiscoveryStopped, Session: session})
}

func (s *BLESensors) onAdvertisement(session string, a models.Advertisement) {
	typ := peripherals.InferType(a.Name, a.Services)
	if typ == "" && !s.opts.reportUnknown {
		return
	}
	name := a.Name
	if prev, ok := s.devices.Get(a.Address); ok && name == "" {
		name = prev.Name
	}
	s.devices.Set(models.Device{Name: name, Address: a.Address, Type: typ, RSSI: a.RSSI})
	s.Emit(&models.ScanningEvent{
		Timestamp: util.UnixTS(),
		Action:    models.DeviceDetected,
		Session:   session,
		Name:      name,
		Address:   a.Address,
		RSSI:      a.RSSI,
		Type:      typ,
	})
}

// Discovered returns every detected device ordered by address
func (s *BLESensors) Discovered() []models.Device {
	ret := s.devices.GetAll()
	slice.Sort(ret, func(i, j int) bool { return ret[i].Address < ret[j].Address })
	return ret
}
