package sensors

import (
	"context"
	"strings"

	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/Krajiyah/ble-sensors/pkg/peripherals"
	"github.com/Krajiyah/ble-sensors/pkg/util"
	"github.com/pkg/errors"
)

type connection struct {
	addr    string
	name    string
	profile peripherals.Profile
	link    models.Link
}

func key(addr string) string { return strings.ToUpper(addr) }

func (s *BLESensors) getConnection(addr string) (*connection, error) {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()
	if c, ok := s.connections[key(addr)]; ok {
		return c, nil
	}
	return nil, errors.Wrap(models.ErrNotConnected, addr)
}

func (s *BLESensors) IsConnected(addr string) bool {
	_, err := s.getConnection(addr)
	return err == nil
}

func (s *BLESensors) deviceStatus(addr string, status string) {
	s.Emit(&models.StatusEvent{Timestamp: util.UnixTS(), Status: status, Address: addr})
}

// Connect opens a link to addr. The device type comes from typeHint when set, else from
// an earlier scan. Once connected the profile's characteristics are subscribed and the
// device information is requested.
func (s *BLESensors) Connect(addr string, typeHint string) error {
	if s.provider == nil {
		return models.ErrProviderUnavailable
	}
	typ := typeHint
	name := ""
	if d, ok := s.devices.Get(addr); ok {
		name = d.Name
		if typ == "" {
			typ = d.Type
		}
	}
	if typ == "" {
		return errors.Wrap(models.ErrUnknownDevice, addr)
	}
	profile, ok := peripherals.NewProfile(typ)
	if !ok {
		return errors.Wrap(models.ErrUnsupportedDevice, typ)
	}
	if name == "" {
		name = profile.DefaultName()
	}
	if s.isStopping() {
		return models.ErrClosed
	}
	if s.IsConnected(addr) {
		return nil
	}
	if !s.pending.Add(key(addr)) {
		return errors.Errorf("connection to %s already in progress", addr)
	}
	defer s.pending.Remove(key(addr))

	logger := s.logger.With().Str("address", addr).Str("type", typ).Logger()
	s.deviceStatus(addr, models.DeviceConnecting)
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.connectTimeout)
	defer cancel()
	link, err := s.provider.Connect(ctx, addr)
	if err != nil {
		s.deviceStatus(addr, models.DeviceDisconnected)
		return errors.Wrap(err, "Connect issue")
	}
	c := &connection{addr: addr, name: name, profile: profile, link: link}
	s.connMutex.Lock()
	if s.stopping {
		s.connMutex.Unlock()
		if err := link.Close(); err != nil {
			logger.Warn().Err(err).Msg("Close issue")
		}
		s.deviceStatus(addr, models.DeviceDisconnected)
		return models.ErrClosed
	}
	s.connections[key(addr)] = c
	s.watchers.Add(1)
	s.connMutex.Unlock()
	go s.watch(c)
	logger.Info().Msg("Connected")
	s.deviceStatus(addr, models.DeviceConnected)

	for _, uuid := range profile.Notifications() {
		uuid := uuid
		if err := link.Subscribe(uuid, func(b []byte) { s.onValue(c, uuid, b) }); err != nil {
			logger.Warn().Err(err).Str("uuid", uuid).Msg("Subscribe issue")
		}
	}
	for _, uuid := range profile.InitialReads() {
		b, err := link.Read(uuid)
		if err != nil {
			logger.Warn().Err(err).Str("uuid", uuid).Msg("Read issue")
			continue
		}
		s.onValue(c, uuid, b)
	}
	if err := s.RequestDeviceInfo(addr); err != nil {
		logger.Warn().Err(err).Msg("RequestDeviceInfo issue")
	}
	return nil
}

func (s *BLESensors) watch(c *connection) {
	defer s.watchers.Done()
	<-c.link.Disconnected()
	s.connMutex.Lock()
	if s.connections[key(c.addr)] == c {
		delete(s.connections, key(c.addr))
	}
	s.connMutex.Unlock()
	s.logger.Info().Str("address", c.addr).Msg("Disconnected")
	s.deviceStatus(c.addr, models.DeviceDisconnected)
}

func (s *BLESensors) onValue(c *connection, uuid string, value []byte) {
	r, ok := c.profile.Decode(uuid, value)
	if !ok {
		return
	}
	s.Emit(&models.DataEvent{
		Timestamp: util.UnixTS(),
		Name:      c.name,
		Address:   c.addr,
		Service:   c.profile.ServiceType(),
		Type:      r.Type,
		Values:    r.Values,
	})
}

// Disconnect closes the link to addr. The disconnected status follows once the link is down.
func (s *BLESensors) Disconnect(addr string) error {
	c, err := s.getConnection(addr)
	if err != nil {
		return err
	}
	s.deviceStatus(c.addr, models.DeviceDisconnecting)
	return errors.Wrap(c.link.Close(), "Close issue")
}

func (s *BLESensors) isStopping() bool {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()
	return s.stopping
}

// disconnectAll refuses new links, then drops the current ones
func (s *BLESensors) disconnectAll() {
	s.connMutex.Lock()
	s.stopping = true
	conns := make([]*connection, 0, len(s.connections))
	for _, c := range s.connections {
		conns = append(conns, c)
	}
	s.connMutex.Unlock()
	for _, c := range conns {
		if err := s.Disconnect(c.addr); err != nil {
			s.logger.Warn().Err(err).Str("address", c.addr).Msg("Disconnect issue")
		}
	}
	err := util.Timeout(func() error {
		s.watchers.Wait()
		return nil
	}, stopTimeout)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Links did not drop in time")
	}
}

// Update sends the commands encoded from values to the device at addr
func (s *BLESensors) Update(addr string, values map[string]interface{}) error {
	c, err := s.getConnection(addr)
	if err != nil {
		return err
	}
	for _, cmd := range c.profile.Commands(values) {
		if err := c.link.Write(cmd.UUID, cmd.Data); err != nil {
			return errors.Wrapf(err, "Write issue on %s", cmd.UUID)
		}
	}
	return nil
}

// RequestDeviceInfo reads the device information characteristics the device exposes and
// emits them as one data event
func (s *BLESensors) RequestDeviceInfo(addr string) error {
	c, err := s.getConnection(addr)
	if err != nil {
		return err
	}
	values := map[string]interface{}{}
	for _, uuid := range peripherals.DeviceInfoCharacteristics() {
		b, err := c.link.Read(uuid)
		if errors.Cause(err) == models.ErrNoSuchCharacteristic {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "Read issue on %s", uuid)
		}
		if k, v, ok := peripherals.DecodeDeviceInfo(uuid, b); ok {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return nil
	}
	s.Emit(&models.DataEvent{
		Timestamp: util.UnixTS(),
		Name:      c.name,
		Address:   c.addr,
		Service:   peripherals.DeviceInfoDataType,
		Type:      peripherals.DeviceInfoDataType,
		Values:    values,
	})
	return nil
}
