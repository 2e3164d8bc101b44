package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Krajiyah/ble-sensors/pkg/config"
	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/assert"
)

func TestLogListeners(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = config.FormatJSON
	l := LogListeners(newLogger(&buf, cfg))
	l.StatusCallback(&models.StatusEvent{Status: "ready", Label: "Bluetooth is powered on and ready"})
	l.DataCallback(&models.DataEvent{Address: "A", Service: "heartRate", Type: "sensors", Values: map[string]interface{}{"heartRate": 60}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 2)
	assert.Assert(t, strings.Contains(lines[0], `Status = {status=ready label=\"Bluetooth is powered on and ready\"}`), lines[0])
	assert.Assert(t, strings.Contains(lines[1], "Data = {address=A service=heartRate type=sensors values=[heartRate:60]}"), lines[1])
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = config.FormatJSON
	cfg.LogLevel = "warn"
	logger := newLogger(&buf, cfg)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.Assert(t, !strings.Contains(buf.String(), "hidden"))
	assert.Assert(t, strings.Contains(buf.String(), "shown"))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	calls := 0
	l := m.Instrument(models.Listeners{
		ScanningCallback: func(models.Event) { calls++ },
		DataCallback:     func(models.Event) { calls++ },
	})
	assert.Assert(t, l.StatusCallback == nil)
	l.ScanningCallback(&models.ScanningEvent{Action: models.DiscoveryStarted})
	l.ScanningCallback(&models.ScanningEvent{Action: models.DeviceDetected, Type: "heart-rate"})
	l.ScanningCallback(&models.ScanningEvent{Action: models.DeviceDetected})
	l.DataCallback(&models.DataEvent{Service: "spreader", Type: "sensors"})
	assert.Equal(t, calls, 4)
	assert.Equal(t, testutil.ToFloat64(m.events.WithLabelValues("Scanning")), float64(3))
	assert.Equal(t, testutil.ToFloat64(m.events.WithLabelValues("Data")), float64(1))
	assert.Equal(t, testutil.ToFloat64(m.detected.WithLabelValues("heart-rate")), float64(1))
	assert.Equal(t, testutil.ToFloat64(m.detected.WithLabelValues("unknown")), float64(1))
	assert.Equal(t, testutil.ToFloat64(m.data.WithLabelValues("spreader", "sensors")), float64(1))
}
