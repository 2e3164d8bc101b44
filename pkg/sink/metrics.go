package sink

import (
	"github.com/Krajiyah/ble-sensors/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts delivered events
type Metrics struct {
	events   *prometheus.CounterVec
	detected *prometheus.CounterVec
	data     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blesensors",
				Subsystem: "events",
				Name:      "total",
				Help:      "Total number of events delivered to listeners",
			},
			[]string{"kind"},
		),
		detected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blesensors",
				Subsystem: "scan",
				Name:      "detected_total",
				Help:      "Total number of device detections",
			},
			[]string{"type"},
		),
		data: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "blesensors",
				Subsystem: "data",
				Name:      "readings_total",
				Help:      "Total number of data events",
			},
			[]string{"service", "type"},
		),
	}
	reg.MustRegister(m.events, m.detected, m.data)
	return m
}

func (m *Metrics) observe(e models.Event) {
	m.events.WithLabelValues(e.Kind().String()).Inc()
	switch ev := e.(type) {
	case *models.ScanningEvent:
		if ev.Action == models.DeviceDetected {
			typ := ev.Type
			if typ == "" {
				typ = "unknown"
			}
			m.detected.WithLabelValues(typ).Inc()
		}
	case *models.DataEvent:
		m.data.WithLabelValues(ev.Service, ev.Type).Inc()
	}
}

// Instrument wraps every set callback of l so that events are counted before delivery
func (m *Metrics) Instrument(l models.Listeners) models.Listeners {
	wrap := func(h models.Handler) models.Handler {
		if h == nil {
			return nil
		}
		return func(e models.Event) {
			m.observe(e)
			h(e)
		}
	}
	return models.Listeners{
		StatusCallback:   wrap(l.StatusCallback),
		ScanningCallback: wrap(l.ScanningCallback),
		DataCallback:     wrap(l.DataCallback),
	}
}
