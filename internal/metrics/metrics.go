// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "harvester",
			Subsystem: "connection",
			Name:      "events_total",
			Help:      "Events delivered by the connection reader, by kind.",
		},
		[]string{"kind"},
	)
	statusReports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "harvester",
			Subsystem: "session",
			Name:      "status_reports_total",
			Help:      "Connection status rows persisted, by state and reason.",
		},
		[]string{"state", "reason"},
	)
	reconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "harvester",
			Subsystem: "session",
			Name:      "reconnects_total",
			Help:      "Connection teardown and rebuild cycles.",
		},
	)
	storageErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "harvester",
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Failed storage inserts.",
		},
	)
	sinkErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "harvester",
			Subsystem: "storage",
			Name:      "sink_errors_total",
			Help:      "Failed writes to best-effort sinks, by sink.",
		},
		[]string{"sink"},
	)
	connected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "harvester",
			Subsystem: "session",
			Name:      "connected",
			Help:      "1 while the probe answers, 0 while disconnected.",
		},
	)
	sensor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "harvester",
			Subsystem: "probe",
			Name:      "temperature_celsius",
			Help:      "Last reported temperature per sensor.",
		},
		[]string{"sensor"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(events, statusReports, reconnects, storageErrors, sinkErrors, connected, sensor)
	})
}

func RecordEvent(kind string) {
	RegisterMetrics()
	events.WithLabelValues(kind).Inc()
}

func RecordStatus(state, reason string) {
	RegisterMetrics()
	statusReports.WithLabelValues(state, reason).Inc()
}

func RecordReconnect() {
	RegisterMetrics()
	reconnects.Inc()
}

func RecordStorageError() {
	RegisterMetrics()
	storageErrors.Inc()
}

// RecordSinkError counts a swallowed failure of a secondary sink.
func RecordSinkError(sink string) {
	RegisterMetrics()
	sinkErrors.WithLabelValues(sink).Inc()
}

func SetConnected(ok bool) {
	RegisterMetrics()
	if ok {
		connected.Set(1)
		return
	}
	connected.Set(0)
}

// SetSensor updates the gauge for one sensor; a missing reading removes it.
func SetSensor(name string, v *float64) {
	RegisterMetrics()
	if v == nil {
		sensor.DeleteLabelValues(name)
		return
	}
	sensor.WithLabelValues(name).Set(*v)
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
