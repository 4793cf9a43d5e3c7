package metrics

import (
	"net/http"
	"strconv"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TelemetryPosts  prometheus.Counter
	ToggleSets      *prometheus.CounterVec
	LastTemperature *prometheus.GaugeVec
	CpuTemp         prometheus.Gauge
	RamPercent      prometheus.Gauge
	FreeStorage     prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TelemetryPosts: factory.NewCounter(prometheus.CounterOpts{
			Name: "home_telemetry_posts_total",
			Help: "Number of telemetry posts stored.",
		}),
		ToggleSets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "home_toggle_sets_total",
			Help: "Number of configuration toggle writes.",
		}, []string{"toggle", "enabled"}),
		LastTemperature: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "home_last_temperature_celsius",
			Help: "Last reported temperature by place.",
		}, []string{"place"}),
		CpuTemp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "home_device_cpu_temp_celsius",
			Help: "Last reported device CPU temperature.",
		}),
		RamPercent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "home_device_ram_percent",
			Help: "Last reported device memory usage.",
		}),
		FreeStorage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "home_device_free_storage",
			Help: "Last reported device free storage.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveToggle(toggle string, enabled bool) {
	if m == nil {
		return
	}

	m.ToggleSets.WithLabelValues(toggle, strconv.FormatBool(enabled)).Inc()
}

func (m *Metrics) ObserveTelemetry(settings database.StateAndSetting, measurements []database.TemperatureMeasurement) {
	if m == nil {
		return
	}

	m.TelemetryPosts.Inc()
	m.CpuTemp.Set(settings.CpuTemp)
	m.RamPercent.Set(settings.RamPerc)
	m.FreeStorage.Set(settings.FreeStorage)

	for _, tm := range measurements {
		m.LastTemperature.WithLabelValues(tm.Place).Set(tm.Temperature)
	}
}
