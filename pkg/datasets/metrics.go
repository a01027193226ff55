package datasets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for dataset operations.
type Metrics struct {
	lookups          *prometheus.CounterVec
	inserts          *prometheus.CounterVec
	removes          *prometheus.CounterVec
	memcapRejections *prometheus.CounterVec
	keys             *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance registered with the given
// registerer (typically prometheus.DefaultRegisterer).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veles_dataset_lookups_total",
				Help: "Total number of dataset lookups performed",
			},
			[]string{"dataset", "result"},
		),

		inserts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veles_dataset_inserts_total",
				Help: "Total number of dataset insert attempts",
			},
			[]string{"dataset", "result"},
		),

		removes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veles_dataset_removes_total",
				Help: "Total number of dataset key removals",
			},
			[]string{"dataset"},
		),

		memcapRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "veles_dataset_memcap_rejections_total",
				Help: "Total number of inserts rejected by the dataset memcap",
			},
			[]string{"dataset"},
		),

		keys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "veles_dataset_keys",
				Help: "Current number of keys per dataset",
			},
			[]string{"dataset"},
		),
	}
}

// The observe helpers are nil-safe so datasets work without metrics wired.

func (m *Metrics) observeLookup(dataset, result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(dataset, result).Inc()
}

func (m *Metrics) observeInsert(dataset, result string) {
	if m == nil {
		return
	}
	m.inserts.WithLabelValues(dataset, result).Inc()
}

func (m *Metrics) observeRemove(dataset string) {
	if m == nil {
		return
	}
	m.removes.WithLabelValues(dataset).Inc()
}

func (m *Metrics) observeMemcapRejection(dataset string) {
	if m == nil {
		return
	}
	m.memcapRejections.WithLabelValues(dataset).Inc()
}

func (m *Metrics) setSize(dataset string, n int) {
	if m == nil {
		return
	}
	m.keys.WithLabelValues(dataset).Set(float64(n))
}
