package metrics

import (
	"time"

	"github.com/goodnatureofminers/ghost-indexer/internal/ghost/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingesterProcessHeightTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghostindexer",
		Subsystem: "ingester",
		Name:      "process_height_total",
		Help:      "Count of blocks run through the ingestion pipeline.",
	}, []string{"network", "mode", "status"})

	ingesterProcessHeightDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ghostindexer",
		Subsystem: "ingester",
		Name:      "process_height_duration_seconds",
		Help:      "Duration of running one block through the ingestion pipeline.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "mode", "status"})

	ingesterLastHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ghostindexer",
		Subsystem: "ingester",
		Name:      "last_persisted_height",
		Help:      "Height of the last persisted block.",
	}, []string{"network"})

	ingesterMode = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ghostindexer",
		Subsystem: "ingester",
		Name:      "mode",
		Help:      "Current ingestion mode; 1 for the active mode.",
	}, []string{"network", "mode"})

	ingesterDuplicateNotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghostindexer",
		Subsystem: "ingester",
		Name:      "duplicate_notifications_total",
		Help:      "Count of pushed block hashes discarded by the processed-blocks window.",
	}, []string{"network"})

	ingesterProposalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ghostindexer",
		Subsystem: "ingester",
		Name:      "proposals_registered_total",
		Help:      "Count of newly registered governance proposals.",
	}, []string{"network"})
)

var ingesterModes = []string{"catchup", "listen"}

// Ingester tracks metrics for the catchup/listen ingestion service.
type Ingester struct {
	network model.Network
}

// NewIngester constructs an Ingester metrics collector.
func NewIngester(network model.Network) *Ingester {
	if network == "" {
		network = "unknown"
	}
	return &Ingester{network: network}
}

// ObserveProcessHeight records one pipeline run.
func (m Ingester) ObserveProcessHeight(mode string, err error, height uint64, started time.Time) {
	status := statusLabel(err)
	ingesterProcessHeightTotal.WithLabelValues(string(m.network), mode, status).Inc()
	ingesterProcessHeightDuration.WithLabelValues(string(m.network), mode, status).
		Observe(time.Since(started).Seconds())
	if err == nil {
		ingesterLastHeight.WithLabelValues(string(m.network)).Set(float64(height))
	}
}

// SetMode marks mode as the active one.
func (m Ingester) SetMode(mode string) {
	for _, known := range ingesterModes {
		value := 0.0
		if known == mode {
			value = 1
		}
		ingesterMode.WithLabelValues(string(m.network), known).Set(value)
	}
}

// ObserveDuplicate counts a notification discarded as already processed.
func (m Ingester) ObserveDuplicate() {
	ingesterDuplicateNotificationsTotal.WithLabelValues(string(m.network)).Inc()
}

// ObserveProposal counts a newly registered proposal.
func (m Ingester) ObserveProposal() {
	ingesterProposalsTotal.WithLabelValues(string(m.network)).Inc()
}
