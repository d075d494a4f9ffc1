package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster metrics
	NodesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_nodes_total",
			Help: "Total number of nodes in the cluster",
		},
	)

	WorkloadsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_workloads_total",
			Help: "Total number of scheduled workloads",
		},
	)

	PendingPlacements = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_pending_placements",
			Help: "Workloads waiting in the placement queue",
		},
	)

	// Placement metrics
	PlacementsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_placements_total",
			Help: "Total number of committed placements",
		},
	)

	PlacementsFailed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_placements_failed_total",
			Help: "Total number of rejected or failed placement attempts",
		},
	)

	PlacementScoreMean = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_placement_score_mean",
			Help: "Running mean of optimizer placement scores",
		},
	)

	PlacementsPerNode = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strato_placements_per_node",
			Help: "Committed placements by node",
		},
		[]string{"node"},
	)

	// Autoscaler metrics
	ScaleUpsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_scale_ups_total",
			Help: "Executed scale-up decisions",
		},
	)

	ScaleDownsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_scale_downs_total",
			Help: "Executed scale-down decisions",
		},
	)

	// Predictor metrics
	PredictorSamples = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strato_predictor_samples",
			Help: "Placement history samples held by the predictor",
		},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(WorkloadsTotal)
	prometheus.MustRegister(PendingPlacements)
	prometheus.MustRegister(PlacementsTotal)
	prometheus.MustRegister(PlacementsFailed)
	prometheus.MustRegister(PlacementScoreMean)
	prometheus.MustRegister(PlacementsPerNode)
	prometheus.MustRegister(ScaleUpsTotal)
	prometheus.MustRegister(ScaleDownsTotal)
	prometheus.MustRegister(PredictorSamples)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
