package metrics

import (
	"time"

	"github.com/stratohq/strato/pkg/types"
)

// StatsSource is anything that can report scheduler statistics
type StatsSource interface {
	Stats() types.SchedulerStats
}

// Collector periodically exports scheduler stats as Prometheus gauges
type Collector struct {
	source   StatsSource
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a collector polling the source every interval
func NewCollector(source StatsSource, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	stats := c.source.Stats()

	NodesTotal.Set(float64(stats.NodeCount))
	WorkloadsTotal.Set(float64(stats.WorkloadCount))
	PendingPlacements.Set(float64(stats.PendingPlacements))

	PlacementsTotal.Set(float64(stats.Placements.TotalPlacements))
	PlacementsFailed.Set(float64(stats.Placements.FailedPlacements))
	PlacementScoreMean.Set(stats.Placements.MeanScore)
	for nodeID, count := range stats.Placements.PerNode {
		PlacementsPerNode.WithLabelValues(nodeID).Set(float64(count))
	}

	ScaleUpsTotal.Set(float64(stats.Autoscaler.ScaleUps))
	ScaleDownsTotal.Set(float64(stats.Autoscaler.ScaleDowns))

	PredictorSamples.Set(float64(stats.Predictor.Samples))
}
