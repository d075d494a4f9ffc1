package predictor

import (
	"strings"
	"sync"
	"time"

	"github.com/stratohq/strato/pkg/types"
)

const (
	// ClassLabel is the workload label used to group placement history
	ClassLabel = "workload-class"

	// minSamples is the history depth required before the predictor trusts
	// its own forecast
	minSamples = 5

	// maxHistoryPerClass bounds memory; oldest samples roll off
	maxHistoryPerClass = 256
)

// record is one observed placement
type record struct {
	nodeID    string
	resources types.ResourceRequirements
	at        time.Time
}

// DemandContext scopes a forecast request. Zero values widen the scope:
// an empty Class forecasts across all classes, an empty NodeID across all
// nodes.
type DemandContext struct {
	Class   string
	NodeID  string
	Horizon time.Duration
}

// Predictor maintains a history of placements and forecasts near-term
// resource demand. It is advisory only: forecasts inform the autoscaler but
// never block placement.
type Predictor struct {
	mu      sync.RWMutex
	history map[string][]record // keyed by workload class
}

// NewPredictor creates a predictor with empty history
func NewPredictor() *Predictor {
	return &Predictor{
		history: make(map[string][]record),
	}
}

// RecordPlacement appends a placement to the history. Never fails for valid
// inputs.
func (p *Predictor) RecordPlacement(w *types.Workload, nodeID string) {
	class := Classify(w)

	p.mu.Lock()
	defer p.mu.Unlock()

	records := append(p.history[class], record{
		nodeID:    nodeID,
		resources: w.Spec.Resources,
		at:        time.Now(),
	})
	if len(records) > maxHistoryPerClass {
		records = records[len(records)-maxHistoryPerClass:]
	}
	p.history[class] = records
}

// PredictDemand forecasts near-term resource need for the given context.
// With insufficient history it degrades gracefully to a conservative default
// rather than failing.
func (p *Predictor) PredictDemand(ctx DemandContext) types.ResourceDemand {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var matched []record
	for class, records := range p.history {
		if ctx.Class != "" && class != ctx.Class {
			continue
		}
		for _, r := range records {
			if ctx.NodeID != "" && r.nodeID != ctx.NodeID {
				continue
			}
			matched = append(matched, r)
		}
	}

	if len(matched) < minSamples {
		return conservativeDefault()
	}

	// Mean request size across the matched history, scaled by the recent
	// placement rate over the forecast horizon
	var cpu float64
	var mem, stor int64
	for _, r := range matched {
		cpu += r.resources.CPUCores
		mem += r.resources.MemoryMB
		stor += r.resources.StorageGB
	}
	n := float64(len(matched))
	meanCPU := cpu / n
	meanMem := float64(mem) / n
	meanStor := float64(stor) / n

	horizon := ctx.Horizon
	if horizon <= 0 {
		horizon = 5 * time.Minute
	}
	rate := placementRate(matched)
	expected := rate * horizon.Seconds()
	if expected < 1 {
		expected = 1
	}

	confidence := n / (n + float64(minSamples))
	return types.ResourceDemand{
		CPUCores:   meanCPU * expected,
		MemoryMB:   int64(meanMem * expected),
		StorageGB:  int64(meanStor * expected),
		Confidence: confidence,
	}
}

// Stats returns history counters
func (p *Predictor) Stats() types.PredictorStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := types.PredictorStats{Classes: len(p.history)}
	for _, records := range p.history {
		stats.Samples += len(records)
	}
	return stats
}

// Classify derives the history key for a workload: the workload-class label
// when present, otherwise the image name without its tag.
func Classify(w *types.Workload) string {
	if class, ok := w.Spec.Labels[ClassLabel]; ok && class != "" {
		return class
	}
	image := w.Spec.Image
	if idx := strings.LastIndex(image, ":"); idx > 0 {
		image = image[:idx]
	}
	return image
}

// placementRate estimates placements per second over the observed span
func placementRate(records []record) float64 {
	if len(records) < 2 {
		return 0
	}
	first, last := records[0].at, records[0].at
	for _, r := range records[1:] {
		if r.at.Before(first) {
			first = r.at
		}
		if r.at.After(last) {
			last = r.at
		}
	}
	span := last.Sub(first).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(records)-1) / span
}

// conservativeDefault is returned when history is too thin to trust
func conservativeDefault() types.ResourceDemand {
	return types.ResourceDemand{
		CPUCores:   1,
		MemoryMB:   512,
		Confidence: 0,
	}
}
