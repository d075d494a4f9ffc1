package placement

import (
	"sync"

	"github.com/stratohq/strato/pkg/types"
)

// Engine is the thin coordination layer that records placement outcomes and
// exposes aggregate placement statistics.
type Engine struct {
	mu         sync.RWMutex
	total      int
	failed     int
	scoreSum   float64
	perNode    map[string]int
	lastResult *types.SchedulingResult
}

// NewEngine creates an empty placement engine
func NewEngine() *Engine {
	return &Engine{
		perNode: make(map[string]int),
	}
}

// RecordSuccess records a committed placement
func (e *Engine) RecordSuccess(result types.SchedulingResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.total++
	e.scoreSum += result.Score
	e.perNode[result.NodeID]++
	e.lastResult = &result
}

// RecordFailure records a placement attempt that did not commit
func (e *Engine) RecordFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed++
}

// ForgetNode drops the per-node counter for a removed node
func (e *Engine) ForgetNode(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.perNode, nodeID)
}

// LastResult returns the most recent committed placement, or nil
func (e *Engine) LastResult() *types.SchedulingResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.lastResult == nil {
		return nil
	}
	cp := *e.lastResult
	return &cp
}

// Stats returns aggregate placement statistics
func (e *Engine) Stats() types.PlacementStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := types.PlacementStats{
		TotalPlacements:  e.total,
		FailedPlacements: e.failed,
		PerNode:          make(map[string]int, len(e.perNode)),
	}
	for nodeID, count := range e.perNode {
		stats.PerNode[nodeID] = count
	}
	if e.total > 0 {
		stats.MeanScore = e.scoreSum / float64(e.total)
	}
	return stats
}
