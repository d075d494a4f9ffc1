package autoscaler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stratohq/strato/pkg/types"
)

// Policy holds the thresholds that drive scaling decisions
type Policy struct {
	// Scale up when cluster CPU or memory utilization exceeds these
	ScaleUpCPUPercent    float64
	ScaleUpMemoryPercent float64

	// A node is idle when below both of these and running no workloads
	ScaleDownCPUPercent    float64
	ScaleDownMemoryPercent float64

	// Cluster size bounds
	MinNodes int
	MaxNodes int // 0 = unbounded

	// ScaleStep is how many nodes a single scale-up decision adds
	ScaleStep int

	// Cooldown suppresses new decisions after an executed action
	Cooldown time.Duration

	// DemandConfidence is the minimum predictor confidence required before
	// forecasts can trigger a scale-up on their own
	DemandConfidence float64
}

// DefaultPolicy returns the stock thresholds: scale up at 80%, consider
// nodes idle below 20%.
func DefaultPolicy() Policy {
	return Policy{
		ScaleUpCPUPercent:      80,
		ScaleUpMemoryPercent:   80,
		ScaleDownCPUPercent:    20,
		ScaleDownMemoryPercent: 20,
		MinNodes:               1,
		ScaleStep:              1,
		Cooldown:               3 * time.Minute,
		DemandConfidence:       0.5,
	}
}

// ClusterView is the input snapshot for one decision round
type ClusterView struct {
	Cluster          types.ResourceUsage
	PerNode          map[string]types.ResourceUsage
	Demand           types.ResourceDemand
	WorkloadsPerNode map[string]int
}

// AutoScaler consumes usage and forecasted demand and proposes scaling
// decisions. It never mutates cluster state itself; the Scheduler is the
// sole executor and reports executed decisions back via MarkExecuted.
type AutoScaler struct {
	policy Policy

	mu         sync.Mutex
	scaleUps   int
	scaleDowns int
	lastAction time.Time
}

// NewAutoScaler creates an autoscaler with the given policy
func NewAutoScaler(policy Policy) *AutoScaler {
	if policy.ScaleStep <= 0 {
		policy.ScaleStep = 1
	}
	return &AutoScaler{policy: policy}
}

// MakeScalingDecisions produces zero or more proposed decisions for the
// given cluster view.
func (a *AutoScaler) MakeScalingDecisions(view ClusterView) []types.ScalingDecision {
	a.mu.Lock()
	last := a.lastAction
	a.mu.Unlock()

	if a.policy.Cooldown > 0 && !last.IsZero() && time.Since(last) < a.policy.Cooldown {
		return nil
	}

	var decisions []types.ScalingDecision
	nodeCount := len(view.PerNode)

	if up, reason := a.wantScaleUp(view, nodeCount); up {
		decisions = append(decisions, types.ScalingDecision{
			Action:    types.ScaleUp,
			NodeCount: a.scaleUpCount(nodeCount),
			Reason:    reason,
			DecidedAt: time.Now(),
		})
		return decisions
	}

	if idle := a.idleNodes(view); len(idle) > 0 {
		decisions = append(decisions, types.ScalingDecision{
			Action:    types.ScaleDown,
			NodeIDs:   idle,
			Reason:    fmt.Sprintf("%d idle node(s) below %.0f%% cpu and %.0f%% memory", len(idle), a.policy.ScaleDownCPUPercent, a.policy.ScaleDownMemoryPercent),
			DecidedAt: time.Now(),
		})
	}
	return decisions
}

// MarkExecuted records that the Scheduler executed a decision, starting the
// cooldown window and bumping counters.
func (a *AutoScaler) MarkExecuted(d types.ScalingDecision) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch d.Action {
	case types.ScaleUp:
		a.scaleUps++
	case types.ScaleDown:
		a.scaleDowns++
	case types.ScaleNone:
		return
	}
	a.lastAction = time.Now()
}

// Stats returns scaling activity counters
func (a *AutoScaler) Stats() types.AutoscalerStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return types.AutoscalerStats{
		ScaleUps:   a.scaleUps,
		ScaleDowns: a.scaleDowns,
		LastAction: a.lastAction,
	}
}

func (a *AutoScaler) wantScaleUp(view ClusterView, nodeCount int) (bool, string) {
	if a.policy.MaxNodes > 0 && nodeCount >= a.policy.MaxNodes {
		return false, ""
	}

	cpu := view.Cluster.CPUPercent()
	mem := view.Cluster.MemoryPercent()
	if cpu > a.policy.ScaleUpCPUPercent {
		return true, fmt.Sprintf("cluster cpu at %.1f%%, threshold %.0f%%", cpu, a.policy.ScaleUpCPUPercent)
	}
	if mem > a.policy.ScaleUpMemoryPercent {
		return true, fmt.Sprintf("cluster memory at %.1f%%, threshold %.0f%%", mem, a.policy.ScaleUpMemoryPercent)
	}

	// Forecast-driven scale-up: predicted demand exceeds what is currently
	// available
	d := view.Demand
	if d.Confidence >= a.policy.DemandConfidence && a.policy.DemandConfidence > 0 {
		if d.CPUCores > view.Cluster.CPUAvailable || d.MemoryMB > view.Cluster.MemoryAvailMB {
			return true, fmt.Sprintf("forecast demand (%.1f cores, %d MB) exceeds available capacity", d.CPUCores, d.MemoryMB)
		}
	}
	return false, ""
}

func (a *AutoScaler) scaleUpCount(nodeCount int) int {
	step := a.policy.ScaleStep
	if a.policy.MaxNodes > 0 && nodeCount+step > a.policy.MaxNodes {
		step = a.policy.MaxNodes - nodeCount
	}
	return step
}

// idleNodes returns nodes eligible for scale-down, sorted for deterministic
// output, respecting MinNodes.
func (a *AutoScaler) idleNodes(view ClusterView) []string {
	var idle []string
	for nodeID, usage := range view.PerNode {
		if view.WorkloadsPerNode[nodeID] > 0 {
			continue
		}
		if usage.CPUPercent() >= a.policy.ScaleDownCPUPercent {
			continue
		}
		if usage.MemoryPercent() >= a.policy.ScaleDownMemoryPercent {
			continue
		}
		idle = append(idle, nodeID)
	}
	sort.Strings(idle)

	keep := len(view.PerNode) - a.policy.MinNodes
	if keep < 0 {
		keep = 0
	}
	if len(idle) > keep {
		idle = idle[:keep]
	}
	return idle
}
