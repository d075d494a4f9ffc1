package optimizer

import (
	"sort"
	"strings"

	"github.com/stratohq/strato/pkg/types"
)

// Label prefixes workloads use to express node preferences
const (
	AffinityLabelPrefix     = "affinity/"
	AntiAffinityLabelPrefix = "anti-affinity/"
)

// Weights balances the competing placement objectives. The three objectives
// pull in different directions: bin-packing favors filling loaded nodes,
// headroom favors keeping slack, affinity rewards label matches.
type Weights struct {
	BinPacking float64
	Headroom   float64
	Affinity   float64
}

// DefaultWeights favors density with a mild headroom counterweight
func DefaultWeights() Weights {
	return Weights{
		BinPacking: 0.5,
		Headroom:   0.3,
		Affinity:   0.2,
	}
}

// Optimizer picks the best node for a workload from a candidate set. It is a
// pure function of its inputs: no hidden state, no randomness, identical
// inputs always produce identical output.
type Optimizer struct {
	weights Weights
}

// NewOptimizer creates an optimizer with the given objective weights
func NewOptimizer(weights Weights) *Optimizer {
	return &Optimizer{weights: weights}
}

// FindOptimalPlacement evaluates every candidate and returns the single best
// placement, or nil when candidates is empty. Ties are broken toward the
// lexicographically lower node ID so placement stays deterministic.
func (o *Optimizer) FindOptimalPlacement(
	w *types.Workload,
	candidates []string,
	nodes map[string]*types.ClusterNode,
	usage map[string]types.ResourceUsage,
) *types.PlacementDecision {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]string, len(candidates))
	copy(ordered, candidates)
	sort.Strings(ordered)

	best := &types.PlacementDecision{}
	found := false
	for _, nodeID := range ordered {
		node, ok := nodes[nodeID]
		if !ok {
			continue
		}
		score := o.score(w, node, usage[nodeID])
		if !found || score > best.Score {
			best.NodeID = nodeID
			best.Score = score
			found = true
		}
	}

	if !found {
		// Defensive: every candidate vanished from the node table between
		// selection and scoring
		return nil
	}
	return best
}

// score combines the weighted objectives for one node. All three terms are
// normalized to roughly [-1, 1] before weighting.
func (o *Optimizer) score(w *types.Workload, node *types.ClusterNode, usage types.ResourceUsage) float64 {
	bin := binPackingFit(w, usage)
	head := headroom(w, usage)
	aff := affinityScore(w, node)

	return o.weights.BinPacking*bin + o.weights.Headroom*head + o.weights.Affinity*aff
}

// binPackingFit rewards placements that drive a node toward full utilization
func binPackingFit(w *types.Workload, usage types.ResourceUsage) float64 {
	req := w.Spec.Resources

	cpuAfter := utilAfter(usage.CPUTotal, usage.CPUAvailable, req.CPUCores)
	memAfter := utilAfter(float64(usage.MemoryTotalMB), float64(usage.MemoryAvailMB), float64(req.MemoryMB))
	return (cpuAfter + memAfter) / 2
}

// headroom rewards placements that preserve slack for future growth
func headroom(w *types.Workload, usage types.ResourceUsage) float64 {
	return 1 - binPackingFit(w, usage)
}

// affinityScore totals label-expressed preferences plus the
// PreferNoSchedule penalty, normalized by the number of signals.
func affinityScore(w *types.Workload, node *types.ClusterNode) float64 {
	var score, signals float64

	for key, want := range w.Spec.Labels {
		switch {
		case strings.HasPrefix(key, AffinityLabelPrefix):
			signals++
			nodeKey := strings.TrimPrefix(key, AffinityLabelPrefix)
			if node.Labels[nodeKey] == want {
				score++
			}
		case strings.HasPrefix(key, AntiAffinityLabelPrefix):
			signals++
			nodeKey := strings.TrimPrefix(key, AntiAffinityLabelPrefix)
			if node.Labels[nodeKey] == want {
				score--
			}
		}
	}

	for _, taint := range node.Taints {
		if taint.Effect == types.TaintPreferNoSchedule {
			signals++
			score--
		}
	}

	if signals == 0 {
		return 0
	}
	return score / signals
}

// utilAfter computes projected utilization of one resource dimension after
// placing the request, clamped to [0, 1].
func utilAfter(total, available, request float64) float64 {
	if total <= 0 {
		return 0
	}
	used := total - available + request
	if used < 0 {
		used = 0
	}
	if used > total {
		used = total
	}
	return used / total
}
