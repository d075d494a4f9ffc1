package selector

import (
	"github.com/stratohq/strato/pkg/types"
)

// Selector filters the node population down to workload-eligible candidates.
// It is stateless and side-effect free: both inputs are read-only snapshots.
type Selector struct{}

// NewSelector creates a node selector
func NewSelector() *Selector {
	return &Selector{}
}

// SelectCandidates returns the IDs of nodes eligible to run the workload.
// A node qualifies when it is Ready, carries no blocking taint, and its
// resources satisfy the workload's cpu/memory/storage minimums. When a usage
// snapshot is supplied for a node, currently-available resources are checked
// instead of raw capacity. An empty result is valid.
func (s *Selector) SelectCandidates(w *types.Workload, nodes []*types.ClusterNode, usage map[string]types.ResourceUsage) []string {
	var candidates []string
	for _, node := range nodes {
		if !node.Status.Schedulable() {
			continue
		}
		if hasBlockingTaint(node) {
			continue
		}
		if !fits(w, node, usage) {
			continue
		}
		candidates = append(candidates, node.ID)
	}
	return candidates
}

// hasBlockingTaint reports whether any taint excludes the node outright.
// No toleration model exists: NoSchedule and NoExecute always block,
// PreferNoSchedule is left for the optimizer to penalize.
func hasBlockingTaint(node *types.ClusterNode) bool {
	for _, taint := range node.Taints {
		if taint.Effect == types.TaintNoSchedule || taint.Effect == types.TaintNoExecute {
			return true
		}
	}
	return false
}

func fits(w *types.Workload, node *types.ClusterNode, usage map[string]types.ResourceUsage) bool {
	req := w.Spec.Resources
	if node.Resources == nil {
		return false
	}

	if u, ok := usage[node.ID]; ok {
		return u.CPUAvailable >= req.CPUCores &&
			u.MemoryAvailMB >= req.MemoryMB &&
			u.StorageAvailGB >= req.StorageGB
	}

	return node.Resources.CPUCores >= req.CPUCores &&
		node.Resources.MemoryMB >= req.MemoryMB &&
		node.Resources.StorageGB >= req.StorageGB
}
