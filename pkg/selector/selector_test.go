package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratohq/strato/pkg/types"
)

func node(id string, status types.NodeStatus, taints ...types.NodeTaint) *types.ClusterNode {
	return &types.ClusterNode{
		ID:     id,
		Status: status,
		Taints: taints,
		Resources: &types.NodeResources{
			CPUCores:  4,
			MemoryMB:  8192,
			StorageGB: 100,
		},
	}
}

func workload(cpu float64, memMB, storGB int64) *types.Workload {
	return &types.Workload{
		Spec: types.WorkloadSpec{
			ID:    "job-1",
			Image: "docker.io/library/redis:7",
			Resources: types.ResourceRequirements{
				CPUCores:  cpu,
				MemoryMB:  memMB,
				StorageGB: storGB,
			},
		},
	}
}

func TestSelectCandidatesStatusFiltering(t *testing.T) {
	s := NewSelector()
	nodes := []*types.ClusterNode{
		node("node-ready", types.NodeStatusReady),
		node("node-not-ready", types.NodeStatusNotReady),
		node("node-unknown", types.NodeStatusUnknown),
		node("node-cordoned", types.NodeStatusCordoned),
		node("node-draining", types.NodeStatusDraining),
	}

	got := s.SelectCandidates(workload(1, 1024, 0), nodes, nil)
	assert.Equal(t, []string{"node-ready"}, got)
}

func TestSelectCandidatesTaints(t *testing.T) {
	s := NewSelector()
	w := workload(1, 1024, 0)

	tests := []struct {
		name   string
		effect types.TaintEffect
		want   bool // included in candidates
	}{
		{"no-schedule blocks", types.TaintNoSchedule, false},
		{"no-execute blocks", types.TaintNoExecute, false},
		{"prefer-no-schedule passes", types.TaintPreferNoSchedule, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := node("node-a", types.NodeStatusReady, types.NodeTaint{Key: "k", Effect: tt.effect})
			got := s.SelectCandidates(w, []*types.ClusterNode{n}, nil)
			if tt.want {
				assert.Equal(t, []string{"node-a"}, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestSelectCandidatesCapacityCheck(t *testing.T) {
	s := NewSelector()
	nodes := []*types.ClusterNode{node("node-a", types.NodeStatusReady)}

	tests := []struct {
		name string
		w    *types.Workload
		want int
	}{
		{"fits exactly", workload(4, 8192, 100), 1},
		{"cpu too large", workload(8, 1024, 0), 0},
		{"memory too large", workload(1, 16384, 0), 0},
		{"storage too large", workload(1, 1024, 500), 0},
		{"no storage requirement", workload(1, 1024, 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.SelectCandidates(tt.w, nodes, nil)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSelectCandidatesUsesUsageWhenPresent(t *testing.T) {
	s := NewSelector()
	nodes := []*types.ClusterNode{node("node-a", types.NodeStatusReady)}

	// Capacity would fit, but the live snapshot says the node is nearly full
	usage := map[string]types.ResourceUsage{
		"node-a": {
			CPUTotal:       4,
			CPUAvailable:   0.5,
			MemoryTotalMB:  8192,
			MemoryAvailMB:  512,
			StorageTotalGB: 100,
			StorageAvailGB: 90,
		},
	}

	assert.Empty(t, s.SelectCandidates(workload(1, 1024, 0), nodes, usage))
	assert.Equal(t, []string{"node-a"}, s.SelectCandidates(workload(0.5, 512, 0), nodes, usage))
}

func TestSelectCandidatesNilResources(t *testing.T) {
	s := NewSelector()
	n := &types.ClusterNode{ID: "node-a", Status: types.NodeStatusReady}
	assert.Empty(t, s.SelectCandidates(workload(1, 1024, 0), []*types.ClusterNode{n}, nil))
}

func TestSelectCandidatesEmptyResultIsValid(t *testing.T) {
	s := NewSelector()
	got := s.SelectCandidates(workload(1, 1024, 0), nil, nil)
	assert.Empty(t, got)
}
