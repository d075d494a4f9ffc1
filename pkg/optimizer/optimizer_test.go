package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratohq/strato/pkg/types"
)

func testWorkload(cpu float64, memMB int64) *types.Workload {
	return &types.Workload{
		Spec: types.WorkloadSpec{
			ID:    "web-1",
			Image: "docker.io/library/nginx:latest",
			Resources: types.ResourceRequirements{
				CPUCores: cpu,
				MemoryMB: memMB,
			},
		},
	}
}

func testNode(id string) *types.ClusterNode {
	return &types.ClusterNode{
		ID:     id,
		Status: types.NodeStatusReady,
		Resources: &types.NodeResources{
			CPUCores: 4,
			MemoryMB: 8192,
		},
	}
}

func usageFor(cpuAvail float64, memAvailMB int64) types.ResourceUsage {
	return types.ResourceUsage{
		CPUTotal:      4,
		CPUAvailable:  cpuAvail,
		MemoryTotalMB: 8192,
		MemoryAvailMB: memAvailMB,
	}
}

func TestFindOptimalPlacementEmptyCandidates(t *testing.T) {
	opt := NewOptimizer(DefaultWeights())
	decision := opt.FindOptimalPlacement(testWorkload(1, 1024), nil, nil, nil)
	assert.Nil(t, decision)
}

func TestFindOptimalPlacementDeterministic(t *testing.T) {
	opt := NewOptimizer(DefaultWeights())
	w := testWorkload(1, 1024)
	nodes := map[string]*types.ClusterNode{
		"node-a": testNode("node-a"),
		"node-b": testNode("node-b"),
		"node-c": testNode("node-c"),
	}
	usage := map[string]types.ResourceUsage{
		"node-a": usageFor(4, 8192),
		"node-b": usageFor(2, 4096),
		"node-c": usageFor(3, 6144),
	}
	candidates := []string{"node-c", "node-a", "node-b"}

	first := opt.FindOptimalPlacement(w, candidates, nodes, usage)
	assert.NotNil(t, first)

	// Identical inputs in any candidate order produce an identical decision
	for i := 0; i < 10; i++ {
		again := opt.FindOptimalPlacement(w, []string{"node-b", "node-c", "node-a"}, nodes, usage)
		assert.Equal(t, first.NodeID, again.NodeID)
		assert.Equal(t, first.Score, again.Score)
	}
}

func TestFindOptimalPlacementTieBreaksLowerID(t *testing.T) {
	opt := NewOptimizer(DefaultWeights())
	w := testWorkload(1, 1024)

	// Two identical nodes with identical usage score identically
	nodes := map[string]*types.ClusterNode{
		"node-b": testNode("node-b"),
		"node-a": testNode("node-a"),
	}
	usage := map[string]types.ResourceUsage{
		"node-a": usageFor(4, 8192),
		"node-b": usageFor(4, 8192),
	}

	decision := opt.FindOptimalPlacement(w, []string{"node-b", "node-a"}, nodes, usage)
	assert.NotNil(t, decision)
	assert.Equal(t, "node-a", decision.NodeID)
}

func TestFindOptimalPlacementBinPackingPrefersLoadedNode(t *testing.T) {
	// With only the bin-packing objective, the busier node must win
	opt := NewOptimizer(Weights{BinPacking: 1})
	w := testWorkload(1, 1024)
	nodes := map[string]*types.ClusterNode{
		"node-busy": testNode("node-busy"),
		"node-idle": testNode("node-idle"),
	}
	usage := map[string]types.ResourceUsage{
		"node-busy": usageFor(2, 4096),
		"node-idle": usageFor(4, 8192),
	}

	decision := opt.FindOptimalPlacement(w, []string{"node-busy", "node-idle"}, nodes, usage)
	assert.NotNil(t, decision)
	assert.Equal(t, "node-busy", decision.NodeID)
}

func TestFindOptimalPlacementHeadroomPrefersIdleNode(t *testing.T) {
	opt := NewOptimizer(Weights{Headroom: 1})
	w := testWorkload(1, 1024)
	nodes := map[string]*types.ClusterNode{
		"node-busy": testNode("node-busy"),
		"node-idle": testNode("node-idle"),
	}
	usage := map[string]types.ResourceUsage{
		"node-busy": usageFor(2, 4096),
		"node-idle": usageFor(4, 8192),
	}

	decision := opt.FindOptimalPlacement(w, []string{"node-busy", "node-idle"}, nodes, usage)
	assert.NotNil(t, decision)
	assert.Equal(t, "node-idle", decision.NodeID)
}

func TestFindOptimalPlacementAllCandidatesVanished(t *testing.T) {
	opt := NewOptimizer(DefaultWeights())
	decision := opt.FindOptimalPlacement(
		testWorkload(1, 1024),
		[]string{"node-gone"},
		map[string]*types.ClusterNode{},
		nil,
	)
	assert.Nil(t, decision)
}

func TestAffinityScore(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
		node   *types.ClusterNode
		want   float64
	}{
		{
			name:   "no signals",
			labels: map[string]string{"team": "payments"},
			node:   testNode("node-a"),
			want:   0,
		},
		{
			name:   "affinity match",
			labels: map[string]string{"affinity/zone": "us-east"},
			node: &types.ClusterNode{
				ID:     "node-a",
				Labels: map[string]string{"zone": "us-east"},
			},
			want: 1,
		},
		{
			name:   "affinity miss",
			labels: map[string]string{"affinity/zone": "us-east"},
			node: &types.ClusterNode{
				ID:     "node-a",
				Labels: map[string]string{"zone": "eu-west"},
			},
			want: 0,
		},
		{
			name:   "anti-affinity hit penalizes",
			labels: map[string]string{"anti-affinity/zone": "us-east"},
			node: &types.ClusterNode{
				ID:     "node-a",
				Labels: map[string]string{"zone": "us-east"},
			},
			want: -1,
		},
		{
			name:   "prefer-no-schedule taint penalizes",
			labels: nil,
			node: &types.ClusterNode{
				ID:     "node-a",
				Taints: []types.NodeTaint{{Key: "maintenance", Effect: types.TaintPreferNoSchedule}},
			},
			want: -1,
		},
		{
			name: "mixed signals average",
			labels: map[string]string{
				"affinity/zone":     "us-east",
				"anti-affinity/gpu": "true",
			},
			node: &types.ClusterNode{
				ID:     "node-a",
				Labels: map[string]string{"zone": "us-east", "gpu": "true"},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &types.Workload{Spec: types.WorkloadSpec{ID: "w", Labels: tt.labels}}
			got := affinityScore(w, tt.node)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestUtilAfter(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		available float64
		request   float64
		want      float64
	}{
		{"empty node", 4, 4, 1, 0.25},
		{"half loaded", 4, 2, 1, 0.75},
		{"overcommit clamps to one", 4, 1, 8, 1},
		{"zero total", 0, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utilAfter(tt.total, tt.available, tt.request)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
