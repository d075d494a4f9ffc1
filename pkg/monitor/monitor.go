package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/stratohq/strato/pkg/types"
)

// Monitor tracks per-node and cluster-wide resource utilization. It is the
// only component with a live view of actual usage; callers apply their own
// thresholds to the snapshots it returns.
type Monitor struct {
	mu    sync.RWMutex
	nodes map[string]*nodeState
}

type nodeState struct {
	capacity types.NodeResources

	// Reserved by placed workloads
	allocatedCPU     float64
	allocatedMemMB   int64
	allocatedStorGB  int64

	// Reported utilization, e.g. from heartbeats. When present it overrides
	// the allocation-derived view.
	observed   *types.ResourceUsage
	observedAt time.Time
}

// NewMonitor creates an empty resource monitor
func NewMonitor() *Monitor {
	return &Monitor{
		nodes: make(map[string]*nodeState),
	}
}

// AddNode registers a monitoring target with its advertised capacity
func (m *Monitor) AddNode(nodeID string, capacity *types.NodeResources) error {
	if capacity == nil {
		return fmt.Errorf("node %s: capacity must not be nil", nodeID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.nodes[nodeID]; exists {
		return fmt.Errorf("node %s already monitored", nodeID)
	}
	m.nodes[nodeID] = &nodeState{capacity: *capacity}
	return nil
}

// RemoveNode deregisters a monitoring target
func (m *Monitor) RemoveNode(nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.nodes[nodeID]; !exists {
		return fmt.Errorf("node %s not monitored", nodeID)
	}
	delete(m.nodes, nodeID)
	return nil
}

// Allocate reserves resources on a node for a placed workload
func (m *Monitor) Allocate(nodeID string, req types.ResourceRequirements) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, exists := m.nodes[nodeID]
	if !exists {
		return fmt.Errorf("node %s not monitored", nodeID)
	}
	st.allocatedCPU += req.CPUCores
	st.allocatedMemMB += req.MemoryMB
	st.allocatedStorGB += req.StorageGB
	return nil
}

// Release returns resources reserved by a workload that left the node
func (m *Monitor) Release(nodeID string, req types.ResourceRequirements) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, exists := m.nodes[nodeID]
	if !exists {
		return fmt.Errorf("node %s not monitored", nodeID)
	}
	st.allocatedCPU -= req.CPUCores
	st.allocatedMemMB -= req.MemoryMB
	st.allocatedStorGB -= req.StorageGB
	if st.allocatedCPU < 0 {
		st.allocatedCPU = 0
	}
	if st.allocatedMemMB < 0 {
		st.allocatedMemMB = 0
	}
	if st.allocatedStorGB < 0 {
		st.allocatedStorGB = 0
	}
	return nil
}

// ObserveUsage records a reported utilization sample for a node. Reported
// samples take precedence over the allocation-derived view until the node is
// removed.
func (m *Monitor) ObserveUsage(nodeID string, usage types.ResourceUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, exists := m.nodes[nodeID]
	if !exists {
		return fmt.Errorf("node %s not monitored", nodeID)
	}
	if usage.SampledAt.IsZero() {
		usage.SampledAt = time.Now()
	}
	st.observed = &usage
	st.observedAt = usage.SampledAt
	return nil
}

// NodeUsage returns a point-in-time snapshot for one node
func (m *Monitor) NodeUsage(nodeID string) (types.ResourceUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, exists := m.nodes[nodeID]
	if !exists {
		return types.ResourceUsage{}, fmt.Errorf("node %s not monitored", nodeID)
	}
	return st.usage(), nil
}

// AllNodeUsage returns snapshots for every monitored node
func (m *Monitor) AllNodeUsage() map[string]types.ResourceUsage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]types.ResourceUsage, len(m.nodes))
	for id, st := range m.nodes {
		out[id] = st.usage()
	}
	return out
}

// ClusterUsage returns an aggregate snapshot across all monitored nodes
func (m *Monitor) ClusterUsage() types.ResourceUsage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agg := types.ResourceUsage{SampledAt: time.Now()}
	for _, st := range m.nodes {
		u := st.usage()
		agg.CPUTotal += u.CPUTotal
		agg.CPUAvailable += u.CPUAvailable
		agg.MemoryTotalMB += u.MemoryTotalMB
		agg.MemoryAvailMB += u.MemoryAvailMB
		agg.StorageTotalGB += u.StorageTotalGB
		agg.StorageAvailGB += u.StorageAvailGB
	}
	return agg
}

// NodeCount returns the number of monitored nodes
func (m *Monitor) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

func (s *nodeState) usage() types.ResourceUsage {
	if s.observed != nil {
		return *s.observed
	}

	u := types.ResourceUsage{
		CPUTotal:       s.capacity.CPUCores,
		CPUAvailable:   s.capacity.CPUCores - s.allocatedCPU,
		MemoryTotalMB:  s.capacity.MemoryMB,
		MemoryAvailMB:  s.capacity.MemoryMB - s.allocatedMemMB,
		StorageTotalGB: s.capacity.StorageGB,
		StorageAvailGB: s.capacity.StorageGB - s.allocatedStorGB,
		SampledAt:      time.Now(),
	}
	if u.CPUAvailable < 0 {
		u.CPUAvailable = 0
	}
	if u.MemoryAvailMB < 0 {
		u.MemoryAvailMB = 0
	}
	if u.StorageAvailGB < 0 {
		u.StorageAvailGB = 0
	}
	return u
}
