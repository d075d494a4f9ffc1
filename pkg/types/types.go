package types

import (
	"time"
)

// ClusterNode represents a schedulable member of the cluster
type ClusterNode struct {
	ID            string
	Address       string // Host IP address or DNS name
	Resources     *NodeResources
	Status        NodeStatus
	Labels        map[string]string
	Taints        []NodeTaint // Ordered; evaluated in declaration order
	LastHeartbeat time.Time
	CreatedAt     time.Time
}

// NodeStatus represents the current state of a node
type NodeStatus string

const (
	NodeStatusReady    NodeStatus = "ready"
	NodeStatusNotReady NodeStatus = "not-ready"
	NodeStatusUnknown  NodeStatus = "unknown"
	NodeStatusCordoned NodeStatus = "cordoned"
	NodeStatusDraining NodeStatus = "draining"
)

// Schedulable reports whether a node in this status accepts new placements.
// Cordoned and Draining nodes keep their existing workloads but receive no
// new ones.
func (s NodeStatus) Schedulable() bool {
	return s == NodeStatusReady
}

// NodeResources tracks the capacity a node advertises
type NodeResources struct {
	CPUCores             float64
	MemoryMB             int64
	StorageGB            int64
	NetworkBandwidthMbps int64
	GPUs                 int
}

// NodeTaint marks a node as repelling workloads
type NodeTaint struct {
	Key    string
	Value  string // Optional
	Effect TaintEffect
}

// TaintEffect defines how a taint influences placement
type TaintEffect string

const (
	// TaintNoSchedule excludes the node from candidate selection
	TaintNoSchedule TaintEffect = "no-schedule"

	// TaintPreferNoSchedule de-prioritizes the node during scoring
	TaintPreferNoSchedule TaintEffect = "prefer-no-schedule"

	// TaintNoExecute excludes the node from candidate selection, and evicts
	// existing workloads on drain
	TaintNoExecute TaintEffect = "no-execute"
)

// ResourceRequirements defines the minimum resources a workload needs
type ResourceRequirements struct {
	CPUCores  float64
	MemoryMB  int64
	StorageGB int64 // Optional; zero means no storage requirement
}

// WorkloadSpec is the immutable description of a workload submission
type WorkloadSpec struct {
	ID         string
	Image      string
	Command    []string
	Env        []string
	WorkingDir string
	Resources  ResourceRequirements
	Labels     map[string]string
}

// Workload is the unit submitted for scheduling
type Workload struct {
	Spec WorkloadSpec
}

// WorkloadStatus represents the lifecycle state of a placed workload
type WorkloadStatus string

const (
	WorkloadStatusPending   WorkloadStatus = "pending"
	WorkloadStatusRunning   WorkloadStatus = "running"
	WorkloadStatusSucceeded WorkloadStatus = "succeeded"
	WorkloadStatusFailed    WorkloadStatus = "failed"
	WorkloadStatusUnknown   WorkloadStatus = "unknown"
)

// ScheduledWorkload is a workload bound to a node
type ScheduledWorkload struct {
	Workload    Workload
	NodeID      string
	ContainerID string
	Status      WorkloadStatus
	ScheduledAt time.Time
}

// PendingWorkload is a workload awaiting placement in the queue
type PendingWorkload struct {
	Workload    Workload
	Priority    int // Higher drains first
	SubmittedAt time.Time
}

// PlacementDecision is the optimizer's verdict for a single workload.
// NodeID is empty only when no candidate was supplied.
type PlacementDecision struct {
	NodeID string
	Score  float64
}

// SchedulingResult is the durable record of a successful placement
type SchedulingResult struct {
	WorkloadID  string
	NodeID      string
	Score       float64
	ScheduledAt time.Time
}

// ContainerSpec is the runtime-facing description derived from a WorkloadSpec
type ContainerSpec struct {
	Name          string
	Image         string
	Command       []string
	Env           []string
	WorkingDir    string
	CPUCores      float64
	MemoryMB      int64
	StorageGB     int64
	RestartPolicy string // Defaults to "always"
}

// ResourceUsage is a point-in-time utilization snapshot for a node or the
// whole cluster
type ResourceUsage struct {
	CPUTotal       float64
	CPUAvailable   float64
	MemoryTotalMB  int64
	MemoryAvailMB  int64
	StorageTotalGB int64
	StorageAvailGB int64
	SampledAt      time.Time
}

// CPUPercent returns CPU utilization as a percentage (0-100)
func (u ResourceUsage) CPUPercent() float64 {
	if u.CPUTotal <= 0 {
		return 0
	}
	return (u.CPUTotal - u.CPUAvailable) / u.CPUTotal * 100
}

// MemoryPercent returns memory utilization as a percentage (0-100)
func (u ResourceUsage) MemoryPercent() float64 {
	if u.MemoryTotalMB <= 0 {
		return 0
	}
	return float64(u.MemoryTotalMB-u.MemoryAvailMB) / float64(u.MemoryTotalMB) * 100
}

// ResourceDemand is a forecast of near-term resource need
type ResourceDemand struct {
	CPUCores             float64
	MemoryMB             int64
	StorageGB            int64
	NetworkBandwidthMbps int64
	Confidence           float64 // 0-1; low confidence means defaulted forecast
}

// ScalingAction defines the kind of scaling decision
type ScalingAction string

const (
	ScaleUp   ScalingAction = "scale-up"
	ScaleDown ScalingAction = "scale-down"
	ScaleNone ScalingAction = "none"
)

// ScalingDecision is a proposed cluster-size change. The AutoScaler only
// proposes; the Scheduler is the sole executor.
type ScalingDecision struct {
	Action    ScalingAction
	NodeCount int      // For scale-up: how many nodes to add
	NodeIDs   []string // For scale-down: specific idle nodes to remove
	Reason    string
	DecidedAt time.Time
}

// ReschedulingStrategy selects a rebalancing algorithm
type ReschedulingStrategy string

const (
	// StrategyLoadBalance moves workloads off overloaded nodes
	StrategyLoadBalance ReschedulingStrategy = "load-balance"

	// StrategyConsolidation packs workloads densely to free nodes
	StrategyConsolidation ReschedulingStrategy = "consolidation"

	// StrategyUpgradeNodes drains named nodes ahead of maintenance
	StrategyUpgradeNodes ReschedulingStrategy = "upgrade-nodes"
)

// ReschedulingResult records one workload movement attempt
type ReschedulingResult struct {
	WorkloadID string
	OldNodeID  string
	NewNodeID  string // Empty when the move failed
	Reason     string
	Moved      bool
	Error      string // Populated when the move failed
	MovedAt    time.Time
}

// SchedulerStats is the aggregate view returned by Scheduler.Stats
type SchedulerStats struct {
	NodeCount         int
	WorkloadCount     int
	PendingPlacements int
	Placements        PlacementStats
	Predictor         PredictorStats
	Autoscaler        AutoscalerStats
}

// PlacementStats summarizes placement outcomes
type PlacementStats struct {
	TotalPlacements  int
	FailedPlacements int
	MeanScore        float64
	PerNode          map[string]int
}

// PredictorStats summarizes the prediction history
type PredictorStats struct {
	Samples int
	Classes int
}

// AutoscalerStats summarizes scaling activity
type AutoscalerStats struct {
	ScaleUps   int
	ScaleDowns int
	LastAction time.Time
}
