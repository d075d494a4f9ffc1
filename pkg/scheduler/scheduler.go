package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stratohq/strato/pkg/autoscaler"
	"github.com/stratohq/strato/pkg/events"
	"github.com/stratohq/strato/pkg/log"
	"github.com/stratohq/strato/pkg/monitor"
	"github.com/stratohq/strato/pkg/optimizer"
	"github.com/stratohq/strato/pkg/placement"
	"github.com/stratohq/strato/pkg/policy"
	"github.com/stratohq/strato/pkg/predictor"
	"github.com/stratohq/strato/pkg/runtime"
	"github.com/stratohq/strato/pkg/selector"
	"github.com/stratohq/strato/pkg/state"
	"github.com/stratohq/strato/pkg/types"
)

// NetworkManager is an optional collaborator reserved for overlay network
// integration. No operations are invoked on it by the core yet.
type NetworkManager interface {
	AttachWorkload(ctx context.Context, workloadID, nodeID string) error
	DetachWorkload(ctx context.Context, workloadID string) error
}

// Provisioner is an optional collaborator that brings new nodes into
// existence for scale-up decisions. Without one, scale-up decisions fail
// execution and are excluded from CheckAutoscaling's result.
type Provisioner interface {
	ProvisionNode(ctx context.Context) (*types.ClusterNode, error)
}

// Config holds scheduler tunables
type Config struct {
	// Background loop intervals
	SchedulingInterval time.Duration
	MonitoringInterval time.Duration

	// A node above either threshold is overloaded for LoadBalance
	OverloadCPUPercent    float64
	OverloadMemoryPercent float64

	// A node below this combined utilization is a Consolidation source
	ConsolidationPercent float64

	// StopTimeout bounds graceful container shutdown during moves
	StopTimeout time.Duration

	Weights     optimizer.Weights
	Autoscaling autoscaler.Policy
}

// DefaultConfig returns the stock tunables
func DefaultConfig() Config {
	return Config{
		SchedulingInterval:    2 * time.Second,
		MonitoringInterval:    15 * time.Second,
		OverloadCPUPercent:    80,
		OverloadMemoryPercent: 80,
		ConsolidationPercent:  30,
		StopTimeout:           10 * time.Second,
		Weights:               optimizer.DefaultWeights(),
		Autoscaling:           autoscaler.DefaultPolicy(),
	}
}

// Scheduler owns all cluster and workload state and orchestrates the
// scheduling pipeline: policy gate, candidate selection, optimization,
// placement execution, prediction bookkeeping and event publication.
//
// The node table, workload table and placement queue are each protected by
// an independent read-write lock. Locks are never held across a call into a
// collaborator.
type Scheduler struct {
	cfg     Config
	runtime runtime.Runtime

	selector   *selector.Selector
	policies   *policy.Engine
	optimizer  *optimizer.Optimizer
	predictor  *predictor.Predictor
	autoscaler *autoscaler.AutoScaler
	monitor    *monitor.Monitor
	placements *placement.Engine
	broker     *events.Broker

	nodesMu sync.RWMutex
	nodes   map[string]*types.ClusterNode

	workloadsMu sync.RWMutex
	workloads   map[string]*types.ScheduledWorkload

	queueMu sync.RWMutex
	queue   []*types.PendingWorkload

	// Optional collaborators
	collabMu    sync.RWMutex
	network     NetworkManager
	stateMgr    state.Manager
	provisioner Provisioner

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   zerolog.Logger
}

// NewScheduler creates a scheduler with the given config and runtime. The
// policy engine starts empty; register constraints via Policies().
func NewScheduler(cfg Config, rt runtime.Runtime) *Scheduler {
	if cfg.SchedulingInterval <= 0 {
		cfg.SchedulingInterval = 2 * time.Second
	}
	if cfg.MonitoringInterval <= 0 {
		cfg.MonitoringInterval = 15 * time.Second
	}
	if cfg.OverloadCPUPercent <= 0 {
		cfg.OverloadCPUPercent = 80
	}
	if cfg.OverloadMemoryPercent <= 0 {
		cfg.OverloadMemoryPercent = 80
	}
	if cfg.ConsolidationPercent <= 0 {
		cfg.ConsolidationPercent = 30
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 10 * time.Second
	}

	return &Scheduler{
		cfg:        cfg,
		runtime:    rt,
		selector:   selector.NewSelector(),
		policies:   policy.NewEngine(),
		optimizer:  optimizer.NewOptimizer(cfg.Weights),
		predictor:  predictor.NewPredictor(),
		autoscaler: autoscaler.NewAutoScaler(cfg.Autoscaling),
		monitor:    monitor.NewMonitor(),
		placements: placement.NewEngine(),
		broker:     events.NewBroker(),
		nodes:      make(map[string]*types.ClusterNode),
		workloads:  make(map[string]*types.ScheduledWorkload),
		stopCh:     make(chan struct{}),
		logger:     log.WithComponent("scheduler"),
	}
}

// Policies returns the policy engine for constraint registration
func (s *Scheduler) Policies() *policy.Engine {
	return s.policies
}

// Monitor returns the resource monitor
func (s *Scheduler) Monitor() *monitor.Monitor {
	return s.monitor
}

// Predictor returns the workload predictor
func (s *Scheduler) Predictor() *predictor.Predictor {
	return s.predictor
}

// SetNetworkManager injects the optional network manager
func (s *Scheduler) SetNetworkManager(nm NetworkManager) {
	s.collabMu.Lock()
	defer s.collabMu.Unlock()
	s.network = nm
}

// SetStateManager injects the optional persistence hook
func (s *Scheduler) SetStateManager(sm state.Manager) {
	s.collabMu.Lock()
	defer s.collabMu.Unlock()
	s.stateMgr = sm
}

// SetProvisioner injects the optional node provisioner for scale-up
// execution
func (s *Scheduler) SetProvisioner(p Provisioner) {
	s.collabMu.Lock()
	defer s.collabMu.Unlock()
	s.provisioner = p
}

// Start spawns the background scheduling and monitoring tasks
func (s *Scheduler) Start() {
	s.broker.Start()

	s.wg.Add(2)
	go s.schedulingTask()
	go s.monitoringTask()

	s.logger.Info().
		Dur("scheduling_interval", s.cfg.SchedulingInterval).
		Dur("monitoring_interval", s.cfg.MonitoringInterval).
		Msg("scheduler started")
}

// Stop cancels the background tasks and the event broker. In-flight work is
// not drained; Stop is best-effort cleanup, not a graceful shutdown.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
	s.broker.Stop()
	s.logger.Info().Msg("scheduler stopped")
}

// Subscribe returns an event stream of scheduler change notifications
func (s *Scheduler) Subscribe() events.Subscriber {
	return s.broker.Subscribe()
}

// Unsubscribe removes an event subscription
func (s *Scheduler) Unsubscribe(sub events.Subscriber) {
	s.broker.Unsubscribe(sub)
}

// AddNode admits a node into the cluster
func (s *Scheduler) AddNode(node *types.ClusterNode) error {
	if node == nil || node.ID == "" {
		return fmt.Errorf("%w: missing node id", ErrInvalidNode)
	}
	if node.Resources == nil || node.Resources.CPUCores <= 0 || node.Resources.MemoryMB <= 0 {
		return fmt.Errorf("%w: node %s must advertise cpu and memory capacity", ErrInvalidNode, node.ID)
	}

	now := time.Now()
	if node.Status == "" {
		node.Status = types.NodeStatusReady
	}
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	if node.LastHeartbeat.IsZero() {
		node.LastHeartbeat = now
	}

	s.nodesMu.Lock()
	if _, exists := s.nodes[node.ID]; exists {
		s.nodesMu.Unlock()
		return fmt.Errorf("%w: node %s already exists", ErrInvalidNode, node.ID)
	}
	s.nodes[node.ID] = node
	s.nodesMu.Unlock()

	if err := s.monitor.AddNode(node.ID, node.Resources); err != nil {
		s.logger.Warn().Err(err).Str("node_id", node.ID).Msg("failed to register node with monitor")
	}
	s.checkpointNode(node)

	s.broker.Publish(events.New(events.EventNodeAdded, "node added", map[string]string{
		"node_id": node.ID,
		"address": node.Address,
	}))
	s.logger.Info().Str("node_id", node.ID).Msg("node added")
	return nil
}

// RemoveNode removes a node from the cluster. With drain, every workload on
// the node is rescheduled elsewhere before removal; workloads that cannot be
// moved are stopped and dropped so no record references the node afterward.
// Without drain the node is removed immediately and workloads still pointing
// at it are marked Unknown.
func (s *Scheduler) RemoveNode(ctx context.Context, nodeID string, drain bool) error {
	s.nodesMu.RLock()
	node, exists := s.nodes[nodeID]
	s.nodesMu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: node %s not found", ErrInvalidNode, nodeID)
	}

	if drain {
		s.setNodeStatus(nodeID, types.NodeStatusDraining)
		s.broker.Publish(events.New(events.EventNodeDraining, "node draining", map[string]string{
			"node_id": nodeID,
		}))
		s.drainNode(ctx, nodeID)
	} else {
		s.orphanWorkloads(nodeID)
	}

	s.nodesMu.Lock()
	delete(s.nodes, nodeID)
	s.nodesMu.Unlock()

	if err := s.monitor.RemoveNode(nodeID); err != nil {
		s.logger.Warn().Err(err).Str("node_id", nodeID).Msg("failed to deregister node from monitor")
	}
	s.placements.ForgetNode(nodeID)
	s.forgetNodeCheckpoint(nodeID)

	s.broker.Publish(events.New(events.EventNodeRemoved, "node removed", map[string]string{
		"node_id": nodeID,
		"address": node.Address,
	}))
	s.logger.Info().Str("node_id", nodeID).Bool("drain", drain).Msg("node removed")
	return nil
}

// CordonNode marks a node unschedulable without evicting its workloads
func (s *Scheduler) CordonNode(nodeID string) error {
	if !s.setNodeStatus(nodeID, types.NodeStatusCordoned) {
		return fmt.Errorf("%w: node %s not found", ErrInvalidNode, nodeID)
	}
	s.broker.Publish(events.New(events.EventNodeCordoned, "node cordoned", map[string]string{
		"node_id": nodeID,
	}))
	return nil
}

// UncordonNode returns a cordoned node to service
func (s *Scheduler) UncordonNode(nodeID string) error {
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()

	node, exists := s.nodes[nodeID]
	if !exists {
		return fmt.Errorf("%w: node %s not found", ErrInvalidNode, nodeID)
	}
	if node.Status == types.NodeStatusCordoned {
		node.Status = types.NodeStatusReady
	}
	return nil
}

// Heartbeat refreshes a node's liveness and optionally feeds an observed
// utilization sample into the monitor. A NotReady or Unknown node returns to
// Ready; Cordoned and Draining are operator states and are left alone.
func (s *Scheduler) Heartbeat(nodeID string, usage *types.ResourceUsage) error {
	s.nodesMu.Lock()
	node, exists := s.nodes[nodeID]
	if !exists {
		s.nodesMu.Unlock()
		return fmt.Errorf("%w: node %s not found", ErrInvalidNode, nodeID)
	}
	node.LastHeartbeat = time.Now()
	if node.Status == types.NodeStatusNotReady || node.Status == types.NodeStatusUnknown {
		node.Status = types.NodeStatusReady
	}
	s.nodesMu.Unlock()

	if usage != nil {
		if err := s.monitor.ObserveUsage(nodeID, *usage); err != nil {
			return fmt.Errorf("%w: %v", ErrResourceMonitoring, err)
		}
	}
	return nil
}

// GetAvailableNodes returns the nodes currently accepting placements
func (s *Scheduler) GetAvailableNodes() []*types.ClusterNode {
	s.nodesMu.RLock()
	defer s.nodesMu.RUnlock()

	var ready []*types.ClusterNode
	for _, node := range s.nodes {
		if node.Status.Schedulable() {
			ready = append(ready, node)
		}
	}
	return ready
}

// GetNode returns a node by ID
func (s *Scheduler) GetNode(nodeID string) (*types.ClusterNode, bool) {
	s.nodesMu.RLock()
	defer s.nodesMu.RUnlock()
	node, ok := s.nodes[nodeID]
	return node, ok
}

// GetWorkload returns a scheduled workload by ID
func (s *Scheduler) GetWorkload(workloadID string) (*types.ScheduledWorkload, bool) {
	s.workloadsMu.RLock()
	defer s.workloadsMu.RUnlock()
	w, ok := s.workloads[workloadID]
	return w, ok
}

// ListWorkloads returns all scheduled workloads
func (s *Scheduler) ListWorkloads() []*types.ScheduledWorkload {
	s.workloadsMu.RLock()
	defer s.workloadsMu.RUnlock()

	out := make([]*types.ScheduledWorkload, 0, len(s.workloads))
	for _, w := range s.workloads {
		out = append(out, w)
	}
	return out
}

// Stats returns the aggregate scheduler view. With no intervening mutation,
// repeated calls return identical counts.
func (s *Scheduler) Stats() types.SchedulerStats {
	s.nodesMu.RLock()
	nodeCount := len(s.nodes)
	s.nodesMu.RUnlock()

	s.workloadsMu.RLock()
	workloadCount := len(s.workloads)
	s.workloadsMu.RUnlock()

	s.queueMu.RLock()
	pending := len(s.queue)
	s.queueMu.RUnlock()

	return types.SchedulerStats{
		NodeCount:         nodeCount,
		WorkloadCount:     workloadCount,
		PendingPlacements: pending,
		Placements:        s.placements.Stats(),
		Predictor:         s.predictor.Stats(),
		Autoscaler:        s.autoscaler.Stats(),
	}
}

// setNodeStatus updates a node's status, returning false when the node is
// unknown
func (s *Scheduler) setNodeStatus(nodeID string, status types.NodeStatus) bool {
	s.nodesMu.Lock()
	defer s.nodesMu.Unlock()

	node, exists := s.nodes[nodeID]
	if !exists {
		return false
	}
	node.Status = status
	return true
}

// orphanWorkloads marks workloads on a removed node Unknown. They keep their
// record so operators can find them, but no cleanup path exists yet.
func (s *Scheduler) orphanWorkloads(nodeID string) {
	s.workloadsMu.Lock()
	var orphaned []string
	for id, w := range s.workloads {
		if w.NodeID == nodeID {
			w.Status = types.WorkloadStatusUnknown
			orphaned = append(orphaned, id)
		}
	}
	s.workloadsMu.Unlock()

	for _, id := range orphaned {
		s.broker.Publish(events.New(events.EventWorkloadOrphaned, "workload orphaned by node removal", map[string]string{
			"workload_id": id,
			"node_id":     nodeID,
		}))
	}
}

// workloadsOnNode snapshots the workloads currently bound to a node
func (s *Scheduler) workloadsOnNode(nodeID string) []*types.ScheduledWorkload {
	s.workloadsMu.RLock()
	defer s.workloadsMu.RUnlock()

	var out []*types.ScheduledWorkload
	for _, w := range s.workloads {
		if w.NodeID == nodeID {
			out = append(out, w)
		}
	}
	return out
}

// workloadCountByNode counts active workloads per node
func (s *Scheduler) workloadCountByNode() map[string]int {
	s.workloadsMu.RLock()
	defer s.workloadsMu.RUnlock()

	counts := make(map[string]int)
	for _, w := range s.workloads {
		counts[w.NodeID]++
	}
	return counts
}

// nodeSnapshot copies the node table for lock-free reads downstream
func (s *Scheduler) nodeSnapshot() map[string]*types.ClusterNode {
	s.nodesMu.RLock()
	defer s.nodesMu.RUnlock()

	snapshot := make(map[string]*types.ClusterNode, len(s.nodes))
	for id, node := range s.nodes {
		snapshot[id] = node
	}
	return snapshot
}

// checkpointNode persists a node record when a state manager is injected.
// Best-effort: failures are logged, never propagated.
func (s *Scheduler) checkpointNode(node *types.ClusterNode) {
	s.collabMu.RLock()
	sm := s.stateMgr
	s.collabMu.RUnlock()
	if sm == nil {
		return
	}
	if err := sm.SaveNode(node); err != nil {
		s.logger.Warn().Err(err).Str("node_id", node.ID).Msg("failed to checkpoint node")
	}
}

func (s *Scheduler) forgetNodeCheckpoint(nodeID string) {
	s.collabMu.RLock()
	sm := s.stateMgr
	s.collabMu.RUnlock()
	if sm == nil {
		return
	}
	if err := sm.DeleteNode(nodeID); err != nil {
		s.logger.Warn().Err(err).Str("node_id", nodeID).Msg("failed to delete node checkpoint")
	}
}

// checkpointWorkload persists a workload record when a state manager is
// injected
func (s *Scheduler) checkpointWorkload(w *types.ScheduledWorkload) {
	s.collabMu.RLock()
	sm := s.stateMgr
	s.collabMu.RUnlock()
	if sm == nil {
		return
	}
	if err := sm.SaveWorkload(w); err != nil {
		s.logger.Warn().Err(err).Str("workload_id", w.Workload.Spec.ID).Msg("failed to checkpoint workload")
	}
}

func (s *Scheduler) forgetWorkloadCheckpoint(workloadID string) {
	s.collabMu.RLock()
	sm := s.stateMgr
	s.collabMu.RUnlock()
	if sm == nil {
		return
	}
	if err := sm.DeleteWorkload(workloadID); err != nil {
		s.logger.Warn().Err(err).Str("workload_id", workloadID).Msg("failed to delete workload checkpoint")
	}
}
