package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stratohq/strato/pkg/events"
	"github.com/stratohq/strato/pkg/types"
)

// RescheduleWorkloads rebalances placements with the chosen strategy.
// UpgradeNodes requires the target node ids; the other strategies ignore
// them. All strategies are best-effort: one workload's failed move is
// recorded in its result and does not abort the batch.
func (s *Scheduler) RescheduleWorkloads(ctx context.Context, strategy types.ReschedulingStrategy, nodeIDs ...string) ([]types.ReschedulingResult, error) {
	switch strategy {
	case types.StrategyLoadBalance:
		return s.rebalanceOverloaded(ctx), nil
	case types.StrategyConsolidation:
		return s.consolidate(ctx), nil
	case types.StrategyUpgradeNodes:
		if len(nodeIDs) == 0 {
			return nil, fmt.Errorf("%w: upgrade-nodes requires target nodes", ErrInvalidNode)
		}
		return s.upgradeNodes(ctx, nodeIDs), nil
	default:
		return nil, fmt.Errorf("unknown rescheduling strategy %q", strategy)
	}
}

// rebalanceOverloaded moves workloads off nodes above the overload
// thresholds until their projected utilization falls back under, one
// workload at a time.
func (s *Scheduler) rebalanceOverloaded(ctx context.Context) []types.ReschedulingResult {
	var results []types.ReschedulingResult

	usage := s.monitor.AllNodeUsage()
	for _, nodeID := range sortedNodeIDs(usage) {
		u := usage[nodeID]
		if u.CPUPercent() <= s.cfg.OverloadCPUPercent && u.MemoryPercent() <= s.cfg.OverloadMemoryPercent {
			continue
		}

		victims := s.workloadsOnNode(nodeID)
		sortWorkloads(victims)

		projCPU := u.CPUTotal - u.CPUAvailable
		projMem := u.MemoryTotalMB - u.MemoryAvailMB
		for _, victim := range victims {
			result := s.moveWorkload(ctx, victim, "load-balance", map[string]bool{nodeID: true})
			results = append(results, result)
			if !result.Moved {
				continue
			}

			projCPU -= victim.Workload.Spec.Resources.CPUCores
			projMem -= victim.Workload.Spec.Resources.MemoryMB
			cpuPct := pct(projCPU, u.CPUTotal)
			memPct := pct(float64(projMem), float64(u.MemoryTotalMB))
			if cpuPct <= s.cfg.OverloadCPUPercent && memPct <= s.cfg.OverloadMemoryPercent {
				break
			}
		}
	}
	return results
}

// consolidate packs workloads off lightly-loaded nodes so idle nodes can be
// reclaimed by the autoscaler. The inverse of load balancing: sources are
// the emptiest nodes, and their own node is excluded as a target.
func (s *Scheduler) consolidate(ctx context.Context) []types.ReschedulingResult {
	var results []types.ReschedulingResult

	usage := s.monitor.AllNodeUsage()

	// Emptiest nodes first, so the cheapest evacuations happen before the
	// cluster tightens up
	var sources []string
	for nodeID, u := range usage {
		combined := (u.CPUPercent() + u.MemoryPercent()) / 2
		if combined > 0 && combined < s.cfg.ConsolidationPercent {
			sources = append(sources, nodeID)
		}
	}
	sort.Slice(sources, func(i, j int) bool {
		ui, uj := usage[sources[i]], usage[sources[j]]
		ci := (ui.CPUPercent() + ui.MemoryPercent()) / 2
		cj := (uj.CPUPercent() + uj.MemoryPercent()) / 2
		if ci != cj {
			return ci < cj
		}
		return sources[i] < sources[j]
	})

	for _, nodeID := range sources {
		victims := s.workloadsOnNode(nodeID)
		if len(victims) == 0 {
			continue
		}
		sortWorkloads(victims)

		for _, victim := range victims {
			results = append(results, s.moveWorkload(ctx, victim, "consolidation", map[string]bool{nodeID: true}))
		}
	}
	return results
}

// upgradeNodes fully drains the named nodes ahead of maintenance. The nodes
// stay in the table, marked Draining, until the operator removes or
// uncordons them.
func (s *Scheduler) upgradeNodes(ctx context.Context, nodeIDs []string) []types.ReschedulingResult {
	var results []types.ReschedulingResult

	exclude := make(map[string]bool, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		exclude[nodeID] = true
	}

	for _, nodeID := range nodeIDs {
		if !s.setNodeStatus(nodeID, types.NodeStatusDraining) {
			results = append(results, types.ReschedulingResult{
				OldNodeID: nodeID,
				Reason:    "upgrade",
				Error:     fmt.Sprintf("node %s not found", nodeID),
				MovedAt:   time.Now(),
			})
			continue
		}
		s.broker.Publish(events.New(events.EventNodeDraining, "node draining for upgrade", map[string]string{
			"node_id": nodeID,
		}))

		for _, victim := range s.workloadsOnNode(nodeID) {
			results = append(results, s.moveWorkload(ctx, victim, "upgrade", exclude))
		}
	}
	return results
}

// drainNode evacuates every workload before node removal. Workloads that
// cannot be moved are stopped and dropped from the table: after a drain
// completes, nothing may reference the node.
func (s *Scheduler) drainNode(ctx context.Context, nodeID string) []types.ReschedulingResult {
	var results []types.ReschedulingResult

	for _, victim := range s.workloadsOnNode(nodeID) {
		result := s.moveWorkload(ctx, victim, "drain", map[string]bool{nodeID: true})
		results = append(results, result)
		if result.Moved {
			continue
		}

		// No new home; stop the container and drop the record
		workloadID := victim.Workload.Spec.ID
		if victim.ContainerID != "" {
			if err := s.runtime.RemoveContainer(ctx, victim.ContainerID); err != nil {
				s.logger.Warn().Err(err).Str("container_id", victim.ContainerID).Msg("failed to remove container during drain")
			}
		}
		s.workloadsMu.Lock()
		delete(s.workloads, workloadID)
		s.workloadsMu.Unlock()
		if err := s.monitor.Release(nodeID, victim.Workload.Spec.Resources); err != nil {
			s.logger.Debug().Err(err).Str("node_id", nodeID).Msg("release during drain")
		}
		s.forgetWorkloadCheckpoint(workloadID)

		s.broker.Publish(events.New(events.EventWorkloadFailed, "workload evicted by drain", map[string]string{
			"workload_id": workloadID,
			"node_id":     nodeID,
		}))
	}
	return results
}

// moveWorkload relocates one scheduled workload to the best node outside the
// excluded set. The new container starts before the old one stops, so a
// failed move leaves the workload running where it was.
func (s *Scheduler) moveWorkload(ctx context.Context, victim *types.ScheduledWorkload, reason string, exclude map[string]bool) types.ReschedulingResult {
	w := victim.Workload
	workloadID := w.Spec.ID
	oldNode := victim.NodeID
	oldContainer := victim.ContainerID

	result := types.ReschedulingResult{
		WorkloadID: workloadID,
		OldNodeID:  oldNode,
		Reason:     reason,
		MovedAt:    time.Now(),
	}

	var targets []*types.ClusterNode
	for _, node := range s.GetAvailableNodes() {
		if !exclude[node.ID] {
			targets = append(targets, node)
		}
	}
	if len(targets) == 0 {
		result.Error = "no eligible target nodes"
		return result
	}

	usage := s.monitor.AllNodeUsage()
	candidates := s.selector.SelectCandidates(&w, targets, usage)
	if len(candidates) == 0 {
		result.Error = "no candidate satisfies workload"
		return result
	}

	decision := s.optimizer.FindOptimalPlacement(&w, candidates, s.nodeSnapshot(), usage)
	if decision == nil {
		result.Error = "optimizer found no placement"
		return result
	}

	containerID, err := s.startWorkload(ctx, &w)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	// Retire the old container after the replacement is up
	if oldContainer != "" {
		if err := s.runtime.StopContainer(ctx, oldContainer, s.cfg.StopTimeout); err != nil {
			s.logger.Warn().Err(err).Str("container_id", oldContainer).Msg("failed to stop old container")
		}
		if err := s.runtime.RemoveContainer(ctx, oldContainer); err != nil {
			s.logger.Warn().Err(err).Str("container_id", oldContainer).Msg("failed to remove old container")
		}
	}

	s.workloadsMu.Lock()
	victim.NodeID = decision.NodeID
	victim.ContainerID = containerID
	victim.Status = types.WorkloadStatusRunning
	victim.ScheduledAt = time.Now()
	s.workloadsMu.Unlock()

	if err := s.monitor.Release(oldNode, w.Spec.Resources); err != nil {
		s.logger.Debug().Err(err).Str("node_id", oldNode).Msg("release during move")
	}
	if err := s.monitor.Allocate(decision.NodeID, w.Spec.Resources); err != nil {
		s.logger.Warn().Err(err).Str("node_id", decision.NodeID).Msg("failed to account move")
	}
	s.predictor.RecordPlacement(&w, decision.NodeID)
	s.checkpointWorkload(victim)

	result.NewNodeID = decision.NodeID
	result.Moved = true

	s.broker.Publish(events.New(events.EventWorkloadRescheduled, "workload rescheduled", map[string]string{
		"workload_id": workloadID,
		"old_node":    oldNode,
		"new_node":    decision.NodeID,
		"reason":      reason,
	}))
	s.logger.Info().
		Str("workload_id", workloadID).
		Str("old_node", oldNode).
		Str("new_node", decision.NodeID).
		Str("reason", reason).
		Msg("workload rescheduled")

	return result
}

// sortWorkloads orders victims by id so batch output is deterministic
func sortWorkloads(ws []*types.ScheduledWorkload) {
	sort.Slice(ws, func(i, j int) bool {
		return ws[i].Workload.Spec.ID < ws[j].Workload.Spec.ID
	})
}

// sortedNodeIDs returns usage map keys in stable order
func sortedNodeIDs(usage map[string]types.ResourceUsage) []string {
	ids := make([]string, 0, len(usage))
	for id := range usage {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func pct(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return used / total * 100
}
