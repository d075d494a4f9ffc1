package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stratohq/strato/pkg/events"
	"github.com/stratohq/strato/pkg/types"
)

// ScheduleWorkload runs the full placement pipeline for one workload:
// validation, policy gate, candidate selection, optimization, placement
// execution, prediction bookkeeping and event publication. The steps execute
// strictly in that order; there is no retry inside this call.
//
// The placement is committed once the container has started. A later
// bookkeeping failure does not roll it back; killing a running workload over
// a bookkeeping failure would be worse than the stale record.
func (s *Scheduler) ScheduleWorkload(ctx context.Context, w *types.Workload) (*types.SchedulingResult, error) {
	// Step 1: validate the spec before anything else runs
	if err := validateSpec(w); err != nil {
		s.placements.RecordFailure()
		return nil, err
	}
	workloadID := w.Spec.ID

	// Step 2: policy gate
	if _, err := s.policies.ApplyPolicies(w); err != nil {
		s.placements.RecordFailure()
		return nil, fmt.Errorf("%w: %v", ErrPolicyViolation, err)
	}

	// Step 3: collect Ready nodes
	ready := s.GetAvailableNodes()
	if len(ready) == 0 {
		s.placements.RecordFailure()
		return nil, fmt.Errorf("%w: cluster has no ready nodes", ErrNoAvailableNodes)
	}

	// Step 4: candidate selection against a usage snapshot
	usage := s.monitor.AllNodeUsage()
	candidates := s.selector.SelectCandidates(w, ready, usage)
	if len(candidates) == 0 {
		s.placements.RecordFailure()
		return nil, fmt.Errorf("%w: no candidate satisfies workload %s", ErrNoSuitableNodes, workloadID)
	}

	// Step 5: optimization
	decision := s.optimizer.FindOptimalPlacement(w, candidates, s.nodeSnapshot(), usage)
	if decision == nil {
		s.placements.RecordFailure()
		return nil, fmt.Errorf("%w: optimizer found no placement for workload %s", ErrNoSuitableNodes, workloadID)
	}

	// Step 6: execute placement via the runtime
	containerID, err := s.startWorkload(ctx, w)
	if err != nil {
		s.placements.RecordFailure()
		return nil, err
	}

	result := types.SchedulingResult{
		WorkloadID:  workloadID,
		NodeID:      decision.NodeID,
		Score:       decision.Score,
		ScheduledAt: time.Now(),
	}
	s.commitPlacement(ctx, w, containerID, result)

	// Step 7: prediction bookkeeping; the placement is already committed
	s.predictor.RecordPlacement(w, decision.NodeID)

	// Step 8: broadcast
	s.broker.Publish(events.New(events.EventWorkloadScheduled, "workload scheduled", map[string]string{
		"workload_id": workloadID,
		"node_id":     decision.NodeID,
		"score":       fmt.Sprintf("%.4f", decision.Score),
	}))
	s.logger.Info().
		Str("workload_id", workloadID).
		Str("node_id", decision.NodeID).
		Float64("score", decision.Score).
		Msg("workload scheduled")

	return &result, nil
}

// Submit enqueues a workload for placement by the scheduling task. Higher
// priority drains first; equal priorities drain in submission order.
func (s *Scheduler) Submit(w *types.Workload, priority int) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	s.queue = append(s.queue, &types.PendingWorkload{
		Workload:    *w,
		Priority:    priority,
		SubmittedAt: time.Now(),
	})
}

// PendingCount returns the queue depth
func (s *Scheduler) PendingCount() int {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	return len(s.queue)
}

// schedulingTask is the background loop draining the placement queue
func (s *Scheduler) schedulingTask() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.SchedulingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.drainQueue(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// monitoringTask is the background loop running autoscaling rounds
func (s *Scheduler) monitoringTask() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.MonitoringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.CheckAutoscaling(context.Background()); err != nil {
				s.logger.Error().Err(err).Msg("autoscaling round failed")
			}
		case <-s.stopCh:
			return
		}
	}
}

// drainQueue attempts placement for every queued workload, highest priority
// first. Capacity rejections requeue the workload for a later round;
// manifest rejections drop it. Retry policy lives here, above the
// synchronous ScheduleWorkload core.
func (s *Scheduler) drainQueue(ctx context.Context) {
	s.queueMu.Lock()
	if len(s.queue) == 0 {
		s.queueMu.Unlock()
		return
	}
	pending := s.queue
	s.queue = nil
	s.queueMu.Unlock()

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority > pending[j].Priority
		}
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})

	var requeue []*types.PendingWorkload
	for _, p := range pending {
		w := p.Workload
		_, err := s.ScheduleWorkload(ctx, &w)
		if err == nil {
			continue
		}

		if errors.Is(err, ErrNoAvailableNodes) || errors.Is(err, ErrNoSuitableNodes) || errors.Is(err, ErrRuntime) {
			// Capacity or transient failure; try again next round
			requeue = append(requeue, p)
			continue
		}

		// Manifest problem; resubmission without a fix would loop forever
		s.logger.Warn().Err(err).Str("workload_id", w.Spec.ID).Msg("dropping unschedulable workload")
		s.broker.Publish(events.New(events.EventWorkloadFailed, "workload rejected", map[string]string{
			"workload_id": w.Spec.ID,
			"error":       err.Error(),
		}))
	}

	if len(requeue) > 0 {
		s.queueMu.Lock()
		s.queue = append(requeue, s.queue...)
		s.queueMu.Unlock()
	}
}

// startWorkload creates and starts the workload's container
func (s *Scheduler) startWorkload(ctx context.Context, w *types.Workload) (string, error) {
	spec := containerSpec(w)

	containerID, err := s.runtime.CreateContainer(ctx, spec)
	if err != nil {
		return "", fmt.Errorf("%w: create container for workload %s: %v", ErrRuntime, w.Spec.ID, err)
	}
	if err := s.runtime.StartContainer(ctx, containerID); err != nil {
		return "", fmt.Errorf("%w: start container for workload %s: %v", ErrRuntime, w.Spec.ID, err)
	}
	return containerID, nil
}

// commitPlacement inserts the scheduled workload into the table and settles
// resource accounting. Re-scheduling an existing id overwrites its record,
// releases the previous node's allocation and retires the old container.
func (s *Scheduler) commitPlacement(ctx context.Context, w *types.Workload, containerID string, result types.SchedulingResult) {
	scheduled := &types.ScheduledWorkload{
		Workload:    *w,
		NodeID:      result.NodeID,
		ContainerID: containerID,
		Status:      types.WorkloadStatusRunning,
		ScheduledAt: result.ScheduledAt,
	}

	s.workloadsMu.Lock()
	prev := s.workloads[result.WorkloadID]
	s.workloads[result.WorkloadID] = scheduled
	s.workloadsMu.Unlock()

	if prev != nil {
		if err := s.monitor.Release(prev.NodeID, prev.Workload.Spec.Resources); err != nil {
			s.logger.Debug().Err(err).Str("node_id", prev.NodeID).Msg("release on overwrite")
		}
		if prev.ContainerID != "" && prev.ContainerID != containerID {
			if err := s.runtime.RemoveContainer(ctx, prev.ContainerID); err != nil {
				s.logger.Warn().Err(err).Str("container_id", prev.ContainerID).Msg("failed to retire replaced container")
			}
		}
	}
	if err := s.monitor.Allocate(result.NodeID, w.Spec.Resources); err != nil {
		s.logger.Warn().Err(err).Str("node_id", result.NodeID).Msg("failed to account placement")
	}

	s.placements.RecordSuccess(result)
	s.checkpointWorkload(scheduled)
}

// containerSpec derives the runtime container specification from a
// workload. Container names carry a random suffix so that replacement and
// rescheduling never collide with a container being retired.
func containerSpec(w *types.Workload) *types.ContainerSpec {
	return &types.ContainerSpec{
		Name:          fmt.Sprintf("%s.%s", w.Spec.ID, uuid.New().String()[:8]),
		Image:         w.Spec.Image,
		Command:       w.Spec.Command,
		Env:           w.Spec.Env,
		WorkingDir:    w.Spec.WorkingDir,
		CPUCores:      w.Spec.Resources.CPUCores,
		MemoryMB:      w.Spec.Resources.MemoryMB,
		StorageGB:     w.Spec.Resources.StorageGB,
		RestartPolicy: "always",
	}
}

// validateSpec enforces the hard minimums no workload may skip
func validateSpec(w *types.Workload) error {
	if w == nil || w.Spec.ID == "" {
		return fmt.Errorf("%w: missing workload id", ErrInvalidWorkload)
	}
	if w.Spec.Image == "" {
		return fmt.Errorf("%w: workload %s has no image", ErrInvalidWorkload, w.Spec.ID)
	}
	if w.Spec.Resources.CPUCores <= 0 {
		return fmt.Errorf("%w: workload %s must request cpu", ErrInvalidWorkload, w.Spec.ID)
	}
	if w.Spec.Resources.MemoryMB <= 0 {
		return fmt.Errorf("%w: workload %s must request memory", ErrInvalidWorkload, w.Spec.ID)
	}
	if w.Spec.Resources.StorageGB < 0 {
		return fmt.Errorf("%w: workload %s storage request is negative", ErrInvalidWorkload, w.Spec.ID)
	}
	return nil
}
