package scheduler

import (
	"context"
	"fmt"

	"github.com/stratohq/strato/pkg/autoscaler"
	"github.com/stratohq/strato/pkg/events"
	"github.com/stratohq/strato/pkg/predictor"
	"github.com/stratohq/strato/pkg/types"
)

// CheckAutoscaling pulls proposals from the autoscaler, executes each one
// independently, and returns only the successfully-executed subset. The
// autoscaler proposes; this method is the sole executor of cluster
// membership changes.
func (s *Scheduler) CheckAutoscaling(ctx context.Context) ([]types.ScalingDecision, error) {
	view := autoscaler.ClusterView{
		Cluster:          s.monitor.ClusterUsage(),
		PerNode:          s.monitor.AllNodeUsage(),
		Demand:           s.predictor.PredictDemand(predictor.DemandContext{Horizon: s.cfg.MonitoringInterval}),
		WorkloadsPerNode: s.workloadCountByNode(),
	}

	decisions := s.autoscaler.MakeScalingDecisions(view)
	if len(decisions) == 0 {
		return nil, nil
	}

	var executed []types.ScalingDecision
	for _, decision := range decisions {
		if err := s.executeScalingDecision(ctx, decision); err != nil {
			s.logger.Warn().Err(err).
				Str("action", string(decision.Action)).
				Msg("scaling decision failed to execute")
			continue
		}
		s.autoscaler.MarkExecuted(decision)
		executed = append(executed, decision)

		s.broker.Publish(events.New(events.EventScalingTriggered, decision.Reason, map[string]string{
			"action":     string(decision.Action),
			"node_count": fmt.Sprintf("%d", decision.NodeCount),
		}))
		s.logger.Info().
			Str("action", string(decision.Action)).
			Str("reason", decision.Reason).
			Msg("scaling decision executed")
	}
	return executed, nil
}

// executeScalingDecision applies one decision to the cluster
func (s *Scheduler) executeScalingDecision(ctx context.Context, decision types.ScalingDecision) error {
	switch decision.Action {
	case types.ScaleUp:
		return s.scaleUp(ctx, decision.NodeCount)
	case types.ScaleDown:
		return s.scaleDown(ctx, decision.NodeIDs)
	case types.ScaleNone:
		return nil
	default:
		return fmt.Errorf("unknown scaling action %q", decision.Action)
	}
}

// scaleUp provisions and admits count new nodes. Requires a Provisioner;
// nodes admitted before a later provisioning failure stay in the cluster.
func (s *Scheduler) scaleUp(ctx context.Context, count int) error {
	s.collabMu.RLock()
	prov := s.provisioner
	s.collabMu.RUnlock()
	if prov == nil {
		return fmt.Errorf("no provisioner configured for scale-up")
	}

	for i := 0; i < count; i++ {
		node, err := prov.ProvisionNode(ctx)
		if err != nil {
			return fmt.Errorf("provision node %d of %d: %w", i+1, count, err)
		}
		if err := s.AddNode(node); err != nil {
			return fmt.Errorf("admit provisioned node %s: %w", node.ID, err)
		}
	}
	return nil
}

// scaleDown drains and removes the named idle nodes
func (s *Scheduler) scaleDown(ctx context.Context, nodeIDs []string) error {
	for _, nodeID := range nodeIDs {
		if err := s.RemoveNode(ctx, nodeID, true); err != nil {
			return fmt.Errorf("remove idle node %s: %w", nodeID, err)
		}
	}
	return nil
}
