package autoscaler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stratohq/strato/pkg/types"
)

func usage(cpuPct, memPct float64) types.ResourceUsage {
	return types.ResourceUsage{
		CPUTotal:      100,
		CPUAvailable:  100 - cpuPct,
		MemoryTotalMB: 10000,
		MemoryAvailMB: int64(10000 - memPct*100),
	}
}

func view(cluster types.ResourceUsage, perNode map[string]types.ResourceUsage) ClusterView {
	return ClusterView{
		Cluster:          cluster,
		PerNode:          perNode,
		WorkloadsPerNode: map[string]int{},
	}
}

func TestNoDecisionWhenHealthy(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())
	v := view(usage(50, 50), map[string]types.ResourceUsage{
		"node-a": usage(50, 50),
		"node-b": usage(50, 50),
	})
	assert.Empty(t, a.MakeScalingDecisions(v))
}

func TestScaleUpOnCPUPressure(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())
	v := view(usage(90, 50), map[string]types.ResourceUsage{
		"node-a": usage(90, 50),
	})

	decisions := a.MakeScalingDecisions(v)
	assert.Len(t, decisions, 1)
	assert.Equal(t, types.ScaleUp, decisions[0].Action)
	assert.Equal(t, 1, decisions[0].NodeCount)
	assert.NotEmpty(t, decisions[0].Reason)
}

func TestScaleUpOnMemoryPressure(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())
	v := view(usage(50, 90), map[string]types.ResourceUsage{
		"node-a": usage(50, 90),
	})

	decisions := a.MakeScalingDecisions(v)
	assert.Len(t, decisions, 1)
	assert.Equal(t, types.ScaleUp, decisions[0].Action)
}

func TestScaleUpRespectsMaxNodes(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxNodes = 2
	a := NewAutoScaler(policy)

	v := view(usage(90, 90), map[string]types.ResourceUsage{
		"node-a": usage(90, 90),
		"node-b": usage(90, 90),
	})
	assert.Empty(t, a.MakeScalingDecisions(v))
}

func TestScaleUpStepCappedByMaxNodes(t *testing.T) {
	policy := DefaultPolicy()
	policy.ScaleStep = 3
	policy.MaxNodes = 2
	a := NewAutoScaler(policy)

	v := view(usage(90, 50), map[string]types.ResourceUsage{
		"node-a": usage(90, 50),
	})
	decisions := a.MakeScalingDecisions(v)
	assert.Len(t, decisions, 1)
	assert.Equal(t, 1, decisions[0].NodeCount)
}

func TestForecastDrivenScaleUp(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())
	v := view(usage(50, 50), map[string]types.ResourceUsage{
		"node-a": usage(50, 50),
	})
	v.Demand = types.ResourceDemand{CPUCores: 200, MemoryMB: 100, Confidence: 0.9}

	decisions := a.MakeScalingDecisions(v)
	assert.Len(t, decisions, 1)
	assert.Equal(t, types.ScaleUp, decisions[0].Action)
}

func TestLowConfidenceForecastIgnored(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())
	v := view(usage(50, 50), map[string]types.ResourceUsage{
		"node-a": usage(50, 50),
	})
	v.Demand = types.ResourceDemand{CPUCores: 200, MemoryMB: 100, Confidence: 0.1}

	assert.Empty(t, a.MakeScalingDecisions(v))
}

func TestScaleDownIdleNodes(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())
	v := view(usage(30, 30), map[string]types.ResourceUsage{
		"node-a": usage(50, 50),
		"node-b": usage(5, 5),
		"node-c": usage(5, 5),
	})

	decisions := a.MakeScalingDecisions(v)
	assert.Len(t, decisions, 1)
	assert.Equal(t, types.ScaleDown, decisions[0].Action)
	assert.Equal(t, []string{"node-b", "node-c"}, decisions[0].NodeIDs)
}

func TestScaleDownSkipsNodesWithWorkloads(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())
	v := view(usage(30, 30), map[string]types.ResourceUsage{
		"node-a": usage(50, 50),
		"node-b": usage(5, 5),
	})
	v.WorkloadsPerNode["node-b"] = 2

	assert.Empty(t, a.MakeScalingDecisions(v))
}

func TestScaleDownRespectsMinNodes(t *testing.T) {
	policy := DefaultPolicy()
	policy.MinNodes = 2
	a := NewAutoScaler(policy)

	v := view(usage(5, 5), map[string]types.ResourceUsage{
		"node-a": usage(5, 5),
		"node-b": usage(5, 5),
		"node-c": usage(5, 5),
	})

	decisions := a.MakeScalingDecisions(v)
	assert.Len(t, decisions, 1)
	assert.Len(t, decisions[0].NodeIDs, 1)
}

func TestCooldownSuppressesDecisions(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())
	v := view(usage(90, 90), map[string]types.ResourceUsage{
		"node-a": usage(90, 90),
	})

	decisions := a.MakeScalingDecisions(v)
	assert.Len(t, decisions, 1)

	a.MarkExecuted(decisions[0])
	assert.Empty(t, a.MakeScalingDecisions(v))
}

func TestCooldownExpires(t *testing.T) {
	policy := DefaultPolicy()
	policy.Cooldown = 10 * time.Millisecond
	a := NewAutoScaler(policy)

	v := view(usage(90, 90), map[string]types.ResourceUsage{
		"node-a": usage(90, 90),
	})

	a.MarkExecuted(a.MakeScalingDecisions(v)[0])
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, a.MakeScalingDecisions(v), 1)
}

func TestMarkExecutedCounters(t *testing.T) {
	a := NewAutoScaler(DefaultPolicy())

	a.MarkExecuted(types.ScalingDecision{Action: types.ScaleUp})
	a.MarkExecuted(types.ScalingDecision{Action: types.ScaleDown})
	a.MarkExecuted(types.ScalingDecision{Action: types.ScaleNone})

	stats := a.Stats()
	assert.Equal(t, 1, stats.ScaleUps)
	assert.Equal(t, 1, stats.ScaleDowns)
	assert.False(t, stats.LastAction.IsZero())
}
