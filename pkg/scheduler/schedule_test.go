package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratohq/strato/pkg/policy"
	"github.com/stratohq/strato/pkg/runtime"
	"github.com/stratohq/strato/pkg/types"
)

func TestScheduleWorkloadSuccess(t *testing.T) {
	s, fake := newTestScheduler(t)
	assert.NoError(t, s.AddNode(testNode("node-a")))

	result, err := s.ScheduleWorkload(context.Background(), testWorkload("web-1", 1, 1024))
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "web-1", result.WorkloadID)
	assert.Equal(t, "node-a", result.NodeID)
	assert.False(t, result.ScheduledAt.IsZero())

	w, ok := s.GetWorkload("web-1")
	assert.True(t, ok)
	assert.Equal(t, "node-a", w.NodeID)
	assert.Equal(t, types.WorkloadStatusRunning, w.Status)
	assert.True(t, strings.HasPrefix(w.ContainerID, "web-1."))

	state, running := fake.State(w.ContainerID)
	assert.True(t, running)
	assert.Equal(t, runtime.FakeRunning, state)

	// Resource accounting reflects the placement
	u, err := s.Monitor().NodeUsage("node-a")
	assert.NoError(t, err)
	assert.InDelta(t, 3, u.CPUAvailable, 1e-9)
	assert.Equal(t, int64(7168), u.MemoryAvailMB)
}

func TestScheduleWorkloadValidation(t *testing.T) {
	s, fake := newTestScheduler(t)
	assert.NoError(t, s.AddNode(testNode("node-a")))

	tests := []struct {
		name string
		w    *types.Workload
	}{
		{"nil workload", nil},
		{"missing id", testWorkload("", 1, 1024)},
		{"missing image", &types.Workload{Spec: types.WorkloadSpec{
			ID:        "w",
			Resources: types.ResourceRequirements{CPUCores: 1, MemoryMB: 1024},
		}}},
		{"zero cpu", testWorkload("w", 0, 1024)},
		{"negative cpu", testWorkload("w", -1, 1024)},
		{"zero memory", testWorkload("w", 1, 0)},
		{"negative storage", func() *types.Workload {
			w := testWorkload("w", 1, 1024)
			w.Spec.Resources.StorageGB = -1
			return w
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ScheduleWorkload(context.Background(), tt.w)
			assert.ErrorIs(t, err, ErrInvalidWorkload)
		})
	}

	// Validation rejections never touch the runtime
	assert.Equal(t, 0, fake.Count())
	assert.Equal(t, len(tests), s.Stats().Placements.FailedPlacements)
}

func TestScheduleWorkloadPolicyRejection(t *testing.T) {
	s, fake := newTestScheduler(t)
	assert.NoError(t, s.AddNode(testNode("node-a")))
	s.Policies().Register(&policy.RequiredLabels{Labels: map[string]string{"team": "payments"}})

	w := testWorkload("web-1", 1, 1024)
	_, err := s.ScheduleWorkload(context.Background(), w)
	assert.ErrorIs(t, err, ErrPolicyViolation)
	assert.Equal(t, 0, fake.Count())

	// The same workload passes once labeled
	w.Spec.Labels = map[string]string{"team": "payments"}
	result, err := s.ScheduleWorkload(context.Background(), w)
	assert.NoError(t, err)
	assert.Equal(t, "node-a", result.NodeID)
}

func TestScheduleWorkloadNoNodes(t *testing.T) {
	s, _ := newTestScheduler(t)

	_, err := s.ScheduleWorkload(context.Background(), testWorkload("web-1", 1, 1024))
	assert.ErrorIs(t, err, ErrNoAvailableNodes)
}

func TestScheduleWorkloadNoSuitableNodes(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.NoError(t, s.AddNode(testNode("node-a")))

	// Requests more than any node can offer
	_, err := s.ScheduleWorkload(context.Background(), testWorkload("web-1", 32, 1024))
	assert.ErrorIs(t, err, ErrNoSuitableNodes)
}

func TestScheduleWorkloadTaintedNodeExcluded(t *testing.T) {
	s, _ := newTestScheduler(t)
	node := testNode("node-a")
	node.Taints = []types.NodeTaint{{Key: "dedicated", Effect: types.TaintNoSchedule}}
	assert.NoError(t, s.AddNode(node))

	_, err := s.ScheduleWorkload(context.Background(), testWorkload("web-1", 1, 1024))
	assert.ErrorIs(t, err, ErrNoSuitableNodes)
}

func TestScheduleWorkloadRuntimeFailure(t *testing.T) {
	s, fake := newTestScheduler(t)
	assert.NoError(t, s.AddNode(testNode("node-a")))

	fake.FailCreate = errors.New("containerd unavailable")
	_, err := s.ScheduleWorkload(context.Background(), testWorkload("web-1", 1, 1024))
	assert.ErrorIs(t, err, ErrRuntime)

	// Nothing was committed
	_, ok := s.GetWorkload("web-1")
	assert.False(t, ok)
	u, _ := s.Monitor().NodeUsage("node-a")
	assert.InDelta(t, 4, u.CPUAvailable, 1e-9)
}

func TestScheduleWorkloadOverwriteReplacesContainer(t *testing.T) {
	s, fake := newTestScheduler(t)
	assert.NoError(t, s.AddNode(testNode("node-a")))
	ctx := context.Background()

	_, err := s.ScheduleWorkload(ctx, testWorkload("web-1", 1, 1024))
	assert.NoError(t, err)
	first, _ := s.GetWorkload("web-1")

	_, err = s.ScheduleWorkload(ctx, testWorkload("web-1", 2, 2048))
	assert.NoError(t, err)
	second, _ := s.GetWorkload("web-1")

	assert.NotEqual(t, first.ContainerID, second.ContainerID)
	_, oldExists := fake.State(first.ContainerID)
	assert.False(t, oldExists)
	assert.Equal(t, 1, fake.Count())

	// Accounting reflects only the new request
	u, _ := s.Monitor().NodeUsage("node-a")
	assert.InDelta(t, 2, u.CPUAvailable, 1e-9)
	assert.Equal(t, int64(6144), u.MemoryAvailMB)
}

func TestSubmitAndDrainQueueByPriority(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.NoError(t, s.AddNode(testNode("node-a")))

	s.Submit(testWorkload("low-1", 1, 1024), 0)
	s.Submit(testWorkload("high-1", 1, 1024), 10)
	assert.Equal(t, 2, s.PendingCount())

	s.drainQueue(context.Background())
	assert.Equal(t, 0, s.PendingCount())

	// Both placed; higher priority committed first
	_, ok := s.GetWorkload("high-1")
	assert.True(t, ok)
	_, ok = s.GetWorkload("low-1")
	assert.True(t, ok)
}

func TestDrainQueueRequeuesOnCapacity(t *testing.T) {
	s, _ := newTestScheduler(t)

	// No nodes: capacity rejection, so the workload stays queued
	s.Submit(testWorkload("web-1", 1, 1024), 0)
	s.drainQueue(context.Background())
	assert.Equal(t, 1, s.PendingCount())

	// Once a node appears the next round places it
	assert.NoError(t, s.AddNode(testNode("node-a")))
	s.drainQueue(context.Background())
	assert.Equal(t, 0, s.PendingCount())
	_, ok := s.GetWorkload("web-1")
	assert.True(t, ok)
}

func TestDrainQueueDropsManifestErrors(t *testing.T) {
	s, _ := newTestScheduler(t)
	assert.NoError(t, s.AddNode(testNode("node-a")))

	// Invalid spec is dropped, not retried forever
	s.Submit(testWorkload("broken", 0, 1024), 0)
	s.drainQueue(context.Background())
	assert.Equal(t, 0, s.PendingCount())

	_, ok := s.GetWorkload("broken")
	assert.False(t, ok)
}

func TestContainerSpecDerivation(t *testing.T) {
	w := testWorkload("web-1", 2, 2048)
	w.Spec.Command = []string{"nginx", "-g", "daemon off;"}
	w.Spec.Env = []string{"PORT=8080"}
	w.Spec.WorkingDir = "/srv"
	w.Spec.Resources.StorageGB = 10

	spec := containerSpec(w)
	assert.True(t, strings.HasPrefix(spec.Name, "web-1."))
	assert.Equal(t, w.Spec.Image, spec.Image)
	assert.Equal(t, w.Spec.Command, spec.Command)
	assert.Equal(t, w.Spec.Env, spec.Env)
	assert.Equal(t, "/srv", spec.WorkingDir)
	assert.InDelta(t, 2, spec.CPUCores, 1e-9)
	assert.Equal(t, int64(2048), spec.MemoryMB)
	assert.Equal(t, int64(10), spec.StorageGB)
	assert.Equal(t, "always", spec.RestartPolicy)

	// Names are unique across derivations of the same workload
	assert.NotEqual(t, spec.Name, containerSpec(w).Name)
}
