package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stratohq/strato/pkg/types"
)

// FakeState tracks a fake container's lifecycle
type FakeState string

const (
	FakeCreated FakeState = "created"
	FakeRunning FakeState = "running"
	FakeStopped FakeState = "stopped"
)

// Fake is an in-memory Runtime for tests and dev mode. Failure injection is
// per-operation: set FailCreate or FailStart to force errors.
type Fake struct {
	mu         sync.Mutex
	containers map[string]FakeState
	specs      map[string]types.ContainerSpec

	FailCreate error
	FailStart  error
}

// NewFake creates an empty fake runtime
func NewFake() *Fake {
	return &Fake{
		containers: make(map[string]FakeState),
		specs:      make(map[string]types.ContainerSpec),
	}
}

func (f *Fake) CreateContainer(_ context.Context, spec *types.ContainerSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailCreate != nil {
		return "", f.FailCreate
	}

	id := spec.Name
	if id == "" {
		id = uuid.New().String()
	}
	f.containers[id] = FakeCreated
	f.specs[id] = *spec
	return id, nil
}

func (f *Fake) StartContainer(_ context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailStart != nil {
		return f.FailStart
	}
	if _, ok := f.containers[containerID]; !ok {
		return fmt.Errorf("container %s not found", containerID)
	}
	f.containers[containerID] = FakeRunning
	return nil
}

func (f *Fake) StopContainer(_ context.Context, containerID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.containers[containerID]; !ok {
		return nil
	}
	f.containers[containerID] = FakeStopped
	return nil
}

func (f *Fake) RemoveContainer(_ context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.containers, containerID)
	delete(f.specs, containerID)
	return nil
}

// State returns the lifecycle state of a fake container
func (f *Fake) State(containerID string) (FakeState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, ok := f.containers[containerID]
	return state, ok
}

// Spec returns the spec a container was created with
func (f *Fake) Spec(containerID string) (types.ContainerSpec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	spec, ok := f.specs[containerID]
	return spec, ok
}

// Count returns the number of containers the fake knows about
func (f *Fake) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.containers)
}
