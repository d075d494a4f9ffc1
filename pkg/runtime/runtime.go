package runtime

import (
	"context"
	"time"

	"github.com/stratohq/strato/pkg/types"
)

// Runtime is the narrow contract the scheduler requires of the container
// runtime. The scheduler never inspects runtime internals; it derives a
// ContainerSpec from a workload and hands it over.
type Runtime interface {
	// CreateContainer creates a container from the spec and returns its ID
	CreateContainer(ctx context.Context, spec *types.ContainerSpec) (string, error)

	// StartContainer starts a previously created container
	StartContainer(ctx context.Context, containerID string) error

	// StopContainer stops a running container, escalating after the timeout
	StopContainer(ctx context.Context, containerID string, timeout time.Duration) error

	// RemoveContainer deletes a container and its resources
	RemoveContainer(ctx context.Context, containerID string) error
}
