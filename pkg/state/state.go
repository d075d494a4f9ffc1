package state

import (
	"github.com/stratohq/strato/pkg/types"
)

// Manager is the persistence hook the scheduler accepts via SetStateManager.
// Checkpointing is best-effort: a failure is logged, never propagated into a
// scheduling outcome.
type Manager interface {
	// SaveNode persists a node's current record
	SaveNode(node *types.ClusterNode) error

	// DeleteNode removes a node's record
	DeleteNode(nodeID string) error

	// SaveWorkload persists a scheduled workload's current record
	SaveWorkload(w *types.ScheduledWorkload) error

	// DeleteWorkload removes a workload's record
	DeleteWorkload(workloadID string) error

	// LoadNodes returns all persisted nodes
	LoadNodes() ([]*types.ClusterNode, error)

	// LoadWorkloads returns all persisted workloads
	LoadWorkloads() ([]*types.ScheduledWorkload, error)

	// Close releases the underlying store
	Close() error
}
