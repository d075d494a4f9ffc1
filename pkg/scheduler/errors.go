package scheduler

import (
	"errors"
)

// Error taxonomy for scheduler operations. Callers distinguish variants with
// errors.Is: NoSuitableNodes means "try another node pool", InvalidWorkload
// and PolicyViolation mean "fix your manifest", NoAvailableNodes means the
// cluster is out of capacity.
var (
	// ErrInvalidWorkload is returned when a workload spec fails basic
	// validation (zero cpu or memory, missing id)
	ErrInvalidWorkload = errors.New("invalid workload")

	// ErrPolicyViolation is returned when the policy engine rejects a
	// workload
	ErrPolicyViolation = errors.New("policy violation")

	// ErrNoAvailableNodes is returned when the node table contains no Ready
	// nodes
	ErrNoAvailableNodes = errors.New("no available nodes")

	// ErrNoSuitableNodes is returned when no candidate survives selection
	// and optimization
	ErrNoSuitableNodes = errors.New("no suitable nodes")

	// ErrInvalidNode is returned when a node fails admission at AddNode
	ErrInvalidNode = errors.New("invalid node")

	// ErrRuntime wraps container runtime failures
	ErrRuntime = errors.New("runtime error")

	// ErrResourceMonitoring wraps resource monitor failures
	ErrResourceMonitoring = errors.New("resource monitoring error")

	// ErrPrediction wraps workload predictor failures
	ErrPrediction = errors.New("prediction error")
)
