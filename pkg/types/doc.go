/*
Package types defines the shared data model for the Strato scheduler core.

All cluster state flows through these types: nodes and their advertised
resources, workload specifications, placement records, rescheduling and
scaling decisions, and the aggregate statistics surface. The package has no
behavior beyond small derived accessors and no dependencies outside the
standard library, so every other package can import it without cycles.

# Core Types

ClusterNode: A schedulable member of the cluster with capacity, labels,
taints, status, and heartbeat bookkeeping. The Scheduler's node table is the
sole owner of ClusterNode values.

Workload / WorkloadSpec: The immutable unit of submission. A spec with
CPUCores == 0 or MemoryMB == 0 is rejected before any candidate search.

ScheduledWorkload: A workload bound to a node, carrying the container ID
handed back by the runtime and a lifecycle status
(pending → running → succeeded/failed/unknown).

ScalingDecision / ReschedulingResult: Outputs of the AutoScaler and the
rebalancing algorithms. Decisions are proposals; only the Scheduler executes
them.

# Status Enums

NodeStatus, TaintEffect, WorkloadStatus, ScalingAction and
ReschedulingStrategy are closed string enums. Switch statements over them are
expected to be exhaustive; adding a variant should be a deliberate,
cross-cutting change.
*/
package types
