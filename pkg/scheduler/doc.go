/*
Package scheduler is the Strato cluster scheduler core: it decides where
workloads run, when the cluster scales, and how placement rebalances as
conditions change.

# Architecture

A workload submission flows through a fixed pipeline:

	┌─────────────────────────────────────────────────────────┐
	│                  ScheduleWorkload                       │
	│                                                         │
	│  1. Validate spec (cpu > 0, memory > 0)                 │
	│  2. Policy engine gate (fail fast, declaration order)   │
	│  3. Collect Ready nodes                                 │
	│  4. Node selector → candidate set                       │
	│  5. Multi-objective optimizer → best node               │
	│  6. Runtime create + start container                    │
	│  7. Predictor records the placement                     │
	│  8. Broadcast workload.scheduled                        │
	└─────────────────────────────────────────────────────────┘

Each stage has its own failure exit (ErrInvalidWorkload,
ErrPolicyViolation, ErrNoAvailableNodes, ErrNoSuitableNodes, ErrRuntime)
and there is no retry inside the call; retry policy belongs to the queue
consumer above it. The placement is committed once the container starts:
a bookkeeping failure after that point is surfaced but never rolls back a
running workload.

# State Ownership

The Scheduler exclusively owns three tables, each behind its own
read-write lock: the node table, the workload table, and the placement
queue. Locks are held only across table access, never across a call into
the Runtime or any other collaborator. Concurrent ScheduleWorkload calls
may race for the same candidate node on stale snapshots; that is accepted
best-effort placement, corrected by rebalancing.

# Background Tasks

Start spawns two loops: the scheduling task drains the priority queue,
and the monitoring task runs autoscaling rounds. Stop closes their stop
channel and does not wait for in-flight work, so it is best-effort
cleanup rather than a graceful shutdown.

# Rebalancing

RescheduleWorkloads dispatches to three independent algorithms:
load-balance (move workloads off nodes above the overload thresholds),
consolidation (pack workloads off lightly-loaded nodes so the autoscaler
can reclaim them), and upgrade-nodes (fully drain named nodes for
maintenance). All three are best-effort: a failed move is recorded in its
ReschedulingResult and never aborts the batch.

# Collaborators

The Runtime is required. NetworkManager, StateManager and Provisioner are
optional injections: the state manager checkpoints tables to disk
best-effort, the provisioner executes scale-up decisions, and the network
manager is reserved for future overlay integration.
*/
package scheduler
