/*
Package monitor implements the resource monitor: per-node and cluster-wide
utilization snapshots.

Nodes are registered with their advertised capacity; placements reserve
resources via Allocate and return them via Release. A node may additionally
report measured utilization (for example with a heartbeat), which then takes
precedence over the allocation-derived view, so snapshots reflect reality
rather than reservations whenever telemetry is present.

Utilization policy lives with the callers: the monitor returns raw
ResourceUsage snapshots and deliberately embeds no "overloaded" threshold,
keeping measurement separate from the policies (autoscaling, load balancing)
that interpret it.
*/
package monitor
