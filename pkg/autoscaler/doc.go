/*
Package autoscaler decides when the cluster should grow or shrink.

Each decision round combines the resource monitor's current usage with the
predictor's demand forecast and compares both against policy thresholds.
The output is a list of proposals: scale up by N nodes, scale down specific
idle nodes, or nothing.

The autoscaler never mutates cluster state. The Scheduler executes each
decision independently and reports successes back via MarkExecuted, which
starts the cooldown window. Keeping execution in the Scheduler preserves a
single source of truth for cluster membership changes.

A node is a scale-down candidate only when it runs zero workloads and sits
below both idle thresholds; MinNodes is always respected. Forecast-driven
scale-ups require the predictor's confidence to clear the policy's
DemandConfidence floor, so a cold predictor cannot grow the cluster.
*/
package autoscaler
