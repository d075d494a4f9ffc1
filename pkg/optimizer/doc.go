/*
Package optimizer implements multi-objective placement scoring.

Given a workload and its candidate node set, FindOptimalPlacement evaluates
every candidate with a weighted sum of three objectives:

  - bin-packing fit: projected utilization after placement; higher is denser
  - headroom preservation: slack remaining after placement
  - affinity: workload "affinity/<key>" and "anti-affinity/<key>" labels
    matched against node labels, plus a penalty for PreferNoSchedule taints

The optimizer is a pure function of its inputs. Candidates are scored in
sorted order and ties resolve toward the lower node ID, so a fixed node
table, workload and candidate set always yield the same placement. That
determinism is what makes regression tests on placement behavior possible.

The optimizer tolerates stale snapshots: a concurrent placement may fill a
node between candidate selection and scoring. This is accepted best-effort
placement, corrected later by rebalancing.
*/
package optimizer
