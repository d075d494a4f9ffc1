/*
Package selector implements candidate node selection.

SelectCandidates narrows the node table to the set eligible for a workload:
only Ready nodes, no NoSchedule/NoExecute taints, and sufficient resources.
The result is an unordered set of node IDs; scoring and ordering are the
optimizer's concern. An empty set is a valid, terminal answer meaning no node
in the cluster can host the workload.
*/
package selector
