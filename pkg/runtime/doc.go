/*
Package runtime provides the container runtime abstraction and its
implementations.

The Runtime interface is the narrow contract the scheduler depends on:
create, start, stop and remove containers. Two implementations ship:

ContainerdRuntime talks to a containerd daemon in the "strato" namespace,
translating the workload-derived ContainerSpec into an OCI spec with CPU
quota/period and memory cgroup limits mapped 1:1 from the workload's
requirements.

Fake is an in-memory implementation for tests and `strato serve --dev`.
It tracks container lifecycle states and supports failure injection so
scheduler error paths can be exercised without a daemon.
*/
package runtime
