/*
Package state provides the optional persistence hook for scheduler
bookkeeping.

The scheduler keeps its node and workload tables in memory; when a Manager
is injected via SetStateManager, every table mutation is additionally
checkpointed. Checkpointing is best-effort by design: persistence failures
are logged and never affect a scheduling outcome, and the in-memory tables
remain the source of truth while the process runs.

BoltManager is the shipped implementation, a single-file bbolt database with
one bucket per table and JSON-encoded records.
*/
package state
