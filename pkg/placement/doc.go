/*
Package placement records placement outcomes and aggregates them into the
statistics surfaced by Scheduler.Stats.

The engine holds counters only: total and failed placements, per-node
placement counts, and the running mean of optimizer scores. It takes no part
in deciding or executing placements.
*/
package placement
