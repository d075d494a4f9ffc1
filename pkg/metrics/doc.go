/*
Package metrics exports scheduler statistics as Prometheus metrics.

Gauges are package-level and registered at init; the Collector polls a
StatsSource (in practice the Scheduler) on a fixed interval and copies its
aggregate counters into the gauges. Handler returns the standard promhttp
handler for mounting at /metrics.
*/
package metrics
