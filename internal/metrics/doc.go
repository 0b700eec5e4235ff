// Package metrics collects monitor events and exposes them as Prometheus
// series.
//
// Producers push MetricEvents through Record, which never blocks; a single
// goroutine started with Start applies them to the registry. Handler serves
// the registry in the Prometheus exposition format.
package metrics
