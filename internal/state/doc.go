// Package state holds the in-memory health record of every monitored
// service.
//
// Each Record runs a two-state machine (healthy, unhealthy) and counts
// consecutive probe failures. The checker is the only writer; other
// readers get copies through Snapshot and Healthy.
package state
