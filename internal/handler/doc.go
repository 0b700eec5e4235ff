// Package handler implements the monitor's HTTP endpoints: the liveness
// probe, the per-service status report, and request logging middleware.
package handler
