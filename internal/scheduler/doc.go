// Package scheduler runs periodic tasks on fixed-rate tickers while
// guaranteeing that at most one task body executes at a time. A tick that
// arrives while another task is running is dropped, not queued.
package scheduler
