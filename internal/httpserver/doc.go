// Package httpserver wraps net/http's server with address validation,
// an explicit listen step and a bounded graceful shutdown.
package httpserver
