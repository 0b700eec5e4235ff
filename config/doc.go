// Package config handles loading and parsing of configuration from YAML files,
// a local .env file and environment variables. It defines the monitor's
// configuration structure: the liveness server, logging, the monitoring
// cadence, the notification channels and the shutdown grace period.
package config
