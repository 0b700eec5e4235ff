// Package registry loads the static list of monitored services.
//
// The list is a JSON array of {name, url, enabled} records read once at
// startup. Malformed entries are skipped, disabled entries are dropped and
// an unreadable file degrades to an empty registry instead of stopping the
// monitor.
package registry
