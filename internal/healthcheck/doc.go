// Package healthcheck runs health-check passes over the registered services.
//
// A pass probes every service with an HTTP GET (only status 200 counts as
// healthy), feeds each outcome into the service's state record and sends a
// notification when the transition policy asks for one: on the first
// failure, on every Nth consecutive failure after that, and on recovery.
// Summarize reports the currently healthy services.
package healthcheck
