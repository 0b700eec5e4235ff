// Package logger builds the structured slog loggers used across the monitor.
// Production environments log JSON, every other environment logs text, and
// each record carries the environment and the component that emitted it.
package logger
