package healthcheck

import (
	"fmt"
	"strings"
	"time"

	"github.com/angeloszaimis/health-monitor/internal/registry"
)

func failureMessage(t registry.Target, failures int, cause error) string {
	reason := "unknown error"
	if cause != nil {
		reason = cause.Error()
	}
	return fmt.Sprintf("⚠️ %s health check failed!\nURL: %s\nConsecutive failures: %d\nError: %s",
		t.Name, t.URL, failures, reason)
}

func reminderMessage(t registry.Target, failures int) string {
	return fmt.Sprintf("⚠️ %s still unhealthy! Consecutive failures: %d", t.Name, failures)
}

func recoveryMessage(t registry.Target) string {
	return fmt.Sprintf("🎉 %s has recovered and is now healthy!", t.Name)
}

func summaryMessage(healthy []string, uptime time.Duration) string {
	return fmt.Sprintf("✅ Healthy services report\nServices: %s\nMonitor uptime: %s",
		strings.Join(healthy, ", "), FormatUptime(uptime))
}

// FormatUptime renders d as whole hours and minutes, e.g. "27h 5m".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
