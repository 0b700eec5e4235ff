package healthcheck

import "github.com/angeloszaimis/health-monitor/internal/state"

// DefaultReminderEvery is how often a sustained outage is re-announced.
const DefaultReminderEvery = 5

// Alert is the kind of notification a transition calls for.
type Alert int

const (
	AlertNone Alert = iota
	AlertFailure
	AlertReminder
	AlertRecovery
)

func (a Alert) String() string {
	switch a {
	case AlertFailure:
		return "failure"
	case AlertReminder:
		return "reminder"
	case AlertRecovery:
		return "recovery"
	default:
		return "none"
	}
}

// Policy decides which transitions are worth a notification.
type Policy struct {
	ReminderEvery int
}

// Decide maps a transition to an alert. The first failure always alerts,
// later failures only on multiples of ReminderEvery.
func (p Policy) Decide(tr state.Transition) Alert {
	every := p.ReminderEvery
	if every <= 0 {
		every = DefaultReminderEvery
	}

	switch tr.Kind {
	case state.BecameUnhealthy:
		return AlertFailure
	case state.StillUnhealthy:
		if tr.ConsecutiveFailures > 1 && tr.ConsecutiveFailures%every == 0 {
			return AlertReminder
		}
		return AlertNone
	case state.Recovered:
		return AlertRecovery
	default:
		return AlertNone
	}
}
