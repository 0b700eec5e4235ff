package state

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

const (
	StateHealthy   = "healthy"
	StateUnhealthy = "unhealthy"

	EventFail    = "fail"
	EventRecover = "recover"
)

// TransitionKind describes what a probe outcome did to a record.
type TransitionKind int

const (
	// NoChange means a success on a healthy record.
	NoChange TransitionKind = iota
	// BecameUnhealthy means the first failure after being healthy.
	BecameUnhealthy
	// StillUnhealthy means another failure on an unhealthy record.
	StillUnhealthy
	// Recovered means a success on an unhealthy record.
	Recovered
)

func (k TransitionKind) String() string {
	switch k {
	case NoChange:
		return "no_change"
	case BecameUnhealthy:
		return "became_unhealthy"
	case StillUnhealthy:
		return "still_unhealthy"
	case Recovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Transition is the result of applying one probe outcome.
type Transition struct {
	Kind                TransitionKind
	ConsecutiveFailures int
}

// Record is the health of one service. Healthy records always have zero
// consecutive failures. Transitions ignore cancellation of the caller's
// context: a cancelled fsm event leaves the machine stuck in transition.
type Record struct {
	name                string
	mutex               sync.RWMutex
	machine             *fsm.FSM
	consecutiveFailures int
	lastChecked         time.Time
	lastError           string
}

func newRecord(name string) *Record {
	return &Record{
		name: name,
		machine: fsm.NewFSM(
			StateHealthy,
			fsm.Events{
				{Name: EventFail, Src: []string{StateHealthy}, Dst: StateUnhealthy},
				{Name: EventRecover, Src: []string{StateUnhealthy}, Dst: StateHealthy},
			},
			fsm.Callbacks{},
		),
	}
}

// Name returns the service name the record belongs to.
func (r *Record) Name() string {
	return r.name
}

// RecordSuccess applies a successful probe.
func (r *Record) RecordSuccess(ctx context.Context) (Transition, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.lastChecked = time.Now()

	if r.machine.Is(StateHealthy) {
		return Transition{Kind: NoChange}, nil
	}

	if err := r.machine.Event(context.WithoutCancel(ctx), EventRecover); err != nil {
		return Transition{}, err
	}
	r.consecutiveFailures = 0
	r.lastError = ""

	return Transition{Kind: Recovered}, nil
}

// RecordFailure applies a failed probe. cause is kept for status reporting.
func (r *Record) RecordFailure(ctx context.Context, cause error) (Transition, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.lastChecked = time.Now()
	if cause != nil {
		r.lastError = cause.Error()
	}

	if r.machine.Is(StateUnhealthy) {
		r.consecutiveFailures++
		return Transition{Kind: StillUnhealthy, ConsecutiveFailures: r.consecutiveFailures}, nil
	}

	if err := r.machine.Event(context.WithoutCancel(ctx), EventFail); err != nil {
		return Transition{}, err
	}
	r.consecutiveFailures = 1

	return Transition{Kind: BecameUnhealthy, ConsecutiveFailures: r.consecutiveFailures}, nil
}

func (r *Record) IsHealthy() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.machine.Is(StateHealthy)
}

func (r *Record) ConsecutiveFailures() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.consecutiveFailures
}

// Status returns a copy of the record.
func (r *Record) Status() Status {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return Status{
		Name:                r.name,
		Healthy:             r.machine.Is(StateHealthy),
		ConsecutiveFailures: r.consecutiveFailures,
		LastChecked:         r.lastChecked,
		LastError:           r.lastError,
	}
}
