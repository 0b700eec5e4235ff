package healthcheck

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/health-monitor/internal/metrics"
	"github.com/angeloszaimis/health-monitor/internal/notifier"
	"github.com/angeloszaimis/health-monitor/internal/registry"
	"github.com/angeloszaimis/health-monitor/internal/state"
)

// DefaultConcurrency caps the probes in flight during one pass.
const DefaultConcurrency = 8

// Notifier is the subset of notifier.Notifier the checker needs.
type Notifier interface {
	Notify(ctx context.Context, text string, severity notifier.Severity)
}

type eventRecorder interface {
	Record(event metrics.MetricEvent)
}

type probeResult struct {
	err      error
	duration time.Duration
}

// Checker is the only writer of the state store. Callers must not run
// RunPass and Summarize concurrently; the scheduler serialises them.
type Checker struct {
	registry    *registry.Registry
	store       *state.Store
	prober      Prober
	notifier    Notifier
	recorder    eventRecorder
	policy      Policy
	concurrency int
	startedAt   time.Time
	now         func() time.Time
	logger      *slog.Logger
}

type Option func(*Checker)

func WithReminderEvery(n int) Option {
	return func(c *Checker) { c.policy.ReminderEvery = n }
}

func WithConcurrency(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithRecorder(r eventRecorder) Option {
	return func(c *Checker) { c.recorder = r }
}

// WithStartTime sets the instant uptime is measured from.
func WithStartTime(t time.Time) Option {
	return func(c *Checker) { c.startedAt = t }
}

// WithClock replaces time.Now for uptime calculations.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

func NewChecker(
	logger *slog.Logger,
	reg *registry.Registry,
	store *state.Store,
	prober Prober,
	n Notifier,
	opts ...Option,
) *Checker {
	c := &Checker{
		registry:    reg,
		store:       store,
		prober:      prober,
		notifier:    n,
		policy:      Policy{ReminderEvery: DefaultReminderEvery},
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.startedAt.IsZero() {
		c.startedAt = c.now()
	}
	return c
}

// RunPass probes every registered service once and applies the outcomes in
// registry order. When ctx ends before the probes complete the outcomes are
// discarded and the store is left untouched. Once applying has started,
// every outcome is applied and its alert delivered even if ctx ends.
func (c *Checker) RunPass(ctx context.Context) error {
	targets := c.registry.Targets()
	log := c.logger.With(slog.String("pass_id", uuid.NewString()))

	if len(targets) == 0 {
		log.Debug("No services registered, skipping health check")
		return nil
	}

	log.Info("Checking health for all services", slog.Int("services", len(targets)))

	results := make([]probeResult, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			start := time.Now()
			err := c.prober.Probe(ctx, target)
			results[i] = probeResult{err: err, duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("Health check pass interrupted, discarding results", slog.Any("err", err))
		return err
	}

	healthy := 0
	for i, target := range targets {
		if c.apply(ctx, log, target, results[i]) {
			healthy++
		}
	}

	log.Info("Health check pass finished",
		slog.Int("services", len(targets)),
		slog.Int("healthy", healthy))

	return nil
}

// apply feeds one probe outcome into the store and notifies if the policy
// says so. It reports whether the service is healthy afterwards.
func (c *Checker) apply(ctx context.Context, log *slog.Logger, target registry.Target, res probeResult) bool {
	log = log.With(slog.String("service", target.Name))

	c.record(metrics.MetricEvent{
		Type:     metrics.EventProbeCompleted,
		Service:  target.Name,
		Duration: res.duration,
		Success:  res.err == nil,
	})

	rec, ok := c.store.Get(target.Name)
	if !ok {
		log.Error("No health record for service")
		return false
	}

	var (
		tr  state.Transition
		err error
	)
	if res.err == nil {
		tr, err = rec.RecordSuccess(ctx)
	} else {
		tr, err = rec.RecordFailure(ctx, res.err)
	}
	if err != nil {
		log.Error("Failed to update health record", slog.Any("err", err))
		return rec.IsHealthy()
	}

	if res.err == nil {
		log.Info("Health check passed", slog.Duration("duration", res.duration))
	} else {
		log.Warn("Health check failed",
			slog.Int("consecutive_failures", tr.ConsecutiveFailures),
			slog.Any("err", res.err))
	}

	if tr.Kind != state.NoChange && tr.Kind != state.StillUnhealthy {
		c.record(metrics.MetricEvent{
			Type:    metrics.EventHealthChanged,
			Service: target.Name,
			Healthy: tr.Kind == state.Recovered,
		})
	}

	// An alert for an applied transition is never re-sent, so delivery
	// outlives cancellation of the pass and is bounded by the send timeout.
	sendCtx := context.WithoutCancel(ctx)
	switch c.policy.Decide(tr) {
	case AlertFailure:
		c.notifier.Notify(sendCtx, failureMessage(target, tr.ConsecutiveFailures, res.err), notifier.SeverityError)
	case AlertReminder:
		c.notifier.Notify(sendCtx, reminderMessage(target, tr.ConsecutiveFailures), notifier.SeverityError)
	case AlertRecovery:
		c.notifier.Notify(sendCtx, recoveryMessage(target), notifier.SeverityInfo)
	}

	return res.err == nil
}

// Summarize sends one info message naming every healthy service together
// with the monitor's uptime. Nothing is sent when no service is healthy.
func (c *Checker) Summarize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	healthy := c.store.Healthy()
	if len(healthy) == 0 {
		c.logger.Info("No healthy services, skipping summary")
		return nil
	}

	c.notifier.Notify(ctx, summaryMessage(healthy, c.Uptime()), notifier.SeverityInfo)
	c.logger.Info("Sent healthy services summary", slog.Int("healthy", len(healthy)))
	return nil
}

// Uptime is the time since the monitor started.
func (c *Checker) Uptime() time.Duration {
	return c.now().Sub(c.startedAt)
}

func (c *Checker) record(event metrics.MetricEvent) {
	if c.recorder == nil {
		return
	}
	c.recorder.Record(event)
}
