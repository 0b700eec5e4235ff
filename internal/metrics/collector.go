package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventProbeCompleted   EventType = "probe_completed"
	EventHealthChanged    EventType = "health_changed"
	EventNotificationSent EventType = "notification_sent"
	EventPassSkipped      EventType = "pass_skipped"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	Service   string
	Channel   string
	Task      string
	Duration  time.Duration
	Success   bool
	Healthy   bool
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Record queues an event. When the buffer is full the event is dropped so
// producers never stall on metrics.
func (c *Collector) Record(event MetricEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("Metrics buffer full, dropping event",
			slog.String("type", string(event.Type)))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventProbeCompleted:
		c.metrics.RecordProbe(event.Service, event.Duration, event.Success)

	case EventHealthChanged:
		c.metrics.UpdateHealthStatus(event.Service, event.Healthy)

	case EventNotificationSent:
		c.metrics.RecordNotification(event.Channel, event.Success)

	case EventPassSkipped:
		c.metrics.RecordSkippedPass(event.Task)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

// TrackServices seeds the health gauge for services that start healthy.
func (c *Collector) TrackServices(names ...string) {
	c.metrics.TrackServices(names...)
}

func (c *Collector) Metrics() *Metrics {
	return c.metrics
}
