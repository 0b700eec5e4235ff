package notifier

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/health-monitor/internal/metrics"
)

// Severity selects how a channel presents a message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "info"
}

// Message is what every channel receives.
type Message struct {
	Text      string
	Severity  Severity
	Timestamp time.Time
}

// Channel is a single notification destination.
type Channel interface {
	Name() string
	// Configured reports whether the channel has a destination to send to.
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

type eventRecorder interface {
	Record(event metrics.MetricEvent)
}

// Notifier fans messages out to its channels.
type Notifier struct {
	channels    []Channel
	sendTimeout time.Duration
	recorder    eventRecorder
	logger      *slog.Logger
	now         func() time.Time
}

// New returns a notifier over channels. A zero sendTimeout leaves sends
// bounded only by the caller's context.
func New(logger *slog.Logger, sendTimeout time.Duration, recorder eventRecorder, channels ...Channel) *Notifier {
	return &Notifier{
		channels:    channels,
		sendTimeout: sendTimeout,
		recorder:    recorder,
		logger:      logger,
		now:         time.Now,
	}
}

// Notify delivers text to every channel and returns once each delivery has
// finished or failed.
func (n *Notifier) Notify(ctx context.Context, text string, severity Severity) {
	msg := Message{
		Text:      text,
		Severity:  severity,
		Timestamp: n.now(),
	}

	if len(n.channels) == 0 {
		n.logger.Info("No notification channels, message not sent",
			slog.String("severity", severity.String()),
			slog.String("message", text))
		return
	}

	var g errgroup.Group
	for _, ch := range n.channels {
		ch := ch
		g.Go(func() error {
			n.deliver(ctx, ch, msg)
			return nil
		})
	}
	_ = g.Wait()
}

func (n *Notifier) deliver(ctx context.Context, ch Channel, msg Message) {
	log := n.logger.With(slog.String("channel", ch.Name()))

	if !ch.Configured() {
		log.Info("Channel not configured, message not sent",
			slog.String("severity", msg.Severity.String()),
			slog.String("message", msg.Text))
		return
	}

	if n.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.sendTimeout)
		defer cancel()
	}

	err := ch.Send(ctx, msg)
	n.record(ch.Name(), err == nil)

	if err != nil {
		log.Error("Failed to send notification", slog.Any("err", err))
		return
	}
	log.Info("Notification sent", slog.String("severity", msg.Severity.String()))
}

func (n *Notifier) record(channel string, success bool) {
	if n.recorder == nil {
		return
	}
	n.recorder.Record(metrics.MetricEvent{
		Type:    metrics.EventNotificationSent,
		Channel: channel,
		Success: success,
	})
}
