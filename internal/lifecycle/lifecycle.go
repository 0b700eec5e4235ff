// Package lifecycle announces monitor startup and shutdown on the
// notification channels.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/angeloszaimis/health-monitor/internal/notifier"
)

const DefaultGrace = 5 * time.Second

type Notifier interface {
	Notify(ctx context.Context, text string, severity notifier.Severity)
}

type Lifecycle struct {
	notifier Notifier
	grace    time.Duration
	logger   *slog.Logger
}

func New(logger *slog.Logger, n Notifier, grace time.Duration) *Lifecycle {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Lifecycle{notifier: n, grace: grace, logger: logger}
}

// Started sends the startup notice. Call it once the liveness endpoint
// accepts connections.
func (l *Lifecycle) Started(ctx context.Context, services int) {
	l.logger.Info("Health monitoring service started", slog.Int("services", services))
	l.notifier.Notify(ctx, fmt.Sprintf("🚀 Health monitoring service started successfully! Monitoring %d service(s).", services),
		notifier.SeverityInfo)
}

// Stopping sends the shutdown notice and waits for delivery for at most
// the grace period. It does not depend on the already cancelled run context.
func (l *Lifecycle) Stopping(signal string) {
	l.logger.Info("Shutting down gracefully...", slog.String("signal", signal))

	ctx, cancel := context.WithTimeout(context.Background(), l.grace)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.notifier.Notify(ctx, "🛑 Health monitoring service is shutting down...", notifier.SeverityInfo)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		l.logger.Warn("Shutdown notification did not finish within grace period",
			slog.Duration("grace", l.grace))
	}
}

// Grace returns the shutdown grace period.
func (l *Lifecycle) Grace() time.Duration {
	return l.grace
}
