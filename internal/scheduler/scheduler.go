package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/angeloszaimis/health-monitor/internal/metrics"
)

// Task is a named unit of periodic work.
type Task struct {
	Name     string
	Interval time.Duration
	// Immediate runs the task once as soon as the scheduler starts.
	Immediate bool
	Run       func(ctx context.Context) error
}

type eventRecorder interface {
	Record(event metrics.MetricEvent)
}

// Scheduler drives its tasks until the context passed to Start ends.
type Scheduler struct {
	tasks    []Task
	running  sync.Mutex
	wg       sync.WaitGroup
	recorder eventRecorder
	logger   *slog.Logger
}

func New(logger *slog.Logger, recorder eventRecorder, tasks ...Task) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		recorder: recorder,
		logger:   logger,
	}
}

// Start launches one loop per task and returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	for _, task := range s.tasks {
		if task.Interval <= 0 {
			s.logger.Error("Task has no interval, not scheduling", slog.String("task", task.Name))
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, task)
	}
}

// Wait blocks until every loop has returned and any in-flight run is done.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	defer s.wg.Done()

	log := s.logger.With(slog.String("task", task.Name))
	log.Info("Task scheduled", slog.Duration("interval", task.Interval))

	if task.Immediate {
		s.RunExclusive(ctx, task)
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Task stopped")
			return

		case <-ticker.C:
			s.RunExclusive(ctx, task)
		}
	}
}

// RunExclusive runs task unless another task is already running, in which
// case the run is dropped. It reports whether the task ran.
func (s *Scheduler) RunExclusive(ctx context.Context, task Task) bool {
	if ctx.Err() != nil {
		return false
	}

	if !s.running.TryLock() {
		s.logger.Warn("Previous pass still running, skipping tick", slog.String("task", task.Name))
		if s.recorder != nil {
			s.recorder.Record(metrics.MetricEvent{Type: metrics.EventPassSkipped, Task: task.Name})
		}
		return false
	}
	defer s.running.Unlock()

	start := time.Now()
	err := task.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Task failed",
			slog.String("task", task.Name),
			slog.Duration("duration", time.Since(start)),
			slog.Any("err", err))
		return true
	}

	s.logger.Debug("Task finished",
		slog.String("task", task.Name),
		slog.Duration("duration", time.Since(start)))
	return true
}
