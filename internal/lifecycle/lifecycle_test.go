package lifecycle_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/health-monitor/internal/lifecycle"
	"github.com/angeloszaimis/health-monitor/internal/notifier"
	"github.com/angeloszaimis/health-monitor/pkg/logger"
)

type notification struct {
	text     string
	severity notifier.Severity
}

type fakeNotifier struct {
	mutex sync.Mutex
	sent  []notification
	delay time.Duration
}

func (f *fakeNotifier) Notify(ctx context.Context, text string, severity notifier.Severity) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return
		}
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sent = append(f.sent, notification{text: text, severity: severity})
}

func (f *fakeNotifier) Sent() []notification {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]notification(nil), f.sent...)
}

var _ = Describe("Lifecycle", func() {
	It("should announce startup as info", func() {
		n := &fakeNotifier{}
		lc := lifecycle.New(logger.Discard(), n, time.Second)

		lc.Started(context.Background(), 3)

		sent := n.Sent()
		Expect(sent).To(HaveLen(1))
		Expect(sent[0].severity).To(Equal(notifier.SeverityInfo))
		Expect(sent[0].text).To(ContainSubstring("started successfully"))
		Expect(sent[0].text).To(ContainSubstring("3 service(s)"))
	})

	It("should announce shutdown and wait for delivery", func() {
		n := &fakeNotifier{delay: 20 * time.Millisecond}
		lc := lifecycle.New(logger.Discard(), n, time.Second)

		lc.Stopping("terminated")

		sent := n.Sent()
		Expect(sent).To(HaveLen(1))
		Expect(sent[0].severity).To(Equal(notifier.SeverityInfo))
		Expect(sent[0].text).To(ContainSubstring("shutting down"))
	})

	It("should give up after the grace period", func() {
		n := &fakeNotifier{delay: time.Hour}
		lc := lifecycle.New(logger.Discard(), n, 50*time.Millisecond)

		start := time.Now()
		lc.Stopping("interrupt")

		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		Expect(n.Sent()).To(BeEmpty())
	})

	It("should default the grace period", func() {
		Expect(lifecycle.New(logger.Discard(), &fakeNotifier{}, 0).Grace()).To(Equal(lifecycle.DefaultGrace))
	})
})
