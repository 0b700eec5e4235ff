package metrics_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/angeloszaimis/health-monitor/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		log       *slog.Logger
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(100, log)
	})

	AfterEach(func() {
		cancel()
	})

	Describe("event processing", func() {
		It("should process EventProbeCompleted", func() {
			collector.Start(ctx)

			collector.Record(metrics.MetricEvent{
				Type:     metrics.EventProbeCompleted,
				Service:  "api",
				Duration: 100 * time.Millisecond,
				Success:  true,
			})

			Eventually(func() float64 {
				return testutil.ToFloat64(collector.Metrics().Probes().WithLabelValues("api", "success"))
			}).Should(Equal(1.0))
		})

		It("should process EventHealthChanged", func() {
			collector.Start(ctx)

			collector.Record(metrics.MetricEvent{
				Type:    metrics.EventHealthChanged,
				Service: "api",
				Healthy: true,
			})

			Eventually(func() float64 {
				return testutil.ToFloat64(collector.Metrics().ServiceHealthy().WithLabelValues("api"))
			}).Should(Equal(1.0))
		})

		It("should process EventNotificationSent", func() {
			collector.Start(ctx)

			collector.Record(metrics.MetricEvent{
				Type:    metrics.EventNotificationSent,
				Channel: "teams",
				Success: false,
			})

			Eventually(func() float64 {
				return testutil.ToFloat64(collector.Metrics().Notifications().WithLabelValues("teams", "failure"))
			}).Should(Equal(1.0))
		})

		It("should process EventPassSkipped", func() {
			collector.Start(ctx)

			collector.Record(metrics.MetricEvent{
				Type: metrics.EventPassSkipped,
				Task: "summary",
			})

			Eventually(func() float64 {
				return testutil.ToFloat64(collector.Metrics().PassesSkipped().WithLabelValues("summary"))
			}).Should(Equal(1.0))
		})

		It("should drain events on context cancellation", func() {
			for i := 0; i < 10; i++ {
				collector.Record(metrics.MetricEvent{
					Type:    metrics.EventProbeCompleted,
					Service: "api",
					Success: false,
				})
			}

			cancel()
			collector.Start(ctx)

			Eventually(func() float64 {
				return testutil.ToFloat64(collector.Metrics().Probes().WithLabelValues("api", "failure"))
			}).Should(Equal(10.0))
		})
	})

	Describe("Record", func() {
		It("should drop events instead of blocking when the buffer is full", func() {
			small := metrics.NewCollector(1, log)

			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := 0; i < 5; i++ {
					small.Record(metrics.MetricEvent{Type: metrics.EventPassSkipped, Task: "health-check"})
				}
			}()

			Eventually(done).Should(BeClosed())
		})
	})

	Describe("Handler", func() {
		It("should serve the Prometheus exposition format", func() {
			collector.Metrics().RecordProbe("api", time.Millisecond, true)

			rec := httptest.NewRecorder()
			collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			body, err := io.ReadAll(rec.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`health_monitor_probes_total{result="success",service="api"} 1`))
		})
	})
})
