package logger_test

import (
	"bytes"
	"context"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/health-monitor/pkg/logger"
)

var _ = Describe("Logger", func() {
	ctx := context.Background()

	Describe("New", func() {
		It("should create a logger for every known level", func() {
			for _, lvl := range []string{"debug", "info", "warn", "error", "invalid"} {
				Expect(logger.New(lvl, false, "dev")).NotTo(BeNil())
			}
		})

		It("should default to info for an invalid level", func() {
			log := logger.New("invalid", false, "dev")
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeFalse())
		})

		It("should respect warn level", func() {
			log := logger.New("warn", false, "dev")
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeTrue())
		})
	})

	Describe("NewWithWriter", func() {
		It("should write text with the environment attribute outside prod", func() {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "info", false, "dev")
			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring("msg=hello"))
			Expect(buf.String()).To(ContainSubstring("environment=dev"))
		})

		It("should write JSON in prod", func() {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "info", false, "prod")
			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring(`"msg":"hello"`))
			Expect(buf.String()).To(ContainSubstring(`"environment":"prod"`))
		})
	})

	Describe("Component", func() {
		It("should tag records with the component name", func() {
			var buf bytes.Buffer
			log := logger.Component(logger.NewWithWriter(&buf, "info", false, "dev"), "checker")
			log.Info("pass")

			Expect(buf.String()).To(ContainSubstring("component=checker"))
		})

		It("should fall back to the default logger", func() {
			Expect(logger.Component(nil, "x")).NotTo(BeNil())
		})
	})

	Describe("ParseLevel", func() {
		It("should be case insensitive", func() {
			Expect(logger.ParseLevel("DEBUG")).To(Equal(slog.LevelDebug))
			Expect(logger.ParseLevel("Error")).To(Equal(slog.LevelError))
		})
	})
})
