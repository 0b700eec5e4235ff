package state_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/health-monitor/internal/state"
)

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *state.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = state.NewStore("api", "web", "db")
	})

	Describe("NewStore", func() {
		It("should create a healthy record per service", func() {
			Expect(store.Len()).To(Equal(3))
			for _, name := range []string{"api", "web", "db"} {
				rec, ok := store.Get(name)
				Expect(ok).To(BeTrue())
				Expect(rec.IsHealthy()).To(BeTrue())
				Expect(rec.ConsecutiveFailures()).To(Equal(0))
			}
		})

		It("should not create records for unknown names", func() {
			_, ok := store.Get("unknown")
			Expect(ok).To(BeFalse())
		})

		It("should ignore repeated names", func() {
			Expect(state.NewStore("a", "a", "b").Len()).To(Equal(2))
		})
	})

	Describe("Record transitions", func() {
		var rec *state.Record

		BeforeEach(func() {
			rec, _ = store.Get("api")
		})

		It("should stay healthy on success", func() {
			tr, err := rec.RecordSuccess(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Kind).To(Equal(state.NoChange))
			Expect(rec.IsHealthy()).To(BeTrue())
		})

		It("should become unhealthy with one failure", func() {
			tr, err := rec.RecordFailure(ctx, errors.New("boom"))
			Expect(err).NotTo(HaveOccurred())
			Expect(tr).To(Equal(state.Transition{Kind: state.BecameUnhealthy, ConsecutiveFailures: 1}))
			Expect(rec.IsHealthy()).To(BeFalse())
			Expect(rec.Status().LastError).To(Equal("boom"))
		})

		It("should count N consecutive failures", func() {
			for n := 1; n <= 12; n++ {
				tr, err := rec.RecordFailure(ctx, errors.New("down"))
				Expect(err).NotTo(HaveOccurred())
				Expect(tr.ConsecutiveFailures).To(Equal(n))
				if n == 1 {
					Expect(tr.Kind).To(Equal(state.BecameUnhealthy))
				} else {
					Expect(tr.Kind).To(Equal(state.StillUnhealthy))
				}
			}
			Expect(rec.ConsecutiveFailures()).To(Equal(12))
			Expect(rec.IsHealthy()).To(BeFalse())
		})

		It("should reset the counter on recovery", func() {
			for i := 0; i < 5; i++ {
				_, _ = rec.RecordFailure(ctx, errors.New("down"))
			}

			tr, err := rec.RecordSuccess(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Kind).To(Equal(state.Recovered))
			Expect(rec.IsHealthy()).To(BeTrue())
			Expect(rec.ConsecutiveFailures()).To(Equal(0))
			Expect(rec.Status().LastError).To(BeEmpty())
		})

		It("should treat a failure after recovery as a fresh first failure", func() {
			_, _ = rec.RecordFailure(ctx, nil)
			_, _ = rec.RecordSuccess(ctx)

			tr, err := rec.RecordFailure(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr).To(Equal(state.Transition{Kind: state.BecameUnhealthy, ConsecutiveFailures: 1}))
		})

		It("should keep transitioning after an update with a cancelled context", func() {
			cancelled, cancel := context.WithCancel(context.Background())
			cancel()

			tr, err := rec.RecordFailure(cancelled, errors.New("down"))
			Expect(err).NotTo(HaveOccurred())
			Expect(tr).To(Equal(state.Transition{Kind: state.BecameUnhealthy, ConsecutiveFailures: 1}))

			for n := 2; n <= 4; n++ {
				tr, err = rec.RecordFailure(ctx, errors.New("down"))
				Expect(err).NotTo(HaveOccurred())
				Expect(tr.ConsecutiveFailures).To(Equal(n))
			}
			Expect(rec.IsHealthy()).To(BeFalse())

			tr, err = rec.RecordSuccess(cancelled)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Kind).To(Equal(state.Recovered))

			tr, err = rec.RecordFailure(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Kind).To(Equal(state.BecameUnhealthy))
		})

		It("should record when it was last checked", func() {
			Expect(rec.Status().LastChecked.IsZero()).To(BeTrue())
			_, _ = rec.RecordSuccess(ctx)
			Expect(rec.Status().LastChecked.IsZero()).To(BeFalse())
		})
	})

	Describe("Healthy", func() {
		It("should list healthy names in registration order", func() {
			rec, _ := store.Get("web")
			_, _ = rec.RecordFailure(ctx, nil)

			Expect(store.Healthy()).To(Equal([]string{"api", "db"}))
		})

		It("should be empty when nothing is healthy", func() {
			for _, name := range []string{"api", "web", "db"} {
				rec, _ := store.Get(name)
				_, _ = rec.RecordFailure(ctx, nil)
			}
			Expect(store.Healthy()).To(BeEmpty())
		})

		It("should be empty for an empty store", func() {
			Expect(state.NewStore().Healthy()).To(BeEmpty())
		})
	})

	Describe("Snapshot", func() {
		It("should copy every record in order", func() {
			rec, _ := store.Get("db")
			_, _ = rec.RecordFailure(ctx, errors.New("refused"))

			snap := store.Snapshot()
			Expect(snap).To(HaveLen(3))
			Expect(snap[0].Name).To(Equal("api"))
			Expect(snap[2].Name).To(Equal("db"))
			Expect(snap[2].Healthy).To(BeFalse())
			Expect(snap[2].ConsecutiveFailures).To(Equal(1))
			Expect(snap[2].LastError).To(Equal("refused"))
		})

		It("should be safe to read while the writer updates", func() {
			rec, _ := store.Get("api")
			var wg sync.WaitGroup

			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if i%2 == 0 {
						_, _ = rec.RecordFailure(ctx, nil)
					} else {
						_, _ = rec.RecordSuccess(ctx)
					}
				}
			}()

			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = store.Snapshot()
					_ = store.Healthy()
				}()
			}
			wg.Wait()

			Expect(rec.IsHealthy()).To(BeTrue())
		})
	})
})
