package deltacycle

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Simulator", func() {
	var sim *Simulator

	BeforeEach(func() {
		sim = NewSimulator(WithTimerStackTrace(false))
	})

	It("should fire same-time timers in FIFO creation order", func() {
		var order []int
		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() { order = append(order, 1) })
			s.NewTimer(Seconds(1), func() { order = append(order, 2) })
			s.NewTimer(Seconds(1), func() { order = append(order, 3) })
			return struct{}{}
		})

		Expect(sim.Elapse(Seconds(1))).To(Succeed())
		Expect(order).To(Equal([]int{1, 2, 3}))
	})

	It("should fire a periodic timer exactly ten times across ten equal sub-periods", func() {
		total := Seconds(1)
		tick := total.Mul(0.1)

		var ticks []uint64
		Run(sim, func(s *Scheduler) struct{} {
			s.NewPeriodicTimer(tick, func(t *SimTimer) {
				ticks = append(ticks, t.Tick())
			})
			return struct{}{}
		})

		Expect(sim.Elapse(total)).To(Succeed())
		Expect(ticks).To(Equal([]uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	})

	It("should interleave microtask drains between each fired delta", func() {
		executed := 0
		fires := 0
		Run(sim, func(s *Scheduler) struct{} {
			for i := 0; i < 5; i++ {
				s.NewTimer(Seconds(int64(i+1)), func() {
					Expect(executed).To(Equal(6 * fires))
					fires++
					for j := 0; j < 6; j++ {
						s.QueueMicrotask(func() { executed++ })
					}
				})
			}
			return struct{}{}
		})

		Expect(sim.Elapse(Seconds(5))).To(Succeed())
		Expect(executed).To(Equal(30))
	})

	It("should fire every same-delta timer before running any microtask they scheduled", func() {
		var order []string
		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() {
				order = append(order, "first")
				s.QueueMicrotask(func() { order = append(order, "microtask") })
			})
			s.NewTimer(Seconds(1), func() {
				order = append(order, "second")
			})
			return struct{}{}
		})

		Expect(sim.Elapse(Seconds(1))).To(Succeed())
		Expect(order).To(Equal([]string{"first", "second", "microtask"}))
	})

	It("should fire a zero-duration timer created from within a same-delta callback in the same Elapse call", func() {
		var fresh *SimTimer
		freshFired := false

		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() {
				fresh = s.NewTimer(ZeroDuration, func() { freshFired = true })
			})
			return struct{}{}
		})

		Expect(sim.Elapse(Seconds(1))).To(Succeed())
		Expect(freshFired).To(BeTrue())
		Expect(fresh.IsActive()).To(BeFalse())
		Expect(fresh.NextCall().Equal(Seconds(1))).To(BeTrue())
	})

	It("should keep re-firing a periodic zero-duration timer created mid-delta until it cancels itself, all within one Elapse call", func() {
		reentrantFires := 0

		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() {
				s.NewPeriodicTimer(ZeroDuration, func(t *SimTimer) {
					reentrantFires++
					if reentrantFires == 3 {
						t.Cancel()
					}
				})
			})
			return struct{}{}
		})

		Expect(sim.Elapse(Seconds(1))).To(Succeed())
		Expect(reentrantFires).To(Equal(3))
		Expect(sim.Elapsed().Equal(Seconds(1))).To(BeTrue())
	})

	It("should reject a reentrant Elapse call on the same simulator and log the failure", func() {
		var buf bytes.Buffer
		logged := NewSimulator(WithTimerStackTrace(false), WithLogger(log.New(&buf, "", 0)))

		var inner error
		Run(logged, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() {
				inner = logged.Elapse(Seconds(1))
			})
			return struct{}{}
		})

		Expect(logged.Elapse(Seconds(1))).To(Succeed())
		Expect(inner).To(MatchError(ErrReentrancy))
		Expect(buf.String()).To(ContainSubstring(ErrReentrancy.Error()))
	})

	It("should reject a negative Elapse duration", func() {
		Expect(sim.Elapse(Seconds(-1))).To(MatchError(ErrInvalidArgument))
	})

	It("should extend an enclosing Elapse's target when ElapseBlocking overruns it", func() {
		fired := false
		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() {
				_ = sim.ElapseBlocking(Seconds(5))
			})
			s.NewTimer(Seconds(3), func() {
				fired = true
			})
			return struct{}{}
		})

		Expect(sim.Elapse(Seconds(1))).To(Succeed())
		Expect(fired).To(BeTrue())
		Expect(sim.Elapsed().Equal(Seconds(6))).To(BeTrue())
	})

	It("should not run timers or microtasks during ElapseBlocking", func() {
		fired := false
		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() { fired = true })
			return struct{}{}
		})

		Expect(sim.ElapseBlocking(Seconds(2))).To(Succeed())
		Expect(fired).To(BeFalse())
		Expect(sim.Elapsed().Equal(Seconds(2))).To(BeTrue())
	})

	It("should time out FlushTimers against a livelocked periodic timer", func() {
		Run(sim, func(s *Scheduler) struct{} {
			s.NewPeriodicTimer(Seconds(1), func(t *SimTimer) {})
			return struct{}{}
		})

		err := sim.FlushTimers(WithFlushTimeout(Seconds(5)))
		Expect(err).To(HaveOccurred())

		var timeoutErr *TimeoutError
		Expect(err).To(BeAssignableToTypeOf(timeoutErr))
	})

	It("should drain every one-shot timer with FlushTimers", func() {
		fired := 0
		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() { fired++ })
			s.NewTimer(Seconds(2), func() { fired++ })
			s.NewTimer(Seconds(3), func() { fired++ })
			return struct{}{}
		})

		Expect(sim.FlushTimers()).To(Succeed())
		Expect(fired).To(Equal(3))
	})

	It("should stop once every periodic timer has fired at least once with WithFlushPeriodic(false)", func() {
		oneShotFired := false
		periodicFires := 0
		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() { oneShotFired = true })
			s.NewPeriodicTimer(Milliseconds(100), func(t *SimTimer) { periodicFires++ })
			return struct{}{}
		})

		Expect(sim.FlushTimers(WithFlushPeriodic(false))).To(Succeed())
		Expect(oneShotFired).To(BeTrue())
		Expect(periodicFires).To(BeNumerically(">=", 1))
	})

	It("should suspend and resume timers by zone and selector", func() {
		var sched *Scheduler
		var timer *SimTimer
		fired := false

		Run(sim, func(s *Scheduler) struct{} {
			sched = s
			timer = s.NewTimer(Seconds(1), func() { fired = true })
			return struct{}{}
		})

		suspended := sim.Suspend(sched, func(t *SimTimer) bool { return t == timer })
		Expect(suspended).To(HaveLen(1))

		Expect(sim.Elapse(Seconds(1))).To(Succeed())
		Expect(fired).To(BeFalse())

		Expect(sim.Resume(suspended)).To(Succeed())
		Expect(sim.Elapse(Seconds(1))).To(Succeed())
		Expect(fired).To(BeTrue())
	})

	It("should refuse to resume a timer whose next_call has already passed", func() {
		var sched *Scheduler
		var timer *SimTimer

		Run(sim, func(s *Scheduler) struct{} {
			sched = s
			timer = s.NewTimer(Seconds(1), func() {})
			return struct{}{}
		})

		suspended := sim.Suspend(sched, func(t *SimTimer) bool { return t == timer })
		Expect(sim.ElapseBlocking(Seconds(2))).To(Succeed())

		err := sim.Resume(suspended)
		var notInFuture *TimerNotInFutureError
		Expect(err).To(BeAssignableToTypeOf(notInFuture))
	})

	It("should report pending and periodic/non-periodic counts", func() {
		Run(sim, func(s *Scheduler) struct{} {
			s.NewTimer(Seconds(1), func() {})
			s.NewPeriodicTimer(Seconds(1), func(t *SimTimer) {})
			return struct{}{}
		})

		Expect(sim.NonPeriodicTimerCount()).To(Equal(1))
		Expect(sim.PeriodicTimerCount()).To(Equal(1))
		Expect(sim.PendingTimers()).To(HaveLen(2))
		Expect(sim.PendingTimersDebugString()).To(HaveLen(2))
	})

	It("should report the microtask count before a drain", func() {
		Run(sim, func(s *Scheduler) struct{} {
			s.QueueMicrotask(func() {})
			s.QueueMicrotask(func() {})
			return struct{}{}
		})

		Expect(sim.MicroTaskCount()).To(Equal(2))
		sim.FlushMicroTasks()
		Expect(sim.MicroTaskCount()).To(Equal(0))
	})

	It("should expose ClockPeriod and Name through the scheduling context", func() {
		named := NewSimulator(WithName("dut"), WithClockPeriod(Nanoseconds(2)))
		sched := named.Scheduler()

		Expect(sched.Name).To(Equal("dut"))
		Expect(sched.ClockPeriod.Equal(Nanoseconds(2))).To(BeTrue())
		Expect(sched.Simulator()).To(BeIdenticalTo(named))
	})

	It("should compute ElapsedTicks from the configured clock period", func() {
		ticked := NewSimulator(WithClockPeriod(Nanoseconds(1)))
		Expect(ticked.Elapse(Microseconds(3))).To(Succeed())
		Expect(ticked.ElapsedTicks()).To(BeNumerically("==", 3000))
	})
})
