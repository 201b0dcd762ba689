package deltacycle

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

var _ = Describe("TimerLogHook", func() {
	It("should log one line per timer fire in the documented format", func() {
		sim := NewSimulator(WithTimerStackTrace(false))

		recorder := &recordingLogger{}
		sim.AcceptHook(NewTimerLogHook(recorder))

		var id string
		Run(sim, func(s *Scheduler) struct{} {
			timer := s.NewTimer(Seconds(1), func() {})
			id = timer.ID()
			return struct{}{}
		})

		Expect(sim.Elapse(Seconds(1))).To(Succeed())

		Expect(recorder.lines).To(HaveLen(1))
		Expect(recorder.lines[0]).To(Equal(fmt.Sprintf("timer %s fire #1 at %s", id, Seconds(1))))
	})

	It("should log every fire of a periodic timer", func() {
		sim := NewSimulator(WithTimerStackTrace(false))

		recorder := &recordingLogger{}
		sim.AcceptHook(NewTimerLogHook(recorder))

		Run(sim, func(s *Scheduler) struct{} {
			s.NewPeriodicTimer(Seconds(1), func(t *SimTimer) {})
			return struct{}{}
		})

		Expect(sim.Elapse(Seconds(3))).To(Succeed())
		Expect(recorder.lines).To(HaveLen(3))
	})
})
