package deltacycle

import (
	"container/list"
	"log"
	"sync"
)

// Simulator is the delta-cycle event wheel: it owns virtual elapsed time,
// the pending-timer QueueMap, the current-delta queue, and the microtask
// FIFO, and drives a hosted callback program's timers and microtasks in
// the precise order spec.md §4.4–§4.5 describes.
//
// Grounded on sim.SerialEngine: the timeLock sync.RWMutex plus
// readNow/writeNow pattern is reused directly for elapsed/elapsingTo; the
// primary/secondary queue split of SerialEngine.nextEvent becomes the
// pending/currentDelta split of fireTimersWhile; SerialEngine.Pause's
// pauseLock idiom becomes the reentrancy guard on Elapse.
type Simulator struct {
	HookableBase

	name         string
	clockPeriod  SimDuration
	includeTrace bool
	logger       *log.Logger
	idGen        IDGenerator

	timeLock   sync.RWMutex
	elapsed    SimDuration
	elapsingTo *SimDuration

	pending      *QueueMap[SimDuration, *SimTimer]
	currentDelta *list.List
	microtasks   *list.List

	scheduler *Scheduler
}

// SimulatorOption configures a Simulator at construction time.
type SimulatorOption func(*Simulator)

// WithClockPeriod sets the simulator's clock period (default 1 ps).
func WithClockPeriod(d SimDuration) SimulatorOption {
	return func(s *Simulator) { s.clockPeriod = d }
}

// WithName sets the simulator's name (default "simulator").
func WithName(name string) SimulatorOption {
	return func(s *Simulator) { s.name = name }
}

// WithTimerStackTrace toggles capturing a construction-site stack trace on
// every timer (default true).
func WithTimerStackTrace(enabled bool) SimulatorOption {
	return func(s *Simulator) { s.includeTrace = enabled }
}

// WithLogger installs the logger the simulator reports Timeout/Reentrancy
// failures through. Timer fires are not logged here; a TimerLogHook writes
// them through the logger it was constructed with.
func WithLogger(logger *log.Logger) SimulatorOption {
	return func(s *Simulator) { s.logger = logger }
}

// WithIDGenerator overrides the default sequential IDGenerator, e.g. with
// NewXIDIDGenerator() when timer IDs must be globally unique.
func WithIDGenerator(gen IDGenerator) SimulatorOption {
	return func(s *Simulator) { s.idGen = gen }
}

// NewSimulator constructs a Simulator and forks its scheduling context.
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		name:         "simulator",
		clockPeriod:  Picoseconds(1),
		includeTrace: true,
		logger:       log.Default(),
		idGen:        NewSequentialIDGenerator(),
		pending:      NewQueueMap[SimDuration, *SimTimer](CompareSimDuration),
		currentDelta: list.New(),
		microtasks:   list.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.scheduler = newScheduler(s)

	return s
}

// Scheduler returns the scheduling context hosted code uses to create
// timers and queue microtasks. Run is the idiomatic way to reach it, but
// it is also exposed directly for callers that don't need Run's generic
// return value.
func (s *Simulator) Scheduler() *Scheduler { return s.scheduler }

// Run enters the simulator's forked scheduling context and invokes
// callback with it. Any timer creation or microtask scheduling callback
// performs, transitively, goes through the scheduler and is captured by
// s. Run does not itself advance time — elapse/elapse_blocking do that —
// it only arranges for subsequent scheduling calls to be intercepted.
//
// Run is a free function rather than a method because Go methods cannot
// introduce new type parameters; spec.md's "run(callback) -> T" is
// expressed here as Run[T](sim, callback).
func Run[T any](sim *Simulator, callback func(*Scheduler) T) T {
	return callback(sim.scheduler)
}

// Elapsed returns the simulator's current virtual time.
func (s *Simulator) Elapsed() SimDuration {
	s.timeLock.RLock()
	defer s.timeLock.RUnlock()

	return s.elapsed
}

// ElapsedTicks returns elapsed expressed as a count of clock periods.
func (s *Simulator) ElapsedTicks() int64 {
	return s.Elapsed().InPicoseconds() / s.clockPeriod.InPicoseconds()
}

// Name returns the simulator's configured name.
func (s *Simulator) Name() string { return s.name }

// Elapse simulates the asynchronous passage of duration: it drains
// microtasks and fires every pending timer due at or before elapsed+duration,
// interleaved per spec.md §4.4, then advances elapsed up to at least
// elapsed+duration.
//
// Elapse fails with ErrInvalidArgument if duration is negative, and with
// ErrReentrancy if another Elapse on s is already in progress.
func (s *Simulator) Elapse(duration SimDuration) error {
	if duration.IsNegative() {
		return ErrInvalidArgument
	}

	s.timeLock.Lock()
	if s.elapsingTo != nil {
		s.timeLock.Unlock()
		s.logger.Printf("%v", ErrReentrancy)
		return ErrReentrancy
	}

	target := s.elapsed.Add(duration)
	s.elapsingTo = &target
	s.timeLock.Unlock()

	s.fireTimersWhile(func(callTime SimDuration) bool {
		s.timeLock.RLock()
		limit := *s.elapsingTo
		s.timeLock.RUnlock()

		return callTime.LessOrEqual(limit)
	})

	s.timeLock.Lock()
	final := *s.elapsingTo
	if s.elapsed.Less(final) {
		s.elapsed = final
	}
	s.elapsingTo = nil
	s.timeLock.Unlock()

	return nil
}

// ElapseBlocking simulates the synchronous passage of duration, as if
// hosted code had blocked on a computation: no timers or microtasks run.
// If called from within an in-progress Elapse and the new elapsed exceeds
// that Elapse's target, the enclosing Elapse's target is extended to match,
// so timers due before the new elapsed still fire before that Elapse
// returns.
func (s *Simulator) ElapseBlocking(duration SimDuration) error {
	if duration.IsNegative() {
		return ErrInvalidArgument
	}

	s.timeLock.Lock()
	s.elapsed = s.elapsed.Add(duration)
	if s.elapsingTo != nil && s.elapsed.Greater(*s.elapsingTo) {
		*s.elapsingTo = s.elapsed
	}
	s.timeLock.Unlock()

	return nil
}

// fireTimersWhile is the event wheel from spec.md §4.4: drain microtasks,
// peek the next pending delta time, stop if predicate rejects it, otherwise
// advance elapsed to that delta and fire every timer due at it — in the
// creation order they share that delta in — before draining microtasks
// again and looping.
func (s *Simulator) fireTimersWhile(predicate func(callTime SimDuration) bool) {
	for {
		s.flushMicrotasksLocked()

		if s.pending.IsEmpty() {
			return
		}

		deltaTime, err := s.pending.FirstKey()
		if err != nil {
			return
		}

		if !predicate(deltaTime) {
			return
		}

		s.advanceElapsedTo(deltaTime)

		bucket, err := s.pending.RemoveFirstQueue()
		if err != nil {
			return
		}
		s.currentDelta = bucket

		for s.currentDelta.Len() > 0 {
			front := s.currentDelta.Front()
			timer := s.currentDelta.Remove(front).(*SimTimer)

			if timer.nextCall.Compare(deltaTime) != 0 {
				panic("deltacycle: timer fired with next_call out of step with its delta")
			}

			timer.fire()
		}

		s.flushMicrotasksLocked()
	}
}

func (s *Simulator) advanceElapsedTo(t SimDuration) {
	s.timeLock.Lock()
	if s.elapsed.Less(t) {
		s.elapsed = t
	}
	s.timeLock.Unlock()
}

// FlushMicroTasks repeatedly pops and runs the head of the microtask FIFO
// until it is empty, including any microtasks scheduled transitively by
// other microtasks. It does not run timers.
func (s *Simulator) FlushMicroTasks() { s.flushMicrotasksLocked() }

func (s *Simulator) flushMicrotasksLocked() {
	for s.microtasks.Len() > 0 {
		front := s.microtasks.Front()
		fn := s.microtasks.Remove(front).(func())
		fn()
	}
}

// FlushOption configures FlushTimers.
type FlushOption func(*flushConfig)

type flushConfig struct {
	timeout       SimDuration
	flushPeriodic bool
}

// WithFlushTimeout overrides FlushTimers' default one-hour virtual-time
// budget.
func WithFlushTimeout(d SimDuration) FlushOption {
	return func(c *flushConfig) { c.timeout = d }
}

// WithFlushPeriodic controls whether FlushTimers keeps running periodic
// timers (the default) or stops once no one-shot timer is pending and every
// periodic timer has fired at least once against the current elapsed time.
func WithFlushPeriodic(enabled bool) FlushOption {
	return func(c *flushConfig) { c.flushPeriodic = enabled }
}

// FlushTimers runs the event wheel until no pending timer remains (or,
// with WithFlushPeriodic(false), until no one-shot timer is pending and every
// periodic timer has fired at least once against the current elapsed). It fails with a *TimeoutError
// if a pending timer's call time would exceed elapsed+timeout, which
// guards against periodic-timer livelock.
func (s *Simulator) FlushTimers(opts ...FlushOption) error {
	cfg := flushConfig{timeout: Hours(1), flushPeriodic: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	absoluteTimeout := s.Elapsed().Add(cfg.timeout)

	var timeoutErr error

	s.fireTimersWhile(func(callTime SimDuration) bool {
		if callTime.Greater(absoluteTimeout) {
			timeoutErr = &TimeoutError{Timeout: cfg.timeout}
			return false
		}

		if cfg.flushPeriodic {
			return true
		}

		return s.anyOneShotOrDuePeriodic()
	})

	if timeoutErr != nil {
		s.logger.Printf("%v", timeoutErr)
		return timeoutErr
	}

	return nil
}

func (s *Simulator) anyOneShotOrDuePeriodic() bool {
	elapsed := s.Elapsed()

	it := s.pending.Iterator()
	for it.Next() {
		t := it.Value()

		if !t.isPeriodic {
			return true
		}

		if t.nextCall.LessOrEqual(elapsed) {
			return true
		}
	}

	return false
}

// Suspend detaches every timer born in zone and matching selector from
// both the current-delta queue and the pending QueueMap, returning them so
// a caller (e.g. a process/thread model layered above the simulator) can
// hold onto them and later Resume the ones it wants restored.
func (s *Simulator) Suspend(zone *Scheduler, selector func(*SimTimer) bool) []*SimTimer {
	var suspended []*SimTimer

	for e := s.currentDelta.Front(); e != nil; {
		next := e.Next()
		t := e.Value.(*SimTimer)

		if t.zone == zone && selector(t) {
			s.currentDelta.Remove(e)
			suspended = append(suspended, t)
		}

		e = next
	}

	s.pending.RemoveWhere(func(t *SimTimer) bool {
		if t.zone == zone && selector(t) {
			suspended = append(suspended, t)
			return true
		}

		return false
	})

	return suspended
}

// Resume re-inserts previously suspended timers into the pending QueueMap.
// It fails with a *TimerNotInFutureError, and re-inserts none of timers,
// if any timer's next_call precedes the simulator's current elapsed time.
func (s *Simulator) Resume(timers []*SimTimer) error {
	elapsed := s.Elapsed()

	for _, t := range timers {
		if t.nextCall.Less(elapsed) {
			return &TimerNotInFutureError{Elapsed: elapsed, NextCall: t.nextCall}
		}
	}

	for _, t := range timers {
		s.pending.Add(t)
	}

	return nil
}

// PendingTimers snapshots the current-delta queue followed by every
// pending timer, in pending's iteration order.
func (s *Simulator) PendingTimers() []*SimTimer {
	out := make([]*SimTimer, 0, s.currentDelta.Len()+s.pending.Len())

	for e := s.currentDelta.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*SimTimer))
	}

	it := s.pending.Iterator()
	for it.Next() {
		out = append(out, it.Value())
	}

	return out
}

// PendingTimersDebugString renders DebugString for every timer
// PendingTimers would return, in the same order.
func (s *Simulator) PendingTimersDebugString() []string {
	timers := s.PendingTimers()
	out := make([]string, len(timers))

	for i, t := range timers {
		out[i] = t.DebugString()
	}

	return out
}

// PeriodicTimerCount returns the number of periodic timers across the
// current-delta queue and pending storage.
func (s *Simulator) PeriodicTimerCount() int {
	n := 0

	for _, t := range s.PendingTimers() {
		if t.isPeriodic {
			n++
		}
	}

	return n
}

// NonPeriodicTimerCount returns the number of one-shot timers across the
// current-delta queue and pending storage.
func (s *Simulator) NonPeriodicTimerCount() int {
	n := 0

	for _, t := range s.PendingTimers() {
		if !t.isPeriodic {
			n++
		}
	}

	return n
}

// MicroTaskCount returns the number of microtasks currently queued.
func (s *Simulator) MicroTaskCount() int { return s.microtasks.Len() }
