package deltacycle

import (
	"fmt"
	"runtime/debug"
)

// OneShotCallback is invoked when a one-shot SimTimer fires.
type OneShotCallback func()

// PeriodicCallback is invoked when a periodic SimTimer fires. It receives
// the timer itself, so it can inspect Tick or call Cancel.
type PeriodicCallback func(t *SimTimer)

// SimTimer mirrors a hosted program's native one-shot or periodic timer,
// grounded on sim.TickEvent/sim.EventBase for the lightweight
// record-with-an-ID-and-a-reschedule-on-fire shape, and on
// sim.TickScheduler for the cancel/reinsert bookkeeping.
type SimTimer struct {
	id       string
	duration SimDuration
	nextCall SimDuration

	isPeriodic bool
	oneShotFn  OneShotCallback
	periodicFn PeriodicCallback

	tick        uint64
	isCancelled bool
	isActive    bool

	zone *Scheduler
	sim  *Simulator

	creationTrace string
}

func newTimer(
	sim *Simulator,
	zone *Scheduler,
	d SimDuration,
	isPeriodic bool,
	oneShotFn OneShotCallback,
	periodicFn PeriodicCallback,
) *SimTimer {
	if d.IsNegative() {
		d = ZeroDuration
	}

	t := &SimTimer{
		id:         sim.idGen.Generate(),
		duration:   d,
		nextCall:   sim.Elapsed().Add(d),
		isPeriodic: isPeriodic,
		oneShotFn:  oneShotFn,
		periodicFn: periodicFn,
		isActive:   true,
		zone:       zone,
		sim:        sim,
	}

	if sim.includeTrace {
		t.creationTrace = string(debug.Stack())
	}

	return t
}

// Key is SimTimer's Indexable[SimDuration] implementation: the QueueMap
// that holds pending timers is keyed on next_call.
func (t *SimTimer) Key() SimDuration { return t.nextCall }

// IsActive reports whether the simulator still tracks this timer, either
// pending or scheduled for re-insertion. It becomes false as soon as a
// one-shot timer's callback returns, and stays true across firings for a periodic timer
// until it is cancelled.
func (t *SimTimer) IsActive() bool { return t.isActive }

// IsPeriodic reports whether this timer reschedules itself after firing.
func (t *SimTimer) IsPeriodic() bool { return t.isPeriodic }

// Tick returns the number of times this timer has fired so far.
func (t *SimTimer) Tick() uint64 { return t.tick }

// Duration returns the interval this timer was configured with (clamped to
// zero if it was constructed with a negative duration).
func (t *SimTimer) Duration() SimDuration { return t.duration }

// NextCall returns the absolute virtual time this timer is next due at.
func (t *SimTimer) NextCall() SimDuration { return t.nextCall }

// IsCancelled reports whether Cancel has been called on this timer.
func (t *SimTimer) IsCancelled() bool { return t.isCancelled }

// ID returns this timer's opaque identity.
func (t *SimTimer) ID() string { return t.id }

// Cancel marks the timer as cancelled and removes it from pending storage.
// It is idempotent and safe to call from within the timer's own callback;
// a cancel issued during a periodic timer's in-flight callback prevents
// that firing from re-inserting the timer afterward.
func (t *SimTimer) Cancel() {
	if t.isCancelled {
		return
	}

	t.isCancelled = true
	t.isActive = false
	t.sim.pending.Remove(t)
}

// DebugString renders duration, periodicity, and — if stack traces were
// enabled at construction — the capture point of construction, mirroring
// sim's debug_string helpers.
func (t *SimTimer) DebugString() string {
	s := fmt.Sprintf("duration: %s, periodic: %t", t.duration, t.isPeriodic)

	if t.creationTrace != "" {
		s += "\ncreated at:\n" + t.creationTrace
	}

	return s
}

// fire runs the firing protocol described in spec.md §4.3: increment tick,
// invoke the callback, and — for an uncancelled periodic timer — advance
// next_call and re-insert into pending. It is only ever called by the
// event wheel, with the timer already removed from the QueueMap it was
// pulled from.
func (t *SimTimer) fire() {
	t.sim.InvokeHook(HookCtx{Domain: t.sim, Pos: HookPosBeforeFire, Timer: t})

	t.tick++

	if t.isPeriodic {
		t.periodicFn(t)

		if !t.isCancelled {
			t.nextCall = t.nextCall.Add(t.duration)
			t.sim.pending.Add(t)
		}
	} else {
		t.oneShotFn()
		t.isActive = false
	}

	t.sim.InvokeHook(HookCtx{Domain: t.sim, Pos: HookPosAfterFire, Timer: t})
}
