package deltacycle

// Scheduler is the forked scheduling context a Simulator hands to hosted
// code. spec.md §9 describes the source's mechanism as "a scoped zone" and
// recommends Go express it as "an explicit Scheduler parameter threaded
// through user code" — that's exactly what this is: a small value bound to
// one owning Simulator at construction, carrying the three interception
// hooks (NewTimer, NewPeriodicTimer, QueueMicrotask) plus the well-known
// retrievable values (ClockPeriod, Name) spec.md §6 says the forked context
// publishes.
//
// Grounded on sim.NewTickScheduler(handler, engine, freq), which binds a
// scheduling helper to one owner (the handler) at construction time in
// exactly this shape.
type Scheduler struct {
	sim *Simulator

	// ClockPeriod is the Simulator's configured clock period, retrievable
	// from the scheduling context per spec.md §6.
	ClockPeriod SimDuration

	// Name is the Simulator's configured name, retrievable from the
	// scheduling context per spec.md §6.
	Name string
}

func newScheduler(sim *Simulator) *Scheduler {
	return &Scheduler{
		sim:         sim,
		ClockPeriod: sim.clockPeriod,
		Name:        sim.name,
	}
}

// Simulator returns the Simulator this scheduling context belongs to — the
// third well-known retrievable value from spec.md §6.
func (s *Scheduler) Simulator() *Simulator { return s.sim }

// NewTimer installs a one-shot timer, the "create one-shot timer" hook from
// spec.md §6. d may be a SimDuration or a NativeDuration; the latter is
// lifted to picoseconds.
func (s *Scheduler) NewTimer(d Durationish, cb OneShotCallback) *SimTimer {
	t := newTimer(s.sim, s, toSimDuration(d), false, cb, nil)
	s.sim.pending.Add(t)

	return t
}

// NewPeriodicTimer installs a periodic timer, the "create periodic timer"
// hook from spec.md §6.
func (s *Scheduler) NewPeriodicTimer(d Durationish, cb PeriodicCallback) *SimTimer {
	t := newTimer(s.sim, s, toSimDuration(d), true, nil, cb)
	s.sim.pending.Add(t)

	return t
}

// QueueMicrotask schedules fn to run during the next microtask drain, the
// "schedule micro-task" hook from spec.md §6.
func (s *Scheduler) QueueMicrotask(fn func()) {
	s.sim.microtasks.PushBack(fn)
}

func toSimDuration(d Durationish) SimDuration {
	if sd, ok := d.(SimDuration); ok {
		return sd
	}

	return Picoseconds(d.toPicoseconds())
}
