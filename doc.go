// Package deltacycle implements a deterministic discrete-event simulator
// core for modelling digital hardware systems. It intercepts the
// time/asynchrony primitives of a hosted callback program — one-shot
// timers, periodic timers, and microtasks — and replaces real elapsed time
// with a virtual clock of picosecond resolution, firing callbacks through
// a delta-cycle event wheel in a precisely defined order.
//
// The core has three tightly coupled pieces: SimDuration, a
// picosecond-resolution duration type; QueueMap, a time-indexed ordered
// map of FIFO queues used to store pending timers; and Simulator, the
// event wheel that drives SimTimer firing and microtask draining through
// an intercepted Scheduler handle.
//
// A typical use:
//
//	sim := deltacycle.NewSimulator()
//	deltacycle.Run(sim, func(sched *deltacycle.Scheduler) struct{} {
//		sched.NewTimer(deltacycle.Milliseconds(5), func() {
//			fmt.Println("fired")
//		})
//		return struct{}{}
//	})
//	sim.Elapse(deltacycle.Milliseconds(10))
package deltacycle
