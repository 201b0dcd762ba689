package deltacycle

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced at the boundaries named in spec.md §7. None are
// recovered internally; every simulator entry point that can fail returns
// one of these directly, or one of the typed errors below (TimeoutError,
// TimerNotInFutureError), which are matched with errors.As.
var (
	// ErrDivisionByZero is returned by SimDuration.TruncDiv when dividing
	// by zero.
	ErrDivisionByZero = errors.New("deltacycle: division by zero")

	// ErrInvalidArgument is returned by Elapse and ElapseBlocking when
	// given a negative duration.
	ErrInvalidArgument = errors.New("deltacycle: invalid argument")

	// ErrReentrancy is returned by Elapse when called while another
	// Elapse on the same Simulator is already in progress.
	ErrReentrancy = errors.New("deltacycle: elapse is already in progress")

	// ErrEmpty is returned by QueueMap accessors when no bucket exists.
	ErrEmpty = errors.New("deltacycle: queue map is empty")
)

// TimeoutError is returned by FlushTimers when the virtual-time budget is
// exceeded, which usually indicates a periodic timer livelock.
type TimeoutError struct {
	Timeout SimDuration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("deltacycle: flush_timers exceeded its timeout of %s", e.Timeout)
}

// TimerNotInFutureError is returned by Resume when a timer's next_call
// precedes the simulator's current elapsed time.
type TimerNotInFutureError struct {
	Elapsed  SimDuration
	NextCall SimDuration
}

func (e *TimerNotInFutureError) Error() string {
	return fmt.Sprintf(
		"deltacycle: timer next_call %s is before elapsed %s", e.NextCall, e.Elapsed)
}
