package deltacycle

import (
	"fmt"
	"math"
	"time"
)

// picosecond weights for each named duration unit, mirroring the way
// sim.Freq defines its Hz/KHz/MHz/GHz constants as multiples of a base unit.
const (
	picosecondsPerNanosecond  int64 = 1000
	picosecondsPerMicrosecond int64 = 1000 * picosecondsPerNanosecond
	picosecondsPerMillisecond int64 = 1000 * picosecondsPerMicrosecond
	picosecondsPerSecond      int64 = 1000 * picosecondsPerMillisecond
	picosecondsPerMinute      int64 = 60 * picosecondsPerSecond
	picosecondsPerHour        int64 = 60 * picosecondsPerMinute
	picosecondsPerDay         int64 = 24 * picosecondsPerHour
)

// SimDuration is an immutable, signed count of picoseconds. Equality,
// ordering and hashing all depend solely on that count.
type SimDuration struct {
	ps int64
}

// ZeroDuration is the additive identity.
var ZeroDuration = SimDuration{}

// DurationParts names every unit SimDuration can be built from. All fields
// are optional, default zero, and may be negative; the result is their
// signed, picosecond-weighted sum.
type DurationParts struct {
	Days         int64
	Hours        int64
	Minutes      int64
	Seconds      int64
	Milliseconds int64
	Microseconds int64
	Nanoseconds  int64
	Picoseconds  int64
}

// NewSimDuration sums every named part, weighted by its picosecond factor.
func NewSimDuration(p DurationParts) SimDuration {
	ps := p.Days*picosecondsPerDay +
		p.Hours*picosecondsPerHour +
		p.Minutes*picosecondsPerMinute +
		p.Seconds*picosecondsPerSecond +
		p.Milliseconds*picosecondsPerMillisecond +
		p.Microseconds*picosecondsPerMicrosecond +
		p.Nanoseconds*picosecondsPerNanosecond +
		p.Picoseconds

	return SimDuration{ps: ps}
}

// Picoseconds returns a SimDuration of exactly n picoseconds.
func Picoseconds(n int64) SimDuration { return SimDuration{ps: n} }

// Nanoseconds returns a SimDuration of exactly n nanoseconds.
func Nanoseconds(n int64) SimDuration { return SimDuration{ps: n * picosecondsPerNanosecond} }

// Microseconds returns a SimDuration of exactly n microseconds.
func Microseconds(n int64) SimDuration { return SimDuration{ps: n * picosecondsPerMicrosecond} }

// Milliseconds returns a SimDuration of exactly n milliseconds.
func Milliseconds(n int64) SimDuration { return SimDuration{ps: n * picosecondsPerMillisecond} }

// Seconds returns a SimDuration of exactly n seconds.
func Seconds(n int64) SimDuration { return SimDuration{ps: n * picosecondsPerSecond} }

// Minutes returns a SimDuration of exactly n minutes (always 60s; no leap
// seconds, per the simulator's calendar non-goals).
func Minutes(n int64) SimDuration { return SimDuration{ps: n * picosecondsPerMinute} }

// Hours returns a SimDuration of exactly n hours.
func Hours(n int64) SimDuration { return SimDuration{ps: n * picosecondsPerHour} }

// Days returns a SimDuration of exactly n days (always 24h).
func Days(n int64) SimDuration { return SimDuration{ps: n * picosecondsPerDay} }

// FromPicoseconds is the inverse of InPicoseconds, satisfying the round-trip
// law FromPicoseconds(d.InPicoseconds()) == d.
func FromPicoseconds(ps int64) SimDuration { return SimDuration{ps: ps} }

// NativeDuration is the coarser, microsecond-granular "extern duration" that
// interoperates with SimDuration by lifting: its microsecond count is
// multiplied by 1e6 to obtain picoseconds. It plays the same role relative
// to SimDuration that sim.Freq plays relative to sim.VTimeInSec: a unit one
// notch coarser than the one arithmetic actually happens in.
type NativeDuration int64

// FromStdDuration truncates a standard library time.Duration to microsecond
// granularity, the resolution a hosted program's native timers run at.
func FromStdDuration(d time.Duration) NativeDuration {
	return NativeDuration(d.Microseconds())
}

// StdDuration widens back out to a time.Duration.
func (d NativeDuration) StdDuration() time.Duration {
	return time.Duration(d) * time.Microsecond
}

// SimDuration lifts this extern duration into picosecond resolution.
func (d NativeDuration) SimDuration() SimDuration {
	return SimDuration{ps: int64(d) * picosecondsPerMicrosecond}
}

func (d NativeDuration) toPicoseconds() int64 { return int64(d) * picosecondsPerMicrosecond }

// Durationish is satisfied by SimDuration and NativeDuration. Every
// SimDuration operation that spec.md says must "accept either SimDuration
// or extern duration" takes a Durationish and lifts it to picoseconds
// before operating. The lifting method is unexported, so Durationish is
// sealed to this package's two duration types.
type Durationish interface {
	toPicoseconds() int64
}

func (d SimDuration) toPicoseconds() int64 { return d.ps }

// Add returns d + other, lifting other to picoseconds first.
func (d SimDuration) Add(other Durationish) SimDuration {
	return SimDuration{ps: d.ps + other.toPicoseconds()}
}

// Sub returns d - other, lifting other to picoseconds first.
func (d SimDuration) Sub(other Durationish) SimDuration {
	return SimDuration{ps: d.ps - other.toPicoseconds()}
}

// Mul scales d by an arbitrary real factor, rounding the fractional
// picosecond product to the nearest integer picosecond. Ties round away
// from zero (math.Round's behaviour) — callers must not depend on any
// particular tie-breaking rule, per spec.md's rounding note.
func (d SimDuration) Mul(factor float64) SimDuration {
	return SimDuration{ps: int64(math.Round(float64(d.ps) * factor))}
}

// TruncDiv performs truncated integer division by divisor, failing with
// ErrDivisionByZero when divisor is zero.
func (d SimDuration) TruncDiv(divisor int64) (SimDuration, error) {
	if divisor == 0 {
		return ZeroDuration, ErrDivisionByZero
	}

	return SimDuration{ps: d.ps / divisor}, nil
}

// Neg returns the additive inverse of d.
func (d SimDuration) Neg() SimDuration { return SimDuration{ps: -d.ps} }

// Abs returns the non-negative magnitude of d.
func (d SimDuration) Abs() SimDuration {
	if d.ps < 0 {
		return d.Neg()
	}

	return d
}

// Compare orders two SimDurations by picosecond count: -1, 0, or 1. It is
// the comparator QueueMap uses to keep pending timers ordered.
func (d SimDuration) Compare(other SimDuration) int {
	switch {
	case d.ps < other.ps:
		return -1
	case d.ps > other.ps:
		return 1
	default:
		return 0
	}
}

// CompareDuration orders d against any Durationish, lifting other first.
func (d SimDuration) CompareDuration(other Durationish) int {
	op := other.toPicoseconds()
	switch {
	case d.ps < op:
		return -1
	case d.ps > op:
		return 1
	default:
		return 0
	}
}

// Less reports whether d < other.
func (d SimDuration) Less(other Durationish) bool { return d.CompareDuration(other) < 0 }

// LessOrEqual reports whether d <= other.
func (d SimDuration) LessOrEqual(other Durationish) bool { return d.CompareDuration(other) <= 0 }

// Greater reports whether d > other.
func (d SimDuration) Greater(other Durationish) bool { return d.CompareDuration(other) > 0 }

// GreaterOrEqual reports whether d >= other.
func (d SimDuration) GreaterOrEqual(other Durationish) bool { return d.CompareDuration(other) >= 0 }

// Equal reports whether d and other represent the same picosecond count,
// including across the SimDuration/NativeDuration boundary.
func (d SimDuration) Equal(other Durationish) bool { return d.ps == other.toPicoseconds() }

// Hash derives a map/set-friendly hash from the picosecond count.
func (d SimDuration) Hash() uint64 {
	h := uint64(d.ps)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33

	return h
}

// IsNegative reports whether d is negative.
func (d SimDuration) IsNegative() bool { return d.ps < 0 }

// InPicoseconds returns the signed picosecond count.
func (d SimDuration) InPicoseconds() int64 { return d.ps }

// InNanoseconds returns the signed count of whole nanoseconds, truncated
// toward zero.
func (d SimDuration) InNanoseconds() int64 { return d.ps / picosecondsPerNanosecond }

// InMicroseconds returns the signed count of whole microseconds, truncated
// toward zero.
func (d SimDuration) InMicroseconds() int64 { return d.ps / picosecondsPerMicrosecond }

// InMilliseconds returns the signed count of whole milliseconds, truncated
// toward zero.
func (d SimDuration) InMilliseconds() int64 { return d.ps / picosecondsPerMillisecond }

// InSeconds returns the signed count of whole seconds, truncated toward
// zero.
func (d SimDuration) InSeconds() int64 { return d.ps / picosecondsPerSecond }

// InMinutes returns the signed count of whole minutes, truncated toward
// zero.
func (d SimDuration) InMinutes() int64 { return d.ps / picosecondsPerMinute }

// InHours returns the signed count of whole hours, truncated toward zero.
func (d SimDuration) InHours() int64 { return d.ps / picosecondsPerHour }

// InDays returns the signed count of whole days, truncated toward zero.
func (d SimDuration) InDays() int64 { return d.ps / picosecondsPerDay }

// String renders the canonical H:MM:SS.mmmmmm form, with a second,
// dot-separated six-digit picosecond remainder appended whenever that
// remainder is non-zero. For example, 1ps + 1ns + 1us renders as
// "0:00:00.000001.001001".
func (d SimDuration) String() string {
	sign := ""
	mag := d.ps

	if mag < 0 {
		sign = "-"
		mag = -mag
	}

	micros := mag / picosecondsPerMicrosecond
	psRemainder := mag % picosecondsPerMicrosecond

	secsTotal := micros / 1_000_000
	microsRemainder := micros % 1_000_000

	hours := secsTotal / 3600
	minutes := (secsTotal % 3600) / 60
	seconds := secsTotal % 60

	s := fmt.Sprintf("%s%d:%02d:%02d.%06d", sign, hours, minutes, seconds, microsRemainder)

	if psRemainder != 0 {
		s += fmt.Sprintf(".%06d", psRemainder)
	}

	return s
}

// CompareSimDuration is the comparator QueueMap instances keyed on
// SimDuration are constructed with.
func CompareSimDuration(a, b SimDuration) int { return a.Compare(b) }
