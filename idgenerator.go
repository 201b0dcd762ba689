package deltacycle

//go:generate mockgen -destination=mock_idgenerator.go -package=deltacycle -source=idgenerator.go

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator mints the opaque IDs SimTimer handles carry, the Go-native
// realisation of spec.md §9's "index into a slab plus a generation counter"
// suggestion for avoiding dangling references.
//
// Grounded on sim.IDGenerator, which offers the same two strategies
// (sequential vs. xid-based) behind the same interface. Unlike
// sim.GetIDGenerator, deltacycle does not keep a single process-wide
// singleton: a process hosting several independent Simulators must be free
// to run one with a deterministic sequential generator (for golden-output
// tests) alongside one with the parallel-safe xid generator, so each
// Simulator owns its own IDGenerator instance instead.
type IDGenerator interface {
	// Generate returns a new, previously unused ID.
	Generate() string
}

// NewSequentialIDGenerator returns an IDGenerator producing "1", "2", "3",
// ... Deterministic — the default, since the simulator's entire purpose is
// determinism.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

type sequentialIDGenerator struct {
	next uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.next, 1), 10)
}

// NewXIDIDGenerator returns an IDGenerator backed by github.com/rs/xid,
// suitable when timer IDs must be globally unique across processes (for
// example, when exporting timer identities to an external trace) rather
// than merely unique within one Simulator.
func NewXIDIDGenerator() IDGenerator {
	return xidIDGenerator{}
}

type xidIDGenerator struct{}

func (xidIDGenerator) Generate() string { return xid.New().String() }
