package fluid

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrCapacity is wrapped by every fixed-capacity overflow.
var ErrCapacity = errors.New("capacity exceeded")

// ErrParticleCapacity is returned by Add when the particle store is full.
var ErrParticleCapacity = fmt.Errorf("particle store: %w", ErrCapacity)

// OverflowPolicy selects what happens when a fixed-capacity buffer is full.
type OverflowPolicy uint8

const (
	OverflowTruncate OverflowPolicy = iota // drop the excess, warn once
	OverflowPanic                          // panic on the first overflow
)

// ParseOverflowPolicy parses "truncate" or "panic".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "truncate":
		return OverflowTruncate, nil
	case "panic":
		return OverflowPanic, nil
	}
	return OverflowTruncate, fmt.Errorf("unknown overflow policy %q", s)
}

func (p OverflowPolicy) String() string {
	if p == OverflowPanic {
		return "panic"
	}
	return "truncate"
}

// Overflow identifies which buffer ran out of room.
type Overflow uint8

const (
	OverflowParticles Overflow = iota
	OverflowPairs
	OverflowBucket
	OverflowMarked
	OverflowVertices
	OverflowTriangles
	numOverflowKinds
)

var overflowNames = [numOverflowKinds]string{
	"particles", "pairs", "bucket", "marked_cells", "vertices", "triangles",
}

func (k Overflow) String() string {
	if k < numOverflowKinds {
		return overflowNames[k]
	}
	return "unknown"
}

// OverflowCounts holds the number of dropped items per overflow kind.
type OverflowCounts [numOverflowKinds]int

// Total returns the number of dropped items across all kinds.
func (c OverflowCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Guard applies the overflow policy and logs the first overflow of each kind.
// A nil Guard ignores overflows.
type Guard struct {
	policy OverflowPolicy
	logger *slog.Logger
	counts OverflowCounts
}

// NewGuard creates a guard. A nil logger uses slog.Default().
func NewGuard(policy OverflowPolicy, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{policy: policy, logger: logger}
}

// Report records one dropped item of the given kind.
func (g *Guard) Report(kind Overflow, capacity int) {
	if g == nil {
		return
	}
	g.counts[kind]++
	if g.counts[kind] > 1 {
		return
	}
	if g.policy == OverflowPanic {
		panic(fmt.Errorf("%s (capacity %d): %w", kind, capacity, ErrCapacity))
	}
	g.logger.Warn("capacity exceeded",
		"kind", kind.String(),
		"capacity", capacity,
	)
}

// Overflows returns a copy of the per-kind overflow counters.
func (g *Guard) Overflows() OverflowCounts {
	if g == nil {
		return OverflowCounts{}
	}
	return g.counts
}

// Policy returns the configured policy.
func (g *Guard) Policy() OverflowPolicy {
	if g == nil {
		return OverflowTruncate
	}
	return g.policy
}
