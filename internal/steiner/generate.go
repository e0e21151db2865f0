package steiner

import (
	"github.com/paulmach/orb"

	"steiner-planner/internal/geometry"
)

// RandomSource supplies uniform reals in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// TerminalSpec describes the terminals to generate.
type TerminalSpec struct {
	Count       int     // terminals to place
	Shape       Shape   // footprint of each terminal
	Size        float64 // edge length of square footprints
	MaxAttempts int     // candidate samples allowed before giving up
}

// Accept reports whether candidate fits entirely in free space.
func Accept(candidate Terminal, fs *FreeSpace) bool {
	return fs.Contains(candidate)
}

// GenerateTerminals places spec.Count terminals by rejection sampling over the
// bounding box of the free space. Each sample is a fresh uniform draw; rejected
// candidates are discarded. When spec.MaxAttempts samples have been drawn
// without placing every terminal, the terminals placed so far are returned
// together with a *GenerationExhaustedError.
func GenerateTerminals(fs *FreeSpace, spec TerminalSpec, rng RandomSource) ([]Terminal, error) {
	if spec.Count <= 0 {
		return nil, nil
	}
	if rng == nil {
		return nil, ErrNoRandomSource
	}

	box := fs.Bounds.Bound()
	terminals := make([]Terminal, 0, spec.Count)
	attempts := 0

	for len(terminals) < spec.Count && attempts < spec.MaxAttempts {
		attempts++
		x := box.Min[0] + rng.Float64()*(box.Max[0]-box.Min[0])
		y := box.Min[1] + rng.Float64()*(box.Max[1]-box.Min[1])

		candidate := NewTerminal(spec.Shape, orb.Point{x, y}, spec.Size)
		if Accept(candidate, fs) {
			terminals = append(terminals, candidate)
		}
	}

	if len(terminals) < spec.Count {
		return terminals, &GenerationExhaustedError{
			Requested: spec.Count,
			Placed:    len(terminals),
			Attempts:  attempts,
		}
	}
	return terminals, nil
}

// Dedupe keeps a terminal only if its position is farther than minDistance
// from every terminal already kept. Earlier terminals win. A non-positive
// minDistance keeps everything. Neighbour lookups go through a spatial index;
// without it the filter is O(n^2) in the terminal count.
func Dedupe(terminals []Terminal, minDistance float64) []Terminal {
	if minDistance <= 0 {
		return append([]Terminal(nil), terminals...)
	}

	kept := make([]Terminal, 0, len(terminals))
	index := geometry.NewSpatialIndex()

	for _, t := range terminals {
		p := t.Position()
		near := orb.Bound{Min: p, Max: p}.Pad(minDistance)

		tooClose := false
		for _, id := range index.Query(near) {
			if geometry.Distance(p, kept[id].Position()) <= minDistance {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		index.Insert(len(kept), orb.Bound{Min: p, Max: p})
		kept = append(kept, t)
	}
	return kept
}
