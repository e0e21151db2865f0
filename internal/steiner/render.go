package steiner

import (
	"errors"

	"github.com/paulmach/orb"

	"steiner-planner/internal/geometry"
)

// Snapshot is everything a result consumer needs to present a run. It holds
// plain geometry only; presentation is up to the Renderer.
type Snapshot struct {
	Bounds     orb.Polygon
	Obstacles  []orb.Polygon
	Terminals  []orb.Point
	Footprints []orb.Polygon // per terminal, nil for point terminals
	Helpers    []orb.Point
	Edges      []geometry.Segment
	Length     float64
	Partial    bool
	Unreached  []int
}

// Renderer consumes a snapshot, e.g. by writing a file.
type Renderer interface {
	Render(s *Snapshot) error
}

// Snapshot captures the result for rendering.
func (r *Result) Snapshot() *Snapshot {
	s := &Snapshot{
		Bounds:     r.FreeSpace.Bounds,
		Obstacles:  r.FreeSpace.Obstacles,
		Terminals:  Positions(r.Terminals),
		Footprints: make([]orb.Polygon, len(r.Terminals)),
		Helpers:    r.Helpers,
		Edges:      r.Network.Segments,
		Length:     r.Network.Length,
		Partial:    r.Network.Partial,
		Unreached:  r.Network.Unreached,
	}
	for i, t := range r.Terminals {
		if fp, ok := t.Footprint(); ok {
			s.Footprints[i] = fp
		}
	}
	return s
}

// Export hands the result to every renderer and joins their errors.
func Export(r *Result, renderers ...Renderer) error {
	s := r.Snapshot()
	var errs []error
	for _, rd := range renderers {
		if err := rd.Render(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
