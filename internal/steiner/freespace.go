package steiner

import (
	"log"

	"github.com/paulmach/orb"

	"steiner-planner/internal/geometry"
)

// sideOffset is how far off a boundary run the free-space test probes for
// open space. It must stay well above geometry.Epsilon.
const sideOffset = 1e-6

// FreeSpace is the obstacle-free part of the bounding region.
// It is derived once and read-only afterwards.
type FreeSpace struct {
	Bounds    orb.Polygon   // bounding region
	Obstacles []orb.Polygon // validated obstacles, clipped to Bounds
	Combined  []orb.Polygon // union of Obstacles
	Region    []orb.Polygon // Bounds minus Combined

	index *geometry.SpatialIndex
}

// NewFreeSpace validates the inputs and computes bounds minus the union of
// obstacles. Obstacles reaching past the bounding region are clipped to it;
// an obstacle with no overlap at all is a GeometryError.
func NewFreeSpace(bounds orb.Polygon, obstacles []orb.Polygon, logger *log.Logger) (*FreeSpace, error) {
	if logger == nil {
		logger = log.Default()
	}

	bounds = normalizePolygon(bounds)
	if err := geometry.ValidatePolygon(bounds); err != nil {
		return nil, &GeometryError{Op: "bounds", Index: -1, Err: err}
	}

	prepared := make([]orb.Polygon, 0, len(obstacles))
	for i, obs := range obstacles {
		obs = normalizePolygon(obs)
		if err := geometry.ValidatePolygon(obs); err != nil {
			return nil, &GeometryError{Op: "obstacle", Index: i, Err: err}
		}
		if geometry.Within(obs, bounds) {
			prepared = append(prepared, obs)
			continue
		}

		clipped := geometry.Intersection(obs, bounds)
		if len(clipped) == 0 {
			return nil, &GeometryError{Op: "clip", Index: i, Err: geometry.ErrOutsideBounds}
		}
		logger.Printf("⚠️  Obstacle %d extends past the bounding region, clipped to %d piece(s)\n", i, len(clipped))
		prepared = append(prepared, clipped...)
	}

	combined := geometry.CombineObstacles(prepared, logger)
	fs := &FreeSpace{
		Bounds:    bounds,
		Obstacles: prepared,
		Combined:  combined,
		Region:    geometry.Difference(bounds, combined),
		index:     geometry.NewPolygonIndex(prepared),
	}
	return fs, nil
}

func normalizePolygon(poly orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(poly))
	for _, ring := range poly {
		out = append(out, geometry.NormalizeRing(ring))
	}
	return out
}

// Area returns the area of free space.
func (fs *FreeSpace) Area() float64 {
	total := 0.0
	for _, p := range fs.Region {
		total += geometry.Area(p)
	}
	return total
}

// ContainsPoint reports whether p lies in the closed free space: inside the
// bounding region and not in the interior of any obstacle.
func (fs *FreeSpace) ContainsPoint(p orb.Point) bool {
	if !geometry.Covers(fs.Bounds, p) {
		return false
	}
	for _, id := range fs.index.Query(orb.Bound{Min: p, Max: p}) {
		if geometry.ContainsStrict(fs.Obstacles[id], p) {
			return false
		}
	}
	return true
}

// Contains reports whether the whole terminal fits in free space. Point
// terminals use ContainsPoint; footprints must lie within the bounding region
// and share no interior with any obstacle.
func (fs *FreeSpace) Contains(t Terminal) bool {
	fp, ok := t.Footprint()
	if !ok {
		return fs.ContainsPoint(t.Position())
	}

	if !geometry.Within(fp, fs.Bounds) {
		return false
	}
	for _, id := range fs.index.Query(fp.Bound()) {
		if geometry.InteriorsIntersect(fp, fs.Obstacles[id]) {
			return false
		}
	}
	return true
}

// HelperPoints returns the distinct obstacle corners lying in free space.
// Corners buried inside another obstacle cannot carry a path and are skipped.
func (fs *FreeSpace) HelperPoints() []orb.Point {
	var out []orb.Point
	for _, v := range geometry.Vertices(fs.Obstacles...) {
		if fs.ContainsPoint(v) {
			out = append(out, v)
		}
	}
	return out
}

// Blocks reports whether the segment p–q leaves free space. Besides crossing
// an obstacle interior, a segment is blocked when it runs along a boundary
// with no open space on either side, e.g. along an obstacle edge that lies on
// the bounding region or an edge shared by two touching obstacles.
func (fs *FreeSpace) Blocks(p, q orb.Point) bool {
	seg := geometry.Segment{A: p, B: q}.Canonical()
	ids := fs.index.Query(seg.Bound().Pad(sideOffset))

	polys := make([]orb.Polygon, 0, len(ids)+1)
	polys = append(polys, fs.Bounds)
	for _, id := range ids {
		polys = append(polys, fs.Obstacles[id])
	}

	blocked := false
	geometry.Intervals(seg, geometry.Breakpoints(seg, polys...), func(mid orb.Point) bool {
		blocked = !fs.freeAt(seg, mid, ids)
		return !blocked
	})
	return blocked
}

func (fs *FreeSpace) freeAt(seg geometry.Segment, p orb.Point, ids []int) bool {
	if !geometry.Covers(fs.Bounds, p) {
		return false
	}

	onBoundary := geometry.OnBoundary(fs.Bounds, p)
	for _, id := range ids {
		obs := fs.Obstacles[id]
		if geometry.ContainsStrict(obs, p) {
			return false
		}
		if !onBoundary && geometry.OnBoundary(obs, p) {
			onBoundary = true
		}
	}
	if !onBoundary {
		return true
	}

	left, right := seg.Offset(p, sideOffset)
	return fs.openAt(left, ids) || fs.openAt(right, ids)
}

func (fs *FreeSpace) openAt(p orb.Point, ids []int) bool {
	if !geometry.ContainsStrict(fs.Bounds, p) {
		return false
	}
	for _, id := range ids {
		if geometry.Covers(fs.Obstacles[id], p) {
			return false
		}
	}
	return true
}
