package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the absolute tolerance used for boundary contact tests.
const Epsilon = 1e-9

// Segment represents a straight segment between two points
type Segment struct {
	A, B orb.Point
}

// Length returns the Euclidean length of the segment
func (s Segment) Length() float64 {
	return planar.Distance(s.A, s.B)
}

// Bound returns the axis-aligned bounding box of the segment
func (s Segment) Bound() orb.Bound {
	return orb.MultiPoint{s.A, s.B}.Bound()
}

// Canonical returns the segment with its endpoints in lexicographic order,
// so that a segment and its reverse compare equal.
func (s Segment) Canonical() Segment {
	if Less(s.B, s.A) {
		return Segment{A: s.B, B: s.A}
	}
	return s
}

// At returns the point at parameter t along the segment.
func (s Segment) At(t float64) orb.Point {
	d := r2.Sub(vec(s.B), vec(s.A))
	return point(r2.Add(vec(s.A), r2.Scale(t, d)))
}

// Offset returns the two points at distance d from p, perpendicular to s on
// either side.
func (s Segment) Offset(p orb.Point, d float64) (orb.Point, orb.Point) {
	dir := r2.Sub(vec(s.B), vec(s.A))
	n := r2.Norm(dir)
	if n == 0 {
		return p, p
	}
	normal := r2.Scale(d/n, r2.Vec{X: -dir.Y, Y: dir.X})
	return point(r2.Add(vec(p), normal)), point(r2.Sub(vec(p), normal))
}

// LineString converts the segment for GeoJSON and rendering consumers.
func (s Segment) LineString() orb.LineString {
	return orb.LineString{s.A, s.B}
}

// Less orders points by X, then Y.
func Less(a, b orb.Point) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// Distance calculates Euclidean distance between two points
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

func vec(p orb.Point) r2.Vec {
	return r2.Vec{X: p[0], Y: p[1]}
}

func point(v r2.Vec) orb.Point {
	return orb.Point{v.X, v.Y}
}

// direction calculates the cross product to determine orientation
func direction(a, b, c orb.Point) float64 {
	return r2.Cross(r2.Sub(vec(b), vec(a)), r2.Sub(vec(c), vec(a)))
}

// OnSegment reports whether p lies on s within Epsilon.
func OnSegment(p orb.Point, s Segment) bool {
	d := r2.Sub(vec(s.B), vec(s.A))
	l2 := r2.Dot(d, d)
	if l2 == 0 {
		return planar.Distance(p, s.A) <= Epsilon
	}

	t := r2.Dot(r2.Sub(vec(p), vec(s.A)), d) / l2
	t = math.Max(0, math.Min(1, t))
	proj := r2.Add(vec(s.A), r2.Scale(t, d))
	return r2.Norm(r2.Sub(vec(p), proj)) <= Epsilon
}

// SegmentsIntersect checks if two closed segments share at least one point.
// Touching at an endpoint counts as an intersection.
func SegmentsIntersect(s1, s2 Segment) bool {
	d1 := direction(s2.A, s2.B, s1.A)
	d2 := direction(s2.A, s2.B, s1.B)
	d3 := direction(s1.A, s1.B, s2.A)
	d4 := direction(s1.A, s1.B, s2.B)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear and endpoint contact
	return OnSegment(s1.A, s2) || OnSegment(s1.B, s2) ||
		OnSegment(s2.A, s1) || OnSegment(s2.B, s1)
}

// ringEdges calls fn for every edge of r, closing the ring if needed.
// Iteration stops early when fn returns false.
func ringEdges(r orb.Ring, fn func(Segment) bool) {
	n := len(r)
	if n < 2 {
		return
	}
	for i := 0; i < n-1; i++ {
		if !fn(Segment{A: r[i], B: r[i+1]}) {
			return
		}
	}
	if r[0] != r[n-1] {
		fn(Segment{A: r[n-1], B: r[0]})
	}
}

// OnBoundary reports whether p lies on any ring of poly.
func OnBoundary(poly orb.Polygon, p orb.Point) bool {
	on := false
	for _, ring := range poly {
		ringEdges(ring, func(e Segment) bool {
			on = OnSegment(p, e)
			return !on
		})
		if on {
			return true
		}
	}
	return false
}

// Covers reports whether p lies in the interior or on the boundary of poly.
func Covers(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 {
		return false
	}
	return OnBoundary(poly, p) || planar.PolygonContains(poly, p)
}

// ContainsStrict reports whether p lies in the open interior of poly.
func ContainsStrict(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 || OnBoundary(poly, p) {
		return false
	}
	return planar.PolygonContains(poly, p)
}

// Breakpoints returns the sorted parameters in [0, 1] at which s meets the
// boundary of any of the polygons, always including 0 and 1. Between two
// consecutive breakpoints the segment lies entirely inside, outside or on the
// boundary of each polygon, so a midpoint test classifies the whole interval.
func Breakpoints(s Segment, polys ...orb.Polygon) []float64 {
	ts := []float64{0, 1}
	d := r2.Sub(vec(s.B), vec(s.A))
	dn := r2.Norm(d)
	if dn == 0 {
		return ts
	}

	for _, poly := range polys {
		for _, ring := range poly {
			ringEdges(ring, func(e Segment) bool {
				ts = appendCrossing(ts, s, d, dn, e)
				return true
			})
		}
	}

	sort.Float64s(ts)
	return ts
}

func appendCrossing(ts []float64, s Segment, d r2.Vec, dn float64, e Segment) []float64 {
	ev := r2.Sub(vec(e.B), vec(e.A))
	en := r2.Norm(ev)
	if en == 0 {
		return ts
	}
	ac := r2.Sub(vec(e.A), vec(s.A))
	den := r2.Cross(d, ev)

	if math.Abs(den) > Epsilon*dn*en {
		t := r2.Cross(ac, ev) / den
		u := r2.Cross(ac, d) / den
		tEps := Epsilon / dn
		uEps := Epsilon / en
		if t >= -tEps && t <= 1+tEps && u >= -uEps && u <= 1+uEps {
			ts = append(ts, clamp01(t))
		}
		return ts
	}

	// Parallel edges only matter when collinear with s.
	if math.Abs(r2.Cross(ac, d)) > Epsilon*dn {
		return ts
	}
	l2 := dn * dn
	for _, p := range []orb.Point{e.A, e.B} {
		t := r2.Dot(r2.Sub(vec(p), vec(s.A)), d) / l2
		if t > 0 && t < 1 {
			ts = append(ts, t)
		}
	}
	return ts
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// Intervals calls fn with the midpoint of every non-degenerate interval between
// consecutive breakpoints. Iteration stops early when fn returns false.
func Intervals(s Segment, ts []float64, fn func(mid orb.Point) bool) {
	length := s.Length()
	if length < Epsilon {
		fn(s.A)
		return
	}
	minGap := Epsilon / length
	for i := 0; i+1 < len(ts); i++ {
		if ts[i+1]-ts[i] <= minGap {
			continue
		}
		if !fn(s.At((ts[i] + ts[i+1]) / 2)) {
			return
		}
	}
}

// CrossesInterior reports whether the open segment s meets the open interior
// of poly. Sharing a vertex or running along an edge is not a crossing.
func CrossesInterior(s Segment, poly orb.Polygon) bool {
	if len(poly) == 0 {
		return false
	}
	if !s.Bound().Pad(Epsilon).Intersects(poly.Bound()) {
		return false
	}

	crosses := false
	Intervals(s, Breakpoints(s, poly), func(mid orb.Point) bool {
		crosses = ContainsStrict(poly, mid)
		return !crosses
	})
	return crosses
}

// LeavesPolygon reports whether any part of s lies outside the closed poly.
func LeavesPolygon(s Segment, poly orb.Polygon) bool {
	if !Covers(poly, s.A) || !Covers(poly, s.B) {
		return true
	}
	leaves := false
	Intervals(s, Breakpoints(s, poly), func(mid orb.Point) bool {
		leaves = !Covers(poly, mid)
		return !leaves
	})
	return leaves
}

// SegmentIntersectsPolygon reports whether the closed segment s shares any
// point with the closed poly, boundary contact included.
func SegmentIntersectsPolygon(s Segment, poly orb.Polygon) bool {
	if len(poly) == 0 {
		return false
	}
	if !s.Bound().Pad(Epsilon).Intersects(poly.Bound()) {
		return false
	}
	if Covers(poly, s.A) || Covers(poly, s.B) {
		return true
	}

	hit := false
	for _, ring := range poly {
		ringEdges(ring, func(e Segment) bool {
			hit = SegmentsIntersect(s, e)
			return !hit
		})
		if hit {
			return true
		}
	}
	return false
}

// Within reports whether inner lies entirely inside the closed outer polygon.
func Within(inner, outer orb.Polygon) bool {
	if len(inner) == 0 || len(outer) == 0 {
		return false
	}
	within := true
	ringEdges(inner[0], func(e Segment) bool {
		within = !LeavesPolygon(e, outer)
		return within
	})
	if !within {
		return false
	}

	// A hole of outer sitting inside inner would be excluded from outer.
	for _, hole := range outer[1:] {
		for _, v := range hole {
			if ContainsStrict(inner, v) {
				return false
			}
		}
	}
	return true
}

// InteriorsIntersect reports whether the open interiors of a and b overlap.
func InteriorsIntersect(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}

	for _, pair := range [][2]orb.Polygon{{a, b}, {b, a}} {
		hit := false
		for _, ring := range pair[0] {
			ringEdges(ring, func(e Segment) bool {
				hit = CrossesInterior(e, pair[1])
				return !hit
			})
			if hit {
				return true
			}
		}
	}

	// Coincident boundaries leave only the centroid test.
	return ContainsStrict(b, Centroid(a)) || ContainsStrict(a, Centroid(b))
}

// IsPathClear checks if the straight path between two points stays out of
// every polygon's interior. Touching a boundary is allowed.
// The endpoints are ordered first so the result does not depend on direction.
func IsPathClear(p1, p2 orb.Point, polygons []orb.Polygon) bool {
	seg := Segment{A: p1, B: p2}.Canonical()
	for _, poly := range polygons {
		if CrossesInterior(seg, poly) {
			return false
		}
	}
	return true
}
