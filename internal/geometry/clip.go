package geometry

import (
	polyclip "github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
)

// Union returns the union of polys as non-overlapping polygons with holes.
func Union(polys []orb.Polygon) []orb.Polygon {
	if len(polys) == 0 {
		return nil
	}
	acc := toClip(polys[0])
	for _, p := range polys[1:] {
		acc = acc.Construct(polyclip.UNION, toClip(p))
	}
	return fromClip(acc)
}

// Intersection clips poly to the region covered by clip.
func Intersection(poly, clip orb.Polygon) []orb.Polygon {
	return fromClip(toClip(poly).Construct(polyclip.INTERSECTION, toClip(clip)))
}

// Difference subtracts every polygon in holes from region.
func Difference(region orb.Polygon, holes []orb.Polygon) []orb.Polygon {
	acc := toClip(region)
	for _, h := range holes {
		acc = acc.Construct(polyclip.DIFFERENCE, toClip(h))
	}
	return fromClip(acc)
}

// toClip converts every ring into an open polyclip contour. polyclip treats
// nested contours with the even-odd rule, so holes need no special marking.
func toClip(poly orb.Polygon) polyclip.Polygon {
	out := make(polyclip.Polygon, 0, len(poly))
	for _, ring := range poly {
		ring = NormalizeRing(ring)
		if len(ring) < 4 {
			continue
		}
		c := make(polyclip.Contour, 0, len(ring)-1)
		for _, p := range ring[:len(ring)-1] {
			c = append(c, polyclip.Point{X: p[0], Y: p[1]})
		}
		out = append(out, c)
	}
	return out
}

// fromClip rebuilds polygons with holes from flat polyclip contours.
// A contour nested inside an odd number of others is a hole of its
// innermost container.
func fromClip(p polyclip.Polygon) []orb.Polygon {
	rings := make([]orb.Ring, 0, len(p))
	for _, c := range p {
		r := make(orb.Ring, 0, len(c)+1)
		for _, pt := range c {
			r = append(r, orb.Point{pt.X, pt.Y})
		}
		r = NormalizeRing(r)
		if len(r) < 4 || ringArea(r) <= Epsilon {
			continue
		}
		rings = append(rings, r)
	}

	depth := make([]int, len(rings))
	parent := make([]int, len(rings))
	for i := range rings {
		parent[i] = -1
		for j := range rings {
			if i == j || !ringInside(rings[i], rings[j]) {
				continue
			}
			depth[i]++
			if parent[i] == -1 || ringArea(rings[j]) < ringArea(rings[parent[i]]) {
				parent[i] = j
			}
		}
	}

	index := make(map[int]int)
	var out []orb.Polygon
	for i, r := range rings {
		if depth[i]%2 != 0 {
			continue
		}
		if r.Orientation() == orb.CW {
			r.Reverse()
		}
		index[i] = len(out)
		out = append(out, orb.Polygon{r})
	}
	for i, r := range rings {
		if depth[i]%2 == 0 || parent[i] == -1 {
			continue
		}
		k, ok := index[parent[i]]
		if !ok {
			continue
		}
		if r.Orientation() == orb.CCW {
			r.Reverse()
		}
		out[k] = append(out[k], r)
	}
	return out
}

// ringInside reports whether ring a lies inside ring b. Output contours never
// cross, so one strictly interior vertex decides it.
func ringInside(a, b orb.Ring) bool {
	outer := orb.Polygon{b}
	if !b.Bound().Intersects(a.Bound()) {
		return false
	}
	for _, v := range a {
		if ContainsStrict(outer, v) {
			return true
		}
		if !Covers(outer, v) {
			return false
		}
	}
	return false
}
