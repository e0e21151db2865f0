package geometry

import (
	"log"

	"github.com/paulmach/orb"
)

// CombineObstacles merges obstacles that overlap or are contained within each
// other. Obstacles whose bounding boxes touch nothing else are passed through
// unchanged; each group of mutually overlapping boxes is replaced by its union.
func CombineObstacles(polygons []orb.Polygon, logger *log.Logger) []orb.Polygon {
	if len(polygons) <= 1 {
		return polygons
	}

	// First, remove polygons that are fully contained within other polygons
	filtered := removeContainedPolygons(polygons)
	if removed := len(polygons) - len(filtered); removed > 0 && logger != nil {
		logger.Printf("   Obstacles after removing contained: %d (removed %d)\n", len(filtered), removed)
	}

	groups := overlapGroups(filtered)
	result := make([]orb.Polygon, 0, len(filtered))
	for _, group := range groups {
		if len(group) == 1 {
			result = append(result, filtered[group[0]])
			continue
		}

		members := make([]orb.Polygon, 0, len(group))
		for _, idx := range group {
			members = append(members, filtered[idx])
		}
		merged := Union(members)
		if logger != nil {
			logger.Printf("   Merged %d overlapping obstacles into %d\n", len(group), len(merged))
		}
		result = append(result, merged...)
	}
	return result
}

// removeContainedPolygons removes polygons that are fully contained within other polygons
func removeContainedPolygons(polygons []orb.Polygon) []orb.Polygon {
	result := make([]orb.Polygon, 0, len(polygons))
	contained := make([]bool, len(polygons))

	for i := 0; i < len(polygons); i++ {
		if contained[i] {
			continue
		}

		for j := 0; j < len(polygons); j++ {
			if i == j || contained[j] {
				continue
			}

			// Check if polygon i is contained in polygon j
			if isPolygonContainedIn(polygons[i], polygons[j]) {
				contained[i] = true
				break
			}

			// Check if polygon j is contained in polygon i
			if isPolygonContainedIn(polygons[j], polygons[i]) {
				contained[j] = true
			}
		}
	}

	for i := 0; i < len(polygons); i++ {
		if !contained[i] {
			result = append(result, polygons[i])
		}
	}

	return result
}

// isPolygonContainedIn checks if polygon A is fully contained within polygon B
func isPolygonContainedIn(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	// Quick bounding box check first
	if !isBBoxContained(a.Bound(), b.Bound()) {
		return false
	}

	return Within(a, b)
}

// isBBoxContained checks if bounding box A is contained in bounding box B
func isBBoxContained(a, b orb.Bound) bool {
	return a.Min[0] >= b.Min[0] && a.Max[0] <= b.Max[0] &&
		a.Min[1] >= b.Min[1] && a.Max[1] <= b.Max[1]
}

// overlapGroups groups polygon indices whose bounding boxes overlap,
// transitively. Groups are ordered by their lowest member index.
func overlapGroups(polygons []orb.Polygon) [][]int {
	parent := make([]int, len(polygons))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := 0; i < len(polygons); i++ {
		for j := i + 1; j < len(polygons); j++ {
			if polygons[i].Bound().Intersects(polygons[j].Bound()) {
				ri, rj := find(i), find(j)
				if ri == rj {
					continue
				}
				if ri < rj {
					parent[rj] = ri
				} else {
					parent[ri] = rj
				}
			}
		}
	}

	byRoot := make(map[int]int)
	var groups [][]int
	for i := range polygons {
		r := find(i)
		k, ok := byRoot[r]
		if !ok {
			k = len(groups)
			byRoot[r] = k
			groups = append(groups, nil)
		}
		groups[k] = append(groups[k], i)
	}
	return groups
}
