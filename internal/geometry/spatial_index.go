package geometry

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minExtent keeps degenerate boxes (points, axis-parallel segments) valid for
// rtreego, which rejects zero-length sides. Queries are padded by the same
// amount because rtreego does not report boxes that only touch.
const minExtent = 1e-7

// indexEntry wraps an item bounding box for R-tree storage
type indexEntry struct {
	ID   int
	BBox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *indexEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// SpatialIndex answers bounding-box queries over numbered items. It is the
// seam that keeps the pairwise O(N^2 * M) checks from scanning every obstacle.
type SpatialIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewSpatialIndex creates a new spatial index
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{
		tree: rtreego.NewTree(2, 25, 50), // 2D, min 25, max 50 entries per node
	}
}

// NewPolygonIndex indexes polygons by their position in the slice.
func NewPolygonIndex(polygons []orb.Polygon) *SpatialIndex {
	si := NewSpatialIndex()
	for i, p := range polygons {
		si.Insert(i, p.Bound())
	}
	return si
}

// Insert adds an item with the given id and bounding box.
func (si *SpatialIndex) Insert(id int, b orb.Bound) {
	rect, err := rectFromBound(b)
	if err != nil {
		return
	}
	si.tree.Insert(&indexEntry{ID: id, BBox: rect})
	si.count++
}

// Len returns the number of indexed items.
func (si *SpatialIndex) Len() int {
	return si.count
}

// Query returns ids of items whose bounding boxes intersect b, in ascending order.
func (si *SpatialIndex) Query(b orb.Bound) []int {
	if si.count == 0 {
		return nil
	}
	rect, err := rectFromBound(b.Pad(minExtent))
	if err != nil {
		return nil
	}

	results := si.tree.SearchIntersect(rect)
	ids := make([]int, 0, len(results))
	for _, item := range results {
		ids = append(ids, item.(*indexEntry).ID)
	}
	sort.Ints(ids)
	return ids
}

// rectFromBound converts an orb bound to an rtreego rectangle
func rectFromBound(b orb.Bound) (rtreego.Rect, error) {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	if w < minExtent {
		w = minExtent
	}
	if h < minExtent {
		h = minExtent
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
}
