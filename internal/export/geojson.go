package export

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"steiner-planner/internal/geometry"
	"steiner-planner/internal/steiner"
)

// Feature kinds stored in the "kind" property.
const (
	KindBounds    = "bounds"
	KindObstacle  = "obstacle"
	KindTerminal  = "terminal"
	KindFootprint = "footprint"
	KindHelper    = "helper"
	KindEdge      = "edge"
)

// FeatureCollection converts a snapshot to GeoJSON. Run totals are stored on
// the bounds feature.
func FeatureCollection(s *steiner.Snapshot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	bounds := geojson.NewFeature(s.Bounds)
	bounds.Properties["kind"] = KindBounds
	bounds.Properties["length"] = s.Length
	bounds.Properties["partial"] = s.Partial
	if len(s.Unreached) > 0 {
		bounds.Properties["unreached"] = s.Unreached
	}
	fc.Append(bounds)

	for i, obs := range s.Obstacles {
		f := geojson.NewFeature(obs)
		f.Properties["kind"] = KindObstacle
		f.Properties["index"] = i
		fc.Append(f)
	}

	for i, p := range s.Terminals {
		f := geojson.NewFeature(p)
		f.Properties["kind"] = KindTerminal
		f.Properties["index"] = i
		fc.Append(f)

		if i < len(s.Footprints) && s.Footprints[i] != nil {
			fp := geojson.NewFeature(s.Footprints[i])
			fp.Properties["kind"] = KindFootprint
			fp.Properties["index"] = i
			fc.Append(fp)
		}
	}

	for _, h := range s.Helpers {
		f := geojson.NewFeature(h)
		f.Properties["kind"] = KindHelper
		fc.Append(f)
	}

	for _, e := range s.Edges {
		f := geojson.NewFeature(e.LineString())
		f.Properties["kind"] = KindEdge
		f.Properties["length"] = e.Length()
		fc.Append(f)
	}
	return fc
}

// FromFeatureCollection rebuilds a snapshot from FeatureCollection output.
// Features of unknown kind are ignored.
func FromFeatureCollection(fc *geojson.FeatureCollection) (*steiner.Snapshot, error) {
	s := &steiner.Snapshot{}
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		kind := f.Properties.MustString("kind", "")
		switch kind {
		case KindBounds:
			poly, ok := f.Geometry.(orb.Polygon)
			if !ok {
				return nil, fmt.Errorf("feature %d: bounds is %s, want Polygon", i, f.Geometry.GeoJSONType())
			}
			s.Bounds = poly
			s.Length = f.Properties.MustFloat64("length", 0)
			s.Partial = f.Properties.MustBool("partial", false)
			if raw, ok := f.Properties["unreached"].([]interface{}); ok {
				for _, v := range raw {
					if n, ok := v.(float64); ok {
						s.Unreached = append(s.Unreached, int(n))
					}
				}
			}
		case KindObstacle:
			poly, ok := f.Geometry.(orb.Polygon)
			if !ok {
				return nil, fmt.Errorf("feature %d: obstacle is %s, want Polygon", i, f.Geometry.GeoJSONType())
			}
			s.Obstacles = append(s.Obstacles, poly)
		case KindTerminal:
			p, ok := f.Geometry.(orb.Point)
			if !ok {
				return nil, fmt.Errorf("feature %d: terminal is %s, want Point", i, f.Geometry.GeoJSONType())
			}
			s.Terminals = append(s.Terminals, p)
			s.Footprints = append(s.Footprints, nil)
		case KindFootprint:
			poly, ok := f.Geometry.(orb.Polygon)
			idx := f.Properties.MustInt("index", -1)
			if !ok || idx < 0 || idx >= len(s.Footprints) {
				return nil, fmt.Errorf("feature %d: footprint without a preceding terminal", i)
			}
			s.Footprints[idx] = poly
		case KindHelper:
			if p, ok := f.Geometry.(orb.Point); ok {
				s.Helpers = append(s.Helpers, p)
			}
		case KindEdge:
			ls, ok := f.Geometry.(orb.LineString)
			if !ok || len(ls) != 2 {
				return nil, fmt.Errorf("feature %d: edge must be a two-point LineString", i)
			}
			s.Edges = append(s.Edges, geometry.Segment{A: ls[0], B: ls[1]})
		}
	}
	return s, nil
}

// GeoJSONRenderer writes the snapshot as a GeoJSON FeatureCollection.
type GeoJSONRenderer struct {
	W io.Writer
}

func (r GeoJSONRenderer) Render(s *steiner.Snapshot) error {
	data, err := FeatureCollection(s).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if _, err := r.W.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// SaveGeoJSON serializes the snapshot and writes it to filename
func SaveGeoJSON(s *steiner.Snapshot, filename string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("💾 Saving network to %s...\n", filename)

	data, err := FeatureCollection(s).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Printf("   ✅ Network saved (%d bytes)\n", len(data))
	return nil
}

// LoadGeoJSON reads a snapshot previously written by SaveGeoJSON
func LoadGeoJSON(filename string, logger *log.Logger) (*steiner.Snapshot, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("📂 Loading network from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network: %w", err)
	}

	s, err := FromFeatureCollection(fc)
	if err != nil {
		return nil, err
	}

	logger.Printf("   ✅ Network loaded: %d terminals, %d edges\n", len(s.Terminals), len(s.Edges))
	return s, nil
}
