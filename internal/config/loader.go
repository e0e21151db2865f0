package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"steiner-planner/internal/geometry"
)

// LoadObstacles reads obstacle polygons from GeoJSON files. Each entry may be
// a file name or a glob pattern. Polygon and MultiPolygon features are used,
// outer rings only. Unreadable files and invalid polygons are skipped with a
// warning; a pattern that matches nothing is an error.
func LoadObstacles(patterns []string, logger *log.Logger) ([]orb.Polygon, error) {
	if logger == nil {
		logger = log.Default()
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: obstacles_geojson: %v", ErrInvalidConfig, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: obstacles_geojson: no files match %q", ErrInvalidConfig, pattern)
		}
		files = append(files, matches...)
	}

	logger.Printf("Loading obstacles from %d GeoJSON files...\n", len(files))

	var allPolygons []orb.Polygon
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			logger.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}

		polygonCount := 0
		for i, feature := range fc.Features {
			for _, ring := range outerRings(feature.Geometry) {
				poly, err := geometry.NewPolygon(ring)
				if err != nil {
					logger.Printf("⚠️  Skipping feature %d of %s: %v\n", i, filepath.Base(file), err)
					continue
				}
				allPolygons = append(allPolygons, poly)
				polygonCount++
			}
		}

		logger.Printf("   ✅ Loaded %d polygons from %s\n", polygonCount, filepath.Base(file))
	}

	logger.Printf("Total obstacles loaded: %d polygons\n", len(allPolygons))
	return allPolygons, nil
}

// outerRings returns the exterior ring of every polygon in g.
func outerRings(g orb.Geometry) []orb.Ring {
	var rings []orb.Ring

	switch geom := g.(type) {
	case orb.Polygon:
		// First ring is the outer boundary
		if len(geom) > 0 {
			rings = append(rings, geom[0])
		}
	case orb.MultiPolygon:
		for _, poly := range geom {
			if len(poly) > 0 {
				rings = append(rings, poly[0])
			}
		}
	}

	return rings
}
