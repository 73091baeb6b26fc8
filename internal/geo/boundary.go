package geo

import (
	"encoding/json"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/rotisserie/eris"
)

// Feature is one loaded SA2 boundary: the region labels plus its polygons.
// MultiPolygon geometries are flattened to member polygons at build time.
type Feature struct {
	Region   SA2Region
	Polygons []*geom.Polygon
}

// BoundaryIndex answers point-in-polygon queries over the loaded SA2
// boundaries with a linear scan in load order.
type BoundaryIndex struct {
	features []Feature
}

// BuildBoundary parses a GeoJSON FeatureCollection of SA2 boundaries.
// Coordinates follow the GeoJSON (longitude, latitude) convention. Features
// with no sa2_code or an unsupported geometry kind are skipped; invalid JSON
// framing aborts the build.
func BuildBoundary(data []byte) (*BoundaryIndex, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "geo: decode boundary feature collection")
	}

	log := zap.L().With(zap.String("component", "geo.boundary"))

	idx := &BoundaryIndex{}
	var skipped int
	for _, f := range fc.Features {
		region := SA2Region{
			Code:      propString(f.Properties, "sa2_code"),
			Name:      propString(f.Properties, "sa2_name"),
			StateCode: propString(f.Properties, "state_code"),
			StateName: propString(f.Properties, "state_name"),
		}
		if region.Code == "" {
			skipped++
			continue
		}

		var polys []*geom.Polygon
		switch g := f.Geometry.(type) {
		case *geom.Polygon:
			polys = append(polys, g)
		case *geom.MultiPolygon:
			for i := 0; i < g.NumPolygons(); i++ {
				polys = append(polys, g.Polygon(i))
			}
		default:
			skipped++
			continue
		}
		if len(polys) == 0 {
			skipped++
			continue
		}

		idx.features = append(idx.features, Feature{Region: region, Polygons: polys})
	}

	if skipped > 0 {
		log.Warn("skipped unusable boundary features", zap.Int("features", skipped))
	}
	log.Info("boundary index built", zap.Int("regions", len(idx.features)))
	return idx, nil
}

// ContainingRegion returns the first region in load order whose boundary
// contains the (longitude, latitude) point, or nil when no region does.
// Load order is the deterministic tie-break for overlapping boundaries.
func (b *BoundaryIndex) ContainingRegion(lon, lat float64) *SA2Region {
	pt := geom.Coord{lon, lat}
	for i := range b.features {
		for _, poly := range b.features[i].Polygons {
			if polygonContains(poly, pt) {
				return &b.features[i].Region
			}
		}
	}
	return nil
}

// Features exposes the loaded features in load order for derived indexes.
func (b *BoundaryIndex) Features() []Feature {
	return b.features
}

// Len reports the number of indexed regions.
func (b *BoundaryIndex) Len() int {
	return len(b.features)
}

// polygonContains tests containment against the outer ring, then excludes
// holes. Degenerate rings (fewer than four coordinates) never match, so a
// malformed polygon is skipped for the query rather than failing the scan.
func polygonContains(p *geom.Polygon, pt geom.Coord) bool {
	if p == nil || p.NumLinearRings() == 0 {
		return false
	}
	outer := p.LinearRing(0)
	if outer.NumCoords() < 4 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), pt, outer.FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		hole := p.LinearRing(i)
		if hole.NumCoords() >= 4 && xy.IsPointInRing(p.Layout(), pt, hole.FlatCoords()) {
			return false
		}
	}
	return true
}

func propString(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
