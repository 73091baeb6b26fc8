package geo

import (
	"encoding/json"
	"strings"

	shp "github.com/jonas-p/go-shp"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/rotisserie/eris"
)

// ABS SA2 shapefile attribute names (2021 ASGS edition).
const (
	fieldSA2Code   = "SA2_CODE21"
	fieldSA2Name   = "SA2_NAME21"
	fieldStateCode = "STE_CODE21"
	fieldStateName = "STE_NAME21"
)

// ConvertSA2Shapefile reads an ABS SA2 boundary shapefile and produces the
// GeoJSON FeatureCollection consumed as the baseline boundary dataset.
// Records without an SA2 code or a usable polygon are skipped.
func ConvertSA2Shapefile(path string) ([]byte, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := fieldIndex(reader, fieldSA2Code)
	nameIdx := fieldIndex(reader, fieldSA2Name)
	stateCodeIdx := fieldIndex(reader, fieldStateCode)
	stateNameIdx := fieldIndex(reader, fieldStateName)
	if codeIdx < 0 || nameIdx < 0 {
		return nil, eris.Errorf("geo: required shapefile fields (%s, %s) not found", fieldSA2Code, fieldSA2Name)
	}

	log := zap.L().With(zap.String("component", "geo.shapefile"))

	fc := &geojson.FeatureCollection{}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		code := cleanAttribute(reader.Attribute(codeIdx))
		if code == "" {
			skipped++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := shpPolygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		props := map[string]any{
			"sa2_code": code,
			"sa2_name": cleanAttribute(reader.Attribute(nameIdx)),
		}
		if stateCodeIdx >= 0 {
			props["state_code"] = cleanAttribute(reader.Attribute(stateCodeIdx))
		}
		if stateNameIdx >= 0 {
			props["state_name"] = cleanAttribute(reader.Attribute(stateNameIdx))
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   mp,
			Properties: props,
		})
	}

	if skipped > 0 {
		log.Warn("skipped unusable shapefile records", zap.Int("records", skipped))
	}
	log.Info("shapefile converted", zap.Int("features", len(fc.Features)))

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "geo: marshal feature collection")
	}
	return data, nil
}

// shpPolygonToMultiPolygon converts a shapefile polygon to a go-geom
// MultiPolygon. Each part becomes one single-ring member polygon.
func shpPolygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		if len(flat) < 8 { // a closed ring needs at least four points
			continue
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geo: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geo: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// cleanAttribute strips the NUL and space padding DBF records carry.
func cleanAttribute(v string) string {
	return strings.TrimSpace(strings.Trim(v, "\x00"))
}

// fieldIndex returns the index of a named field in the shapefile, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
