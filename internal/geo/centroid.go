package geo

import (
	"math"

	geom "github.com/twpayne/go-geom"
)

// earthRadiusKM is the mean Earth radius used for great-circle distances.
const earthRadiusKM = 6371.0

type centroidEntry struct {
	region SA2Region
	lat    float64
	lon    float64
}

// CentroidIndex answers nearest-region queries against one representative
// coordinate per SA2, for use when containment finds nothing.
type CentroidIndex struct {
	entries []centroidEntry
}

// BuildCentroids derives one centroid per boundary feature: the vertex mean of
// the outer ring of the feature's largest polygon. The derivation is
// deterministic, so index order equals boundary load order. Features whose
// geometry yields no usable ring are excluded.
func BuildCentroids(features []Feature) *CentroidIndex {
	idx := &CentroidIndex{}
	for _, f := range features {
		lat, lon, ok := representativePoint(f.Polygons)
		if !ok {
			continue
		}
		idx.entries = append(idx.entries, centroidEntry{region: f.Region, lat: lat, lon: lon})
	}
	return idx
}

// Nearest returns the region with the minimum haversine distance to the query
// point and that distance in kilometres. Equal distances resolve to the
// earliest entry in index order. An empty index returns nil.
func (c *CentroidIndex) Nearest(lat, lon float64) (*SA2Region, float64) {
	if len(c.entries) == 0 {
		return nil, 0
	}
	best := 0
	bestDist := Haversine(lat, lon, c.entries[0].lat, c.entries[0].lon)
	for i := 1; i < len(c.entries); i++ {
		d := Haversine(lat, lon, c.entries[i].lat, c.entries[i].lon)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return &c.entries[best].region, bestDist
}

// Len reports the number of indexed centroids.
func (c *CentroidIndex) Len() int {
	return len(c.entries)
}

// Haversine returns the great-circle distance in kilometres between two
// (latitude, longitude) points on a sphere of mean Earth radius.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

// representativePoint averages the outer-ring vertices of the largest polygon.
// The closing vertex is dropped so it is not counted twice.
func representativePoint(polys []*geom.Polygon) (lat, lon float64, ok bool) {
	var largest *geom.Polygon
	var largestArea float64
	for _, p := range polys {
		if p == nil || p.NumLinearRings() == 0 {
			continue
		}
		area := math.Abs(p.Area())
		if largest == nil || area > largestArea {
			largest, largestArea = p, area
		}
	}
	if largest == nil {
		return 0, 0, false
	}

	outer := largest.LinearRing(0)
	n := outer.NumCoords()
	if n < 4 {
		return 0, 0, false
	}

	coords := outer.Coords()
	if coords[0].Equal(geom.XY, coords[n-1]) {
		coords = coords[:n-1]
	}

	var sumLon, sumLat float64
	for _, c := range coords {
		sumLon += c[0]
		sumLat += c[1]
	}
	count := float64(len(coords))
	return sumLat / count, sumLon / count, true
}
