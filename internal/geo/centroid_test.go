package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFeatures(t *testing.T, geoJSON string) []Feature {
	t.Helper()
	idx, err := BuildBoundary([]byte(geoJSON))
	require.NoError(t, err)
	return idx.Features()
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKM                 float64
	}{
		{"sydney to melbourne", -33.8688, 151.2093, -37.8136, 144.9631, 713.4275},
		{"one degree of longitude at the equator", 0, 0, 0, 1, 111.19493},
		{"same point", -33.8688, 151.2093, -33.8688, 151.2093, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKM, got, 1e-3)
		})
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	ab := Haversine(-33.8688, 151.2093, -12.4634, 130.8456)
	ba := Haversine(-12.4634, 130.8456, -33.8688, 151.2093)
	assert.InDelta(t, ab, ba, 1e-9)
}

func TestBuildCentroids_VertexMean(t *testing.T) {
	// Unit box from (150,-34) to (151,-33): vertex mean is (150.5, -33.5)
	features := buildFeatures(t, `{
	  "type": "FeatureCollection",
	  "features": [{
	    "type": "Feature",
	    "properties": {"sa2_code": "BOX"},
	    "geometry": {"type": "Polygon", "coordinates": [[[150, -34], [151, -34], [151, -33], [150, -33], [150, -34]]]}
	  }]
	}`)

	idx := BuildCentroids(features)
	require.Equal(t, 1, idx.Len())

	region, dist := idx.Nearest(-33.5, 150.5)
	require.NotNil(t, region)
	assert.Equal(t, "BOX", region.Code)
	assert.InDelta(t, 0, dist, 1e-6)
}

func TestNearest_PicksClosest(t *testing.T) {
	features := buildFeatures(t, `{
	  "type": "FeatureCollection",
	  "features": [
	    {
	      "type": "Feature",
	      "properties": {"sa2_code": "SYD"},
	      "geometry": {"type": "Polygon", "coordinates": [[[151.19, -33.88], [151.22, -33.88], [151.22, -33.86], [151.19, -33.86], [151.19, -33.88]]]}
	    },
	    {
	      "type": "Feature",
	      "properties": {"sa2_code": "MEL"},
	      "geometry": {"type": "Polygon", "coordinates": [[[144.94, -37.82], [144.98, -37.82], [144.98, -37.80], [144.94, -37.80], [144.94, -37.82]]]}
	    }
	  ]
	}`)

	idx := BuildCentroids(features)
	require.Equal(t, 2, idx.Len())

	region, dist := idx.Nearest(-34.5, 151.0)
	require.NotNil(t, region)
	assert.Equal(t, "SYD", region.Code)
	assert.Greater(t, dist, 0.0)
	assert.Less(t, dist, 100.0)

	region, _ = idx.Nearest(-37.5, 145.0)
	require.NotNil(t, region)
	assert.Equal(t, "MEL", region.Code)
}

func TestNearest_TieResolvesToFirst(t *testing.T) {
	// Identical geometry under two codes: equal distance, first entry wins
	features := buildFeatures(t, `{
	  "type": "FeatureCollection",
	  "features": [
	    {
	      "type": "Feature",
	      "properties": {"sa2_code": "FIRST"},
	      "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]}
	    },
	    {
	      "type": "Feature",
	      "properties": {"sa2_code": "SECOND"},
	      "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]}
	    }
	  ]
	}`)

	idx := BuildCentroids(features)
	region, _ := idx.Nearest(10, 10)
	require.NotNil(t, region)
	assert.Equal(t, "FIRST", region.Code)
}

func TestNearest_EmptyIndex(t *testing.T) {
	idx := BuildCentroids(nil)
	region, dist := idx.Nearest(-33.8688, 151.2093)
	assert.Nil(t, region)
	assert.Zero(t, dist)
}

func TestBuildCentroids_LargestPolygonWins(t *testing.T) {
	// MultiPolygon with a small islet near the origin and a large mainland
	// box centred on (15, 15); the centroid must come from the mainland.
	features := buildFeatures(t, `{
	  "type": "FeatureCollection",
	  "features": [{
	    "type": "Feature",
	    "properties": {"sa2_code": "MP"},
	    "geometry": {"type": "MultiPolygon", "coordinates": [
	      [[[0, 0], [0.1, 0], [0.1, 0.1], [0, 0.1], [0, 0]]],
	      [[[10, 10], [20, 10], [20, 20], [10, 20], [10, 10]]]
	    ]}
	  }]
	}`)

	idx := BuildCentroids(features)
	require.Equal(t, 1, idx.Len())

	_, dist := idx.Nearest(15, 15)
	assert.InDelta(t, 0, dist, 1e-6)
}
