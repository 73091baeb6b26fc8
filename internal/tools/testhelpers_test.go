package tools

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/abs-insights/internal/geo"
)

const testConcordance = `postcode,sa2_code,sa2_name,state_code,state_name
2000,11703,Sydney (South) - Haymarket,1,New South Wales
2000,11704,Sydney (North) - Millers Point,1,New South Wales
3000,20604,Melbourne CBD - East,2,Victoria
`

const testBoundaries = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"sa2_code": "11703", "sa2_name": "Sydney (South) - Haymarket", "state_code": "1", "state_name": "New South Wales"},
      "geometry": {"type": "Polygon", "coordinates": [[[151.19, -33.88], [151.22, -33.88], [151.22, -33.86], [151.19, -33.86], [151.19, -33.88]]]}
    }
  ]
}`

func testBaseline() fstest.MapFS {
	return fstest.MapFS{
		"postcode_sa2.csv":       &fstest.MapFile{Data: []byte(testConcordance)},
		"sa2_boundaries.geojson": &fstest.MapFile{Data: []byte(testBoundaries)},
	}
}

// newReadyResolver builds a resolver over small fixture datasets and
// initializes it.
func newReadyResolver(t *testing.T) *geo.Resolver {
	t.Helper()
	loader := geo.NewLoader(testBaseline(), t.TempDir())
	resolver := geo.NewResolver(loader, "postcode_sa2.csv", "sa2_boundaries.geojson")
	require.NoError(t, resolver.Initialize(context.Background()))
	return resolver
}

// newColdResolver builds a resolver that was never initialized, so every
// lookup reports an unavailable index.
func newColdResolver(t *testing.T) *geo.Resolver {
	t.Helper()
	loader := geo.NewLoader(testBaseline(), t.TempDir())
	return geo.NewResolver(loader, "postcode_sa2.csv", "sa2_boundaries.geojson")
}

// asToolError asserts the error is a structured tool error with the code.
func asToolError(t *testing.T, err error, code string) *Error {
	t.Helper()
	require.Error(t, err)
	terr, ok := err.(*Error)
	require.True(t, ok, "expected *tools.Error, got %T: %v", err, err)
	require.Equal(t, code, terr.Code)
	return terr
}
