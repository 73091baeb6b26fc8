package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/abs-insights/internal/geo"
)

func TestRegisterGeoTools(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newReadyResolver(t)))

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "resolve_postcode", list[0].Name)
	assert.Equal(t, "resolve_coordinate", list[1].Name)
}

func TestResolvePostcodeTool(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newReadyResolver(t)))

	res, err := reg.Call(context.Background(), "resolve_postcode", map[string]any{"postcode": "2000"})
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "2 SA2 region(s)")
	assert.Contains(t, res.Summary, "11703, 11704")
	assert.Equal(t, "abs_concordance", res.Source)
	assert.Equal(t, []string{"11703", "11704"}, res.Data["sa2_codes"])
}

func TestResolvePostcodeTool_Invalid(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newReadyResolver(t)))

	for _, args := range []map[string]any{
		{"postcode": "20"},
		{"postcode": 2000}, // wrong type
		{},
	} {
		_, err := reg.Call(context.Background(), "resolve_postcode", args)
		asToolError(t, err, CodeInvalidArgument)
	}
}

func TestResolvePostcodeTool_NotFoundIsSuccess(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newReadyResolver(t)))

	// An unmapped postcode is a legitimate negative answer, not an error
	res, err := reg.Call(context.Background(), "resolve_postcode", map[string]any{"postcode": "9999"})
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "not in the SA2 concordance")
	assert.Equal(t, geo.StatusNotFound, res.Data["status"])
}

func TestResolvePostcodeTool_NotReady(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newColdResolver(t)))

	_, err := reg.Call(context.Background(), "resolve_postcode", map[string]any{"postcode": "2000"})
	asToolError(t, err, CodeNotReady)
}

func TestResolveCoordinateTool_Containment(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newReadyResolver(t)))

	res, err := reg.Call(context.Background(), "resolve_coordinate", map[string]any{
		"latitude":  -33.8688,
		"longitude": 151.2093,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "is inside")
	assert.Contains(t, res.Summary, "11703")
	assert.Equal(t, geo.MethodContainment, res.Data["method"])
	assert.NotContains(t, res.Data, "distance_km")
}

func TestResolveCoordinateTool_NearestFallback(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newReadyResolver(t)))

	res, err := reg.Call(context.Background(), "resolve_coordinate", map[string]any{
		"latitude":  -34.5,
		"longitude": 151.0,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "is nearest to")
	assert.Equal(t, geo.MethodNearestCentroid, res.Data["method"])

	dist, ok := res.Data["distance_km"].(float64)
	require.True(t, ok)
	assert.Greater(t, dist, 0.0)
}

func TestResolveCoordinateTool_BadArguments(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newReadyResolver(t)))

	for _, args := range []map[string]any{
		{"latitude": "south", "longitude": 151.0},
		{"latitude": -33.0},
		{},
		{"latitude": 99.0, "longitude": 151.0},  // out of range
		{"latitude": -33.0, "longitude": 200.0}, // out of range
	} {
		_, err := reg.Call(context.Background(), "resolve_coordinate", args)
		asToolError(t, err, CodeInvalidArgument)
	}
}

func TestResolveCoordinateTool_NotReady(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterGeoTools(reg, newColdResolver(t)))

	_, err := reg.Call(context.Background(), "resolve_coordinate", map[string]any{
		"latitude":  -33.8688,
		"longitude": 151.2093,
	})
	asToolError(t, err, CodeNotReady)
}
