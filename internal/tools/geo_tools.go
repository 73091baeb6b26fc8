package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/abs-insights/internal/geo"
)

// RegisterGeoTools adds the two geography resolution tools.
func RegisterGeoTools(reg *Registry, resolver *geo.Resolver) error {
	if err := reg.Register(
		"resolve_postcode",
		"Resolve a four-digit Australian postcode to its SA2 statistical areas.",
		[]ArgSpec{
			{Name: "postcode", Type: "string", Description: "Four-digit postcode, leading zeros significant.", Required: true},
		},
		func(_ context.Context, args map[string]any) (*Result, error) {
			postcode, _ := args["postcode"].(string)
			res := resolver.ResolvePostcode(postcode)
			switch res.Status {
			case geo.StatusInvalidPostcode:
				return nil, Errorf(CodeInvalidArgument, "postcode must be exactly four digits, got %q", postcode)
			case geo.StatusIndexUnavailable:
				return nil, Errorf(CodeNotReady, "postcode concordance is not loaded yet")
			case geo.StatusNotFound:
				return &Result{
					Summary: fmt.Sprintf("Postcode %s is not in the SA2 concordance.", postcode),
					Data:    map[string]any{"status": res.Status},
					Source:  "abs_concordance",
				}, nil
			}
			return &Result{
				Summary: fmt.Sprintf("Postcode %s maps to %d SA2 region(s): %s.",
					postcode, len(res.SA2Codes), strings.Join(res.SA2Codes, ", ")),
				Data: map[string]any{
					"status":    res.Status,
					"sa2_codes": res.SA2Codes,
					"regions":   res.Regions,
				},
				Source: "abs_concordance",
			}, nil
		},
	); err != nil {
		return err
	}

	return reg.Register(
		"resolve_coordinate",
		"Resolve a latitude/longitude point to the SA2 statistical area containing or nearest to it.",
		[]ArgSpec{
			{Name: "latitude", Type: "number", Description: "Latitude in decimal degrees, -90 to 90.", Required: true},
			{Name: "longitude", Type: "number", Description: "Longitude in decimal degrees, -180 to 180.", Required: true},
		},
		func(_ context.Context, args map[string]any) (*Result, error) {
			lat, latOK := toFloat(args["latitude"])
			lon, lonOK := toFloat(args["longitude"])
			if !latOK || !lonOK {
				return nil, Errorf(CodeInvalidArgument, "latitude and longitude must be numbers")
			}

			res := resolver.ResolveCoordinate(lat, lon)
			switch res.Status {
			case geo.StatusOutOfRange:
				return nil, Errorf(CodeInvalidArgument, "coordinate (%v, %v) is out of range", lat, lon)
			case geo.StatusIndexUnavailable:
				return nil, Errorf(CodeNotReady, "boundary index is not loaded yet")
			case geo.StatusNoMatch:
				return &Result{
					Summary: "No SA2 region matches that coordinate.",
					Data:    map[string]any{"status": res.Status},
					Source:  "abs_boundaries",
				}, nil
			}

			data := map[string]any{
				"status": res.Status,
				"region": res.Region,
				"method": res.Method,
			}
			summary := fmt.Sprintf("Point (%v, %v) is inside %s (%s).", lat, lon, res.Region.Name, res.Region.Code)
			if res.Method == geo.MethodNearestCentroid {
				data["distance_km"] = res.DistanceKM
				summary = fmt.Sprintf("Point (%v, %v) is nearest to %s (%s), %.1f km from its centroid.",
					lat, lon, res.Region.Name, res.Region.Code, res.DistanceKM)
			}
			return &Result{Summary: summary, Data: data, Source: "abs_boundaries"}, nil
		},
	)
}

// toFloat accepts the numeric shapes a decoded JSON argument can take.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
