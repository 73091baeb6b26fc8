// Package geo resolves Australian statistical geography. It maps postcodes to
// SA2 codes through the ABS concordance table, locates coordinates inside SA2
// boundaries by point-in-polygon containment, and falls back to the nearest
// region centroid when no boundary contains the point. All indexes are built
// once at startup from a two-tier source (disk cache with a staleness TTL,
// embedded baseline snapshot) and are read-only afterwards.
package geo

// SA2Region identifies a Statistical Area Level 2 with its denormalized labels.
// Geometry is owned by the boundary index and never exposed here.
type SA2Region struct {
	Code      string `json:"sa2_code"`
	Name      string `json:"sa2_name,omitempty"`
	StateCode string `json:"state_code,omitempty"`
	StateName string `json:"state_name,omitempty"`
}

// Status classifies the outcome of a resolver lookup. Validation failures,
// legitimate misses, and not-ready indexes are distinct outcomes so callers
// can react differently (reject vs accept-negative vs retry later).
type Status string

const (
	StatusOK               Status = "ok"
	StatusInvalidPostcode  Status = "invalid_postcode"
	StatusOutOfRange       Status = "out_of_range"
	StatusNotFound         Status = "not_found"
	StatusNoMatch          Status = "no_match"
	StatusIndexUnavailable Status = "index_unavailable"
)

// Method records which strategy produced a coordinate resolution.
type Method string

const (
	MethodContainment     Method = "containment"
	MethodNearestCentroid Method = "nearest_centroid"
)

// PostcodeResult is the outcome of a postcode lookup.
type PostcodeResult struct {
	Status   Status      `json:"status"`
	SA2Codes []string    `json:"sa2_codes,omitempty"`
	Regions  []SA2Region `json:"regions,omitempty"`
}

// CoordinateResult is the outcome of a coordinate lookup. DistanceKM is only
// meaningful when Method is nearest_centroid.
type CoordinateResult struct {
	Status     Status     `json:"status"`
	Region     *SA2Region `json:"region,omitempty"`
	Method     Method     `json:"method,omitempty"`
	DistanceKM float64    `json:"distance_km,omitempty"`
}
