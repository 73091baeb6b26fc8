// Package data embeds the baseline geography snapshot shipped in the binary.
// The snapshot is abridged to capital-city SA2s; point geo.data_dir at the
// full ABS datasets (or regenerate with `abs-insights geo import`) for
// national coverage.
package data

import "embed"

//go:embed postcode_sa2.csv sa2_boundaries.geojson
var Baseline embed.FS
