package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/abs-insights/internal/config"
	"github.com/sells-group/abs-insights/internal/geo"
	"github.com/sells-group/abs-insights/internal/geo/data"
)

// buildResolver constructs the geography resolver from configuration: the
// embedded baseline (or a data directory override), the per-user cache
// directory, and the staleness threshold. Nothing is loaded yet.
func buildResolver(geoCfg config.GeoConfig) (*geo.Resolver, error) {
	var baseline fs.FS = data.Baseline
	if geoCfg.DataDir != "" {
		baseline = os.DirFS(geoCfg.DataDir)
	}

	cacheDir := geoCfg.CacheDir
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, eris.Wrap(err, "resolve user cache dir")
		}
		cacheDir = filepath.Join(base, "abs-insights")
	}

	opts := []geo.LoaderOption{}
	if geoCfg.MaxAgeDays > 0 {
		opts = append(opts, geo.WithMaxAge(time.Duration(geoCfg.MaxAgeDays)*24*time.Hour))
	}

	loader := geo.NewLoader(baseline, cacheDir, opts...)
	return geo.NewResolver(loader, geoCfg.ConcordanceFile, geoCfg.BoundaryFile), nil
}
