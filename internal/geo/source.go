package geo

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Tier reports which source a dataset was loaded from.
type Tier string

const (
	TierCache    Tier = "cache"
	TierBaseline Tier = "baseline"
)

// DefaultMaxAge is how long a disk-cached dataset stays usable.
const DefaultMaxAge = 30 * 24 * time.Hour

// CacheEntry is the resolved content of a named dataset. Age is only set when
// the entry came from the disk cache.
type CacheEntry struct {
	Name string
	Data []byte
	Tier Tier
	Age  time.Duration
}

// Loader resolves raw bytes for named datasets, preferring a fresh disk cache
// over the baseline source. A stale or unreadable cache file is never used.
type Loader struct {
	baseline fs.FS
	cacheDir string
	maxAge   time.Duration
	now      func() time.Time
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMaxAge overrides the cache staleness threshold.
func WithMaxAge(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.maxAge = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.now = now
	}
}

// NewLoader creates a Loader over the given baseline filesystem and cache
// directory. The cache directory does not need to exist yet.
func NewLoader(baseline fs.FS, cacheDir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		baseline: baseline,
		cacheDir: cacheDir,
		maxAge:   DefaultMaxAge,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves the named dataset. A cache file younger than the staleness
// threshold wins; otherwise the baseline is read and written through to the
// cache best-effort. Only a baseline read failure is fatal.
func (l *Loader) Load(name string) (*CacheEntry, error) {
	log := zap.L().With(zap.String("component", "geo.loader"), zap.String("dataset", name))

	cachePath := filepath.Join(l.cacheDir, name)
	if info, err := os.Stat(cachePath); err == nil {
		age := l.now().Sub(info.ModTime())
		if age < l.maxAge {
			data, readErr := os.ReadFile(cachePath)
			if readErr == nil {
				log.Debug("dataset loaded from cache", zap.Duration("age", age))
				return &CacheEntry{Name: name, Data: data, Tier: TierCache, Age: age}, nil
			}
			log.Warn("cache file unreadable, falling back to baseline", zap.Error(readErr))
		} else {
			log.Info("cache file stale, refreshing from baseline", zap.Duration("age", age))
		}
	}

	data, err := fs.ReadFile(l.baseline, name)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read baseline dataset %s", name)
	}

	// Write-through is best-effort: a failure must never fail the load.
	if err := os.MkdirAll(l.cacheDir, 0o755); err != nil {
		log.Warn("create cache dir failed", zap.String("dir", l.cacheDir), zap.Error(err))
	} else if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		log.Warn("cache write failed", zap.String("path", cachePath), zap.Error(err))
	}

	log.Debug("dataset loaded from baseline", zap.Int("bytes", len(data)))
	return &CacheEntry{Name: name, Data: data, Tier: TierBaseline}, nil
}
