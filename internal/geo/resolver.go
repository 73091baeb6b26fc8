package geo

import (
	"context"
	"math"
	"regexp"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State tracks a sub-index through its single-shot initialization. There is
// no transition out of ready or failed during the process lifetime.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

var postcodePattern = regexp.MustCompile(`^\d{4}$`)

type subIndex struct {
	state State
	tier  Tier
	err   error
}

// Resolver composes the concordance, boundary, and centroid indexes behind
// the two public lookup operations. It is constructed once at startup and
// passed by reference to every handler; after Initialize returns, all lookups
// are read-only and safe for concurrent use.
type Resolver struct {
	loader          *Loader
	concordanceName string
	boundaryName    string

	mu          sync.Mutex
	initialized bool
	postcode    subIndex
	boundary    subIndex

	concordance *ConcordanceIndex
	boundaryIdx *BoundaryIndex
	centroids   *CentroidIndex
}

// Snapshot reports per-subsystem readiness for health endpoints and for tool
// handlers that short-circuit before touching upstream data.
type Snapshot struct {
	PostcodeReady bool              `json:"postcode_ready"`
	PostcodeCount int               `json:"postcode_count"`
	PostcodeTier  Tier              `json:"postcode_tier,omitempty"`
	BoundaryReady bool              `json:"boundary_ready"`
	BoundaryCount int               `json:"boundary_count"`
	CentroidCount int               `json:"centroid_count"`
	BoundaryTier  Tier              `json:"boundary_tier,omitempty"`
	LastErrors    map[string]string `json:"last_errors,omitempty"`
}

// NewResolver creates a Resolver over the given dataset loader. Nothing is
// loaded until Initialize is called.
func NewResolver(loader *Loader, concordanceFile, boundaryFile string) *Resolver {
	return &Resolver{
		loader:          loader,
		concordanceName: concordanceFile,
		boundaryName:    boundaryFile,
		postcode:        subIndex{state: StateUninitialized},
		boundary:        subIndex{state: StateUninitialized},
	}
}

// Initialize loads and builds the concordance and boundary/centroid indexes.
// The two subsystems load independently: a failure in one is recorded in the
// status snapshot and does not prevent the other from becoming ready.
// Initialize itself only fails when called twice or when the context ends.
func (r *Resolver) Initialize(ctx context.Context) error {
	r.mu.Lock()
	if r.initialized {
		r.mu.Unlock()
		return eris.New("geo: resolver already initialized")
	}
	r.initialized = true
	r.postcode.state = StateLoading
	r.boundary.state = StateLoading
	r.mu.Unlock()

	log := zap.L().With(zap.String("component", "geo.resolver"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entry, err := r.loader.Load(r.concordanceName)
		if err == nil {
			var idx *ConcordanceIndex
			idx, err = BuildConcordance(gCtx, entry.Data)
			if err == nil {
				r.mu.Lock()
				r.concordance = idx
				r.postcode = subIndex{state: StateReady, tier: entry.Tier}
				r.mu.Unlock()
				return nil
			}
		}
		log.Error("concordance subsystem failed", zap.Error(err))
		r.mu.Lock()
		r.postcode = subIndex{state: StateFailed, err: err}
		r.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		entry, err := r.loader.Load(r.boundaryName)
		if err == nil {
			var idx *BoundaryIndex
			idx, err = BuildBoundary(entry.Data)
			if err == nil {
				centroids := BuildCentroids(idx.Features())
				r.mu.Lock()
				r.boundaryIdx = idx
				r.centroids = centroids
				r.boundary = subIndex{state: StateReady, tier: entry.Tier}
				r.mu.Unlock()
				return nil
			}
		}
		log.Error("boundary subsystem failed", zap.Error(err))
		r.mu.Lock()
		r.boundary = subIndex{state: StateFailed, err: err}
		r.mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "geo: initialize cancelled")
	}

	snap := r.Status()
	log.Info("geography resolver initialized",
		zap.Bool("postcode_ready", snap.PostcodeReady),
		zap.Int("postcodes", snap.PostcodeCount),
		zap.Bool("boundary_ready", snap.BoundaryReady),
		zap.Int("boundaries", snap.BoundaryCount),
	)
	return nil
}

// ResolvePostcode maps a four-digit postcode to its SA2 codes in concordance
// file order. Malformed input never reaches the index.
func (r *Resolver) ResolvePostcode(postcode string) PostcodeResult {
	if !postcodePattern.MatchString(postcode) {
		return PostcodeResult{Status: StatusInvalidPostcode}
	}

	r.mu.Lock()
	ready := r.postcode.state == StateReady
	idx := r.concordance
	r.mu.Unlock()

	if !ready {
		return PostcodeResult{Status: StatusIndexUnavailable}
	}

	codes := idx.Lookup(postcode)
	if len(codes) == 0 {
		return PostcodeResult{Status: StatusNotFound}
	}

	regions := make([]SA2Region, 0, len(codes))
	for _, code := range codes {
		if region, ok := idx.Region(code); ok {
			regions = append(regions, region)
		} else {
			regions = append(regions, SA2Region{Code: code})
		}
	}
	return PostcodeResult{Status: StatusOK, SA2Codes: codes, Regions: regions}
}

// ResolveCoordinate locates the SA2 containing a (latitude, longitude) point.
// Containment is tried first; when no boundary contains the point the nearest
// centroid is used with its distance reported. Range validation happens
// before any index access. Internally boundaries store (longitude, latitude);
// the swap happens here and is never the caller's concern.
func (r *Resolver) ResolveCoordinate(lat, lon float64) CoordinateResult {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return CoordinateResult{Status: StatusOutOfRange}
	}

	r.mu.Lock()
	ready := r.boundary.state == StateReady
	boundaries := r.boundaryIdx
	centroids := r.centroids
	r.mu.Unlock()

	if !ready {
		return CoordinateResult{Status: StatusIndexUnavailable}
	}

	if region := boundaries.ContainingRegion(lon, lat); region != nil {
		return CoordinateResult{Status: StatusOK, Region: region, Method: MethodContainment}
	}

	if region, dist := centroids.Nearest(lat, lon); region != nil {
		return CoordinateResult{
			Status:     StatusOK,
			Region:     region,
			Method:     MethodNearestCentroid,
			DistanceKM: dist,
		}
	}

	return CoordinateResult{Status: StatusNoMatch}
}

// Status returns a point-in-time snapshot of both subsystems.
func (r *Resolver) Status() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		PostcodeReady: r.postcode.state == StateReady,
		PostcodeTier:  r.postcode.tier,
		BoundaryReady: r.boundary.state == StateReady,
		BoundaryTier:  r.boundary.tier,
	}
	if r.concordance != nil {
		snap.PostcodeCount = r.concordance.Len()
	}
	if r.boundaryIdx != nil {
		snap.BoundaryCount = r.boundaryIdx.Len()
	}
	if r.centroids != nil {
		snap.CentroidCount = r.centroids.Len()
	}

	errs := make(map[string]string)
	if r.postcode.err != nil {
		errs["concordance"] = r.postcode.err.Error()
	}
	if r.boundary.err != nil {
		errs["boundary"] = r.boundary.err.Error()
	}
	if len(errs) > 0 {
		snap.LastErrors = errs
	}
	return snap
}
