package geo

import (
	"bytes"
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/abs-insights/internal/fetcher"
)

// ConcordanceIndex maps postcodes to their SA2 codes in file order. A postcode
// may map to several SA2s; duplicates in the source file are preserved.
type ConcordanceIndex struct {
	codes   map[string][]string
	regions map[string]SA2Region
}

// BuildConcordance parses the postcode/SA2 concordance table. The expected
// layout is a header line followed by rows of
// postcode,sa2_code[,sa2_name,state_code,state_name]. Rows with fewer than two
// usable fields are skipped; a CSV framing error aborts the build.
func BuildConcordance(ctx context.Context, data []byte) (*ConcordanceIndex, error) {
	idx := &ConcordanceIndex{
		codes:   make(map[string][]string),
		regions: make(map[string]SA2Region),
	}

	log := zap.L().With(zap.String("component", "geo.concordance"))

	rowCh, errCh := fetcher.StreamCSV(ctx, bytes.NewReader(data), fetcher.CSVOptions{
		HasHeader: true,
		TrimSpace: true,
	})

	var skipped int
	for row := range rowCh {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			skipped++
			continue
		}
		postcode, sa2 := row[0], row[1]
		idx.codes[postcode] = append(idx.codes[postcode], sa2)

		region := SA2Region{Code: sa2}
		if len(row) > 2 {
			region.Name = row[2]
		}
		if len(row) > 3 {
			region.StateCode = row[3]
		}
		if len(row) > 4 {
			region.StateName = row[4]
		}
		if _, ok := idx.regions[sa2]; !ok {
			idx.regions[sa2] = region
		}
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}

	if skipped > 0 {
		log.Warn("skipped malformed concordance rows", zap.Int("rows", skipped))
	}
	log.Info("concordance index built",
		zap.Int("postcodes", len(idx.codes)),
		zap.Int("regions", len(idx.regions)),
	)
	return idx, nil
}

// Lookup returns the SA2 codes for a postcode in file order, or nil when the
// postcode is unmapped. Callers must not mutate the returned slice.
func (c *ConcordanceIndex) Lookup(postcode string) []string {
	return c.codes[postcode]
}

// Region returns the denormalized labels recorded for an SA2 code, when the
// concordance file carried them.
func (c *ConcordanceIndex) Region(sa2 string) (SA2Region, bool) {
	r, ok := c.regions[sa2]
	return r, ok
}

// Len reports the number of distinct postcodes indexed.
func (c *ConcordanceIndex) Len() int {
	return len(c.codes)
}
