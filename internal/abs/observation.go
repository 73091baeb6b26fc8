package abs

import (
	"io"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/abs-insights/internal/fetcher"
)

// ErrNoObservation marks a structurally valid response that carries no usable
// numeric observation, or a dataflow/key with no data at all.
var ErrNoObservation = eris.New("abs: no observation")

// Response is the subset of an SDMX-JSON data message the tool layer needs:
// the observation arrays, keyed by series and time-period index. The first
// element of each observation array is the value; trailing elements are
// status flags and are ignored.
type Response struct {
	Data struct {
		DataSets []struct {
			Series map[string]struct {
				Observations map[string][]*float64 `json:"observations"`
			} `json:"series"`
			Observations map[string][]*float64 `json:"observations"`
		} `json:"dataSets"`
	} `json:"data"`
}

func decodeResponse(r io.Reader) (*Response, error) {
	resp, err := fetcher.DecodeJSONObject[Response](r)
	if err != nil {
		return nil, eris.Wrap(err, "abs: decode response")
	}
	return resp, nil
}

// LatestObservation returns the observation with the highest time-period
// index from the first data set. Flat and series-grouped layouts are both
// handled; series are scanned in sorted key order so the pick is
// deterministic.
func (r *Response) LatestObservation() (float64, bool) {
	if len(r.Data.DataSets) == 0 {
		return 0, false
	}
	ds := r.Data.DataSets[0]

	if v, ok := latestFrom(ds.Observations); ok {
		return v, true
	}

	seriesKeys := make([]string, 0, len(ds.Series))
	for k := range ds.Series {
		seriesKeys = append(seriesKeys, k)
	}
	sort.Strings(seriesKeys)
	for _, k := range seriesKeys {
		if v, ok := latestFrom(ds.Series[k].Observations); ok {
			return v, true
		}
	}
	return 0, false
}

func latestFrom(obs map[string][]*float64) (float64, bool) {
	best := -1
	var value float64
	var found bool
	for key, arr := range obs {
		if len(arr) == 0 || arr[0] == nil {
			continue
		}
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if idx > best {
			best = idx
			value = *arr[0]
			found = true
		}
	}
	return value, found
}
