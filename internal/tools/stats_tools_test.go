package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/abs-insights/internal/abs"
	"github.com/sells-group/abs-insights/internal/geo"
)

// fakeABS serves one observation per dataflow family, in the SDMX-JSON series
// layout the real API uses.
func fakeABS(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var value float64
		switch {
		case strings.Contains(r.URL.Path, "ERP_ASGS2021"):
			value = 4213
		case strings.Contains(r.URL.Path, "SALM_SA2"):
			value = 5.3
		case strings.Contains(r.URL.Path, "MRERD"):
			value = 520
		case strings.Contains(r.URL.Path, "MAGE"):
			value = 38
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"data":{"dataSets":[{"series":{"0:0":{"observations":{"0":[%g]}}}}]}}`, value)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStatRegistry(t *testing.T, resolver *geo.Resolver, baseURL string) *Registry {
	t.Helper()
	client := abs.New(baseURL, abs.WithRateLimit(1000, 1000), abs.WithMaxRetries(1))
	reg := NewRegistry()
	require.NoError(t, RegisterStatTools(reg, resolver, client))
	return reg
}

func TestRegisterStatTools(t *testing.T) {
	reg := newStatRegistry(t, newReadyResolver(t), fakeABS(t).URL)

	names := make([]string, 0)
	for _, tool := range reg.List() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		"population",
		"median_age",
		"median_income",
		"median_rent",
		"unemployment",
		"seifa_disadvantage",
	}, names)
}

func TestPopulationTool_BySA2Code(t *testing.T) {
	reg := newStatRegistry(t, newReadyResolver(t), fakeABS(t).URL)

	res, err := reg.Call(context.Background(), "population", map[string]any{"sa2_code": "11703"})
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "4,213 people")
	assert.Contains(t, res.Summary, "(medium)")
	assert.Contains(t, res.Summary, "SA2 11703")
	assert.Equal(t, "abs_data_api", res.Source)
	assert.InDelta(t, 4213.0, res.Data["value"].(float64), 1e-9)
	assert.Equal(t, "medium", res.Data["band"])
}

func TestPopulationTool_ByPostcode(t *testing.T) {
	reg := newStatRegistry(t, newReadyResolver(t), fakeABS(t).URL)

	// A multi-SA2 postcode resolves to its first SA2; the full list rides along
	res, err := reg.Call(context.Background(), "population", map[string]any{"postcode": "2000"})
	require.NoError(t, err)
	assert.Equal(t, "11703", res.Data["sa2_code"])
	assert.Equal(t, "Sydney (South) - Haymarket", res.Data["sa2_name"])
	assert.Equal(t, []string{"11703", "11704"}, res.Data["postcode_sa2_codes"])
	assert.Contains(t, res.Summary, "Sydney (South) - Haymarket (11703)")
}

func TestStatTool_ArgumentErrors(t *testing.T) {
	reg := newStatRegistry(t, newReadyResolver(t), fakeABS(t).URL)

	_, err := reg.Call(context.Background(), "population", map[string]any{})
	asToolError(t, err, CodeInvalidArgument)

	_, err = reg.Call(context.Background(), "population", map[string]any{"postcode": "20"})
	asToolError(t, err, CodeInvalidArgument)

	_, err = reg.Call(context.Background(), "population", map[string]any{"postcode": "9999"})
	asToolError(t, err, CodeNotFound)
}

func TestStatTool_NotReady(t *testing.T) {
	reg := newStatRegistry(t, newColdResolver(t), fakeABS(t).URL)

	_, err := reg.Call(context.Background(), "population", map[string]any{"postcode": "2000"})
	asToolError(t, err, CodeNotReady)

	// An explicit SA2 code never touches the resolver
	res, err := reg.Call(context.Background(), "population", map[string]any{"sa2_code": "11703"})
	require.NoError(t, err)
	assert.Equal(t, "11703", res.Data["sa2_code"])
}

func TestStatTool_NoDataPublished(t *testing.T) {
	reg := newStatRegistry(t, newReadyResolver(t), fakeABS(t).URL)

	// seifa_disadvantage is not covered by the fake server, so it 404s
	_, err := reg.Call(context.Background(), "seifa_disadvantage", map[string]any{"sa2_code": "11703"})
	terr := asToolError(t, err, CodeNotFound)
	assert.Contains(t, terr.Message, "no seifa_disadvantage data")
}

func TestStatTool_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	reg := newStatRegistry(t, newReadyResolver(t), srv.URL)

	_, err := reg.Call(context.Background(), "population", map[string]any{"sa2_code": "11703"})
	asToolError(t, err, CodeUpstream)
}

func TestUnemploymentTool_Formatting(t *testing.T) {
	reg := newStatRegistry(t, newReadyResolver(t), fakeABS(t).URL)

	res, err := reg.Call(context.Background(), "unemployment", map[string]any{"sa2_code": "11703"})
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "5.3%")
	assert.Contains(t, res.Summary, "(balanced)")
}

func TestMedianRentTool_Formatting(t *testing.T) {
	reg := newStatRegistry(t, newReadyResolver(t), fakeABS(t).URL)

	res, err := reg.Call(context.Background(), "median_rent", map[string]any{"sa2_code": "11703"})
	require.NoError(t, err)
	assert.Contains(t, res.Summary, "$520/week")
	assert.Contains(t, res.Summary, "(moderate)")
}
