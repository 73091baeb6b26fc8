package tools

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/abs-insights/internal/abs"
	"github.com/sells-group/abs-insights/internal/geo"
)

var statArgs = []ArgSpec{
	{Name: "postcode", Type: "string", Description: "Four-digit postcode; resolved to its first SA2.", Required: false},
	{Name: "sa2_code", Type: "string", Description: "SA2 code, used directly when given.", Required: false},
}

// RegisterStatTools adds one tool per catalogue entry. Every handler follows
// the same shape: resolve the area, fetch the latest observation, classify it
// against the entry's bands, and wrap the lot in a Result.
func RegisterStatTools(reg *Registry, resolver *geo.Resolver, client *abs.Client) error {
	catalog, err := LoadCatalog()
	if err != nil {
		return err
	}
	for _, spec := range catalog.Stats {
		if err := reg.Register(spec.Name, spec.Description, statArgs, statHandler(spec, resolver, client)); err != nil {
			return err
		}
	}
	return nil
}

func statHandler(spec StatSpec, resolver *geo.Resolver, client *abs.Client) Handler {
	printer := message.NewPrinter(language.English)

	return func(ctx context.Context, args map[string]any) (*Result, error) {
		region, allCodes, terr := regionFromArgs(resolver, args)
		if terr != nil {
			return nil, terr
		}

		dataKey := strings.ReplaceAll(spec.KeyTemplate, "{sa2}", region.Code)
		query := url.Values{}
		for k, v := range spec.Params {
			query.Set(k, v)
		}

		value, err := client.Observation(ctx, spec.Dataflow, dataKey, query)
		if err != nil {
			if eris.Is(err, abs.ErrNoObservation) {
				return nil, Errorf(CodeNotFound, "no %s data published for SA2 %s", spec.Name, region.Code)
			}
			return nil, Errorf(CodeUpstream, "ABS query failed: %v", err)
		}

		band := spec.BandLabel(value)
		data := map[string]any{
			"sa2_code": region.Code,
			"value":    value,
			"unit":     spec.Unit,
			"band":     band,
			"dataflow": spec.Dataflow,
		}
		if region.Name != "" {
			data["sa2_name"] = region.Name
		}
		if len(allCodes) > 1 {
			data["postcode_sa2_codes"] = allCodes
		}

		return &Result{
			Summary: fmt.Sprintf("%s for %s: %s (%s)",
				spec.Label, regionLabel(region), formatValue(printer, value, spec), band),
			Data:   data,
			Source: "abs_data_api",
		}, nil
	}
}

// regionFromArgs picks the target SA2: an explicit sa2_code wins, otherwise
// the postcode is resolved and its first SA2 (concordance file order) is
// used, with the full code list reported back.
func regionFromArgs(resolver *geo.Resolver, args map[string]any) (geo.SA2Region, []string, *Error) {
	if code, _ := args["sa2_code"].(string); code != "" {
		return geo.SA2Region{Code: code}, nil, nil
	}

	postcode, _ := args["postcode"].(string)
	if postcode == "" {
		return geo.SA2Region{}, nil, Errorf(CodeInvalidArgument, "either postcode or sa2_code is required")
	}

	res := resolver.ResolvePostcode(postcode)
	switch res.Status {
	case geo.StatusInvalidPostcode:
		return geo.SA2Region{}, nil, Errorf(CodeInvalidArgument, "postcode must be exactly four digits, got %q", postcode)
	case geo.StatusIndexUnavailable:
		return geo.SA2Region{}, nil, Errorf(CodeNotReady, "postcode concordance is not loaded yet")
	case geo.StatusNotFound:
		return geo.SA2Region{}, nil, Errorf(CodeNotFound, "postcode %s is not in the SA2 concordance", postcode)
	}
	return res.Regions[0], res.SA2Codes, nil
}

func regionLabel(region geo.SA2Region) string {
	if region.Name != "" {
		return fmt.Sprintf("%s (%s)", region.Name, region.Code)
	}
	return fmt.Sprintf("SA2 %s", region.Code)
}

func formatValue(p *message.Printer, value float64, spec StatSpec) string {
	var formatted string
	if spec.Precision == 0 {
		formatted = p.Sprintf("%d", int64(math.Round(value)))
	} else {
		formatted = p.Sprintf("%.*f", spec.Precision, value)
	}
	switch spec.Unit {
	case "%":
		return formatted + "%"
	case "$/week":
		return "$" + formatted + "/week"
	default:
		return formatted + " " + spec.Unit
	}
}
