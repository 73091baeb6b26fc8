package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	resolvePostcode string
	resolveLat      float64
	resolveLon      float64
)

var geoResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a postcode or coordinate to SA2",
	Long:  "One-shot resolution: --postcode for concordance lookup, --lat/--lon for containment with nearest-centroid fallback.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		hasCoord := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
		if resolvePostcode == "" && !hasCoord {
			return eris.New("geo resolve: either --postcode or --lat/--lon is required")
		}

		resolver, err := buildResolver(cfg.Geo)
		if err != nil {
			return err
		}
		if err := resolver.Initialize(ctx); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if resolvePostcode != "" {
			return enc.Encode(resolver.ResolvePostcode(resolvePostcode))
		}
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return eris.New("geo resolve: both --lat and --lon are required")
		}
		return enc.Encode(resolver.ResolveCoordinate(resolveLat, resolveLon))
	},
}

func init() {
	geoResolveCmd.Flags().StringVar(&resolvePostcode, "postcode", "", "four-digit postcode")
	geoResolveCmd.Flags().Float64Var(&resolveLat, "lat", 0, "latitude in decimal degrees")
	geoResolveCmd.Flags().Float64Var(&resolveLon, "lon", 0, "longitude in decimal degrees")
	geoCmd.AddCommand(geoResolveCmd)
}
