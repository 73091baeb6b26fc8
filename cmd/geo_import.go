package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/abs-insights/internal/geo"
)

var (
	importShapefile string
	importOut       string
)

var geoImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Convert an ABS SA2 shapefile to the baseline boundary dataset",
	Long:  "Reads an ABS ASGS SA2 boundary shapefile and writes the GeoJSON FeatureCollection consumed as the boundary baseline (geo.data_dir).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if importShapefile == "" {
			return eris.New("geo import: --shapefile is required")
		}

		data, err := geo.ConvertSA2Shapefile(importShapefile)
		if err != nil {
			return err
		}

		if err := os.WriteFile(importOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "geo import: write %s", importOut)
		}

		zap.L().Info("boundary baseline written",
			zap.String("shapefile", importShapefile),
			zap.String("out", importOut),
			zap.Int("bytes", len(data)),
		)
		return nil
	},
}

func init() {
	geoImportCmd.Flags().StringVar(&importShapefile, "shapefile", "", "path to the ABS SA2 .shp file")
	geoImportCmd.Flags().StringVar(&importOut, "out", "sa2_boundaries.geojson", "output GeoJSON path")
	geoCmd.AddCommand(geoImportCmd)
}
