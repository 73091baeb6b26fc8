package main

import (
	"github.com/spf13/cobra"
)

var geoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Geography resolution utilities",
	Long:  "Inspect and exercise the postcode/SA2/coordinate resolution core without running the server.",
}

func init() {
	rootCmd.AddCommand(geoCmd)
}
