package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var geoStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show geography index status",
	Long:  "Initialize the geography resolver and print per-subsystem readiness.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		resolver, err := buildResolver(cfg.Geo)
		if err != nil {
			return err
		}
		if err := resolver.Initialize(ctx); err != nil {
			return err
		}

		snap := resolver.Status()

		fmt.Println("=== Geography Resolver Status ===")
		fmt.Printf("Concordance ready:  %v\n", snap.PostcodeReady)
		fmt.Printf("Postcodes indexed:  %d\n", snap.PostcodeCount)
		if snap.PostcodeTier != "" {
			fmt.Printf("Concordance tier:   %s\n", snap.PostcodeTier)
		}
		fmt.Printf("Boundaries ready:   %v\n", snap.BoundaryReady)
		fmt.Printf("Regions indexed:    %d\n", snap.BoundaryCount)
		fmt.Printf("Centroids indexed:  %d\n", snap.CentroidCount)
		if snap.BoundaryTier != "" {
			fmt.Printf("Boundary tier:      %s\n", snap.BoundaryTier)
		}

		if len(snap.LastErrors) > 0 {
			fmt.Println()
			fmt.Println("Errors:")
			for subsystem, msg := range snap.LastErrors {
				fmt.Printf("  %-12s %s\n", subsystem, msg)
			}
		}

		return nil
	},
}

func init() {
	geoCmd.AddCommand(geoStatusCmd)
}
