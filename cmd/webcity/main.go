package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bneidlinger/webcity/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "webcity",
		Short: "Procedural urban-fabric generator",
	}

	rootCmd.AddCommand(bootCmd())
	rootCmd.AddCommand(paintRoadCmd())
	rootCmd.AddCommand(paintZoneCmd())
	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func bootCmd() *cobra.Command {
	var seed uint32
	var era string

	cmd := &cobra.Command{
		Use:   "boot [project-path]",
		Short: "Run the procedural layout from a fresh seed and print the road network",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runBoot(args[0], seed, era)
		},
	}
	cmd.Flags().Uint32VarP(&seed, "seed", "s", 0, "override the project's seed (0 keeps the project value)")
	cmd.Flags().StringVarP(&era, "era", "e", "", "override the project's era (empty keeps the project value)")
	return cmd
}

func paintRoadCmd() *cobra.Command {
	var class string

	cmd := &cobra.Command{
		Use:   "paint-road [project-path] startX startZ endX endZ",
		Short: "Boot the project and paint a single road segment",
		Args:  cobra.ExactArgs(5),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPaintRoad(args[0], args[1], args[2], args[3], args[4], class)
		},
	}
	cmd.Flags().StringVarP(&class, "class", "c", "street", "road class: highway, avenue, street, or local")
	return cmd
}

func paintZoneCmd() *cobra.Command {
	var zoneType string
	var density string
	var method string

	cmd := &cobra.Command{
		Use:   "paint-zone [project-path] minX minZ maxX maxZ",
		Short: "Boot the project and zone an axis-aligned rectangle",
		Args:  cobra.ExactArgs(5),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPaintZone(args[0], args[1], args[2], args[3], args[4], zoneType, density, method)
		},
	}
	cmd.Flags().StringVarP(&zoneType, "zone", "z", "residential", "zone type: residential, commercial, or industrial")
	cmd.Flags().StringVarP(&density, "density", "d", "medium", "parcel density: low, medium, or high")
	cmd.Flags().StringVarP(&method, "method", "m", "skeleton", "subdivision method: skeleton or voronoi")
	return cmd
}

func solveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve [project-path]",
		Short: "Run the full pipeline (layout, a citywide zone, massing) and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSolve(args[0])
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Boot the project and run invariant checks over the generated road graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local HTTP server fronting a single city core",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			srv, err := server.New(args[0], port)
			if err != nil {
				return err
			}
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
