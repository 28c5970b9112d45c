package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChicagoDave/roadgrid/internal/server"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "roadgrid",
		Short: "Road network topology and junction geometry generator",
		// Validation failures are already printed as a report.
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging at debug level")

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(emitCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(traceCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a development logger under --verbose and a production
// logger otherwise.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildCmd() *cobra.Command {
	var geojsonPath string

	cmd := &cobra.Command{
		Use:   "build [project-path]",
		Short: "Build the road graph and tile map and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runBuild(args[0], geojsonPath)
		},
	}

	cmd.Flags().StringVar(&geojsonPath, "geojson", "", "write the graph and loops as GeoJSON to this file")
	return cmd
}

func emitCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "emit [project-path]",
		Short: "Generate junction geometry and write the scene as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runEmit(args[0], outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func classifyCmd() *cobra.Command {
	var prev string

	cmd := &cobra.Command{
		Use:   "classify [project-path] [x] [z]",
		Short: "Classify the surface under a world point",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}
			z, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return err
			}
			return runClassify(args[0], x, z, prev)
		},
	}

	cmd.Flags().StringVar(&prev, "prev", "", "surface the point was on last tick (roadway, curb, off_road)")
	return cmd
}

func traceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace [project-path] [trace.json]",
		Short: "Replay recorded wheel positions and print surface transitions",
		Long: `Replay recorded wheel positions through the surface classifier.

The trace file is a JSON array of ticks, each an object from wheel id to
a world point, e.g. [{"fl": {"x": 0, "z": 1}, "fr": {"x": 0, "z": -1}}].`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runTrace(args[0], args[1])
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a city file and the geometry it generates",
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
		Short: "Start the local dev server",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			return server.New(args[0], port, log).Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
