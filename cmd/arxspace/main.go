// ArxSpace CLI - hierarchical 3D spatial index tooling
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arx-os/arxspace/internal/common/logger"
	"github.com/arx-os/arxspace/internal/config"
)

var (
	// Version information (set during build)
	Version   = "dev"
	BuildTime = "unknown"

	// Global flags
	flagConfig string
	flagEngine string
	flagLevel  int

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "arxspace",
	Short: "ArxSpace - hierarchical 3D spatial index",
	Long: `ArxSpace maintains space-filling-curve indexed trees over 3D entities:
a Morton-keyed octree over cubic cells and a Bey-refined tetrahedral tree.

Commands:
  • load  - Bulk-load entities from a CSV file and run queries against them
  • bench - Measure insertion and query throughput on synthetic data
  • serve - Expose node dumps, stats and Prometheus metrics over HTTP

For detailed help on any command, use: arxspace <command> --help`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfig != "" {
			appConfig, err = config.LoadFromFile(flagConfig)
		} else {
			appConfig, err = config.Load()
		}
		return err
	},
}

func main() {
	switch strings.ToLower(os.Getenv("ARXSPACE_LOG_LEVEL")) {
	case "debug":
		logger.SetLevel(logger.DEBUG)
	case "warn", "warning":
		logger.SetLevel(logger.WARN)
	case "error":
		logger.SetLevel(logger.ERROR)
	default:
		logger.SetLevel(logger.INFO)
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagEngine, "engine", "octree", "index engine: octree or tetree")
	rootCmd.PersistentFlags().IntVar(&flagLevel, "level", 12, "refinement level for insertions")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("arxspace %s (built %s)\n", Version, BuildTime)
	},
}
