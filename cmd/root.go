package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Persistent CLI flags shared by every subcommand
	seed         int64  // Master seed; overrides the config file's seed when set
	logLevel     string // Log verbosity level
	configPath   string // YAML overlay for sim.Config
	topologyPath string // YAML node/edge list; a random hybrid graph is built when empty
	metricsFile  string // Prometheus textfile written after the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "hybridnet-sim",
	Short: "Monte Carlo simulator for hybrid quantum/classical networks",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runOptions collects the persistent flags for the current invocation.
func runOptions(cmd *cobra.Command) scenarioOptions {
	return scenarioOptions{
		Seed:         seed,
		SeedSet:      cmd.Flags().Changed("seed"),
		ConfigPath:   configPath,
		TopologyPath: topologyPath,
		MetricsFile:  metricsFile,
	}
}

// init sets up persistent flags; subcommands register themselves in their own files
func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Master seed for every random stream (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config overlay")
	rootCmd.PersistentFlags().StringVar(&topologyPath, "topology", "", "Path to a YAML topology; a random hybrid graph is built when omitted")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
}
