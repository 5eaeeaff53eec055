package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/quasarfabric/hybridnet-sim/sim"
	"github.com/quasarfabric/hybridnet-sim/sim/topology"
)

var (
	topoNodes        int     // Node count
	topoQuantumRatio float64 // Probability a node is quantum-capable
	topoEdgeProb     float64 // Probability a node pair is linked
	topoOut          string  // Output file; stdout when empty
)

// topologyCmd generates a random hybrid topology as YAML
var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Generate a random hybrid topology as YAML",
	Long:  "Build a random hybrid quantum/classical graph from --seed and write it in the format accepted by --topology.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := topology.DefaultBuildConfig()
		cfg.Nodes = topoNodes
		cfg.QuantumRatio = topoQuantumRatio
		cfg.EdgeProb = topoEdgeProb

		if err := writeTopology(seed, cfg, topoOut, os.Stdout); err != nil {
			logrus.Fatalf("topology failed: %v", err)
		}
	},
}

// writeTopology writes the generated topology to path, or to stdout when
// path is empty. The file is closed before returning.
func writeTopology(seed int64, cfg topology.BuildConfig, path string, stdout io.Writer) (err error) {
	if path == "" {
		return runTopology(seed, cfg, stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return runTopology(seed, cfg, f)
}

func runTopology(seed int64, cfg topology.BuildConfig, w io.Writer) error {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
	g, err := topology.BuildHybrid(cfg, rng.ForSubsystem(sim.SubsystemTopology))
	if err != nil {
		return err
	}
	data, err := topology.Encode(g)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing topology: %w", err)
	}
	return nil
}

func init() {
	def := topology.DefaultBuildConfig()
	topologyCmd.Flags().IntVar(&topoNodes, "nodes", def.Nodes, "Number of nodes")
	topologyCmd.Flags().Float64Var(&topoQuantumRatio, "quantum-ratio", def.QuantumRatio, "Probability a node is quantum-capable")
	topologyCmd.Flags().Float64Var(&topoEdgeProb, "edge-prob", def.EdgeProb, "Probability two nodes are linked")
	topologyCmd.Flags().StringVar(&topoOut, "out", "", "Output file (stdout when empty)")

	rootCmd.AddCommand(topologyCmd)
}
