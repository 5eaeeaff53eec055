package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	sim "github.com/quasarfabric/hybridnet-sim/sim"
	"github.com/quasarfabric/hybridnet-sim/sim/topology"
)

// scenarioOptions are the inputs shared by every simulation subcommand.
type scenarioOptions struct {
	Seed         int64
	SeedSet      bool
	ConfigPath   string
	TopologyPath string
	MetricsFile  string
}

// scenario is a loaded configuration, graph and seeded random streams.
type scenario struct {
	Config  sim.Config
	Graph   *sim.Graph
	RNG     *sim.PartitionedRNG
	Metrics *sim.RunMetrics

	metricsFile string
}

// loadScenario resolves config and topology. The config file's seed is used
// unless the seed flag was set explicitly.
func loadScenario(opts scenarioOptions) (*scenario, error) {
	cfg := sim.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := sim.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.SeedSet || opts.ConfigPath == "" {
		cfg.Seed = opts.Seed
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))

	var g *sim.Graph
	if opts.TopologyPath != "" {
		loaded, err := topology.Load(opts.TopologyPath)
		if err != nil {
			return nil, err
		}
		g = loaded
	} else {
		built, err := topology.BuildHybrid(topology.DefaultBuildConfig(), rng.ForSubsystem(sim.SubsystemTopology))
		if err != nil {
			return nil, err
		}
		g = built
	}

	metrics, err := sim.NewRunMetrics(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"seed":  cfg.Seed,
		"nodes": g.NumNodes(),
		"edges": len(g.Edges()),
	}).Info("scenario loaded")

	return &scenario{Config: cfg, Graph: g, RNG: rng, Metrics: metrics, metricsFile: opts.MetricsFile}, nil
}

// endpoints returns the requested pair, or a random connected pair when
// both are negative. Giving only one endpoint is an error.
func (s *scenario) endpoints(src, dst int) (sim.NodeID, sim.NodeID, error) {
	if (src >= 0) != (dst >= 0) {
		return 0, 0, fmt.Errorf("give both --src and --dst or neither (got src=%d dst=%d)", src, dst)
	}
	if src >= 0 {
		for _, id := range []int{src, dst} {
			if !s.Graph.HasNode(sim.NodeID(id)) {
				return 0, 0, fmt.Errorf("node %d not in topology", id)
			}
		}
		return sim.NodeID(src), sim.NodeID(dst), nil
	}
	a, b, ok := topology.PickConnectedPair(s.Graph, s.RNG.ForSubsystem(sim.SubsystemTopology))
	if !ok {
		return 0, 0, fmt.Errorf("topology has no connected node pair")
	}
	logrus.Infof("Picked endpoints %d -> %d", a, b)
	return a, b, nil
}

// linkModel returns a link model drawing from the link stream.
func (s *scenario) linkModel() *sim.LinkModel {
	return sim.NewLinkModel(s.Config.Link, s.RNG.ForSubsystem(sim.SubsystemLink))
}

// finish writes the metrics textfile when one was requested.
func (s *scenario) finish() error {
	if s.metricsFile == "" {
		return nil
	}
	if err := s.Metrics.WriteTextfile(s.metricsFile); err != nil {
		return err
	}
	logrus.Infof("Metrics written to %s", s.metricsFile)
	return nil
}
