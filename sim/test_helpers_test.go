package sim

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// mustGraph builds a graph from nodes and edges, failing the test on any
// construction error.
func mustGraph(t *testing.T, nodes []Node, edges []Edge) *Graph {
	t.Helper()
	g := NewGraph()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%+v): %v", n, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%+v): %v", e, err)
		}
	}
	return g
}

func quantumNode(id NodeID) Node { return Node{ID: id, QuantumCapable: true, CanStoreEntanglement: true} }

func classicalNode(id NodeID) Node { return Node{ID: id} }

// newTestLink returns a LinkModel over cfg seeded with seed.
func newTestLink(cfg LinkConfig, seed int64) *LinkModel {
	return NewLinkModel(cfg, rand.New(rand.NewSource(seed)))
}

// certainLinkConfig makes every quantum link over 0 km and every swap succeed,
// and every classical hop deliver with zero latency noise.
func certainLinkConfig() LinkConfig {
	cfg := DefaultLinkConfig()
	cfg.SwapSuccessProb = 1
	cfg.BaseLoss = 0
	cfg.CongestionNoiseStd = 0
	cfg.JitterStdMs = 0
	return cfg
}

// hopelessQuantumConfig makes every quantum link fail (survival underflows to 0)
// while classical hops always deliver.
func hopelessQuantumConfig() LinkConfig {
	cfg := certainLinkConfig()
	cfg.CoherenceLengthKm = 1e-12
	return cfg
}

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
