// Package topology provides graphs to the simulator: a seeded random hybrid
// graph builder and a YAML node/edge list loader.
package topology

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-playground/validator/v10"

	"github.com/quasarfabric/hybridnet-sim/sim"
)

var validate = validator.New()

// BuildConfig parameterizes BuildHybrid.
type BuildConfig struct {
	Nodes         int     `yaml:"nodes" validate:"gte=2"`
	QuantumRatio  float64 `yaml:"quantum_ratio" validate:"gte=0,lte=1"` // P(node is quantum-capable)
	StorageProb   float64 `yaml:"storage_prob" validate:"gte=0,lte=1"`  // P(storage | quantum-capable)
	EdgeProb      float64 `yaml:"edge_prob" validate:"gte=0,lte=1"`     // P(edge) per unordered pair
	MinDistanceKm float64 `yaml:"min_distance_km" validate:"gte=0"`
	MaxDistanceKm float64 `yaml:"max_distance_km" validate:"gtefield=MinDistanceKm"`
}

// DefaultBuildConfig returns the reference 10-node topology parameters.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Nodes:         10,
		QuantumRatio:  0.4,
		StorageProb:   0.6,
		EdgeProb:      0.3,
		MinDistanceKm: 5,
		MaxDistanceKm: 200,
	}
}

// BuildHybrid draws a random hybrid graph with node IDs 0..Nodes-1.
//
// Each node is quantum-capable with probability QuantumRatio and, only if
// quantum-capable, stores entanglement with probability StorageProb. Each
// unordered pair is linked with probability EdgeProb at a uniform distance in
// [MinDistanceKm, MaxDistanceKm] rounded to 0.01 km; the link is quantum iff
// both endpoints are quantum-capable.
func BuildHybrid(cfg BuildConfig, rng *rand.Rand) (*sim.Graph, error) {
	if rng == nil {
		panic("BuildHybrid: nil rng")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid topology parameters: %w", err)
	}

	g := sim.NewGraph()
	quantum := make([]bool, cfg.Nodes)
	for i := 0; i < cfg.Nodes; i++ {
		quantum[i] = rng.Float64() < cfg.QuantumRatio
		storage := quantum[i] && rng.Float64() < cfg.StorageProb
		if err := g.AddNode(sim.Node{ID: sim.NodeID(i), QuantumCapable: quantum[i], CanStoreEntanglement: storage}); err != nil {
			return nil, err
		}
	}
	span := cfg.MaxDistanceKm - cfg.MinDistanceKm
	for i := 0; i < cfg.Nodes; i++ {
		for j := i + 1; j < cfg.Nodes; j++ {
			if rng.Float64() >= cfg.EdgeProb {
				continue
			}
			dist := math.Round((cfg.MinDistanceKm+rng.Float64()*span)*100) / 100
			e := sim.Edge{U: sim.NodeID(i), V: sim.NodeID(j), DistanceKm: dist, QuantumLink: quantum[i] && quantum[j]}
			if err := g.AddEdge(e); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// PickConnectedPair chooses uniformly among node pairs (src < dst) joined by
// some path. Returns ok=false when no pair is connected.
func PickConnectedPair(g *sim.Graph, rng *rand.Rand) (src, dst sim.NodeID, ok bool) {
	type pair struct{ src, dst sim.NodeID }
	var pairs []pair
	ids := g.NodeIDs()
	comp := components(g)
	for i, u := range ids {
		for _, v := range ids[i+1:] {
			if comp[u] == comp[v] {
				pairs = append(pairs, pair{u, v})
			}
		}
	}
	if len(pairs) == 0 {
		return 0, 0, false
	}
	p := pairs[rng.Intn(len(pairs))]
	return p.src, p.dst, true
}

// components labels each node with the smallest node ID in its connected component.
func components(g *sim.Graph) map[sim.NodeID]sim.NodeID {
	label := make(map[sim.NodeID]sim.NodeID, g.NumNodes())
	for _, root := range g.NodeIDs() {
		if _, seen := label[root]; seen {
			continue
		}
		label[root] = root
		queue := []sim.NodeID{root}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			for _, nb := range g.Neighbors(n) {
				if _, seen := label[nb]; !seen {
					label[nb] = root
					queue = append(queue, nb)
				}
			}
		}
	}
	return label
}
