package topology

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quasarfabric/hybridnet-sim/sim"
)

// NodeSpec is one node of a topology file.
type NodeSpec struct {
	ID      int  `yaml:"id" validate:"gte=0"`
	Quantum bool `yaml:"quantum"`
	Storage bool `yaml:"storage"`
}

// EdgeSpec is one undirected link of a topology file.
type EdgeSpec struct {
	U          int     `yaml:"u" validate:"gte=0"`
	V          int     `yaml:"v" validate:"gte=0,nefield=U"`
	DistanceKm float64 `yaml:"distance_km" validate:"gte=0"`
	Quantum    bool    `yaml:"quantum"`
}

// File is the on-disk topology format: a flat node list and edge list.
type File struct {
	Nodes []NodeSpec `yaml:"nodes" validate:"min=1,dive"`
	Edges []EdgeSpec `yaml:"edges" validate:"dive"`
}

// Load reads and builds the topology at path.
func Load(path string) (*sim.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("topology %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a YAML topology strictly (unknown keys are errors), checks
// field ranges, and builds the graph. Graph invariants such as quantum links
// between quantum-capable nodes are enforced by sim.Graph.
func Parse(data []byte) (*sim.Graph, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing topology: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid topology: %w", err)
	}
	return f.Graph()
}

// Graph builds a sim.Graph from the file.
func (f File) Graph() (*sim.Graph, error) {
	g := sim.NewGraph()
	for _, n := range f.Nodes {
		if err := g.AddNode(sim.Node{ID: sim.NodeID(n.ID), QuantumCapable: n.Quantum, CanStoreEntanglement: n.Storage}); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Edges {
		if err := g.AddEdge(sim.Edge{U: sim.NodeID(e.U), V: sim.NodeID(e.V), DistanceKm: e.DistanceKm, QuantumLink: e.Quantum}); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// FromGraph converts g to its file form, nodes and edges in ascending order.
func FromGraph(g *sim.Graph) File {
	var f File
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		f.Nodes = append(f.Nodes, NodeSpec{ID: int(n.ID), Quantum: n.QuantumCapable, Storage: n.CanStoreEntanglement})
	}
	for _, e := range g.Edges() {
		f.Edges = append(f.Edges, EdgeSpec{U: int(e.U), V: int(e.V), DistanceKm: e.DistanceKm, Quantum: e.QuantumLink})
	}
	return f
}

// Encode renders g as a YAML topology file readable by Parse.
func Encode(g *sim.Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromGraph(g)); err != nil {
		return nil, fmt.Errorf("encoding topology: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding topology: %w", err)
	}
	return buf.Bytes(), nil
}
