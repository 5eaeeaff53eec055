package sim

import (
	"fmt"
	"slices"
)

// NodeID identifies a node within a Graph.
type NodeID int

// Node is a network node. CanStoreEntanglement is only meaningful when
// QuantumCapable is true.
type Node struct {
	ID                   NodeID
	QuantumCapable       bool
	CanStoreEntanglement bool
}

// Edge is an undirected link between U and V.
// QuantumLink implies both endpoints are quantum-capable; AddEdge enforces it.
type Edge struct {
	U           NodeID
	V           NodeID
	DistanceKm  float64
	QuantumLink bool
}

// Other returns the endpoint of e opposite to id.
func (e Edge) Other(id NodeID) NodeID {
	if e.U == id {
		return e.V
	}
	return e.U
}

// Path is an ordered sequence of node IDs where each consecutive pair is an edge.
// A simulatable path has at least two nodes.
type Path []NodeID

// Hops returns the number of edges on the path.
func (p Path) Hops() int {
	if len(p) < 2 {
		return 0
	}
	return len(p) - 1
}

// Validate checks that p has at least two nodes and that every consecutive
// pair is an edge of g.
func (p Path) Validate(g *Graph) error {
	if len(p) < 2 {
		return fmt.Errorf("path %v has fewer than 2 nodes", []NodeID(p))
	}
	for i := 0; i+1 < len(p); i++ {
		if _, ok := g.Edge(p[i], p[i+1]); !ok {
			return fmt.Errorf("path %v: no edge %d-%d", []NodeID(p), p[i], p[i+1])
		}
	}
	return nil
}

// Graph is an undirected annotated graph. It is built once by a topology
// provider and treated as read-only by the simulators; the repeater optimizer
// works on overlays produced by WithRepeaters.
type Graph struct {
	nodes map[NodeID]Node
	adj   map[NodeID]map[NodeID]Edge
	ids   []NodeID // sorted ascending
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[NodeID]Node),
		adj:   make(map[NodeID]map[NodeID]Edge),
	}
}

// AddNode inserts n. Returns an error if a node with the same ID exists.
func (g *Graph) AddNode(n Node) error {
	if _, ok := g.nodes[n.ID]; ok {
		return fmt.Errorf("duplicate node %d", n.ID)
	}
	if n.CanStoreEntanglement && !n.QuantumCapable {
		return fmt.Errorf("node %d: entanglement storage requires a quantum-capable node", n.ID)
	}
	g.nodes[n.ID] = n
	g.adj[n.ID] = make(map[NodeID]Edge)
	idx, _ := slices.BinarySearch(g.ids, n.ID)
	g.ids = slices.Insert(g.ids, idx, n.ID)
	return nil
}

// AddEdge inserts e. Both endpoints must exist, e must not be a self-loop or a
// duplicate, its distance must be non-negative, and a quantum link requires
// both endpoints to be quantum-capable.
func (g *Graph) AddEdge(e Edge) error {
	nu, okU := g.nodes[e.U]
	nv, okV := g.nodes[e.V]
	switch {
	case !okU || !okV:
		return fmt.Errorf("edge %d-%d: unknown endpoint", e.U, e.V)
	case e.U == e.V:
		return fmt.Errorf("edge %d-%d: self-loop", e.U, e.V)
	case e.DistanceKm < 0:
		return fmt.Errorf("edge %d-%d: negative distance %f", e.U, e.V, e.DistanceKm)
	case e.QuantumLink && !(nu.QuantumCapable && nv.QuantumCapable):
		return fmt.Errorf("edge %d-%d: quantum link between non-quantum nodes", e.U, e.V)
	}
	if _, dup := g.adj[e.U][e.V]; dup {
		return fmt.Errorf("duplicate edge %d-%d", e.U, e.V)
	}
	g.adj[e.U][e.V] = e
	g.adj[e.V][e.U] = e
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Edge returns the edge between u and v in either direction.
func (g *Graph) Edge(u, v NodeID) (Edge, bool) {
	e, ok := g.adj[u][v]
	return e, ok
}

// mustEdge returns the edge between u and v, panicking if it does not exist.
// Callers pass paths produced by policies; a missing edge is a contract breach.
func (g *Graph) mustEdge(u, v NodeID) Edge {
	e, ok := g.adj[u][v]
	if !ok {
		panic(fmt.Sprintf("no edge %d-%d in graph", u, v))
	}
	return e
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.ids) }

// NodeIDs returns all node IDs in ascending order.
func (g *Graph) NodeIDs() []NodeID {
	return slices.Clone(g.ids)
}

// Neighbors returns the neighbors of id in ascending order.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	out := make([]NodeID, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Edges returns every edge once, ordered by (min endpoint, max endpoint).
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, u := range g.ids {
		for _, v := range g.Neighbors(u) {
			if u < v {
				out = append(out, g.adj[u][v])
			}
		}
	}
	return out
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: make(map[NodeID]Node, len(g.nodes)),
		adj:   make(map[NodeID]map[NodeID]Edge, len(g.adj)),
		ids:   slices.Clone(g.ids),
	}
	for id, n := range g.nodes {
		c.nodes[id] = n
	}
	for id, nbrs := range g.adj {
		m := make(map[NodeID]Edge, len(nbrs))
		for k, e := range nbrs {
			m[k] = e
		}
		c.adj[id] = m
	}
	return c
}

// WithRepeaters returns a copy of g in which every node in repeaters is
// upgraded to a quantum-capable node with entanglement storage. When
// promoteLinks is set, any edge whose endpoints are both quantum-capable after
// the upgrade becomes a quantum link. g itself is never modified.
// Panics if a repeater ID is not a node of g.
func (g *Graph) WithRepeaters(repeaters []NodeID, promoteLinks bool) *Graph {
	c := g.Clone()
	for _, id := range repeaters {
		n, ok := c.nodes[id]
		if !ok {
			panic(fmt.Sprintf("WithRepeaters: unknown node %d", id))
		}
		n.QuantumCapable = true
		n.CanStoreEntanglement = true
		c.nodes[id] = n
	}
	if !promoteLinks {
		return c
	}
	for u, nbrs := range c.adj {
		for v, e := range nbrs {
			if !e.QuantumLink && c.nodes[u].QuantumCapable && c.nodes[v].QuantumCapable {
				e.QuantumLink = true
				nbrs[v] = e
			}
		}
	}
	return c
}
