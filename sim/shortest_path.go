package sim

import (
	"container/heap"
	"math"
	"slices"
)

// EdgeWeight maps an edge to a non-negative traversal cost.
type EdgeWeight func(e Edge) float64

// EdgeFilter reports whether an edge may be used. Nil admits every edge.
type EdgeFilter func(e Edge) bool

// minSurvival bounds the quantum cost so unreachable-in-practice links keep a finite weight.
const minSurvival = 1e-9

// QuantumCost is the routing cost of a quantum link: -log(max(survival, 1e-9)).
func QuantumCost(distanceKm, coherenceLengthKm float64) float64 {
	return -math.Log(math.Max(QuantumSurvival(distanceKm, coherenceLengthKm), minSurvival))
}

// UnitWeight counts hops.
func UnitWeight(Edge) float64 { return 1 }

// QuantumLinksOnly admits only quantum links.
func QuantumLinksOnly(e Edge) bool { return e.QuantumLink }

// ShortestPath finds the minimum-weight path from src to dst using Dijkstra's
// algorithm over edges admitted by filter. Equal-cost ties are broken by
// lower node ID so results are reproducible.
// Returns nil when either endpoint is missing or dst is unreachable;
// returns Path{src} when src == dst.
func ShortestPath(g *Graph, src, dst NodeID, weight EdgeWeight, filter EdgeFilter) Path {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil
	}
	if src == dst {
		return Path{src}
	}

	dist := map[NodeID]float64{src: 0}
	parent := map[NodeID]NodeID{src: src}
	done := make(map[NodeID]bool)
	pq := &distQueue{{node: src, dist: 0}}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(distItem)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true
		if cur.node == dst {
			break
		}
		for _, nb := range g.Neighbors(cur.node) {
			if done[nb] {
				continue
			}
			e := g.adj[cur.node][nb]
			if filter != nil && !filter(e) {
				continue
			}
			nd := cur.dist + weight(e)
			old, seen := dist[nb]
			if !seen || nd < old || (nd == old && cur.node < parent[nb]) {
				dist[nb] = nd
				parent[nb] = cur.node
				heap.Push(pq, distItem{node: nb, dist: nd})
			}
		}
	}

	if !done[dst] {
		return nil
	}
	path := Path{dst}
	for n := dst; n != src; {
		n = parent[n]
		path = append(path, n)
	}
	slices.Reverse(path)
	return path
}

// ShortestHopPath finds the path with the fewest hops from src to dst.
func ShortestHopPath(g *Graph, src, dst NodeID) Path {
	return ShortestPath(g, src, dst, UnitWeight, nil)
}

type distItem struct {
	node NodeID
	dist float64
}

// distQueue is a min-heap on (dist, node).
type distQueue []distItem

func (q distQueue) Len() int { return len(q) }
func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)   { *q = append(*q, x.(distItem)) }
func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
