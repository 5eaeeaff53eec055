// Package repeater places quantum repeaters on a fixed graph to maximise the
// end-to-end quantum success rate between two nodes, net of a per-repeater cost.
//
// The base graph is never modified: each reward evaluation applies the mask as
// an overlay (sim.Graph.WithRepeaters) and simulates the shortest-hop path on
// the upgraded copy.
package repeater

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/quasarfabric/hybridnet-sim/sim"
)

const (
	// DisconnectedReward is returned when src and dst are not connected under a mask.
	DisconnectedReward = -1.0
	// InvalidMoveReward is returned by Toggle when a flip would exceed the budget.
	InvalidMoveReward = -0.5
)

// Optimizer holds the search state for one (graph, src, dst) problem.
// Not safe for concurrent use.
type Optimizer struct {
	graph    *sim.Graph
	src, dst sim.NodeID
	cfg      sim.RepeaterConfig
	link     *sim.LinkModel // reward-trial draws
	rng      *rand.Rand     // candidate selection
	metrics  *sim.RunMetrics

	mask Mask
}

// NewOptimizer creates an optimizer starting from the empty mask.
// Panics on a nil graph, link model or rng, on unknown endpoints, or when
// src == dst.
func NewOptimizer(g *sim.Graph, src, dst sim.NodeID, cfg sim.RepeaterConfig, link *sim.LinkModel, rng *rand.Rand) *Optimizer {
	switch {
	case g == nil:
		panic("NewOptimizer: nil graph")
	case link == nil:
		panic("NewOptimizer: nil link model")
	case rng == nil:
		panic("NewOptimizer: nil rng")
	case !g.HasNode(src) || !g.HasNode(dst):
		panic(fmt.Sprintf("NewOptimizer: endpoints %d,%d not in graph", src, dst))
	case src == dst:
		panic(fmt.Sprintf("NewOptimizer: src and dst are both %d", src))
	}
	if cfg.Trials < 1 {
		panic(fmt.Sprintf("NewOptimizer: trials must be >= 1, got %d", cfg.Trials))
	}
	return &Optimizer{
		graph: g,
		src:   src,
		dst:   dst,
		cfg:   cfg,
		link:  link,
		rng:   rng,
		mask:  NewMask(g.NodeIDs()),
	}
}

// SetMetrics attaches a metrics collector. Nil disables collection.
func (o *Optimizer) SetMetrics(m *sim.RunMetrics) { o.metrics = m }

// Mask returns a copy of the current mask.
func (o *Optimizer) Mask() Mask { return o.mask.Clone() }

// Reset clears every repeater and returns the empty mask.
func (o *Optimizer) Reset() Mask {
	o.mask = NewMask(o.graph.NodeIDs())
	return o.mask.Clone()
}

// Reward evaluates the current mask.
func (o *Optimizer) Reward() float64 { return o.RewardFor(o.mask) }

// RewardFor evaluates mask: the quantum success rate over cfg.Trials
// simulations of the shortest-hop src→dst path on the upgraded graph, minus
// CostPerRepeater per repeater. Returns DisconnectedReward when no path exists.
func (o *Optimizer) RewardFor(mask Mask) float64 {
	o.metrics.ObserveEvaluation()
	g := o.graph.WithRepeaters(mask.Repeaters(), o.cfg.PromoteLinks)
	path := sim.ShortestHopPath(g, o.src, o.dst)
	if len(path) < 2 {
		return DisconnectedReward
	}
	successes := 0
	for t := 0; t < o.cfg.Trials; t++ {
		if o.link.SimulateQuantumPath(g, path).Success {
			successes++
		}
	}
	return float64(successes)/float64(o.cfg.Trials) - o.cfg.CostPerRepeater*float64(mask.Size())
}

// Toggle flips position i of the current mask and evaluates it. A flip that
// would exceed MaxRepeaters is undone and scored InvalidMoveReward without
// evaluation. Panics if i is out of range.
func (o *Optimizer) Toggle(i int) (Mask, float64) {
	o.mask.checkIndex(i)
	o.mask.flip(i)
	if o.mask.Size() > o.cfg.MaxRepeaters {
		o.mask.flip(i)
		return o.mask.Clone(), InvalidMoveReward
	}
	return o.mask.Clone(), o.Reward()
}

// Result is the terminal state of a hill climb.
type Result struct {
	Mask        Mask
	Reward      float64
	Evaluations int // candidate masks scored, excluding the initial empty mask
	Rejected    int // candidates discarded for exceeding the budget
	// BestRewardTrace holds the best reward after each iteration.
	BestRewardTrace []float64
}

// HillClimb runs cfg.Iterations steps of greedy local search from the empty
// mask. Each step flips one uniformly chosen position of the best mask so far,
// discards the candidate if it exceeds MaxRepeaters, and keeps it only if its
// reward strictly improves on the best. The optimizer's mask is left at the
// best mask found.
func (o *Optimizer) HillClimb() Result {
	best := o.Reset()
	bestReward := o.Reward()
	o.metrics.ObserveBestReward(bestReward)

	res := Result{BestRewardTrace: make([]float64, 0, o.cfg.Iterations)}
	n := best.Len()
	for it := 0; it < o.cfg.Iterations; it++ {
		candidate := best.Clone()
		candidate.flip(o.rng.Intn(n))
		if candidate.Size() > o.cfg.MaxRepeaters {
			res.Rejected++
			res.BestRewardTrace = append(res.BestRewardTrace, bestReward)
			continue
		}
		reward := o.RewardFor(candidate)
		res.Evaluations++
		if reward > bestReward {
			logrus.WithFields(logrus.Fields{
				"iteration": it,
				"mask":      candidate.String(),
				"reward":    reward,
			}).Debug("repeater placement improved")
			best, bestReward = candidate, reward
			o.metrics.ObserveBestReward(bestReward)
		}
		res.BestRewardTrace = append(res.BestRewardTrace, bestReward)
	}

	o.mask = best.Clone()
	res.Mask = best
	res.Reward = bestReward
	return res
}
