package sim

import "fmt"

// PathFailure classifies why a path simulation did not succeed.
type PathFailure string

const (
	FailureNone PathFailure = ""
	FailureHop  PathFailure = "hop"  // quantum hop lost
	FailureSwap PathFailure = "swap" // entanglement swap failed at an intermediate node
	FailureLoss PathFailure = "loss" // classical packet lost (path still walked to completion)
)

// PathOutcome aggregates a whole-path simulation.
//
// Quantum outcomes are fail-fast: Hops and TotalDistanceKm cover the walk up
// to and including the failing hop. Classical outcomes always cover the full
// path; FailedHop records the first lost hop.
type PathOutcome struct {
	Mode            TransportMode
	Hops            int
	TotalDistanceKm float64
	TotalLatencyMs  float64 // classical only
	Success         bool
	Failure         PathFailure
	FailedHop       [2]NodeID // endpoints of the failing (quantum) or first lost (classical) hop
	FailedNode      NodeID    // node whose swap failed; meaningful only for FailureSwap
}

// SimulateQuantumPath distributes end-to-end entanglement along path.
// Every hop must survive and, after each successful non-final hop, the
// intermediate node must complete an entanglement swap. No retries.
// Panics if path has fewer than 2 nodes or references a missing edge.
func (m *LinkModel) SimulateQuantumPath(g *Graph, path Path) PathOutcome {
	mustSimulatable(path)
	out := PathOutcome{Mode: ModeQuantum}
	last := len(path) - 2
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		hop := m.SimulateQuantumHop(oriented(g.mustEdge(u, v), u))
		out.Hops++
		out.TotalDistanceKm += hop.DistanceKm
		if !hop.Success {
			out.Failure = FailureHop
			out.FailedHop = [2]NodeID{u, v}
			return out
		}
		if i < last {
			n, _ := g.Node(v)
			if ok, _ := m.SimulateEntanglementSwap(n.CanStoreEntanglement); !ok {
				out.Failure = FailureSwap
				out.FailedNode = v
				return out
			}
		}
	}
	out.Success = true
	return out
}

// SimulateClassicalPath sends a packet along path. Every hop is walked even
// after a loss so distance and latency reflect the full path; Success turns
// false at the first lost hop and stays false.
// Panics if path has fewer than 2 nodes or references a missing edge.
func (m *LinkModel) SimulateClassicalPath(g *Graph, path Path) PathOutcome {
	mustSimulatable(path)
	out := PathOutcome{Mode: ModeClassical, Success: true}
	for i := 0; i+1 < len(path); i++ {
		u, v := path[i], path[i+1]
		hop := m.SimulateClassicalHop(oriented(g.mustEdge(u, v), u))
		out.Hops++
		out.TotalDistanceKm += hop.DistanceKm
		out.TotalLatencyMs += hop.LatencyMs
		if !hop.Success && out.Success {
			out.Success = false
			out.Failure = FailureLoss
			out.FailedHop = [2]NodeID{u, v}
		}
	}
	return out
}

// TrialRecord is one raw Monte Carlo observation.
type TrialRecord struct {
	Trial   int
	Outcome PathOutcome
}

// MonteCarloCompare runs the quantum and classical simulators trials times
// each, independently, and returns one record per trial per mode
// (quantum first within each trial). Aggregation is left to SummarizeTrials.
// Panics if path has fewer than 2 nodes or trials is negative.
func (m *LinkModel) MonteCarloCompare(g *Graph, path Path, trials int) []TrialRecord {
	mustSimulatable(path)
	if trials < 0 {
		panic(fmt.Sprintf("MonteCarloCompare: trials must be >= 0, got %d", trials))
	}
	records := make([]TrialRecord, 0, 2*trials)
	for t := 0; t < trials; t++ {
		records = append(records,
			TrialRecord{Trial: t, Outcome: m.SimulateQuantumPath(g, path)},
			TrialRecord{Trial: t, Outcome: m.SimulateClassicalPath(g, path)},
		)
	}
	return records
}

func mustSimulatable(path Path) {
	if len(path) < 2 {
		panic(fmt.Sprintf("path %v has fewer than 2 nodes", []NodeID(path)))
	}
}
