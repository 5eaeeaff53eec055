// Package trace provides per-hop execution history recording for the routing engine.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// Transport modes recorded per hop.
const (
	ModeQuantum   = "quantum"
	ModeClassical = "classical"
)

// HopRecord captures a single simulated hop during reliable send.
type HopRecord struct {
	Step         int    // position in the execution, starting at 0
	From         int    // node the hop departed from
	To           int    // node the hop arrived at
	Mode         string // ModeQuantum or ModeClassical
	Success      bool
	DistanceKm   float64
	SurvivalProb float64 // quantum hops only
	Intercepted  bool    // quantum signal over a non-quantum link
	LossProb     float64 // classical hops only
	LatencyMs    float64 // classical hops only
	Fallback     bool    // hop belongs to a classical tail planned after a quantum failure
}
