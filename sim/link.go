package sim

import (
	"math"
	"math/rand"
)

// TransportMode tags how a hop or path was carried.
type TransportMode string

const (
	ModeQuantum   TransportMode = "quantum"
	ModeClassical TransportMode = "classical"
	// ModeHybrid marks an execution that mixed quantum and classical hops.
	ModeHybrid TransportMode = "hybrid"
)

// HopOutcome is the result of simulating one edge traversal.
// SurvivalProb is set for quantum hops; LossProb and LatencyMs for classical hops.
type HopOutcome struct {
	From         NodeID
	To           NodeID
	Mode         TransportMode
	Success      bool
	DistanceKm   float64
	SurvivalProb float64
	Intercepted  bool // quantum signal attempted over a non-quantum link
	LossProb     float64
	LatencyMs    float64
}

// LinkModel draws per-hop outcomes from its configured probability models.
// All randomness comes from the injected *rand.Rand.
type LinkModel struct {
	cfg LinkConfig
	rng *rand.Rand
}

// NewLinkModel creates a LinkModel. Panics if rng is nil.
func NewLinkModel(cfg LinkConfig, rng *rand.Rand) *LinkModel {
	if rng == nil {
		panic("NewLinkModel: nil rng")
	}
	return &LinkModel{cfg: cfg, rng: rng}
}

// Config returns the link parameters.
func (m *LinkModel) Config() LinkConfig { return m.cfg }

// QuantumSurvival returns exp(-d/L) clipped to [0,1].
// Pure: the same inputs always return the same value.
func QuantumSurvival(distanceKm, coherenceLengthKm float64) float64 {
	return clip01(math.Exp(-distanceKm / coherenceLengthKm))
}

// QuantumSurvival returns the survival probability for the model's coherence length.
func (m *LinkModel) QuantumSurvival(distanceKm float64) float64 {
	return QuantumSurvival(distanceKm, m.cfg.CoherenceLengthKm)
}

// SimulateQuantumHop attempts to carry a qubit across e.
// A non-quantum link intercepts the signal and succeeds with the fixed
// probability 1 - InterceptFailProb regardless of distance.
func (m *LinkModel) SimulateQuantumHop(e Edge) HopOutcome {
	out := HopOutcome{From: e.U, To: e.V, Mode: ModeQuantum, DistanceKm: e.DistanceKm}
	if !e.QuantumLink {
		failProb := clip01(m.cfg.InterceptFailProb)
		out.Intercepted = true
		out.SurvivalProb = 1 - failProb
		out.Success = m.rng.Float64() >= failProb
		return out
	}
	out.SurvivalProb = m.QuantumSurvival(e.DistanceKm)
	out.Success = m.rng.Float64() < out.SurvivalProb
	return out
}

// SimulateEntanglementSwap attempts a swap at a node. A node that cannot store
// entanglement fails deterministically without consuming a draw.
// Returns the success flag and the probability used.
func (m *LinkModel) SimulateEntanglementSwap(canSwap bool) (bool, float64) {
	if !canSwap {
		return false, 0
	}
	p := clip01(m.cfg.SwapSuccessProb)
	return m.rng.Float64() < p, p
}

// ClassicalLoss returns BaseLoss plus Gaussian congestion noise, clipped to [0,1].
// Resampled on every call; distance does not affect loss in this model.
func (m *LinkModel) ClassicalLoss(distanceKm float64) float64 {
	return clip01(m.cfg.BaseLoss + m.rng.NormFloat64()*m.cfg.CongestionNoiseStd)
}

// ClassicalLatency returns distance*BaseLatencyMsPerKm plus Gaussian jitter, floored at 0.
func (m *LinkModel) ClassicalLatency(distanceKm float64) float64 {
	return math.Max(0, distanceKm*m.cfg.BaseLatencyMsPerKm+m.rng.NormFloat64()*m.cfg.JitterStdMs)
}

// SimulateClassicalHop sends a packet across e. Draw order: loss probability,
// delivery, latency.
func (m *LinkModel) SimulateClassicalHop(e Edge) HopOutcome {
	out := HopOutcome{From: e.U, To: e.V, Mode: ModeClassical, DistanceKm: e.DistanceKm}
	out.LossProb = m.ClassicalLoss(e.DistanceKm)
	out.Success = m.rng.Float64() >= out.LossProb
	out.LatencyMs = m.ClassicalLatency(e.DistanceKm)
	return out
}

// oriented returns e with U=from, so hop outcomes follow the walk direction.
func oriented(e Edge, from NodeID) Edge {
	if e.U != from {
		e.U, e.V = e.V, e.U
	}
	return e
}

func clip01(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
