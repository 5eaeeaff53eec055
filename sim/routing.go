package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/quasarfabric/hybridnet-sim/sim/trace"
)

// FailureReason explains an unsuccessful send. Empty on success.
type FailureReason string

const (
	ReasonNone                FailureReason = ""
	ReasonNoPath              FailureReason = "no_path"
	ReasonNoClassicalFallback FailureReason = "no_classical_fallback"
	ReasonUnknownPolicy       FailureReason = "unknown_policy"
)

// SendResult is the outcome of a single-shot send.
// Quantum and Classical hold the whole-path simulations that were run
// (Classical is nil when the quantum attempt succeeded).
type SendResult struct {
	Success   bool
	Mode      TransportMode
	Path      Path
	Policy    string
	Reason    FailureReason
	Quantum   *PathOutcome
	Classical *PathOutcome
}

// ReliableResult is the outcome of a hop-by-hop send.
type ReliableResult struct {
	Success bool
	// Mode is derived from the executed hops: quantum or classical when every
	// hop used that transport, hybrid otherwise. Empty when nothing executed.
	Mode    TransportMode
	Path    Path // executed path: planned prefix plus any classical tail
	Planned Path // path returned by the policy
	Policy  string
	Reason  FailureReason
	History *trace.ExecutionHistory

	FellBack     bool   // a quantum hop failed and a classical tail was planned
	FallbackFrom NodeID // node the classical tail departed from; meaningful only when FellBack
	// ClassicalLosses counts classical hops recorded as lost. Losses do not
	// abort the walk, so a successful result may still carry losses.
	ClassicalLosses    int
	TranslationDelayMs float64 // BoundaryCrossings × LinkConfig.TranslationDelayMs
}

// Router resolves named policies to paths and executes them over a LinkModel.
type Router struct {
	link     *LinkModel
	policies *PolicyRegistry
	metrics  *RunMetrics
	// fallback plans the classical tail after a quantum hop fails.
	fallback func(g *Graph, from, dst NodeID) Path
}

// NewRouter creates a Router. A nil registry uses the built-in policies only.
func NewRouter(link *LinkModel, policies *PolicyRegistry) *Router {
	if link == nil {
		panic("NewRouter: nil link model")
	}
	if policies == nil {
		policies = NewPolicyRegistry()
	}
	r := &Router{link: link, policies: policies}
	r.fallback = r.classicalLatencyPath
	return r
}

// SetMetrics attaches a metrics collector. Nil disables collection.
func (r *Router) SetMetrics(m *RunMetrics) { r.metrics = m }

// Policies returns the router's policy registry.
func (r *Router) Policies() *PolicyRegistry { return r.policies }

// PlanPath resolves policyName and computes a path from src to dst.
// Returns ReasonUnknownPolicy for unresolvable names and ReasonNoPath when the
// policy yields no usable path (fewer than two nodes, an error, a panic, or an
// invalid path from a custom policy).
func (r *Router) PlanPath(g *Graph, src, dst NodeID, policyName string) (Path, FailureReason) {
	policy, ok := r.policies.Lookup(policyName)
	if !ok {
		return nil, ReasonUnknownPolicy
	}
	var path Path
	switch policy.Kind {
	case PolicyQuantumOnly:
		path = r.quantumOnlyPath(g, src, dst)
	case PolicyClassicalLatency:
		path = r.classicalLatencyPath(g, src, dst)
	case PolicyHybrid:
		path = r.hybridPath(g, src, dst)
	case PolicyCustom:
		p, err := callCustom(policy.fn, g, src, dst)
		if err == nil && len(p) > 0 {
			err = checkEndpoints(g, p, src, dst)
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"policy": policyName, "src": src, "dst": dst}).
				Debugf("custom policy produced no usable path: %v", err)
			return nil, ReasonNoPath
		}
		path = p
	}
	if len(path) < 2 {
		return nil, ReasonNoPath
	}
	return path, ReasonNone
}

// Send resolves a path and simulates it end to end as quantum; if that fails
// the whole path is re-simulated as classical. No hop-level fallback.
func (r *Router) Send(g *Graph, src, dst NodeID, policyName string) SendResult {
	res := r.send(g, src, dst, policyName)
	r.metrics.ObserveSend(res)
	return res
}

func (r *Router) send(g *Graph, src, dst NodeID, policyName string) SendResult {
	path, reason := r.PlanPath(g, src, dst, policyName)
	if reason != ReasonNone {
		return SendResult{Policy: policyName, Reason: reason}
	}
	q := r.link.SimulateQuantumPath(g, path)
	if q.Success {
		return SendResult{Success: true, Mode: ModeQuantum, Path: path, Policy: policyName, Quantum: &q}
	}
	c := r.link.SimulateClassicalPath(g, path)
	return SendResult{Success: c.Success, Mode: ModeClassical, Path: path, Policy: policyName, Quantum: &q, Classical: &c}
}

// SendReliable executes the planned path hop by hop, recording every hop.
//
// Quantum links are attempted as quantum hops. When one fails, the rest of
// the plan is abandoned and a classical-latency path from the current node to
// dst is walked instead, each hop recorded as a classical fallback hop.
// Classical hops are always traversed; a loss is recorded but does not stop
// the walk.
func (r *Router) SendReliable(g *Graph, src, dst NodeID, policyName string) ReliableResult {
	res := r.sendReliable(g, src, dst, policyName)
	r.metrics.ObserveReliable(res)
	return res
}

func (r *Router) sendReliable(g *Graph, src, dst NodeID, policyName string) ReliableResult {
	res := ReliableResult{Policy: policyName, History: trace.NewExecutionHistory()}
	planned, reason := r.PlanPath(g, src, dst, policyName)
	if reason != ReasonNone {
		res.Reason = reason
		return res
	}
	res.Planned = planned

	executed := Path{planned[0]}
	for i := 0; i+1 < len(planned); i++ {
		u, v := planned[i], planned[i+1]
		e := oriented(g.mustEdge(u, v), u)

		if !e.QuantumLink {
			r.recordHop(&res, r.link.SimulateClassicalHop(e), false)
			executed = append(executed, v)
			continue
		}

		hop := r.link.SimulateQuantumHop(e)
		r.recordHop(&res, hop, false)
		if hop.Success {
			executed = append(executed, v)
			continue
		}

		res.FellBack = true
		res.FallbackFrom = u
		tail := r.fallback(g, u, dst)
		if len(tail) < 2 {
			logrus.WithFields(logrus.Fields{"policy": policyName, "at": u, "dst": dst}).
				Debug("quantum hop failed with no classical fallback")
			res.Reason = ReasonNoClassicalFallback
			res.Path = executed
			r.finish(&res)
			return res
		}
		logrus.WithFields(logrus.Fields{"policy": policyName, "at": u, "tail": tail}).
			Debug("quantum hop failed, falling back to classical tail")
		for j := 0; j+1 < len(tail); j++ {
			te := oriented(g.mustEdge(tail[j], tail[j+1]), tail[j])
			r.recordHop(&res, r.link.SimulateClassicalHop(te), true)
		}
		executed = append(executed, tail[1:]...)
		break
	}

	res.Success = true
	res.Path = executed
	r.finish(&res)
	return res
}

func (r *Router) recordHop(res *ReliableResult, hop HopOutcome, fallback bool) {
	mode := trace.ModeQuantum
	if hop.Mode == ModeClassical {
		mode = trace.ModeClassical
		if !hop.Success {
			res.ClassicalLosses++
		}
	}
	res.History.Record(trace.HopRecord{
		From:         int(hop.From),
		To:           int(hop.To),
		Mode:         mode,
		Success:      hop.Success,
		DistanceKm:   hop.DistanceKm,
		SurvivalProb: hop.SurvivalProb,
		Intercepted:  hop.Intercepted,
		LossProb:     hop.LossProb,
		LatencyMs:    hop.LatencyMs,
		Fallback:     fallback,
	})
}

// finish derives Mode and translation delay from the recorded history.
func (r *Router) finish(res *ReliableResult) {
	summary := trace.Summarize(res.History)
	switch {
	case summary.Hops == 0:
		res.Mode = ""
	case summary.ClassicalHops == 0:
		res.Mode = ModeQuantum
	case summary.QuantumHops == 0:
		res.Mode = ModeClassical
	default:
		res.Mode = ModeHybrid
	}
	res.TranslationDelayMs = float64(summary.BoundaryCrossings) * r.link.cfg.TranslationDelayMs
}

// === Built-in policies ===

func (r *Router) quantumWeight(e Edge) float64 {
	return QuantumCost(e.DistanceKm, r.link.cfg.CoherenceLengthKm)
}

func (r *Router) latencyWeight(e Edge) float64 {
	return e.DistanceKm * r.link.cfg.BaseLatencyMsPerKm
}

// quantumOnlyPath is the cheapest path using quantum links only.
// Both endpoints must touch at least one quantum link.
func (r *Router) quantumOnlyPath(g *Graph, src, dst NodeID) Path {
	path := ShortestPath(g, src, dst, r.quantumWeight, QuantumLinksOnly)
	if len(path) < 2 {
		return nil
	}
	return path
}

// classicalLatencyPath is the lowest-latency path over every link.
func (r *Router) classicalLatencyPath(g *Graph, src, dst NodeID) Path {
	path := ShortestPath(g, src, dst, r.latencyWeight, nil)
	if len(path) < 2 {
		return nil
	}
	return path
}

// hybridPath greedily takes the first hop of the best quantum route from the
// current node; once no quantum route remains it appends the classical-latency
// tail and stops. The result is a plan: failures are handled at execution.
func (r *Router) hybridPath(g *Graph, src, dst NodeID) Path {
	path := Path{src}
	visited := map[NodeID]bool{src: true}
	here := src
	for here != dst {
		q := r.quantumOnlyPath(g, here, dst)
		if len(q) > 1 && !visited[q[1]] {
			here = q[1]
			visited[here] = true
			path = append(path, here)
			continue
		}
		tail := r.classicalLatencyPath(g, here, dst)
		if len(tail) < 2 {
			return nil
		}
		path = append(path, tail[1:]...)
		break
	}
	return path
}
