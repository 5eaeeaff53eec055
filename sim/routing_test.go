package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quasarfabric/hybridnet-sim/sim/trace"
)

// diamondGraph: quantum route 0-1-3 (10 km hops) and classical route 0-2-3
// (1 km hops). Node 2 is classical.
func diamondGraph(t *testing.T) *Graph {
	t.Helper()
	return mustGraph(t,
		[]Node{quantumNode(0), quantumNode(1), classicalNode(2), quantumNode(3)},
		[]Edge{
			{U: 0, V: 1, DistanceKm: 10, QuantumLink: true},
			{U: 1, V: 3, DistanceKm: 10, QuantumLink: true},
			{U: 0, V: 2, DistanceKm: 1},
			{U: 2, V: 3, DistanceKm: 1},
		})
}

func newTestRouter(cfg LinkConfig, seed int64) *Router {
	return NewRouter(newTestLink(cfg, seed), nil)
}

func TestRouter_PlanPath_BuiltinPolicies(t *testing.T) {
	g := diamondGraph(t)
	r := newTestRouter(DefaultLinkConfig(), 1)

	tests := []struct {
		policy string
		want   Path
	}{
		{PolicyNameQuantumOnly, Path{0, 1, 3}},
		{PolicyNameClassicalLatency, Path{0, 2, 3}},
		{PolicyNameHybrid, Path{0, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			path, reason := r.PlanPath(g, 0, 3, tt.policy)
			assert.Equal(t, ReasonNone, reason)
			assert.Equal(t, tt.want, path)
		})
	}
}

func TestRouter_PlanPath_HybridAppendsClassicalTail(t *testing.T) {
	// GIVEN quantum links 0-1-2 then a classical link to classical node 3
	g := mustGraph(t,
		[]Node{quantumNode(0), quantumNode(1), quantumNode(2), classicalNode(3)},
		[]Edge{
			{U: 0, V: 1, DistanceKm: 10, QuantumLink: true},
			{U: 1, V: 2, DistanceKm: 10, QuantumLink: true},
			{U: 2, V: 3, DistanceKm: 10},
		})
	r := newTestRouter(DefaultLinkConfig(), 1)

	hybrid, reason := r.PlanPath(g, 0, 3, PolicyNameHybrid)
	require.Equal(t, ReasonNone, reason)
	assert.Equal(t, Path{0, 1, 2, 3}, hybrid)

	_, reason = r.PlanPath(g, 0, 3, PolicyNameQuantumOnly)
	assert.Equal(t, ReasonNoPath, reason)
}

func TestRouter_PlanPath_Failures(t *testing.T) {
	g := mustGraph(t,
		[]Node{quantumNode(0), classicalNode(1), classicalNode(2)},
		[]Edge{{U: 0, V: 1, DistanceKm: 1}})
	reg := NewPolicyRegistry()
	require.NoError(t, reg.Register("fragile", func(g *Graph, src, dst NodeID) (Path, error) {
		if src == 1 {
			panic("unsupported source")
		}
		return Path{src, dst}, nil
	}))
	r := NewRouter(newTestLink(DefaultLinkConfig(), 1), reg)

	tests := []struct {
		name     string
		src, dst NodeID
		policy   string
		want     FailureReason
	}{
		{"unknown policy", 0, 1, "teleport", ReasonUnknownPolicy},
		{"disconnected", 0, 2, PolicyNameClassicalLatency, ReasonNoPath},
		{"no quantum subgraph", 0, 1, PolicyNameQuantumOnly, ReasonNoPath},
		{"source equals destination", 0, 0, PolicyNameClassicalLatency, ReasonNoPath},
		{"custom policy panics", 1, 0, "fragile", ReasonNoPath},
		{"custom policy returns non-edge", 0, 2, "fragile", ReasonNoPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, reason := r.PlanPath(g, tt.src, tt.dst, tt.policy)
			assert.Nil(t, path)
			assert.Equal(t, tt.want, reason)
		})
	}

	path, reason := r.PlanPath(g, 0, 1, "fragile")
	assert.Equal(t, ReasonNone, reason)
	assert.Equal(t, Path{0, 1}, path)
}

func TestRouter_Send_QuantumSuccess(t *testing.T) {
	g := mustGraph(t,
		[]Node{quantumNode(0), quantumNode(1)},
		[]Edge{{U: 0, V: 1, DistanceKm: 0, QuantumLink: true}})
	r := newTestRouter(certainLinkConfig(), 1)

	res := r.Send(g, 0, 1, PolicyNameQuantumOnly)

	assert.True(t, res.Success)
	assert.Equal(t, ModeQuantum, res.Mode)
	assert.Equal(t, Path{0, 1}, res.Path)
	require.NotNil(t, res.Quantum)
	assert.Nil(t, res.Classical)
}

func TestRouter_Send_WholePathClassicalRetry(t *testing.T) {
	// GIVEN quantum links that always fail and classical delivery that never does
	g := diamondGraph(t)
	r := newTestRouter(hopelessQuantumConfig(), 1)

	// WHEN sending along the quantum plan
	res := r.Send(g, 0, 3, PolicyNameQuantumOnly)

	// THEN the same path is re-simulated classically end to end
	assert.True(t, res.Success)
	assert.Equal(t, ModeClassical, res.Mode)
	assert.Equal(t, Path{0, 1, 3}, res.Path)
	require.NotNil(t, res.Quantum)
	require.NotNil(t, res.Classical)
	assert.False(t, res.Quantum.Success)
	assert.Equal(t, 2, res.Classical.Hops)
	assert.Equal(t, 20.0, res.Classical.TotalDistanceKm)
}

func TestRouter_Send_NoPath(t *testing.T) {
	g := mustGraph(t, []Node{classicalNode(0), classicalNode(1)}, nil)
	r := newTestRouter(DefaultLinkConfig(), 1)

	res := r.Send(g, 0, 1, PolicyNameHybrid)

	assert.False(t, res.Success)
	assert.Equal(t, ReasonNoPath, res.Reason)
	assert.Nil(t, res.Path)
	assert.Nil(t, res.Quantum)
}

func TestRouter_SendReliable_AllQuantum(t *testing.T) {
	g := mustGraph(t,
		[]Node{quantumNode(0), quantumNode(1), quantumNode(2)},
		[]Edge{
			{U: 0, V: 1, DistanceKm: 0, QuantumLink: true},
			{U: 1, V: 2, DistanceKm: 0, QuantumLink: true},
		})
	r := newTestRouter(certainLinkConfig(), 1)

	res := r.SendReliable(g, 0, 2, PolicyNameQuantumOnly)

	assert.True(t, res.Success)
	assert.Equal(t, ModeQuantum, res.Mode)
	assert.Equal(t, Path{0, 1, 2}, res.Path)
	assert.Equal(t, res.Planned, res.Path)
	assert.False(t, res.FellBack)
	assert.Zero(t, res.TranslationDelayMs)
	require.Equal(t, 2, res.History.Len())
	for i, h := range res.History.Records {
		assert.Equal(t, i, h.Step)
		assert.Equal(t, trace.ModeQuantum, h.Mode)
		assert.True(t, h.Success)
	}
}

func TestRouter_SendReliable_FallsBackFromCurrentNode(t *testing.T) {
	// GIVEN the quantum plan 0-1-3 and a quantum link that always fails
	g := diamondGraph(t)
	cfg := hopelessQuantumConfig()
	r := newTestRouter(cfg, 1)

	// WHEN sending reliably
	res := r.SendReliable(g, 0, 3, PolicyNameQuantumOnly)

	// THEN the first quantum hop fails and the classical tail 0-2-3 is walked
	require.True(t, res.Success)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, Path{0, 1, 3}, res.Planned)
	assert.Equal(t, Path{0, 2, 3}, res.Path)
	assert.True(t, res.FellBack)
	assert.Equal(t, NodeID(0), res.FallbackFrom)
	assert.Equal(t, ModeHybrid, res.Mode)

	require.Equal(t, 3, res.History.Len())
	first := res.History.Records[0]
	assert.Equal(t, trace.ModeQuantum, first.Mode)
	assert.False(t, first.Success)
	assert.Equal(t, 1, res.History.FirstFallback())
	for _, h := range res.History.Records[1:] {
		assert.Equal(t, trace.ModeClassical, h.Mode, "hops after a quantum failure are classical")
		assert.True(t, h.Fallback)
	}
	assert.Equal(t, cfg.TranslationDelayMs, res.TranslationDelayMs)
}

func TestRouter_SendReliable_NoClassicalFallback(t *testing.T) {
	g := diamondGraph(t)
	r := newTestRouter(hopelessQuantumConfig(), 1)
	r.fallback = func(*Graph, NodeID, NodeID) Path { return nil }

	res := r.SendReliable(g, 0, 3, PolicyNameQuantumOnly)

	assert.False(t, res.Success)
	assert.Equal(t, ReasonNoClassicalFallback, res.Reason)
	assert.True(t, res.FellBack)
	assert.Equal(t, Path{0}, res.Path)
	assert.Equal(t, 1, res.History.Len())
	assert.Equal(t, ModeQuantum, res.Mode)
}

func TestRouter_SendReliable_ClassicalLossIsTolerated(t *testing.T) {
	// GIVEN classical links that lose every packet
	g := mustGraph(t,
		[]Node{classicalNode(0), classicalNode(1), classicalNode(2)},
		[]Edge{{U: 0, V: 1, DistanceKm: 5}, {U: 1, V: 2, DistanceKm: 5}})
	cfg := certainLinkConfig()
	cfg.BaseLoss = 1
	r := newTestRouter(cfg, 1)

	// WHEN sending reliably
	res := r.SendReliable(g, 0, 2, PolicyNameClassicalLatency)

	// THEN the walk completes and the losses are only counted
	assert.True(t, res.Success)
	assert.Equal(t, ModeClassical, res.Mode)
	assert.Equal(t, Path{0, 1, 2}, res.Path)
	assert.Equal(t, 2, res.ClassicalLosses)
	assert.False(t, res.FellBack)
	summary := trace.Summarize(res.History)
	assert.Equal(t, 2, summary.LostClassicalHops)
	assert.Equal(t, 10.0, summary.TotalDistanceKm)
}

func TestRouter_SendReliable_Failures(t *testing.T) {
	g := mustGraph(t, []Node{classicalNode(0), classicalNode(1)}, nil)
	r := newTestRouter(DefaultLinkConfig(), 1)

	res := r.SendReliable(g, 0, 1, PolicyNameClassicalLatency)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonNoPath, res.Reason)
	assert.Zero(t, res.History.Len())
	assert.Equal(t, TransportMode(""), res.Mode)

	res = r.SendReliable(g, 0, 1, "nope")
	assert.Equal(t, ReasonUnknownPolicy, res.Reason)
}

func TestRouter_SendReliable_HistoryCoversExecutedHops(t *testing.T) {
	// GIVEN default (stochastic) link parameters
	g := diamondGraph(t)
	r := newTestRouter(DefaultLinkConfig(), 2024)

	for i := 0; i < 200; i++ {
		res := r.SendReliable(g, 0, 3, PolicyNameHybrid)
		require.True(t, res.Success)

		// THEN every executed edge has a record, and after a quantum
		// failure every record is classical
		assert.GreaterOrEqual(t, res.History.Len(), res.Path.Hops())
		failed := false
		for _, h := range res.History.Records {
			if failed {
				assert.Equal(t, trace.ModeClassical, h.Mode)
			}
			if h.Mode == trace.ModeQuantum && !h.Success {
				failed = true
			}
		}
	}
}

func TestRouter_SendReliable_CustomPolicy(t *testing.T) {
	// GIVEN a custom policy registered on the router that routes through the
	// highest-numbered neighbour
	g := diamondGraph(t)
	r := newTestRouter(hopelessQuantumConfig(), 1)
	require.NoError(t, r.Policies().Register("via_highest", func(g *Graph, src, dst NodeID) (Path, error) {
		if _, ok := g.Edge(src, dst); ok {
			return Path{src, dst}, nil
		}
		nbrs := g.Neighbors(src)
		for i := len(nbrs) - 1; i >= 0; i-- {
			if _, ok := g.Edge(nbrs[i], dst); ok {
				return Path{src, nbrs[i], dst}, nil
			}
		}
		return nil, nil
	}))

	// WHEN sending reliably with it
	res := r.SendReliable(g, 0, 3, "via_highest")

	// THEN the custom plan is executed classically without fallback
	require.True(t, res.Success)
	assert.Equal(t, "via_highest", res.Policy)
	assert.Equal(t, Path{0, 2, 3}, res.Planned)
	assert.Equal(t, Path{0, 2, 3}, res.Path)
	assert.Equal(t, ModeClassical, res.Mode)
	assert.False(t, res.FellBack)
	require.Equal(t, 2, res.History.Len())
	for _, h := range res.History.Records {
		assert.Equal(t, trace.ModeClassical, h.Mode)
		assert.False(t, h.Fallback)
	}

	// AND a router with its own registry does not see the policy
	other := newTestRouter(hopelessQuantumConfig(), 1)
	assert.Equal(t, ReasonUnknownPolicy, other.SendReliable(g, 0, 3, "via_highest").Reason)
}

func TestRouter_SameSeedSameOutcome(t *testing.T) {
	g := diamondGraph(t)
	a := newTestRouter(DefaultLinkConfig(), 99)
	b := newTestRouter(DefaultLinkConfig(), 99)

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.SendReliable(g, 0, 3, PolicyNameHybrid), b.SendReliable(g, 0, 3, PolicyNameHybrid))
		assert.Equal(t, a.Send(g, 3, 0, PolicyNameQuantumOnly), b.Send(g, 3, 0, PolicyNameQuantumOnly))
	}
}

func TestNewRouter_PanicsOnNilLink(t *testing.T) {
	assert.Panics(t, func() { NewRouter(nil, nil) })
}
