package repeater

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quasarfabric/hybridnet-sim/sim"
	"github.com/quasarfabric/hybridnet-sim/sim/internal/testutil"
)

// lineGraph builds 0-1-2 over zero-length quantum links where only the
// storage flag of node 1 decides whether the swap succeeds.
func lineGraph(t *testing.T) *sim.Graph {
	t.Helper()
	g := sim.NewGraph()
	for id := sim.NodeID(0); id < 3; id++ {
		require.NoError(t, g.AddNode(sim.Node{ID: id, QuantumCapable: true}))
	}
	require.NoError(t, g.AddEdge(sim.Edge{U: 0, V: 1, DistanceKm: 0, QuantumLink: true}))
	require.NoError(t, g.AddEdge(sim.Edge{U: 1, V: 2, DistanceKm: 0, QuantumLink: true}))
	return g
}

func certainLink(seed int64) *sim.LinkModel {
	cfg := sim.DefaultLinkConfig()
	cfg.SwapSuccessProb = 1
	return sim.NewLinkModel(cfg, rand.New(rand.NewSource(seed)))
}

func testConfig() sim.RepeaterConfig {
	return sim.RepeaterConfig{
		MaxRepeaters:    2,
		CostPerRepeater: 0.01,
		Iterations:      100,
		Trials:          20,
	}
}

func TestRewardFor_StorageAtIntermediateNode(t *testing.T) {
	g := lineGraph(t)
	o := NewOptimizer(g, 0, 2, testConfig(), certainLink(1), rand.New(rand.NewSource(2)))

	tests := []struct {
		name   string
		on     []int
		reward float64
	}{
		{name: "empty mask cannot swap at node 1", on: nil, reward: 0},
		{name: "repeater at node 1", on: []int{1}, reward: 0.99},
		{name: "repeater at endpoint only pays the cost", on: []int{0}, reward: -0.01},
		{name: "two repeaters", on: []int{0, 1}, reward: 0.98},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMask(g.NodeIDs())
			for _, i := range tt.on {
				m.flip(i)
			}
			testutil.AssertFloat64Equal(t, "reward", tt.reward, o.RewardFor(m), 1e-9)
		})
	}
}

func TestRewardFor_DoesNotMutateBaseGraph(t *testing.T) {
	g := lineGraph(t)
	o := NewOptimizer(g, 0, 2, testConfig(), certainLink(1), rand.New(rand.NewSource(2)))
	m := NewMask(g.NodeIDs())
	m.flip(1)

	o.RewardFor(m)

	n, _ := g.Node(1)
	assert.False(t, n.CanStoreEntanglement)
}

func TestRewardFor_Disconnected(t *testing.T) {
	// GIVEN two nodes with no edge
	g := sim.NewGraph()
	require.NoError(t, g.AddNode(sim.Node{ID: 0}))
	require.NoError(t, g.AddNode(sim.Node{ID: 1}))
	o := NewOptimizer(g, 0, 1, testConfig(), certainLink(1), rand.New(rand.NewSource(2)))

	// WHEN any mask is scored
	// THEN the sentinel is returned without a repeater penalty
	assert.Equal(t, DisconnectedReward, o.Reward())
	res := o.HillClimb()
	assert.Equal(t, DisconnectedReward, res.Reward)
	assert.Equal(t, 0, res.Mask.Size())
}

func TestHillClimb_FindsIntermediateRepeater(t *testing.T) {
	// GIVEN a line whose only failure mode is the swap at node 1
	g := lineGraph(t)
	o := NewOptimizer(g, 0, 2, testConfig(), certainLink(5), rand.New(rand.NewSource(6)))

	// WHEN the hill climb runs
	res := o.HillClimb()

	// THEN it settles on exactly node 1
	assert.Equal(t, []sim.NodeID{1}, res.Mask.Repeaters())
	testutil.AssertFloat64Equal(t, "reward", 0.99, res.Reward, 1e-9)
	assert.Equal(t, "010", o.Mask().String())
	assert.Len(t, res.BestRewardTrace, 100)
	assert.Equal(t, 100, res.Evaluations+res.Rejected)
}

func TestHillClimb_ZeroBudgetRejectsEveryCandidate(t *testing.T) {
	g := lineGraph(t)
	cfg := testConfig()
	cfg.MaxRepeaters = 0
	o := NewOptimizer(g, 0, 2, cfg, certainLink(5), rand.New(rand.NewSource(6)))

	res := o.HillClimb()

	assert.Equal(t, cfg.Iterations, res.Rejected)
	assert.Zero(t, res.Evaluations)
	assert.Zero(t, res.Mask.Size())
	assert.Zero(t, res.Reward)
}

func TestToggle_InvalidMoveIsUndone(t *testing.T) {
	// GIVEN a budget of one repeater already used at node 1
	g := lineGraph(t)
	cfg := testConfig()
	cfg.MaxRepeaters = 1
	o := NewOptimizer(g, 0, 2, cfg, certainLink(5), rand.New(rand.NewSource(6)))
	_, r := o.Toggle(1)
	testutil.AssertFloat64Equal(t, "reward", 0.99, r, 1e-9)

	// WHEN a second repeater is toggled on
	mask, r := o.Toggle(0)

	// THEN the flip is undone and penalised
	assert.Equal(t, InvalidMoveReward, r)
	assert.Equal(t, "010", mask.String())
	assert.Equal(t, "010", o.Mask().String())

	// AND Reset clears the state
	assert.Zero(t, o.Reset().Size())
	assert.Panics(t, func() { o.Toggle(3) })
}

func TestNewOptimizer_PanicsOnContractViolations(t *testing.T) {
	g := lineGraph(t)
	link := certainLink(1)
	rng := rand.New(rand.NewSource(1))
	cfg := testConfig()

	assert.Panics(t, func() { NewOptimizer(g, 1, 1, cfg, link, rng) })
	assert.Panics(t, func() { NewOptimizer(g, 0, 9, cfg, link, rng) })
	assert.Panics(t, func() { NewOptimizer(nil, 0, 1, cfg, link, rng) })
	assert.Panics(t, func() { NewOptimizer(g, 0, 1, cfg, nil, rng) })
	assert.Panics(t, func() { NewOptimizer(g, 0, 1, cfg, link, nil) })
	cfg.Trials = 0
	assert.Panics(t, func() { NewOptimizer(g, 0, 1, cfg, link, rng) })
}

func TestHillClimb_PromoteLinksUpgradesClassicalEdge(t *testing.T) {
	// GIVEN 0 -(classical)- 1 -(quantum)- 2 where node 1 is not quantum-capable
	g := sim.NewGraph()
	require.NoError(t, g.AddNode(sim.Node{ID: 0, QuantumCapable: true}))
	require.NoError(t, g.AddNode(sim.Node{ID: 1}))
	require.NoError(t, g.AddNode(sim.Node{ID: 2, QuantumCapable: true}))
	require.NoError(t, g.AddEdge(sim.Edge{U: 0, V: 1, DistanceKm: 0}))
	require.NoError(t, g.AddEdge(sim.Edge{U: 1, V: 2, DistanceKm: 0}))
	cfg := testConfig()
	cfg.PromoteLinks = true
	link := certainLink(3)
	o := NewOptimizer(g, 0, 2, cfg, link, rand.New(rand.NewSource(4)))

	// WHEN node 1 is upgraded
	m := NewMask(g.NodeIDs())
	m.flip(1)

	// THEN both links become quantum links and the path always succeeds
	testutil.AssertFloat64Equal(t, "reward", 0.99, o.RewardFor(m), 1e-9)
}

func TestHillClimb_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("mask stays within budget and best reward never decreases", prop.ForAll(
		func(maxRepeaters, iterations int, seed int64) bool {
			g := sim.NewGraph()
			for id := sim.NodeID(0); id < 5; id++ {
				_ = g.AddNode(sim.Node{ID: id, QuantumCapable: id%2 == 0})
			}
			for id := sim.NodeID(0); id < 4; id++ {
				_ = g.AddEdge(sim.Edge{U: id, V: id + 1, DistanceKm: 10})
			}
			cfg := sim.RepeaterConfig{MaxRepeaters: maxRepeaters, CostPerRepeater: 0.01, Iterations: iterations, Trials: 5}
			link := sim.NewLinkModel(sim.DefaultLinkConfig(), rand.New(rand.NewSource(seed)))
			o := NewOptimizer(g, 0, 4, cfg, link, rand.New(rand.NewSource(seed+1)))

			res := o.HillClimb()
			if res.Mask.Size() > maxRepeaters || len(res.BestRewardTrace) != iterations {
				return false
			}
			for i := 1; i < len(res.BestRewardTrace); i++ {
				if res.BestRewardTrace[i] < res.BestRewardTrace[i-1] {
					return false
				}
			}
			return len(res.BestRewardTrace) == 0 || res.BestRewardTrace[len(res.BestRewardTrace)-1] == res.Reward
		},
		gen.IntRange(0, 3),
		gen.IntRange(0, 40),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
