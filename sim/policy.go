package sim

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// PathFunc is the contract an external policy provider must satisfy:
// given a graph and endpoints, return a path or nil when unreachable.
// Returned errors are treated as "no path".
type PathFunc func(g *Graph, src, dst NodeID) (Path, error)

// PolicyKind enumerates the closed set of policy variants.
type PolicyKind int

const (
	// PolicyQuantumOnly: cheapest path over quantum links, cost -log(survival).
	PolicyQuantumOnly PolicyKind = iota
	// PolicyClassicalLatency: cheapest path over all links, cost distance*latency-per-km.
	PolicyClassicalLatency
	// PolicyHybrid: greedy first-quantum-hop walk, classical tail when no quantum route remains.
	PolicyHybrid
	// PolicyCustom wraps a PathFunc registered at runtime.
	PolicyCustom
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyQuantumOnly:
		return "quantum_only"
	case PolicyClassicalLatency:
		return "classical_latency"
	case PolicyHybrid:
		return "hybrid"
	case PolicyCustom:
		return "custom"
	default:
		return fmt.Sprintf("PolicyKind(%d)", int(k))
	}
}

// Built-in policy names.
const (
	PolicyNameQuantumOnly      = "quantum_only"
	PolicyNameClassicalLatency = "classical_latency"
	PolicyNameHybrid           = "hybrid"
)

// builtinPolicies maps built-in names to their variants.
var builtinPolicies = map[string]PolicyKind{
	PolicyNameQuantumOnly:      PolicyQuantumOnly,
	PolicyNameClassicalLatency: PolicyClassicalLatency,
	PolicyNameHybrid:           PolicyHybrid,
}

// IsBuiltinPolicy returns true if name is one of the built-in policies.
func IsBuiltinPolicy(name string) bool {
	_, ok := builtinPolicies[name]
	return ok
}

// Policy is a resolved routing policy. fn is set only for PolicyCustom.
type Policy struct {
	Kind PolicyKind
	Name string
	fn   PathFunc
}

// ErrPolicyExists is returned when registering a name already in use.
var ErrPolicyExists = errors.New("policy already registered")

// PolicyRegistry resolves policy names. Built-in policies are always present;
// custom policies are validated once at registration and trusted afterwards.
type PolicyRegistry struct {
	custom map[string]Policy
}

// NewPolicyRegistry returns a registry holding only the built-in policies.
func NewPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{custom: make(map[string]Policy)}
}

// Register validates fn and adds it under name.
//
// Validation runs fn once on a two-node quantum graph (0–1, 10 km): it must
// not panic or return an error, and any non-empty path it returns must be a
// valid 0→1 path.
func (r *PolicyRegistry) Register(name string, fn PathFunc) error {
	if name == "" {
		return errors.New("policy name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("policy %q: nil path function", name)
	}
	if IsBuiltinPolicy(name) {
		return fmt.Errorf("policy %q: %w (built-in)", name, ErrPolicyExists)
	}
	if _, ok := r.custom[name]; ok {
		return fmt.Errorf("policy %q: %w", name, ErrPolicyExists)
	}
	if err := selfTest(fn); err != nil {
		return fmt.Errorf("policy %q failed self-test: %w", name, err)
	}
	r.custom[name] = Policy{Kind: PolicyCustom, Name: name, fn: fn}
	return nil
}

// Lookup resolves name to a policy.
func (r *PolicyRegistry) Lookup(name string) (Policy, bool) {
	if kind, ok := builtinPolicies[name]; ok {
		return Policy{Kind: kind, Name: name}, true
	}
	p, ok := r.custom[name]
	return p, ok
}

// Names returns all resolvable policy names, built-ins first, each group sorted.
func (r *PolicyRegistry) Names() []string {
	names := make([]string, 0, len(builtinPolicies)+len(r.custom))
	for n := range builtinPolicies {
		names = append(names, n)
	}
	sort.Strings(names)
	custom := make([]string, 0, len(r.custom))
	for n := range r.custom {
		custom = append(custom, n)
	}
	sort.Strings(custom)
	return append(names, custom...)
}

// callCustom invokes a custom policy, converting panics and errors into "no path".
func callCustom(fn PathFunc, g *Graph, src, dst NodeID) (path Path, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			path, err = nil, fmt.Errorf("policy panicked: %v", rec)
		}
	}()
	return fn(g, src, dst)
}

// checkEndpoints verifies that path runs from src to dst over edges of g.
func checkEndpoints(g *Graph, path Path, src, dst NodeID) error {
	if err := path.Validate(g); err != nil {
		return err
	}
	if path[0] != src || path[len(path)-1] != dst {
		return fmt.Errorf("path %v does not connect %d to %d", []NodeID(path), src, dst)
	}
	return nil
}

func selfTest(fn PathFunc) error {
	g := NewGraph()
	_ = g.AddNode(Node{ID: 0, QuantumCapable: true, CanStoreEntanglement: true})
	_ = g.AddNode(Node{ID: 1, QuantumCapable: true, CanStoreEntanglement: true})
	_ = g.AddEdge(Edge{U: 0, V: 1, DistanceKm: 10, QuantumLink: true})

	path, err := callCustom(fn, g, 0, 1)
	if err != nil {
		return err
	}
	if len(path) == 0 {
		return nil
	}
	if err := checkEndpoints(g, path, 0, 1); err != nil {
		return err
	}
	if !slices.Equal(path, Path{0, 1}) {
		return fmt.Errorf("unexpected path %v on single-edge graph", []NodeID(path))
	}
	return nil
}
