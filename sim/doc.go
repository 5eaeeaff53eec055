// Package sim provides the stochastic core of the hybrid quantum/classical
// network simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - graph.go: Node, Edge, Path and the read-only Graph consumed by every operation
//   - link.go: per-hop probability models (quantum survival, entanglement swap, classical loss/latency)
//   - path.go: whole-path simulators and the Monte Carlo comparison
//   - routing.go: Send and SendReliable, the hop-by-hop engine with quantum→classical fallback
//
// # Architecture
//
// The sim package owns the graph model, link/path simulation, and routing;
// independent components live in sub-packages:
//   - sim/repeater/: repeater-placement hill-climbing optimizer
//   - sim/qkd/: decoy-state BB84 session simulator
//   - sim/topology/: random hybrid topology builder and YAML topology loader
//   - sim/trace/: per-hop execution history records
//
// # Randomness
//
// No function in this package draws from a hidden global generator. Every
// stochastic operation goes through a *LinkModel (or an explicit *rand.Rand)
// obtained from a PartitionedRNG, so the same seed reproduces the same
// outcome sequence.
//
// # Key Types
//   - LinkModel: owns the tunables and the random source for hop draws
//   - Policy / PolicyRegistry: closed set of built-in routing policies plus validated custom policies
//   - Router: resolves a policy into a path and executes it
//   - RunMetrics: optional Prometheus counters fed by the router and the CLI
package sim
