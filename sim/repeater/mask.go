package repeater

import (
	"fmt"
	"strings"

	"github.com/quasarfabric/hybridnet-sim/sim"
)

// Mask is a binary vector over the nodes of a graph, in ascending node-ID
// order: position i is set when node NodeAt(i) hosts a repeater.
type Mask struct {
	nodes []sim.NodeID
	on    []bool
}

// NewMask returns an empty mask over nodes.
func NewMask(nodes []sim.NodeID) Mask {
	return Mask{nodes: nodes, on: make([]bool, len(nodes))}
}

// Len returns the number of positions.
func (m Mask) Len() int { return len(m.on) }

// Size returns the number of repeaters placed.
func (m Mask) Size() int {
	n := 0
	for _, b := range m.on {
		if b {
			n++
		}
	}
	return n
}

// NodeAt returns the node ID of position i.
func (m Mask) NodeAt(i int) sim.NodeID { return m.nodes[i] }

// IsSet reports whether position i holds a repeater.
func (m Mask) IsSet(i int) bool { return m.on[i] }

// Repeaters returns the IDs of repeater nodes in ascending order.
func (m Mask) Repeaters() []sim.NodeID {
	var out []sim.NodeID
	for i, b := range m.on {
		if b {
			out = append(out, m.nodes[i])
		}
	}
	return out
}

// Clone returns an independent copy. The node list is shared read-only.
func (m Mask) Clone() Mask {
	on := make([]bool, len(m.on))
	copy(on, m.on)
	return Mask{nodes: m.nodes, on: on}
}

// flip toggles position i in place.
func (m Mask) flip(i int) { m.on[i] = !m.on[i] }

// String renders the mask as a bit string, e.g. "0100".
func (m Mask) String() string {
	var b strings.Builder
	for _, on := range m.on {
		if on {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func (m Mask) checkIndex(i int) {
	if i < 0 || i >= len(m.on) {
		panic(fmt.Sprintf("repeater mask index %d out of range [0,%d)", i, len(m.on)))
	}
}
