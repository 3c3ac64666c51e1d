package hashlife

import (
	"sync/atomic"
)

// Node is a square region of 2^level cells. Nodes are immutable once interned,
// and two nodes with the same level and children are always the same pointer.
type Node struct {
	level      uint
	alive      bool
	population uint64
	id         uint64

	nw, ne, sw, se *Node

	result atomic.Pointer[Node] // Node advanced by 2^(level-2) generations
}

var nextID atomic.Uint64

// Leaf singletons
var (
	Dead = &Node{id: nextID.Add(1)}
	Live = &Node{id: nextID.Add(1), alive: true, population: 1}
)

// Leaf returns the level 0 node for the given state
func Leaf(alive bool) *Node {
	if alive {
		return Live
	}
	return Dead
}

func (n *Node) Level() uint { return n.level }

// Alive reports the state of a level 0 node. It is false for every other level.
func (n *Node) Alive() bool { return n.alive }

// Population is the number of live cells in the region
func (n *Node) Population() uint64 { return n.population }

// Quadrants of an interior node, nil for leaves. Nodes are shared by every
// region with the same content, so children are only reachable read-only.
func (n *Node) NW() *Node { return n.nw }
func (n *Node) NE() *Node { return n.ne }
func (n *Node) SW() *Node { return n.sw }
func (n *Node) SE() *Node { return n.se }

// Size is the side length of the region
func (n *Node) Size() int64 { return int64(1) << n.level }

// Empty reports whether the region has no live cell
func (n *Node) Empty() bool { return n.population == 0 }

// Memoized returns the cached full-quantum result, if any
func (n *Node) Memoized() *Node { return n.result.Load() }

// Get the 4x4 grid of grandchildren, row-major from north-west
func (n *Node) grandchildren() [4][4]*Node {
	return [4][4]*Node{
		{n.nw.nw, n.nw.ne, n.ne.nw, n.ne.ne},
		{n.nw.sw, n.nw.se, n.ne.sw, n.ne.se},
		{n.sw.nw, n.sw.ne, n.se.nw, n.se.ne},
		{n.sw.sw, n.sw.se, n.se.sw, n.se.se},
	}
}
