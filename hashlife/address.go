package hashlife

import (
	"cmp"
	"slices"

	"uk.ac.bris.cs/hashlife/util"
)

// Read the cell at offset (x, y) from the north-west corner of n
func (n *Node) cell(x, y uint64) bool {
	for n.level > 0 {
		half := uint64(1) << (n.level - 1)
		switch {
		case x < half && y < half:
			n = n.nw
		case y < half:
			n, x = n.ne, x-half
		case x < half:
			n, y = n.sw, y-half
		default:
			n, x, y = n.se, x-half, y-half
		}
	}
	return n.alive
}

// Rebuild the path to offset (x, y) of n, sharing the three untouched
// siblings at every level
func (t *Table) setCell(n *Node, x, y uint64, alive bool) *Node {
	if n.level == 0 {
		return Leaf(alive)
	}
	half := uint64(1) << (n.level - 1)
	switch {
	case x < half && y < half:
		return t.Join(t.setCell(n.nw, x, y, alive), n.ne, n.sw, n.se)
	case y < half:
		return t.Join(n.nw, t.setCell(n.ne, x-half, y, alive), n.sw, n.se)
	case x < half:
		return t.Join(n.nw, n.ne, t.setCell(n.sw, x, y-half, alive), n.se)
	default:
		return t.Join(n.nw, n.ne, n.sw, t.setCell(n.se, x-half, y-half, alive))
	}
}

// Append live cells of n, whose north-west corner sits at (x, y)
func (n *Node) collect(x, y int64, cells []util.Cell) []util.Cell {
	if n.population == 0 {
		return cells
	}
	if n.level == 0 {
		return append(cells, util.Cell{X: int(x), Y: int(y)})
	}
	half := int64(1) << (n.level - 1)
	cells = n.nw.collect(x, y, cells)
	cells = n.ne.collect(x+half, y, cells)
	cells = n.sw.collect(x, y+half, cells)
	return n.se.collect(x+half, y+half, cells)
}

// Half of the root side; the root covers [-half, half) on both axes
func (u *Universe) half() int64 {
	return int64(1) << (u.root.level - 1)
}

// Translate absolute coordinates into root offsets
func (u *Universe) offset(x, y int) (uint64, uint64, bool) {
	half := u.half()
	if int64(x) < -half || int64(x) >= half || int64(y) < -half || int64(y) >= half {
		return 0, 0, false
	}
	return uint64(int64(x) + half), uint64(int64(y) + half), true
}

// Get returns the state of cell (x, y). Cells outside the materialised
// region are dead.
func (u *Universe) Get(x, y int) bool {
	ox, oy, ok := u.offset(x, y)
	if !ok {
		return false
	}
	return u.root.cell(ox, oy)
}

// Set changes the state of cell (x, y), growing the universe until the cell
// is inside it.
func (u *Universe) Set(x, y int, alive bool) {
	ox, oy, ok := u.offset(x, y)
	for !ok {
		u.Expand()
		ox, oy, ok = u.offset(x, y)
	}
	u.root = u.table.setCell(u.root, ox, oy, alive)
}

// Cells lists every live cell ordered by row, then column
func (u *Universe) Cells() []util.Cell {
	half := u.half()
	cells := u.root.collect(-half, -half, make([]util.Cell, 0, u.root.population))
	slices.SortFunc(cells, func(a, b util.Cell) int {
		if a.Y != b.Y {
			return cmp.Compare(a.Y, b.Y)
		}
		return cmp.Compare(a.X, b.X)
	})
	return cells
}

// Bounds returns the inclusive bounding box of the live cells. ok is false
// for an empty universe.
func (u *Universe) Bounds() (lo, hi util.Cell, ok bool) {
	cells := u.Cells()
	if len(cells) == 0 {
		return util.Cell{}, util.Cell{}, false
	}
	lo, hi = cells[0], cells[len(cells)-1]
	for _, cell := range cells {
		lo.X = min(lo.X, cell.X)
		hi.X = max(hi.X, cell.X)
	}
	return lo, hi, true
}
