package hashlife

import (
	"cmp"
	"math/rand"
	"slices"

	"uk.ac.bris.cs/hashlife/util"
)

// Sparse brute-force simulator used as an oracle. It keeps a surrounding
// count per cell and applies the rule to every live cell and every cell with a
// live neighbour.
type reference struct {
	rule  Rule
	alive map[util.Cell]bool
}

func newReference(rule Rule, cells []util.Cell) *reference {
	ref := &reference{rule: rule, alive: make(map[util.Cell]bool)}
	for _, cell := range cells {
		ref.alive[cell] = true
	}
	return ref
}

// Get positions of eight surrounding cells
func getSurrounding(cell util.Cell) [8]util.Cell {
	return [8]util.Cell{
		{X: cell.X - 1, Y: cell.Y - 1},
		{X: cell.X, Y: cell.Y - 1},
		{X: cell.X + 1, Y: cell.Y - 1},
		{X: cell.X - 1, Y: cell.Y},
		{X: cell.X + 1, Y: cell.Y},
		{X: cell.X - 1, Y: cell.Y + 1},
		{X: cell.X, Y: cell.Y + 1},
		{X: cell.X + 1, Y: cell.Y + 1},
	}
}

func (ref *reference) step(turns int) {
	for ; turns != 0; turns-- {
		surrounding_counts := make(map[util.Cell]int)
		for cell := range ref.alive {
			// Isolated live cells still get evaluated
			surrounding_counts[cell] += 0
			for _, surrounding := range getSurrounding(cell) {
				surrounding_counts[surrounding]++
			}
		}
		next := make(map[util.Cell]bool)
		for cell, count := range surrounding_counts {
			if ref.rule.Next(ref.alive[cell], count) {
				next[cell] = true
			}
		}
		ref.alive = next
	}
}

func (ref *reference) cells() []util.Cell {
	cells := make([]util.Cell, 0, len(ref.alive))
	for cell := range ref.alive {
		cells = append(cells, cell)
	}
	sortCells(cells)
	return cells
}

func sortCells(cells []util.Cell) {
	slices.SortFunc(cells, func(a, b util.Cell) int {
		if a.Y != b.Y {
			return cmp.Compare(a.Y, b.Y)
		}
		return cmp.Compare(a.X, b.X)
	})
}

// Random soup of the given side centred on the origin
func soup(seed int64, side int, density float64) []util.Cell {
	rng := rand.New(rand.NewSource(seed))
	var cells []util.Cell
	for y := 0; y != side; y++ {
		for x := 0; x != side; x++ {
			if rng.Float64() < density {
				cells = append(cells, util.Cell{X: x - side/2, Y: y - side/2})
			}
		}
	}
	return cells
}

func translate(cells []util.Cell, dx, dy int) []util.Cell {
	moved := make([]util.Cell, len(cells))
	for i, cell := range cells {
		moved[i] = cell.Add(util.Cell{X: dx, Y: dy})
	}
	sortCells(moved)
	return moved
}

func load(u *Universe, cells []util.Cell) {
	for _, cell := range cells {
		u.Set(cell.X, cell.Y, true)
	}
}

// Descend to the node of the given level containing (x, y)
func nodeAt(u *Universe, x, y int, level uint) *Node {
	ox, oy, ok := u.offset(x, y)
	if !ok {
		return nil
	}
	n := u.root
	for n.level > level {
		half := uint64(1) << (n.level - 1)
		switch {
		case ox < half && oy < half:
			n = n.nw
		case oy < half:
			n, ox = n.ne, ox-half
		case ox < half:
			n, oy = n.sw, oy-half
		default:
			n, ox, oy = n.se, ox-half, oy-half
		}
	}
	return n
}
