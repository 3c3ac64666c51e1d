package hashlife

import (
	"golang.org/x/sync/errgroup"
)

// Smallest node holding a full neighbourhood for its centre
const baseLevel = 2

// Advance a 4x4 node by one generation, returning its 2x2 centre
func (t *Table) baseCase(n *Node) *Node {
	var grid [4][4]bool
	for y := 0; y != 4; y++ {
		for x := 0; x != 4; x++ {
			grid[y][x] = n.cell(uint64(x), uint64(y))
		}
	}
	var next [2][2]*Node
	for y := 0; y != 2; y++ {
		for x := 0; x != 2; x++ {
			count := 0
			for dy := 0; dy != 3; dy++ {
				for dx := 0; dx != 3; dx++ {
					if (dx != 1 || dy != 1) && grid[y+dy][x+dx] {
						count++
					}
				}
			}
			next[y][x] = Leaf(t.rule.Next(grid[y+1][x+1], count))
		}
	}
	return t.Join(next[0][0], next[0][1], next[1][0], next[1][1])
}

// Get the node one level down covering the exact centre of n
func (t *Table) centre(n *Node) *Node {
	return t.Join(n.nw.se, n.ne.sw, n.sw.ne, n.se.nw)
}

// Nine half-size squares tiling n with 50% overlap, row-major from north-west
func (t *Table) subsquares(n *Node) [3][3]*Node {
	g := n.grandchildren()
	var squares [3][3]*Node
	for r := 0; r != 3; r++ {
		for c := 0; c != 3; c++ {
			squares[r][c] = t.Join(g[r][c], g[r][c+1], g[r+1][c], g[r+1][c+1])
		}
	}
	return squares
}

// Combine a 3x3 grid of adjacent nodes into four overlapping quadrants
func (t *Table) quadrants(grid [3][3]*Node) [2][2]*Node {
	var quads [2][2]*Node
	for r := 0; r != 2; r++ {
		for c := 0; c != 2; c++ {
			quads[r][c] = t.Join(grid[r][c], grid[r][c+1], grid[r+1][c], grid[r+1][c+1])
		}
	}
	return quads
}

// advance moves the whole region of n forward by 2^(level-2) generations and
// returns its centre, one level down. Results are memoized on the node.
func (t *Table) advance(n *Node) *Node {
	if result := n.result.Load(); result != nil {
		memoHits.Inc()
		return result
	}
	if n.level < baseLevel {
		panic("hashlife: advance below base level")
	}
	memoMisses.Inc()

	var result *Node
	if n.level == baseLevel {
		result = t.baseCase(n)
	} else {
		// Each of the nine moves 2^(level-3) generations, then each quadrant
		// built from them moves another 2^(level-3)
		squares := t.subsquares(n)
		var moved [3][3]*Node
		for r := 0; r != 3; r++ {
			for c := 0; c != 3; c++ {
				moved[r][c] = t.advance(squares[r][c])
			}
		}
		quads := t.quadrants(moved)
		result = t.Join(
			t.advance(quads[0][0]), t.advance(quads[0][1]),
			t.advance(quads[1][0]), t.advance(quads[1][1]),
		)
	}
	n.result.Store(result)
	return result
}

// advanceStep moves the region of n forward by 2^exp generations, where exp
// is at most level-2, and returns its centre one level down.
func (t *Table) advanceStep(n *Node, exp uint) *Node {
	if n.level < baseLevel || exp > n.level-baseLevel {
		panic("hashlife: step exponent too large for node")
	}
	if exp == n.level-baseLevel {
		return t.advance(n)
	}
	if result := t.cachedStep(n, exp); result != nil {
		memoHits.Inc()
		return result
	}
	memoMisses.Inc()

	squares := t.subsquares(n)
	var moved [3][3]*Node
	for r := 0; r != 3; r++ {
		for c := 0; c != 3; c++ {
			moved[r][c] = t.advanceStep(squares[r][c], exp)
		}
	}
	quads := t.quadrants(moved)
	result := t.Join(
		t.centre(quads[0][0]), t.centre(quads[0][1]),
		t.centre(quads[1][0]), t.centre(quads[1][1]),
	)
	t.storeStep(n, exp, result)
	return result
}

// advanceParallel computes the same node as advanceStep, spreading the nine
// sub-squares (and in full-quantum mode the four quadrants) of n over up to
// threads goroutines. Below that split everything runs serially.
func (t *Table) advanceParallel(n *Node, exp uint, threads int) *Node {
	if threads < 2 || n.level <= baseLevel {
		return t.advanceStep(n, exp)
	}
	full := exp == n.level-baseLevel
	if full {
		if result := n.result.Load(); result != nil {
			memoHits.Inc()
			return result
		}
	} else if result := t.cachedStep(n, exp); result != nil {
		memoHits.Inc()
		return result
	}
	memoMisses.Inc()

	// Results are canonical, so workers racing on shared sub-nodes at worst
	// compute and store the same pointer twice
	squares := t.subsquares(n)
	var moved [3][3]*Node
	var group errgroup.Group
	group.SetLimit(threads)
	for r := 0; r != 3; r++ {
		for c := 0; c != 3; c++ {
			group.Go(func() error {
				moved[r][c] = t.advanceStep(squares[r][c], min(exp, n.level-1-baseLevel))
				return nil
			})
		}
	}
	_ = group.Wait()

	quads := t.quadrants(moved)
	var result *Node
	if full {
		var out [2][2]*Node
		for r := 0; r != 2; r++ {
			for c := 0; c != 2; c++ {
				group.Go(func() error {
					out[r][c] = t.advance(quads[r][c])
					return nil
				})
			}
		}
		_ = group.Wait()
		result = t.Join(out[0][0], out[0][1], out[1][0], out[1][1])
		n.result.Store(result)
	} else {
		result = t.Join(
			t.centre(quads[0][0]), t.centre(quads[0][1]),
			t.centre(quads[1][0]), t.centre(quads[1][1]),
		)
		t.storeStep(n, exp, result)
	}
	return result
}
