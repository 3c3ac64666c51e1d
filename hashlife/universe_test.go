package hashlife

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uk.ac.bris.cs/hashlife/util"
)

var (
	glider  = []util.Cell{{X: 1, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}}
	blinker = []util.Cell{{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}}
	tromino = []util.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	block   = []util.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
)

func TestNewUniverse(t *testing.T) {
	u := New()
	assert.Equal(t, uint(MinLevel), u.Level())
	assert.Equal(t, uint64(0), u.Population())
	assert.Equal(t, uint64(0), u.Generation())
	assert.Equal(t, Conway, u.Rule())
	assert.Equal(t, MaxStep, u.StepExponent())
	assert.Empty(t, u.Cells())
}

func TestSetGet(t *testing.T) {
	u := New()
	u.Set(0, 0, true)
	assert.True(t, u.Get(0, 0))
	assert.Equal(t, uint64(1), u.Population())

	u.Set(-4, 3, true)
	assert.True(t, u.Get(-4, 3))
	assert.True(t, u.Get(0, 0))
	assert.False(t, u.Get(1, 0))
	assert.Equal(t, uint64(2), u.Population())

	u.Set(0, 0, false)
	assert.False(t, u.Get(0, 0))
	assert.True(t, u.Get(-4, 3))
	assert.Equal(t, uint64(1), u.Population())
	checkTree(t, u.Root())
}

func TestGetOutOfBoundsIsDead(t *testing.T) {
	u := New()
	level := u.Level()
	assert.False(t, u.Get(1<<40, 0))
	assert.False(t, u.Get(0, -(1 << 40)))
	assert.Equal(t, level, u.Level(), "reads must not grow the universe")
}

func TestSetOutOfBoundsGrows(t *testing.T) {
	u := New()
	u.Set(1, 1, true)
	u.Set(1000, -2000, true)
	assert.GreaterOrEqual(t, u.Level(), uint(12))
	assert.True(t, u.Get(1000, -2000))
	assert.True(t, u.Get(1, 1))
	assert.Equal(t, uint64(2), u.Population())
	assert.Equal(t, []util.Cell{{X: 1000, Y: -2000}, {X: 1, Y: 1}}, u.Cells())
	checkTree(t, u.Root())
}

func TestSetSharesUntouchedSubtrees(t *testing.T) {
	u := New()
	load(u, soup(1, 8, 0.5))
	before := u.Root()
	size := u.Table().Size()

	u.Set(-3, -3, !u.Get(-3, -3))
	after := u.Root()

	// Only the north-west path is rebuilt
	assert.NotSame(t, before.nw, after.nw)
	assert.Same(t, before.ne, after.ne)
	assert.Same(t, before.sw, after.sw)
	assert.Same(t, before.se, after.se)
	assert.Same(t, before.nw.ne, after.nw.ne)
	assert.Same(t, before.nw.sw, after.nw.sw)
	assert.Same(t, before.nw.se, after.nw.se)
	assert.LessOrEqual(t, u.Table().Size()-size, int(u.Level()))
}

func TestExpandPreservesCells(t *testing.T) {
	u := New()
	cells := soup(2, 8, 0.4)
	load(u, cells)
	level := u.Level()

	u.Expand()
	assert.Equal(t, level+1, u.Level())
	for y := -4; y != 4; y++ {
		for x := -4; x != 4; x++ {
			assert.Equal(t, slicesContains(cells, util.Cell{X: x, Y: y}), u.Get(x, y), "cell (%d, %d)", x, y)
		}
	}
	assert.Equal(t, uint64(len(cells)), u.Population())

	// Repeated growth does not drift
	for i := 0; i != 5; i++ {
		u.Expand()
	}
	if diff := cmp.Diff(translate(cells, 0, 0), u.Cells()); diff != "" {
		t.Errorf("cells after expansions (-want +got):\n%s", diff)
	}
	checkTree(t, u.Root())
}

func TestStepEmpty(t *testing.T) {
	u := New()
	advanced := u.Step()
	assert.Equal(t, uint64(0), u.Population())
	assert.Greater(t, advanced, uint64(0))
	assert.Equal(t, advanced, u.Generation())

	u.SetStepExponent(0)
	u.Step()
	assert.Equal(t, advanced+1, u.Generation())
	assert.Equal(t, uint64(0), u.Population())
}

func TestTromino(t *testing.T) {
	u := New(WithStepExponent(0))
	load(u, tromino)
	assert.Equal(t, uint64(1), u.Step())
	assert.Equal(t, block, u.Cells())

	// Block is still life, so the full quantum lands on it as well
	full := New()
	load(full, tromino)
	full.Step()
	assert.Equal(t, block, full.Cells())
	assert.Equal(t, uint64(4), full.Population())
}

func TestBlinker(t *testing.T) {
	u := New(WithStepExponent(0))
	load(u, blinker)

	u.Step()
	assert.Equal(t, []util.Cell{{X: 0, Y: -1}, {X: 0, Y: 0}, {X: 0, Y: 1}}, u.Cells())
	u.Step()
	assert.Equal(t, blinker, u.Cells())

	full := New()
	load(full, blinker)
	advanced := full.Step()
	require.Zero(t, advanced%2)
	assert.Equal(t, blinker, full.Cells())
}

func TestGlider(t *testing.T) {
	u := New(WithStepExponent(2))
	load(u, glider)
	quantum, err := u.Quantum()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), quantum)
	assert.Equal(t, uint64(4), u.Step())
	assert.Equal(t, translate(glider, 1, 1), u.Cells())

	// The full quantum moves a quarter of the padded root
	full := New()
	load(full, glider)
	quantum, err = full.Quantum()
	require.NoError(t, err)
	assert.Equal(t, uint64(16), quantum)
	advanced := full.Step()
	assert.Equal(t, uint64(16), advanced)
	assert.Equal(t, translate(glider, 4, 4), full.Cells())
	advanced += full.Step()
	assert.Equal(t, translate(glider, int(advanced/4), int(advanced/4)), full.Cells())
	assert.Equal(t, advanced, full.Generation())
}

func TestAdvanceExact(t *testing.T) {
	u := New()
	cells := soup(3, 12, 0.35)
	load(u, cells)
	ref := newReference(Conway, cells)

	assert.Equal(t, uint64(13), u.Advance(13))
	ref.step(13)
	assert.Equal(t, uint64(13), u.Generation())
	assert.Equal(t, MaxStep, u.StepExponent())
	if diff := cmp.Diff(ref.cells(), u.Cells()); diff != "" {
		t.Errorf("after 13 generations (-reference +hashlife):\n%s", diff)
	}
}

func TestIsolatedCellSurvivesUnderS0(t *testing.T) {
	rule, err := ParseRule("B3/S0123")
	require.NoError(t, err)
	cells := []util.Cell{{X: -6, Y: 2}, {X: 5, Y: 5}}

	u := New(WithRule(rule), WithStepExponent(0))
	load(u, cells)
	ref := newReference(rule, cells)
	u.Step()
	ref.step(1)
	assert.Equal(t, cells, ref.cells())
	assert.Equal(t, cells, u.Cells())
}

func TestMatchesReference(t *testing.T) {
	rules := map[string]Rule{"conway": Conway}
	for _, s := range []string{"B36/S23", "B3678/S34678", "B3/S012345678"} {
		rule, err := ParseRule(s)
		require.NoError(t, err)
		rules[s] = rule
	}
	for name, rule := range rules {
		t.Run(name, func(t *testing.T) {
			for seed := int64(10); seed != 14; seed++ {
				cells := soup(seed, 16, 0.4)

				single := New(WithRule(rule), WithStepExponent(0))
				load(single, cells)
				ref := newReference(rule, cells)
				for turn := 1; turn <= 20; turn++ {
					single.Step()
					ref.step(1)
					require.Empty(t, cmp.Diff(ref.cells(), single.Cells()), "seed %d turn %d", seed, turn)
					require.Equal(t, uint64(len(ref.alive)), single.Population())
				}

				full := New(WithRule(rule))
				load(full, cells)
				ref = newReference(rule, cells)
				for i := 0; i != 3; i++ {
					ref.step(int(full.Step()))
					require.Empty(t, cmp.Diff(ref.cells(), full.Cells()), "seed %d generation %d", seed, full.Generation())
				}
				checkTree(t, full.Root())
			}
		})
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	cells := soup(20, 32, 0.3)
	serial := New()
	load(serial, cells)
	parallel := New(WithTable(serial.Table()), WithThreads(4))
	load(parallel, cells)
	require.Same(t, serial.Root(), parallel.Root())

	for i := 0; i != 3; i++ {
		assert.Equal(t, serial.Step(), parallel.Step())
		assert.Same(t, serial.Root(), parallel.Root())
	}

	serial.SetStepExponent(1)
	parallel.SetStepExponent(1)
	serial.Step()
	parallel.Step()
	assert.Same(t, serial.Root(), parallel.Root())
	assert.Equal(t, serial.Generation(), parallel.Generation())
}

func TestIdenticalPatternsShareNodes(t *testing.T) {
	u := New()
	load(u, translate(glider, 8, 8))
	load(u, translate(glider, -24, 40))

	for level := uint(0); level <= 3; level++ {
		a := nodeAt(u, 8, 8, level)
		b := nodeAt(u, -24, 40, level)
		require.NotNil(t, a)
		require.Same(t, a, b, "level %d", level)
	}
	assert.Equal(t, uint64(5), nodeAt(u, 8, 8, 3).Population())
}

func TestMemoIsReused(t *testing.T) {
	u := New(WithStepExponent(0))
	load(u, blinker)
	u.Step()
	u.Step()
	first := u.Root()
	size := u.Table().Size()

	// Same configuration, same level: every lookup is answered from the table
	u.Step()
	u.Step()
	assert.Same(t, first, u.Root())
	assert.Equal(t, size, u.Table().Size())
}

func TestStepExponentIsCapped(t *testing.T) {
	u := New(WithStepExponent(100))
	assert.Equal(t, MaxStepExponent, u.StepExponent())
	u.SetStepExponent(MaxStepExponent + 1)
	assert.Equal(t, MaxStepExponent, u.StepExponent())
}

func TestAdvanceBeyondLargestStep(t *testing.T) {
	u := New()
	load(u, block)
	generations := uint64(1)<<63 | 1<<MaxStepExponent | 5

	assert.Equal(t, generations, u.Advance(generations))
	assert.Equal(t, generations, u.Generation())
	assert.Equal(t, block, u.Cells())
	assert.Equal(t, MaxStep, u.StepExponent())
}

func TestPadStopsAtAddressableLimit(t *testing.T) {
	u := New()
	u.Set(-(1 << 61), 0, true)
	require.Equal(t, uint(maxLevel), u.Level())

	assert.ErrorIs(t, u.Pad(), ErrUniverseFull)
	_, err := u.Quantum()
	assert.ErrorIs(t, err, ErrUniverseFull)
	assert.PanicsWithError(t, ErrUniverseFull.Error(), func() { u.Step() })
	assert.Equal(t, uint64(0), u.Generation())

	// A glider at full quantum reaches the limit within a few dozen steps
	full := New()
	load(full, glider)
	steps := 0
	for full.Pad() == nil {
		full.Step()
		steps++
		require.Less(t, steps, 64)
	}
	assert.LessOrEqual(t, full.Level(), uint(maxLevel))
	assert.Equal(t, uint64(5), full.Population())
}

func TestClearAndPurge(t *testing.T) {
	u := New()
	load(u, glider)
	u.Step()
	table := u.Table()

	u.Clear()
	assert.Equal(t, uint64(0), u.Generation())
	assert.Equal(t, uint64(0), u.Population())
	assert.Equal(t, uint(MinLevel), u.Level())
	assert.Same(t, table, u.Table())

	load(u, glider)
	u.Purge()
	assert.NotSame(t, table, u.Table())
	assert.Equal(t, uint64(0), u.Population())
	assert.Equal(t, uint64(0), u.Generation())
}

func slicesContains(cells []util.Cell, want util.Cell) bool {
	for _, cell := range cells {
		if cell == want {
			return true
		}
	}
	return false
}
