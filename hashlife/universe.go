// Package hashlife simulates two-state outer-totalistic cellular automata on
// an unbounded plane with Gosper's Hashlife algorithm.
//
// The plane is a quadtree of canonical nodes: a Table hands out exactly one
// node per distinct (level, children) combination, so identical regions
// anywhere in space or time share one node and one memoized future. A
// Universe owns a root node centred on the origin and replaces it wholesale
// on every mutation.
//
// A Universe is not safe for concurrent use. WithThreads only parallelises
// the work inside a single Step.
package hashlife

import "errors"

const (
	// MinLevel is the level of an empty universe's root
	MinLevel = 3

	// MaxStep selects the full quantum: each Step advances the padded root by
	// a quarter of its side length
	MaxStep = -1

	// Largest root level whose coordinates fit in an int64 offset
	maxLevel = 62

	// MaxStepExponent is the largest fixed step: its padded root must still
	// leave room for the expansion made by Step
	MaxStepExponent = maxLevel - 1 - baseLevel
)

// ErrUniverseFull means the next Step would need a root larger than the
// addressable plane
var ErrUniverseFull = errors.New("hashlife: universe exceeds addressable size")

// Universe is a mutable view over an immutable node tree
type Universe struct {
	table      *Table
	root       *Node
	generation uint64
	threads    int
	step_exp   int
}

type options struct {
	rule     Rule
	table    *Table
	threads  int
	step_exp int
}

type Option func(*options)

// WithRule evolves the universe under rule instead of Conway
func WithRule(rule Rule) Option {
	return func(o *options) { o.rule = rule }
}

// WithTable shares an existing canonical table. The table's rule takes
// precedence over WithRule.
func WithTable(table *Table) Option {
	return func(o *options) { o.table = table }
}

// WithThreads spreads each step over up to n goroutines
func WithThreads(n int) Option {
	return func(o *options) { o.threads = n }
}

// WithStepExponent makes each Step advance exactly 2^exp generations.
// MaxStep restores the full quantum.
func WithStepExponent(exp int) Option {
	return func(o *options) { o.step_exp = exp }
}

// New creates an empty universe
func New(opts ...Option) *Universe {
	o := options{rule: Conway, threads: 1, step_exp: MaxStep}
	for _, opt := range opts {
		opt(&o)
	}
	if o.table == nil {
		o.table = NewTable(o.rule)
	}
	u := &Universe{
		table:   o.table,
		threads: max(o.threads, 1),
	}
	u.SetStepExponent(o.step_exp)
	u.root = u.table.Empty(MinLevel)
	return u
}

func (u *Universe) Root() *Node        { return u.root }
func (u *Universe) Table() *Table      { return u.table }
func (u *Universe) Rule() Rule         { return u.table.rule }
func (u *Universe) Level() uint        { return u.root.level }
func (u *Universe) Generation() uint64 { return u.generation }

// Population is the number of live cells, read straight from the root
func (u *Universe) Population() uint64 { return u.root.population }

func (u *Universe) StepExponent() int { return u.step_exp }

// SetStepExponent changes how far the following steps advance. Negative
// values select the full quantum and values above MaxStepExponent are lowered
// to it.
func (u *Universe) SetStepExponent(exp int) {
	if exp < 0 {
		exp = MaxStep
	}
	exp = min(exp, MaxStepExponent)
	u.step_exp = exp
}

// Expand doubles the side of the universe. Every old quadrant moves to the
// inner corner of the matching new quadrant, so the origin stays put and every
// coordinate keeps its state.
func (u *Universe) Expand() {
	if u.root.level >= maxLevel {
		panic("hashlife: universe exceeds addressable size")
	}
	t, root := u.table, u.root
	empty := t.Empty(root.level - 1)
	u.root = t.Join(
		t.Join(empty, empty, empty, root.nw),
		t.Join(empty, empty, root.ne, empty),
		t.Join(empty, root.sw, empty, empty),
		t.Join(root.se, empty, empty, empty),
	)
}

// Check that every live cell lies in the centre sixteenth of the root
func (u *Universe) padded() bool {
	root := u.root
	inner := root.nw.se.se.population + root.ne.sw.sw.population +
		root.sw.ne.ne.population + root.se.nw.nw.population
	return inner == root.population
}

// Pad grows the root until it is ready for the next Step. Only the amount of
// empty space around the pattern changes. It returns ErrUniverseFull, with the
// root grown as far as Step allows, once the pattern has spread too far.
func (u *Universe) Pad() error {
	for u.root.level < MinLevel || !u.padded() ||
		(u.step_exp != MaxStep && u.root.level < uint(u.step_exp)+baseLevel) {
		if u.root.level >= maxLevel-1 {
			return ErrUniverseFull
		}
		u.Expand()
	}
	return nil
}

// Quantum pads the universe and returns how many generations the next Step
// will advance
func (u *Universe) Quantum() (uint64, error) {
	if err := u.Pad(); err != nil {
		return 0, err
	}
	if u.step_exp != MaxStep {
		return uint64(1) << u.step_exp, nil
	}
	return uint64(1) << (u.root.level + 1 - baseLevel), nil
}

// Step advances the universe and returns the number of generations it moved:
// 2^exp with a fixed step exponent, a quarter of the padded root's side
// otherwise.
//
// Before advancing, the root grows until every live cell sits in the central
// square of a quarter of its side, then once more. Advance keeps the centre
// half of that root, so the pattern may spread by up to three quarters of the
// generations advanced before anything is cut off. Rules without births on
// fewer than three neighbours grow at c/2 in the long run, with short bursts
// bounded by the pattern's own width.
//
// Step panics with ErrUniverseFull when Pad fails. Drivers that may run that
// far check Quantum first.
func (u *Universe) Step() uint64 {
	if err := u.Pad(); err != nil {
		panic(err)
	}
	u.Expand()

	exp := u.root.level - baseLevel
	if u.step_exp != MaxStep {
		exp = uint(u.step_exp)
	}
	if u.threads > 1 {
		u.root = u.table.advanceParallel(u.root, exp, u.threads)
	} else {
		u.root = u.table.advanceStep(u.root, exp)
	}

	advanced := uint64(1) << exp
	u.generation += advanced
	generationsAdvanced.Add(float64(advanced))
	rootLevel.Set(float64(u.root.level))
	return advanced
}

// Advance moves the universe forward by exactly the given number of
// generations, one power-of-two step per set bit. Bits above MaxStepExponent
// are split into several steps of the largest size. The step exponent is left
// unchanged.
func (u *Universe) Advance(generations uint64) uint64 {
	saved := u.step_exp
	defer func() { u.step_exp = saved }()

	var advanced uint64
	for exp := 63; exp >= 0; exp-- {
		if generations&(uint64(1)<<exp) == 0 {
			continue
		}
		u.step_exp = min(exp, MaxStepExponent)
		for i := 0; i != 1<<(exp-u.step_exp); i++ {
			advanced += u.Step()
		}
	}
	return advanced
}

// Clear empties the universe and resets the generation counter. Interned
// nodes and memoized results stay in the table.
func (u *Universe) Clear() {
	u.root = u.table.Empty(MinLevel)
	u.generation = 0
}

// Purge clears the universe and replaces its table with a fresh one, dropping
// all sharing built so far
func (u *Universe) Purge() {
	u.table = NewTable(u.table.rule)
	u.Clear()
}
