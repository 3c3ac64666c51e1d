package hashlife

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 64

type nodeKey struct {
	level          uint
	nw, ne, sw, se *Node
}

type stepKey struct {
	node *Node
	exp  uint
}

type nodeShard struct {
	mu    sync.Mutex
	nodes map[nodeKey]*Node
}

type stepShard struct {
	mu      sync.Mutex
	results map[stepKey]*Node
}

// Table is the canonical node store of one rule. Every interior node reachable
// from a universe was produced by Join on the universe's table, so structural
// equality of nodes reduces to pointer equality.
//
// Memoized results depend on the rule, which is why a table is bound to
// exactly one. The table is never pruned: every node ever interned stays
// reachable until the table itself is dropped.
//
// All methods are safe for concurrent use. Each shard is guarded by its own
// mutex, so an uncontended single-threaded caller pays one lock per lookup.
type Table struct {
	rule   Rule
	shards [shardCount]nodeShard
	steps  [shardCount]stepShard
	size   atomic.Int64

	empty_mutex sync.Mutex
	empty       []*Node
}

// NewTable creates an empty canonical table evolving nodes under rule
func NewTable(rule Rule) *Table {
	t := &Table{rule: rule}
	for i := range t.shards {
		t.shards[i].nodes = make(map[nodeKey]*Node)
		t.steps[i].results = make(map[stepKey]*Node)
	}
	t.empty = []*Node{Dead}
	return t
}

// Rule the table evolves nodes with
func (t *Table) Rule() Rule { return t.rule }

// Size is the number of interior nodes interned so far
func (t *Table) Size() int { return int(t.size.Load()) }

// Join returns the canonical node whose quadrants are nw, ne, sw and se.
// The children must be canonical nodes of one common level; anything else
// is a programming error and panics.
func (t *Table) Join(nw, ne, sw, se *Node) *Node {
	if nw == nil || ne == nil || sw == nil || se == nil {
		panic("hashlife: join with nil child")
	}
	level := nw.level + 1
	if ne.level+1 != level || sw.level+1 != level || se.level+1 != level {
		panic("hashlife: join with children of different levels")
	}
	key := nodeKey{level: level, nw: nw, ne: ne, sw: sw, se: se}
	shard := &t.shards[hashIDs(nw.id, ne.id, sw.id, se.id)%shardCount]

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if node, ok := shard.nodes[key]; ok {
		return node
	}
	node := &Node{
		level:      level,
		population: nw.population + ne.population + sw.population + se.population,
		id:         nextID.Add(1),
		nw:         nw,
		ne:         ne,
		sw:         sw,
		se:         se,
	}
	shard.nodes[key] = node
	t.size.Add(1)
	nodesInterned.Inc()
	return node
}

// Empty returns the canonical all-dead node of the given level
func (t *Table) Empty(level uint) *Node {
	t.empty_mutex.Lock()
	defer t.empty_mutex.Unlock()
	for uint(len(t.empty)) <= level {
		last := t.empty[len(t.empty)-1]
		t.empty = append(t.empty, t.Join(last, last, last, last))
	}
	return t.empty[level]
}

// Look up a cached result of advancing node by 2^exp generations
func (t *Table) cachedStep(node *Node, exp uint) *Node {
	shard := &t.steps[hashIDs(node.id, uint64(exp), 0, 0)%shardCount]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.results[stepKey{node, exp}]
}

// Cache the result of advancing node by 2^exp generations
// A concurrent writer may have stored the same canonical result already
func (t *Table) storeStep(node *Node, exp uint, result *Node) {
	shard := &t.steps[hashIDs(node.id, uint64(exp), 0, 0)%shardCount]
	shard.mu.Lock()
	shard.results[stepKey{node, exp}] = result
	shard.mu.Unlock()
}

func hashIDs(a, b, c, d uint64) uint64 {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:], a)
	binary.LittleEndian.PutUint64(buf[8:], b)
	binary.LittleEndian.PutUint64(buf[16:], c)
	binary.LittleEndian.PutUint64(buf[24:], d)
	return xxhash.Sum64(buf[:])
}
