package bvgraph

import "github.com/dsnet/golib/errs"

// errNoRandomAccess is returned by Successors when the graph has no
// offsets table (no SetEliasFano call; Open does not load .ef files).
var errNoRandomAccess error = newErr(BadArgument, "random access requires an Elias-Fano offsets table")

// Successors returns the sorted successor list of node v via random
// access: seek to O[v], then decode v's record, recursively decoding any
// reference chain it depends on (up to the graph's configured max
// reference depth) since random access keeps no persistent backref
// window.
func (g *Graph) Successors(v int64) (succ []uint64, err error) {
	if g.ef == nil {
		return nil, errNoRandomAccess
	}
	if v < 0 || v >= g.numNodes {
		return nil, errBadArgument
	}
	if g.cache != nil {
		if cached, ok := g.cache.get(v); ok {
			return cached, nil
		}
	}

	succ, err = g.decodeRandom(v, 0)
	if err != nil {
		return nil, err
	}
	if g.cache != nil {
		g.cache.put(v, succ)
	}
	return succ, nil
}

func (g *Graph) decodeRandom(v int64, depth int) (succ []uint64, err error) {
	defer errs.Recover(&err)

	if g.cache != nil {
		if cached, ok := g.cache.get(v); ok {
			return cached, nil
		}
	}

	errs.Assert(depth <= g.maxRefDepth, errCorruptStream)

	r := g.newBitReader()
	r.SeekBit(g.ef.Get(int(v)))

	c := g.codec
	degree := c.ReadOutdegree(r)
	errs.Assert(degree <= uint64(g.numNodes), errCorruptStream)
	if degree == 0 {
		return nil, nil
	}

	var ref uint64
	if g.windowSize > 0 {
		ref = c.ReadReferenceOffset(r)
	}
	errs.Assert(ref <= uint64(minInt64(v, int64(g.windowSize))), errCorruptStream)

	var results []uint64
	if ref > 0 {
		refNode := v - int64(ref)
		prev, rerr := g.decodeRandom(refNode, depth+1)
		if rerr != nil {
			errs.Panic(rerr)
		}
		results = appendCopyBlocks(c, r, prev, results)
	}

	if uint64(len(results)) < degree && g.minIntervalLength > 0 {
		results = appendIntervals(c, r, v, g.minIntervalLength, g.numNodes, results)
	}

	if uint64(len(results)) < degree {
		results = appendResiduals(c, r, v, degree-uint64(len(results)), g.numNodes, results)
	}

	errs.Assert(uint64(len(results)) == degree, errCorruptStream)
	sortUint64s(results)

	if g.cache != nil {
		g.cache.put(v, results)
	}
	return results, nil
}

// successorCache is a bounded LRU cache of decoded successor lists, keyed
// by node id, used to avoid re-walking the same reference chain repeatedly
// across nearby random-access calls.
type successorCache struct {
	capacity int
	entries  map[int64]*cacheNode
	head     *cacheNode // most recently used
	tail     *cacheNode // least recently used
}

type cacheNode struct {
	key        int64
	val        []uint64
	prev, next *cacheNode
}

func newSuccessorCache(capacity int) *successorCache {
	return &successorCache{capacity: capacity, entries: make(map[int64]*cacheNode, capacity)}
}

func (c *successorCache) get(key int64) ([]uint64, bool) {
	n, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(n)
	return n.val, true
}

func (c *successorCache) put(key int64, val []uint64) {
	if n, ok := c.entries[key]; ok {
		n.val = val
		c.moveToFront(n)
		return
	}
	n := &cacheNode{key: key, val: val}
	c.entries[key] = n
	c.pushFront(n)
	if len(c.entries) > c.capacity {
		c.evictTail()
	}
}

func (c *successorCache) pushFront(n *cacheNode) {
	n.prev, n.next = nil, c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *successorCache) remove(n *cacheNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
}

func (c *successorCache) moveToFront(n *cacheNode) {
	if c.head == n {
		return
	}
	c.remove(n)
	c.pushFront(n)
}

func (c *successorCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
