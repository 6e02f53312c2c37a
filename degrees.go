package bvgraph

import "github.com/dsnet/golib/errs"

// degreeWindow retains, for each of the last W+1 nodes, only its
// out-degree — enough to resolve a later node's copy-block boundaries
// (which only depend on counts, never on the actual successor values)
// without materializing any successor list. The bit-length of each encoded
// record is not stored.
type degreeWindow struct {
	capacity int
	degrees  []uint64
}

func newDegreeWindow(w int) *degreeWindow {
	cap := w + 1
	return &degreeWindow{capacity: cap, degrees: make([]uint64, cap)}
}

func (dw *degreeWindow) store(node int64, degree uint64) {
	dw.degrees[node%int64(dw.capacity)] = degree
}

func (dw *degreeWindow) get(node int64) uint64 {
	return dw.degrees[node%int64(dw.capacity)]
}

// DegreesIter yields only (node id, out-degree) pairs, skipping over the
// rest of each node's record via the codec's skipper path. It is used to
// build an offsets table or compute degree statistics without paying for
// full successor-list decode.
type DegreesIter struct {
	g      *Graph
	br     bitReader
	window *degreeWindow

	nextNode int64
	current  int64
	degree   uint64
	err      error
}

// Degrees returns a fresh degrees-only iterator positioned before node 0.
func (g *Graph) Degrees() *DegreesIter {
	return &DegreesIter{
		g:      g,
		br:     g.newBitReader(),
		window: newDegreeWindow(g.windowSize),
	}
}

// Next advances to the next node. Returns false at end of stream or after
// a decode error (check Err).
func (it *DegreesIter) Next() bool {
	if it.err != nil {
		return false
	}
	if it.nextNode >= it.g.numNodes {
		return false
	}
	v := it.nextNode
	degree, err := it.skipNode(v)
	if err != nil {
		it.err = err
		return false
	}
	it.degree = degree
	it.window.store(v, degree)
	it.current = v
	it.nextNode++
	return true
}

// Node returns the id of the node Next just positioned at.
func (it *DegreesIter) Node() int64 { return it.current }

// Degree returns the current node's out-degree.
func (it *DegreesIter) Degree() uint64 { return it.degree }

// Err returns the first error encountered, if any.
func (it *DegreesIter) Err() error { return it.err }

func (it *DegreesIter) skipNode(v int64) (degree uint64, err error) {
	defer errs.Recover(&err)

	c := it.g.codec
	r := it.br

	degree = c.ReadOutdegree(r)
	errs.Assert(degree <= uint64(it.g.numNodes), errCorruptStream)
	if degree == 0 {
		return 0, nil
	}

	var ref uint64
	if it.g.windowSize > 0 {
		ref = c.ReadReferenceOffset(r)
	}
	errs.Assert(ref <= uint64(minInt64(v, int64(it.g.windowSize))), errCorruptStream)

	var copied uint64
	if ref > 0 {
		refNode := v - int64(ref)
		refDegree := it.window.get(refNode)
		copied = skipCopyBlocks(c, r, refDegree)
	}

	if copied < degree && it.g.minIntervalLength > 0 {
		copied += skipIntervals(c, r, it.g.minIntervalLength)
	}

	if copied < degree {
		skipResiduals(c, r, degree-copied)
	}

	return degree, nil
}

// skipCopyBlocks advances past the reference's block structure, returning
// the number of successors copied from the reference node. It needs only
// the reference node's degree (an upper bound on valid block-boundary
// positions), never its actual successor values.
func skipCopyBlocks(c codecReader, r codesReader, refDegree uint64) uint64 {
	numBlocks := c.ReadBlockCount(r)
	if numBlocks == 0 {
		return refDegree
	}
	idx := c.ReadBlock(r)
	copied := idx
	for blockID := uint64(1); blockID < numBlocks; blockID++ {
		block := c.ReadBlock(r)
		end := idx + block + 1
		if blockID%2 == 0 {
			copied += end - idx
		}
		idx = end
	}
	if numBlocks%2 == 0 {
		copied += refDegree - idx
	}
	return copied
}

// skipIntervals advances past every (interval_start, interval_len) pair,
// returning the total number of successors they cover. interval_start is
// never needed numerically in degrees-only mode (it only shifts a running
// position that nothing here reads back), so it is skipped; interval_len
// is decoded since its value feeds the returned count.
func skipIntervals(c codecReader, r codesReader, minIntervalLength int) uint64 {
	numIntervals := c.ReadIntervalCount(r)
	var total uint64
	for i := uint64(0); i < numIntervals; i++ {
		c.SkipIntervalStart(r)
		total += c.ReadIntervalLen(r) + uint64(minIntervalLength)
	}
	return total
}

func skipResiduals(c codecReader, r codesReader, count uint64) {
	if count == 0 {
		return
	}
	c.SkipFirstResidual(r)
	for i := uint64(1); i < count; i++ {
		c.SkipResidual(r)
	}
}

// codesReader is an alias naming the codes.Reader contract as used by the
// skipper helpers, matching the Reader parameter type these codecReader
// methods expect.
type codesReader = interface {
	ReadBits(n uint) uint64
	PeekBits(n uint) uint64
	SkipBits(n uint)
	ReadUnary() uint64
}
