package bvgraph

import (
	"github.com/dsnet/golib/errs"

	"github.com/webgraph-go/bvgraph/codes"
)

// backrefWindow is the circular buffer of the W+1 most recently decoded
// successor lists a sequential scan needs to resolve copy-block
// references. Each slot's capacity is retained across reuse so that
// re-filling a slot for a high-degree node doesn't reallocate once it has
// grown to its working size, mirroring the "scratch reuse" design note.
type backrefWindow struct {
	capacity int // W+1; 1 when W == 0 (no backreferencing)
	slots    [][]uint64
}

func newBackrefWindow(w int) *backrefWindow {
	cap := w + 1
	return &backrefWindow{capacity: cap, slots: make([][]uint64, cap)}
}

func (bw *backrefWindow) slotFor(node int64) int {
	return int(node % int64(bw.capacity))
}

func (bw *backrefWindow) get(node int64) []uint64 {
	return bw.slots[bw.slotFor(node)]
}

// store saves list into node's slot, reusing the slot's backing array.
func (bw *backrefWindow) store(node int64, list []uint64) {
	bw.slots[bw.slotFor(node)] = list
}

// takeScratch returns the backing array currently parked in node's slot
// (about to be overwritten), truncated to zero length, for the caller to
// decode the next occupant of that slot into.
func (bw *backrefWindow) takeScratch(node int64) []uint64 {
	s := bw.slots[bw.slotFor(node)]
	return s[:0]
}

// SequentialIter yields every node's (id, successors) pair in ascending
// order, maintaining its own bit cursor and backref window. It is not
// safe for concurrent use, but independent SequentialIter/DegreesIter
// values over the same Graph may run on separate goroutines.
type SequentialIter struct {
	g      *Graph
	br     bitReader
	window *backrefWindow

	nextNode int64 // node to be decoded by the next call to Next
	current  int64 // node last yielded by Next
	startPos uint64
	succ     []uint64
	err      error
}

// Scan returns a fresh sequential iterator positioned before node 0.
func (g *Graph) Scan() *SequentialIter {
	return &SequentialIter{
		g:      g,
		br:     g.newBitReader(),
		window: newBackrefWindow(g.windowSize),
	}
}

// Next decodes the next node's successor list, advancing the cursor.
// Returns false once every node has been yielded or a decode error
// occurred (check Err).
func (it *SequentialIter) Next() bool {
	if it.err != nil {
		return false
	}
	if it.nextNode >= it.g.numNodes {
		return false
	}
	v := it.nextNode
	it.startPos = it.br.Position()
	succ, err := it.decodeNode(v)
	if err != nil {
		it.err = err
		return false
	}
	it.succ = succ
	it.window.store(v, succ)
	it.current = v
	it.nextNode++
	return true
}

// Node returns the id of the node Next just positioned at.
func (it *SequentialIter) Node() int64 { return it.current }

// Successors returns the current node's sorted successor list. The
// returned slice is only valid until the next call to Next.
func (it *SequentialIter) Successors() []uint64 { return it.succ }

// BitPosition returns the bit offset at which the current node's record
// began, for offsets-table construction (offsets.BuildFromScan).
func (it *SequentialIter) BitPosition() uint64 { return it.startPos }

// Err returns the first error encountered, if any.
func (it *SequentialIter) Err() error { return it.err }

func (it *SequentialIter) decodeNode(v int64) (succ []uint64, err error) {
	defer errs.Recover(&err)

	scratch := it.window.takeScratch(v)
	c := it.g.codec
	r := it.br

	degree := c.ReadOutdegree(r)
	errs.Assert(degree <= uint64(it.g.numNodes), errCorruptStream)
	if degree == 0 {
		return scratch[:0], nil
	}

	var ref uint64
	if it.g.windowSize > 0 {
		ref = c.ReadReferenceOffset(r)
	}
	errs.Assert(ref <= uint64(minInt64(v, int64(it.g.windowSize))), errCorruptStream)

	results := scratch[:0]
	if ref > 0 {
		refNode := v - int64(ref)
		prev := it.window.get(refNode)
		results = appendCopyBlocks(c, r, prev, results)
	}

	if uint64(len(results)) < degree && it.g.minIntervalLength > 0 {
		results = appendIntervals(c, r, v, it.g.minIntervalLength, it.g.numNodes, results)
	}

	if uint64(len(results)) < degree {
		results = appendResiduals(c, r, v, degree-uint64(len(results)), it.g.numNodes, results)
	}

	errs.Assert(uint64(len(results)) == degree, errCorruptStream)
	sortUint64s(results)
	for i := 1; i < len(results); i++ {
		errs.Assert(results[i] > results[i-1], errCorruptStream)
	}
	return results, nil
}

// appendCopyBlocks reads block_count and the block lengths, copying the
// even-indexed ranges of prev (the reference node's list) into results:
// range 0 is always copied ([0, p0)); ranges alternate skip/copy from
// there; if the block count is even, the tail past the last boundary is
// also copied.
func appendCopyBlocks(c codecReader, r codes.Reader, prev []uint64, results []uint64) []uint64 {
	numBlocks := c.ReadBlockCount(r)
	if numBlocks == 0 {
		return append(results, prev...)
	}
	idx := c.ReadBlock(r)
	results = append(results, prev[:clampIdx(idx, len(prev))]...)
	for blockID := uint64(1); blockID < numBlocks; blockID++ {
		block := c.ReadBlock(r)
		end := idx + block + 1
		if blockID%2 == 0 {
			results = append(results, prev[clampIdx(idx, len(prev)):clampIdx(end, len(prev))]...)
		}
		idx = end
	}
	if numBlocks%2 == 0 {
		results = append(results, prev[clampIdx(idx, len(prev)):]...)
	}
	return results
}

func clampIdx(idx uint64, n int) int {
	if idx > uint64(n) {
		return n
	}
	return int(idx)
}

// appendIntervals reads numNodes-bounded interval runs, asserting
// CorruptStream rather than looping/allocating unboundedly when a
// corrupted start or length would otherwise put a successor outside
// [0,numNodes).
func appendIntervals(c codecReader, r codes.Reader, v int64, minIntervalLength int, numNodes int64, results []uint64) []uint64 {
	numIntervals := c.ReadIntervalCount(r)
	if numIntervals == 0 {
		return results
	}
	offset0 := codes.Nat2Int(c.ReadIntervalStart(r))
	start := v + offset0
	length := int64(c.ReadIntervalLen(r)) + int64(minIntervalLength)
	errs.Assert(start >= 0 && start+length <= numNodes, errCorruptStream)
	for x := start; x < start+length; x++ {
		results = append(results, uint64(x))
	}
	start += length

	for i := uint64(1); i < numIntervals; i++ {
		start += 1 + int64(c.ReadIntervalStart(r))
		length = int64(c.ReadIntervalLen(r)) + int64(minIntervalLength)
		errs.Assert(start >= 0 && start+length <= numNodes, errCorruptStream)
		for x := start; x < start+length; x++ {
			results = append(results, uint64(x))
		}
		start += length
	}
	return results
}

// appendResiduals decodes count residual successors, asserting each one
// falls in [0,numNodes) before appending it.
func appendResiduals(c codecReader, r codes.Reader, v int64, count uint64, numNodes int64, results []uint64) []uint64 {
	offset := codes.Nat2Int(c.ReadFirstResidual(r))
	cur := v + offset
	errs.Assert(cur >= 0 && cur < numNodes, errCorruptStream)
	results = append(results, uint64(cur))
	for i := uint64(1); i < count; i++ {
		cur += 1 + int64(c.ReadResidual(r))
		errs.Assert(cur >= 0 && cur < numNodes, errCorruptStream)
		results = append(results, uint64(cur))
	}
	return results
}

// codecReader is the subset of *bvcodec.Codec the per-node decode logic
// uses, named so sequential.go and random_access.go share one contract
// without re-importing bvcodec's concrete type in every signature.
type codecReader interface {
	ReadOutdegree(codes.Reader) uint64
	ReadReferenceOffset(codes.Reader) uint64
	ReadBlockCount(codes.Reader) uint64
	ReadBlock(codes.Reader) uint64
	ReadIntervalCount(codes.Reader) uint64
	ReadIntervalStart(codes.Reader) uint64
	ReadIntervalLen(codes.Reader) uint64
	ReadFirstResidual(codes.Reader) uint64
	ReadResidual(codes.Reader) uint64

	SkipIntervalStart(codes.Reader)
	SkipFirstResidual(codes.Reader)
	SkipResidual(codes.Reader)
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// sortUint64s sorts s ascending in place. A tiny insertion sort is used
// instead of sort.Slice because successor lists are typically short
// (degree is rarely more than a few hundred) and this avoids the
// reflection/closure overhead of sort.Slice on the hottest loop in the
// decoder; for lists longer than 32 it falls back to the hand-rolled
// quickSortUint64.
func sortUint64s(s []uint64) {
	if len(s) < 2 {
		return
	}
	if len(s) <= 32 {
		for i := 1; i < len(s); i++ {
			for j := i; j > 0 && s[j-1] > s[j]; j-- {
				s[j-1], s[j] = s[j], s[j-1]
			}
		}
		return
	}
	quickSortUint64(s)
}

func quickSortUint64(s []uint64) {
	if len(s) < 2 {
		return
	}
	pivot := s[len(s)/2]
	i, j := 0, len(s)-1
	for i <= j {
		for s[i] < pivot {
			i++
		}
		for s[j] > pivot {
			j--
		}
		if i <= j {
			s[i], s[j] = s[j], s[i]
			i++
			j--
		}
	}
	quickSortUint64(s[:j+1])
	quickSortUint64(s[i:])
}
