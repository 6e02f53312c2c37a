package offsets

import "log"

// progressInterval is how often (in nodes scanned) BuildFromScan emits a
// progress notice to a non-nil logger.
const progressInterval = 1 << 20

// ScanPositioner is the slice of bvgraph.SequentialIter that BuildFromScan
// needs: a per-node bit position, obtainable before decoding each node.
// Defined here (rather than importing bvgraph) to keep offsets free of a
// dependency on the graph package — bvgraph depends on offsets, not the
// reverse.
type ScanPositioner interface {
	// Next advances to the next node, returning false at end of stream.
	Next() bool
	// BitPosition returns the starting bit offset of the node Next just
	// yielded (i.e., the offset that should be recorded as O[v]).
	BitPosition() uint64
}

// BuildFromScan drives an existing sequential iterator end to end,
// recording each node's starting bit position, and returns the resulting
// offsets table. This is how a .ef/.offsets table is produced from a graph
// that has none on disk — by scanning once and recording positions — not
// by an encoder (building a compressed stream from scratch remains out of
// scope). logger, if non-nil, receives a progress notice every
// progressInterval nodes; pass nil to build silently.
func BuildFromScan(it ScanPositioner, logger *log.Logger) *GammaOffsets {
	var offs []uint64
	for it.Next() {
		offs = append(offs, it.BitPosition())
		if logger != nil && len(offs)%progressInterval == 0 {
			logger.Printf("offsets: recorded %d nodes", len(offs))
		}
	}
	if logger != nil {
		logger.Printf("offsets: done, %d nodes total", len(offs))
	}
	return &GammaOffsets{offsets: offs, sentinel: false}
}
