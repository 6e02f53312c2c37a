package offsets

import (
	"github.com/webgraph-go/bvgraph/bitio"
	"github.com/webgraph-go/bvgraph/codes"
)

// GammaOffsets holds a fully-decoded B.offsets table: N (or N+1, per the
// historical sentinel variant) gamma-coded gaps, prefix-summed into
// absolute bit offsets. It is a plain slice, not succinct — used as an
// intermediate form en route to BuildEliasFano, or directly when a graph
// is small enough that succinctness doesn't matter.
type GammaOffsets struct {
	offsets []uint64 // len is either N or N+1, see HasSentinel
	sentinel bool
}

// ReadGammaOffsets decodes a B.offsets bitstream of gap-gamma codes into
// absolute cumulative offsets. numNodes is N from the properties file.
// Some historical producers write N+1 codes (a sentinel past the last
// node's start, letting the reader derive the final node's encoded length
// without consulting the graph); others write exactly N. The caller states
// which variant the stream holds: haveSentinel reads N+1 codes, otherwise
// N codes are read. The variant is not detected from the stream itself.
func ReadGammaOffsets(data []byte, wordSize bitio.WordSize, endian bitio.Endian, bitOrder BitOrder, numNodes int, haveSentinel bool) *GammaOffsets {
	count := numNodes
	if haveSentinel {
		count = numNodes + 1
	}
	offs := make([]uint64, count)
	r := newReader(data, wordSize, endian, bitOrder)
	var cum uint64
	for i := 0; i < count; i++ {
		cum += codes.DecodeGamma(r)
		offs[i] = cum
	}
	return &GammaOffsets{offsets: offs, sentinel: haveSentinel}
}

// BitOrder selects which bitio reader flavor backs a GammaOffsets decode.
type BitOrder uint8

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

// newReader returns a codes.Reader over data, backed by the bitio reader
// flavor that matches order.
func newReader(data []byte, wordSize bitio.WordSize, endian bitio.Endian, order BitOrder) codes.Reader {
	src := bitio.NewByteSource(data, wordSize, endian)
	if order == LSBFirst {
		return bitio.NewLSBReader(src, wordSize)
	}
	return bitio.NewMSBReader(src, wordSize)
}

// Get returns O[v], the absolute bit offset of node v's encoded record.
func (g *GammaOffsets) Get(v int) uint64 {
	if v < 0 || v >= len(g.offsets) {
		panic(ErrBadArgument)
	}
	return g.offsets[v]
}

// Len returns the number of entries actually decoded (N or N+1).
func (g *GammaOffsets) Len() int { return len(g.offsets) }

// HasSentinel reports whether this table carries the N+1-th sentinel
// entry past the last node.
func (g *GammaOffsets) HasSentinel() bool { return g.sentinel }

// ToEliasFano compresses the decoded offsets into a succinct EliasFano
// table suitable for long-lived random access, bounded above by the total
// encoded stream length in bits (u).
func (g *GammaOffsets) ToEliasFano(streamBits uint64) (*EliasFano, error) {
	return BuildEliasFano(g.offsets, streamBits)
}
