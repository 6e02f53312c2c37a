package bvgraph

import (
	"testing"

	"github.com/webgraph-go/bvgraph/offsets"
	"github.com/webgraph-go/bvgraph/properties"
)

// genc is a tiny MSB-first bit writer used only by these tests to build
// whole-graph fixtures, mirroring codes.encBuf; there is no production
// encoder anywhere in this module.
type genc struct {
	bits []bool
}

func (e *genc) writeBit(b bool) { e.bits = append(e.bits, b) }

func (e *genc) writeUnary(x uint64) {
	for i := uint64(0); i < x; i++ {
		e.writeBit(false)
	}
	e.writeBit(true)
}

func (e *genc) writeBits(v uint64, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		e.writeBit((v>>uint(i))&1 != 0)
	}
}

func bitsLen64(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	if n == 0 {
		return 1
	}
	return n
}

func (e *genc) writeGamma(x uint64) {
	v := x + 1
	h := uint(bitsLen64(v)) - 1
	e.writeUnary(uint64(h))
	if h > 0 {
		e.writeBits(v, h)
	}
}

func (e *genc) writeZeta(x uint64, k uint) {
	v := x + 1
	msb := uint(bitsLen64(v)) - 1
	h := msb / k
	e.writeUnary(uint64(h))
	e.writeBits(v, (h+1)*k)
}

// toBytes pads to a whole number of 64-bit words with zero bits, matching
// the infinite-zero-padded stream bitio.ByteSource expects past EOF.
func (e *genc) toBytes() []byte {
	for len(e.bits)%64 != 0 {
		e.writeBit(false)
	}
	out := make([]byte, len(e.bits)/8)
	for i, b := range e.bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// bitLen returns the number of bits actually written, before toBytes's
// zero-padding — used as the EliasFano universe bound.
func (e *genc) bitLen() uint64 { return uint64(len(e.bits)) }

// fixture bundles an encoded byte stream with the per-node successor
// lists it was built from, so a test can both open the graph and check
// decode results against ground truth.
type fixture struct {
	data       []byte
	streamBits uint64
	props      *properties.Properties
	want       [][]uint64
}

// buildArcListFixture is the running arc-list example: N=5, W=3, L_min=2.
// Node 1 is interval-dominated (successors 2,3,4 form one run plus a
// residual 0), node 2 copies one element from node 1's list via blocks
// and residual-encodes the rest, node 4 is purely residual-encoded, and
// nodes 0 and 3 have no successors at all.
func buildArcListFixture() *fixture {
	e := &genc{}

	// node 0: degree 0.
	e.writeGamma(0)

	// node 1: successors [0,2,3,4]; interval [2,3,4], residual [0].
	e.writeGamma(4)   // outdegree
	e.writeUnary(0)   // reference_offset
	e.writeGamma(1)   // interval_count
	e.writeGamma(2)   // interval_start[0] = int2nat(2-1=1) = 2
	e.writeGamma(1)   // interval_len[0] = 3 - L_min(2)
	e.writeZeta(1, 3) // first_residual = int2nat(0-1=-1) = 1

	// node 2: successors [1,3]; copies element 3 from node 1 via blocks,
	// residual-encodes 1.
	e.writeGamma(2)   // outdegree
	e.writeUnary(1)   // reference_offset (-> node 1)
	e.writeGamma(3)   // block_count
	e.writeGamma(0)   // block[0] = 0 (copy prev[0:0): nothing)
	e.writeGamma(1)   // block[1] = 1 (skip prev[0:2): values 0,2)
	e.writeGamma(0)   // block[2] = 0 (copy prev[2:3): value 3)
	e.writeGamma(0)   // interval_count = 0
	e.writeZeta(1, 3) // first_residual = int2nat(1-2=-1) = 1

	// node 3: degree 0.
	e.writeGamma(0)

	// node 4: successors [2]; pure residual.
	e.writeGamma(1)   // outdegree
	e.writeUnary(0)   // reference_offset
	e.writeGamma(0)   // interval_count = 0
	e.writeZeta(3, 3) // first_residual = int2nat(2-4=-2) = 3

	props := &properties.Properties{
		Nodes:             5,
		Arcs:              7,
		HasArcs:           true,
		WindowSize:        3,
		MinIntervalLength: 2,
		Endianness:        properties.Big,
	}

	return &fixture{
		data:       e.toBytes(),
		streamBits: e.bitLen(),
		props:      props,
		want: [][]uint64{
			{},
			{0, 2, 3, 4},
			{1, 3},
			{},
			{2},
		},
	}
}

// buildEmptyGraphFixture is the minimal single-node graph with no arcs.
func buildEmptyGraphFixture() *fixture {
	e := &genc{}
	e.writeGamma(0) // node 0: degree 0

	props := &properties.Properties{
		Nodes:             1,
		Arcs:              0,
		HasArcs:           true,
		WindowSize:        0,
		MinIntervalLength: 0,
		Endianness:        properties.Big,
	}
	return &fixture{data: e.toBytes(), streamBits: e.bitLen(), props: props, want: [][]uint64{{}}}
}

// buildChainFixture builds a 5-node graph where every node from 1 onward
// copies its entire successor list from the previous node via a single
// zero-length block run (block_count=0), so a random-access decode of
// node 4 must recursively resolve a 4-hop reference chain back to node 0.
// MinIntervalLength is 0, so the interval section is never present in the
// stream at all (the decoder gates it on minIntervalLength > 0).
func buildChainFixture() *fixture {
	e := &genc{}

	e.writeGamma(1)   // node 0 outdegree
	e.writeUnary(0)   // reference_offset
	e.writeZeta(8, 3) // first_residual = int2nat(4-0) = 8

	for v := int64(1); v < 5; v++ {
		e.writeGamma(1) // outdegree
		e.writeUnary(1) // reference_offset -> v-1
		e.writeGamma(0) // block_count = 0: copy prev wholesale
	}

	props := &properties.Properties{
		Nodes:             5,
		Arcs:              5,
		HasArcs:           true,
		WindowSize:        4,
		MinIntervalLength: 0,
		Endianness:        properties.Big,
	}
	want := make([][]uint64, 5)
	for i := range want {
		want[i] = []uint64{4}
	}
	return &fixture{data: e.toBytes(), streamBits: e.bitLen(), props: props, want: want}
}

func buildEliasFano(t *testing.T, g *Graph, streamBits uint64) *offsets.EliasFano {
	t.Helper()
	gamma := offsets.BuildFromScan(g.Scan(), nil)
	ef, err := gamma.ToEliasFano(streamBits)
	if err != nil {
		t.Fatalf("ToEliasFano: %v", err)
	}
	return ef
}
