// Package offsets implements the BV offsets table (O[0..N]): the
// Elias-Fano succinct encoding used for O(1) random-access `Get(v)`, a
// reader for the plain gap-gamma-coded B.offsets bitstream, and a builder
// that records O[v] while driving an existing sequential scan.
//
// Building or loading a .ef/.offsets file from scratch (the CLI tool that
// writes them to disk) is out of scope; this package only supports
// constructing the in-memory succinct structure the core's random-access
// accessor needs, grounded on how webgraph-rs's test_eliasfano.rs consumes
// an EF table built either from an on-disk .offsets file or directly from
// a sequential scan's iter_degrees.
package offsets

import (
	stdbits "math/bits"

	"github.com/dsnet/golib/bits"
)

// Error is this package's error wrapper.
type Error string

func (e Error) Error() string { return "offsets: " + string(e) }

// ErrBadArgument is returned for out-of-range queries or malformed builder
// input (a non-monotone sequence).
var ErrBadArgument error = Error("bad argument")

// EliasFano is a succinct encoding of a monotone non-decreasing sequence of
// n values in [0, u], supporting O(1) Get(i). It stores the high bits of
// each value in a unary-coded bit vector (rank/select via popcount) and the
// low bits packed at a fixed width, following the classical Elias-Fano
// layout: for a universe of size u and n elements, the low-bit width is
// l = max(0, floor(log2(u/n))), and the high bits are stored as n ones
// interleaved with (u>>l) zeros in strictly increasing bucket order.
type EliasFano struct {
	n       int
	u       uint64
	lowBits uint

	low  []byte // n values, each lowBits wide, packed via bits.SetN/GetN
	high []byte // bit vector of length n + (u>>lowBits) + 2, set via bits.Set
	// highSelect1[k] caches the bit-position of the k-th one in high for
	// every 64th one, giving O(1) average select without a full scan.
	highSelect1 []uint32
}

// BuildEliasFano constructs an EliasFano encoding of values, which must be
// non-decreasing and bounded above by u (values[i] <= u for all i).
func BuildEliasFano(values []uint64, u uint64) (*EliasFano, error) {
	n := len(values)
	for i := 1; i < n; i++ {
		if values[i] < values[i-1] {
			return nil, ErrBadArgument
		}
	}
	if n > 0 && values[n-1] > u {
		return nil, ErrBadArgument
	}

	lowBits := uint(0)
	if n > 0 && u/uint64(n) > 0 {
		lowBits = uint(stdbits.Len64(u / uint64(n)))
		if lowBits > 0 {
			lowBits--
		}
	}

	highLen := n + int(u>>lowBits) + 2
	ef := &EliasFano{
		n:       n,
		u:       u,
		lowBits: lowBits,
		low:     make([]byte, bytesFor(n, lowBits)),
		high:    make([]byte, bytesFor(highLen, 1)),
	}

	lowMask := uint64(1)<<lowBits - 1
	if lowBits == 64 {
		lowMask = ^uint64(0)
	}
	for i, v := range values {
		lo := v & lowMask
		hi := v >> lowBits
		ef.setLowBits(i, lo)
		// The i-th value's high part contributes a one bit at absolute
		// position hi+i in the unary-interleaved high bit vector.
		ef.setHighBit(uint64(hi) + uint64(i))
	}
	ef.buildSelectIndex()
	return ef, nil
}

// bytesFor returns the number of bytes needed to hold count fields of the
// given bit width, packed back-to-back.
func bytesFor(count int, width uint) int {
	totalBits := int64(count) * int64(width)
	return int((totalBits + 7) / 8)
}

func (ef *EliasFano) setLowBits(i int, v uint64) {
	if ef.lowBits == 0 {
		return
	}
	pos := i * int(ef.lowBits)
	bits.SetN(ef.low, uint(v), int(ef.lowBits), pos)
}

func (ef *EliasFano) getLowBits(i int) uint64 {
	if ef.lowBits == 0 {
		return 0
	}
	pos := i * int(ef.lowBits)
	return uint64(bits.GetN(ef.low, int(ef.lowBits), pos))
}

func (ef *EliasFano) setHighBit(pos uint64) {
	bits.Set(ef.high, true, int(pos))
}

// buildSelectIndex records, for every 64th set bit in high, its absolute
// bit position, so select1 never has to scan from the beginning. Bytes are
// scanned directly with stdlib math/bits (TrailingZeros8, clearing the
// lowest set bit after each one found) rather than bit by bit through
// bits.Get.
func (ef *EliasFano) buildSelectIndex() {
	count := 0
	for byteIdx, b := range ef.high {
		for b != 0 {
			tz := stdbits.TrailingZeros8(b)
			if count%64 == 0 {
				ef.highSelect1 = append(ef.highSelect1, uint32(byteIdx*8+tz))
			}
			count++
			b &= b - 1
		}
	}
}

// select1 returns the bit position of the k-th one bit (0-indexed) in high.
func (ef *EliasFano) select1(k int) uint64 {
	checkpoint := k / 64
	pos := uint64(0)
	if checkpoint < len(ef.highSelect1) {
		pos = uint64(ef.highSelect1[checkpoint])
	}
	remaining := k - checkpoint*64
	byteIdx := int(pos / 8)
	bitOff := uint(pos % 8)

	b := ef.high[byteIdx] >> bitOff
	for {
		if remaining == 0 && b != 0 {
			// The checkpoint always points at a set bit, so b's low bit is
			// already 1 on the first iteration; on a later byte b may be
			// zero, in which case the loop moves on to the next byte.
			tz := stdbits.TrailingZeros8(b)
			return uint64(byteIdx)*8 + uint64(bitOff) + uint64(tz)
		}
		pc := stdbits.OnesCount8(b)
		if pc > remaining {
			for remaining > 0 {
				b &= b - 1
				remaining--
			}
			tz := stdbits.TrailingZeros8(b)
			return uint64(byteIdx)*8 + uint64(bitOff) + uint64(tz)
		}
		remaining -= pc
		byteIdx++
		bitOff = 0
		b = ef.high[byteIdx]
	}
}

// Get returns the i-th value of the encoded sequence, i in [0, n).
func (ef *EliasFano) Get(i int) uint64 {
	if i < 0 || i >= ef.n {
		panic(ErrBadArgument)
	}
	hiPos := ef.select1(i)
	hi := hiPos - uint64(i)
	lo := ef.getLowBits(i)
	return hi<<ef.lowBits | lo
}

// Len returns the number of encoded values.
func (ef *EliasFano) Len() int { return ef.n }

// rank1 returns the number of set bits in high[0:pos]. Used by tests to
// cross-check select1 against an independent popcount of the same bit
// vector.
func (ef *EliasFano) rank1(pos int) int {
	full := pos / 8
	n := bits.Count(ef.high[:full])
	for i := full * 8; i < pos; i++ {
		if bits.Get(ef.high, i) {
			n++
		}
	}
	return n
}
