package codes

import (
	"testing"

	"github.com/webgraph-go/bvgraph/bitio"
)

// encBuf is a tiny MSB-first bit writer used only by these tests to build
// fixtures; there is no production encoder in this package (encoding is out
// of scope for the decoder core).
type encBuf struct {
	bits []bool
}

func (e *encBuf) writeBit(b bool) { e.bits = append(e.bits, b) }

func (e *encBuf) writeUnary(x uint64) {
	for i := uint64(0); i < x; i++ {
		e.writeBit(false)
	}
	e.writeBit(true)
}

func (e *encBuf) writeBits(v uint64, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		e.writeBit((v>>uint(i))&1 != 0)
	}
}

func (e *encBuf) writeGamma(x uint64) {
	v := x + 1
	h := uint(bitsLen64(v)) - 1
	e.writeUnary(uint64(h))
	if h > 0 {
		e.writeBits(v, h) // low h bits of v (top bit, always 1, is elided)
	}
}

func (e *encBuf) writeDelta(x uint64) {
	v := x + 1
	h := uint(bitsLen64(v)) - 1
	e.writeGamma(uint64(h))
	if h > 0 {
		e.writeBits(v, h)
	}
}

func (e *encBuf) writeZeta(x uint64, k uint) {
	v := x + 1
	msb := uint(bitsLen64(v)) - 1
	h := msb / k
	e.writeUnary(uint64(h))
	e.writeBits(v, (h+1)*k)
}

func (e *encBuf) writeRice(x uint64, k uint) {
	e.writeUnary(x >> k)
	if k > 0 {
		e.writeBits(x&((1<<k)-1), k)
	}
}

func (e *encBuf) writeMinimalBinary(v, z uint64) {
	if z == 1 {
		return
	}
	s := ceilLog2(z)
	m := (uint64(1) << s) - z
	if v < m {
		e.writeBits(v, s-1)
		return
	}
	// v = 2*vv + b - m  =>  vv = (v+m)/2, b = (v+m) % 2... reconstruct forward
	code := v + m
	vv := code / 2
	b := code % 2
	e.writeBits(vv, s-1)
	e.writeBit(b != 0)
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

func (e *encBuf) toBytes() []byte {
	// Pad out to a whole number of 64-bit words with zero bits.
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

func (e *encBuf) reader() *bitio.MSBReader {
	data := e.toBytes()
	src := bitio.NewByteSource(data, bitio.Word64, bitio.BigEndian)
	return bitio.NewMSBReader(src, bitio.Word64)
}

func TestGammaRoundTrip(t *testing.T) {
	for _, x := range []uint64{0, 1, 2, 3, 4, 7, 8, 100, 1000, 1 << 20} {
		e := &encBuf{}
		e.writeGamma(x)
		got := DecodeGamma(e.reader())
		if got != x {
			t.Errorf("gamma round trip for %d: got %d", x, got)
		}
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	for _, x := range []uint64{0, 1, 2, 3, 15, 16, 1000, 1 << 24} {
		e := &encBuf{}
		e.writeDelta(x)
		got := DecodeDelta(e.reader())
		if got != x {
			t.Errorf("delta round trip for %d: got %d", x, got)
		}
	}
}

func TestZetaRoundTrip(t *testing.T) {
	for k := uint(1); k <= 7; k++ {
		for _, x := range []uint64{0, 1, 2, 3, 7, 8, 63, 64, 1000, 1 << 20} {
			e := &encBuf{}
			e.writeZeta(x, k)
			got := DecodeZeta(e.reader(), k)
			if got != x {
				t.Errorf("zeta(%d) round trip for %d: got %d", k, x, got)
			}
		}
	}
}

func TestRiceRoundTrip(t *testing.T) {
	for k := uint(0); k <= 8; k++ {
		for _, x := range []uint64{0, 1, 2, 63, 64, 1000} {
			e := &encBuf{}
			e.writeRice(x, k)
			got := DecodeRice(e.reader(), k)
			if got != x {
				t.Errorf("rice(%d) round trip for %d: got %d", k, x, got)
			}
		}
	}
}

func TestMinimalBinaryRoundTrip(t *testing.T) {
	for _, z := range []uint64{1, 2, 3, 5, 7, 8, 100} {
		for v := uint64(0); v < z; v++ {
			e := &encBuf{}
			e.writeMinimalBinary(v, z)
			got := DecodeMinimalBinary(e.reader(), z)
			if got != v {
				t.Errorf("minimal-binary(z=%d) round trip for %d: got %d", z, v, got)
			}
		}
	}
}

func TestGammaOfZero(t *testing.T) {
	e := &encBuf{}
	e.writeGamma(0)
	if got := DecodeGamma(e.reader()); got != 0 {
		t.Fatalf("gamma(0) decoded as %d, want 0", got)
	}
}

func TestNat2IntInt2NatBijection(t *testing.T) {
	for _, x := range []int64{0, 1, -1, 2, -2, 1000, -1000, 1 << 30, -(1 << 30)} {
		u := Int2Nat(x)
		got := Nat2Int(u)
		if got != x {
			t.Errorf("Nat2Int(Int2Nat(%d)) = %d", x, got)
		}
	}
	for _, u := range []uint64{0, 1, 2, 3, 4, 5, 1000, 1001} {
		x := Nat2Int(u)
		got := Int2Nat(x)
		if got != u {
			t.Errorf("Int2Nat(Nat2Int(%d)) = %d", u, got)
		}
	}
}

func TestSkipMatchesReadPosition(t *testing.T) {
	e := &encBuf{}
	e.writeGamma(12345)
	e.writeDelta(6789)
	e.writeZeta(42, 3)
	e.writeRice(99, 4)

	r1 := e.reader()
	DecodeGamma(r1)
	DecodeDelta(r1)
	DecodeZeta(r1, 3)
	DecodeRice(r1, 4)

	r2 := e.reader()
	SkipGamma(r2)
	SkipDelta(r2)
	SkipZeta(r2, 3)
	SkipRice(r2, 4)

	if r1.Position() != r2.Position() {
		t.Fatalf("read position %d != skip position %d", r1.Position(), r2.Position())
	}
}
