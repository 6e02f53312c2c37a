// Package bitio implements the word-reader (L1) and bit-reader (L2) layers
// of the BV codec stack: an infinite, zero-padded stream of fixed-width
// machine words re-interpreted as a stream of bits, in either MSB-first
// (M2L) or LSB-first (L2M) bit order.
//
// Each reader is a small struct holding an absolute bit position and a
// one-word cache of the last word fetched from the underlying byte source;
// every ReadBits/PeekBits assembles its result from the word(s) it spans.
// No shift register is kept between calls. Invalid arguments (n > 64) are reported with errs.Assert so
// that callers who wrap a decode in errs.Recover get a normal error back,
// while internal callers that already validated n can treat the call as
// infallible.
package bitio

import "github.com/dsnet/golib/errs"

// Error is the wrapper type for errors specific to this package. The bit
// reader never fails for any reason other than a caller bug (spec: "the bit
// reader itself never fails other than with BadArgument, because its
// backing is infinite-zero-padded").
type Error string

func (e Error) Error() string { return "bitio: " + string(e) }

// ErrBadArgument is raised (via panic, to be recovered by errs.Recover at an
// API boundary) when a caller asks for an out-of-range number of bits.
var ErrBadArgument error = Error("bad argument")

// WordSize is the width, in bits, of the machine words a Source yields.
type WordSize uint8

const (
	Word32 WordSize = 32
	Word64 WordSize = 64
)

// Endian selects how raw bytes are assembled into a machine word.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

// Source is the L1 word reader: an infinite stream of fixed-width words.
// Reading past the end of the backing region yields zero words forever,
// which lets decoders speculatively pull a word near EOF without a special
// case. SetPosition is O(1): it only changes where the next ReadNextWord
// call resumes from.
type Source interface {
	ReadNextWord() uint64
	SetPosition(wordIndex int64)
}

// ByteSource is a Source backed by an owned or memory-mapped byte slice.
// It never allocates on the read path.
type ByteSource struct {
	data  []byte
	size  WordSize
	order Endian
	pos   int64 // next word index to read
}

// NewByteSource wraps data as a word stream of the given word size and
// endianness. data is not copied; the caller must keep it alive (and, for
// mmap-backed data, unmapped only after the last reader using it is done).
func NewByteSource(data []byte, size WordSize, order Endian) *ByteSource {
	errs.Assert(size == Word32 || size == Word64, ErrBadArgument)
	return &ByteSource{data: data, size: size, order: order}
}

func (s *ByteSource) SetPosition(wordIndex int64) { s.pos = wordIndex }

func (s *ByteSource) ReadNextWord() uint64 {
	nbytes := int64(s.size / 8)
	off := s.pos * nbytes
	s.pos++

	var buf [8]byte
	if off >= int64(len(s.data)) || off < 0 {
		return 0 // infinite zero padding past EOF
	}
	end := off + nbytes
	if end > int64(len(s.data)) {
		end = int64(len(s.data))
	}
	copy(buf[:], s.data[off:end])

	if s.size == Word32 {
		if s.order == BigEndian {
			return uint64(be32(buf[:4]))
		}
		return uint64(le32(buf[:4]))
	}
	if s.order == BigEndian {
		return be64(buf[:8])
	}
	return le64(buf[:8])
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func be32(b []byte) uint32 {
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
}
func le64(b []byte) uint64 {
	return uint64(le32(b[:4])) | uint64(le32(b[4:8]))<<32
}
func be64(b []byte) uint64 {
	return uint64(be32(b[4:8])) | uint64(be32(b[:4]))<<32
}
