package bitio

import "github.com/dsnet/golib/errs"

// LSBReader reads bits least-significant-bit first (L2M order): the first
// bit delivered is the least significant bit of the first word. It mirrors
// MSBReader but packs earlier bits into the low end of the result, the
// convention the teacher's flate.bitReader and brotli.bitReader already use
// for their LSB-first DEFLATE/Brotli bitstreams.
type LSBReader struct {
	src      Source
	wordBits uint64

	lastIdx   int64
	lastWord  uint64
	lastValid bool

	bitPos uint64
}

// NewLSBReader creates an L2M bit reader atop src.
func NewLSBReader(src Source, wordBits WordSize) *LSBReader {
	return &LSBReader{src: src, wordBits: uint64(wordBits), lastIdx: -1}
}

func (r *LSBReader) wordAt(idx int64) uint64 {
	if r.lastValid && idx == r.lastIdx {
		return r.lastWord
	}
	r.src.SetPosition(idx)
	w := r.src.ReadNextWord()
	r.lastIdx, r.lastWord, r.lastValid = idx, w, true
	return w
}

func (r *LSBReader) Position() uint64    { return r.bitPos }
func (r *LSBReader) SeekBit(pos uint64)  { r.bitPos = pos }
func (r *LSBReader) SkipBits(nb uint)    { r.bitPos += uint64(nb) }

// peekAt returns the nb bits (0 <= nb <= 64) starting at absolute bit
// position pos, right-aligned in the result (the first-delivered bit is bit
// 0 of the result), without touching r.bitPos.
func (r *LSBReader) peekAt(pos uint64, nb uint) uint64 {
	errs.Assert(nb <= 64, ErrBadArgument)
	wb := r.wordBits
	var result uint64
	var shift uint64
	remaining := uint64(nb)
	cur := pos
	for remaining > 0 {
		wordIdx := int64(cur / wb)
		inWordOff := cur % wb
		avail := wb - inWordOff
		take := avail
		if take > remaining {
			take = remaining
		}
		word := r.wordAt(wordIdx)
		chunk := (word >> inWordOff) & maskBits(take)
		result |= chunk << shift
		shift += take
		cur += take
		remaining -= take
	}
	return result
}

// PeekBits returns the next nb bits (0 <= nb <= 64) right-aligned in the
// result, without consuming them.
func (r *LSBReader) PeekBits(nb uint) uint64 { return r.peekAt(r.bitPos, nb) }

// ReadBits reads and consumes nb bits (0 <= nb <= 64).
func (r *LSBReader) ReadBits(nb uint) uint64 {
	v := r.peekAt(r.bitPos, nb)
	r.bitPos += uint64(nb)
	return v
}

// ReadUnary decodes a unary code: the count of trailing zero bits before the
// terminating one bit.
func (r *LSBReader) ReadUnary() uint64 {
	if v, nb, ok := unaryTableLSB(uint16(r.peekAt(r.bitPos, 16))); ok {
		r.bitPos += uint64(nb)
		return v
	}
	probe := r.bitPos
	var total uint64
	for {
		chunk := r.peekAt(probe, 64)
		zeros := uint64(ctz64(chunk))
		if zeros < 64 {
			r.bitPos = probe + zeros + 1
			return total + zeros
		}
		total += 64
		probe += 64
	}
}

func ctz64(w uint64) int {
	if w == 0 {
		return 64
	}
	n := 0
	for mask := uint64(1); mask&w == 0; mask <<= 1 {
		n++
	}
	return n
}
