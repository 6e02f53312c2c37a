package bitio

// Precomputed 16-bit-window unary decode tables, in the spirit of the
// reverse-bit LUTs built once at init time in internal/common.go of the
// teacher codec packages. Peeking 16 bits and consulting a table lets
// ReadUnary skip the bit-by-bit loop for every code that terminates within
// the first 16 bits, which covers the overwhelming majority of BV unary
// codes (reference offsets, block/interval counts).

type unaryEntry struct {
	value uint8
	bits  uint8
}

var unaryTableMSBData [1 << 16]unaryEntry
var unaryTableLSBData [1 << 16]unaryEntry

func init() {
	for w := 0; w < 1<<16; w++ {
		unaryTableMSBData[w] = computeUnaryMSB(uint16(w))
		unaryTableLSBData[w] = computeUnaryLSB(uint16(w))
	}
}

func computeUnaryMSB(w uint16) unaryEntry {
	for i := 0; i < 16; i++ {
		if w&(1<<(15-i)) != 0 {
			return unaryEntry{value: uint8(i), bits: uint8(i + 1)}
		}
	}
	return unaryEntry{} // all zero: not decodable from this window alone
}

func computeUnaryLSB(w uint16) unaryEntry {
	for i := 0; i < 16; i++ {
		if w&(1<<i) != 0 {
			return unaryEntry{value: uint8(i), bits: uint8(i + 1)}
		}
	}
	return unaryEntry{}
}

// unaryTableMSB looks up a 16-bit MSB-first window. ok is false when the
// window is all zero, meaning the code's terminator lies beyond the window
// and the caller must fall back to the word-scanning loop.
func unaryTableMSB(window uint16) (value uint64, bits uint, ok bool) {
	if window == 0 {
		return 0, 0, false
	}
	e := unaryTableMSBData[window]
	return uint64(e.value), uint(e.bits), true
}

func unaryTableLSB(window uint16) (value uint64, bits uint, ok bool) {
	if window == 0 {
		return 0, 0, false
	}
	e := unaryTableLSBData[window]
	return uint64(e.value), uint(e.bits), true
}
