// Package bvcodec implements the BV syntactic-element codec (L4): the table
// that binds each of the nine node-record elements to a universal code
// family, and the Codec that resolves each element's decode/skip function
// once at graph-open time.
//
// The resolve-once-dispatch-monomorphically shape mirrors flate.Reader's
// step func(*Reader) field in the teacher package: rather than branching on
// a code-kind enum inside every decode call (virtual dispatch per bit),
// Codec stores one function value per element, chosen once from the
// properties file, so a hot decode loop only ever makes a direct call.
package bvcodec

import "github.com/webgraph-go/bvgraph/codes"

// Error is this package's error wrapper.
type Error string

func (e Error) Error() string { return "bvcodec: " + string(e) }

// ErrUnknownCode is returned when a properties file names a code token this
// codec does not recognize.
var ErrUnknownCode error = Error("unknown code token")

// Code identifies a universal code family, as named by the compressionflags
// tokens in a B.properties file.
type Code struct {
	Kind Kind
	K    uint // zeta/Rice parameter; unused for Unary/Gamma/Delta
}

// Kind enumerates the code families a CodeTable entry may name.
type Kind uint8

const (
	Unary Kind = iota
	Gamma
	Delta
	Zeta
)

// ParseCode parses one compressionflags token (UNARY, GAMMA, DELTA, ZETA_k).
func ParseCode(token string) (Code, error) {
	switch token {
	case "UNARY":
		return Code{Kind: Unary}, nil
	case "GAMMA":
		return Code{Kind: Gamma}, nil
	case "DELTA":
		return Code{Kind: Delta}, nil
	}
	if len(token) > 5 && token[:5] == "ZETA_" {
		k, ok := parseDigit(token[5:])
		if ok && k >= 1 && k <= 7 {
			return Code{Kind: Zeta, K: k}, nil
		}
	}
	return Code{}, ErrUnknownCode
}

func parseDigit(s string) (uint, bool) {
	if len(s) == 0 {
		return 0, false
	}
	var v uint
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint(c-'0')
	}
	return v, true
}

// decodeFn and skipFn are the resolved, monomorphic per-element functions.
type decodeFn func(codes.Reader) uint64
type skipFn func(codes.Reader)

func resolveDecode(c Code) decodeFn {
	switch c.Kind {
	case Unary:
		return codes.DecodeUnary
	case Gamma:
		return codes.DecodeGamma
	case Delta:
		return codes.DecodeDelta
	case Zeta:
		k := c.K
		return func(r codes.Reader) uint64 { return codes.DecodeZeta(r, k) }
	}
	panic(ErrUnknownCode)
}

func resolveSkip(c Code) skipFn {
	switch c.Kind {
	case Unary:
		return codes.SkipUnary
	case Gamma:
		return codes.SkipGamma
	case Delta:
		return codes.SkipDelta
	case Zeta:
		k := c.K
		return func(r codes.Reader) { codes.SkipZeta(r, k) }
	}
	panic(ErrUnknownCode)
}

// CodeTable names the code family used for each of the nine BV syntactic
// elements, as parsed from a B.properties compressionflags line.
type CodeTable struct {
	Outdegree        Code
	ReferenceOffset  Code
	BlockCount       Code
	Blocks           Code
	IntervalCount    Code
	IntervalStart    Code
	IntervalLen      Code
	FirstResidual    Code
	Residual         Code
}

// DefaultCodeTable returns the code assignment used by most published BV
// graphs: gamma for everything except reference_offset (unary) and the two
// residual elements (zeta(3)).
func DefaultCodeTable() CodeTable {
	gamma := Code{Kind: Gamma}
	return CodeTable{
		Outdegree:       gamma,
		ReferenceOffset: Code{Kind: Unary},
		BlockCount:      gamma,
		Blocks:          gamma,
		IntervalCount:   gamma,
		IntervalStart:   gamma,
		IntervalLen:     gamma,
		FirstResidual:   Code{Kind: Zeta, K: 3},
		Residual:        Code{Kind: Zeta, K: 3},
	}
}

// Codec is a CodeTable with each element's decode/skip function already
// resolved, constructed once when a graph is opened.
type Codec struct {
	table CodeTable

	decOutdegree       decodeFn
	decReferenceOffset decodeFn
	decBlockCount      decodeFn
	decBlocks          decodeFn
	decIntervalCount   decodeFn
	decIntervalStart   decodeFn
	decIntervalLen     decodeFn
	decFirstResidual   decodeFn
	decResidual        decodeFn

	skpOutdegree       skipFn
	skpReferenceOffset skipFn
	skpBlockCount      skipFn
	skpBlocks          skipFn
	skpIntervalCount   skipFn
	skpIntervalStart   skipFn
	skpIntervalLen     skipFn
	skpFirstResidual   skipFn
	skpResidual        skipFn
}

// NewCodec resolves every element of table into a monomorphic function
// value. Panics (via ErrUnknownCode) if table names an unrecognized code.
func NewCodec(table CodeTable) *Codec {
	return &Codec{
		table: table,

		decOutdegree:       resolveDecode(table.Outdegree),
		decReferenceOffset: resolveDecode(table.ReferenceOffset),
		decBlockCount:      resolveDecode(table.BlockCount),
		decBlocks:          resolveDecode(table.Blocks),
		decIntervalCount:   resolveDecode(table.IntervalCount),
		decIntervalStart:   resolveDecode(table.IntervalStart),
		decIntervalLen:     resolveDecode(table.IntervalLen),
		decFirstResidual:   resolveDecode(table.FirstResidual),
		decResidual:        resolveDecode(table.Residual),

		skpOutdegree:       resolveSkip(table.Outdegree),
		skpReferenceOffset: resolveSkip(table.ReferenceOffset),
		skpBlockCount:      resolveSkip(table.BlockCount),
		skpBlocks:          resolveSkip(table.Blocks),
		skpIntervalCount:   resolveSkip(table.IntervalCount),
		skpIntervalStart:   resolveSkip(table.IntervalStart),
		skpIntervalLen:     resolveSkip(table.IntervalLen),
		skpFirstResidual:   resolveSkip(table.FirstResidual),
		skpResidual:        resolveSkip(table.Residual),
	}
}

// Table returns the CodeTable this codec was constructed from.
func (c *Codec) Table() CodeTable { return c.table }

func (c *Codec) ReadOutdegree(r codes.Reader) uint64       { return c.decOutdegree(r) }
func (c *Codec) ReadReferenceOffset(r codes.Reader) uint64 { return c.decReferenceOffset(r) }
func (c *Codec) ReadBlockCount(r codes.Reader) uint64      { return c.decBlockCount(r) }
func (c *Codec) ReadBlock(r codes.Reader) uint64           { return c.decBlocks(r) }
func (c *Codec) ReadIntervalCount(r codes.Reader) uint64   { return c.decIntervalCount(r) }
func (c *Codec) ReadIntervalStart(r codes.Reader) uint64   { return c.decIntervalStart(r) }
func (c *Codec) ReadIntervalLen(r codes.Reader) uint64     { return c.decIntervalLen(r) }
func (c *Codec) ReadFirstResidual(r codes.Reader) uint64   { return c.decFirstResidual(r) }
func (c *Codec) ReadResidual(r codes.Reader) uint64        { return c.decResidual(r) }

func (c *Codec) SkipOutdegree(r codes.Reader)       { c.skpOutdegree(r) }
func (c *Codec) SkipReferenceOffset(r codes.Reader) { c.skpReferenceOffset(r) }
func (c *Codec) SkipBlockCount(r codes.Reader)      { c.skpBlockCount(r) }
func (c *Codec) SkipBlock(r codes.Reader)           { c.skpBlocks(r) }
func (c *Codec) SkipIntervalCount(r codes.Reader)   { c.skpIntervalCount(r) }
func (c *Codec) SkipIntervalStart(r codes.Reader)   { c.skpIntervalStart(r) }
func (c *Codec) SkipIntervalLen(r codes.Reader)     { c.skpIntervalLen(r) }
func (c *Codec) SkipFirstResidual(r codes.Reader)   { c.skpFirstResidual(r) }
func (c *Codec) SkipResidual(r codes.Reader)        { c.skpResidual(r) }
