// Package bvgraph implements the core of a compressed web-graph engine in
// the BV (Boldi-Vigna WebGraph) format: it answers, for any node v in
// [0, N), deg(v) and v's sorted successor list, via either a sequential
// scan or a random-access accessor backed by an Elias-Fano offsets table.
//
// Graph construction, mutation, graph algorithms, transposition, and
// distributed access are out of scope — this package only decodes an
// existing B.graph/B.properties/B.offsets/B.ef bundle.
package bvgraph

import (
	"os"

	"github.com/dsnet/golib/errs"
	mmap "github.com/edsrzf/mmap-go"

	"github.com/webgraph-go/bvgraph/bitio"
	"github.com/webgraph-go/bvgraph/bvcodec"
	"github.com/webgraph-go/bvgraph/offsets"
	"github.com/webgraph-go/bvgraph/properties"
)

// ErrKind classifies a returned Error, matching the four failure
// categories the core must distinguish.
type ErrKind uint8

const (
	// BadArgument is a caller-side misuse: n > 64 bits, v >= N, and so on.
	BadArgument ErrKind = iota
	// CorruptStream means a decoded structure violates an invariant: a
	// reference offset past the window, a degree exceeding N, an interval
	// overflowing N, a residual run past the advertised degree.
	CorruptStream
	// IoError wraps a fault from the underlying mmap or file I/O.
	IoError
	// FormatMismatch means B.properties names a feature this decoder does
	// not support: an unknown code token, an incompatible endianness.
	FormatMismatch
)

func (k ErrKind) String() string {
	switch k {
	case BadArgument:
		return "bad argument"
	case CorruptStream:
		return "corrupt stream"
	case IoError:
		return "io error"
	case FormatMismatch:
		return "format mismatch"
	default:
		return "unknown error kind"
	}
}

// Error is the error type returned at every bvgraph API boundary. Hot-path
// invariant checks panic with an *Error (via errs.Assert) and are turned
// back into a normal returned error by errs.Recover at the boundary, the
// same convention xflate/meta uses for its bit-level format invariants.
type Error struct {
	Kind ErrKind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return "bvgraph: " + e.Kind.String() + ": " + e.msg + ": " + e.err.Error()
	}
	return "bvgraph: " + e.Kind.String() + ": " + e.msg
}

func (e *Error) Unwrap() error { return e.err }

func newErr(kind ErrKind, msg string) error { return &Error{Kind: kind, msg: msg} }

func wrapErr(kind ErrKind, msg string, err error) error {
	return &Error{Kind: kind, msg: msg, err: err}
}

var (
	errBadArgument   error = newErr(BadArgument, "invalid argument")
	errCorruptStream error = newErr(CorruptStream, "decoded structure violates an invariant")
)

// Graph is an immutable, read-only handle over a decoded BV graph's
// configuration and backing bitstream. It is cheap to copy by reference (a
// *Graph) and safe to share across goroutines; every iterator it creates
// owns its own cursor, window, and scratch state.
type Graph struct {
	numNodes int64
	numArcs  int64
	hasArcs  bool

	windowSize        int
	minIntervalLength int

	wordSize bitio.WordSize
	endian   bitio.Endian
	bitOrd   offsets.BitOrder

	codec *bvcodec.Codec

	graphData []byte
	graphMmap mmap.MMap // non-nil when Open mapped the file itself

	ef *offsets.EliasFano // nil unless random access was requested

	maxRefDepth int
	cache       *successorCache // nil when caching is disabled
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	maxRefDepth int
	lruSize     int
}

// WithMaxReferenceDepth bounds how many reference hops Successors will
// recursively follow for a single random-access decode (spec's R). The
// encoder that produced the graph is assumed to guarantee chains no
// longer than this; exceeding it is reported as CorruptStream.
func WithMaxReferenceDepth(r int) Option {
	return func(c *openConfig) { c.maxRefDepth = r }
}

// WithSuccessorCacheSize bounds the number of decoded successor lists kept
// in a random-access LRU cache. 0 disables caching.
func WithSuccessorCacheSize(n int) Option {
	return func(c *openConfig) { c.lruSize = n }
}

func defaultOpenConfig() openConfig {
	return openConfig{maxRefDepth: 64, lruSize: 0}
}

// Open loads basename.properties and memory-maps basename.graph into a new
// Graph handle. It does not read basename.ef; random access needs an
// offsets table attached with SetEliasFano.
func Open(basename string, opts ...Option) (g *Graph, err error) {
	defer errs.Recover(&err)

	cfg := defaultOpenConfig()
	for _, o := range opts {
		o(&cfg)
	}

	propFile, err := os.Open(basename + ".properties")
	if err != nil {
		return nil, wrapErr(IoError, "opening properties file", err)
	}
	defer propFile.Close()

	props, err := properties.Load(propFile)
	if err != nil {
		return nil, wrapErr(FormatMismatch, "parsing properties", err)
	}

	graphFile, err := os.Open(basename + ".graph")
	if err != nil {
		return nil, wrapErr(IoError, "opening graph file", err)
	}
	defer graphFile.Close()

	m, err := mmap.Map(graphFile, mmap.RDONLY, 0)
	if err != nil {
		return nil, wrapErr(IoError, "mapping graph file", err)
	}

	g = &Graph{
		numNodes:          props.Nodes,
		numArcs:           props.Arcs,
		hasArcs:           props.HasArcs,
		windowSize:        props.WindowSize,
		minIntervalLength: props.MinIntervalLength,
		wordSize:          bitio.Word64,
		graphData:         []byte(m),
		graphMmap:         m,
		maxRefDepth:       cfg.maxRefDepth,
	}
	if cfg.lruSize > 0 {
		g.cache = newSuccessorCache(cfg.lruSize)
	}
	if props.Endianness == properties.Little {
		g.endian = bitio.LittleEndian
	} else {
		g.endian = bitio.BigEndian
	}

	table, err := parseCompressionFlags(props.CompressionFlags)
	if err != nil {
		m.Unmap()
		return nil, wrapErr(FormatMismatch, "parsing compressionflags", err)
	}
	g.codec = bvcodec.NewCodec(table)

	if ef, ok, loadErr := tryLoadEliasFano(basename, g); loadErr != nil {
		m.Unmap()
		return nil, loadErr
	} else if ok {
		g.ef = ef
	}

	return g, nil
}

// OpenBytes constructs a Graph directly from in-memory bytes (the graph
// stream and parsed properties), bypassing the filesystem — used by tests
// and by callers that already hold the blobs. Random access requires a
// follow-up call to SetEliasFano.
func OpenBytes(graphData []byte, props *properties.Properties, opts ...Option) (*Graph, error) {
	cfg := defaultOpenConfig()
	for _, o := range opts {
		o(&cfg)
	}

	g := &Graph{
		numNodes:          props.Nodes,
		numArcs:           props.Arcs,
		hasArcs:           props.HasArcs,
		windowSize:        props.WindowSize,
		minIntervalLength: props.MinIntervalLength,
		wordSize:          bitio.Word64,
		graphData:         graphData,
		maxRefDepth:       cfg.maxRefDepth,
	}
	if cfg.lruSize > 0 {
		g.cache = newSuccessorCache(cfg.lruSize)
	}
	if props.Endianness == properties.Little {
		g.endian = bitio.LittleEndian
	} else {
		g.endian = bitio.BigEndian
	}
	table, err := parseCompressionFlags(props.CompressionFlags)
	if err != nil {
		return nil, wrapErr(FormatMismatch, "parsing compressionflags", err)
	}
	g.codec = bvcodec.NewCodec(table)
	return g, nil
}

// SetEliasFano attaches a precomputed offsets table to g, enabling
// Successors. Intended for callers (tests, offline builders) that built
// the table via offsets.BuildFromScan rather than loading a .ef file.
func (g *Graph) SetEliasFano(ef *offsets.EliasFano) { g.ef = ef }

func tryLoadEliasFano(basename string, g *Graph) (*offsets.EliasFano, bool, error) {
	// Loading a persisted .ef file's on-disk serialization format is an
	// external-serde concern the spec places out of scope (the "epserde"
	// layer in the original system). Random access is still available to
	// any caller that builds an EliasFano in-process (e.g. via
	// offsets.BuildFromScan + SetEliasFano) and skips Open's filesystem
	// path entirely.
	_ = basename
	_ = g
	return nil, false, nil
}

func parseCompressionFlags(flags string) (bvcodec.CodeTable, error) {
	if flags == "" {
		return bvcodec.DefaultCodeTable(), nil
	}
	table := bvcodec.DefaultCodeTable()
	for _, part := range splitFlags(flags) {
		k, v, ok := splitOnce(part, '=')
		if !ok {
			continue
		}
		code, err := bvcodec.ParseCode(v)
		if err != nil {
			return table, err
		}
		switch k {
		case "outdegree":
			table.Outdegree = code
		case "reference_offset":
			table.ReferenceOffset = code
		case "block_count":
			table.BlockCount = code
		case "blocks":
			table.Blocks = code
		case "interval_count":
			table.IntervalCount = code
		case "interval_start":
			table.IntervalStart = code
		case "interval_len":
			table.IntervalLen = code
		case "first_residual":
			table.FirstResidual = code
		case "residual":
			table.Residual = code
		}
	}
	return table, nil
}

func splitFlags(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, trimSpace(s[start:i]))
			start = i + 1
		}
	}
	out = append(out, trimSpace(s[start:]))
	return out
}

func splitOnce(s string, sep byte) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return trimSpace(s[:i]), trimSpace(s[i+1:]), true
		}
	}
	return "", "", false
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

// Close releases the memory-mapped backing, if Open mapped it. It is a
// no-op for graphs constructed via OpenBytes.
func (g *Graph) Close() error {
	if g.graphMmap != nil {
		return g.graphMmap.Unmap()
	}
	return nil
}

// NumNodes returns N, the node count.
func (g *Graph) NumNodes() int64 { return g.numNodes }

// NumArcsHint returns the advertised arc count and whether one was present
// in the properties file.
func (g *Graph) NumArcsHint() (int64, bool) { return g.numArcs, g.hasArcs }

// WindowSize returns the compression window W.
func (g *Graph) WindowSize() int { return g.windowSize }

// MinIntervalLength returns L_min.
func (g *Graph) MinIntervalLength() int { return g.minIntervalLength }

func (g *Graph) newBitReader() bitReader {
	src := bitio.NewByteSource(g.graphData, g.wordSize, g.endian)
	if g.bitOrd == offsets.LSBFirst {
		return bitio.NewLSBReader(src, g.wordSize)
	}
	return bitio.NewMSBReader(src, g.wordSize)
}

// bitReader is the subset of both bitio reader flavors the graph decoder
// layer needs, including Position/SeekBit for random access and offsets
// building.
type bitReader interface {
	ReadBits(n uint) uint64
	PeekBits(n uint) uint64
	SkipBits(n uint)
	ReadUnary() uint64
	Position() uint64
	SeekBit(pos uint64)
}
