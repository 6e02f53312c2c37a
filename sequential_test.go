package bvgraph

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSequentialScanMatchesFixture(t *testing.T) {
	fx := buildArcListFixture()
	g, err := OpenBytes(fx.data, fx.props)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	it := g.Scan()
	var got [][]uint64
	for it.Next() {
		got = append(got, append([]uint64(nil), it.Successors()...))
	}
	if err := it.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(got) != len(fx.want) {
		t.Fatalf("got %d nodes, want %d", len(got), len(fx.want))
	}
	for v := range fx.want {
		if diff := cmp.Diff(fx.want[v], got[v], cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("node %d successors mismatch (-want +got):\n%s", v, diff)
		}
	}
}

func TestSequentialScanEmptyGraph(t *testing.T) {
	fx := buildEmptyGraphFixture()
	g, err := OpenBytes(fx.data, fx.props)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	it := g.Scan()
	if !it.Next() {
		t.Fatalf("expected one node, got none (err=%v)", it.Err())
	}
	if it.Node() != 0 {
		t.Errorf("Node() = %d, want 0", it.Node())
	}
	if len(it.Successors()) != 0 {
		t.Errorf("Successors() = %v, want empty", it.Successors())
	}
	if it.Next() {
		t.Fatal("expected exactly one node")
	}
}

func TestSequentialScanSuccessorsAreSortedAndInRange(t *testing.T) {
	fx := buildArcListFixture()
	g, err := OpenBytes(fx.data, fx.props)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	it := g.Scan()
	for it.Next() {
		succ := it.Successors()
		for i, s := range succ {
			if s >= uint64(g.NumNodes()) {
				t.Errorf("node %d: successor %d out of range [0,%d)", it.Node(), s, g.NumNodes())
			}
			if i > 0 && succ[i-1] >= s {
				t.Errorf("node %d: successors not strictly increasing: %v", it.Node(), succ)
			}
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
}

func TestSequentialScanDegreeSumMatchesArcsHint(t *testing.T) {
	fx := buildArcListFixture()
	g, err := OpenBytes(fx.data, fx.props)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	arcs, has := g.NumArcsHint()
	if !has {
		t.Fatal("expected an arcs hint")
	}
	var sum int64
	it := g.Scan()
	for it.Next() {
		sum += int64(len(it.Successors()))
	}
	if err := it.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if sum != arcs {
		t.Errorf("sum of degrees = %d, want %d", sum, arcs)
	}
}

func TestSequentialScanChainFixture(t *testing.T) {
	fx := buildChainFixture()
	g, err := OpenBytes(fx.data, fx.props)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	it := g.Scan()
	var got [][]uint64
	for it.Next() {
		got = append(got, append([]uint64(nil), it.Successors()...))
	}
	if err := it.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	for v := range fx.want {
		if diff := cmp.Diff(fx.want[v], got[v], cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("node %d successors mismatch (-want +got):\n%s", v, diff)
		}
	}
}

func TestSortUint64sSmallAndLarge(t *testing.T) {
	small := []uint64{5, 3, 1, 4, 2}
	sortUint64s(small)
	if !reflect.DeepEqual(small, []uint64{1, 2, 3, 4, 5}) {
		t.Errorf("small sort = %v", small)
	}

	large := make([]uint64, 200)
	for i := range large {
		large[i] = uint64(len(large) - i)
	}
	sortUint64s(large)
	for i := 1; i < len(large); i++ {
		if large[i-1] > large[i] {
			t.Fatalf("large sort not ascending at %d: %v, %v", i, large[i-1], large[i])
		}
	}
}
