package bvh

import "testing"

func TestAllocatePairReturnsLeftIndexWithRightAdjacent(t *testing.T) {
	a := NewArena(0)
	first := a.AllocatePair()
	if first != 0 {
		t.Fatalf("expected first pair to start at 0, got %d", first)
	}
	second := a.AllocatePair()
	if second != 2 {
		t.Fatalf("expected second pair to start at 2, got %d", second)
	}
	if a.Len() != 4 {
		t.Fatalf("expected 4 allocated nodes, got %d", a.Len())
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	a := NewArena(0)
	idx := a.AllocatePair()
	n := SubBVHNode{TriangleCount: 1, IndexUnion: 9}
	a.Set(idx, n)
	if got := a.Get(idx); got != n {
		t.Fatalf("got %+v want %+v", got, n)
	}
}
