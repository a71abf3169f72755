package registry

import (
	"testing"

	"cvarshell/internal/strutil"
)

func newTestTable() *Table[int] {
	return New[int](17, strutil.HashJenkinsOAT, strutil.Equal)
}

func TestLinkFindUnlink(t *testing.T) {
	tbl := newTestTable()
	if !tbl.Link("alpha", 1) {
		t.Fatalf("expected first link to succeed")
	}
	if tbl.Link("alpha", 2) {
		t.Fatalf("expected duplicate link to fail")
	}
	v, ok := tbl.Find("alpha")
	if !ok || v != 1 {
		t.Fatalf("Find(alpha) = %d, %v", v, ok)
	}
	if !tbl.Unlink("alpha") {
		t.Fatalf("expected unlink to succeed")
	}
	if _, ok := tbl.Find("alpha"); ok {
		t.Fatalf("expected alpha to be gone after unlink")
	}
	if tbl.Unlink("alpha") {
		t.Fatalf("expected second unlink to fail")
	}
}

func TestRemoveAll(t *testing.T) {
	tbl := newTestTable()
	tbl.Link("a", 1)
	tbl.Link("b", 2)
	tbl.Link("c", 3)
	if tbl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tbl.Len())
	}
	tbl.RemoveAll()
	if tbl.Len() != 0 {
		t.Fatalf("Len() after RemoveAll = %d, want 0", tbl.Len())
	}
	if _, ok := tbl.Find("a"); ok {
		t.Fatalf("expected empty table after RemoveAll")
	}
}

func TestEachIsMostRecentFirst(t *testing.T) {
	tbl := newTestTable()
	tbl.Link("first", 1)
	tbl.Link("second", 2)
	tbl.Link("third", 3)

	var order []string
	tbl.Each(func(key string, _ int) bool {
		order = append(order, key)
		return true
	})
	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestEachEarlyStop(t *testing.T) {
	tbl := newTestTable()
	tbl.Link("a", 1)
	tbl.Link("b", 2)
	tbl.Link("c", 3)

	var seen int
	tbl.Each(func(_ string, _ int) bool {
		seen++
		return seen < 1
	})
	if seen != 1 {
		t.Fatalf("expected early stop after first entry, saw %d", seen)
	}
}

func TestUnlinkMiddleOfChain(t *testing.T) {
	// Force collisions into the same bucket by using a tiny bucket count.
	tbl := New[int](1, strutil.HashJenkinsOAT, strutil.Equal)
	tbl.Link("a", 1)
	tbl.Link("b", 2)
	tbl.Link("c", 3)
	if !tbl.Unlink("b") {
		t.Fatalf("expected unlink of middle chain entry to succeed")
	}
	if _, ok := tbl.Find("a"); !ok {
		t.Fatalf("expected a to survive")
	}
	if _, ok := tbl.Find("c"); !ok {
		t.Fatalf("expected c to survive")
	}
	if _, ok := tbl.Find("b"); ok {
		t.Fatalf("expected b to be gone")
	}
}

func TestCaseFoldedTable(t *testing.T) {
	tbl := New[int](17, strutil.HashJenkinsOATFold, strutil.EqualFold)
	tbl.Link("MyVar", 1)
	if _, ok := tbl.Find("myvar"); !ok {
		t.Fatalf("expected case-insensitive lookup to find MyVar")
	}
	if tbl.Link("MYVAR", 2) {
		t.Fatalf("expected case-insensitive duplicate to be rejected")
	}
}

func TestZeroHashPanics(t *testing.T) {
	tbl := New[int](17, func(string) uint32 { return 0 }, strutil.Equal)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on zero hash")
		}
	}()
	tbl.Link("x", 1)
}
