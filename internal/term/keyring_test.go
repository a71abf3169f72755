package term

import (
	"testing"

	"cvarshell/pkg/types"
)

func TestKeyRingFIFOOrder(t *testing.T) {
	r := newKeyRing(4)
	r.push(types.LogicalKey{Code: types.KeyPrintable, Rune: 'a'})
	r.push(types.LogicalKey{Code: types.KeyPrintable, Rune: 'b'})

	k, ok := r.tryPop()
	if !ok || k.Rune != 'a' {
		t.Fatalf("expected 'a' first, got %+v ok=%v", k, ok)
	}
	k, ok = r.tryPop()
	if !ok || k.Rune != 'b' {
		t.Fatalf("expected 'b' second, got %+v ok=%v", k, ok)
	}
	if _, ok := r.tryPop(); ok {
		t.Fatalf("expected empty ring to report false")
	}
}

func TestKeyRingDropsOldestOnOverflow(t *testing.T) {
	r := newKeyRing(2)
	r.push(types.LogicalKey{Code: types.KeyPrintable, Rune: '1'})
	r.push(types.LogicalKey{Code: types.KeyPrintable, Rune: '2'})
	r.push(types.LogicalKey{Code: types.KeyPrintable, Rune: '3'})

	if r.len() != 2 {
		t.Fatalf("len = %d, want 2", r.len())
	}
	k, _ := r.tryPop()
	if k.Rune != '2' {
		t.Fatalf("expected oldest ('1') to have been dropped, got first=%q", k.Rune)
	}
}

func TestDecodeRuneClassification(t *testing.T) {
	cases := map[rune]types.LogicalKeyCode{
		'a':  types.KeyPrintable,
		'\t': types.KeyTab,
		127:  types.KeyBackspace,
		27:   types.KeyEscape,
		1:    types.KeyControl,
	}
	for r, want := range cases {
		got := decodeRune(r)
		if got.Code != want {
			t.Errorf("decodeRune(%q) = %v, want %v", r, got.Code, want)
		}
	}
}
