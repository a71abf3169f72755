package strutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualFold(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Hello", "hello", true},
		{"HELLO", "hello", true},
		{"hello", "world", false},
		{"abc", "abcd", false},
		{"", "", true},
	}
	for _, c := range cases {
		if got := EqualFold(c.a, c.b); got != c.want {
			t.Errorf("EqualFold(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestHashJenkinsOATStable(t *testing.T) {
	h1 := HashJenkinsOAT("r_width")
	h2 := HashJenkinsOAT("r_width")
	if h1 != h2 {
		t.Fatalf("hash not stable: %d != %d", h1, h2)
	}
	if HashJenkinsOAT("r_width") == HashJenkinsOAT("r_height") {
		t.Fatalf("unexpected hash collision between distinct short keys")
	}
}

func TestHashJenkinsOATFoldMatchesLowercase(t *testing.T) {
	if HashJenkinsOATFold("SomeVar") != HashJenkinsOATFold("somevar") {
		t.Fatalf("case-folded hash should ignore ASCII case")
	}
	if HashJenkinsOATFold("SomeVar") != HashJenkinsOAT("somevar") {
		t.Fatalf("case-folded hash of mixed case should equal case-sensitive hash of lowercase")
	}
}

func TestParseIntBaseZero(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10", 10},
		{"0x1F", 31},
		{"010", 8},
		{" -5 ", -5},
	}
	for _, c := range cases {
		got, err := ParseInt(c.in)
		require.NoError(t, err, "ParseInt(%q)", c.in)
		if got != c.want {
			t.Errorf("ParseInt(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseIntRejectsGarbage(t *testing.T) {
	if _, err := ParseInt("5garbage"); err == nil {
		t.Fatalf("expected error for trailing garbage")
	}
	if _, err := ParseInt(""); err == nil {
		t.Fatalf("expected error for empty string")
	}
}

func TestFormatInt(t *testing.T) {
	if FormatInt(255, 16) != "ff" {
		t.Errorf("hex rendering mismatch: %s", FormatInt(255, 16))
	}
	if FormatInt(8, 8) != "10" {
		t.Errorf("octal rendering mismatch: %s", FormatInt(8, 8))
	}
	if FormatInt(5, 2) != "101" {
		t.Errorf("binary rendering mismatch: %s", FormatInt(5, 2))
	}
}

func TestTrimTrailingZeros(t *testing.T) {
	if got := TrimTrailingZeros("1.500000"); got != "1.5" {
		t.Errorf("got %q", got)
	}
	if got := TrimTrailingZeros("2.000000"); got != "2" {
		t.Errorf("got %q", got)
	}
	if got := TrimTrailingZeros("2"); got != "2" {
		t.Errorf("got %q", got)
	}
}
