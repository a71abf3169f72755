package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cvarshell/internal/cvar"
)

func TestExtractNextCommandSeparator(t *testing.T) {
	cmd, rest, overflowed := ExtractNextCommand("echo hi;echo bye", nil, nil)
	if overflowed {
		t.Fatalf("unexpected overflow")
	}
	if cmd != "echo hi" {
		t.Fatalf("cmd = %q", cmd)
	}
	if rest != "echo bye" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestExtractNextCommandSkipsLeadingSeparators(t *testing.T) {
	cmd, rest, _ := ExtractNextCommand("  ; ;echo hi", nil, nil)
	if cmd != "echo hi" || rest != "" {
		t.Fatalf("cmd=%q rest=%q", cmd, rest)
	}
}

func TestExtractNextCommandLineContinuation(t *testing.T) {
	cmd, _, _ := ExtractNextCommand("echo a\\\nb", nil, nil)
	if cmd != "echo ab" {
		t.Fatalf("cmd = %q, want %q", cmd, "echo ab")
	}
}

func TestExtractNextCommandStrayBackslashDiscarded(t *testing.T) {
	cmd, _, _ := ExtractNextCommand(`echo a\b`, nil, nil)
	if cmd != "echo ab" {
		t.Fatalf("cmd = %q, want %q", cmd, "echo ab")
	}
}

func TestExtractNextCommandSemicolonInsideQuoteDoesNotEnd(t *testing.T) {
	cmd, rest, _ := ExtractNextCommand(`echo "a;b";echo c`, nil, nil)
	if cmd != `echo "a;b"` {
		t.Fatalf("cmd = %q", cmd)
	}
	if rest != "echo c" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestExtractNextCommandCRIgnored(t *testing.T) {
	cmd, _, _ := ExtractNextCommand("echo a\r\nb", nil, nil)
	// \r is dropped, \n ends the command
	if cmd != "echo a" {
		t.Fatalf("cmd = %q", cmd)
	}
}

func newTestCVarManager(t *testing.T) *cvar.Manager {
	t.Helper()
	return cvar.NewManager(cvar.ManagerOptions{})
}

func TestSubstitutionEquivalenceScenario(t *testing.T) {
	// If CVar x has value V, then executing
	// cmd $(x) and executing cmd V invoke the handler with the same
	// argument vector."
	mgr := newTestCVarManager(t)
	_, err := mgr.RegisterNew(cvar.Spec{Name: "name", Kind: cvar.KindString, StringDefault: "World"})
	require.NoError(t, err, "register")

	cmdA, _, overA := ExtractNextCommand("echo $(name)", mgr, nil)
	cmdB, _, overB := ExtractNextCommand("echo World", mgr, nil)
	if overA || overB {
		t.Fatalf("unexpected overflow")
	}
	avA := ParseArgs(cmdA, nil)
	avB := ParseArgs(cmdB, nil)
	if avA.Name() != avB.Name() || avA.Args()[0] != avB.Args()[0] {
		t.Fatalf("substitution mismatch: %v vs %v", avA.Args(), avB.Args())
	}
}

func TestSubstitutionUnknownCVarErrors(t *testing.T) {
	mgr := newTestCVarManager(t)
	sink := &spySink{}
	cmd, _, _ := ExtractNextCommand("echo $(undef)", mgr, sink)
	if cmd != "" {
		t.Fatalf("expected the surrounding command to be discarded, got %q", cmd)
	}
	if len(sink.msgs) == 0 {
		t.Fatalf("expected an error to be reported")
	}
}

func TestSubstitutionNoManagerErrors(t *testing.T) {
	sink := &spySink{}
	cmd, _, _ := ExtractNextCommand("echo $(name)", nil, sink)
	if cmd != "" {
		t.Fatalf("expected discard, got %q", cmd)
	}
	if len(sink.msgs) == 0 {
		t.Fatalf("expected an error")
	}
}

func TestSubstitutionUnbalancedParens(t *testing.T) {
	mgr := newTestCVarManager(t)
	sink := &spySink{}
	_, _, err := expandCVar("$(a(b)", mgr, sink, 0)
	if err == nil {
		t.Fatalf("expected unbalanced parens error")
	}
}

func TestSubstitutionDepthLimit(t *testing.T) {
	mgr := newTestCVarManager(t)
	sink := &spySink{}
	nested := "$("
	for i := 0; i < 20; i++ {
		nested = "$(" + nested
	}
	_, _, err := expandCVar(nested+"x"+closeParens(21), mgr, sink, 0)
	if err == nil {
		t.Fatalf("expected depth-limit error")
	}
}

func closeParens(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ")"
	}
	return s
}
