package builtin

import (
	"strings"
	"testing"

	"cvarshell/internal/command"
	"cvarshell/internal/cvar"
	"cvarshell/pkg/types"
)

type recordingTerm struct {
	lines []string
}

func (t *recordingTerm) Print(s string)                     { t.lines = append(t.lines, s) }
func (t *recordingTerm) PrintLine(s string)                 { t.lines = append(t.lines, s) }
func (t *recordingTerm) SetColor(types.ColorCode)            {}
func (t *recordingTerm) ClearScreen()                        {}
func (t *recordingTerm) IsTTY() bool                         { return false }
func (t *recordingTerm) HasInput() bool                      { return false }
func (t *recordingTerm) GetInput() (types.LogicalKey, bool)  { return types.LogicalKey{}, false }
func (t *recordingTerm) SetClipboard(string)                 {}
func (t *recordingTerm) GetClipboard() (string, bool)        { return "", false }

func newHarness(t *testing.T) (*Set, *command.Registry, *cvar.Manager, *command.Buffer) {
	t.Helper()
	mgr := cvar.NewManager(cvar.ManagerOptions{})
	reg := command.NewRegistry(command.RegistryOptions{CVars: mgr})
	buf := command.NewBuffer(reg, mgr, nil)
	s := &Set{CVars: mgr, Commands: reg, Buffer: buf}
	if err := s.Register(); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	return s, reg, mgr, buf
}

func dispatch(t *testing.T, reg *command.Registry, ctx *command.ExecContext, line string) error {
	t.Helper()
	return reg.Dispatch(command.ParseArgs(line, nil), ctx)
}

func TestSetAndPrint(t *testing.T) {
	_, reg, mgr, _ := newHarness(t)
	if _, err := mgr.RegisterNew(cvar.Spec{Name: "width", Kind: cvar.KindInt, IntDefault: 80}); err != nil {
		t.Fatalf("register cvar: %v", err)
	}
	if err := dispatch(t, reg, nil, "set width 120"); err != nil {
		t.Fatalf("set: %v", err)
	}
	cv, _ := mgr.Find("width")
	if cv.GetInt() != 120 {
		t.Fatalf("width = %d, want 120", cv.GetInt())
	}
}

func TestResetRestoresDefault(t *testing.T) {
	_, reg, mgr, _ := newHarness(t)
	mgr.RegisterNew(cvar.Spec{Name: "width", Kind: cvar.KindInt, IntDefault: 80})
	dispatch(t, reg, nil, "set width 120")
	if err := dispatch(t, reg, nil, "reset width"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	cv, _ := mgr.Find("width")
	if cv.GetInt() != 80 {
		t.Fatalf("width = %d, want 80", cv.GetInt())
	}
}

func TestToggleBool(t *testing.T) {
	_, reg, mgr, _ := newHarness(t)
	mgr.RegisterNew(cvar.Spec{Name: "debug", Kind: cvar.KindBool, BoolDefault: false})
	if err := dispatch(t, reg, nil, "toggle debug"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	cv, _ := mgr.Find("debug")
	if !cv.GetBool() {
		t.Fatalf("expected debug to be true after toggle")
	}
}

func TestVarArith(t *testing.T) {
	_, reg, mgr, _ := newHarness(t)
	mgr.RegisterNew(cvar.Spec{Name: "score", Kind: cvar.KindInt, IntDefault: 10})
	if err := dispatch(t, reg, nil, "varAdd score 5"); err != nil {
		t.Fatalf("varAdd: %v", err)
	}
	cv, _ := mgr.Find("score")
	if cv.GetInt() != 15 {
		t.Fatalf("score = %d, want 15", cv.GetInt())
	}
}

func TestIsCVarAndIsCmd(t *testing.T) {
	_, reg, mgr, _ := newHarness(t)
	mgr.RegisterNew(cvar.Spec{Name: "width", Kind: cvar.KindInt})
	ctx := &command.ExecContext{Commands: reg, CVars: mgr}
	if err := dispatch(t, reg, ctx, "isCVar width"); err != nil {
		t.Fatalf("isCVar width: %v", err)
	}
	if err := dispatch(t, reg, ctx, "isCVar nope"); err == nil {
		t.Fatalf("expected isCVar nope to fail")
	}
	if err := dispatch(t, reg, ctx, "isCmd set"); err != nil {
		t.Fatalf("isCmd set: %v", err)
	}
}

func TestAliasRoundTripsThroughListCmds(t *testing.T) {
	_, reg, mgr, buf := newHarness(t)
	term := &recordingTerm{}
	ctx := &command.ExecContext{Term: term, Commands: reg, CVars: mgr}
	if err := dispatch(t, reg, ctx, `alias greet "echo hi" -append`); err != nil {
		t.Fatalf("alias: %v", err)
	}
	if err := dispatch(t, reg, ctx, "greet"); err != nil {
		t.Fatalf("greet: %v", err)
	}
	if _, err := buf.Drain(command.ExecAll, ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	found := false
	for _, l := range term.lines {
		if strings.Contains(l, "hi") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected greet alias output, got %v", term.lines)
	}

	if err := dispatch(t, reg, ctx, "unalias greet"); err != nil {
		t.Fatalf("unalias: %v", err)
	}
	if _, ok := reg.Find("greet"); ok {
		t.Fatalf("expected greet to be gone after unalias")
	}
}

func TestListCVarsFiltersByPattern(t *testing.T) {
	_, reg, mgr, _ := newHarness(t)
	mgr.RegisterNew(cvar.Spec{Name: "video.width", Kind: cvar.KindInt})
	mgr.RegisterNew(cvar.Spec{Name: "audio.volume", Kind: cvar.KindInt})
	term := &recordingTerm{}
	ctx := &command.ExecContext{Term: term, Commands: reg, CVars: mgr}
	if err := dispatch(t, reg, ctx, "listCVars video"); err != nil {
		t.Fatalf("listCVars: %v", err)
	}
	if len(term.lines) != 1 || !strings.Contains(term.lines[0], "video.width") {
		t.Fatalf("lines = %v", term.lines)
	}
}

func TestEchoJoinsArgs(t *testing.T) {
	_, reg, mgr, _ := newHarness(t)
	term := &recordingTerm{}
	ctx := &command.ExecContext{Term: term, Commands: reg, CVars: mgr}
	if err := dispatch(t, reg, ctx, "echo one two three"); err != nil {
		t.Fatalf("echo: %v", err)
	}
	if len(term.lines) != 1 || term.lines[0] != "one two three " {
		t.Fatalf("lines = %v", term.lines)
	}
}
