package configio

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"cvarshell/internal/command"
	"cvarshell/internal/cvar"
	"cvarshell/internal/fileio"
	"cvarshell/pkg/types"
)

func newHarness(t *testing.T) (*fileio.AferoFileIo, *cvar.Manager, *command.Registry, *command.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	fio := fileio.New(fs)
	mgr := cvar.NewManager(cvar.ManagerOptions{})
	reg := command.NewRegistry(command.RegistryOptions{CVars: mgr})
	buf := command.NewBuffer(reg, mgr, nil)
	return fio, mgr, reg, buf
}

func TestSaveWritesPersistentCVarsAndClearsModified(t *testing.T) {
	fio, mgr, reg, _ := newHarness(t)
	cv, err := mgr.RegisterNew(cvar.Spec{Name: "width", Kind: cvar.KindInt, IntDefault: 80, Flags: cvar.FlagPersistent})
	require.NoError(t, err, "register")
	if err := cv.SetInt(120); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !cv.Modified() {
		t.Fatalf("expected width to be marked modified")
	}

	if err := Save(fio, "test.cfg", mgr, reg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if cv.Modified() {
		t.Fatalf("expected Modified to be cleared after save")
	}

	lines, err := readLines(fio, "test.cfg")
	require.NoError(t, err, "readLines")
	found := false
	for _, l := range lines {
		if strings.Contains(l, "width") && strings.Contains(l, "120") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a set line for width=120, got %v", lines)
	}
}

func TestSaveSkipsNonPersistentCVars(t *testing.T) {
	fio, mgr, reg, _ := newHarness(t)
	mgr.RegisterNew(cvar.Spec{Name: "volatile", Kind: cvar.KindInt})
	if err := Save(fio, "test.cfg", mgr, reg); err != nil {
		t.Fatalf("save: %v", err)
	}
	lines, _ := readLines(fio, "test.cfg")
	for _, l := range lines {
		if strings.Contains(l, "volatile") {
			t.Fatalf("did not expect a non-persistent CVar in the saved config: %v", lines)
		}
	}
}

func TestReloadRefusesWithoutForceWhenModified(t *testing.T) {
	fio, mgr, _, buf := newHarness(t)
	cv, _ := mgr.RegisterNew(cvar.Spec{Name: "width", Kind: cvar.KindInt, Flags: cvar.FlagPersistent})
	cv.SetInt(1)

	h, _ := fio.Open("test.cfg", types.FileWrite)
	_ = fio.Close(h)

	if _, err := Reload(fio, "test.cfg", mgr, buf, ReloadOptions{}); err == nil {
		t.Fatalf("expected reload to refuse when a CVar is Modified without -force")
	}
	if _, err := Reload(fio, "test.cfg", mgr, buf, ReloadOptions{Force: true}); err != nil {
		t.Fatalf("expected -force to allow reload, got %v", err)
	}
}

func TestReloadAppliesSetLinesUnderOverride(t *testing.T) {
	fio, mgr, reg, buf := newHarness(t)
	_, _ = reg, buf
	mgr.RegisterNew(cvar.Spec{Name: "width", Kind: cvar.KindInt, Flags: cvar.FlagReadOnly})

	h, _ := fio.Open("test.cfg", types.FileWrite)
	fio.WriteLine(h, `set width "42"`)
	_ = fio.Close(h)

	// register a handler for "set" so reload's ExecImmediate can dispatch it
	widthMgr := mgr
	_, err := reg.Register(command.RegisterSpec{
		Name:    "set",
		MinArgs: 2,
		MaxArgs: -1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			cv, ok := widthMgr.Find(args.Arg(0))
			if !ok {
				return nil
			}
			return cv.SetString(args.Arg(1), widthMgr)
		}),
	})
	require.NoError(t, err, "register set")

	if _, err := Reload(fio, "test.cfg", mgr, buf, ReloadOptions{}); err != nil {
		t.Fatalf("reload: %v", err)
	}
	cv, _ := mgr.Find("width")
	if cv.GetInt() != 42 {
		t.Fatalf("width = %d, want 42 (ReadOnly should have been overridden during reload)", cv.GetInt())
	}
}

func TestReloadDryRunReportsNoExecution(t *testing.T) {
	fio, mgr, _, buf := newHarness(t)
	cv, _ := mgr.RegisterNew(cvar.Spec{Name: "width", Kind: cvar.KindInt, IntDefault: 1})

	h, _ := fio.Open("test.cfg", types.FileWrite)
	fio.WriteLine(h, `set width "99" 0`)
	_ = fio.Close(h)

	diff, err := Reload(fio, "test.cfg", mgr, buf, ReloadOptions{DryRun: true})
	require.NoError(t, err, "reload dry-run")
	if diff == "" {
		t.Fatalf("expected a non-empty diff since width would change from 1 to 99")
	}
	if cv.GetInt() != 1 {
		t.Fatalf("dry-run must not apply changes, width = %d", cv.GetInt())
	}
}
