package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cvarshell/internal/cvar"
)

func TestRegisterDuplicateNameRejected(t *testing.T) {
	reg, _ := newTestRegistry(t)
	h := HandlerFunc(func(args *ArgVector, ctx *ExecContext) error { return nil })
	if _, err := reg.Register(RegisterSpec{Name: "dup", Handler: h}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := reg.Register(RegisterSpec{Name: "dup", Handler: h}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRegisterCVarCollisionRejected(t *testing.T) {
	reg, mgr := newTestRegistry(t)
	if _, err := mgr.RegisterNew(cvar.Spec{Name: "width", Kind: cvar.KindInt}); err != nil {
		t.Fatalf("register cvar: %v", err)
	}
	h := HandlerFunc(func(args *ArgVector, ctx *ExecContext) error { return nil })
	if _, err := reg.Register(RegisterSpec{Name: "width", Handler: h}); err == nil {
		t.Fatalf("expected command name colliding with a CVar to be rejected")
	}
}

func TestRegisterInvalidNameRejected(t *testing.T) {
	reg, _ := newTestRegistry(t)
	h := HandlerFunc(func(args *ArgVector, ctx *ExecContext) error { return nil })
	if _, err := reg.Register(RegisterSpec{Name: "bad.name", Handler: h}); err == nil {
		t.Fatalf("expected dotted command name to be rejected")
	}
}

func TestDispatchArgCountBounds(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.Register(RegisterSpec{
		Name:    "need2",
		MinArgs: 2,
		MaxArgs: 2,
		Handler: HandlerFunc(func(args *ArgVector, ctx *ExecContext) error { return nil }),
	})
	require.NoError(t, err, "register")
	if err := reg.Dispatch(ParseArgs("need2 one", nil), nil); err == nil {
		t.Fatalf("expected too-few-arguments error")
	}
	if err := reg.Dispatch(ParseArgs("need2 one two three", nil), nil); err == nil {
		t.Fatalf("expected too-many-arguments error")
	}
	if err := reg.Dispatch(ParseArgs("need2 one two", nil), nil); err != nil {
		t.Fatalf("expected exact arg count to succeed, got %v", err)
	}
}

func TestUnregisterRemovesCommand(t *testing.T) {
	reg, _ := newTestRegistry(t)
	_, err := reg.Register(RegisterSpec{
		Name:    "temp",
		Handler: HandlerFunc(func(args *ArgVector, ctx *ExecContext) error { return nil }),
	})
	require.NoError(t, err, "register")
	if !reg.Unregister("temp") {
		t.Fatalf("expected Unregister to report success")
	}
	if _, ok := reg.Find("temp"); ok {
		t.Fatalf("expected temp to be gone after unregister")
	}
}
