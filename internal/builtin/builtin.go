// Package builtin implements the default command set every host gets for
// free: CVar manipulation (set/reset/toggle/print/varAdd...), command and
// CVar introspection (isCmd/isCVar/listCmds/listCVars/help), aliasing, and
// config file save/reload/exec. Each command is grounded on the same
// Name/Description/Usage/Execute shape the rest of this codebase's command
// set follows, adapted to the command.Handler contract.
package builtin

import (
	"cvarshell/internal/command"
	"cvarshell/internal/cvar"
	"cvarshell/internal/logger"
	"cvarshell/pkg/types"
)

// Set bundles the collaborators the default command set needs and
// registers every builtin against a command.Registry in one call.
type Set struct {
	CVars    *cvar.Manager
	Commands *command.Registry
	Buffer   *command.Buffer
	Files    types.FileIo
}

// Register adds every builtin command to s.Commands. It stops at the
// first registration failure (a duplicate name, most likely a host
// misconfiguration) and returns it.
func (s *Set) Register() error {
	specs := []command.RegisterSpec{
		s.setSpec(),
		s.resetSpec(),
		s.toggleSpec(),
		s.printSpec(),
		s.varArithSpec("varAdd", "+"),
		s.varArithSpec("varSub", "-"),
		s.varArithSpec("varMul", "*"),
		s.varArithSpec("varDiv", "/"),
		s.isCVarSpec(),
		s.listCVarsSpec(),
		s.isCmdSpec(),
		s.listCmdsSpec(),
		s.helpSpec(),
		s.echoSpec(),
		s.aliasSpec(),
		s.unaliasSpec(),
		s.saveConfigSpec(),
		s.reloadConfigSpec(),
		s.execSpec(),
	}
	for _, spec := range specs {
		spec.Handler = logDispatch(spec.Name, spec.Handler)
		if _, err := s.Commands.Register(spec); err != nil {
			return err
		}
	}
	return nil
}

// logDispatch wraps a builtin's handler with a debug-level CommandDispatch
// trace, so every builtin invocation shows up in the log the way
// internal/logger's doc comment describes for "this module's own ...
// built-ins" without requiring the command package itself to depend on
// logger.
func logDispatch(name string, h command.Handler) command.Handler {
	return command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
		logger.CommandDispatch(name, args.Args())
		return h.Exec(args, ctx)
	})
}
