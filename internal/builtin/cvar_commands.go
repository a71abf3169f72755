package builtin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cvarshell/internal/command"
	"cvarshell/internal/cvar"
	"cvarshell/internal/logger"
)

// setModifierFlags maps the set built-in's -flag tokens to the Flag bits
// a newly created CVar is given. An unknown name with none of these still
// gets FlagUserDefined so listCVars/save can tell it apart from a
// library-registered CVar.
var setModifierFlags = map[string]cvar.Flag{
	"-persistent": cvar.FlagPersistent,
	"-volatile":   cvar.FlagVolatile,
	"-readonly":   cvar.FlagReadOnly,
	"-initonly":   cvar.FlagInitOnly,
	"-modified":   cvar.FlagModified,
}

func (s *Set) setSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "set",
		Description: "set NAME VALUE [-persistent] [-volatile] [-readonly] [-initonly] [-modified] [-semver] [-nocreate] - assign a CVar's value, creating a new user-defined string CVar if NAME is unknown",
		MinArgs:     2,
		MaxArgs:     -1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			name, value := args.Arg(0), args.Arg(1)

			var flags cvar.Flag
			noCreate, wantSemver := false, false
			for i := 2; i < args.Len(); i++ {
				tok := args.Arg(i)
				switch tok {
				case "-nocreate":
					noCreate = true
					continue
				case "-semver":
					wantSemver = true
					continue
				}
				bit, ok := setModifierFlags[tok]
				if !ok {
					return fmt.Errorf("set: unrecognized flag %q", tok)
				}
				flags |= bit
			}

			if cv, ok := s.CVars.Find(name); ok {
				old := cv.GetString()
				if err := cv.SetString(value, s.CVars); err != nil {
					return err
				}
				logger.CVarMutation(name, old, cv.GetString())
				return nil
			}
			if noCreate {
				return fmt.Errorf("set: unknown CVar %q (-nocreate given)", name)
			}
			var validator func(string) error
			if wantSemver {
				validator = cvar.IsSemverString
				if err := validator(value); err != nil {
					return fmt.Errorf("set: %w", err)
				}
			}
			_, err := s.CVars.RegisterNew(cvar.Spec{
				Name:            name,
				Kind:            cvar.KindString,
				StringDefault:   value,
				StringValidator: validator,
				Flags:           flags | cvar.FlagUserDefined,
			})
			return err
		}),
	}
}

func (s *Set) resetSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "reset",
		Description: "reset NAME - restore a CVar to its default value",
		MinArgs:     1,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			cv, ok := s.CVars.Find(args.Arg(0))
			if !ok {
				return fmt.Errorf("reset: unknown CVar %q", args.Arg(0))
			}
			old := cv.GetString()
			if err := cv.SetDefault(s.CVars); err != nil {
				return err
			}
			logger.CVarMutation(args.Arg(0), old, cv.GetString())
			return nil
		}),
	}
}

func (s *Set) toggleSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "toggle",
		Description: "toggle NAME - flip a bool CVar or advance a string/enum CVar to its next allowed value",
		MinArgs:     1,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			cv, ok := s.CVars.Find(args.Arg(0))
			if !ok {
				return fmt.Errorf("toggle: unknown CVar %q", args.Arg(0))
			}
			old := cv.GetString()
			if err := cv.Toggle(s.CVars); err != nil {
				return err
			}
			logger.CVarMutation(args.Arg(0), old, cv.GetString())
			return nil
		}),
	}
}

func (s *Set) printSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "print",
		Description: "print [NAME] - show one CVar's value, or every CVar if NAME is omitted",
		MinArgs:     0,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			if args.Len() == 0 {
				for _, cv := range s.CVars.EnumerateSorted() {
					printLine(ctx, fmt.Sprintf("%s = %s", cv.Name(), cv.GetString()))
				}
				return nil
			}
			cv, ok := s.CVars.Find(args.Arg(0))
			if !ok {
				return fmt.Errorf("print: unknown CVar %q", args.Arg(0))
			}
			printLine(ctx, fmt.Sprintf("%s = %s", cv.Name(), cv.GetString()))
			return nil
		}),
	}
}

func (s *Set) varArithSpec(name, op string) command.RegisterSpec {
	return command.RegisterSpec{
		Name:        name,
		Description: fmt.Sprintf("%s NAME OPERAND - apply %q to a numeric CVar's value", name, op),
		MinArgs:     2,
		MaxArgs:     2,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			cv, ok := s.CVars.Find(args.Arg(0))
			if !ok {
				return fmt.Errorf("%s: unknown CVar %q", name, args.Arg(0))
			}
			operand, err := strconv.ParseFloat(args.Arg(1), 64)
			if err != nil {
				return fmt.Errorf("%s: %q is not a number", name, args.Arg(1))
			}
			old := cv.GetString()
			if err := cv.Arith(op, operand, s.CVars); err != nil {
				return err
			}
			logger.CVarMutation(args.Arg(0), old, cv.GetString())
			return nil
		}),
	}
}

func (s *Set) isCVarSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "isCVar",
		Description: "isCVar NAME - report (via the process exit-style error) whether NAME is a registered CVar",
		MinArgs:     1,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			if _, ok := s.CVars.Find(args.Arg(0)); !ok {
				return fmt.Errorf("isCVar: %q is not a registered CVar", args.Arg(0))
			}
			return nil
		}),
	}
}

func (s *Set) listCVarsSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "listCVars",
		Description: "listCVars [PATTERN[/i]] [-values] [-flags] - list registered CVars, optionally filtered by substring",
		MinArgs:     0,
		MaxArgs:     -1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			var pattern string
			showValues, showFlags := false, false
			for i := 0; i < args.Len(); i++ {
				switch a := args.Arg(i); a {
				case "-values":
					showValues = true
				case "-flags":
					showFlags = true
				default:
					pattern = a
				}
			}

			var matches []*cvar.CVar
			switch {
			case pattern == "":
				matches = s.CVars.EnumerateSorted()
			case strings.HasSuffix(pattern, "/i"):
				matches = s.CVars.FindByPrefixFold(strings.TrimSuffix(pattern, "/i"))
			default:
				matches = s.CVars.FindByPrefix(pattern)
			}

			for _, cv := range matches {
				line := cv.Name()
				if showValues {
					line += " = " + cv.GetString()
				}
				if showFlags {
					line += " " + flagSummary(cv.Flags())
				}
				printLine(ctx, line)
			}
			return nil
		}),
	}
}

func flagSummary(f cvar.Flag) string {
	var parts []string
	add := func(bit cvar.Flag, name string) {
		if f.Has(bit) {
			parts = append(parts, name)
		}
	}
	add(cvar.FlagModified, "modified")
	add(cvar.FlagPersistent, "persistent")
	add(cvar.FlagVolatile, "volatile")
	add(cvar.FlagReadOnly, "readonly")
	add(cvar.FlagInitOnly, "initonly")
	add(cvar.FlagRangeCheck, "rangecheck")
	add(cvar.FlagUserDefined, "userdefined")
	if len(parts) == 0 {
		return "[]"
	}
	sort.Strings(parts)
	return "[" + strings.Join(parts, ",") + "]"
}

func printLine(ctx *command.ExecContext, line string) {
	if ctx != nil && ctx.Term != nil {
		ctx.Term.PrintLine(line)
	}
}
