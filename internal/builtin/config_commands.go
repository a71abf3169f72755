package builtin

import (
	"fmt"
	"strings"

	"cvarshell/internal/command"
	"cvarshell/internal/configio"
	"cvarshell/pkg/types"
)

func (s *Set) saveConfigSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "saveConfig",
		Description: "saveConfig PATH - write every persistent CVar and every alias to PATH",
		MinArgs:     1,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			if s.Files == nil {
				return fmt.Errorf("saveConfig: no file I/O configured")
			}
			return configio.Save(s.Files, args.Arg(0), s.CVars, ctx.Commands)
		}),
	}
}

func (s *Set) reloadConfigSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "reloadConfig",
		Description: "reloadConfig PATH [-echo] [-force] [-dry-run] - re-execute a saved config file",
		MinArgs:     1,
		MaxArgs:     4,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			if s.Files == nil {
				return fmt.Errorf("reloadConfig: no file I/O configured")
			}
			opts := configio.ReloadOptions{Term: ctx.Term}
			for i := 1; i < args.Len(); i++ {
				switch args.Arg(i) {
				case "-echo":
					opts.Echo = true
				case "-force":
					opts.Force = true
				case "-dry-run":
					opts.DryRun = true
				}
			}
			diff, err := configio.Reload(s.Files, args.Arg(0), s.CVars, s.Buffer, opts)
			if err != nil {
				return err
			}
			if opts.DryRun {
				if diff == "" {
					printLine(ctx, "reloadConfig -dry-run: no changes")
				} else {
					printLine(ctx, diff)
				}
			}
			return nil
		}),
	}
}

func (s *Set) execSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "exec",
		Description: "exec PATH-or-COMMAND - run a .cfg/.ini file's commands immediately, or append any other string to the command buffer",
		MinArgs:     1,
		MaxArgs:     -1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			target := strings.Join(args.Args(), " ")
			if isConfigPath(args.Arg(0)) && s.Files != nil {
				return execFile(s.Files, args.Arg(0), s.Buffer, ctx)
			}
			return s.Buffer.ExecAppend(target)
		}),
	}
}

func isConfigPath(path string) bool {
	return strings.HasSuffix(path, ".cfg") || strings.HasSuffix(path, ".ini")
}

func execFile(fio types.FileIo, path string, buf *command.Buffer, ctx *command.ExecContext) error {
	h, err := fio.Open(path, types.FileRead)
	if err != nil {
		return fmt.Errorf("exec: cannot open %s: %w", path, err)
	}
	defer func() { _ = fio.Close(h) }()

	for !fio.Eof(h) {
		line, ok := fio.ReadLine(h)
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if err := buf.ExecImmediate(trimmed, ctx); err != nil && ctx != nil && ctx.Term != nil {
			ctx.Term.PrintLine(err.Error())
		}
	}
	return nil
}
