package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"cvarshell/internal/command"
)

func (s *Set) isCmdSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "isCmd",
		Description: "isCmd NAME - report whether NAME is a registered command",
		MinArgs:     1,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			if _, ok := ctx.Commands.Find(args.Arg(0)); !ok {
				return fmt.Errorf("isCmd: %q is not a registered command", args.Arg(0))
			}
			return nil
		}),
	}
}

func (s *Set) listCmdsSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "listCmds",
		Description: "listCmds [PATTERN[/i]] - list registered commands, optionally filtered by substring",
		MinArgs:     0,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			pattern := args.Arg(0)
			fold := strings.HasSuffix(pattern, "/i")
			if fold {
				pattern = strings.TrimSuffix(pattern, "/i")
			}

			all := ctx.Commands.Enumerate()
			names := make([]string, 0, len(all))
			byName := make(map[string]*command.Command, len(all))
			for _, cmd := range all {
				name := cmd.Name()
				if pattern != "" {
					haystack, needle := name, pattern
					if fold {
						haystack, needle = strings.ToLower(name), strings.ToLower(pattern)
					}
					if !strings.Contains(haystack, needle) {
						continue
					}
				}
				names = append(names, name)
				byName[name] = cmd
			}
			sort.Strings(names)
			for _, name := range names {
				cmd := byName[name]
				line := name
				if cmd.IsAlias() {
					line += fmt.Sprintf(" (alias -> %q %s)", cmd.AliasTarget(), cmd.AliasMode())
				} else if cmd.Description() != "" {
					line += " - " + cmd.Description()
				}
				printLine(ctx, line)
			}
			return nil
		}),
	}
}

func (s *Set) helpSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "help",
		Description: "help [NAME] - show a command's description, or list every command",
		MinArgs:     0,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			if args.Len() == 0 {
				return s.listCmdsSpec().Handler.Exec(args, ctx)
			}
			cmd, ok := ctx.Commands.Find(args.Arg(0))
			if !ok {
				return fmt.Errorf("help: unknown command %q", args.Arg(0))
			}
			if cmd.IsAlias() {
				printLine(ctx, fmt.Sprintf("%s: alias for %q (%s)", cmd.Name(), cmd.AliasTarget(), cmd.AliasMode()))
				return nil
			}
			desc := cmd.Description()
			if desc == "" {
				desc = "(no description)"
			}
			if ctx.Term != nil && ctx.Term.IsTTY() {
				printLine(ctx, renderHelpMarkdown(cmd.Name(), desc))
				return nil
			}
			printLine(ctx, fmt.Sprintf("%s: %s", cmd.Name(), desc))
			return nil
		}),
	}
}

// renderHelpMarkdown formats a command's long-form help as Markdown,
// falling back to the plain "name: desc" line if rendering fails.
func renderHelpMarkdown(name, desc string) string {
	md := fmt.Sprintf("## %s\n\n%s\n", name, desc)
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return fmt.Sprintf("%s: %s", name, desc)
	}
	return strings.TrimRight(out, "\n")
}

func (s *Set) echoSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "echo",
		Description: "echo ARGS... - print each argument followed by a space",
		MinArgs:     0,
		MaxArgs:     -1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			var b strings.Builder
			for _, a := range args.Args() {
				b.WriteString(a)
				b.WriteByte(' ')
			}
			printLine(ctx, b.String())
			return nil
		}),
	}
}
