package builtin

import (
	"fmt"

	"cvarshell/internal/command"
)

func (s *Set) aliasSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "alias",
		Description: "alias NAME TARGET [-append|-insert|-immediate] [DESCRIPTION] - define a command alias",
		MinArgs:     2,
		MaxArgs:     4,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			name, target := args.Arg(0), args.Arg(1)
			mode := command.AliasAppend
			description := ""
			for i := 2; i < args.Len(); i++ {
				switch a := args.Arg(i); a {
				case "-append":
					mode = command.AliasAppend
				case "-insert":
					mode = command.AliasInsert
				case "-immediate":
					mode = command.AliasImmediate
				default:
					description = a
				}
			}
			_, err := ctx.Commands.RegisterAlias(command.AliasSpec{
				Name:        name,
				Description: description,
				Target:      target,
				Mode:        mode,
				Buffer:      s.Buffer,
			})
			return err
		}),
	}
}

func (s *Set) unaliasSpec() command.RegisterSpec {
	return command.RegisterSpec{
		Name:        "unalias",
		Description: "unalias NAME - remove a previously defined alias",
		MinArgs:     1,
		MaxArgs:     1,
		Handler: command.HandlerFunc(func(args *command.ArgVector, ctx *command.ExecContext) error {
			cmd, ok := ctx.Commands.Find(args.Arg(0))
			if !ok || !cmd.IsAlias() {
				return fmt.Errorf("unalias: %q is not a registered alias", args.Arg(0))
			}
			ctx.Commands.Unregister(args.Arg(0))
			return nil
		}),
	}
}
