package command

import (
	"fmt"

	"cvarshell/internal/cvar"
	"cvarshell/internal/registry"
	"cvarshell/internal/strutil"
	"cvarshell/pkg/types"
)

// ExecContext bundles the collaborators a Handler needs: the terminal
// sink, the owning command registry (for aliases and commands like
// listCmds/exec that talk back to the manager) and the associated CVar
// manager (for commands like set/toggle/listCVars). Any field may be nil
// in a host that doesn't wire up that collaborator; well-behaved handlers
// check before use.
type ExecContext struct {
	Term     types.Terminal
	Commands *Registry
	CVars    *cvar.Manager
}

// Handler is the single capability every command and alias implements:
// exec the parsed arguments. This collapses the source's three concrete
// handler wrapper classes (function pointer, std::function delegate,
// bound member function) into one trait.
type Handler interface {
	Exec(args *ArgVector, ctx *ExecContext) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(args *ArgVector, ctx *ExecContext) error

func (f HandlerFunc) Exec(args *ArgVector, ctx *ExecContext) error { return f(args, ctx) }

// ArgCompleter is an optional capability a Handler may also implement to
// participate in argument tab-completion.
type ArgCompleter interface {
	ArgComplete(partial string, max int) []string
}

// AliasMode selects how an alias re-submits its target string.
type AliasMode int

const (
	AliasAppend AliasMode = iota
	AliasInsert
	AliasImmediate
)

func (m AliasMode) String() string {
	switch m {
	case AliasInsert:
		return "-insert"
	case AliasImmediate:
		return "-immediate"
	default:
		return "-append"
	}
}

// Command is one registered name in the command registry: either a
// library/host-provided handler, or an alias that re-submits a fixed
// command string through the owning Buffer.
type Command struct {
	name        string
	description string
	flags       uint32
	minArgs     int
	maxArgs     int

	handler Handler

	isAlias   bool
	aliasText string
	aliasMode AliasMode
	buffer    *Buffer
}

// Name returns the command's immutable identity.
func (c *Command) Name() string { return c.name }

// Description returns the command's (possibly empty) description.
func (c *Command) Description() string { return c.description }

// Flags returns the command's user-defined flag bitset.
func (c *Command) Flags() uint32 { return c.flags }

// IsAlias reports whether this Command is an alias rather than a handler.
func (c *Command) IsAlias() bool { return c.isAlias }

// AliasTarget returns the alias's target command string ("" if not an
// alias).
func (c *Command) AliasTarget() string { return c.aliasText }

// AliasMode returns the alias's execution mode.
func (c *Command) AliasMode() AliasMode { return c.aliasMode }

// ArgCompleter returns the command's handler cast to ArgCompleter, and
// whether it implements that optional capability. An alias never does.
func (c *Command) ArgCompleter() (ArgCompleter, bool) {
	if c.isAlias || c.handler == nil {
		return nil, false
	}
	ac, ok := c.handler.(ArgCompleter)
	return ac, ok
}

func (c *Command) checkArgCount(n int) error {
	if c.minArgs >= 0 && n < c.minArgs {
		return fmt.Errorf("command %s: expected at least %d argument(s), got %d", c.name, c.minArgs, n)
	}
	if c.maxArgs >= 0 && n > c.maxArgs {
		return fmt.Errorf("command %s: expected at most %d argument(s), got %d", c.name, c.maxArgs, n)
	}
	return nil
}

// Exec runs the command's handler, or for an alias, re-submits its target
// string through the owning buffer in its configured mode).
func (c *Command) Exec(args *ArgVector, ctx *ExecContext) error {
	if err := c.checkArgCount(args.Len()); err != nil {
		return err
	}
	if c.isAlias {
		if c.buffer == nil {
			return fmt.Errorf("alias %s: not attached to a command buffer", c.name)
		}
		switch c.aliasMode {
		case AliasInsert:
			return c.buffer.ExecInsert(c.aliasText)
		case AliasImmediate:
			return c.buffer.ExecImmediate(c.aliasText, ctx)
		default:
			return c.buffer.ExecAppend(c.aliasText)
		}
	}
	return c.handler.Exec(args, ctx)
}

// Registry owns every registered command and alias, and holds a
// non-owning reference to a CVar manager for name-collision checks.
type Registry struct {
	table *registry.Table[*Command]
	cvars *cvar.Manager
	sink  types.ErrorSink

	disableMask uint32
	disableAll  bool
}

// RegistryOptions configures a new Registry.
type RegistryOptions struct {
	Buckets         int
	CaseInsensitive bool
	CVars           *cvar.Manager
	Sink            types.ErrorSink
}

// NewRegistry creates an empty command registry.
func NewRegistry(opts RegistryOptions) *Registry {
	hash := strutil.HashJenkinsOAT
	equal := strutil.Equal
	if opts.CaseInsensitive {
		hash = strutil.HashJenkinsOATFold
		equal = strutil.EqualFold
	}
	return &Registry{
		table: registry.New[*Command](opts.Buckets, hash, equal),
		cvars: opts.CVars,
		sink:  opts.Sink,
	}
}

func (r *Registry) errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if r.sink != nil {
		r.sink.Error("%s", err.Error())
	}
	return err
}

// RegisterSpec describes a command being registered.
type RegisterSpec struct {
	Name        string
	Description string
	Flags       uint32
	MinArgs     int // negative = unchecked
	MaxArgs     int // negative = unchecked
	Handler     Handler
}

// Register adds a new library/host command. It rejects an invalid name, a
// duplicate name, and a name that collides with an existing CVar.
func (r *Registry) Register(spec RegisterSpec) (*Command, error) {
	if err := ValidateName(spec.Name); err != nil {
		return nil, r.errorf("%v", err)
	}
	if r.cvars != nil {
		if _, ok := r.cvars.Find(spec.Name); ok {
			return nil, r.errorf("command %s: a CVar with that name already exists", spec.Name)
		}
	}
	if spec.Handler == nil {
		return nil, r.errorf("command %s: nil handler", spec.Name)
	}
	minArgs, maxArgs := spec.MinArgs, spec.MaxArgs
	if minArgs == 0 && maxArgs == 0 {
		minArgs, maxArgs = -1, -1
	}
	cmd := &Command{
		name:        spec.Name,
		description: spec.Description,
		flags:       spec.Flags,
		minArgs:     minArgs,
		maxArgs:     maxArgs,
		handler:     spec.Handler,
	}
	if !r.table.Link(cmd.name, cmd) {
		return nil, r.errorf("command %s: already registered", spec.Name)
	}
	return cmd, nil
}

// AliasSpec describes an alias being registered.
type AliasSpec struct {
	Name        string
	Description string
	Target      string
	Mode        AliasMode
	Buffer      *Buffer
}

// RegisterAlias adds a new alias command.
func (r *Registry) RegisterAlias(spec AliasSpec) (*Command, error) {
	if err := ValidateName(spec.Name); err != nil {
		return nil, r.errorf("%v", err)
	}
	if r.cvars != nil {
		if _, ok := r.cvars.Find(spec.Name); ok {
			return nil, r.errorf("alias %s: a CVar with that name already exists", spec.Name)
		}
	}
	cmd := &Command{
		name:        spec.Name,
		description: spec.Description,
		isAlias:     true,
		aliasText:   spec.Target,
		aliasMode:   spec.Mode,
		buffer:      spec.Buffer,
		minArgs:     -1,
		maxArgs:     -1,
	}
	if !r.table.Link(cmd.name, cmd) {
		return nil, r.errorf("command %s: already registered", spec.Name)
	}
	return cmd, nil
}

// Unregister removes a command or alias by name.
func (r *Registry) Unregister(name string) bool {
	return r.table.Unlink(name)
}

// Find looks up a command or alias by exact name.
func (r *Registry) Find(name string) (*Command, bool) {
	return r.table.Find(name)
}

// Count returns the number of registered commands and aliases.
func (r *Registry) Count() int { return r.table.Len() }

// Enumerate returns every registered command, most-recently-registered
// first.
func (r *Registry) Enumerate() []*Command {
	all := make([]*Command, 0, r.table.Len())
	r.table.Each(func(_ string, cmd *Command) bool {
		all = append(all, cmd)
		return true
	})
	return all
}

// SetDisableMask configures the dispatch-time disable filter: DisableAll
// stops every command; otherwise a command is stopped when
// (command.Flags() & mask) != 0.
func (r *Registry) SetDisableMask(mask uint32, disableAll bool) {
	r.disableMask = mask
	r.disableAll = disableAll
}

func (r *Registry) isDisabled(cmd *Command) bool {
	if r.disableAll {
		return true
	}
	return r.disableMask != 0 && cmd.flags&r.disableMask != 0
}

// Dispatch validates the name length, looks the command up, applies the
// disable mask, enforces arg-count bounds, and invokes the handler.
func (r *Registry) Dispatch(av *ArgVector, ctx *ExecContext) error {
	if len(av.Name()) >= MaxCommandNameLength {
		return r.errorf("command name %q is too long", av.Name())
	}
	cmd, ok := r.Find(av.Name())
	if !ok {
		return r.errorf("unknown command: %s", av.Name())
	}
	if r.isDisabled(cmd) {
		return r.errorf("command %s is disabled", cmd.name)
	}
	if ctx == nil {
		ctx = &ExecContext{Commands: r, CVars: r.cvars}
	} else if ctx.Commands == nil {
		ctx.Commands = r
	}
	return cmd.Exec(av, ctx)
}
