package lineedit

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cvarshell/internal/command"
	"cvarshell/internal/cvar"
	"cvarshell/pkg/types"
)

// LineBufferMaxSize bounds how much text a single edit line may hold
// before further printable keys are dropped rather than accepted.
const LineBufferMaxSize = 4096

// DefaultPrompt is emitted at the start of every fresh input line.
const DefaultPrompt = "> "

// Editor is the terminal-side line-editing state machine: an edit buffer
// with a cursor, history recall, tab completion, and a handful of
// built-ins the core command registry never sees (exit, clear, the hist*
// family). It drives a Registry/Buffer/Manager triple the same way any
// other command source would, but owns the raw keystroke handling itself
// since that is inherently terminal-specific.
type Editor struct {
	Term     types.Terminal
	CVars    *cvar.Manager
	Commands *command.Registry
	CmdBuf   *command.Buffer
	History  *History
	Files    types.FileIo

	Prompt string

	// sessionID names this Editor's run for the histAutosave built-in, so
	// concurrent sessions writing to the same working directory don't
	// clobber each other's autosaved history file.
	sessionID string

	line   []rune
	cursor int

	completion completionState

	// pendingPrompt is set once a Return has queued work into CmdBuf; the
	// caller's Update loop reprints the prompt only after the buffer
	// drains, so command output and the next prompt don't interleave.
	pendingPrompt bool

	quit bool
}

// NewEditor wires an Editor to its collaborators. Term, CVars and
// Commands may be nil in a headless embedding; CmdBuf must not be nil.
func NewEditor(term types.Terminal, cvars *cvar.Manager, commands *command.Registry, buf *command.Buffer, history *History) *Editor {
	if history == nil {
		history = NewHistory(256)
	}
	e := &Editor{
		Term:      term,
		CVars:     cvars,
		Commands:  commands,
		CmdBuf:    buf,
		History:   history,
		Prompt:    DefaultPrompt,
		sessionID: uuid.NewString(),
	}
	return e
}

// ShouldQuit reports whether the exit built-in has been run.
func (e *Editor) ShouldQuit() bool { return e.quit }

func (e *Editor) redraw() {
	if e.Term == nil {
		return
	}
	e.Term.Print("\r\x1b[K")
	e.Term.Print(e.Prompt)
	e.Term.Print(string(e.line))
	back := len(e.line) - e.cursor
	if back > 0 {
		e.Term.Print(fmt.Sprintf("\x1b[%dD", back))
	}
}

func (e *Editor) printPrompt() {
	if e.Term != nil {
		e.Term.Print(e.Prompt)
	}
}

// HandleKey processes one decoded keystroke. It is the entry point a host
// event loop calls for every types.LogicalKey a Terminal produces.
func (e *Editor) HandleKey(k types.LogicalKey) {
	if k.Code != types.KeyTab {
		e.completion.reset()
	}

	switch k.Code {
	case types.KeyReturn:
		e.handleReturn()
	case types.KeyPrintable:
		e.insert(k.Rune)
	case types.KeyBackspace:
		e.backspace()
	case types.KeyDelete:
		e.delete()
	case types.KeyLeftArrow:
		e.moveLeft()
	case types.KeyRightArrow:
		e.moveRight()
	case types.KeyUpArrow:
		e.historyPrev()
	case types.KeyDownArrow:
		e.historyNext()
	case types.KeyEscape:
		e.clearLine()
		e.History.ResetTraversal()
	case types.KeyTab:
		e.handleTab()
	case types.KeyControl:
		e.handleControl(k.Rune)
	}
}

func (e *Editor) handleControl(r rune) {
	switch r {
	case 'c':
		if e.Term != nil {
			e.Term.SetClipboard(string(e.line))
		}
	case 'v':
		if e.Term == nil {
			return
		}
		if s, ok := e.Term.GetClipboard(); ok {
			for _, r := range s {
				e.insert(r)
			}
		}
	case 'l':
		if e.Term != nil {
			e.Term.ClearScreen()
		}
		e.redraw()
	case 'n':
		e.historyNext()
	case 'p':
		e.historyPrev()
	}
}

func (e *Editor) insert(r rune) {
	if len(e.line) >= LineBufferMaxSize {
		return
	}
	if e.cursor == len(e.line) {
		e.line = append(e.line, r)
		e.cursor++
		if e.Term != nil {
			e.Term.Print(string(r))
		}
		return
	}
	e.line = append(e.line[:e.cursor], append([]rune{r}, e.line[e.cursor:]...)...)
	e.cursor++
	e.redraw()
}

func (e *Editor) backspace() {
	if e.cursor == 0 {
		return
	}
	e.line = append(e.line[:e.cursor-1], e.line[e.cursor:]...)
	e.cursor--
	e.redraw()
}

func (e *Editor) delete() {
	if e.cursor >= len(e.line) {
		return
	}
	e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
	e.redraw()
}

func (e *Editor) moveLeft() {
	if e.cursor > 0 {
		e.cursor--
		e.redraw()
	}
}

func (e *Editor) moveRight() {
	if e.cursor < len(e.line) {
		e.cursor++
		e.redraw()
	}
}

func (e *Editor) clearLine() {
	e.line = nil
	e.cursor = 0
	e.redraw()
}

func (e *Editor) setLine(s string) {
	e.line = []rune(s)
	e.cursor = len(e.line)
	e.redraw()
}

func (e *Editor) historyPrev() {
	if line, ok := e.History.Prev(string(e.line)); ok {
		e.setLine(line)
	}
}

func (e *Editor) historyNext() {
	if line, ok := e.History.Next(string(e.line)); ok {
		e.setLine(line)
	}
}

func (e *Editor) handleReturn() {
	text := string(e.line)
	e.clearLine()
	if e.Term != nil {
		e.Term.PrintLine("")
	}
	if strings.TrimSpace(text) != "" {
		e.History.Add(text)
	}
	e.runLine(text)
	if e.CmdBuf == nil || e.CmdBuf.Len() == 0 {
		e.printPrompt()
	} else {
		e.pendingPrompt = true
	}
}

// Update is called by the host once per loop tick after draining CmdBuf,
// so the prompt reappears only once queued commands have finished
// producing their own output.
func (e *Editor) Update() {
	if e.pendingPrompt && (e.CmdBuf == nil || e.CmdBuf.Len() == 0) {
		e.pendingPrompt = false
		e.printPrompt()
	}
}

// runLine implements the short-form CVar interaction tried before falling
// through to a built-in or queuing the line as a user command: a bare
// name matching a CVar prints its value, a name plus arguments sets it.
func (e *Editor) runLine(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	fields := strings.Fields(trimmed)
	name := fields[0]

	if e.CVars != nil {
		if cv, ok := e.CVars.Find(name); ok && (e.Commands == nil || !hasCommand(e.Commands, name)) {
			if len(fields) == 1 {
				e.printLine(fmt.Sprintf("%s is: %q  default: %q", cv.Name(), cv.GetString(), cv.DefaultString()))
				return
			}
			rest := strings.TrimSpace(trimmed[len(name):])
			value := unquoteFirstToken(rest)
			if err := cv.SetString(value); err != nil {
				e.printLine(err.Error())
			}
			if len(fields) > 2 {
				e.printLine(fmt.Sprintf("warning: %s: extra arguments ignored", name))
			}
			return
		}
	}

	if e.runLocalBuiltin(name, fields[1:]) {
		return
	}

	if e.CmdBuf != nil {
		if err := e.CmdBuf.ExecAppend(text); err != nil {
			e.printLine(err.Error())
		}
	}
}

func hasCommand(reg *command.Registry, name string) bool {
	_, ok := reg.Find(name)
	return ok
}

func unquoteFirstToken(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : end+1]
		}
	}
	if sp := strings.IndexAny(s, " \t"); sp >= 0 {
		return s[:sp]
	}
	return s
}

func (e *Editor) printLine(s string) {
	if e.Term != nil {
		e.Term.PrintLine(s)
	}
}
