// Package term implements the default types.Terminal binding this module
// ships with: chzyer/readline for raw-mode input and key decoding,
// termenv for ANSI color, and golang.design/x/clipboard for the clipboard
// pair. A host embedding the engine may substitute its own Terminal
// entirely; this is just the batteries-included default.
package term

import (
	"os"
	"sync"

	"github.com/chzyer/readline"
	"github.com/muesli/termenv"
	"golang.design/x/clipboard"
	xterm "golang.org/x/term"

	"cvarshell/pkg/types"
)

// ansiColors maps a ColorCode to the termenv ANSI color it renders as; the
// numbering matches the standard 30-37 SGR foreground range.
var ansiColors = map[types.ColorCode]termenv.ANSIColor{
	types.ColorRed:     termenv.ANSIColor(1),
	types.ColorGreen:   termenv.ANSIColor(2),
	types.ColorYellow:  termenv.ANSIColor(3),
	types.ColorBlue:    termenv.ANSIColor(4),
	types.ColorMagenta: termenv.ANSIColor(5),
	types.ColorCyan:    termenv.ANSIColor(6),
	types.ColorWhite:   termenv.ANSIColor(7),
}

// keyRing is a small SPSC ring buffer feeding the background reader
// goroutine to the foreground consumer without an unbounded channel.
type keyRing struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  []types.LogicalKey
	cap  int
}

func newKeyRing(capacity int) *keyRing {
	r := &keyRing{buf: make([]types.LogicalKey, 0, capacity), cap: capacity}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *keyRing) push(k types.LogicalKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.buf) >= r.cap {
		r.buf = r.buf[1:] // drop oldest on overflow rather than block the reader
	}
	r.buf = append(r.buf, k)
	r.cond.Signal()
}

func (r *keyRing) tryPop() (types.LogicalKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.buf) == 0 {
		return types.LogicalKey{}, false
	}
	k := r.buf[0]
	r.buf = r.buf[1:]
	return k, true
}

func (r *keyRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// ANSITerminal is the default types.Terminal implementation.
type ANSITerminal struct {
	rl          *readline.Instance
	colorOn     bool
	clipboardOK bool

	keys *keyRing
}

// Options configures a new ANSITerminal.
type Options struct {
	// NoColor disables SGR color emission even on a TTY.
	NoColor bool
	// RingCapacity bounds the background input ring (default 256).
	RingCapacity int
}

// New constructs an ANSITerminal. Clipboard support is best-effort: if the
// host platform has no clipboard backend, SetClipboard/GetClipboard fall
// back to an in-process string.
func New(opts Options) (*ANSITerminal, error) {
	rl, err := readline.New("")
	if err != nil {
		return nil, err
	}
	capacity := opts.RingCapacity
	if capacity <= 0 {
		capacity = 256
	}
	t := &ANSITerminal{
		rl:      rl,
		colorOn: !opts.NoColor && termenv.NewOutput(os.Stdout).Profile != termenv.Ascii,
		keys:    newKeyRing(capacity),
	}
	if err := clipboard.Init(); err == nil {
		t.clipboardOK = true
	}
	go t.readLoop()
	return t, nil
}

// readLoop pulls whole lines from readline (its own key decoding already
// handles arrow keys, backspace and history recall in raw mode) and
// re-expands each line into the discrete LogicalKey events the line
// editor's state machine consumes, terminated by a KeyReturn.
func (t *ANSITerminal) readLoop() {
	for {
		line, err := t.rl.Readline()
		if err != nil {
			return
		}
		for _, r := range line {
			t.keys.push(decodeRune(r))
		}
		t.keys.push(types.LogicalKey{Code: types.KeyReturn})
	}
}

func decodeRune(r rune) types.LogicalKey {
	switch r {
	case '\t':
		return types.LogicalKey{Code: types.KeyTab}
	case 127, '\b':
		return types.LogicalKey{Code: types.KeyBackspace}
	case 27:
		return types.LogicalKey{Code: types.KeyEscape}
	}
	if r < 32 {
		return types.LogicalKey{Code: types.KeyControl, Rune: r}
	}
	return types.LogicalKey{Code: types.KeyPrintable, Rune: r}
}

// Print implements types.Terminal.
func (t *ANSITerminal) Print(s string) { t.rl.Stdout().Write([]byte(s)) }

// PrintLine implements types.Terminal.
func (t *ANSITerminal) PrintLine(s string) { t.rl.Stdout().Write([]byte(s + "\n")) }

// SetColor implements types.Terminal; it emits an SGR sequence when color
// is enabled, restoring default styling for ColorRestore.
func (t *ANSITerminal) SetColor(code types.ColorCode) {
	if !t.colorOn {
		return
	}
	if code == types.ColorRestore {
		t.rl.Stdout().Write([]byte("\x1b[0m"))
		return
	}
	col, ok := ansiColors[code]
	if !ok {
		return
	}
	t.rl.Stdout().Write([]byte("\x1b[" + col.Sequence(false) + "m"))
}

// ClearScreen implements types.Terminal.
func (t *ANSITerminal) ClearScreen() { t.rl.Stdout().Write([]byte("\x1b[2J\x1b[H")) }

// IsTTY implements types.Terminal.
func (t *ANSITerminal) IsTTY() bool { return xterm.IsTerminal(int(os.Stdout.Fd())) }

// HasInput implements types.Terminal, polling the background reader ring.
func (t *ANSITerminal) HasInput() bool { return t.keys.len() > 0 }

// GetInput implements types.Terminal.
func (t *ANSITerminal) GetInput() (types.LogicalKey, bool) { return t.keys.tryPop() }

var fallbackClipboard string

// SetClipboard implements types.Terminal.
func (t *ANSITerminal) SetClipboard(s string) {
	if t.clipboardOK {
		clipboard.Write(clipboard.FmtText, []byte(s))
		return
	}
	fallbackClipboard = s
}

// GetClipboard implements types.Terminal.
func (t *ANSITerminal) GetClipboard() (string, bool) {
	if t.clipboardOK {
		data := clipboard.Read(clipboard.FmtText)
		if data == nil {
			return "", false
		}
		return string(data), true
	}
	if fallbackClipboard == "" {
		return "", false
	}
	return fallbackClipboard, true
}

// Close releases the underlying readline instance.
func (t *ANSITerminal) Close() error { return t.rl.Close() }
