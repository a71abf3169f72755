package lineedit

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// MaxCompletionMatches bounds how many names a single Tab listing shows.
const MaxCompletionMatches = 64

// completionState tracks the Idle/Cycling tab-completion sub-machine: the
// first Tab on a non-empty prefix lists or completes matches, a second
// Tab on the same prefix (with no intervening edit) cycles through them.
type completionState struct {
	active   bool
	matches  []string
	index    int
	prefix   string // the text being completed, replaced on each cycle
	awaiting bool   // first Tab on an empty line printed the hint; waiting for a second
	applied  bool   // a cycled match is already on the line
}

func (c *completionState) reset() {
	c.active = false
	c.matches = nil
	c.index = 0
	c.awaiting = false
	c.applied = false
}

func (e *Editor) handleTab() {
	text := string(e.line)

	if e.completion.active {
		e.cycleCompletion()
		return
	}

	if strings.TrimSpace(text) == "" {
		if e.completion.awaiting {
			e.completion.awaiting = false
			e.listAllCommands()
			return
		}
		e.completion.awaiting = true
		e.printLine("Press Tab again to list commands")
		return
	}

	if target, name, ok := findOpenSubstitution(text, e.cursor); ok {
		e.completeCVarName(target, name)
		return
	}

	fields := strings.Fields(text[:e.cursor])
	if len(fields) <= 1 && !strings.HasSuffix(text[:e.cursor], " ") {
		e.completeCommandName(fields)
		return
	}

	e.completeArgument(fields)
}

func (e *Editor) listAllCommands() {
	names := e.allNames()
	sort.Strings(names)
	if len(names) > MaxCompletionMatches {
		names = names[:MaxCompletionMatches]
	}
	e.printLine(e.formatMatchColumns("", names))
}

func (e *Editor) allNames() []string {
	var names []string
	if e.CVars != nil {
		for _, cv := range e.CVars.EnumerateSorted() {
			names = append(names, cv.Name())
		}
	}
	if e.Commands != nil {
		for _, c := range e.Commands.Enumerate() {
			names = append(names, c.Name())
		}
	}
	return names
}

// completeCommandName completes a bare leading word against built-ins,
// then CVar names, then registered command names.
func (e *Editor) completeCommandName(fields []string) {
	prefix := ""
	if len(fields) == 1 {
		prefix = fields[0]
	}

	var matches []string
	matches = append(matches, matchPrefix(localBuiltinNames, prefix)...)
	if e.CVars != nil {
		for _, cv := range e.CVars.FindByPrefix(prefix) {
			matches = append(matches, cv.Name())
		}
	}
	if e.Commands != nil {
		for _, c := range e.Commands.Enumerate() {
			if strings.HasPrefix(c.Name(), prefix) {
				matches = append(matches, c.Name())
			}
		}
	}
	matches = dedupSorted(matches)
	e.presentMatches(prefix, matches, func(m string) { e.replaceLastWord(m) })
}

// completeArgument completes the word under the cursor against either a
// leading CVar's allowed-values list (myEnumVar <Tab> cycles the enum
// names) or a registered command's ArgCompleter.
func (e *Editor) completeArgument(fields []string) {
	if len(fields) == 0 {
		return
	}
	partial := ""
	if len(fields) > 1 {
		partial = fields[len(fields)-1]
	}

	if e.CVars != nil {
		if cv, ok := e.CVars.Find(fields[0]); ok {
			matches := matchPrefix(cv.AllowedValues(), partial)
			e.presentMatches(partial, dedupSorted(matches), func(m string) { e.replaceLastWord(m) })
			return
		}
	}

	if e.Commands == nil {
		return
	}
	cmd, ok := e.Commands.Find(fields[0])
	if !ok {
		return
	}
	completer, ok := cmd.ArgCompleter()
	if !ok {
		return
	}
	matches := completer.ArgComplete(partial, MaxCompletionMatches)
	e.presentMatches(partial, dedupSorted(matches), func(m string) { e.replaceLastWord(m) })
}

// completeCVarName completes an unclosed $(name inside the line.
func (e *Editor) completeCVarName(openParenIdx int, partial string) {
	if e.CVars == nil {
		return
	}
	var matches []string
	for _, cv := range e.CVars.FindByPrefix(partial) {
		matches = append(matches, cv.Name())
	}
	e.presentMatches(partial, matches, func(m string) {
		e.line = append([]rune(string(e.line[:openParenIdx])+m+")"), e.line[e.cursor:]...)
		e.cursor = openParenIdx + len(m) + 1
		e.redraw()
	})
}

func (e *Editor) presentMatches(prefix string, matches []string, apply func(string)) {
	switch len(matches) {
	case 0:
		return
	case 1:
		apply(matches[0])
	default:
		if len(matches) > MaxCompletionMatches {
			matches = matches[:MaxCompletionMatches]
		}
		e.completion = completionState{active: true, matches: matches, prefix: prefix}
		e.printLine(e.formatMatchColumns(prefix, matches))
	}
}

var (
	builtinMatchStyle = lipgloss.NewStyle().Bold(true)
	prefixMatchStyle  = lipgloss.NewStyle().Underline(true)
)

// formatMatchColumns renders a tab-completion listing with the matched
// prefix underlined and terminal built-ins bolded, laid out in
// fixed-width columns computed from each entry's display width (rather
// than byte length, so a styled entry's escape codes never throw off
// alignment).
func (e *Editor) formatMatchColumns(prefix string, matches []string) string {
	if e.Term == nil || !e.Term.IsTTY() {
		return strings.Join(matches, "  ")
	}
	styled := make([]string, len(matches))
	width := 0
	for i, m := range matches {
		plain := m
		if w := ansi.StringWidth(plain); w > width {
			width = w
		}
		rendered := m
		if prefix != "" && strings.HasPrefix(m, prefix) {
			rendered = prefixMatchStyle.Render(m[:len(prefix)]) + m[len(prefix):]
		}
		if isLocalBuiltin(m) {
			rendered = builtinMatchStyle.Render(rendered)
		}
		styled[i] = rendered
	}
	var b strings.Builder
	for i, s := range styled {
		if i > 0 && i%6 == 0 {
			b.WriteByte('\n')
		}
		pad := width - ansi.StringWidth(matches[i]) + 2
		b.WriteString(s)
		b.WriteString(strings.Repeat(" ", pad))
	}
	return strings.TrimRight(b.String(), " ")
}

func isLocalBuiltin(name string) bool {
	for _, n := range localBuiltinNames {
		if n == name {
			return true
		}
	}
	return false
}

func (e *Editor) cycleCompletion() {
	if len(e.completion.matches) == 0 {
		e.completion.reset()
		return
	}
	m := e.completion.matches[e.completion.index]
	e.completion.index = (e.completion.index + 1) % len(e.completion.matches)
	if e.completion.applied && e.cursor > 0 && e.line[e.cursor-1] == ' ' {
		e.line = append(e.line[:e.cursor-1], e.line[e.cursor:]...)
		e.cursor--
	}
	e.completion.applied = true
	e.replaceLastWord(m)
}

func (e *Editor) replaceLastWord(word string) {
	text := string(e.line)
	start := 0
	if sp := strings.LastIndexAny(text[:e.cursor], " \t"); sp >= 0 {
		start = sp + 1
	}
	e.line = []rune(text[:start] + word + " " + text[e.cursor:])
	e.cursor = start + len(word) + 1
	e.redraw()
}

// findOpenSubstitution reports whether the cursor sits inside an unclosed
// $(name reference, returning the index of the '(' and the partial name
// typed so far.
func findOpenSubstitution(text string, cursor int) (int, string, bool) {
	if cursor > len(text) {
		cursor = len(text)
	}
	head := text[:cursor]
	idx := strings.LastIndex(head, "$(")
	if idx < 0 {
		return 0, "", false
	}
	partial := head[idx+2:]
	if strings.ContainsAny(partial, ") \t") {
		return 0, "", false
	}
	return idx + 2, partial, true
}

var localBuiltinNames = []string{"exit", "quit", "clear", "histView", "histClear", "histSave", "histLoad", "histGrep", "histAutosave"}

func matchPrefix(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

func dedupSorted(in []string) []string {
	sort.Strings(in)
	out := in[:0]
	var prev string
	first := true
	for _, s := range in {
		if !first && s == prev {
			continue
		}
		out = append(out, s)
		prev = s
		first = false
	}
	return out
}
