// Package configio implements config file save and reload: the on-disk
// grammar is a sequence of `set`/`alias` command lines, saved from every
// Persistent CVar and every registered alias, and reloaded by feeding the
// file back through the command buffer inside a ReadOnly/InitOnly override
// window.
package configio

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	dmp "github.com/sergi/go-diff/diffmatchpatch"

	"cvarshell/internal/command"
	"cvarshell/internal/cvar"
	"cvarshell/pkg/types"
)

// Save writes every Persistent CVar and every registered alias to path as
// a sequence of `set`/`alias` command lines, then clears the Modified bit
// on every CVar (the file now reflects the live state).
func Save(fio types.FileIo, path string, mgr *cvar.Manager, reg *command.Registry) error {
	h, err := fio.Open(path, types.FileWrite)
	if err != nil {
		return fmt.Errorf("configio: cannot open %s for writing: %w", path, err)
	}
	defer func() { _ = fio.Close(h) }()

	for _, line := range renderLines(mgr, reg) {
		if !fio.WriteLine(h, line) {
			return fmt.Errorf("configio: write failure while saving %s", path)
		}
	}

	mgr.ClearAllModified()
	return nil
}

func renderLines(mgr *cvar.Manager, reg *command.Registry) []string {
	var lines []string
	for _, cv := range mgr.EnumerateSorted() {
		if !cv.Persistent() {
			continue
		}
		line := fmt.Sprintf("set %s %s", cv.Name(), quoteValue(cv))
		if flags := persistedFlagWords(cv); flags != "" {
			line += " " + flags
		}
		lines = append(lines, line)
	}
	if reg != nil {
		var aliases []*command.Command
		for _, cmd := range reg.Enumerate() {
			if cmd.IsAlias() {
				aliases = append(aliases, cmd)
			}
		}
		sort.Slice(aliases, func(i, j int) bool { return aliases[i].Name() < aliases[j].Name() })
		for _, cmd := range aliases {
			line := fmt.Sprintf("alias %s %s %s", cmd.Name(), quote(cmd.AliasTarget()), cmd.AliasMode())
			if cmd.Description() != "" {
				line += " " + quote(cmd.Description())
			}
			lines = append(lines, line)
		}
	}
	return lines
}

func quote(s string) string {
	return strconv.Quote(s)
}

// quoteValue renders a CVar's current value for a saved set line: only
// String and Enum values are quoted, matching a numeric literal's own
// unquoted spelling (an int/bool/float value written back through set
// must round-trip without a quoted-string parse in between).
func quoteValue(cv *cvar.CVar) string {
	switch cv.Kind() {
	case cvar.KindString, cvar.KindEnum:
		return quote(cv.GetString())
	default:
		return cv.GetString()
	}
}

// persistedFlagWords renders the -flag tokens the set built-in accepts,
// for the per-CVar flags worth round-tripping through a saved line: for a
// library-registered CVar the flags are fixed at registration time and
// reapplying them on load is redundant, so only a UserDefined CVar
// (created by the set built-in at runtime) carries its flags into the
// file.
func persistedFlagWords(cv *cvar.CVar) string {
	if !cv.Flags().Has(cvar.FlagUserDefined) {
		return ""
	}
	var words []string
	add := func(bit cvar.Flag, word string) {
		if cv.Flags().Has(bit) {
			words = append(words, word)
		}
	}
	add(cvar.FlagPersistent, "-persistent")
	add(cvar.FlagVolatile, "-volatile")
	add(cvar.FlagReadOnly, "-readonly")
	add(cvar.FlagInitOnly, "-initonly")
	add(cvar.FlagModified, "-modified")
	return strings.Join(words, " ")
}

// ReloadOptions controls Reload's behavior.
type ReloadOptions struct {
	// Force allows reload to proceed even if some CVar has unsaved
	// (Modified) changes; otherwise reload refuses.
	Force bool
	// DryRun computes and returns a diff instead of applying the file.
	DryRun bool
	// Echo, when set, writes "path(lineno): text" to Term for every
	// executed line.
	Echo bool
	Term types.Terminal
}

// Reload re-applies path's config file to mgr/buf. If opts.DryRun is set,
// nothing is executed; instead an inline diff (deleted and inserted text
// marked in place) between the file's `set` lines and the CVars' current
// values is returned.
func Reload(fio types.FileIo, path string, mgr *cvar.Manager, buf *command.Buffer, opts ReloadOptions) (string, error) {
	if !opts.Force && hasModified(mgr) {
		return "", fmt.Errorf("configio: refusing to reload %s: unsaved changes present (use -force)", path)
	}

	lines, err := readLines(fio, path)
	if err != nil {
		return "", err
	}

	if opts.DryRun {
		return diffAgainstLive(lines, mgr), nil
	}

	mgr.OpenOverride(true, true)
	defer mgr.CloseOverride()

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if opts.Echo && opts.Term != nil {
			opts.Term.PrintLine(fmt.Sprintf("%s(%d): %s", path, i+1, trimmed))
		}
		if err := buf.ExecImmediate(trimmed, nil); err != nil && opts.Term != nil {
			opts.Term.PrintLine(err.Error())
		}
	}
	return "", nil
}

func hasModified(mgr *cvar.Manager) bool {
	for _, cv := range mgr.Enumerate() {
		if cv.Modified() {
			return true
		}
	}
	return false
}

func readLines(fio types.FileIo, path string) ([]string, error) {
	h, err := fio.Open(path, types.FileRead)
	if err != nil {
		return nil, fmt.Errorf("configio: cannot open %s for reading: %w", path, err)
	}
	defer func() { _ = fio.Close(h) }()

	var lines []string
	for !fio.Eof(h) {
		line, ok := fio.ReadLine(h)
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// diffAgainstLive compares the value each `set NAME VALUE ...` line in the
// file asks for against the CVar's live current value, producing an
// inline pretty-printed diff of only the lines that would actually change.
func diffAgainstLive(lines []string, mgr *cvar.Manager) string {
	var before, after strings.Builder
	for _, line := range lines {
		fields := splitSetLine(line)
		if fields == nil {
			continue
		}
		name, wantValue := fields[0], fields[1]
		cv, ok := mgr.Find(name)
		if !ok {
			continue
		}
		if cv.GetString() == wantValue {
			continue
		}
		fmt.Fprintf(&before, "set %s %s\n", name, cv.GetString())
		fmt.Fprintf(&after, "set %s %s\n", name, wantValue)
	}
	if before.Len() == 0 && after.Len() == 0 {
		return ""
	}
	differ := dmp.New()
	diffs := differ.DiffMain(before.String(), after.String(), false)
	return differ.DiffPrettyText(diffs)
}

// splitSetLine extracts (name, value) from a `set NAME VALUE ...` config
// line, or nil if line is not a recognizable set line.
func splitSetLine(line string) []string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "set ") {
		return nil
	}
	rest := strings.TrimSpace(trimmed[len("set "):])
	sp := strings.IndexAny(rest, " \t")
	if sp < 0 {
		return nil
	}
	name := rest[:sp]
	valuePart := strings.TrimSpace(rest[sp+1:])
	// value may be a further-quoted token followed by flag words; take the
	// first whitespace-delimited or quoted token.
	if len(valuePart) > 0 && (valuePart[0] == '"' || valuePart[0] == '\'') {
		if q, err := strconv.QuotedPrefix(valuePart); err == nil {
			if unquoted, err := strconv.Unquote(q); err == nil {
				return []string{name, unquoted}
			}
		}
	}
	sp2 := strings.IndexAny(valuePart, " \t")
	if sp2 < 0 {
		return []string{name, valuePart}
	}
	return []string{name, valuePart[:sp2]}
}
