package lineedit

import (
	"strings"

	"cvarshell/pkg/types"
)

// History is the fixed-capacity command-history ring plus the traversal
// pointer used by Up/Down and Escape.
type History struct {
	entries []string
	cap     int
	pos     int // index into entries the next Prev() call will return, len(entries) means "no candidate yet"
}

// NewHistory creates an empty history ring capped at capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 256
	}
	h := &History{cap: capacity}
	h.ResetTraversal()
	return h
}

// Add appends a non-empty line to the ring, evicting the oldest entry once
// full, and resets the traversal pointer to "newest".
func (h *History) Add(line string) {
	if line == "" {
		return
	}
	if len(h.entries) >= h.cap {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, line)
	h.ResetTraversal()
}

// ResetTraversal points the traversal cursor past the newest entry, as
// Escape and a fresh Return do.
func (h *History) ResetTraversal() { h.pos = len(h.entries) }

// Prev walks one entry further into the past, stopping at the oldest
// entry. If that entry equals current (the line already on screen), it
// steps back once more when an older entry exists.
func (h *History) Prev(current string) (string, bool) {
	if len(h.entries) == 0 || h.pos == 0 {
		return "", false
	}
	h.pos--
	if h.entries[h.pos] == current && h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next walks one entry forward toward the present, skipping one more
// entry if it equals current; past the newest entry it yields the empty
// line.
func (h *History) Next(current string) (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos < len(h.entries) && h.entries[h.pos] == current {
		h.pos++
	}
	if h.pos >= len(h.entries) {
		return "", true
	}
	return h.entries[h.pos], true
}

// All returns every history entry, oldest first.
func (h *History) All() []string { return append([]string(nil), h.entries...) }

// Clear empties the ring.
func (h *History) Clear() {
	h.entries = nil
	h.ResetTraversal()
}

// Grep returns every history entry containing substr, oldest first — the
// supplemental histGrep built-in's backing search.
func (h *History) Grep(substr string) []string {
	if substr == "" {
		return h.All()
	}
	var out []string
	for _, e := range h.entries {
		if strings.Contains(e, substr) {
			out = append(out, e)
		}
	}
	return out
}

// Save writes every entry, one per line, no quoting.
func (h *History) Save(fio types.FileIo, path string) error {
	handle, err := fio.Open(path, types.FileWrite)
	if err != nil {
		return err
	}
	defer func() { _ = fio.Close(handle) }()
	for _, e := range h.entries {
		if !fio.WriteLine(handle, e) {
			return errWriteFailed(path)
		}
	}
	return nil
}

// Load replaces the ring's contents from path, trimming trailing
// whitespace on each loaded line.
func (h *History) Load(fio types.FileIo, path string) error {
	handle, err := fio.Open(path, types.FileRead)
	if err != nil {
		return err
	}
	defer func() { _ = fio.Close(handle) }()

	h.entries = nil
	for !fio.Eof(handle) {
		line, ok := fio.ReadLine(handle)
		if !ok {
			break
		}
		trimmed := strings.TrimRight(line, " \t\r\n")
		if trimmed != "" {
			h.entries = append(h.entries, trimmed)
		}
	}
	if len(h.entries) > h.cap {
		h.entries = h.entries[len(h.entries)-h.cap:]
	}
	h.ResetTraversal()
	return nil
}

type writeError string

func (e writeError) Error() string { return string(e) }

func errWriteFailed(path string) error {
	return writeError("lineedit: write failure while saving history to " + path)
}
