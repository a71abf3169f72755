package cvar

import "cvarshell/internal/strutil"

// BoolStringPair is one accepted spelling pair for boolean CVar parsing.
type BoolStringPair struct {
	True  string
	False string
}

// DefaultBoolStrings is the table installed at package init: true/false,
// yes/no, on/off, 1/0.
var DefaultBoolStrings = []BoolStringPair{
	{True: "true", False: "false"},
	{True: "yes", False: "no"},
	{True: "on", False: "off"},
	{True: "1", False: "0"},
}

var boolStrings = append([]BoolStringPair(nil), DefaultBoolStrings...)

// SetBoolStrings replaces the global bool-string table. It is a
// process-wide, host-configured setting: call it once at
// startup, not concurrently with CVar mutation.
func SetBoolStrings(pairs []BoolStringPair) {
	if len(pairs) == 0 {
		boolStrings = append([]BoolStringPair(nil), DefaultBoolStrings...)
		return
	}
	boolStrings = append([]BoolStringPair(nil), pairs...)
}

// ParseBoolString accepts any configured spelling pair, case-insensitively.
func ParseBoolString(s string) (bool, bool) {
	for _, p := range boolStrings {
		if strutil.EqualFold(s, p.True) {
			return true, true
		}
		if strutil.EqualFold(s, p.False) {
			return false, true
		}
	}
	return false, false
}

// RenderBoolString renders v using the first configured pair.
func RenderBoolString(v bool) string {
	pair := boolStrings[0]
	if v {
		return pair.True
	}
	return pair.False
}
