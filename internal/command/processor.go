package command

import (
	"fmt"
	"strings"

	"cvarshell/internal/cvar"
	"cvarshell/pkg/types"
)

// CommandBufferSize bounds both the persistent command buffer (component
// H) and a single extracted command's length.
const CommandBufferSize = 16384

// CommandTextSeparator ends one buffered command and starts the next.
const CommandTextSeparator = ';'

// maxSubstitutionDepth caps $(...) nesting.
const maxSubstitutionDepth = 15

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// ExtractNextCommand returns the next whole
// command from the front of src (leading whitespace/separators skipped,
// \r dropped, backslash-newline continuation honored, quotes tracked,
// $(...) expanded inline) plus the unconsumed remainder. overflowed is
// true if the extracted command would have exceeded CommandBufferSize; in
// that case the caller is expected to discard whatever remains of src
// (buffered drain) or stop extracting further commands (immediate exec).
func ExtractNextCommand(src string, cvars *cvar.Manager, sink types.ErrorSink) (cmdText string, rest string, overflowed bool) {
	i := 0
	n := len(src)
	for i < n && (isSpace(src[i]) || src[i] == CommandTextSeparator) {
		i++
	}

	var out strings.Builder
	inQuote := false
	var quoteChar byte
	contFlag := false

	for i < n {
		c := src[i]

		if c == '\r' {
			i++
			continue
		}

		if contFlag {
			contFlag = false
			if c == '\n' {
				i++
				continue
			}
			// stray backslash: fall through, c is processed normally below
		}

		if !inQuote && c == '\\' {
			contFlag = true
			i++
			continue
		}

		if !inQuote && c == '$' && i+1 < n && src[i+1] == '(' {
			expanded, consumed, err := expandCVar(src[i:], cvars, sink, 0)
			if err != nil {
				end := findCommandEnd(src[i:])
				return "", src[i+end:], false
			}
			out.WriteString(expanded)
			i += consumed
			if out.Len() > CommandBufferSize {
				if sink != nil {
					sink.Error("command: extracted command exceeds %d bytes, discarding remaining buffer", CommandBufferSize)
				}
				return out.String(), "", true
			}
			continue
		}

		if inQuote {
			out.WriteByte(c)
			i++
			if c == quoteChar {
				inQuote = false
			}
			if out.Len() > CommandBufferSize {
				if sink != nil {
					sink.Error("command: extracted command exceeds %d bytes, discarding remaining buffer", CommandBufferSize)
				}
				return out.String(), "", true
			}
			continue
		}

		if c == '"' || c == '\'' {
			inQuote = true
			quoteChar = c
			out.WriteByte(c)
			i++
			if out.Len() > CommandBufferSize {
				if sink != nil {
					sink.Error("command: extracted command exceeds %d bytes, discarding remaining buffer", CommandBufferSize)
				}
				return out.String(), "", true
			}
			continue
		}

		if c == '\n' {
			i++
			break
		}
		if c == CommandTextSeparator {
			i++
			break
		}

		out.WriteByte(c)
		i++
		if out.Len() > CommandBufferSize {
			if sink != nil {
				sink.Error("command: extracted command exceeds %d bytes, discarding remaining buffer", CommandBufferSize)
			}
			return out.String(), "", true
		}
	}

	return out.String(), src[i:], false
}

// expandCVar consumes a "$(" ... ")" block starting at s[0:2] and returns
// the CVar's string value, the number of bytes consumed from s, and an
// error if the name is unbalanced, unclosed, invalid, unknown, or nesting
// too deep.
func expandCVar(s string, cvars *cvar.Manager, sink types.ErrorSink, depth int) (string, int, error) {
	if depth > maxSubstitutionDepth {
		err := fmt.Errorf("command: $(...) nesting exceeds depth %d", maxSubstitutionDepth)
		report(sink, err)
		return "", len(s), err
	}
	if len(s) < 2 || s[0] != '$' || s[1] != '(' {
		err := fmt.Errorf("command: expandCVar called on non-$( input")
		report(sink, err)
		return "", 0, err
	}

	idx := 2
	parenDepth := 1
	var name strings.Builder

	for idx < len(s) {
		c := s[idx]
		switch {
		case c == '$' && idx+1 < len(s) && s[idx+1] == '(':
			inner, consumed, err := expandCVar(s[idx:], cvars, sink, depth+1)
			if err != nil {
				return "", idx, err
			}
			name.WriteString(inner)
			idx += consumed
		case c == '(':
			parenDepth++
			idx++
		case c == ')':
			parenDepth--
			idx++
			if parenDepth == 0 {
				goto closed
			}
		case c == '\n' || c == CommandTextSeparator:
			err := fmt.Errorf("command: unclosed $(...) substitution")
			report(sink, err)
			return "", idx, err
		case c == ' ' || c == '\t':
			idx++ // whitespace inside the name is silently stripped
		default:
			name.WriteByte(c)
			idx++
		}
	}
	{
		err := fmt.Errorf("command: unclosed $(...) substitution")
		report(sink, err)
		return "", idx, err
	}

closed:
	if parenDepth != 0 {
		err := fmt.Errorf("command: unbalanced parentheses in $(...) substitution")
		report(sink, err)
		return "", idx, err
	}
	varName := name.String()
	if err := cvar.ValidateName(varName); err != nil {
		wrapped := fmt.Errorf("command: %q is not a valid CVar name: %w", varName, err)
		report(sink, wrapped)
		return "", idx, wrapped
	}
	if cvars == nil {
		err := fmt.Errorf("command: $(...) substitution used with no CVar manager associated")
		report(sink, err)
		return "", idx, err
	}
	cv, ok := cvars.Find(varName)
	if !ok {
		err := fmt.Errorf("command: unknown CVar %q in $(...) substitution", varName)
		report(sink, err)
		return "", idx, err
	}
	return cv.GetString(), idx, nil
}

func report(sink types.ErrorSink, err error) {
	if sink != nil {
		sink.Error("%s", err.Error())
	}
}

// findCommandEnd scans s (which begins mid-command, e.g. right after a
// failed substitution) for the next unquoted command separator and
// returns the index just past it, or len(s) if none is found. It is used
// to discard the remainder of a command whose substitution failed while
// still letting extraction resume with whatever follows.
func findCommandEnd(s string) int {
	inQuote := false
	var quoteChar byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			if c == quoteChar {
				inQuote = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = true
			quoteChar = c
		case '\n', CommandTextSeparator:
			return i + 1
		}
	}
	return len(s)
}
