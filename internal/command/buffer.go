package command

import (
	"fmt"

	"cvarshell/internal/cvar"
	"cvarshell/pkg/types"
)

// ExecAll tells Drain to keep extracting until the buffer is empty,
// subject only to the reentrancy guard.
const ExecAll = -1

// MaxReentrantCommands protects Drain against a command handler that
// re-feeds the buffer forever.
const MaxReentrantCommands = 1000

// Buffer is the fixed-capacity command text buffer with its three entry
// points (immediate/insert/append) and the draining loop that dispatches
// through a Registry.
type Buffer struct {
	registry *Registry
	cvars    *cvar.Manager
	sink     types.ErrorSink

	data string
}

// NewBuffer creates an empty command buffer bound to registry (for
// dispatch) and cvars (for $(...) substitution during extraction).
func NewBuffer(registry *Registry, cvars *cvar.Manager, sink types.ErrorSink) *Buffer {
	return &Buffer{registry: registry, cvars: cvars, sink: sink}
}

// Len returns the number of bytes currently buffered.
func (b *Buffer) Len() int { return len(b.data) }

// Contents returns the raw buffered text (for inspection/testing).
func (b *Buffer) Contents() string { return b.data }

func (b *Buffer) errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if b.sink != nil {
		b.sink.Error("%s", err.Error())
	}
	return err
}

// ExecImmediate runs extract_next_command over s in a loop, dispatching
// each extracted command right away without touching the persistent
// buffer. It stops at the first overflow.
func (b *Buffer) ExecImmediate(s string, ctx *ExecContext) error {
	remaining := s
	if ctx == nil {
		ctx = &ExecContext{Commands: b.registry, CVars: b.cvars}
	}
	for remaining != "" {
		var cmdText string
		var overflowed bool
		cmdText, remaining, overflowed = ExtractNextCommand(remaining, b.cvars, b.sink)
		if cmdText == "" {
			if overflowed {
				break
			}
			continue
		}
		av := ParseArgs(cmdText, b.sink)
		if av.Name() == "" {
			continue
		}
		if err := b.registry.Dispatch(av, ctx); err != nil && b.sink != nil {
			b.sink.Error("%s", err.Error())
		}
		if overflowed {
			break
		}
	}
	return nil
}

// ExecInsert prepends s and a separator to the buffer, so it runs next.
func (b *Buffer) ExecInsert(s string) error {
	addition := s + string(CommandTextSeparator)
	if len(addition)+len(b.data) > CommandBufferSize {
		return b.errorf("command buffer: insert of %d bytes would overflow the %d byte buffer", len(addition), CommandBufferSize)
	}
	b.data = addition + b.data
	return nil
}

// ExecAppend appends a separator and s to the buffer, so it runs after
// everything already queued.
func (b *Buffer) ExecAppend(s string) error {
	addition := string(CommandTextSeparator) + s
	if len(addition)+len(b.data) > CommandBufferSize {
		return b.errorf("command buffer: append of %d bytes would overflow the %d byte buffer", len(addition), CommandBufferSize)
	}
	b.data = b.data + addition
	return nil
}

// Drain repeatedly extracts from the front of the buffer, dispatching
// each command, until the buffer empties, limit commands have run
// (unless limit == ExecAll), or MaxReentrantCommands is reached — at
// which point the entire remaining buffer is discarded and an error is
// reported. Before each dispatch the
// remaining bytes are shifted to the front of the buffer so that a
// handler calling ExecInsert/ExecAppend during its own execution sees a
// coherent buffer.
func (b *Buffer) Drain(limit int, ctx *ExecContext) (executed int, err error) {
	if ctx == nil {
		ctx = &ExecContext{Commands: b.registry, CVars: b.cvars}
	}
	for b.data != "" {
		if limit != ExecAll && executed >= limit {
			return executed, nil
		}
		if executed >= MaxReentrantCommands {
			b.data = ""
			return executed, b.errorf("command buffer: reentrant command limit (%d) reached, discarding buffer", MaxReentrantCommands)
		}

		cmdText, rest, overflowed := ExtractNextCommand(b.data, b.cvars, b.sink)
		b.data = rest // shift-compact before dispatch

		if cmdText == "" {
			if overflowed {
				b.data = ""
				return executed, b.errorf("command buffer: command exceeds buffer size, discarding remainder")
			}
			continue
		}

		av := ParseArgs(cmdText, b.sink)
		executed++
		if av.Name() != "" {
			if derr := b.registry.Dispatch(av, ctx); derr != nil && b.sink != nil {
				b.sink.Error("%s", derr.Error())
			}
		}
		if overflowed {
			b.data = ""
			return executed, b.errorf("command buffer: command exceeds buffer size, discarding remainder")
		}
	}
	return executed, nil
}
