// Package fileio provides the default types.FileIo binding this module
// ships with, backed by afero so an embedding host can swap in an
// in-memory or read-only filesystem for tests without touching the core.
package fileio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"cvarshell/pkg/types"
)

// AferoFileIo adapts an afero.Fs to types.FileIo.
type AferoFileIo struct {
	fs afero.Fs
}

// New wraps fs as a types.FileIo. A nil fs uses the real OS filesystem.
func New(fs afero.Fs) *AferoFileIo {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &AferoFileIo{fs: fs}
}

type handle struct {
	file    afero.File
	reader  *bufio.Reader
	writer  *bufio.Writer
	atEOF   bool
	forWrite bool
}

// Open implements types.FileIo.
func (a *AferoFileIo) Open(path string, mode types.FileMode) (types.FileHandle, error) {
	switch mode {
	case types.FileRead:
		f, err := a.fs.Open(path)
		if err != nil {
			return nil, err
		}
		return &handle{file: f, reader: bufio.NewReader(f)}, nil
	case types.FileWrite:
		f, err := a.fs.Create(path)
		if err != nil {
			return nil, err
		}
		return &handle{file: f, writer: bufio.NewWriter(f), forWrite: true}, nil
	default:
		return nil, fmt.Errorf("fileio: unknown file mode %v", mode)
	}
}

// Close implements types.FileIo.
func (a *AferoFileIo) Close(h types.FileHandle) error {
	hd, ok := h.(*handle)
	if !ok {
		return fmt.Errorf("fileio: invalid handle")
	}
	if hd.writer != nil {
		if err := hd.writer.Flush(); err != nil {
			_ = hd.file.Close()
			return err
		}
	}
	return hd.file.Close()
}

// Eof implements types.FileIo.
func (a *AferoFileIo) Eof(h types.FileHandle) bool {
	hd, ok := h.(*handle)
	if !ok {
		return true
	}
	return hd.atEOF
}

// Rewind implements types.FileIo.
func (a *AferoFileIo) Rewind(h types.FileHandle) error {
	hd, ok := h.(*handle)
	if !ok {
		return fmt.Errorf("fileio: invalid handle")
	}
	if _, err := hd.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	hd.atEOF = false
	if hd.reader != nil {
		hd.reader.Reset(hd.file)
	}
	return nil
}

// ReadLine implements types.FileIo, stripping the trailing newline.
func (a *AferoFileIo) ReadLine(h types.FileHandle) (string, bool) {
	hd, ok := h.(*handle)
	if !ok || hd.reader == nil {
		return "", false
	}
	line, err := hd.reader.ReadString('\n')
	if len(line) > 0 {
		line = trimNewline(line)
		if err != nil {
			hd.atEOF = true
		}
		return line, true
	}
	if err != nil {
		hd.atEOF = true
		return "", false
	}
	return "", true
}

// WriteLine implements types.FileIo.
func (a *AferoFileIo) WriteLine(h types.FileHandle, s string) bool {
	hd, ok := h.(*handle)
	if !ok || hd.writer == nil {
		return false
	}
	if _, err := hd.writer.WriteString(s); err != nil {
		return false
	}
	if _, err := hd.writer.WriteString("\n"); err != nil {
		return false
	}
	return true
}

func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		n--
	}
	if n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
