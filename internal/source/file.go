package source

import (
	"fmt"
	"os"

	"fortio.org/safecast"
)

const defaultFileMode os.FileMode = 0o644

// Load reads a file from disk without any normalization and indexes its lines.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is checked against the safe directory by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mode := defaultFileMode
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	return NewFile(path, content, mode), nil
}

// NewFile wraps in-memory content (tests, previews) as a File.
func NewFile(path string, content []byte, mode os.FileMode) *File {
	if mode == 0 {
		mode = defaultFileMode
	}
	return &File{
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Mode:    mode,
	}
}

// Position converts a byte offset into a 1-based line and column.
// Offsets past the end of the file are clamped to the end.
func (f *File) Position(off uint32) LineCol {
	size, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	if off > size {
		off = size
	}
	return toLineCol(f.LineIdx, off)
}

// Resolve converts a range into line and column positions.
func (f *File) Resolve(r Range) (start, end LineCol) {
	return f.Position(r.Start), f.Position(r.End)
}

// Line возвращает строку с заданным номером (1-based) без перевода строки.
// Если строка не существует, возвращает пустую строку.
func (f *File) Line(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	idx := int(lineNum) - 1
	if idx > len(f.LineIdx) {
		return ""
	}
	start := 0
	if idx > 0 {
		start = int(f.LineIdx[idx-1]) + 1
	}
	end := len(f.Content)
	if idx < len(f.LineIdx) {
		end = int(f.LineIdx[idx])
	}
	if start > end {
		return ""
	}
	line := f.Content[start:end]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line)
}

// Write replaces the whole file with content, keeping its permission bits.
// This is not atomic: an interruption mid-write can leave a truncated file.
func Write(path string, content []byte, mode os.FileMode) error {
	if mode == 0 {
		mode = defaultFileMode
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
