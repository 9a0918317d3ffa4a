package source

import "io/fs"

// File captures the raw content of a source file together with its line index.
// Content is never normalized: diagnostic offsets refer to the bytes on disk.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32
	Mode    fs.FileMode
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
