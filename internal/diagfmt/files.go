package diagfmt

import (
	"path/filepath"

	"snafu-upgrade/internal/source"
)

// Files resolves anchor offsets into line/column positions. Content from a
// dry-run change is preferred; otherwise the file is read from disk. Files
// are loaded at most once.
type Files struct {
	root  string
	cache map[string]*source.File
}

// NewFiles returns a resolver for paths relative to root.
func NewFiles(root string) *Files {
	return &Files{root: root, cache: make(map[string]*source.File)}
}

// Seed registers known content for a path, typically a dry-run's Before.
func (f *Files) Seed(rel string, content []byte) {
	if f == nil || content == nil {
		return
	}
	if _, ok := f.cache[rel]; ok {
		return
	}
	f.cache[rel] = source.NewFile(rel, content, 0)
}

// Get returns the file or nil when it cannot be read.
func (f *Files) Get(rel string) *source.File {
	if f == nil {
		return nil
	}
	if file, ok := f.cache[rel]; ok {
		return file
	}
	abs, err := source.Resolve(f.root, rel)
	var file *source.File
	if err == nil {
		file, err = source.Load(abs)
	}
	if err != nil {
		file = nil
	}
	f.cache[rel] = file
	return file
}

func (f *Files) displayPath(rel string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if f != nil {
			if abs, err := source.Resolve(f.root, rel); err == nil {
				return abs
			}
		}
		return rel
	case PathModeBasename:
		return filepath.Base(rel)
	default:
		// cargo reports some paths absolutely; shorten those under the root
		if f != nil && filepath.IsAbs(rel) {
			if short, err := source.RelativePath(rel, f.root); err == nil {
				return short
			}
		}
		return rel
	}
}
