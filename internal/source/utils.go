package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i)
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		out = append(out, off)
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Если LineIdx пустой, то весь файл - одна строка
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// бинпоиск: количество переводов строки строго до off
	lo, hi := 0, len(lineIdx)
	for lo < hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	line := lo // 0-based

	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	lineNum, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: lineNum, Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// единый вид в отчётах
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns target relative to baseDir, or the cleaned absolute
// target when it lies outside baseDir.
func RelativePath(target, baseDir string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}
