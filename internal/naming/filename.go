package naming

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Template controls how renamed copies are laid out and named.
//
// Flat mode writes {Prefix}-{quarter}-{vendor}-{month}-{year}{ext} next to the
// source. Subfolder mode writes {SubdirPrefix}-{quarter}-{Prefix}-{vendor}-
// {month}-{year}{ext} under a renamed/ subdirectory.
type Template struct {
	Prefix       string // e.g. "BFF"
	SubdirPrefix string // e.g. "PCEF"
	Subfolder    bool
	SubdirName   string // defaults to "renamed"
}

func (t Template) subdirName() string {
	if t.SubdirName == "" {
		return "renamed"
	}
	return t.SubdirName
}

// Filename synthesizes the canonical filename for one document. ext keeps its
// leading dot and is lowercased.
func (t Template) Filename(quarter, vendor, month, year, ext string) string {
	ext = strings.ToLower(ext)
	if t.Subfolder {
		return fmt.Sprintf("%s-%s-%s-%s-%s-%s%s", t.SubdirPrefix, quarter, t.Prefix, vendor, month, year, ext)
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s%s", t.Prefix, quarter, vendor, month, year, ext)
}

// TargetDir returns the directory renamed copies land in for sources in dir,
// creating the subdirectory in subfolder mode.
func (t Template) TargetDir(dir string) (string, error) {
	if !t.Subfolder {
		return dir, nil
	}
	sub := filepath.Join(dir, t.subdirName())
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return "", fmt.Errorf("create %s dir: %w", t.subdirName(), err)
	}
	return sub, nil
}

// ResolveCollision returns path if it is free, otherwise the first of
// path-1, path-2, ... (suffix inserted before the extension) that does not
// exist yet. Counters restart from the unsuffixed stem, so N identical
// requests yield the base name followed by -1 .. -(N-1) in call order.
//
// Check-then-use is only safe because all renaming goes through one
// sequential stage; see Processor.
func ResolveCollision(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// CopyFile writes a byte-identical copy of src at dst. The source is never
// modified or removed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy bytes: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	return nil
}
