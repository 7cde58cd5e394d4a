package vocabulary

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the file extension of a persisted word unit.
const Ext = ".txt"

// Unit is one persisted vocabulary word.
type Unit struct {
	Path  string
	Label string
}

// FileName returns the filesystem-safe name for word.
func FileName(word string) string {
	return url.PathEscape(word) + Ext
}

// List enumerates word units in dir, sorted lexicographically by file name.
func List(dir string) ([]Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list inputs in %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	units := make([]Unit, len(names))
	for i, name := range names {
		units[i] = Unit{Path: filepath.Join(dir, name), Label: labelFor(name)}
	}
	return units, nil
}

func labelFor(name string) string {
	stem := strings.TrimSuffix(name, Ext)
	if w, err := url.PathUnescape(stem); err == nil {
		return w
	}
	return stem
}

// ReadWord reads and decodes the word stored in u.
func ReadWord(u Unit) (string, error) {
	data, err := os.ReadFile(u.Path)
	if err != nil {
		return "", fmt.Errorf("read word unit %q: %w", u.Path, err)
	}
	w, err := url.PathUnescape(strings.TrimRight(string(data), " \r\n\t"))
	if err != nil {
		return "", fmt.Errorf("decode word unit %q: %w", u.Path, err)
	}
	return w, nil
}
