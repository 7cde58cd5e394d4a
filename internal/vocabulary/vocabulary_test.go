package vocabulary

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticSource []string

func (s staticSource) Words(n int) ([]string, error) {
	if n > len(s) {
		n = len(s)
	}
	return s[:n], nil
}

func TestParseFrequencyList(t *testing.T) {
	list, err := ParseFrequencyList(strings.NewReader("# header\nThe\n\nof\nthe\n  and  \n"))
	require.NoError(t, err)

	words, err := list.Words(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "of", "and"}, words)
}

func TestDefaultSource(t *testing.T) {
	list, err := DefaultSource("english")
	require.NoError(t, err)
	assert.Greater(t, list.Len(), 100)

	words, err := list.Words(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "of", "and"}, words)

	_, err = DefaultSource("klingon")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = list.Words(0)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n"), 0o644))

	list, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestGenerateAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "input")
	gen := NewGenerator(staticSource{"of", "the", "and"}, dir, discardLogger())

	words, err := gen.Generate(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, words, 3)

	units, err := List(dir)
	require.NoError(t, err)
	require.Len(t, units, 3)

	// Listing order is lexicographic by file name, not generation order.
	labels := []string{units[0].Label, units[1].Label, units[2].Label}
	assert.Equal(t, []string{"and", "of", "the"}, labels)
	assert.Equal(t, filepath.Join(dir, "and.txt"), units[0].Path)
}

func TestGenerateClearsStaleUnits(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "input")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("stale"), 0o644))

	gen := NewGenerator(staticSource{"fresh"}, dir, discardLogger())
	_, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)

	units, err := List(dir)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "fresh", units[0].Label)
}

func TestPercentEncodingRoundTrip(t *testing.T) {
	words := []string{"naïve", "a/b", "50%", "c'est", "two words", "été"}
	dir := filepath.Join(t.TempDir(), "input")
	gen := NewGenerator(staticSource(words), dir, discardLogger())

	_, err := gen.Generate(context.Background(), len(words))
	require.NoError(t, err)

	units, err := List(dir)
	require.NoError(t, err)
	require.Len(t, units, len(words))

	got := make(map[string]string)
	for _, u := range units {
		w, err := ReadWord(u)
		require.NoError(t, err)
		got[u.Label] = w
	}
	for _, w := range words {
		assert.Equal(t, w, got[w], "word %q did not round-trip", w)
	}
}

func TestListMissingDir(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list inputs")
}

func TestListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "word.txt"), []byte("word"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	units, err := List(dir)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "word", units[0].Label)
}

func TestGenerateInvalidCount(t *testing.T) {
	gen := NewGenerator(staticSource{"a"}, t.TempDir(), discardLogger())
	_, err := gen.Generate(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidCount)
}
