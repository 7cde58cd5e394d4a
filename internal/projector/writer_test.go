package projector

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embedding-projector/internal/embeddings"
)

func TestWriteRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	w := NewWriter(dir, "words")

	paths, err := w.Write([]Row{
		{Label: "and", Vector: embeddings.Vector{0.5, -1}},
		{Label: "of", Vector: embeddings.Vector{0.25, 2}},
		{Label: "tab\there", Vector: embeddings.Vector{0, 1e-7}},
	})
	require.NoError(t, err)

	meta, err := os.ReadFile(paths.Metadata)
	require.NoError(t, err)
	assert.Equal(t, "and\nof\ntab here\n", string(meta))

	vecs, err := os.ReadFile(paths.Vectors)
	require.NoError(t, err)
	assert.Equal(t, "0.5\t-1\n0.25\t2\n0\t1e-07\n", string(vecs))

	raw, err := os.ReadFile(paths.Config)
	require.NoError(t, err)
	var cfg projectorConfig
	require.NoError(t, json.Unmarshal(raw, &cfg))
	require.Len(t, cfg.Embeddings, 1)
	assert.Equal(t, []int{3, 2}, cfg.Embeddings[0].TensorShape)
	assert.Equal(t, VectorsFile, cfg.Embeddings[0].TensorPath)
	assert.Equal(t, MetadataFile, cfg.Embeddings[0].MetadataPath)
}

func TestWriteNoRows(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewWriter(dir, "words").Write(nil)
	require.NoError(t, err)
	assert.Empty(t, paths.Config)

	info, err := os.Stat(paths.Vectors)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	_, err = os.Stat(filepath.Join(dir, ConfigFile))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteNoRowsRemovesPreviousConfig(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "words")

	first, err := w.Write([]Row{{Label: "a", Vector: embeddings.Vector{1, 2}}})
	require.NoError(t, err)
	require.FileExists(t, first.Config)

	second, err := w.Write(nil)
	require.NoError(t, err)
	assert.Empty(t, second.Config)
	assert.NoFileExists(t, filepath.Join(dir, ConfigFile))

	meta, err := os.ReadFile(second.Metadata)
	require.NoError(t, err)
	assert.Empty(t, meta)
}

func TestWriteUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewWriter(filepath.Join(file, "out"), "words").Write([]Row{{Label: "a", Vector: embeddings.Vector{1}}})
	assert.Error(t, err)
}
