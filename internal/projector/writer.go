package projector

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"embedding-projector/internal/embeddings"
)

// Output file names inside the output directory.
const (
	VectorsFile  = "vectors.tsv"
	MetadataFile = "metadata.tsv"
	ConfigFile   = "projector_config.json"
)

// Row pairs a metadata label with its vector.
type Row struct {
	Label  string
	Vector embeddings.Vector
}

// Paths lists the files written by a Writer.
type Paths struct {
	Vectors  string `json:"vectors"`
	Metadata string `json:"metadata"`
	Config   string `json:"config,omitempty"`
}

// Writer writes rows in the TensorFlow Embedding Projector TSV format.
type Writer struct {
	dir        string
	tensorName string
}

// NewWriter writes into dir; tensorName labels the tensor in projector_config.json.
func NewWriter(dir, tensorName string) *Writer {
	return &Writer{dir: dir, tensorName: tensorName}
}

// Write emits metadata and vector rows in order, then the projector config.
func (w *Writer) Write(rows []Row) (Paths, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir %q: %w", w.dir, err)
	}
	paths := Paths{
		Vectors:  filepath.Join(w.dir, VectorsFile),
		Metadata: filepath.Join(w.dir, MetadataFile),
	}

	if err := writeLines(paths.Metadata, rows, func(r Row) string { return sanitizeLabel(r.Label) }); err != nil {
		return Paths{}, err
	}
	if err := writeLines(paths.Vectors, rows, func(r Row) string { return FormatVector(r.Vector) }); err != nil {
		return Paths{}, err
	}
	if len(rows) == 0 {
		// A config from an earlier run would describe a tensor that no longer exists.
		if err := os.Remove(filepath.Join(w.dir, ConfigFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Paths{}, fmt.Errorf("remove stale config: %w", err)
		}
		return paths, nil
	}

	paths.Config = filepath.Join(w.dir, ConfigFile)
	if err := w.writeConfig(paths.Config, len(rows), len(rows[0].Vector)); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

func writeLines(path string, rows []Row, line func(Row) string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	for _, r := range rows {
		if _, err := bw.WriteString(line(r) + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write %q: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	return nil
}

// FormatVector renders v as tab-separated values.
func FormatVector(v embeddings.Vector) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'g', -1, 32)
	}
	return strings.Join(parts, "\t")
}

var labelReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func sanitizeLabel(s string) string { return labelReplacer.Replace(s) }

type projectorConfig struct {
	Embeddings []embeddingInfo `json:"embeddings"`
}

type embeddingInfo struct {
	TensorName   string `json:"tensorName"`
	TensorShape  []int  `json:"tensorShape"`
	TensorPath   string `json:"tensorPath"`
	MetadataPath string `json:"metadataPath"`
}

// Paths are relative so the projector resolves them against the config URL.
func (w *Writer) writeConfig(path string, rows, dim int) error {
	cfg := projectorConfig{Embeddings: []embeddingInfo{{
		TensorName:   w.tensorName,
		TensorShape:  []int{rows, dim},
		TensorPath:   VectorsFile,
		MetadataPath: MetadataFile,
	}}}
	body, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
