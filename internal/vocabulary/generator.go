package vocabulary

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
)

// Generator writes sample words into a directory, one unit per word.
type Generator struct {
	source Source
	dir    string
	log    *slog.Logger
}

// NewGenerator returns a generator persisting words from source into dir.
func NewGenerator(source Source, dir string, log *slog.Logger) *Generator {
	return &Generator{source: source, dir: dir, log: log}
}

// Generate clears the directory and writes n words. It returns the words written.
func (g *Generator) Generate(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	if err := os.RemoveAll(g.dir); err != nil {
		return nil, fmt.Errorf("clear input dir %q: %w", g.dir, err)
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create input dir %q: %w", g.dir, err)
	}

	words, err := g.source.Words(n)
	if err != nil {
		return nil, fmt.Errorf("sample words: %w", err)
	}
	if len(words) < n {
		g.log.Warn("word source shorter than requested", "requested", n, "available", len(words))
	}

	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(g.dir, FileName(w))
		if err := os.WriteFile(path, []byte(url.PathEscape(w)), 0o644); err != nil {
			return nil, fmt.Errorf("write word unit %q: %w", path, err)
		}
	}

	abs, err := filepath.Abs(g.dir)
	if err != nil {
		abs = g.dir
	}
	g.log.Info("vocabulary generated", "count", len(words), "dir", abs)
	return words, nil
}
