package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"embedding-projector/internal/embeddings"
)

// PostgresSink writes embedding rows into a pgvector table.
type PostgresSink struct {
	db    *sql.DB
	table string // quoted identifier
}

// NewPostgres opens dsn with the pgx driver and migrates table.
func NewPostgres(ctx context.Context, dsn, table string) (*PostgresSink, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	s := &PostgresSink{db: db, table: tableIdent(table)}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// tableIdent quotes a configured table name for interpolation into SQL.
func tableIdent(table string) string {
	if table == "" {
		table = "word_embeddings"
	}
	return pq.QuoteIdentifier(table)
}

func (s *PostgresSink) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}
	// Dimension is left open; it depends on the embedding model.
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id UUID NOT NULL,
		ord INT NOT NULL,
		word TEXT NOT NULL,
		vector vector,
		model TEXT,
		created_at TIMESTAMPTZ DEFAULT now(),
		PRIMARY KEY (run_id, ord)
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.table, err)
	}
	return nil
}

// SaveRun inserts all rows of a run in one transaction.
func (s *PostgresSink) SaveRun(ctx context.Context, runID uuid.UUID, model string, rows []Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s(run_id, ord, word, vector, model) VALUES($1,$2,$3,$4::vector,$5)
		ON CONFLICT (run_id, ord) DO UPDATE SET word=excluded.word, vector=excluded.vector, model=excluded.model`,
		s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, r.Ord, r.Word, vectorToString(r.Vector), model); err != nil {
			return fmt.Errorf("insert row %d (%s): %w", r.Ord, r.Word, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}

// vectorToString converts a Vector ([]float32) to pgvector array format.
// Format: "[0.1,0.2,0.3,...]"
func vectorToString(v embeddings.Vector) string {
	if len(v) == 0 {
		return "[]"
	}
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
