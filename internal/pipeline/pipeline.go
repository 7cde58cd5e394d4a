package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"embedding-projector/internal/embeddings"
	"embedding-projector/internal/notify"
	"embedding-projector/internal/projector"
	"embedding-projector/internal/store"
	"embedding-projector/internal/vocabulary"
)

// State is a stage of a pipeline run.
type State string

const (
	StateInit            State = "INIT"
	StateGeneratingVocab State = "GENERATING_VOCAB"
	StateListingInputs   State = "LISTING_INPUTS"
	StateBatching        State = "BATCHING"
	StateWritingOutput   State = "WRITING_OUTPUT"
	StateDone            State = "DONE"
)

// VocabularyGenerator persists n sample words as word units.
type VocabularyGenerator interface {
	Generate(ctx context.Context, n int) ([]string, error)
}

// BatchEmbedder embeds one batch; an empty result marks a failed batch.
type BatchEmbedder interface {
	Embed(ctx context.Context, words []string) []embeddings.Vector
}

// OutputWriter writes the accumulated rows.
type OutputWriter interface {
	Write(rows []projector.Row) (projector.Paths, error)
}

// Options are the run constants.
type Options struct {
	WordCount int
	BatchSize int
	InputDir  string
	Model     string
}

// Pipeline wires the run stages together. Sink and Publisher are optional.
type Pipeline struct {
	Options   Options
	Generator VocabularyGenerator
	Embedder  BatchEmbedder
	Writer    OutputWriter
	Sink      store.Sink
	Publisher notify.Publisher
	Log       *slog.Logger
}

// Result summarises a completed run.
type Result struct {
	RunID          uuid.UUID       `json:"run_id"`
	WordsRequested int             `json:"words_requested"`
	UnitsListed    int             `json:"units_listed"`
	RowsWritten    int             `json:"rows_written"`
	Batches        int             `json:"batches"`
	APICalls       int             `json:"api_calls"`
	FailedBatches  int             `json:"failed_batches"`
	SkippedWords   int             `json:"skipped_words"`
	Dimension      int             `json:"dimension"`
	Paths          projector.Paths `json:"paths"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
}

var errInvalidOptions = errors.New("invalid pipeline options")

// Run executes one generate, embed and write cycle.
// Setup, read and write errors abort the run; embedding failures only drop their batch.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.New(), WordsRequested: p.Options.WordCount, StartedAt: time.Now().UTC()}
	log := p.Log.With("run_id", res.RunID)

	p.enter(log, StateInit)
	if p.Options.WordCount < 1 || p.Options.BatchSize < 1 {
		return res, fmt.Errorf("%w: word count %d, batch size %d", errInvalidOptions, p.Options.WordCount, p.Options.BatchSize)
	}

	p.enter(log, StateGeneratingVocab)
	if _, err := p.Generator.Generate(ctx, p.Options.WordCount); err != nil {
		return res, fmt.Errorf("generate vocabulary: %w", err)
	}

	p.enter(log, StateListingInputs)
	units, err := vocabulary.List(p.Options.InputDir)
	if err != nil {
		return res, err
	}
	total := len(units)
	res.UnitsListed = total
	if total != p.Options.WordCount {
		log.Warn("listed units differ from requested word count", "requested", p.Options.WordCount, "listed", total)
	}

	p.enter(log, StateBatching)
	rows, err := p.embedAll(ctx, log, units, &res)
	if err != nil {
		return res, err
	}

	p.enter(log, StateWritingOutput)
	paths, err := p.Writer.Write(rows)
	if err != nil {
		return res, fmt.Errorf("write output: %w", err)
	}
	res.Paths = paths
	res.RowsWritten = len(rows)
	if len(rows) > 0 {
		res.Dimension = len(rows[0].Vector)
	}
	if p.Sink != nil {
		if err := p.Sink.SaveRun(ctx, res.RunID, p.Options.Model, toStoreRows(rows)); err != nil {
			return res, fmt.Errorf("save run to sink: %w", err)
		}
		log.Info("rows saved to sink", "rows", len(rows))
	}

	p.enter(log, StateDone)
	res.FinishedAt = time.Now().UTC()
	log.Info("wrote vectors to file", "path", paths.Vectors)
	log.Info("wrote metadata to file", "path", paths.Metadata)
	log.Info("you can now upload files to https://projector.tensorflow.org/")
	p.publish(ctx, log, res)
	return res, nil
}

func (p *Pipeline) embedAll(ctx context.Context, log *slog.Logger, units []vocabulary.Unit, res *Result) ([]projector.Row, error) {
	total := len(units)
	expected := (total + p.Options.BatchSize - 1) / p.Options.BatchSize
	rows := make([]projector.Row, 0, total)

	for processed := 0; processed < total; {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("embedding interrupted: %w", err)
		}
		end := min(processed+p.Options.BatchSize, total)
		batch := units[processed:end]
		log.Info("processing batch", "processed", processed, "batch_size", len(batch))

		words := make([]string, len(batch))
		for i, u := range batch {
			w, err := vocabulary.ReadWord(u)
			if err != nil {
				return nil, err
			}
			words[i] = w
		}

		vectors := p.Embedder.Embed(ctx, words)
		res.APICalls++
		res.Batches++
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("embedding interrupted: %w", err)
		}
		if len(vectors) != len(batch) {
			res.FailedBatches++
			res.SkippedWords += len(batch)
			log.Error("batch dropped", "from", processed, "to", end, "vectors", len(vectors))
		} else {
			for i, u := range batch {
				rows = append(rows, projector.Row{Label: u.Label, Vector: vectors[i]})
			}
		}
		log.Info(fmt.Sprintf("API call %d/%d done", res.APICalls, expected))
		processed = end
	}
	return rows, nil
}

func (p *Pipeline) publish(ctx context.Context, log *slog.Logger, res Result) {
	if p.Publisher == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		log.Warn("failed to marshal run result", "err", err)
		return
	}
	event := notify.Event{ID: uuid.New(), Type: notify.EventRunCompleted, Payload: payload, CreatedAt: res.FinishedAt}
	if err := notify.PublishWithRetry(ctx, p.Publisher, event, 3, 200*time.Millisecond); err != nil {
		log.Warn("failed to publish run event", "err", err)
	}
}

func (p *Pipeline) enter(log *slog.Logger, s State) {
	log.Debug("pipeline state", "state", s)
}

func toStoreRows(rows []projector.Row) []store.Row {
	out := make([]store.Row, len(rows))
	for i, r := range rows {
		out[i] = store.Row{Ord: i, Word: r.Label, Vector: r.Vector}
	}
	return out
}
