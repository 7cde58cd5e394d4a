package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"embedding-projector/internal/config"
	"embedding-projector/internal/embeddings"
	"embedding-projector/internal/logger"
	"embedding-projector/internal/notify"
	"embedding-projector/internal/pipeline"
	"embedding-projector/internal/projector"
	"embedding-projector/internal/retry"
	"embedding-projector/internal/store"
	"embedding-projector/internal/vocabulary"
)

// Deps bundles the runtime dependencies of a projector run.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Source    vocabulary.Source
	Embedder  embeddings.Embedder
	Sink      store.Sink       // nil when STORE_PROVIDER=none
	Publisher notify.Publisher // nil when NOTIFY_PROVIDER=none
}

// Build loads env, config, and shared components.
func Build(ctx context.Context) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	src, err := buildSource(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize word source: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	sink, err := buildSink(ctx, cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	pub, err := buildPublisher(cfg, log)
	if err != nil {
		if sink != nil {
			_ = sink.Close()
		}
		return Deps{}, fmt.Errorf("failed to initialize notifier: %w", err)
	}
	return Deps{
		Config:    cfg,
		Log:       log,
		Source:    src,
		Embedder:  embedder,
		Sink:      sink,
		Publisher: pub,
	}, nil
}

// Pipeline assembles a pipeline from deps.
func (d Deps) Pipeline() *pipeline.Pipeline {
	cfg := d.Config
	policy := retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
		OneShot:     cfg.OneShot(),
	}
	return &pipeline.Pipeline{
		Options: pipeline.Options{
			WordCount: cfg.WordCount,
			BatchSize: cfg.BatchSize,
			InputDir:  cfg.InputDir,
			Model:     cfg.EmbeddingModel,
		},
		Generator: vocabulary.NewGenerator(d.Source, cfg.InputDir, d.Log),
		Embedder:  embeddings.NewBatchClient(d.Embedder, policy, d.Log),
		Writer:    projector.NewWriter(cfg.OutputDir, cfg.EmbeddingModel),
		Sink:      d.Sink,
		Publisher: d.Publisher,
		Log:       d.Log,
	}
}

// Close releases optional connections.
func (d Deps) Close() {
	if d.Sink != nil {
		if err := d.Sink.Close(); err != nil {
			d.Log.Warn("failed to close store", "err", err)
		}
	}
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Log.Warn("failed to close notifier", "err", err)
		}
	}
}

func buildSource(cfg config.Config, log *slog.Logger) (vocabulary.Source, error) {
	if cfg.VocabularyFile != "" {
		list, err := vocabulary.LoadFile(cfg.VocabularyFile)
		if err != nil {
			return nil, err
		}
		log.Info("using vocabulary file", "path", cfg.VocabularyFile, "words", list.Len())
		return list, nil
	}
	list, err := vocabulary.DefaultSource(cfg.Language)
	if err != nil {
		return nil, err
	}
	log.Info("using embedded vocabulary", "language", cfg.Language, "words", list.Len())
	return list, nil
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel), embeddings.OpenAIOptions{
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.EmbeddingTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
	}
	log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel, "retry_mode", cfg.RetryMode)
	return embedder, nil
}

func buildSink(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Sink, error) {
	switch cfg.StoreProvider {
	case "none", "":
		return nil, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(ctx, cfg.DBURL, cfg.StoreTable)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres sink", "table", cfg.StoreTable)
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: none, postgres)", cfg.StoreProvider)
	}
}

func buildPublisher(cfg config.Config, log *slog.Logger) (notify.Publisher, error) {
	switch cfg.NotifyProvider {
	case "none", "":
		return nil, nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when NOTIFY_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS notifier")
		return notify.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid NOTIFY_PROVIDER: %s (valid options: none, nats)", cfg.NotifyProvider)
	}
}
