package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Retry modes for the batch embedding client.
const (
	RetryModeRetry   = "retry"   // retry until success or attempts exhausted
	RetryModeOneShot = "oneshot" // single attempt whatever the outcome
)

// Config holds runtime configuration for a projector run.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`

	// Vocabulary
	WordCount      int    `env:"WORD_COUNT" envDefault:"30" validate:"min=1"`
	BatchSize      int    `env:"BATCH_SIZE" envDefault:"1000" validate:"min=1,max=2048"` // OpenAI caps inputs per request at 2048
	Language       string `env:"LANGUAGE" envDefault:"english" validate:"required"`
	VocabularyFile string `env:"VOCABULARY_FILE"`

	// Filesystem
	InputDir  string `env:"INPUT_DIR" envDefault:"input" validate:"required"`
	OutputDir string `env:"OUTPUT_DIR" envDefault:"output" validate:"required"`

	// Embeddings
	OpenAIKey        string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	EmbeddingModel   string        `env:"EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`
	EmbeddingTimeout time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"30s"`

	// Retry
	RetryMode        string        `env:"RETRY_MODE" envDefault:"retry" validate:"oneof=retry oneshot"`
	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"3" validate:"min=1"`
	RetryBaseDelay   time.Duration `env:"RETRY_BASE_DELAY" envDefault:"500ms"`
	RetryMaxDelay    time.Duration `env:"RETRY_MAX_DELAY" envDefault:"5s"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"none" validate:"oneof=none postgres"`
	DBURL         string `env:"DB_URL"`
	StoreTable    string `env:"STORE_TABLE" envDefault:"word_embeddings"`

	// Notifications
	NotifyProvider string `env:"NOTIFY_PROVIDER" envDefault:"none" validate:"oneof=none nats"`
	QueueURL       string `env:"QUEUE_URL"`

	// Output server; disabled when empty.
	ServeAddr string `env:"SERVE_ADDR"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrUnsafeInputDir is returned when INPUT_DIR points somewhere a run must not wipe.
var ErrUnsafeInputDir = errors.New("input dir is cleared on every run")

// Validate checks field constraints declared in struct tags. INPUT_DIR is
// removed before each run, so it may not be the working directory, a
// filesystem root or the output directory.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := checkInputDir(c.InputDir, c.OutputDir); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func checkInputDir(input, output string) error {
	in, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolve input dir %q: %w", input, err)
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("resolve output dir %q: %w", output, err)
	}
	cwd, err := filepath.Abs(".")
	if err != nil {
		return fmt.Errorf("resolve working dir: %w", err)
	}
	switch {
	case in == cwd:
		return fmt.Errorf("%w: %q is the working directory", ErrUnsafeInputDir, input)
	case in == filepath.Dir(in):
		return fmt.Errorf("%w: %q is a filesystem root", ErrUnsafeInputDir, input)
	case in == out:
		return fmt.Errorf("%w: %q is also the output dir", ErrUnsafeInputDir, input)
	case isWithin(cwd, in):
		return fmt.Errorf("%w: %q contains the working directory", ErrUnsafeInputDir, input)
	case isWithin(out, in):
		return fmt.Errorf("%w: %q contains the output dir", ErrUnsafeInputDir, input)
	}
	return nil
}

// isWithin reports whether path lies strictly below dir.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// OneShot reports whether the legacy single-attempt embedding mode is selected.
func (c Config) OneShot() bool {
	return c.RetryMode == RetryModeOneShot
}
