package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIEmbedder calls OpenAI's embeddings API with one request per batch.
type OpenAIEmbedder struct {
	model   openai.EmbeddingModel
	client  *openai.Client
	timeout time.Duration
}

const defaultEmbeddingTimeout = 30 * time.Second

// OpenAIOptions tunes the embedder beyond key and model.
type OpenAIOptions struct {
	BaseURL string
	Timeout time.Duration
}

// NewOpenAIEmbedder creates a new OpenAI embedder.
// SDK-level retries are disabled; callers wrap it in a BatchClient for retries.
func NewOpenAIEmbedder(apiKey string, model openai.EmbeddingModel, opts OpenAIOptions) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if model == "" {
		model = openai.EmbeddingModelTextEmbeddingAda002
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultEmbeddingTimeout
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	cli := openai.NewClient(reqOpts...)
	return &OpenAIEmbedder{
		model:   model,
		client:  &cli,
		timeout: opts.Timeout,
	}, nil
}

// EmbedBatch embeds all texts in a single API call.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	if e == nil || e.client == nil {
		return nil, fmt.Errorf("nil openai embedder")
	}
	if len(texts) == 0 {
		return []Vector{}, nil
	}
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	inputs := make([]string, len(texts))
	copy(inputs, texts)

	resp, err := e.client.Embeddings.New(reqCtx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrCountMismatch, len(texts), len(resp.Data))
	}

	// Place by the response index rather than trusting response order.
	out := make([]Vector, len(texts))
	for _, d := range resp.Data {
		i := int(d.Index)
		if i < 0 || i >= len(out) || out[i] != nil {
			return nil, fmt.Errorf("openai: unexpected embedding index %d", d.Index)
		}
		vec := make(Vector, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
