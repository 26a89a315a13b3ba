// Package embed provides the embedding request kind: one input string in,
// one fixed-size embedding vector out.
package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"

	orch "github.com/johnbchron/openai-orch"
	"github.com/johnbchron/openai-orch/internal/attempt"
	"github.com/johnbchron/openai-orch/internal/oai"
	"github.com/johnbchron/openai-orch/keys"
	"github.com/johnbchron/openai-orch/logging"
	"github.com/johnbchron/openai-orch/policies"
)

// EmbeddingSize is the dimension of vectors produced by the embedding model.
const EmbeddingSize = 1536

// Model is the embedding model used for all requests of this kind.
const Model = openai.EmbeddingModelTextEmbeddingAda002

// Errors reported for timely but malformed API responses. Both are permanent
// and never retried.
var (
	ErrEmptyData = errors.New("embed: response data is empty")
	ErrDimension = errors.New("embed: unexpected embedding dimension")
)

// Options configure a Request beyond its input text.
type Options struct {
	// Logger receives per-attempt debug events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Request embeds a single input string.
type Request struct {
	Input string

	logger logging.Logger

	// create is the API call seam; tests stub it out.
	create func(ctx context.Context, k keys.Keys, params openai.EmbeddingNewParams) (*openai.CreateEmbeddingResponse, error)
}

// Response is the embedding vector for the request's input.
type Response struct {
	Embedding [EmbeddingSize]float64
}

// Interface compliance (compile-time assertion)
var _ orch.Request[Response] = (*Request)(nil)

// New creates an embedding request for the given input text.
func New(input string, optFns ...func(o *Options)) *Request {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Request{
		Input:  input,
		logger: opts.Logger,
		create: createEmbedding,
	}
}

func createEmbedding(ctx context.Context, k keys.Keys, params openai.EmbeddingNewParams) (*openai.CreateEmbeddingResponse, error) {
	client := oai.NewClient(k)
	return client.Embeddings.New(ctx, params)
}

// Send implements orch.Request. Embeddings use the static timeout ceiling
// directly; there is no per-request estimate to derive.
func (r *Request) Send(ctx context.Context, p policies.Policies, k keys.Keys, id uint64) (Response, error) {
	r.logger.Debug("starting embedding request", "request_id", id)

	params := openai.EmbeddingNewParams{
		Model: Model,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(r.Input)},
	}
	retry := p.Retry

	start := time.Now()
	resp, err := attempt.Do(ctx, &retry, p.Timeout.Timeout, func(ctx context.Context) (*openai.CreateEmbeddingResponse, error) {
		return r.create(ctx, k, params)
	})
	if err != nil {
		r.logger.Error("embedding request failed", "request_id", id, "error", err)
		return Response{}, fmt.Errorf("embedding request %d: %w", id, err)
	}

	r.logger.Debug("got embedding response", "request_id", id, "duration", time.Since(start))

	if len(resp.Data) == 0 {
		return Response{}, fmt.Errorf("embedding request %d: %w", id, ErrEmptyData)
	}

	vector := resp.Data[0].Embedding
	if len(vector) != EmbeddingSize {
		return Response{}, fmt.Errorf("embedding request %d: got %d values: %w", id, len(vector), ErrDimension)
	}

	var out Response
	copy(out.Embedding[:], vector)

	return out, nil
}
