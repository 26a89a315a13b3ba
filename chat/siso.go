package chat

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

// ErrMissingContent is returned when the API answers in time but the
// completion carries no message content. A malformed-but-timely response is
// permanent and never retried.
var ErrMissingContent = errors.New("chat: completion has no message content")

// Options configure a SisoRequest beyond its prompts and sampling parameters.
type Options struct {
	// Logger receives per-attempt debug events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// SisoRequest is a single-input/single-output chat completion: one system
// prompt and one user prompt producing one completion string.
type SisoRequest struct {
	SystemPrompt string
	UserPrompt   string
	Params       ModelParams

	logger logging.Logger

	// create is the API call seam; tests stub it out.
	create func(ctx context.Context, k keys.Keys, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// SisoResponse is the completion text produced by a SisoRequest.
type SisoResponse string

// String implements fmt.Stringer.
func (r SisoResponse) String() string { return string(r) }

// Interface compliance (compile-time assertion)
var _ orch.Request[SisoResponse] = (*SisoRequest)(nil)

// NewSisoRequest creates a SISO chat request with the given prompts and
// sampling parameters.
func NewSisoRequest(systemPrompt, userPrompt string, params ModelParams, optFns ...func(o *Options)) *SisoRequest {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &SisoRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Params:       params,
		logger:       opts.Logger,
		create:       createCompletion,
	}
}

func createCompletion(ctx context.Context, k keys.Keys, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	client := oai.NewClient(k)
	return client.Chat.Completions.New(ctx, params)
}

// Send implements orch.Request. It drives the full retry loop: each attempt
// is bounded by the effective timeout, timeouts and API errors are routed
// through the retry policy, and a completion without content is reported as a
// permanent error.
func (r *SisoRequest) Send(ctx context.Context, p policies.Policies, k keys.Keys, id uint64) (SisoResponse, error) {
	r.logger.Debug("starting chat request", "request_id", id)

	params := r.buildParams()
	timeout := p.Timeout.Effective(r.estimateTimeout())
	retry := p.Retry

	start := time.Now()
	resp, err := attempt.Do(ctx, &retry, timeout, func(ctx context.Context) (*openai.ChatCompletion, error) {
		return r.create(ctx, k, params)
	})
	if err != nil {
		r.logger.Error("chat request failed", "request_id", id, "error", err)
		return "", fmt.Errorf("chat request %d: %w", id, err)
	}

	r.logger.Debug("got chat response", "request_id", id, "duration", time.Since(start))

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat request %d: %w", id, ErrMissingContent)
	}

	return SisoResponse(resp.Choices[0].Message.Content), nil
}

// estimateTimeout scales the per-attempt timeout with the expected output
// size (max tokens) and the prompt length, at 10s per 512 estimated tokens.
// The ceiling in TimeoutPolicy still applies.
func (r *SisoRequest) estimateTimeout() time.Duration {
	promptChars := float64(len(r.SystemPrompt) + len(r.UserPrompt))
	estTokens := float64(r.Params.MaxTokens) + promptChars/4.0

	return time.Duration(10.0 * estTokens / 512.0 * float64(time.Second))
}

func (r *SisoRequest) buildParams() openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: r.Params.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(r.SystemPrompt),
			openai.UserMessage(r.UserPrompt),
		},
		Temperature:         openai.Float(r.Params.Temperature),
		TopP:                openai.Float(r.Params.TopP),
		MaxCompletionTokens: openai.Int(r.Params.MaxTokens),
		FrequencyPenalty:    openai.Float(r.Params.FrequencyPenalty),
		PresencePenalty:     openai.Float(r.Params.PresencePenalty),
	}

	switch len(r.Params.Stop) {
	case 0:
	case 1:
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfString: openai.String(r.Params.Stop[0])}
	default:
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: r.Params.Stop}
	}

	return params
}
