// Package claude provides a single-input/single-output request kind backed
// by the Anthropic Messages API. It mirrors the chat package's SISO shape so
// both providers can be mixed behind one orchestrator.
package claude

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	orch "github.com/johnbchron/openai-orch"
	"github.com/johnbchron/openai-orch/internal/attempt"
	"github.com/johnbchron/openai-orch/keys"
	"github.com/johnbchron/openai-orch/logging"
	"github.com/johnbchron/openai-orch/policies"
)

// ErrMissingContent is returned when the API answers in time but the message
// carries no text block. Permanent; never retried.
var ErrMissingContent = errors.New("claude: message has no text content")

// ModelParams are the sampling parameters for the Messages API.
type ModelParams struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
}

// DefaultModelParams returns deterministic, short-completion defaults.
func DefaultModelParams() ModelParams {
	return ModelParams{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.0,
		MaxTokens:   256,
	}
}

// Options configure a SisoRequest beyond its prompts and sampling parameters.
type Options struct {
	// Logger receives per-attempt debug events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// SisoRequest is a single-input/single-output message: one system prompt and
// one user prompt producing one completion string.
type SisoRequest struct {
	SystemPrompt string
	UserPrompt   string
	Params       ModelParams

	logger logging.Logger

	// create is the API call seam; tests stub it out.
	create func(ctx context.Context, k keys.Keys, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// SisoResponse is the completion text produced by a SisoRequest.
type SisoResponse string

// String implements fmt.Stringer.
func (r SisoResponse) String() string { return string(r) }

// Interface compliance (compile-time assertion)
var _ orch.Request[SisoResponse] = (*SisoRequest)(nil)

// NewSisoRequest creates a SISO message request with the given prompts and
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
		create:       createMessage,
	}
}

func createMessage(ctx context.Context, k keys.Keys, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var clientOpts []option.RequestOption
	if k.AnthropicAPIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(k.AnthropicAPIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return client.Messages.New(ctx, params)
}

// Send implements orch.Request with the same retry/timeout discipline as the
// chat package: the static ceiling bounds each attempt, timeouts and API
// errors consume retries, and an empty message is a permanent error.
func (r *SisoRequest) Send(ctx context.Context, p policies.Policies, k keys.Keys, id uint64) (SisoResponse, error) {
	r.logger.Debug("starting claude request", "request_id", id)

	params := r.buildParams()
	retry := p.Retry

	start := time.Now()
	resp, err := attempt.Do(ctx, &retry, p.Timeout.Timeout, func(ctx context.Context) (*anthropic.Message, error) {
		return r.create(ctx, k, params)
	})
	if err != nil {
		r.logger.Error("claude request failed", "request_id", id, "error", err)
		return "", fmt.Errorf("claude request %d: %w", id, err)
	}

	r.logger.Debug("got claude response", "request_id", id, "duration", time.Since(start))

	for _, block := range resp.Content {
		if block.Type == "text" {
			if text := block.Text; text != "" {
				return SisoResponse(text), nil
			}
		}
	}

	return "", fmt.Errorf("claude request %d: %w", id, ErrMissingContent)
}

func (r *SisoRequest) buildParams() anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       r.Params.Model,
		MaxTokens:   r.Params.MaxTokens,
		Temperature: anthropic.Float(r.Params.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(r.UserPrompt)),
		},
	}

	if r.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: r.SystemPrompt}}
	}

	return params
}
