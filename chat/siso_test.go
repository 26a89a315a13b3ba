package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orch "github.com/johnbchron/openai-orch"
	"github.com/johnbchron/openai-orch/keys"
	"github.com/johnbchron/openai-orch/policies"
)

func stubCompletion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func fastPolicies() policies.Policies {
	p := policies.Default()
	p.Retry = policies.Immediate(2)
	return p
}

func TestSendSuccess(t *testing.T) {
	req := NewSisoRequest("You are a helpful assistant.", "What are you?", DefaultModelParams())

	var calls int
	req.create = func(context.Context, keys.Keys, openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		calls++
		return stubCompletion("I am an assistant."), nil
	}

	resp, err := req.Send(context.Background(), fastPolicies(), keys.New("sk", ""), 1)
	require.NoError(t, err)
	assert.Equal(t, "I am an assistant.", resp.String())
	assert.Equal(t, 1, calls)
}

func TestSendRetriesTransientThenExhausts(t *testing.T) {
	req := NewSisoRequest("sys", "user", DefaultModelParams())

	remote := errors.New("429 rate limited")
	var calls int
	req.create = func(context.Context, keys.Keys, openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		calls++
		return nil, remote
	}

	_, err := req.Send(context.Background(), fastPolicies(), keys.New("sk", ""), 2)
	assert.ErrorIs(t, err, orch.ErrRetriesExhausted)
	assert.ErrorIs(t, err, remote)
	assert.Equal(t, 3, calls, "1 initial attempt + 2 retries")
}

func TestSendMissingContentIsPermanent(t *testing.T) {
	req := NewSisoRequest("sys", "user", DefaultModelParams())

	var calls int
	req.create = func(context.Context, keys.Keys, openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		calls++
		return &openai.ChatCompletion{}, nil
	}

	_, err := req.Send(context.Background(), fastPolicies(), keys.New("sk", ""), 3)
	assert.ErrorIs(t, err, ErrMissingContent)
	assert.Equal(t, 1, calls, "malformed-but-timely responses are never retried")
}

func TestEstimateTimeout(t *testing.T) {
	params := DefaultModelParams()
	params.MaxTokens = 256

	// No prompt text: 10s * 256/512 = 5s.
	req := NewSisoRequest("", "", params)
	assert.Equal(t, 5*time.Second, req.estimateTimeout())

	// 2048 prompt chars add 512 estimated tokens: 10s * 768/512 = 15s.
	req = NewSisoRequest(strings.Repeat("a", 1024), strings.Repeat("b", 1024), params)
	assert.Equal(t, 15*time.Second, req.estimateTimeout())
}

func TestEstimateNeverExceedsCeiling(t *testing.T) {
	params := DefaultModelParams()
	params.MaxTokens = 100_000

	req := NewSisoRequest("sys", "user", params)
	ceiling := policies.TimeoutPolicy{Timeout: 30 * time.Second}

	assert.Greater(t, req.estimateTimeout(), 30*time.Second)
	assert.Equal(t, 30*time.Second, ceiling.Effective(req.estimateTimeout()))
}

func TestBuildParams(t *testing.T) {
	params := DefaultModelParams()
	params.Stop = []string{"END"}

	req := NewSisoRequest("sys", "user", params)
	built := req.buildParams()

	assert.Equal(t, openai.ChatModelGPT3_5Turbo, built.Model)
	require.Len(t, built.Messages, 2)
	assert.Equal(t, int64(256), built.MaxCompletionTokens.Value)
	assert.Equal(t, "END", built.Stop.OfString.Value)

	params.Stop = []string{"END", "STOP"}
	req = NewSisoRequest("sys", "user", params)
	built = req.buildParams()
	assert.Equal(t, []string{"END", "STOP"}, built.Stop.OfStringArray)
}
