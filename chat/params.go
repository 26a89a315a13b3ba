package chat

import "github.com/openai/openai-go"

// ModelParams are the sampling parameters common to all chat models. Refer to
// the OpenAI Chat Completions API for exact semantics of each field.
type ModelParams struct {
	Model            string
	Temperature      float64
	TopP             float64
	Stop             []string
	MaxTokens        int64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// DefaultModelParams returns deterministic, short-completion defaults.
func DefaultModelParams() ModelParams {
	return ModelParams{
		Model:       openai.ChatModelGPT3_5Turbo,
		Temperature: 0.0,
		TopP:        1.0,
		MaxTokens:   256,
	}
}
