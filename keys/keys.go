// Package keys holds the credentials handed to every request. The
// orchestrator passes them through opaquely and never inspects or validates
// them; the concrete request kinds decide which fields they need.
package keys

import (
	"errors"
	"os"
)

// Environment variables read by FromEnv.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvOpenAIOrgID     = "OPENAI_ORG_ID"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// ErrMissingAPIKey is returned by FromEnv when no API key is set.
var ErrMissingAPIKey = errors.New("keys: " + EnvOpenAIAPIKey + " is not set")

// Keys carries the API credentials for the remote service. OrgID and
// AnthropicAPIKey are optional; an empty string means unset.
type Keys struct {
	APIKey          string
	OrgID           string
	AnthropicAPIKey string
}

// New creates Keys from an API key and an optional organization id.
func New(apiKey, orgID string) Keys {
	return Keys{APIKey: apiKey, OrgID: orgID}
}

// FromEnv loads Keys from the environment. The OpenAI API key is required;
// the organization id and the Anthropic key are picked up when present.
func FromEnv() (Keys, error) {
	apiKey := os.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return Keys{}, ErrMissingAPIKey
	}

	return Keys{
		APIKey:          apiKey,
		OrgID:           os.Getenv(EnvOpenAIOrgID),
		AnthropicAPIKey: os.Getenv(EnvAnthropicAPIKey),
	}, nil
}
