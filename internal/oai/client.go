// Package oai builds OpenAI API clients from the module's opaque credentials.
package oai

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/johnbchron/openai-orch/keys"
)

// NewClient constructs an OpenAI client authenticated with k. The
// organization header is only set when an org id is present.
func NewClient(k keys.Keys) openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(k.APIKey)}
	if k.OrgID != "" {
		opts = append(opts, option.WithOrganization(k.OrgID))
	}

	return openai.NewClient(opts...)
}
