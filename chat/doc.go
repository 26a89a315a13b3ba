// Package chat provides request kinds backed by OpenAI chat models. The only
// kind currently shipped is single-input/single-output (SISO): one system
// prompt and one user prompt in, one completion string out.
package chat
