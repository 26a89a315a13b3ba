// Package policies defines the configuration bundle that governs every
// request's execution: how failed attempts are retried, how many requests may
// run concurrently, and the ceiling on a single attempt's duration.
//
// Policies is a plain value type. Every submitted request receives its own
// copy, so the mutable retry counter of one request can never leak into
// another. The zero value is not useful; start from Default() and override
// individual fields.
package policies
