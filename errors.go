package orch

import "errors"

// Error definitions for the orch package. ErrNotFound and ErrResponseType
// indicate a defect in the calling code (consuming a handle twice, or
// retrieving with the wrong response kind) rather than a runtime condition
// to recover from.
var (
	// ErrNotFound is returned by GetResponse when the request id is unknown
	// or its result has already been consumed.
	ErrNotFound = errors.New("no pending request for id")

	// ErrChannelClosed is returned by GetResponse when the producing task
	// terminated without delivering a result.
	ErrChannelClosed = errors.New("request terminated without a response")

	// ErrResponseType is returned by GetResponse when the stored result does
	// not match the response kind the caller asked for.
	ErrResponseType = errors.New("response kind mismatch")

	// ErrRetriesExhausted wraps the last transient failure once a request's
	// retry budget is spent. Request kinds return it from their retry loops.
	ErrRetriesExhausted = errors.New("reached max retries")
)
