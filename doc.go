// Package orch provides a concurrency-bounded orchestrator for bulk requests
// against rate-limited text and embedding generation APIs. Callers submit
// units of work, the orchestrator admits a bounded number of them to execute
// concurrently, each request drives its own retry/timeout loop under
// configurable policies, and results are retrieved later through an opaque
// handle.
//
// Most applications interact with this module by:
//  1. Creating an Orchestrator via New() with policies and keys
//  2. Defining a request kind that implements Request (optional; the chat,
//     embed and claude packages ship ready-made kinds)
//  3. Calling AddRequest to submit work, which returns a RequestID
//  4. Calling GetResponse with that RequestID to collect the result
//
// Submission never blocks on the work itself: AddRequest registers a result
// slot and spawns a task goroutine that waits for an admission permit before
// performing the remote call. GetResponse consumes the result slot exactly
// once; asking a second time for the same id reports ErrNotFound.
//
// The Orchestrator is safe for concurrent use from multiple goroutines.
package orch
