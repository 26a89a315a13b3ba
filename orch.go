package orch

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/johnbchron/openai-orch/internal/gate"
	"github.com/johnbchron/openai-orch/keys"
	"github.com/johnbchron/openai-orch/logging"
	"github.com/johnbchron/openai-orch/policies"
)

// Request is the capability contract for a unit of remote work. Send owns the
// entire retry loop for the request: build the remote call, bound each attempt
// with the effective timeout, and route transient failures through
// RetryPolicy.OnFailure until it reports exhaustion.
//
// Send receives its own copy of the orchestrator's policies, so mutating the
// retry state is safe and never observed by other requests. The id is the
// numeric value of the handle returned by AddRequest, useful for logging.
type Request[R any] interface {
	Send(ctx context.Context, p policies.Policies, k keys.Keys, id uint64) (R, error)
}

// RequestID is the opaque handle returned by AddRequest. The type parameter
// statically associates the handle with the response kind it will yield; the
// association is verified again at retrieval time against the stored result.
type RequestID[R any] struct {
	id uint64
}

// Value returns the numeric id, primarily for logging.
func (r RequestID[R]) Value() uint64 { return r.id }

// outcome is the type-erased result stored in the registry: either a response
// value of the request's kind or a terminal error.
type outcome struct {
	value any
	err   error
}

// Options configures an Orchestrator instance.
type Options struct {
	// Policies govern retry, concurrency and timeout behavior for every
	// request submitted to this orchestrator. Defaults to policies.Default().
	Policies policies.Policies

	// Logger receives structured submission/completion events. Defaults to
	// NoOpLogger so the library stays silent unless configured.
	Logger logging.Logger
}

// Orchestrator coordinates the concurrency of bulk requests and the delivery
// of their responses. It owns the registry mapping request ids to result
// slots and the admission gate that bounds concurrently executing requests.
//
// Construct it once and share it: all methods are safe for concurrent use.
type Orchestrator struct {
	mu       sync.Mutex
	requests map[uint64]chan outcome

	gate     *gate.Gate
	policies policies.Policies
	keys     keys.Keys
	logger   logging.Logger
}

// New creates an Orchestrator with the given keys and optional overrides.
//
//	o := orch.New(keys, func(o *orch.Options) {
//	    o.Policies.Concurrency.MaxConcurrentRequests = 25
//	    o.Logger = logging.NewDefaultSlogLogger()
//	})
func New(k keys.Keys, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Policies: policies.Default(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		requests: make(map[uint64]chan outcome),
		gate:     gate.New(opts.Policies.Concurrency.MaxConcurrentRequests),
		policies: opts.Policies,
		keys:     k,
		logger:   opts.Logger,
	}
}

// Pending returns the number of registered, not yet consumed results.
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.requests)
}

// register mints a fresh id and installs its result slot under the registry
// lock. The slot is buffered so a completed task never blocks on (or loses a
// result to) a consumer that has not arrived yet: the result stays retrievable
// until GetResponse consumes it. Ids are regenerated on collision while the
// colliding entry is live.
func (o *Orchestrator) register() (uint64, chan outcome) {
	ch := make(chan outcome, 1)

	o.mu.Lock()
	defer o.mu.Unlock()

	for {
		id := newID()
		if _, live := o.requests[id]; live {
			continue
		}

		o.requests[id] = ch

		return id, ch
	}
}

// newID derives a 64-bit request id from a random v4 UUID.
func newID() uint64 {
	u := uuid.New()
	return binary.BigEndian.Uint64(u[:8])
}

// AddRequest submits a request to the orchestrator and returns a handle for
// collecting its result later. It never blocks on the work itself: the result
// slot is registered before the task goroutine is spawned, so a GetResponse
// issued immediately after submission can never miss the entry, and the task
// waits for an admission permit on its own goroutine regardless of how
// saturated the gate is.
//
// AddRequest is a function rather than a method because Go methods cannot
// introduce type parameters. The response kind is named explicitly at the
// call site, e.g. AddRequest[chat.SisoResponse](ctx, o, req), since it cannot
// be inferred from the request value.
func AddRequest[R any](ctx context.Context, o *Orchestrator, req Request[R]) RequestID[R] {
	id, ch := o.register()
	o.logger.Debug("request submitted", "request_id", id)

	// The task receives value copies of the policies and keys; retry state
	// never leaks across requests.
	go o.perform(ctx, id, ch, func(ctx context.Context) (any, error) {
		return req.Send(ctx, o.policies, o.keys, id)
	})

	return RequestID[R]{id: id}
}

// perform is the task body shared by all request kinds: acquire a permit,
// execute, release the permit unconditionally, deliver the outcome. A panic
// in the request leaves the slot to be closed without a value, which
// GetResponse surfaces as ErrChannelClosed.
func (o *Orchestrator) perform(
	ctx context.Context,
	id uint64,
	ch chan<- outcome,
	send func(ctx context.Context) (any, error),
) {
	defer close(ch)
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("request panicked", "request_id", id, "panic", r)
		}
	}()

	if err := o.gate.Acquire(ctx); err != nil {
		ch <- outcome{err: fmt.Errorf("request %d: admission aborted: %w", id, err)}
		return
	}
	defer o.gate.Release()

	value, err := send(ctx)
	if err != nil {
		o.logger.Warn("request failed", "request_id", id, "error", err)
		ch <- outcome{err: err}

		return
	}

	o.logger.Debug("request completed", "request_id", id)
	ch <- outcome{value: value}
}

// GetResponse collects the result for a request handle, blocking until the
// task delivers it or ctx is done. The registry entry is removed before
// waiting, enforcing exactly-once consumption: a second call with the same
// handle returns ErrNotFound.
//
// The request's own error (remote failure, retries exhausted, malformed
// payload) is returned unchanged; the orchestrator adds interpretation only
// for registry-level failures.
func GetResponse[R any](ctx context.Context, o *Orchestrator, id RequestID[R]) (R, error) {
	var zero R

	o.mu.Lock()
	ch, ok := o.requests[id.id]
	delete(o.requests, id.id)
	o.mu.Unlock()

	if !ok {
		return zero, fmt.Errorf("request %d: %w", id.id, ErrNotFound)
	}

	select {
	case res, open := <-ch:
		if !open {
			return zero, fmt.Errorf("request %d: %w", id.id, ErrChannelClosed)
		}

		if res.err != nil {
			return zero, res.err
		}

		value, isKind := res.value.(R)
		if !isKind {
			return zero, fmt.Errorf(
				"request %d: stored %T, requested %T: %w",
				id.id, res.value, zero, ErrResponseType,
			)
		}

		return value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
