package policies

import (
	"context"
	"time"
)

// Policies bundles the retry, concurrency and timeout configuration applied
// to a single request. It is copied by value into every spawned task.
type Policies struct {
	Retry       RetryPolicy
	Concurrency ConcurrencyPolicy
	Timeout     TimeoutPolicy
}

// Default returns the baseline configuration: exponential backoff with
// 5 retries (1s initial delay, 10s cap), 10 concurrent requests and a
// 30 second timeout ceiling.
func Default() Policies {
	return Policies{
		Retry:       ExponentialBackoff(5, time.Second, 10*time.Second),
		Concurrency: ConcurrencyPolicy{MaxConcurrentRequests: 10},
		Timeout:     TimeoutPolicy{Timeout: 30 * time.Second},
	}
}

// retryStrategy selects the delay behavior of a RetryPolicy.
type retryStrategy int

const (
	retryImmediate retryStrategy = iota
	retryConstantDelay
	retryExponentialBackoff
)

// RetryPolicy decides whether a failed attempt should be retried and sleeps
// for the strategy's delay before admitting the retry. The counter advances
// on every admitted retry, so a policy value must not be shared between
// requests.
type RetryPolicy struct {
	strategy       retryStrategy
	currentRetries uint32
	maxRetries     uint32

	// constant delay strategy
	delay time.Duration

	// exponential backoff strategy
	initialDelay time.Duration
	maxDelay     time.Duration
}

// Immediate returns a policy that retries up to max times with no delay.
func Immediate(max uint32) RetryPolicy {
	return RetryPolicy{strategy: retryImmediate, maxRetries: max}
}

// ConstantDelay returns a policy that retries up to max times, sleeping for
// delay before each retry.
func ConstantDelay(max uint32, delay time.Duration) RetryPolicy {
	return RetryPolicy{strategy: retryConstantDelay, maxRetries: max, delay: delay}
}

// ExponentialBackoff returns a policy that retries up to max times, doubling
// the delay before each retry starting at initial and never exceeding cap.
func ExponentialBackoff(max uint32, initial, maxDelay time.Duration) RetryPolicy {
	return RetryPolicy{
		strategy:     retryExponentialBackoff,
		maxRetries:   max,
		initialDelay: initial,
		maxDelay:     maxDelay,
	}
}

// MaxRetries returns the configured retry budget.
func (p *RetryPolicy) MaxRetries() uint32 { return p.maxRetries }

// CurrentRetries returns how many retries have been admitted so far.
func (p *RetryPolicy) CurrentRetries() uint32 { return p.currentRetries }

// OnFailure reports whether a failed attempt should be retried. It is the
// single extension point for retry decisions and the only place a retry delay
// occurs: when the budget is not exhausted it sleeps per the strategy,
// advances the counter and returns true. Once currentRetries == maxRetries it
// returns false without sleeping, at which point the caller must surface its
// accumulated terminal error.
//
// A context canceled mid-delay aborts the wait and returns false; callers
// should check ctx.Err() to distinguish cancellation from exhaustion.
func (p *RetryPolicy) OnFailure(ctx context.Context) bool {
	if p.currentRetries >= p.maxRetries {
		return false
	}

	switch p.strategy {
	case retryImmediate:
		// no delay
	case retryConstantDelay:
		if !sleep(ctx, p.delay) {
			return false
		}
	case retryExponentialBackoff:
		// Delay is computed from the counter value before it advances.
		if !sleep(ctx, backoffDelay(p.currentRetries, p.initialDelay, p.maxDelay)) {
			return false
		}
	}

	p.currentRetries++

	return true
}

// backoffDelay computes min(initial * 2^retries, maxDelay).
func backoffDelay(retries uint32, initial, maxDelay time.Duration) time.Duration {
	// Guard the shift; beyond 62 doublings any positive initial delay has
	// long since saturated the cap.
	if retries > 62 {
		return maxDelay
	}

	delay := initial << retries
	if delay > maxDelay || delay < initial {
		return maxDelay
	}

	return delay
}

// sleep waits for d or until ctx is done, reporting whether the full delay
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// ConcurrencyPolicy caps how many requests may execute simultaneously.
// It is immutable after orchestrator construction.
type ConcurrencyPolicy struct {
	MaxConcurrentRequests int
}

// TimeoutPolicy is the static ceiling on a single attempt's duration.
// Request kinds may derive a tighter per-request timeout but must never
// exceed this ceiling.
type TimeoutPolicy struct {
	Timeout time.Duration
}

// Effective clamps a dynamically estimated timeout to the ceiling.
func (p TimeoutPolicy) Effective(estimate time.Duration) time.Duration {
	if estimate <= 0 || estimate > p.Timeout {
		return p.Timeout
	}

	return estimate
}
