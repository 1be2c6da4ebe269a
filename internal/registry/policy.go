package registry

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"
)

// Policy wraps a handler with a cross-cutting concern.
type Policy func(next Handler) Handler

// Chain applies policies to h so that policies[0] runs first.
func Chain(h Handler, policies ...Policy) Handler {
	for i := len(policies) - 1; i >= 0; i-- {
		h = policies[i](h)
	}
	return h
}

// Validate checks incoming args against params before calling next.
func Validate(params []Param) Policy {
	return func(next Handler) Handler {
		return func(ctx context.Context, args Args) (Reply, error) {
			valid, err := validateArgs(params, args)
			if err != nil {
				return Reply{}, err
			}
			return next(ctx, valid)
		}
	}
}

// Timeout bounds each call to next by d. A call that overruns fails with a
// retryable TIMEOUT error; cancellation of the caller's context is returned
// as is. A zero d disables the policy.
//
// The call runs on its own goroutine and is not stopped when the deadline
// passes; it only sees its context canceled. Handlers must return promptly
// once ctx is done, or their work continues after the TIMEOUT is reported.
func Timeout(d time.Duration) Policy {
	return func(next Handler) Handler {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, args Args) (Reply, error) {
			tctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			type outcome struct {
				reply Reply
				err   error
			}
			done := make(chan outcome, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						done <- outcome{err: &panicError{value: p, stack: debug.Stack()}}
					}
				}()
				reply, err := next(tctx, args)
				done <- outcome{reply: reply, err: err}
			}()

			select {
			case o := <-done:
				return o.reply, o.err
			case <-tctx.Done():
				if err := ctx.Err(); err != nil {
					return Reply{}, err
				}
				return Reply{}, Errorf(CodeTimeout, "execution timed out after %s", d).WithRetry()
			}
		}
	}
}

// RetryPolicy configures Retry.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration // wait before the second attempt
	Backoff     float64       // delay multiplier between attempts; <1 means constant
}

// Retry re-runs next while it fails with a retryable error. Coded errors are
// retried only when marked Retryable; unclassified errors are always retried;
// context errors never are. The last error is returned when attempts run out.
func Retry(p RetryPolicy) Policy {
	return func(next Handler) Handler {
		if p.MaxAttempts <= 1 {
			return next
		}
		return func(ctx context.Context, args Args) (Reply, error) {
			delay := p.Delay
			var lastErr error
			for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
				reply, err := next(ctx, args)
				if err == nil {
					return reply, nil
				}
				lastErr = err
				if !shouldRetry(err) || attempt == p.MaxAttempts {
					break
				}

				slog.Warn("attempt failed, retrying",
					slog.Int("attempt", attempt),
					slog.Duration("delay", delay),
					slog.String("error", err.Error()),
				)
				t := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					t.Stop()
					return Reply{}, ctx.Err()
				case <-t.C:
				}
				if p.Backoff > 1 {
					delay = time.Duration(float64(delay) * p.Backoff)
				}
			}
			return Reply{}, lastErr
		}
	}
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if coded, ok := AsCodedError(err); ok {
		return coded.Retryable
	}
	return true
}

// Recover turns a panic in next into an unclassified error.
func Recover() Policy {
	return func(next Handler) Handler {
		return func(ctx context.Context, args Args) (reply Reply, err error) {
			defer func() {
				if p := recover(); p != nil {
					err = &panicError{value: p, stack: debug.Stack()}
				}
			}()
			return next(ctx, args)
		}
	}
}

// pipeline builds the invocation chain of c: validate, timeout, retry, call.
func pipeline(c Capability) Handler {
	policies := []Policy{Validate(c.Params), Timeout(c.Timeout)}
	if c.Retry != nil {
		policies = append(policies, Retry(*c.Retry))
	}
	policies = append(policies, Recover())
	return Chain(c.Handler, policies...)
}
