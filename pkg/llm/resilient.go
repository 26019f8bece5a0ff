package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"ai-tutoring-be/pkg/resilience"
)

// ResilientProvider wraps a provider with a hard per-call timeout,
// bounded exponential-backoff retries, and a circuit breaker. Callers
// that can degrade to heuristics should check errors.Is(err,
// resilience.ErrCircuitOpen) and context.DeadlineExceeded and treat the
// result as absent instead of failing the turn.
type ResilientProvider struct {
	inner    LLMProvider
	breaker  *resilience.Breaker
	timeout  time.Duration
	maxTries uint
}

var _ LLMProvider = &ResilientProvider{}

func NewResilientProvider(inner LLMProvider, breaker *resilience.Breaker, timeout time.Duration) *ResilientProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ResilientProvider{
		inner:    inner,
		breaker:  breaker,
		timeout:  timeout,
		maxTries: 3,
	}
}

func (p *ResilientProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return p.call(ctx, func(callCtx context.Context) (string, error) {
		return p.inner.Chat(callCtx, history, options...)
	})
}

func (p *ResilientProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.call(ctx, func(callCtx context.Context) (string, error) {
		return p.inner.Generate(callCtx, prompt, options...)
	})
}

func (p *ResilientProvider) call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	operation := func() (string, error) {
		var result string
		err := p.breaker.Execute(func() error {
			callCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			var callErr error
			result, callErr = fn(callCtx)
			return callErr
		})
		if err != nil {
			// An open circuit means the service is known to be down;
			// retrying immediately would only burn the backoff budget.
			if errors.Is(err, resilience.ErrCircuitOpen) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		return result, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(p.maxTries),
	)
}
