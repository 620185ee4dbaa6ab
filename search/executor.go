package search

import (
	"context"
)

// Backend is what every search backend implements
type Backend interface {
	// Name returns the name of this backend
	Name() string

	// Close cleans up any resources used by the backend
	Close() error
}

// Executor is a backend that runs searches synchronously
// Example: resp, err := executor.Execute(ctx, search.New(executor, "products"))
type Executor interface {
	Backend

	// Execute runs s and blocks until the backend answers or ctx is done
	Execute(ctx context.Context, s *Search) (*Response, error)
}

// AsyncExecutor is a backend that runs searches without blocking the caller
type AsyncExecutor interface {
	Backend

	// ExecuteAsync starts s and returns a channel that receives exactly one Outcome
	ExecuteAsync(ctx context.Context, s *Search) <-chan Outcome
}

// Outcome is the result of an asynchronous search
type Outcome struct {
	Response *Response
	Err      error
}

// Async adapts a synchronous executor into an asynchronous one
// Each search runs on its own goroutine
func Async(e Executor) AsyncExecutor {
	return &asyncExecutor{inner: e}
}

type asyncExecutor struct {
	inner Executor
}

func (a *asyncExecutor) Name() string {
	return a.inner.Name() + "-async"
}

func (a *asyncExecutor) Close() error {
	return a.inner.Close()
}

func (a *asyncExecutor) ExecuteAsync(ctx context.Context, s *Search) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		resp, err := a.inner.Execute(ctx, s)
		out <- Outcome{Response: resp, Err: err}
	}()
	return out
}
