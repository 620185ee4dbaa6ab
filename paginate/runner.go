package paginate

import (
	"context"
	"fmt"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
)

// runner is the execution primitive of one scheduling model
// Everything else in a pagination call is shared between models
type runner interface {
	mode() string
	execute(ctx context.Context, s *search.Search) (*search.Response, error)
}

// newRunner picks the scheduling model from the capabilities of the backend
// A backend offering both is run synchronously
func newRunner(s *search.Search) (runner, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: search is nil", query.ErrUnsupportedClient)
	}

	switch backend := s.Backend().(type) {
	case search.Executor:
		return syncRunner{exec: backend}, nil
	case search.AsyncExecutor:
		return asyncRunner{exec: backend}, nil
	default:
		return nil, fmt.Errorf("%w: %T is neither a synchronous nor an asynchronous executor", query.ErrUnsupportedClient, s.Backend())
	}
}

// syncRunner blocks on the backend call
type syncRunner struct {
	exec search.Executor
}

func (r syncRunner) mode() string { return "sync" }

func (r syncRunner) execute(ctx context.Context, s *search.Search) (*search.Response, error) {
	return r.exec.Execute(ctx, s)
}

// asyncRunner waits on the backend outcome channel
type asyncRunner struct {
	exec search.AsyncExecutor
}

func (r asyncRunner) mode() string { return "async" }

func (r asyncRunner) execute(ctx context.Context, s *search.Search) (*search.Response, error) {
	outcomes := r.exec.ExecuteAsync(ctx, s)
	if outcomes == nil {
		return nil, query.NewExecutionError("await search", fmt.Errorf("%s returned no outcome channel", r.exec.Name()))
	}

	select {
	case outcome, ok := <-outcomes:
		if !ok {
			return nil, query.NewExecutionError("await search", fmt.Errorf("%s closed its outcome channel without a result", r.exec.Name()))
		}
		return outcome.Response, outcome.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
