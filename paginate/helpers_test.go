package paginate

import (
	"context"
	"sync"

	"github.com/hadi77ir/go-searchpage/executors/memory"
	"github.com/hadi77ir/go-searchpage/search"
)

// recorder captures every search it forwards to the wrapped executor
type recorder struct {
	search.Executor

	mu   sync.Mutex
	seen []*search.Search
}

func record(exec search.Executor) *recorder {
	return &recorder{Executor: exec}
}

func (r *recorder) Execute(ctx context.Context, s *search.Search) (*search.Response, error) {
	r.mu.Lock()
	r.seen = append(r.seen, s)
	r.mu.Unlock()
	return r.Executor.Execute(ctx, s)
}

func (r *recorder) last() *search.Search {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return nil
	}
	return r.seen[len(r.seen)-1]
}

// fixedExecutor returns the same response for every search
type fixedExecutor struct {
	resp *search.Response
	err  error
}

func (fixedExecutor) Name() string { return "fixed" }
func (fixedExecutor) Close() error { return nil }

func (e fixedExecutor) Execute(context.Context, *search.Search) (*search.Response, error) {
	return e.resp, e.err
}

// silentAsync never delivers an outcome
type silentAsync struct{}

func (silentAsync) Name() string { return "silent" }
func (silentAsync) Close() error { return nil }

func (silentAsync) ExecuteAsync(context.Context, *search.Search) <-chan search.Outcome {
	return make(chan search.Outcome)
}

// closedAsync closes its channel without an outcome
type closedAsync struct{}

func (closedAsync) Name() string { return "closed" }
func (closedAsync) Close() error { return nil }

func (closedAsync) ExecuteAsync(context.Context, *search.Search) <-chan search.Outcome {
	ch := make(chan search.Outcome)
	close(ch)
	return ch
}

// nilAsync returns no channel at all
type nilAsync struct{}

func (nilAsync) Name() string { return "nil" }
func (nilAsync) Close() error { return nil }

func (nilAsync) ExecuteAsync(context.Context, *search.Search) <-chan search.Outcome {
	return nil
}

type nameOnly struct{}

func (nameOnly) Name() string { return "name-only" }
func (nameOnly) Close() error { return nil }

// numbered returns n documents with ids 1..n
func numbered(n int) []map[string]any {
	docs := make([]map[string]any, n)
	for i := range docs {
		docs[i] = map[string]any{"id": i + 1, "title": "doc"}
	}
	return docs
}

func memoryOf(n int) *memory.Executor {
	return memory.NewExecutor(numbered(n), nil)
}

func ids(items []any) []int {
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = item.(map[string]any)["id"].(int)
	}
	return out
}
