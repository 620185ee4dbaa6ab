package wrapper

import (
	"context"
	"fmt"
	"slices"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
)

// Query clauses whose object keys are field names
var fieldKeyedClauses = map[string]bool{
	"term":         true,
	"terms":        true,
	"range":        true,
	"match":        true,
	"match_phrase": true,
	"prefix":       true,
	"wildcard":     true,
	"regexp":       true,
	"fuzzy":        true,
}

// Guard checks the fields a search refers to against an allowlist
type Guard struct {
	allowedFields []string
}

// NewGuard creates a Guard
// An empty allowedFields list means no restriction
func NewGuard(allowedFields []string) *Guard {
	return &Guard{allowedFields: slices.Clone(allowedFields)}
}

// Check validates every sort field and every field in the query clause
func (g *Guard) Check(s *search.Search) error {
	for _, f := range s.CurrentSort() {
		if !g.isFieldAllowed(f.Field) {
			return query.FieldNotAllowedError(f.Field)
		}
	}
	return g.checkClause(s.QueryClause())
}

// checkClause walks the query DSL and validates all field references
func (g *Guard) checkClause(clause map[string]any) error {
	for kind, body := range clause {
		switch {
		case kind == "match_all" || kind == "match_none":
			continue

		case kind == "bool":
			m, ok := body.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: bool needs an object", query.ErrInvalidQuery)
			}
			for _, key := range []string{"must", "filter", "should", "must_not"} {
				if err := g.checkSubClauses(m[key]); err != nil {
					return err
				}
			}

		case kind == "exists":
			m, _ := body.(map[string]any)
			field, ok := m["field"].(string)
			if !ok {
				return fmt.Errorf("%w: exists needs a field", query.ErrInvalidQuery)
			}
			if !g.isFieldAllowed(field) {
				return query.FieldNotAllowedError(field)
			}

		case kind == "multi_match":
			m, _ := body.(map[string]any)
			fields, _ := m["fields"].([]any)
			for _, f := range fields {
				field := fmt.Sprintf("%v", f)
				if !g.isFieldAllowed(field) {
					return query.FieldNotAllowedError(field)
				}
			}

		case fieldKeyedClauses[kind]:
			m, ok := body.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s needs an object", query.ErrInvalidQuery, kind)
			}
			for field := range m {
				if field == "boost" {
					continue
				}
				if !g.isFieldAllowed(field) {
					return query.FieldNotAllowedError(field)
				}
			}

		default:
			return fmt.Errorf("%w: cannot check fields of %q clause", query.ErrInvalidQuery, kind)
		}
	}
	return nil
}

func (g *Guard) checkSubClauses(v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return g.checkClause(t)
	case []map[string]any:
		for _, sub := range t {
			if err := g.checkClause(sub); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range t {
			sub, ok := item.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: bool clause must be an object, got %T", query.ErrInvalidQuery, item)
			}
			if err := g.checkClause(sub); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: bool clause must be an object or array, got %T", query.ErrInvalidQuery, v)
	}
}

// isFieldAllowed checks if a field is in the allowed fields list
// Metadata fields used for tiebreaking are always allowed
func (g *Guard) isFieldAllowed(field string) bool {
	if len(g.allowedFields) == 0 || field == search.FieldID || field == search.FieldScore {
		return true
	}
	return slices.Contains(g.allowedFields, field)
}

// Executor wraps another executor and imposes field restrictions
// Fields must be allowed by the wrapper before the inner executor sees the search
type Executor struct {
	inner search.Executor
	guard *Guard
}

var _ search.Executor = (*Executor)(nil)

// NewExecutor creates a new wrapper executor around inner
// An empty allowedFields list means no additional restriction
func NewExecutor(inner search.Executor, allowedFields []string) *Executor {
	return &Executor{inner: inner, guard: NewGuard(allowedFields)}
}

// Name returns the name of this executor
func (e *Executor) Name() string {
	return "wrapper(" + e.inner.Name() + ")"
}

// Close also closes the inner executor
func (e *Executor) Close() error {
	return e.inner.Close()
}

// Execute validates the search fields before delegating to the inner executor
func (e *Executor) Execute(ctx context.Context, s *search.Search) (*search.Response, error) {
	if err := e.guard.Check(s); err != nil {
		return nil, err
	}
	return e.inner.Execute(ctx, s)
}

// AsyncExecutor is the asynchronous counterpart of Executor
type AsyncExecutor struct {
	inner search.AsyncExecutor
	guard *Guard
}

var _ search.AsyncExecutor = (*AsyncExecutor)(nil)

// NewAsyncExecutor creates a new wrapper around an asynchronous executor
func NewAsyncExecutor(inner search.AsyncExecutor, allowedFields []string) *AsyncExecutor {
	return &AsyncExecutor{inner: inner, guard: NewGuard(allowedFields)}
}

// Name returns the name of this executor
func (e *AsyncExecutor) Name() string {
	return "wrapper(" + e.inner.Name() + ")"
}

// Close also closes the inner executor
func (e *AsyncExecutor) Close() error {
	return e.inner.Close()
}

// ExecuteAsync validates the search fields before delegating to the inner executor
// A rejected search yields its error on the returned channel
func (e *AsyncExecutor) ExecuteAsync(ctx context.Context, s *search.Search) <-chan search.Outcome {
	if err := e.guard.Check(s); err != nil {
		out := make(chan search.Outcome, 1)
		out <- search.Outcome{Err: err}
		close(out)
		return out
	}
	return e.inner.ExecuteAsync(ctx, s)
}
