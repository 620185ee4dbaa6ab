package search

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/hadi77ir/go-searchpage/query"
)

// Body keys set by the paginators through Extra
const (
	KeySize           = "size"
	KeyFrom           = "from"
	KeySearchAfter    = "search_after"
	KeyTrackTotalHits = "track_total_hits"
	KeyQuery          = "query"
	KeySort           = "sort"
)

// Search is an immutable search request bound to the backend that runs it
// Every modifier returns a new Search and leaves the receiver untouched, so one
// base Search can be shared by concurrent callers
type Search struct {
	backend Backend
	indices []string
	query   map[string]any
	sort    []query.SortField
	extra   map[string]any
	params  map[string]string
}

// New creates a Search against indices on backend
func New(backend Backend, indices ...string) *Search {
	return &Search{
		backend: backend,
		indices: slices.Clone(indices),
	}
}

func (s *Search) clone() *Search {
	return &Search{
		backend: s.backend,
		indices: slices.Clone(s.indices),
		query:   maps.Clone(s.query),
		sort:    slices.Clone(s.sort),
		extra:   maps.Clone(s.extra),
		params:  maps.Clone(s.params),
	}
}

// Query returns a copy of s using body as the "query" clause
// e.g. map[string]any{"term": map[string]any{"category": "books"}}
func (s *Search) Query(body map[string]any) *Search {
	c := s.clone()
	c.query = maps.Clone(body)
	return c
}

// Sort returns a copy of s sorted by fields, replacing any previous sort
// Calling Sort with no fields clears the sort
func (s *Search) Sort(fields ...query.SortField) *Search {
	c := s.clone()
	c.sort = slices.Clone(fields)
	return c
}

// Extra returns a copy of s with key set in the request body
// A nil value removes the key
func (s *Search) Extra(key string, value any) *Search {
	c := s.clone()
	if value == nil {
		delete(c.extra, key)
		return c
	}
	if c.extra == nil {
		c.extra = make(map[string]any)
	}
	c.extra[key] = value
	return c
}

// Param returns a copy of s with a URL-level request parameter set
// (e.g. "routing" or "preference"); an empty value removes it
func (s *Search) Param(key, value string) *Search {
	c := s.clone()
	if value == "" {
		delete(c.params, key)
		return c
	}
	if c.params == nil {
		c.params = make(map[string]string)
	}
	c.params[key] = value
	return c
}

// Backend returns the backend the search runs against
func (s *Search) Backend() Backend {
	return s.backend
}

// Indices returns the target indices
func (s *Search) Indices() []string {
	return slices.Clone(s.indices)
}

// QueryClause returns the "query" clause, nil meaning match_all
func (s *Search) QueryClause() map[string]any {
	return maps.Clone(s.query)
}

// CurrentSort returns the explicit sort criteria (empty when none were set)
func (s *Search) CurrentSort() []query.SortField {
	return slices.Clone(s.sort)
}

// ExtraValue returns the body value set for key with Extra
func (s *Search) ExtraValue(key string) (any, bool) {
	v, ok := s.extra[key]
	return v, ok
}

// Params returns the URL-level request parameters
func (s *Search) Params() map[string]string {
	return maps.Clone(s.params)
}

// Body renders the request body
func (s *Search) Body() map[string]any {
	body := make(map[string]any, len(s.extra)+2)
	if s.query != nil {
		body[KeyQuery] = maps.Clone(s.query)
	}
	if len(s.sort) > 0 {
		clauses := make([]any, len(s.sort))
		for i, f := range s.sort {
			clauses[i] = f.Clause()
		}
		body[KeySort] = clauses
	}
	for k, v := range s.extra {
		body[k] = v
	}
	return body
}

// Source renders the request body as JSON
func (s *Search) Source() ([]byte, error) {
	data, err := json.Marshal(s.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}
	return data, nil
}

// Execute runs the search on a synchronous backend
func (s *Search) Execute(ctx context.Context) (*Response, error) {
	exec, ok := s.backend.(Executor)
	if !ok {
		return nil, query.ErrUnsupportedClient
	}
	return exec.Execute(ctx, s)
}

// ExecuteAsync runs the search on an asynchronous backend
func (s *Search) ExecuteAsync(ctx context.Context) <-chan Outcome {
	exec, ok := s.backend.(AsyncExecutor)
	if !ok {
		out := make(chan Outcome, 1)
		out <- Outcome{Err: query.ErrUnsupportedClient}
		close(out)
		return out
	}
	return exec.ExecuteAsync(ctx, s)
}
