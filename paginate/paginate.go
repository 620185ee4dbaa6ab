// Package paginate turns a search and pagination params into a page of results.
package paginate

import (
	"context"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"go.uber.org/zap"
)

// Strategy names used in logs
const (
	StrategyOffset = "offset"
	StrategyCursor = "cursor"
)

// Result is the outcome of PaginateAsync
type Result struct {
	Page *query.Page
	Err  error
}

// Paginate runs s with params and builds a page
// CursorParams select cursor pagination, anything else offset pagination
func Paginate(ctx context.Context, s *search.Search, params query.Params, opts ...Option) (*query.Page, error) {
	r, err := newRunner(s)
	if err != nil {
		return nil, err
	}
	cfg := newConfig(opts)

	if query.IsCursor(params) {
		return paginateCursor(ctx, r, s, params, cfg)
	}
	return paginateOffset(ctx, r, s, params, cfg)
}

// PaginateAsync runs Paginate in the background
// The channel yields exactly one Result and is then closed
func PaginateAsync(ctx context.Context, s *search.Search, params query.Params, opts ...Option) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		page, err := Paginate(ctx, s, params, opts...)
		out <- Result{Page: page, Err: err}
	}()
	return out
}

// Offset runs offset pagination regardless of the params type
func Offset(ctx context.Context, s *search.Search, params query.Params, opts ...Option) (*query.Page, error) {
	r, err := newRunner(s)
	if err != nil {
		return nil, err
	}
	return paginateOffset(ctx, r, s, params, newConfig(opts))
}

// Cursor runs cursor pagination regardless of the params type
func Cursor(ctx context.Context, s *search.Search, params query.Params, opts ...Option) (*query.Page, error) {
	r, err := newRunner(s)
	if err != nil {
		return nil, err
	}
	return paginateCursor(ctx, r, s, params, newConfig(opts))
}

// finish transforms items and hands them to the page factory
func finish(ctx context.Context, cfg *config, resp *search.Response, params query.Params, next *string) (*query.Page, error) {
	items, err := applyTransformer(ctx, resp.Items(), cfg.transformer)
	if err != nil {
		return nil, err
	}
	return cfg.factory.CreatePage(items, resp.Total, params, next, cfg.additional)
}

func logStart(cfg *config, strategy string, r runner, s *search.Search) {
	cfg.logger.Debug("paginating search",
		zap.String("strategy", strategy),
		zap.String("mode", r.mode()),
		zap.String("backend", s.Backend().Name()),
		zap.Strings("indices", s.Indices()),
	)
}
