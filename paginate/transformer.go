package paginate

import (
	"context"
)

// Transformer post-processes the raw items of a page
// Raw items are the hit sources (map[string]any) in hit order
type Transformer interface {
	Transform(ctx context.Context, items []any) ([]any, error)
}

// TransformerFunc adapts a plain function to Transformer
type TransformerFunc func(items []any) ([]any, error)

// Transform implements Transformer
func (f TransformerFunc) Transform(_ context.Context, items []any) ([]any, error) {
	return f(items)
}

// TransformResult is the outcome of an asynchronous transformer
type TransformResult struct {
	Items []any
	Err   error
}

// AsyncTransformerFunc adapts a function that does its work in the
// background and reports through a channel
type AsyncTransformerFunc func(ctx context.Context, items []any) <-chan TransformResult

// Transform implements Transformer by waiting for the result or ctx
func (f AsyncTransformerFunc) Transform(ctx context.Context, items []any) ([]any, error) {
	select {
	case res, ok := <-f(ctx, items):
		if !ok {
			return nil, context.Canceled
		}
		return res.Items, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// applyTransformer returns items unchanged when t is nil
// Transformer errors are returned as they are
func applyTransformer(ctx context.Context, items []any, t Transformer) ([]any, error) {
	if t == nil {
		return items, nil
	}
	return t.Transform(ctx, items)
}
