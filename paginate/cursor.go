package paginate

import (
	"context"
	"errors"

	"github.com/hadi77ir/go-searchpage/internal/cursor"
	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"go.uber.org/zap"
)

var errMissingSortValues = errors.New("last hit carries no sort values")

func paginateCursor(ctx context.Context, r runner, s *search.Search, params query.Params, cfg *config) (*query.Page, error) {
	params, raw, err := cfg.verifier.Verify(params, query.KindCursor)
	if err != nil {
		return nil, err
	}
	logStart(cfg, StrategyCursor, r, s)

	size := cfg.options.DefaultPageSize
	if raw.Size != nil {
		size = *raw.Size
	}

	q := ensureStableSort(s, cfg.options.Tiebreaker())
	q = q.Extra(search.KeyTrackTotalHits, true).Extra(search.KeySize, size)
	if key := decodeCursor(raw.Cursor, cfg); key != nil {
		q = q.Extra(search.KeySearchAfter, key)
	}

	resp, err := r.execute(ctx, q)
	if err != nil {
		return nil, err
	}

	next, err := nextCursor(resp, size, cfg.codec)
	if err != nil {
		return nil, err
	}

	return finish(ctx, cfg, resp, params, next)
}

// ensureStableSort adds the tiebreaker when s has no explicit sort
// An explicit sort is kept as it is
func ensureStableSort(s *search.Search, tiebreaker query.SortField) *search.Search {
	if len(s.CurrentSort()) > 0 {
		return s
	}
	return s.Sort(tiebreaker)
}

// decodeCursor returns the search_after key of token
// Undecodable tokens are treated as absent and restart from the first page
func decodeCursor(token *string, cfg *config) []any {
	if token == nil || *token == "" {
		return nil
	}
	key, err := cfg.codec.Decode(*token)
	if err != nil {
		cfg.logger.Debug("ignoring undecodable cursor", zap.String("cursor", *token), zap.Error(err))
		return nil
	}
	if len(key) == 0 {
		return nil
	}
	return key
}

// nextCursor encodes the sort values of the last hit when the page is full
// A short page is the last one
func nextCursor(resp *search.Response, size int, codec cursor.Codec) (*string, error) {
	last := resp.Last()
	if last == nil || size <= 0 || len(resp.Hits) < size {
		return nil, nil
	}
	if len(last.Sort) == 0 {
		return nil, query.NewExecutionError("build next cursor", errMissingSortValues)
	}

	token, err := codec.Encode(last.Sort)
	if err != nil {
		return nil, query.NewExecutionError("build next cursor", err)
	}
	return &token, nil
}
