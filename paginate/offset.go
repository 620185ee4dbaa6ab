package paginate

import (
	"context"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
)

func paginateOffset(ctx context.Context, r runner, s *search.Search, params query.Params, cfg *config) (*query.Page, error) {
	params, raw, err := cfg.verifier.Verify(params, query.KindLimitOffset)
	if err != nil {
		return nil, err
	}
	logStart(cfg, StrategyOffset, r, s)

	resp, err := r.execute(ctx, applyOffset(s, raw))
	if err != nil {
		return nil, err
	}

	return finish(ctx, cfg, resp, params, nil)
}

// applyOffset requests an exact total and sets size and from for the fields
// present in raw
// Absent fields keep whatever the search already had
func applyOffset(s *search.Search, raw query.RawParams) *search.Search {
	s = s.Extra(search.KeyTrackTotalHits, true)
	if raw.Limit != nil {
		s = s.Extra(search.KeySize, *raw.Limit)
	}
	if raw.Offset != nil {
		s = s.Extra(search.KeyFrom, *raw.Offset)
	}
	return s
}
