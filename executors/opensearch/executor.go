package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"go.uber.org/zap"
)

// URL parameters forwarded from search.Search.Params
const (
	ParamRouting    = "routing"
	ParamPreference = "preference"
)

// Executor runs searches with the OpenSearch search API
type Executor struct {
	client *opensearchapi.Client
	logger *zap.Logger
}

var _ search.Executor = (*Executor)(nil)

// NewExecutor creates an executor on an existing client
func NewExecutor(client *opensearchapi.Client, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{client: client, logger: logger.Named("opensearch")}
}

// Open creates the client from cfg and returns an executor using it
func Open(cfg *Config, logger *zap.Logger) (*Executor, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewExecutor(client, logger), nil
}

// Client returns the underlying API client
func (e *Executor) Client() *opensearchapi.Client {
	return e.client
}

// Execute sends the search body to POST /{indices}/_search
func (e *Executor) Execute(ctx context.Context, s *search.Search) (*search.Response, error) {
	body, err := s.Source()
	if err != nil {
		return nil, err
	}

	req := &opensearchapi.SearchReq{
		Indices: s.Indices(),
		Body:    bytes.NewReader(body),
	}
	for key, value := range s.Params() {
		switch key {
		case ParamRouting:
			req.Params.Routing = []string{value}
		case ParamPreference:
			req.Params.Preference = value
		default:
			e.logger.Warn("ignoring unsupported search parameter", zap.String("param", key))
		}
	}

	e.logger.Debug("executing search", zap.Strings("indices", req.Indices), zap.ByteString("body", body))

	var sr searchResponse
	res, err := e.client.Client.Do(ctx, req, &sr)
	if err == nil && res.IsError() {
		err = opensearch.ParseError(res)
	}
	if res != nil && res.Body != nil {
		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(res.Body)
	}
	if err != nil {
		// Context errors are returned as they are
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("opensearch search error", zap.Strings("indices", req.Indices), zap.Error(err))
		return nil, query.NewExecutionError("opensearch search", err)
	}

	return sr.convert()
}

// sortValues decodes numbers as json.Number so long sort keys (ids,
// nanosecond timestamps) survive the round trip through a cursor
type sortValues []any

func (v *sortValues) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var values []any
	if err := dec.Decode(&values); err != nil {
		return err
	}
	*v = values
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		Hits []struct {
			Index  string          `json:"_index"`
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
			Sort   sortValues      `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

func (sr *searchResponse) convert() (*search.Response, error) {
	resp := &search.Response{
		Total:         sr.Hits.Total.Value,
		TotalRelation: sr.Hits.Total.Relation,
		Hits:          make([]search.Hit, 0, len(sr.Hits.Hits)),
	}

	for _, hit := range sr.Hits.Hits {
		var source map[string]any
		if len(hit.Source) > 0 {
			if err := json.Unmarshal(hit.Source, &source); err != nil {
				return nil, query.NewExecutionError("decode hit source", fmt.Errorf("hit %s: %w", hit.ID, err))
			}
		}
		var score float64
		if hit.Score != nil {
			score = *hit.Score
		}
		resp.Hits = append(resp.Hits, search.Hit{
			ID:     hit.ID,
			Index:  hit.Index,
			Score:  score,
			Source: source,
			Sort:   []any(hit.Sort),
		})
	}

	return resp, nil
}

// Name returns the executor name
func (e *Executor) Name() string {
	return "opensearch"
}

// Close does nothing for the OpenSearch executor
func (e *Executor) Close() error {
	return nil
}
