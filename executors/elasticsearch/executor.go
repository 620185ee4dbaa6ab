package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"go.uber.org/zap"
)

// URL parameters forwarded from search.Search.Params
const (
	ParamRouting    = "routing"
	ParamPreference = "preference"
)

var errNoAddresses = errors.New("elasticsearch: no addresses configured")

// Config holds the connection settings of an Elasticsearch cluster
type Config struct {
	Addresses []string `json:"addresses" yaml:"addresses" mapstructure:"addresses"`
	Username  string   `json:"username" yaml:"username" mapstructure:"username"`
	Password  string   `json:"password" yaml:"password" mapstructure:"password"`
}

// NewClient creates a new Elasticsearch client
func NewClient(cfg *Config) (*elasticsearch.Client, error) {
	if cfg == nil || len(cfg.Addresses) == 0 {
		return nil, errNoAddresses
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client creation error: %w", err)
	}

	return es, nil
}

// ResponseError is an error reported by the cluster in the response body
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s: %s", e.StatusCode, e.Type, e.Reason)
}

// Executor runs searches with the Elasticsearch search API
type Executor struct {
	client *elasticsearch.Client
	logger *zap.Logger
}

var _ search.Executor = (*Executor)(nil)

// NewExecutor creates an executor on an existing client
func NewExecutor(client *elasticsearch.Client, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{client: client, logger: logger.Named("elasticsearch")}
}

// Open creates the client from cfg and returns an executor using it
func Open(cfg *Config, logger *zap.Logger) (*Executor, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewExecutor(client, logger), nil
}

// Client returns the underlying client
func (e *Executor) Client() *elasticsearch.Client {
	return e.client
}

// Execute sends the search body to POST /{indices}/_search
func (e *Executor) Execute(ctx context.Context, s *search.Search) (*search.Response, error) {
	body, err := s.Source()
	if err != nil {
		return nil, err
	}

	indices := s.Indices()
	opts := []func(*esapi.SearchRequest){
		e.client.Search.WithContext(ctx),
		e.client.Search.WithBody(bytes.NewReader(body)),
	}
	if len(indices) > 0 {
		opts = append(opts, e.client.Search.WithIndex(indices...))
	}
	for key, value := range s.Params() {
		switch key {
		case ParamRouting:
			opts = append(opts, e.client.Search.WithRouting(value))
		case ParamPreference:
			opts = append(opts, e.client.Search.WithPreference(value))
		default:
			e.logger.Warn("ignoring unsupported search parameter", zap.String("param", key))
		}
	}

	e.logger.Debug("executing search", zap.Strings("indices", indices), zap.ByteString("body", body))

	res, err := e.client.Search(opts...)
	if err != nil {
		// Context errors are returned as they are
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("elasticsearch search error", zap.Strings("indices", indices), zap.Error(err))
		return nil, query.NewExecutionError("elasticsearch search", err)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(res.Body)

	if res.IsError() {
		respErr := decodeError(res)
		e.logger.Error("elasticsearch search error", zap.Strings("indices", indices), zap.Error(respErr))
		return nil, query.NewExecutionError("elasticsearch search", respErr)
	}

	return decodeResponse(res.Body)
}

type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func decodeError(res *esapi.Response) error {
	respErr := &ResponseError{StatusCode: res.StatusCode}
	var eb errorBody
	if err := json.NewDecoder(res.Body).Decode(&eb); err == nil {
		respErr.Type, respErr.Reason = eb.Error.Type, eb.Error.Reason
	}
	return respErr
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
			Sort   []any           `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// decodeResponse keeps sort values as json.Number so long keys survive the
// round trip through a cursor
func decodeResponse(r io.Reader) (*search.Response, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var sr searchResponse
	if err := dec.Decode(&sr); err != nil {
		return nil, query.NewExecutionError("decode search response", err)
	}

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
			Sort:   hit.Sort,
		})
	}

	return resp, nil
}

// Name returns the executor name
func (e *Executor) Name() string {
	return "elasticsearch"
}

// Close does nothing for the Elasticsearch executor
func (e *Executor) Close() error {
	return nil
}
