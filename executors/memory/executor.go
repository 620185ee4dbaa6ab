package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"go.uber.org/zap"
)

// Defaults mirroring the search engines
const (
	DefaultSize           = 10
	DefaultTrackTotalHits = 10000
	DefaultIDField        = "id"
)

// FieldGetterFunc is a function that retrieves a field value from an object
// This allows custom field access logic for complex scenarios
type FieldGetterFunc func(obj any, field string) (any, error)

// DataSourceFunc is a function that returns the documents to search
// It is called on every search, so the data may change between calls
type DataSourceFunc func() any

// Options configures an Executor
type Options struct {
	// FieldGetter is an optional custom function to retrieve field values
	// If nil, the executor will use reflection
	FieldGetter FieldGetterFunc

	// AllowedFields restricts the fields that may be queried or sorted on
	// Empty means every field is allowed
	AllowedFields []string

	// IDField names the document field reported as the hit ID
	IDField string

	// Index is reported on every hit (defaults to the first index of the search)
	Index string

	// DefaultSize is used when the search sets no size
	DefaultSize int

	// TrackTotalHitsUpTo caps the total when the search does not ask for one
	TrackTotalHitsUpTo int

	Logger *zap.Logger
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() *Options {
	return &Options{
		IDField:            DefaultIDField,
		DefaultSize:        DefaultSize,
		TrackTotalHitsUpTo: DefaultTrackTotalHits,
		Logger:             zap.NewNop(),
	}
}

func (o *Options) withDefaults() *Options {
	c := *o
	if c.IDField == "" {
		c.IDField = DefaultIDField
	}
	if c.DefaultSize <= 0 {
		c.DefaultSize = DefaultSize
	}
	if c.TrackTotalHitsUpTo <= 0 {
		c.TrackTotalHitsUpTo = DefaultTrackTotalHits
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return &c
}

// IsFieldAllowed checks if a field may be queried or sorted on
func (o *Options) IsFieldAllowed(field string) bool {
	if len(o.AllowedFields) == 0 || field == search.FieldID {
		return true
	}
	for _, allowed := range o.AllowedFields {
		if allowed == field {
			return true
		}
	}
	return false
}

// Executor runs searches over in-memory slices of structs or maps
type Executor struct {
	dataSource DataSourceFunc
	options    *Options
}

var _ search.Executor = (*Executor)(nil)

// NewExecutor creates a new memory executor with static data
// data must be a slice (e.g., []MyStruct{} or []map[string]any{})
func NewExecutor(data any, opts *Options) *Executor {
	return NewExecutorWithDataSource(func() any { return data }, opts)
}

// NewExecutorWithDataSource creates a new memory executor with a dynamic data source
func NewExecutorWithDataSource(dataSource DataSourceFunc, opts *Options) *Executor {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Executor{
		dataSource: dataSource,
		options:    opts.withDefaults(),
	}
}

// document is a candidate hit
type document struct {
	item   reflect.Value
	id     string
	sort   []any
	source map[string]any
}

// Execute runs the search on the in-memory data
func (e *Executor) Execute(ctx context.Context, s *search.Search) (*search.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dataVal := reflect.ValueOf(e.dataSource())
	if dataVal.Kind() == reflect.Ptr {
		dataVal = dataVal.Elem()
	}
	if dataVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: data source must return a slice, got %s", query.ErrInvalidQuery, dataVal.Kind())
	}

	// Filter data
	clause := s.QueryClause()
	matched := make([]*document, 0, dataVal.Len())
	for i := 0; i < dataVal.Len(); i++ {
		item := dataVal.Index(i)
		ok, err := e.match(clause, item)
		if err != nil {
			e.options.Logger.Error("memory search failed", zap.Error(err))
			return nil, err
		}
		if ok {
			matched = append(matched, &document{item: item, id: e.documentID(item, i)})
		}
	}

	// Handle sorting
	fields := s.CurrentSort()
	if len(fields) > 0 {
		for _, doc := range matched {
			values, err := e.sortValues(doc, fields)
			if err != nil {
				return nil, err
			}
			doc.sort = values
		}
		sort.SliceStable(matched, func(i, j int) bool {
			return compareKeys(matched[i].sort, matched[j].sort, fields) < 0
		})
	}

	total := len(matched)

	// Apply search_after
	if v, ok := s.ExtraValue(search.KeySearchAfter); ok {
		after, err := searchAfterKey(v, fields)
		if err != nil {
			return nil, err
		}
		start := sort.Search(len(matched), func(i int) bool {
			return compareKeys(matched[i].sort, after, fields) > 0
		})
		matched = matched[start:]
	}

	// Apply from/size
	from, err := intExtra(s, search.KeyFrom, 0)
	if err != nil {
		return nil, err
	}
	size, err := intExtra(s, search.KeySize, e.options.DefaultSize)
	if err != nil {
		return nil, err
	}
	if from > len(matched) {
		from = len(matched)
	}
	end := len(matched)
	if size < end-from {
		end = from + size
	}
	window := matched[from:end]

	resp := &search.Response{
		Total:         int64(total),
		TotalRelation: search.RelationEqual,
		Hits:          make([]search.Hit, 0, len(window)),
	}
	if limit, exact := e.totalLimit(s); !exact && total > limit {
		resp.Total = int64(limit)
		resp.TotalRelation = search.RelationGreaterEqual
	}

	index := e.options.Index
	if index == "" {
		if indices := s.Indices(); len(indices) > 0 {
			index = indices[0]
		}
	}
	for _, doc := range window {
		resp.Hits = append(resp.Hits, search.Hit{
			ID:     doc.id,
			Index:  index,
			Score:  1,
			Source: toSource(doc.item),
			Sort:   doc.sort,
		})
	}

	e.options.Logger.Debug("memory search executed",
		zap.Int("matched", total),
		zap.Int("returned", len(resp.Hits)),
		zap.Int("from", from),
		zap.Int("size", size),
	)

	return resp, nil
}

// totalLimit reads track_total_hits: true means exact, a number caps the count
func (e *Executor) totalLimit(s *search.Search) (int, bool) {
	v, ok := s.ExtraValue(search.KeyTrackTotalHits)
	if !ok {
		return e.options.TrackTotalHitsUpTo, false
	}
	if b, isBool := v.(bool); isBool {
		if b {
			return 0, true
		}
		return 0, false
	}
	if n, isNum := toInt(v); isNum {
		return n, false
	}
	return e.options.TrackTotalHitsUpTo, false
}

func (e *Executor) documentID(item reflect.Value, position int) string {
	v, err := e.getFieldValue(item, e.options.IDField, false)
	if err != nil || v == nil {
		return strconv.Itoa(position)
	}
	return fmt.Sprintf("%v", v)
}

func (e *Executor) sortValues(doc *document, fields []query.SortField) ([]any, error) {
	values := make([]any, len(fields))
	for i, f := range fields {
		switch f.Field {
		case search.FieldID:
			values[i] = doc.id
		case search.FieldScore:
			values[i] = 1.0
		default:
			v, err := e.getFieldValue(doc.item, f.Field, true)
			if err != nil {
				if !isMissing(err) {
					return nil, err
				}
				v = nil
			}
			values[i] = sortValue(v)
		}
	}
	return values, nil
}

func searchAfterKey(v any, fields []query.SortField) ([]any, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: search_after requires a sort", query.ErrInvalidQuery)
	}
	key, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: search_after must be an array, got %T", query.ErrInvalidQuery, v)
	}
	if len(key) != len(fields) {
		return nil, fmt.Errorf("%w: search_after has %d values but the sort has %d fields", query.ErrInvalidQuery, len(key), len(fields))
	}
	return key, nil
}

func intExtra(s *search.Search, key string, def int) (int, error) {
	v, ok := s.ExtraValue(key)
	if !ok {
		return def, nil
	}
	n, ok := toInt(v)
	if !ok || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %v", query.ErrInvalidQuery, key, v)
	}
	return n, nil
}

// Name returns the executor name
func (e *Executor) Name() string {
	return "memory"
}

// Close does nothing for memory executor
func (e *Executor) Close() error {
	return nil
}
