package search

// Total relations reported by search engines
const (
	RelationEqual        = "eq"
	RelationGreaterEqual = "gte"
)

// Metadata fields usable in sort clauses
const (
	FieldID    = "_id"
	FieldScore = "_score"
)

// Response represents the standardized response of a search
type Response struct {
	// Total is the number of documents matching the query
	Total int64 `json:"total"`

	// TotalRelation is "eq" when Total is exact and "gte" when it is a lower bound
	TotalRelation string `json:"total_relation"`

	// Hits are the returned documents in sort order
	Hits []Hit `json:"hits"`
}

// Hit is a single search hit
type Hit struct {
	ID     string         `json:"id"`
	Index  string         `json:"index,omitempty"`
	Score  float64        `json:"score"`
	Source map[string]any `json:"source"`

	// Sort holds the sort values of the hit, used for search_after
	Sort []any `json:"sort,omitempty"`
}

// Items returns the hit sources, in order
func (r *Response) Items() []any {
	items := make([]any, len(r.Hits))
	for i, hit := range r.Hits {
		items[i] = hit.Source
	}
	return items
}

// Last returns the last hit, or nil when there are none
func (r *Response) Last() *Hit {
	if len(r.Hits) == 0 {
		return nil
	}
	return &r.Hits[len(r.Hits)-1]
}

// IsExact returns true if Total is an exact count
func (r *Response) IsExact() bool {
	return r.TotalRelation == "" || r.TotalRelation == RelationEqual
}
