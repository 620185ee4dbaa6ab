package query

// Cursor encodings understood by the cursor strategy
const (
	// CursorEncodingJSON encodes sort keys as base64 of their JSON array
	CursorEncodingJSON = "json"
	// CursorEncodingCBOR encodes sort keys as base64 of their CBOR array
	CursorEncodingCBOR = "cbor"
)

// Options contains configuration options for pagination
type Options struct {
	// DefaultPageSize is the page size used when params do not carry one
	DefaultPageSize int

	// MaxPageSize is the maximum allowed page size
	// Zero means no maximum
	MaxPageSize int

	// TiebreakerField is the unique, always-present field appended as the
	// sort when a cursor-paginated search has no explicit sort
	TiebreakerField string

	// CursorEncoding selects the cursor token format ("json" or "cbor")
	// Tokens issued with one encoding are not readable with the other
	CursorEncoding string
}

// DefaultOptions returns default pagination options
func DefaultOptions() *Options {
	return &Options{
		DefaultPageSize: 50,
		MaxPageSize:     100,
		TiebreakerField: "_id",
		CursorEncoding:  CursorEncodingJSON,
	}
}

// ResolvePageSize returns size, or the default page size when size is not positive
func (o *Options) ResolvePageSize(size int) int {
	if size <= 0 {
		return o.DefaultPageSize
	}
	return size
}

// Tiebreaker returns the ascending sort on TiebreakerField, falling back to "_id"
func (o *Options) Tiebreaker() SortField {
	if o.TiebreakerField == "" {
		return Asc("_id")
	}
	return Asc(o.TiebreakerField)
}
