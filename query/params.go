package query

// Kind identifies the pagination strategy a params value asks for
type Kind string

const (
	// KindCursor selects search-after pagination
	KindCursor Kind = "cursor"
	// KindLimitOffset selects size/from pagination
	KindLimitOffset Kind = "limit-offset"
)

// Params is a pagination request as received from the API layer
type Params interface {
	// Kind reports which pagination strategy these params belong to
	Kind() Kind
	// Raw flattens the params into the fields the strategies read
	Raw() RawParams
}

// RawParams is the flattened, already-validated view of Params
// A nil field means the value was not supplied
type RawParams struct {
	Cursor *string `json:"cursor,omitempty"`
	Limit  *int    `json:"limit,omitempty"`
	Offset *int    `json:"offset,omitempty"`
	Size   *int    `json:"size,omitempty"`
}

// IsCursor reports whether p asks for cursor pagination
func IsCursor(p Params) bool {
	return p != nil && p.Kind() == KindCursor
}

// CursorParams requests a page of Size items after the position in Cursor
type CursorParams struct {
	// Cursor is the opaque token from a previous page (empty for the first page)
	Cursor string `json:"cursor,omitempty"`
	// Size is the page size (zero means the configured default)
	Size int `json:"size" validate:"gte=0"`
}

// Kind implements Params
func (p CursorParams) Kind() Kind { return KindCursor }

// Raw implements Params
func (p CursorParams) Raw() RawParams {
	raw := RawParams{Size: intPtr(p.Size)}
	if p.Cursor != "" {
		raw.Cursor = stringPtr(p.Cursor)
	}
	return raw
}

// LimitOffsetParams requests Limit items starting at Offset
// Nil fields leave the backend defaults in place
type LimitOffsetParams struct {
	Limit  *int `json:"limit,omitempty" validate:"omitempty,gte=1"`
	Offset *int `json:"offset,omitempty" validate:"omitempty,gte=0"`
}

// NewLimitOffset returns LimitOffsetParams with both fields set
func NewLimitOffset(limit, offset int) LimitOffsetParams {
	return LimitOffsetParams{Limit: intPtr(limit), Offset: intPtr(offset)}
}

// Kind implements Params
func (p LimitOffsetParams) Kind() Kind { return KindLimitOffset }

// Raw implements Params
func (p LimitOffsetParams) Raw() RawParams {
	return RawParams{Limit: p.Limit, Offset: p.Offset}
}

// PageParams requests the 1-based page Page of Size items
// It is served by the offset strategy
type PageParams struct {
	Page int `json:"page" validate:"gte=0"`
	Size int `json:"size" validate:"gte=0"`
}

// Kind implements Params
func (p PageParams) Kind() Kind { return KindLimitOffset }

// Raw implements Params
func (p PageParams) Raw() RawParams {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return RawParams{
		Limit:  intPtr(p.Size),
		Offset: intPtr((page - 1) * p.Size),
		Size:   intPtr(p.Size),
	}
}

func intPtr(v int) *int {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
