package query

import (
	"encoding/json"
)

// AdditionalData holds caller-supplied fields merged into a page
type AdditionalData map[string]any

// Page represents the standardized result of a paginated search
type Page struct {
	// Items are the (optionally transformed) hits of this page
	Items []any `json:"items"`

	// Total is the exact number of hits matching the query
	Total int64 `json:"total"`

	// Limit and Offset echo limit-offset params
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`

	// Page, Size and Pages echo page-number params; Size also echoes cursor params
	Page  *int `json:"page,omitempty"`
	Size  *int `json:"size,omitempty"`
	Pages *int `json:"pages,omitempty"`

	// CurrentPage echoes the cursor this page was requested with
	CurrentPage *string `json:"current_page,omitempty"`

	// NextPage is the cursor for the next page (nil on the last page)
	NextPage *string `json:"next_page,omitempty"`

	// Extra holds additional data, flattened into the JSON object
	Extra AdditionalData `json:"-"`

	// Params are the normalised params this page was built from
	Params Params `json:"-"`
}

// HasNextPage returns true if there is a next page available
func (p *Page) HasNextPage() bool {
	return p.NextPage != nil
}

// IsEmpty returns true if the page contains no items
func (p *Page) IsEmpty() bool {
	return len(p.Items) == 0
}

// MarshalJSON flattens Extra next to the standard fields
// Standard fields win over extra fields with the same name
func (p *Page) MarshalJSON() ([]byte, error) {
	type plain Page
	base, err := json.Marshal((*plain)(p))
	if err != nil || len(p.Extra) == 0 {
		return base, err
	}

	merged := make(map[string]json.RawMessage, len(p.Extra)+8)
	for k, v := range p.Extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// PageFactory assembles a Page from strategy output
type PageFactory interface {
	// CreatePage builds the page; next is nil when there is no next page
	CreatePage(items []any, total int64, params Params, next *string, extra AdditionalData) (*Page, error)
}

// PageFactoryFunc adapts a function to PageFactory
type PageFactoryFunc func(items []any, total int64, params Params, next *string, extra AdditionalData) (*Page, error)

// CreatePage implements PageFactory
func (f PageFactoryFunc) CreatePage(items []any, total int64, params Params, next *string, extra AdditionalData) (*Page, error) {
	return f(items, total, params, next, extra)
}

// DefaultPageFactory echoes params according to their concrete type
type DefaultPageFactory struct{}

// CreatePage implements PageFactory
func (DefaultPageFactory) CreatePage(items []any, total int64, params Params, next *string, extra AdditionalData) (*Page, error) {
	if items == nil {
		items = make([]any, 0)
	}
	page := &Page{
		Items:    items,
		Total:    total,
		NextPage: next,
		Extra:    extra,
		Params:   params,
	}

	switch p := params.(type) {
	case CursorParams:
		page.Size = intPtr(p.Size)
		if p.Cursor != "" {
			page.CurrentPage = stringPtr(p.Cursor)
		}
	case PageParams:
		page.Page = intPtr(p.Page)
		page.Size = intPtr(p.Size)
		page.Pages = intPtr(pageCount(total, p.Size))
	case LimitOffsetParams:
		page.Limit = p.Limit
		page.Offset = p.Offset
	default:
		if params != nil {
			raw := params.Raw()
			page.Limit, page.Offset, page.Size, page.CurrentPage = raw.Limit, raw.Offset, raw.Size, raw.Cursor
		}
	}

	return page, nil
}

func pageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
