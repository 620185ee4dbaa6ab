package query

import (
	"strings"
)

// SortOrder represents the sort order direction
type SortOrder int

const (
	// SortOrderAsc sorts in ascending order
	SortOrderAsc SortOrder = iota
	// SortOrderDesc sorts in descending order
	SortOrderDesc
)

// String returns the string representation of SortOrder
func (so SortOrder) String() string {
	switch so {
	case SortOrderAsc:
		return "asc"
	case SortOrderDesc:
		return "desc"
	default:
		return "asc" // Default to asc
	}
}

// ParseSortOrder parses a string into a SortOrder enum value
// Returns SortOrderAsc as default for empty or invalid values
func ParseSortOrder(s string) SortOrder {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "asc":
		return SortOrderAsc
	case "desc":
		return SortOrderDesc
	default:
		return SortOrderAsc // Default to asc
	}
}

// SortField is a single sort criterion of a search request
type SortField struct {
	Field string
	Order SortOrder
}

// Asc returns an ascending sort on field
func Asc(field string) SortField {
	return SortField{Field: field, Order: SortOrderAsc}
}

// Desc returns a descending sort on field
func Desc(field string) SortField {
	return SortField{Field: field, Order: SortOrderDesc}
}

// ParseSortField parses "field", "field:desc" or "-field" into a SortField
func ParseSortField(s string) SortField {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return Desc(strings.TrimPrefix(s, "-"))
	}
	if field, order, ok := strings.Cut(s, ":"); ok {
		return SortField{Field: field, Order: ParseSortOrder(order)}
	}
	return Asc(s)
}

// Clause renders the field in search-engine sort syntax: {"field": {"order": "asc"}}
func (f SortField) Clause() map[string]any {
	return map[string]any{
		f.Field: map[string]any{"order": f.Order.String()},
	}
}

// String returns "field:order"
func (f SortField) String() string {
	return f.Field + ":" + f.Order.String()
}
