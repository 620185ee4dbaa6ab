package memory

import (
	"fmt"
	"reflect"

	"github.com/hadi77ir/go-searchpage/query"
)

// Supported query clauses
const (
	clauseMatchAll  = "match_all"
	clauseMatchNone = "match_none"
	clauseTerm      = "term"
	clauseTerms     = "terms"
	clauseRange     = "range"
	clauseExists    = "exists"
	clauseBool      = "bool"
)

// match evaluates a query clause against an item
// An empty clause matches everything, several top-level keys must all match
func (e *Executor) match(clause map[string]any, item reflect.Value) (bool, error) {
	for kind, body := range clause {
		ok, err := e.matchClause(kind, body, item)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (e *Executor) matchClause(kind string, body any, item reflect.Value) (bool, error) {
	switch kind {
	case clauseMatchAll:
		return true, nil

	case clauseMatchNone:
		return false, nil

	case clauseTerm:
		field, want, err := singleField(kind, body)
		if err != nil {
			return false, err
		}
		// Long form: {"term": {"field": {"value": v}}}
		if m, ok := want.(map[string]any); ok {
			if want, ok = m["value"]; !ok {
				return false, fmt.Errorf("%w: term on %q has no value", query.ErrInvalidQuery, field)
			}
		}
		return e.fieldMatches(item, field, func(v any) bool {
			return equalValues(v, want)
		})

	case clauseTerms:
		field, values, err := singleField(kind, body)
		if err != nil {
			return false, err
		}
		list := reflect.ValueOf(values)
		if list.Kind() != reflect.Slice {
			return false, fmt.Errorf("%w: terms on %q needs an array", query.ErrInvalidQuery, field)
		}
		return e.fieldMatches(item, field, func(v any) bool {
			for i := 0; i < list.Len(); i++ {
				if equalValues(v, list.Index(i).Interface()) {
					return true
				}
			}
			return false
		})

	case clauseRange:
		field, bounds, err := singleField(kind, body)
		if err != nil {
			return false, err
		}
		m, ok := bounds.(map[string]any)
		if !ok {
			return false, fmt.Errorf("%w: range on %q needs bounds", query.ErrInvalidQuery, field)
		}
		return e.fieldMatches(item, field, func(v any) bool {
			return inRange(v, m)
		})

	case clauseExists:
		m, ok := body.(map[string]any)
		if !ok {
			return false, fmt.Errorf("%w: exists needs a field", query.ErrInvalidQuery)
		}
		field, ok := m["field"].(string)
		if !ok {
			return false, fmt.Errorf("%w: exists needs a field", query.ErrInvalidQuery)
		}
		return e.fieldMatches(item, field, func(v any) bool {
			return v != nil
		})

	case clauseBool:
		return e.matchBool(body, item)

	default:
		return false, fmt.Errorf("%w: unsupported query clause %q", query.ErrInvalidQuery, kind)
	}
}

// matchBool evaluates must, filter, must_not and should
// should only decides the match when there is no must or filter
func (e *Executor) matchBool(body any, item reflect.Value) (bool, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return false, fmt.Errorf("%w: bool needs an object", query.ErrInvalidQuery)
	}

	required := 0
	for _, key := range []string{"must", "filter"} {
		subs, err := subClauses(m[key])
		if err != nil {
			return false, err
		}
		required += len(subs)
		for _, sub := range subs {
			ok, err := e.match(sub, item)
			if err != nil || !ok {
				return false, err
			}
		}
	}

	mustNot, err := subClauses(m["must_not"])
	if err != nil {
		return false, err
	}
	for _, sub := range mustNot {
		ok, err := e.match(sub, item)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}

	should, err := subClauses(m["should"])
	if err != nil {
		return false, err
	}
	if required > 0 || len(should) == 0 {
		return true, nil
	}
	for _, sub := range should {
		ok, err := e.match(sub, item)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// fieldMatches applies pred to the field value, or to each element of a
// multi-valued field
// A missing field never matches
func (e *Executor) fieldMatches(item reflect.Value, field string, pred func(any) bool) (bool, error) {
	v, err := e.getFieldValue(item, field, true)
	if err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, err
	}

	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Slice && val.Type().Elem().Kind() != reflect.Uint8 {
		for i := 0; i < val.Len(); i++ {
			if pred(val.Index(i).Interface()) {
				return true, nil
			}
		}
		return false, nil
	}
	return pred(v), nil
}

func inRange(v any, bounds map[string]any) bool {
	if v == nil {
		return false
	}
	for op, bound := range bounds {
		c := compareValues(v, bound)
		switch op {
		case "gt":
			if c <= 0 {
				return false
			}
		case "gte":
			if c < 0 {
				return false
			}
		case "lt":
			if c >= 0 {
				return false
			}
		case "lte":
			if c > 0 {
				return false
			}
		}
	}
	return true
}

// singleField unpacks {"field": value} bodies, ignoring boost
func singleField(kind string, body any) (string, any, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s needs an object", query.ErrInvalidQuery, kind)
	}
	var (
		field string
		value any
		found int
	)
	for k, v := range m {
		if k == "boost" {
			continue
		}
		field, value = k, v
		found++
	}
	if found != 1 {
		return "", nil, fmt.Errorf("%w: %s needs exactly one field", query.ErrInvalidQuery, kind)
	}
	return field, value, nil
}

// subClauses accepts a single clause or an array of clauses
func subClauses(v any) ([]map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []map[string]any{t}, nil
	case []map[string]any:
		return t, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: bool clause must be an object, got %T", query.ErrInvalidQuery, item)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: bool clause must be an object or array, got %T", query.ErrInvalidQuery, v)
	}
}
