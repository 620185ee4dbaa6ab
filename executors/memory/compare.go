package memory

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hadi77ir/go-searchpage/query"
)

// sortValue converts a field value into the form reported in Hit.Sort
// Times become epoch milliseconds and booleans 0/1, as the engines do
func sortValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UnixMilli()
	case bool:
		if t {
			return 1
		}
		return 0
	}
	return v
}

// compareKeys orders two sort keys field by field
// Missing values sort last regardless of the order
func compareKeys(a, b []any, fields []query.SortField) int {
	for i, f := range fields {
		var av, bv any
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}

		switch {
		case av == nil && bv == nil:
			continue
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}

		c := compareValues(av, bv)
		if f.Order == query.SortOrderDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// compareValues compares numerically when both sides are numbers and as
// strings otherwise
func compareValues(a, b any) int {
	a, b = sortValue(a), sortValue(b)
	aFloat, aOk := toFloat64(a)
	bFloat, bOk := toFloat64(b)
	if aOk && bOk {
		switch {
		case aFloat < bFloat:
			return -1
		case aFloat > bFloat:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func equalValues(a, b any) bool {
	return compareValues(a, b) == 0
}

func toFloat64(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(val.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(val.Uint()), true
	case reflect.Float32, reflect.Float64:
		return val.Float(), true
	case reflect.String:
		// Try to parse string as float
		f, err := strconv.ParseFloat(val.String(), 64)
		if err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		return 0, false
	}
	if val := reflect.ValueOf(v); val.CanInt() {
		return int(val.Int()), true
	}
	f, ok := toFloat64(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
