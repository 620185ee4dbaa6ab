package memory

import (
	"errors"
	"reflect"
	"strings"

	"github.com/hadi77ir/go-searchpage/query"
)

var errFieldNotFound = errors.New("field not found")

func isMissing(err error) bool {
	return errors.Is(err, errFieldNotFound)
}

// getFieldValue gets a field value from an item (struct or map)
func (e *Executor) getFieldValue(item reflect.Value, fieldName string, checkAllowed bool) (any, error) {
	// Check if field is allowed (security check)
	if checkAllowed && !e.options.IsFieldAllowed(fieldName) {
		return nil, query.FieldNotAllowedError(fieldName)
	}

	// Use custom field getter if provided
	if e.options.FieldGetter != nil {
		var obj any
		if item.Kind() == reflect.Ptr || !item.CanAddr() {
			obj = item.Interface()
		} else {
			obj = item.Addr().Interface()
		}
		val, err := e.options.FieldGetter(obj, fieldName)
		if err != nil {
			return nil, query.NewExecutionError("custom getter", err)
		}
		return val, nil
	}

	item = indirect(item)

	switch item.Kind() {
	case reflect.Struct:
		// Try to find field by name or json/bson tag (case-insensitive)
		typ := item.Type()
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			if strings.EqualFold(field.Name, fieldName) ||
				strings.EqualFold(tagName(field, "json"), fieldName) ||
				strings.EqualFold(tagName(field, "bson"), fieldName) {
				return item.Field(i).Interface(), nil
			}
		}
		return nil, errFieldNotFound

	case reflect.Map:
		if item.Type().Key().Kind() != reflect.String {
			return nil, errFieldNotFound
		}
		// Try exact match first
		val := item.MapIndex(reflect.ValueOf(fieldName).Convert(item.Type().Key()))
		if val.IsValid() {
			return val.Interface(), nil
		}
		iter := item.MapRange()
		for iter.Next() {
			if strings.EqualFold(iter.Key().String(), fieldName) {
				return iter.Value().Interface(), nil
			}
		}
		return nil, errFieldNotFound

	default:
		return nil, errFieldNotFound
	}
}

// toSource renders an item as the _source map of a hit
// Struct keys follow the json tag, falling back to the field name
func toSource(item reflect.Value) map[string]any {
	item = indirect(item)

	switch item.Kind() {
	case reflect.Map:
		if item.Type().Key().Kind() != reflect.String {
			return map[string]any{}
		}
		source := make(map[string]any, item.Len())
		iter := item.MapRange()
		for iter.Next() {
			source[iter.Key().String()] = iter.Value().Interface()
		}
		return source

	case reflect.Struct:
		typ := item.Type()
		source := make(map[string]any, typ.NumField())
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := tagName(field, "json")
			if name == "-" {
				continue
			}
			if name == "" {
				name = field.Name
			}
			source[name] = item.Field(i).Interface()
		}
		return source

	default:
		return map[string]any{}
	}
}

func indirect(item reflect.Value) reflect.Value {
	for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return item
		}
		item = item.Elem()
	}
	return item
}

func tagName(field reflect.StructField, key string) string {
	tag := field.Tag.Get(key)
	if tag == "" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}
