package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type CustomObject struct {
	data map[string]any
}

func (o *CustomObject) Get(key string) any {
	return o.data[key]
}

func customGetter(obj any, field string) (any, error) {
	customObj, ok := obj.(*CustomObject)
	if !ok {
		return nil, fmt.Errorf("expected *CustomObject, got %T", obj)
	}
	return customObj.Get(field), nil
}

func TestExecutor_CustomFieldGetter(t *testing.T) {
	// Custom objects that don't expose fields via reflection
	objects := []*CustomObject{
		{data: map[string]any{"id": 1, "name": "Alice", "score": 95}},
		{data: map[string]any{"id": 2, "name": "Bob", "score": 87}},
		{data: map[string]any{"id": 3, "name": "Charlie", "score": 92}},
	}
	ctx := context.Background()

	t.Run("filter", func(t *testing.T) {
		executor := NewExecutor(objects, &Options{FieldGetter: customGetter})
		resp, err := search.New(executor).
			Query(map[string]any{"range": map[string]any{"score": map[string]any{"gt": 90}}}).
			Execute(ctx)
		require.NoError(t, err)
		// Alice (95) and Charlie (92)
		assert.Equal(t, []string{"1", "3"}, hitIDs(resp))
	})

	t.Run("sorting", func(t *testing.T) {
		executor := NewExecutor(objects, &Options{FieldGetter: customGetter})
		resp, err := search.New(executor).Sort(query.Asc("score")).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "3", "1"}, hitIDs(resp))
		assert.Equal(t, []any{87}, resp.Hits[0].Sort)
	})

	t.Run("allowed fields still apply", func(t *testing.T) {
		executor := NewExecutor(objects, &Options{
			FieldGetter:   customGetter,
			AllowedFields: []string{"id", "name"},
		})

		resp, err := search.New(executor).Query(map[string]any{"term": map[string]any{"name": "Bob"}}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, hitIDs(resp))

		_, err = search.New(executor).Sort(query.Desc("score")).Execute(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, query.ErrFieldNotAllowed)
		var fieldErr *query.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "score", fieldErr.Field)
	})

	t.Run("getter errors propagate", func(t *testing.T) {
		getterErr := errors.New("backend unavailable")
		executor := NewExecutor(objects, &Options{
			FieldGetter: func(obj any, field string) (any, error) {
				if field == "score" {
					return nil, getterErr
				}
				return customGetter(obj, field)
			},
		})

		_, err := search.New(executor).Query(map[string]any{"term": map[string]any{"score": 95}}).Execute(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, getterErr)
		assert.ErrorIs(t, err, query.ErrExecutionFailed)
	})
}

// Complex nested object scenario
type NestedData struct {
	User     User
	Metadata map[string]any
}

func TestExecutor_CustomFieldGetter_NestedAccess(t *testing.T) {
	data := []NestedData{
		{
			User:     User{ID: 1, Name: "Alice", Email: "alice@example.com"},
			Metadata: map[string]any{"department": "Engineering", "level": 5},
		},
		{
			User:     User{ID: 2, Name: "Bob", Email: "bob@example.com"},
			Metadata: map[string]any{"department": "Sales", "level": 3},
		},
	}

	// Support dot notation for nested access
	getter := func(obj any, field string) (any, error) {
		nested, ok := obj.(*NestedData)
		if !ok {
			return nil, fmt.Errorf("expected *NestedData, got %T", obj)
		}
		parts := strings.SplitN(field, ".", 2)
		if len(parts) != 2 {
			return nil, nil
		}
		switch parts[0] {
		case "user":
			switch parts[1] {
			case "id":
				return nested.User.ID, nil
			case "name":
				return nested.User.Name, nil
			}
		case "metadata":
			return nested.Metadata[parts[1]], nil
		}
		return nil, nil
	}

	executor := NewExecutor(data, &Options{FieldGetter: getter, IDField: "user.id"})
	ctx := context.Background()

	t.Run("nested filter", func(t *testing.T) {
		resp, err := search.New(executor).
			Query(map[string]any{"term": map[string]any{"metadata.department": "Sales"}}).
			Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, hitIDs(resp))
	})

	t.Run("nested sort", func(t *testing.T) {
		resp, err := search.New(executor).Sort(query.Asc("metadata.level")).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "1"}, hitIDs(resp))
		assert.Equal(t, []any{3}, resp.Hits[0].Sort)
	})
}
