package memory

import (
	"context"
	"testing"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type User struct {
	ID       int
	Name     string
	Email    string
	Password string // Sensitive field that should be restricted
	SSN      string // Sensitive field that should be restricted
}

func getTestUsers() []User {
	return []User{
		{ID: 1, Name: "Alice", Email: "alice@example.com", Password: "secret1", SSN: "111-11-1111"},
		{ID: 2, Name: "Bob", Email: "bob@example.com", Password: "secret2", SSN: "222-22-2222"},
		{ID: 3, Name: "Charlie", Email: "charlie@example.com", Password: "secret3", SSN: "333-33-3333"},
	}
}

func TestExecutor_AllowedFields(t *testing.T) {
	users := getTestUsers()
	ctx := context.Background()

	t.Run("unrestricted access - all fields allowed", func(t *testing.T) {
		executor := NewExecutor(users, nil)

		resp, err := search.New(executor).Query(map[string]any{"term": map[string]any{"password": "secret1"}}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, hitIDs(resp))
	})

	restricted := NewExecutor(users, &Options{AllowedFields: []string{"id", "name", "email"}})

	t.Run("restricted access - allowed field", func(t *testing.T) {
		resp, err := search.New(restricted).Query(map[string]any{"term": map[string]any{"name": "Bob"}}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, hitIDs(resp))
	})

	blocked := map[string]map[string]any{
		"block sensitive field": {"term": map[string]any{"password": "secret1"}},
		"block SSN field":       {"terms": map[string]any{"ssn": []any{"111-11-1111"}}},
		"block inside bool": {"bool": map[string]any{
			"must":     []any{map[string]any{"term": map[string]any{"name": "Alice"}}},
			"must_not": []any{map[string]any{"exists": map[string]any{"field": "password"}}},
		}},
	}
	for name, q := range blocked {
		t.Run("restricted access - "+name, func(t *testing.T) {
			_, err := search.New(restricted).Query(q).Execute(ctx)
			assert.ErrorIs(t, err, query.ErrFieldNotAllowed)
		})
	}

	t.Run("case sensitive field names", func(t *testing.T) {
		_, err := search.New(restricted).Query(map[string]any{"term": map[string]any{"Name": "Alice"}}).Execute(ctx)
		assert.ErrorIs(t, err, query.ErrFieldNotAllowed)
	})

	t.Run("sorting with restricted fields", func(t *testing.T) {
		resp, err := search.New(restricted).Sort(query.Desc("name")).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"3", "2", "1"}, hitIDs(resp))

		_, err = search.New(restricted).Sort(query.Asc("ssn")).Execute(ctx)
		assert.ErrorIs(t, err, query.ErrFieldNotAllowed)
	})

	t.Run("_id is always sortable", func(t *testing.T) {
		resp, err := search.New(restricted).Sort(query.Desc("_id")).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"3", "2", "1"}, hitIDs(resp))
	})

	t.Run("restricted map access", func(t *testing.T) {
		docs := []map[string]any{
			{"id": 1, "name": "Alice", "_private": "hidden"},
			{"id": 2, "name": "Bob", "_private": "hidden"},
		}
		executor := NewExecutor(docs, &Options{AllowedFields: []string{"name"}})

		_, err := search.New(executor).Query(map[string]any{"term": map[string]any{"_private": "hidden"}}).Execute(ctx)
		assert.ErrorIs(t, err, query.ErrFieldNotAllowed)

		// The id field is read for hits even when it is not queryable
		resp, err := search.New(executor).Query(map[string]any{"term": map[string]any{"name": "Bob"}}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"2"}, hitIDs(resp))
	})
}
