package paginate

import (
	"context"
	"testing"

	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffset_Window(t *testing.T) {
	exec := record(memoryOf(35))
	page, err := Paginate(context.Background(), search.New(exec, "docs"), query.NewLimitOffset(10, 20))
	require.NoError(t, err)

	assert.Equal(t, []int{21, 22, 23, 24, 25, 26, 27, 28, 29, 30}, ids(page.Items))
	assert.Equal(t, int64(35), page.Total)
	assert.Nil(t, page.NextPage)
	require.NotNil(t, page.Limit)
	require.NotNil(t, page.Offset)
	assert.Equal(t, 10, *page.Limit)
	assert.Equal(t, 20, *page.Offset)

	sent := exec.last().Body()
	assert.Equal(t, 10, sent[search.KeySize])
	assert.Equal(t, 20, sent[search.KeyFrom])
	assert.Equal(t, true, sent[search.KeyTrackTotalHits])
	assert.NotContains(t, sent, search.KeySearchAfter)
}

func TestOffset_PageParams(t *testing.T) {
	page, err := Paginate(context.Background(), search.New(memoryOf(35)), query.PageParams{Page: 3, Size: 10})
	require.NoError(t, err)

	assert.Equal(t, []int{21, 22, 23, 24, 25, 26, 27, 28, 29, 30}, ids(page.Items))
	require.NotNil(t, page.Pages)
	assert.Equal(t, 4, *page.Pages)
	assert.Equal(t, 3, *page.Page)

	last, err := Paginate(context.Background(), search.New(memoryOf(35)), query.PageParams{Page: 4, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{31, 32, 33, 34, 35}, ids(last.Items))
}

func TestOffset_PartialParams(t *testing.T) {
	ctx := context.Background()

	t.Run("nil params use the default size", func(t *testing.T) {
		exec := record(memoryOf(60))
		page, err := Paginate(ctx, search.New(exec), nil)
		require.NoError(t, err)
		assert.Len(t, page.Items, 50)
		assert.Equal(t, 50, exec.last().Body()[search.KeySize])
		assert.Equal(t, 0, exec.last().Body()[search.KeyFrom])
	})

	t.Run("absent limit keeps backend default", func(t *testing.T) {
		exec := record(memoryOf(35))
		offset := 30
		page, err := Paginate(ctx, search.New(exec), query.LimitOffsetParams{Offset: &offset})
		require.NoError(t, err)
		assert.Equal(t, []int{31, 32, 33, 34, 35}, ids(page.Items))

		body := exec.last().Body()
		assert.NotContains(t, body, search.KeySize)
		assert.Equal(t, 30, body[search.KeyFrom])
	})

	t.Run("offset past the end", func(t *testing.T) {
		page, err := Paginate(ctx, search.New(memoryOf(5)), query.NewLimitOffset(10, 100))
		require.NoError(t, err)
		assert.True(t, page.IsEmpty())
		assert.Equal(t, int64(5), page.Total)
	})
}

func TestOffset_Invalid(t *testing.T) {
	ctx := context.Background()

	t.Run("limit above max", func(t *testing.T) {
		_, err := Paginate(ctx, search.New(memoryOf(5)), query.NewLimitOffset(500, 0))
		assert.ErrorIs(t, err, query.ErrInvalidParams)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, err := Paginate(ctx, search.New(memoryOf(5)), query.NewLimitOffset(10, -1))
		assert.ErrorIs(t, err, query.ErrInvalidParams)
	})

	t.Run("cursor params forced through offset", func(t *testing.T) {
		_, err := Offset(ctx, search.New(memoryOf(5)), query.CursorParams{Size: 5})
		assert.ErrorIs(t, err, query.ErrInvalidParams)
	})
}

func TestApplyOffset(t *testing.T) {
	base := search.New(nil).Extra(search.KeySize, 7)
	limit, offset := 3, 9

	s := applyOffset(base, query.RawParams{Limit: &limit, Offset: &offset})
	size, _ := s.ExtraValue(search.KeySize)
	from, _ := s.ExtraValue(search.KeyFrom)
	assert.Equal(t, 3, size)
	assert.Equal(t, 9, from)

	// Base is untouched and absent fields are kept
	size, _ = base.ExtraValue(search.KeySize)
	assert.Equal(t, 7, size)
	kept := applyOffset(base, query.RawParams{})
	size, _ = kept.ExtraValue(search.KeySize)
	assert.Equal(t, 7, size)
	_, hasFrom := kept.ExtraValue(search.KeyFrom)
	assert.False(t, hasFrom)
}
