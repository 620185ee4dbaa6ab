package commands

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hadi77ir/go-searchpage/config"
	"github.com/hadi77ir/go-searchpage/executors/memory"
	"github.com/hadi77ir/go-searchpage/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type printedPage struct {
	Items []struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	} `json:"items"`
	Total    int64   `json:"total"`
	Limit    *int    `json:"limit"`
	Offset   *int    `json:"offset"`
	Size     *int    `json:"size"`
	NextPage *string `json:"next_page"`
}

func (p printedPage) ids() []int {
	out := make([]int, len(p.Items))
	for i, item := range p.Items {
		out[i] = item.ID
	}
	return out
}

func documents(n int) []map[string]any {
	docs := make([]map[string]any, n)
	for i := range docs {
		status := "active"
		if (i+1)%4 == 0 {
			status = "archived"
		}
		docs[i] = map[string]any{"id": i + 1, "status": status}
	}
	return docs
}

// memoryOpener serves documents from memory and records the config it was given
func memoryOpener(n int, seen **config.Config) BackendOpener {
	return func(cfg *config.Config, _ *zap.Logger) (search.Executor, error) {
		if seen != nil {
			*seen = cfg
		}
		return memory.NewExecutor(documents(n), nil), nil
	}
}

const baseConfig = `
search:
  index: articles
  opensearch:
    addresses: [http://localhost:9200]
  elasticsearch:
    addresses: [http://localhost:9201]
`

func writeConfig(t *testing.T) string {
	return writeConfigContent(t, baseConfig+"paging:\n  default_size: 4\n")
}

func writeConfigContent(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "searchpage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, open BackendOpener, args ...string) ([]printedPage, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	var pages []printedPage
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var p printedPage
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &p), scanner.Text())
		pages = append(pages, p)
	}
	return pages, err
}

func TestCursorCommand(t *testing.T) {
	path := writeConfig(t)

	t.Run("walks every page", func(t *testing.T) {
		pages, err := run(t, memoryOpener(10, nil), "cursor", "-c", path, "--sort", "id", "--max-pages", "0")
		require.NoError(t, err)
		require.Len(t, pages, 3)

		assert.Equal(t, []int{1, 2, 3, 4}, pages[0].ids())
		assert.Equal(t, []int{5, 6, 7, 8}, pages[1].ids())
		assert.Equal(t, []int{9, 10}, pages[2].ids())
		assert.NotNil(t, pages[0].NextPage)
		assert.NotNil(t, pages[1].NextPage)
		assert.Nil(t, pages[2].NextPage)
		for _, p := range pages {
			assert.Equal(t, int64(10), p.Total)
		}
	})

	t.Run("stops at max pages and resumes", func(t *testing.T) {
		pages, err := run(t, memoryOpener(10, nil), "cursor", "-c", path, "--sort", "id", "--size", "3")
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, []int{1, 2, 3}, pages[0].ids())
		require.NotNil(t, pages[0].NextPage)

		pages, err = run(t, memoryOpener(10, nil), "cursor", "-c", path, "--sort", "id", "--size", "3",
			"--cursor", *pages[0].NextPage, "--async")
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, []int{4, 5, 6}, pages[0].ids())
	})

	t.Run("query and descending sort", func(t *testing.T) {
		pages, err := run(t, memoryOpener(10, nil), "cursor", "-c", path,
			"-q", `{"term":{"status":"archived"}}`, "-s", "-id", "--max-pages", "0")
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, []int{8, 4}, pages[0].ids())
		assert.Equal(t, int64(2), pages[0].Total)
	})
}

func TestOffsetCommand(t *testing.T) {
	path := writeConfig(t)

	pages, err := run(t, memoryOpener(10, nil), "offset", "-c", path, "--sort", "id", "--limit", "3", "--offset", "6")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []int{7, 8, 9}, pages[0].ids())
	assert.Equal(t, int64(10), pages[0].Total)
	require.NotNil(t, pages[0].Limit)
	require.NotNil(t, pages[0].Offset)
	assert.Equal(t, 3, *pages[0].Limit)
	assert.Equal(t, 6, *pages[0].Offset)
}

func TestFlagOverrides(t *testing.T) {
	var seen *config.Config
	_, err := run(t, memoryOpener(1, &seen), "offset", "-c", writeConfig(t),
		"--engine", "Elasticsearch", "--index", "archive")
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, config.EngineElasticsearch, seen.Search.Engine)
	assert.Equal(t, "archive", seen.Search.Index)
}

func TestCommandErrors(t *testing.T) {
	path := writeConfig(t)

	t.Run("invalid query", func(t *testing.T) {
		_, err := run(t, memoryOpener(1, nil), "cursor", "-c", path, "-q", "{not json")
		assert.ErrorContains(t, err, "invalid query")
	})

	t.Run("backend failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		open := func(*config.Config, *zap.Logger) (search.Executor, error) { return nil, boom }
		_, err := run(t, open, "offset", "-c", path)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := run(t, memoryOpener(1, nil), "offset", "-c", filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "failed to load config")
	})

	t.Run("rejected config", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{"unknown cursor encoding", baseConfig + "paging:\n  cursor_encoding: xml\n"},
			{"default size above max", baseConfig + "paging:\n  default_size: 50\n  max_size: 10\n"},
			{"unknown engine", baseConfig + "  engine: solr\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				opened := false
				open := func(*config.Config, *zap.Logger) (search.Executor, error) {
					opened = true
					return memory.NewExecutor(documents(1), nil), nil
				}
				pages, err := run(t, open, "cursor", "-c", writeConfigContent(t, tt.content), "--sort", "id")
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
				assert.Empty(t, pages)
				assert.False(t, opened)
			})
		}
	})

	t.Run("engine flag is validated", func(t *testing.T) {
		_, err := run(t, memoryOpener(1, nil), "offset", "-c", path, "--engine", "solr")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := run(t, memoryOpener(1, nil), "offset", "-c", path, "--limit", "0")
		assert.Error(t, err)
	})
}

func TestOpenBackend(t *testing.T) {
	v := config.NewViper()
	cfg := config.New(v)

	cfg.Search.Engine = "solr"
	_, err := OpenBackend(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unknown search engine")

	cfg.Search.Engine = config.EngineOpenSearch
	_, err = OpenBackend(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg.Search.Engine = config.EngineElasticsearch
	cfg.Search.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	exec, err := OpenBackend(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "elasticsearch", exec.Name())
}

func TestSplitIndices(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIndices("a, b,"))
	assert.Nil(t, splitIndices(""))
}
