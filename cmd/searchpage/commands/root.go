package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hadi77ir/go-searchpage/config"
	"github.com/hadi77ir/go-searchpage/executors/elasticsearch"
	"github.com/hadi77ir/go-searchpage/executors/opensearch"
	"github.com/hadi77ir/go-searchpage/paginate"
	"github.com/hadi77ir/go-searchpage/query"
	"github.com/hadi77ir/go-searchpage/search"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// BackendOpener creates the search backend described by cfg
type BackendOpener func(cfg *config.Config, logger *zap.Logger) (search.Executor, error)

// OpenBackend opens the engine selected in cfg
func OpenBackend(cfg *config.Config, logger *zap.Logger) (search.Executor, error) {
	switch cfg.Search.Engine {
	case config.EngineOpenSearch:
		return opensearch.Open(cfg.Search.OpenSearch, logger)
	case config.EngineElasticsearch:
		return elasticsearch.Open(cfg.Search.Elasticsearch, logger)
	default:
		return nil, fmt.Errorf("unknown search engine %q", cfg.Search.Engine)
	}
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	configFile string
	engine     string
	index      string
	query      string
	sort       []string
	async      bool
	debug      bool
}

// session is what a subcommand needs to run searches
type session struct {
	search  *search.Search
	options []paginate.Option
	logger  *zap.Logger
	backend search.Backend
}

func (s *session) close() {
	_ = s.backend.Close()
	_ = s.logger.Sync()
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(OpenBackend)
}

func newRootCmd(open BackendOpener) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "searchpage",
		Short:         "Paginate search results from OpenSearch or Elasticsearch",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "config file path")
	pf.StringVar(&flags.engine, "engine", "", "search engine (opensearch or elasticsearch)")
	pf.StringVarP(&flags.index, "index", "i", "", "index to search, comma separated for several")
	pf.StringVarP(&flags.query, "query", "q", "", "query clause as JSON, e.g. '{\"term\":{\"status\":\"active\"}}'")
	pf.StringSliceVarP(&flags.sort, "sort", "s", nil, "sort fields as field, field:desc or -field")
	pf.BoolVar(&flags.async, "async", false, "run searches through the asynchronous executor")
	pf.BoolVar(&flags.debug, "debug", false, "enable development logging")

	rootCmd.AddCommand(
		newCursorCommand(flags, open),
		newOffsetCommand(flags, open),
	)

	return rootCmd
}

func newSession(flags *globalFlags, open BackendOpener) (*session, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.engine != "" {
		cfg.Search.Engine = strings.ToLower(flags.engine)
	}
	if flags.index != "" {
		cfg.Search.Index = flags.index
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(flags.debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	exec, err := open(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open search backend: %w", err)
	}

	var backend search.Backend = exec
	if flags.async {
		backend = search.Async(exec)
	}

	s := search.New(backend, splitIndices(cfg.Search.Index)...)
	if flags.query != "" {
		var clause map[string]any
		if err := json.Unmarshal([]byte(flags.query), &clause); err != nil {
			_ = backend.Close()
			_ = logger.Sync()
			return nil, fmt.Errorf("invalid query: %w", err)
		}
		s = s.Query(clause)
	}
	if len(flags.sort) > 0 {
		fields := make([]query.SortField, 0, len(flags.sort))
		for _, f := range flags.sort {
			fields = append(fields, query.ParseSortField(f))
		}
		s = s.Sort(fields...)
	}

	return &session{
		search: s,
		options: []paginate.Option{
			paginate.WithOptions(cfg.Options()),
			paginate.WithLogger(logger),
		},
		logger:  logger,
		backend: backend,
	}, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func splitIndices(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// printPage writes page as one JSON line
func printPage(w io.Writer, page *query.Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
