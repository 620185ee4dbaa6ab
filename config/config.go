package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hadi77ir/go-searchpage/executors/elasticsearch"
	"github.com/hadi77ir/go-searchpage/executors/opensearch"
	"github.com/hadi77ir/go-searchpage/query"
	"github.com/spf13/viper"
)

// Supported search engines
const (
	EngineOpenSearch    = "opensearch"
	EngineElasticsearch = "elasticsearch"
)

// EnvPrefix prefixes environment overrides, e.g. SEARCHPAGE_SEARCH_INDEX
const EnvPrefix = "SEARCHPAGE"

var (
	// ErrInvalidConfig is returned by Validate
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the whole configuration
type Config struct {
	Search *Search `json:"search" yaml:"search"`
	Paging *Paging `json:"paging" yaml:"paging"`

	Viper *viper.Viper `json:"-" yaml:"-"`
}

// Search selects the engine and holds its connection settings
type Search struct {
	Engine        string                `json:"engine" yaml:"engine"`
	Index         string                `json:"index" yaml:"index"`
	OpenSearch    *opensearch.Config    `json:"opensearch" yaml:"opensearch"`
	Elasticsearch *elasticsearch.Config `json:"elasticsearch" yaml:"elasticsearch"`
}

// Paging holds the pagination defaults
type Paging struct {
	DefaultSize     int    `json:"default_size" yaml:"default_size"`
	MaxSize         int    `json:"max_size" yaml:"max_size"`
	TiebreakerField string `json:"tiebreaker_field" yaml:"tiebreaker_field"`
	CursorEncoding  string `json:"cursor_encoding" yaml:"cursor_encoding"`
}

// NewViper returns a viper instance reading SEARCHPAGE_ environment overrides
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path
// An empty path looks for searchpage.{yaml,json,toml} in the usual places and
// falls back to defaults and environment variables when none is found
func Load(path string) (*Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("searchpage")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.searchpage")
		v.AddConfigPath("/etc/searchpage")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return New(v), nil
}

// New builds the configuration from v
func New(v *viper.Viper) *Config {
	return &Config{
		Search: getSearchConfig(v),
		Paging: getPagingConfig(v),
		Viper:  v,
	}
}

func getSearchConfig(v *viper.Viper) *Search {
	return &Search{
		Engine: strings.ToLower(getStringOrDefault(v, "search.engine", EngineOpenSearch)),
		Index:  v.GetString("search.index"),
		OpenSearch: &opensearch.Config{
			Addresses:       getStringSlice(v, "search.opensearch.addresses"),
			Username:        v.GetString("search.opensearch.username"),
			Password:        v.GetString("search.opensearch.password"),
			InsecureSkipTLS: getBoolOrDefault(v, "search.opensearch.insecure_skip_tls", false),
			MaxRetries:      getIntOrDefault(v, "search.opensearch.max_retries", opensearch.DefaultMaxRetries),
		},
		Elasticsearch: &elasticsearch.Config{
			Addresses: getStringSlice(v, "search.elasticsearch.addresses"),
			Username:  v.GetString("search.elasticsearch.username"),
			Password:  v.GetString("search.elasticsearch.password"),
		},
	}
}

func getPagingConfig(v *viper.Viper) *Paging {
	defaults := query.DefaultOptions()
	return &Paging{
		DefaultSize:     getIntOrDefault(v, "paging.default_size", defaults.DefaultPageSize),
		MaxSize:         getIntOrDefault(v, "paging.max_size", defaults.MaxPageSize),
		TiebreakerField: getStringOrDefault(v, "paging.tiebreaker_field", defaults.TiebreakerField),
		CursorEncoding:  strings.ToLower(getStringOrDefault(v, "paging.cursor_encoding", defaults.CursorEncoding)),
	}
}

// Options converts the paging section into query options
func (c *Config) Options() *query.Options {
	return &query.Options{
		DefaultPageSize: c.Paging.DefaultSize,
		MaxPageSize:     c.Paging.MaxSize,
		TiebreakerField: c.Paging.TiebreakerField,
		CursorEncoding:  c.Paging.CursorEncoding,
	}
}

// Validate checks the engine selection and the paging bounds
func (c *Config) Validate() error {
	var errs []error

	switch c.Search.Engine {
	case EngineOpenSearch:
		if len(c.Search.OpenSearch.Addresses) == 0 {
			errs = append(errs, fmt.Errorf("%w: search.opensearch.addresses is empty", ErrInvalidConfig))
		}
	case EngineElasticsearch:
		if len(c.Search.Elasticsearch.Addresses) == 0 {
			errs = append(errs, fmt.Errorf("%w: search.elasticsearch.addresses is empty", ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown search.engine %q", ErrInvalidConfig, c.Search.Engine))
	}

	if c.Paging.DefaultSize < 1 {
		errs = append(errs, fmt.Errorf("%w: paging.default_size must be at least 1", ErrInvalidConfig))
	}
	if c.Paging.MaxSize > 0 && c.Paging.DefaultSize > c.Paging.MaxSize {
		errs = append(errs, fmt.Errorf("%w: paging.default_size exceeds paging.max_size", ErrInvalidConfig))
	}
	switch c.Paging.CursorEncoding {
	case query.CursorEncodingJSON, query.CursorEncodingCBOR:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown paging.cursor_encoding %q", ErrInvalidConfig, c.Paging.CursorEncoding))
	}

	return errors.Join(errs...)
}
