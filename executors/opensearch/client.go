package opensearch

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

// DefaultMaxRetries is used when Config.MaxRetries is zero
const DefaultMaxRetries = 3

var errNoAddresses = errors.New("opensearch: no addresses configured")

// Config holds the connection settings of an OpenSearch cluster
type Config struct {
	Addresses       []string `json:"addresses" yaml:"addresses" mapstructure:"addresses"`
	Username        string   `json:"username" yaml:"username" mapstructure:"username"`
	Password        string   `json:"password" yaml:"password" mapstructure:"password"`
	InsecureSkipTLS bool     `json:"insecure_skip_tls" yaml:"insecure_skip_tls" mapstructure:"insecure_skip_tls"`
	MaxRetries      int      `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// NewClient creates a new OpenSearch API client
func NewClient(cfg *Config) (*opensearchapi.Client, error) {
	if cfg == nil || len(cfg.Addresses) == 0 {
		return nil, errNoAddresses
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	// Configure transport with TLS options
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipTLS,
		},
	}

	client, err := opensearchapi.NewClient(
		opensearchapi.Config{
			Client: opensearch.Config{
				Addresses:  cfg.Addresses,
				Username:   cfg.Username,
				Password:   cfg.Password,
				Transport:  transport,
				MaxRetries: maxRetries,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("opensearch client creation error: %w", err)
	}

	return client, nil
}
