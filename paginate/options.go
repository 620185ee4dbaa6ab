package paginate

import (
	"github.com/hadi77ir/go-searchpage/internal/cursor"
	"github.com/hadi77ir/go-searchpage/query"
	"go.uber.org/zap"
)

// Option configures a single Paginate call
type Option func(*config)

type config struct {
	transformer Transformer
	additional  query.AdditionalData
	verifier    query.Verifier
	factory     query.PageFactory
	options     *query.Options
	logger      *zap.Logger
	codec       cursor.Codec
}

// WithTransformer post-processes the page items before the page is built
func WithTransformer(t Transformer) Option {
	return func(c *config) {
		c.transformer = t
	}
}

// WithAdditionalData merges extra fields into the page
func WithAdditionalData(data query.AdditionalData) Option {
	return func(c *config) {
		c.additional = data
	}
}

// WithVerifier replaces the params verifier
func WithVerifier(v query.Verifier) Option {
	return func(c *config) {
		c.verifier = v
	}
}

// WithPageFactory replaces the page factory
func WithPageFactory(f query.PageFactory) Option {
	return func(c *config) {
		c.factory = f
	}
}

// WithOptions sets page size limits, the tiebreaker field and the cursor encoding
func WithOptions(opts *query.Options) Option {
	return func(c *config) {
		c.options = opts
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	if c.options == nil {
		c.options = query.DefaultOptions()
	}
	if c.verifier == nil {
		c.verifier = query.NewVerifier(c.options)
	}
	if c.factory == nil {
		c.factory = query.DefaultPageFactory{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.codec = cursor.ForEncoding(c.options.CursorEncoding)

	return c
}
