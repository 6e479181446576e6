package ngram

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when hyperparameters fail validation.
var ErrInvalidConfig = errors.New("invalid model configuration")

const (
	// DefaultOrder is the n-gram order; contexts hold up to DefaultOrder-1 characters.
	DefaultOrder = 6
	// DefaultDiscount is the absolute discount subtracted from every stored count.
	DefaultDiscount = 0.75
	// DefaultAlpha is the add-alpha constant of the lowest-order distribution.
	DefaultAlpha = 1.0
	// DefaultMaxCharsPerContext caps the next-character candidates kept per context.
	DefaultMaxCharsPerContext = 64
	// DefaultMinContextCount drops contexts observed fewer times than this.
	DefaultMinContextCount = 3
	// DefaultMaxContexts keeps only this many of the most frequent contexts.
	DefaultMaxContexts = 1000000
)

// Config holds the hyperparameters of a Model. They are fixed when the model
// is constructed and are persisted with every checkpoint.
type Config struct {
	Order              int     `json:"ngram_order"`
	Discount           float64 `json:"kn_discount"`
	Alpha              float64 `json:"laplace_alpha"`
	MaxCharsPerContext int     `json:"max_chars_per_context"`
	MinContextCount    int     `json:"min_context_count"`
	MaxContexts        int     `json:"max_contexts"` // <= 0 means no cap
}

// DefaultConfig returns the hyperparameters used when no options are given.
func DefaultConfig() Config {
	return Config{
		Order:              DefaultOrder,
		Discount:           DefaultDiscount,
		Alpha:              DefaultAlpha,
		MaxCharsPerContext: DefaultMaxCharsPerContext,
		MinContextCount:    DefaultMinContextCount,
		MaxContexts:        DefaultMaxContexts,
	}
}

// Validate reports whether the configuration can be used to build a model.
func (c Config) Validate() error {
	switch {
	case c.Order < 1:
		return fmt.Errorf("%w: ngram order must be at least 1, got %d", ErrInvalidConfig, c.Order)
	case !(c.Discount > 0 && c.Discount < 1):
		return fmt.Errorf("%w: discount must be in (0, 1), got %v", ErrInvalidConfig, c.Discount)
	case !(c.Alpha >= 0):
		return fmt.Errorf("%w: alpha must be non-negative, got %v", ErrInvalidConfig, c.Alpha)
	}
	return c.Limits().Validate()
}

// Limits returns the trimming caps carried by the configuration.
func (c Config) Limits() Limits {
	return Limits{
		MinContextCount:    c.MinContextCount,
		MaxContexts:        c.MaxContexts,
		MaxCharsPerContext: c.MaxCharsPerContext,
	}
}

// withLimits returns a copy of c with its trimming caps replaced.
func (c Config) withLimits(l Limits) Config {
	c.MinContextCount = l.MinContextCount
	c.MaxContexts = l.MaxContexts
	c.MaxCharsPerContext = l.MaxCharsPerContext
	return c
}

// Option configures a Model at construction time.
type Option func(*Config)

// WithOrder sets the n-gram order. Contexts of 1 to order-1 characters are counted.
// Default: 6
func WithOrder(n int) Option {
	return func(c *Config) { c.Order = n }
}

// WithDiscount sets the absolute discount D, which must lie strictly between 0 and 1.
// Default: 0.75
func WithDiscount(d float64) Option {
	return func(c *Config) { c.Discount = d }
}

// WithAlpha sets the add-alpha smoothing constant of the lowest-order distribution.
// Default: 1.0
func WithAlpha(a float64) Option {
	return func(c *Config) { c.Alpha = a }
}

// WithMaxCharsPerContext caps how many next characters are kept per context.
// Default: 64
func WithMaxCharsPerContext(k int) Option {
	return func(c *Config) { c.MaxCharsPerContext = k }
}

// WithMinContextCount drops contexts whose total count is below n after training.
// Default: 3
func WithMinContextCount(n int) Option {
	return func(c *Config) { c.MinContextCount = n }
}

// WithMaxContexts keeps only the n most frequent contexts. A value of 0 or less
// disables the cap.
// Default: 1000000
func WithMaxContexts(n int) Option {
	return func(c *Config) { c.MaxContexts = n }
}

// WithConfig replaces every hyperparameter at once. Options given after it
// still apply on top.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}
