package generate

import (
	"math/big"
	"math/rand"
)

const (
	// MaxSampleAttempts bounds the rejection sampler for integers wider
	// than 32 bits.
	MaxSampleAttempts = 1000

	DefaultVecMaxLen          = 9
	DefaultReturnVecMaxLen    = 4
	DefaultTextLength         = 8
	DefaultOptNoneProbability = 0.5

	// PrincipalLength is the byte length of generated principals.
	PrincipalLength = 29

	smallIntMagnitude = 100
)

type config struct {
	source       rand.Source
	vecMaxLen    int
	optNone      float64
	textLength   int
	maxAttempts  int
	rangeLo      *big.Int
	rangeHi      *big.Int
	returnVecMax int
}

func defaultConfig() config {
	return config{
		vecMaxLen:    DefaultVecMaxLen,
		returnVecMax: DefaultReturnVecMaxLen,
		optNone:      DefaultOptNoneProbability,
		textLength:   DefaultTextLength,
		maxAttempts:  MaxSampleAttempts,
	}
}

// Option configures a Generator.
type Option func(*config)

// WithSeed makes the generator deterministic.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.source = rand.NewSource(seed)
	}
}

// WithSource sets the random source used for every draw.
func WithSource(src rand.Source) Option {
	return func(c *config) {
		c.source = src
	}
}

// WithVecMaxLen sets the inclusive upper bound of vector lengths.
func WithVecMaxLen(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.vecMaxLen = n
		}
	}
}

// WithOptNoneProbability sets the chance that an opt is absent.
func WithOptNoneProbability(p float64) Option {
	return func(c *config) {
		if p >= 0 && p <= 1 {
			c.optNone = p
		}
	}
}

// WithTextLength sets the length of generated text.
func WithTextLength(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.textLength = n
		}
	}
}

// WithMaxAttempts overrides MaxSampleAttempts.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithIntRange narrows the values accepted by the sampler for integers
// wider than 32 bits to [lo, hi). Either bound may be nil. The window is
// intersected with the range of the type.
func WithIntRange(lo, hi *big.Int) Option {
	return func(c *config) {
		c.rangeLo = lo
		c.rangeHi = hi
	}
}
