package visitor

import (
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

// Context is the per-traversal state: how often each recursive reference
// has been entered and a monotonic counter for ordering labels.
type Context struct {
	visits  map[*idl.RecType]int
	memo    map[*idl.RecType]any
	counter int
	phase   errors.Phase
}

// NewContext returns an empty context. Phase tags errors raised by
// Dispatch itself.
func NewContext(phase errors.Phase) *Context {
	return &Context{
		visits: make(map[*idl.RecType]int),
		phase:  phase,
	}
}

// Phase returns the phase the context was created for.
func (c *Context) Phase() errors.Phase {
	if c == nil {
		return errors.PhaseDerive
	}
	return c.phase
}

// Enter records a visit of rec and returns the number of visits including
// this one. A result of 1 means the reference is being unrolled for the
// first time in this traversal.
func (c *Context) Enter(rec *idl.RecType) int {
	c.visits[rec]++
	return c.visits[rec]
}

// Visited reports whether rec has been entered in this traversal.
func (c *Context) Visited(rec *idl.RecType) bool {
	return c.visits[rec] > 0
}

// Next returns the current counter value and advances it.
func (c *Context) Next() int {
	n := c.counter
	c.counter++
	return n
}

// Memo returns the value stored for rec in this traversal.
func (c *Context) Memo(rec *idl.RecType) (any, bool) {
	v, ok := c.memo[rec]
	return v, ok
}

// SetMemo stores a value for rec for the rest of this traversal.
func (c *Context) SetMemo(rec *idl.RecType, v any) {
	if c.memo == nil {
		c.memo = make(map[*idl.RecType]any)
	}
	c.memo[rec] = v
}
