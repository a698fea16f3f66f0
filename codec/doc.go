// Package codec derives bidirectional converters between wire values and
// display values for any idl type.
//
// Wire values are what a candid decoder produces: *big.Int for every
// integer, []any of length 0 or 1 for opt, map[string]any with exactly one
// key for variants. Display values are what a form or JSON document holds:
// decimal strings for big integers, principal text, nil for an absent opt
// and a Variant with an explicit tag.
//
// # Usage
//
//	c, err := codec.Derive(idl.Record(
//		idl.F("name", idl.Text),
//		idl.F("age", idl.Nat),
//	))
//	display, err := c.Decode(map[string]any{"name": "Alice", "age": big.NewInt(30)})
//	// display == map[string]any{"name": "Alice", "age": "30"}
//	wire, err := c.Encode(display)
//
// # Recursive types
//
// A recursive reference derives to a codec that binds its target lazily on
// first use. The binding is memoized per *idl.RecType on the Deriver, so
// cyclic types derive in finite time and arbitrarily deep data round-trips.
//
// # Errors
//
// Failures are *errors.Error values with the path of the offending
// component. Malformed principal text and non-numeric integer strings are
// parse errors; variant values with zero or several keys and opt sequences
// longer than one are contract violations.
//
// # Thread Safety
//
// A Deriver and the codecs it returns are safe for concurrent use.
package codec
