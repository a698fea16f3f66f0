// Package idl defines the candid type grammar the traversals operate on.
//
// A Type is one of a closed set of descriptors: the primitives (null, bool,
// text, reserved, empty, the numeric family and principal), the composites
// (opt, vec, tuple, record, variant), recursive references, function
// signatures and services.
//
// Building types:
//
//	user := idl.Record(
//		idl.F("name", idl.Text),
//		idl.F("age", idl.Nat8),
//		idl.F("email", idl.Opt(idl.Text)),
//	)
//
//	tree := idl.Rec("Tree")
//	tree.Fill(idl.Variant(
//		idl.F("Leaf", idl.Nat),
//		idl.F("Node", idl.Record(
//			idl.F("left", tree),
//			idl.F("right", tree),
//		)),
//	))
//
// Wire values are plain Go values: *big.Int for integers, float64 for
// floats, []any for opt/vec/tuple, []byte for blob, map[string]any for
// records and single-entry variants, principal.Principal and FuncRef.
// Check validates a wire value against a type and ValueString renders it in
// candid textual syntax.
package idl
