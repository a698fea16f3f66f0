// Package errors provides structured error types for the candid visitor engine.
//
// Errors are categorized by Phase (which traversal or collaborator raised
// them) and Kind (error category). The Error type carries the value path
// inside the described type, the Go and IDL type names, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindParseError).
//		Path("owner").
//		IdlType("principal").
//		Detail("malformed principal text %q", s).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ParseError(errors.PhaseEncode, path, "nat", "abc")
//	err := errors.ContractViolation(errors.PhaseDecode, path, "variant value has 2 keys")
//
// The taxonomy maps onto four families callers usually care about:
// ParseError and ContractViolation are recoverable validation failures,
// GenerationExhausted is fatal for one generation call, and UnknownKind is
// a programming error. Helpers such as IsParseError test for them.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
