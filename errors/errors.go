package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDerive   Phase = "derive"   // codec/field derivation
	PhaseDecode   Phase = "decode"   // wire to display
	PhaseEncode   Phase = "encode"   // display to wire
	PhaseValidate Phase = "validate" // form value validation
	PhaseGenerate Phase = "generate" // random value generation
	PhaseFormat   Phase = "format"   // result tree formatting
	PhaseParse    Phase = "parse"    // .did parsing
	PhaseImport   Phase = "import"   // WIT import
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindParseError          Kind = "parse_error"
	KindContractViolation   Kind = "contract_violation"
	KindGenerationExhausted Kind = "generation_exhausted"
	KindUnknownKind         Kind = "unknown_kind"
	KindTypeMismatch        Kind = "type_mismatch"
	KindOutOfBounds         Kind = "out_of_bounds"
	KindInvalidData         Kind = "invalid_data"
	KindUnsupported         Kind = "unsupported"
	KindFieldMissing        Kind = "field_missing"
	KindOverflow            Kind = "overflow"
	KindNotFound            Kind = "not_found"
	KindInvalidInput        Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	IdlType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.IdlType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.IdlType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", IDL type ")
			b.WriteString(e.IdlType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("IDL type ")
			b.WriteString(e.IdlType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.IdlType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message returns the human-readable part of the error without the
// phase/kind prefix. Form validation surfaces this text to users.
func (e *Error) Message() string {
	if e.Detail != "" {
		if len(e.Path) > 0 {
			return strings.Join(e.Path, ".") + ": " + e.Detail
		}
		return e.Detail
	}
	return e.Error()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// IdlType sets the IDL type name
func (b *Builder) IdlType(t string) *Builder {
	b.err.IdlType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ParseError creates an error for display text that cannot be parsed into
// the wire form of idlType (integer strings, principal text, hex blobs).
func ParseError(phase Phase, path []string, idlType string, input string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindParseError,
		Path:    path,
		IdlType: idlType,
		Detail:  fmt.Sprintf("cannot parse %q", input),
		Value:   input,
	}
}

// ContractViolation creates an error for wire or display values that break
// a structural invariant of the type grammar.
func ContractViolation(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindContractViolation,
		Path:   path,
		Detail: detail,
	}
}

// GenerationExhausted creates an error for a bounded sampler that ran out
// of attempts. Value holds the bit width.
func GenerationExhausted(path []string, bits int, signed bool, attempts int) *Error {
	signedness := "unsigned"
	if signed {
		signedness = "signed"
	}
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindGenerationExhausted,
		Path:   path,
		Detail: fmt.Sprintf("no value within range for %d-bit %s integer after %d attempts", bits, signedness, attempts),
		Value:  bits,
	}
}

// UnknownKind creates an error for a descriptor outside the closed grammar.
func UnknownKind(phase Phase, path []string, what any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownKind,
		Path:   path,
		GoType: fmt.Sprintf("%T", what),
		Detail: "type descriptor outside the candid grammar",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, idlType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		GoType:  goType,
		IdlType: idlType,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOverflow,
		Path:    path,
		IdlType: targetType,
		Detail:  fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:   value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPath prepends segments to the path of a structured error. Composite
// codecs use it to report where inside a value a child failed. The error is
// copied, so a cached error can be returned from several call sites. Errors
// that are not *Error are returned unchanged.
func WithPath(err error, segments ...string) error {
	var e *Error
	if len(segments) == 0 || !stderrors.As(err, &e) {
		return err
	}
	path := make([]string, 0, len(segments)+len(e.Path))
	path = append(path, segments...)
	cp := *e
	cp.Path = append(path, e.Path...)
	return &cp
}

// KindOf returns the Kind of a structured error, or "" when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsParseError reports whether err is a ParseError.
func IsParseError(err error) bool { return KindOf(err) == KindParseError }

// IsContractViolation reports whether err is a ContractViolation.
func IsContractViolation(err error) bool { return KindOf(err) == KindContractViolation }

// IsGenerationExhausted reports whether err is a GenerationExhausted error.
func IsGenerationExhausted(err error) bool { return KindOf(err) == KindGenerationExhausted }

// IsUnknownKind reports whether err is an UnknownKind error.
func IsUnknownKind(err error) bool { return KindOf(err) == KindUnknownKind }
