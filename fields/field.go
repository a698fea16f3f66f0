// Package fields derives declarative form metadata from idl types.
//
// Derive walks a type once and returns a tree of Field descriptors. Each
// field carries its kind, a label, a form binding path, a default value and
// a Validate method built on the type's structural check. Composite fields
// expose their children: records and tuples in declaration order, variants
// as options plus one field per option, vectors and opts as a template
// field.
//
// Form values follow the display conventions of package codec with one
// exception: an opt is held as a sequence of length 0 or 1, which is why an
// optional field defaults to an empty sequence. Display converts a form
// value into the display form accepted by codec.
//
// A recursive reference is unrolled the first time it is met in a pass. Later
// references become markers without children; Expand derives their target on
// demand.
package fields

import (
	"github.com/B3Pay/ic-reactor-go/codec"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/visitor"
)

// Kind is the form input category of a field.
type Kind string

const (
	KindRecord    Kind = "record"
	KindVariant   Kind = "variant"
	KindTuple     Kind = "tuple"
	KindOptional  Kind = "optional"
	KindVector    Kind = "vector"
	KindBlob      Kind = "blob"
	KindRecursive Kind = "recursive"
	KindPrincipal Kind = "principal"
	KindNumber    Kind = "number"
	KindText      Kind = "text"
	KindBoolean   Kind = "boolean"
	KindNull      Kind = "null"
	KindUnknown   Kind = "unknown"
)

// Principal text bounds used by principal fields.
const (
	PrincipalMinLength = 7
	PrincipalMaxLength = 64
)

// Number describes the accepted range of a number field. Min and Max are
// decimal strings and empty when unbounded.
type Number struct {
	Unsigned bool
	IsFloat  bool
	Bits     int
	Min      string
	Max      string
}

// Field is the form descriptor of one type occurrence.
type Field struct {
	Kind  Kind
	Label string
	// Name is the form binding path: ".key" per record field, "[i]" per
	// tuple component or argument, "[0]" for the vector item template.
	Name string
	// CandidType is the candid keyword of the type (record, opt, nat64...).
	CandidType string
	Type       idl.Type
	// Order is assigned from the pass counter in visiting order.
	Order int

	DefaultValue any

	// Fields holds record fields and tuple components in order, and one
	// field per variant option.
	Fields        []*Field
	Options       []string
	DefaultOption string

	// Item is the template of vector and blob elements.
	Item *Field
	// Inner is the payload of an optional and the unrolled target of a
	// recursive field. It is nil for recursive markers.
	Inner *Field

	TypeName string

	Number      *Number
	MinLength   int
	MaxLength   int
	Placeholder string

	expand func() (*Field, error)
}

// Derive returns the field tree of t.
func Derive(t idl.Type) (*Field, error) {
	return DeriveLabeled(t, "")
}

// DeriveLabeled returns the field tree of t with label at its root.
func DeriveLabeled(t idl.Type, label string) (*Field, error) {
	return visitor.Run[frame, *Field](errors.PhaseDerive, deriver{}, t, frame{label: label})
}

// Field returns the child named label of a record or variant field.
func (f *Field) Field(label string) (*Field, bool) {
	for _, c := range f.Fields {
		if c.Label == label {
			return c, true
		}
	}
	return nil, false
}

// OptionDefault returns the default value of a variant with option
// selected.
func (f *Field) OptionDefault(option string) (any, error) {
	if f.Kind != KindVariant {
		return nil, errors.Unsupported(errors.PhaseValidate, "option default of a "+string(f.Kind)+" field")
	}
	c, ok := f.Field(option)
	if !ok {
		return nil, errors.ContractViolation(errors.PhaseValidate, nil, "unknown variant option "+option)
	}
	return codec.Variant{Tag: option, Value: c.DefaultValue}, nil
}

// ItemDefault returns the default value of a new vector element.
func (f *Field) ItemDefault() any {
	if f.Item == nil {
		return nil
	}
	return f.Item.DefaultValue
}

// InnerDefault returns the default value of the payload of an optional or
// the target of a recursive field.
func (f *Field) InnerDefault() (any, error) {
	inner, err := f.target()
	if err != nil {
		return nil, err
	}
	return inner.DefaultValue, nil
}

// IsMarker reports whether f is a recursive reference that was not
// unrolled in its pass.
func (f *Field) IsMarker() bool {
	return f.Kind == KindRecursive && f.Inner == nil
}

// Expand derives the target of a recursive field in a fresh pass, unrolled
// once, with the field's label and binding path.
func (f *Field) Expand() (*Field, error) {
	if f.expand == nil {
		return nil, errors.Unsupported(errors.PhaseDerive, "expand of a "+string(f.Kind)+" field")
	}
	return f.expand()
}

// target returns the field that describes the payload of an optional or a
// recursive field, expanding markers.
func (f *Field) target() (*Field, error) {
	if f.Inner != nil {
		return f.Inner, nil
	}
	if f.Kind == KindRecursive {
		return f.Expand()
	}
	return nil, errors.Unsupported(errors.PhaseValidate, "inner field of a "+string(f.Kind)+" field")
}
