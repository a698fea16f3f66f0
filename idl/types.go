package idl

import (
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
)

// Type is a node of the candid type grammar. The set of implementations is
// closed; traversals switch over the concrete types below.
//
// Primitive descriptors are comparable values. Composite descriptors are
// pointers and their identity is the pointer, which makes every Type usable
// as a map key.
type Type interface {
	Kind() Kind
	// Name returns the candid textual form of the type. Recursive
	// references print their label, so Name always terminates.
	Name() string
	isType()
}

type (
	NullType      struct{}
	BoolType      struct{}
	TextType      struct{}
	ReservedType  struct{}
	EmptyType     struct{}
	PrincipalType struct{}
)

func (NullType) Kind() Kind      { return KindNull }
func (BoolType) Kind() Kind      { return KindBool }
func (TextType) Kind() Kind      { return KindText }
func (ReservedType) Kind() Kind  { return KindReserved }
func (EmptyType) Kind() Kind     { return KindEmpty }
func (PrincipalType) Kind() Kind { return KindPrincipal }

func (NullType) Name() string      { return "null" }
func (BoolType) Name() string      { return "bool" }
func (TextType) Name() string      { return "text" }
func (ReservedType) Name() string  { return "reserved" }
func (EmptyType) Name() string     { return "empty" }
func (PrincipalType) Name() string { return "principal" }

func (NullType) isType()      {}
func (BoolType) isType()      {}
func (TextType) isType()      {}
func (ReservedType) isType()  {}
func (EmptyType) isType()     {}
func (PrincipalType) isType() {}

// NumberType describes every numeric type. Bits is zero for the unbounded
// nat and int, 32 or 64 for floats, and 8/16/32/64 for fixed widths.
type NumberType struct {
	Family NumberFamily
	Bits   int
}

func (NumberType) Kind() Kind { return KindNumber }
func (NumberType) isType()    {}

func (t NumberType) Name() string {
	switch t.Family {
	case FamilyNat, FamilyInt:
		return t.Family.String()
	case FamilyFloat:
		return fmt.Sprintf("float%d", t.Bits)
	default:
		return fmt.Sprintf("%s%d", t.Family, t.Bits)
	}
}

// Signed reports whether the type admits negative values.
func (t NumberType) Signed() bool {
	return t.Family == FamilyInt || t.Family == FamilyFixedInt || t.Family == FamilyFloat
}

// IsFloat reports whether the type is float32 or float64.
func (t NumberType) IsFloat() bool {
	return t.Family == FamilyFloat
}

// IsFixed reports whether the type is a fixed-width integer.
func (t NumberType) IsFixed() bool {
	return t.Family == FamilyFixedNat || t.Family == FamilyFixedInt
}

// IsBig reports whether display values of the type are decimal strings:
// the unbounded integers and fixed widths above 32 bits.
func (t NumberType) IsBig() bool {
	switch t.Family {
	case FamilyNat, FamilyInt:
		return true
	case FamilyFixedNat, FamilyFixedInt:
		return t.Bits > 32
	default:
		return false
	}
}

// Range returns the inclusive minimum and exclusive maximum of an integer
// type. Bounded is false for the unbounded families, where only min is
// meaningful for nat.
func (t NumberType) Range() (lo, hi *big.Int, bounded bool) {
	switch t.Family {
	case FamilyNat:
		return big.NewInt(0), nil, false
	case FamilyInt, FamilyFloat:
		return nil, nil, false
	case FamilyFixedNat:
		return big.NewInt(0), new(big.Int).Lsh(big.NewInt(1), uint(t.Bits)), true
	default:
		half := new(big.Int).Lsh(big.NewInt(1), uint(t.Bits-1))
		return new(big.Int).Neg(half), half, true
	}
}

// OptType is an optional value; wire values are sequences of length 0 or 1.
type OptType struct {
	Elem Type
}

func (*OptType) Kind() Kind     { return KindOpt }
func (*OptType) isType()        {}
func (t *OptType) Name() string { return "opt " + typeName(t.Elem) }

// VecType is an ordered sequence.
type VecType struct {
	Elem Type
}

func (*VecType) Kind() Kind { return KindVec }
func (*VecType) isType()    {}

func (t *VecType) Name() string {
	if t.IsBlob() {
		return "blob"
	}
	return "vec " + typeName(t.Elem)
}

// IsBlob reports whether the vector is vec nat8, whose wire value is []byte.
func (t *VecType) IsBlob() bool {
	n, ok := t.Elem.(NumberType)
	return ok && n.Family == FamilyFixedNat && n.Bits == 8
}

// TupleType is a fixed arity sequence without names.
type TupleType struct {
	Components []Type
}

func (*TupleType) Kind() Kind { return KindTuple }
func (*TupleType) isType()    {}

func (t *TupleType) Name() string {
	parts := make([]string, len(t.Components))
	for i, c := range t.Components {
		parts[i] = typeName(c)
	}
	return "record { " + strings.Join(parts, "; ") + " }"
}

// Field is a named member of a record or an option of a variant.
type Field struct {
	Name string
	Type Type
}

// RecordType holds its fields in declaration order.
type RecordType struct {
	Fields []Field
}

func (*RecordType) Kind() Kind     { return KindRecord }
func (*RecordType) isType()        {}
func (t *RecordType) Name() string { return "record " + fieldList(t.Fields, false) }

// Lookup returns the type of field name.
func (t *RecordType) Lookup(name string) (Type, bool) { return lookup(t.Fields, name) }

// VariantType holds its options in declaration order.
type VariantType struct {
	Options []Field
}

func (*VariantType) Kind() Kind     { return KindVariant }
func (*VariantType) isType()        {}
func (t *VariantType) Name() string { return "variant " + fieldList(t.Options, true) }

// Lookup returns the payload type of option name.
func (t *VariantType) Lookup(name string) (Type, bool) { return lookup(t.Options, name) }

// OptionNames returns the option names in declaration order.
func (t *VariantType) OptionNames() []string {
	names := make([]string, len(t.Options))
	for i, o := range t.Options {
		names[i] = o.Name
	}
	return names
}

var recCounter atomic.Int64

// RecType is a recursive reference. It is created empty and bound to its
// target once with Fill; the target may reach back to the RecType itself.
type RecType struct {
	target Type
	Label  string
}

func (*RecType) Kind() Kind     { return KindRec }
func (*RecType) isType()        {}
func (t *RecType) Name() string { return t.Label }

// Target returns the bound type, or nil before Fill.
func (t *RecType) Target() Type { return t.target }

// Fill binds the recursive reference. It panics when called twice.
func (t *RecType) Fill(target Type) {
	if t.target != nil {
		panic(fmt.Sprintf("idl: recursive type %s filled twice", t.Label))
	}
	t.target = target
}

// FuncType is a method signature.
type FuncType struct {
	Args        []Type
	Results     []Type
	Annotations []string
}

func (*FuncType) Kind() Kind { return KindFunc }
func (*FuncType) isType()    {}

func (t *FuncType) Name() string {
	s := "func " + typeTuple(t.Args) + " -> " + typeTuple(t.Results)
	if len(t.Annotations) > 0 {
		s += " " + strings.Join(t.Annotations, " ")
	}
	return s
}

// IsQuery reports whether the method is called through the query path.
func (t *FuncType) IsQuery() bool {
	for _, a := range t.Annotations {
		if a == "query" || a == "composite_query" {
			return true
		}
	}
	return false
}

// IsOneway reports whether the method returns no reply.
func (t *FuncType) IsOneway() bool {
	for _, a := range t.Annotations {
		if a == "oneway" {
			return true
		}
	}
	return false
}

// Method is a named entry point of a service.
type Method struct {
	Name string
	Func *FuncType
}

// ServiceType is an actor interface.
type ServiceType struct {
	Methods []Method
}

func (*ServiceType) Kind() Kind { return KindService }
func (*ServiceType) isType()    {}

func (t *ServiceType) Name() string {
	parts := make([]string, len(t.Methods))
	for i, m := range t.Methods {
		parts[i] = quoteLabel(m.Name) + " : " + m.Func.Name()
	}
	return "service { " + strings.Join(parts, "; ") + " }"
}

// Method returns the method called name.
func (t *ServiceType) Method(name string) (*FuncType, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m.Func, true
		}
	}
	return nil, false
}

func lookup(fields []Field, name string) (Type, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

func typeTuple(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = typeName(t)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func fieldList(fields []Field, variant bool) string {
	if len(fields) == 0 {
		return "{}"
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		if _, isNull := f.Type.(NullType); variant && isNull {
			parts[i] = quoteLabel(f.Name)
			continue
		}
		parts[i] = quoteLabel(f.Name) + " : " + typeName(f.Type)
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// quoteLabel quotes names that are not plain candid identifiers.
func quoteLabel(name string) string {
	if isIdent(name) || isNumeric(name) {
		return name
	}
	return fmt.Sprintf("%q", name)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
