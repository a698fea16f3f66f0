package idl

import "fmt"

// Primitive descriptors.
var (
	Null      Type = NullType{}
	Bool      Type = BoolType{}
	Text      Type = TextType{}
	Reserved  Type = ReservedType{}
	Empty     Type = EmptyType{}
	Principal Type = PrincipalType{}

	Nat     = NumberType{Family: FamilyNat}
	Int     = NumberType{Family: FamilyInt}
	Nat8    = NumberType{Family: FamilyFixedNat, Bits: 8}
	Nat16   = NumberType{Family: FamilyFixedNat, Bits: 16}
	Nat32   = NumberType{Family: FamilyFixedNat, Bits: 32}
	Nat64   = NumberType{Family: FamilyFixedNat, Bits: 64}
	Int8    = NumberType{Family: FamilyFixedInt, Bits: 8}
	Int16   = NumberType{Family: FamilyFixedInt, Bits: 16}
	Int32   = NumberType{Family: FamilyFixedInt, Bits: 32}
	Int64   = NumberType{Family: FamilyFixedInt, Bits: 64}
	Float32 = NumberType{Family: FamilyFloat, Bits: 32}
	Float64 = NumberType{Family: FamilyFloat, Bits: 64}
)

// Opt returns opt elem.
func Opt(elem Type) *OptType {
	return &OptType{Elem: elem}
}

// Vec returns vec elem.
func Vec(elem Type) *VecType {
	return &VecType{Elem: elem}
}

// Blob returns vec nat8.
func Blob() *VecType {
	return &VecType{Elem: Nat8}
}

// Tuple returns a tuple of the given components.
func Tuple(components ...Type) *TupleType {
	return &TupleType{Components: components}
}

// F builds a record field or variant option.
func F(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// Record returns a record type. It panics on duplicate field names.
func Record(fields ...Field) *RecordType {
	mustUnique("record field", fields)
	return &RecordType{Fields: fields}
}

// Variant returns a variant type. It panics on duplicate option names.
func Variant(options ...Field) *VariantType {
	mustUnique("variant option", options)
	return &VariantType{Options: options}
}

// Enum returns a variant whose options all carry null.
func Enum(names ...string) *VariantType {
	options := make([]Field, len(names))
	for i, n := range names {
		options[i] = Field{Name: n, Type: Null}
	}
	return Variant(options...)
}

// Rec returns an unfilled recursive reference. An empty label is replaced
// by a generated rec_N label.
func Rec(label string) *RecType {
	if label == "" {
		label = fmt.Sprintf("rec_%d", recCounter.Add(1)-1)
	}
	return &RecType{Label: label}
}

// Func returns a function type.
func Func(args, results []Type, annotations ...string) *FuncType {
	return &FuncType{Args: args, Results: results, Annotations: annotations}
}

// M builds a service method.
func M(name string, fn *FuncType) Method {
	return Method{Name: name, Func: fn}
}

// Service returns a service type. It panics on duplicate method names.
func Service(methods ...Method) *ServiceType {
	seen := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		if _, dup := seen[m.Name]; dup {
			panic(fmt.Sprintf("idl: duplicate method %q", m.Name))
		}
		seen[m.Name] = struct{}{}
	}
	return &ServiceType{Methods: methods}
}

// Unwrap follows recursive references until it reaches a non-recursive
// type. It returns nil for an unfilled reference or a cycle made only of
// references.
func Unwrap(t Type) Type {
	seen := map[*RecType]bool{}
	for {
		rec, ok := t.(*RecType)
		if !ok {
			return t
		}
		if seen[rec] {
			return nil
		}
		seen[rec] = true
		t = rec.Target()
	}
}

func mustUnique(what string, fields []Field) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("idl: duplicate %s %q", what, f.Name))
		}
		seen[f.Name] = struct{}{}
	}
}
