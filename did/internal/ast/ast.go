package ast

// Program is a parsed interface description.
type Program struct {
	Actor   *Actor
	Defs    []Def
	Imports []Import
}

type Import struct {
	Path    string
	Service bool
	Line    int
}

type Def struct {
	Type Type
	Name string
	Line int
}

// Actor is the main service declaration. Type is a *Service or a *Ref.
type Actor struct {
	Type Type
	Name string
	Init []Arg
	Line int
}

// Type is a type expression before name resolution.
type Type interface {
	isType()
}

// Ref names a primitive or a definition.
type Ref struct {
	Name string
	Line int
}

type Opt struct {
	Elem Type
}

type Vec struct {
	Elem Type
}

type Record struct {
	Fields []Field
}

type Variant struct {
	Fields []Field
}

type Func struct {
	Args        []Arg
	Results     []Arg
	Annotations []string
}

type Service struct {
	Methods []Method
}

type Principal struct{}

func (*Ref) isType()       {}
func (*Opt) isType()       {}
func (*Vec) isType()       {}
func (*Record) isType()    {}
func (*Variant) isType()   {}
func (*Func) isType()      {}
func (*Service) isType()   {}
func (*Principal) isType() {}

// Field is a record field or variant option. Positional fields carry no
// Name; variant options written without a type carry a nil Type.
type Field struct {
	Type       Type
	Name       string
	Positional bool
	Line       int
}

// Arg is a function argument or result. Name is optional.
type Arg struct {
	Type Type
	Name string
}

// Method is a service entry. Type is a *Func or a *Ref.
type Method struct {
	Type Type
	Name string
	Line int
}
