// Package visitor provides the dispatch core shared by every traversal over
// the idl type grammar.
//
// A traversal implements Visitor with one method per type kind and calls
// Dispatch to route a descriptor to its handler. Composite handlers recurse
// by calling Dispatch on their child descriptors with the same Context.
//
// A Context is created fresh for each top-level traversal and must not be
// shared between traversals or goroutines.
package visitor

import (
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

// Visitor handles each kind of the grammar. I is the input threaded down
// the traversal, O the artifact produced per node.
type Visitor[I, O any] interface {
	VisitNull(t idl.NullType, in I, ctx *Context) (O, error)
	VisitBool(t idl.BoolType, in I, ctx *Context) (O, error)
	VisitText(t idl.TextType, in I, ctx *Context) (O, error)
	VisitReserved(t idl.ReservedType, in I, ctx *Context) (O, error)
	VisitEmpty(t idl.EmptyType, in I, ctx *Context) (O, error)
	VisitNumber(t idl.NumberType, in I, ctx *Context) (O, error)
	VisitPrincipal(t idl.PrincipalType, in I, ctx *Context) (O, error)
	VisitOpt(t *idl.OptType, in I, ctx *Context) (O, error)
	VisitVec(t *idl.VecType, in I, ctx *Context) (O, error)
	VisitTuple(t *idl.TupleType, in I, ctx *Context) (O, error)
	VisitRecord(t *idl.RecordType, in I, ctx *Context) (O, error)
	VisitVariant(t *idl.VariantType, in I, ctx *Context) (O, error)
	VisitRec(t *idl.RecType, in I, ctx *Context) (O, error)
	VisitFunc(t *idl.FuncType, in I, ctx *Context) (O, error)
	VisitService(t *idl.ServiceType, in I, ctx *Context) (O, error)
}

// Dispatch routes t to the handler for its kind. Descriptors outside the
// grammar, nil descriptors and unfilled recursive references fail with an
// unknown_kind error.
func Dispatch[I, O any](v Visitor[I, O], t idl.Type, in I, ctx *Context) (O, error) {
	var zero O

	switch tt := t.(type) {
	case idl.NullType:
		return v.VisitNull(tt, in, ctx)
	case idl.BoolType:
		return v.VisitBool(tt, in, ctx)
	case idl.TextType:
		return v.VisitText(tt, in, ctx)
	case idl.ReservedType:
		return v.VisitReserved(tt, in, ctx)
	case idl.EmptyType:
		return v.VisitEmpty(tt, in, ctx)
	case idl.NumberType:
		return v.VisitNumber(tt, in, ctx)
	case idl.PrincipalType:
		return v.VisitPrincipal(tt, in, ctx)
	case *idl.OptType:
		if tt == nil || tt.Elem == nil {
			break
		}
		return v.VisitOpt(tt, in, ctx)
	case *idl.VecType:
		if tt == nil || tt.Elem == nil {
			break
		}
		return v.VisitVec(tt, in, ctx)
	case *idl.TupleType:
		if tt == nil {
			break
		}
		return v.VisitTuple(tt, in, ctx)
	case *idl.RecordType:
		if tt == nil {
			break
		}
		return v.VisitRecord(tt, in, ctx)
	case *idl.VariantType:
		if tt == nil {
			break
		}
		return v.VisitVariant(tt, in, ctx)
	case *idl.RecType:
		if tt == nil || tt.Target() == nil {
			break
		}
		return v.VisitRec(tt, in, ctx)
	case *idl.FuncType:
		if tt == nil {
			break
		}
		return v.VisitFunc(tt, in, ctx)
	case *idl.ServiceType:
		if tt == nil {
			break
		}
		return v.VisitService(tt, in, ctx)
	}
	return zero, errors.UnknownKind(ctx.Phase(), nil, t)
}

// Run dispatches t in a fresh context for phase.
func Run[I, O any](phase errors.Phase, v Visitor[I, O], t idl.Type, in I) (O, error) {
	return Dispatch(v, t, in, NewContext(phase))
}
