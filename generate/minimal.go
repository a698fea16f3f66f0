package generate

import (
	"math/big"

	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/principal"
)

// Minimal returns the smallest finite wire value of t: zero numbers, empty
// text and sequences, absent opts and the first variant option that
// terminates. It reports false for types with no finite value, such as
// empty or a record that always contains itself.
func Minimal(t idl.Type) (any, bool) {
	return minimal(t, map[*idl.RecType]bool{})
}

// inhabited reports whether t has at least one finite value.
func inhabited(t idl.Type) bool {
	_, ok := Minimal(t)
	return ok
}

func minimal(t idl.Type, active map[*idl.RecType]bool) (any, bool) {
	switch tt := t.(type) {
	case idl.NullType, idl.ReservedType:
		return nil, true
	case idl.BoolType:
		return false, true
	case idl.TextType:
		return "", true
	case idl.EmptyType:
		return nil, false
	case idl.NumberType:
		if tt.IsFloat() {
			return 0.0, true
		}
		return big.NewInt(0), true
	case idl.PrincipalType, *idl.ServiceType:
		return principal.Anonymous, true
	case *idl.OptType:
		return []any{}, true
	case *idl.VecType:
		if tt.IsBlob() {
			return []byte{}, true
		}
		return []any{}, true
	case *idl.TupleType:
		out := make([]any, len(tt.Components))
		for i, c := range tt.Components {
			v, ok := minimal(c, active)
			if !ok {
				return nil, false
			}
			out[i] = v
		}
		return out, true
	case *idl.RecordType:
		out := make(map[string]any, len(tt.Fields))
		for _, f := range tt.Fields {
			v, ok := minimal(f.Type, active)
			if !ok {
				return nil, false
			}
			out[f.Name] = v
		}
		return out, true
	case *idl.VariantType:
		for _, o := range tt.Options {
			if v, ok := minimal(o.Type, active); ok {
				return map[string]any{o.Name: v}, true
			}
		}
		return nil, false
	case *idl.RecType:
		if active[tt] || tt.Target() == nil {
			return nil, false
		}
		active[tt] = true
		defer delete(active, tt)
		return minimal(tt.Target(), active)
	case *idl.FuncType:
		return idl.FuncRef{Service: principal.Anonymous}, true
	default:
		return nil, false
	}
}
