// Package witimport maps WebAssembly component model (WIT) types onto idl
// descriptors, so component exports can be driven through the same codec,
// field and formatting traversals as candid methods.
//
// Integers keep their width and signedness, char and string become text,
// list<u8> becomes blob, enum and variant become variants, result<T, E>
// becomes variant { ok : T; err : E } and flags become a record of bools.
// Resource handles have no candid form and are rejected.
package witimport

import (
	"fmt"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

// Importer converts WIT types. Named type definitions are converted once
// and shared by identity.
type Importer struct {
	cache map[*wit.TypeDef]idl.Type
}

// New returns an Importer with an empty definition cache.
func New() *Importer {
	return &Importer{cache: make(map[*wit.TypeDef]idl.Type)}
}

// Type converts one WIT type.
func Type(t wit.Type) (idl.Type, error) {
	return New().Type(t)
}

// Type converts one WIT type.
func (im *Importer) Type(t wit.Type) (idl.Type, error) {
	return im.convert(t, nil)
}

// Func builds a method signature from WIT parameter and result types.
func (im *Importer) Func(params, results []wit.Type, annotations ...string) (*idl.FuncType, error) {
	args, err := im.list(params, "param")
	if err != nil {
		return nil, err
	}
	rets, err := im.list(results, "result")
	if err != nil {
		return nil, err
	}
	return idl.Func(args, rets, annotations...), nil
}

func (im *Importer) list(ts []wit.Type, prefix string) ([]idl.Type, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]idl.Type, len(ts))
	for i, t := range ts {
		c, err := im.convert(t, []string{fmt.Sprintf("%s%d", prefix, i)})
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func (im *Importer) convert(t wit.Type, path []string) (idl.Type, error) {
	switch t := t.(type) {
	case wit.Bool:
		return idl.Bool, nil
	case wit.U8:
		return idl.Nat8, nil
	case wit.U16:
		return idl.Nat16, nil
	case wit.U32:
		return idl.Nat32, nil
	case wit.U64:
		return idl.Nat64, nil
	case wit.S8:
		return idl.Int8, nil
	case wit.S16:
		return idl.Int16, nil
	case wit.S32:
		return idl.Int32, nil
	case wit.S64:
		return idl.Int64, nil
	case wit.F32:
		return idl.Float32, nil
	case wit.F64:
		return idl.Float64, nil
	case wit.Char, wit.String:
		return idl.Text, nil
	case *wit.TypeDef:
		if t == nil {
			return nil, errors.UnknownKind(errors.PhaseImport, path, t)
		}
		if cached, ok := im.cache[t]; ok {
			return cached, nil
		}
		c, err := im.typeDef(t, path)
		if err != nil {
			return nil, err
		}
		im.cache[t] = c
		if t.Name != nil {
			Logger().Debug("imported type", zap.String("name", *t.Name), zap.String("idl", c.Name()))
		}
		return c, nil
	}
	return nil, errors.UnknownKind(errors.PhaseImport, path, t)
}

func (im *Importer) typeDef(t *wit.TypeDef, path []string) (idl.Type, error) {
	switch kind := t.Kind.(type) {
	case *wit.Record:
		fields := make([]idl.Field, len(kind.Fields))
		for i, f := range kind.Fields {
			ft, err := im.convert(f.Type, appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields[i] = idl.F(f.Name, ft)
		}
		return idl.Record(fields...), nil
	case *wit.List:
		elem, err := im.convert(kind.Type, appendPath(path, "0"))
		if err != nil {
			return nil, err
		}
		return idl.Vec(elem), nil
	case *wit.Tuple:
		components := make([]idl.Type, len(kind.Types))
		for i, ct := range kind.Types {
			c, err := im.convert(ct, appendPath(path, fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			components[i] = c
		}
		return idl.Tuple(components...), nil
	case *wit.Enum:
		names := make([]string, len(kind.Cases))
		for i, c := range kind.Cases {
			names[i] = c.Name
		}
		return idl.Enum(names...), nil
	case *wit.Flags:
		fields := make([]idl.Field, len(kind.Flags))
		for i, f := range kind.Flags {
			fields[i] = idl.F(f.Name, idl.Bool)
		}
		return idl.Record(fields...), nil
	case *wit.Option:
		elem, err := im.convert(kind.Type, path)
		if err != nil {
			return nil, err
		}
		return idl.Opt(elem), nil
	case *wit.Result:
		ok, err := im.optional(kind.OK, appendPath(path, "ok"))
		if err != nil {
			return nil, err
		}
		fail, err := im.optional(kind.Err, appendPath(path, "err"))
		if err != nil {
			return nil, err
		}
		return idl.Variant(idl.F("ok", ok), idl.F("err", fail)), nil
	case *wit.Variant:
		options := make([]idl.Field, len(kind.Cases))
		for i, c := range kind.Cases {
			ct, err := im.optional(c.Type, appendPath(path, c.Name))
			if err != nil {
				return nil, err
			}
			options[i] = idl.F(c.Name, ct)
		}
		return idl.Variant(options...), nil
	case *wit.Own, *wit.Borrow:
		return nil, errors.New(errors.PhaseImport, errors.KindUnsupported).
			Path(path...).
			Detail("resource handles have no candid representation").
			Build()
	case wit.Type:
		return im.convert(kind, path)
	}
	return nil, errors.New(errors.PhaseImport, errors.KindUnsupported).
		Path(path...).
		GoType(fmt.Sprintf("%T", t.Kind)).
		Detail("WIT type kind has no candid representation").
		Build()
}

// optional converts a payload that WIT may leave out; absent payloads
// become null.
func (im *Importer) optional(t wit.Type, path []string) (idl.Type, error) {
	if t == nil {
		return idl.Null, nil
	}
	return im.convert(t, path)
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
