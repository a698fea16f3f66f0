package fields

import (
	"math/big"
	"strconv"

	"github.com/B3Pay/ic-reactor-go/codec"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/visitor"
)

// frame carries the label and binding path of the node being visited.
type frame struct {
	label string
	name  string
}

func member(name, key string) string {
	if name == "" {
		return key
	}
	return name + "." + key
}

func index(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

type deriver struct{}

func (deriver) field(kind Kind, candid string, t idl.Type, in frame, ctx *visitor.Context) *Field {
	return &Field{
		Kind:       kind,
		Label:      in.label,
		Name:       in.name,
		CandidType: candid,
		Type:       t,
		Order:      ctx.Next(),
	}
}

func (d deriver) child(t idl.Type, in frame, ctx *visitor.Context) (*Field, error) {
	return visitor.Dispatch[frame, *Field](d, t, in, ctx)
}

func (d deriver) VisitNull(t idl.NullType, in frame, ctx *visitor.Context) (*Field, error) {
	return d.field(KindNull, "null", t, in, ctx), nil
}

func (d deriver) VisitBool(t idl.BoolType, in frame, ctx *visitor.Context) (*Field, error) {
	f := d.field(KindBoolean, "bool", t, in, ctx)
	f.DefaultValue = false
	return f, nil
}

func (d deriver) VisitText(t idl.TextType, in frame, ctx *visitor.Context) (*Field, error) {
	f := d.field(KindText, "text", t, in, ctx)
	f.DefaultValue = ""
	f.Placeholder = "Enter text..."
	return f, nil
}

func (d deriver) VisitReserved(t idl.ReservedType, in frame, ctx *visitor.Context) (*Field, error) {
	return d.field(KindUnknown, "reserved", t, in, ctx), nil
}

func (d deriver) VisitEmpty(t idl.EmptyType, in frame, ctx *visitor.Context) (*Field, error) {
	return d.field(KindUnknown, "empty", t, in, ctx), nil
}

func (d deriver) VisitNumber(t idl.NumberType, in frame, ctx *visitor.Context) (*Field, error) {
	f := d.field(KindNumber, t.Name(), t, in, ctx)
	f.Number = &Number{
		Unsigned: !t.Signed() && !t.IsFloat(),
		IsFloat:  t.IsFloat(),
		Bits:     t.Bits,
	}
	if lo, hi, bounded := t.Range(); bounded {
		f.Number.Min = lo.String()
		f.Number.Max = new(big.Int).Sub(hi, big.NewInt(1)).String()
	}
	f.Placeholder = "0"
	if t.IsFloat() {
		f.Placeholder = "0.0"
	}
	return f, nil
}

func (d deriver) VisitPrincipal(t idl.PrincipalType, in frame, ctx *visitor.Context) (*Field, error) {
	return d.principal("principal", t, in, ctx), nil
}

func (d deriver) principal(candid string, t idl.Type, in frame, ctx *visitor.Context) *Field {
	f := d.field(KindPrincipal, candid, t, in, ctx)
	f.DefaultValue = ""
	f.MinLength = PrincipalMinLength
	f.MaxLength = PrincipalMaxLength
	f.Placeholder = "aaaaa-aa or full principal ID"
	return f
}

// VisitOpt keeps the binding path: the payload replaces the empty
// sequence in place.
func (d deriver) VisitOpt(t *idl.OptType, in frame, ctx *visitor.Context) (*Field, error) {
	f := d.field(KindOptional, "opt", t, in, ctx)
	inner, err := d.child(t.Elem, in, ctx)
	if err != nil {
		return nil, err
	}
	f.Inner = inner
	f.DefaultValue = []any{}
	return f, nil
}

func (d deriver) VisitVec(t *idl.VecType, in frame, ctx *visitor.Context) (*Field, error) {
	var f *Field
	if t.IsBlob() {
		f = d.field(KindBlob, "blob", t, in, ctx)
		f.DefaultValue = ""
		f.Placeholder = "hex bytes"
	} else {
		f = d.field(KindVector, "vec", t, in, ctx)
		f.DefaultValue = []any{}
	}
	item, err := d.child(t.Elem, frame{label: in.label + "_item", name: index(in.name, 0)}, ctx)
	if err != nil {
		return nil, err
	}
	f.Item = item
	return f, nil
}

func (d deriver) VisitTuple(t *idl.TupleType, in frame, ctx *visitor.Context) (*Field, error) {
	f := d.field(KindTuple, "tuple", t, in, ctx)
	defaults := make([]any, len(t.Components))
	for i, c := range t.Components {
		child, err := d.child(c, frame{label: "_" + strconv.Itoa(i) + "_", name: index(in.name, i)}, ctx)
		if err != nil {
			return nil, errors.WithPath(err, strconv.Itoa(i))
		}
		f.Fields = append(f.Fields, child)
		defaults[i] = child.DefaultValue
	}
	f.DefaultValue = defaults
	return f, nil
}

func (d deriver) VisitRecord(t *idl.RecordType, in frame, ctx *visitor.Context) (*Field, error) {
	f := d.field(KindRecord, "record", t, in, ctx)
	defaults := make(map[string]any, len(t.Fields))
	for _, fd := range t.Fields {
		child, err := d.child(fd.Type, frame{label: fd.Name, name: member(in.name, fd.Name)}, ctx)
		if err != nil {
			return nil, errors.WithPath(err, fd.Name)
		}
		f.Fields = append(f.Fields, child)
		defaults[fd.Name] = child.DefaultValue
	}
	f.DefaultValue = defaults
	return f, nil
}

// VisitVariant selects the first option as the default.
func (d deriver) VisitVariant(t *idl.VariantType, in frame, ctx *visitor.Context) (*Field, error) {
	f := d.field(KindVariant, "variant", t, in, ctx)
	for _, o := range t.Options {
		child, err := d.child(o.Type, frame{label: o.Name, name: member(in.name, o.Name)}, ctx)
		if err != nil {
			return nil, errors.WithPath(err, o.Name)
		}
		f.Fields = append(f.Fields, child)
		f.Options = append(f.Options, o.Name)
	}
	if len(f.Fields) > 0 {
		f.DefaultOption = f.Options[0]
		f.DefaultValue = codec.Variant{Tag: f.DefaultOption, Value: f.Fields[0].DefaultValue}
	}
	return f, nil
}

func (d deriver) VisitRec(t *idl.RecType, in frame, ctx *visitor.Context) (*Field, error) {
	f := d.field(KindRecursive, "rec", t, in, ctx)
	f.TypeName = t.Label
	f.expand = func() (*Field, error) {
		return expand(t, in)
	}
	if ctx.Visited(t) {
		return f, nil
	}
	ctx.Enter(t)
	inner, err := d.child(t.Target(), in, ctx)
	if err != nil {
		return nil, err
	}
	f.Inner = inner
	f.DefaultValue = inner.DefaultValue
	return f, nil
}

// expand unrolls the target of rec once in a fresh pass.
func expand(rec *idl.RecType, in frame) (*Field, error) {
	ctx := visitor.NewContext(errors.PhaseDerive)
	ctx.Enter(rec)
	return visitor.Dispatch[frame, *Field](deriver{}, rec.Target(), in, ctx)
}

// VisitFunc describes a function reference value. Method metadata is
// built by FromFunc.
func (d deriver) VisitFunc(t *idl.FuncType, in frame, ctx *visitor.Context) (*Field, error) {
	return d.field(KindUnknown, "func", t, in, ctx), nil
}

// VisitService describes a service reference, entered as principal text.
func (d deriver) VisitService(t *idl.ServiceType, in frame, ctx *visitor.Context) (*Field, error) {
	return d.principal("service", t, in, ctx), nil
}
