// Package result formats decoded wire values into labeled display trees.
//
// Format pairs a type with a wire value and returns a Node per type
// occurrence. Leaves carry their display text in Value; composites carry
// child nodes in Values, ordered like the type. Recursive references are
// unrolled once per call by default; a reference met again is formatted as
// a recursive marker node holding the candid text of its value.
package result

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/principal"
	"github.com/B3Pay/ic-reactor-go/visitor"
)

// Kind is the display category of a node.
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
	KindFunc      Kind = "func"
	KindUnknown   Kind = "unknown"
)

// MaxHexBlob is the largest blob rendered in full as hex.
const MaxHexBlob = 512

// Node is one labeled element of a result tree.
type Node struct {
	Kind  Kind
	Label string
	// Value is the display value of leaves: text for numbers, principals
	// and blobs, bool for booleans, nil for null and absent optionals. A
	// variant holds its tag.
	Value any
	// Values holds the children of composites. An optional holds zero or
	// one child.
	Values []*Node
	// Description is the candid type of the node, or "recursive" for
	// markers.
	Description string
	// Format is a display hint derived from the label for numbers and
	// text, see NumberFormat and TextFormat.
	Format   string
	TypeName string
}

// Child returns the child labeled label.
func (n *Node) Child(label string) (*Node, bool) {
	for _, c := range n.Values {
		if c.Label == label {
			return c, true
		}
	}
	return nil, false
}

// Walk calls fn for n and every descendant in depth-first order.
func (n *Node) Walk(fn func(n *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, c := range n.Values {
		c.walk(fn, depth+1)
	}
}

// Formatter builds result trees.
type Formatter struct {
	depth int
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithRecursionDepth sets how often a recursive reference is unrolled in
// one call before it becomes a marker. Values below 1 are ignored.
func WithRecursionDepth(n int) Option {
	return func(f *Formatter) {
		if n >= 1 {
			f.depth = n
		}
	}
}

// New returns a Formatter that unrolls recursive references once.
func New(opts ...Option) *Formatter {
	f := &Formatter{depth: 1}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var defaultFormatter = New()

// Format builds the tree of v with the default Formatter.
func Format(t idl.Type, v any) (*Node, error) {
	return defaultFormatter.Format(t, v)
}

// FormatMethod formats the results of fn with the default Formatter.
func FormatMethod(fn *idl.FuncType, values []any) ([]*Node, error) {
	return defaultFormatter.FormatMethod(fn, values)
}

// Format builds the tree of the wire value v of type t.
func (f *Formatter) Format(t idl.Type, v any) (*Node, error) {
	return f.FormatLabeled(t, "", v)
}

// FormatLabeled builds the tree of v with label at its root.
func (f *Formatter) FormatLabeled(t idl.Type, label string, v any) (*Node, error) {
	return visitor.Run[input, *Node](errors.PhaseFormat, formatter{depth: f.depth}, t, input{label: label, value: v})
}

// FormatMethod formats one wire value per result of fn, labeled ret0,
// ret1, ... All results share one pass.
func (f *Formatter) FormatMethod(fn *idl.FuncType, values []any) ([]*Node, error) {
	if fn == nil {
		return nil, errors.UnknownKind(errors.PhaseFormat, nil, fn)
	}
	if len(values) != len(fn.Results) {
		return nil, errors.ContractViolation(errors.PhaseFormat, nil,
			fmt.Sprintf("expected %d results, got %d", len(fn.Results), len(values)))
	}
	ctx := visitor.NewContext(errors.PhaseFormat)
	v := formatter{depth: f.depth}
	out := make([]*Node, len(values))
	for i, t := range fn.Results {
		n, err := visitor.Dispatch[input, *Node](v, t, input{label: "ret" + strconv.Itoa(i), value: values[i]}, ctx)
		if err != nil {
			return nil, errors.WithPath(err, strconv.Itoa(i))
		}
		out[i] = n
	}
	return out, nil
}

type input struct {
	label string
	value any
}

type formatter struct {
	depth int
}

func node(kind Kind, t idl.Type, in input) *Node {
	return &Node{Kind: kind, Label: in.label, Description: t.Name()}
}

func mismatch(t idl.Type, v any) error {
	return errors.TypeMismatch(errors.PhaseFormat, nil, fmt.Sprintf("%T", v), t.Name())
}

func (x formatter) child(t idl.Type, in input, ctx *visitor.Context) (*Node, error) {
	return visitor.Dispatch[input, *Node](x, t, in, ctx)
}

func (formatter) VisitNull(t idl.NullType, in input, _ *visitor.Context) (*Node, error) {
	return node(KindNull, t, in), nil
}

func (formatter) VisitBool(t idl.BoolType, in input, _ *visitor.Context) (*Node, error) {
	b, ok := in.value.(bool)
	if !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindBoolean, t, in)
	n.Value = b
	return n, nil
}

func (formatter) VisitText(t idl.TextType, in input, _ *visitor.Context) (*Node, error) {
	s, ok := in.value.(string)
	if !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindText, t, in)
	n.Value = s
	n.Format = string(TextFormat(in.label))
	return n, nil
}

func (formatter) VisitReserved(t idl.ReservedType, in input, _ *visitor.Context) (*Node, error) {
	n := node(KindUnknown, t, in)
	n.Value = in.value
	return n, nil
}

func (formatter) VisitEmpty(t idl.EmptyType, _ input, _ *visitor.Context) (*Node, error) {
	return nil, errors.InvalidData(errors.PhaseFormat, nil, "empty has no values")
}

// VisitNumber renders the number as its candid text.
func (formatter) VisitNumber(t idl.NumberType, in input, _ *visitor.Context) (*Node, error) {
	var ok bool
	if t.IsFloat() {
		_, ok = idl.ToFloat(in.value)
	} else {
		_, ok = idl.ToBigInt(in.value)
	}
	if !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindNumber, t, in)
	n.Value = idl.ValueString(t, in.value)
	n.Format = string(NumberFormat(in.label))
	if t.IsFloat() {
		n.Format = string(NumberValue)
	}
	return n, nil
}

func (formatter) VisitPrincipal(t idl.PrincipalType, in input, _ *visitor.Context) (*Node, error) {
	return principalNode(t, in)
}

func principalNode(t idl.Type, in input) (*Node, error) {
	p, ok := in.value.(principal.Principal)
	if !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindPrincipal, t, in)
	n.Value = p.Text()
	return n, nil
}

func (x formatter) VisitOpt(t *idl.OptType, in input, ctx *visitor.Context) (*Node, error) {
	seq, ok := in.value.([]any)
	if !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindOptional, t, in)
	switch len(seq) {
	case 0:
		return n, nil
	case 1:
		c, err := x.child(t.Elem, input{label: in.label, value: seq[0]}, ctx)
		if err != nil {
			return nil, err
		}
		n.Values = []*Node{c}
		n.Value = c.Value
		return n, nil
	default:
		return nil, errors.ContractViolation(errors.PhaseFormat, nil,
			fmt.Sprintf("optional holds at most one value, got %d", len(seq)))
	}
}

// VisitVec labels elements "label-i".
func (x formatter) VisitVec(t *idl.VecType, in input, ctx *visitor.Context) (*Node, error) {
	if t.IsBlob() {
		return blobNode(t, in)
	}
	seq, ok := in.value.([]any)
	if !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindVector, t, in)
	n.Values = make([]*Node, len(seq))
	for i, e := range seq {
		c, err := x.child(t.Elem, input{label: in.label + "-" + strconv.Itoa(i), value: e}, ctx)
		if err != nil {
			return nil, errors.WithPath(err, strconv.Itoa(i))
		}
		n.Values[i] = c
	}
	return n, nil
}

func blobNode(t *idl.VecType, in input) (*Node, error) {
	raw, ok := in.value.([]byte)
	if !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindBlob, t, in)
	if len(raw) > MaxHexBlob {
		n.Value = fmt.Sprintf("%s... (%d bytes)", hex.EncodeToString(raw[:32]), len(raw))
	} else {
		n.Value = hex.EncodeToString(raw)
	}
	return n, nil
}

// VisitTuple labels components "_i_".
func (x formatter) VisitTuple(t *idl.TupleType, in input, ctx *visitor.Context) (*Node, error) {
	seq, ok := in.value.([]any)
	if !ok || len(seq) != len(t.Components) {
		return nil, mismatch(t, in.value)
	}
	n := node(KindTuple, t, in)
	n.Values = make([]*Node, len(seq))
	for i, c := range t.Components {
		cn, err := x.child(c, input{label: "_" + strconv.Itoa(i) + "_", value: seq[i]}, ctx)
		if err != nil {
			return nil, errors.WithPath(err, strconv.Itoa(i))
		}
		n.Values[i] = cn
	}
	return n, nil
}

// VisitRecord treats a missing field of optional type as absent.
func (x formatter) VisitRecord(t *idl.RecordType, in input, ctx *visitor.Context) (*Node, error) {
	m, ok := in.value.(map[string]any)
	if !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindRecord, t, in)
	n.Values = make([]*Node, 0, len(t.Fields))
	for _, f := range t.Fields {
		v, present := m[f.Name]
		if !present {
			if !idl.Optional(f.Type) {
				return nil, errors.FieldMissing(errors.PhaseFormat, nil, f.Name)
			}
			if _, isOpt := idl.Unwrap(f.Type).(*idl.OptType); isOpt {
				v = []any{}
			}
		}
		c, err := x.child(f.Type, input{label: f.Name, value: v}, ctx)
		if err != nil {
			return nil, errors.WithPath(err, f.Name)
		}
		n.Values = append(n.Values, c)
	}
	return n, nil
}

// VisitVariant holds the tag in Value and the payload as the only child.
func (x formatter) VisitVariant(t *idl.VariantType, in input, ctx *visitor.Context) (*Node, error) {
	m, ok := in.value.(map[string]any)
	if !ok {
		return nil, mismatch(t, in.value)
	}
	tag, payload, err := idl.SingleTag(m)
	if err != nil {
		return nil, rephase(err)
	}
	ot, ok := t.Lookup(tag)
	if !ok {
		return nil, errors.ContractViolation(errors.PhaseFormat, nil, "unknown variant option "+strconv.Quote(tag))
	}
	c, err := x.child(ot, input{label: tag, value: payload}, ctx)
	if err != nil {
		return nil, errors.WithPath(err, tag)
	}
	n := node(KindVariant, t, in)
	n.Value = tag
	n.Values = []*Node{c}
	return n, nil
}

func (x formatter) VisitRec(t *idl.RecType, in input, ctx *visitor.Context) (*Node, error) {
	if ctx.Enter(t) > x.depth {
		return &Node{
			Kind:        KindRecursive,
			Label:       in.label,
			Value:       idl.ValueString(t, in.value),
			Description: "recursive",
			TypeName:    t.Label,
		}, nil
	}
	n, err := x.child(t.Target(), in, ctx)
	if err != nil {
		return nil, err
	}
	n.TypeName = t.Label
	return n, nil
}

func (formatter) VisitFunc(t *idl.FuncType, in input, _ *visitor.Context) (*Node, error) {
	if _, ok := in.value.(idl.FuncRef); !ok {
		return nil, mismatch(t, in.value)
	}
	n := node(KindFunc, t, in)
	n.Value = idl.ValueString(t, in.value)
	return n, nil
}

func (formatter) VisitService(t *idl.ServiceType, in input, _ *visitor.Context) (*Node, error) {
	return principalNode(t, in)
}

func rephase(err error) error {
	if e, ok := err.(*errors.Error); ok {
		c := *e
		c.Phase = errors.PhaseFormat
		return &c
	}
	return err
}
