package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B3Pay/ic-reactor-go/codec"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

func account() *idl.RecordType {
	return idl.Record(
		idl.F("owner", idl.Principal),
		idl.F("subaccount", idl.Opt(idl.Blob())),
	)
}

func transferArg() *idl.RecordType {
	return idl.Record(
		idl.F("to", account()),
		idl.F("amount", idl.Nat),
		idl.F("memo", idl.Opt(idl.Blob())),
		idl.F("created_at_time", idl.Opt(idl.Nat64)),
	)
}

func transferResult() *idl.VariantType {
	return idl.Variant(
		idl.F("Ok", idl.Nat),
		idl.F("Err", idl.Variant(
			idl.F("InsufficientFunds", idl.Record(idl.F("balance", idl.Nat))),
			idl.F("TemporarilyUnavailable", idl.Null),
		)),
	)
}

func ledger() *idl.ServiceType {
	return idl.Service(
		idl.M("icrc1_transfer", idl.Func([]idl.Type{transferArg()}, []idl.Type{transferResult()})),
		idl.M("icrc1_balance_of", idl.Func([]idl.Type{account()}, []idl.Type{idl.Nat}, "query")),
		idl.M("icrc1_name", idl.Func(nil, []idl.Type{idl.Text}, "composite_query")),
	)
}

func TestDerive_Primitives(t *testing.T) {
	tests := []struct {
		typ     idl.Type
		kind    Kind
		candid  string
		initial any
	}{
		{idl.Text, KindText, "text", ""},
		{idl.Bool, KindBoolean, "bool", false},
		{idl.Null, KindNull, "null", nil},
		{idl.Nat, KindNumber, "nat", nil},
		{idl.Float32, KindNumber, "float32", nil},
		{idl.Principal, KindPrincipal, "principal", ""},
		{idl.Reserved, KindUnknown, "reserved", nil},
		{idl.Opt(idl.Text), KindOptional, "opt", []any{}},
		{idl.Vec(idl.Text), KindVector, "vec", []any{}},
		{idl.Blob(), KindBlob, "blob", ""},
		{idl.Service(), KindPrincipal, "service", ""},
		{idl.Func(nil, nil), KindUnknown, "func", nil},
	}

	for _, tt := range tests {
		t.Run(tt.typ.Name(), func(t *testing.T) {
			f, err := Derive(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.candid, f.CandidType)
			assert.Equal(t, tt.initial, f.DefaultValue)
			assert.Equal(t, tt.typ, f.Type)
		})
	}
}

func TestDerive_Number(t *testing.T) {
	f, err := Derive(idl.Nat8)
	require.NoError(t, err)
	assert.Equal(t, &Number{Unsigned: true, Bits: 8, Min: "0", Max: "255"}, f.Number)
	assert.Equal(t, "0", f.Placeholder)

	f, err = Derive(idl.Int64)
	require.NoError(t, err)
	assert.Equal(t, "-9223372036854775808", f.Number.Min)
	assert.Equal(t, "9223372036854775807", f.Number.Max)
	assert.False(t, f.Number.Unsigned)

	f, err = Derive(idl.Nat)
	require.NoError(t, err)
	assert.True(t, f.Number.Unsigned)
	assert.Empty(t, f.Number.Max)

	f, err = Derive(idl.Float64)
	require.NoError(t, err)
	assert.True(t, f.Number.IsFloat)
	assert.False(t, f.Number.Unsigned)
	assert.Equal(t, "0.0", f.Placeholder)
}

func TestDerive_RecordAndPaths(t *testing.T) {
	m, err := FromFunc("icrc1_transfer", idl.Func([]idl.Type{transferArg(), idl.Vec(idl.Tuple(idl.Text, idl.Nat))}, nil))
	require.NoError(t, err)
	require.Len(t, m.Fields, 2)

	arg := m.Fields[0]
	assert.Equal(t, KindRecord, arg.Kind)
	assert.Equal(t, "arg0", arg.Label)
	assert.Equal(t, "[0]", arg.Name)

	to, ok := arg.Field("to")
	require.True(t, ok)
	assert.Equal(t, "[0].to", to.Name)
	owner, ok := to.Field("owner")
	require.True(t, ok)
	assert.Equal(t, "[0].to.owner", owner.Name)
	assert.Equal(t, PrincipalMinLength, owner.MinLength)
	assert.Equal(t, PrincipalMaxLength, owner.MaxLength)

	sub, ok := to.Field("subaccount")
	require.True(t, ok)
	assert.Equal(t, KindOptional, sub.Kind)
	assert.Equal(t, "[0].to.subaccount", sub.Inner.Name)
	assert.Equal(t, KindBlob, sub.Inner.Kind)

	assert.Equal(t, map[string]any{
		"to":              map[string]any{"owner": "", "subaccount": []any{}},
		"amount":          nil,
		"memo":            []any{},
		"created_at_time": []any{},
	}, arg.DefaultValue)

	pairs := m.Fields[1]
	assert.Equal(t, KindVector, pairs.Kind)
	assert.Equal(t, "[1][0]", pairs.Item.Name)
	assert.Equal(t, "arg1_item", pairs.Item.Label)
	require.Len(t, pairs.Item.Fields, 2)
	assert.Equal(t, "[1][0][1]", pairs.Item.Fields[1].Name)
	assert.Equal(t, "_1_", pairs.Item.Fields[1].Label)
	assert.Equal(t, []any{"", nil}, pairs.ItemDefault())

	_, ok = arg.Field("missing")
	assert.False(t, ok)
}

func TestDerive_RootPaths(t *testing.T) {
	f, err := Derive(idl.Record(idl.F("tags", idl.Vec(idl.Text))))
	require.NoError(t, err)
	tags, _ := f.Field("tags")
	assert.Equal(t, "tags", tags.Name)
	assert.Equal(t, "tags[0]", tags.Item.Name)
}

func TestDerive_Variant(t *testing.T) {
	f, err := Derive(transferResult())
	require.NoError(t, err)
	assert.Equal(t, KindVariant, f.Kind)
	assert.Equal(t, []string{"Ok", "Err"}, f.Options)
	assert.Equal(t, "Ok", f.DefaultOption)
	assert.Equal(t, codec.Variant{Tag: "Ok"}, f.DefaultValue)

	d, err := f.OptionDefault("Err")
	require.NoError(t, err)
	assert.Equal(t, codec.Variant{
		Tag:   "Err",
		Value: codec.Variant{Tag: "InsufficientFunds", Value: map[string]any{"balance": nil}},
	}, d)

	_, err = f.OptionDefault("Nope")
	assert.True(t, errors.IsContractViolation(err))

	text, err := Derive(idl.Text)
	require.NoError(t, err)
	_, err = text.OptionDefault("Ok")
	assert.Equal(t, errors.KindUnsupported, errors.KindOf(err))

	empty, err := Derive(idl.Variant())
	require.NoError(t, err)
	assert.Empty(t, empty.DefaultOption)
	assert.Nil(t, empty.DefaultValue)
}

func TestDerive_Order(t *testing.T) {
	f, err := Derive(idl.Record(idl.F("a", idl.Nat), idl.F("b", idl.Vec(idl.Text)), idl.F("c", idl.Bool)))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Order)
	a, _ := f.Field("a")
	b, _ := f.Field("b")
	c, _ := f.Field("c")
	assert.Equal(t, 1, a.Order)
	assert.Equal(t, 2, b.Order)
	assert.Equal(t, 3, b.Item.Order)
	assert.Equal(t, 4, c.Order)
}

func tree() *idl.RecType {
	tr := idl.Rec("Tree")
	tr.Fill(idl.Variant(
		idl.F("Leaf", idl.Int),
		idl.F("Node", idl.Record(idl.F("left", tr), idl.F("right", tr))),
	))
	return tr
}

func TestDerive_Recursive(t *testing.T) {
	f, err := DeriveLabeled(tree(), "root")
	require.NoError(t, err)
	assert.Equal(t, KindRecursive, f.Kind)
	assert.Equal(t, "Tree", f.TypeName)
	assert.False(t, f.IsMarker())
	require.NotNil(t, f.Inner)
	assert.Equal(t, KindVariant, f.Inner.Kind)
	assert.Equal(t, codec.Variant{Tag: "Leaf"}, f.DefaultValue)

	node, _ := f.Inner.Field("Node")
	left, _ := node.Field("left")
	right, _ := node.Field("right")
	assert.True(t, left.IsMarker())
	assert.True(t, right.IsMarker())
	assert.Nil(t, left.DefaultValue)
	assert.Equal(t, "Node.left", left.Name)

	expanded, err := left.Expand()
	require.NoError(t, err)
	assert.Equal(t, KindVariant, expanded.Kind)
	assert.Equal(t, "left", expanded.Label)
	assert.Equal(t, "Node.left", expanded.Name)
	deeper, _ := expanded.Field("Node")
	deeperLeft, _ := deeper.Field("left")
	assert.True(t, deeperLeft.IsMarker())
	assert.Equal(t, "Node.left.Node.left", deeperLeft.Name)

	d, err := left.InnerDefault()
	require.NoError(t, err)
	assert.Equal(t, codec.Variant{Tag: "Leaf"}, d)

	_, err = (&Field{Kind: KindText}).Expand()
	assert.Error(t, err)
}

func TestDerive_MutualRecursion(t *testing.T) {
	a := idl.Rec("A")
	b := idl.Rec("B")
	a.Fill(idl.Record(idl.F("b", idl.Opt(b))))
	b.Fill(idl.Record(idl.F("a", idl.Opt(a))))

	f, err := Derive(a)
	require.NoError(t, err)
	bf, _ := f.Inner.Field("b")
	inner := bf.Inner
	assert.False(t, inner.IsMarker())
	af, _ := inner.Inner.Field("a")
	assert.True(t, af.Inner.IsMarker())
}

func TestDerive_Unknown(t *testing.T) {
	_, err := Derive(nil)
	assert.True(t, errors.IsUnknownKind(err))

	_, err = Derive(idl.Record(idl.F("x", idl.Rec("Unfilled"))))
	require.Error(t, err)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"x"}, e.Path)
	assert.Equal(t, errors.PhaseDerive, e.Phase)
}
