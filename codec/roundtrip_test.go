package codec

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B3Pay/ic-reactor-go/generate"
	"github.com/B3Pay/ic-reactor-go/idl"
)

// propertyTypes excludes opt of null, opt of opt and opt of reserved:
// their present-but-null wire values decode to nil like an absent opt.
func propertyTypes() []idl.Type {
	tree := idl.Rec("Tree")
	tree.Fill(idl.Variant(
		idl.F("Leaf", idl.Int64),
		idl.F("Node", idl.Record(idl.F("left", tree), idl.F("right", tree))),
	))
	forest := idl.Rec("Forest")
	forest.Fill(idl.Record(idl.F("name", idl.Text), idl.F("children", idl.Vec(forest))))

	account := idl.Record(
		idl.F("owner", idl.Principal),
		idl.F("subaccount", idl.Opt(idl.Blob())),
	)
	return []idl.Type{
		idl.Null, idl.Bool, idl.Text, idl.Principal,
		idl.Nat, idl.Int, idl.Nat8, idl.Nat16, idl.Nat32, idl.Nat64,
		idl.Int8, idl.Int16, idl.Int32, idl.Int64, idl.Float32, idl.Float64,
		idl.Opt(idl.Nat), idl.Opt(idl.Vec(idl.Text)), idl.Vec(idl.Principal), idl.Blob(),
		idl.Tuple(idl.Text, idl.Nat64, idl.Opt(idl.Bool)),
		account,
		idl.Record(
			idl.F("from", account),
			idl.F("to", account),
			idl.F("amount", idl.Nat),
			idl.F("memo", idl.Opt(idl.Blob())),
			idl.F("created_at_time", idl.Opt(idl.Nat64)),
		),
		idl.Variant(
			idl.F("Ok", idl.Nat),
			idl.F("Err", idl.Variant(
				idl.F("InsufficientFunds", idl.Record(idl.F("balance", idl.Nat))),
				idl.F("TemporarilyUnavailable", idl.Null),
				idl.F("GenericError", idl.Record(idl.F("message", idl.Text), idl.F("error_code", idl.Nat))),
			)),
		),
		idl.Func([]idl.Type{idl.Text}, nil),
		tree, forest,
	}
}

const iterations = 200

func TestProperty_RoundTrip(t *testing.T) {
	d := NewDeriver()
	g := generate.New(generate.WithSeed(2024))

	for _, typ := range propertyTypes() {
		c, err := d.Derive(typ)
		require.NoError(t, err, typ.Name())

		for i := 0; i < iterations; i++ {
			wire, err := g.Generate(typ)
			require.NoError(t, err)

			display, err := c.Decode(wire)
			require.NoError(t, err, "%s: %s", typ.Name(), idl.ValueString(typ, wire))

			back, err := c.Encode(display)
			require.NoError(t, err, typ.Name())
			require.NoError(t, idl.Check(typ, back), typ.Name())
			require.Equal(t, idl.ValueString(typ, wire), idl.ValueString(typ, back), typ.Name())

			again, err := c.Decode(back)
			require.NoError(t, err)
			require.Equal(t, display, again, typ.Name())
		}
	}
}

func TestProperty_RoundTripThroughJSON(t *testing.T) {
	d := NewDeriver()
	g := generate.New(generate.WithSeed(99))

	for _, typ := range propertyTypes() {
		if _, isFunc := typ.(*idl.FuncType); isFunc {
			continue
		}
		c, err := d.Derive(typ)
		require.NoError(t, err)

		for i := 0; i < 50; i++ {
			wire, err := g.Generate(typ)
			require.NoError(t, err)
			display, err := c.Decode(wire)
			require.NoError(t, err)

			data, err := json.Marshal(display)
			require.NoError(t, err)

			var parsed any
			require.NoError(t, unmarshalNumber(data, &parsed))

			back, err := c.Encode(parsed)
			require.NoError(t, err, "%s: %s", typ.Name(), data)
			require.Equal(t, idl.ValueString(typ, wire), idl.ValueString(typ, back), typ.Name())
		}
	}
}

func TestProperty_VariantExclusivity(t *testing.T) {
	typ := idl.Variant(idl.F("A", idl.Nat), idl.F("B", idl.Text), idl.F("C", idl.Null))
	c, err := Derive(typ)
	require.NoError(t, err)
	g := generate.New(generate.WithSeed(5))

	for i := 0; i < iterations; i++ {
		wire, err := g.Generate(typ)
		require.NoError(t, err)
		m := wire.(map[string]any)
		require.Len(t, m, 1)

		display, err := c.Decode(wire)
		require.NoError(t, err)
		v := display.(Variant)
		_, present := m[v.Tag]
		assert.True(t, present)

		back, err := c.Encode(display)
		require.NoError(t, err)
		assert.Len(t, back, 1)
	}
}

func TestProperty_OptionalBoundary(t *testing.T) {
	inner := idl.Record(idl.F("id", idl.Nat64), idl.F("tags", idl.Vec(idl.Text)))
	opt, err := Derive(idl.Opt(inner))
	require.NoError(t, err)
	plain, err := Derive(inner)
	require.NoError(t, err)
	g := generate.New(generate.WithSeed(8))

	none, err := opt.Decode([]any{})
	require.NoError(t, err)
	assert.Nil(t, none)

	for i := 0; i < iterations; i++ {
		x, err := g.Generate(inner)
		require.NoError(t, err)

		viaOpt, err := opt.Decode([]any{x})
		require.NoError(t, err)
		direct, err := plain.Decode(x)
		require.NoError(t, err)
		assert.Equal(t, direct, viaOpt)

		_, err = opt.Decode([]any{x, x})
		assert.Error(t, err)
	}
}

func TestProperty_OrderPreservation(t *testing.T) {
	typ := idl.Tuple(idl.Vec(idl.Int), idl.Text, idl.Vec(idl.Principal))
	c, err := Derive(typ)
	require.NoError(t, err)
	g := generate.New(generate.WithSeed(13), generate.WithVecMaxLen(30))

	for i := 0; i < iterations; i++ {
		wire, err := g.Generate(typ)
		require.NoError(t, err)
		display, err := c.Decode(wire)
		require.NoError(t, err)

		w := wire.([]any)
		d := display.([]any)
		ints := w[0].([]any)
		for j, s := range d[0].([]any) {
			assert.Equal(t, idl.ValueString(idl.Int, ints[j]), s)
		}
		assert.Equal(t, w[1], d[1])
		ps := w[2].([]any)
		for j, s := range d[2].([]any) {
			assert.Equal(t, idl.ValueString(idl.Principal, ps[j]), `principal "`+s.(string)+`"`)
		}
	}
}

func unmarshalNumber(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}
