package fixture

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/generate"
	"github.com/B3Pay/ic-reactor-go/idl"
)

func transfer() *idl.FuncType {
	account := idl.Record(idl.F("owner", idl.Principal), idl.F("subaccount", idl.Opt(idl.Blob())))
	arg := idl.Record(
		idl.F("to", account),
		idl.F("amount", idl.Nat),
		idl.F("fee", idl.Opt(idl.Nat64)),
		idl.F("memo", idl.Opt(idl.Blob())),
		idl.F("tries", idl.Int8),
		idl.F("ratio", idl.Float64),
	)
	res := idl.Variant(
		idl.F("Ok", idl.Nat),
		idl.F("Err", idl.Variant(
			idl.F("BadFee", idl.Record(idl.F("expected_fee", idl.Nat))),
			idl.F("TooOld", idl.Null),
		)),
	)
	return idl.Func([]idl.Type{arg, idl.Vec(idl.Tuple(idl.Text, idl.Int32))}, []idl.Type{res})
}

func TestRecord_RoundTrip(t *testing.T) {
	fn := transfer()
	g := generate.New(generate.WithSeed(3))

	for i := 0; i < 25; i++ {
		f, err := Record(g, "transfer", fn)
		require.NoError(t, err)
		assert.Equal(t, fn.Name(), f.Signature)
		require.Len(t, f.Args, 2)
		require.Len(t, f.Results, 1)

		data, err := Marshal(f)
		require.NoError(t, err)
		again, err := Marshal(f)
		require.NoError(t, err)
		assert.Equal(t, data, again, "canonical encoding is deterministic")

		loaded, err := Unmarshal(data)
		require.NoError(t, err)
		args, results, err := loaded.Wire(fn)
		require.NoError(t, err)
		require.NoError(t, idl.Check(fn.Args[0], args[0]))
		require.NoError(t, idl.Check(fn.Args[1], args[1]))
		require.NoError(t, idl.Check(fn.Results[0], results[0]))

		original, _, err := f.Wire(fn)
		require.NoError(t, err)
		assert.Equal(t, idl.ValueString(fn.Args[0], original[0]), idl.ValueString(fn.Args[0], args[0]))
	}
}

func TestRecord_VariantsStoredAsTaggedMaps(t *testing.T) {
	fn := idl.Func(nil, []idl.Type{idl.Variant(idl.F("Ok", idl.Null))})
	f, err := Record(generate.New(generate.WithSeed(1)), "ping", fn)
	require.NoError(t, err)
	assert.Empty(t, f.Args)
	assert.Equal(t, map[string]any{"_type": "Ok"}, f.Results[0])
}

func TestSaveLoad(t *testing.T) {
	fn := transfer()
	f, err := Record(generate.New(generate.WithSeed(9)), "transfer", fn)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "transfer.cbor")
	require.NoError(t, Save(path, f))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "transfer", loaded.Method)

	_, _, err = loaded.Wire(fn)
	require.NoError(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.cbor"))
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestWire_Errors(t *testing.T) {
	f := &Fixture{Method: "m", Signature: idl.Func([]idl.Type{idl.Nat}, nil).Name(), Args: []any{"1"}}

	_, _, err := f.Wire(idl.Func([]idl.Type{idl.Text}, nil))
	assert.True(t, errors.IsContractViolation(err))

	_, _, err = f.Wire(nil)
	assert.True(t, errors.IsUnknownKind(err))

	f.Args = nil
	_, _, err = f.Wire(idl.Func([]idl.Type{idl.Nat}, nil))
	assert.True(t, errors.IsContractViolation(err))

	f.Args = []any{"x"}
	_, _, err = f.Wire(idl.Func([]idl.Type{idl.Nat}, nil))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"m", "args", "0"}, e.Path)

	_, err = Unmarshal([]byte{0xff, 0x00})
	assert.Equal(t, errors.KindInvalidData, errors.KindOf(err))
}
