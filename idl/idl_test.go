package idl

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/principal"
)

func TestName(t *testing.T) {
	tree := Rec("Tree")
	tree.Fill(Variant(F("Leaf", Nat), F("Node", Vec(tree))))

	tests := []struct {
		typ  Type
		want string
	}{
		{Null, "null"},
		{Nat, "nat"},
		{Int, "int"},
		{Nat64, "nat64"},
		{Int8, "int8"},
		{Float32, "float32"},
		{Opt(Text), "opt text"},
		{Blob(), "blob"},
		{Vec(Principal), "vec principal"},
		{Tuple(Nat, Text), "record { nat; text }"},
		{Record(F("name", Text), F("age", Nat8)), "record { name : text; age : nat8 }"},
		{Record(), "record {}"},
		{Enum("Active", "Completed"), "variant { Active; Completed }"},
		{Variant(F("Ok", Nat), F("Err", Text)), "variant { Ok : nat; Err : text }"},
		{Record(F("my field", Bool)), `record { "my field" : bool }`},
		{tree, "Tree"},
		{tree.Target(), "variant { Leaf : nat; Node : vec Tree }"},
		{Func([]Type{Text}, []Type{Nat}, "query"), "func (text) -> (nat) query"},
		{Service(M("get", Func(nil, []Type{Text}))), "service { get : func () -> (text) }"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Name())
		})
	}
}

func TestRec_Label(t *testing.T) {
	a := Rec("")
	b := Rec("")
	assert.Regexp(t, `^rec_\d+$`, a.Label)
	assert.NotEqual(t, a.Label, b.Label)
	assert.Nil(t, a.Target())

	a.Fill(Nat)
	assert.Equal(t, Nat, a.Target())
	assert.Panics(t, func() { a.Fill(Text) })
}

func TestConstructors_Duplicates(t *testing.T) {
	assert.Panics(t, func() { Record(F("a", Nat), F("a", Text)) })
	assert.Panics(t, func() { Variant(F("A", Null), F("A", Nat)) })
	assert.Panics(t, func() {
		Service(M("m", Func(nil, nil)), M("m", Func(nil, nil)))
	})
}

func TestNumberType_Range(t *testing.T) {
	lo, hi, bounded := Nat8.Range()
	require.True(t, bounded)
	assert.Equal(t, "0", lo.String())
	assert.Equal(t, "256", hi.String())

	lo, hi, bounded = Int64.Range()
	require.True(t, bounded)
	assert.Equal(t, "-9223372036854775808", lo.String())
	assert.Equal(t, "9223372036854775808", hi.String())

	lo, _, bounded = Nat.Range()
	assert.False(t, bounded)
	assert.Equal(t, "0", lo.String())

	assert.True(t, Nat.IsBig())
	assert.True(t, Nat64.IsBig())
	assert.False(t, Nat32.IsBig())
	assert.False(t, Float64.IsBig())
	assert.True(t, Int16.Signed())
	assert.False(t, Nat16.Signed())
}

func TestFuncType_Annotations(t *testing.T) {
	assert.True(t, Func(nil, nil, "query").IsQuery())
	assert.True(t, Func(nil, nil, "composite_query").IsQuery())
	assert.False(t, Func(nil, nil).IsQuery())
	assert.True(t, Func(nil, nil, "oneway").IsOneway())
}

func TestUnwrap(t *testing.T) {
	inner := Rec("Inner")
	outer := Rec("Outer")
	outer.Fill(inner)
	inner.Fill(Text)
	assert.Equal(t, Text, Unwrap(outer))

	loop := Rec("Loop")
	loop.Fill(loop)
	assert.Nil(t, Unwrap(loop))
	assert.Nil(t, Unwrap(Rec("Unfilled")))
}

func TestOptional(t *testing.T) {
	assert.True(t, Optional(Opt(Nat)))
	assert.True(t, Optional(Null))
	assert.True(t, Optional(Reserved))
	assert.False(t, Optional(Nat))

	list := Rec("List")
	list.Fill(Opt(Record(F("head", Nat), F("tail", list))))
	assert.True(t, Optional(list))
	assert.False(t, Optional(Rec("Unfilled")))
}

func TestCheck(t *testing.T) {
	list := Rec("List")
	list.Fill(Opt(Record(F("head", Nat), F("tail", list))))

	tests := []struct {
		name string
		typ  Type
		val  any
		kind errors.Kind
	}{
		{"null", Null, nil, ""},
		{"null mismatch", Null, 1, errors.KindTypeMismatch},
		{"bool", Bool, true, ""},
		{"text", Text, "hi", ""},
		{"text mismatch", Text, 1, errors.KindTypeMismatch},
		{"reserved accepts anything", Reserved, 42, ""},
		{"empty", Empty, nil, errors.KindContractViolation},
		{"nat", Nat, big.NewInt(5), ""},
		{"nat negative", Nat, big.NewInt(-1), errors.KindOverflow},
		{"nat8 max", Nat8, big.NewInt(255), ""},
		{"nat8 overflow", Nat8, big.NewInt(256), errors.KindOverflow},
		{"int8 min", Int8, big.NewInt(-128), ""},
		{"int8 underflow", Int8, big.NewInt(-129), errors.KindOverflow},
		{"go int", Int32, 7, ""},
		{"float", Float64, 1.5, ""},
		{"float mismatch", Float64, "1.5", errors.KindTypeMismatch},
		{"principal", Principal, principal.Anonymous, ""},
		{"opt none", Opt(Text), []any{}, ""},
		{"opt some", Opt(Text), []any{"x"}, ""},
		{"opt too long", Opt(Text), []any{"x", "y"}, errors.KindContractViolation},
		{"blob bytes", Blob(), []byte{1, 2}, ""},
		{"vec", Vec(Text), []any{"a", "b"}, ""},
		{"vec bad element", Vec(Text), []any{"a", 1}, errors.KindTypeMismatch},
		{"tuple", Tuple(Text, Bool), []any{"a", true}, ""},
		{"tuple arity", Tuple(Text, Bool), []any{"a"}, errors.KindContractViolation},
		{"record", Record(F("a", Text), F("b", Opt(Nat))), map[string]any{"a": "x"}, ""},
		{"record missing", Record(F("a", Text)), map[string]any{}, errors.KindFieldMissing},
		{"variant", Variant(F("Ok", Nat)), map[string]any{"Ok": big.NewInt(1)}, ""},
		{"variant two tags", Enum("A", "B"), map[string]any{"A": nil, "B": nil}, errors.KindContractViolation},
		{"variant no tag", Enum("A"), map[string]any{}, errors.KindContractViolation},
		{"variant unknown tag", Enum("A"), map[string]any{"C": nil}, errors.KindContractViolation},
		{"rec", list, []any{map[string]any{"head": big.NewInt(1), "tail": []any{}}}, ""},
		{"rec unfilled", Rec("X"), nil, errors.KindUnknownKind},
		{"func", Func(nil, nil), FuncRef{Service: principal.Anonymous, Method: "m"}, ""},
		{"service", Service(), principal.Management, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.typ, tt.val)
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
		})
	}
}

func TestCheck_Path(t *testing.T) {
	typ := Record(F("items", Vec(Record(F("id", Nat8)))))
	val := map[string]any{"items": []any{
		map[string]any{"id": big.NewInt(1)},
		map[string]any{"id": big.NewInt(300)},
	}}

	err := Check(typ, val)
	require.Error(t, err)

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"items", "1", "id"}, e.Path)
}

func TestValueString(t *testing.T) {
	tests := []struct {
		typ  Type
		val  any
		want string
	}{
		{Null, nil, "null"},
		{Bool, true, "true"},
		{Text, "a\"b", `"a\"b"`},
		{Nat, big.NewInt(42), "42"},
		{Int, big.NewInt(-7), "-7"},
		{Float64, 1.25, "1.25"},
		{Principal, principal.Anonymous, `principal "2vxsx-fae"`},
		{Opt(Nat8), []any{}, "null"},
		{Opt(Nat8), []any{big.NewInt(3)}, "opt 3"},
		{Blob(), []byte{0xca, 0xfe}, `blob "\ca\fe"`},
		{Vec(Text), []any{"a", "b"}, `vec {"a"; "b"}`},
		{Tuple(Nat, Bool), []any{big.NewInt(1), false}, "record {1; false}"},
		{Record(F("name", Text), F("age", Nat8)), map[string]any{"name": "Ann", "age": big.NewInt(30)}, `record {name = "Ann"; age = 30}`},
		{Enum("Active", "Done"), map[string]any{"Done": nil}, "variant {Done}"},
		{Variant(F("Err", Text)), map[string]any{"Err": "boom"}, `variant {Err = "boom"}`},
		{Func(nil, nil), FuncRef{Service: principal.Management, Method: "go"}, `func "aaaaa-aa".go`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueString(tt.typ, tt.val))
		})
	}
}

func TestToBigInt(t *testing.T) {
	for _, v := range []any{int(3), int8(3), int16(3), int32(3), int64(3), uint(3), uint8(3), uint16(3), uint32(3), uint64(3), big.NewInt(3)} {
		n, ok := ToBigInt(v)
		require.True(t, ok, "%T", v)
		assert.Equal(t, int64(3), n.Int64())
	}
	_, ok := ToBigInt("3")
	assert.False(t, ok)
	_, ok = ToBigInt((*big.Int)(nil))
	assert.False(t, ok)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "record", KindRecord.String())
	assert.Equal(t, "unknown", Kind(200).String())
	assert.True(t, KindRec.IsComposite())
	assert.False(t, KindFunc.IsComposite())
}
