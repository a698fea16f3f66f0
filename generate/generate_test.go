package generate

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/principal"
)

func sampleTypes() []idl.Type {
	tree := idl.Rec("Tree")
	tree.Fill(idl.Variant(
		idl.F("Leaf", idl.Int),
		idl.F("Node", idl.Record(idl.F("left", tree), idl.F("right", tree))),
	))
	list := idl.Rec("List")
	list.Fill(idl.Opt(idl.Record(idl.F("head", idl.Nat64), idl.F("tail", list))))

	return []idl.Type{
		idl.Null, idl.Bool, idl.Text, idl.Reserved, idl.Principal,
		idl.Nat, idl.Int, idl.Nat8, idl.Nat16, idl.Nat32, idl.Nat64,
		idl.Int8, idl.Int16, idl.Int32, idl.Int64, idl.Float32, idl.Float64,
		idl.Opt(idl.Text), idl.Vec(idl.Int64), idl.Blob(),
		idl.Tuple(idl.Text, idl.Nat, idl.Bool),
		idl.Record(idl.F("owner", idl.Principal), idl.F("subaccount", idl.Opt(idl.Blob()))),
		idl.Variant(idl.F("Ok", idl.Nat), idl.F("Err", idl.Enum("A", "B"))),
		idl.Func([]idl.Type{idl.Text}, nil, "query"),
		idl.Service(),
		tree, list,
	}
}

func TestGenerate_Inhabits(t *testing.T) {
	g := New(WithSeed(1))
	for _, typ := range sampleTypes() {
		for i := 0; i < 100; i++ {
			v, err := g.Generate(typ)
			require.NoError(t, err, typ.Name())
			require.NoError(t, idl.Check(typ, v), "%s: %s", typ.Name(), idl.ValueString(typ, v))

			r, err := g.GenerateReturn(typ)
			require.NoError(t, err, typ.Name())
			require.NoError(t, idl.Check(typ, r), typ.Name())
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	for _, typ := range sampleTypes() {
		a, err := New(WithSeed(42)).Generate(typ)
		require.NoError(t, err)
		b, err := New(WithSeed(42)).Generate(typ)
		require.NoError(t, err)
		assert.Equal(t, idl.ValueString(typ, a), idl.ValueString(typ, b), typ.Name())
	}
}

func TestGenerate_BigIntegerRange(t *testing.T) {
	g := New(WithSeed(7))
	for _, typ := range []idl.NumberType{idl.Nat64, idl.Int64} {
		lo, hi, _ := typ.Range()
		sawNegative := false
		for i := 0; i < 500; i++ {
			v, err := g.Generate(typ)
			require.NoError(t, err)
			n := v.(*big.Int)
			assert.True(t, n.Cmp(lo) >= 0 && n.Cmp(hi) < 0, "%s out of range: %s", typ.Name(), n)
			if n.Sign() < 0 {
				sawNegative = true
			}
		}
		assert.Equal(t, typ.Signed(), sawNegative, typ.Name())
	}
}

func TestGenerate_NarrowedRange(t *testing.T) {
	lo, hi := big.NewInt(-1000), big.NewInt(1000)
	g := New(WithSeed(3), WithIntRange(lo, hi), WithMaxAttempts(10_000))

	// a 2000 wide window in 2^64 is never hit
	_, err := g.Generate(idl.Int64)
	require.Error(t, err)
	assert.True(t, errors.IsGenerationExhausted(err))

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 64, e.Value)
	assert.Contains(t, e.Detail, "64-bit signed")
	assert.Contains(t, e.Detail, "10000 attempts")
}

func TestGenerate_ExhaustedWithInjectedSource(t *testing.T) {
	src := &countingSource{}
	g := New(WithSource(src), WithIntRange(big.NewInt(1), nil), WithMaxAttempts(5))

	// the source only yields zero bytes, which the window excludes
	_, err := g.Generate(idl.Record(idl.F("balance", idl.Nat64)))
	require.Error(t, err)
	assert.True(t, errors.IsGenerationExhausted(err))

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"balance"}, e.Path)
	assert.Contains(t, e.Detail, "64-bit unsigned")
	assert.Contains(t, e.Detail, "after 5 attempts")
	assert.LessOrEqual(t, src.calls, 10)

	// the failure does not poison later calls
	v, err := g.Generate(idl.Nat8)
	require.NoError(t, err)
	assert.NoError(t, idl.Check(idl.Nat8, v))
}

type countingSource struct {
	calls int
}

func (s *countingSource) Int63() int64 {
	s.calls++
	return 0
}

func (s *countingSource) Seed(int64) {}

func TestGenerate_VecLengths(t *testing.T) {
	g := New(WithSeed(5))
	typ := idl.Vec(idl.Nat)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v, err := g.Generate(typ)
		require.NoError(t, err)
		n := len(v.([]any))
		assert.LessOrEqual(t, n, DefaultVecMaxLen)
		seen[n] = true

		r, err := g.GenerateReturn(typ)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(r.([]any)), DefaultReturnVecMaxLen)
	}
	assert.True(t, seen[0])
	assert.True(t, seen[DefaultVecMaxLen])

	v, err := New(WithSeed(5), WithVecMaxLen(0)).Generate(typ)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestGenerate_OptProbability(t *testing.T) {
	always := New(WithSeed(1), WithOptNoneProbability(1))
	never := New(WithSeed(1), WithOptNoneProbability(0))
	for i := 0; i < 50; i++ {
		v, err := always.Generate(idl.Opt(idl.Nat))
		require.NoError(t, err)
		assert.Len(t, v, 0)

		v, err = never.Generate(idl.Opt(idl.Nat))
		require.NoError(t, err)
		assert.Len(t, v, 1)
	}
}

func TestGenerate_UninhabitedPayloads(t *testing.T) {
	g := New(WithSeed(3), WithOptNoneProbability(0))
	loop := idl.Rec("Loop")
	loop.Fill(idl.Record(idl.F("next", loop)))
	choice := idl.Variant(idl.F("never", idl.Empty), idl.F("cycle", loop), idl.F("some", idl.Nat8))

	for i := 0; i < 50; i++ {
		v, err := g.Generate(idl.Opt(idl.Empty))
		require.NoError(t, err)
		assert.Equal(t, []any{}, v)

		v, err = g.Generate(idl.Opt(loop))
		require.NoError(t, err)
		assert.Equal(t, []any{}, v)

		v, err = g.Generate(choice)
		require.NoError(t, err)
		m, ok := v.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, m, "some")
	}

	_, err := g.Generate(idl.Variant(idl.F("never", idl.Empty)))
	assert.Equal(t, errors.KindUnsupported, errors.KindOf(err))
}

func TestGenerate_Primitives(t *testing.T) {
	g := New(WithSeed(9), WithTextLength(12))

	v, err := g.Generate(idl.Text)
	require.NoError(t, err)
	assert.Len(t, v, 12)
	assert.Regexp(t, "^[a-z0-9]+$", v)

	v, err = g.Generate(idl.Principal)
	require.NoError(t, err)
	assert.Equal(t, PrincipalLength, v.(principal.Principal).Len())

	for i := 0; i < 100; i++ {
		v, err = g.Generate(idl.Float64)
		require.NoError(t, err)
		f := v.(float64)
		assert.True(t, f > -1 && f < 1)

		v, err = g.Generate(idl.Nat32)
		require.NoError(t, err)
		assert.True(t, v.(*big.Int).Sign() >= 0)
	}
}

func TestGenerate_RecursiveMemoized(t *testing.T) {
	list := idl.Rec("List")
	list.Fill(idl.Opt(idl.Record(idl.F("head", idl.Nat), idl.F("tail", list))))
	pair := idl.Record(idl.F("a", list), idl.F("b", list))

	g := New(WithSeed(11), WithOptNoneProbability(0))
	v, err := g.Generate(pair)
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, idl.ValueString(list, m["a"]), idl.ValueString(list, m["b"]))

	// re-entry during the first unrolling ends the list
	head := m["a"].([]any)
	require.Len(t, head, 1)
	assert.Equal(t, []any{}, head[0].(map[string]any)["tail"])
}

func TestGenerateReturn_RecursiveVec(t *testing.T) {
	tree := idl.Rec("Tree")
	tree.Fill(idl.Record(idl.F("label", idl.Text), idl.F("children", idl.Vec(tree))))

	v, err := New(WithSeed(2)).GenerateReturn(tree)
	require.NoError(t, err)
	children := v.(map[string]any)["children"].([]any)
	require.Len(t, children, 1)
	assert.Equal(t, []any{}, children[0].(map[string]any)["children"])
}

func TestGenerate_Uninhabited(t *testing.T) {
	loop := idl.Rec("Loop")
	loop.Fill(idl.Record(idl.F("next", loop)))

	_, err := New(WithSeed(1)).Generate(loop)
	require.Error(t, err)
	assert.Equal(t, errors.KindUnsupported, errors.KindOf(err))

	_, err = New(WithSeed(1)).Generate(idl.Empty)
	assert.Equal(t, errors.KindUnsupported, errors.KindOf(err))

	_, err = New(WithSeed(1)).Generate(idl.Variant())
	assert.Equal(t, errors.KindUnsupported, errors.KindOf(err))

	_, err = New(WithSeed(1)).Generate(idl.Rec("Unfilled"))
	assert.True(t, errors.IsUnknownKind(err))
}

func TestGenerateArgsAndResults(t *testing.T) {
	fn := idl.Func(
		[]idl.Type{idl.Text, idl.Opt(idl.Nat64)},
		[]idl.Type{idl.Variant(idl.F("Ok", idl.Vec(idl.Principal)), idl.F("Err", idl.Text))},
		"query",
	)
	g := New(WithSeed(4))

	args, err := g.GenerateArgs(fn)
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.NoError(t, idl.Check(idl.Tuple(fn.Args...), args))

	results, err := g.GenerateResults(fn)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, idl.Check(idl.Tuple(fn.Results...), results))

	none, err := g.GenerateArgs(idl.Func(nil, nil))
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = g.GenerateArgs(idl.Func([]idl.Type{idl.Text, idl.Empty}, nil))
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"1"}, e.Path)

	_, err = g.GenerateArgs(nil)
	assert.True(t, errors.IsUnknownKind(err))
}

func TestMinimal(t *testing.T) {
	tree := idl.Rec("Tree")
	tree.Fill(idl.Variant(
		idl.F("Node", idl.Record(idl.F("left", tree), idl.F("right", tree))),
		idl.F("Leaf", idl.Nat),
	))

	v, ok := Minimal(tree)
	require.True(t, ok)
	assert.Equal(t, "variant {Leaf = 0}", idl.ValueString(tree, v))

	_, ok = Minimal(idl.Empty)
	assert.False(t, ok)
	_, ok = Minimal(idl.Tuple(idl.Nat, idl.Empty))
	assert.False(t, ok)
}

func TestPackageLevel(t *testing.T) {
	v, err := Generate(idl.Bool)
	require.NoError(t, err)
	assert.IsType(t, true, v)

	r, err := GenerateReturn(idl.Nat)
	require.NoError(t, err)
	assert.IsType(t, (*big.Int)(nil), r)
}

var _ rand.Source = (*countingSource)(nil)
