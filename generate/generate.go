// Package generate fabricates random wire values that inhabit an idl type.
//
// Generated values follow the wire conventions of package codec: every
// integer is a *big.Int, opt is a []any of length 0 or 1, variants are
// single-key maps. Generate is meant for test arguments; GenerateReturn
// produces shorter vectors and keeps recursive results small, for mock
// method results.
//
// Integers wider than 32 bits are drawn with a rejection sampler bounded by
// MaxSampleAttempts. When no draw falls in range the call fails with a
// generation_exhausted error naming the bit width and signedness.
//
// Within one call, the first value generated for a recursive reference is
// memoized and reused on later occurrences. A reference met again while its
// first value is still being built is given the smallest finite value of
// its target, which bounds the depth of every generated value.
package generate

import (
	"math/big"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/principal"
	"github.com/B3Pay/ic-reactor-go/visitor"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// frame is threaded down the traversal.
type frame struct {
	ret       bool
	recursive bool
}

// Generator produces random values. It is safe for concurrent use; calls
// are serialized on the underlying random source.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	cfg config
}

// New returns a Generator. Without WithSeed or WithSource it is seeded from
// the current time.
func New(opts ...Option) *Generator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.source == nil {
		cfg.source = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{
		rnd: rand.New(cfg.source), //nolint:gosec // test data, not secrets
		cfg: cfg,
	}
}

var defaultGenerator = sync.OnceValue(func() *Generator { return New() })

// Generate produces a value of t with the package default Generator.
func Generate(t idl.Type) (any, error) {
	return defaultGenerator().Generate(t)
}

// GenerateReturn produces a result value of t with the package default
// Generator.
func GenerateReturn(t idl.Type) (any, error) {
	return defaultGenerator().GenerateReturn(t)
}

// Generate produces a random wire value of t.
func (g *Generator) Generate(t idl.Type) (any, error) {
	return g.run([]idl.Type{t}, frame{}, false)
}

// GenerateReturn produces a random wire value of t shaped like a method
// result: vectors hold at most DefaultReturnVecMaxLen elements, and exactly
// one inside a recursive type.
func (g *Generator) GenerateReturn(t idl.Type) (any, error) {
	return g.run([]idl.Type{t}, frame{ret: true}, false)
}

// GenerateArgs produces one value per argument of fn.
func (g *Generator) GenerateArgs(fn *idl.FuncType) ([]any, error) {
	if fn == nil {
		return nil, errors.UnknownKind(errors.PhaseGenerate, nil, fn)
	}
	v, err := g.run(fn.Args, frame{}, true)
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// GenerateResults produces one result-shaped value per result of fn.
func (g *Generator) GenerateResults(fn *idl.FuncType) ([]any, error) {
	if fn == nil {
		return nil, errors.UnknownKind(errors.PhaseGenerate, nil, fn)
	}
	v, err := g.run(fn.Results, frame{ret: true}, true)
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// run generates every type in one context so that recursive memoization
// spans the whole call.
func (g *Generator) run(types []idl.Type, in frame, list bool) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ctx := visitor.NewContext(errors.PhaseGenerate)
	out := make([]any, len(types))
	for i, t := range types {
		v, err := visitor.Dispatch[frame, any](g, t, in, ctx)
		if err != nil {
			if list {
				return nil, errors.WithPath(err, itoa(i))
			}
			return nil, err
		}
		out[i] = v
	}
	if list {
		return out, nil
	}
	return out[0], nil
}

func (g *Generator) gen(t idl.Type, in frame, ctx *visitor.Context) (any, error) {
	return visitor.Dispatch[frame, any](g, t, in, ctx)
}

func (g *Generator) VisitNull(idl.NullType, frame, *visitor.Context) (any, error) {
	return nil, nil
}

func (g *Generator) VisitBool(idl.BoolType, frame, *visitor.Context) (any, error) {
	return g.rnd.Intn(2) == 1, nil
}

func (g *Generator) VisitText(idl.TextType, frame, *visitor.Context) (any, error) {
	return g.text(g.cfg.textLength), nil
}

func (g *Generator) VisitReserved(idl.ReservedType, frame, *visitor.Context) (any, error) {
	return nil, nil
}

func (g *Generator) VisitEmpty(idl.EmptyType, frame, *visitor.Context) (any, error) {
	return nil, errors.Unsupported(errors.PhaseGenerate, "empty has no values")
}

func (g *Generator) VisitNumber(t idl.NumberType, _ frame, _ *visitor.Context) (any, error) {
	switch {
	case t.IsFloat():
		f := g.rnd.Float64()
		if g.rnd.Intn(2) == 1 {
			f = -f
		}
		if t.Bits == 32 {
			f = float64(float32(f))
		}
		return f, nil
	case t.IsFixed() && t.Bits > 32:
		return g.sample(t)
	default:
		n := int64(g.rnd.Intn(smallIntMagnitude))
		if t.Signed() && g.rnd.Intn(2) == 1 {
			n = -n
		}
		return big.NewInt(n), nil
	}
}

func (g *Generator) VisitPrincipal(idl.PrincipalType, frame, *visitor.Context) (any, error) {
	return g.principal(), nil
}

func (g *Generator) VisitOpt(t *idl.OptType, in frame, ctx *visitor.Context) (any, error) {
	// opt empty and friends only have the absent value.
	if !inhabited(t.Elem) || g.rnd.Float64() < g.cfg.optNone {
		return []any{}, nil
	}
	v, err := g.gen(t.Elem, in, ctx)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func (g *Generator) VisitVec(t *idl.VecType, in frame, ctx *visitor.Context) (any, error) {
	var n int
	switch {
	case in.ret && in.recursive:
		n = 1
	case in.ret:
		n = g.rnd.Intn(g.cfg.returnVecMax + 1)
	default:
		n = g.rnd.Intn(g.cfg.vecMaxLen + 1)
	}

	if t.IsBlob() {
		raw := make([]byte, n)
		_, _ = g.rnd.Read(raw)
		return raw, nil
	}

	out := make([]any, n)
	for i := range out {
		v, err := g.gen(t.Elem, in, ctx)
		if err != nil {
			return nil, errors.WithPath(err, itoa(i))
		}
		out[i] = v
	}
	return out, nil
}

func (g *Generator) VisitTuple(t *idl.TupleType, in frame, ctx *visitor.Context) (any, error) {
	out := make([]any, len(t.Components))
	for i, c := range t.Components {
		v, err := g.gen(c, in, ctx)
		if err != nil {
			return nil, errors.WithPath(err, itoa(i))
		}
		out[i] = v
	}
	return out, nil
}

func (g *Generator) VisitRecord(t *idl.RecordType, in frame, ctx *visitor.Context) (any, error) {
	out := make(map[string]any, len(t.Fields))
	for _, f := range t.Fields {
		v, err := g.gen(f.Type, in, ctx)
		if err != nil {
			return nil, errors.WithPath(err, f.Name)
		}
		out[f.Name] = v
	}
	return out, nil
}

func (g *Generator) VisitVariant(t *idl.VariantType, in frame, ctx *visitor.Context) (any, error) {
	options := make([]idl.Field, 0, len(t.Options))
	for _, o := range t.Options {
		if inhabited(o.Type) {
			options = append(options, o)
		}
	}
	if len(options) == 0 {
		return nil, errors.Unsupported(errors.PhaseGenerate, "variant without inhabited options has no values")
	}
	o := options[g.rnd.Intn(len(options))]
	v, err := g.gen(o.Type, in, ctx)
	if err != nil {
		return nil, errors.WithPath(err, o.Name)
	}
	return map[string]any{o.Name: v}, nil
}

func (g *Generator) VisitRec(t *idl.RecType, in frame, ctx *visitor.Context) (any, error) {
	if v, ok := ctx.Memo(t); ok {
		return v, nil
	}
	if ctx.Enter(t) > 1 {
		Logger().Debug("recursive re-entry, using minimal value", zap.String("label", t.Label))
		v, ok := Minimal(t)
		if !ok {
			return nil, errors.Unsupported(errors.PhaseGenerate,
				"recursive type "+t.Label+" has no finite values")
		}
		return v, nil
	}
	in.recursive = true
	v, err := g.gen(t.Target(), in, ctx)
	if err != nil {
		return nil, err
	}
	ctx.SetMemo(t, v)
	return v, nil
}

func (g *Generator) VisitFunc(*idl.FuncType, frame, *visitor.Context) (any, error) {
	return idl.FuncRef{Service: g.principal(), Method: g.text(g.cfg.textLength)}, nil
}

func (g *Generator) VisitService(*idl.ServiceType, frame, *visitor.Context) (any, error) {
	return g.principal(), nil
}

// sample draws ceil(bits/8) random bytes, masks them to the bit width and
// reinterprets them as two's complement for signed types, until the value
// falls in range or the attempts run out.
func (g *Generator) sample(t idl.NumberType) (*big.Int, error) {
	lo, hi, _ := t.Range()
	if g.cfg.rangeLo != nil && g.cfg.rangeLo.Cmp(lo) > 0 {
		lo = g.cfg.rangeLo
	}
	if g.cfg.rangeHi != nil && g.cfg.rangeHi.Cmp(hi) < 0 {
		hi = g.cfg.rangeHi
	}

	modulus := new(big.Int).Lsh(big.NewInt(1), uint(t.Bits))
	mask := new(big.Int).Sub(modulus, big.NewInt(1))
	buf := make([]byte, (t.Bits+7)/8)
	signed := t.Signed()

	for attempt := 0; attempt < g.cfg.maxAttempts; attempt++ {
		_, _ = g.rnd.Read(buf)
		n := new(big.Int).SetBytes(buf)
		n.And(n, mask)
		if signed && n.Bit(t.Bits-1) == 1 {
			n.Sub(n, modulus)
		}
		if n.Cmp(lo) >= 0 && n.Cmp(hi) < 0 {
			return n, nil
		}
	}

	Logger().Debug("integer sampler exhausted",
		zap.Int("bits", t.Bits),
		zap.Bool("signed", signed),
		zap.Int("attempts", g.cfg.maxAttempts))
	return nil, errors.GenerationExhausted(nil, t.Bits, signed, g.cfg.maxAttempts)
}

func (g *Generator) text(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.rnd.Intn(len(alphabet))]
	}
	return string(b)
}

func (g *Generator) principal() principal.Principal {
	raw := make([]byte, PrincipalLength)
	_, _ = g.rnd.Read(raw)
	return principal.MustFromBytes(raw)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
