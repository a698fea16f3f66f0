package codec

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/visitor"
)

// Codec converts between the wire and display forms of one type.
type Codec interface {
	// Decode converts a wire value into its display form.
	Decode(wire any) (any, error)
	// Encode converts a display value into its wire form.
	Encode(display any) (any, error)
	// Type returns the descriptor the codec was derived from.
	Type() idl.Type
}

// DefaultCacheSize bounds the number of top-level codecs a Deriver keeps.
const DefaultCacheSize = 256

// Deriver builds codecs from type descriptors. Top-level codecs of
// composite descriptors are kept in a bounded LRU cache keyed by
// descriptor identity; primitive descriptors are values and derive
// directly. Codecs of recursive
// references are memoized for the Deriver's lifetime so that every
// occurrence of a *idl.RecType shares one lazily bound codec.
type Deriver struct {
	cache *lru.Cache[idl.Type, Codec]
	recs  sync.Map // *idl.RecType -> *recCodec
}

// Option configures a Deriver.
type Option func(*deriverConfig)

type deriverConfig struct {
	cacheSize int
}

// WithCacheSize sets the number of cached top-level codecs.
func WithCacheSize(n int) Option {
	return func(c *deriverConfig) {
		c.cacheSize = n
	}
}

// NewDeriver returns a Deriver with an empty cache.
func NewDeriver(opts ...Option) *Deriver {
	cfg := deriverConfig{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cacheSize <= 0 {
		cfg.cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[idl.Type, Codec](cfg.cacheSize)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &Deriver{cache: cache}
}

var defaultDeriver = sync.OnceValue(func() *Deriver { return NewDeriver() })

// Derive builds the codec for t with the package default Deriver.
func Derive(t idl.Type) (Codec, error) {
	return defaultDeriver().Derive(t)
}

// Derive builds the codec for t.
func (d *Deriver) Derive(t idl.Type) (Codec, error) {
	if t == nil {
		return nil, errors.UnknownKind(errors.PhaseDerive, nil, t)
	}
	if c, ok := d.cache.Get(t); ok {
		Logger().Debug("codec cache hit", zap.String("type", t.Name()))
		return c, nil
	}

	c, err := visitor.Run[struct{}, Codec](errors.PhaseDerive, d, t, struct{}{})
	if err != nil {
		return nil, err
	}
	if t.Kind().IsComposite() {
		d.cache.Add(t, c)
	}
	Logger().Debug("codec derived", zap.String("type", t.Name()))
	return c, nil
}

// MustDerive is Derive that panics on error.
func (d *Deriver) MustDerive(t idl.Type) Codec {
	c, err := d.Derive(t)
	if err != nil {
		panic(err)
	}
	return c
}

// CacheLen returns the number of cached top-level codecs.
func (d *Deriver) CacheLen() int {
	return d.cache.Len()
}

// Purge drops every cached codec. Codecs already handed out stay valid.
func (d *Deriver) Purge() {
	d.cache.Purge()
	d.recs.Range(func(k, _ any) bool {
		d.recs.Delete(k)
		return true
	})
}

func (d *Deriver) derive(t idl.Type, ctx *visitor.Context) (Codec, error) {
	return visitor.Dispatch[struct{}, Codec](d, t, struct{}{}, ctx)
}

func (d *Deriver) VisitNull(t idl.NullType, _ struct{}, _ *visitor.Context) (Codec, error) {
	return nullCodec{}, nil
}

func (d *Deriver) VisitBool(t idl.BoolType, _ struct{}, _ *visitor.Context) (Codec, error) {
	return boolCodec{}, nil
}

func (d *Deriver) VisitText(t idl.TextType, _ struct{}, _ *visitor.Context) (Codec, error) {
	return textCodec{}, nil
}

func (d *Deriver) VisitReserved(t idl.ReservedType, _ struct{}, _ *visitor.Context) (Codec, error) {
	return reservedCodec{}, nil
}

func (d *Deriver) VisitEmpty(t idl.EmptyType, _ struct{}, _ *visitor.Context) (Codec, error) {
	return emptyCodec{}, nil
}

func (d *Deriver) VisitNumber(t idl.NumberType, _ struct{}, _ *visitor.Context) (Codec, error) {
	switch {
	case t.IsFloat():
		return floatCodec{typ: t}, nil
	case t.IsBig():
		return bigIntCodec{typ: t}, nil
	default:
		return smallIntCodec{typ: t}, nil
	}
}

func (d *Deriver) VisitPrincipal(t idl.PrincipalType, _ struct{}, _ *visitor.Context) (Codec, error) {
	return principalCodec{typ: t}, nil
}

func (d *Deriver) VisitOpt(t *idl.OptType, _ struct{}, ctx *visitor.Context) (Codec, error) {
	inner, err := d.derive(t.Elem, ctx)
	if err != nil {
		return nil, err
	}
	return &optCodec{typ: t, inner: inner}, nil
}

func (d *Deriver) VisitVec(t *idl.VecType, _ struct{}, ctx *visitor.Context) (Codec, error) {
	if t.IsBlob() {
		return &blobCodec{typ: t}, nil
	}
	inner, err := d.derive(t.Elem, ctx)
	if err != nil {
		return nil, err
	}
	return &vecCodec{typ: t, inner: inner}, nil
}

func (d *Deriver) VisitTuple(t *idl.TupleType, _ struct{}, ctx *visitor.Context) (Codec, error) {
	components := make([]Codec, len(t.Components))
	for i, ct := range t.Components {
		c, err := d.derive(ct, ctx)
		if err != nil {
			return nil, errors.WithPath(err, itoa(i))
		}
		components[i] = c
	}
	return &tupleCodec{typ: t, components: components}, nil
}

func (d *Deriver) VisitRecord(t *idl.RecordType, _ struct{}, ctx *visitor.Context) (Codec, error) {
	fields := make([]fieldCodec, len(t.Fields))
	for i, f := range t.Fields {
		c, err := d.derive(f.Type, ctx)
		if err != nil {
			return nil, errors.WithPath(err, f.Name)
		}
		fields[i] = fieldCodec{name: f.Name, codec: c, optional: idl.Optional(f.Type)}
	}
	return &recordCodec{typ: t, fields: fields}, nil
}

func (d *Deriver) VisitVariant(t *idl.VariantType, _ struct{}, ctx *visitor.Context) (Codec, error) {
	options := make(map[string]optionCodec, len(t.Options))
	for _, o := range t.Options {
		c, err := d.derive(o.Type, ctx)
		if err != nil {
			return nil, errors.WithPath(err, o.Name)
		}
		_, isNull := o.Type.(idl.NullType)
		options[o.Name] = optionCodec{codec: c, null: isNull}
	}
	return &variantCodec{typ: t, options: options}, nil
}

// VisitRec returns the shared codec of t, creating it unbound on first
// sight. The target is derived on first Decode or Encode.
func (d *Deriver) VisitRec(t *idl.RecType, _ struct{}, _ *visitor.Context) (Codec, error) {
	if c, ok := d.recs.Load(t); ok {
		return c.(*recCodec), nil
	}
	c, loaded := d.recs.LoadOrStore(t, &recCodec{typ: t, deriver: d})
	if !loaded {
		Logger().Debug("recursive codec created", zap.String("label", t.Label))
	}
	return c.(*recCodec), nil
}

func (d *Deriver) VisitFunc(t *idl.FuncType, _ struct{}, _ *visitor.Context) (Codec, error) {
	return funcRefCodec{typ: t}, nil
}

func (d *Deriver) VisitService(t *idl.ServiceType, _ struct{}, _ *visitor.Context) (Codec, error) {
	return serviceRefCodec{typ: t}, nil
}

// DeriveArgs builds the codec of an argument or result list. Wire values
// are []any holding one element per type. With no types the display value
// is nil; with one type it is the display of that single element; with
// several it is the tuple display.
func (d *Deriver) DeriveArgs(types []idl.Type) (Codec, error) {
	switch len(types) {
	case 0:
		return argsCodec{}, nil
	case 1:
		c, err := d.Derive(types[0])
		if err != nil {
			return nil, errors.WithPath(err, "0")
		}
		return argsCodec{single: c}, nil
	default:
		c, err := d.Derive(idl.Tuple(types...))
		if err != nil {
			return nil, err
		}
		return argsCodec{tuple: c}, nil
	}
}

// MethodCodec holds the argument and result codecs of a function.
type MethodCodec struct {
	Func    *idl.FuncType
	Args    Codec
	Results Codec
}

// DeriveMethod builds the argument and result codecs of fn.
func (d *Deriver) DeriveMethod(fn *idl.FuncType) (*MethodCodec, error) {
	if fn == nil {
		return nil, errors.UnknownKind(errors.PhaseDerive, nil, fn)
	}
	args, err := d.DeriveArgs(fn.Args)
	if err != nil {
		return nil, errors.WithPath(err, "args")
	}
	results, err := d.DeriveArgs(fn.Results)
	if err != nil {
		return nil, errors.WithPath(err, "results")
	}
	return &MethodCodec{Func: fn, Args: args, Results: results}, nil
}

// DeriveArgs builds an argument list codec with the package default Deriver.
func DeriveArgs(types []idl.Type) (Codec, error) {
	return defaultDeriver().DeriveArgs(types)
}

// DeriveMethod builds method codecs with the package default Deriver.
func DeriveMethod(fn *idl.FuncType) (*MethodCodec, error) {
	return defaultDeriver().DeriveMethod(fn)
}

// DeriveService builds method codecs for every method of svc, keyed by
// method name.
func (d *Deriver) DeriveService(svc *idl.ServiceType) (map[string]*MethodCodec, error) {
	if svc == nil {
		return nil, errors.UnknownKind(errors.PhaseDerive, nil, svc)
	}
	out := make(map[string]*MethodCodec, len(svc.Methods))
	for _, m := range svc.Methods {
		mc, err := d.DeriveMethod(m.Func)
		if err != nil {
			return nil, errors.WithPath(err, m.Name)
		}
		out[m.Name] = mc
	}
	return out, nil
}
