package codec

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/visitor"
)

// MaxHexBlob is the largest blob displayed as a hex string. Larger blobs
// keep their []byte form.
const MaxHexBlob = 512

type optCodec struct {
	typ   *idl.OptType
	inner Codec
}

func (c *optCodec) Type() idl.Type { return c.typ }

func (c *optCodec) Decode(w any) (any, error) {
	seq, ok := w.([]any)
	if !ok {
		return nil, mismatch(errors.PhaseDecode, w, c.typ)
	}
	switch len(seq) {
	case 0:
		return nil, nil
	case 1:
		return c.inner.Decode(seq[0])
	default:
		return nil, errors.ContractViolation(errors.PhaseDecode, nil,
			fmt.Sprintf("opt value holds %d elements", len(seq)))
	}
}

func (c *optCodec) Encode(d any) (any, error) {
	if d == nil {
		return []any{}, nil
	}
	v, err := c.inner.Encode(d)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

type vecCodec struct {
	typ   *idl.VecType
	inner Codec
}

func (c *vecCodec) Type() idl.Type { return c.typ }

func (c *vecCodec) Decode(w any) (any, error) {
	seq, ok := asSlice(w)
	if !ok {
		return nil, mismatch(errors.PhaseDecode, w, c.typ)
	}
	out := make([]any, len(seq))
	for i, e := range seq {
		v, err := c.inner.Decode(e)
		if err != nil {
			return nil, errors.WithPath(err, itoa(i))
		}
		out[i] = v
	}
	return out, nil
}

func (c *vecCodec) Encode(d any) (any, error) {
	seq, ok := asSlice(d)
	if !ok {
		return nil, mismatch(errors.PhaseEncode, d, c.typ)
	}
	out := make([]any, len(seq))
	for i, e := range seq {
		v, err := c.inner.Encode(e)
		if err != nil {
			return nil, errors.WithPath(err, itoa(i))
		}
		out[i] = v
	}
	return out, nil
}

// blobCodec handles vec nat8, whose wire value is []byte and whose display
// value is a lowercase hex string.
type blobCodec struct {
	typ *idl.VecType
}

func (c *blobCodec) Type() idl.Type { return c.typ }

func (c *blobCodec) Decode(w any) (any, error) {
	raw, err := c.bytes(errors.PhaseDecode, w)
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxHexBlob {
		return raw, nil
	}
	return hex.EncodeToString(raw), nil
}

func (c *blobCodec) Encode(d any) (any, error) {
	if s, ok := d.(string); ok {
		raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, errors.New(errors.PhaseEncode, errors.KindParseError).
				IdlType(c.typ.Name()).
				Value(s).
				Cause(err).
				Detail("cannot parse %q as hex", s).
				Build()
		}
		return raw, nil
	}
	return c.bytes(errors.PhaseEncode, d)
}

func (c *blobCodec) bytes(phase errors.Phase, v any) ([]byte, error) {
	if raw, ok := v.([]byte); ok {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	seq, ok := asSlice(v)
	if !ok {
		return nil, mismatch(phase, v, c.typ)
	}
	out := make([]byte, len(seq))
	for i, e := range seq {
		n, err := bigFromDisplay(idl.Nat8, e)
		if err == nil {
			err = checkRange(phase, idl.Nat8, n)
		}
		if err != nil {
			return nil, errors.WithPath(err, itoa(i))
		}
		out[i] = byte(n.Uint64())
	}
	return out, nil
}

type tupleCodec struct {
	typ        *idl.TupleType
	components []Codec
}

func (c *tupleCodec) Type() idl.Type { return c.typ }

func (c *tupleCodec) Decode(w any) (any, error) {
	return c.each(errors.PhaseDecode, w, Codec.Decode)
}

func (c *tupleCodec) Encode(d any) (any, error) {
	return c.each(errors.PhaseEncode, d, Codec.Encode)
}

func (c *tupleCodec) each(phase errors.Phase, v any, step func(Codec, any) (any, error)) (any, error) {
	seq, ok := asSlice(v)
	if !ok {
		return nil, mismatch(phase, v, c.typ)
	}
	if len(seq) != len(c.components) {
		return nil, errors.ContractViolation(phase, nil,
			fmt.Sprintf("tuple expects %d components, got %d", len(c.components), len(seq)))
	}
	out := make([]any, len(seq))
	for i, comp := range c.components {
		r, err := step(comp, seq[i])
		if err != nil {
			return nil, errors.WithPath(err, itoa(i))
		}
		out[i] = r
	}
	return out, nil
}

type fieldCodec struct {
	name     string
	codec    Codec
	optional bool
}

type recordCodec struct {
	typ    *idl.RecordType
	fields []fieldCodec
}

func (c *recordCodec) Type() idl.Type { return c.typ }

// Decode maps every field of the descriptor. Absent optional fields decode
// to nil; keys outside the descriptor are dropped.
func (c *recordCodec) Decode(w any) (any, error) {
	m, ok := w.(map[string]any)
	if !ok {
		return nil, mismatch(errors.PhaseDecode, w, c.typ)
	}
	out := make(map[string]any, len(c.fields))
	for _, f := range c.fields {
		v, present := m[f.name]
		if !present {
			if !f.optional {
				return nil, errors.FieldMissing(errors.PhaseDecode, nil, f.name)
			}
			out[f.name] = nil
			continue
		}
		dv, err := f.codec.Decode(v)
		if err != nil {
			return nil, errors.WithPath(err, f.name)
		}
		out[f.name] = dv
	}
	return out, nil
}

func (c *recordCodec) Encode(d any) (any, error) {
	m, ok := d.(map[string]any)
	if !ok {
		return nil, mismatch(errors.PhaseEncode, d, c.typ)
	}
	out := make(map[string]any, len(c.fields))
	for _, f := range c.fields {
		v, present := m[f.name]
		if !present && !f.optional {
			return nil, errors.FieldMissing(errors.PhaseEncode, nil, f.name)
		}
		wv, err := f.codec.Encode(v)
		if err != nil {
			return nil, errors.WithPath(err, f.name)
		}
		out[f.name] = wv
	}
	return out, nil
}

type optionCodec struct {
	codec Codec
	null  bool
}

type variantCodec struct {
	typ     *idl.VariantType
	options map[string]optionCodec
}

func (c *variantCodec) Type() idl.Type { return c.typ }

// Decode requires exactly one present key naming a declared option.
func (c *variantCodec) Decode(w any) (any, error) {
	m, ok := w.(map[string]any)
	if !ok {
		return nil, mismatch(errors.PhaseDecode, w, c.typ)
	}
	if len(m) != 1 {
		return nil, errors.ContractViolation(errors.PhaseDecode, nil,
			fmt.Sprintf("variant value must hold exactly one tag, got %d", len(m)))
	}
	for tag, payload := range m {
		opt, known := c.options[tag]
		if !known {
			return nil, errors.ContractViolation(errors.PhaseDecode, nil,
				fmt.Sprintf("unknown variant tag %q", tag))
		}
		if opt.null {
			return Variant{Tag: tag}, nil
		}
		v, err := opt.codec.Decode(payload)
		if err != nil {
			return nil, errors.WithPath(err, tag)
		}
		return Variant{Tag: tag, Value: v}, nil
	}
	return nil, nil
}

func (c *variantCodec) Encode(d any) (any, error) {
	v, err := ToVariant(d)
	if err != nil {
		return nil, err
	}
	opt, known := c.options[v.Tag]
	if !known {
		return nil, errors.ContractViolation(errors.PhaseEncode, nil,
			fmt.Sprintf("unknown variant tag %q", v.Tag))
	}
	if opt.null {
		return map[string]any{v.Tag: nil}, nil
	}
	wv, err := opt.codec.Encode(v.Value)
	if err != nil {
		return nil, errors.WithPath(err, v.Tag)
	}
	return map[string]any{v.Tag: wv}, nil
}

// recCodec is the shared codec of a recursive reference. The target codec
// is derived once, on first use, so that deriving a cyclic type never
// recurses into itself.
type recCodec struct {
	typ     *idl.RecType
	deriver *Deriver

	once  sync.Once
	inner Codec
	err   error
}

func (c *recCodec) Type() idl.Type { return c.typ }

func (c *recCodec) resolve() (Codec, error) {
	c.once.Do(func() {
		if idl.Unwrap(c.typ) == nil {
			c.err = errors.UnknownKind(errors.PhaseDerive, nil, c.typ)
			return
		}
		Logger().Debug("binding recursive codec", zap.String("label", c.typ.Label))
		c.inner, c.err = c.deriver.derive(c.typ.Target(), visitor.NewContext(errors.PhaseDerive))
	})
	return c.inner, c.err
}

func (c *recCodec) Decode(w any) (any, error) {
	inner, err := c.resolve()
	if err != nil {
		return nil, err
	}
	return inner.Decode(w)
}

func (c *recCodec) Encode(d any) (any, error) {
	inner, err := c.resolve()
	if err != nil {
		return nil, err
	}
	return inner.Encode(d)
}

// argsCodec maps an argument list, see Deriver.DeriveArgs.
type argsCodec struct {
	single Codec
	tuple  Codec
}

func (c argsCodec) Type() idl.Type {
	switch {
	case c.single != nil:
		return c.single.Type()
	case c.tuple != nil:
		return c.tuple.Type()
	default:
		return idl.Tuple()
	}
}

func (c argsCodec) Decode(w any) (any, error) {
	seq, ok := asSlice(w)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDecode, nil, fmt.Sprintf("%T", w), "argument list")
	}
	switch {
	case c.tuple != nil:
		return c.tuple.Decode(seq)
	case c.single != nil:
		if len(seq) != 1 {
			return nil, errors.ContractViolation(errors.PhaseDecode, nil,
				fmt.Sprintf("expected 1 value, got %d", len(seq)))
		}
		v, err := c.single.Decode(seq[0])
		return v, errors.WithPath(err, "0")
	default:
		if len(seq) != 0 {
			return nil, errors.ContractViolation(errors.PhaseDecode, nil,
				fmt.Sprintf("expected no values, got %d", len(seq)))
		}
		return nil, nil
	}
}

func (c argsCodec) Encode(d any) (any, error) {
	switch {
	case c.tuple != nil:
		return c.tuple.Encode(d)
	case c.single != nil:
		v, err := c.single.Encode(d)
		if err != nil {
			return nil, errors.WithPath(err, "0")
		}
		return []any{v}, nil
	default:
		return []any{}, nil
	}
}
