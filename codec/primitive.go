package codec

import (
	"math/big"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/principal"
)

type nullCodec struct{}

func (nullCodec) Type() idl.Type { return idl.Null }

func (nullCodec) Decode(w any) (any, error) {
	if w != nil {
		return nil, mismatch(errors.PhaseDecode, w, idl.Null)
	}
	return nil, nil
}

func (nullCodec) Encode(d any) (any, error) {
	if d != nil {
		return nil, mismatch(errors.PhaseEncode, d, idl.Null)
	}
	return nil, nil
}

type boolCodec struct{}

func (boolCodec) Type() idl.Type { return idl.Bool }

func (boolCodec) Decode(w any) (any, error) {
	if _, ok := w.(bool); !ok {
		return nil, mismatch(errors.PhaseDecode, w, idl.Bool)
	}
	return w, nil
}

func (boolCodec) Encode(d any) (any, error) {
	if _, ok := d.(bool); !ok {
		return nil, mismatch(errors.PhaseEncode, d, idl.Bool)
	}
	return d, nil
}

type textCodec struct{}

func (textCodec) Type() idl.Type { return idl.Text }

func (textCodec) Decode(w any) (any, error) {
	if _, ok := w.(string); !ok {
		return nil, mismatch(errors.PhaseDecode, w, idl.Text)
	}
	return w, nil
}

func (textCodec) Encode(d any) (any, error) {
	if _, ok := d.(string); !ok {
		return nil, mismatch(errors.PhaseEncode, d, idl.Text)
	}
	return d, nil
}

type reservedCodec struct{}

func (reservedCodec) Type() idl.Type            { return idl.Reserved }
func (reservedCodec) Decode(w any) (any, error) { return w, nil }
func (reservedCodec) Encode(d any) (any, error) { return d, nil }

type emptyCodec struct{}

func (emptyCodec) Type() idl.Type { return idl.Empty }

func (emptyCodec) Decode(any) (any, error) {
	return nil, errors.InvalidData(errors.PhaseDecode, nil, "empty has no values")
}

func (emptyCodec) Encode(any) (any, error) {
	return nil, errors.InvalidData(errors.PhaseEncode, nil, "empty has no values")
}

// floatCodec keeps floats numeric in both directions.
type floatCodec struct {
	typ idl.NumberType
}

func (c floatCodec) Type() idl.Type { return c.typ }

func (c floatCodec) Decode(w any) (any, error) {
	f, ok := idl.ToFloat(w)
	if !ok {
		return nil, mismatch(errors.PhaseDecode, w, c.typ)
	}
	return f, nil
}

func (c floatCodec) Encode(d any) (any, error) {
	return floatFromDisplay(c.typ, d)
}

// bigIntCodec displays unbounded and 64-bit integers as decimal strings.
type bigIntCodec struct {
	typ idl.NumberType
}

func (c bigIntCodec) Type() idl.Type { return c.typ }

func (c bigIntCodec) Decode(w any) (any, error) {
	n, err := wireInt(c.typ, w)
	if err != nil {
		return nil, err
	}
	return n.String(), nil
}

func (c bigIntCodec) Encode(d any) (any, error) {
	return encodeInt(c.typ, d)
}

// smallIntCodec displays integers of at most 32 bits as int64.
type smallIntCodec struct {
	typ idl.NumberType
}

func (c smallIntCodec) Type() idl.Type { return c.typ }

func (c smallIntCodec) Decode(w any) (any, error) {
	n, err := wireInt(c.typ, w)
	if err != nil {
		return nil, err
	}
	return n.Int64(), nil
}

func (c smallIntCodec) Encode(d any) (any, error) {
	return encodeInt(c.typ, d)
}

func wireInt(t idl.NumberType, w any) (*big.Int, error) {
	n, ok := idl.ToBigInt(w)
	if !ok {
		return nil, mismatch(errors.PhaseDecode, w, t)
	}
	if err := checkRange(errors.PhaseDecode, t, n); err != nil {
		return nil, err
	}
	return n, nil
}

func encodeInt(t idl.NumberType, d any) (any, error) {
	n, err := bigFromDisplay(t, d)
	if err != nil {
		return nil, err
	}
	if err := checkRange(errors.PhaseEncode, t, n); err != nil {
		return nil, err
	}
	return n, nil
}

type principalCodec struct {
	typ idl.Type
}

func (c principalCodec) Type() idl.Type { return c.typ }

func (c principalCodec) Decode(w any) (any, error) {
	p, ok := w.(principal.Principal)
	if !ok {
		return nil, mismatch(errors.PhaseDecode, w, c.typ)
	}
	return p.Text(), nil
}

func (c principalCodec) Encode(d any) (any, error) {
	return encodePrincipal(c.typ, d)
}

func encodePrincipal(t idl.Type, d any) (principal.Principal, error) {
	switch v := d.(type) {
	case principal.Principal:
		return v, nil
	case string:
		p, err := principal.FromText(v)
		if err != nil {
			return principal.Principal{}, errors.New(errors.PhaseEncode, errors.KindParseError).
				IdlType(t.Name()).
				Value(v).
				Cause(err).
				Detail("cannot parse %q", v).
				Build()
		}
		return p, nil
	default:
		return principal.Principal{}, mismatch(errors.PhaseEncode, d, t)
	}
}

// serviceRefCodec displays a service reference as its principal text.
type serviceRefCodec struct {
	typ *idl.ServiceType
}

func (c serviceRefCodec) Type() idl.Type { return c.typ }

func (c serviceRefCodec) Decode(w any) (any, error) {
	return principalCodec{typ: c.typ}.Decode(w)
}

func (c serviceRefCodec) Encode(d any) (any, error) {
	return encodePrincipal(c.typ, d)
}

// funcRefCodec displays a function reference as [principalText, method].
type funcRefCodec struct {
	typ *idl.FuncType
}

func (c funcRefCodec) Type() idl.Type { return c.typ }

func (c funcRefCodec) Decode(w any) (any, error) {
	ref, ok := w.(idl.FuncRef)
	if !ok {
		return nil, mismatch(errors.PhaseDecode, w, c.typ)
	}
	return []any{ref.Service.Text(), ref.Method}, nil
}

func (c funcRefCodec) Encode(d any) (any, error) {
	if ref, ok := d.(idl.FuncRef); ok {
		return ref, nil
	}
	seq, ok := asSlice(d)
	if !ok || len(seq) != 2 {
		return nil, mismatch(errors.PhaseEncode, d, c.typ)
	}
	method, ok := seq[1].(string)
	if !ok {
		return nil, errors.WithPath(mismatch(errors.PhaseEncode, seq[1], idl.Text), "1")
	}
	p, err := encodePrincipal(idl.Principal, seq[0])
	if err != nil {
		return nil, errors.WithPath(err, "0")
	}
	return idl.FuncRef{Service: p, Method: method}, nil
}
