package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

func mismatch(phase errors.Phase, v any, t idl.Type) error {
	return errors.TypeMismatch(phase, nil, fmt.Sprintf("%T", v), t.Name())
}

// bigFromDisplay accepts the integer forms a form or JSON document holds:
// decimal strings, json.Number, integral floats and Go integers.
func bigFromDisplay(t idl.NumberType, v any) (*big.Int, error) {
	switch x := v.(type) {
	case string:
		return parseBig(t, x)
	case json.Number:
		return parseBig(t, string(x))
	case float64:
		return bigFromFloat(t, x)
	case float32:
		return bigFromFloat(t, float64(x))
	}
	if n, ok := idl.ToBigInt(v); ok {
		return new(big.Int).Set(n), nil
	}
	return nil, mismatch(errors.PhaseEncode, v, t)
}

func parseBig(t idl.NumberType, s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, errors.ParseError(errors.PhaseEncode, nil, t.Name(), s)
	}
	return n, nil
}

func bigFromFloat(t idl.NumberType, f float64) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, errors.ParseError(errors.PhaseEncode, nil, t.Name(), strconv.FormatFloat(f, 'g', -1, 64))
	}
	n, _ := big.NewFloat(f).Int(nil)
	return n, nil
}

func floatFromDisplay(t idl.NumberType, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, errors.ParseError(errors.PhaseEncode, nil, t.Name(), string(x))
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errors.ParseError(errors.PhaseEncode, nil, t.Name(), x)
		}
		return f, nil
	}
	if n, ok := idl.ToBigInt(v); ok {
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, nil
	}
	return 0, mismatch(errors.PhaseEncode, v, t)
}

func checkRange(phase errors.Phase, t idl.NumberType, n *big.Int) error {
	if !idl.InRange(t, n) {
		return errors.Overflow(phase, nil, n.String(), t.Name())
	}
	return nil
}

// asSlice returns v as []any, converting other slice and array types.
// A nil value is an empty slice.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case nil:
		return []any{}, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
