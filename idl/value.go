package idl

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/principal"
)

// FuncRef is the wire value of a func type: a method on a service.
type FuncRef struct {
	Service principal.Principal
	Method  string
}

// ToBigInt converts the integer representations accepted on the wire.
func ToBigInt(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, false
		}
		return n, true
	case big.Int:
		return &n, true
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return big.NewInt(int64(n)), true
	case uint16:
		return big.NewInt(int64(n)), true
	case uint32:
		return big.NewInt(int64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	default:
		return nil, false
	}
}

// ToFloat converts the float representations accepted on the wire.
func ToFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	default:
		return 0, false
	}
}

// InRange reports whether n is a valid value of the integer type t.
func InRange(t NumberType, n *big.Int) bool {
	lo, hi, bounded := t.Range()
	if lo != nil && n.Cmp(lo) < 0 {
		return false
	}
	return !bounded || n.Cmp(hi) < 0
}

// Check reports whether wire value v inhabits t. The error carries the
// path of the first offending component.
func Check(t Type, v any) error {
	return check(t, v, nil)
}

func check(t Type, v any, path []string) error {
	mismatch := func() error {
		return errors.TypeMismatch(errors.PhaseValidate, path, fmt.Sprintf("%T", v), typeName(t))
	}

	switch tt := t.(type) {
	case NullType:
		if v != nil {
			return mismatch()
		}
	case BoolType:
		if _, ok := v.(bool); !ok {
			return mismatch()
		}
	case TextType:
		if _, ok := v.(string); !ok {
			return mismatch()
		}
	case ReservedType:
	case EmptyType:
		return errors.ContractViolation(errors.PhaseValidate, path, "empty has no values")
	case NumberType:
		if tt.IsFloat() {
			f, ok := ToFloat(v)
			if !ok {
				return mismatch()
			}
			if tt.Bits == 32 && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
				return errors.Overflow(errors.PhaseValidate, path, f, tt.Name())
			}
			return nil
		}
		n, ok := ToBigInt(v)
		if !ok {
			return mismatch()
		}
		if !InRange(tt, n) {
			return errors.Overflow(errors.PhaseValidate, path, n.String(), tt.Name())
		}
	case PrincipalType:
		if _, ok := v.(principal.Principal); !ok {
			return mismatch()
		}
	case *OptType:
		seq, ok := v.([]any)
		if !ok {
			return mismatch()
		}
		if len(seq) > 1 {
			return errors.ContractViolation(errors.PhaseValidate, path,
				fmt.Sprintf("opt value holds %d elements", len(seq)))
		}
		if len(seq) == 1 {
			return check(tt.Elem, seq[0], path)
		}
	case *VecType:
		if tt.IsBlob() {
			if _, ok := v.([]byte); ok {
				return nil
			}
		}
		seq, ok := v.([]any)
		if !ok {
			return mismatch()
		}
		for i, e := range seq {
			if err := check(tt.Elem, e, appendPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
	case *TupleType:
		seq, ok := v.([]any)
		if !ok {
			return mismatch()
		}
		if len(seq) != len(tt.Components) {
			return errors.ContractViolation(errors.PhaseValidate, path,
				fmt.Sprintf("tuple expects %d components, got %d", len(tt.Components), len(seq)))
		}
		for i, c := range tt.Components {
			if err := check(c, seq[i], appendPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
	case *RecordType:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch()
		}
		for _, f := range tt.Fields {
			fv, present := m[f.Name]
			if !present {
				if Optional(f.Type) {
					continue
				}
				return errors.FieldMissing(errors.PhaseValidate, path, f.Name)
			}
			if err := check(f.Type, fv, appendPath(path, f.Name)); err != nil {
				return err
			}
		}
	case *VariantType:
		m, ok := v.(map[string]any)
		if !ok {
			return mismatch()
		}
		tag, payload, err := SingleTag(m)
		if err != nil {
			return errors.WithPath(err, path...)
		}
		ot, known := tt.Lookup(tag)
		if !known {
			return errors.ContractViolation(errors.PhaseValidate, path,
				fmt.Sprintf("unknown variant tag %q", tag))
		}
		return check(ot, payload, appendPath(path, tag))
	case *RecType:
		if tt.Target() == nil {
			return errors.UnknownKind(errors.PhaseValidate, path, tt)
		}
		return check(tt.Target(), v, path)
	case *FuncType:
		if _, ok := v.(FuncRef); !ok {
			return mismatch()
		}
	case *ServiceType:
		if _, ok := v.(principal.Principal); !ok {
			return mismatch()
		}
	default:
		return errors.UnknownKind(errors.PhaseValidate, path, t)
	}
	return nil
}

// Optional reports whether a record field of type t may be absent.
func Optional(t Type) bool {
	switch Unwrap(t).(type) {
	case *OptType, NullType, ReservedType:
		return true
	default:
		return false
	}
}

// SingleTag extracts the only entry of a variant value.
func SingleTag(m map[string]any) (string, any, error) {
	if len(m) != 1 {
		return "", nil, errors.ContractViolation(errors.PhaseValidate, nil,
			fmt.Sprintf("variant value must hold exactly one tag, got %d", len(m)))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, nil
}

// ValueString renders wire value v of type t in candid textual syntax.
// Values that do not inhabit t fall back to their Go formatting.
func ValueString(t Type, v any) string {
	var b strings.Builder
	writeValue(&b, t, v)
	return b.String()
}

func writeValue(b *strings.Builder, t Type, v any) {
	fallback := func() { fmt.Fprintf(b, "%v", v) }

	switch tt := t.(type) {
	case NullType:
		b.WriteString("null")
	case BoolType:
		if x, ok := v.(bool); ok {
			b.WriteString(strconv.FormatBool(x))
			return
		}
		fallback()
	case TextType:
		if s, ok := v.(string); ok {
			b.WriteString(strconv.Quote(s))
			return
		}
		fallback()
	case ReservedType:
		b.WriteString("reserved")
	case NumberType:
		if tt.IsFloat() {
			if f, ok := ToFloat(v); ok {
				b.WriteString(strconv.FormatFloat(f, 'g', -1, tt.Bits))
				return
			}
		} else if n, ok := ToBigInt(v); ok {
			b.WriteString(n.String())
			return
		}
		fallback()
	case PrincipalType:
		if p, ok := v.(principal.Principal); ok {
			fmt.Fprintf(b, "principal %q", p.Text())
			return
		}
		fallback()
	case *OptType:
		seq, ok := v.([]any)
		switch {
		case !ok:
			fallback()
		case len(seq) == 0:
			b.WriteString("null")
		default:
			b.WriteString("opt ")
			writeValue(b, tt.Elem, seq[0])
		}
	case *VecType:
		if raw, ok := v.([]byte); ok && tt.IsBlob() {
			b.WriteString(`blob "`)
			for _, c := range raw {
				fmt.Fprintf(b, `\%02x`, c)
			}
			b.WriteByte('"')
			return
		}
		seq, ok := v.([]any)
		if !ok {
			fallback()
			return
		}
		b.WriteString("vec {")
		for i, e := range seq {
			if i > 0 {
				b.WriteString("; ")
			}
			writeValue(b, tt.Elem, e)
		}
		b.WriteByte('}')
	case *TupleType:
		seq, ok := v.([]any)
		if !ok || len(seq) != len(tt.Components) {
			fallback()
			return
		}
		b.WriteString("record {")
		for i, c := range tt.Components {
			if i > 0 {
				b.WriteString("; ")
			}
			writeValue(b, c, seq[i])
		}
		b.WriteByte('}')
	case *RecordType:
		m, ok := v.(map[string]any)
		if !ok {
			fallback()
			return
		}
		b.WriteString("record {")
		first := true
		for _, f := range tt.Fields {
			fv, present := m[f.Name]
			if !present {
				continue
			}
			if !first {
				b.WriteString("; ")
			}
			first = false
			b.WriteString(quoteLabel(f.Name))
			b.WriteString(" = ")
			writeValue(b, f.Type, fv)
		}
		b.WriteByte('}')
	case *VariantType:
		m, ok := v.(map[string]any)
		if !ok || len(m) != 1 {
			fallback()
			return
		}
		tag, payload, _ := SingleTag(m)
		ot, _ := tt.Lookup(tag)
		b.WriteString("variant {")
		b.WriteString(quoteLabel(tag))
		if _, isNull := ot.(NullType); ot != nil && !isNull {
			b.WriteString(" = ")
			writeValue(b, ot, payload)
		}
		b.WriteByte('}')
	case *RecType:
		if tt.Target() == nil {
			fallback()
			return
		}
		writeValue(b, tt.Target(), v)
	case *FuncType:
		if ref, ok := v.(FuncRef); ok {
			fmt.Fprintf(b, "func %q.%s", ref.Service.Text(), quoteLabel(ref.Method))
			return
		}
		fallback()
	case *ServiceType:
		if p, ok := v.(principal.Principal); ok {
			fmt.Fprintf(b, "service %q", p.Text())
			return
		}
		fallback()
	default:
		fallback()
	}
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
