package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/B3Pay/ic-reactor-go/errors"
)

// TypeKey is the JSON key holding the tag of a displayed variant.
const TypeKey = "_type"

// Variant is the display form of a variant value. Value is nil for options
// whose payload is null.
type Variant struct {
	Tag   string
	Value any
}

// MarshalJSON renders {"_type": tag, tag: value}, omitting the payload key
// when Value is nil.
func (v Variant) MarshalJSON() ([]byte, error) {
	m := map[string]any{TypeKey: v.Tag}
	if v.Value != nil {
		m[v.Tag] = v.Value
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the form written by MarshalJSON. Numbers are kept as
// json.Number so that big integers survive.
func (v *Variant) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	parsed, err := ToVariant(m)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ToVariant interprets the display forms accepted for a variant: a Variant,
// a map with a "_type" key, a map with a single tag key, or a bare tag
// string for options without payload.
func ToVariant(d any) (Variant, error) {
	switch v := d.(type) {
	case Variant:
		return v, nil
	case *Variant:
		if v != nil {
			return *v, nil
		}
	case string:
		return Variant{Tag: v}, nil
	case map[string]any:
		if raw, ok := v[TypeKey]; ok {
			tag, isString := raw.(string)
			if !isString {
				return Variant{}, errors.ContractViolation(errors.PhaseEncode, nil,
					fmt.Sprintf("variant %s must be a string, got %T", TypeKey, raw))
			}
			for k := range v {
				if k != TypeKey && k != tag {
					return Variant{}, errors.ContractViolation(errors.PhaseEncode, nil,
						fmt.Sprintf("variant %s %q does not match key %q", TypeKey, tag, k))
				}
			}
			return Variant{Tag: tag, Value: v[tag]}, nil
		}
		if len(v) != 1 {
			return Variant{}, errors.ContractViolation(errors.PhaseEncode, nil,
				fmt.Sprintf("variant value must hold exactly one tag, got %d", len(v)))
		}
		for tag, payload := range v {
			return Variant{Tag: tag, Value: payload}, nil
		}
	}
	return Variant{}, errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", d), "variant")
}
