package fields

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/B3Pay/ic-reactor-go/codec"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

var validate = validator.New()

// Validate checks a form value against the field. Failures of independent
// children are all reported; use Messages to list them. Each failure is an
// *errors.Error in the validate phase whose Path locates the offending
// value.
func (f *Field) Validate(v any) error {
	return f.check(v)
}

// Messages returns one human-readable line per failure in err.
func Messages(err error) []string {
	errs := multierr.Errors(err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		var ee *errors.Error
		if stderrors.As(e, &ee) {
			out = append(out, ee.Message())
			continue
		}
		out = append(out, e.Error())
	}
	return out
}

func (f *Field) check(v any) error {
	switch f.Kind {
	case KindRecord:
		return f.checkRecord(v)
	case KindTuple:
		return f.checkTuple(v)
	case KindVariant:
		return f.checkVariant(v)
	case KindOptional:
		return f.checkOptional(v)
	case KindVector:
		return f.checkVector(v)
	case KindRecursive:
		inner, err := f.target()
		if err != nil {
			return err
		}
		return inner.check(v)
	case KindNumber:
		if err := f.checkNumberText(v); err != nil {
			return err
		}
	case KindPrincipal:
		if s, ok := v.(string); ok {
			tag := fmt.Sprintf("required,min=%d,max=%d", f.MinLength, f.MaxLength)
			if err := validate.Var(s, tag); err != nil {
				return validationError(s, err)
			}
		}
	}
	return f.checkValue(v)
}

// checkValue encodes v with the codec of the field's type and runs the
// structural check on the result.
func (f *Field) checkValue(v any) error {
	c, err := codec.Derive(f.Type)
	if err != nil {
		return err
	}
	w, err := c.Encode(v)
	if err != nil {
		return rephase(err)
	}
	return idl.Check(f.Type, w)
}

func (f *Field) checkNumberText(v any) error {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = string(x)
	default:
		return nil
	}
	tag := "required,numeric"
	if f.Number != nil && f.Number.IsFloat {
		tag = "required"
	}
	if err := validate.Var(s, tag); err != nil {
		return validationError(s, err)
	}
	return nil
}

func (f *Field) checkRecord(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return f.mismatch(v)
	}
	var err error
	for _, c := range f.Fields {
		err = multierr.Append(err, under(c.check(m[c.Label]), c.Label))
	}
	return err
}

func (f *Field) checkTuple(v any) error {
	s, ok := v.([]any)
	if !ok {
		return f.mismatch(v)
	}
	if len(s) != len(f.Fields) {
		return errors.ContractViolation(errors.PhaseValidate, nil,
			fmt.Sprintf("expected %d values, got %d", len(f.Fields), len(s)))
	}
	var err error
	for i, c := range f.Fields {
		err = multierr.Append(err, under(c.check(s[i]), strconv.Itoa(i)))
	}
	return err
}

func (f *Field) checkVariant(v any) error {
	vr, err := codec.ToVariant(v)
	if err != nil {
		return rephase(err)
	}
	c, ok := f.Field(vr.Tag)
	if !ok {
		return errors.ContractViolation(errors.PhaseValidate, nil, "unknown variant option "+strconv.Quote(vr.Tag))
	}
	return under(c.check(vr.Value), vr.Tag)
}

// checkOptional accepts nil or a sequence of length 0 or 1.
func (f *Field) checkOptional(v any) error {
	if v == nil {
		return nil
	}
	s, ok := v.([]any)
	if !ok {
		return f.mismatch(v)
	}
	switch len(s) {
	case 0:
		return nil
	case 1:
		return f.Inner.check(s[0])
	default:
		return errors.ContractViolation(errors.PhaseValidate, nil,
			fmt.Sprintf("optional holds at most one value, got %d", len(s)))
	}
}

func (f *Field) checkVector(v any) error {
	if v == nil {
		return nil
	}
	s, ok := v.([]any)
	if !ok {
		return f.mismatch(v)
	}
	var err error
	for i, x := range s {
		err = multierr.Append(err, under(f.Item.check(x), strconv.Itoa(i)))
	}
	return err
}

func (f *Field) mismatch(v any) error {
	return errors.TypeMismatch(errors.PhaseValidate, nil, fmt.Sprintf("%T", v), f.Type.Name())
}

// under prefixes the path of every error combined in err.
func under(err error, segment string) error {
	var out error
	for _, e := range multierr.Errors(err) {
		out = multierr.Append(out, errors.WithPath(e, segment))
	}
	return out
}

// rephase copies a structured codec error into the validate phase.
func rephase(err error) error {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return err
	}
	c := *e
	c.Phase = errors.PhaseValidate
	return &c
}

func validationError(value string, err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err, "validation failed")
	}
	ve := verrs[0]
	kind := errors.KindInvalidInput
	if ve.Tag() == "numeric" {
		kind = errors.KindParseError
	}
	return errors.New(errors.PhaseValidate, kind).
		Value(value).
		Cause(err).
		Detail("%s", describe(ve)).
		Build()
}

func describe(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "numeric":
		return "must be a number"
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// Display converts a form value into the display form accepted by the
// codec of the field's type.
func (f *Field) Display(v any) (any, error) {
	switch f.Kind {
	case KindOptional:
		if v == nil {
			return nil, nil
		}
		s, ok := v.([]any)
		if !ok {
			return nil, f.mismatch(v)
		}
		switch len(s) {
		case 0:
			return nil, nil
		case 1:
			return f.Inner.Display(s[0])
		default:
			return nil, errors.ContractViolation(errors.PhaseValidate, nil,
				fmt.Sprintf("optional holds at most one value, got %d", len(s)))
		}
	case KindRecord:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, f.mismatch(v)
		}
		out := make(map[string]any, len(f.Fields))
		for _, c := range f.Fields {
			d, err := c.Display(m[c.Label])
			if err != nil {
				return nil, errors.WithPath(err, c.Label)
			}
			out[c.Label] = d
		}
		return out, nil
	case KindTuple, KindVector:
		if v == nil && f.Kind == KindVector {
			return []any{}, nil
		}
		s, ok := v.([]any)
		if !ok {
			return nil, f.mismatch(v)
		}
		out := make([]any, len(s))
		for i, x := range s {
			c := f.Item
			if f.Kind == KindTuple {
				if i >= len(f.Fields) {
					return nil, errors.OutOfBounds(errors.PhaseValidate, nil, i, len(f.Fields))
				}
				c = f.Fields[i]
			}
			d, err := c.Display(x)
			if err != nil {
				return nil, errors.WithPath(err, strconv.Itoa(i))
			}
			out[i] = d
		}
		return out, nil
	case KindVariant:
		vr, err := codec.ToVariant(v)
		if err != nil {
			return nil, rephase(err)
		}
		c, ok := f.Field(vr.Tag)
		if !ok {
			return nil, errors.ContractViolation(errors.PhaseValidate, nil, "unknown variant option "+strconv.Quote(vr.Tag))
		}
		d, err := c.Display(vr.Value)
		if err != nil {
			return nil, errors.WithPath(err, vr.Tag)
		}
		return codec.Variant{Tag: vr.Tag, Value: d}, nil
	case KindRecursive:
		inner, err := f.target()
		if err != nil {
			return nil, err
		}
		return inner.Display(v)
	default:
		return v, nil
	}
}
