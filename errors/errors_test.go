package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseEncode,
				Kind:    KindTypeMismatch,
				Path:    []string{"user", "address", "zip"},
				GoType:  "bool",
				IdlType: "nat",
				Detail:  "cannot convert",
			},
			contains: []string{"[encode]", "type_mismatch", "user.address.zip", "bool", "nat", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseConfig,
				Kind:   KindInvalidInput,
				Detail: "bad file",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[config]", "invalid_input", "bad file", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{Phase: PhaseEncode, Kind: KindInvalidData, Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestError_Is(t *testing.T) {
	err := &Error{Phase: PhaseEncode, Kind: KindParseError, Path: []string{"foo"}}

	assert.True(t, errors.Is(err, &Error{Phase: PhaseEncode, Kind: KindParseError}))
	assert.False(t, errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindParseError}))
	assert.False(t, errors.Is(err, &Error{Phase: PhaseEncode, Kind: KindOverflow}))
}

func TestBuilder(t *testing.T) {
	cause := errors.New("cause")
	err := New(PhaseEncode, KindParseError).
		Path("owner").
		GoType("string").
		IdlType("principal").
		Value("zz").
		Cause(cause).
		Detail("malformed principal text %q", "zz").
		Build()

	assert.Equal(t, PhaseEncode, err.Phase)
	assert.Equal(t, KindParseError, err.Kind)
	assert.Equal(t, []string{"owner"}, err.Path)
	assert.Equal(t, "string", err.GoType)
	assert.Equal(t, "principal", err.IdlType)
	assert.Equal(t, "zz", err.Value)
	assert.Equal(t, `malformed principal text "zz"`, err.Detail)
	assert.ErrorIs(t, err, cause)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		want string
	}{
		{"parse", ParseError(PhaseEncode, []string{"age"}, "nat", "abc"), KindParseError, `cannot parse "abc"`},
		{"contract", ContractViolation(PhaseDecode, nil, "variant value has 2 keys"), KindContractViolation, "2 keys"},
		{"exhausted signed", GenerationExhausted(nil, 64, true, 1000), KindGenerationExhausted, "64-bit signed integer after 1000 attempts"},
		{"exhausted unsigned", GenerationExhausted(nil, 64, false, 10), KindGenerationExhausted, "64-bit unsigned"},
		{"unknown", UnknownKind(PhaseDerive, nil, nil), KindUnknownKind, "outside the candid grammar"},
		{"missing", FieldMissing(PhaseEncode, nil, "name"), KindFieldMissing, `"name"`},
		{"bounds", OutOfBounds(PhaseDecode, nil, 3, 2), KindOutOfBounds, "index 3 out of bounds (length 2)"},
		{"overflow", Overflow(PhaseEncode, nil, 300, "nat8"), KindOverflow, "300 overflows nat8"},
		{"unsupported", Unsupported(PhaseGenerate, "empty has no values"), KindUnsupported, "empty has no values"},
		{"invalid", InvalidData(PhaseDecode, nil, "odd"), KindInvalidData, "odd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Contains(t, tt.err.Error(), tt.want)
		})
	}
}

func TestWithPath(t *testing.T) {
	err := ParseError(PhaseEncode, []string{"age"}, "nat", "x")
	wrapped := WithPath(WithPath(err, "user"), "arg0")

	var e *Error
	require.ErrorAs(t, wrapped, &e)
	assert.Equal(t, []string{"arg0", "user", "age"}, e.Path)
	assert.Contains(t, e.Error(), "arg0.user.age")

	plain := fmt.Errorf("plain")
	assert.Equal(t, plain, WithPath(plain, "x"))
}

func TestWithPath_LeavesOriginalUntouched(t *testing.T) {
	shared := UnknownKind(PhaseDerive, []string{"x"}, nil)
	for i := 0; i < 3; i++ {
		var e *Error
		require.ErrorAs(t, WithPath(shared, "0"), &e)
		assert.Equal(t, []string{"0", "x"}, e.Path)
	}
	assert.Equal(t, []string{"x"}, shared.Path)
}

func TestKindHelpers(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", ContractViolation(PhaseDecode, nil, "no keys"))

	assert.True(t, IsContractViolation(wrapped))
	assert.False(t, IsParseError(wrapped))
	assert.True(t, IsParseError(ParseError(PhaseEncode, nil, "nat", "")))
	assert.True(t, IsGenerationExhausted(GenerationExhausted(nil, 64, false, 1)))
	assert.True(t, IsUnknownKind(UnknownKind(PhaseDerive, nil, 1)))
	assert.Equal(t, Kind(""), KindOf(errors.New("x")))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "age: value -1 overflows nat", Overflow(PhaseEncode, []string{"age"}, -1, "nat").Message())
	assert.Equal(t, "odd", InvalidData(PhaseDecode, nil, "odd").Message())
	assert.Equal(t, "[decode] out_of_bounds", (&Error{Phase: PhaseDecode, Kind: KindOutOfBounds}).Message())
}
