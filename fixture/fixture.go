// Package fixture records generated method calls as canonical CBOR files.
//
// A fixture holds one set of generated arguments and results for a method,
// stored in display form so that the files stay readable by any CBOR tool
// and stable across runs: canonical encoding makes equal fixtures encode to
// equal bytes. Loading a fixture checks the stored signature against the
// method before turning the values back into wire form.
package fixture

import (
	"fmt"
	"os"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/B3Pay/ic-reactor-go/codec"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/generate"
	"github.com/B3Pay/ic-reactor-go/idl"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("fixture: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("fixture: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// Fixture is one recorded call.
type Fixture struct {
	Method    string `cbor:"method"`
	Signature string `cbor:"signature"`
	Args      []any  `cbor:"args"`
	Results   []any  `cbor:"results"`
	Seed      int64  `cbor:"seed,omitempty"`
}

// Record generates arguments and results for fn and keeps their display
// form.
func Record(g *generate.Generator, method string, fn *idl.FuncType) (*Fixture, error) {
	if fn == nil {
		return nil, errors.UnknownKind(errors.PhaseGenerate, []string{method}, fn)
	}
	args, err := g.GenerateArgs(fn)
	if err != nil {
		return nil, errors.WithPath(err, method)
	}
	results, err := g.GenerateResults(fn)
	if err != nil {
		return nil, errors.WithPath(err, method)
	}

	f := &Fixture{Method: method, Signature: fn.Name()}
	if f.Args, err = display(fn.Args, args, "args"); err != nil {
		return nil, errors.WithPath(err, method)
	}
	if f.Results, err = display(fn.Results, results, "results"); err != nil {
		return nil, errors.WithPath(err, method)
	}
	return f, nil
}

// Wire converts the stored values back into wire form for fn.
func (f *Fixture) Wire(fn *idl.FuncType) (args, results []any, err error) {
	if fn == nil {
		return nil, nil, errors.UnknownKind(errors.PhaseEncode, []string{f.Method}, fn)
	}
	if fn.Name() != f.Signature {
		return nil, nil, errors.ContractViolation(errors.PhaseEncode, []string{f.Method},
			fmt.Sprintf("fixture recorded for %s, method is %s", f.Signature, fn.Name()))
	}
	if args, err = wire(fn.Args, f.Args, "args"); err != nil {
		return nil, nil, errors.WithPath(err, f.Method)
	}
	if results, err = wire(fn.Results, f.Results, "results"); err != nil {
		return nil, nil, errors.WithPath(err, f.Method)
	}
	return args, results, nil
}

// Marshal encodes f canonically.
func Marshal(f *Fixture) ([]byte, error) {
	return encMode.Marshal(f)
}

// Unmarshal decodes a fixture. Maps decode with string keys.
func Unmarshal(data []byte) (*Fixture, error) {
	var f Fixture
	if err := decMode.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "fixture: unmarshal")
	}
	return &f, nil
}

// Save writes f to path.
func Save(path string, f *Fixture) error {
	data, err := Marshal(f)
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "fixture: marshal")
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a fixture written by Save.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindNotFound, err, path)
	}
	return Unmarshal(data)
}

func display(types []idl.Type, values []any, prefix string) ([]any, error) {
	out := make([]any, len(types))
	for i, t := range types {
		c, err := codec.Derive(t)
		if err != nil {
			return nil, errors.WithPath(err, prefix, fmt.Sprint(i))
		}
		d, err := c.Decode(values[i])
		if err != nil {
			return nil, errors.WithPath(err, prefix, fmt.Sprint(i))
		}
		out[i] = plain(d)
	}
	return out, nil
}

func wire(types []idl.Type, values []any, prefix string) ([]any, error) {
	if len(values) != len(types) {
		return nil, errors.ContractViolation(errors.PhaseEncode, []string{prefix},
			fmt.Sprintf("expected %d values, got %d", len(types), len(values)))
	}
	out := make([]any, len(types))
	for i, t := range types {
		c, err := codec.Derive(t)
		if err != nil {
			return nil, errors.WithPath(err, prefix, fmt.Sprint(i))
		}
		w, err := c.Encode(values[i])
		if err != nil {
			return nil, errors.WithPath(err, prefix, fmt.Sprint(i))
		}
		out[i] = w
	}
	return out, nil
}

// plain rewrites display variants into their tagged map form, the only
// display shape CBOR cannot carry as is.
func plain(d any) any {
	switch v := d.(type) {
	case codec.Variant:
		m := map[string]any{codec.TypeKey: v.Tag}
		if v.Value != nil {
			m[v.Tag] = plain(v.Value)
		}
		return m
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	}
	return d
}
