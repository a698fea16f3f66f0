package icreactor

import (
	"fmt"
	"strings"

	"github.com/B3Pay/ic-reactor-go/codec"
	"github.com/B3Pay/ic-reactor-go/did"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/fields"
	"github.com/B3Pay/ic-reactor-go/generate"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/result"
)

// Derive builds the wire/display codec of t.
func Derive(t idl.Type) (codec.Codec, error) {
	return codec.Derive(t)
}

// DeriveFields builds the form field tree of t.
func DeriveFields(t idl.Type) (*fields.Field, error) {
	return fields.Derive(t)
}

// Generate returns a random wire value of t.
func Generate(t idl.Type) (any, error) {
	return generate.Generate(t)
}

// Format builds the display tree of a wire value of t.
func Format(t idl.Type, v any) (*result.Node, error) {
	return result.Format(t, v)
}

// Reactor binds the methods of one service to their codecs, form fields,
// generator and formatter.
type Reactor struct {
	Interface *did.Interface
	Service   *fields.Service

	codecs    map[string]*codec.MethodCodec
	gen       *generate.Generator
	formatter *result.Formatter
}

// Option configures a Reactor.
type Option func(*Reactor)

// WithGenerator sets the generator used by MockArgs and MockResults.
func WithGenerator(g *generate.Generator) Option {
	return func(r *Reactor) {
		r.gen = g
	}
}

// WithFormatter sets the formatter used by FormatResults.
func WithFormatter(f *result.Formatter) Option {
	return func(r *Reactor) {
		r.formatter = f
	}
}

// Load parses a .did file with its imports.
func Load(path string, opts ...Option) (*Reactor, error) {
	iface, err := did.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(iface, opts...)
}

// Parse parses .did source.
func Parse(source string, opts ...Option) (*Reactor, error) {
	iface, err := did.Parse(source)
	if err != nil {
		return nil, err
	}
	return New(iface, opts...)
}

// New derives everything the methods of iface need.
func New(iface *did.Interface, opts ...Option) (*Reactor, error) {
	if iface == nil || iface.Service == nil {
		return nil, errors.New(errors.PhaseDerive, errors.KindNotFound).
			Detail("interface declares no service").
			Build()
	}
	svc, err := fields.FromService(iface.Service)
	if err != nil {
		return nil, err
	}
	codecs, err := codec.NewDeriver().DeriveService(iface.Service)
	if err != nil {
		return nil, err
	}

	r := &Reactor{
		Interface: iface,
		Service:   svc,
		codecs:    codecs,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.gen == nil {
		r.gen = generate.New()
	}
	if r.formatter == nil {
		r.formatter = result.New()
	}
	return r, nil
}

// Method returns the form metadata of a method.
func (r *Reactor) Method(name string) (*fields.Method, error) {
	m, ok := r.Service.Method(name)
	if !ok {
		return nil, errors.New(errors.PhaseDerive, errors.KindNotFound).
			Path(name).
			Detail("no such method").
			Build()
	}
	return m, nil
}

// EncodeArgs validates form values and returns the wire arguments.
func (r *Reactor) EncodeArgs(method string, form []any) ([]any, error) {
	m, err := r.Method(method)
	if err != nil {
		return nil, err
	}
	return m.Encode(form)
}

// DecodeResults converts wire results into their display form: nil for no
// results, the single display value, or a tuple display.
func (r *Reactor) DecodeResults(method string, wire []any) (any, error) {
	mc, ok := r.codecs[method]
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindNotFound).
			Path(method).
			Detail("no such method").
			Build()
	}
	return mc.Results.Decode(wire)
}

// MockArgs returns random wire arguments for a method.
func (r *Reactor) MockArgs(method string) ([]any, error) {
	m, err := r.Method(method)
	if err != nil {
		return nil, err
	}
	return r.gen.GenerateArgs(m.Func)
}

// MockResults returns random wire results for a method.
func (r *Reactor) MockResults(method string) ([]any, error) {
	m, err := r.Method(method)
	if err != nil {
		return nil, err
	}
	return r.gen.GenerateResults(m.Func)
}

// FormatResults builds one display tree per wire result.
func (r *Reactor) FormatResults(method string, wire []any) ([]*result.Node, error) {
	m, err := r.Method(method)
	if err != nil {
		return nil, err
	}
	return r.formatter.FormatMethod(m.Func, wire)
}

// ArgText renders wire arguments as a candid argument tuple.
func (r *Reactor) ArgText(method string, wire []any) (string, error) {
	m, err := r.Method(method)
	if err != nil {
		return "", err
	}
	if len(wire) != len(m.Func.Args) {
		return "", errors.ContractViolation(errors.PhaseFormat, []string{method},
			fmt.Sprintf("expected %d arguments, got %d", len(m.Func.Args), len(wire)))
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, t := range m.Func.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(idl.ValueString(t, wire[i]))
	}
	b.WriteByte(')')
	return b.String(), nil
}
