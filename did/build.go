package did

import (
	"strconv"

	"go.uber.org/multierr"

	"github.com/B3Pay/ic-reactor-go/did/internal/ast"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

var primitives = map[string]idl.Type{
	"nat":       idl.Nat,
	"nat8":      idl.Nat8,
	"nat16":     idl.Nat16,
	"nat32":     idl.Nat32,
	"nat64":     idl.Nat64,
	"int":       idl.Int,
	"int8":      idl.Int8,
	"int16":     idl.Int16,
	"int32":     idl.Int32,
	"int64":     idl.Int64,
	"float32":   idl.Float32,
	"float64":   idl.Float64,
	"bool":      idl.Bool,
	"text":      idl.Text,
	"null":      idl.Null,
	"reserved":  idl.Reserved,
	"empty":     idl.Empty,
	"principal": idl.Principal,
}

// builder resolves names to idl types. A definition becomes an
// *idl.RecType only when it is referenced while still being built, so
// plain aliases stay inline and only real cycles are recursive.
type builder struct {
	defs   map[string]ast.Def
	built  map[string]idl.Type
	active map[string]bool
	recs   map[string]*idl.RecType
	err    error
}

func newBuilder(defs []ast.Def) *builder {
	b := &builder{
		defs:   make(map[string]ast.Def, len(defs)),
		built:  map[string]idl.Type{},
		active: map[string]bool{},
		recs:   map[string]*idl.RecType{},
	}
	for _, d := range defs {
		if _, ok := primitives[d.Name]; ok || d.Name == "blob" {
			b.fail(d.Line, "cannot redefine primitive type %s", d.Name)
			continue
		}
		if _, dup := b.defs[d.Name]; dup {
			b.fail(d.Line, "type %s defined twice", d.Name)
			continue
		}
		b.defs[d.Name] = d
	}
	return b
}

func (b *builder) fail(line int, format string, args ...any) {
	b.err = multierr.Append(b.err, errors.New(errors.PhaseParse, errors.KindParseError).
		Detail("line %d: "+format, append([]any{line}, args...)...).
		Build())
}

// named returns the type for a definition, or nil after recording an
// error. Failures are memoized so each is reported once.
func (b *builder) named(name string, line int) idl.Type {
	if t, ok := b.built[name]; ok {
		return t
	}
	if b.active[name] {
		rec, ok := b.recs[name]
		if !ok {
			rec = idl.Rec(name)
			b.recs[name] = rec
		}
		return rec
	}

	def, ok := b.defs[name]
	if !ok {
		b.fail(line, "unknown type %s", name)
		return nil
	}

	b.active[name] = true
	t := b.typ(def.Type)
	delete(b.active, name)
	if t == nil {
		b.built[name] = nil
		return nil
	}

	if rec, ok := b.recs[name]; ok {
		rec.Fill(t)
		if idl.Unwrap(rec) == nil {
			b.fail(def.Line, "type %s is defined only in terms of itself", name)
			b.built[name] = nil
			return nil
		}
		t = rec
	}
	b.built[name] = t
	return t
}

func (b *builder) typ(t ast.Type) idl.Type {
	switch t := t.(type) {
	case *ast.Ref:
		if t.Name == "blob" {
			return idl.Blob()
		}
		if p, ok := primitives[t.Name]; ok {
			return p
		}
		return b.named(t.Name, t.Line)
	case *ast.Principal:
		return idl.Principal
	case *ast.Opt:
		if elem := b.typ(t.Elem); elem != nil {
			return idl.Opt(elem)
		}
	case *ast.Vec:
		if elem := b.typ(t.Elem); elem != nil {
			return idl.Vec(elem)
		}
	case *ast.Record:
		return b.record(t.Fields)
	case *ast.Variant:
		fields := b.fields(t.Fields)
		if fields != nil {
			return idl.Variant(fields...)
		}
	case *ast.Func:
		return b.fn(t)
	case *ast.Service:
		return b.service(t)
	}
	return nil
}

// record turns an all-positional record into a tuple.
func (b *builder) record(fs []ast.Field) idl.Type {
	fields := b.fields(fs)
	if fields == nil {
		return nil
	}
	positional := len(fs) > 0
	for _, f := range fs {
		positional = positional && f.Positional
	}
	if positional {
		components := make([]idl.Type, len(fields))
		for i, f := range fields {
			components[i] = f.Type
		}
		return idl.Tuple(components...)
	}
	return idl.Record(fields...)
}

// fields names positional entries after the highest numeric id seen so
// far and gives bare variant options type null.
func (b *builder) fields(fs []ast.Field) []idl.Field {
	out := make([]idl.Field, 0, len(fs))
	seen := map[string]bool{}
	next := uint64(0)
	ok := true

	for _, f := range fs {
		name := f.Name
		if f.Positional {
			name = strconv.FormatUint(next, 10)
		}
		if n, err := strconv.ParseUint(name, 10, 32); err == nil && n >= next {
			next = n + 1
		}
		if seen[name] {
			b.fail(f.Line, "duplicate field %s", name)
			ok = false
			continue
		}
		seen[name] = true

		var t idl.Type = idl.Null
		if f.Type != nil {
			if t = b.typ(f.Type); t == nil {
				ok = false
				continue
			}
		}
		out = append(out, idl.F(name, t))
	}

	if !ok {
		return nil
	}
	return out
}

func (b *builder) args(as []ast.Arg) []idl.Type {
	if len(as) == 0 {
		return nil
	}
	out := make([]idl.Type, len(as))
	for i, a := range as {
		out[i] = b.typ(a.Type)
	}
	return out
}

func (b *builder) fn(f *ast.Func) *idl.FuncType {
	return idl.Func(b.args(f.Args), b.args(f.Results), f.Annotations...)
}

func (b *builder) service(s *ast.Service) *idl.ServiceType {
	methods := make([]idl.Method, 0, len(s.Methods))
	seen := map[string]bool{}
	for _, m := range s.Methods {
		if seen[m.Name] {
			b.fail(m.Line, "duplicate method %s", m.Name)
			continue
		}
		seen[m.Name] = true

		var fn *idl.FuncType
		switch t := m.Type.(type) {
		case *ast.Func:
			fn = b.fn(t)
		default:
			resolved := b.typ(t)
			if resolved == nil {
				continue
			}
			f, ok := idl.Unwrap(resolved).(*idl.FuncType)
			if !ok {
				b.fail(m.Line, "method %s: %s is not a function type", m.Name, resolved.Name())
				continue
			}
			fn = f
		}
		methods = append(methods, idl.M(m.Name, fn))
	}
	return idl.Service(methods...)
}

// actor resolves the main service and appends methods pulled in with
// "import service".
func (b *builder) actor(a *ast.Actor, imported []ast.Method) *idl.ServiceType {
	if svc, ok := a.Type.(*ast.Service); ok {
		methods := append(append([]ast.Method{}, svc.Methods...), imported...)
		return b.service(&ast.Service{Methods: methods})
	}

	resolved := b.typ(a.Type)
	if resolved == nil {
		return nil
	}
	svc, ok := idl.Unwrap(resolved).(*idl.ServiceType)
	if !ok {
		b.fail(a.Line, "service type %s is not a service", resolved.Name())
		return nil
	}
	if len(imported) == 0 {
		return svc
	}

	methods := append([]idl.Method{}, svc.Methods...)
	for _, m := range b.service(&ast.Service{Methods: imported}).Methods {
		if _, dup := svc.Method(m.Name); dup {
			b.fail(a.Line, "duplicate method %s", m.Name)
			continue
		}
		methods = append(methods, m)
	}
	return idl.Service(methods...)
}
