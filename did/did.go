package did

import (
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/B3Pay/ic-reactor-go/did/internal/ast"
	"github.com/B3Pay/ic-reactor-go/did/internal/parser"
	"github.com/B3Pay/ic-reactor-go/did/internal/token"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

// Interface is a resolved interface description.
type Interface struct {
	types   map[string]idl.Type
	Service *idl.ServiceType
	Name    string
	Init    []idl.Type
	Names   []string
	Imports []string
}

// Type returns the definition called name.
func (i *Interface) Type(name string) (idl.Type, bool) {
	t, ok := i.types[name]
	return t, ok
}

// Method returns the signature of a service method.
func (i *Interface) Method(name string) (*idl.FuncType, bool) {
	if i.Service == nil {
		return nil, false
	}
	return i.Service.Method(name)
}

// Parse reads interface text. Imports are recorded but not followed; use
// ParseFile to resolve them.
func Parse(source string) (*Interface, error) {
	prog, err := parser.New(token.Tokenize(source)).Parse()
	if err != nil {
		return nil, err
	}
	iface, err := build(prog, nil)
	if err != nil {
		return nil, err
	}
	Logger().Debug("parsed interface",
		zap.Int("types", len(iface.Names)),
		zap.Bool("service", iface.Service != nil))
	return iface, nil
}

// ParseFile reads an interface file and the files it imports, relative to
// the importing file. Imported definitions are visible to the importer;
// "import service" also merges the imported service methods.
func ParseFile(path string) (*Interface, error) {
	l := &loader{seen: map[string]bool{}}
	prog, err := l.load(path)
	if err != nil {
		return nil, err
	}
	return build(prog, l.services)
}

type loader struct {
	seen     map[string]bool
	services []ast.Method
}

// load returns the program with the definitions of every transitive
// import spliced in ahead of its own. Each file contributes once.
func (l *loader) load(path string) (*ast.Program, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, path)
	}
	l.seen[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, path)
	}
	prog, err := parser.New(token.Tokenize(string(data))).Parse()
	if err != nil {
		return nil, errors.WithPath(err, filepath.Base(path))
	}

	var defs []ast.Def
	for _, imp := range prog.Imports {
		target := filepath.Join(filepath.Dir(abs), imp.Path)
		if abs, _ := filepath.Abs(target); l.seen[abs] {
			continue
		}
		Logger().Debug("importing interface", zap.String("from", path), zap.String("path", imp.Path))

		sub, err := l.load(target)
		if err != nil {
			return nil, err
		}
		defs = append(defs, sub.Defs...)
		if imp.Service && sub.Actor != nil {
			svc, ok := sub.Actor.Type.(*ast.Service)
			if !ok {
				return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
					Detail("line %d: imported service %s must be declared inline", imp.Line, imp.Path).
					Build()
			}
			l.services = append(l.services, svc.Methods...)
		}
	}
	prog.Defs = append(defs, prog.Defs...)
	return prog, nil
}

func build(prog *ast.Program, imported []ast.Method) (*Interface, error) {
	b := newBuilder(prog.Defs)
	iface := &Interface{types: map[string]idl.Type{}}

	for _, imp := range prog.Imports {
		iface.Imports = append(iface.Imports, imp.Path)
	}
	for _, def := range prog.Defs {
		if _, ok := b.defs[def.Name]; !ok {
			continue
		}
		t := b.named(def.Name, def.Line)
		if t == nil {
			continue
		}
		if _, dup := iface.types[def.Name]; dup {
			continue
		}
		iface.Names = append(iface.Names, def.Name)
		iface.types[def.Name] = t
	}

	if actor := prog.Actor; actor != nil {
		iface.Name = actor.Name
		iface.Init = b.args(actor.Init)
		iface.Service = b.actor(actor, imported)
	} else if len(imported) > 0 {
		iface.Service = b.service(&ast.Service{Methods: imported})
	}

	if b.err != nil {
		return nil, b.err
	}
	return iface, nil
}

// Errors splits an error returned by Parse or ParseFile into the
// individual problems found.
func Errors(err error) []error {
	return multierr.Errors(err)
}
