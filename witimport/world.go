package witimport

import (
	"fmt"
	"io"
	"os"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

// World builds a service from the functions w exports. Functions of an
// exported interface are named "<export>#<function>", the way component
// exports are addressed. Constructors, methods and static functions belong
// to resources and are skipped.
func (im *Importer) World(w *wit.World) (*idl.ServiceType, error) {
	if w == nil {
		return nil, errors.UnknownKind(errors.PhaseImport, nil, w)
	}
	var methods []idl.Method
	for name, item := range w.Exports.All() {
		switch item := item.(type) {
		case *wit.Function:
			m, ok, err := im.function(name, item)
			if err != nil {
				return nil, err
			}
			if ok {
				methods = append(methods, m)
			}
		case *wit.InterfaceRef:
			if item.Interface == nil {
				continue
			}
			for _, fn := range item.Interface.Functions.All() {
				m, ok, err := im.function(name+"#"+fn.Name, fn)
				if err != nil {
					return nil, err
				}
				if ok {
					methods = append(methods, m)
				}
			}
		}
	}
	Logger().Debug("imported world", zap.String("world", w.Name), zap.Int("methods", len(methods)))
	return idl.Service(methods...), nil
}

func (im *Importer) function(name string, fn *wit.Function) (idl.Method, bool, error) {
	if !fn.IsFreestanding() {
		Logger().Debug("skipping resource function", zap.String("name", name))
		return idl.Method{}, false, nil
	}
	params := make([]wit.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type
	}
	results := make([]wit.Type, len(fn.Results))
	for i, r := range fn.Results {
		results[i] = r.Type
	}
	sig, err := im.Func(params, results)
	if err != nil {
		return idl.Method{}, false, errors.WithPath(err, name)
	}
	return idl.M(name, sig), true, nil
}

// Load decodes a WIT package in the JSON form printed by
// "wasm-tools component wit --json" and imports one of its worlds. An
// empty world name selects the last world, which is the one the package
// itself declares.
func Load(r io.Reader, world string) (*idl.ServiceType, error) {
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImport, errors.KindParseError, err, "invalid WIT JSON")
	}
	if len(res.Worlds) == 0 {
		return nil, errors.New(errors.PhaseImport, errors.KindNotFound).
			Detail("WIT package declares no world").
			Build()
	}

	w := res.Worlds[len(res.Worlds)-1]
	if world != "" {
		w = nil
		for _, candidate := range res.Worlds {
			if candidate.Name == world {
				w = candidate
			}
		}
		if w == nil {
			return nil, errors.New(errors.PhaseImport, errors.KindNotFound).
				Detail("world %q not found", world).
				Build()
		}
	}
	return New().World(w)
}

// LoadFile reads a WIT JSON file, see Load.
func LoadFile(path, world string) (*idl.ServiceType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImport, errors.KindNotFound, err, fmt.Sprintf("cannot read %s", path))
	}
	defer f.Close()

	svc, err := Load(f, world)
	if err != nil {
		return nil, errors.WithPath(err, path)
	}
	return svc, nil
}
