package fields

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"

	"github.com/B3Pay/ic-reactor-go/codec"
	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/visitor"
)

// FunctionType selects the calling convention of a method.
type FunctionType string

const (
	Query  FunctionType = "query"
	Update FunctionType = "update"
)

// FunctionTypeOf returns Query for query and composite_query functions and
// Update otherwise.
func FunctionTypeOf(fn *idl.FuncType) FunctionType {
	if fn.IsQuery() {
		return Query
	}
	return Update
}

// Method is the form metadata of one service method: one field per
// argument, bound at "[i]" and labeled "argI".
type Method struct {
	Name          string
	FunctionType  FunctionType
	Func          *idl.FuncType
	Order         int
	Fields        []*Field
	DefaultValues []any
}

// FromFunc derives the metadata of the function fn named name.
func FromFunc(name string, fn *idl.FuncType) (*Method, error) {
	if fn == nil {
		return nil, errors.UnknownKind(errors.PhaseDerive, []string{name}, fn)
	}
	m := &Method{
		Name:          name,
		FunctionType:  FunctionTypeOf(fn),
		Func:          fn,
		Fields:        make([]*Field, 0, len(fn.Args)),
		DefaultValues: make([]any, 0, len(fn.Args)),
	}
	ctx := visitor.NewContext(errors.PhaseDerive)
	for i, arg := range fn.Args {
		f, err := visitor.Dispatch[frame, *Field](deriver{}, arg, frame{label: argKey(i), name: index("", i)}, ctx)
		if err != nil {
			return nil, errors.WithPath(err, name, strconv.Itoa(i))
		}
		m.Fields = append(m.Fields, f)
		m.DefaultValues = append(m.DefaultValues, f.DefaultValue)
	}
	return m, nil
}

func argKey(i int) string {
	return "arg" + strconv.Itoa(i)
}

// ArgCount returns the number of arguments.
func (m *Method) ArgCount() int {
	return len(m.Fields)
}

// IsNoArgs reports whether the method takes no arguments.
func (m *Method) IsNoArgs() bool {
	return len(m.Fields) == 0
}

// DefaultArgs returns the default values keyed arg0..argN.
func (m *Method) DefaultArgs() map[string]any {
	out := make(map[string]any, len(m.DefaultValues))
	for i, v := range m.DefaultValues {
		out[argKey(i)] = v
	}
	return out
}

// Validate checks one form value per argument and reports every failure.
func (m *Method) Validate(args []any) error {
	if len(args) != len(m.Fields) {
		return errors.ContractViolation(errors.PhaseValidate, []string{m.Name},
			fmt.Sprintf("expected %d arguments, got %d", len(m.Fields), len(args)))
	}
	var err error
	for i, f := range m.Fields {
		err = multierr.Append(err, under(f.check(args[i]), strconv.Itoa(i)))
	}
	return err
}

// Encode validates the form values and converts them into wire arguments.
func (m *Method) Encode(args []any) ([]any, error) {
	if err := m.Validate(args); err != nil {
		return nil, err
	}
	out := make([]any, len(args))
	for i, f := range m.Fields {
		d, err := f.Display(args[i])
		if err != nil {
			return nil, errors.WithPath(err, strconv.Itoa(i))
		}
		c, err := codec.Derive(f.Type)
		if err != nil {
			return nil, err
		}
		w, err := c.Encode(d)
		if err != nil {
			return nil, errors.WithPath(err, strconv.Itoa(i))
		}
		out[i] = w
	}
	return out, nil
}

// Service holds the metadata of every method in declaration order.
type Service struct {
	Methods []*Method
}

// FromService derives the metadata of every method of svc. Each method is
// derived in its own pass; Order numbers methods in declaration order.
func FromService(svc *idl.ServiceType) (*Service, error) {
	if svc == nil {
		return nil, errors.UnknownKind(errors.PhaseDerive, nil, svc)
	}
	ctx := visitor.NewContext(errors.PhaseDerive)
	s := &Service{Methods: make([]*Method, 0, len(svc.Methods))}
	for _, sm := range svc.Methods {
		m, err := FromFunc(sm.Name, sm.Func)
		if err != nil {
			return nil, err
		}
		m.Order = ctx.Next()
		s.Methods = append(s.Methods, m)
	}
	return s, nil
}

// Method returns the method called name.
func (s *Service) Method(name string) (*Method, bool) {
	for _, m := range s.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Queries returns the names of the query methods.
func (s *Service) Queries() []string {
	var out []string
	for _, m := range s.Methods {
		if m.FunctionType == Query {
			out = append(out, m.Name)
		}
	}
	return out
}
