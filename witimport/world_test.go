package witimport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bytecodealliance.org/wit"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/idl"
)

const calcJSON = `{
  "worlds": [{
    "name": "calc",
    "imports": {},
    "exports": {
      "add": {"function": {"name": "add", "kind": "freestanding",
        "params": [{"name": "a", "type": "u32"}, {"name": "b", "type": "u32"}],
        "result": "u32"}},
      "test:calc/shapes": {"interface": {"id": 0}}
    },
    "package": 0
  }],
  "interfaces": [{
    "name": "shapes",
    "types": {"point": 0},
    "functions": {
      "origin": {"name": "origin", "kind": "freestanding", "params": [], "result": 0}
    },
    "package": 0
  }],
  "types": [{
    "name": "point",
    "kind": {"record": {"fields": [{"name": "x", "type": "s32"}, {"name": "y", "type": "s32"}]}},
    "owner": {"interface": 0}
  }],
  "packages": [{"name": "test:calc", "interfaces": {"shapes": 0}, "worlds": {"calc": 0}}]
}`

func TestWorld(t *testing.T) {
	shapes := &wit.Interface{Name: name("shapes")}
	shapes.Functions.Set("area", &wit.Function{
		Name:    "area",
		Kind:    &wit.Freestanding{},
		Params:  []wit.Param{{Name: "r", Type: wit.F64{}}},
		Results: []wit.Param{{Type: wit.F64{}}},
	})
	shapes.Functions.Set("[method]circle.grow", &wit.Function{
		Name: "[method]circle.grow",
		Kind: &wit.Method{},
	})

	w := &wit.World{Name: "calc"}
	w.Exports.Set("add", &wit.Function{
		Name:    "add",
		Kind:    &wit.Freestanding{},
		Params:  []wit.Param{{Name: "a", Type: wit.U32{}}, {Name: "b", Type: wit.U32{}}},
		Results: []wit.Param{{Type: wit.U32{}}},
	})
	w.Exports.Set("test:calc/shapes", &wit.InterfaceRef{Interface: shapes})

	svc, err := New().World(w)
	require.NoError(t, err)
	require.Len(t, svc.Methods, 2)
	assert.Equal(t, "add", svc.Methods[0].Name)
	assert.Equal(t, []idl.Type{idl.Nat32, idl.Nat32}, svc.Methods[0].Func.Args)
	assert.Equal(t, "test:calc/shapes#area", svc.Methods[1].Name)
	assert.Equal(t, []idl.Type{idl.Float64}, svc.Methods[1].Func.Results)
	assert.False(t, svc.Methods[1].Func.IsQuery())

	_, err = New().World(nil)
	assert.True(t, errors.IsUnknownKind(err))
}

func TestWorld_ResourceParameter(t *testing.T) {
	handle := &wit.TypeDef{Kind: &wit.Own{}}
	w := &wit.World{Name: "bad"}
	w.Exports.Set("take", &wit.Function{
		Name:   "take",
		Kind:   &wit.Freestanding{},
		Params: []wit.Param{{Name: "h", Type: handle}},
	})

	_, err := New().World(w)
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errors.KindUnsupported, e.Kind)
	assert.Equal(t, []string{"take", "param0"}, e.Path)
}

func TestLoad(t *testing.T) {
	svc, err := Load(strings.NewReader(calcJSON), "")
	require.NoError(t, err)
	require.Len(t, svc.Methods, 2)

	add, ok := svc.Method("add")
	require.True(t, ok)
	assert.Equal(t, "(nat32, nat32) -> (nat32)", strings.TrimPrefix(add.Name(), "func "))

	origin, ok := svc.Method("test:calc/shapes#origin")
	require.True(t, ok)
	require.Len(t, origin.Results, 1)
	assert.Equal(t, "record { x : int32; y : int32 }", origin.Results[0].Name())

	_, err = Load(strings.NewReader(calcJSON), "missing")
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))

	_, err = Load(strings.NewReader(`{"worlds": []}`), "")
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))

	_, err = Load(strings.NewReader(`{`), "")
	assert.Equal(t, errors.KindParseError, errors.KindOf(err))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.wit.json")
	require.NoError(t, os.WriteFile(path, []byte(calcJSON), 0o644))

	svc, err := LoadFile(path, "calc")
	require.NoError(t, err)
	assert.Len(t, svc.Methods, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "none.json"), "")
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}
