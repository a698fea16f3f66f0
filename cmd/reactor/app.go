package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/B3Pay/ic-reactor-go/codec"
	"github.com/B3Pay/ic-reactor-go/config"
	"github.com/B3Pay/ic-reactor-go/did"
	"github.com/B3Pay/ic-reactor-go/fields"
	"github.com/B3Pay/ic-reactor-go/fixture"
	"github.com/B3Pay/ic-reactor-go/generate"
	"github.com/B3Pay/ic-reactor-go/idl"
	"github.com/B3Pay/ic-reactor-go/result"
	"github.com/B3Pay/ic-reactor-go/witimport"
)

type options struct {
	out       io.Writer
	didFile   string
	witFile   string
	world     string
	configDir string
	logLevel  string
	seed      int64
	depth     int
	styled    bool
}

type command struct {
	method   string
	outDir   string
	args     string
	fixture  string
	count    int
	list     bool
	fields   bool
	generate bool
	format   bool
}

// app holds a loaded interface together with the generator and formatter
// configured for it.
type app struct {
	out       io.Writer
	log       *zap.Logger
	cfg       *config.Config
	service   *fields.Service
	gen       *generate.Generator
	formatter *result.Formatter
	source    string
	styled    bool
}

func loadConfig(o options) (*config.Config, error) {
	if o.configDir != "" {
		return config.Load(o.configDir)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

func newApp(o options) (*app, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}

	if o.didFile != "" {
		cfg.Interface.Candid = o.didFile
		cfg.Interface.Wit = ""
	}
	if o.witFile != "" {
		cfg.Interface.Wit = o.witFile
		cfg.Interface.Candid = ""
	}
	if o.world != "" {
		cfg.Interface.World = o.world
	}
	if o.seed != 0 {
		cfg.Generate.Seed = o.seed
	}
	if o.depth != 0 {
		cfg.Format.RecursionDepth = o.depth
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	installLogger(log)

	path, service, err := loadService(cfg, log)
	if err != nil {
		return nil, err
	}
	svc, err := fields.FromService(service)
	if err != nil {
		return nil, err
	}
	log.Debug("interface loaded", zap.String("path", path), zap.Int("methods", len(svc.Methods)))

	return &app{
		out:       o.out,
		log:       log,
		cfg:       cfg,
		service:   svc,
		gen:       generate.New(cfg.GeneratorOptions()...),
		formatter: result.New(cfg.FormatterOptions()...),
		source:    path,
		styled:    o.styled,
	}, nil
}

// loadService reads the service from the WIT package when one is
// configured and from the candid file otherwise.
func loadService(cfg *config.Config, log *zap.Logger) (string, *idl.ServiceType, error) {
	if path := cfg.WitPath(); path != "" {
		svc, err := witimport.LoadFile(path, cfg.Interface.World)
		return path, svc, err
	}

	path := cfg.CandidPath()
	iface, err := did.ParseFile(path)
	if err != nil {
		return path, nil, err
	}
	if iface.Service == nil {
		return path, nil, fmt.Errorf("%s declares no service", path)
	}
	log.Debug("candid parsed", zap.Int("types", len(iface.Names)))
	return path, iface.Service, nil
}

func installLogger(l *zap.Logger) {
	codec.SetLogger(l)
	generate.SetLogger(l)
	did.SetLogger(l)
	witimport.SetLogger(l)
}

func (a *app) close() {
	_ = a.log.Sync()
}

func (a *app) run(c command) error {
	if c.list {
		return a.list()
	}
	if c.method == "" {
		return fmt.Errorf("-method is required (use -list to see the methods of %s)", a.source)
	}
	m, ok := a.service.Method(c.method)
	if !ok {
		return fmt.Errorf("method %q not found in %s", c.method, a.source)
	}

	switch {
	case c.args != "":
		return a.encode(m, c.args)
	case c.fixture != "":
		return a.replay(m, c.fixture)
	case c.generate:
		return a.generate(m, c.count, c.outDir)
	case c.format:
		return a.mockResults(m)
	default:
		return a.printFields(m)
	}
}

func (a *app) list() error {
	r := newRenderer(a.styled)
	fmt.Fprintln(a.out, r.title("Service")+" "+a.source)
	fmt.Fprintln(a.out)
	methods := append([]*fields.Method{}, a.service.Methods...)
	sort.SliceStable(methods, func(i, j int) bool { return methods[i].Order < methods[j].Order })
	for _, m := range methods {
		fmt.Fprintln(a.out, "  "+r.method(m))
	}
	return nil
}

func (a *app) printFields(m *fields.Method) error {
	r := newRenderer(a.styled)
	fmt.Fprintln(a.out, r.method(m))
	for _, f := range m.Fields {
		fmt.Fprint(a.out, r.fieldTree(f))
	}
	defaults, err := marshal(m.DefaultArgs())
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, r.help("defaults: ")+defaults)
	return nil
}

// encode validates JSON form values and prints the encoded arguments in
// candid text.
func (a *app) encode(m *fields.Method, raw string) error {
	args, err := parseArgs(raw)
	if err != nil {
		return err
	}
	wire, err := m.Encode(args)
	if err != nil {
		r := newRenderer(a.styled)
		for _, msg := range fields.Messages(err) {
			fmt.Fprintln(a.out, r.error(msg))
		}
		return fmt.Errorf("%d invalid argument(s)", len(fields.Messages(err)))
	}
	fmt.Fprintln(a.out, argText(m.Func.Args, wire))
	return nil
}

func (a *app) generate(m *fields.Method, count int, outDir string) error {
	for i := 0; i < count; i++ {
		if outDir != "" {
			f, err := fixture.Record(a.gen, m.Name, m.Func)
			if err != nil {
				return err
			}
			f.Seed = a.cfg.Generate.Seed
			path := filepath.Join(outDir, fmt.Sprintf("%s-%03d.cbor", m.Name, i))
			if err := fixture.Save(path, f); err != nil {
				return err
			}
			a.log.Info("fixture written", zap.String("path", path))
			continue
		}

		args, err := a.gen.GenerateArgs(m.Func)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, argText(m.Func.Args, args))
	}
	return nil
}

func (a *app) mockResults(m *fields.Method) error {
	values, err := a.gen.GenerateResults(m.Func)
	if err != nil {
		return err
	}
	return a.printResults(m, values)
}

func (a *app) replay(m *fields.Method, path string) error {
	f, err := fixture.Load(path)
	if err != nil {
		return err
	}
	args, results, err := f.Wire(m.Func)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, argText(m.Func.Args, args))
	return a.printResults(m, results)
}

func (a *app) printResults(m *fields.Method, values []any) error {
	nodes, err := a.formatter.FormatMethod(m.Func, values)
	if err != nil {
		return err
	}
	r := newRenderer(a.styled)
	for _, n := range nodes {
		fmt.Fprint(a.out, r.nodeTree(n))
	}
	return nil
}

// parseArgs reads a JSON array of form values. Numbers stay json.Number
// so that large integers keep their precision.
func parseArgs(raw string) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("arguments must be JSON: %w", err)
	}
	switch v := fields.Normalize(v).(type) {
	case []any:
		return v, nil
	case map[string]any:
		return fields.ArgsFromMap(v), nil
	}
	return nil, fmt.Errorf("arguments must be a JSON array or an object keyed arg0..argN")
}

// argText prints wire arguments as a candid argument tuple.
func argText(types []idl.Type, values []any) string {
	var b bytes.Buffer
	b.WriteByte('(')
	for i, t := range types {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(idl.ValueString(t, values[i]))
	}
	b.WriteByte(')')
	return b.String()
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
