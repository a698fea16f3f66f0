// Package config handles reactor.toml configuration for the reactor CLI.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/B3Pay/ic-reactor-go/errors"
	"github.com/B3Pay/ic-reactor-go/generate"
	"github.com/B3Pay/ic-reactor-go/result"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "reactor.toml"

// Config is a reactor.toml file.
type Config struct {
	Interface Interface `toml:"interface"`
	Generate  Generate  `toml:"generate"`
	Format    Format    `toml:"format"`
	Log       Log       `toml:"log"`

	// Dir is the directory containing the reactor.toml file (set at load time).
	Dir string `toml:"-"`
}

// Interface names the interface description to load: a candid file, or a
// WIT package in JSON form together with the world to import.
type Interface struct {
	Candid string `toml:"candid" validate:"required_without=Wit,excluded_with=Wit"`
	Wit    string `toml:"wit"`
	World  string `toml:"world"`
}

// Generate configures random value generation. Seed 0 seeds from the
// clock.
type Generate struct {
	Seed               int64   `toml:"seed"`
	VecMaxLen          int     `toml:"vec_max_len" validate:"gte=0,lte=64"`
	OptNoneProbability float64 `toml:"opt_none_probability" validate:"gte=0,lte=1"`
	TextLength         int     `toml:"text_length" validate:"gte=1,lte=64"`
}

// Format configures result formatting.
type Format struct {
	RecursionDepth int `toml:"recursion_depth" validate:"gte=1"`
}

// Log configures the CLI logger.
type Log struct {
	Level       string `toml:"level" validate:"oneof=debug info warn error"`
	Development bool   `toml:"development"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		Generate: Generate{
			VecMaxLen:          generate.DefaultVecMaxLen,
			OptNoneProbability: generate.DefaultOptNoneProbability,
			TextLength:         generate.DefaultTextLength,
		},
		Format: Format{RecursionDepth: 1},
		Log:    Log{Level: "info"},
	}
}

// Load parses a reactor.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, fmt.Sprintf("cannot read %s", path))
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindParseError, err, fmt.Sprintf("parse error in %s", path))
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, fmt.Sprintf("cannot resolve path %s", dir))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a reactor.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, startDir)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks every field and reports all failures.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}

	var out error
	for _, ve := range verrs {
		path := strings.Split(ve.Namespace(), ".")[1:]
		out = multierr.Append(out, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(path...).
			Value(ve.Value()).
			Detail("%s", describe(ve)).
			Build())
	}
	return out
}

// CandidPath returns the interface file resolved against Dir.
func (c *Config) CandidPath() string {
	if filepath.IsAbs(c.Interface.Candid) || c.Dir == "" {
		return c.Interface.Candid
	}
	return filepath.Join(c.Dir, c.Interface.Candid)
}

// WitPath returns the WIT JSON file resolved against Dir, or "" when the
// interface is a candid file.
func (c *Config) WitPath() string {
	if c.Interface.Wit == "" || filepath.IsAbs(c.Interface.Wit) || c.Dir == "" {
		return c.Interface.Wit
	}
	return filepath.Join(c.Dir, c.Interface.Wit)
}

// GeneratorOptions translates the generate section.
func (c *Config) GeneratorOptions() []generate.Option {
	opts := []generate.Option{
		generate.WithVecMaxLen(c.Generate.VecMaxLen),
		generate.WithOptNoneProbability(c.Generate.OptNoneProbability),
		generate.WithTextLength(c.Generate.TextLength),
	}
	if c.Generate.Seed != 0 {
		opts = append(opts, generate.WithSeed(c.Generate.Seed))
	}
	return opts
}

// FormatterOptions translates the format section.
func (c *Config) FormatterOptions() []result.Option {
	return []result.Option{result.WithRecursionDepth(c.Format.RecursionDepth)}
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log.level")
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func describe(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required", "required_without":
		return "required"
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", strings.ToLower(ve.Param()))
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
