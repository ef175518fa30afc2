package jsonconvgen

import (
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// Provider names.
const (
	ProviderSource     = "source"
	ProviderReflection = "reflection"
	ProviderSchema     = "schema"
)

// Config holds the configuration for code generation.
type Config struct {
	// OutDir is the directory generated files are written to.
	OutDir string `toml:"out" schema:"out" validate:"required"`

	// Provider selects the type extraction strategy.
	// "source" (default) loads Packages with go/packages.
	// "reflection" uses Types at run time.
	// "schema" reads SchemaFile.
	Provider string `toml:"provider" schema:"provider" validate:"oneof=source reflection schema"`

	// Packages are the package patterns analyzed by the source provider.
	// Default: ".".
	Packages []string `toml:"packages" schema:"packages" validate:"dive,required"`

	// RootTypes names the root types for the source provider. When empty,
	// types marked //jsonconv:generate in the first package are used.
	RootTypes []string `toml:"types" schema:"types" validate:"dive,goident"`

	// Dir is the directory package patterns are resolved from. Empty means
	// the current directory.
	Dir string `toml:"dir" schema:"dir"`

	// SchemaFile is the YAML schema read by the schema provider.
	SchemaFile string `toml:"schema" schema:"schema" validate:"required_if=Provider schema"`

	// Types are values whose types are the roots for the reflection
	// provider, e.g. Record{} or []*Record{}.
	Types []any `toml:"-" schema:"-" validate:"required_if=Provider reflection"`

	// Package is the name of the generated package. By default it is read
	// from the Go files already in OutDir, or derived from its import path.
	Package string `toml:"package" schema:"package" validate:"omitempty,goident"`

	// PackagePath is the import path of OutDir. By default it is derived
	// from the enclosing module.
	PackagePath string `toml:"package_path" schema:"package_path"`

	// SingleFile writes every routine to one file instead of one per type.
	SingleFile bool `toml:"single_file" schema:"single_file"`

	// FileName is the single output file. Default: "<package>_jsonconv.go".
	FileName string `toml:"file_name" schema:"file_name" validate:"omitempty,endswith=.go"`

	// FileSuffix ends each per-type file name. Default: "_jsonconv.go".
	FileSuffix string `toml:"file_suffix" schema:"file_suffix" validate:"omitempty,endswith=.go"`

	// ParsePrefix and WritePrefix start the generated routine names.
	// Defaults: "Parse" and "Write".
	ParsePrefix string `toml:"parse_prefix" schema:"parse_prefix" validate:"omitempty,goident"`
	WritePrefix string `toml:"write_prefix" schema:"write_prefix" validate:"omitempty,goident"`

	// NativeMapOrder serializes maps in range order instead of sorted key order.
	NativeMapOrder bool `toml:"native_map_order" schema:"native_map_order"`

	// StrictShapes fails generation on shapes no routines can be generated for.
	StrictShapes bool `toml:"strict_shapes" schema:"strict_shapes"`

	// EmitComments adds doc comments to generated routines.
	EmitComments bool `toml:"comments" schema:"comments"`

	// Logger receives progress and warnings. Default: slog.Default().
	Logger *slog.Logger `toml:"-" schema:"-" validate:"-"`
}

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := validate.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.Provider == "" {
		result.Provider = ProviderSource
	}
	if result.Provider == ProviderSource && len(result.Packages) == 0 {
		result.Packages = []string{"."}
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}
	return &result
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	err := validate.Struct(applyConfigDefaults(c))
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		field := strings.TrimPrefix(ve.Namespace(), "Config.")
		messages = append(messages, field+": "+formatValidationError(ve))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required", "required_if":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "goident":
		return fmt.Sprintf("%q is not a Go identifier", ve.Value())
	case "endswith":
		return fmt.Sprintf("must end with %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// LoadConfigFile reads a TOML configuration file such as jsonconv.toml.
// Keys the file sets that Config does not know are an error.
//
//	out = "./models"
//	packages = ["./models"]
//	types = ["Record"]
//	single_file = true
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// ApplyOverrides sets configuration fields from key=value pairs, as given
// to the command line's --set flag. Keys are the config file names:
//
//	package=models
//	single_file=true
//	packages=./a packages=./b
//
// Repeated keys of list fields replace the list.
func ApplyOverrides(cfg *Config, pairs []string) error {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("override %q: want key=value", pair)
		}
		values.Add(key, value)
	}
	if len(values) == 0 {
		return nil
	}
	if err := schemaDecoder.Decode(cfg, values); err != nil {
		return fmt.Errorf("override: %w", err)
	}
	return nil
}
