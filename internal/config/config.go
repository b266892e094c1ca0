// Package config loads reactmod settings from a config file, the environment
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/phobologic/reactmod/internal/migrate"
	"github.com/phobologic/reactmod/internal/proptypes"
)

const (
	// envPrefix prefixes every environment variable, e.g. REACTMOD_FLOW.
	envPrefix = "REACTMOD"

	// DefaultFile is read from the working directory when no --config is given.
	DefaultFile = ".reactmod.yaml"
)

// Quote styles.
const (
	QuoteSingle = "single"
	QuoteDouble = "double"
)

// Config holds every setting of a run.
type Config struct {
	// Transforms selects the passes to run.
	// Env: REACTMOD_TRANSFORMS (comma separated), Default: all
	Transforms []string `mapstructure:"transforms"`

	// ExplicitRequire skips files that do not import React.
	// Env: REACTMOD_EXPLICIT_REQUIRE, Default: true
	ExplicitRequire bool `mapstructure:"explicitRequire"`

	// MixinModuleName is the module the pure-render mixin is imported from.
	// Env: REACTMOD_MIXIN_MODULE_NAME
	MixinModuleName string `mapstructure:"mixinModuleName"`

	// Flow adds a props annotation inferred from propTypes.
	// Env: REACTMOD_FLOW, Default: false
	Flow bool `mapstructure:"flow"`

	// Quote is "single" or "double", for string literal types.
	Quote string `mapstructure:"quote"`

	// TrailingComma ends multi-line type annotations with a comma.
	TrailingComma bool `mapstructure:"trailingComma"`

	// MaxFileSize skips larger files, in bytes. Zero disables the limit.
	MaxFileSize int64 `mapstructure:"maxFileSize"`

	// Workers is the number of files transformed in parallel. Zero uses
	// one worker per CPU.
	Workers int `mapstructure:"workers"`
}

// keys maps each setting to its environment variable and command-line flag.
var keys = []struct {
	key, env, flag string
}{
	{"transforms", "REACTMOD_TRANSFORMS", "transform"},
	{"explicitRequire", "REACTMOD_EXPLICIT_REQUIRE", "explicit-require"},
	{"mixinModuleName", "REACTMOD_MIXIN_MODULE_NAME", "mixin-module-name"},
	{"flow", "REACTMOD_FLOW", "flow"},
	{"quote", "REACTMOD_QUOTE", "quote"},
	{"trailingComma", "REACTMOD_TRAILING_COMMA", "trailing-comma"},
	{"maxFileSize", "REACTMOD_MAX_FILE_SIZE", "max-file-size"},
	{"workers", "REACTMOD_WORKERS", "workers"},
}

// Loader handles loading and merging configuration from multiple sources.
// Precedence, highest first: flags set on the command line, environment,
// config file, defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k.key, k.env)
	}

	v.SetDefault("transforms", migrate.Passes)
	v.SetDefault("explicitRequire", true)
	v.SetDefault("mixinModuleName", migrate.DefaultMixinModule)
	v.SetDefault("flow", false)
	v.SetDefault("quote", QuoteSingle)
	v.SetDefault("trailingComma", true)
	v.SetDefault("maxFileSize", 0)
	v.SetDefault("workers", 0)

	return &Loader{v: v}
}

// BindFlags lets the command-line flags in flags override other sources.
// Flags that are not defined are ignored.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	for _, k := range keys {
		f := flags.Lookup(k.flag)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(k.key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", k.flag, err)
		}
	}
	return nil
}

// Load reads configFile and merges it with the other sources. An empty
// configFile reads DefaultFile when it exists; an explicit one must exist.
func (l *Loader) Load(configFile string) (*Config, error) {
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultFile
	}

	l.v.SetConfigFile(configFile)
	l.v.SetConfigType("yaml")
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(c.Transforms) == 0 {
		return errors.New("no transforms selected")
	}
	for _, t := range c.Transforms {
		if !slices.Contains(migrate.Passes, t) {
			return fmt.Errorf("unknown transform %q (available: %v)", t, migrate.Passes)
		}
	}
	if c.Quote != QuoteSingle && c.Quote != QuoteDouble {
		return fmt.Errorf("quote must be %q or %q, got %q", QuoteSingle, QuoteDouble, c.Quote)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("maxFileSize must not be negative, got %d", c.MaxFileSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Options converts the configuration into engine options.
func (c *Config) Options() migrate.Options {
	style := proptypes.Style{Quote: '\'', TrailingComma: c.TrailingComma}
	if c.Quote == QuoteDouble {
		style.Quote = '"'
	}
	return migrate.Options{
		Passes:          c.Transforms,
		ExplicitRequire: c.ExplicitRequire,
		MixinModule:     c.MixinModuleName,
		TypeInference:   c.Flow,
		Style:           style,
	}
}
