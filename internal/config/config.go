// Package config loads nginxlog settings from defaults, a config file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. NGINXLOG_WORKERS.
const EnvPrefix = "NGINXLOG"

const fileName = ".nginxlog"

// Keys understood in the config file and environment. Flags with the same
// name (underscores written as dashes) override them.
const (
	KeyWorkers       = "workers"
	KeyLayout        = "layout"
	KeyStrictRequest = "strict_request"
	KeyLogLevel      = "log_level"
	KeyFormat        = "format"
)

// Config holds the effective settings.
type Config struct {
	Workers       int    `mapstructure:"workers"`
	Layout        string `mapstructure:"layout"`
	StrictRequest bool   `mapstructure:"strict_request"`
	LogLevel      string `mapstructure:"log_level"`
	Format        string `mapstructure:"format"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		Layout:   "combined",
		LogLevel: "warn",
		Format:   "batch",
	}
}

// Load builds the configuration. path names an explicit config file; when
// empty, .nginxlog.yaml is looked up in $HOME and the working directory and
// may be missing. Only flags that were set on the command line override the
// lower layers.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault(KeyWorkers, def.Workers)
	v.SetDefault(KeyLayout, def.Layout)
	v.SetDefault(KeyStrictRequest, def.StrictRequest)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyFormat, def.Format)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeyWorkers, KeyLayout, KeyStrictRequest, KeyLogLevel, KeyFormat} {
			if f := flags.Lookup(flagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
