// Package config loads keycalc settings from defaults, a YAML file, the
// environment, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables which override settings, e.g.
// KEYCALC_EVAL_PLACES for eval.places.
const EnvPrefix = "KEYCALC"

var validate = validator.New()

// Config represents the configuration of every keycalc front end.
type Config struct {
	Eval    *Eval    `validate:"required"`
	Log     *Log     `validate:"required"`
	Server  *Server  `validate:"required"`
	Session *Session `validate:"required"`
	Repl    *Repl    `validate:"required"`

	v *viper.Viper
}

// flagKeys maps flag names to the settings they override.
var flagKeys = map[string]string{
	"prec":         "eval.prec",
	"places":       "eval.places",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"host":         "server.host",
	"port":         "server.port",
	"mode":         "server.mode",
	"prompt":       "repl.prompt",
	"history-file": "repl.history_file",
}

// Load loads the configuration. If path is empty, keycalc.yaml is searched for
// in the working directory, $HOME/.keycalc, and /etc/keycalc, and it is not an
// error for none to exist. Flags in flags named in flagKeys override the file
// and the environment when set; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("keycalc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.keycalc")
		v.AddConfigPath("/etc/keycalc")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.v = v
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Eval:    getEvalConfig(v),
		Log:     getLogConfig(v),
		Server:  getServerConfig(v),
		Session: getSessionConfig(v),
		Repl:    getReplConfig(v),
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// File returns the path of the configuration file in use, or the empty string
// if settings came only from defaults, the environment, and flags.
func (c *Config) File() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

// Watch watches the configuration file and calls callback with the reloaded
// configuration each time it changes. A reload which fails to read or validate
// calls callback with a nil config and the error; the receiver keeps its
// previous settings. Watch reports whether there is a file to watch.
func (c *Config) Watch(callback func(*Config, error)) bool {
	if c.File() == "" {
		return false
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := fromViper(c.v)
		if err != nil {
			callback(nil, fmt.Errorf("failed to reload %s: %w", e.Name, err))
			return
		}
		cfg.v = c.v
		callback(cfg, nil)
	})
	c.v.WatchConfig()
	return true
}
