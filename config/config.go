// Package config loads process configuration from the environment.
package config

import (
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/grapl-security/graphkit/dgraph"
	"github.com/grapl-security/graphkit/sd"
)

// Config holds the environment driven configuration.
type Config struct {
	// Alphas is the pool of Dgraph alpha endpoints, host:port each.
	Alphas      []string `env:"MG_ALPHAS" envSeparator:","`
	LogLevel    string   `env:"MG_LOG_LEVEL" envDefault:"info"`
	LogFormat   string   `env:"MG_LOG_FORMAT" envDefault:"logfmt"` // logfmt or json
	MetricsAddr string   `env:"MG_METRICS_ADDR"`                   // empty disables /metrics
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse env config")
	}
	cfg.Alphas = sd.NewFixedInstancer(cfg.Alphas...)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return cfg, nil
}

// Instancer returns the alpha pool.
func (c Config) Instancer() sd.FixedInstancer {
	return sd.NewFixedInstancer(c.Alphas...)
}

// Validate reports configuration that cannot yield a working client. A
// missing alpha pool is a dgraph.ConfigurationError.
func (c Config) Validate() error {
	if len(c.Instancer()) == 0 {
		return dgraph.ConfigurationError{Err: errors.Wrap(dgraph.ErrNoAlphas, "MG_ALPHAS")}
	}
	switch c.LogFormat {
	case "logfmt", "json":
	default:
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// NewLogger returns a logger writing to w in the configured format, with
// timestamps, callers and level filtering applied. Unknown levels fall back
// to info.
func NewLogger(w io.Writer, c Config) log.Logger {
	var logger log.Logger
	{
		w = log.NewSyncWriter(w)
		if c.LogFormat == "json" {
			logger = log.NewJSONLogger(w)
		} else {
			logger = log.NewLogfmtLogger(w)
		}
		logger = level.NewFilter(logger, level.Allow(level.ParseDefault(c.LogLevel, level.InfoValue())))
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}
	return logger
}
