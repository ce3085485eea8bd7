package config

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/grapl-security/graphkit/dgraph"
)

func TestLoadFrom(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"MG_ALPHAS":       "a:9080, b:9080,,c:9080",
		"MG_LOG_LEVEL":    " DEBUG ",
		"MG_METRICS_ADDR": ":9102",
	})
	if err != nil {
		t.Fatal(err)
	}
	if want, have := []string{"a:9080", "b:9080", "c:9080"}, cfg.Alphas; !reflect.DeepEqual(want, have) {
		t.Errorf("want %v, have %v", want, have)
	}
	if want, have := "debug", cfg.LogLevel; want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if want, have := "logfmt", cfg.LogFormat; want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if want, have := ":9102", cfg.MetricsAddr; want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("want valid config, have %v", err)
	}
}

func TestValidate(t *testing.T) {
	for _, testcase := range []struct {
		name    string
		environ map[string]string
		cfgErr  bool
		valid   bool
	}{
		{"unset", map[string]string{}, true, false},
		{"empty", map[string]string{"MG_ALPHAS": ""}, true, false},
		{"blank", map[string]string{"MG_ALPHAS": " , "}, true, false},
		{"single", map[string]string{"MG_ALPHAS": "a:9080"}, false, true},
		{"bad format", map[string]string{"MG_ALPHAS": "a:9080", "MG_LOG_FORMAT": "xml"}, false, false},
	} {
		cfg, err := LoadFrom(testcase.environ)
		if err != nil {
			t.Fatalf("%s: %v", testcase.name, err)
		}
		err = cfg.Validate()
		if want, have := testcase.valid, err == nil; want != have {
			t.Errorf("%s: want valid %v, have error %v", testcase.name, want, err)
		}
		if want, have := testcase.cfgErr, dgraph.IsConfigurationError(err); want != have {
			t.Errorf("%s: want ConfigurationError %v, have %v", testcase.name, want, err)
		}
		if testcase.cfgErr && !errors.Is(err, dgraph.ErrNoAlphas) {
			t.Errorf("%s: want %v in chain, have %v", testcase.name, dgraph.ErrNoAlphas, err)
		}
	}
}

func TestNewLogger(t *testing.T) {
	for _, testcase := range []struct {
		format, level string
		debugShown    bool
		prefix        string
	}{
		{"logfmt", "info", false, "level=info"},
		{"logfmt", "debug", true, "level=debug"},
		{"json", "info", false, "{"},
		{"logfmt", "bogus", false, "level=info"},
	} {
		var buf bytes.Buffer
		logger := NewLogger(&buf, Config{LogFormat: testcase.format, LogLevel: testcase.level})

		level.Debug(logger).Log("msg", "hidden?")
		level.Info(logger).Log("msg", "shown")

		out := buf.String()
		if want, have := testcase.debugShown, strings.Contains(out, "hidden?"); want != have {
			t.Errorf("%s/%s: want debug shown %v, have %q", testcase.format, testcase.level, want, out)
		}
		if !strings.Contains(out, "shown") {
			t.Errorf("%s/%s: info line missing from %q", testcase.format, testcase.level, out)
		}
		if !strings.HasPrefix(out, testcase.prefix) {
			t.Errorf("%s/%s: want prefix %q, have %q", testcase.format, testcase.level, testcase.prefix, out)
		}
	}
}
