package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the search paths and environment of the test machine out of a
// test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func writeFile(t *testing.T, dir, text string) string {
	t.Helper()
	p := filepath.Join(dir, "keycalc.yaml")
	require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.File())
	assert.Equal(t, &Eval{Prec: 64, Places: 12}, cfg.Eval)
	assert.Equal(t, &Log{Level: "info", Format: "text", Output: "stderr"}, cfg.Log)
	assert.Equal(t, &Server{Host: "", Port: 8080, Mode: "release"}, cfg.Server)
	assert.Equal(t, &Session{TTL: 30 * time.Minute, Sweep: time.Minute}, cfg.Session)
	assert.Equal(t, &Repl{Prompt: "> "}, cfg.Repl)
	assert.Len(t, cfg.Eval.Options(), 2)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	p := writeFile(t, t.TempDir(), `
eval:
  places: 4
log:
  level: debug
  format: json
server:
  port: 9090
session:
  ttl: 5m
repl:
  prompt: "calc> "
`)
	cfg, err := Load(p, nil)
	require.NoError(t, err)
	assert.Equal(t, p, cfg.File())
	assert.Equal(t, 4, cfg.Eval.Places)
	assert.Equal(t, uint(64), cfg.Eval.Prec)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "calc> ", cfg.Repl.Prompt)
}

func TestLoadSearch(t *testing.T) {
	isolate(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	writeFile(t, wd, "eval:\n  places: 3\n")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.File())
	assert.Equal(t, 3, cfg.Eval.Places)
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)
	p := writeFile(t, t.TempDir(), "eval:\n  places: 4\n  prec: 128\nlog:\n  level: warn\n")
	t.Setenv("KEYCALC_EVAL_PLACES", "6")
	t.Setenv("KEYCALC_LOG_LEVEL", "error")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("places", 12, "")
	flags.String("log-level", "info", "")
	flags.Uint("prec", 64, "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug"}))

	cfg, err := Load(p, flags)
	require.NoError(t, err)
	// File beats unset flag, env beats file, set flag beats env.
	assert.Equal(t, uint(128), cfg.Eval.Prec)
	assert.Equal(t, 6, cfg.Eval.Places)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"format", "log:\n  format: xml\n"},
		{"level", "log:\n  level: loud\n"},
		{"places", "eval:\n  places: -1\n"},
		{"prec", "eval:\n  prec: 2\n"},
		{"prec-single", "eval:\n  prec: 24\n"},
		{"port", "server:\n  port: 70000\n"},
		{"mode", "server:\n  mode: prod\n"},
		{"ttl", "session:\n  ttl: 0s\n"},
		{"output", "log:\n  output: \"\"\n"},
		{"yaml", "eval: [\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			isolate(t)
			p := writeFile(t, t.TempDir(), c.text)
			cfg, err := Load(p, nil)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	isolate(t)
	p := writeFile(t, t.TempDir(), "log:\n  level: info\n")
	cfg, err := Load(p, nil)
	require.NoError(t, err)

	got := make(chan *Config, 16)
	require.True(t, cfg.Watch(func(c *Config, err error) {
		if err != nil {
			return
		}
		select {
		case got <- c:
		default:
		}
	}))
	// Give the watcher time to start.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(p, []byte("log:\n  level: debug\n"), 0o644))

	// A truncating write can be seen half done, so wait for the final state.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Log.Level != "debug" {
				continue
			}
			assert.Equal(t, "info", cfg.Log.Level)
			return
		case <-timeout:
			t.Fatal("no reload after writing config file")
		}
	}
}

func TestWatchWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.False(t, cfg.Watch(func(*Config, error) {}))
}
