package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/zephyrtronium/keycalc"
)

// Eval configures expression evaluation.
type Eval struct {
	// Prec is the precision of intermediate results in bits.
	Prec uint `validate:"gte=53,lte=4096"`
	// Places is the number of decimal places results are rounded to.
	Places int `validate:"gte=0,lte=100"`
}

// Log configures logging.
type Log struct {
	Level  string `validate:"oneof=panic fatal error warn warning info debug trace"`
	Format string `validate:"oneof=text json"`
	// Output is stderr, stdout, or a file path.
	Output string `validate:"required"`
}

// Server configures the HTTP adapter.
type Server struct {
	Host string
	Port int    `validate:"gte=0,lte=65535"`
	Mode string `validate:"oneof=debug release test"`
}

// Session configures the lifetime of HTTP sessions.
type Session struct {
	TTL   time.Duration `validate:"gt=0"`
	Sweep time.Duration `validate:"gt=0"`
}

// Repl configures the terminal adapter.
type Repl struct {
	Prompt      string
	HistoryFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("eval.prec", 64)
	v.SetDefault("eval.places", 12)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.sweep", time.Minute)
	v.SetDefault("repl.prompt", "> ")
	v.SetDefault("repl.history_file", "")
}

func getEvalConfig(v *viper.Viper) *Eval {
	return &Eval{
		Prec:   v.GetUint("eval.prec"),
		Places: v.GetInt("eval.places"),
	}
}

func getLogConfig(v *viper.Viper) *Log {
	return &Log{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Host: v.GetString("server.host"),
		Port: v.GetInt("server.port"),
		Mode: v.GetString("server.mode"),
	}
}

func getSessionConfig(v *viper.Viper) *Session {
	return &Session{
		TTL:   v.GetDuration("session.ttl"),
		Sweep: v.GetDuration("session.sweep"),
	}
}

func getReplConfig(v *viper.Viper) *Repl {
	return &Repl{
		Prompt:      v.GetString("repl.prompt"),
		HistoryFile: v.GetString("repl.history_file"),
	}
}

// Options returns the evaluation options e describes.
func (e *Eval) Options() []keycalc.ContextOption {
	return []keycalc.ContextOption{keycalc.Prec(e.Prec), keycalc.Places(e.Places)}
}
