package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/sankaku-dl/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the logger described by the log section of the config.
// Logs go to stderr so that stdout stays clean for resolved output.
func New(c config.Config) *log.Logger {
	level, err := log.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		level = log.InfoLevel
	}
	var w io.Writer = os.Stderr
	if c.Log.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSize,
			MaxBackups: c.Log.MaxBackups,
		})
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "sankaku-dl",
	})
}

// InitLogger installs the configured logger as the default and into ctx.
func InitLogger(ctx context.Context) context.Context {
	l := New(*config.C())
	log.SetDefault(l)
	return log.WithContext(ctx, l)
}
