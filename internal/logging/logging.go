package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives JSON lines with size-based rotation.
	File string
	// JSON switches the console output from pretty to JSON.
	JSON bool
}

// Setup configures the global zerolog logger and returns a closer for the
// rotating file, if any.
func Setup(o Options) io.Closer {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(o.Level))

	var console io.Writer = os.Stdout
	if !o.JSON {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	if o.File == "" {
		zlog.Logger = zerolog.New(console).With().Timestamp().Logger()
		return io.NopCloser(nil)
	}

	_ = os.MkdirAll(filepath.Dir(o.File), 0o755)
	file := &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
	}
	zlog.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).With().Timestamp().Logger()
	return file
}

func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
