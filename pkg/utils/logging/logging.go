package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

type Format int

const (
	FormatConsole Format = iota
	FormatJSON
)

var defaultLogger = New(os.Stdout, slog.LevelInfo, FormatConsole)

func Default() *slog.Logger {
	return defaultLogger
}

func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
}

// New builds a logger for the given output format. Fields tagged `masq:"secret"`
// are redacted before they reach the sink.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	filter := masq.New(masq.WithTag("secret"))

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
			clog.WithSource(true),
		)
	}

	return slog.New(handler)
}

type ctxLoggerKey struct{}

// With embeds the logger into the context for request-scoped logging.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the request-scoped logger, or the default logger when the
// context carries none.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return defaultLogger
}
