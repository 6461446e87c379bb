package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
)

// Config controls the global logger.
type Config struct {
	Level   string // debug, info, warn, error
	Pretty  bool   // console output for local development
	Output  io.Writer
	Service string
}

// basic global logger, JSON to stdout.
var logger = newLogger(Config{})

func newLogger(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	service := cfg.Service
	if service == "" {
		service = "invensis-assistant"
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Init replaces the global logger. Call it once from main.
func Init(cfg Config) {
	logger = newLogger(cfg)
}

func Logger() *zerolog.Logger {
	return &logger
}

// WithFields returns a logger with additional key/value fields.
func WithFields(kv ...any) zerolog.Logger {
	return logger.With().Fields(kv).Logger()
}

// WithRequestID stores a request_id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestID returns the request id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(ctxKeyRequestID).(string)
	return reqID
}

// LoggerFromContext adds request_id if present.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	reqID := RequestID(ctx)
	if reqID == "" {
		return &logger
	}
	l := logger.With().Str("request_id", reqID).Logger()
	return &l
}
