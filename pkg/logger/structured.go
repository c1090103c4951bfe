package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "circles-backend"

var zlog = zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()

// InitStructured initializes the structured zerolog logger
func InitStructured(env string) {
	var w io.Writer

	if env == "development" || env == "dev" || env == "local" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		// JSON output for production (machine-readable)
		w = os.Stdout
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// SetOutput redirects the global logger, mainly for tests
func SetOutput(w io.Writer) {
	zlog = zlog.Output(w)
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithRequestID returns a logger with request_id field
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}

// WithUserID returns a logger with user_id field
func WithUserID(userID string) zerolog.Logger {
	return zlog.With().Str("user_id", userID).Logger()
}

// WithComponent returns a logger tagged with a component name
func WithComponent(name string) zerolog.Logger {
	return zlog.With().Str("component", name).Logger()
}

// Info printf-style info log for boot messages
func Info(format string, args ...interface{}) {
	zlog.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn printf-style warning log
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error printf-style error log
func Error(format string, args ...interface{}) {
	zlog.Error().Msg(fmt.Sprintf(format, args...))
}
