package logger

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init configures the global logger. level is one of debug, info, warn,
// error, fatal; debug switches to a human-friendly console writer.
func Init(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stdout
	if lvl == zerolog.DebugLevel {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	log = zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func init() {
	Init("info")
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
func Fatal() *zerolog.Event { return log.Fatal() }

// Fatalf logs at fatal level and exits.
func Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(format, v...)
}

// Get returns the underlying zerolog.Logger.
func Get() zerolog.Logger {
	return log
}

// GinLogger logs each HTTP request with method, path, status and latency.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}

		event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// GinRecovery logs panics and answers 500.
func GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		c.AbortWithStatus(500)
	})
}
