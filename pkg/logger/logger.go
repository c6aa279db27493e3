// backend-go/pkg/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Log is the global logger instance shared by the cmd entrypoints.
var Log zerolog.Logger

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	Log = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

// Configure sets the global level from a server mode or level string.
// "release" maps to info, "debug" to debug; anything else is parsed as a
// zerolog level and falls back to info when invalid.
func Configure(mode string) {
	var level zerolog.Level
	switch mode {
	case "release":
		level = zerolog.InfoLevel
	case "debug":
		level = zerolog.DebugLevel
	default:
		var err error
		level, err = zerolog.ParseLevel(mode)
		if err != nil {
			Log.Warn().Str("mode", mode).Msg("invalid log level, defaulting to info")
			level = zerolog.InfoLevel
		}
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}
