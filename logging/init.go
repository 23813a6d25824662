package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// init instantiates the global logger and sets up global zerolog parameters.
func init() {
	GlobalLogger = NewLogger(zerolog.Disabled, false)

	// Errors built with pkg/errors carry stack traces; marshal them when a stack is requested.
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
