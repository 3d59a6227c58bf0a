// Package builtin provides the sample commands shipped with runhost.
package builtin

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/opencode-ai/runhost/internal/command"
)

// Registrations returns every builtin command. Commands print to out.
func Registrations(out io.Writer, logger zerolog.Logger) []command.Registration {
	return []command.Registration{
		echoRegistration(out),
		waitRegistration(out),
		watchRegistration(out, logger),
		probeRegistration(out, logger),
		globRegistration(out),
	}
}
