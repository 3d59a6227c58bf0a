package args

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedArgument is matched by every MalformedArgumentError.
	ErrMalformedArgument = errors.New("malformed argument")

	// ErrNoCommand is returned by Split for an empty argument vector.
	ErrNoCommand = errors.New("please specify command")
)

// MalformedArgumentError reports a token that does not follow the flag grammar.
type MalformedArgumentError struct {
	Token string
}

func (e *MalformedArgumentError) Error() string {
	return fmt.Sprintf("malformed argument %q: expected -Name[=Value] or /Name[=Value]", e.Token)
}

// Is reports whether target is ErrMalformedArgument.
func (e *MalformedArgumentError) Is(target error) bool {
	return target == ErrMalformedArgument
}
