package commands

import "strconv"

// ExitError carries the process exit code of a finished run.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	if e.Message == "" {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Message
}
