package binder

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequired = errors.New("missing required argument")
	ErrUnknownArgument = errors.New("unknown argument")
	ErrUnconvertible   = errors.New("unconvertible value")
)

// MissingRequiredError reports a required field absent from the arguments.
type MissingRequiredError struct {
	Field string
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("a value for the %s argument is required", e.Field)
}

func (e *MissingRequiredError) Is(target error) bool { return target == ErrMissingRequired }

// UnknownArgumentError reports a flag that matches no field.
type UnknownArgumentError struct {
	Key string
}

func (e *UnknownArgumentError) Error() string {
	return fmt.Sprintf("unknown argument %q", e.Key)
}

func (e *UnknownArgumentError) Is(target error) bool { return target == ErrUnknownArgument }

// UnconvertibleValueError reports a value that could not be converted to the
// field's type. Err is nil when the field declares no parser at all.
type UnconvertibleValueError struct {
	Field string
	Type  string
	Value string
	Err   error
}

func (e *UnconvertibleValueError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unable to convert from a string to argument %s of type %s", e.Field, e.Type)
	}
	return fmt.Sprintf("unable to convert %q to argument %s of type %s: %v", e.Value, e.Field, e.Type, e.Err)
}

func (e *UnconvertibleValueError) Is(target error) bool { return target == ErrUnconvertible }

func (e *UnconvertibleValueError) Unwrap() error { return e.Err }
