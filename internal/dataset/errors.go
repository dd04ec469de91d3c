package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// AccessError indicates the input file could not be opened, read or decoded.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	if e == nil {
		return "access error"
	}
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// ValidationError indicates the data does not satisfy what an operation
// requires: an absent column, a non-numeric column, an unparseable timestamp.
type ValidationError struct {
	Op     string   // operation that rejected the data, e.g. "correlations"
	Msg    string   // short lowercase description
	Fields []string // offending column names, if any
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	msg := e.Msg
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Fields, ", "))
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAccess reports whether err is, or wraps, an *AccessError.
func IsAccess(err error) bool {
	var ae *AccessError
	return errors.As(err, &ae)
}
