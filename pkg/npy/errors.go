package npy

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDType       = errors.New("npy: unknown dtype")
	ErrEmptySeparator     = errors.New("npy: empty separator")
	ErrHeaderOverflow     = errors.New("npy: header does not fit the reserved region")
	ErrInvalidMagic       = errors.New("npy: invalid magic")
	ErrUnsupportedVersion = errors.New("npy: unsupported format version")
	ErrCorruptFile        = errors.New("npy: corrupt file")
)

// ConfigError reports an unusable conversion setting.
type ConfigError struct {
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ReadError reports a failure to obtain the next input line.
type ReadError struct {
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("npy: read line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failure to append to, flush, or seek within the sink.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("npy: %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ParseError reports a field token that does not parse as the target dtype.
// Line is 1-based and zero when the error came from EncodeLine directly.
// Field is 1-based.
type ParseError struct {
	Line  int
	Field int
	Token string
	DType DType
	Err   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("npy: line %d, field %d: cannot parse %q as %s: %v", e.Line, e.Field, e.Token, e.DType, e.Err)
	}
	return fmt.Sprintf("npy: field %d: cannot parse %q as %s: %v", e.Field, e.Token, e.DType, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError reports a line whose field count differs from the first line.
type ShapeError struct {
	Line int
	Got  int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("npy: line %d has %d fields, expected %d", e.Line, e.Got, e.Want)
}
