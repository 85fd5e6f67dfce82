package npy

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
)

// Options configures a conversion.
type Options struct {
	DType     DType
	Separator string
	// AllowRagged accepts lines with differing field counts. The header then
	// records the field count of the last line only.
	AllowRagged bool
}

// DefaultOptions returns f32 elements separated by a single space.
func DefaultOptions() Options {
	return Options{DType: DefaultDType, Separator: " "}
}

// Validate reports settings that cannot produce a file.
func (o Options) Validate() error {
	if !o.DType.valid() {
		return &ConfigError{Value: o.DType.String(), Err: ErrUnknownDType}
	}
	if o.Separator == "" {
		return &ConfigError{Value: o.Separator, Err: ErrEmptySeparator}
	}
	return nil
}

// Lines yields the LF-terminated lines of r without their terminator. A
// trailing CR is stripped and an empty final line after the last LF is not
// yielded. Lines may be of any length. A read error yields only the error,
// never the partial line that preceded it.
func Lines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReaderSize(r, 64*1024)
		for {
			line, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				yield("", err)
				return
			}
			if len(line) > 0 {
				if !yield(trimEOL(line), nil) {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}
}

func trimEOL(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// Convert encodes every line in order and appends the element bytes to
// sink. It returns the row count and the column count of the last line.
// With zero lines it returns Shape{0, 0} and writes nothing.
func Convert(lines iter.Seq2[string, error], sink io.Writer, opts Options) (Shape, error) {
	if err := opts.Validate(); err != nil {
		return Shape{}, err
	}
	enc, err := NewEncoder(opts.DType, opts.Separator)
	if err != nil {
		return Shape{}, err
	}

	var shape Shape
	for line, err := range lines {
		if err != nil {
			return shape, &ReadError{Line: shape.Rows + 1, Err: err}
		}
		shape.Rows++
		if !opts.AllowRagged && shape.Rows > 1 {
			if got := strings.Count(line, opts.Separator) + 1; got != shape.Cols {
				return shape, &ShapeError{Line: shape.Rows, Got: got, Want: shape.Cols}
			}
		}
		cols, err := enc.EncodeLine(line, sink)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Line = shape.Rows
			}
			return shape, err
		}
		shape.Cols = cols
	}
	return shape, nil
}
