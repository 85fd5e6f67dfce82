package npy

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
)

const writerBufSize = 1 << 20 // 1 MiB

// Writer builds a .npy file on a seekable sink in a streaming fashion.
//
// The writer reserves the header region up-front; element bytes written
// through Write land after it, and Finalise patches the header once the
// shape is known. A sink abandoned before Finalise keeps the all-space
// reservation, which no loader accepts as a header.
type Writer struct {
	f      io.WriteSeeker
	bw     *bufio.Writer
	dtype  DType
	closed bool
}

// NewWriter truncates f when it supports it, rewinds it, and writes the
// header reservation.
func NewWriter(f io.WriteSeeker, dt DType) (*Writer, error) {
	if f == nil {
		return nil, errors.New("npy: nil sink")
	}
	if !dt.valid() {
		return nil, &ConfigError{Value: dt.String(), Err: ErrUnknownDType}
	}

	if t, ok := f.(interface{ Truncate(int64) error }); ok {
		if err := t.Truncate(0); err != nil {
			return nil, &WriteError{Op: "truncate", Err: err}
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &WriteError{Op: "seek start", Err: err}
	}
	if err := Reserve(f); err != nil {
		return nil, err
	}

	return &Writer{
		f:     f,
		bw:    bufio.NewWriterSize(f, writerBufSize),
		dtype: dt,
	}, nil
}

// Write appends raw element bytes to the data region.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("npy: writer already finalised")
	}
	return w.bw.Write(p)
}

// Finalise flushes the data region and writes the header for shape.
// If the sink is an *os.File it is synced.
func (w *Writer) Finalise(shape Shape) error {
	if w.closed {
		return errors.New("npy: writer already finalised")
	}
	w.closed = true

	if err := w.bw.Flush(); err != nil {
		return &WriteError{Op: "flush data", Err: err}
	}
	if err := WriteHeader(w.f, shape, w.dtype); err != nil {
		return err
	}
	if f, ok := w.f.(*os.File); ok {
		if err := f.Sync(); err != nil {
			return &WriteError{Op: "sync", Err: err}
		}
	}
	return nil
}

// WriteFile converts the lines of r into a complete .npy file on sink.
func WriteFile(sink io.WriteSeeker, r io.Reader, opts Options) (Shape, error) {
	if err := opts.Validate(); err != nil {
		return Shape{}, err
	}
	w, err := NewWriter(sink, opts.DType)
	if err != nil {
		return Shape{}, err
	}
	shape, err := Convert(Lines(r), w, opts)
	if err != nil {
		return shape, err
	}
	if err := w.Finalise(shape); err != nil {
		return shape, err
	}
	return shape, nil
}

// Create converts the lines of r into a new file at path, truncating any
// existing file. On failure the partial file is left in place.
func Create(path string, r io.Reader, opts Options) (Shape, error) {
	if err := opts.Validate(); err != nil {
		return Shape{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return Shape{}, &WriteError{Op: "create", Err: err}
	}
	shape, err := WriteFile(f, r, opts)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = &WriteError{Op: "close", Err: cerr}
	}
	return shape, err
}

// WriteStream converts the lines of r into a .npy file written to w in a
// single pass. The data region is held in memory until the input is
// exhausted, so w need not be seekable.
func WriteStream(w io.Writer, r io.Reader, opts Options) (Shape, error) {
	var data bytes.Buffer
	shape, err := Convert(Lines(r), &data, opts)
	if err != nil {
		return shape, err
	}
	hdr, err := EncodeHeader(shape, opts.DType)
	if err != nil {
		return shape, err
	}

	var region [HeaderSize]byte
	copy(region[:], reservation)
	copy(region[:], hdr)
	if err := writeFull(w, region[:]); err != nil {
		return shape, &WriteError{Op: "write header", Err: err}
	}
	if err := writeFull(w, data.Bytes()); err != nil {
		return shape, &WriteError{Op: "write data", Err: err}
	}
	return shape, nil
}

func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
