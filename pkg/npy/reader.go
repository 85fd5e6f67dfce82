package npy

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sys/unix"
)

// File is a loaded .npy file.
type File struct {
	Data    []byte
	Header  Header
	mmapped bool
}

// Open maps a .npy file read-only and validates its header and size.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < preambleOffset || size64 > int64(math.MaxInt) {
		return nil, ErrCorruptFile
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		nf, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return nf, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// OpenReaderAt loads and validates a .npy file from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < preambleOffset || size > int64(math.MaxInt) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	data := make([]byte, size)
	n, err := r.ReadAt(data, 0)
	if err != nil && !(err == io.EOF && n == size) {
		return nil, err
	}
	if n != size {
		return nil, ErrCorruptFile
	}
	return data, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.DataSize() > len(data)-h.DataOffset() {
		return nil, fmt.Errorf("%w: data region truncated: have %d bytes, header needs %d",
			ErrCorruptFile, len(data)-h.DataOffset(), h.DataSize())
	}
	return &File{Data: data, Header: h, mmapped: mmapped}, nil
}

// Close releases the mapping, if any.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	return err
}

// Payload returns the data region described by the header.
func (f *File) Payload() []byte {
	off := f.Header.DataOffset()
	return f.Data[off : off+f.Header.DataSize()]
}

// Checksum returns the xxhash64 digest of the data region.
func (f *File) Checksum() uint64 {
	return xxhash.Sum64(f.Payload())
}

// Element is the set of Go types matching a DType.
type Element interface {
	uint32 | uint64 | int32 | int64 | float32 | float64
}

func dtypeOf[T Element]() DType {
	var zero T
	switch any(zero).(type) {
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case int32:
		return Int32
	case int64:
		return Int64
	case float32:
		return Float32
	default:
		return Float64
	}
}

// Decode returns the elements of f in row-major order. T must match the
// file's dtype exactly.
func Decode[T Element](f *File) ([]T, error) {
	want := dtypeOf[T]()
	if f.Header.DType != want {
		return nil, fmt.Errorf("npy: file holds %s, cannot decode as %s", f.Header.DType, want)
	}
	p := f.Payload()
	le := binary.LittleEndian
	out := make([]T, f.Header.Elements())
	for i := range out {
		switch want {
		case Uint32:
			out[i] = T(le.Uint32(p[i*4:]))
		case Int32:
			out[i] = T(int32(le.Uint32(p[i*4:])))
		case Float32:
			out[i] = T(math.Float32frombits(le.Uint32(p[i*4:])))
		case Uint64:
			out[i] = T(le.Uint64(p[i*8:]))
		case Int64:
			out[i] = T(int64(le.Uint64(p[i*8:])))
		case Float64:
			out[i] = T(math.Float64frombits(le.Uint64(p[i*8:])))
		}
	}
	return out, nil
}

// Format renders element i as text, whatever the dtype.
func (f *File) Format(i int) string {
	p := f.Payload()
	le := binary.LittleEndian
	switch f.Header.DType {
	case Uint32:
		return fmt.Sprint(le.Uint32(p[i*4:]))
	case Int32:
		return fmt.Sprint(int32(le.Uint32(p[i*4:])))
	case Float32:
		return fmt.Sprint(math.Float32frombits(le.Uint32(p[i*4:])))
	case Uint64:
		return fmt.Sprint(le.Uint64(p[i*8:]))
	case Int64:
		return fmt.Sprint(int64(le.Uint64(p[i*8:])))
	default:
		return fmt.Sprint(math.Float64frombits(le.Uint64(p[i*8:])))
	}
}
