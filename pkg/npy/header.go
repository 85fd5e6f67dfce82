package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Shape is the (rows, cols) extent discovered while converting.
type Shape struct {
	Rows int
	Cols int
}

// Dims returns the NumPy shape tuple: (0,) with no columns, (rows,) with a
// single column and (rows, cols) otherwise.
func (s Shape) Dims() []int {
	switch s.Cols {
	case 0:
		return []int{0}
	case 1:
		return []int{s.Rows}
	default:
		return []int{s.Rows, s.Cols}
	}
}

// Elements returns the number of elements in the data region.
func (s Shape) Elements() int {
	return s.Rows * max(s.Cols, 1)
}

func (s Shape) String() string {
	return formatDims(s.Dims())
}

func formatDims(dims []int) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, d := range dims {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(d))
	}
	if len(dims) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// Header is a decoded .npy header.
type Header struct {
	Major        byte
	Minor        byte
	HeaderLen    int
	Descr        string
	DType        DType
	FortranOrder bool
	Shape        []int
}

// DataOffset returns the file offset of the first element.
func (h Header) DataOffset() int {
	return preambleOffset + h.HeaderLen
}

// Elements returns the product of the shape dimensions.
func (h Header) Elements() int {
	n := 1
	for _, d := range h.Shape {
		n *= d
	}
	return n
}

// DataSize returns the expected data region length in bytes.
func (h Header) DataSize() int {
	return h.Elements() * h.DType.Width()
}

// dataSize multiplies dims and width, reporting false on int overflow.
func dataSize(dims []int, width int) (int, bool) {
	if slices.Contains(dims, 0) {
		return 0, true
	}
	n := width
	for _, d := range dims {
		if d != 0 && n > math.MaxInt/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// EncodeHeader renders the magic, version, length field and dictionary for
// shape. The result is not padded; the caller's reservation provides the
// padding and terminator.
func EncodeHeader(shape Shape, dt DType) ([]byte, error) {
	if !dt.valid() {
		return nil, &ConfigError{Value: dt.String(), Err: ErrUnknownDType}
	}
	if shape.Rows < 0 || shape.Cols < 0 {
		return nil, fmt.Errorf("npy: negative shape %d x %d", shape.Rows, shape.Cols)
	}

	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, Magic...)
	buf = append(buf, MajorVersion, MinorVersion)
	buf = binary.LittleEndian.AppendUint16(buf, PreambleLen)
	buf = fmt.Appendf(buf, "{'descr': '%s', 'fortran_order': False, 'shape': %s}", dt.Descr(), shape)

	// The last reserved byte holds the line terminator.
	if len(buf) > HeaderSize-1 {
		return nil, ErrHeaderOverflow
	}
	return buf, nil
}

// WriteHeader seeks sink to offset 0 and overwrites the start of the
// reserved region with the encoded header. The sink position afterwards is
// unspecified.
func WriteHeader(sink io.WriteSeeker, shape Shape, dt DType) error {
	hdr, err := EncodeHeader(shape, dt)
	if err != nil {
		return err
	}
	if _, err := sink.Seek(0, io.SeekStart); err != nil {
		return &WriteError{Op: "seek header", Err: err}
	}
	if err := writeFull(sink, hdr); err != nil {
		return &WriteError{Op: "write header", Err: err}
	}
	return nil
}

// reservation is the placeholder written before any data: spaces with a
// trailing newline so the patched header stays newline-terminated.
var reservation = func() []byte {
	b := bytes.Repeat([]byte{' '}, HeaderSize)
	b[HeaderSize-1] = '\n'
	return b
}()

// Reserve writes the HeaderSize-byte placeholder region.
func Reserve(sink io.Writer) error {
	if err := writeFull(sink, reservation); err != nil {
		return &WriteError{Op: "reserve header", Err: err}
	}
	return nil
}

// ParseHeader decodes the preamble and dictionary at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < preambleOffset {
		return Header{}, ErrCorruptFile
	}
	if string(b[:len(Magic)]) != Magic {
		return Header{}, ErrInvalidMagic
	}
	h := Header{Major: b[6], Minor: b[7]}
	if h.Major != MajorVersion {
		return Header{}, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, h.Major, h.Minor)
	}
	h.HeaderLen = int(binary.LittleEndian.Uint16(b[8:preambleOffset]))
	if len(b) < preambleOffset+h.HeaderLen {
		return Header{}, ErrCorruptFile
	}

	dict := strings.TrimSpace(string(b[preambleOffset : preambleOffset+h.HeaderLen]))
	if !strings.HasPrefix(dict, "{") || !strings.HasSuffix(dict, "}") {
		return Header{}, fmt.Errorf("%w: malformed dictionary", ErrCorruptFile)
	}

	descr, err := dictString(dict, "descr")
	if err != nil {
		return Header{}, err
	}
	dt, ok := DTypeFromDescr(descr)
	if !ok {
		return Header{}, &ConfigError{Value: descr, Err: ErrUnknownDType}
	}
	h.Descr = descr
	h.DType = dt

	fortran, err := dictValue(dict, "fortran_order")
	if err != nil {
		return Header{}, err
	}
	switch {
	case strings.HasPrefix(fortran, "False"):
		h.FortranOrder = false
	case strings.HasPrefix(fortran, "True"):
		h.FortranOrder = true
	default:
		return Header{}, fmt.Errorf("%w: fortran_order", ErrCorruptFile)
	}

	shape, err := dictValue(dict, "shape")
	if err != nil {
		return Header{}, err
	}
	h.Shape, err = parseTuple(shape)
	if err != nil {
		return Header{}, err
	}
	if _, ok := dataSize(h.Shape, dt.Width()); !ok {
		return Header{}, fmt.Errorf("%w: shape %s overflows", ErrCorruptFile, formatDims(h.Shape))
	}
	return h, nil
}

// dictValue returns the text following 'key': with leading spaces removed.
func dictValue(dict, key string) (string, error) {
	needle := "'" + key + "'"
	i := strings.Index(dict, needle)
	if i < 0 {
		return "", fmt.Errorf("%w: missing key %s", ErrCorruptFile, key)
	}
	rest := strings.TrimLeft(dict[i+len(needle):], " ")
	if !strings.HasPrefix(rest, ":") {
		return "", fmt.Errorf("%w: key %s", ErrCorruptFile, key)
	}
	return strings.TrimLeft(rest[1:], " "), nil
}

func dictString(dict, key string) (string, error) {
	v, err := dictValue(dict, key)
	if err != nil {
		return "", err
	}
	if len(v) == 0 || (v[0] != '\'' && v[0] != '"') {
		return "", fmt.Errorf("%w: key %s", ErrCorruptFile, key)
	}
	end := strings.IndexByte(v[1:], v[0])
	if end < 0 {
		return "", fmt.Errorf("%w: key %s", ErrCorruptFile, key)
	}
	return v[1 : end+1], nil
}

func parseTuple(v string) ([]int, error) {
	if !strings.HasPrefix(v, "(") {
		return nil, fmt.Errorf("%w: shape", ErrCorruptFile)
	}
	end := strings.IndexByte(v, ')')
	if end < 0 {
		return nil, fmt.Errorf("%w: shape", ErrCorruptFile)
	}
	dims := []int{}
	for part := range strings.SplitSeq(v[1:end], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: shape dimension %q", ErrCorruptFile, part)
		}
		dims = append(dims, n)
	}
	return dims, nil
}
