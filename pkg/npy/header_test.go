package npy

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShapeRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shape    Shape
		dims     []int
		text     string
		elements int
	}{
		{Shape{0, 0}, []int{0}, "(0,)", 0},
		{Shape{1, 1}, []int{1}, "(1,)", 1},
		{Shape{3, 1}, []int{3}, "(3,)", 3},
		{Shape{1, 3}, []int{1, 3}, "(1,3)", 3},
		{Shape{2, 3}, []int{2, 3}, "(2,3)", 6},
	}
	for _, tc := range tests {
		require.Equal(t, tc.dims, tc.shape.Dims(), "shape %+v", tc.shape)
		require.Equal(t, tc.text, tc.shape.String(), "shape %+v", tc.shape)
		require.Equal(t, tc.elements, tc.shape.Elements(), "shape %+v", tc.shape)
	}
}

func TestEncodeHeaderLayout(t *testing.T) {
	t.Parallel()

	hdr, err := EncodeHeader(Shape{Rows: 2, Cols: 3}, Int32)
	require.NoError(t, err)

	require.Equal(t, byte(0x93), hdr[0])
	require.Equal(t, "NUMPY", string(hdr[1:6]))
	require.Equal(t, byte(1), hdr[6])
	require.Equal(t, byte(0), hdr[7])
	require.Equal(t, uint16(118), binary.LittleEndian.Uint16(hdr[8:10]))
	require.Equal(t, "{'descr': '<i4', 'fortran_order': False, 'shape': (2,3)}", string(hdr[10:]))
}

func TestEncodeHeaderDictionaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shape Shape
		dt    DType
		want  string
	}{
		{Shape{0, 0}, Uint64, "{'descr': '<u8', 'fortran_order': False, 'shape': (0,)}"},
		{Shape{5, 0}, Uint64, "{'descr': '<u8', 'fortran_order': False, 'shape': (0,)}"},
		{Shape{3, 1}, Float32, "{'descr': '<f4', 'fortran_order': False, 'shape': (3,)}"},
		{Shape{1, 4}, Uint32, "{'descr': '<u4', 'fortran_order': False, 'shape': (1,4)}"},
		{Shape{10, 2}, Float64, "{'descr': '<f8', 'fortran_order': False, 'shape': (10,2)}"},
	}
	for _, tc := range tests {
		hdr, err := EncodeHeader(tc.shape, tc.dt)
		require.NoError(t, err)
		require.Equal(t, tc.want, string(hdr[preambleOffset:]))
	}
}

func TestEncodeHeaderLargeDims(t *testing.T) {
	t.Parallel()

	maxInt := int(^uint(0) >> 1)
	hdr, err := EncodeHeader(Shape{Rows: maxInt, Cols: maxInt}, Float64)
	require.NoError(t, err)
	require.LessOrEqual(t, len(hdr), HeaderSize-1)
}

func TestEncodeHeaderRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := EncodeHeader(Shape{Rows: 1, Cols: 1}, DType(99))
	require.ErrorIs(t, err, ErrUnknownDType)

	_, err = EncodeHeader(Shape{Rows: -1, Cols: 2}, Int32)
	require.Error(t, err)
}

func TestReserveThenWriteHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hdr.npy")
	f, err := os.Create(path)
	require.NoError(t, err)

	require.NoError(t, Reserve(f))
	require.NoError(t, WriteHeader(f, Shape{Rows: 3, Cols: 1}, Float32))
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, HeaderSize)

	dict := "{'descr': '<f4', 'fortran_order': False, 'shape': (3,)}"
	require.Equal(t, dict, string(raw[preambleOffset:preambleOffset+len(dict)]))
	tail := raw[preambleOffset+len(dict):]
	require.Equal(t, bytes.Repeat([]byte{' '}, len(tail)-1), tail[:len(tail)-1])
	require.Equal(t, byte('\n'), raw[HeaderSize-1])
}

func TestParseHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	for _, shape := range []Shape{{0, 0}, {7, 1}, {2, 3}} {
		hdr, err := EncodeHeader(shape, Int64)
		require.NoError(t, err)
		region := append([]byte(nil), reservation...)
		copy(region, hdr)

		h, err := ParseHeader(region)
		require.NoError(t, err)
		require.Equal(t, MajorVersion, h.Major)
		require.Equal(t, MinorVersion, h.Minor)
		require.Equal(t, int(PreambleLen), h.HeaderLen)
		require.Equal(t, HeaderSize, h.DataOffset())
		require.Equal(t, "<i8", h.Descr)
		require.Equal(t, Int64, h.DType)
		require.False(t, h.FortranOrder)
		require.Equal(t, shape.Dims(), h.Shape)
		require.Equal(t, shape.Elements()*8, h.DataSize())
	}
}

func TestParseHeaderForeignSpacing(t *testing.T) {
	t.Parallel()

	dict := "{'descr': '<f8', 'fortran_order': True, 'shape': (4, 5), }"
	b := []byte(Magic)
	b = append(b, 1, 0)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(dict)+1))
	b = append(b, dict...)
	b = append(b, '\n')

	h, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, Float64, h.DType)
	require.True(t, h.FortranOrder)
	require.Equal(t, []int{4, 5}, h.Shape)
	require.Equal(t, 20, h.Elements())
}

func TestParseHeaderErrors(t *testing.T) {
	t.Parallel()

	valid, err := EncodeHeader(Shape{Rows: 1, Cols: 2}, Float32)
	require.NoError(t, err)

	_, err = ParseHeader(valid[:5])
	require.ErrorIs(t, err, ErrCorruptFile)

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 'X'
	_, err = ParseHeader(badMagic)
	require.ErrorIs(t, err, ErrInvalidMagic)

	badVersion := append([]byte(nil), valid...)
	badVersion[6] = 2
	_, err = ParseHeader(badVersion)
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	// Length field promises 118 bytes; only the unpadded dictionary is present.
	_, err = ParseHeader(valid)
	require.ErrorIs(t, err, ErrCorruptFile)

	// An untouched reservation is not a header.
	_, err = ParseHeader(reservation)
	require.ErrorIs(t, err, ErrInvalidMagic)
}
