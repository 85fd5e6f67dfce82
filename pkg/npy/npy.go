// Package npy writes and reads NumPy .npy array files (format version 1.0).
//
// The writer streams delimited text into a fixed-width little-endian element
// block. The final shape is only known once the input is exhausted, so the
// writer reserves HeaderSize bytes at the start of the sink and patches the
// header in place after the data has been written.
package npy

// Format constants must never change.
const (
	// Magic is the leading byte sequence of every .npy file.
	Magic = "\x93NUMPY"

	MajorVersion byte = 1
	MinorVersion byte = 0

	// HeaderSize is the size of the reserved header region. The data region
	// always starts at this offset.
	HeaderSize = 128

	// PreambleLen is the value of the little-endian length field at offset 8:
	// the number of header bytes that follow it.
	PreambleLen uint16 = HeaderSize - preambleOffset

	preambleOffset = 10
)
