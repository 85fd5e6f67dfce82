package npy

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// Encoder packs delimited text lines into little-endian elements.
// It reuses one line buffer across calls and is not safe for concurrent use.
type Encoder struct {
	dtype DType
	sep   string
	buf   []byte
}

// NewEncoder returns an Encoder for dt splitting on sep.
func NewEncoder(dt DType, sep string) (*Encoder, error) {
	if !dt.valid() {
		return nil, &ConfigError{Value: dt.String(), Err: ErrUnknownDType}
	}
	if sep == "" {
		return nil, &ConfigError{Value: sep, Err: ErrEmptySeparator}
	}
	return &Encoder{dtype: dt, sep: sep, buf: make([]byte, 0, 256)}, nil
}

// EncodeLine splits line on the separator, encodes every field and appends
// the line's bytes to sink in one write. It returns the number of fields.
// Nothing is written for a line containing an unparseable field.
func (e *Encoder) EncodeLine(line string, sink io.Writer) (int, error) {
	buf := e.buf[:0]
	n := 0
	var err error
	for tok := range strings.SplitSeq(line, e.sep) {
		n++
		buf, err = appendElement(buf, tok, e.dtype)
		if err != nil {
			e.buf = buf[:0]
			return n, &ParseError{Field: n, Token: tok, DType: e.dtype, Err: unwrapNumError(err)}
		}
	}
	e.buf = buf[:0]
	if err := writeFull(sink, buf); err != nil {
		return n, &WriteError{Op: "write data", Err: err}
	}
	return n, nil
}

// EncodeLine encodes a single line with a throwaway Encoder.
func EncodeLine(line string, sink io.Writer, dt DType, sep string) (int, error) {
	enc, err := NewEncoder(dt, sep)
	if err != nil {
		return 0, err
	}
	return enc.EncodeLine(line, sink)
}

func appendElement(buf []byte, tok string, dt DType) ([]byte, error) {
	le := binary.LittleEndian
	switch dt {
	case Uint32:
		v, err := strconv.ParseUint(trimPlus(tok), 10, 32)
		if err != nil {
			return buf, err
		}
		return le.AppendUint32(buf, uint32(v)), nil
	case Uint64:
		v, err := strconv.ParseUint(trimPlus(tok), 10, 64)
		if err != nil {
			return buf, err
		}
		return le.AppendUint64(buf, v), nil
	case Int32:
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return buf, err
		}
		return le.AppendUint32(buf, uint32(int32(v))), nil
	case Int64:
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return buf, err
		}
		return le.AppendUint64(buf, uint64(v)), nil
	case Float32:
		v, err := parseFloat(tok, 32)
		if err != nil {
			return buf, err
		}
		return le.AppendUint32(buf, math.Float32bits(float32(v))), nil
	case Float64:
		v, err := parseFloat(tok, 64)
		if err != nil {
			return buf, err
		}
		return le.AppendUint64(buf, math.Float64bits(v)), nil
	default:
		return buf, ErrUnknownDType
	}
}

// trimPlus drops one leading '+', which ParseUint rejects but a signed
// parse accepts.
func trimPlus(tok string) string {
	if len(tok) > 1 && tok[0] == '+' && tok[1] != '+' && tok[1] != '-' {
		return tok[1:]
	}
	return tok
}

// parseFloat accepts decimal notation plus inf/nan spellings. Hexadecimal
// mantissas are rejected. Overflow keeps the saturated ±Inf result instead of
// failing.
func parseFloat(tok string, bitSize int) (float64, error) {
	if isHexFloat(tok) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: tok, Err: strconv.ErrSyntax}
	}
	v, err := strconv.ParseFloat(tok, bitSize)
	if err != nil && errors.Is(err, strconv.ErrRange) {
		return v, nil
	}
	return v, err
}

func isHexFloat(tok string) bool {
	if tok != "" && (tok[0] == '+' || tok[0] == '-') {
		tok = tok[1:]
	}
	return len(tok) >= 2 && tok[0] == '0' && (tok[1] == 'x' || tok[1] == 'X')
}

func unwrapNumError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}
