package serdes

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/gosuda/loco/common"
)

// Method is the 11-byte command identifier: ASCII bytes right-padded with
// NUL. The logical string is the prefix before the first NUL; equality is
// byte-wise over the full array.
type Method [common.MethodSize]byte

// NewMethod builds a Method from s. It reports false when s exceeds 11
// bytes or contains an interior NUL, which would shorten the string on a
// round trip.
func NewMethod(s string) (Method, bool) {
	var m Method
	if len(s) > common.MethodSize {
		return m, false
	}
	if strings.IndexByte(s, 0) >= 0 {
		return m, false
	}
	copy(m[:], s)
	return m, true
}

// MethodFromBytes decodes an 11-byte wire value. Any byte content is
// accepted as long as the logical prefix is valid UTF-8.
func MethodFromBytes(b []byte) (Method, error) {
	var m Method
	if len(b) != common.MethodSize {
		return m, common.ErrInvalidLength
	}
	copy(m[:], b)
	if !utf8.Valid(m.logical()) {
		return m, common.ErrMethodInvalid
	}
	return m, nil
}

func (m Method) logical() []byte {
	if i := bytes.IndexByte(m[:], 0); i >= 0 {
		return m[:i]
	}
	return m[:]
}

// String returns the logical method name.
func (m Method) String() string {
	return string(m.logical())
}

// Len returns the logical length: the offset of the first NUL, or 11 if
// none.
func (m Method) Len() int {
	return len(m.logical())
}
