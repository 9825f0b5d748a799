// Package bcd implements packed Binary-Coded Decimal codecs as used
// throughout TAP/RAP payloads (phone numbers, timestamps, amounts): two hex
// digits packed per byte, high nibble first, with 0xF reserved as a filler
// nibble for odd-length runs.
//
// Several interchangeable back-ends are provided ([Bytewise], [Lookup],
// [SWAR]); all must produce byte-identical output for the same input. The
// package-level [Decode] and [Encode] functions use a back-end chosen once at
// init time from a CPU capability probe (see [Select]).
package bcd

import "strconv"

// Backend packs and unpacks BCD digit strings. Implementations must agree
// byte-for-byte with each other on every input.
type Backend interface {
	// Name identifies the back-end, e.g. for diagnostics.
	Name() string

	// Decode writes 2*len(src) lowercase hex characters to dst, which must
	// have length >= 2*len(src), and returns 2*len(src). High nibble first.
	// A filler nibble (0xF) decodes to the character 'f' with no special
	// handling: Decode never inspects position within the run.
	Decode(dst, src []byte) int

	// Encode packs the hex digits in src into dst, which must have length
	// >= (len(src)+1)/2, and returns the number of bytes written. Hex
	// digits are matched case-insensitively. If len(src) is odd, the final
	// low nibble is padded with 0xF. A byte outside [0-9a-fA-F] is reported
	// via an *InvalidDigitError.
	Encode(dst, src []byte) (int, error)
}

// InvalidDigitError is returned by Encode when src contains a byte that is
// not a hex digit.
type InvalidDigitError struct {
	Pos  int  // index into src
	Char byte // the offending byte
}

func (e *InvalidDigitError) Error() string {
	return "bcd: invalid digit " + strconv.QuoteRune(rune(e.Char)) + " at position " + strconv.Itoa(e.Pos)
}

// DecodedLen returns the number of bytes [Backend.Decode] writes for an input
// of n bytes.
func DecodedLen(n int) int { return 2 * n }

// EncodedLen returns the number of bytes [Backend.Encode] writes for an input
// of n hex digits.
func EncodedLen(n int) int { return (n + 1) / 2 }

// active is the back-end used by the package-level Decode/Encode functions.
var active Backend = Select()

// Decode decodes src using the active back-end and returns the hex digit
// string. See [Backend.Decode].
func Decode(src []byte) string {
	dst := make([]byte, DecodedLen(len(src)))
	active.Decode(dst, src)
	return string(dst)
}

// Encode packs s using the active back-end. See [Backend.Encode].
func Encode(s string) ([]byte, error) {
	src := []byte(s)
	dst := make([]byte, EncodedLen(len(src)))
	n, err := active.Encode(dst, src)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// hexDigitValue returns the nibble value of c (0-15) and true, or false if c
// is not a hex digit in [0-9a-fA-F].
func hexDigitValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// nibbleChar returns the lowercase hex character for a nibble value 0-15.
func nibbleChar(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + (n - 10)
}
