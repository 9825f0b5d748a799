package bcd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var backends = map[string]Backend{
	"Bytewise": Bytewise{},
	"Lookup":   Lookup{},
	"SWAR":     SWAR{},
}

func TestBackends_Decode(t *testing.T) {
	tests := map[string]struct {
		input []byte
		want  string
	}{
		"Empty":      {[]byte{}, ""},
		"Single":     {[]byte{0xDE}, "de"},
		"Scenario1":  {[]byte{0xDE, 0xAD, 0xCA, 0xFE}, "deadcafe"},
		"Filler":     {[]byte{0x3F}, "3f"},
		"TwelveByte": {bytes.Repeat([]byte{0x12}, 12), strings.Repeat("12", 12)},
	}

	for name, be := range backends {
		t.Run(name, func(t *testing.T) {
			for tcName, tc := range tests {
				dst := make([]byte, DecodedLen(len(tc.input)))
				n := be.Decode(dst, tc.input)
				if n != len(dst) {
					t.Fatalf("%s: Decode() returned %d, want %d", tcName, n, len(dst))
				}
				if string(dst) != tc.want {
					t.Fatalf("%s: Decode() = %q, want %q", tcName, dst, tc.want)
				}
			}
		})
	}
}

func TestBackends_Encode(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    []byte
		wantErr bool
	}{
		"Empty":     {"", []byte{}, false},
		"Even":      {"deadcafe", []byte{0xDE, 0xAD, 0xCA, 0xFE}, false},
		"Odd":       {"133713371337133", []byte{0x13, 0x37, 0x13, 0x37, 0x13, 0x37, 0x13, 0x3F}, false},
		"Uppercase": {"DEADCAFE", []byte{0xDE, 0xAD, 0xCA, 0xFE}, false},
		"Invalid":   {"12g4", nil, true},
		"Long":      {"0123456789abcdef0123456789abcdef0123456789abcdef", nil, false},
	}
	for name, be := range backends {
		t.Run(name, func(t *testing.T) {
			for tcName, tc := range tests {
				dst := make([]byte, EncodedLen(len(tc.input)))
				n, err := be.Encode(dst, []byte(tc.input))
				if tc.wantErr {
					var digitErr *InvalidDigitError
					if !errors.As(err, &digitErr) {
						t.Fatalf("%s: Encode() err = %v, want *InvalidDigitError", tcName, err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("%s: Encode() unexpected error: %v", tcName, err)
				}
				if tc.want != nil && !bytes.Equal(dst[:n], tc.want) {
					t.Fatalf("%s: Encode() = % x, want % x", tcName, dst[:n], tc.want)
				}
			}
		})
	}
}

// TestBackends_Agree checks that all back-ends produce byte-identical output
// across a range of chunk-boundary-straddling input lengths.
func TestBackends_Agree(t *testing.T) {
	hexAlphabet := "0123456789abcdef"
	for length := 0; length <= 40; length++ {
		text := make([]byte, length)
		for i := range text {
			text[i] = hexAlphabet[i%16]
		}

		var wantEncoded []byte
		var wantDecoded string
		for name, be := range backends {
			dst := make([]byte, EncodedLen(len(text)))
			n, err := be.Encode(dst, text)
			if err != nil {
				t.Fatalf("len=%d %s: Encode() error: %v", length, name, err)
			}
			encoded := dst[:n]
			if wantEncoded == nil {
				wantEncoded = encoded
			} else if !bytes.Equal(encoded, wantEncoded) {
				t.Fatalf("len=%d %s: Encode() = % x, want % x", length, name, encoded, wantEncoded)
			}

			decDst := make([]byte, DecodedLen(len(encoded)))
			be.Decode(decDst, encoded)
			if wantDecoded == "" {
				wantDecoded = string(decDst)
			} else if string(decDst) != wantDecoded {
				t.Fatalf("len=%d %s: Decode() = %q, want %q", length, name, decDst, wantDecoded)
			}
		}
	}
}

// TestDecodeEncodeRoundTrip checks the §8 property: decode(encode(x)) == x
// lowercased, plus a trailing 'f' for odd-length input.
func TestDecodeEncodeRoundTrip(t *testing.T) {
	inputs := []string{"", "a", "deadcafe", "133713371337133", "0F"}
	for _, in := range inputs {
		encoded, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode(%q): %v", in, err)
		}
		decoded := Decode(encoded)
		want := toLowerHex(in)
		if len(want)%2 != 0 {
			want += "f"
		}
		if decoded != want {
			t.Fatalf("round trip of %q = %q, want %q", in, decoded, want)
		}
	}
}

func toLowerHex(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'F' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
