package xmlber

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"go.xfsx.dev/bed/asn1"
	"go.xfsx.dev/bed/bcd"
	"go.xfsx.dev/bed/grammar"
	"go.xfsx.dev/bed/tlv"
	"go.xfsx.dev/bed/xmldom"
)

// FromXML re-encodes doc as BER, writing to e. Elements are matched back to
// their tag via g (falling back to parsing the element name as a numeric
// [asn1.Tag] of the form the [asn1.Tag.String] method produces), and the
// [AttrDefinite] / [AttrUint2Int] attributes control how the header and
// content of each element are written. The encoding is computed in two
// passes: sizePass first determines the encoded content length of every
// subtree bottom-up, memoizing each node's result, then emit writes the
// actual bytes using those memoized sizes — a definite-length constructed
// element's header needs its total content length before its children are
// emitted, but each subtree's size must only be computed once.
func FromXML(e *tlv.Encoder, doc *xmldom.Node, g grammar.Grammar) error {
	root := doc.Root()
	if root == nil {
		return nil
	}
	sizes := make(map[*xmldom.Node]int)
	sizePass(root, g, sizes)
	return emit(e, root, g, sizes)
}

// sizePass computes the encoded content length (not including the header
// itself) of n's subtree, storing the result in sizes, and returns it.
func sizePass(n *xmldom.Node, g grammar.Grammar, sizes map[*xmldom.Node]int) int {
	tag, _ := tagOf(n, g)

	var contentLen int
	if isLeaf(n) {
		contentLen = len(contentBytes(n, g, tag))
	} else {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmldom.ElementNode {
				continue
			}
			cc := sizePass(c, g, sizes)
			ctag, _ := tagOf(c, g)
			cindefinite := c.AttrOr(AttrDefinite, "true") == "false"
			cLengthLen := lengthLen(cc, cindefinite)
			if forced := forcedLengthLen(c, cindefinite); forced > 0 {
				cLengthLen = forced
			}
			contentLen += identifierLen(ctag) + cLengthLen + cc
		}
		if n.AttrOr(AttrDefinite, "true") == "false" {
			contentLen += 2 // the child end-of-contents marker
		}
	}

	sizes[n] = contentLen
	return contentLen
}

func emit(e *tlv.Encoder, n *xmldom.Node, g grammar.Grammar, sizes map[*xmldom.Node]int) error {
	tag, constructed := tagOf(n, g)
	indefinite := n.AttrOr(AttrDefinite, "true") == "false"

	length := tlv.LengthIndefinite
	if !indefinite {
		length = sizes[n]
	}

	h := tlv.Header{Tag: tag, Constructed: constructed, Length: length}
	if !indefinite {
		h.LengthLen = forcedLengthLen(n, indefinite)
	}
	w, err := e.WriteHeader(h)
	if err != nil {
		return fmt.Errorf("xmlber: writing header for %s: %w", n.Data, err)
	}

	if constructed {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmldom.ElementNode {
				continue
			}
			if err := emit(e, c, g, sizes); err != nil {
				return err
			}
		}
		if indefinite {
			if _, err := e.WriteHeader(tlv.EndOfContents); err != nil {
				return fmt.Errorf("xmlber: writing end-of-contents for %s: %w", n.Data, err)
			}
		}
		return nil
	}

	if _, err := w.Write(contentBytes(n, g, tag)); err != nil {
		return fmt.Errorf("xmlber: writing content for %s: %w", n.Data, err)
	}
	return nil
}

// tagOf resolves n's BER tag and constructed flag from g, falling back to
// parsing n.Data as a literal tag number for elements g doesn't know about.
func tagOf(n *xmldom.Node, g grammar.Grammar) (tag asn1.Tag, constructed bool) {
	if g != nil {
		if entry, ok := g.EntryByName(n.Data); ok {
			return entry.Tag, entry.Shape == grammar.Constructed
		}
	}
	return parseTagLiteral(n.Data), !isLeaf(n)
}

// parseTagLiteral parses the numeric tag form produced by [asn1.Tag.String],
// e.g. "[APPLICATION 64]" or the bare "[5]" used for context-specific tags.
// It is the fallback used for elements with no grammar entry.
func parseTagLiteral(s string) asn1.Tag {
	s = strings.Trim(s, "[]")
	fields := strings.Fields(s)

	class, numStr := asn1.ClassContextSpecific, s
	if len(fields) == 2 {
		numStr = fields[1]
		switch fields[0] {
		case "APPLICATION":
			class = asn1.ClassApplication
		case "PRIVATE":
			class = asn1.ClassPrivate
		case "UNIVERSAL":
			class = asn1.ClassUniversal
		}
	}

	n, err := strconv.Atoi(numStr)
	if err != nil {
		return asn1.TagReserved
	}
	return class | asn1.Tag(n)
}

// isLeaf reports whether n has no element children, i.e. it is a primitive
// BER element whose XML representation is text content.
func isLeaf(n *xmldom.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmldom.ElementNode {
			return false
		}
	}
	return true
}

// contentBytes renders n's text content back into the raw bytes its content
// kind requires, honoring [AttrUint2Int].
func contentBytes(n *xmldom.Node, g grammar.Grammar, tag asn1.Tag) []byte {
	kind := grammar.Raw
	if g != nil {
		kind = g.ContentKind(tag)
	}
	text := n.InnerText()

	switch kind {
	case grammar.IntegerSigned, grammar.IntegerUnsigned:
		v, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil
		}
		if n.AttrOr(AttrUint2Int, "false") == "true" || kind == grammar.IntegerUnsigned {
			return v.Bytes()
		}
		return signedBytes(v)
	case grammar.OctetString, grammar.Raw:
		b, err := hexDecode(text)
		if err != nil {
			return nil
		}
		return b
	case grammar.BitString:
		return bitStringBytes(n, text)
	case grammar.BCDString, grammar.Timestamp:
		b, err := bcd.Encode(text)
		if err != nil {
			return nil
		}
		return b
	case grammar.IA5String:
		return []byte(text)
	default:
		b, err := hexDecode(text)
		if err != nil {
			return nil
		}
		return b
	}
}

// bitStringBytes reconstructs a BIT STRING's content octets (leading
// unused-bits count, then the packed bit data hex-encoded as text) from n's
// [AttrUnusedBits] attribute, which [ToXML] records alongside the hex text.
func bitStringBytes(n *xmldom.Node, text string) []byte {
	packed, err := hexDecode(text)
	if err != nil {
		return nil
	}
	unused := 0
	if v, ok := n.Get(AttrUnusedBits); ok {
		if u, err := strconv.Atoi(v); err == nil {
			unused = u
		}
	}
	s := asn1.BitString{Bytes: packed, BitLength: len(packed)*8 - unused}
	if !s.IsValid() {
		return nil
	}
	return append([]byte{byte(unused)}, packed...)
}

// signedBytes renders v as a minimal big-endian two's-complement INTEGER.
func signedBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	if v.Sign() > 0 {
		b := v.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	bits := v.BitLen() + 1
	nbytes := (bits + 7) / 8
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nbytes)*8)
	u := new(big.Int).Add(mod, v)
	b := u.Bytes()
	for len(b) < nbytes {
		b = append([]byte{0}, b...)
	}
	return b
}

func hexDecode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("xmlber: odd-length hex string %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		var b byte
		for j := 0; j < 2; j++ {
			c := s[i*2+j]
			v, ok := hexVal(c)
			if !ok {
				return nil, fmt.Errorf("xmlber: invalid hex digit %q", c)
			}
			b = b<<4 | v
		}
		out[i] = b
	}
	return out, nil
}

func hexVal(c byte) (byte, bool) {
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

// identifierLen returns the number of octets tag's identifier encodes to.
func identifierLen(tag asn1.Tag) int {
	n := tag.Number()
	if n < 31 {
		return 1
	}
	length := 1
	for n > 0 {
		length++
		n >>= 7
	}
	return length
}

// forcedLengthLen reads the [AttrLSize] attribute n carried from [ToXML] (or
// that an edit set explicitly), returning the length-field width [emit]
// should force the encoder to use, or 0 if the width is unconstrained
// (encoder picks the minimal one) or n is indefinite-length. A value smaller
// than the minimal required width is rejected by the encoder, not silently
// dropped here.
func forcedLengthLen(n *xmldom.Node, indefinite bool) int {
	if indefinite {
		return 0
	}
	v, ok := n.Get(AttrLSize)
	if !ok {
		return 0
	}
	width, err := strconv.Atoi(v)
	if err != nil || width < 1 {
		return 0
	}
	return width
}

// lengthLen returns the number of octets a BER length field of contentLen
// occupies, or 1 for the indefinite-length short form (0x80).
func lengthLen(contentLen int, indefinite bool) int {
	if indefinite {
		return 1
	}
	if contentLen < 0x80 {
		return 1
	}
	n := 1
	for contentLen > 0 {
		n++
		contentLen >>= 8
	}
	return n
}
