// Package xmlber renders BER between its binary TLV form and the semantic XML
// form defined by a [grammar.Grammar]: element names come from the grammar,
// and the wire shape of every element survives the round trip via a small set
// of reserved attributes.
//
// [ToXML] walks a BER stream with [go.xfsx.dev/bed/vtlv] and builds an
// [go.xfsx.dev/bed/xmldom] tree. [FromXML] runs the reverse: it walks an
// xmldom tree twice, first to compute lengths bottom-up (BER headers are
// length-prefixed, so a constructed element's length depends on its
// children's encoded size), then to emit the bytes with
// [go.xfsx.dev/bed/tlv.Encoder].
package xmlber

import (
	"fmt"
	"io"
	"math/big"
	"strconv"

	"go.xfsx.dev/bed/asn1"
	"go.xfsx.dev/bed/bcd"
	"go.xfsx.dev/bed/grammar"
	"go.xfsx.dev/bed/tlv"
	"go.xfsx.dev/bed/vtlv"
	"go.xfsx.dev/bed/xmldom"
)

// Reserved XML attribute names used to preserve wire shape across a
// BER->XML->BER round trip.
const (
	AttrDefinite   = "definite"    // "true"/"false": definite- vs indefinite-length encoding
	AttrLSize      = "l_size"      // number of length octets used, for a definite length
	AttrOffset     = "offset"      // byte offset of the element's identifier octet in the source
	AttrUint2Int   = "uint2int"    // "true": render/re-encode an INTEGER-shaped value as unsigned
	AttrUnusedBits = "unused_bits" // number of padding bits in a BIT STRING's final content octet
)

// ToXML reads a BER stream from r and renders it as an xmldom document, using
// g to translate tags to element names and to content kinds. Elements absent
// from g fall back to their numeric tag as the element name and
// [grammar.Raw] (hex) content.
func ToXML(r io.Reader, g grammar.Grammar) (*xmldom.Node, error) {
	c := vtlv.NewCursor(r)
	doc := xmldom.NewDocument()
	stack := []*xmldom.Node{doc}

	for {
		h, err := c.Advance()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, err
		}
		if h == tlv.EndOfContents {
			stack = stack[:len(stack)-1]
			continue
		}

		parent := stack[len(stack)-1]
		el := parent.AppendElement(elementName(g, h.Tag))
		el.SetAttr(AttrOffset, strconv.FormatInt(c.Offset(), 10))
		if h.Length == tlv.LengthIndefinite {
			el.SetAttr(AttrDefinite, "false")
		} else {
			el.SetAttr(AttrDefinite, "true")
			el.SetAttr(AttrLSize, strconv.Itoa(h.LengthLen))
		}

		if h.Constructed {
			stack = append(stack, el)
			continue
		}

		val := c.Value()
		data := make([]byte, val.Len())
		if _, err := io.ReadFull(val, data); err != nil {
			return nil, fmt.Errorf("xmlber: reading value for %s: %w", h, err)
		}
		el.AppendText(renderContent(g, h.Tag, data, el))
	}
}

// elementName returns g's name for tag, or its numeric form if tag is
// unknown to g.
func elementName(g grammar.Grammar, tag asn1.Tag) string {
	if g != nil {
		if name, ok := g.Name(tag); ok {
			return name
		}
	}
	return tag.String()
}

// renderContent formats a primitive element's raw bytes according to g's
// content kind for tag. For a [grammar.BitString], el (when non-nil) also
// receives the [AttrUnusedBits] attribute recording the encoded padding-bit
// count.
func renderContent(g grammar.Grammar, tag asn1.Tag, data []byte, el *xmldom.Node) string {
	kind := grammar.Raw
	if g != nil {
		kind = g.ContentKind(tag)
	}
	switch kind {
	case grammar.IntegerSigned:
		return signedInt(data).String()
	case grammar.IntegerUnsigned:
		return new(big.Int).SetBytes(data).String()
	case grammar.OctetString, grammar.Raw:
		return fmt.Sprintf("%x", data)
	case grammar.BCDString:
		return bcd.Decode(data)
	case grammar.IA5String:
		return string(data)
	case grammar.BitString:
		return renderBitString(data, el)
	case grammar.Timestamp:
		return bcd.Decode(data)
	default:
		return fmt.Sprintf("%x", data)
	}
}

// renderBitString decodes data as the content octets of a BIT STRING (a
// leading unused-bits count followed by the packed bit data), records the
// unused-bits count on el, and renders the packed bits as hex.
func renderBitString(data []byte, el *xmldom.Node) string {
	if len(data) == 0 {
		return ""
	}
	s := asn1.BitString{Bytes: data[1:], BitLength: len(data[1:])*8 - int(data[0])}
	if el != nil {
		el.SetAttr(AttrUnusedBits, strconv.Itoa(int(data[0])))
	}
	return fmt.Sprintf("%x", s.Bytes)
}

// signedInt decodes data as a big-endian two's-complement INTEGER.
func signedInt(data []byte) *big.Int {
	v := new(big.Int).SetBytes(data)
	if len(data) > 0 && data[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(data))*8))
	}
	return v
}
