// Package vtlv adds the vertical dimension to [go.xfsx.dev/bed/tlv]: where a
// [tlv.Decoder] reads a flat stream of headers, a [Cursor] additionally knows
// where in the tree it is. It is a thin wrapper around the decoder's existing
// ancestor stack ([tlv.Decoder.StackDepth], [tlv.Decoder.StackIndex]) plus a
// byte-offset tracker, not a reimplementation of TLV parsing.
package vtlv

import (
	"io"

	"go.xfsx.dev/bed/tlv"
)

// Cursor walks a BER stream one TLV at a time, tracking the byte offset and
// ancestor chain of the element last read by [Cursor.Advance].
type Cursor struct {
	d      *tlv.Decoder
	pos    int64 // offset at which the next TLV (or EOC) begins
	offset int64 // offset of the TLV that Advance last returned

	h   tlv.Header
	val *tlv.Value
}

// NewCursor returns a Cursor reading from r.
func NewCursor(r io.Reader) *Cursor {
	return &Cursor{d: tlv.NewDecoder(r)}
}

// Advance reads the next TLV header, descending into constructed elements and
// surfacing an end-of-contents marker ([tlv.EndOfContents]) when a
// constructed element closes. It returns [io.EOF] once the top-level stream
// is exhausted.
func (c *Cursor) Advance() (tlv.Header, error) {
	start := c.pos
	h, val, err := c.d.ReadHeader()
	if err != nil {
		return h, err
	}
	c.h, c.val = h, val

	if h == tlv.EndOfContents {
		c.pos = c.d.InputOffset()
		return h, nil
	}

	headerEnd := c.d.InputOffset()
	if h.Constructed {
		c.pos = headerEnd
	} else {
		c.pos = headerEnd + int64(h.Length)
	}
	c.offset = start
	return h, nil
}

// Header returns the header most recently read by Advance.
func (c *Cursor) Header() tlv.Header { return c.h }

// Value returns the [tlv.Value] of the current element, or nil if the
// current element is constructed or is an end-of-contents marker.
func (c *Cursor) Value() *tlv.Value { return c.val }

// Depth returns the nesting depth of the element Advance last returned: zero
// for the virtual top level, one for a top-level TLV, and so on. It mirrors
// [tlv.Decoder.StackDepth].
func (c *Cursor) Depth() int { return c.d.StackDepth() }

// Ancestor returns the header at stack level i, where 0 is the virtual root
// and [Cursor.Depth] is the element Advance last returned. See
// [tlv.Decoder.StackIndex].
func (c *Cursor) Ancestor(i int) tlv.Header { return c.d.StackIndex(i) }

// SkipChildren discards the remainder of the current element: its value if
// primitive, or its entire subtree up to and including its matching
// end-of-contents marker if constructed.
func (c *Cursor) SkipChildren() error { return c.d.Skip() }

// Offset returns the byte offset of the identifier byte of the element
// Advance last returned.
func (c *Cursor) Offset() int64 { return c.offset }

// EndOffset returns the byte offset immediately following the token
// (header, value, or end-of-contents marker) Advance last returned. For an
// end-of-contents marker this is the offset one past its two bytes, which
// is also one past the end of the constructed element it closes.
func (c *Cursor) EndOffset() int64 { return c.d.InputOffset() }
