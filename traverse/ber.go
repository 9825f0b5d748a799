package traverse

import (
	"io"
	"math/big"

	"go.xfsx.dev/bed/bcd"
	"go.xfsx.dev/bed/grammar"
	"go.xfsx.dev/bed/tlv"
	"go.xfsx.dev/bed/vtlv"
)

// BERProxy implements [Proxy] over a raw BER stream via [vtlv.Cursor]. It is
// the proxy the audit-control-info computation uses to walk an encoded record
// without building an xmldom tree first.
type BERProxy struct {
	c   *vtlv.Cursor
	g   grammar.Grammar
	h   tlv.Header
	eot bool
	err error
}

// NewBERProxy returns a BERProxy reading from r, positioned before the first
// element. g is used to resolve tag names and content kinds; it may be nil.
func NewBERProxy(r io.Reader, g grammar.Grammar) *BERProxy {
	return &BERProxy{c: vtlv.NewCursor(r), g: g}
}

// Err returns the first error encountered by Advance, if any.
func (p *BERProxy) Err() error { return p.err }

// Offset returns the byte offset of the element the proxy is positioned at.
func (p *BERProxy) Offset() int64 { return p.c.Offset() }

func (p *BERProxy) Advance() error {
	for {
		h, err := p.c.Advance()
		if err == io.EOF {
			p.eot = true
			return nil
		}
		if err != nil {
			p.err = err
			p.eot = true
			return err
		}
		if h == tlv.EndOfContents {
			continue // the proxy only surfaces real elements
		}
		p.h = h
		return nil
	}
}

func (p *BERProxy) SkipChildren() error {
	if p.h.Constructed {
		return p.c.SkipChildren()
	}
	return nil
}

func (p *BERProxy) EOT() bool { return p.eot }

func (p *BERProxy) Tag() string {
	if p.g != nil {
		if name, ok := p.g.Name(p.h.Tag); ok {
			return name
		}
	}
	return p.h.Tag.String()
}

func (p *BERProxy) Height() int { return p.c.Depth() }

func (p *BERProxy) String() string {
	if p.h.Constructed {
		return ""
	}
	data := p.readValue()
	kind := grammar.Raw
	if p.g != nil {
		kind = p.g.ContentKind(p.h.Tag)
	}
	switch kind {
	case grammar.BCDString, grammar.Timestamp:
		return bcd.Decode(data)
	case grammar.IA5String:
		return string(data)
	default:
		return new(big.Int).SetBytes(data).String()
	}
}

func (p *BERProxy) Uint32() (uint32, bool) {
	v, ok := p.uint()
	if !ok || v > 1<<32-1 {
		return 0, false
	}
	return uint32(v), true
}

func (p *BERProxy) Uint64() (uint64, bool) {
	return p.uint()
}

func (p *BERProxy) uint() (uint64, bool) {
	if p.h.Constructed {
		return 0, false
	}
	data := p.readValue()
	if len(data) == 0 || len(data) > 8 {
		return 0, false
	}
	var v uint64
	for _, b := range data {
		v = v<<8 | uint64(b)
	}
	return v, true
}

// readValue reads and returns the raw content bytes of the current
// primitive element.
func (p *BERProxy) readValue() []byte {
	val := p.c.Value()
	if val == nil {
		return nil
	}
	data := make([]byte, val.Len())
	if _, err := io.ReadFull(val, data); err != nil {
		p.err = err
		return nil
	}
	return data
}
