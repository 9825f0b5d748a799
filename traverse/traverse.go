// Package traverse implements a single depth-first visitor, generalized over
// a "proxy" that exposes just enough of an element to drive generic
// consumers (a pretty writer, a tag-path search, an audit-control-info
// computation) without those consumers caring whether they are walking a
// [go.xfsx.dev/bed/vtlv.Cursor] over raw BER or a
// [go.xfsx.dev/bed/xmldom.Node] tree.
package traverse

// Proxy is the minimal surface a traversal driver needs from whatever tree
// it walks. Implementations are positioned at a single node; Advance moves
// to the next node in depth-first pre-order.
type Proxy interface {
	// Tag returns the name of the current element.
	Tag() string

	// Height returns the nesting depth of the current element: zero at the
	// virtual root, one for a top-level element, and so on.
	Height() int

	// String returns the current element's content rendered as text.
	String() string

	// Uint32 parses the current element's content as an unsigned 32-bit
	// integer, reporting false if it is not one.
	Uint32() (uint32, bool)

	// Uint64 parses the current element's content as an unsigned 64-bit
	// integer, reporting false if it is not one.
	Uint64() (uint64, bool)

	// Advance moves to the next element in depth-first pre-order. Once EOT
	// reports true, Advance must not be called again.
	Advance() error

	// SkipChildren advances past the current element's subtree without
	// visiting it, positioning the proxy at the next sibling (or the
	// parent's next sibling, and so on).
	SkipChildren() error

	// EOT reports whether the traversal is exhausted.
	EOT() bool
}

// Walk drives p to exhaustion, calling visit once for every element Advance
// produces. If visit returns [Skip], the current element's subtree is
// skipped via [Proxy.SkipChildren] instead of being descended into. Any
// other non-nil error from visit stops the walk and is returned.
func Walk(p Proxy, visit func(Proxy) error) error {
	for !p.EOT() {
		if err := p.Advance(); err != nil {
			return err
		}
		if p.EOT() {
			return nil
		}
		err := visit(p)
		switch {
		case err == nil:
			continue
		case err == Skip:
			if err := p.SkipChildren(); err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}

// skipSignal is a sentinel error type for [Skip].
type skipSignal struct{}

func (skipSignal) Error() string { return "traverse: skip subtree" }

// Skip is returned by a Walk visitor function to skip the current element's
// subtree rather than stop the traversal.
var Skip error = skipSignal{}
