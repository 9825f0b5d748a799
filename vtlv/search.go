package vtlv

import (
	"io"

	"go.xfsx.dev/bed/asn1"
	"go.xfsx.dev/bed/tlv"
)

// WildcardTag matches any tag at its position in a [Path]. It is the same
// value as [asn1.TagReserved], which cannot occur as a real element tag since
// the universal class reserves it for the end-of-contents marker.
const WildcardTag = asn1.TagReserved

// Path is a sequence of tags identifying an element by the chain of its
// ancestors. A [WildcardTag] entry matches any single tag at that position;
// it never matches more than one level.
type Path []asn1.Tag

// Search scans r for the first element whose ancestor chain matches path,
// returning the byte offset of its identifier byte.
//
// If relative is true, path is matched against the trailing segment of the
// ancestor chain of any length; an element at depth 5 can match a
// three-element relative path. If relative is false, path must match the
// full chain from the top level, so the matching element's depth must equal
// len(path).
//
// Search never reads the content of primitive elements; it only inspects
// headers and the ancestor chain that [tlv.Decoder] already tracks.
func Search(r io.Reader, path Path, relative bool) (offset int64, found bool, err error) {
	c := NewCursor(r)
	for {
		h, aerr := c.Advance()
		if aerr == io.EOF {
			return 0, false, nil
		}
		if aerr != nil {
			return 0, false, aerr
		}
		if h == tlv.EndOfContents {
			continue
		}

		depth := c.Depth()
		switch {
		case relative && depth >= len(path) && matchPath(c, depth, path):
			return c.Offset(), true, nil
		case !relative && depth == len(path) && matchPath(c, depth, path):
			return c.Offset(), true, nil
		}
	}
}

// matchPath checks whether the len(path) innermost levels of the ancestor
// chain at depth (1..depth, with depth itself being the element just read)
// match path, honoring [WildcardTag].
func matchPath(c *Cursor, depth int, path Path) bool {
	base := depth - len(path)
	for i, want := range path {
		if want == WildcardTag {
			continue
		}
		if c.Ancestor(base+1+i).Tag != want {
			return false
		}
	}
	return true
}
