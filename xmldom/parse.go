package xmldom

import (
	"encoding/xml"
	"io"
	"strings"
)

// ParseXML parses the XML document read from r into an xmldom tree. It is
// the inverse of [Node.OutputXML] (modulo insignificant whitespace) and is
// used by [ParseFragment] to load literal XML fragments for the `insert`
// edit op.
func ParseXML(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	doc := NewDocument()
	stack := []*Node{doc}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Node{Type: ElementNode, Data: t.Name.Local}
			for _, a := range t.Attr {
				el.Attr = append(el.Attr, Attr{Name: a.Name.Local, Value: a.Value})
			}
			top.appendChild(el)
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.appendChild(&Node{Type: TextNode, Data: string(t)})
		case xml.Comment:
			top.appendChild(&Node{Type: CommentNode, Data: string(t)})
		}
	}
}

// ParseFragment parses src as a sequence of zero or more top-level XML
// elements (not necessarily a single well-formed document) and returns a
// synthetic document node holding them as children, for use as the source of
// an `insert` edit op.
func ParseFragment(src string) (*Node, error) {
	doc, err := ParseXML(strings.NewReader("<bed-fragment>" + src + "</bed-fragment>"))
	if err != nil {
		return nil, err
	}
	wrapper := doc.FirstChildElement()
	if wrapper == nil {
		return doc, nil
	}
	frag := NewDocument()
	for c := wrapper.FirstChild; c != nil; {
		next := c.NextSibling
		c.Remove()
		frag.appendChild(c)
		c = next
	}
	return frag, nil
}

// ChildElementCount returns the number of element children of n.
func (n *Node) ChildElementCount() int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == ElementNode {
			count++
		}
	}
	return count
}

// FirstChildElement returns n's first element child, or nil.
func (n *Node) FirstChildElement() *Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// NextElementSibling returns n's next sibling that is an element, or nil.
func (n *Node) NextElementSibling() *Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == ElementNode {
			return s
		}
	}
	return nil
}

// Root returns the document element: the first element child of a document
// node, or n itself if n is already an element.
func (n *Node) Root() *Node {
	if n.Type == ElementNode {
		return n
	}
	return n.FirstChildElement()
}
