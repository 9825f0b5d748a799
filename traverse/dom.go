package traverse

import (
	"strconv"

	"go.xfsx.dev/bed/xmldom"
)

// DOMProxy implements [Proxy] over an [xmldom.Node] tree, depth-first
// pre-order, visiting element nodes only (text and comment nodes are
// content, not separately visited elements).
type DOMProxy struct {
	curr  *xmldom.Node
	stack []*xmldom.Node // ancestors still owed a sibling-or-ascend step
	eot   bool
}

// NewDOMProxy returns a DOMProxy rooted at root (typically
// [xmldom.Node.Root]'s result), positioned before the first element.
func NewDOMProxy(root *xmldom.Node) *DOMProxy {
	return &DOMProxy{stack: []*xmldom.Node{root}}
}

func (p *DOMProxy) Advance() error {
	for len(p.stack) > 0 {
		n := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]

		p.curr = n
		p.queueNext(n)
		if n.Type == xmldom.ElementNode {
			return nil
		}
	}
	p.eot = true
	return nil
}

// queueNext pushes n's next sibling (if any) and n's first child (if any)
// onto the stack, in that order, so the child is popped (and thus visited)
// before the sibling — implementing depth-first pre-order with an explicit
// stack instead of recursion.
func (p *DOMProxy) queueNext(n *xmldom.Node) {
	if sib := n.NextSibling; sib != nil {
		p.stack = append(p.stack, sib)
	}
	if child := n.FirstChild; child != nil {
		p.stack = append(p.stack, child)
	}
}

func (p *DOMProxy) SkipChildren() error {
	// The child was already queued by queueNext in Advance; removing it
	// means finding and dropping it from the top of the stack if it is
	// still there (it always is, since nothing else can interleave).
	if len(p.stack) > 0 && p.curr.FirstChild != nil && p.stack[len(p.stack)-1] == p.curr.FirstChild {
		p.stack = p.stack[:len(p.stack)-1]
	}
	return nil
}

func (p *DOMProxy) EOT() bool { return p.eot }

func (p *DOMProxy) Tag() string { return p.curr.Data }

func (p *DOMProxy) Height() int {
	depth := 0
	for n := p.curr.Parent; n != nil; n = n.Parent {
		depth++
	}
	return depth
}

func (p *DOMProxy) String() string { return p.curr.InnerText() }

func (p *DOMProxy) Uint32() (uint32, bool) {
	v, err := strconv.ParseUint(p.curr.InnerText(), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func (p *DOMProxy) Uint64() (uint64, bool) {
	v, err := strconv.ParseUint(p.curr.InnerText(), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
