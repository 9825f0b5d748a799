package xmldom

import "github.com/antchfx/xpath"

// navigator implements [xpath.NodeNavigator] over a [Node] tree, the same
// role xmlquery's unexported nodeNavigator plays for its own tree.
type navigator struct {
	curr, root *Node
	attr       int
}

// NewNavigator returns an [xpath.NodeNavigator] positioned at n, suitable for
// evaluating a compiled [xpath.Expr] via [xpath.Expr.Select] or
// [xpath.Expr.Evaluate].
func NewNavigator(n *Node) xpath.NodeNavigator {
	return &navigator{curr: n, root: n, attr: -1}
}

// NodeOf returns the [Node] that nav (obtained from [NewNavigator], or from
// iterating a selection over one) is currently positioned at. It panics if
// nav did not originate from this package.
func NodeOf(nav xpath.NodeNavigator) *Node {
	return nav.(*navigator).curr
}

func (a *navigator) NodeType() xpath.NodeType {
	switch a.curr.Type {
	case DocumentNode:
		return xpath.RootNode
	case ElementNode:
		if a.attr != -1 {
			return xpath.AttributeNode
		}
		return xpath.ElementNode
	case TextNode:
		return xpath.TextNode
	case CommentNode:
		return xpath.CommentNode
	default:
		return xpath.ElementNode
	}
}

func (a *navigator) LocalName() string {
	if a.attr != -1 {
		return a.curr.Attr[a.attr].Name
	}
	return a.curr.Data
}

func (a *navigator) Prefix() string { return "" }

func (a *navigator) Value() string {
	if a.attr != -1 {
		return a.curr.Attr[a.attr].Value
	}
	switch a.curr.Type {
	case TextNode, CommentNode:
		return a.curr.Data
	default:
		return a.curr.InnerText()
	}
}

func (a *navigator) Copy() xpath.NodeNavigator {
	cp := *a
	return &cp
}

func (a *navigator) MoveToRoot() {
	a.curr = a.root
	a.attr = -1
}

func (a *navigator) MoveToParent() bool {
	if a.attr != -1 {
		a.attr = -1
		return true
	}
	if a.curr.Parent == nil {
		return false
	}
	a.curr = a.curr.Parent
	return true
}

func (a *navigator) MoveToNextAttribute() bool {
	if a.attr+1 >= len(a.curr.Attr) {
		return false
	}
	a.attr++
	return true
}

func (a *navigator) MoveToChild() bool {
	if a.attr != -1 {
		return false
	}
	if a.curr.FirstChild == nil {
		return false
	}
	a.curr = a.curr.FirstChild
	return true
}

func (a *navigator) MoveToFirst() bool {
	if a.attr != -1 || a.curr.PrevSibling == nil {
		return false
	}
	for a.curr.PrevSibling != nil {
		a.curr = a.curr.PrevSibling
	}
	return true
}

func (a *navigator) MoveToNext() bool {
	if a.attr != -1 || a.curr.NextSibling == nil {
		return false
	}
	a.curr = a.curr.NextSibling
	return true
}

func (a *navigator) MoveToPrevious() bool {
	if a.attr != -1 || a.curr.PrevSibling == nil {
		return false
	}
	a.curr = a.curr.PrevSibling
	return true
}

func (a *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok {
		return false
	}
	a.curr = o.curr
	a.root = o.root
	a.attr = o.attr
	return true
}
