// Package xmldom implements a minimal, mutable XML document tree: the
// in-memory representation that [go.xfsx.dev/bed/xmlber] renders BER into and
// parses BER back out of, and that [go.xfsx.dev/bed/edit] splices.
//
// The tree shape (linked Parent/FirstChild/LastChild/PrevSibling/NextSibling
// pointers) and the split of node kinds into Document/Element/Text/Comment
// follow the design of github.com/antchfx/xmlquery. Trees are built either
// programmatically or with [ParseXML] and [ParseFragment], and
// [NewNavigator] wraps a [Node] in an [xpath.NodeNavigator] so
// github.com/antchfx/xpath can run selectors over it directly.
package xmldom

import "strings"

// NodeType distinguishes the structural role of a [Node].
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Attr is a single XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is one node of an xmldom tree. The zero Node is not usable; create
// trees with [NewDocument] and [Node.AppendElement] et al.
type Node struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	Type NodeType
	Data string // element/attribute name for ElementNode, content otherwise
	Attr []Attr
}

// NewDocument returns a new, empty document root.
func NewDocument() *Node {
	return &Node{Type: DocumentNode}
}

// Get returns the value of the attribute named key and whether it is present.
func (n *Node) Get(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name == key {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the value of the attribute named key, or def if it is not
// present.
func (n *Node) AttrOr(key, def string) string {
	if v, ok := n.Get(key); ok {
		return v
	}
	return def
}

// SetAttr sets (or overwrites) the attribute named key.
func (n *Node) SetAttr(key, value string) {
	for i, a := range n.Attr {
		if a.Name == key {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, Attr{key, value})
}

// RemoveAttr removes the attribute named key, if present.
func (n *Node) RemoveAttr(key string) {
	for i, a := range n.Attr {
		if a.Name == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// AppendElement creates and appends a new element child named name.
func (n *Node) AppendElement(name string) *Node {
	child := &Node{Type: ElementNode, Data: name}
	n.appendChild(child)
	return child
}

// AppendText appends a text node with the given content.
func (n *Node) AppendText(text string) *Node {
	child := &Node{Type: TextNode, Data: text}
	n.appendChild(child)
	return child
}

// AppendComment appends a comment node with the given content.
func (n *Node) AppendComment(text string) *Node {
	child := &Node{Type: CommentNode, Data: text}
	n.appendChild(child)
	return child
}

// AppendElementNode appends an already-constructed node (typically produced
// by [CloneTree] or [ParseFragment]) as the last child of n.
func (n *Node) AppendElementNode(child *Node) {
	n.appendChild(child)
}

// CloneTree returns a deep copy of n's subtree, detached from any parent.
func CloneTree(n *Node) *Node {
	clone := &Node{Type: n.Type, Data: n.Data, Attr: append([]Attr(nil), n.Attr...)}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.appendChild(CloneTree(c))
	}
	return clone
}

func (n *Node) appendChild(child *Node) {
	child.Parent = n
	if n.LastChild == nil {
		n.FirstChild = child
		n.LastChild = child
		return
	}
	child.PrevSibling = n.LastChild
	n.LastChild.NextSibling = child
	n.LastChild = child
}

// InsertBefore inserts sibling immediately before n in n's parent. It panics
// if n has no parent.
func (n *Node) InsertBefore(sibling *Node) {
	if n.Parent == nil {
		panic("xmldom: InsertBefore on a node without a parent")
	}
	sibling.Parent = n.Parent
	sibling.PrevSibling = n.PrevSibling
	sibling.NextSibling = n
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = sibling
	} else {
		n.Parent.FirstChild = sibling
	}
	n.PrevSibling = sibling
}

// Remove detaches n (and its subtree) from its parent. It is a no-op if n has
// no parent.
func (n *Node) Remove() {
	if n.Parent == nil {
		return
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	} else {
		n.Parent.FirstChild = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	} else {
		n.Parent.LastChild = n.PrevSibling
	}
	n.Parent, n.PrevSibling, n.NextSibling = nil, nil, nil
}

// ReplaceWith replaces n with replacement in n's parent.
func (n *Node) ReplaceWith(replacement *Node) {
	n.InsertBefore(replacement)
	n.Remove()
}

// InnerText concatenates the text content of n's subtree, skipping comments.
func (n *Node) InnerText() string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		switch n.Type {
		case TextNode:
			sb.WriteString(n.Data)
		case CommentNode:
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}
