// Package edit implements the splice operations applied to a BER record's
// XML view before it is re-emitted: remove, replace, add, set-att, insert,
// and write-aci. Every op other than write-aci resolves its selector with
// github.com/antchfx/xpath against a [go.xfsx.dev/bed/xmldom] tree; write-aci
// instead delegates to [go.xfsx.dev/bed/aci].
package edit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/xpath"

	"go.xfsx.dev/bed/xmldom"
)

// Kind identifies which splice operation an [Op] performs.
//
//go:generate stringer -type=Kind
type Kind int

const (
	Remove Kind = iota
	Replace
	Add
	SetAttr
	Insert
	WriteACI
)

// Op is one splice operation applied to an xmldom tree by [Apply].
type Op struct {
	Kind Kind

	Selector string // XPath selector; unused by WriteACI

	// Replace
	Regexp   string
	Template string

	// Add
	//
	// ChildName is a slash-separated path, e.g. "OperatorSpecInfoList/OperatorSpecInformation".
	// Every segment but the last is a container that is descended into,
	// creating it if absent; the last segment is the element actually
	// added, holding Text. A leading "+" on the last segment, e.g.
	// ".../+OperatorSpecInformation", requests appending after the last
	// existing same-name sibling of the leaf, rather than as a new last
	// child of its container.
	ChildName string
	Text      string

	// SetAttr
	AttrName  string
	AttrValue string

	// Insert
	XML      string // literal XML fragment text; the caller resolves an "@file" argument to its contents
	Position int    // index to insert at; negative counts from the end
}

// Apply runs ops against doc in order, mutating it in place. writeACI, if
// non-nil, is invoked for a [WriteACI] op; it is the integration point for
// [go.xfsx.dev/bed/aci], kept as a callback here so this package does not
// need to import aci (which itself builds on grammar and traverse, not
// edit).
func Apply(doc *xmldom.Node, ops []Op, writeACI func(*xmldom.Node) error) error {
	for _, op := range ops {
		if err := applyOne(doc, op, writeACI); err != nil {
			return fmt.Errorf("edit: %v: %w", op.Kind, err)
		}
	}
	return nil
}

func applyOne(doc *xmldom.Node, op Op, writeACI func(*xmldom.Node) error) error {
	switch op.Kind {
	case Remove:
		return applyRemove(doc, op)
	case Replace:
		return applyReplace(doc, op)
	case Add:
		return applyAdd(doc, op)
	case SetAttr:
		return applySetAttr(doc, op)
	case Insert:
		return applyInsert(doc, op)
	case WriteACI:
		if writeACI == nil {
			return fmt.Errorf("write-aci requested but no writer was configured")
		}
		return writeACI(doc)
	default:
		return fmt.Errorf("unknown op kind %v", op.Kind)
	}
}

// selectNodes evaluates selector against doc, returning every matching node.
// Matches are collected eagerly before mutation begins, since mutating the
// tree mid-iteration would invalidate the navigator's position.
func selectNodes(doc *xmldom.Node, selector string) ([]*xmldom.Node, error) {
	expr, err := xpath.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compiling selector %q: %w", selector, err)
	}
	iter := expr.Select(xmldom.NewNavigator(doc))
	var nodes []*xmldom.Node
	for iter.MoveNext() {
		nodes = append(nodes, xmldom.NodeOf(iter.Current()))
	}
	return nodes, nil
}

func applyRemove(doc *xmldom.Node, op Op) error {
	nodes, err := selectNodes(doc, op.Selector)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		n.Remove()
	}
	return nil
}

func applyReplace(doc *xmldom.Node, op Op) error {
	re, err := regexp.Compile(op.Regexp)
	if err != nil {
		return fmt.Errorf("compiling regexp %q: %w", op.Regexp, err)
	}
	nodes, err := selectNodes(doc, op.Selector)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		replaceText(n, re, op.Template)
	}
	return nil
}

// replaceText rewrites n's direct text children in place by regex-replacing
// their content; it does not descend into element children.
func replaceText(n *xmldom.Node, re *regexp.Regexp, template string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmldom.TextNode {
			c.Data = re.ReplaceAllString(c.Data, template)
		}
	}
}

func applyAdd(doc *xmldom.Node, op Op) error {
	nodes, err := selectNodes(doc, op.Selector)
	if err != nil {
		return err
	}
	segments := strings.Split(op.ChildName, "/")
	name := segments[len(segments)-1]
	appendAfterLast := false
	if len(name) > 0 && name[0] == '+' {
		appendAfterLast = true
		name = name[1:]
	}
	for _, parent := range nodes {
		target := descendOrCreate(parent, segments[:len(segments)-1])
		child := &xmldom.Node{Type: xmldom.ElementNode, Data: name}
		child.AppendText(op.Text)
		if appendAfterLast {
			if last := lastSameName(target, name); last != nil {
				insertAfter(last, child)
				continue
			}
		}
		target.AppendElementNode(child)
	}
	return nil
}

// descendOrCreate walks parent through segments, creating any missing
// intermediate element along the way, and returns the node segments ends at.
// An empty segments list returns parent unchanged. This supports a
// multi-segment ChildName such as "OperatorSpecInfoList/OperatorSpecInformation",
// where the leaf is added under a container that may not yet exist.
func descendOrCreate(parent *xmldom.Node, segments []string) *xmldom.Node {
	for _, name := range segments {
		next := lastSameName(parent, name)
		if next == nil {
			next = &xmldom.Node{Type: xmldom.ElementNode, Data: name}
			parent.AppendElementNode(next)
		}
		parent = next
	}
	return parent
}

// insertAfter splices sibling immediately after n in n's parent.
func insertAfter(n, sibling *xmldom.Node) {
	if n.NextSibling != nil {
		n.NextSibling.InsertBefore(sibling)
	} else {
		n.Parent.AppendElementNode(sibling)
	}
}

// lastSameName returns parent's last element child named name, or nil.
func lastSameName(parent *xmldom.Node, name string) *xmldom.Node {
	var last *xmldom.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmldom.ElementNode && c.Data == name {
			last = c
		}
	}
	return last
}

func applySetAttr(doc *xmldom.Node, op Op) error {
	nodes, err := selectNodes(doc, op.Selector)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		n.SetAttr(op.AttrName, op.AttrValue)
	}
	return nil
}

func applyInsert(doc *xmldom.Node, op Op) error {
	nodes, err := selectNodes(doc, op.Selector)
	if err != nil {
		return err
	}
	fragment, err := xmldom.ParseFragment(op.XML)
	if err != nil {
		return fmt.Errorf("parsing insert fragment: %w", err)
	}
	for _, parent := range nodes {
		frag := cloneChildren(fragment)
		insertAt(parent, frag, op.Position)
	}
	return nil
}

// cloneChildren returns a shallow structural copy of fragment's children,
// detached from fragment, so the same parsed fragment can be inserted at
// multiple selector matches without aliasing nodes across parents.
func cloneChildren(fragment *xmldom.Node) []*xmldom.Node {
	var out []*xmldom.Node
	for c := fragment.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, xmldom.CloneTree(c))
	}
	return out
}

// insertAt splices nodes into parent's element children at position. A
// negative position counts from the end: -1 appends after the last element
// child, -2 inserts before the last one, and so on.
func insertAt(parent *xmldom.Node, nodes []*xmldom.Node, position int) {
	children := elementChildren(parent)
	idx := position
	if idx < 0 {
		idx = len(children) + idx + 1
	}
	if idx < 0 {
		idx = 0
	}

	var before *xmldom.Node
	if idx < len(children) {
		before = children[idx]
	}

	for _, n := range nodes {
		if before != nil {
			before.InsertBefore(n)
		} else {
			parent.AppendElementNode(n)
		}
	}
}

func elementChildren(parent *xmldom.Node) []*xmldom.Node {
	var out []*xmldom.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmldom.ElementNode {
			out = append(out, c)
		}
	}
	return out
}
