package grammar

import "go.xfsx.dev/bed/asn1"

// Overlay is a subtree-scoped [TagTranslator] layered on top of a base
// [Grammar]. Rather than a mutable stack that a traversal must manually
// push and pop (and can therefore leave unbalanced on an error path),
// Overlay is an immutable linked list: [Overlay.Push] returns a new value
// referencing its parent, and the caller's own stack frame is what "pops"
// it again simply by going out of scope.
//
// A nil *Overlay is valid and behaves as an empty overlay over its base.
type Overlay struct {
	parent *Overlay
	tag    asn1.Tag
	name   string
	base   Grammar
}

// NewOverlay returns the root [Overlay] for base, with no local
// translations pushed.
func NewOverlay(base Grammar) *Overlay {
	return &Overlay{base: base}
}

// Push returns a new Overlay that additionally translates tag to name
// within its subtree, without mutating o. Entering a constructed element
// that needs a local retranslation means calling Push once, on descent;
// leaving the element simply means continuing to use the pre-Push value
// the caller already held.
func (o *Overlay) Push(tag asn1.Tag, name string) *Overlay {
	base := Grammar(nil)
	if o != nil {
		base = o.base
	}
	return &Overlay{parent: o, tag: tag, name: name, base: base}
}

// Name implements [TagTranslator], consulting locally pushed translations
// before falling back to the base grammar.
func (o *Overlay) Name(tag asn1.Tag) (string, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		if cur.tag == tag {
			return cur.name, true
		}
	}
	if o == nil || o.base == nil {
		return "", false
	}
	return o.base.Name(tag)
}

// EntryByName implements [NameTranslator] by delegating to the base
// grammar; local overlay pushes only affect [Overlay.Name].
func (o *Overlay) EntryByName(name string) (Entry, bool) {
	if o == nil || o.base == nil {
		return Entry{}, false
	}
	return o.base.EntryByName(name)
}

// ContentKind implements [ContentTyper] by delegating to the base grammar.
func (o *Overlay) ContentKind(tag asn1.Tag) ContentKind {
	if o == nil || o.base == nil {
		return Raw
	}
	return o.base.ContentKind(tag)
}
