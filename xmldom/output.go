package xmldom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// OutputXML serializes n (and, for a document or element, its subtree) as
// XML text, indenting each level by two spaces. It mirrors the shape of
// xmlquery's Node.OutputXML, trimmed to the node kinds xmldom supports.
func (n *Node) OutputXML() string {
	var buf bytes.Buffer
	writeNode(&buf, n, 0, "  ")
	return buf.String()
}

// WriteXML serializes n to w, indenting each level by indentWidth spaces.
// It is the caller-facing counterpart of [Node.OutputXML] for callers that
// want a configurable indent width and want to avoid building the whole
// result as a string first.
func WriteXML(w io.Writer, n *Node, indentWidth int) error {
	if indentWidth < 0 {
		indentWidth = 0
	}
	var buf bytes.Buffer
	writeNode(&buf, n, 0, strings.Repeat(" ", indentWidth))
	_, err := w.Write(buf.Bytes())
	return err
}

func writeNode(buf *bytes.Buffer, n *Node, depth int, unit string) {
	if n.Type == DocumentNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeXML(buf, c, depth, unit)
		}
		return
	}
	writeXML(buf, n, depth, unit)
}

func writeXML(buf *bytes.Buffer, n *Node, depth int, unit string) {
	indent := func() {
		for i := 0; i < depth; i++ {
			buf.WriteString(unit)
		}
	}

	switch n.Type {
	case TextNode:
		indent()
		xml.EscapeText(buf, []byte(n.Data))
		buf.WriteByte('\n')
		return
	case CommentNode:
		indent()
		buf.WriteString("<!--")
		buf.WriteString(n.Data)
		buf.WriteString("-->\n")
		return
	}

	indent()
	buf.WriteString("<" + n.Data)
	for _, a := range n.Attr {
		buf.WriteString(fmt.Sprintf(` %s="`, a.Name))
		xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if n.FirstChild == nil {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteString(">\n")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeXML(buf, c, depth+1, unit)
	}
	indent()
	buf.WriteString("</" + n.Data + ">\n")
}
