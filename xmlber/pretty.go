package xmlber

import (
	"bufio"
	"fmt"
	"io"

	"go.xfsx.dev/bed/grammar"
	"go.xfsx.dev/bed/tlv"
	"go.xfsx.dev/bed/vtlv"
)

// PrettyOptions configures [PrettyWrite].
type PrettyOptions struct {
	// IndentWidth is the number of spaces per nesting level. Zero defaults
	// to 2.
	IndentWidth int

	// Hex forces hex rendering of primitive content regardless of the
	// grammar's content kind.
	Hex bool

	// Offsets annotates every element with its byte offset.
	Offsets bool

	// DumpTSize annotates every element with the size in bytes of its TL
	// header, for debugging.
	DumpTSize bool

	// SkipFirstNBytes discards that many bytes from the input before
	// decoding begins, for resuming at a known TLV boundary.
	SkipFirstNBytes int64

	// Count limits the number of top-level subtrees emitted. Zero means no
	// limit.
	Count int

	// FirstOnly stops after the first emitted subtree, as used together
	// with a preceding tag-path search.
	FirstOnly bool

	// BCI annotates every element whose full encoded size (header plus
	// content) is known at the time its name is printed with a
	// `bci_size` attribute. A definite-length element's size is known as
	// soon as its header is read; an indefinite-length constructed
	// element's size is only known once its closing end-of-contents
	// marker is reached, by which point its opening tag has already been
	// flushed, so its size is reported as a trailing comment on the
	// closing tag instead.
	BCI bool
}

// PrettyWrite streams r's BER content to w as indented XML text, without
// building an intermediate [go.xfsx.dev/bed/xmldom] tree: this is the
// human-facing renderer behind the `pretty-write-xml` command, as opposed to
// [ToXML] which builds the DOM the edit pipeline splices.
func PrettyWrite(w io.Writer, r io.Reader, g grammar.Grammar, opts PrettyOptions) error {
	indentWidth := opts.IndentWidth
	if indentWidth == 0 {
		indentWidth = 2
	}

	if opts.SkipFirstNBytes > 0 {
		if _, err := io.CopyN(io.Discard, r, opts.SkipFirstNBytes); err != nil {
			return fmt.Errorf("xmlber: skipping leading bytes: %w", err)
		}
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	c := vtlv.NewCursor(r)
	emitted := 0
	// names and starts track, respectively, the element name and start
	// offset of every open constructed ancestor, so a closing tag can be
	// printed (and its BCI size computed) without depending on
	// [vtlv.Cursor]'s internal stack, which has already popped the closing
	// element by the time Advance reports its end-of-contents marker.
	var names []string
	var starts []int64

	for {
		h, err := c.Advance()
		if err == io.EOF {
			return bw.Flush()
		}
		if err != nil {
			return err
		}

		if h == tlv.EndOfContents {
			name := names[len(names)-1]
			names = names[:len(names)-1]
			start := starts[len(starts)-1]
			starts = starts[:len(starts)-1]
			writeIndent(bw, len(names), indentWidth)
			fmt.Fprintf(bw, "</%s>", name)
			if opts.BCI {
				fmt.Fprintf(bw, "<!-- bci_size=%d -->", c.EndOffset()-start)
			}
			bw.WriteByte('\n')
			if len(names) == 0 {
				emitted++
				if opts.FirstOnly || (opts.Count > 0 && emitted >= opts.Count) {
					return bw.Flush()
				}
			}
			continue
		}

		depth := len(names) + 1
		writeIndent(bw, depth-1, indentWidth)
		name := elementName(g, h.Tag)
		bw.WriteByte('<')
		bw.WriteString(name)
		if opts.Offsets {
			fmt.Fprintf(bw, ` offset="%d"`, c.Offset())
		}
		if opts.DumpTSize {
			fmt.Fprintf(bw, ` t_size="%d"`, tSize(h))
		}
		if h.Length == tlv.LengthIndefinite {
			bw.WriteString(` definite="false"`)
		}
		if opts.BCI && h.Length != tlv.LengthIndefinite {
			fmt.Fprintf(bw, ` bci_size="%d"`, tSize(h)+max(h.Length, 0))
		}

		if h.Constructed {
			bw.WriteString(">\n")
			names = append(names, name)
			starts = append(starts, c.Offset())
			continue
		}

		val := c.Value()
		data := make([]byte, val.Len())
		if _, err := io.ReadFull(val, data); err != nil {
			return fmt.Errorf("xmlber: reading value for %s: %w", h, err)
		}
		text := renderContent(g, h.Tag, data, nil)
		if opts.Hex {
			text = fmt.Sprintf("%x", data)
		}
		bw.WriteString(">")
		bw.WriteString(text)
		fmt.Fprintf(bw, "</%s>\n", name)

		if depth == 1 {
			emitted++
			if opts.FirstOnly || (opts.Count > 0 && emitted >= opts.Count) {
				return bw.Flush()
			}
		}
	}
}

func writeIndent(w *bufio.Writer, depth, width int) {
	for i := 0; i < depth*width; i++ {
		w.WriteByte(' ')
	}
}

// tSize returns the byte length of h's TL header: the identifier octets plus
// the length octets.
func tSize(h tlv.Header) int {
	if h.LengthLen > 0 {
		return identifierLen(h.Tag) + h.LengthLen
	}
	indefinite := h.Length == tlv.LengthIndefinite
	return identifierLen(h.Tag) + lengthLen(max(h.Length, 0), indefinite)
}
