package xmldom

import "strings"

// ScanComments splits s on `<!--...-->` comment boundaries, returning the
// literal text fragment that precedes each comment (the text between the
// previous comment, or the start of the string, and the next one). Trailing
// text after the last comment is discarded, so the fragments do not
// round-trip s in full.
//
// If s contains no comments, ScanComments returns nil.
func ScanComments(s string) []string {
	const (
		open    = "<!--"
		closing = "-->"
	)

	var fragments []string
	rest := s
	for {
		start := strings.Index(rest, open)
		if start == -1 {
			return fragments
		}
		end := strings.Index(rest[start+len(open):], closing)
		if end == -1 {
			return fragments
		}
		fragments = append(fragments, rest[:start])
		rest = rest[start+len(open)+end+len(closing):]
	}
}
