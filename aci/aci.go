// Package aci computes and renders the AuditControlInfo trailer summarizing
// a batch of call records: the earliest and latest call timestamps, the
// total charge/tax/discount, and the number of call event details. It is a
// thin traversal built entirely on [go.xfsx.dev/bed/traverse] and
// [go.xfsx.dev/bed/grammar], mirroring how the audit-control-info summary is
// computed from a single depth-first pass over a TAP file.
package aci

import (
	"io"
	"math/big"
	"sort"

	"go.xfsx.dev/bed/grammar"
	"go.xfsx.dev/bed/traverse"
	"go.xfsx.dev/bed/xmldom"
)

// Names of the fields a call event detail's timestamp and charge
// information is read from. These match the element names TAP3 grammars
// bind to the corresponding tags; a grammar overlay may remap the
// underlying tags, but the names read here stay constant.
const (
	fieldCallEventDetail  = "CallEventDetail"
	fieldLocalTimeStamp   = "LocalTimeStamp"
	fieldUtcTimeOffset    = "UtcTimeOffset"
	fieldTotalCharge      = "TotalCharge"
	fieldTotalTaxValue    = "TotalTaxValue"
	fieldTotalDiscount    = "TotalDiscountValue"
	fieldAuditControlInfo = "AuditControlInfo"
)

// Summary holds the fields Compute accumulates from a batch of call event
// details.
type Summary struct {
	EarliestLocalTimeStamp string
	EarliestUtcTimeOffset  string
	LatestLocalTimeStamp   string
	LatestUtcTimeOffset    string
	TotalCharge            *big.Int
	TotalTaxValue          *big.Int
	TotalDiscountValue     *big.Int
	CallEventDetailsCount  int
}

// Compute walks p, a fresh proxy such as one returned by
// [traverse.NewBERProxy] or [traverse.NewDOMProxy], accumulating a Summary
// over every CallEventDetail it finds. It does not descend into an existing
// AuditControlInfo subtree, so recomputing a summary that already carries a
// trailer does not double-count it.
func Compute(p traverse.Proxy) (*Summary, error) {
	s := &Summary{
		TotalCharge:        new(big.Int),
		TotalTaxValue:      new(big.Int),
		TotalDiscountValue: new(big.Int),
	}

	var timestamps []string // "LocalTimeStamp UtcTimeOffset" pairs seen, in document order
	var pendingLocal string
	haveLocal := false

	err := traverse.Walk(p, func(p traverse.Proxy) error {
		switch p.Tag() {
		case fieldAuditControlInfo:
			return traverse.Skip
		case fieldCallEventDetail:
			s.CallEventDetailsCount++
		case fieldLocalTimeStamp:
			pendingLocal = p.String()
			haveLocal = true
		case fieldUtcTimeOffset:
			if haveLocal {
				timestamps = append(timestamps, pendingLocal+" "+p.String())
				haveLocal = false
			}
		case fieldTotalCharge:
			addDecimal(s.TotalCharge, p)
		case fieldTotalTaxValue:
			addDecimal(s.TotalTaxValue, p)
		case fieldTotalDiscount:
			addDecimal(s.TotalDiscountValue, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(timestamps) > 0 {
		sort.Strings(timestamps) // lexicographic order matches chronological order for fixed-width YYYYMMDDHHMMSS stamps
		first := splitTimestamp(timestamps[0])
		last := splitTimestamp(timestamps[len(timestamps)-1])
		s.EarliestLocalTimeStamp, s.EarliestUtcTimeOffset = first[0], first[1]
		s.LatestLocalTimeStamp, s.LatestUtcTimeOffset = last[0], last[1]
	}

	return s, nil
}

func splitTimestamp(pair string) [2]string {
	for i := len(pair) - 1; i >= 0; i-- {
		if pair[i] == ' ' {
			return [2]string{pair[:i], pair[i+1:]}
		}
	}
	return [2]string{pair, ""}
}

func addDecimal(acc *big.Int, p traverse.Proxy) {
	v, ok := p.Uint64()
	if !ok {
		return
	}
	acc.Add(acc, new(big.Int).SetUint64(v))
}

// Build renders s as an AuditControlInfo [xmldom.Node] subtree, in the
// field order the TAP3 grammar expects.
func (s *Summary) Build() *xmldom.Node {
	aci := &xmldom.Node{Type: xmldom.ElementNode, Data: fieldAuditControlInfo}

	earliest := aci.AppendElement("EarliestCallTimeStamp")
	earliest.AppendElement(fieldLocalTimeStamp).AppendText(s.EarliestLocalTimeStamp)
	earliest.AppendElement(fieldUtcTimeOffset).AppendText(s.EarliestUtcTimeOffset)

	latest := aci.AppendElement("LatestCallTimeStamp")
	latest.AppendElement(fieldLocalTimeStamp).AppendText(s.LatestLocalTimeStamp)
	latest.AppendElement(fieldUtcTimeOffset).AppendText(s.LatestUtcTimeOffset)

	aci.AppendElement(fieldTotalCharge).AppendText(s.TotalCharge.String())
	aci.AppendElement(fieldTotalTaxValue).AppendText(s.TotalTaxValue.String())
	aci.AppendElement(fieldTotalDiscount).AppendText(s.TotalDiscountValue.String())
	aci.AppendElement("CallEventDetailsCount").AppendText(bigFromInt(s.CallEventDetailsCount).String())

	return aci
}

func bigFromInt(n int) *big.Int { return big.NewInt(int64(n)) }

// ComputeBER is a convenience wrapper computing a Summary directly from a
// raw BER stream.
func ComputeBER(r io.Reader, g grammar.Grammar) (*Summary, error) {
	return Compute(traverse.NewBERProxy(r, g))
}

// ComputeDOM is a convenience wrapper computing a Summary from an already
// parsed xmldom tree, such as the one [go.xfsx.dev/bed/xmlber.ToXML] builds.
func ComputeDOM(root *xmldom.Node) (*Summary, error) {
	return Compute(traverse.NewDOMProxy(root))
}

// Replace recomputes the AuditControlInfo trailer for doc and splices it in,
// replacing any existing trailer or appending a new one as the last child of
// doc's root. It is the implementation of the `write-aci` edit op.
func Replace(doc *xmldom.Node) error {
	root := doc.Root()
	if root == nil {
		return nil
	}
	summary, err := ComputeDOM(root)
	if err != nil {
		return err
	}
	newACI := summary.Build()

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmldom.ElementNode && c.Data == fieldAuditControlInfo {
			c.ReplaceWith(newACI)
			return nil
		}
	}
	root.AppendElementNode(newACI)
	return nil
}
