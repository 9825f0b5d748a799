package aci

import (
	"bytes"
	"testing"

	"go.xfsx.dev/bed/asn1"
	"go.xfsx.dev/bed/grammar"
	"go.xfsx.dev/bed/tlv"
	"go.xfsx.dev/bed/xmlber"
	"go.xfsx.dev/bed/xmldom"
)

func testGrammar() *grammar.Static {
	return grammar.NewStatic([]grammar.Entry{
		{Name: "TransferBatch", Tag: asn1.ClassApplication | 1, Shape: grammar.Constructed},
		{Name: "CallEventDetailList", Tag: asn1.ClassApplication | 2, Shape: grammar.Constructed},
		{Name: "CallEventDetail", Tag: asn1.ClassApplication | 3, Shape: grammar.Constructed},
		{Name: "MobileOriginatedCall", Tag: asn1.ClassApplication | 15, Shape: grammar.Constructed},
		{Name: "BasicCallInformation", Tag: asn1.ClassApplication | 16, Shape: grammar.Constructed},
		{Name: "CallEventStartTimeStamp", Tag: asn1.ClassApplication | 17, Shape: grammar.Constructed},
		{Name: "LocalTimeStamp", Tag: asn1.ClassApplication | 18, Shape: grammar.Primitive, Content: grammar.IA5String},
		{Name: "UtcTimeOffset", Tag: asn1.ClassApplication | 19, Shape: grammar.Primitive, Content: grammar.IA5String},
		{Name: "TotalCharge", Tag: asn1.ClassApplication | 20, Shape: grammar.Primitive, Content: grammar.IntegerUnsigned},
	})
}

// buildBatch constructs two CallEventDetail records with distinct
// timestamps and charges, nested under a TransferBatch/CallEventDetailList,
// matching the shape a TAP3 record actually uses.
func buildBatch(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	e := tlv.NewEncoder(&buf)
	open := func(tag asn1.Tag) {
		if _, err := e.WriteHeader(tlv.Header{Tag: tag, Constructed: true, Length: tlv.LengthIndefinite}); err != nil {
			t.Fatalf("WriteHeader: %v", err)
		}
	}
	leaf := func(tag asn1.Tag, content []byte) {
		w, err := e.WriteHeader(tlv.Header{Tag: tag, Length: len(content)})
		if err != nil {
			t.Fatalf("WriteHeader: %v", err)
		}
		if _, err := w.Write(content); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	end := func() {
		if _, err := e.WriteHeader(tlv.EndOfContents); err != nil {
			t.Fatalf("WriteHeader(eoc): %v", err)
		}
	}

	open(asn1.ClassApplication | 1) // TransferBatch
	open(asn1.ClassApplication | 2) // CallEventDetailList

	record := func(local, offset string, charge byte) {
		open(asn1.ClassApplication | 3)  // CallEventDetail
		open(asn1.ClassApplication | 15) // MobileOriginatedCall
		open(asn1.ClassApplication | 16) // BasicCallInformation
		open(asn1.ClassApplication | 17) // CallEventStartTimeStamp
		leaf(asn1.ClassApplication|18, []byte(local))
		leaf(asn1.ClassApplication|19, []byte(offset))
		end() // CallEventStartTimeStamp
		end() // BasicCallInformation
		leaf(asn1.ClassApplication|20, []byte{charge})
		end() // MobileOriginatedCall
		end() // CallEventDetail
	}

	record("20140301140342", "+0200", 200)
	record("20140302151252", "-0500", 55)

	end() // CallEventDetailList
	end() // TransferBatch

	return buf.Bytes()
}

func TestComputeBER(t *testing.T) {
	g := testGrammar()
	s, err := ComputeBER(bytes.NewReader(buildBatch(t)), g)
	if err != nil {
		t.Fatalf("ComputeBER: %v", err)
	}
	if s.CallEventDetailsCount != 2 {
		t.Errorf("CallEventDetailsCount = %d, want 2", s.CallEventDetailsCount)
	}
	if s.EarliestLocalTimeStamp != "20140301140342" || s.EarliestUtcTimeOffset != "+0200" {
		t.Errorf("earliest = %s %s, want 20140301140342 +0200", s.EarliestLocalTimeStamp, s.EarliestUtcTimeOffset)
	}
	if s.LatestLocalTimeStamp != "20140302151252" || s.LatestUtcTimeOffset != "-0500" {
		t.Errorf("latest = %s %s, want 20140302151252 -0500", s.LatestLocalTimeStamp, s.LatestUtcTimeOffset)
	}
	if s.TotalCharge.String() != "255" {
		t.Errorf("TotalCharge = %s, want 255", s.TotalCharge.String())
	}
}

func TestReplace_AppendsWhenAbsent(t *testing.T) {
	g := testGrammar()
	doc, err := xmlber.ToXML(bytes.NewReader(buildBatch(t)), g)
	if err != nil {
		t.Fatalf("ToXML: %v", err)
	}
	if err := Replace(doc); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	root := doc.Root()
	last := root.LastChild
	for last != nil && last.Type != xmldom.ElementNode {
		last = last.PrevSibling
	}
	if last == nil || last.Data != fieldAuditControlInfo {
		t.Fatalf("last element child = %v, want AuditControlInfo", last)
	}
}
