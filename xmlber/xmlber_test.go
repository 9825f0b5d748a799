package xmlber

import (
	"bytes"
	"testing"

	"go.xfsx.dev/bed/asn1"
	"go.xfsx.dev/bed/grammar"
	"go.xfsx.dev/bed/tlv"
)

func testGrammar() *grammar.Static {
	return grammar.NewStatic([]grammar.Entry{
		{Name: "CallEventDetail", Tag: asn1.ClassApplication | 64, Shape: grammar.Constructed},
		{Name: "MobileOriginatedCall", Tag: asn1.ClassApplication | 15, Shape: grammar.Constructed},
		{Name: "TotalCharge", Tag: asn1.ClassApplication | 62, Shape: grammar.Primitive, Content: grammar.IntegerUnsigned},
		{Name: "BasicCallInformation", Tag: asn1.ClassApplication | 63, Shape: grammar.Primitive, Content: grammar.IA5String},
	})
}

func buildBER(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	e := tlv.NewEncoder(&buf)

	write := func(h tlv.Header, content []byte) {
		w, err := e.WriteHeader(h)
		if err != nil {
			t.Fatalf("WriteHeader(%v): %v", h, err)
		}
		if content != nil {
			if _, err := w.Write(content); err != nil {
				t.Fatalf("Write value: %v", err)
			}
		}
	}

	cedTag := asn1.ClassApplication | 64
	mocTag := asn1.ClassApplication | 15
	bciTag := asn1.ClassApplication | 63
	tcTag := asn1.ClassApplication | 62

	write(tlv.Header{Tag: cedTag, Constructed: true, Length: tlv.LengthIndefinite}, nil)
	write(tlv.Header{Tag: mocTag, Constructed: true, Length: tlv.LengthIndefinite}, nil)
	write(tlv.Header{Tag: bciTag, Length: 2}, []byte("hi"))
	write(tlv.Header{Tag: tcTag, Length: 1}, []byte{0x2a})
	write(tlv.EndOfContents, nil)
	write(tlv.EndOfContents, nil)

	return buf.Bytes()
}

func TestToXML(t *testing.T) {
	g := testGrammar()
	doc, err := ToXML(bytes.NewReader(buildBER(t)), g)
	if err != nil {
		t.Fatalf("ToXML: %v", err)
	}

	root := doc.Root()
	if root.Data != "CallEventDetail" {
		t.Fatalf("root.Data = %q, want CallEventDetail", root.Data)
	}
	if v, _ := root.Get(AttrDefinite); v != "false" {
		t.Fatalf("root definite = %q, want false", v)
	}

	moc := root.FirstChildElement()
	bci := moc.FirstChildElement()
	if bci.Data != "BasicCallInformation" || bci.InnerText() != "hi" {
		t.Fatalf("bci = %q, text = %q", bci.Data, bci.InnerText())
	}
	tc := bci.NextElementSibling()
	if tc.Data != "TotalCharge" || tc.InnerText() != "42" {
		t.Fatalf("tc = %q, text = %q", tc.Data, tc.InnerText())
	}
}

func TestFromXML_RoundTrip(t *testing.T) {
	g := testGrammar()
	want := buildBER(t)

	doc, err := ToXML(bytes.NewReader(want), g)
	if err != nil {
		t.Fatalf("ToXML: %v", err)
	}

	var buf bytes.Buffer
	e := tlv.NewEncoder(&buf)
	if err := FromXML(e, doc, g); err != nil {
		t.Fatalf("FromXML: %v", err)
	}

	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("round trip mismatch:\n got  % x\n want % x", buf.Bytes(), want)
	}
}

func TestPrettyWrite(t *testing.T) {
	g := testGrammar()
	var out bytes.Buffer
	if err := PrettyWrite(&out, bytes.NewReader(buildBER(t)), g, PrettyOptions{}); err != nil {
		t.Fatalf("PrettyWrite: %v", err)
	}

	want := "<CallEventDetail definite=\"false\">\n" +
		"  <MobileOriginatedCall definite=\"false\">\n" +
		"    <BasicCallInformation>hi</BasicCallInformation>\n" +
		"    <TotalCharge>42</TotalCharge>\n" +
		"  </MobileOriginatedCall>\n" +
		"</CallEventDetail>\n"
	if out.String() != want {
		t.Fatalf("PrettyWrite() =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestPrettyWrite_FirstOnly(t *testing.T) {
	g := testGrammar()

	var two bytes.Buffer
	e := tlv.NewEncoder(&two)
	for i := 0; i < 2; i++ {
		w, err := e.WriteHeader(tlv.Header{Tag: asn1.ClassApplication | 62, Length: 1})
		if err != nil {
			t.Fatalf("WriteHeader: %v", err)
		}
		if _, err := w.Write([]byte{byte(i)}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	var out bytes.Buffer
	if err := PrettyWrite(&out, &two, g, PrettyOptions{FirstOnly: true}); err != nil {
		t.Fatalf("PrettyWrite: %v", err)
	}
	if out.String() != "<TotalCharge>0</TotalCharge>\n" {
		t.Fatalf("PrettyWrite(FirstOnly) = %q", out.String())
	}
}

func TestPrettyWrite_BCI(t *testing.T) {
	g := testGrammar()
	var out bytes.Buffer
	if err := PrettyWrite(&out, bytes.NewReader(buildBER(t)), g, PrettyOptions{BCI: true}); err != nil {
		t.Fatalf("PrettyWrite: %v", err)
	}

	want := "<CallEventDetail definite=\"false\">\n" +
		"  <MobileOriginatedCall definite=\"false\">\n" +
		"    <BasicCallInformation bci_size=\"5\">hi</BasicCallInformation>\n" +
		"    <TotalCharge bci_size=\"4\">42</TotalCharge>\n" +
		"  </MobileOriginatedCall><!-- bci_size=13 -->\n" +
		"</CallEventDetail><!-- bci_size=18 -->\n"
	if out.String() != want {
		t.Fatalf("PrettyWrite(BCI) =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestFromXML_UnknownTagLiteral(t *testing.T) {
	doc, err := ToXML(bytes.NewReader(buildBER(t)), nil)
	if err != nil {
		t.Fatalf("ToXML: %v", err)
	}

	var buf bytes.Buffer
	e := tlv.NewEncoder(&buf)
	if err := FromXML(e, doc, nil); err != nil {
		t.Fatalf("FromXML: %v", err)
	}

	want := buildBER(t)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("round trip without grammar mismatch:\n got  % x\n want % x", buf.Bytes(), want)
	}
}
