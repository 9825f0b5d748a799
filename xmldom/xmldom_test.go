package xmldom

import (
	"strings"
	"testing"

	"github.com/antchfx/xpath"
)

func buildSampleDoc() *Node {
	doc := NewDocument()
	ced := doc.AppendElement("CallEventDetail")
	moc := ced.AppendElement("MobileOriginatedCall")
	bci := moc.AppendElement("BasicCallInformation")
	bci.SetAttr("definite", "false")
	bci.AppendText("hi")
	tc := moc.AppendElement("TotalCharge")
	tc.AppendText("42")
	return doc
}

func TestNode_Build(t *testing.T) {
	doc := buildSampleDoc()
	root := doc.Root()
	if root.Data != "CallEventDetail" {
		t.Fatalf("Root().Data = %q, want CallEventDetail", root.Data)
	}
	if root.ChildElementCount() != 1 {
		t.Fatalf("ChildElementCount() = %d, want 1", root.ChildElementCount())
	}
	moc := root.FirstChildElement()
	if got, want := moc.ChildElementCount(), 2; got != want {
		t.Fatalf("MOC ChildElementCount() = %d, want %d", got, want)
	}
	bci := moc.FirstChildElement()
	if v, ok := bci.Get("definite"); !ok || v != "false" {
		t.Fatalf("bci.Get(definite) = %q, %v, want false, true", v, ok)
	}
	if bci.InnerText() != "hi" {
		t.Fatalf("bci.InnerText() = %q, want hi", bci.InnerText())
	}
}

func TestNode_RemoveAndReplace(t *testing.T) {
	doc := buildSampleDoc()
	moc := doc.Root().FirstChildElement()
	tc := moc.FirstChildElement().NextElementSibling()
	if tc.Data != "TotalCharge" {
		t.Fatalf("expected TotalCharge, got %q", tc.Data)
	}

	replacement := &Node{Type: ElementNode, Data: "TotalChargeRefund"}
	tc.ReplaceWith(replacement)
	if got := moc.FirstChildElement().NextElementSibling(); got != replacement {
		t.Fatalf("ReplaceWith did not splice in the new node")
	}

	replacement.Remove()
	if moc.ChildElementCount() != 1 {
		t.Fatalf("Remove() left %d element children, want 1", moc.ChildElementCount())
	}
}

func TestNode_OutputXML(t *testing.T) {
	doc := NewDocument()
	el := doc.AppendElement("TotalCharge")
	el.SetAttr("definite", "false")
	el.AppendText("42")

	got := doc.OutputXML()
	want := "<TotalCharge definite=\"false\">\n  42\n</TotalCharge>\n"
	if got != want {
		t.Fatalf("OutputXML() = %q, want %q", got, want)
	}
}

func TestParseXML_RoundTrip(t *testing.T) {
	src := `<MobileOriginatedCall><BasicCallInformation>hi</BasicCallInformation></MobileOriginatedCall>`
	doc, err := ParseXML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	root := doc.Root()
	if root.Data != "MobileOriginatedCall" {
		t.Fatalf("root.Data = %q, want MobileOriginatedCall", root.Data)
	}
	bci := root.FirstChildElement()
	if bci.Data != "BasicCallInformation" || bci.InnerText() != "hi" {
		t.Fatalf("bci = %+v, InnerText = %q", bci, bci.InnerText())
	}
}

func TestNavigator_XPath(t *testing.T) {
	doc := buildSampleDoc()
	expr, err := xpath.Compile("//BasicCallInformation")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	nav := NewNavigator(doc)
	iter := expr.Select(nav)
	count := 0
	for iter.MoveNext() {
		count++
	}
	if count != 1 {
		t.Fatalf("Select() matched %d nodes, want 1", count)
	}
}

// TestScanComments checks the §8 fragment-sequence property.
func TestScanComments(t *testing.T) {
	in := "<!-- ignore -->Hello<!----><!-- --> <!-- -->foo bar<!-- -->"
	want := []string{"", "Hello", "", " ", "foo bar"}

	got := ScanComments(in)
	if len(got) != len(want) {
		t.Fatalf("ScanComments() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanComments_NoComments(t *testing.T) {
	if got := ScanComments("plain text"); got != nil {
		t.Fatalf("ScanComments(no comments) = %q, want nil", got)
	}
}
