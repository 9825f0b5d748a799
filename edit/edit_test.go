package edit

import (
	"testing"

	"go.xfsx.dev/bed/xmldom"
)

func buildDoc() *xmldom.Node {
	doc := xmldom.NewDocument()
	ced := doc.AppendElement("CallEventDetail")
	moc := ced.AppendElement("MobileOriginatedCall")
	bci := moc.AppendElement("BasicCallInformation")
	bci.AppendText("hi")
	tc := moc.AppendElement("TotalCharge")
	tc.AppendText("42")
	return doc
}

func TestApply_Remove(t *testing.T) {
	doc := buildDoc()
	err := Apply(doc, []Op{{Kind: Remove, Selector: "//BasicCallInformation"}}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root := doc.Root()
	moc := root.FirstChildElement()
	if moc.ChildElementCount() != 1 {
		t.Fatalf("MobileOriginatedCall has %d element children, want 1", moc.ChildElementCount())
	}
	if moc.FirstChildElement().Data != "TotalCharge" {
		t.Fatalf("remaining child = %q, want TotalCharge", moc.FirstChildElement().Data)
	}
}

func TestApply_Replace(t *testing.T) {
	doc := buildDoc()
	err := Apply(doc, []Op{{
		Kind:     Replace,
		Selector: "//TotalCharge",
		Regexp:   "4",
		Template: "9",
	}}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := findText(doc, "TotalCharge"); got != "92" {
		t.Fatalf("TotalCharge text = %q, want 92", got)
	}
}

func TestApply_Add(t *testing.T) {
	doc := buildDoc()
	err := Apply(doc, []Op{{
		Kind:      Add,
		Selector:  "//MobileOriginatedCall",
		ChildName: "+TotalCharge",
		Text:      "7",
	}}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	moc := doc.Root().FirstChildElement()
	var names []string
	for c := moc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmldom.ElementNode {
			names = append(names, c.Data)
		}
	}
	want := []string{"BasicCallInformation", "TotalCharge", "TotalCharge"}
	if len(names) != len(want) {
		t.Fatalf("children = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("children[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if got := moc.LastChild.InnerText(); got != "7" {
		t.Errorf("new TotalCharge text = %q, want 7", got)
	}
}

func TestApply_Add_MultiSegmentPath(t *testing.T) {
	doc := buildDoc()
	ced := doc.Root()
	aciNode := ced.AppendElement("AuditControlInfo")

	ops := []Op{
		{
			Kind:      Add,
			Selector:  "//AuditControlInfo",
			ChildName: "OperatorSpecInfoList/OperatorSpecInformation",
			Text:      "Patched for xyz",
		},
		{
			Kind:      Add,
			Selector:  "//AuditControlInfo",
			ChildName: "OperatorSpecInfoList/+OperatorSpecInformation",
			Text:      "Patchdate: 2015-05-01",
		},
	}
	if err := Apply(doc, ops, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	list := aciNode.FirstChildElement()
	if list == nil || list.Data != "OperatorSpecInfoList" {
		t.Fatalf("OperatorSpecInfoList container missing, got %v", list)
	}
	var infos []string
	for c := list.FirstChildElement(); c != nil; c = c.NextElementSibling() {
		infos = append(infos, c.InnerText())
	}
	want := []string{"Patched for xyz", "Patchdate: 2015-05-01"}
	if len(infos) != len(want) {
		t.Fatalf("OperatorSpecInformation values = %v, want %v", infos, want)
	}
	for i := range want {
		if infos[i] != want[i] {
			t.Errorf("infos[%d] = %q, want %q", i, infos[i], want[i])
		}
	}
}

func TestApply_SetAttr(t *testing.T) {
	doc := buildDoc()
	err := Apply(doc, []Op{{
		Kind:      SetAttr,
		Selector:  "//BasicCallInformation",
		AttrName:  "definite",
		AttrValue: "false",
	}}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	bci := doc.Root().FirstChildElement().FirstChildElement()
	if v, ok := bci.Get("definite"); !ok || v != "false" {
		t.Fatalf("definite = %q, %v, want false, true", v, ok)
	}
}

func TestApply_Insert(t *testing.T) {
	doc := buildDoc()
	err := Apply(doc, []Op{{
		Kind:     Insert,
		Selector: "//MobileOriginatedCall",
		XML:      "<Extra>x</Extra>",
		Position: -1,
	}}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	moc := doc.Root().FirstChildElement()
	if moc.LastChild.Data != "Extra" {
		t.Fatalf("last child = %q, want Extra", moc.LastChild.Data)
	}
}

func TestApply_WriteACI_NoWriter(t *testing.T) {
	doc := buildDoc()
	err := Apply(doc, []Op{{Kind: WriteACI}}, nil)
	if err == nil {
		t.Fatal("Apply: expected error for unconfigured write-aci, got nil")
	}
}

func TestApply_WriteACI_Delegates(t *testing.T) {
	doc := buildDoc()
	called := false
	err := Apply(doc, []Op{{Kind: WriteACI}}, func(n *xmldom.Node) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !called {
		t.Fatal("writeACI callback was not invoked")
	}
}

func findText(doc *xmldom.Node, name string) string {
	var found *xmldom.Node
	var walk func(*xmldom.Node)
	walk = func(n *xmldom.Node) {
		if n.Type == xmldom.ElementNode && n.Data == name {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if found == nil {
		return ""
	}
	return found.InnerText()
}
