package main

import (
	"github.com/spf13/cobra"

	"go.xfsx.dev/bed/tlv"
	"go.xfsx.dev/bed/xmldom"
	"go.xfsx.dev/bed/xmlber"
)

// lengthForm selects how runWriteBER rewrites every constructed
// element's length encoding before re-emitting it.
type lengthForm int

const (
	formUnchanged lengthForm = iota // write-ber, write-id: preserve whatever the input used
	formDefinite                    // write-def: force every constructed element definite
	formIndefinite                  // write-indef: force every constructed element indefinite
)

var writeBERCmd = &cobra.Command{
	Use:   "write-ber INPUT [OUTPUT]",
	Short: "Parse a BER file and re-encode it unchanged",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWriteBER(writeBERFlags, args, formUnchanged)
	},
}

var writeIDCmd = &cobra.Command{
	Use:   "write-id INPUT [OUTPUT]",
	Short: "Parse a BER file and re-encode it byte-identically",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWriteBER(writeIDFlags, args, formUnchanged)
	},
}

var writeDefCmd = &cobra.Command{
	Use:   "write-def INPUT [OUTPUT]",
	Short: "Parse a BER file and re-encode every constructed element definite-length",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWriteBER(writeDefFlags, args, formDefinite)
	},
}

var writeIndefCmd = &cobra.Command{
	Use:   "write-indef INPUT [OUTPUT]",
	Short: "Parse a BER file and re-encode every constructed element indefinite-length",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWriteBER(writeIndefFlags, args, formIndefinite)
	},
}

var writeBERFlags, writeIDFlags, writeDefFlags, writeIndefFlags *commonFlags

func init() {
	writeBERFlags = registerCommonFlags(writeBERCmd)
	writeIDFlags = registerCommonFlags(writeIDCmd)
	writeDefFlags = registerCommonFlags(writeDefCmd)
	writeIndefFlags = registerCommonFlags(writeIndefCmd)
	rootCmd.AddCommand(writeBERCmd, writeIDCmd, writeDefCmd, writeIndefCmd)
}

func runWriteBER(f *commonFlags, args []string, form lengthForm) error {
	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(outputArg(f, args))
	if err != nil {
		return err
	}
	defer out.Close()

	g := loadGrammar(f)

	doc, err := xmlber.ToXML(in, g)
	if err != nil {
		return err
	}
	if form != formUnchanged {
		setLengthForm(doc.Root(), form)
	}

	e := tlv.NewEncoder(out)
	return xmlber.FromXML(e, doc, g)
}

// setLengthForm walks n's subtree, forcing every constructed element's
// `definite` attribute (and thus the length form [xmlber.FromXML] emits) to
// form. Primitive elements are always definite-length and are left alone.
func setLengthForm(n *xmldom.Node, form lengthForm) {
	if n == nil {
		return
	}
	if isConstructedNode(n) {
		switch form {
		case formDefinite:
			n.SetAttr(xmlber.AttrDefinite, "true")
			n.RemoveAttr(xmlber.AttrLSize)
		case formIndefinite:
			n.SetAttr(xmlber.AttrDefinite, "false")
			n.RemoveAttr(xmlber.AttrLSize)
		}
	}
	for c := n.FirstChildElement(); c != nil; c = c.NextElementSibling() {
		setLengthForm(c, form)
	}
}

// isConstructedNode reports whether n was recorded as constructed by
// [xmlber.ToXML]: it has element children, or it is marked indefinite
// (which only constructed elements may be).
func isConstructedNode(n *xmldom.Node) bool {
	if n.ChildElementCount() > 0 {
		return true
	}
	v, _ := n.Get(xmlber.AttrDefinite)
	return v == "false"
}
