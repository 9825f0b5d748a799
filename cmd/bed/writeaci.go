package main

import (
	"github.com/spf13/cobra"

	"go.xfsx.dev/bed/aci"
	"go.xfsx.dev/bed/tlv"
	"go.xfsx.dev/bed/xmlber"
)

var writeACICmd = &cobra.Command{
	Use:   "write-aci INPUT [OUTPUT]",
	Short: "Recompute the AuditControlInfo trailer and re-encode the batch with it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWriteACI(writeACIFlags, args)
	},
}

var writeACIFlags *commonFlags

func init() {
	writeACIFlags = registerCommonFlags(writeACICmd)
	rootCmd.AddCommand(writeACICmd)
}

func runWriteACI(f *commonFlags, args []string) error {
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
	if err := aci.Replace(doc); err != nil {
		return err
	}

	e := tlv.NewEncoder(out)
	return xmlber.FromXML(e, doc, g)
}
