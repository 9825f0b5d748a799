package main

import (
	"github.com/spf13/cobra"

	"go.xfsx.dev/bed/aci"
	"go.xfsx.dev/bed/xmldom"
)

var computeACICmd = &cobra.Command{
	Use:   "compute-aci INPUT [OUTPUT]",
	Short: "Print the AuditControlInfo summary computed from a batch, without modifying it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runComputeACI(computeACIFlags, args)
	},
}

var computeACIFlags *commonFlags

func init() {
	computeACIFlags = registerCommonFlags(computeACICmd)
	rootCmd.AddCommand(computeACICmd)
}

func runComputeACI(f *commonFlags, args []string) error {
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
	summary, err := aci.ComputeBER(in, g)
	if err != nil {
		return err
	}
	return xmldom.WriteXML(out, summary.Build(), f.indent)
}
