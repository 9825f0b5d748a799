package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.xfsx.dev/bed/xmlber"
)

// validateCmd implements the `validate` verb. Structural validation (that the
// input actually decodes as well-formed BER, walking every header) is in
// scope; schema validation against an XSD is not: the --xsd flag is accepted
// for interface completeness but its file is never read.
var validateCmd = &cobra.Command{
	Use:   "validate INPUT",
	Short: "Check that INPUT decodes as well-formed BER",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(validateFlags, args)
	},
}

var validateFlags *commonFlags

func init() {
	validateFlags = registerCommonFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidate(f *commonFlags, args []string) error {
	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	g := loadGrammar(f)
	if _, err := xmlber.ToXML(in, g); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	out, err := openOutput(f.output)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = fmt.Fprintln(out, "validates")
	return err
}
