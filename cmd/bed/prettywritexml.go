package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.xfsx.dev/bed/xmlber"
)

var prettyWriteXMLCmd = &cobra.Command{
	Use:   "pretty-write-xml INPUT [OUTPUT]",
	Short: "Render a BER file as indented, human-readable XML",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrettyWriteXML(prettyWriteXMLFlags, args)
	},
}

var prettyWriteXMLFlags *commonFlags

func init() {
	prettyWriteXMLFlags = registerCommonFlags(prettyWriteXMLCmd)
	rootCmd.AddCommand(prettyWriteXMLCmd)
}

func runPrettyWriteXML(f *commonFlags, args []string) error {
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
	logger.Debug("pretty-write-xml", zap.String("input", args[0]))

	opts := xmlber.PrettyOptions{
		IndentWidth:     f.indent,
		Hex:             f.hex,
		Offsets:         f.offset,
		DumpTSize:       f.tSize,
		BCI:             f.bci,
		SkipFirstNBytes: f.skip,
		Count:           f.count,
		FirstOnly:       f.first,
	}
	return xmlber.PrettyWrite(out, in, g, opts)
}

// outputArg returns the output destination: f.output (from -o/--output) if
// set, else the optional OUTPUT positional argument, else "" (stdout).
func outputArg(f *commonFlags, args []string) string {
	if f.output != "" {
		return f.output
	}
	if len(args) > 1 {
		return args[1]
	}
	return ""
}
