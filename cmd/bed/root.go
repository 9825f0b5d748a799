// Command bed is the CLI front end for the BER<->XML toolkit: it exercises
// the core asn1/tlv/grammar/vtlv/xmldom/xmlber/traverse/edit/aci packages
// end to end, one subcommand per verb.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.xfsx.dev/bed/grammar"
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:           "bed",
	Short:         "A BER<->XML toolkit for TAP/RAP billing records",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// commonFlags holds the subset of the common flag set (spec §6) a given
// subcommand actually consumes; subcommands read only the fields they need.
type commonFlags struct {
	asnFiles []string
	xsd      string
	indent   int
	hex      bool
	tag      bool
	klasse   bool
	tl       bool
	tSize    bool
	length   bool
	offset   bool
	skip     int64
	bci      bool
	search   string
	first    bool
	count    int
	expr     string
	output   string
}

func registerCommonFlags(cmd *cobra.Command) *commonFlags {
	f := &commonFlags{}
	cmd.Flags().StringArrayVar(&f.asnFiles, "asn", nil, "ASN.1 grammar file (repeatable)")
	cmd.Flags().StringVar(&f.xsd, "xsd", "", "XSD schema file")
	cmd.Flags().IntVar(&f.indent, "indent", 2, "indent width")
	cmd.Flags().BoolVar(&f.hex, "hex", false, "render primitive content as hex")
	cmd.Flags().BoolVar(&f.tag, "tag", false, "unused; accepted for interface completeness")
	cmd.Flags().BoolVar(&f.klasse, "klasse", false, "unused; accepted for interface completeness")
	cmd.Flags().BoolVar(&f.tl, "tl", false, "unused; accepted for interface completeness")
	cmd.Flags().BoolVar(&f.tSize, "t-size", false, "annotate elements with their TL header size")
	cmd.Flags().BoolVar(&f.length, "length", false, "unused; accepted for interface completeness")
	cmd.Flags().BoolVar(&f.offset, "offset", false, "annotate elements with their byte offset")
	cmd.Flags().Int64Var(&f.skip, "skip", 0, "skip this many leading bytes of input")
	cmd.Flags().BoolVar(&f.bci, "bci", false, "annotate elements with their full encoded size")
	cmd.Flags().StringVar(&f.search, "search", "", "tag-path search expression")
	cmd.Flags().BoolVar(&f.first, "first", false, "stop after the first match")
	cmd.Flags().IntVar(&f.count, "count", 0, "stop after this many matches")
	cmd.Flags().StringVar(&f.expr, "expr", "", "XPath-like selector expression")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	return f
}

// loadGrammar resolves the grammar to use for a run. Parsing actual ASN.1
// grammar-source files is out of scope (the core only consumes a prebuilt
// [grammar.Grammar]); when no files are given we fall back to ASN1_PATH
// purely to discover candidate files to log, and otherwise run ungrammared
// (element names fall back to the literal tag form, as [grammar.Static]'s
// callers always may).
func loadGrammar(f *commonFlags) grammar.Grammar {
	return loadGrammarFiles(f.asnFiles)
}

// loadGrammarFiles is the [loadGrammar] logic for callers, like the edit
// command, that assemble their own flag value outside a [commonFlags].
func loadGrammarFiles(files []string) grammar.Grammar {
	if len(files) == 0 {
		if path := os.Getenv("ASN1_PATH"); path != "" {
			files = strings.Split(path, ":")
		}
	}
	if len(files) > 0 {
		logger.Debug("grammar files named but not parsed; running ungrammared", zap.Strings("files", files))
	}
	return nil
}

// openInput opens name for reading, treating "-" as stdin.
func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening input %q: %w", name, err)
	}
	return f, nil
}

// openOutput opens name for writing, treating "" as stdout.
func openOutput(name string) (io.WriteCloser, error) {
	if name == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("creating output %q: %w", name, err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Execute runs the root command, returning its error for main to translate
// into an exit code.
func Execute() error {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	return rootCmd.Execute()
}
