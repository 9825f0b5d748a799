package main

import (
	"fmt"

	"github.com/antchfx/xpath"
	"github.com/spf13/cobra"

	"go.xfsx.dev/bed/xmlber"
	"go.xfsx.dev/bed/xmldom"
)

var searchCmd = &cobra.Command{
	Use:   "search EXPR INPUT [OUTPUT]",
	Short: "Print every element matching an XPath-like selector",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(searchFlags, args)
	},
}

var searchFlags *commonFlags

func init() {
	searchFlags = registerCommonFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(f *commonFlags, args []string) error {
	selector, inputName := args[0], args[1]
	outputName := f.output
	if outputName == "" && len(args) > 2 {
		outputName = args[2]
	}

	in, err := openInput(inputName)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(outputName)
	if err != nil {
		return err
	}
	defer out.Close()

	g := loadGrammar(f)
	doc, err := xmlber.ToXML(in, g)
	if err != nil {
		return err
	}

	expr, err := xpath.Compile(selector)
	if err != nil {
		return fmt.Errorf("compiling selector %q: %w", selector, err)
	}

	iter := expr.Select(xmldom.NewNavigator(doc))
	matched := 0
	for i := int64(0); iter.MoveNext(); i++ {
		if f.skip > 0 && i < f.skip {
			continue
		}
		node := xmldom.NodeOf(iter.Current())
		if err := xmldom.WriteXML(out, node, f.indent); err != nil {
			return err
		}
		matched++
		if f.first || (f.count > 0 && matched >= f.count) {
			break
		}
	}
	if matched == 0 {
		fmt.Fprintln(out)
	}
	return nil
}
