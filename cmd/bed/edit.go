package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"go.xfsx.dev/bed/aci"
	"go.xfsx.dev/bed/edit"
	"go.xfsx.dev/bed/tlv"
	"go.xfsx.dev/bed/xmlber"
)

// editCmd implements the `edit` verb. Its `-c OP ARGS...` flag is repeatable
// and each occurrence consumes a variable number of following tokens
// depending on OP, which pflag's single-value flags cannot express; flag
// parsing is disabled for this command and runEdit below walks the raw
// argument list itself.
var editCmd = &cobra.Command{
	Use:   "edit -c OP ARGS... [-c OP ARGS...]... [--asn PATH]... [-o OUTPUT] INPUT",
	Short: "Splice remove/replace/add/set-att/insert/write-aci ops into a BER record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args)
	},
	DisableFlagParsing: true,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

// editOpArity gives the number of ARGS tokens each op name consumes after
// its own name, per test/bed/command/edit.cc.
var editOpArity = map[string]int{
	"remove":    1, // selector
	"replace":   3, // selector, regexp, template
	"add":       3, // selector, child-name, text
	"set-att":   3, // selector, attr-name, attr-value
	"insert":    3, // selector, xml (literal or "@file"), position
	"write-aci": 0,
}

func runEdit(args []string) error {
	var (
		asnFiles []string
		output   string
		input    string
		ops      []edit.Op
	)

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "--asn":
			i++
			if i >= len(args) {
				return fmt.Errorf("--asn: missing value")
			}
			asnFiles = append(asnFiles, args[i])
		case "-o", "--output":
			i++
			if i >= len(args) {
				return fmt.Errorf("%s: missing value", a)
			}
			output = args[i]
		case "-c", "--edit":
			i++
			if i >= len(args) {
				return fmt.Errorf("-c: missing op name")
			}
			kind := args[i]
			arity, ok := editOpArity[kind]
			if !ok {
				return fmt.Errorf("-c: unknown edit op %q", kind)
			}
			if len(args)-(i+1) < arity {
				return fmt.Errorf("-c %s: expected %d argument(s)", kind, arity)
			}
			opArgs := args[i+1 : i+1+arity]
			op, err := buildOp(kind, opArgs)
			if err != nil {
				return fmt.Errorf("-c %s: %w", kind, err)
			}
			ops = append(ops, op)
			i += arity
		default:
			if strings.HasPrefix(a, "-") {
				// unrecognized common flag accepted for interface completeness
				continue
			}
			if input == "" {
				input = a
			} else if output == "" {
				output = a
			}
		}
	}

	if input == "" {
		return fmt.Errorf("edit: missing INPUT")
	}

	in, err := openInput(input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	g := loadGrammarFiles(asnFiles)
	doc, err := xmlber.ToXML(in, g)
	if err != nil {
		return err
	}

	if err := edit.Apply(doc, ops, aci.Replace); err != nil {
		return err
	}

	e := tlv.NewEncoder(out)
	return xmlber.FromXML(e, doc, g)
}

// buildOp turns one op name plus its fixed-arity argument slice into an
// [edit.Op].
func buildOp(kind string, a []string) (edit.Op, error) {
	switch kind {
	case "remove":
		return edit.Op{Kind: edit.Remove, Selector: a[0]}, nil
	case "replace":
		return edit.Op{Kind: edit.Replace, Selector: a[0], Regexp: a[1], Template: a[2]}, nil
	case "add":
		return edit.Op{Kind: edit.Add, Selector: a[0], ChildName: a[1], Text: a[2]}, nil
	case "set-att":
		return edit.Op{Kind: edit.SetAttr, Selector: a[0], AttrName: a[1], AttrValue: a[2]}, nil
	case "insert":
		xmlText, err := resolveXMLArg(a[1])
		if err != nil {
			return edit.Op{}, err
		}
		pos, err := strconv.Atoi(a[2])
		if err != nil {
			return edit.Op{}, fmt.Errorf("position %q: %w", a[2], err)
		}
		return edit.Op{Kind: edit.Insert, Selector: a[0], XML: xmlText, Position: pos}, nil
	case "write-aci":
		return edit.Op{Kind: edit.WriteACI}, nil
	default:
		return edit.Op{}, fmt.Errorf("unknown edit op %q", kind)
	}
}

// resolveXMLArg returns s unchanged, unless it starts with "@", in which
// case the rest is a file path whose contents are read and returned instead.
func resolveXMLArg(s string) (string, error) {
	if !strings.HasPrefix(s, "@") {
		return s, nil
	}
	path := s[1:]
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading XML fragment file %q: %w", path, err)
	}
	return string(b), nil
}
