package main

import (
	"github.com/spf13/cobra"
)

var mkBashCompCmd = &cobra.Command{
	Use:   "mk-bash-comp [OUTPUT]",
	Short: "Generate a bash completion script for bed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMkBashComp(mkBashCompFlags, args)
	},
}

var mkBashCompFlags *commonFlags

func init() {
	mkBashCompFlags = registerCommonFlags(mkBashCompCmd)
	rootCmd.AddCommand(mkBashCompCmd)
}

func runMkBashComp(f *commonFlags, args []string) error {
	outputName := f.output
	if outputName == "" && len(args) > 0 {
		outputName = args[0]
	}
	out, err := openOutput(outputName)
	if err != nil {
		return err
	}
	defer out.Close()

	return rootCmd.GenBashCompletion(out)
}
