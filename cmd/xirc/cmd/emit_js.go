package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	emitJSOutputFile string
	emitJSSemicolons bool
	emitJSIndent     int
)

var emitJSCmd = &cobra.Command{
	Use:   "emit-js [file]",
	Short: "Lower a surface AST and emit JavaScript source",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmitJS,
}

func init() {
	rootCmd.AddCommand(emitJSCmd)
	emitJSCmd.Flags().StringVarP(&emitJSOutputFile, "output", "o", "", "output file (default: stdout)")
	emitJSCmd.Flags().BoolVar(&emitJSSemicolons, "semicolons", false, "append statement-terminating semicolons")
	emitJSCmd.Flags().IntVar(&emitJSIndent, "indent", 0, "indent width override (0 keeps the config default)")
}

func runEmitJS(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	result, err := buildIR(path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("semicolons") {
		cfg.JS.Semicolons = emitJSSemicolons
	}
	if cmd.Flags().Changed("indent") {
		cfg.JS.Indent = emitJSIndent
	}

	src, err := newPipeline().EmitJS(result.IR)
	if err != nil {
		return fmt.Errorf("failed to emit JavaScript: %w", err)
	}

	return writeOutput(emitJSOutputFile, []byte(src+"\n"))
}
