package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	emitLLVMOutputFile   string
	emitLLVMModuleName   string
	emitLLVMTargetTriple string
)

var emitLLVMCmd = &cobra.Command{
	Use:   "emit-llvm [file]",
	Short: "Lower a surface AST and emit an LLVM textual IR module",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmitLLVM,
}

func init() {
	rootCmd.AddCommand(emitLLVMCmd)
	emitLLVMCmd.Flags().StringVarP(&emitLLVMOutputFile, "output", "o", "", "output file (default: stdout)")
	emitLLVMCmd.Flags().StringVar(&emitLLVMModuleName, "module-name", "main", "LLVM module identifier")
	emitLLVMCmd.Flags().StringVar(&emitLLVMTargetTriple, "target-triple", "", "target triple override (default: config value)")
}

func runEmitLLVM(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	result, err := buildIR(path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("target-triple") {
		cfg.TargetTriple = emitLLVMTargetTriple
	}

	src, err := newPipeline().EmitLLVM(result.IR, emitLLVMModuleName)
	if err != nil {
		return fmt.Errorf("failed to emit LLVM IR: %w", err)
	}

	return writeOutput(emitLLVMOutputFile, []byte(src+"\n"))
}
