package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	emitWasmOutputFile     string
	emitWasmInitialPages   int
	emitWasmMaxPages       int
)

var emitWasmCmd = &cobra.Command{
	Use:   "emit-wasm [file]",
	Short: "Lower a surface AST and emit a WASM 1.0 binary module",
	Long: `emit-wasm writes the compiled module's binary bytes to stdout by
default; redirect or use --output to save it to a .wasm file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEmitWasm,
}

func init() {
	rootCmd.AddCommand(emitWasmCmd)
	emitWasmCmd.Flags().StringVarP(&emitWasmOutputFile, "output", "o", "", "output file (default: stdout)")
	emitWasmCmd.Flags().IntVar(&emitWasmInitialPages, "memory-initial-pages", 0, "initial linear memory size in 64KiB pages (0 keeps the config default)")
	emitWasmCmd.Flags().IntVar(&emitWasmMaxPages, "memory-max-pages", 0, "maximum linear memory size in 64KiB pages (0 keeps the config default)")
}

func runEmitWasm(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	result, err := buildIR(path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("memory-initial-pages") {
		cfg.Wasm.MemoryInitialPages = emitWasmInitialPages
	}
	if cmd.Flags().Changed("memory-max-pages") {
		cfg.Wasm.MemoryMaxPages = emitWasmMaxPages
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := newPipeline().EmitWasm(result.IR)
	if err != nil {
		return fmt.Errorf("failed to emit WASM module: %w", err)
	}

	return writeOutput(emitWasmOutputFile, data)
}
