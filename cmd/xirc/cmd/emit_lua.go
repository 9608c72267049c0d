package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var emitLuaOutputFile string

var emitLuaCmd = &cobra.Command{
	Use:   "emit-lua [file]",
	Short: "Lower a surface AST and emit Lua source",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmitLua,
}

func init() {
	rootCmd.AddCommand(emitLuaCmd)
	emitLuaCmd.Flags().StringVarP(&emitLuaOutputFile, "output", "o", "", "output file (default: stdout)")
}

func runEmitLua(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	result, err := buildIR(path)
	if err != nil {
		return err
	}

	src, warnings, err := newPipeline().EmitLua(result.IR)
	if err != nil {
		return fmt.Errorf("failed to emit Lua: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Error())
	}

	return writeOutput(emitLuaOutputFile, []byte(src+"\n"))
}
