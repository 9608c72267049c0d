// Command xirc compiles an ECMAScript-like surface AST into the canonical
// intermediate representation and, optionally, one of the supported target
// languages (Lua, JavaScript, LLVM textual IR, WASM binary).
package main

import (
	"os"

	"github.com/cwbudde/go-xir/cmd/xirc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
