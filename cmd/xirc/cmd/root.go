package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-xir/internal/config"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "xirc",
	Short: "A source-to-source compiler for an ECMAScript-like surface language",
	Long: `xirc lowers an ECMAScript-like surface AST through a canonical
intermediate representation and emits one of several target languages:

  - a Lua 5.1 dialect
  - JavaScript
  - a WASM 1.0 binary module
  - an LLVM textual IR module

The surface AST is read as JSON from a file or standard input; it is
produced by an external parser and is not generated by this tool.`,
	Version:           Version,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to an xirc.yaml configuration file")
}

// loadConfig resolves the active configuration before any subcommand runs:
// defaults, overlaid by --config when given.
func loadConfig(_ *cobra.Command, _ []string) error {
	if cfgFile == "" {
		cfg = config.Default()
		return nil
	}
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
