package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/surfacejson"
	"github.com/cwbudde/go-xir/pkg/pipeline"
)

// newPipeline constructs a Pipeline over the resolved configuration, for
// commands that need to call an Emit* method directly after buildIR.
func newPipeline() *pipeline.Pipeline {
	return pipeline.New(cfg)
}

// readInput loads a surface AST document from path, or from stdin when path
// is empty or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// buildIR reads, decodes, and lowers a surface AST document into validated
// canonical IR, reporting diagnostics to stderr the way the teacher's
// compile command reports parse/semantic errors.
func buildIR(path string) (*pipeline.Result, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	program, err := surfacejson.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode surface AST: %w", err)
	}

	p := pipeline.New(cfg)
	result, err := p.BuildIR(context.Background(), program)
	if err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			return nil, fmt.Errorf("%s", d.Error())
		}
		return nil, err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Error())
	}
	return result, nil
}
