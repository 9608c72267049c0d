package cmd

import (
	"os"
	"strings"
	"testing"

	"github.com/cwbudde/go-xir/internal/config"
)

const sampleProgramJSON = `{
	"type": "Program",
	"body": [
		{
			"type": "VariableDeclaration",
			"kind": "let",
			"declarations": [
				{
					"type": "VariableDeclarator",
					"id": {"type": "Identifier", "name": "x"},
					"init": {"type": "Literal", "value": 1}
				}
			]
		}
	]
}`

func withTempProgram(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/program.json"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestBuildIRFromDecodedSurfaceProgram(t *testing.T) {
	cfg = config.Default()
	path := withTempProgram(t, sampleProgramJSON)

	result, err := buildIR(path)
	if err != nil {
		t.Fatalf("buildIR() error = %v", err)
	}
	if len(result.IR.Body) != 1 {
		t.Fatalf("IR.Body has %d statements, want 1", len(result.IR.Body))
	}
}

func TestRunEmitJSProducesLetDeclaration(t *testing.T) {
	cfg = config.Default()
	path := withTempProgram(t, sampleProgramJSON)

	result, err := buildIR(path)
	if err != nil {
		t.Fatalf("buildIR() error = %v", err)
	}
	src, err := newPipeline().EmitJS(result.IR)
	if err != nil {
		t.Fatalf("EmitJS() error = %v", err)
	}
	if !strings.Contains(src, "let x") {
		t.Errorf("EmitJS() = %q, want a let declaration", src)
	}
}

func TestBuildIRRejectsMalformedJSON(t *testing.T) {
	cfg = config.Default()
	path := withTempProgram(t, "not json")
	if _, err := buildIR(path); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}
