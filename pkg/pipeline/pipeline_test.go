package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/cwbudde/go-xir/internal/config"
	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/surface"
)

func sampleSurfaceProgram() *surface.Program {
	return &surface.Program{
		Body: []surface.Node{
			&surface.VariableDeclaration{
				Kind: surface.DeclLet,
				Declarations: []*surface.VariableDeclarator{
					{
						ID:   &surface.Identifier{Name: "x"},
						Init: &surface.Literal{Kind: surface.LiteralNumber, Value: 1.0},
					},
				},
			},
		},
	}
}

func TestBuildIRProducesValidatedProgram(t *testing.T) {
	p := New(config.Default())
	result, err := p.BuildIR(context.Background(), sampleSurfaceProgram())
	if err != nil {
		t.Fatalf("BuildIR() error = %v", err)
	}
	if len(result.IR.Body) != 1 {
		t.Fatalf("IR.Body has %d statements, want 1", len(result.IR.Body))
	}
	if p.CorrelationID() == "" {
		t.Error("CorrelationID() is empty, want a generated uuid")
	}
}

func TestBuildIRRespectsCancellation(t *testing.T) {
	p := New(config.Default()).WithCancel(func() bool { return true })
	_, err := p.BuildIR(context.Background(), sampleSurfaceProgram())
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.KindCancelled {
		t.Errorf("err = %v, want a KindCancelled diagnostic", err)
	}
}

func TestPipelineEmitsAllFourTargets(t *testing.T) {
	p := New(config.Default())
	result, err := p.BuildIR(context.Background(), sampleSurfaceProgram())
	if err != nil {
		t.Fatalf("BuildIR() error = %v", err)
	}

	if _, err := p.Serialize(result.IR, 2); err != nil {
		t.Errorf("Serialize() error = %v", err)
	}
	lua, _, err := p.EmitLua(result.IR)
	if err != nil {
		t.Errorf("EmitLua() error = %v", err)
	}
	if !strings.Contains(lua, "local x") {
		t.Errorf("EmitLua() = %q, want a local declaration", lua)
	}
	js, err := p.EmitJS(result.IR)
	if err != nil {
		t.Errorf("EmitJS() error = %v", err)
	}
	if !strings.Contains(js, "let x") {
		t.Errorf("EmitJS() = %q, want a let declaration", js)
	}
	llvm, err := p.EmitLLVM(result.IR, "unit")
	if err != nil {
		t.Errorf("EmitLLVM() error = %v", err)
	}
	if !strings.Contains(llvm, "define") {
		t.Errorf("EmitLLVM() = %q, want a synthesized main function", llvm)
	}
	wasm, err := p.EmitWasm(result.IR)
	if err != nil {
		t.Errorf("EmitWasm() error = %v", err)
	}
	if len(wasm) < 8 {
		t.Errorf("EmitWasm() produced %d bytes, want at least the header", len(wasm))
	}
}

func TestBuildIRPromotesWarningsUnderStrictDeterminism(t *testing.T) {
	cfg := config.Default()
	cfg.Determinism.Strict = true
	p := New(cfg)

	// An undeclared free identifier is an implicit global under lax scoping
	// but becomes fatal once determinism.strict promotes warnings to errors.
	prog := &surface.Program{
		Body: []surface.Node{
			&surface.ExpressionStatement{
				Expression: &surface.AssignmentExpression{
					Operator: "=",
					Target:   &surface.Identifier{Name: "undeclared"},
					Value:    &surface.Literal{Kind: surface.LiteralNumber, Value: 2.0},
				},
			},
		},
	}

	_, err := p.BuildIR(context.Background(), prog)
	if err == nil {
		t.Fatal("expected strict determinism to promote the scope warning to an error")
	}
}
