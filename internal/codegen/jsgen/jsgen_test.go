package jsgen

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irbuild"
	"github.com/cwbudde/go-xir/internal/irtype"
)

func TestEmitVarDeclPreservesDeclKind(t *testing.T) {
	b := irbuild.New()
	lit, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	decl, _ := b.VarDecl("x", lit, "const", diag.Location{})
	prog, _ := b.Program([]irast.Node{decl}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if strings.TrimSpace(out) != "const x = 1" {
		t.Errorf("Emit() = %q, want %q", strings.TrimSpace(out), "const x = 1")
	}
}

func TestEmitSemicolonsOptIn(t *testing.T) {
	b := irbuild.New()
	lit, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	decl, _ := b.VarDecl("x", lit, "let", diag.Location{})
	prog, _ := b.Program([]irast.Node{decl}, diag.Location{})

	out, err := Emit(prog, Options{Semicolons: true})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if strings.TrimSpace(out) != "let x = 1;" {
		t.Errorf("Emit() = %q, want trailing semicolon", strings.TrimSpace(out))
	}
}

func TestEmitStrictEqualityIsPreserved(t *testing.T) {
	b := irbuild.New()
	left, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	right, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	cmp, _ := b.BinaryOp("===", left, right, diag.Location{})
	stmt, _ := b.ExpressionStmt(cmp, diag.Location{})
	prog, _ := b.Program([]irast.Node{stmt}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "(1 === 1)") {
		t.Errorf("Emit() = %q, want it to contain %q", out, "(1 === 1)")
	}
}

func TestEmitTernaryIsStableAcrossRuns(t *testing.T) {
	b := irbuild.New()
	test, _ := b.Identifier("ok", diag.Location{})
	cons, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	alt, _ := b.Literal(0.0, irtype.NumberT, diag.Location{})
	cond, _ := b.Conditional(test, cons, alt, diag.Location{})
	stmt, _ := b.ExpressionStmt(cond, diag.Location{})
	prog, _ := b.Program([]irast.Node{stmt}, diag.Location{})

	first, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	second, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if first != second {
		t.Fatalf("ternary emission is not stable across runs:\n  first:  %q\n  second: %q", first, second)
	}
	if !strings.Contains(first, "(ok ? 1 : 0)") {
		t.Errorf("Emit() = %q, want it to contain the ternary form", first)
	}
}

func TestEmitIfElseChain(t *testing.T) {
	b := irbuild.New()
	cond1, _ := b.Identifier("a", diag.Location{})
	cond2, _ := b.Identifier("b", diag.Location{})
	thenBlk, _ := b.Block(nil, diag.Location{})
	elseIfBlk, _ := b.Block(nil, diag.Location{})
	elseBlk, _ := b.Block(nil, diag.Location{})
	elseIf, _ := b.If(cond2, elseIfBlk, elseBlk, diag.Location{})
	ifStmt, _ := b.If(cond1, thenBlk, elseIf, diag.Location{})
	prog, _ := b.Program([]irast.Node{ifStmt}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "if (a) {") || !strings.Contains(out, "} else if (b) {") || !strings.Contains(out, "} else {") {
		t.Errorf("Emit() = %q, want a full if/else-if/else chain", out)
	}
}

func TestEmitFunctionDeclBlockStructure(t *testing.T) {
	b := irbuild.New()
	ret, _ := b.Return(nil, diag.Location{})
	body, _ := b.Block([]irast.Node{ret}, diag.Location{})
	param, _ := b.Parameter("n", false, diag.Location{})
	fn, _ := b.FunctionDecl("noop", []*irast.Parameter{param}, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "function noop(n) {") || !strings.Contains(out, "return") || !strings.Contains(out, "}") {
		t.Errorf("Emit() = %q, want function block structure preserved", out)
	}
}

func TestEmitIndentWidthConfigurable(t *testing.T) {
	b := irbuild.New()
	ret, _ := b.Return(nil, diag.Location{})
	body, _ := b.Block([]irast.Node{ret}, diag.Location{})
	fn, _ := b.FunctionDecl("noop", nil, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	out, err := Emit(prog, Options{IndentWidth: 4})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "    return") {
		t.Errorf("Emit() = %q, want 4-space indent on nested return", out)
	}
}

// TestEmitMaxFunctionMatchesSnapshot pins the full rendering of a small
// two-branch function against a committed snapshot, the way the teacher's
// own fixture-driven tests pin interpreter output.
func TestEmitMaxFunctionMatchesSnapshot(t *testing.T) {
	b := irbuild.New()
	a, _ := b.Identifier("a", diag.Location{})
	bb, _ := b.Identifier("b", diag.Location{})
	cond, _ := b.BinaryOp(">", a, bb, diag.Location{})

	aRet, _ := b.Identifier("a", diag.Location{})
	retA, _ := b.Return(aRet, diag.Location{})
	thenBlock, _ := b.Block([]irast.Node{retA}, diag.Location{})

	bRet, _ := b.Identifier("b", diag.Location{})
	retB, _ := b.Return(bRet, diag.Location{})
	elseBlock, _ := b.Block([]irast.Node{retB}, diag.Location{})

	ifStmt, _ := b.If(cond, thenBlock, elseBlock, diag.Location{})
	fnBody, _ := b.Block([]irast.Node{ifStmt}, diag.Location{})

	paramA, _ := b.Parameter("a", false, diag.Location{})
	paramB, _ := b.Parameter("b", false, diag.Location{})
	fn, _ := b.FunctionDecl("max", []*irast.Parameter{paramA, paramB}, fnBody, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	snaps.MatchSnapshot(t, out)
}
