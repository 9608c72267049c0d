package llvmgen

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irbuild"
	"github.com/cwbudde/go-xir/internal/irtype"
)

func TestEmitModuleHeader(t *testing.T) {
	b := irbuild.New()
	prog, _ := b.Program(nil, diag.Location{})

	out, err := Emit(prog, Options{ModuleName: "unit", TargetTriple: "x86_64-unknown-linux-gnu"})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.HasPrefix(out, "; ModuleID = 'unit'\n") {
		t.Errorf("Emit() = %q, want ModuleID header first", out)
	}
	if !strings.Contains(out, `target triple = "x86_64-unknown-linux-gnu"`) {
		t.Errorf("Emit() = %q, want target triple line", out)
	}
	if !strings.Contains(out, "declare i32 @printf(ptr, ...)") {
		t.Errorf("Emit() = %q, want printf declared", out)
	}
}

func TestEmitIdentityFunctionAllocatesAndReturns(t *testing.T) {
	b := irbuild.New()
	param, _ := b.Parameter("x", false, diag.Location{})
	ident, _ := b.Identifier("x", diag.Location{})
	ret, _ := b.Return(ident, diag.Location{})
	body, _ := b.Block([]irast.Node{ret}, diag.Location{})
	fn, _ := b.FunctionDecl("id", []*irast.Parameter{param}, body, diag.Location{})
	fn.SetNodeType(irtype.FunctionType{Params: []irtype.Type{irtype.NumberT}, ReturnType: irtype.NumberT})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "define double @id(double %x)") {
		t.Errorf("Emit() = %q, want identity function signature", out)
	}
	if !strings.Contains(out, "%x_addr = alloca double") {
		t.Errorf("Emit() = %q, want parameter alloca", out)
	}
	if !strings.Contains(out, "store double %x, ptr %x_addr") {
		t.Errorf("Emit() = %q, want parameter stored", out)
	}
	if !strings.Contains(out, "load double, ptr %x_addr") {
		t.Errorf("Emit() = %q, want parameter loaded back for return", out)
	}
	if !strings.Contains(out, "ret double") {
		t.Errorf("Emit() = %q, want ret double", out)
	}
}

func TestEmitIfProducesThenAndEndBlocks(t *testing.T) {
	b := irbuild.New()
	param, _ := b.Parameter("x", false, diag.Location{})
	ident, _ := b.Identifier("x", diag.Location{})
	zero, _ := b.Literal(0.0, irtype.NumberT, diag.Location{})
	cond, _ := b.BinaryOp("<=", ident, zero, diag.Location{})
	one, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	thenRet, _ := b.Return(one, diag.Location{})
	thenBlk, _ := b.Block([]irast.Node{thenRet}, diag.Location{})
	ifStmt, _ := b.If(cond, thenBlk, nil, diag.Location{})
	two, _ := b.Literal(2.0, irtype.NumberT, diag.Location{})
	tailRet, _ := b.Return(two, diag.Location{})
	body, _ := b.Block([]irast.Node{ifStmt, tailRet}, diag.Location{})
	fn, _ := b.FunctionDecl("f", []*irast.Parameter{param}, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	for _, want := range []string{"if_then0:", "if_end0:", "fcmp ole"} {
		if !strings.Contains(out, want) {
			t.Errorf("Emit() = %q, want it to contain %q", out, want)
		}
	}
}

func TestEmitWhileLoopWithBreak(t *testing.T) {
	b := irbuild.New()
	cond, _ := b.Literal(true, irtype.BooleanT, diag.Location{})
	brk, _ := b.Break(diag.Location{})
	body, _ := b.Block([]irast.Node{brk}, diag.Location{})
	loop, _ := b.While(cond, body, diag.Location{})
	fnBody, _ := b.Block([]irast.Node{loop}, diag.Location{})
	fn, _ := b.FunctionDecl("loopy", nil, fnBody, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	for _, want := range []string{"while_cond0:", "while_body0:", "while_end0:", "br label %while_end0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Emit() = %q, want it to contain %q", out, want)
		}
	}
}

func TestEmitStringLiteralInternsConstant(t *testing.T) {
	b := irbuild.New()
	lit, _ := b.Literal("hi", irtype.StringT, diag.Location{})
	ret, _ := b.Return(lit, diag.Location{})
	body, _ := b.Block([]irast.Node{ret}, diag.Location{})
	fn, _ := b.FunctionDecl("greet", nil, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, `@.str.0 = private unnamed_addr constant [3 x i8] c"hi\00"`) {
		t.Errorf("Emit() = %q, want interned string constant", out)
	}
}

func TestEmitBreakOutsideLoopIsUnsupported(t *testing.T) {
	b := irbuild.New()
	brk, _ := b.Break(diag.Location{})
	body, _ := b.Block([]irast.Node{brk}, diag.Location{})
	fn, _ := b.FunctionDecl("bad", nil, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	_, err := Emit(prog, Options{})
	if err == nil {
		t.Fatal("expected an error for break outside a loop")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.KindUnsupportedForLLVM {
		t.Errorf("err = %v, want a KindUnsupportedForLLVM diagnostic", err)
	}
}
