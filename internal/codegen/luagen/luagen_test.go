package luagen

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irbuild"
	"github.com/cwbudde/go-xir/internal/irtype"
)

func TestEmitVarDeclBecomesLocal(t *testing.T) {
	b := irbuild.New()
	lit, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	decl, _ := b.VarDecl("x", lit, "let", diag.Location{})
	prog, _ := b.Program([]irast.Node{decl}, diag.Location{})

	out, _, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if strings.TrimSpace(out) != "local x = 1" {
		t.Errorf("Emit() = %q, want %q", strings.TrimSpace(out), "local x = 1")
	}
}

func TestEmitConstWarns(t *testing.T) {
	b := irbuild.New()
	lit, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	decl, _ := b.VarDecl("x", lit, "const", diag.Location{})
	prog, _ := b.Program([]irast.Node{decl}, diag.Location{})

	_, warnings, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for const collapse, got %d", len(warnings))
	}
}

func TestEmitStrictEqualityBecomesDoubleEquals(t *testing.T) {
	b := irbuild.New()
	left, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	right, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	cmp, _ := b.BinaryOp("===", left, right, diag.Location{})
	stmt, _ := b.ExpressionStmt(cmp, diag.Location{})
	prog, _ := b.Program([]irast.Node{stmt}, diag.Location{})

	out, _, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "(1 == 1)") {
		t.Errorf("Emit() = %q, want it to contain %q", out, "(1 == 1)")
	}
}

func TestEmitStringConcatenationUsesDoubleDot(t *testing.T) {
	b := irbuild.New()
	left, _ := b.Literal("hi ", irtype.StringT, diag.Location{})
	right, _ := b.Identifier("name", diag.Location{})
	concat, _ := b.BinaryOp("+", left, right, diag.Location{})
	stmt, _ := b.ExpressionStmt(concat, diag.Location{})
	prog, _ := b.Program([]irast.Node{stmt}, diag.Location{})

	out, _, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, `"hi " .. tostring(name)`) {
		t.Errorf("Emit() = %q, want it to contain string concatenation", out)
	}
}

func TestEmitConsoleLogBecomesPrint(t *testing.T) {
	b := irbuild.New()
	console, _ := b.Identifier("console", diag.Location{})
	log, _ := b.Identifier("log", diag.Location{})
	callee, _ := b.Member(console, log, false, diag.Location{})
	msg, _ := b.Literal("hi", irtype.StringT, diag.Location{})
	call, _ := b.Call(callee, []irast.Node{msg}, false, diag.Location{})
	stmt, _ := b.ExpressionStmt(call, diag.Location{})
	prog, _ := b.Program([]irast.Node{stmt}, diag.Location{})

	out, _, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, `print("hi")`) {
		t.Errorf("Emit() = %q, want it to contain %q", out, `print("hi")`)
	}
}

func TestEmitContinueRewritesToGotoWithWarning(t *testing.T) {
	b := irbuild.New()
	cont, _ := b.Continue(diag.Location{})
	body, _ := b.Block([]irast.Node{cont}, diag.Location{})
	cond, _ := b.Literal(true, irtype.BooleanT, diag.Location{})
	loop, _ := b.While(cond, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{loop}, diag.Location{})

	out, warnings, err := Emit(prog, Options{EmitContinueWarning: true})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "goto continue_1") || !strings.Contains(out, "::continue_1::") {
		t.Errorf("Emit() = %q, want a goto/label pair desugaring continue", out)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for continue rewrite, got %d", len(warnings))
	}
}

func TestEmitContinueSkipsWarningWhenDisabled(t *testing.T) {
	b := irbuild.New()
	cont, _ := b.Continue(diag.Location{})
	body, _ := b.Block([]irast.Node{cont}, diag.Location{})
	cond, _ := b.Literal(true, irtype.BooleanT, diag.Location{})
	loop, _ := b.While(cond, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{loop}, diag.Location{})

	out, warnings, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "goto continue_1") {
		t.Errorf("Emit() = %q, want continue still desugared to goto", out)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings with EmitContinueWarning unset, got %d", len(warnings))
	}
}

func TestEmitContinueRejectedUnderStrict(t *testing.T) {
	b := irbuild.New()
	cont, _ := b.Continue(diag.Location{})
	body, _ := b.Block([]irast.Node{cont}, diag.Location{})
	cond, _ := b.Literal(true, irtype.BooleanT, diag.Location{})
	loop, _ := b.While(cond, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{loop}, diag.Location{})

	_, _, err := Emit(prog, Options{Strict: true})
	if err == nil {
		t.Fatal("Emit() error = nil, want an UnsupportedForLua error under strict mode")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.KindUnsupportedForLua {
		t.Errorf("err = %v, want a KindUnsupportedForLua diagnostic", err)
	}
}

func TestEmitForLoopContinueSkipsToUpdate(t *testing.T) {
	b := irbuild.New()
	init, _ := b.VarDecl("i", mustLiteral(b, 0.0), "let", diag.Location{})
	i1, _ := b.Identifier("i", diag.Location{})
	ten, _ := b.Literal(10.0, irtype.NumberT, diag.Location{})
	test, _ := b.BinaryOp("<", i1, ten, diag.Location{})
	i2, _ := b.Identifier("i", diag.Location{})
	one, _ := b.Literal(1.0, irtype.NumberT, diag.Location{})
	update, _ := b.Assignment("+=", i2, one, diag.Location{})
	cont, _ := b.Continue(diag.Location{})
	body, _ := b.Block([]irast.Node{cont}, diag.Location{})
	loop, _ := b.For(init, test, update, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{loop}, diag.Location{})

	out, _, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	labelIdx := strings.Index(out, "::continue_1::")
	updateIdx := strings.Index(out, "i = (i + 1)")
	if labelIdx == -1 || updateIdx == -1 || labelIdx > updateIdx {
		t.Errorf("Emit() = %q, want the continue label to precede the update statement", out)
	}
}

func mustLiteral(b *irbuild.Builder, v float64) irast.Node {
	lit, _ := b.Literal(v, irtype.NumberT, diag.Location{})
	return lit
}

func TestEmitDoWhileBecomesRepeatUntilNot(t *testing.T) {
	b := irbuild.New()
	cond, _ := b.Literal(false, irtype.BooleanT, diag.Location{})
	body, _ := b.Block(nil, diag.Location{})
	loop, _ := b.DoWhile(body, cond, diag.Location{})
	prog, _ := b.Program([]irast.Node{loop}, diag.Location{})

	out, _, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !strings.Contains(out, "repeat") || !strings.Contains(out, "until not (false)") {
		t.Errorf("Emit() = %q, want repeat/until not", out)
	}
}
