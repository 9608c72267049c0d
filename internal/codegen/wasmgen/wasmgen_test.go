package wasmgen

import (
	"bytes"
	"testing"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irbuild"
	"github.com/cwbudde/go-xir/internal/irtype"
)

func TestEmitMagicAndVersion(t *testing.T) {
	b := irbuild.New()
	prog, _ := b.Program(nil, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.HasPrefix(out, want) {
		t.Fatalf("Emit() = % x, want prefix % x", out[:8], want)
	}
}

func TestEmitIdentityFunctionSignature(t *testing.T) {
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
	// Type section: id=1, len, count=1, form 0x60, paramCount=1, f64, resultCount=1, f64.
	typeSection := []byte{secType, 0x06, 0x01, 0x60, 0x01, valTypeF64, 0x01, valTypeF64}
	if !bytes.Contains(out, typeSection) {
		t.Errorf("Emit() = % x, want type section % x", out, typeSection)
	}
}

func TestEmitExportsEveryTopLevelFunction(t *testing.T) {
	b := irbuild.New()
	body, _ := b.Block(nil, diag.Location{})
	fn, _ := b.FunctionDecl("run", nil, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	out, err := Emit(prog, Options{})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	want := append([]byte{secExport}, 0x07, 0x01, 0x03, 'r', 'u', 'n', 0x00, 0x00)
	if !bytes.Contains(out, want) {
		t.Errorf("Emit() = % x, want export section % x", out, want)
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
	if !ok || d.Kind != diag.KindUnsupportedForWasm {
		t.Errorf("err = %v, want a KindUnsupportedForWasm diagnostic", err)
	}
}

func TestEmitObjectLiteralMethodIsUnsupported(t *testing.T) {
	b := irbuild.New()
	methodBody, _ := b.Block(nil, diag.Location{})
	method, _ := b.FunctionDecl("", nil, methodBody, diag.Location{})
	prop, _ := b.Property("greet", method, diag.Location{})
	obj, _ := b.ObjectLiteral([]*irast.Property{prop}, diag.Location{})
	stmt, _ := b.ExpressionStmt(obj, diag.Location{})
	body, _ := b.Block([]irast.Node{stmt}, diag.Location{})
	fn, _ := b.FunctionDecl("make", nil, body, diag.Location{})
	prog, _ := b.Program([]irast.Node{fn}, diag.Location{})

	_, err := Emit(prog, Options{})
	if err == nil {
		t.Fatal("expected an error for an object literal method property")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.KindUnsupportedForWasm {
		t.Errorf("err = %v, want a KindUnsupportedForWasm diagnostic", err)
	}
}

func TestEmitMemoryMaxPagesOptional(t *testing.T) {
	b := irbuild.New()
	prog, _ := b.Program(nil, diag.Location{})

	out, err := Emit(prog, Options{MemoryInitialPages: 2})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	want := []byte{secMemory, 0x03, 0x01, 0x00, 0x02}
	if !bytes.Contains(out, want) {
		t.Errorf("Emit() = % x, want memory section % x", out, want)
	}
}
