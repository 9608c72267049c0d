package validate

import (
	"testing"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irbuild"
	"github.com/cwbudde/go-xir/internal/irtype"
)

func TestValidateAcceptsWellFormedProgram(t *testing.T) {
	b := irbuild.New()
	lit, err := b.Literal(1.0, irtype.NumberT, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	decl, err := b.VarDecl("x", lit, "let", diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	prog, err := b.Program([]irast.Node{decl}, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}

	if diags := Validate(prog, Options{}); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestValidateRejectsBreakOutsideLoop(t *testing.T) {
	b := irbuild.New()
	br, err := b.Break(diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	prog, err := b.Program([]irast.Node{br}, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}

	diags := Validate(prog, Options{})
	if len(diags) != 1 || diags[0].Kind != diag.KindScopeError {
		t.Fatalf("expected a single ScopeError, got %v", diags)
	}
}

func TestValidateAllowsBreakInsideWhile(t *testing.T) {
	b := irbuild.New()
	br, err := b.Break(diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	body, err := b.Block([]irast.Node{br}, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	cond, err := b.Literal(true, irtype.BooleanT, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	w, err := b.While(cond, body, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	prog, err := b.Program([]irast.Node{w}, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}

	if diags := Validate(prog, Options{}); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestValidateRejectsNonBooleanCondition(t *testing.T) {
	b := irbuild.New()
	cond, err := b.Literal(1.0, irtype.NumberT, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	body, err := b.Block(nil, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	w, err := b.While(cond, body, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	prog, err := b.Program([]irast.Node{w}, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}

	diags := Validate(prog, Options{})
	if len(diags) != 1 {
		t.Fatalf("expected 1 type diagnostic, got %v", diags)
	}
}

func TestValidateRejectsDuplicateObjectKey(t *testing.T) {
	b := irbuild.New()
	v1, err := b.Literal(1.0, irtype.NumberT, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	v2, err := b.Literal(2.0, irtype.NumberT, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	p1, err := b.Property("a", v1, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := b.Property("a", v2, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	obj, err := b.ObjectLiteral([]*irast.Property{p1, p2}, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	stmt, err := b.ExpressionStmt(obj, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	prog, err := b.Program([]irast.Node{stmt}, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}

	diags := Validate(prog, Options{})
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic for duplicate key, got %v", diags)
	}
}

// TestValidateRejectsDuplicateParameterNames constructs a FunctionDecl by
// hand (bypassing irbuild, whose own factory already rejects this shape) to
// simulate a malformed tree arriving from an untrusted source such as a
// deserialized snapshot.
func TestValidateRejectsDuplicateParameterNames(t *testing.T) {
	b := irbuild.New()
	body, err := b.Block(nil, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	fn := &irast.FunctionDecl{
		Base: irast.Base{ID: "fn", Kind: irast.KindFunctionDecl},
		Name: "f",
		Params: []*irast.Parameter{
			{Base: irast.Base{ID: "param1", Kind: irast.KindParameter}, Name: "a"},
			{Base: irast.Base{ID: "param2", Kind: irast.KindParameter}, Name: "a"},
		},
		Body: body,
	}
	prog := &irast.Program{Base: irast.Base{ID: "prog", Kind: irast.KindProgram}, Body: []irast.Node{fn}}

	diags := Validate(prog, Options{})
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic for duplicate parameter, got %v", diags)
	}
}
