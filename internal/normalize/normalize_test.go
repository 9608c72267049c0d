package normalize

import (
	"reflect"
	"testing"

	"github.com/cwbudde/go-xir/internal/surface"
)

func TestWrapsSingleStatementBodies(t *testing.T) {
	prog := &surface.Program{Body: []surface.Node{
		&surface.IfStatement{
			Test:       &surface.Identifier{Name: "x"},
			Consequent: &surface.ExpressionStatement{Expression: &surface.Identifier{Name: "y"}},
		},
	}}

	got := Normalize(prog)
	ifStmt := got.Body[0].(*surface.IfStatement)
	block, ok := ifStmt.Consequent.(*surface.BlockStatement)
	if !ok {
		t.Fatalf("consequent not wrapped in a block: %#v", ifStmt.Consequent)
	}
	if len(block.Body) != 1 {
		t.Fatalf("expected 1 statement in wrapped block, got %d", len(block.Body))
	}
}

func TestSplitsMultiDeclaratorVarDecl(t *testing.T) {
	prog := &surface.Program{Body: []surface.Node{
		&surface.VariableDeclaration{
			Kind: surface.DeclLet,
			Declarations: []*surface.VariableDeclarator{
				{ID: &surface.Identifier{Name: "a"}},
				{ID: &surface.Identifier{Name: "b"}},
			},
		},
	}}

	got := Normalize(prog)
	if len(got.Body) != 2 {
		t.Fatalf("expected 2 statements after split, got %d", len(got.Body))
	}
	for _, s := range got.Body {
		vd := s.(*surface.VariableDeclaration)
		if len(vd.Declarations) != 1 {
			t.Fatalf("expected exactly 1 declarator per split statement, got %d", len(vd.Declarations))
		}
	}
}

func TestEmptyBlockIsNeverNil(t *testing.T) {
	prog := &surface.Program{Body: []surface.Node{
		&surface.WhileStatement{Test: &surface.Identifier{Name: "x"}, Body: nil},
	}}

	got := Normalize(prog)
	ws := got.Body[0].(*surface.WhileStatement)
	block := ws.Body.(*surface.BlockStatement)
	if block.Body == nil {
		t.Fatal("expected non-nil empty statement slice, got nil")
	}
	if len(block.Body) != 0 {
		t.Fatalf("expected empty block, got %d statements", len(block.Body))
	}
}

func TestArrowExpressionBodyBecomesBlockWithReturn(t *testing.T) {
	fn := &surface.FunctionDeclaration{
		Arrow: true,
		Body:  &surface.Identifier{Name: "x"},
	}
	prog := &surface.Program{Body: []surface.Node{fn}}

	got := Normalize(prog).Body[0].(*surface.FunctionDeclaration)
	block := got.Body.(*surface.BlockStatement)
	if len(block.Body) != 1 {
		t.Fatalf("expected single statement body, got %d", len(block.Body))
	}
	ret, ok := block.Body[0].(*surface.ReturnStatement)
	if !ok {
		t.Fatalf("expected ReturnStatement, got %T", block.Body[0])
	}
	if !reflect.DeepEqual(ret.Value, &surface.Identifier{Name: "x"}) {
		t.Fatalf("return value mismatch: %#v", ret.Value)
	}
}

func TestIdempotent(t *testing.T) {
	prog := &surface.Program{Body: []surface.Node{
		&surface.IfStatement{
			Test:       &surface.Identifier{Name: "x"},
			Consequent: &surface.ExpressionStatement{Expression: &surface.Identifier{Name: "y"}},
		},
		&surface.VariableDeclaration{
			Kind:         surface.DeclConst,
			Declarations: []*surface.VariableDeclarator{{ID: &surface.Identifier{Name: "z"}}},
		},
	}}

	once := Normalize(prog)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalize is not idempotent:\nonce=%#v\ntwice=%#v", once, twice)
	}
}
