package surfacejson

import (
	"testing"

	"github.com/cwbudde/go-xir/internal/surface"
)

func TestDecodeVariableDeclaration(t *testing.T) {
	doc := `{
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

	prog, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(prog.Body) != 1 {
		t.Fatalf("Body has %d statements, want 1", len(prog.Body))
	}
	decl, ok := prog.Body[0].(*surface.VariableDeclaration)
	if !ok {
		t.Fatalf("Body[0] is %T, want *VariableDeclaration", prog.Body[0])
	}
	if decl.Kind != surface.DeclLet {
		t.Errorf("Kind = %q, want %q", decl.Kind, surface.DeclLet)
	}
	if len(decl.Declarations) != 1 {
		t.Fatalf("Declarations has %d entries, want 1", len(decl.Declarations))
	}
	id, ok := decl.Declarations[0].ID.(*surface.Identifier)
	if !ok || id.Name != "x" {
		t.Errorf("ID = %#v, want Identifier{Name: \"x\"}", decl.Declarations[0].ID)
	}
	lit, ok := decl.Declarations[0].Init.(*surface.Literal)
	if !ok || lit.Kind != surface.LiteralNumber || lit.Value.(float64) != 1 {
		t.Errorf("Init = %#v, want Literal{Kind: number, Value: 1}", decl.Declarations[0].Init)
	}
}

func TestDecodeFunctionDeclarationWithIfElse(t *testing.T) {
	doc := `{
		"type": "Program",
		"body": [
			{
				"type": "FunctionDeclaration",
				"id": "max",
				"params": [
					{"type": "Identifier", "name": "a"},
					{"type": "Identifier", "name": "b"}
				],
				"body": {
					"type": "BlockStatement",
					"body": [
						{
							"type": "IfStatement",
							"test": {
								"type": "BinaryExpression",
								"operator": ">",
								"left": {"type": "Identifier", "name": "a"},
								"right": {"type": "Identifier", "name": "b"}
							},
							"consequent": {
								"type": "BlockStatement",
								"body": [
									{"type": "ReturnStatement", "argument": {"type": "Identifier", "name": "a"}}
								]
							},
							"alternate": {
								"type": "BlockStatement",
								"body": [
									{"type": "ReturnStatement", "argument": {"type": "Identifier", "name": "b"}}
								]
							}
						}
					]
				}
			}
		]
	}`

	prog, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	fn, ok := prog.Body[0].(*surface.FunctionDeclaration)
	if !ok {
		t.Fatalf("Body[0] is %T, want *FunctionDeclaration", prog.Body[0])
	}
	if fn.Name != "max" {
		t.Errorf("Name = %q, want \"max\"", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("Params has %d entries, want 2", len(fn.Params))
	}
	body, ok := fn.Body.(*surface.BlockStatement)
	if !ok || len(body.Body) != 1 {
		t.Fatalf("Body = %#v, want a one-statement block", fn.Body)
	}
	ifStmt, ok := body.Body[0].(*surface.IfStatement)
	if !ok {
		t.Fatalf("statement is %T, want *IfStatement", body.Body[0])
	}
	if ifStmt.Alternate == nil {
		t.Error("Alternate is nil, want the else block")
	}
}

func TestDecodeObjectAndArrayExpressions(t *testing.T) {
	doc := `{
		"type": "Program",
		"body": [
			{
				"type": "ExpressionStatement",
				"expression": {
					"type": "ObjectExpression",
					"properties": [
						{"type": "Property", "key": "count", "value": {"type": "Literal", "value": 0}}
					]
				}
			},
			{
				"type": "ExpressionStatement",
				"expression": {
					"type": "ArrayExpression",
					"elements": [
						{"type": "Literal", "value": 1},
						{"type": "Literal", "value": 2}
					]
				}
			}
		]
	}`

	prog, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	objStmt := prog.Body[0].(*surface.ExpressionStatement)
	obj, ok := objStmt.Expression.(*surface.ObjectExpression)
	if !ok || len(obj.Properties) != 1 || obj.Properties[0].Key != "count" {
		t.Errorf("ObjectExpression = %#v, want a single \"count\" property", obj)
	}
	arrStmt := prog.Body[1].(*surface.ExpressionStatement)
	arr, ok := arrStmt.Expression.(*surface.ArrayExpression)
	if !ok || len(arr.Elements) != 2 {
		t.Errorf("ArrayExpression = %#v, want two elements", arr)
	}
}

func TestDecodeRejectsUnknownNodeType(t *testing.T) {
	doc := `{"type": "Program", "body": [{"type": "WeirdStatement"}]}`
	if _, err := Decode([]byte(doc)); err == nil {
		t.Fatal("expected an error for an unrecognized node type")
	}
}

func TestDecodeRejectsNonProgramRoot(t *testing.T) {
	doc := `{"type": "Identifier", "name": "x"}`
	if _, err := Decode([]byte(doc)); err == nil {
		t.Fatal("expected an error when the root node is not a Program")
	}
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
