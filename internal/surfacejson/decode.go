// Package surfacejson decodes the ECMAScript-AST-shaped JSON documents an
// external parser produces (spec.md §6.1) into internal/surface's node
// types. It is the mirror image of internal/serialize, except the schema
// here is the caller's standard ESTree-like shape rather than our own
// canonical IR: every object carries a `type` discriminator and
// camelCase fields matching the common Acorn/Esprima convention, plus an
// optional `loc.start.{line,column}` position.
package surfacejson

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/surface"
)

// Decode parses data as a Program node.
func Decode(data []byte) (*surface.Program, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("surfacejson: invalid JSON: %w", err)
	}
	n, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	prog, ok := n.(*surface.Program)
	if !ok {
		return nil, fmt.Errorf("surfacejson: root node is %T, want Program", n)
	}
	return prog, nil
}

func nodeType(raw map[string]json.RawMessage) (string, error) {
	var t string
	if err := json.Unmarshal(raw["type"], &t); err != nil {
		return "", fmt.Errorf("surfacejson: missing or invalid \"type\" field: %w", err)
	}
	return t, nil
}

func loc(raw map[string]json.RawMessage) diag.Location {
	locRaw, ok := raw["loc"]
	if !ok {
		return diag.Location{}
	}
	var l struct {
		Start struct {
			Line   int `json:"line"`
			Column int `json:"column"`
		} `json:"start"`
	}
	if err := json.Unmarshal(locRaw, &l); err != nil {
		return diag.Location{}
	}
	return diag.Location{Line: l.Start.Line, Column: l.Start.Column}
}

func decodeField(raw map[string]json.RawMessage, key string) (surface.Node, error) {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v, &obj); err != nil {
		return nil, fmt.Errorf("surfacejson: field %q is not an object: %w", key, err)
	}
	return decodeNode(obj)
}

func decodeList(raw map[string]json.RawMessage, key string) ([]surface.Node, error) {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, fmt.Errorf("surfacejson: field %q is not an array: %w", key, err)
	}
	out := make([]surface.Node, len(items))
	for i, item := range items {
		if string(item) == "null" {
			continue // array pattern elision
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, fmt.Errorf("surfacejson: element %d of %q is not an object: %w", i, key, err)
		}
		n, err := decodeNode(obj)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func decodeString(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	_ = json.Unmarshal(v, &s)
	return s
}

func decodeBool(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	if !ok {
		return false
	}
	var b bool
	_ = json.Unmarshal(v, &b)
	return b
}

func decodeNode(raw map[string]json.RawMessage) (surface.Node, error) {
	t, err := nodeType(raw)
	if err != nil {
		return nil, err
	}
	at := loc(raw)

	switch t {
	case "Program":
		body, err := decodeList(raw, "body")
		if err != nil {
			return nil, err
		}
		return &surface.Program{Body: body}, nil

	case "VariableDeclaration":
		var declsRaw []json.RawMessage
		if err := json.Unmarshal(raw["declarations"], &declsRaw); err != nil {
			return nil, fmt.Errorf("surfacejson: VariableDeclaration.declarations: %w", err)
		}
		decls := make([]*surface.VariableDeclarator, len(declsRaw))
		for i, dr := range declsRaw {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(dr, &obj); err != nil {
				return nil, err
			}
			id, err := decodeField(obj, "id")
			if err != nil {
				return nil, err
			}
			init, err := decodeField(obj, "init")
			if err != nil {
				return nil, err
			}
			decls[i] = &surface.VariableDeclarator{Loc: loc(obj), ID: id, Init: init}
		}
		return &surface.VariableDeclaration{Loc: at, Kind: surface.DeclKind(decodeString(raw, "kind")), Declarations: decls}, nil

	case "ArrayPattern":
		elems, err := decodeList(raw, "elements")
		if err != nil {
			return nil, err
		}
		return &surface.ArrayPattern{Loc: at, Elements: elems}, nil

	case "ObjectPattern":
		var propsRaw []json.RawMessage
		if err := json.Unmarshal(raw["properties"], &propsRaw); err != nil {
			return nil, fmt.Errorf("surfacejson: ObjectPattern.properties: %w", err)
		}
		props := make([]*surface.ObjectPatternProperty, len(propsRaw))
		for i, pr := range propsRaw {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(pr, &obj); err != nil {
				return nil, err
			}
			val, err := decodeField(obj, "value")
			if err != nil {
				return nil, err
			}
			props[i] = &surface.ObjectPatternProperty{Loc: loc(obj), Key: propertyKey(obj), Value: val}
		}
		return &surface.ObjectPattern{Loc: at, Properties: props}, nil

	case "RestElement":
		arg, err := decodeField(raw, "argument")
		if err != nil {
			return nil, err
		}
		return &surface.RestElement{Loc: at, Argument: arg}, nil

	case "AssignmentPattern":
		left, err := decodeField(raw, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeField(raw, "right")
		if err != nil {
			return nil, err
		}
		return &surface.AssignmentPattern{Loc: at, Left: left, Right: right}, nil

	case "FunctionDeclaration", "FunctionExpression", "ArrowFunctionExpression":
		params, err := decodeList(raw, "params")
		if err != nil {
			return nil, err
		}
		body, err := decodeField(raw, "body")
		if err != nil {
			return nil, err
		}
		return &surface.FunctionDeclaration{
			Loc:    at,
			Name:   decodeString(raw, "id"),
			Params: params,
			Body:   body,
			Arrow:  t == "ArrowFunctionExpression",
		}, nil

	case "BlockStatement":
		body, err := decodeList(raw, "body")
		if err != nil {
			return nil, err
		}
		return &surface.BlockStatement{Loc: at, Body: body}, nil

	case "ReturnStatement":
		v, err := decodeField(raw, "argument")
		if err != nil {
			return nil, err
		}
		return &surface.ReturnStatement{Loc: at, Value: v}, nil

	case "IfStatement":
		test, err := decodeField(raw, "test")
		if err != nil {
			return nil, err
		}
		cons, err := decodeField(raw, "consequent")
		if err != nil {
			return nil, err
		}
		alt, err := decodeField(raw, "alternate")
		if err != nil {
			return nil, err
		}
		return &surface.IfStatement{Loc: at, Test: test, Consequent: cons, Alternate: alt}, nil

	case "WhileStatement":
		test, err := decodeField(raw, "test")
		if err != nil {
			return nil, err
		}
		body, err := decodeField(raw, "body")
		if err != nil {
			return nil, err
		}
		return &surface.WhileStatement{Loc: at, Test: test, Body: body}, nil

	case "DoWhileStatement":
		test, err := decodeField(raw, "test")
		if err != nil {
			return nil, err
		}
		body, err := decodeField(raw, "body")
		if err != nil {
			return nil, err
		}
		return &surface.DoWhileStatement{Loc: at, Test: test, Body: body}, nil

	case "ForStatement":
		init, err := decodeField(raw, "init")
		if err != nil {
			return nil, err
		}
		test, err := decodeField(raw, "test")
		if err != nil {
			return nil, err
		}
		update, err := decodeField(raw, "update")
		if err != nil {
			return nil, err
		}
		body, err := decodeField(raw, "body")
		if err != nil {
			return nil, err
		}
		return &surface.ForStatement{Loc: at, Init: init, Test: test, Update: update, Body: body}, nil

	case "SwitchStatement":
		disc, err := decodeField(raw, "discriminant")
		if err != nil {
			return nil, err
		}
		var casesRaw []json.RawMessage
		if err := json.Unmarshal(raw["cases"], &casesRaw); err != nil {
			return nil, fmt.Errorf("surfacejson: SwitchStatement.cases: %w", err)
		}
		cases := make([]*surface.SwitchCase, len(casesRaw))
		for i, cr := range casesRaw {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(cr, &obj); err != nil {
				return nil, err
			}
			test, err := decodeField(obj, "test")
			if err != nil {
				return nil, err
			}
			body, err := decodeList(obj, "consequent")
			if err != nil {
				return nil, err
			}
			cases[i] = &surface.SwitchCase{Loc: loc(obj), Test: test, Body: body}
		}
		return &surface.SwitchStatement{Loc: at, Discriminant: disc, Cases: cases}, nil

	case "BreakStatement":
		return &surface.BreakStatement{Loc: at}, nil

	case "ContinueStatement":
		return &surface.ContinueStatement{Loc: at}, nil

	case "ExpressionStatement":
		expr, err := decodeField(raw, "expression")
		if err != nil {
			return nil, err
		}
		return &surface.ExpressionStatement{Loc: at, Expression: expr}, nil

	case "BinaryExpression":
		left, err := decodeField(raw, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeField(raw, "right")
		if err != nil {
			return nil, err
		}
		return &surface.BinaryExpression{Loc: at, Operator: decodeString(raw, "operator"), Left: left, Right: right}, nil

	case "LogicalExpression":
		left, err := decodeField(raw, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeField(raw, "right")
		if err != nil {
			return nil, err
		}
		return &surface.LogicalExpression{Loc: at, Operator: decodeString(raw, "operator"), Left: left, Right: right}, nil

	case "UnaryExpression":
		arg, err := decodeField(raw, "argument")
		if err != nil {
			return nil, err
		}
		return &surface.UnaryExpression{Loc: at, Operator: decodeString(raw, "operator"), Argument: arg}, nil

	case "NewExpression":
		callee, err := decodeField(raw, "callee")
		if err != nil {
			return nil, err
		}
		args, err := decodeList(raw, "arguments")
		if err != nil {
			return nil, err
		}
		return &surface.NewExpression{Loc: at, Callee: callee, Arguments: args}, nil

	case "CallExpression":
		callee, err := decodeField(raw, "callee")
		if err != nil {
			return nil, err
		}
		args, err := decodeList(raw, "arguments")
		if err != nil {
			return nil, err
		}
		return &surface.CallExpression{Loc: at, Callee: callee, Arguments: args}, nil

	case "MemberExpression":
		obj, err := decodeField(raw, "object")
		if err != nil {
			return nil, err
		}
		prop, err := decodeField(raw, "property")
		if err != nil {
			return nil, err
		}
		return &surface.MemberExpression{Loc: at, Object: obj, Property: prop, Computed: decodeBool(raw, "computed")}, nil

	case "ArrayExpression":
		elems, err := decodeList(raw, "elements")
		if err != nil {
			return nil, err
		}
		return &surface.ArrayExpression{Loc: at, Elements: elems}, nil

	case "ObjectExpression":
		var propsRaw []json.RawMessage
		if err := json.Unmarshal(raw["properties"], &propsRaw); err != nil {
			return nil, fmt.Errorf("surfacejson: ObjectExpression.properties: %w", err)
		}
		props := make([]*surface.Property, len(propsRaw))
		for i, pr := range propsRaw {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(pr, &obj); err != nil {
				return nil, err
			}
			val, err := decodeField(obj, "value")
			if err != nil {
				return nil, err
			}
			props[i] = &surface.Property{Loc: loc(obj), Key: propertyKey(obj), Value: val}
		}
		return &surface.ObjectExpression{Loc: at, Properties: props}, nil

	case "Identifier":
		return &surface.Identifier{Loc: at, Name: decodeString(raw, "name")}, nil

	case "Literal":
		return decodeLiteral(raw, at)

	case "TemplateLiteral":
		return decodeTemplateLiteral(raw, at)

	case "AssignmentExpression":
		target, err := decodeField(raw, "left")
		if err != nil {
			return nil, err
		}
		value, err := decodeField(raw, "right")
		if err != nil {
			return nil, err
		}
		return &surface.AssignmentExpression{Loc: at, Operator: decodeString(raw, "operator"), Target: target, Value: value}, nil

	case "ConditionalExpression":
		test, err := decodeField(raw, "test")
		if err != nil {
			return nil, err
		}
		cons, err := decodeField(raw, "consequent")
		if err != nil {
			return nil, err
		}
		alt, err := decodeField(raw, "alternate")
		if err != nil {
			return nil, err
		}
		return &surface.ConditionalExpression{Loc: at, Test: test, Consequent: cons, Alternate: alt}, nil

	default:
		return nil, fmt.Errorf("surfacejson: unsupported node type %q", t)
	}
}

// propertyKey reads an ObjectExpression/ObjectPattern property's key, which
// an ESTree-shaped document represents either as a plain string (shorthand)
// or as a nested Identifier/Literal node under "key".
func propertyKey(obj map[string]json.RawMessage) string {
	raw, ok := obj["key"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var keyObj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyObj); err != nil {
		return ""
	}
	if name := decodeString(keyObj, "name"); name != "" {
		return name
	}
	var v string
	_ = json.Unmarshal(keyObj["value"], &v)
	return v
}

func decodeLiteral(raw map[string]json.RawMessage, at diag.Location) (surface.Node, error) {
	v, ok := raw["value"]
	if !ok || string(v) == "null" {
		return &surface.Literal{Loc: at, Kind: surface.LiteralNull, Value: nil}, nil
	}
	var asFloat float64
	if err := json.Unmarshal(v, &asFloat); err == nil {
		return &surface.Literal{Loc: at, Kind: surface.LiteralNumber, Value: asFloat}, nil
	}
	var asBool bool
	if err := json.Unmarshal(v, &asBool); err == nil {
		return &surface.Literal{Loc: at, Kind: surface.LiteralBoolean, Value: asBool}, nil
	}
	var asString string
	if err := json.Unmarshal(v, &asString); err == nil {
		return &surface.Literal{Loc: at, Kind: surface.LiteralString, Value: asString}, nil
	}
	return nil, fmt.Errorf("surfacejson: literal value has unsupported JSON shape %s", v)
}

func decodeTemplateLiteral(raw map[string]json.RawMessage, at diag.Location) (surface.Node, error) {
	var quasisRaw []json.RawMessage
	if err := json.Unmarshal(raw["quasis"], &quasisRaw); err != nil {
		return nil, fmt.Errorf("surfacejson: TemplateLiteral.quasis: %w", err)
	}
	quasis := make([]string, len(quasisRaw))
	for i, qr := range quasisRaw {
		var q struct {
			Value struct {
				Cooked string `json:"cooked"`
			} `json:"value"`
		}
		if err := json.Unmarshal(qr, &q); err != nil {
			return nil, fmt.Errorf("surfacejson: TemplateLiteral.quasis[%d]: %w", i, err)
		}
		quasis[i] = q.Value.Cooked
	}
	exprs, err := decodeList(raw, "expressions")
	if err != nil {
		return nil, err
	}
	return &surface.TemplateLiteral{Loc: at, Quasis: quasis, Expressions: exprs}, nil
}
