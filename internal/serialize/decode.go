package serialize

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irtype"
)

// Decode parses canonical JSON back into an IR tree. Decode trusts node ids
// and kinds as given; it does not re-run the Validator. Callers that read
// untrusted snapshots should validate the result before handing it to an
// emitter (spec.md §4.6 "deserialization is the inverse of serialization").
func Decode(data []byte) (*irast.Program, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("serialize: decode: %w", err)
	}
	n, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	prog, ok := n.(*irast.Program)
	if !ok {
		return nil, fmt.Errorf("serialize: decode: root node is %T, want *irast.Program", n)
	}
	return prog, nil
}

func decodeNodeField(raw json.RawMessage) (irast.Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return decodeNode(m)
}

func decodeNodeList(raw json.RawMessage) ([]irast.Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]irast.Node, len(items))
	for i, it := range items {
		n, err := decodeNodeField(it)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func decodeString(raw json.RawMessage) string {
	var s string
	json.Unmarshal(raw, &s)
	return s
}

func decodeBool(raw json.RawMessage) bool {
	var b bool
	json.Unmarshal(raw, &b)
	return b
}

// decodeNode reconstructs one node from its field map, dispatching on the
// same closed Kind switch every other pipeline stage uses.
func decodeNode(m map[string]json.RawMessage) (irast.Node, error) {
	kind := irast.Kind(decodeString(m["kind"]))
	base := irast.Base{ID: decodeString(m["id"]), Kind: kind}

	if typRaw, ok := m["type"]; ok && len(typRaw) > 0 && string(typRaw) != "null" {
		t, err := decodeType(typRaw)
		if err != nil {
			return nil, fmt.Errorf("serialize: decode %s %q: %w", kind, base.ID, err)
		}
		base.Type = t
	}
	if locRaw, ok := m["location"]; ok {
		var lo struct {
			Line   int `json:"line"`
			Column int `json:"column"`
		}
		json.Unmarshal(locRaw, &lo)
		base.Location = diag.Location{Line: lo.Line, Column: lo.Column}
	}
	if metaRaw, ok := m["metadata"]; ok {
		var md map[string]any
		json.Unmarshal(metaRaw, &md)
		base.Metadata = irast.Metadata(normalizeMetadata(md))
	}

	switch kind {
	case irast.KindProgram:
		body, err := decodeNodeList(m["body"])
		if err != nil {
			return nil, err
		}
		return &irast.Program{Base: base, Body: body}, nil

	case irast.KindFunctionDecl:
		bodyNode, err := decodeNodeField(m["body"])
		if err != nil {
			return nil, err
		}
		block, _ := bodyNode.(*irast.Block)
		paramNodes, err := decodeNodeList(m["params"])
		if err != nil {
			return nil, err
		}
		params := make([]*irast.Parameter, len(paramNodes))
		for i, n := range paramNodes {
			p, ok := n.(*irast.Parameter)
			if !ok {
				return nil, fmt.Errorf("serialize: decode FunctionDecl: param %d is %T, want *Parameter", i, n)
			}
			params[i] = p
		}
		return &irast.FunctionDecl{Base: base, Name: decodeString(m["name"]), Params: params, Body: block}, nil

	case irast.KindVarDecl:
		value, err := decodeNodeField(m["value"])
		if err != nil {
			return nil, err
		}
		return &irast.VarDecl{Base: base, Name: decodeString(m["name"]), Value: value}, nil

	case irast.KindParameter:
		return &irast.Parameter{Base: base, Name: decodeString(m["name"])}, nil

	case irast.KindBlock:
		stmts, err := decodeNodeList(m["statements"])
		if err != nil {
			return nil, err
		}
		if stmts == nil {
			stmts = []irast.Node{}
		}
		return &irast.Block{Base: base, Statements: stmts}, nil

	case irast.KindReturn:
		value, err := decodeNodeField(m["value"])
		if err != nil {
			return nil, err
		}
		return &irast.Return{Base: base, Value: value}, nil

	case irast.KindIf:
		cond, err := decodeNodeField(m["condition"])
		if err != nil {
			return nil, err
		}
		consNode, err := decodeNodeField(m["consequent"])
		if err != nil {
			return nil, err
		}
		cons, _ := consNode.(*irast.Block)
		alt, err := decodeNodeField(m["alternate"])
		if err != nil {
			return nil, err
		}
		return &irast.If{Base: base, Condition: cond, Consequent: cons, Alternate: alt}, nil

	case irast.KindWhile:
		cond, bodyBlock, err := decodeCondBody(m)
		if err != nil {
			return nil, err
		}
		return &irast.While{Base: base, Condition: cond, Body: bodyBlock}, nil

	case irast.KindDoWhile:
		cond, bodyBlock, err := decodeCondBody(m)
		if err != nil {
			return nil, err
		}
		return &irast.DoWhile{Base: base, Condition: cond, Body: bodyBlock}, nil

	case irast.KindFor:
		initN, err := decodeNodeField(m["init"])
		if err != nil {
			return nil, err
		}
		test, err := decodeNodeField(m["test"])
		if err != nil {
			return nil, err
		}
		update, err := decodeNodeField(m["update"])
		if err != nil {
			return nil, err
		}
		bodyNode, err := decodeNodeField(m["body"])
		if err != nil {
			return nil, err
		}
		body, _ := bodyNode.(*irast.Block)
		return &irast.For{Base: base, Init: initN, Test: test, Update: update, Body: body}, nil

	case irast.KindSwitch:
		disc, err := decodeNodeField(m["discriminant"])
		if err != nil {
			return nil, err
		}
		caseNodes, err := decodeNodeList(m["cases"])
		if err != nil {
			return nil, err
		}
		cases := make([]*irast.Case, len(caseNodes))
		for i, n := range caseNodes {
			c, ok := n.(*irast.Case)
			if !ok {
				return nil, fmt.Errorf("serialize: decode Switch: case %d is %T, want *Case", i, n)
			}
			cases[i] = c
		}
		return &irast.Switch{Base: base, Discriminant: disc, Cases: cases}, nil

	case irast.KindCase:
		test, err := decodeNodeField(m["test"])
		if err != nil {
			return nil, err
		}
		body, err := decodeNodeList(m["body"])
		if err != nil {
			return nil, err
		}
		return &irast.Case{Base: base, Test: test, Body: body}, nil

	case irast.KindBreak:
		return &irast.Break{Base: base}, nil

	case irast.KindContinue:
		return &irast.Continue{Base: base}, nil

	case irast.KindExpressionStmt:
		expr, err := decodeNodeField(m["expression"])
		if err != nil {
			return nil, err
		}
		return &irast.ExpressionStmt{Base: base, Expression: expr}, nil

	case irast.KindBinaryOp:
		left, err := decodeNodeField(m["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeNodeField(m["right"])
		if err != nil {
			return nil, err
		}
		return &irast.BinaryOp{Base: base, Operator: decodeString(m["operator"]), Left: left, Right: right}, nil

	case irast.KindUnaryOp:
		arg, err := decodeNodeField(m["argument"])
		if err != nil {
			return nil, err
		}
		return &irast.UnaryOp{Base: base, Operator: decodeString(m["operator"]), Argument: arg}, nil

	case irast.KindCall:
		callee, err := decodeNodeField(m["callee"])
		if err != nil {
			return nil, err
		}
		args, err := decodeNodeList(m["arguments"])
		if err != nil {
			return nil, err
		}
		return &irast.Call{Base: base, Callee: callee, Arguments: args}, nil

	case irast.KindMember:
		obj, err := decodeNodeField(m["object"])
		if err != nil {
			return nil, err
		}
		prop, err := decodeNodeField(m["property"])
		if err != nil {
			return nil, err
		}
		return &irast.Member{Base: base, Object: obj, Property: prop, Computed: decodeBool(m["computed"])}, nil

	case irast.KindArrayLiteral:
		elems, err := decodeNodeList(m["elements"])
		if err != nil {
			return nil, err
		}
		return &irast.ArrayLiteral{Base: base, Elements: elems}, nil

	case irast.KindObjectLiteral:
		propNodes, err := decodeNodeList(m["properties"])
		if err != nil {
			return nil, err
		}
		props := make([]*irast.Property, len(propNodes))
		for i, n := range propNodes {
			p, ok := n.(*irast.Property)
			if !ok {
				return nil, fmt.Errorf("serialize: decode ObjectLiteral: property %d is %T, want *Property", i, n)
			}
			props[i] = p
		}
		return &irast.ObjectLiteral{Base: base, Properties: props}, nil

	case irast.KindProperty:
		value, err := decodeNodeField(m["value"])
		if err != nil {
			return nil, err
		}
		return &irast.Property{Base: base, Key: decodeString(m["key"]), Value: value}, nil

	case irast.KindIdentifier:
		return &irast.Identifier{Base: base, Name: decodeString(m["name"])}, nil

	case irast.KindLiteral:
		var val any
		if raw, ok := m["value"]; ok {
			json.Unmarshal(raw, &val)
		}
		return &irast.Literal{Base: base, Value: val}, nil

	case irast.KindAssignment:
		target, err := decodeNodeField(m["target"])
		if err != nil {
			return nil, err
		}
		value, err := decodeNodeField(m["value"])
		if err != nil {
			return nil, err
		}
		return &irast.Assignment{Base: base, Operator: decodeString(m["operator"]), Target: target, Value: value}, nil

	case irast.KindConditional:
		test, err := decodeNodeField(m["test"])
		if err != nil {
			return nil, err
		}
		cons, err := decodeNodeField(m["consequent"])
		if err != nil {
			return nil, err
		}
		alt, err := decodeNodeField(m["alternate"])
		if err != nil {
			return nil, err
		}
		return &irast.Conditional{Base: base, Test: test, Consequent: cons, Alternate: alt}, nil

	default:
		return nil, fmt.Errorf("serialize: decode: unknown node kind %q", kind)
	}
}

func decodeCondBody(m map[string]json.RawMessage) (irast.Node, *irast.Block, error) {
	cond, err := decodeNodeField(m["condition"])
	if err != nil {
		return nil, nil, err
	}
	bodyNode, err := decodeNodeField(m["body"])
	if err != nil {
		return nil, nil, err
	}
	body, _ := bodyNode.(*irast.Block)
	return cond, body, nil
}

// normalizeMetadata converts whole-valued float64s back to int, undoing
// encoding/json's default numeric decoding into any so Metadata.Int reads
// match what the Lowerer originally stored (spec.md §3.1 "metadata values
// are scalars: bool, string, or int").
func normalizeMetadata(md map[string]any) map[string]any {
	for k, v := range md {
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			md[k] = int(f)
		}
	}
	return md
}

// decodeType reconstructs a lattice member from its self-describing shape
// (spec.md §3.2); the inverse of encodeType.
func decodeType(raw json.RawMessage) (irtype.Type, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	kind := decodeString(m["kind"])
	switch kind {
	case "primitive":
		name := decodeString(m["name"])
		switch name {
		case "number":
			return irtype.NumberT, nil
		case "string":
			return irtype.StringT, nil
		case "boolean":
			return irtype.BooleanT, nil
		case "null":
			return irtype.NullT, nil
		case "void":
			return irtype.VoidT, nil
		default:
			return nil, fmt.Errorf("serialize: decode type: unknown primitive %q", name)
		}
	case "array":
		elem, err := decodeType(m["element"])
		if err != nil {
			return nil, err
		}
		return irtype.ArrayType{Element: elem}, nil
	case "object":
		var fieldsRaw []json.RawMessage
		json.Unmarshal(m["fields"], &fieldsRaw)
		fields := make([]irtype.ObjectField, len(fieldsRaw))
		for i, fr := range fieldsRaw {
			var fm map[string]json.RawMessage
			if err := json.Unmarshal(fr, &fm); err != nil {
				return nil, err
			}
			ft, err := decodeType(fm["type"])
			if err != nil {
				return nil, err
			}
			fields[i] = irtype.ObjectField{Name: decodeString(fm["name"]), Type: ft}
		}
		return irtype.ObjectType{Fields: fields, Open: decodeBool(m["open"])}, nil
	case "function":
		var paramsRaw []json.RawMessage
		json.Unmarshal(m["params"], &paramsRaw)
		params := make([]irtype.Type, len(paramsRaw))
		for i, pr := range paramsRaw {
			pt, err := decodeType(pr)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		ret, err := decodeType(m["returnType"])
		if err != nil {
			return nil, err
		}
		return irtype.FunctionType{Params: params, ReturnType: ret}, nil
	case "optional":
		b, err := decodeType(m["base"])
		if err != nil {
			return nil, err
		}
		return irtype.OptionalType{Base: b}, nil
	case "union":
		var membersRaw []json.RawMessage
		json.Unmarshal(m["members"], &membersRaw)
		members := make([]irtype.Type, len(membersRaw))
		for i, mr := range membersRaw {
			mt, err := decodeType(mr)
			if err != nil {
				return nil, err
			}
			members[i] = mt
		}
		return irtype.UnionType{Members: members}, nil
	case "unknown":
		return irtype.UnknownT, nil
	default:
		return nil, fmt.Errorf("serialize: decode type: unknown type kind %q", kind)
	}
}
