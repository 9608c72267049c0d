// Package serialize implements the Serializer (spec.md §4.6): canonical JSON
// encoding and decoding of canonical IR trees. Encoding writes keys in a
// fixed order per node (kind, id, variant fields alphabetically, type,
// location, metadata) so two structurally identical trees always produce
// byte-identical output, independent of indentation (spec.md §8
// determinism property). Decoding is the inverse and trusts its input the
// way the teacher's bytecode.Deserializer trusts a prior Serialize call;
// re-validate with internal/validate before treating decoded IR as safe.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irtype"
	"github.com/tidwall/pretty"
)

// Options controls the textual rendering of an otherwise-canonical encoding.
// Indentation never changes the semantic content, only whitespace (spec.md
// §4.6 "equivalent under re-indentation").
type Options struct {
	// Indent is the number of spaces per nesting level. Zero means compact,
	// single-line output.
	Indent int
}

// Encode renders program as canonical JSON. The byte slice is compact
// unless opts.Indent is positive, in which case it is re-indented with
// tidwall/pretty (spec.md §4.6 "a pluggable indentation pass over an
// otherwise-canonical byte stream").
func Encode(program *irast.Program, opts Options) ([]byte, error) {
	raw, err := encodeNode(program)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	if opts.Indent <= 0 {
		return raw, nil
	}
	popts := &pretty.Options{Indent: spaces(opts.Indent), SortKeys: false}
	return pretty.PrettyOptions(raw, popts), nil
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// objWriter accumulates one JSON object's fields in call order. encoding/json
// would otherwise alphabetize a map[string]any's keys, which would scramble
// the fixed field order spec.md §4.6 requires.
type objWriter struct {
	buf   bytes.Buffer
	count int
}

func newObj() *objWriter {
	o := &objWriter{}
	o.buf.WriteByte('{')
	return o
}

func (o *objWriter) sep() {
	if o.count > 0 {
		o.buf.WriteByte(',')
	}
	o.count++
}

func (o *objWriter) rawField(key string, raw []byte) {
	o.sep()
	k, _ := json.Marshal(key)
	o.buf.Write(k)
	o.buf.WriteByte(':')
	o.buf.Write(raw)
}

func (o *objWriter) field(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	o.rawField(key, raw)
	return nil
}

func (o *objWriter) number(key string, f float64) {
	o.rawField(key, []byte(formatNumber(f)))
}

func (o *objWriter) close() []byte {
	o.buf.WriteByte('}')
	return o.buf.Bytes()
}

func mustJSON(v any) []byte {
	raw, _ := json.Marshal(v)
	return raw
}

// encodeNode dispatches on the closed Kind switch, the same pattern the
// Builder and Validator use, and is the only place the Serializer's field
// ordering lives.
func encodeNode(n irast.Node) ([]byte, error) {
	if n == nil || isNilIRNode(n) {
		return []byte("null"), nil
	}

	o := newObj()
	o.rawField("kind", mustJSON(string(n.NodeKind())))
	o.rawField("id", mustJSON(n.NodeID()))

	var err error
	switch t := n.(type) {
	case *irast.Program:
		err = encodeNodesField(o, "body", t.Body)
	case *irast.FunctionDecl:
		err = encodeNodeField(o, "body", t.Body)
		if err == nil {
			err = o.field("name", t.Name)
		}
		if err == nil {
			err = encodeNodesField(o, "params", parametersToNodes(t.Params))
		}
	case *irast.VarDecl:
		err = o.field("name", t.Name)
		if err == nil {
			err = encodeNodeField(o, "value", t.Value)
		}
	case *irast.Parameter:
		err = o.field("name", t.Name)
	case *irast.Block:
		err = encodeNodesField(o, "statements", t.Statements)
	case *irast.Return:
		err = encodeNodeField(o, "value", t.Value)
	case *irast.If:
		err = encodeNodeField(o, "alternate", t.Alternate)
		if err == nil {
			err = encodeNodeField(o, "condition", t.Condition)
		}
		if err == nil {
			err = encodeNodeField(o, "consequent", t.Consequent)
		}
	case *irast.While:
		err = encodeNodeField(o, "body", t.Body)
		if err == nil {
			err = encodeNodeField(o, "condition", t.Condition)
		}
	case *irast.DoWhile:
		err = encodeNodeField(o, "body", t.Body)
		if err == nil {
			err = encodeNodeField(o, "condition", t.Condition)
		}
	case *irast.For:
		err = encodeNodeField(o, "body", t.Body)
		if err == nil {
			err = encodeNodeField(o, "init", t.Init)
		}
		if err == nil {
			err = encodeNodeField(o, "test", t.Test)
		}
		if err == nil {
			err = encodeNodeField(o, "update", t.Update)
		}
	case *irast.Switch:
		err = encodeNodesField(o, "cases", casesToNodes(t.Cases))
		if err == nil {
			err = encodeNodeField(o, "discriminant", t.Discriminant)
		}
	case *irast.Case:
		err = encodeNodesField(o, "body", t.Body)
		if err == nil {
			err = encodeNodeField(o, "test", t.Test)
		}
	case *irast.Break, *irast.Continue:
		// no variant fields
	case *irast.ExpressionStmt:
		err = encodeNodeField(o, "expression", t.Expression)
	case *irast.BinaryOp:
		err = encodeNodeField(o, "left", t.Left)
		if err == nil {
			err = o.field("operator", t.Operator)
		}
		if err == nil {
			err = encodeNodeField(o, "right", t.Right)
		}
	case *irast.UnaryOp:
		err = encodeNodeField(o, "argument", t.Argument)
		if err == nil {
			err = o.field("operator", t.Operator)
		}
	case *irast.Call:
		err = encodeNodesField(o, "arguments", t.Arguments)
		if err == nil {
			err = encodeNodeField(o, "callee", t.Callee)
		}
	case *irast.Member:
		err = o.field("computed", t.Computed)
		if err == nil {
			err = encodeNodeField(o, "object", t.Object)
		}
		if err == nil {
			err = encodeNodeField(o, "property", t.Property)
		}
	case *irast.ArrayLiteral:
		err = encodeNodesField(o, "elements", t.Elements)
	case *irast.ObjectLiteral:
		err = encodeNodesField(o, "properties", propertiesToNodes(t.Properties))
	case *irast.Property:
		err = o.field("key", t.Key)
		if err == nil {
			err = encodeNodeField(o, "value", t.Value)
		}
	case *irast.Identifier:
		err = o.field("name", t.Name)
	case *irast.Literal:
		err = encodeLiteralValue(o, t.Value)
	case *irast.Assignment:
		err = o.field("operator", t.Operator)
		if err == nil {
			err = encodeNodeField(o, "target", t.Target)
		}
		if err == nil {
			err = encodeNodeField(o, "value", t.Value)
		}
	case *irast.Conditional:
		err = encodeNodeField(o, "alternate", t.Alternate)
		if err == nil {
			err = encodeNodeField(o, "consequent", t.Consequent)
		}
		if err == nil {
			err = encodeNodeField(o, "test", t.Test)
		}
	default:
		err = fmt.Errorf("unknown node kind %s", n.NodeKind())
	}
	if err != nil {
		return nil, err
	}

	if typ := n.NodeType(); typ != nil {
		raw, err := encodeType(typ)
		if err != nil {
			return nil, err
		}
		o.rawField("type", raw)
	} else {
		o.rawField("type", []byte("null"))
	}
	if err := encodeLocation(o, n.Loc()); err != nil {
		return nil, err
	}
	if err := o.field("metadata", map[string]any(n.Meta())); err != nil {
		return nil, err
	}

	return o.close(), nil
}

// encodeLiteralValue writes a Literal.value with the canonical number
// format for float64 and falls back to encoding/json for every other shape
// Literal.Value can legally hold (string, bool, nil).
func encodeLiteralValue(o *objWriter, v any) error {
	if f, ok := v.(float64); ok {
		o.number("value", f)
		return nil
	}
	return o.field("value", v)
}

func encodeLocation(o *objWriter, loc diag.Location) error {
	lo := newObj()
	lo.field("column", loc.Column)
	lo.field("line", loc.Line)
	o.rawField("location", lo.close())
	return nil
}

func encodeNodeField(o *objWriter, key string, n irast.Node) error {
	raw, err := encodeNode(n)
	if err != nil {
		return err
	}
	o.rawField(key, raw)
	return nil
}

func encodeNodesField(o *objWriter, key string, nodes []irast.Node) error {
	raw, err := encodeNodeArray(nodes)
	if err != nil {
		return err
	}
	o.rawField(key, raw)
	return nil
}

func encodeNodeArray(nodes []irast.Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, n := range nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		raw, err := encodeNode(n)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func parametersToNodes(ps []*irast.Parameter) []irast.Node {
	out := make([]irast.Node, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

func casesToNodes(cs []*irast.Case) []irast.Node {
	out := make([]irast.Node, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func propertiesToNodes(ps []*irast.Property) []irast.Node {
	out := make([]irast.Node, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// encodeType renders a member of the closed type lattice (spec.md §3.2) as
// {"kind": "...", ...}. The shapes are self-describing so Decode can build
// the matching irtype.Type back without a schema lookup.
func encodeType(t irtype.Type) ([]byte, error) {
	o := newObj()
	switch v := t.(type) {
	case irtype.PrimitiveType:
		o.field("kind", "primitive")
		o.field("name", v.Kind.String())
	case irtype.ArrayType:
		o.field("kind", "array")
		raw, err := encodeType(v.Element)
		if err != nil {
			return nil, err
		}
		o.rawField("element", raw)
	case irtype.ObjectType:
		o.field("kind", "object")
		o.field("open", v.Open)
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			fo := newObj()
			fo.field("name", f.Name)
			raw, err := encodeType(f.Type)
			if err != nil {
				return nil, err
			}
			fo.rawField("type", raw)
			buf.Write(fo.close())
		}
		buf.WriteByte(']')
		o.rawField("fields", buf.Bytes())
	case irtype.FunctionType:
		o.field("kind", "function")
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, p := range v.Params {
			if i > 0 {
				buf.WriteByte(',')
			}
			raw, err := encodeType(p)
			if err != nil {
				return nil, err
			}
			buf.Write(raw)
		}
		buf.WriteByte(']')
		o.rawField("params", buf.Bytes())
		raw, err := encodeType(v.ReturnType)
		if err != nil {
			return nil, err
		}
		o.rawField("returnType", raw)
	case irtype.OptionalType:
		o.field("kind", "optional")
		raw, err := encodeType(v.Base)
		if err != nil {
			return nil, err
		}
		o.rawField("base", raw)
	case irtype.UnionType:
		o.field("kind", "union")
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			raw, err := encodeType(m)
			if err != nil {
				return nil, err
			}
			buf.Write(raw)
		}
		buf.WriteByte(']')
		o.rawField("members", buf.Bytes())
	default: // irtype.UnknownT
		o.field("kind", "unknown")
	}
	return o.close(), nil
}

// isNilIRNode reports whether n holds a typed nil pointer boxed into the
// Node interface (e.g. a nil *irast.Block for an empty If.Alternate),
// mirroring irast.Walk's own nil check.
func isNilIRNode(n irast.Node) bool {
	switch v := n.(type) {
	case *irast.Program:
		return v == nil
	case *irast.FunctionDecl:
		return v == nil
	case *irast.Parameter:
		return v == nil
	case *irast.VarDecl:
		return v == nil
	case *irast.Block:
		return v == nil
	case *irast.Return:
		return v == nil
	case *irast.If:
		return v == nil
	case *irast.While:
		return v == nil
	case *irast.DoWhile:
		return v == nil
	case *irast.For:
		return v == nil
	case *irast.Switch:
		return v == nil
	case *irast.Case:
		return v == nil
	case *irast.Break:
		return v == nil
	case *irast.Continue:
		return v == nil
	case *irast.ExpressionStmt:
		return v == nil
	case *irast.BinaryOp:
		return v == nil
	case *irast.UnaryOp:
		return v == nil
	case *irast.Call:
		return v == nil
	case *irast.Member:
		return v == nil
	case *irast.ArrayLiteral:
		return v == nil
	case *irast.ObjectLiteral:
		return v == nil
	case *irast.Property:
		return v == nil
	case *irast.Identifier:
		return v == nil
	case *irast.Literal:
		return v == nil
	case *irast.Assignment:
		return v == nil
	case *irast.Conditional:
		return v == nil
	default:
		return false
	}
}
