// Package jsgen implements the JavaScript emitter (spec.md §4.8): a
// near-identity pretty printer over canonical IR. It does not attempt to
// recover original source text; it renders IR the way a formatter would,
// preserving operator form, block structure, and indentation so that a
// validated input round-trips semantically through normalize/lower/emit.
package jsgen

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-xir/internal/irast"
)

// Options controls the two knobs spec.md §4.8 calls out: trailing
// semicolons and indent width.
type Options struct {
	// Semicolons appends a trailing `;` to every statement when true.
	Semicolons bool
	// IndentWidth is spaces per nesting level; zero defaults to two.
	IndentWidth int
}

func (o Options) indentWidth() int {
	if o.IndentWidth <= 0 {
		return 2
	}
	return o.IndentWidth
}

// Emitter renders one compilation unit's IR as JavaScript source text.
type Emitter struct {
	opts  Options
	sb    strings.Builder
	depth int
}

// New returns an Emitter ready for one Program.
func New(opts Options) *Emitter {
	return &Emitter{opts: opts}
}

// Emit renders program as JavaScript source.
func Emit(program *irast.Program, opts Options) (string, error) {
	e := New(opts)
	for _, n := range program.Body {
		if err := e.statement(n); err != nil {
			return "", err
		}
	}
	return e.sb.String(), nil
}

func (e *Emitter) semi() string {
	if e.opts.Semicolons {
		return ";"
	}
	return ""
}

func (e *Emitter) indent() string {
	return strings.Repeat(" ", e.depth*e.opts.indentWidth())
}

func (e *Emitter) line(format string, args ...any) {
	e.sb.WriteString(e.indent())
	fmt.Fprintf(&e.sb, format, args...)
	e.sb.WriteByte('\n')
}

func (e *Emitter) statement(n irast.Node) error {
	switch s := n.(type) {
	case *irast.VarDecl:
		return e.varDecl(s)
	case *irast.FunctionDecl:
		return e.functionDecl(s)
	case *irast.Block:
		e.line("{")
		e.depth++
		if err := e.blockBody(s); err != nil {
			return err
		}
		e.depth--
		e.line("}")
		return nil
	case *irast.Return:
		return e.ret(s)
	case *irast.If:
		return e.ifStmt(s)
	case *irast.While:
		return e.whileStmt(s)
	case *irast.DoWhile:
		return e.doWhileStmt(s)
	case *irast.For:
		return e.forStmt(s)
	case *irast.Switch:
		return e.switchStmt(s)
	case *irast.Break:
		e.line("break%s", e.semi())
		return nil
	case *irast.Continue:
		e.line("continue%s", e.semi())
		return nil
	case *irast.ExpressionStmt:
		v, err := e.expr(s.Expression)
		if err != nil {
			return err
		}
		e.line("%s%s", v, e.semi())
		return nil
	default:
		return fmt.Errorf("jsgen: unsupported statement kind %s", n.NodeKind())
	}
}

func (e *Emitter) blockBody(b *irast.Block) error {
	for _, s := range b.Statements {
		if err := e.statement(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) varDecl(d *irast.VarDecl) error {
	kind := d.Meta().String("declKind")
	if kind == "" {
		kind = "let"
	}
	if d.Value == nil {
		e.line("%s %s%s", kind, d.Name, e.semi())
		return nil
	}
	val, err := e.expr(d.Value)
	if err != nil {
		return err
	}
	e.line("%s %s = %s%s", kind, d.Name, val, e.semi())
	return nil
}

func (e *Emitter) functionDecl(f *irast.FunctionDecl) error {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name
	}
	e.line("function %s(%s) {", f.Name, strings.Join(params, ", "))
	e.depth++
	if err := e.blockBody(f.Body); err != nil {
		return err
	}
	e.depth--
	e.line("}")
	return nil
}

func (e *Emitter) ret(r *irast.Return) error {
	if r.Value == nil {
		e.line("return%s", e.semi())
		return nil
	}
	v, err := e.expr(r.Value)
	if err != nil {
		return err
	}
	e.line("return %s%s", v, e.semi())
	return nil
}

func (e *Emitter) ifStmt(s *irast.If) error {
	cond, err := e.expr(s.Condition)
	if err != nil {
		return err
	}
	e.line("if (%s) {", cond)
	e.depth++
	if err := e.blockBody(s.Consequent); err != nil {
		return err
	}
	e.depth--
	if s.Alternate != nil {
		if elseIf, ok := s.Alternate.(*irast.If); ok {
			elseCond, err := e.expr(elseIf.Condition)
			if err != nil {
				return err
			}
			e.line("} else if (%s) {", elseCond)
			e.depth++
			if err := e.blockBody(elseIf.Consequent); err != nil {
				return err
			}
			e.depth--
			if elseIf.Alternate != nil {
				return e.elseTail(elseIf.Alternate)
			}
			e.line("}")
			return nil
		}
		e.line("} else {")
		e.depth++
		if block, ok := s.Alternate.(*irast.Block); ok {
			if err := e.blockBody(block); err != nil {
				return err
			}
		} else if err := e.statement(s.Alternate); err != nil {
			return err
		}
		e.depth--
	}
	e.line("}")
	return nil
}

func (e *Emitter) elseTail(alt irast.Node) error {
	if elseIf, ok := alt.(*irast.If); ok {
		elseCond, err := e.expr(elseIf.Condition)
		if err != nil {
			return err
		}
		e.line("} else if (%s) {", elseCond)
		e.depth++
		if err := e.blockBody(elseIf.Consequent); err != nil {
			return err
		}
		e.depth--
		if elseIf.Alternate != nil {
			return e.elseTail(elseIf.Alternate)
		}
		e.line("}")
		return nil
	}
	e.line("} else {")
	e.depth++
	if block, ok := alt.(*irast.Block); ok {
		if err := e.blockBody(block); err != nil {
			return err
		}
	}
	e.depth--
	e.line("}")
	return nil
}

func (e *Emitter) whileStmt(s *irast.While) error {
	cond, err := e.expr(s.Condition)
	if err != nil {
		return err
	}
	e.line("while (%s) {", cond)
	e.depth++
	if err := e.blockBody(s.Body); err != nil {
		return err
	}
	e.depth--
	e.line("}")
	return nil
}

func (e *Emitter) doWhileStmt(s *irast.DoWhile) error {
	e.line("do {")
	e.depth++
	if err := e.blockBody(s.Body); err != nil {
		return err
	}
	e.depth--
	cond, err := e.expr(s.Condition)
	if err != nil {
		return err
	}
	e.line("} while (%s)%s", cond, e.semi())
	return nil
}

func (e *Emitter) forStmt(s *irast.For) error {
	init, err := e.forClause(s.Init)
	if err != nil {
		return err
	}
	test := ""
	if s.Test != nil {
		test, err = e.expr(s.Test)
		if err != nil {
			return err
		}
	}
	update := ""
	if s.Update != nil {
		update, err = e.expr(s.Update)
		if err != nil {
			return err
		}
	}
	e.line("for (%s; %s; %s) {", init, test, update)
	e.depth++
	if err := e.blockBody(s.Body); err != nil {
		return err
	}
	e.depth--
	e.line("}")
	return nil
}

// forClause renders a for-loop initializer without its own trailing newline,
// since it shares the `for (...)` header line.
func (e *Emitter) forClause(n irast.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	if d, ok := n.(*irast.VarDecl); ok {
		val, err := e.expr(d.Value)
		if err != nil {
			return "", err
		}
		kind := d.Meta().String("declKind")
		if kind == "" {
			kind = "let"
		}
		return fmt.Sprintf("%s %s = %s", kind, d.Name, val), nil
	}
	return e.expr(n)
}

func (e *Emitter) switchStmt(s *irast.Switch) error {
	disc, err := e.expr(s.Discriminant)
	if err != nil {
		return err
	}
	e.line("switch (%s) {", disc)
	e.depth++
	for _, c := range s.Cases {
		if c.Test == nil {
			e.line("default:")
		} else {
			test, err := e.expr(c.Test)
			if err != nil {
				return err
			}
			e.line("case %s:", test)
		}
		e.depth++
		for _, stmt := range c.Body {
			if err := e.statement(stmt); err != nil {
				return err
			}
		}
		e.depth--
	}
	e.depth--
	e.line("}")
	return nil
}

func (e *Emitter) expr(n irast.Node) (string, error) {
	switch v := n.(type) {
	case *irast.Identifier:
		return v.Name, nil
	case *irast.Literal:
		return e.literal(v)
	case *irast.BinaryOp:
		left, err := e.expr(v.Left)
		if err != nil {
			return "", err
		}
		right, err := e.expr(v.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, v.Operator, right), nil
	case *irast.UnaryOp:
		arg, err := e.expr(v.Argument)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s%s)", v.Operator, arg), nil
	case *irast.Call:
		return e.call(v)
	case *irast.Member:
		return e.member(v)
	case *irast.ArrayLiteral:
		parts, err := e.exprList(v.Elements)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%s]", parts), nil
	case *irast.ObjectLiteral:
		return e.objectLiteral(v)
	case *irast.Assignment:
		target, err := e.expr(v.Target)
		if err != nil {
			return "", err
		}
		val, err := e.expr(v.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", target, v.Operator, val), nil
	case *irast.Conditional:
		test, err := e.expr(v.Test)
		if err != nil {
			return "", err
		}
		cons, err := e.expr(v.Consequent)
		if err != nil {
			return "", err
		}
		alt, err := e.expr(v.Alternate)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s ? %s : %s)", test, cons, alt), nil
	case *irast.FunctionDecl:
		return e.functionExpr(v)
	default:
		return "", fmt.Errorf("jsgen: unsupported expression kind %s", n.NodeKind())
	}
}

func (e *Emitter) functionExpr(f *irast.FunctionDecl) (string, error) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name
	}
	saved := e.sb
	e.sb = strings.Builder{}
	e.depth++
	err := e.blockBody(f.Body)
	e.depth--
	body := e.sb.String()
	e.sb = saved
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("function(%s) {\n%s%s}", strings.Join(params, ", "), body, e.indent()), nil
}

func (e *Emitter) literal(l *irast.Literal) (string, error) {
	if l.Value == nil {
		return "null", nil
	}
	switch v := l.Value.(type) {
	case float64:
		return formatNumber(v), nil
	case string:
		return fmt.Sprintf("%q", v), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("jsgen: literal has unsupported value type %T", v)
	}
}

func (e *Emitter) call(c *irast.Call) (string, error) {
	callee, err := e.expr(c.Callee)
	if err != nil {
		return "", err
	}
	args, err := e.exprList(c.Arguments)
	if err != nil {
		return "", err
	}
	if c.Meta().Bool("isNew") {
		return fmt.Sprintf("new %s(%s)", callee, args), nil
	}
	return fmt.Sprintf("%s(%s)", callee, args), nil
}

func (e *Emitter) exprList(nodes []irast.Node) (string, error) {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		s, err := e.expr(n)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

func (e *Emitter) member(m *irast.Member) (string, error) {
	obj, err := e.expr(m.Object)
	if err != nil {
		return "", err
	}
	if m.Computed {
		prop, err := e.expr(m.Property)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", obj, prop), nil
	}
	name := m.Property.(*irast.Identifier).Name
	return fmt.Sprintf("%s.%s", obj, name), nil
}

func (e *Emitter) objectLiteral(o *irast.ObjectLiteral) (string, error) {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		val, err := e.expr(p.Value)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("%q: %s", p.Key, val)
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", ")), nil
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
