// Package luagen emits a Lua-5.1-compatible dialect from canonical IR
// (spec.md §4.7). Emission walks the tree once with a strings.Builder and
// an indent counter, the way the teacher's bytecode.Disassembler renders a
// Chunk with fmt.Fprintf against a running writer. The one exception to
// Lua 5.1 compatibility is the continue rewrite: it emits goto and ::label::
// statements, which Lua 5.1 lacks (they arrived in Lua 5.2).
package luagen

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irtype"
)

// Options configures emission details the spec leaves pluggable.
type Options struct {
	// IndentWidth is the number of spaces per nesting level. Zero defaults
	// to two.
	IndentWidth int

	// EmitContinueWarning controls whether rewriting a continue statement
	// raises an advisory diagnostic (spec.md §6.1 lua.emitContinueWarning).
	// The rewrite itself happens either way; this only toggles the warning.
	EmitContinueWarning bool

	// Strict rejects continue outright with KindUnsupportedForLua instead of
	// desugaring it to goto, mirroring determinism.strict (spec.md §9).
	Strict bool
}

func (o Options) indentWidth() int {
	if o.IndentWidth <= 0 {
		return 2
	}
	return o.IndentWidth
}

// Emitter renders one compilation unit's IR as Lua source text.
type Emitter struct {
	opts           Options
	sb             strings.Builder
	depth          int
	switchSeq      int
	loopSeq        int
	continueLabels []string
	warnings       []*diag.Diagnostic
}

// New returns an Emitter ready for one Program.
func New(opts Options) *Emitter {
	return &Emitter{opts: opts}
}

// Warnings returns every advisory diagnostic raised while emitting, e.g. the
// const-collapse and continue-rewrite warnings (spec.md §4.7).
func (e *Emitter) Warnings() []*diag.Diagnostic {
	return e.warnings
}

func (e *Emitter) warnf(n irast.Node, format string, args ...any) {
	e.warnings = append(e.warnings, diag.Warningf(diag.KindUnsupportedForLua, n.Loc(), format, args...))
}

func (e *Emitter) indent() string {
	return strings.Repeat(" ", e.depth*e.opts.indentWidth())
}

// pushLoop opens a new continue target for the loop about to be emitted and
// returns its label name.
func (e *Emitter) pushLoop() string {
	e.loopSeq++
	label := fmt.Sprintf("continue_%d", e.loopSeq)
	e.continueLabels = append(e.continueLabels, label)
	return label
}

func (e *Emitter) popLoop() {
	e.continueLabels = e.continueLabels[:len(e.continueLabels)-1]
}

func (e *Emitter) currentContinueLabel() string {
	if len(e.continueLabels) == 0 {
		return ""
	}
	return e.continueLabels[len(e.continueLabels)-1]
}

func (e *Emitter) line(format string, args ...any) {
	e.sb.WriteString(e.indent())
	fmt.Fprintf(&e.sb, format, args...)
	e.sb.WriteByte('\n')
}

// Emit renders program to a Lua source string.
func Emit(program *irast.Program, opts Options) (string, []*diag.Diagnostic, error) {
	e := New(opts)
	for _, n := range program.Body {
		if err := e.emitStatement(n); err != nil {
			return "", e.warnings, err
		}
	}
	return e.sb.String(), e.warnings, nil
}

func (e *Emitter) emitStatement(n irast.Node) error {
	switch s := n.(type) {
	case *irast.VarDecl:
		return e.emitVarDecl(s)
	case *irast.FunctionDecl:
		return e.emitFunctionDecl(s)
	case *irast.Block:
		return e.emitBlockBody(s)
	case *irast.Return:
		return e.emitReturn(s)
	case *irast.If:
		return e.emitIf(s)
	case *irast.While:
		return e.emitWhile(s)
	case *irast.DoWhile:
		return e.emitDoWhile(s)
	case *irast.For:
		return e.emitFor(s)
	case *irast.Switch:
		return e.emitSwitch(s)
	case *irast.Break:
		e.line("break")
		return nil
	case *irast.Continue:
		return e.emitContinue(s)
	case *irast.ExpressionStmt:
		expr, err := e.expr(s.Expression)
		if err != nil {
			return err
		}
		e.line("%s", expr)
		return nil
	default:
		return fmt.Errorf("luagen: unsupported statement kind %s", n.NodeKind())
	}
}

func (e *Emitter) emitVarDecl(d *irast.VarDecl) error {
	kind := d.Meta().String("declKind")
	if kind == "const" {
		e.warnf(d, "Lua has no const, declaring %q as a plain local", d.Name)
	}
	if d.Value == nil {
		e.line("local %s", d.Name)
		return nil
	}
	val, err := e.expr(d.Value)
	if err != nil {
		return err
	}
	e.line("local %s = %s", d.Name, val)
	return nil
}

func (e *Emitter) emitFunctionDecl(f *irast.FunctionDecl) error {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name
	}
	e.line("local function %s(%s)", f.Name, strings.Join(params, ", "))
	e.depth++
	if err := e.emitBlockBody(f.Body); err != nil {
		return err
	}
	e.depth--
	e.line("end")
	return nil
}

func (e *Emitter) emitBlockBody(b *irast.Block) error {
	for _, s := range b.Statements {
		if err := e.emitStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitReturn(r *irast.Return) error {
	if r.Value == nil {
		e.line("return")
		return nil
	}
	val, err := e.expr(r.Value)
	if err != nil {
		return err
	}
	e.line("return %s", val)
	return nil
}

func (e *Emitter) emitIf(s *irast.If) error {
	cond, err := e.expr(s.Condition)
	if err != nil {
		return err
	}
	e.line("if %s then", cond)
	e.depth++
	if err := e.emitBlockBody(s.Consequent); err != nil {
		return err
	}
	e.depth--
	if s.Alternate != nil {
		if elseIf, ok := s.Alternate.(*irast.If); ok {
			elseCond, err := e.expr(elseIf.Condition)
			if err != nil {
				return err
			}
			e.line("elseif %s then", elseCond)
			e.depth++
			if err := e.emitBlockBody(elseIf.Consequent); err != nil {
				return err
			}
			e.depth--
			if elseIf.Alternate != nil {
				e.line("else")
				e.depth++
				if err := e.emitStatement(elseIf.Alternate); err != nil {
					return err
				}
				e.depth--
			}
		} else {
			e.line("else")
			e.depth++
			if err := e.emitStatement(s.Alternate); err != nil {
				return err
			}
			e.depth--
		}
	}
	e.line("end")
	return nil
}

func (e *Emitter) emitWhile(s *irast.While) error {
	cond, err := e.expr(s.Condition)
	if err != nil {
		return err
	}
	e.line("while %s do", cond)
	e.depth++
	label := e.pushLoop()
	err = e.emitBlockBody(s.Body)
	e.line("::%s::", label)
	e.popLoop()
	e.depth--
	if err != nil {
		return err
	}
	e.line("end")
	return nil
}

// emitDoWhile maps `do { body } while (cond)` to Lua's `repeat ... until not
// (cond)` (spec.md §4.7).
func (e *Emitter) emitDoWhile(s *irast.DoWhile) error {
	e.line("repeat")
	e.depth++
	label := e.pushLoop()
	err := e.emitBlockBody(s.Body)
	e.line("::%s::", label)
	e.popLoop()
	e.depth--
	if err != nil {
		return err
	}
	cond, err := e.expr(s.Condition)
	if err != nil {
		return err
	}
	e.line("until not (%s)", cond)
	return nil
}

func (e *Emitter) emitFor(s *irast.For) error {
	if s.Init != nil {
		if err := e.emitStatement(s.Init); err != nil {
			return err
		}
	}
	cond, err := e.expr(s.Test)
	if err != nil {
		return err
	}
	e.line("while %s do", cond)
	e.depth++
	label := e.pushLoop()
	if err := e.emitBlockBody(s.Body); err != nil {
		e.popLoop()
		return err
	}
	// The continue label sits before the update so continue still runs it,
	// matching the source loop's per-iteration semantics.
	e.line("::%s::", label)
	e.popLoop()
	if s.Update != nil {
		upd, err := e.expr(s.Update)
		if err != nil {
			return err
		}
		e.line("%s", upd)
	}
	e.depth--
	e.line("end")
	return nil
}

// emitContinue desugars continue to a goto against the enclosing loop's
// trailing label (spec.md §9 open question, policy (b)); determinism.strict
// instead rejects continue outright (policy (a)).
func (e *Emitter) emitContinue(s *irast.Continue) error {
	if e.opts.Strict {
		return diag.New(diag.KindUnsupportedForLua, s.Loc(), "continue has no Lua 5.1 equivalent; rejected under strict determinism")
	}
	label := e.currentContinueLabel()
	if label == "" {
		return diag.New(diag.KindUnsupportedForLua, s.Loc(), "continue outside of a loop")
	}
	if e.opts.EmitContinueWarning {
		e.warnf(s, "continue rewritten as goto %s; Lua 5.1 has no continue statement", label)
	}
	e.line("goto %s", label)
	return nil
}

// emitSwitch desugars `switch (discriminant) { cases }` to an if/elseif
// chain over a deterministic `__switch_<id>` temporary (spec.md §4.7).
func (e *Emitter) emitSwitch(s *irast.Switch) error {
	e.switchSeq++
	tmp := fmt.Sprintf("__switch_%s", s.NodeID())
	disc, err := e.expr(s.Discriminant)
	if err != nil {
		return err
	}
	e.line("local %s = %s", tmp, disc)
	first := true
	var defaultCase *irast.Case
	for _, c := range s.Cases {
		if c.Test == nil {
			defaultCase = c
			continue
		}
		test, err := e.expr(c.Test)
		if err != nil {
			return err
		}
		kw := "elseif"
		if first {
			kw = "if"
			first = false
		}
		e.line("%s %s == %s then", kw, tmp, test)
		e.depth++
		for _, stmt := range c.Body {
			if _, ok := stmt.(*irast.Break); ok {
				continue
			}
			if err := e.emitStatement(stmt); err != nil {
				return err
			}
		}
		e.depth--
	}
	if defaultCase != nil {
		kw := "else"
		if first {
			kw = "if true then"
		}
		e.line("%s", kw)
		e.depth++
		for _, stmt := range defaultCase.Body {
			if _, ok := stmt.(*irast.Break); ok {
				continue
			}
			if err := e.emitStatement(stmt); err != nil {
				return err
			}
		}
		e.depth--
	}
	if !first || defaultCase != nil {
		e.line("end")
	}
	return nil
}

// expr renders an expression node inline; control structures never appear
// in expression position in canonical IR (spec.md §3.1).
func (e *Emitter) expr(n irast.Node) (string, error) {
	switch v := n.(type) {
	case *irast.Identifier:
		return v.Name, nil
	case *irast.Literal:
		return e.literal(v)
	case *irast.BinaryOp:
		return e.binaryOp(v)
	case *irast.UnaryOp:
		return e.unaryOp(v)
	case *irast.Call:
		return e.call(v)
	case *irast.Member:
		return e.member(v)
	case *irast.ArrayLiteral:
		return e.arrayLiteral(v)
	case *irast.ObjectLiteral:
		return e.objectLiteral(v)
	case *irast.Assignment:
		return e.assignment(v)
	case *irast.Conditional:
		return e.conditional(v)
	case *irast.FunctionDecl:
		return e.functionExpr(v)
	default:
		return "", fmt.Errorf("luagen: unsupported expression kind %s", n.NodeKind())
	}
}

// functionExpr renders an arrow function or anonymous function expression as
// `function(...) ... end` (spec.md §4.7). It swaps out the shared builder
// temporarily so the nested body can reuse emitBlockBody/emitStatement.
func (e *Emitter) functionExpr(f *irast.FunctionDecl) (string, error) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name
	}
	saved := e.sb
	e.sb = strings.Builder{}
	e.depth++
	err := e.emitBlockBody(f.Body)
	e.depth--
	body := e.sb.String()
	e.sb = saved
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("function(%s)\n%s%send", strings.Join(params, ", "), body, e.indent()), nil
}

func (e *Emitter) literal(l *irast.Literal) (string, error) {
	if l.Value == nil {
		return "nil", nil
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
		return "", fmt.Errorf("luagen: literal has unsupported value type %T", v)
	}
}

var binaryOps = map[string]string{
	"===": "==",
	"!==": "~=",
	"==":  "==",
	"!=":  "~=",
	"&&":  "and",
	"||":  "or",
}

func (e *Emitter) binaryOp(b *irast.BinaryOp) (string, error) {
	left, err := e.expr(b.Left)
	if err != nil {
		return "", err
	}
	right, err := e.expr(b.Right)
	if err != nil {
		return "", err
	}
	if b.Operator == "+" {
		if e.isConcatenation(b) {
			return fmt.Sprintf("(%s .. %s)", toStringIfNeeded(b.Left, left), toStringIfNeeded(b.Right, right)), nil
		}
		return fmt.Sprintf("(%s + %s)", left, right), nil
	}
	op, ok := binaryOps[b.Operator]
	if !ok {
		op = b.Operator
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

// isConcatenation decides whether "+" lowers to ".." (spec.md §4.7): first
// by static string type on either operand, then by the isConcatenation
// metadata flag the lowerer attaches to template-literal chains.
func (e *Emitter) isConcatenation(b *irast.BinaryOp) bool {
	if irtype.IsString(b.Left.NodeType()) || irtype.IsString(b.Right.NodeType()) {
		return true
	}
	return b.Meta().Bool("isConcatenation")
}

func toStringIfNeeded(n irast.Node, rendered string) string {
	if irtype.IsString(n.NodeType()) {
		return rendered
	}
	return fmt.Sprintf("tostring(%s)", rendered)
}

func (e *Emitter) unaryOp(u *irast.UnaryOp) (string, error) {
	arg, err := e.expr(u.Argument)
	if err != nil {
		return "", err
	}
	switch u.Operator {
	case "!":
		return fmt.Sprintf("(not %s)", arg), nil
	case "-":
		return fmt.Sprintf("(-%s)", arg), nil
	default:
		return fmt.Sprintf("(%s%s)", u.Operator, arg), nil
	}
}

func (e *Emitter) call(c *irast.Call) (string, error) {
	if m, ok := c.Callee.(*irast.Member); ok {
		if obj, ok := m.Object.(*irast.Identifier); ok && obj.Name == "console" {
			if prop, ok := m.Property.(*irast.Identifier); ok && prop.Name == "log" {
				args, err := e.exprList(c.Arguments)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("print(%s)", args), nil
			}
		}
	}
	callee, err := e.expr(c.Callee)
	if err != nil {
		return "", err
	}
	args, err := e.exprList(c.Arguments)
	if err != nil {
		return "", err
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

func (e *Emitter) arrayLiteral(a *irast.ArrayLiteral) (string, error) {
	parts, err := e.exprList(a.Elements)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("{%s}", parts), nil
}

func (e *Emitter) objectLiteral(o *irast.ObjectLiteral) (string, error) {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		val, err := e.expr(p.Value)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("[%q] = %s", p.Key, val)
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", ")), nil
}

func (e *Emitter) assignment(a *irast.Assignment) (string, error) {
	target, err := e.expr(a.Target)
	if err != nil {
		return "", err
	}
	val, err := e.expr(a.Value)
	if err != nil {
		return "", err
	}
	if a.Operator == "=" {
		return fmt.Sprintf("%s = %s", target, val), nil
	}
	op := strings.TrimSuffix(a.Operator, "=")
	rhs, err := e.binaryOp(&irast.BinaryOp{Operator: op, Left: a.Target, Right: a.Value})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", target, rhs), nil
}

func (e *Emitter) conditional(c *irast.Conditional) (string, error) {
	test, err := e.expr(c.Test)
	if err != nil {
		return "", err
	}
	cons, err := e.expr(c.Consequent)
	if err != nil {
		return "", err
	}
	alt, err := e.expr(c.Alternate)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s and %s or %s)", test, cons, alt), nil
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
