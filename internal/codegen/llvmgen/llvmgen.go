// Package llvmgen implements the LLVM textual IR emitter (spec.md §4.9): an
// SSA-form module builder that lowers canonical IR function by function,
// allocating a stack slot for every parameter and local in the entry block
// so mutation never requires a phi node in the emitter itself.
package llvmgen

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irtype"
)

// Options configures module-level details spec.md §4.9 and §6.1 call out.
type Options struct {
	// ModuleName is the `; ModuleID = '<name>'` header value.
	ModuleName string
	// TargetTriple defaults to x86_64-unknown-linux-gnu.
	TargetTriple string
}

func (o Options) moduleName() string {
	if o.ModuleName == "" {
		return "main"
	}
	return o.ModuleName
}

func (o Options) targetTriple() string {
	if o.TargetTriple == "" {
		return "x86_64-unknown-linux-gnu"
	}
	return o.TargetTriple
}

// Emitter renders one Program as an LLVM textual module.
type Emitter struct {
	opts     Options
	strings  []string // interned string literal bodies, indexed by position
	funcText strings.Builder
}

// New returns an Emitter ready for one Program.
func New(opts Options) *Emitter {
	return &Emitter{opts: opts}
}

// Emit renders program as an LLVM textual module (spec.md §4.9).
func Emit(program *irast.Program, opts Options) (string, error) {
	e := New(opts)

	// A top-level statement that is not itself a FunctionDecl is collected
	// into an implicit entry function, mirroring the way the teacher's
	// bytecode compiler wraps top-level script statements into a synthetic
	// main procedure (internal/bytecode).
	var topLevel []irast.Node
	for _, n := range program.Body {
		if fn, ok := n.(*irast.FunctionDecl); ok {
			if err := e.emitFunction(fn); err != nil {
				return "", err
			}
			continue
		}
		topLevel = append(topLevel, n)
	}
	if len(topLevel) > 0 {
		synth := &irast.FunctionDecl{
			Name: "main",
			Body: &irast.Block{Statements: topLevel},
		}
		if err := e.emitFunction(synth); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", e.opts.moduleName())
	fmt.Fprintf(&sb, "target triple = \"%s\"\n\n", e.opts.targetTriple())
	sb.WriteString("declare i32 @printf(ptr, ...)\n")
	sb.WriteString("declare ptr @malloc(i64)\n")
	sb.WriteString("declare void @free(ptr)\n")
	sb.WriteString("declare ptr @memcpy(ptr, ptr, i64)\n\n")
	for i, s := range e.strings {
		fmt.Fprintf(&sb, "@.str.%d = private unnamed_addr constant [%d x i8] c\"%s\\00\"\n", i, len(s)+1, escapeForLLVM(s))
	}
	if len(e.strings) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(e.funcText.String())
	return sb.String(), nil
}

func escapeForLLVM(s string) string {
	var sb strings.Builder
	for _, b := range []byte(s) {
		switch {
		case b == '"' || b == '\\':
			fmt.Fprintf(&sb, "\\%02X", b)
		case b < 0x20 || b >= 0x7f:
			fmt.Fprintf(&sb, "\\%02X", b)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

func (e *Emitter) internString(s string) int {
	idx := len(e.strings)
	e.strings = append(e.strings, s)
	return idx
}

// loopLabels is the (continue-label, break-label) pair pushed for every
// loop-enclosing construct (spec.md §4.9).
type loopLabels struct {
	continueLabel string
	breakLabel    string
}

// funcCtx holds the per-function state spec.md §5 requires to stay local to
// one function: the SSA value counter, label counters, the current basic
// block body, and the loop stack.
type funcCtx struct {
	e *Emitter

	valueSeq map[string]int
	labelSeq map[string]int

	body  strings.Builder // instructions emitted into the current block
	out   strings.Builder // completed blocks, in order
	label string          // current block's label (without leading "%")

	allocas map[string]string      // variable name -> pointer SSA name
	types   map[string]irtype.Type // variable name -> declared type

	loops []loopLabels
}

func newFuncCtx(e *Emitter) *funcCtx {
	return &funcCtx{
		e:        e,
		valueSeq: map[string]int{},
		labelSeq: map[string]int{},
		allocas:  map[string]string{},
		types:    map[string]irtype.Type{},
	}
}

func (f *funcCtx) value(hint string) string {
	f.valueSeq[hint]++
	return fmt.Sprintf("%%%s%d", hint, f.valueSeq[hint])
}

func (f *funcCtx) nextLabel(kind string) string {
	n := f.labelSeq[kind]
	f.labelSeq[kind] = n + 1
	return fmt.Sprintf("%d", n)
}

func (f *funcCtx) emit(format string, args ...any) {
	f.body.WriteString("  ")
	fmt.Fprintf(&f.body, format, args...)
	f.body.WriteByte('\n')
}

// startBlock flushes the current block (if any) under its label and begins
// a fresh one. On the first call (the entry block) there is no current
// block to flush.
func (f *funcCtx) startBlock(label string) {
	if f.label != "" {
		f.out.WriteString(f.label)
		f.out.WriteString(":\n")
		f.out.WriteString(f.body.String())
		f.body.Reset()
	}
	f.label = label
}

func (f *funcCtx) finish() string {
	f.out.WriteString(f.label)
	f.out.WriteString(":\n")
	f.out.WriteString(f.body.String())
	return f.out.String()
}

func llvmType(t irtype.Type) string {
	if t == nil {
		return "ptr"
	}
	switch v := t.(type) {
	case irtype.PrimitiveType:
		switch v.Kind {
		case irtype.Number:
			return "double"
		case irtype.Boolean:
			return "i1"
		case irtype.String:
			return "ptr"
		case irtype.Null:
			return "ptr"
		case irtype.Void:
			return "void"
		}
	case irtype.OptionalType:
		return llvmType(v.Base)
	}
	// Array/Object/Function/Union/Unknown all lower to an opaque pointer
	// (spec.md §4.9: "layout not standardized at this level").
	return "ptr"
}

func defaultValue(llvmTy string) string {
	switch llvmTy {
	case "double":
		return "0.0"
	case "i1":
		return "0"
	case "ptr":
		return "null"
	default:
		return "0"
	}
}

// emitFunction compiles one function into e.funcText.
func (e *Emitter) emitFunction(fn *irast.FunctionDecl) error {
	f := newFuncCtx(e)

	retTy := "void"
	if fn.NodeType() != nil {
		if ft, ok := fn.NodeType().(irtype.FunctionType); ok {
			retTy = llvmType(ft.ReturnType)
		}
	} else {
		retTy = inferReturnType(fn.Body)
	}

	paramDefs := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		pty := "double"
		paramDefs[i] = fmt.Sprintf("%s %%%s", pty, p.Name)
		f.types[p.Name] = irtype.NumberT
	}

	f.startBlock("entry")
	for _, p := range fn.Params {
		addr := fmt.Sprintf("%%%s_addr", p.Name)
		f.allocas[p.Name] = addr
		pty := llvmType(f.types[p.Name])
		f.emit("%s = alloca %s", addr, pty)
		f.emit("store %s %%%s, ptr %s", pty, p.Name, addr)
	}
	declareLocals(f, fn.Body)

	fellThrough, err := f.statements(fn.Body.Statements)
	if err != nil {
		return err
	}
	if fellThrough {
		f.emit("ret %s %s", retTy, defaultValueForVoid(retTy))
	}

	fmt.Fprintf(&e.funcText, "define %s @%s(%s) {\n", retTy, fn.Name, strings.Join(paramDefs, ", "))
	e.funcText.WriteString(f.finish())
	e.funcText.WriteString("}\n\n")
	return nil
}

func defaultValueForVoid(retTy string) string {
	if retTy == "void" {
		return ""
	}
	return defaultValue(retTy)
}

// declareLocals walks body for VarDecl statements and allocates their stack
// slots up front, matching the "entry block allocates ... for each
// parameter and local" rule (spec.md §4.9). Nested blocks (if/while/for
// bodies) share the same function-wide allocas, since the source language
// has no block scoping below function level by the time IR is lowered.
func declareLocals(f *funcCtx, n irast.Node) {
	switch s := n.(type) {
	case *irast.Block:
		for _, stmt := range s.Statements {
			declareLocals(f, stmt)
		}
	case *irast.VarDecl:
		if _, exists := f.allocas[s.Name]; exists {
			return
		}
		ty := irtype.Type(irtype.NumberT)
		if s.Value != nil && s.Value.NodeType() != nil {
			ty = s.Value.NodeType()
		}
		f.types[s.Name] = ty
		addr := fmt.Sprintf("%%%s_addr", s.Name)
		f.allocas[s.Name] = addr
		f.emit("%s = alloca %s", addr, llvmType(ty))
	case *irast.If:
		declareLocals(f, s.Consequent)
		if s.Alternate != nil {
			declareLocals(f, s.Alternate)
		}
	case *irast.While:
		declareLocals(f, s.Body)
	case *irast.DoWhile:
		declareLocals(f, s.Body)
	case *irast.For:
		if s.Init != nil {
			declareLocals(f, s.Init)
		}
		declareLocals(f, s.Body)
	}
}

// inferReturnType walks body for Return statements and derives the
// function's LLVM return type from them, since the pipeline does not
// annotate FunctionDecl.NodeType() with a FunctionType (spec.md §4.1 leaves
// that inference to consumers). A Return with a value yields that value's
// static type when known, else the lattice's default numeric type; a
// function with no value-carrying Return anywhere in its body is void.
func inferReturnType(body *irast.Block) string {
	var returns []*irast.Return
	collectReturns(body, &returns)
	for _, r := range returns {
		if r.Value == nil {
			continue
		}
		if t := r.Value.NodeType(); t != nil {
			return llvmType(t)
		}
		return "double"
	}
	return "void"
}

func collectReturns(n irast.Node, out *[]*irast.Return) {
	switch s := n.(type) {
	case *irast.Block:
		for _, stmt := range s.Statements {
			collectReturns(stmt, out)
		}
	case *irast.Return:
		*out = append(*out, s)
	case *irast.If:
		collectReturns(s.Consequent, out)
		if s.Alternate != nil {
			collectReturns(s.Alternate, out)
		}
	case *irast.While:
		collectReturns(s.Body, out)
	case *irast.DoWhile:
		collectReturns(s.Body, out)
	case *irast.For:
		collectReturns(s.Body, out)
	case *irast.Switch:
		for _, c := range s.Cases {
			for _, stmt := range c.Body {
				collectReturns(stmt, out)
			}
		}
	}
}

// statements emits a statement list and reports whether control can still
// fall off the end (false once a terminator - return/break/continue - has
// been emitted).
func (f *funcCtx) statements(stmts []irast.Node) (bool, error) {
	for _, s := range stmts {
		ok, err := f.statement(s)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *funcCtx) statement(n irast.Node) (bool, error) {
	switch s := n.(type) {
	case *irast.VarDecl:
		if s.Value == nil {
			return true, nil
		}
		val, ty, err := f.expr(s.Value)
		if err != nil {
			return false, err
		}
		f.emit("store %s %s, ptr %s", ty, val, f.allocas[s.Name])
		return true, nil
	case *irast.ExpressionStmt:
		_, _, err := f.expr(s.Expression)
		return err == nil, err
	case *irast.Return:
		if s.Value == nil {
			f.emit("ret void")
			return false, nil
		}
		val, ty, err := f.expr(s.Value)
		if err != nil {
			return false, err
		}
		f.emit("ret %s %s", ty, val)
		return false, nil
	case *irast.Break:
		if len(f.loops) == 0 {
			return false, diag.New(diag.KindUnsupportedForLLVM, s.Loc(), "break outside of a loop")
		}
		f.emit("br label %%%s", f.loops[len(f.loops)-1].breakLabel)
		return false, nil
	case *irast.Continue:
		if len(f.loops) == 0 {
			return false, diag.New(diag.KindUnsupportedForLLVM, s.Loc(), "continue outside of a loop")
		}
		f.emit("br label %%%s", f.loops[len(f.loops)-1].continueLabel)
		return false, nil
	case *irast.Block:
		return f.statements(s.Statements)
	case *irast.If:
		return f.ifStmt(s)
	case *irast.While:
		return f.whileStmt(s)
	case *irast.DoWhile:
		return f.doWhileStmt(s)
	case *irast.For:
		return f.forStmt(s)
	default:
		return false, diag.New(diag.KindUnsupportedForLLVM, n.Loc(), "unsupported statement kind %s", n.NodeKind())
	}
}

func (f *funcCtx) ifStmt(s *irast.If) (bool, error) {
	n := f.nextLabel("if")
	thenL, endL := "if_then"+n, "if_end"+n
	elseL := endL
	if s.Alternate != nil {
		elseL = "if_else" + n
	}

	cond, err := f.boolValue(s.Condition)
	if err != nil {
		return false, err
	}
	f.emit("br i1 %s, label %%%s, label %%%s", cond, thenL, elseL)

	f.startBlock(thenL)
	thenFell, err := f.statements(s.Consequent.Statements)
	if err != nil {
		return false, err
	}
	if thenFell {
		f.emit("br label %%%s", endL)
	}

	altFell := true
	if s.Alternate != nil {
		f.startBlock(elseL)
		switch alt := s.Alternate.(type) {
		case *irast.Block:
			altFell, err = f.statements(alt.Statements)
		default:
			altFell, err = f.statement(alt)
		}
		if err != nil {
			return false, err
		}
		if altFell {
			f.emit("br label %%%s", endL)
		}
	}

	if !thenFell && !altFell {
		// Both arms terminate, so no branch reaches the end label. The
		// block is still opened and closed with unreachable, and the
		// caller is told not to expect fallthrough.
		f.startBlock(endL)
		f.emit("unreachable")
		return false, nil
	}
	f.startBlock(endL)
	return true, nil
}

func (f *funcCtx) whileStmt(s *irast.While) (bool, error) {
	n := f.nextLabel("while")
	condL, bodyL, endL := "while_cond"+n, "while_body"+n, "while_end"+n

	f.emit("br label %%%s", condL)
	f.startBlock(condL)
	cond, err := f.boolValue(s.Condition)
	if err != nil {
		return false, err
	}
	f.emit("br i1 %s, label %%%s, label %%%s", cond, bodyL, endL)

	f.startBlock(bodyL)
	f.loops = append(f.loops, loopLabels{continueLabel: condL, breakLabel: endL})
	fell, err := f.statements(s.Body.Statements)
	f.loops = f.loops[:len(f.loops)-1]
	if err != nil {
		return false, err
	}
	if fell {
		f.emit("br label %%%s", condL)
	}

	f.startBlock(endL)
	return true, nil
}

func (f *funcCtx) doWhileStmt(s *irast.DoWhile) (bool, error) {
	n := f.nextLabel("while")
	bodyL, condL, endL := "while_body"+n, "while_cond"+n, "while_end"+n

	f.emit("br label %%%s", bodyL)
	f.startBlock(bodyL)
	f.loops = append(f.loops, loopLabels{continueLabel: condL, breakLabel: endL})
	fell, err := f.statements(s.Body.Statements)
	f.loops = f.loops[:len(f.loops)-1]
	if err != nil {
		return false, err
	}
	if fell {
		f.emit("br label %%%s", condL)
	}

	f.startBlock(condL)
	cond, err := f.boolValue(s.Condition)
	if err != nil {
		return false, err
	}
	f.emit("br i1 %s, label %%%s, label %%%s", cond, bodyL, endL)

	f.startBlock(endL)
	return true, nil
}

func (f *funcCtx) forStmt(s *irast.For) (bool, error) {
	if s.Init != nil {
		if _, err := f.statement(s.Init); err != nil {
			return false, err
		}
	}

	n := f.nextLabel("for")
	condL, bodyL, updL, endL := "for_cond"+n, "for_body"+n, "for_update"+n, "for_end"+n

	f.emit("br label %%%s", condL)
	f.startBlock(condL)
	if s.Test != nil {
		cond, err := f.boolValue(s.Test)
		if err != nil {
			return false, err
		}
		f.emit("br i1 %s, label %%%s, label %%%s", cond, bodyL, endL)
	} else {
		f.emit("br label %%%s", bodyL)
	}

	f.startBlock(bodyL)
	f.loops = append(f.loops, loopLabels{continueLabel: updL, breakLabel: endL})
	fell, err := f.statements(s.Body.Statements)
	f.loops = f.loops[:len(f.loops)-1]
	if err != nil {
		return false, err
	}
	if fell {
		f.emit("br label %%%s", updL)
	}

	f.startBlock(updL)
	if s.Update != nil {
		if _, _, err := f.expr(s.Update); err != nil {
			return false, err
		}
	}
	f.emit("br label %%%s", condL)

	f.startBlock(endL)
	return true, nil
}

// boolValue emits cond and, if its static type is not already i1, widens it
// via `icmp ne ... 0` (spec.md §4.9).
func (f *funcCtx) boolValue(cond irast.Node) (string, error) {
	val, ty, err := f.expr(cond)
	if err != nil {
		return "", err
	}
	if ty == "i1" {
		return val, nil
	}
	tmp := f.value("cond")
	zero := defaultValue(ty)
	cmp := "icmp ne"
	if ty == "double" {
		cmp = "fcmp one"
	}
	f.emit("%s = %s %s %s, %s", tmp, cmp, ty, val, zero)
	return tmp, nil
}

// expr emits n and returns its SSA value (or literal text) and its LLVM
// type.
func (f *funcCtx) expr(n irast.Node) (string, string, error) {
	switch v := n.(type) {
	case *irast.Identifier:
		addr, ok := f.allocas[v.Name]
		if !ok {
			return "", "", diag.New(diag.KindUnsupportedForLLVM, v.Loc(), "reference to undeclared identifier %q", v.Name)
		}
		ty := llvmType(f.types[v.Name])
		tmp := f.value(v.Name)
		f.emit("%s = load %s, ptr %s", tmp, ty, addr)
		return tmp, ty, nil
	case *irast.Literal:
		return f.literal(v)
	case *irast.BinaryOp:
		return f.binaryOp(v)
	case *irast.UnaryOp:
		return f.unaryOp(v)
	case *irast.Assignment:
		return f.assignment(v)
	case *irast.Call:
		return f.call(v)
	default:
		return "", "", diag.New(diag.KindUnsupportedForLLVM, n.Loc(), "unsupported expression kind %s", n.NodeKind())
	}
}

func (f *funcCtx) literal(l *irast.Literal) (string, string, error) {
	if l.Value == nil {
		return "null", "ptr", nil
	}
	switch v := l.Value.(type) {
	case float64:
		return formatDouble(v), "double", nil
	case bool:
		if v {
			return "true", "i1", nil
		}
		return "false", "i1", nil
	case string:
		idx := f.e.internString(v)
		n := len(v) + 1
		return fmt.Sprintf("getelementptr inbounds ([%d x i8], ptr @.str.%d, i64 0, i64 0)", n, idx), "ptr", nil
	default:
		return "", "", diag.New(diag.KindUnsupportedForLLVM, l.Loc(), "literal has unsupported value type %T", v)
	}
}

func formatDouble(v float64) string {
	s := fmt.Sprintf("%g", v)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

var intFamily = map[string][2]string{
	"+": {"add", ""}, "-": {"sub", ""}, "*": {"mul", ""}, "/": {"sdiv", ""}, "%": {"srem", ""},
}

var floatFamily = map[string]string{
	"+": "fadd", "-": "fsub", "*": "fmul", "/": "fdiv", "%": "frem",
}

var intCmp = map[string]string{
	"<": "slt", "<=": "sle", ">": "sgt", ">=": "sge", "==": "eq", "!=": "ne", "===": "eq", "!==": "ne",
}

var floatCmp = map[string]string{
	"<": "olt", "<=": "ole", ">": "ogt", ">=": "oge", "==": "oeq", "!=": "one", "===": "oeq", "!==": "one",
}

func (f *funcCtx) binaryOp(b *irast.BinaryOp) (string, string, error) {
	switch b.Operator {
	case "&&", "||":
		return f.logicalOp(b)
	}

	left, lty, err := f.expr(b.Left)
	if err != nil {
		return "", "", err
	}
	right, rty, err := f.expr(b.Right)
	if err != nil {
		return "", "", err
	}

	bothInt := lty == "i1" && rty == "i1"

	if op, ok := intCmp[b.Operator]; bothInt && ok {
		tmp := f.value("cmp")
		f.emit("%s = icmp %s %s %s, %s", tmp, op, lty, left, right)
		return tmp, "i1", nil
	}
	if op, ok := floatCmp[b.Operator]; ok {
		tmp := f.value("cmp")
		f.emit("%s = fcmp %s double %s, %s", tmp, op, left, right)
		return tmp, "i1", nil
	}
	if bothInt {
		if pair, ok := intFamily[b.Operator]; ok {
			tmp := f.value("tmp")
			f.emit("%s = %s i1 %s, %s", tmp, pair[0], left, right)
			return tmp, "i1", nil
		}
	}
	if op, ok := floatFamily[b.Operator]; ok {
		tmp := f.value("tmp")
		f.emit("%s = %s double %s, %s", tmp, op, left, right)
		return tmp, "double", nil
	}
	return "", "", diag.New(diag.KindUnsupportedForLLVM, b.Loc(), "unsupported binary operator %q", b.Operator)
}

func (f *funcCtx) logicalOp(b *irast.BinaryOp) (string, string, error) {
	left, err := f.boolValue(b.Left)
	if err != nil {
		return "", "", err
	}
	right, err := f.boolValue(b.Right)
	if err != nil {
		return "", "", err
	}
	op := "and"
	if b.Operator == "||" {
		op = "or"
	}
	tmp := f.value("tmp")
	f.emit("%s = %s i1 %s, %s", tmp, op, left, right)
	return tmp, "i1", nil
}

func (f *funcCtx) unaryOp(u *irast.UnaryOp) (string, string, error) {
	switch u.Operator {
	case "!":
		val, err := f.boolValue(u.Argument)
		if err != nil {
			return "", "", err
		}
		tmp := f.value("not")
		f.emit("%s = xor i1 %s, true", tmp, val)
		return tmp, "i1", nil
	case "-":
		val, ty, err := f.expr(u.Argument)
		if err != nil {
			return "", "", err
		}
		tmp := f.value("neg")
		if ty == "double" {
			f.emit("%s = fneg double %s", tmp, val)
		} else {
			f.emit("%s = sub %s 0, %s", tmp, ty, val)
		}
		return tmp, ty, nil
	default:
		return "", "", diag.New(diag.KindUnsupportedForLLVM, u.Loc(), "unsupported unary operator %q", u.Operator)
	}
}

func (f *funcCtx) assignment(a *irast.Assignment) (string, string, error) {
	ident, ok := a.Target.(*irast.Identifier)
	if !ok {
		return "", "", diag.New(diag.KindUnsupportedForLLVM, a.Loc(), "assignment target must be a simple identifier")
	}
	addr, ok := f.allocas[ident.Name]
	if !ok {
		return "", "", diag.New(diag.KindUnsupportedForLLVM, a.Loc(), "assignment to undeclared identifier %q", ident.Name)
	}
	ty := llvmType(f.types[ident.Name])

	val, _, err := f.expr(a.Value)
	if err != nil {
		return "", "", err
	}
	if a.Operator != "=" {
		op := strings.TrimSuffix(a.Operator, "=")
		synthetic := &irast.BinaryOp{Operator: op, Left: ident, Right: a.Value}
		val, ty, err = f.binaryOp(synthetic)
		if err != nil {
			return "", "", err
		}
	}
	f.emit("store %s %s, ptr %s", ty, val, addr)
	return val, ty, nil
}

func (f *funcCtx) call(c *irast.Call) (string, string, error) {
	ident, ok := c.Callee.(*irast.Identifier)
	if !ok {
		return "", "", diag.New(diag.KindUnsupportedForLLVM, c.Loc(), "indirect calls are not supported")
	}
	argDefs := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		val, ty, err := f.expr(a)
		if err != nil {
			return "", "", err
		}
		argDefs[i] = fmt.Sprintf("%s %s", ty, val)
	}
	retTy := "double"
	tmp := f.value("call")
	f.emit("%s = call %s @%s(%s)", tmp, retTy, ident.Name, strings.Join(argDefs, ", "))
	return tmp, retTy, nil
}
