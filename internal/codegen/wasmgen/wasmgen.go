// Package wasmgen implements the WebAssembly 1.0 binary emitter (spec.md
// §4.10): a stack-machine backend that lowers canonical IR function by
// function into structured control flow, with one linear memory shared by
// the whole module.
package wasmgen

import (
	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irtype"
)

// Value type bytes, spec.md §4.10 type mapping.
const (
	valTypeI32 byte = 0x7F
	valTypeF64 byte = 0x7C
)

// Section ids, in module layout order (spec.md §4.10).
const (
	secType     byte = 1
	secFunction byte = 3
	secMemory   byte = 5
	secExport   byte = 7
	secCode     byte = 10
)

// Options configures the single linear memory's page bounds (spec.md §6.1).
type Options struct {
	MemoryInitialPages int
	MemoryMaxPages     int // 0 means unbounded
}

func (o Options) initialPages() uint32 {
	if o.MemoryInitialPages <= 0 {
		return 1
	}
	return uint32(o.MemoryInitialPages)
}

func wasmType(t irtype.Type) byte {
	if t == nil {
		return valTypeI32
	}
	switch v := t.(type) {
	case irtype.PrimitiveType:
		if v.Kind == irtype.Number {
			return valTypeF64
		}
		return valTypeI32
	case irtype.OptionalType:
		return wasmType(v.Base)
	default:
		return valTypeI32
	}
}

type funcSig struct {
	params  []byte
	results []byte
}

func (s funcSig) equal(o funcSig) bool {
	if len(s.params) != len(o.params) || len(s.results) != len(o.results) {
		return false
	}
	for i := range s.params {
		if s.params[i] != o.params[i] {
			return false
		}
	}
	for i := range s.results {
		if s.results[i] != o.results[i] {
			return false
		}
	}
	return true
}

// Emitter assembles a single WASM module from a Program.
type Emitter struct {
	opts Options

	types   []funcSig
	funcIdx map[string]int // function name -> function-section index
	bodies  [][]byte
	names   []string
}

// New returns an Emitter ready for one Program.
func New(opts Options) *Emitter {
	return &Emitter{opts: opts, funcIdx: map[string]int{}}
}

func (e *Emitter) internType(sig funcSig) int {
	for i, t := range e.types {
		if t.equal(sig) {
			return i
		}
	}
	e.types = append(e.types, sig)
	return len(e.types) - 1
}

// Emit renders program as a WASM 1.0 binary module (spec.md §4.10).
func Emit(program *irast.Program, opts Options) ([]byte, error) {
	e := New(opts)

	var fns []*irast.FunctionDecl
	for _, n := range program.Body {
		if fn, ok := n.(*irast.FunctionDecl); ok {
			fns = append(fns, fn)
		}
	}

	typeIndices := make([]int, len(fns))
	for i, fn := range fns {
		sig := funcSig{}
		for range fn.Params {
			sig.params = append(sig.params, valTypeF64)
		}
		if fn.NodeType() != nil {
			if ft, ok := fn.NodeType().(irtype.FunctionType); ok && !irtype.Equal(ft.ReturnType, irtype.VoidT) {
				sig.results = append(sig.results, wasmType(ft.ReturnType))
			}
		} else {
			sig.results = inferResultTypes(fn.Body)
		}
		typeIndices[i] = e.internType(sig)
		e.funcIdx[fn.Name] = i
		e.names = append(e.names, fn.Name)
	}

	for i, fn := range fns {
		body, err := e.compileFunction(fn, e.types[typeIndices[i]])
		if err != nil {
			return nil, err
		}
		e.bodies = append(e.bodies, body)
	}

	return e.assemble(typeIndices), nil
}

func (e *Emitter) assemble(typeIndices []int) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	var typeBody []byte
	typeBody = appendUleb128(typeBody, uint64(len(e.types)))
	for _, t := range e.types {
		typeBody = append(typeBody, 0x60)
		typeBody = appendUleb128(typeBody, uint64(len(t.params)))
		typeBody = append(typeBody, t.params...)
		typeBody = appendUleb128(typeBody, uint64(len(t.results)))
		typeBody = append(typeBody, t.results...)
	}
	out = append(out, section(secType, typeBody)...)

	var funcBody []byte
	funcBody = appendUleb128(funcBody, uint64(len(typeIndices)))
	for _, ti := range typeIndices {
		funcBody = appendUleb128(funcBody, uint64(ti))
	}
	out = append(out, section(secFunction, funcBody)...)

	var memBody []byte
	memBody = appendUleb128(memBody, 1) // one memory
	if e.opts.MemoryMaxPages > 0 {
		memBody = append(memBody, 0x01)
		memBody = appendUleb128(memBody, uint64(e.opts.initialPages()))
		memBody = appendUleb128(memBody, uint64(e.opts.MemoryMaxPages))
	} else {
		memBody = append(memBody, 0x00)
		memBody = appendUleb128(memBody, uint64(e.opts.initialPages()))
	}
	out = append(out, section(secMemory, memBody)...)

	var exportBody []byte
	exportBody = appendUleb128(exportBody, uint64(len(e.names)))
	for i, n := range e.names {
		exportBody = append(exportBody, name(n)...)
		exportBody = append(exportBody, 0x00) // func export kind
		exportBody = appendUleb128(exportBody, uint64(i))
	}
	out = append(out, section(secExport, exportBody)...)

	var codeBody []byte
	codeBody = appendUleb128(codeBody, uint64(len(e.bodies)))
	for _, b := range e.bodies {
		codeBody = append(codeBody, withLen(b)...)
	}
	out = append(out, section(secCode, codeBody)...)

	return out
}

// loopLabels records the structured-block nesting depth at which the
// break target (the enclosing `block`) and the continue target (the
// `loop` itself) were opened, so br/br_if can compute a relative label
// index at the point of use (spec.md §4.10 "structured control flow").
type loopLabels struct {
	breakDepth    int
	continueDepth int
}

type funcCtx struct {
	e *Emitter

	localTypes []byte
	localIdx   map[string]int

	depth int
	loops []loopLabels

	code []byte
}

func (f *funcCtx) emitByte(b byte)         { f.code = append(f.code, b) }
func (f *funcCtx) emitBytes(bs ...byte)    { f.code = append(f.code, bs...) }
func (f *funcCtx) emitUleb(v uint64)       { f.code = appendUleb128(f.code, v) }
func (f *funcCtx) emitSleb(v int64)        { f.code = appendSleb128(f.code, v) }
func (f *funcCtx) emitF64(v float64)       { f.code = appendF64(f.code, v) }

func (e *Emitter) compileFunction(fn *irast.FunctionDecl, sig funcSig) ([]byte, error) {
	f := &funcCtx{e: e, localIdx: map[string]int{}}
	for i, p := range fn.Params {
		f.localIdx[p.Name] = i
		f.localTypes = append(f.localTypes, valTypeF64)
	}
	declareWasmLocals(f, fn.Body)

	if err := f.statements(fn.Body.Statements); err != nil {
		return nil, err
	}
	f.emitByte(0x0B) // end

	var body []byte
	// Local declarations after the parameters: one group per contiguous
	// run of identical types, grouped here as a single run per local since
	// each IR local is already typed independently.
	extraLocals := f.localTypes[len(sig.params):]
	body = appendUleb128(body, uint64(len(extraLocals)))
	for _, t := range extraLocals {
		body = appendUleb128(body, 1)
		body = append(body, t)
	}
	body = append(body, f.code...)
	return body, nil
}

// inferResultTypes walks body for Return statements and derives the
// function's WASM result type from them, since the pipeline does not
// annotate FunctionDecl.NodeType() with a FunctionType (spec.md §4.1 leaves
// that inference to consumers). A Return with a value yields a single
// result typed from that value's static type when known, else the
// lattice's default numeric type; a function with no value-carrying Return
// anywhere in its body has no result (an empty results vector).
func inferResultTypes(body *irast.Block) []byte {
	var returns []*irast.Return
	collectWasmReturns(body, &returns)
	for _, r := range returns {
		if r.Value == nil {
			continue
		}
		if t := r.Value.NodeType(); t != nil {
			return []byte{wasmType(t)}
		}
		return []byte{valTypeF64}
	}
	return nil
}

func collectWasmReturns(n irast.Node, out *[]*irast.Return) {
	switch s := n.(type) {
	case *irast.Block:
		for _, stmt := range s.Statements {
			collectWasmReturns(stmt, out)
		}
	case *irast.Return:
		*out = append(*out, s)
	case *irast.If:
		collectWasmReturns(s.Consequent, out)
		if s.Alternate != nil {
			collectWasmReturns(s.Alternate, out)
		}
	case *irast.While:
		collectWasmReturns(s.Body, out)
	case *irast.DoWhile:
		collectWasmReturns(s.Body, out)
	case *irast.For:
		collectWasmReturns(s.Body, out)
	case *irast.Switch:
		for _, c := range s.Cases {
			for _, stmt := range c.Body {
				collectWasmReturns(stmt, out)
			}
		}
	}
}

func declareWasmLocals(f *funcCtx, n irast.Node) {
	switch s := n.(type) {
	case *irast.Block:
		for _, stmt := range s.Statements {
			declareWasmLocals(f, stmt)
		}
	case *irast.VarDecl:
		if _, ok := f.localIdx[s.Name]; ok {
			return
		}
		ty := irtype.Type(irtype.NumberT)
		if s.Value != nil && s.Value.NodeType() != nil {
			ty = s.Value.NodeType()
		}
		f.localIdx[s.Name] = len(f.localTypes)
		f.localTypes = append(f.localTypes, wasmType(ty))
	case *irast.If:
		declareWasmLocals(f, s.Consequent)
		if s.Alternate != nil {
			declareWasmLocals(f, s.Alternate)
		}
	case *irast.While:
		declareWasmLocals(f, s.Body)
	case *irast.DoWhile:
		declareWasmLocals(f, s.Body)
	case *irast.For:
		if s.Init != nil {
			declareWasmLocals(f, s.Init)
		}
		declareWasmLocals(f, s.Body)
	}
}

func (f *funcCtx) statements(stmts []irast.Node) error {
	for _, s := range stmts {
		if err := f.statement(s); err != nil {
			return err
		}
	}
	return nil
}

func (f *funcCtx) statement(n irast.Node) error {
	switch s := n.(type) {
	case *irast.VarDecl:
		if s.Value == nil {
			return nil
		}
		if err := f.expr(s.Value); err != nil {
			return err
		}
		f.emitByte(0x21) // local.set
		f.emitUleb(uint64(f.localIdx[s.Name]))
		return nil
	case *irast.ExpressionStmt:
		if err := f.expr(s.Expression); err != nil {
			return err
		}
		f.emitByte(0x1A) // drop: statement-position expressions discard their value
		return nil
	case *irast.Return:
		if s.Value != nil {
			if err := f.expr(s.Value); err != nil {
				return err
			}
		}
		f.emitByte(0x0F) // return
		return nil
	case *irast.Break:
		if len(f.loops) == 0 {
			return diag.New(diag.KindUnsupportedForWasm, s.Loc(), "break outside of a loop")
		}
		top := f.loops[len(f.loops)-1]
		f.emitByte(0x0C) // br
		f.emitUleb(uint64(f.depth - top.breakDepth))
		return nil
	case *irast.Continue:
		if len(f.loops) == 0 {
			return diag.New(diag.KindUnsupportedForWasm, s.Loc(), "continue outside of a loop")
		}
		top := f.loops[len(f.loops)-1]
		f.emitByte(0x0C) // br
		f.emitUleb(uint64(f.depth - top.continueDepth))
		return nil
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
		return diag.New(diag.KindUnsupportedForWasm, n.Loc(), "unsupported statement kind %s", n.NodeKind())
	}
}

func (f *funcCtx) ifStmt(s *irast.If) error {
	if err := f.expr(s.Condition); err != nil {
		return err
	}
	f.emitBytes(0x04, 0x40) // if, blocktype empty
	f.depth++
	if err := f.statements(s.Consequent.Statements); err != nil {
		return err
	}
	if s.Alternate != nil {
		f.emitByte(0x05) // else
		switch alt := s.Alternate.(type) {
		case *irast.Block:
			if err := f.statements(alt.Statements); err != nil {
				return err
			}
		default:
			if err := f.statement(alt); err != nil {
				return err
			}
		}
	}
	f.depth--
	f.emitByte(0x0B) // end
	return nil
}

func (f *funcCtx) whileStmt(s *irast.While) error {
	f.emitBytes(0x02, 0x40) // block (break target)
	f.depth++
	breakDepth := f.depth
	f.emitBytes(0x03, 0x40) // loop (continue target)
	f.depth++
	continueDepth := f.depth

	if err := f.expr(s.Condition); err != nil {
		return err
	}
	f.emitByte(0x45) // i32.eqz on the condition value, so br_if exits when it is false
	f.emitByte(0x0D) // br_if
	f.emitUleb(uint64(f.depth - breakDepth))

	f.loops = append(f.loops, loopLabels{breakDepth: breakDepth, continueDepth: continueDepth})
	if err := f.statements(s.Body.Statements); err != nil {
		return err
	}
	f.loops = f.loops[:len(f.loops)-1]

	f.emitByte(0x0C) // br back to loop top
	f.emitUleb(uint64(f.depth - continueDepth))
	f.emitByte(0x0B) // end loop
	f.depth--
	f.emitByte(0x0B) // end block
	f.depth--
	return nil
}

func (f *funcCtx) doWhileStmt(s *irast.DoWhile) error {
	f.emitBytes(0x02, 0x40)
	f.depth++
	breakDepth := f.depth
	f.emitBytes(0x03, 0x40)
	f.depth++
	continueDepth := f.depth

	f.loops = append(f.loops, loopLabels{breakDepth: breakDepth, continueDepth: continueDepth})
	if err := f.statements(s.Body.Statements); err != nil {
		return err
	}
	f.loops = f.loops[:len(f.loops)-1]

	if err := f.expr(s.Condition); err != nil {
		return err
	}
	f.emitByte(0x0D) // br_if back to loop top when condition holds
	f.emitUleb(uint64(f.depth - continueDepth))
	f.emitByte(0x0B)
	f.depth--
	f.emitByte(0x0B)
	f.depth--
	return nil
}

func (f *funcCtx) forStmt(s *irast.For) error {
	if s.Init != nil {
		if err := f.statement(s.Init); err != nil {
			return err
		}
	}

	f.emitBytes(0x02, 0x40)
	f.depth++
	breakDepth := f.depth
	f.emitBytes(0x03, 0x40)
	f.depth++
	continueDepth := f.depth

	if s.Test != nil {
		if err := f.expr(s.Test); err != nil {
			return err
		}
		f.emitByte(0x45)
		f.emitByte(0x0D)
		f.emitUleb(uint64(f.depth - breakDepth))
	}

	f.loops = append(f.loops, loopLabels{breakDepth: breakDepth, continueDepth: continueDepth})
	if err := f.statements(s.Body.Statements); err != nil {
		return err
	}
	f.loops = f.loops[:len(f.loops)-1]

	if s.Update != nil {
		if err := f.expr(s.Update); err != nil {
			return err
		}
		f.emitByte(0x1A) // drop update expression's value
	}

	f.emitByte(0x0C)
	f.emitUleb(uint64(f.depth - continueDepth))
	f.emitByte(0x0B)
	f.depth--
	f.emitByte(0x0B)
	f.depth--
	return nil
}

func (f *funcCtx) expr(n irast.Node) error {
	switch v := n.(type) {
	case *irast.Identifier:
		idx, ok := f.localIdx[v.Name]
		if !ok {
			return diag.New(diag.KindUnsupportedForWasm, v.Loc(), "reference to undeclared identifier %q", v.Name)
		}
		f.emitByte(0x20) // local.get
		f.emitUleb(uint64(idx))
		return nil
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
	case *irast.ObjectLiteral:
		for _, p := range v.Properties {
			if _, ok := p.Value.(*irast.FunctionDecl); ok {
				return diag.New(diag.KindUnsupportedForWasm, p.Loc(), "object literal method properties have no WASM lowering")
			}
		}
		return diag.New(diag.KindUnsupportedForWasm, v.Loc(), "object literals have no WASM lowering in this backend")
	default:
		return diag.New(diag.KindUnsupportedForWasm, n.Loc(), "unsupported expression kind %s", n.NodeKind())
	}
}

func (f *funcCtx) literal(l *irast.Literal) error {
	switch v := l.Value.(type) {
	case float64:
		f.emitByte(0x44) // f64.const
		f.emitF64(v)
		return nil
	case bool:
		f.emitByte(0x41) // i32.const
		if v {
			f.emitSleb(1)
		} else {
			f.emitSleb(0)
		}
		return nil
	case nil:
		f.emitByte(0x41)
		f.emitSleb(0)
		return nil
	default:
		return diag.New(diag.KindUnsupportedForWasm, l.Loc(), "string literals require a data section this backend does not emit")
	}
}

var f64BinOp = map[string]byte{
	"+": 0xA0, "-": 0xA1, "*": 0xA2, "/": 0xA3,
	"==": 0x61, "!=": 0x62, "<": 0x63, ">": 0x64, "<=": 0x65, ">=": 0x66,
	"===": 0x61, "!==": 0x62,
}

func (f *funcCtx) binaryOp(b *irast.BinaryOp) error {
	if b.Operator == "&&" || b.Operator == "||" {
		if err := f.expr(b.Left); err != nil {
			return err
		}
		if err := f.expr(b.Right); err != nil {
			return err
		}
		if b.Operator == "&&" {
			f.emitByte(0x71) // i32.and
		} else {
			f.emitByte(0x72) // i32.or
		}
		return nil
	}

	if err := f.expr(b.Left); err != nil {
		return err
	}
	if err := f.expr(b.Right); err != nil {
		return err
	}
	if op, ok := f64BinOp[b.Operator]; ok {
		f.emitByte(op)
		return nil
	}
	return diag.New(diag.KindUnsupportedForWasm, b.Loc(), "unsupported binary operator %q", b.Operator)
}

func (f *funcCtx) unaryOp(u *irast.UnaryOp) error {
	switch u.Operator {
	case "!":
		if err := f.expr(u.Argument); err != nil {
			return err
		}
		f.emitByte(0x45) // i32.eqz
		return nil
	case "-":
		if err := f.expr(u.Argument); err != nil {
			return err
		}
		f.emitByte(0x9A) // f64.neg
		return nil
	default:
		return diag.New(diag.KindUnsupportedForWasm, u.Loc(), "unsupported unary operator %q", u.Operator)
	}
}

func (f *funcCtx) assignment(a *irast.Assignment) error {
	ident, ok := a.Target.(*irast.Identifier)
	if !ok {
		return diag.New(diag.KindUnsupportedForWasm, a.Loc(), "assignment target must be a simple identifier")
	}
	idx, ok := f.localIdx[ident.Name]
	if !ok {
		return diag.New(diag.KindUnsupportedForWasm, a.Loc(), "assignment to undeclared identifier %q", ident.Name)
	}
	if a.Operator != "=" {
		op := a.Operator[:len(a.Operator)-1]
		synthetic := &irast.BinaryOp{Operator: op, Left: ident, Right: a.Value}
		if err := f.binaryOp(synthetic); err != nil {
			return err
		}
	} else if err := f.expr(a.Value); err != nil {
		return err
	}
	f.emitByte(0x22) // local.tee: leaves the stored value on the stack as the expression's result
	f.emitUleb(uint64(idx))
	return nil
}

func (f *funcCtx) call(c *irast.Call) error {
	ident, ok := c.Callee.(*irast.Identifier)
	if !ok {
		return diag.New(diag.KindUnsupportedForWasm, c.Loc(), "indirect calls are not supported")
	}
	idx, ok := f.e.funcIdx[ident.Name]
	if !ok {
		return diag.New(diag.KindUnsupportedForWasm, c.Loc(), "call to undeclared function %q", ident.Name)
	}
	for _, a := range c.Arguments {
		if err := f.expr(a); err != nil {
			return err
		}
	}
	f.emitByte(0x10) // call
	f.emitUleb(uint64(idx))
	return nil
}
