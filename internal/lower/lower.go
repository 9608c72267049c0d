// Package lower implements the Lowerer (spec.md §4.4): a single top-down
// recursive traversal with a scope stack that transforms a normalized
// surface AST into canonical IR. The Lowerer never retries; the first error
// it encounters is returned to the caller (spec.md §4.4 "Failure modes").
package lower

import (
	"fmt"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irbuild"
	"github.com/cwbudde/go-xir/internal/irtype"
	"github.com/cwbudde/go-xir/internal/surface"
)

// Options controls lowering behavior driven by compiler configuration
// (spec.md §6.1).
type Options struct {
	// StrictScope rejects a free-standing, undeclared identifier with
	// ScopeError rather than treating it as an implicit global.
	StrictScope bool
}

// Lowerer carries the per-unit state of one lowering pass: the IR builder,
// the scope stack, and the per-function destructuring-temp counter
// (spec.md §4.4, §3.4).
type Lowerer struct {
	builder      *irbuild.Builder
	scope        *scope
	destructureN int
	warnings     []*diag.Diagnostic
	opts         Options
}

// New creates a Lowerer over a fresh builder.
func New(opts Options) *Lowerer {
	return &Lowerer{builder: irbuild.New(), scope: newScope(nil), opts: opts}
}

// Warnings returns the warnings accumulated by the most recent Lower call.
func (l *Lowerer) Warnings() []*diag.Diagnostic { return l.warnings }

func loc(n surface.Node) diag.Location {
	if n == nil {
		return diag.Location{}
	}
	return n.Pos()
}

// Lower transforms a normalized surface Program into canonical IR.
func (lw *Lowerer) Lower(program *surface.Program) (*irast.Program, error) {
	lw.builder.Reset()
	lw.scope = newScope(nil)
	lw.warnings = nil
	lw.destructureN = 0

	var body []irast.Node
	for _, s := range program.Body {
		nodes, err := lw.lowerStatement(s)
		if err != nil {
			return nil, err
		}
		body = append(body, nodes...)
	}
	return lw.builder.Program(body, diag.Location{Line: 1, Column: 1})
}

// lowerStatement lowers one surface statement, possibly expanding it into
// several IR statements (destructuring declarations expand to one binding
// per target element, spec.md §4.4).
func (lw *Lowerer) lowerStatement(s surface.Node) ([]irast.Node, error) {
	switch n := s.(type) {
	case *surface.VariableDeclaration:
		return lw.lowerVariableDeclaration(n)

	case *surface.FunctionDeclaration:
		fd, err := lw.lowerFunctionDecl(n)
		if err != nil {
			return nil, err
		}
		lw.scope.define(n.Name, declFunction, fd)
		return []irast.Node{fd}, nil

	case *surface.BlockStatement:
		block, err := lw.lowerBlockScoped(n)
		if err != nil {
			return nil, err
		}
		return []irast.Node{block}, nil

	case *surface.IfStatement:
		return lw.lowerIf(n)

	case *surface.WhileStatement:
		return lw.lowerWhile(n)

	case *surface.DoWhileStatement:
		return lw.lowerDoWhile(n)

	case *surface.ForStatement:
		return lw.lowerFor(n)

	case *surface.SwitchStatement:
		return lw.lowerSwitch(n)

	case *surface.BreakStatement:
		br, err := lw.builder.Break(loc(n))
		return one(br, err)

	case *surface.ContinueStatement:
		c, err := lw.builder.Continue(loc(n))
		return one(c, err)

	case *surface.ReturnStatement:
		val, err := lw.lowerExprMaybeNil(n.Value)
		if err != nil {
			return nil, err
		}
		ret, err := lw.builder.Return(val, loc(n))
		return one(ret, err)

	case *surface.ExpressionStatement:
		expr, err := lw.lowerExpr(n.Expression)
		if err != nil {
			return nil, err
		}
		es, err := lw.builder.ExpressionStmt(expr, loc(n))
		return one(es, err)

	case nil:
		return nil, nil

	default:
		return nil, diag.New(diag.KindUnsupportedConstruct, loc(s), "unsupported statement kind %T", s)
	}
}

func one(n irast.Node, err error) ([]irast.Node, error) {
	if err != nil {
		return nil, err
	}
	return []irast.Node{n}, nil
}

// lowerBlockScoped lowers a block under a fresh child scope, popping it on
// return (spec.md §3.4 "closing a scope pops it").
func (lw *Lowerer) lowerBlockScoped(b *surface.BlockStatement) (*irast.Block, error) {
	lw.scope = newScope(lw.scope)
	defer func() { lw.scope = lw.scope.outer }()
	return lw.lowerBlockBody(b)
}

// lowerBlockBody lowers a block's statements into the CURRENT scope, used
// where the caller has already pushed the function/loop scope the block
// statements should share (e.g. a function body sharing its parameter
// scope).
func (lw *Lowerer) lowerBlockBody(b *surface.BlockStatement) (*irast.Block, error) {
	var stmts []irast.Node
	for _, s := range b.Body {
		nodes, err := lw.lowerStatement(s)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, nodes...)
	}
	return lw.builder.Block(stmts, loc(b))
}

func (lw *Lowerer) lowerVariableDeclaration(vd *surface.VariableDeclaration) ([]irast.Node, error) {
	if len(vd.Declarations) != 1 {
		return nil, diag.New(diag.KindInternalError, loc(vd), "variable declaration with %d declarators reached the lowerer unsplit", len(vd.Declarations))
	}
	d := vd.Declarations[0]
	switch pattern := d.ID.(type) {
	case *surface.Identifier:
		var value irast.Node
		var err error
		if d.Init != nil {
			value, err = lw.lowerExpr(d.Init)
			if err != nil {
				return nil, err
			}
		}
		decl, err := lw.builder.VarDecl(pattern.Name, value, string(vd.Kind), loc(d))
		if err != nil {
			return nil, err
		}
		lw.scope.define(pattern.Name, declKind(vd.Kind), decl)
		return []irast.Node{decl}, nil

	case *surface.ArrayPattern, *surface.ObjectPattern:
		if d.Init == nil {
			return nil, diag.New(diag.KindPatternError, loc(d), "destructuring declaration requires an initializer")
		}
		return lw.lowerDestructuring(pattern, d.Init, string(vd.Kind), loc(d))

	default:
		return nil, diag.New(diag.KindPatternError, loc(d), "unsupported binding target %T", d.ID)
	}
}

// lowerDestructuring expands an array/object pattern bound to init into a
// synthetic temporary plus one binding per target element (spec.md §4.4,
// seed scenario §8.3).
func (lw *Lowerer) lowerDestructuring(pattern surface.Node, init surface.Node, declKind string, at diag.Location) ([]irast.Node, error) {
	initIR, err := lw.lowerExpr(init)
	if err != nil {
		return nil, err
	}
	lw.destructureN++
	tmpName := fmt.Sprintf("_destructure_%d", lw.destructureN)
	tmpDecl, err := lw.builder.VarDecl(tmpName, initIR, declKind, at)
	if err != nil {
		return nil, err
	}
	lw.scope.define(tmpName, declKind2(declKind), tmpDecl)

	nodes := []irast.Node{tmpDecl}
	tmpRef := func() (*irast.Identifier, error) { return lw.builder.Identifier(tmpName, at) }

	switch p := pattern.(type) {
	case *surface.ArrayPattern:
		for i, el := range p.Elements {
			if el == nil {
				continue // elision
			}
			if rest, ok := el.(*surface.RestElement); ok {
				name, err := bindingName(rest.Argument)
				if err != nil {
					return nil, err
				}
				ref, err := tmpRef()
				if err != nil {
					return nil, err
				}
				sliceProp, err := lw.builder.Identifier("slice", at)
				if err != nil {
					return nil, err
				}
				member, err := lw.builder.Member(ref, sliceProp, false, at)
				if err != nil {
					return nil, err
				}
				idxLit, err := lw.builder.Literal(float64(i), irtype.NumberT, at)
				if err != nil {
					return nil, err
				}
				call, err := lw.builder.Call(member, []irast.Node{idxLit}, false, at)
				if err != nil {
					return nil, err
				}
				decl, err := lw.builder.VarDecl(name, call, declKind, at)
				if err != nil {
					return nil, err
				}
				lw.scope.define(name, declKind2(declKind), decl)
				nodes = append(nodes, decl)
				continue
			}

			elemAt := at
			target := el
			var def surface.Node
			if ap, ok := el.(*surface.AssignmentPattern); ok {
				target = ap.Left
				def = ap.Right
				elemAt = ap.Loc
			}
			name, err := bindingName(target)
			if err != nil {
				return nil, err
			}
			ref, err := tmpRef()
			if err != nil {
				return nil, err
			}
			idxLit, err := lw.builder.Literal(float64(i), irtype.NumberT, elemAt)
			if err != nil {
				return nil, err
			}
			member, err := lw.builder.Member(ref, idxLit, true, elemAt)
			if err != nil {
				return nil, err
			}
			value, err := lw.withDefault(member, def, elemAt)
			if err != nil {
				return nil, err
			}
			decl, err := lw.builder.VarDecl(name, value, declKind, elemAt)
			if err != nil {
				return nil, err
			}
			lw.scope.define(name, declKind2(declKind), decl)
			nodes = append(nodes, decl)
		}

	case *surface.ObjectPattern:
		for _, prop := range p.Properties {
			target := prop.Value
			var def surface.Node
			if ap, ok := prop.Value.(*surface.AssignmentPattern); ok {
				target = ap.Left
				def = ap.Right
			}
			name, err := bindingName(target)
			if err != nil {
				return nil, err
			}
			ref, err := tmpRef()
			if err != nil {
				return nil, err
			}
			keyIdent, err := lw.builder.Identifier(prop.Key, prop.Loc)
			if err != nil {
				return nil, err
			}
			member, err := lw.builder.Member(ref, keyIdent, false, prop.Loc)
			if err != nil {
				return nil, err
			}
			value, err := lw.withDefault(member, def, prop.Loc)
			if err != nil {
				return nil, err
			}
			decl, err := lw.builder.VarDecl(name, value, declKind, prop.Loc)
			if err != nil {
				return nil, err
			}
			lw.scope.define(name, declKind2(declKind), decl)
			nodes = append(nodes, decl)
		}

	default:
		return nil, diag.New(diag.KindPatternError, at, "unsupported destructuring pattern %T", pattern)
	}

	return nodes, nil
}

// withDefault expands a pattern element's default value into
// Conditional(eq(<slot>, null), default, <slot>) per spec.md §4.4, or
// returns slot unchanged when there is no default.
func (lw *Lowerer) withDefault(slot irast.Node, def surface.Node, at diag.Location) (irast.Node, error) {
	if def == nil {
		return slot, nil
	}
	defIR, err := lw.lowerExpr(def)
	if err != nil {
		return nil, err
	}
	nullLit, err := lw.builder.Literal(nil, irtype.NullT, at)
	if err != nil {
		return nil, err
	}
	eq, err := lw.builder.BinaryOp("===", slot, nullLit, at)
	if err != nil {
		return nil, err
	}
	return lw.builder.Conditional(eq, defIR, slot, at)
}

func bindingName(n surface.Node) (string, error) {
	id, ok := n.(*surface.Identifier)
	if !ok {
		return "", diag.New(diag.KindPatternError, loc(n), "nested destructuring patterns are not supported, got %T", n)
	}
	return id.Name, nil
}

func declKind2(s string) declKind {
	switch s {
	case "let":
		return declLet
	case "const":
		return declConst
	default:
		return declVar
	}
}

// lowerFunctionDecl lowers a (possibly anonymous) function, allocating a
// nested scope for its parameters and body (spec.md §4.4 "Functions allocate
// a nested scope").
func (lw *Lowerer) lowerFunctionDecl(f *surface.FunctionDeclaration) (*irast.FunctionDecl, error) {
	outer := lw.scope
	lw.scope = newScope(outer)
	savedDestructureN := lw.destructureN
	lw.destructureN = 0
	defer func() {
		lw.scope = outer
		lw.destructureN = savedDestructureN
	}()

	var params []*irast.Parameter
	var prologue []irast.Node
	for _, p := range f.Params {
		irParam, pro, err := lw.lowerParameter(p)
		if err != nil {
			return nil, err
		}
		params = append(params, irParam)
		prologue = append(prologue, pro...)
	}

	bodyBlock, ok := f.Body.(*surface.BlockStatement)
	if !ok {
		return nil, diag.New(diag.KindInternalError, loc(f), "function body was not normalized to a block")
	}
	irBody, err := lw.lowerBlockBody(bodyBlock)
	if err != nil {
		return nil, err
	}
	if len(prologue) > 0 {
		irBody, err = lw.builder.Block(append(prologue, irBody.Statements...), loc(bodyBlock))
		if err != nil {
			return nil, err
		}
	}

	return lw.builder.FunctionDecl(f.Name, params, irBody, loc(f))
}

// lowerParameter lowers one formal parameter. A destructuring parameter
// lowers to a single synthetic parameter plus explicit bindings in the
// function body's prologue (spec.md §4.4).
func (lw *Lowerer) lowerParameter(p surface.Node) (*irast.Parameter, []irast.Node, error) {
	switch t := p.(type) {
	case *surface.Identifier:
		param, err := lw.builder.Parameter(t.Name, false, loc(t))
		if err != nil {
			return nil, nil, err
		}
		lw.scope.define(t.Name, declParameter, param)
		return param, nil, nil

	case *surface.RestElement:
		name, err := bindingName(t.Argument)
		if err != nil {
			return nil, nil, err
		}
		param, err := lw.builder.Parameter(name, true, loc(t))
		if err != nil {
			return nil, nil, err
		}
		lw.scope.define(name, declParameter, param)
		return param, nil, nil

	case *surface.AssignmentPattern:
		name, err := bindingName(t.Left)
		if err != nil {
			return nil, nil, err
		}
		param, err := lw.builder.Parameter(name, false, loc(t))
		if err != nil {
			return nil, nil, err
		}
		lw.scope.define(name, declParameter, param)
		// Default parameter values expand the same way a destructured default
		// does: a Conditional guarding the missing-argument case, assigned
		// back into the declared parameter name via a prologue VarDecl would
		// shadow the parameter; instead emit an Assignment in the prologue.
		ref, err := lw.builder.Identifier(name, loc(t))
		if err != nil {
			return nil, nil, err
		}
		value, err := lw.withDefault(ref, t.Right, loc(t))
		if err != nil {
			return nil, nil, err
		}
		assign, err := lw.builder.Assignment("=", ref, value, loc(t))
		if err != nil {
			return nil, nil, err
		}
		stmt, err := lw.builder.ExpressionStmt(assign, loc(t))
		if err != nil {
			return nil, nil, err
		}
		return param, []irast.Node{stmt}, nil

	case *surface.ArrayPattern, *surface.ObjectPattern:
		lw.destructureN++
		tmpName := fmt.Sprintf("_destructure_%d", lw.destructureN)
		param, err := lw.builder.Parameter(tmpName, false, loc(p))
		if err != nil {
			return nil, nil, err
		}
		lw.scope.define(tmpName, declParameter, param)
		tmpIdent := &surface.Identifier{Name: tmpName, Loc: loc(p)}
		nodes, err := lw.lowerDestructuring(t, tmpIdent, "let", loc(p))
		if err != nil {
			return nil, nil, err
		}
		return param, nodes, nil

	default:
		return nil, nil, diag.New(diag.KindPatternError, loc(p), "unsupported parameter shape %T", p)
	}
}

func (lw *Lowerer) lowerIf(n *surface.IfStatement) ([]irast.Node, error) {
	cond, err := lw.lowerExpr(n.Test)
	if err != nil {
		return nil, err
	}
	consBlock, ok := n.Consequent.(*surface.BlockStatement)
	if !ok {
		return nil, diag.New(diag.KindInternalError, loc(n), "if-consequent was not normalized to a block")
	}
	consequent, err := lw.lowerBlockScoped(consBlock)
	if err != nil {
		return nil, err
	}

	var alternate irast.Node
	switch alt := n.Alternate.(type) {
	case nil:
		// no else
	case *surface.IfStatement:
		nodes, err := lw.lowerIf(alt)
		if err != nil {
			return nil, err
		}
		alternate = nodes[0]
	case *surface.BlockStatement:
		altBlock, err := lw.lowerBlockScoped(alt)
		if err != nil {
			return nil, err
		}
		alternate = altBlock
	default:
		return nil, diag.New(diag.KindInternalError, loc(n), "if-alternate was not normalized to a block or else-if, got %T", alt)
	}

	ifNode, err := lw.builder.If(cond, consequent, alternate, loc(n))
	return one(ifNode, err)
}

func (lw *Lowerer) lowerWhile(n *surface.WhileStatement) ([]irast.Node, error) {
	cond, err := lw.lowerExpr(n.Test)
	if err != nil {
		return nil, err
	}
	bodyBlock, ok := n.Body.(*surface.BlockStatement)
	if !ok {
		return nil, diag.New(diag.KindInternalError, loc(n), "while-body was not normalized to a block")
	}
	body, err := lw.lowerBlockScoped(bodyBlock)
	if err != nil {
		return nil, err
	}
	w, err := lw.builder.While(cond, body, loc(n))
	return one(w, err)
}

func (lw *Lowerer) lowerDoWhile(n *surface.DoWhileStatement) ([]irast.Node, error) {
	bodyBlock, ok := n.Body.(*surface.BlockStatement)
	if !ok {
		return nil, diag.New(diag.KindInternalError, loc(n), "do-while body was not normalized to a block")
	}
	body, err := lw.lowerBlockScoped(bodyBlock)
	if err != nil {
		return nil, err
	}
	cond, err := lw.lowerExpr(n.Test)
	if err != nil {
		return nil, err
	}
	dw, err := lw.builder.DoWhile(body, cond, loc(n))
	return one(dw, err)
}

func (lw *Lowerer) lowerFor(n *surface.ForStatement) ([]irast.Node, error) {
	lw.scope = newScope(lw.scope)
	defer func() { lw.scope = lw.scope.outer }()

	var init irast.Node
	if n.Init != nil {
		if vd, ok := n.Init.(*surface.VariableDeclaration); ok {
			nodes, err := lw.lowerVariableDeclaration(vd)
			if err != nil {
				return nil, err
			}
			if len(nodes) == 1 {
				init = nodes[0]
			} else if len(nodes) > 1 {
				// A destructuring for-init is unusual; wrap the expansion in a
				// block so For.Init stays a single node.
				blk, err := lw.builder.Block(nodes, loc(n.Init))
				if err != nil {
					return nil, err
				}
				init = blk
			}
		} else {
			expr, err := lw.lowerExpr(n.Init)
			if err != nil {
				return nil, err
			}
			init = expr
		}
	}

	var test irast.Node
	if n.Test != nil {
		t, err := lw.lowerExpr(n.Test)
		if err != nil {
			return nil, err
		}
		test = t
	} else {
		// A for-loop without a test slot carries a synthetic Literal(true)
		// (spec.md §4.4).
		t, err := lw.builder.Literal(true, irtype.BooleanT, loc(n))
		if err != nil {
			return nil, err
		}
		test = t
	}

	var update irast.Node
	if n.Update != nil {
		u, err := lw.lowerExpr(n.Update)
		if err != nil {
			return nil, err
		}
		update = u
	}

	bodyBlock, ok := n.Body.(*surface.BlockStatement)
	if !ok {
		return nil, diag.New(diag.KindInternalError, loc(n), "for-body was not normalized to a block")
	}
	body, err := lw.lowerBlockBody(bodyBlock)
	if err != nil {
		return nil, err
	}

	forNode, err := lw.builder.For(init, test, update, body, loc(n))
	return one(forNode, err)
}

func (lw *Lowerer) lowerSwitch(n *surface.SwitchStatement) ([]irast.Node, error) {
	disc, err := lw.lowerExpr(n.Discriminant)
	if err != nil {
		return nil, err
	}
	var cases []*irast.Case
	for _, c := range n.Cases {
		var test irast.Node
		if c.Test != nil {
			test, err = lw.lowerExpr(c.Test)
			if err != nil {
				return nil, err
			}
		}
		lw.scope = newScope(lw.scope)
		var body []irast.Node
		for _, s := range c.Body {
			nodes, err := lw.lowerStatement(s)
			if err != nil {
				lw.scope = lw.scope.outer
				return nil, err
			}
			body = append(body, nodes...)
		}
		lw.scope = lw.scope.outer
		caseNode, err := lw.builder.Case(test, body, loc(c))
		if err != nil {
			return nil, err
		}
		cases = append(cases, caseNode)
	}
	sw, err := lw.builder.Switch(disc, cases, loc(n))
	return one(sw, err)
}

func (lw *Lowerer) lowerExprMaybeNil(n surface.Node) (irast.Node, error) {
	if n == nil {
		return nil, nil
	}
	return lw.lowerExpr(n)
}

// lowerExpr lowers one surface expression to its IR counterpart. Operators
// map straight through; "===" / "!==" preserve strictness in metadata
// (spec.md §4.4).
func (lw *Lowerer) lowerExpr(n surface.Node) (irast.Node, error) {
	switch e := n.(type) {
	case *surface.Identifier:
		if _, ok := lw.scope.lookup(e.Name); !ok && !freeIdentifiers[e.Name] {
			if lw.opts.StrictScope {
				return nil, diag.New(diag.KindScopeError, loc(e), "undeclared identifier %q", e.Name)
			}
			lw.warnings = append(lw.warnings, diag.Warningf(diag.KindScopeError, loc(e), "identifier %q is not declared in any enclosing scope", e.Name))
		}
		return lw.builder.Identifier(e.Name, loc(e))

	case *surface.Literal:
		return lw.lowerLiteral(e)

	case *surface.TemplateLiteral:
		return lw.lowerTemplateLiteral(e)

	case *surface.BinaryExpression:
		left, err := lw.lowerExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := lw.lowerExpr(e.Right)
		if err != nil {
			return nil, err
		}
		op, err := lw.builder.BinaryOp(e.Operator, left, right, loc(e))
		if err != nil {
			return nil, err
		}
		if e.Operator == "===" || e.Operator == "!==" {
			op.Metadata = irast.Metadata{"strict": true}
		}
		return op, nil

	case *surface.LogicalExpression:
		left, err := lw.lowerExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := lw.lowerExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return lw.builder.BinaryOp(e.Operator, left, right, loc(e))

	case *surface.UnaryExpression:
		arg, err := lw.lowerExpr(e.Argument)
		if err != nil {
			return nil, err
		}
		return lw.builder.UnaryOp(e.Operator, arg, loc(e))

	case *surface.CallExpression:
		callee, err := lw.lowerExpr(e.Callee)
		if err != nil {
			return nil, err
		}
		args, err := lw.lowerExprList(e.Arguments)
		if err != nil {
			return nil, err
		}
		return lw.builder.Call(callee, args, false, loc(e))

	case *surface.NewExpression:
		// `new E(args)` lowers to Call(E, args) with metadata isNew=true
		// (spec.md §4.4).
		callee, err := lw.lowerExpr(e.Callee)
		if err != nil {
			return nil, err
		}
		args, err := lw.lowerExprList(e.Arguments)
		if err != nil {
			return nil, err
		}
		return lw.builder.Call(callee, args, true, loc(e))

	case *surface.MemberExpression:
		obj, err := lw.lowerExpr(e.Object)
		if err != nil {
			return nil, err
		}
		var prop irast.Node
		if e.Computed {
			prop, err = lw.lowerExpr(e.Property)
		} else {
			id, ok := e.Property.(*surface.Identifier)
			if !ok {
				return nil, diag.New(diag.KindPatternError, loc(e), "non-computed member property must be an identifier, got %T", e.Property)
			}
			prop, err = lw.builder.Identifier(id.Name, loc(id))
		}
		if err != nil {
			return nil, err
		}
		return lw.builder.Member(obj, prop, e.Computed, loc(e))

	case *surface.ArrayExpression:
		elems, err := lw.lowerExprList(e.Elements)
		if err != nil {
			return nil, err
		}
		return lw.builder.ArrayLiteral(elems, loc(e))

	case *surface.ObjectExpression:
		var props []*irast.Property
		for _, p := range e.Properties {
			val, err := lw.lowerExpr(p.Value)
			if err != nil {
				return nil, err
			}
			prop, err := lw.builder.Property(p.Key, val, loc(p))
			if err != nil {
				return nil, err
			}
			props = append(props, prop)
		}
		return lw.builder.ObjectLiteral(props, loc(e))

	case *surface.AssignmentExpression:
		target, err := lw.lowerExpr(e.Target)
		if err != nil {
			return nil, err
		}
		val, err := lw.lowerExpr(e.Value)
		if err != nil {
			return nil, err
		}
		return lw.builder.Assignment(e.Operator, target, val, loc(e))

	case *surface.ConditionalExpression:
		test, err := lw.lowerExpr(e.Test)
		if err != nil {
			return nil, err
		}
		cons, err := lw.lowerExpr(e.Consequent)
		if err != nil {
			return nil, err
		}
		alt, err := lw.lowerExpr(e.Alternate)
		if err != nil {
			return nil, err
		}
		return lw.builder.Conditional(test, cons, alt, loc(e))

	case *surface.FunctionDeclaration:
		return lw.lowerFunctionDecl(e)

	case nil:
		return nil, nil

	default:
		return nil, diag.New(diag.KindUnsupportedConstruct, loc(n), "unsupported expression kind %T", n)
	}
}

func (lw *Lowerer) lowerExprList(in []surface.Node) ([]irast.Node, error) {
	out := make([]irast.Node, len(in))
	for i, e := range in {
		v, err := lw.lowerExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (lw *Lowerer) lowerLiteral(e *surface.Literal) (irast.Node, error) {
	switch e.Kind {
	case surface.LiteralNumber:
		return lw.builder.Literal(e.Value, irtype.NumberT, loc(e))
	case surface.LiteralString:
		return lw.builder.Literal(e.Value, irtype.StringT, loc(e))
	case surface.LiteralBoolean:
		return lw.builder.Literal(e.Value, irtype.BooleanT, loc(e))
	case surface.LiteralNull:
		return lw.builder.Literal(nil, irtype.NullT, loc(e))
	default:
		return nil, diag.New(diag.KindUnsupportedConstruct, loc(e), "unsupported literal kind %q", e.Kind)
	}
}

// lowerTemplateLiteral lowers a template literal to chained BinaryOp("+")
// over string literals and expressions, flagged isConcatenation=true to
// guide the Lua emitter to emit ".." (spec.md §4.4).
func (lw *Lowerer) lowerTemplateLiteral(e *surface.TemplateLiteral) (irast.Node, error) {
	if len(e.Quasis) != len(e.Expressions)+1 {
		return nil, diag.New(diag.KindInternalError, loc(e), "template literal has %d quasis and %d expressions", len(e.Quasis), len(e.Expressions))
	}

	var acc irast.Node
	appendPart := func(part irast.Node) error {
		if acc == nil {
			acc = part
			return nil
		}
		op, err := lw.builder.BinaryOp("+", acc, part, loc(e))
		if err != nil {
			return err
		}
		op.Metadata = irast.Metadata{"isConcatenation": true}
		acc = op
		return nil
	}

	for i, q := range e.Quasis {
		if q != "" || i == 0 {
			lit, err := lw.builder.Literal(q, irtype.StringT, loc(e))
			if err != nil {
				return nil, err
			}
			if err := appendPart(lit); err != nil {
				return nil, err
			}
		}
		if i < len(e.Expressions) {
			val, err := lw.lowerExpr(e.Expressions[i])
			if err != nil {
				return nil, err
			}
			if err := appendPart(val); err != nil {
				return nil, err
			}
		}
	}

	if acc == nil {
		return lw.builder.Literal("", irtype.StringT, loc(e))
	}
	return acc, nil
}
