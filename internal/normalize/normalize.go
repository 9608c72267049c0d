// Package normalize implements the Normalizer (spec.md §4.3): a total,
// surface-AST-to-surface-AST cleanup pass that runs before lowering. The
// pass is total — unknown node kinds pass through untouched and are instead
// rejected by the Lowerer with UnsupportedConstruct (spec.md §4.3 "Failure
// mode").
package normalize

import "github.com/cwbudde/go-xir/internal/surface"

// Normalize returns a new, normalized copy of program. It never mutates its
// argument (consistent with the builder's "never mutates arguments" policy,
// spec.md §4.2) and is idempotent: Normalize(Normalize(p)) == Normalize(p)
// field-for-field for any p (spec.md §8.1).
func Normalize(program *surface.Program) *surface.Program {
	n := &normalizer{}
	return &surface.Program{Body: n.stmts(program.Body)}
}

type normalizer struct{}

func (n *normalizer) stmts(in []surface.Node) []surface.Node {
	out := make([]surface.Node, 0, len(in))
	for _, s := range in {
		out = append(out, n.splitDeclarators(s)...)
	}
	return out
}

// splitDeclarators expands a single VariableDeclaration with multiple
// declarators into one VariableDeclaration per declarator, recursing into
// nested bodies regardless.
func (n *normalizer) splitDeclarators(node surface.Node) []surface.Node {
	vd, ok := node.(*surface.VariableDeclaration)
	if !ok {
		return []surface.Node{n.stmt(node)}
	}
	out := make([]surface.Node, 0, len(vd.Declarations))
	for _, d := range vd.Declarations {
		out = append(out, &surface.VariableDeclaration{
			Loc:          vd.Loc,
			Kind:         vd.Kind,
			Declarations: []*surface.VariableDeclarator{n.declarator(d)},
		})
	}
	return out
}

func (n *normalizer) declarator(d *surface.VariableDeclarator) *surface.VariableDeclarator {
	return &surface.VariableDeclarator{Loc: d.Loc, ID: d.ID, Init: n.expr(d.Init)}
}

// stmt normalizes one statement node, wrapping single-statement if/while/for
// bodies in blocks and recursing into substructure.
func (n *normalizer) stmt(node surface.Node) surface.Node {
	switch s := node.(type) {
	case *surface.BlockStatement:
		return &surface.BlockStatement{Loc: s.Loc, Body: n.stmts(s.Body)}

	case *surface.IfStatement:
		var alt surface.Node
		if s.Alternate != nil {
			alt = n.asBlockUnlessIf(s.Alternate)
		}
		return &surface.IfStatement{
			Loc:        s.Loc,
			Test:       n.expr(s.Test),
			Consequent: n.asBlock(s.Consequent),
			Alternate:  alt,
		}

	case *surface.WhileStatement:
		return &surface.WhileStatement{Loc: s.Loc, Test: n.expr(s.Test), Body: n.asBlock(s.Body)}

	case *surface.DoWhileStatement:
		return &surface.DoWhileStatement{Loc: s.Loc, Body: n.asBlock(s.Body), Test: n.expr(s.Test)}

	case *surface.ForStatement:
		return &surface.ForStatement{
			Loc:    s.Loc,
			Init:   n.forInit(s.Init),
			Test:   n.expr(s.Test),
			Update: n.expr(s.Update),
			Body:   n.asBlock(s.Body),
		}

	case *surface.SwitchStatement:
		cases := make([]*surface.SwitchCase, len(s.Cases))
		for i, c := range s.Cases {
			cases[i] = &surface.SwitchCase{Loc: c.Loc, Test: n.expr(c.Test), Body: n.stmts(c.Body)}
		}
		return &surface.SwitchStatement{Loc: s.Loc, Discriminant: n.expr(s.Discriminant), Cases: cases}

	case *surface.ReturnStatement:
		return &surface.ReturnStatement{Loc: s.Loc, Value: n.expr(s.Value)}

	case *surface.ExpressionStatement:
		return &surface.ExpressionStatement{Loc: s.Loc, Expression: n.expr(s.Expression)}

	case *surface.FunctionDeclaration:
		return n.function(s)

	case *surface.BreakStatement, *surface.ContinueStatement, nil:
		return s

	default:
		// Unknown statement kind: pass through untouched (total normalizer).
		return s
	}
}

func (n *normalizer) forInit(node surface.Node) surface.Node {
	if node == nil {
		return nil
	}
	if vd, ok := node.(*surface.VariableDeclaration); ok {
		decls := make([]*surface.VariableDeclarator, len(vd.Declarations))
		for i, d := range vd.Declarations {
			decls[i] = n.declarator(d)
		}
		return &surface.VariableDeclaration{Loc: vd.Loc, Kind: vd.Kind, Declarations: decls}
	}
	return n.expr(node)
}

// asBlock wraps a single statement body in a Block unless it already is one
// (spec.md §4.3 "Single-statement bodies... are wrapped in blocks").
func (n *normalizer) asBlock(node surface.Node) *surface.BlockStatement {
	if b, ok := node.(*surface.BlockStatement); ok {
		return &surface.BlockStatement{Loc: b.Loc, Body: n.stmts(b.Body)}
	}
	if node == nil {
		return &surface.BlockStatement{Body: []surface.Node{}}
	}
	normalized := n.stmt(node)
	return &surface.BlockStatement{Loc: node.Pos(), Body: []surface.Node{normalized}}
}

// asBlockUnlessIf preserves an `else if` chain as a bare IfStatement rather
// than wrapping it in an extra Block, since the Lowerer treats a nested If as
// the natural representation of an else-if chain (irast.If.Alternate).
func (n *normalizer) asBlockUnlessIf(node surface.Node) surface.Node {
	if _, ok := node.(*surface.IfStatement); ok {
		return n.stmt(node)
	}
	return n.asBlock(node)
}

// function rewrites an arrow function with an expression body into a block
// body containing a single return (spec.md §4.3), and normalizes a regular
// function's existing block body.
func (n *normalizer) function(f *surface.FunctionDeclaration) *surface.FunctionDeclaration {
	var body *surface.BlockStatement
	switch b := f.Body.(type) {
	case nil:
		body = &surface.BlockStatement{Body: []surface.Node{}}
	case *surface.BlockStatement:
		body = n.asBlock(b)
	default:
		// Arrow function with an expression body: rewrite to a block body
		// containing a single return (spec.md §4.3).
		body = &surface.BlockStatement{Loc: b.Pos(), Body: []surface.Node{
			&surface.ReturnStatement{Loc: b.Pos(), Value: n.expr(b)},
		}}
	}
	return &surface.FunctionDeclaration{
		Loc:    f.Loc,
		Name:   f.Name,
		Params: f.Params,
		Body:   body,
		Arrow:  f.Arrow,
	}
}

// expr normalizes an expression subtree: recurse into substructure without
// changing its shape (expressions carry no single-statement-body or
// multi-declarator concerns).
func (n *normalizer) expr(node surface.Node) surface.Node {
	switch e := node.(type) {
	case nil:
		return nil
	case *surface.BinaryExpression:
		return &surface.BinaryExpression{Loc: e.Loc, Operator: e.Operator, Left: n.expr(e.Left), Right: n.expr(e.Right)}
	case *surface.LogicalExpression:
		return &surface.LogicalExpression{Loc: e.Loc, Operator: e.Operator, Left: n.expr(e.Left), Right: n.expr(e.Right)}
	case *surface.UnaryExpression:
		return &surface.UnaryExpression{Loc: e.Loc, Operator: e.Operator, Argument: n.expr(e.Argument)}
	case *surface.CallExpression:
		return &surface.CallExpression{Loc: e.Loc, Callee: n.expr(e.Callee), Arguments: n.exprs(e.Arguments)}
	case *surface.NewExpression:
		return &surface.NewExpression{Loc: e.Loc, Callee: n.expr(e.Callee), Arguments: n.exprs(e.Arguments)}
	case *surface.MemberExpression:
		return &surface.MemberExpression{Loc: e.Loc, Object: n.expr(e.Object), Property: n.expr(e.Property), Computed: e.Computed}
	case *surface.ArrayExpression:
		return &surface.ArrayExpression{Loc: e.Loc, Elements: n.exprs(e.Elements)}
	case *surface.ObjectExpression:
		props := make([]*surface.Property, len(e.Properties))
		for i, p := range e.Properties {
			props[i] = &surface.Property{Loc: p.Loc, Key: p.Key, Value: n.expr(p.Value)}
		}
		return &surface.ObjectExpression{Loc: e.Loc, Properties: props}
	case *surface.AssignmentExpression:
		return &surface.AssignmentExpression{Loc: e.Loc, Operator: e.Operator, Target: n.expr(e.Target), Value: n.expr(e.Value)}
	case *surface.ConditionalExpression:
		return &surface.ConditionalExpression{Loc: e.Loc, Test: n.expr(e.Test), Consequent: n.expr(e.Consequent), Alternate: n.expr(e.Alternate)}
	case *surface.TemplateLiteral:
		return &surface.TemplateLiteral{Loc: e.Loc, Quasis: e.Quasis, Expressions: n.exprs(e.Expressions)}
	case *surface.FunctionDeclaration:
		return n.function(e)
	default:
		return node
	}
}

func (n *normalizer) exprs(in []surface.Node) []surface.Node {
	out := make([]surface.Node, len(in))
	for i, e := range in {
		out[i] = n.expr(e)
	}
	return out
}
