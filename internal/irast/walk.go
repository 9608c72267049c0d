package irast

// Walk performs a deterministic pre-order traversal of an IR tree, calling
// visit on every node including n itself. Traversal order matches field
// declaration order within each variant, which is what makes validator
// diagnostics order-stable (spec.md §4.5 "order of errors is deterministic
// by pre-order traversal").
func Walk(n Node, visit func(Node)) {
	if n == nil || isNilNode(n) {
		return
	}
	visit(n)

	switch v := n.(type) {
	case *Program:
		for _, c := range v.Body {
			Walk(c, visit)
		}
	case *FunctionDecl:
		for _, p := range v.Params {
			Walk(p, visit)
		}
		Walk(v.Body, visit)
	case *Parameter:
		// leaf
	case *VarDecl:
		Walk(v.Value, visit)
	case *Block:
		for _, s := range v.Statements {
			Walk(s, visit)
		}
	case *Return:
		Walk(v.Value, visit)
	case *If:
		Walk(v.Condition, visit)
		Walk(v.Consequent, visit)
		Walk(v.Alternate, visit)
	case *While:
		Walk(v.Condition, visit)
		Walk(v.Body, visit)
	case *DoWhile:
		Walk(v.Body, visit)
		Walk(v.Condition, visit)
	case *For:
		Walk(v.Init, visit)
		Walk(v.Test, visit)
		Walk(v.Update, visit)
		Walk(v.Body, visit)
	case *Switch:
		Walk(v.Discriminant, visit)
		for _, c := range v.Cases {
			Walk(c, visit)
		}
	case *Case:
		Walk(v.Test, visit)
		for _, s := range v.Body {
			Walk(s, visit)
		}
	case *Break, *Continue:
		// leaf
	case *ExpressionStmt:
		Walk(v.Expression, visit)
	case *BinaryOp:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *UnaryOp:
		Walk(v.Argument, visit)
	case *Call:
		Walk(v.Callee, visit)
		for _, a := range v.Arguments {
			Walk(a, visit)
		}
	case *Member:
		Walk(v.Object, visit)
		Walk(v.Property, visit)
	case *ArrayLiteral:
		for _, e := range v.Elements {
			Walk(e, visit)
		}
	case *ObjectLiteral:
		for _, p := range v.Properties {
			Walk(p, visit)
		}
	case *Property:
		Walk(v.Value, visit)
	case *Identifier, *Literal:
		// leaf
	case *Assignment:
		Walk(v.Target, visit)
		Walk(v.Value, visit)
	case *Conditional:
		Walk(v.Test, visit)
		Walk(v.Consequent, visit)
		Walk(v.Alternate, visit)
	}
}

// isNilNode reports whether n holds a typed nil pointer (e.g. a (*Block)(nil)
// boxed into the Node interface), which is not == nil but must still be
// skipped by Walk.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Program:
		return v == nil
	case *FunctionDecl:
		return v == nil
	case *Parameter:
		return v == nil
	case *VarDecl:
		return v == nil
	case *Block:
		return v == nil
	case *Return:
		return v == nil
	case *If:
		return v == nil
	case *While:
		return v == nil
	case *DoWhile:
		return v == nil
	case *For:
		return v == nil
	case *Switch:
		return v == nil
	case *Case:
		return v == nil
	case *Break:
		return v == nil
	case *Continue:
		return v == nil
	case *ExpressionStmt:
		return v == nil
	case *BinaryOp:
		return v == nil
	case *UnaryOp:
		return v == nil
	case *Call:
		return v == nil
	case *Member:
		return v == nil
	case *ArrayLiteral:
		return v == nil
	case *ObjectLiteral:
		return v == nil
	case *Property:
		return v == nil
	case *Identifier:
		return v == nil
	case *Literal:
		return v == nil
	case *Assignment:
		return v == nil
	case *Conditional:
		return v == nil
	default:
		return false
	}
}
