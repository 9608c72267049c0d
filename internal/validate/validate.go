// Package validate implements the Validator (spec.md §4.5): a read-only pass
// over canonical IR that checks structural, referential, type, control-flow,
// and uniqueness invariants before a tree is handed to the Serializer or an
// emitter. The Validator never mutates the tree it walks, mirroring the
// teacher's passes.ValidationPass running over an already-built AST.
package validate

import (
	"fmt"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irtype"
)

// Options controls which checks run. All checks are on by default; these
// flags exist for staged adoption the way the teacher's PassContext gates
// later passes behind earlier ones succeeding (SPEC_FULL.md §3).
type Options struct {
	// SkipTypeChecks disables the boolean-condition checks on if, loop, for
	// and conditional tests (§4.5 "type"). Literals are still checked
	// against their declared primitive type, so an untyped Literal is
	// reported either way.
	SkipTypeChecks bool
}

// validator accumulates diagnostics while walking one IR tree. It never
// panics on a malformed tree; every check degrades to a diagnostic.
type validator struct {
	opts      Options
	diags     []*diag.Diagnostic
	ids       map[string]bool
	loopDepth int
	funcNames map[string]bool
}

// Validate checks a canonical IR Program and returns every diagnostic found,
// in deterministic pre-order-traversal order (spec.md §4.5). A nil slice
// return means the tree is valid.
func Validate(program *irast.Program, opts Options) []*diag.Diagnostic {
	v := &validator{opts: opts, ids: make(map[string]bool), funcNames: make(map[string]bool)}
	v.checkUniqueIDs(program)
	v.validateProgram(program)
	return v.diags
}

func (v *validator) errorf(n irast.Node, kind diag.Kind, format string, args ...any) {
	v.diags = append(v.diags, diag.New(kind, n.Loc(), format, args...))
}

// checkUniqueIDs walks the whole tree once up front so a duplicate-id defect
// is reported regardless of where in the tree it occurs (spec.md §3.1
// invariant "every node id is unique within a tree").
func (v *validator) checkUniqueIDs(program *irast.Program) {
	irast.Walk(program, func(n irast.Node) {
		id := n.NodeID()
		if id == "" {
			v.errorf(n, diag.KindInvalidNodeShape, "%s has an empty node id", n.NodeKind())
			return
		}
		if v.ids[id] {
			v.errorf(n, diag.KindInvalidNodeShape, "duplicate node id %q on a %s", id, n.NodeKind())
			return
		}
		v.ids[id] = true
	})
}

func (v *validator) validateProgram(p *irast.Program) {
	if p == nil {
		return
	}
	for _, n := range p.Body {
		v.validateTopLevel(n)
	}
}

// validateTopLevel rejects anything that is not a declaration or statement
// kind at Program scope (spec.md §3.1 invariant "Program contains only
// top-level declarations and statements").
func (v *validator) validateTopLevel(n irast.Node) {
	switch s := n.(type) {
	case *irast.FunctionDecl:
		if v.funcNames[s.Name] && s.Name != "" {
			v.errorf(s, diag.KindScopeError, "duplicate top-level function declaration %q", s.Name)
		}
		v.funcNames[s.Name] = true
		v.validateFunctionDecl(s)
	case *irast.VarDecl:
		v.validateVarDecl(s)
	default:
		v.validateStatement(n)
	}
}

func (v *validator) validateFunctionDecl(f *irast.FunctionDecl) {
	if f.Body == nil {
		v.errorf(f, diag.KindInvalidNodeShape, "FunctionDecl %q has a nil body, must always be a Block", f.Name)
		return
	}
	seen := make(map[string]bool, len(f.Params))
	for _, p := range f.Params {
		if p == nil {
			v.errorf(f, diag.KindInvalidNodeShape, "FunctionDecl %q has a nil parameter", f.Name)
			continue
		}
		if seen[p.Name] {
			v.errorf(p, diag.KindScopeError, "duplicate parameter name %q in function %q", p.Name, f.Name)
		}
		seen[p.Name] = true
	}
	v.validateBlock(f.Body)
}

func (v *validator) validateVarDecl(d *irast.VarDecl) {
	if d.Name == "" {
		v.errorf(d, diag.KindInvalidNodeShape, "VarDecl has an empty name")
	}
	if d.Value != nil {
		v.validateExpr(d.Value)
	}
}

func (v *validator) validateBlock(b *irast.Block) {
	if b == nil {
		return
	}
	if b.Statements == nil {
		v.errorf(b, diag.KindInvalidNodeShape, "Block has a nil statement slice, want a non-nil empty slice")
	}
	for _, s := range b.Statements {
		v.validateStatement(s)
	}
}

func (v *validator) validateStatement(n irast.Node) {
	if n == nil {
		return
	}
	switch s := n.(type) {
	case *irast.VarDecl:
		v.validateVarDecl(s)
	case *irast.FunctionDecl:
		v.validateFunctionDecl(s)
	case *irast.Block:
		v.validateBlock(s)
	case *irast.Return:
		if s.Value != nil {
			v.validateExpr(s.Value)
		}
	case *irast.If:
		v.validateIf(s)
	case *irast.While:
		v.validateLoop(s.Condition, s.Body)
	case *irast.DoWhile:
		v.validateLoop(s.Condition, s.Body)
	case *irast.For:
		v.validateFor(s)
	case *irast.Switch:
		v.validateSwitch(s)
	case *irast.Break:
		if v.loopDepth == 0 {
			v.errorf(s, diag.KindScopeError, "break statement outside of a loop or switch")
		}
	case *irast.Continue:
		if v.loopDepth == 0 {
			v.errorf(s, diag.KindScopeError, "continue statement outside of a loop")
		}
	case *irast.ExpressionStmt:
		v.validateExpr(s.Expression)
	default:
		v.errorf(n, diag.KindInvalidNodeShape, "unexpected node kind %s in statement position", n.NodeKind())
	}
}

func (v *validator) validateIf(s *irast.If) {
	v.validateExpr(s.Condition)
	if !v.opts.SkipTypeChecks {
		v.checkBooleanCondition(s.Condition)
	}
	v.validateBlock(s.Consequent)
	if s.Alternate != nil {
		v.validateStatement(s.Alternate)
	}
}

func (v *validator) validateLoop(condition irast.Node, body *irast.Block) {
	v.validateExpr(condition)
	if !v.opts.SkipTypeChecks {
		v.checkBooleanCondition(condition)
	}
	v.loopDepth++
	v.validateBlock(body)
	v.loopDepth--
}

func (v *validator) validateFor(s *irast.For) {
	if s.Init != nil {
		v.validateStatement(s.Init)
	}
	if s.Test == nil {
		v.errorf(s, diag.KindInvalidNodeShape, "For.test is nil, the lowerer must supply a synthetic true literal")
	} else {
		v.validateExpr(s.Test)
		if !v.opts.SkipTypeChecks {
			v.checkBooleanCondition(s.Test)
		}
	}
	if s.Update != nil {
		v.validateExpr(s.Update)
	}
	v.loopDepth++
	v.validateBlock(s.Body)
	v.loopDepth--
}

func (v *validator) validateSwitch(s *irast.Switch) {
	v.validateExpr(s.Discriminant)
	seenDefault := false
	v.loopDepth++ // break inside a switch case is valid, spec.md §4.5
	for _, c := range s.Cases {
		if c.Test == nil {
			if seenDefault {
				v.errorf(c, diag.KindInvalidNodeShape, "switch has more than one default case")
			}
			seenDefault = true
		} else {
			v.validateExpr(c.Test)
		}
		for _, stmt := range c.Body {
			v.validateStatement(stmt)
		}
	}
	v.loopDepth--
}

func (v *validator) validateExpr(n irast.Node) {
	if n == nil {
		return
	}
	switch e := n.(type) {
	case *irast.Identifier:
		if e.Name == "" {
			v.errorf(e, diag.KindInvalidNodeShape, "Identifier has an empty name")
		}
	case *irast.Literal:
		v.validateLiteral(e)
	case *irast.BinaryOp:
		if e.Operator == "" {
			v.errorf(e, diag.KindInvalidNodeShape, "BinaryOp has an empty operator")
		}
		v.validateExpr(e.Left)
		v.validateExpr(e.Right)
	case *irast.UnaryOp:
		if e.Operator == "" {
			v.errorf(e, diag.KindInvalidNodeShape, "UnaryOp has an empty operator")
		}
		v.validateExpr(e.Argument)
	case *irast.Call:
		v.validateExpr(e.Callee)
		for _, a := range e.Arguments {
			v.validateExpr(a)
		}
	case *irast.Member:
		v.validateExpr(e.Object)
		v.validateExpr(e.Property)
		if !e.Computed {
			if _, ok := e.Property.(*irast.Identifier); !ok {
				v.errorf(e, diag.KindInvalidNodeShape, "non-computed Member.property must be an Identifier, got %s", e.Property.NodeKind())
			}
		}
	case *irast.ArrayLiteral:
		for _, el := range e.Elements {
			v.validateExpr(el)
		}
	case *irast.ObjectLiteral:
		seen := make(map[string]bool, len(e.Properties))
		for _, p := range e.Properties {
			if seen[p.Key] {
				v.errorf(p, diag.KindInvalidNodeShape, "duplicate object literal key %q", p.Key)
			}
			seen[p.Key] = true
			v.validateExpr(p.Value)
		}
	case *irast.Assignment:
		if e.Operator == "" {
			v.errorf(e, diag.KindInvalidNodeShape, "Assignment has an empty operator")
		}
		v.validateExpr(e.Target)
		v.validateExpr(e.Value)
		v.checkAssignmentTarget(e)
	case *irast.Conditional:
		v.validateExpr(e.Test)
		if !v.opts.SkipTypeChecks {
			v.checkBooleanCondition(e.Test)
		}
		v.validateExpr(e.Consequent)
		v.validateExpr(e.Alternate)
	case *irast.FunctionDecl:
		v.validateFunctionDecl(e)
	default:
		v.errorf(n, diag.KindInvalidNodeShape, "unexpected node kind %s in expression position", n.NodeKind())
	}
}

func (v *validator) validateLiteral(l *irast.Literal) {
	t, ok := l.NodeType().(irtype.PrimitiveType)
	if !ok {
		v.errorf(l, diag.KindTypeError, "Literal has no declared primitive type")
		return
	}
	var shapeOK bool
	switch t.Kind {
	case irtype.Number:
		_, shapeOK = l.Value.(float64)
	case irtype.String:
		_, shapeOK = l.Value.(string)
	case irtype.Boolean:
		_, shapeOK = l.Value.(bool)
	case irtype.Null:
		shapeOK = l.Value == nil
	default:
		shapeOK = true
	}
	if !shapeOK {
		v.errorf(l, diag.KindTypeError, "Literal.value %v does not match declared type %s", l.Value, t)
	}
}

// checkAssignmentTarget rejects assigning into anything that is not an
// lvalue shape: Identifier or Member (spec.md §4.5 "assignment target must
// be an Identifier or Member").
func (v *validator) checkAssignmentTarget(a *irast.Assignment) {
	switch a.Target.(type) {
	case *irast.Identifier, *irast.Member:
		return
	default:
		v.errorf(a, diag.KindPatternError, "assignment target must be an Identifier or Member, got %s", a.Target.NodeKind())
	}
}

// checkBooleanCondition enforces that a control-flow condition's declared
// type is boolean, Unknown, or untyped (spec.md §4.5 "type" checks run only
// against nodes a prior pass actually annotated).
func (v *validator) checkBooleanCondition(cond irast.Node) {
	t := cond.NodeType()
	if t == nil || irtype.IsUnknown(t) {
		return
	}
	if !irtype.Equal(t, irtype.BooleanT) {
		v.errorf(cond, diag.KindTypeError, "condition must be boolean, got %s", t)
	}
}

// Summary renders a short human-readable count, mirroring the teacher's
// PassContext error-count banner at the end of a compilation.
func Summary(diags []*diag.Diagnostic) string {
	errs, warnings := diag.Split(diags)
	return fmt.Sprintf("%d error(s), %d warning(s)", len(errs), len(warnings))
}
