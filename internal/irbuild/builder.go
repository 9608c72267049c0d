// Package irbuild exposes one structured factory per IR variant (spec.md
// §4.2). Every factory validates the arity and type of its children
// synchronously, assigns a fresh id from the builder's idgen.Generator, and
// never mutates its arguments; a violation returns an InvalidNodeShape
// diagnostic instead of panicking, matching the teacher's builder-level
// validation style (internal/ast factories + internal/bytecode.Compiler).
package irbuild

import (
	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/idgen"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irtype"
)

// Builder allocates IR nodes for a single compilation unit. It is not safe
// for concurrent use.
type Builder struct {
	ids *idgen.Generator
}

// New returns a Builder with a fresh id sequence.
func New() *Builder {
	return &Builder{ids: idgen.New()}
}

// Reset restarts the id sequence, for reuse across compilation units
// (spec.md §4.1 "Reset per compilation unit").
func (b *Builder) Reset() {
	b.ids.Reset()
}

func (b *Builder) nextID() (string, error) {
	id, err := b.ids.Next()
	if err != nil {
		return "", &diag.Diagnostic{Kind: diag.KindInternalError, Message: err.Error()}
	}
	return id, nil
}

func shapeErr(kind irast.Kind, format string, args ...any) error {
	d := diag.New(diag.KindInvalidNodeShape, diag.Location{}, "%s: "+format, append([]any{kind}, args...)...)
	return d
}

// Program builds the IR root. Every element of body must be a declaration or
// statement kind; the builder does not re-validate that here (the Validator
// does, spec.md §4.5), but it does reject a nil slice element.
func (b *Builder) Program(body []irast.Node, loc diag.Location) (*irast.Program, error) {
	for i, n := range body {
		if n == nil {
			return nil, shapeErr(irast.KindProgram, "body[%d] is nil", i)
		}
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Program{
		Base: irast.Base{ID: id, Kind: irast.KindProgram, Location: loc},
		Body: body,
	}, nil
}

// Parameter builds a formal parameter. isRest attaches the isRest metadata
// flag used by destructuring and rest-parameter lowering (spec.md §4.4).
func (b *Builder) Parameter(name string, isRest bool, loc diag.Location) (*irast.Parameter, error) {
	if name == "" {
		return nil, shapeErr(irast.KindParameter, "empty name")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	meta := irast.Metadata{}
	if isRest {
		meta["isRest"] = true
	}
	return &irast.Parameter{
		Base: irast.Base{ID: id, Kind: irast.KindParameter, Location: loc, Metadata: meta},
		Name: name,
	}, nil
}

// FunctionDecl builds a function. Body must be non-nil: "FunctionDecl.body
// is always a Block" (spec.md §3.1 invariant). Parameter names within one
// function must be unique (spec.md §3.1 invariant).
func (b *Builder) FunctionDecl(name string, params []*irast.Parameter, body *irast.Block, loc diag.Location) (*irast.FunctionDecl, error) {
	if body == nil {
		return nil, shapeErr(irast.KindFunctionDecl, "nil body")
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if p == nil {
			return nil, shapeErr(irast.KindFunctionDecl, "nil parameter")
		}
		if seen[p.Name] {
			return nil, shapeErr(irast.KindFunctionDecl, "duplicate parameter name %q", p.Name)
		}
		seen[p.Name] = true
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.FunctionDecl{
		Base:   irast.Base{ID: id, Kind: irast.KindFunctionDecl, Location: loc},
		Name:   name,
		Params: params,
		Body:   body,
	}, nil
}

// VarDecl builds a single-binding declaration. declKind is one of
// "var"/"let"/"const" and is preserved in Metadata (spec.md §4.4).
func (b *Builder) VarDecl(name string, value irast.Node, declKind string, loc diag.Location) (*irast.VarDecl, error) {
	if name == "" {
		return nil, shapeErr(irast.KindVarDecl, "empty name")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.VarDecl{
		Base:  irast.Base{ID: id, Kind: irast.KindVarDecl, Location: loc, Metadata: irast.Metadata{"declKind": declKind}},
		Name:  name,
		Value: value,
	}, nil
}

// Block builds `{ statements... }`. A nil statements slice is replaced with
// an empty, non-nil one, so an empty block never carries nil (spec.md §4.3).
func (b *Builder) Block(statements []irast.Node, loc diag.Location) (*irast.Block, error) {
	if statements == nil {
		statements = []irast.Node{}
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Block{
		Base:       irast.Base{ID: id, Kind: irast.KindBlock, Location: loc},
		Statements: statements,
	}, nil
}

// Return builds `return value;`; value may be nil for a void return.
func (b *Builder) Return(value irast.Node, loc diag.Location) (*irast.Return, error) {
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Return{Base: irast.Base{ID: id, Kind: irast.KindReturn, Location: loc}, Value: value}, nil
}

// If builds `if (condition) consequent else alternate`. condition and
// consequent are required; alternate may be nil.
func (b *Builder) If(condition irast.Node, consequent *irast.Block, alternate irast.Node, loc diag.Location) (*irast.If, error) {
	if condition == nil {
		return nil, shapeErr(irast.KindIf, "nil condition")
	}
	if consequent == nil {
		return nil, shapeErr(irast.KindIf, "nil consequent")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.If{
		Base:       irast.Base{ID: id, Kind: irast.KindIf, Location: loc},
		Condition:  condition,
		Consequent: consequent,
		Alternate:  alternate,
	}, nil
}

// While builds `while (condition) body`.
func (b *Builder) While(condition irast.Node, body *irast.Block, loc diag.Location) (*irast.While, error) {
	if condition == nil || body == nil {
		return nil, shapeErr(irast.KindWhile, "nil condition or body")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.While{Base: irast.Base{ID: id, Kind: irast.KindWhile, Location: loc}, Condition: condition, Body: body}, nil
}

// DoWhile builds `do body while (condition)`.
func (b *Builder) DoWhile(body *irast.Block, condition irast.Node, loc diag.Location) (*irast.DoWhile, error) {
	if condition == nil || body == nil {
		return nil, shapeErr(irast.KindDoWhile, "nil condition or body")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.DoWhile{Base: irast.Base{ID: id, Kind: irast.KindDoWhile, Location: loc}, Condition: condition, Body: body}, nil
}

// For builds a C-style for loop. test is required at this layer (the
// Lowerer supplies a synthetic Literal(true) for a test-less surface loop,
// spec.md §4.4); init and update may be nil.
func (b *Builder) For(init, test, update irast.Node, body *irast.Block, loc diag.Location) (*irast.For, error) {
	if test == nil {
		return nil, shapeErr(irast.KindFor, "nil test")
	}
	if body == nil {
		return nil, shapeErr(irast.KindFor, "nil body")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.For{
		Base:   irast.Base{ID: id, Kind: irast.KindFor, Location: loc},
		Init:   init,
		Test:   test,
		Update: update,
		Body:   body,
	}, nil
}

// Switch builds `switch (discriminant) { cases }`.
func (b *Builder) Switch(discriminant irast.Node, cases []*irast.Case, loc diag.Location) (*irast.Switch, error) {
	if discriminant == nil {
		return nil, shapeErr(irast.KindSwitch, "nil discriminant")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Switch{Base: irast.Base{ID: id, Kind: irast.KindSwitch, Location: loc}, Discriminant: discriminant, Cases: cases}, nil
}

// Case builds one `case test:`/`default:` arm; test is nil for default.
func (b *Builder) Case(test irast.Node, body []irast.Node, loc diag.Location) (*irast.Case, error) {
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = []irast.Node{}
	}
	return &irast.Case{Base: irast.Base{ID: id, Kind: irast.KindCase, Location: loc}, Test: test, Body: body}, nil
}

// Break builds `break;`.
func (b *Builder) Break(loc diag.Location) (*irast.Break, error) {
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Break{Base: irast.Base{ID: id, Kind: irast.KindBreak, Location: loc}}, nil
}

// Continue builds `continue;`.
func (b *Builder) Continue(loc diag.Location) (*irast.Continue, error) {
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Continue{Base: irast.Base{ID: id, Kind: irast.KindContinue, Location: loc}}, nil
}

// ExpressionStmt builds a statement wrapping a required expression.
func (b *Builder) ExpressionStmt(expr irast.Node, loc diag.Location) (*irast.ExpressionStmt, error) {
	if expr == nil {
		return nil, shapeErr(irast.KindExpressionStmt, "nil expression")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.ExpressionStmt{Base: irast.Base{ID: id, Kind: irast.KindExpressionStmt, Location: loc}, Expression: expr}, nil
}

// BinaryOp builds `left operator right`.
func (b *Builder) BinaryOp(operator string, left, right irast.Node, loc diag.Location) (*irast.BinaryOp, error) {
	if operator == "" || left == nil || right == nil {
		return nil, shapeErr(irast.KindBinaryOp, "missing operator or operand")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.BinaryOp{Base: irast.Base{ID: id, Kind: irast.KindBinaryOp, Location: loc}, Operator: operator, Left: left, Right: right}, nil
}

// UnaryOp builds `operator argument`.
func (b *Builder) UnaryOp(operator string, argument irast.Node, loc diag.Location) (*irast.UnaryOp, error) {
	if operator == "" || argument == nil {
		return nil, shapeErr(irast.KindUnaryOp, "missing operator or argument")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.UnaryOp{Base: irast.Base{ID: id, Kind: irast.KindUnaryOp, Location: loc}, Operator: operator, Argument: argument}, nil
}

// Call builds `callee(arguments...)`. isNew attaches the metadata flag that
// distinguishes a constructor call (spec.md §4.4).
func (b *Builder) Call(callee irast.Node, args []irast.Node, isNew bool, loc diag.Location) (*irast.Call, error) {
	if callee == nil {
		return nil, shapeErr(irast.KindCall, "nil callee")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	meta := irast.Metadata{}
	if isNew {
		meta["isNew"] = true
	}
	return &irast.Call{Base: irast.Base{ID: id, Kind: irast.KindCall, Location: loc, Metadata: meta}, Callee: callee, Arguments: args}, nil
}

// Member builds `object.property` or `object[property]`.
func (b *Builder) Member(object, property irast.Node, computed bool, loc diag.Location) (*irast.Member, error) {
	if object == nil || property == nil {
		return nil, shapeErr(irast.KindMember, "nil object or property")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Member{Base: irast.Base{ID: id, Kind: irast.KindMember, Location: loc}, Object: object, Property: property, Computed: computed}, nil
}

// ArrayLiteral builds `[elements...]`.
func (b *Builder) ArrayLiteral(elements []irast.Node, loc diag.Location) (*irast.ArrayLiteral, error) {
	if elements == nil {
		elements = []irast.Node{}
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.ArrayLiteral{Base: irast.Base{ID: id, Kind: irast.KindArrayLiteral, Location: loc}, Elements: elements}, nil
}

// ObjectLiteral builds `{ properties... }`.
func (b *Builder) ObjectLiteral(properties []*irast.Property, loc diag.Location) (*irast.ObjectLiteral, error) {
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.ObjectLiteral{Base: irast.Base{ID: id, Kind: irast.KindObjectLiteral, Location: loc}, Properties: properties}, nil
}

// Property builds one `key: value` entry of an ObjectLiteral.
func (b *Builder) Property(key string, value irast.Node, loc diag.Location) (*irast.Property, error) {
	if key == "" || value == nil {
		return nil, shapeErr(irast.KindProperty, "missing key or value")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Property{Base: irast.Base{ID: id, Kind: irast.KindProperty, Location: loc}, Key: key, Value: value}, nil
}

// Identifier builds a name reference.
func (b *Builder) Identifier(name string, loc diag.Location) (*irast.Identifier, error) {
	if name == "" {
		return nil, shapeErr(irast.KindIdentifier, "empty name")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Identifier{Base: irast.Base{ID: id, Kind: irast.KindIdentifier, Location: loc}, Name: name}, nil
}

// Literal builds a primitive constant. value's dynamic type must match typ
// per the invariant "Literal.value matches the declared primitive type"
// (spec.md §3.1); the caller supplies typ because only the Lowerer knows the
// source-level distinction between e.g. a numeric and a null literal.
func (b *Builder) Literal(value any, typ irtype.Type, loc diag.Location) (*irast.Literal, error) {
	if err := checkLiteralShape(value, typ); err != nil {
		return nil, err
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	n := &irast.Literal{Base: irast.Base{ID: id, Kind: irast.KindLiteral, Location: loc}, Value: value}
	n.SetNodeType(typ)
	return n, nil
}

func checkLiteralShape(value any, typ irtype.Type) error {
	pt, ok := typ.(irtype.PrimitiveType)
	if !ok {
		return nil // non-primitive declared type (e.g. Unknown): accept as-is
	}
	switch pt.Kind {
	case irtype.Number:
		if _, ok := value.(float64); !ok {
			return shapeErr(irast.KindLiteral, "value %T does not match declared type number", value)
		}
	case irtype.String:
		if _, ok := value.(string); !ok {
			return shapeErr(irast.KindLiteral, "value %T does not match declared type string", value)
		}
	case irtype.Boolean:
		if _, ok := value.(bool); !ok {
			return shapeErr(irast.KindLiteral, "value %T does not match declared type boolean", value)
		}
	case irtype.Null:
		if value != nil {
			return shapeErr(irast.KindLiteral, "value %T does not match declared type null", value)
		}
	}
	return nil
}

// Assignment builds `target operator value`.
func (b *Builder) Assignment(operator string, target, value irast.Node, loc diag.Location) (*irast.Assignment, error) {
	if operator == "" || target == nil || value == nil {
		return nil, shapeErr(irast.KindAssignment, "missing operator, target, or value")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Assignment{Base: irast.Base{ID: id, Kind: irast.KindAssignment, Location: loc}, Operator: operator, Target: target, Value: value}, nil
}

// Conditional builds `test ? consequent : alternate`.
func (b *Builder) Conditional(test, consequent, alternate irast.Node, loc diag.Location) (*irast.Conditional, error) {
	if test == nil || consequent == nil || alternate == nil {
		return nil, shapeErr(irast.KindConditional, "missing test, consequent, or alternate")
	}
	id, err := b.nextID()
	if err != nil {
		return nil, err
	}
	return &irast.Conditional{Base: irast.Base{ID: id, Kind: irast.KindConditional, Location: loc}, Test: test, Consequent: consequent, Alternate: alternate}, nil
}

// DeclareAndInit is a composite factory: thin sugar expanding to a VarDecl
// whose Value is an Assignment-free initializer expression, exactly the
// shape a plain `let x = expr;` lowers to. Unlike VarDecl it rejects a nil
// initializer (spec.md §4.2 "Composite factories... expand to primitive
// factories").
func (b *Builder) DeclareAndInit(name string, value irast.Node, declKind string, loc diag.Location) (*irast.VarDecl, error) {
	if value == nil {
		return nil, shapeErr(irast.KindVarDecl, "declareAndInit requires a non-nil initializer")
	}
	return b.VarDecl(name, value, declKind, loc)
}
