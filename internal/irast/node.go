// Package irast defines the canonical IR: a closed set of tagged-variant
// node types shared by the Lowerer, Validator, Serializer, and every backend
// emitter (spec.md §3.1). Each variant is a distinct Go type embedding the
// shared Base (id, kind, type, location, metadata). There is no visitor
// method dispatch (spec.md §9); consumers use a type switch on the concrete
// node type.
package irast

import (
	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irtype"
)

// Kind is the variant tag of an IR node (spec.md §3.1).
type Kind string

const (
	KindProgram        Kind = "Program"
	KindFunctionDecl   Kind = "FunctionDecl"
	KindVarDecl        Kind = "VarDecl"
	KindParameter      Kind = "Parameter"
	KindBlock          Kind = "Block"
	KindReturn         Kind = "Return"
	KindIf             Kind = "If"
	KindWhile          Kind = "While"
	KindDoWhile        Kind = "DoWhile"
	KindFor            Kind = "For"
	KindSwitch         Kind = "Switch"
	KindCase           Kind = "Case"
	KindBreak          Kind = "Break"
	KindContinue       Kind = "Continue"
	KindExpressionStmt Kind = "ExpressionStmt"
	KindBinaryOp       Kind = "BinaryOp"
	KindUnaryOp        Kind = "UnaryOp"
	KindCall           Kind = "Call"
	KindMember         Kind = "Member"
	KindArrayLiteral   Kind = "ArrayLiteral"
	KindObjectLiteral  Kind = "ObjectLiteral"
	KindProperty       Kind = "Property"
	KindIdentifier     Kind = "Identifier"
	KindLiteral        Kind = "Literal"
	KindAssignment     Kind = "Assignment"
	KindConditional    Kind = "Conditional"
)

// Metadata is the non-semantic hint map carried by every node (e.g. isNew,
// isRest, isConcatenation). Values are scalars: bool, string, or int.
type Metadata map[string]any

// Bool reads a boolean metadata flag, defaulting to false when absent or of
// the wrong type.
func (m Metadata) Bool(key string) bool {
	v, _ := m[key].(bool)
	return v
}

// String reads a string metadata value, defaulting to "" when absent.
func (m Metadata) String(key string) string {
	v, _ := m[key].(string)
	return v
}

// Int reads an int metadata value, defaulting to 0 when absent.
func (m Metadata) Int(key string) int {
	v, _ := m[key].(int)
	return v
}

// Node is the base interface every IR variant implements. It is satisfied by
// embedding Base; no variant implements it by hand.
type Node interface {
	NodeID() string
	NodeKind() Kind
	NodeType() irtype.Type
	SetNodeType(irtype.Type)
	Loc() diag.Location
	Meta() Metadata
	irNode()
}

// Base carries the fields common to every node (spec.md §3.1): id, kind,
// optional type, optional location, and metadata. Mutation is forbidden once
// a tree is frozen (phase Validated, §3.3); Base itself does not enforce
// that, the phase discipline lives in the builder and validator.
type Base struct {
	ID       string
	Kind     Kind
	Type     irtype.Type
	Location diag.Location
	Metadata Metadata
}

func (b *Base) irNode()                      {}
func (b *Base) NodeID() string                { return b.ID }
func (b *Base) NodeKind() Kind                 { return b.Kind }
func (b *Base) NodeType() irtype.Type          { return b.Type }
func (b *Base) SetNodeType(t irtype.Type)      { b.Type = t }
func (b *Base) Loc() diag.Location             { return b.Location }
func (b *Base) Meta() Metadata {
	if b.Metadata == nil {
		return Metadata{}
	}
	return b.Metadata
}

// Program is the IR root; it contains only top-level declarations and
// statements (spec.md §3.1 invariant).
type Program struct {
	Base
	Body []Node
}

// Parameter is one formal parameter of a FunctionDecl. The isRest metadata
// flag marks a rest parameter (`...args`).
type Parameter struct {
	Base
	Name string
}

// FunctionDecl is a named or anonymous function. Body is always a Block
// (spec.md §3.1 invariant); the normalizer guarantees this upstream of the
// lowerer.
type FunctionDecl struct {
	Base
	Name   string
	Params []*Parameter
	Body   *Block
}

// VarDecl is a single-binding variable declaration. The declaration kind
// (var/let/const) is preserved in Metadata under the "declKind" key
// (spec.md §4.4).
type VarDecl struct {
	Base
	Name  string
	Value Node // may be nil
}

// Block is `{ statements... }`. An empty block has a non-nil, zero-length
// Statements slice (spec.md §4.3).
type Block struct {
	Base
	Statements []Node
}

// Return is `return <value>;`; Value is nil for a void-returning function.
type Return struct {
	Base
	Value Node
}

// If is `if (condition) consequent else alternate`. Consequent is always a
// Block; Alternate may be nil, a Block, or a nested If (an else-if chain).
type If struct {
	Base
	Condition  Node
	Consequent *Block
	Alternate  Node
}

// While is `while (condition) body`; Body is always a Block.
type While struct {
	Base
	Condition Node
	Body      *Block
}

// DoWhile is `do body while (condition)`; Body is always a Block.
type DoWhile struct {
	Base
	Condition Node
	Body      *Block
}

// For is a C-style for loop. Any of Init/Test/Update may be nil in the
// surface grammar, but the lowerer fills an absent Test with a synthetic
// Literal(true) (spec.md §4.4); Init and Update stay nil when absent.
type For struct {
	Base
	Init   Node
	Test   Node
	Update Node
	Body   *Block
}

// Switch is `switch (discriminant) { cases }`.
type Switch struct {
	Base
	Discriminant Node
	Cases        []*Case
}

// Case is one `case test:` arm; Test is nil for `default:`.
type Case struct {
	Base
	Test Node
	Body []Node
}

// Break is `break;`.
type Break struct {
	Base
}

// Continue is `continue;`.
type Continue struct {
	Base
}

// ExpressionStmt wraps an expression used as a statement.
type ExpressionStmt struct {
	Base
	Expression Node
}

// BinaryOp is `left operator right`.
type BinaryOp struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

// UnaryOp is `operator argument` (prefix only).
type UnaryOp struct {
	Base
	Operator string
	Argument Node
}

// Call is `callee(arguments...)`. The isNew metadata flag distinguishes a
// constructor call lowered from `new Callee(args)` (spec.md §4.4).
type Call struct {
	Base
	Callee    Node
	Arguments []Node
}

// Member is `object.property` or `object[property]` (Computed true for the
// bracket form).
type Member struct {
	Base
	Object   Node
	Property Node
	Computed bool
}

// ArrayLiteral is `[elements...]`.
type ArrayLiteral struct {
	Base
	Elements []Node
}

// ObjectLiteral is `{ properties... }`.
type ObjectLiteral struct {
	Base
	Properties []*Property
}

// Property is one `key: value` entry of an ObjectLiteral.
type Property struct {
	Base
	Key   string
	Value Node
}

// Identifier references a declaration by name only; it is never a pointer to
// the declaring node (spec.md §3.1 "Ownership"). Resolution happens through
// scope tables rebuilt by each consumer (spec.md §3.4).
type Identifier struct {
	Base
	Name string
}

// Literal is a primitive constant whose Value matches its declared
// NodeType() (spec.md §3.1 invariant).
type Literal struct {
	Base
	Value any
}

// Assignment is `target operator value` (operator is "=" or a compound form
// such as "+="; spec.md §4.4 says compound assignments are preserved as-is).
type Assignment struct {
	Base
	Operator string
	Target   Node
	Value    Node
}

// Conditional is `test ? consequent : alternate`.
type Conditional struct {
	Base
	Test       Node
	Consequent Node
	Alternate  Node
}
