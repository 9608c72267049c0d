// Package irtype implements the closed type lattice shared by the canonical
// IR, the Validator, and every backend emitter (spec.md §3.2).
package irtype

import "fmt"

// Primitive enumerates the primitive members of the lattice.
type Primitive int

const (
	Number Primitive = iota
	String
	Boolean
	Null
	Void
)

func (p Primitive) String() string {
	switch p {
	case Number:
		return "number"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case Null:
		return "null"
	case Void:
		return "void"
	default:
		return "unknown-primitive"
	}
}

// Type is implemented by every member of the lattice. Types are immutable
// values; comparisons and subtyping checks never mutate their receivers.
type Type interface {
	// String renders the type the way the Serializer and diagnostics print it.
	String() string

	typeNode()
}

// PrimitiveType wraps one of the Primitive constants.
type PrimitiveType struct {
	Kind Primitive
}

func (PrimitiveType) typeNode()       {}
func (p PrimitiveType) String() string { return p.Kind.String() }

// NumberT, StringT, BooleanT, NullT and VoidT are the canonical primitive
// type values; emitters and the lowerer compare against these by value.
var (
	NumberT  = PrimitiveType{Kind: Number}
	StringT  = PrimitiveType{Kind: String}
	BooleanT = PrimitiveType{Kind: Boolean}
	NullT    = PrimitiveType{Kind: Null}
	VoidT    = PrimitiveType{Kind: Void}
)

// ArrayType is Array(elementType) from spec.md §3.2.
type ArrayType struct {
	Element Type
}

func (ArrayType) typeNode() {}
func (a ArrayType) String() string {
	return fmt.Sprintf("Array<%s>", a.Element)
}

// ObjectField is one field of an ObjectType.
type ObjectField struct {
	Name string
	Type Type
}

// ObjectType is Object(field -> type, open/closed) from spec.md §3.2. Closed
// objects reject access to fields not listed; open objects (the default for
// inferred object literals) permit unknown fields typed Unknown.
type ObjectType struct {
	Fields []ObjectField
	Open   bool
}

func (ObjectType) typeNode() {}
func (o ObjectType) String() string {
	s := "{"
	for i, f := range o.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + ": " + f.Type.String()
	}
	s += "}"
	if o.Open {
		s += "+"
	}
	return s
}

// FieldType looks up a field by name, returning Unknown and true for an open
// object with no matching field (an unknown field is typed Unknown, not an
// error) and false with a nil Type for a closed object with no such field.
func (o ObjectType) FieldType(name string) (Type, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	if o.Open {
		return UnknownT, true
	}
	return nil, false
}

// FunctionType is Function(params, returnType) from spec.md §3.2.
type FunctionType struct {
	Params     []Type
	ReturnType Type
}

func (FunctionType) typeNode() {}
func (f FunctionType) String() string {
	s := "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ") -> " + f.ReturnType.String()
}

// OptionalType is Optional(baseType); it is a supertype of both baseType and
// Null.
type OptionalType struct {
	Base Type
}

func (OptionalType) typeNode() {}
func (o OptionalType) String() string { return o.Base.String() + "?" }

// UnionType is Union(types), a non-overlapping set of alternative types.
type UnionType struct {
	Members []Type
}

func (UnionType) typeNode() {}
func (u UnionType) String() string {
	s := ""
	for i, m := range u.Members {
		if i > 0 {
			s += " | "
		}
		s += m.String()
	}
	return s
}

// unknownType is the top type, used when the lowerer cannot infer a more
// precise type.
type unknownType struct{}

func (unknownType) typeNode()       {}
func (unknownType) String() string  { return "unknown" }

// UnknownT is the single Unknown type value.
var UnknownT Type = unknownType{}

// IsUnknown reports whether t is the Unknown top type.
func IsUnknown(t Type) bool {
	_, ok := t.(unknownType)
	return ok
}

// IsSubtype reports whether sub is a subtype of super under the lattice
// rules in spec.md §3.2: Unknown is top; Optional(T) is a supertype of T and
// of Null; Union is the least upper bound of its members.
func IsSubtype(sub, super Type) bool {
	if IsUnknown(super) {
		return true
	}
	if Equal(sub, super) {
		return true
	}

	if opt, ok := super.(OptionalType); ok {
		if _, isNull := sub.(PrimitiveType); isNull && Equal(sub, NullT) {
			return true
		}
		return IsSubtype(sub, opt.Base)
	}

	if u, ok := super.(UnionType); ok {
		for _, m := range u.Members {
			if IsSubtype(sub, m) {
				return true
			}
		}
		return false
	}

	if arr, ok := sub.(ArrayType); ok {
		if superArr, ok := super.(ArrayType); ok {
			return IsSubtype(arr.Element, superArr.Element)
		}
	}

	return false
}

// Equal reports structural equality between two lattice members.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch at := a.(type) {
	case PrimitiveType:
		bt, ok := b.(PrimitiveType)
		return ok && at.Kind == bt.Kind
	case ArrayType:
		bt, ok := b.(ArrayType)
		return ok && Equal(at.Element, bt.Element)
	case ObjectType:
		bt, ok := b.(ObjectType)
		if !ok || len(at.Fields) != len(bt.Fields) || at.Open != bt.Open {
			return false
		}
		for i := range at.Fields {
			if at.Fields[i].Name != bt.Fields[i].Name || !Equal(at.Fields[i].Type, bt.Fields[i].Type) {
				return false
			}
		}
		return true
	case FunctionType:
		bt, ok := b.(FunctionType)
		if !ok || len(at.Params) != len(bt.Params) || !Equal(at.ReturnType, bt.ReturnType) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	case OptionalType:
		bt, ok := b.(OptionalType)
		return ok && Equal(at.Base, bt.Base)
	case UnionType:
		bt, ok := b.(UnionType)
		if !ok || len(at.Members) != len(bt.Members) {
			return false
		}
		for i := range at.Members {
			if !Equal(at.Members[i], bt.Members[i]) {
				return false
			}
		}
		return true
	case unknownType:
		_, ok := b.(unknownType)
		return ok
	default:
		return false
	}
}

// LUB computes the least upper bound of a set of types: a Union of its
// distinct members, collapsing to the single member when there is only one,
// and to Unknown for an empty set.
func LUB(types ...Type) Type {
	if len(types) == 0 {
		return UnknownT
	}
	var distinct []Type
	for _, t := range types {
		dup := false
		for _, d := range distinct {
			if Equal(t, d) {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, t)
		}
	}
	if len(distinct) == 1 {
		return distinct[0]
	}
	return UnionType{Members: distinct}
}

// IsString reports whether t is statically the String primitive (used by the
// Lua emitter's "+" -> ".." decision, spec.md §4.7).
func IsString(t Type) bool {
	pt, ok := t.(PrimitiveType)
	return ok && pt.Kind == String
}

