package lower

import "github.com/cwbudde/go-xir/internal/irast"

// declKind is the declaration form an identifier was bound with (spec.md
// §3.4: "let, const, var, parameter, function").
type declKind string

const (
	declLet       declKind = "let"
	declConst     declKind = "const"
	declVar       declKind = "var"
	declParameter declKind = "parameter"
	declFunction  declKind = "function"
)

type symbol struct {
	name string
	kind declKind
	node irast.Node
}

// scope is one block-structured symbol table frame, linked to its enclosing
// scope the way the teacher's semantic.SymbolTable links to its outer table.
type scope struct {
	symbols map[string]*symbol
	outer   *scope
}

func newScope(outer *scope) *scope {
	return &scope{symbols: make(map[string]*symbol), outer: outer}
}

func (s *scope) define(name string, kind declKind, node irast.Node) {
	s.symbols[name] = &symbol{name: name, kind: kind, node: node}
}

// lookup resolves name innermost-first, matching spec.md §3.4 "lookup is
// innermost-first"; shadowing is therefore implicit in this walk.
func (s *scope) lookup(name string) (*symbol, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if sym, ok := cur.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// freeIdentifiers are names the Lowerer treats as resolved even with no
// declaration in scope (spec.md §4.5 "unless marked free, e.g. this,
// console").
var freeIdentifiers = map[string]bool{
	"this":    true,
	"console": true,
	"globalThis": true,
}
