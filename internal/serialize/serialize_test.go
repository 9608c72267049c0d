package serialize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/irbuild"
	"github.com/cwbudde/go-xir/internal/irtype"
	"github.com/gkampitakis/go-snaps/snaps"
)

func sampleProgram(t *testing.T) *irast.Program {
	t.Helper()
	b := irbuild.New()
	lit, err := b.Literal(1.0, irtype.NumberT, diag.Location{Line: 1, Column: 9})
	if err != nil {
		t.Fatal(err)
	}
	decl, err := b.VarDecl("x", lit, "let", diag.Location{Line: 1, Column: 1})
	if err != nil {
		t.Fatal(err)
	}
	prog, err := b.Program([]irast.Node{decl}, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func TestEncodeProducesValidJSON(t *testing.T) {
	prog := sampleProgram(t)
	raw, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("Encode() output is not valid JSON: %s", raw)
	}
}

func TestEncodeKeyOrderIsKindIdThenFields(t *testing.T) {
	prog := sampleProgram(t)
	raw, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	s := string(raw)
	kindIdx := strings.Index(s, `"kind"`)
	idIdx := strings.Index(s, `"id"`)
	bodyIdx := strings.Index(s, `"body"`)
	if !(kindIdx >= 0 && kindIdx < idIdx && idIdx < bodyIdx) {
		t.Fatalf("expected kind, then id, then body in that order, got %s", s)
	}
}

func TestEncodeIsIndentationIndependent(t *testing.T) {
	prog := sampleProgram(t)
	compact, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	indented, err := Encode(prog, Options{Indent: 2})
	if err != nil {
		t.Fatalf("Encode(indent=2) error = %v", err)
	}

	var compactVal, indentedVal any
	if err := json.Unmarshal(compact, &compactVal); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(indented, &indentedVal); err != nil {
		t.Fatal(err)
	}
	cj, _ := json.Marshal(compactVal)
	ij, _ := json.Marshal(indentedVal)
	if string(cj) != string(ij) {
		t.Fatalf("indented encoding is not semantically equivalent to compact encoding")
	}
}

func TestEncodeCanonicalNumberHasNoTrailingZero(t *testing.T) {
	prog := sampleProgram(t)
	raw, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if strings.Contains(string(raw), `"value":1.0`) {
		t.Fatalf("expected canonical integer formatting, got %s", raw)
	}
	if !strings.Contains(string(raw), `"value":1,`) && !strings.Contains(string(raw), `"value":1}`) {
		t.Fatalf("expected value:1 with no trailing zero, got %s", raw)
	}
}

func TestDecodeIsInverseOfEncode(t *testing.T) {
	prog := sampleProgram(t)
	raw, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	reencoded, err := Encode(back, Options{})
	if err != nil {
		t.Fatalf("re-Encode() error = %v", err)
	}
	if string(raw) != string(reencoded) {
		t.Fatalf("round trip is not an identity:\n  original: %s\n  roundtrip: %s", raw, reencoded)
	}
}

func TestDecodePreservesLocationAndType(t *testing.T) {
	prog := sampleProgram(t)
	raw, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	decl := back.Body[0].(*irast.VarDecl)
	if decl.Loc().Line != 1 || decl.Loc().Column != 1 {
		t.Errorf("decl location = %v, want {1 1}", decl.Loc())
	}
	lit := decl.Value.(*irast.Literal)
	if !irtype.Equal(lit.NodeType(), irtype.NumberT) {
		t.Errorf("literal type = %v, want number", lit.NodeType())
	}
	if lit.Value.(float64) != 1.0 {
		t.Errorf("literal value = %v, want 1", lit.Value)
	}
}

func TestEncodeValidatesAgainstBundledSchema(t *testing.T) {
	prog := sampleProgram(t)
	raw, err := Encode(prog, Options{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := ValidateSchema(raw); err != nil {
		t.Fatalf("ValidateSchema() error = %v", err)
	}
}

func TestEncodeOfEmptyBlockHasNonNullStatements(t *testing.T) {
	b := irbuild.New()
	block, err := b.Block(nil, diag.Location{})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := encodeNode(block)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), `"statements":null`) {
		t.Fatalf("expected an empty array, got null: %s", raw)
	}
}

func TestEncodeSnapshotIsStable(t *testing.T) {
	prog := sampleProgram(t)
	raw, err := Encode(prog, Options{Indent: 2})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	snaps.MatchSnapshot(t, string(raw))
}
