// Package pipeline ties the compiler stages together: normalize, lower,
// validate, serialize, and per-target emission (spec.md §2 overview
// diagram). Each Pipeline is single-threaded and holds no state shared with
// any other Pipeline instance (spec.md §5 "no shared mutable state between
// components or between concurrent compilations"); a caller compiling many
// units in parallel simply constructs one Pipeline per unit.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/cwbudde/go-xir/internal/codegen/jsgen"
	"github.com/cwbudde/go-xir/internal/codegen/llvmgen"
	"github.com/cwbudde/go-xir/internal/codegen/luagen"
	"github.com/cwbudde/go-xir/internal/codegen/wasmgen"
	"github.com/cwbudde/go-xir/internal/config"
	"github.com/cwbudde/go-xir/internal/diag"
	"github.com/cwbudde/go-xir/internal/irast"
	"github.com/cwbudde/go-xir/internal/lower"
	"github.com/cwbudde/go-xir/internal/normalize"
	"github.com/cwbudde/go-xir/internal/serialize"
	"github.com/cwbudde/go-xir/internal/surface"
	"github.com/cwbudde/go-xir/internal/validate"
)

// CancelFunc is a caller-supplied cooperative cancellation predicate
// (spec.md §5 "Cancellation"). It returns true once the caller wants the
// in-flight compilation abandoned. BuildIR checks it once before
// normalization and once after lowering; the lowering pass itself and the
// Emit* methods do not check it.
type CancelFunc func() bool

// Pipeline compiles one unit end-to-end. It carries only local state: the
// resolved configuration and a correlation ID for diagnostics, mirroring
// the teacher's per-invocation compiler instance rather than a shared
// global compiler object.
type Pipeline struct {
	cfg           config.Config
	correlationID string
	cancel        CancelFunc
}

// New constructs a Pipeline over cfg with a fresh correlation ID
// (google/uuid), readable through CorrelationID. The ID is not attached to
// the diagnostics a run produces.
func New(cfg config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, correlationID: uuid.NewString()}
}

// WithCancel attaches a cooperative cancellation predicate.
func (p *Pipeline) WithCancel(fn CancelFunc) *Pipeline {
	p.cancel = fn
	return p
}

// CorrelationID identifies this Pipeline instance's diagnostics.
func (p *Pipeline) CorrelationID() string { return p.correlationID }

func (p *Pipeline) checkCancelled(loc diag.Location) error {
	if p.cancel != nil && p.cancel() {
		return diag.New(diag.KindCancelled, loc, "compilation cancelled")
	}
	return nil
}

// Result is everything produced by compiling one unit through the IR stage:
// the validated canonical IR plus diagnostics collected along the way.
// Warnings are promoted to errors up front when determinism.strict is set
// (spec.md §6.1).
type Result struct {
	IR       *irast.Program
	Warnings []*diag.Diagnostic
}

// BuildIR runs normalize -> lower -> validate on a surface AST and returns
// the canonical IR (spec.md §2). It does not serialize or emit; callers
// needing JSON or target code call Serialize/Emit* afterward.
func (p *Pipeline) BuildIR(ctx context.Context, program *surface.Program) (*Result, error) {
	if err := p.checkCancelled(diag.Location{}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, diag.New(diag.KindCancelled, diag.Location{}, "compilation cancelled: %v", err)
	}

	normalized := normalize.Normalize(program)

	lw := lower.New(lower.Options{})
	ir, err := lw.Lower(normalized)
	if err != nil {
		return nil, err
	}
	warnings := lw.Warnings()

	if err := p.checkCancelled(diag.Location{}); err != nil {
		return nil, err
	}

	diags := validate.Validate(ir, validate.Options{})
	errs, valWarnings := diag.Split(diags)
	warnings = append(warnings, valWarnings...)
	if p.cfg.Determinism.Strict {
		warnings = diag.PromoteWarnings(warnings)
		errs = append(errs, warnings...)
		warnings = nil
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}

	return &Result{IR: ir, Warnings: warnings}, nil
}

// Serialize encodes ir as canonical JSON (spec.md §4.6).
func (p *Pipeline) Serialize(ir *irast.Program, indent int) ([]byte, error) {
	return serialize.Encode(ir, serialize.Options{Indent: indent})
}

// EmitLua renders ir as Lua 5.1-dialect source (spec.md §4.7). Under
// determinism.strict an emitter warning is returned as a fatal error.
func (p *Pipeline) EmitLua(ir *irast.Program) (string, []*diag.Diagnostic, error) {
	src, warnings, err := luagen.Emit(ir, luagen.Options{
		EmitContinueWarning: p.cfg.Lua.EmitContinueWarning,
		Strict:              p.cfg.Determinism.Strict,
	})
	if err != nil {
		return src, warnings, err
	}
	if p.cfg.Determinism.Strict && len(warnings) > 0 {
		return "", nil, diag.PromoteWarnings(warnings)[0]
	}
	return src, warnings, nil
}

// EmitJS renders ir as JavaScript source (spec.md §4.8).
func (p *Pipeline) EmitJS(ir *irast.Program) (string, error) {
	return jsgen.Emit(ir, jsgen.Options{
		Semicolons:  p.cfg.JS.Semicolons,
		IndentWidth: p.cfg.JS.Indent,
	})
}

// EmitLLVM renders ir as an LLVM textual module (spec.md §4.9).
func (p *Pipeline) EmitLLVM(ir *irast.Program, moduleName string) (string, error) {
	return llvmgen.Emit(ir, llvmgen.Options{
		ModuleName:   moduleName,
		TargetTriple: p.cfg.TargetTriple,
	})
}

// EmitWasm renders ir as a WASM 1.0 binary (spec.md §4.10).
func (p *Pipeline) EmitWasm(ir *irast.Program) ([]byte, error) {
	return wasmgen.Emit(ir, wasmgen.Options{
		MemoryInitialPages: p.cfg.Wasm.MemoryInitialPages,
		MemoryMaxPages:     p.cfg.Wasm.MemoryMaxPages,
	})
}
